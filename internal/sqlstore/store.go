// Package sqlstore executes query descriptors against MySQL or SQLite
// using squirrel-built statements.
package sqlstore

import (
	"context"
	"fmt"
	"math"
	"strconv"

	sq "github.com/Masterminds/squirrel"

	"relay-graphql/internal/catalog"
	"relay-graphql/internal/connection"
	"relay-graphql/internal/dbexec"
	"relay-graphql/internal/operators"
	"relay-graphql/internal/planner"
	"relay-graphql/internal/sqlutil"
)

// TypenameKey holds the model name in every fetched row.
const TypenameKey = "__typename"

// SQLQuery is a rendered statement and its bound arguments.
type SQLQuery struct {
	SQL  string
	Args []interface{}
}

// Store runs connection queries over a catalog.
type Store struct {
	exec    dbexec.QueryExecutor
	catalog *catalog.Catalog
}

// New creates a store for the models of cat.
func New(exec dbexec.QueryExecutor, cat *catalog.Catalog) *Store {
	return &Store{exec: exec, catalog: cat}
}

func (s *Store) model(name string) (*catalog.Model, error) {
	m, ok := s.catalog.Model(name)
	if !ok {
		return nil, fmt.Errorf("unknown model %q", name)
	}
	return m, nil
}

// Execute fetches the page described by d and the number of rows matching
// its filters. The count query is skipped when the page itself proves the
// total.
func (s *Store) Execute(ctx context.Context, d *planner.QueryDescriptor) ([]connection.Row, int, error) {
	m, err := s.model(d.Collection)
	if err != nil {
		return nil, 0, err
	}
	page, err := s.SelectQuery(d)
	if err != nil {
		return nil, 0, err
	}
	rows, err := s.query(ctx, m, d.Projection, page)
	if err != nil {
		return nil, 0, err
	}
	if total, ok := knownTotal(d, len(rows)); ok {
		return rows, total, nil
	}
	total, err := s.Count(ctx, d)
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// knownTotal derives the total from a page that cannot be followed by more rows.
func knownTotal(d *planner.QueryDescriptor, n int) (int, bool) {
	switch {
	case n == 0 && d.Offset == 0:
		return 0, true
	case n == 0:
		return 0, false
	case !d.HasLimit() || n < d.LimitValue():
		return d.Offset + n, true
	default:
		return 0, false
	}
}

// Count returns the number of rows matching d's filters, ignoring pagination.
func (s *Store) Count(ctx context.Context, d *planner.QueryDescriptor) (int, error) {
	m, err := s.model(d.Collection)
	if err != nil {
		return 0, err
	}
	q, err := s.CountQuery(d)
	if err != nil {
		return 0, err
	}
	rows, err := s.exec.QueryContext(ctx, q.SQL, q.Args...)
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", m.Table, err)
	}
	defer func() { _ = rows.Close() }()

	var count int64
	if rows.Next() {
		if err := rows.Scan(&count); err != nil {
			return 0, fmt.Errorf("failed to scan %s count: %w", m.Table, err)
		}
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", m.Table, err)
	}
	return int(count), nil
}

// FindByID fetches one row of model by primary key, or nil if absent.
func (s *Store) FindByID(ctx context.Context, model string, id interface{}, fields []string) (connection.Row, error) {
	m, err := s.model(model)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		fields = []string{m.PrimaryKey}
	}
	cols, err := columns(m, fields)
	if err != nil {
		return nil, err
	}
	sqlStr, args, err := sq.Select(cols...).
		From(sqlutil.QuoteIdentifier(m.Table)).
		Where(sq.Eq{sqlutil.QuoteIdentifier(m.PrimaryColumn()): id}).
		PlaceholderFormat(sq.Question).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build %s lookup: %w", m.Table, err)
	}
	rows, err := s.query(ctx, m, fields, SQLQuery{SQL: sqlStr, Args: args})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// SelectQuery renders the page statement of d.
func (s *Store) SelectQuery(d *planner.QueryDescriptor) (SQLQuery, error) {
	m, err := s.model(d.Collection)
	if err != nil {
		return SQLQuery{}, err
	}
	fields := d.Projection
	if len(fields) == 0 {
		fields = []string{m.PrimaryKey}
	}
	cols, err := columns(m, fields)
	if err != nil {
		return SQLQuery{}, err
	}
	conds, err := s.conditions(m, d)
	if err != nil {
		return SQLQuery{}, err
	}
	order, err := orderClauses(m, d.OrderBy)
	if err != nil {
		return SQLQuery{}, err
	}

	builder := sq.Select(cols...).From(sqlutil.QuoteIdentifier(m.Table))
	builder = applyConditions(builder, conds)
	if len(order) > 0 {
		builder = builder.OrderBy(order...)
	}
	switch {
	case d.HasLimit():
		builder = builder.Suffix("LIMIT ? OFFSET ?", d.LimitValue(), d.Offset)
	case d.Offset > 0:
		// MySQL and SQLite only accept OFFSET after LIMIT.
		builder = builder.Suffix("LIMIT ? OFFSET ?", int64(math.MaxInt64), d.Offset)
	}

	sqlStr, args, err := builder.PlaceholderFormat(sq.Question).ToSql()
	if err != nil {
		return SQLQuery{}, fmt.Errorf("failed to build %s query: %w", m.Table, err)
	}
	return SQLQuery{SQL: sqlStr, Args: args}, nil
}

// CountQuery renders the statement counting rows matching d's filters.
func (s *Store) CountQuery(d *planner.QueryDescriptor) (SQLQuery, error) {
	m, err := s.model(d.Collection)
	if err != nil {
		return SQLQuery{}, err
	}
	conds, err := s.conditions(m, d)
	if err != nil {
		return SQLQuery{}, err
	}
	builder := applyConditions(sq.Select("COUNT(*)").From(sqlutil.QuoteIdentifier(m.Table)), conds)
	sqlStr, args, err := builder.PlaceholderFormat(sq.Question).ToSql()
	if err != nil {
		return SQLQuery{}, fmt.Errorf("failed to build %s count: %w", m.Table, err)
	}
	return SQLQuery{SQL: sqlStr, Args: args}, nil
}

func applyConditions(builder sq.SelectBuilder, conds []sq.Sqlizer) sq.SelectBuilder {
	switch len(conds) {
	case 0:
		return builder
	case 1:
		return builder.Where(conds[0])
	default:
		return builder.Where(sq.And(conds))
	}
}

func columns(m *catalog.Model, fields []string) ([]string, error) {
	cols := make([]string, len(fields))
	for i, name := range fields {
		col, ok := m.Column(name)
		if !ok {
			return nil, fmt.Errorf("model %s has no field %q", m.Name, name)
		}
		cols[i] = sqlutil.QuoteIdentifier(col)
	}
	return cols, nil
}

func orderClauses(m *catalog.Model, terms []planner.OrderTerm) ([]string, error) {
	clauses := make([]string, 0, len(terms))
	for _, term := range terms {
		col, ok := m.Column(term.Field)
		if !ok {
			return nil, fmt.Errorf("model %s cannot be ordered by %q", m.Name, term.Field)
		}
		dir := "ASC"
		if term.Desc {
			dir = "DESC"
		}
		clauses = append(clauses, sqlutil.QuoteIdentifier(col)+" "+dir)
	}
	return clauses, nil
}

func (s *Store) query(ctx context.Context, m *catalog.Model, fields []string, q SQLQuery) ([]connection.Row, error) {
	rows, err := s.exec.QueryContext(ctx, q.SQL, q.Args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", m.Table, err)
	}
	defer func() { _ = rows.Close() }()

	scalars := make([]operators.ScalarKind, len(fields))
	for i, name := range fields {
		f, _ := m.Field(name)
		scalars[i] = f.Scalar
	}

	out := []connection.Row{}
	for rows.Next() {
		values := make([]interface{}, len(fields))
		ptrs := make([]interface{}, len(fields))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", m.Table, err)
		}
		row := make(connection.Row, len(fields)+1)
		row[TypenameKey] = m.Name
		for i, name := range fields {
			v, err := normalize(scalars[i], values[i])
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", m.Name, name, err)
			}
			row[name] = v
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s rows: %w", m.Table, err)
	}
	return out, nil
}

// normalize converts driver values to the Go type of the field's scalar.
// MySQL returns text columns as []byte; SQLite stores booleans as integers.
func normalize(scalar operators.ScalarKind, v interface{}) (interface{}, error) {
	if b, ok := v.([]byte); ok {
		v = string(b)
	}
	if v == nil {
		return nil, nil
	}
	switch scalar {
	case operators.Int:
		switch n := v.(type) {
		case int64:
			return n, nil
		case int:
			return int64(n), nil
		case int32:
			return int64(n), nil
		case uint64:
			if n > math.MaxInt64 {
				return nil, fmt.Errorf("integer %d out of range", n)
			}
			return int64(n), nil
		case float64:
			return int64(n), nil
		case string:
			parsed, err := strconv.ParseInt(n, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid integer %q", n)
			}
			return parsed, nil
		}
	case operators.Boolean:
		switch b := v.(type) {
		case bool:
			return b, nil
		case int64:
			return b != 0, nil
		case string:
			parsed, err := strconv.ParseBool(b)
			if err != nil {
				return nil, fmt.Errorf("invalid boolean %q", b)
			}
			return parsed, nil
		}
	}
	return v, nil
}
