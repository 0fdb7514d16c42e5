package sqlstore

import (
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"relay-graphql/internal/apperrors"
	"relay-graphql/internal/catalog"
	"relay-graphql/internal/operators"
	"relay-graphql/internal/planner"
	"relay-graphql/internal/sqlutil"
	"relay-graphql/internal/where"
)

// predicate translates a condition tree over model m. Columns are qualified
// by table when it is not empty.
func predicate(m *catalog.Model, node where.Node, table string) (sq.Sqlizer, error) {
	switch n := node.(type) {
	case *where.FieldCondition:
		col, ok := m.Column(n.Field)
		if !ok {
			return nil, apperrors.UnknownField(n.Field)
		}
		return comparison(sqlutil.QualifiedIdentifier(table, col), n.Operator, n.Value)
	case *where.And:
		parts, err := predicates(m, n.Children, table)
		if err != nil {
			return nil, err
		}
		if len(parts) == 1 {
			return parts[0], nil
		}
		return sq.And(parts), nil
	case *where.Or:
		parts, err := predicates(m, n.Children, table)
		if err != nil {
			return nil, err
		}
		if len(parts) == 1 {
			return parts[0], nil
		}
		return sq.Or(parts), nil
	default:
		return nil, fmt.Errorf("unsupported condition node %T", node)
	}
}

func predicates(m *catalog.Model, nodes []where.Node, table string) ([]sq.Sqlizer, error) {
	parts := make([]sq.Sqlizer, 0, len(nodes))
	for _, child := range nodes {
		p, err := predicate(m, child, table)
		if err != nil {
			return nil, err
		}
		parts = append(parts, p)
	}
	return parts, nil
}

// comparison renders one operator against an already quoted column.
func comparison(col string, op operators.Kind, value interface{}) (sq.Sqlizer, error) {
	switch op {
	case operators.Eq:
		return sq.Eq{col: value}, nil
	case operators.Ne:
		return sq.NotEq{col: value}, nil
	case operators.Lt:
		return sq.Lt{col: value}, nil
	case operators.Lte:
		return sq.LtOrEq{col: value}, nil
	case operators.Gt:
		return sq.Gt{col: value}, nil
	case operators.Gte:
		return sq.GtOrEq{col: value}, nil
	case operators.In:
		list, err := valueList(op, value)
		if err != nil {
			return nil, err
		}
		return sq.Eq{col: list}, nil
	case operators.NotIn:
		list, err := valueList(op, value)
		if err != nil {
			return nil, err
		}
		return sq.NotEq{col: list}, nil
	case operators.Between, operators.NotBetween:
		list, err := valueList(op, value)
		if err != nil {
			return nil, err
		}
		if len(list) != 2 {
			return nil, fmt.Errorf("%s expects 2 values, got %d", op, len(list))
		}
		keyword := " BETWEEN ? AND ?"
		if op == operators.NotBetween {
			keyword = " NOT BETWEEN ? AND ?"
		}
		return sq.Expr(col+keyword, list[0], list[1]), nil
	case operators.Like:
		return sq.Like{col: value}, nil
	case operators.NotLike:
		return sq.NotLike{col: value}, nil
	case operators.ILike:
		return sq.Expr("LOWER("+col+") LIKE LOWER(?)", value), nil
	case operators.NotILike:
		return sq.Expr("LOWER("+col+") NOT LIKE LOWER(?)", value), nil
	default:
		return nil, fmt.Errorf("unsupported operator %q", op)
	}
}

func valueList(op operators.Kind, value interface{}) ([]interface{}, error) {
	list, ok := value.([]interface{})
	if !ok {
		return nil, fmt.Errorf("%s expects a list, got %T", op, value)
	}
	return list, nil
}

// conditions returns the predicates restricting d's rows: relation scope,
// then the where tree, then one EXISTS per join.
func (s *Store) conditions(m *catalog.Model, d *planner.QueryDescriptor) ([]sq.Sqlizer, error) {
	var parts []sq.Sqlizer

	if d.Scope != nil {
		p, err := s.scopePredicate(m, d.Scope.ParentModel, d.Scope.Relation, d.Scope.ParentID)
		if err != nil {
			return nil, err
		}
		parts = append(parts, p)
	}

	if !where.IsEmpty(d.Where) {
		p, err := predicate(m, d.Where, "")
		if err != nil {
			return nil, err
		}
		if and, ok := p.(sq.And); ok {
			parts = append(parts, and...)
		} else {
			parts = append(parts, p)
		}
	}

	for _, join := range d.Joins {
		p, err := s.joinPredicate(m, join.RelationKey, join.Where)
		if err != nil {
			return nil, err
		}
		parts = append(parts, p)
	}
	return parts, nil
}

// scopePredicate restricts rows of m to the children of one parent row.
func (s *Store) scopePredicate(m *catalog.Model, parentModel, relation string, parentID interface{}) (sq.Sqlizer, error) {
	parent, ok := s.catalog.Model(parentModel)
	if !ok {
		return nil, fmt.Errorf("unknown scope model %s", parentModel)
	}
	target, rel, err := s.catalog.Target(parent, relation)
	if err != nil {
		return nil, err
	}
	if target.Name != m.Name {
		return nil, fmt.Errorf("relation %s.%s targets %s, not %s", parent.Name, relation, target.Name, m.Name)
	}

	switch rel.Kind {
	case catalog.HasMany:
		return sq.Eq{sqlutil.QuoteIdentifier(rel.ForeignKey): parentID}, nil
	case catalog.ManyToMany:
		sub := fmt.Sprintf("%s IN (SELECT %s FROM %s WHERE %s = ?)",
			sqlutil.QuoteIdentifier(m.PrimaryColumn()),
			sqlutil.QuoteIdentifier(rel.Through.TargetKey),
			sqlutil.QuoteIdentifier(rel.Through.Table),
			sqlutil.QuoteIdentifier(rel.Through.SourceKey),
		)
		return sq.Expr(sub, parentID), nil
	default:
		return nil, fmt.Errorf("relation %s.%s (%s) cannot scope a connection", parent.Name, relation, rel.Kind)
	}
}

// joinPredicate keeps rows of m having at least one related row that
// matches cond.
func (s *Store) joinPredicate(m *catalog.Model, relation string, cond where.Node) (sq.Sqlizer, error) {
	target, rel, err := s.catalog.Target(m, relation)
	if err != nil {
		return nil, err
	}
	parentKey := sqlutil.QualifiedIdentifier(m.Table, m.PrimaryColumn())

	sub := sq.Select("1").From(sqlutil.QuoteIdentifier(target.Table))
	switch rel.Kind {
	case catalog.HasMany:
		sub = sub.Where(fmt.Sprintf("%s = %s", sqlutil.QualifiedIdentifier(target.Table, rel.ForeignKey), parentKey))
	case catalog.ManyToMany:
		through := rel.Through
		sub = sub.
			Join(fmt.Sprintf("%s ON %s = %s",
				sqlutil.QuoteIdentifier(through.Table),
				sqlutil.QualifiedIdentifier(through.Table, through.TargetKey),
				sqlutil.QualifiedIdentifier(target.Table, target.PrimaryColumn()),
			)).
			Where(fmt.Sprintf("%s = %s", sqlutil.QualifiedIdentifier(through.Table, through.SourceKey), parentKey))
	default:
		return nil, fmt.Errorf("relation %s.%s (%s) cannot be used as a filter", m.Name, relation, rel.Kind)
	}

	if !where.IsEmpty(cond) {
		p, err := predicate(target, cond, target.Table)
		if err != nil {
			return nil, err
		}
		sub = sub.Where(p)
	}

	subSQL, args, err := sub.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build %s filter: %w", relation, err)
	}
	return sq.Expr("EXISTS ("+subSQL+")", args...), nil
}
