// Package catalog describes the models served over GraphQL: their tables,
// fields, filterable operators and relations.
package catalog

import (
	"fmt"

	"relay-graphql/internal/operators"
	"relay-graphql/internal/where"
)

// RelationKind is the cardinality of a relation.
type RelationKind int

const (
	// HasMany: target rows reference the source through ForeignKey.
	HasMany RelationKind = iota
	// BelongsTo: the source row references the target through LocalField.
	BelongsTo
	// ManyToMany: source and target are linked through a join table.
	ManyToMany
)

func (k RelationKind) String() string {
	switch k {
	case HasMany:
		return "hasMany"
	case BelongsTo:
		return "belongsTo"
	case ManyToMany:
		return "manyToMany"
	default:
		return fmt.Sprintf("RelationKind(%d)", int(k))
	}
}

// Field is a column exposed as a GraphQL field.
type Field struct {
	Name        string
	Column      string
	Scalar      operators.ScalarKind
	Description string
	NonNull     bool
	// Filterable fields appear in the model's where input.
	Filterable bool
	// Operators restricts the filter operators; nil means the scalar's defaults.
	Operators []operators.Kind
}

// Through is the join table of a many-to-many relation.
type Through struct {
	Table string
	// SourceKey references the source model's primary key.
	SourceKey string
	// TargetKey references the target model's primary key.
	TargetKey string
}

// Relation links a model to another model.
type Relation struct {
	Name   string
	Kind   RelationKind
	Target string
	// ForeignKey is the target column referencing the source (HasMany).
	ForeignKey string
	// LocalField is the source field holding the target's key (BelongsTo).
	LocalField string
	Through    *Through
	// FilterArgument names the argument that filters the source connection
	// by this relation. Empty if the relation is not filterable.
	FilterArgument string
	Description    string
}

// IsConnection reports whether the relation resolves to a connection.
func (r Relation) IsConnection() bool {
	return r.Kind == HasMany || r.Kind == ManyToMany
}

// Model is one table exposed as a GraphQL object type.
type Model struct {
	Name        string
	Table       string
	Description string
	// PrimaryKey is the name of the primary key field.
	PrimaryKey string
	Fields     []Field
	Relations  []Relation
	// Always lists fields fetched for every row: keys needed for identity
	// and relation traversal.
	Always []string
}

// Field returns the field with the given name.
func (m *Model) Field(name string) (Field, bool) {
	for _, f := range m.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Column returns the column of a field.
func (m *Model) Column(name string) (string, bool) {
	f, ok := m.Field(name)
	if !ok {
		return "", false
	}
	return f.Column, true
}

// PrimaryColumn returns the primary key column.
func (m *Model) PrimaryColumn() string {
	col, _ := m.Column(m.PrimaryKey)
	return col
}

// Relation returns the relation with the given name.
func (m *Model) Relation(name string) (Relation, bool) {
	for _, r := range m.Relations {
		if r.Name == name {
			return r, true
		}
	}
	return Relation{}, false
}

// Whitelist returns the names of every fetchable field.
func (m *Model) Whitelist() []string {
	names := make([]string, len(m.Fields))
	for i, f := range m.Fields {
		names[i] = f.Name
	}
	return names
}

// WhereFields returns the operator set of each filterable field. It fails
// with UnsupportedScalarKind when a field's scalar has no default operators
// and the field declares none.
func (m *Model) WhereFields() (where.Fields, error) {
	fields := where.Fields{}
	for _, f := range m.Fields {
		if !f.Filterable {
			continue
		}
		set, err := operators.OperatorsFor(f.Scalar, f.Operators...)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", m.Name, f.Name, err)
		}
		fields[f.Name] = set
	}
	return fields, nil
}

// FilterFields returns the filterable fields in declaration order.
func (m *Model) FilterFields() []Field {
	var out []Field
	for _, f := range m.Fields {
		if f.Filterable {
			out = append(out, f)
		}
	}
	return out
}

// Catalog is an immutable set of models.
type Catalog struct {
	models map[string]*Model
	order  []string
}

// New validates models and returns a catalog containing them.
func New(models ...*Model) (*Catalog, error) {
	c := &Catalog{models: make(map[string]*Model, len(models))}
	for _, m := range models {
		if _, dup := c.models[m.Name]; dup {
			return nil, fmt.Errorf("duplicate model %s", m.Name)
		}
		c.models[m.Name] = m
		c.order = append(c.order, m.Name)
	}
	for _, m := range models {
		if err := c.validate(m); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Catalog) validate(m *Model) error {
	if m.Table == "" {
		return fmt.Errorf("model %s has no table", m.Name)
	}
	if _, ok := m.Field(m.PrimaryKey); !ok {
		return fmt.Errorf("model %s: primary key field %q not found", m.Name, m.PrimaryKey)
	}
	seen := map[string]bool{}
	for _, f := range m.Fields {
		if seen[f.Name] {
			return fmt.Errorf("model %s: duplicate field %s", m.Name, f.Name)
		}
		seen[f.Name] = true
	}
	for _, name := range m.Always {
		if _, ok := m.Field(name); !ok {
			return fmt.Errorf("model %s: always-fetched field %q not found", m.Name, name)
		}
	}
	for _, r := range m.Relations {
		if seen[r.Name] {
			return fmt.Errorf("model %s: relation %s collides with a field", m.Name, r.Name)
		}
		if _, ok := c.models[r.Target]; !ok {
			return fmt.Errorf("model %s: relation %s targets unknown model %s", m.Name, r.Name, r.Target)
		}
		switch r.Kind {
		case HasMany:
			if r.ForeignKey == "" {
				return fmt.Errorf("model %s: relation %s has no foreign key", m.Name, r.Name)
			}
		case BelongsTo:
			if _, ok := m.Field(r.LocalField); !ok {
				return fmt.Errorf("model %s: relation %s local field %q not found", m.Name, r.Name, r.LocalField)
			}
			if r.FilterArgument != "" {
				return fmt.Errorf("model %s: belongsTo relation %s cannot be filtered", m.Name, r.Name)
			}
		case ManyToMany:
			if r.Through == nil {
				return fmt.Errorf("model %s: relation %s has no join table", m.Name, r.Name)
			}
		}
	}
	return nil
}

// Model returns the model with the given name.
func (c *Catalog) Model(name string) (*Model, bool) {
	m, ok := c.models[name]
	return m, ok
}

// Models returns every model in registration order.
func (c *Catalog) Models() []*Model {
	out := make([]*Model, len(c.order))
	for i, name := range c.order {
		out[i] = c.models[name]
	}
	return out
}

// Target returns the model a relation of m points to.
func (c *Catalog) Target(m *Model, relation string) (*Model, Relation, error) {
	rel, ok := m.Relation(relation)
	if !ok {
		return nil, Relation{}, fmt.Errorf("model %s has no relation %s", m.Name, relation)
	}
	target, ok := c.models[rel.Target]
	if !ok {
		return nil, Relation{}, fmt.Errorf("relation %s.%s targets unknown model %s", m.Name, relation, rel.Target)
	}
	return target, rel, nil
}
