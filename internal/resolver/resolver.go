// Package resolver builds the Relay GraphQL schema over a model catalog.
// Every connection field validates its arguments into a query descriptor,
// runs it once against the store and shapes the rows into edges.
package resolver

import (
	"context"
	"fmt"
	"sync"

	"github.com/graphql-go/graphql"

	"relay-graphql/internal/catalog"
	"relay-graphql/internal/connection"
	"relay-graphql/internal/naming"
	"relay-graphql/internal/observability"
	"relay-graphql/internal/operators"
	"relay-graphql/internal/planner"
)

// DefaultMaxFirst bounds the first argument when Options.MaxFirst is unset.
const DefaultMaxFirst = 100

// Store is the storage collaborator of the schema.
type Store interface {
	connection.Executor
	Count(ctx context.Context, d *planner.QueryDescriptor) (int, error)
	FindByID(ctx context.Context, model string, id interface{}, fields []string) (connection.Row, error)
}

// Options configures a Resolver.
type Options struct {
	// Roots lists the models exposed as top-level connections and lookups.
	Roots    []string
	MaxFirst int
	Registry *operators.Registry
	Metrics  *observability.ConnectionMetrics
}

// Resolver holds the store and the GraphQL types built from the catalog.
type Resolver struct {
	store    Store
	catalog  *catalog.Catalog
	roots    []string
	maxFirst int
	registry *operators.Registry
	metrics  *observability.ConnectionMetrics

	typeCache       map[string]*graphql.Object
	edgeCache       map[string]*graphql.Object
	connectionCache map[string]*graphql.Object
	whereCache      map[string]*graphql.InputObject
	orderByCache    map[string]*graphql.Scalar
	nodeInterface   *graphql.Interface
	pageInfoType    *graphql.Object
	mu              sync.RWMutex
}

// NewResolver creates a resolver for the models of cat.
func NewResolver(store Store, cat *catalog.Catalog, opts Options) *Resolver {
	if opts.MaxFirst <= 0 {
		opts.MaxFirst = DefaultMaxFirst
	}
	if opts.Registry == nil {
		opts.Registry = operators.Default()
	}
	if opts.Roots == nil {
		opts.Roots = []string{catalog.Person}
	}
	return &Resolver{
		store:           store,
		catalog:         cat,
		roots:           opts.Roots,
		maxFirst:        opts.MaxFirst,
		registry:        opts.Registry,
		metrics:         opts.Metrics,
		typeCache:       make(map[string]*graphql.Object),
		edgeCache:       make(map[string]*graphql.Object),
		connectionCache: make(map[string]*graphql.Object),
		whereCache:      make(map[string]*graphql.InputObject),
		orderByCache:    make(map[string]*graphql.Scalar),
	}
}

// BuildGraphQLSchema constructs the executable schema. It fails when a
// filterable field has no operator set, so a misdeclared catalog never
// serves requests.
func (r *Resolver) BuildGraphQLSchema() (graphql.Schema, error) {
	for _, m := range r.catalog.Models() {
		if _, err := r.whereInput(m); err != nil {
			return graphql.Schema{}, err
		}
	}

	queryFields := graphql.Fields{
		"node": r.nodeField(),
	}
	for _, name := range r.roots {
		m, ok := r.catalog.Model(name)
		if !ok {
			return graphql.Schema{}, fmt.Errorf("unknown root model %q", name)
		}
		queryFields[rootConnectionName(m)] = r.rootConnectionField(m)
		queryFields[rootLookupName(m)] = r.lookupField(m)
	}

	types := make([]graphql.Type, 0, len(r.catalog.Models()))
	for _, m := range r.catalog.Models() {
		types = append(types, r.objectType(m))
	}

	schema, err := graphql.NewSchema(graphql.SchemaConfig{
		Query: graphql.NewObject(graphql.ObjectConfig{
			Name:   "Query",
			Fields: queryFields,
		}),
		Types: types,
	})
	if err != nil {
		return graphql.Schema{}, fmt.Errorf("failed to build GraphQL schema: %w", err)
	}
	return schema, nil
}

// rootConnectionName derives the top-level connection field from the
// table name: Person -> people.
func rootConnectionName(m *catalog.Model) string {
	return naming.ToCamelCase(m.Table)
}

// rootLookupName derives the by-id field: Person -> person.
func rootLookupName(m *catalog.Model) string {
	return naming.ToCamelCase(naming.ToSnakeCase(m.Name))
}

func connectionArgs() graphql.FieldConfigArgument {
	return graphql.FieldConfigArgument{
		planner.ArgFirst:  &graphql.ArgumentConfig{Type: graphql.Int, Description: "Number of edges to return."},
		planner.ArgAfter:  &graphql.ArgumentConfig{Type: graphql.String, Description: "Return edges after this cursor."},
		planner.ArgLast:   &graphql.ArgumentConfig{Type: graphql.Int, Description: "Not supported."},
		planner.ArgBefore: &graphql.ArgumentConfig{Type: graphql.String, Description: "Not supported."},
	}
}

// filterArgs adds where and one argument per filterable relation of m.
func (r *Resolver) filterArgs(m *catalog.Model, args graphql.FieldConfigArgument) graphql.FieldConfigArgument {
	where, _ := r.whereInput(m)
	args[planner.ArgWhere] = &graphql.ArgumentConfig{Type: where}
	for _, rel := range m.Relations {
		if rel.FilterArgument == "" {
			continue
		}
		target, _, err := r.catalog.Target(m, rel.Name)
		if err != nil {
			continue
		}
		targetWhere, _ := r.whereInput(target)
		args[rel.FilterArgument] = &graphql.ArgumentConfig{
			Type:        targetWhere,
			Description: fmt.Sprintf("Keep rows with at least one %s matching the filter.", rel.Name),
		}
	}
	return args
}

func (r *Resolver) rootConnectionField(m *catalog.Model) *graphql.Field {
	args := r.filterArgs(m, connectionArgs())
	args[planner.ArgOrderBy] = &graphql.ArgumentConfig{Type: r.orderByScalar(m)}
	return &graphql.Field{
		Type:        graphql.NewNonNull(r.connectionType(m.Name+"Connection", m, false)),
		Args:        args,
		Description: fmt.Sprintf("Paginated %s rows.", m.Name),
		Resolve:     r.makeConnectionResolver(m, nil),
	}
}

func (r *Resolver) lookupField(m *catalog.Model) *graphql.Field {
	return &graphql.Field{
		Type: r.objectType(m),
		Args: graphql.FieldConfigArgument{
			"id": &graphql.ArgumentConfig{
				Type:        graphql.NewNonNull(graphql.Int),
				Description: "Primary key of the row.",
			},
		},
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			id, _ := p.Args["id"].(int)
			return r.findByID(p, m, id)
		},
	}
}

// relationField resolves one relation of m: a scoped connection for
// hasMany and manyToMany, a lookup for belongsTo.
func (r *Resolver) relationField(m *catalog.Model, rel catalog.Relation) *graphql.Field {
	target, _, err := r.catalog.Target(m, rel.Name)
	if err != nil {
		return nil
	}
	if !rel.IsConnection() {
		return &graphql.Field{
			Type:        r.objectType(target),
			Description: rel.Description,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				source, ok := p.Source.(connection.Row)
				if !ok {
					return nil, nil
				}
				id := source[rel.LocalField]
				if id == nil {
					return nil, nil
				}
				return r.findByID(p, target, id)
			},
		}
	}

	typeName := naming.Default().ConnectionTypeName(m.Name, rel.Name)
	return &graphql.Field{
		Type:        graphql.NewNonNull(r.connectionType(typeName, target, true)),
		Args:        r.filterArgs(target, connectionArgs()),
		Description: rel.Description,
		Resolve:     r.makeConnectionResolver(target, &relationScope{parent: m, relation: rel.Name}),
	}
}
