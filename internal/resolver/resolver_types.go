package resolver

import (
	"fmt"

	"github.com/graphql-go/graphql"

	"relay-graphql/internal/catalog"
	"relay-graphql/internal/connection"
	"relay-graphql/internal/nodeid"
	"relay-graphql/internal/operators"
	"relay-graphql/internal/planner"
	"relay-graphql/internal/scalars"
	"relay-graphql/internal/sqlstore"
	"relay-graphql/internal/where"
)

var outputScalars = map[operators.ScalarKind]*graphql.Scalar{
	operators.Int:     graphql.Int,
	operators.String:  graphql.String,
	operators.Boolean: graphql.Boolean,
}

func (r *Resolver) nodeInterfaceType() *graphql.Interface {
	r.mu.RLock()
	cached := r.nodeInterface
	r.mu.RUnlock()
	if cached != nil {
		return cached
	}

	nodeInterface := graphql.NewInterface(graphql.InterfaceConfig{
		Name:        "Node",
		Description: "An object with a global ID.",
		Fields: graphql.Fields{
			"id": &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		},
		ResolveType: func(p graphql.ResolveTypeParams) *graphql.Object {
			source, ok := p.Value.(connection.Row)
			if !ok {
				return nil
			}
			typeName, _ := source[sqlstore.TypenameKey].(string)
			r.mu.RLock()
			objType := r.typeCache[typeName]
			r.mu.RUnlock()
			return objType
		},
	})

	r.mu.Lock()
	if r.nodeInterface == nil {
		r.nodeInterface = nodeInterface
	}
	cached = r.nodeInterface
	r.mu.Unlock()

	return cached
}

// pageInfoTypeObject returns the shared PageInfo type (lazy-init).
func (r *Resolver) pageInfoTypeObject() *graphql.Object {
	r.mu.RLock()
	cached := r.pageInfoType
	r.mu.RUnlock()
	if cached != nil {
		return cached
	}

	pageInfo := graphql.NewObject(graphql.ObjectConfig{
		Name: "PageInfo",
		Fields: graphql.Fields{
			"hasNextPage":     &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
			"hasPreviousPage": &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
			"startCursor":     &graphql.Field{Type: graphql.String},
			"endCursor":       &graphql.Field{Type: graphql.String},
		},
	})

	r.mu.Lock()
	if r.pageInfoType == nil {
		r.pageInfoType = pageInfo
	}
	cached = r.pageInfoType
	r.mu.Unlock()

	return cached
}

// objectType builds the object type of a model (cached per model). Fields
// are a thunk so models can reference each other through relations.
func (r *Resolver) objectType(m *catalog.Model) *graphql.Object {
	r.mu.RLock()
	if cached, ok := r.typeCache[m.Name]; ok {
		r.mu.RUnlock()
		return cached
	}
	r.mu.RUnlock()

	objType := graphql.NewObject(graphql.ObjectConfig{
		Name:        m.Name,
		Description: m.Description,
		Interfaces:  []*graphql.Interface{r.nodeInterfaceType()},
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			fields := graphql.Fields{
				"id": &graphql.Field{
					Type:        graphql.NewNonNull(graphql.ID),
					Description: "Global node ID.",
					Resolve: func(p graphql.ResolveParams) (interface{}, error) {
						source, ok := p.Source.(connection.Row)
						if !ok {
							return nil, nil
						}
						return nodeid.Encode(m.Name, source[m.PrimaryKey]), nil
					},
				},
			}
			for _, f := range m.Fields {
				var fieldType graphql.Output = outputScalars[f.Scalar]
				if f.NonNull {
					fieldType = graphql.NewNonNull(fieldType)
				}
				fields[f.Name] = &graphql.Field{Type: fieldType, Description: f.Description}
			}
			for _, rel := range m.Relations {
				if field := r.relationField(m, rel); field != nil {
					fields[rel.Name] = field
				}
			}
			return fields
		}),
	})

	r.mu.Lock()
	if cached, ok := r.typeCache[m.Name]; ok {
		r.mu.Unlock()
		return cached
	}
	r.typeCache[m.Name] = objType
	r.mu.Unlock()

	return objType
}

// edgeType builds the Edge type of a model (cached per model).
func (r *Resolver) edgeType(m *catalog.Model) *graphql.Object {
	typeName := m.Name + "Edge"

	r.mu.RLock()
	if cached, ok := r.edgeCache[typeName]; ok {
		r.mu.RUnlock()
		return cached
	}
	r.mu.RUnlock()

	edgeType := graphql.NewObject(graphql.ObjectConfig{
		Name: typeName,
		Fields: graphql.Fields{
			"cursor": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"node":   &graphql.Field{Type: graphql.NewNonNull(r.objectType(m))},
		},
	})

	r.mu.Lock()
	if cached, ok := r.edgeCache[typeName]; ok {
		r.mu.Unlock()
		return cached
	}
	r.edgeCache[typeName] = edgeType
	r.mu.Unlock()

	return edgeType
}

// connectionType builds a connection type over m (cached per type name).
// Relation connections also expose total.
func (r *Resolver) connectionType(typeName string, m *catalog.Model, withTotal bool) *graphql.Object {
	r.mu.RLock()
	if cached, ok := r.connectionCache[typeName]; ok {
		r.mu.RUnlock()
		return cached
	}
	r.mu.RUnlock()

	fields := graphql.Fields{
		"edges": &graphql.Field{
			Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(r.edgeType(m)))),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				cr, ok := p.Source.(*connectionResult)
				if !ok {
					return nil, nil
				}
				return cr.edges(), nil
			},
		},
		"pageInfo": &graphql.Field{
			Type: graphql.NewNonNull(r.pageInfoTypeObject()),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				cr, ok := p.Source.(*connectionResult)
				if !ok {
					return nil, nil
				}
				return cr.pageInfo(), nil
			},
		},
		"count": &graphql.Field{
			Type:        graphql.NewNonNull(graphql.Int),
			Description: "Number of rows matching the filters, ignoring pagination.",
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				cr, ok := p.Source.(*connectionResult)
				if !ok {
					return 0, nil
				}
				return cr.conn.Count, nil
			},
		},
	}
	if withTotal {
		fields["total"] = &graphql.Field{
			Type:        graphql.NewNonNull(graphql.Int),
			Description: "Number of related rows, ignoring filters and pagination.",
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				cr, ok := p.Source.(*connectionResult)
				if !ok {
					return 0, nil
				}
				return cr.total()
			},
		}
	}

	connType := graphql.NewObject(graphql.ObjectConfig{
		Name:   typeName,
		Fields: fields,
	})

	r.mu.Lock()
	if cached, ok := r.connectionCache[typeName]; ok {
		r.mu.Unlock()
		return cached
	}
	r.connectionCache[typeName] = connType
	r.mu.Unlock()

	return connType
}

// whereInput builds <Model>WhereInput: one operator shape per filterable
// field, plus _and and _or over the input itself.
func (r *Resolver) whereInput(m *catalog.Model) (*graphql.InputObject, error) {
	typeName := m.Name + "WhereInput"

	r.mu.RLock()
	if cached, ok := r.whereCache[typeName]; ok {
		r.mu.RUnlock()
		return cached, nil
	}
	r.mu.RUnlock()

	shapes, err := m.WhereFields()
	if err != nil {
		return nil, err
	}
	fields := graphql.InputObjectConfigFieldMap{}
	for _, f := range m.FilterFields() {
		shape, err := r.registry.FilterInputShape(f.Scalar, shapes[f.Name])
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", m.Name, f.Name, err)
		}
		fields[f.Name] = &graphql.InputObjectFieldConfig{
			Type:        shape,
			Description: fmt.Sprintf("Conditions on %s.", f.Name),
		}
	}

	var input *graphql.InputObject
	input = graphql.NewInputObject(graphql.InputObjectConfig{
		Name:        typeName,
		Description: fmt.Sprintf("Filter over %s rows. Field conditions are combined with AND.", m.Name),
		Fields: graphql.InputObjectConfigFieldMapThunk(func() graphql.InputObjectConfigFieldMap {
			all := graphql.InputObjectConfigFieldMap{
				where.AndKey: &graphql.InputObjectFieldConfig{
					Type:        graphql.NewList(graphql.NewNonNull(input)),
					Description: "All of the filters must match.",
				},
				where.OrKey: &graphql.InputObjectFieldConfig{
					Type:        graphql.NewList(graphql.NewNonNull(input)),
					Description: "At least one of the filters must match.",
				},
			}
			for name, cfg := range fields {
				all[name] = cfg
			}
			return all
		}),
	})

	r.mu.Lock()
	if cached, ok := r.whereCache[typeName]; ok {
		r.mu.Unlock()
		return cached, nil
	}
	r.whereCache[typeName] = input
	r.mu.Unlock()

	return input, nil
}

// orderByScalar builds <Model>OrderBy accepting "field" and "-field" for
// every field of m.
func (r *Resolver) orderByScalar(m *catalog.Model) *graphql.Scalar {
	typeName := m.Name + "OrderBy"

	r.mu.RLock()
	if cached, ok := r.orderByCache[typeName]; ok {
		r.mu.RUnlock()
		return cached
	}
	r.mu.RUnlock()

	values := make([]scalars.EnumStringValue, 0, 2*len(m.Fields))
	for _, f := range m.Fields {
		values = append(values,
			scalars.EnumStringValue{Key: f.Name, Value: planner.OrderTerm{Field: f.Name}},
			scalars.EnumStringValue{Key: "-" + f.Name, Value: planner.OrderTerm{Field: f.Name, Desc: true}},
		)
	}
	scalar := scalars.EnumString(scalars.EnumStringConfig{Name: typeName, Values: values})

	r.mu.Lock()
	if cached, ok := r.orderByCache[typeName]; ok {
		r.mu.Unlock()
		return cached
	}
	r.orderByCache[typeName] = scalar
	r.mu.Unlock()

	return scalar
}
