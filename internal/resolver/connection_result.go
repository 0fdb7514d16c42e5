package resolver

import (
	"context"
	"log/slog"
	"sync"

	"github.com/graphql-go/graphql"
	"go.opentelemetry.io/otel/attribute"

	"relay-graphql/internal/apperrors"
	"relay-graphql/internal/catalog"
	"relay-graphql/internal/connection"
	"relay-graphql/internal/logging"
	"relay-graphql/internal/nodeid"
	"relay-graphql/internal/planner"
	"relay-graphql/internal/projection"
)

// relationScope marks a connection nested under a parent row.
type relationScope struct {
	parent   *catalog.Model
	relation string
}

// connectionResult is the source value of connection fields.
type connectionResult struct {
	conn       *connection.Connection
	collection string
	scope      *planner.Scope
	store      Store
	ctx        context.Context

	// totalVal is lazily computed
	totalVal *int
	totalMu  sync.Mutex
}

func (cr *connectionResult) edges() []map[string]interface{} {
	out := make([]map[string]interface{}, len(cr.conn.Edges))
	for i, edge := range cr.conn.Edges {
		out[i] = map[string]interface{}{
			"cursor": edge.Cursor,
			"node":   edge.Node,
		}
	}
	return out
}

func (cr *connectionResult) pageInfo() map[string]interface{} {
	info := cr.conn.PageInfo
	out := map[string]interface{}{
		"hasNextPage":     info.HasNextPage,
		"hasPreviousPage": info.HasPreviousPage,
		"startCursor":     nil,
		"endCursor":       nil,
	}
	if info.StartCursor != nil {
		out["startCursor"] = *info.StartCursor
	}
	if info.EndCursor != nil {
		out["endCursor"] = *info.EndCursor
	}
	return out
}

// total counts the rows related to the scope's parent, ignoring filters.
func (cr *connectionResult) total() (int, error) {
	cr.totalMu.Lock()
	defer cr.totalMu.Unlock()

	if cr.totalVal != nil {
		return *cr.totalVal, nil
	}
	if cr.scope == nil {
		return cr.conn.Count, nil
	}
	count, err := cr.store.Count(cr.ctx, &planner.QueryDescriptor{
		Collection: cr.collection,
		Scope:      cr.scope,
	})
	if err != nil {
		return 0, apperrors.StorageFailure(err)
	}
	cr.totalVal = &count
	return count, nil
}

func (r *Resolver) buildOptions(m *catalog.Model, scope *relationScope, p graphql.ResolveParams) (planner.Options, error) {
	fields, err := m.WhereFields()
	if err != nil {
		return planner.Options{}, err
	}
	opts := planner.Options{
		Collection:   m.Name,
		Fields:       fields,
		Paths:        projection.SelectedPaths(p.Info.FieldASTs, p.Info.Fragments),
		Whitelist:    m.Whitelist(),
		Always:       m.Always,
		MaxFirst:     r.maxFirst,
		DefaultOrder: []planner.OrderTerm{{Field: m.PrimaryKey}},
	}
	for _, rel := range m.Relations {
		if rel.FilterArgument == "" {
			continue
		}
		target, _, err := r.catalog.Target(m, rel.Name)
		if err != nil {
			return planner.Options{}, err
		}
		targetFields, err := target.WhereFields()
		if err != nil {
			return planner.Options{}, err
		}
		opts.Joins = append(opts.Joins, planner.JoinDecl{
			Argument:    rel.FilterArgument,
			RelationKey: rel.Name,
			Fields:      targetFields,
		})
	}
	if scope != nil {
		source, ok := p.Source.(connection.Row)
		if !ok {
			return planner.Options{}, apperrors.InvalidArgument(scope.relation, p.Source, "missing parent row")
		}
		opts.Scope = &planner.Scope{
			ParentModel: scope.parent.Name,
			Relation:    scope.relation,
			ParentID:    source[scope.parent.PrimaryKey],
		}
	}
	return opts, nil
}

// makeConnectionResolver resolves a connection over m. Validation errors
// are returned before the store is called; the store is called once.
func (r *Resolver) makeConnectionResolver(m *catalog.Model, scope *relationScope) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (result interface{}, err error) {
		ctx, span := startResolverSpan(p.Context, "graphql.connection",
			attribute.String("graphql.connection.collection", m.Name),
			attribute.String("graphql.field.name", p.Info.FieldName),
		)
		defer func() {
			finishResolverSpan(span, err, outcomeFor(err))
			span.End()
		}()
		logger := logging.FromContext(ctx)

		opts, err := r.buildOptions(m, scope, p)
		if err != nil {
			return nil, err
		}
		d, err := planner.Build(p.Args, opts)
		if err != nil {
			r.metrics.RecordRejection(ctx, m.Name, string(apperrors.KindOf(err)))
			logger.Debug("connection arguments rejected",
				slog.String("collection", m.Name),
				slog.String("kind", string(apperrors.KindOf(err))),
				slog.String("error", err.Error()),
			)
			return nil, err
		}
		setDescriptorAttributes(span, d)

		conn, err := connection.Assemble(ctx, d, r.store)
		if err != nil {
			r.metrics.RecordStorageFailure(ctx, m.Name)
			logger.Error("connection query failed",
				slog.String("collection", m.Name),
				slog.String("error", err.Error()),
			)
			return nil, err
		}
		r.metrics.RecordPage(ctx, m.Name, len(conn.Edges))

		return &connectionResult{
			conn:       conn,
			collection: m.Name,
			scope:      d.Scope,
			store:      r.store,
			ctx:        ctx,
		}, nil
	}
}

func (r *Resolver) findByID(p graphql.ResolveParams, m *catalog.Model, id interface{}) (interface{}, error) {
	ctx, span := startResolverSpan(p.Context, "graphql.lookup",
		attribute.String("graphql.connection.collection", m.Name),
	)
	defer span.End()

	paths := projection.SelectedPaths(p.Info.FieldASTs, p.Info.Fragments)
	fields := projection.Prefixed(paths, "", m.Whitelist(), m.Always)
	row, err := r.store.FindByID(ctx, m.Name, id, fields)
	if err != nil {
		err = apperrors.StorageFailure(err)
		finishResolverSpan(span, err, "")
		logging.FromContext(ctx).Error("lookup failed",
			slog.String("collection", m.Name),
			slog.String("error", err.Error()),
		)
		return nil, err
	}
	finishResolverSpan(span, nil, "")
	if row == nil {
		return nil, nil
	}
	return row, nil
}

func (r *Resolver) nodeField() *graphql.Field {
	return &graphql.Field{
		Type:        r.nodeInterfaceType(),
		Description: "Fetches an object given its global ID.",
		Args: graphql.FieldConfigArgument{
			"id": &graphql.ArgumentConfig{
				Type:        graphql.NewNonNull(graphql.ID),
				Description: "The global ID of an object.",
			},
		},
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			raw, _ := p.Args["id"].(string)
			typeName, id, err := nodeid.DecodeInt(raw)
			if err != nil {
				return nil, apperrors.InvalidArgument("id", raw, err.Error())
			}
			m, ok := r.catalog.Model(typeName)
			if !ok {
				return nil, apperrors.InvalidArgument("id", raw, "unknown type "+typeName)
			}
			return r.findByID(p, m, id)
		},
	}
}
