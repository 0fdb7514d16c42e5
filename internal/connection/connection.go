// Package connection executes a query descriptor and shapes the page into a
// Relay connection.
package connection

import (
	"context"

	"relay-graphql/internal/apperrors"
	"relay-graphql/internal/cursor"
	"relay-graphql/internal/planner"
)

// Row is one fetched record keyed by field name.
type Row = map[string]interface{}

// Executor runs a descriptor. It returns the page of rows and the number of
// rows matching the descriptor's filters with pagination ignored.
type Executor interface {
	Execute(ctx context.Context, d *planner.QueryDescriptor) ([]Row, int, error)
}

// ExecutorFunc adapts a function to Executor.
type ExecutorFunc func(ctx context.Context, d *planner.QueryDescriptor) ([]Row, int, error)

func (f ExecutorFunc) Execute(ctx context.Context, d *planner.QueryDescriptor) ([]Row, int, error) {
	return f(ctx, d)
}

// Edge pairs a row with the cursor of its position.
type Edge struct {
	Cursor string
	Node   Row
}

// PageInfo describes the page's position in the full result set.
// StartCursor and EndCursor are nil for an empty page.
type PageInfo struct {
	HasNextPage     bool
	HasPreviousPage bool
	StartCursor     *string
	EndCursor       *string
}

// Connection is one page of a result set.
type Connection struct {
	Edges    []Edge
	PageInfo PageInfo
	// Count is the number of rows matching the filters, ignoring pagination.
	Count int
}

// Assemble executes d once and builds its connection. Storage errors are
// returned as StorageFailure and never retried.
func Assemble(ctx context.Context, d *planner.QueryDescriptor, exec Executor) (*Connection, error) {
	rows, total, err := exec.Execute(ctx, d)
	if err != nil {
		if apperrors.IsKind(err, apperrors.KindStorageFailure) {
			return nil, err
		}
		return nil, apperrors.StorageFailure(err)
	}
	return Build(d, rows, total), nil
}

// Build shapes rows fetched for d into a connection. Rows beyond the
// descriptor's limit are dropped.
func Build(d *planner.QueryDescriptor, rows []Row, total int) *Connection {
	if d.HasLimit() && len(rows) > d.LimitValue() {
		rows = rows[:d.LimitValue()]
	}

	conn := &Connection{
		Edges: make([]Edge, len(rows)),
		Count: total,
	}
	for i, row := range rows {
		conn.Edges[i] = Edge{Cursor: cursor.Encode(d.Offset + i), Node: row}
	}

	conn.PageInfo.HasNextPage = d.Offset+len(rows) < total
	conn.PageInfo.HasPreviousPage = d.Offset > 0
	if len(conn.Edges) > 0 {
		start := conn.Edges[0].Cursor
		end := conn.Edges[len(conn.Edges)-1].Cursor
		conn.PageInfo.StartCursor = &start
		conn.PageInfo.EndCursor = &end
	}
	return conn
}

// Nodes returns the rows of the connection in edge order.
func (c *Connection) Nodes() []Row {
	nodes := make([]Row, len(c.Edges))
	for i, edge := range c.Edges {
		nodes[i] = edge.Node
	}
	return nodes
}
