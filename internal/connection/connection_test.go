package connection

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relay-graphql/internal/apperrors"
	"relay-graphql/internal/cursor"
	"relay-graphql/internal/planner"
)

// tableExecutor pages over an in-memory table the way a storage backend would.
type tableExecutor struct {
	rows  []Row
	calls int
}

func (e *tableExecutor) Execute(_ context.Context, d *planner.QueryDescriptor) ([]Row, int, error) {
	e.calls++
	start := d.Offset
	if start > len(e.rows) {
		start = len(e.rows)
	}
	end := len(e.rows)
	if d.HasLimit() && start+d.LimitValue() < end {
		end = start + d.LimitValue()
	}
	return e.rows[start:end], len(e.rows), nil
}

func tenRows() []Row {
	rows := make([]Row, 10)
	for i := range rows {
		rows[i] = Row{"databaseId": int64(i + 1)}
	}
	return rows
}

func TestAssemble_FirstAfter(t *testing.T) {
	d, err := planner.Build(map[string]interface{}{
		"first": 3,
		"after": cursor.Encode(3),
	}, planner.Options{Collection: "Person"})
	require.NoError(t, err)
	require.Equal(t, 4, d.Offset)
	require.Equal(t, 3, d.LimitValue())

	exec := &tableExecutor{rows: tenRows()}
	conn, err := Assemble(context.Background(), d, exec)
	require.NoError(t, err)

	assert.Equal(t, 1, exec.calls)
	require.Len(t, conn.Edges, 3)
	assert.Equal(t, 10, conn.Count)
	assert.True(t, conn.PageInfo.HasNextPage)
	assert.True(t, conn.PageInfo.HasPreviousPage)
	for i, edge := range conn.Edges {
		assert.Equal(t, cursor.Encode(4+i), edge.Cursor)
		assert.Equal(t, int64(5+i), edge.Node["databaseId"])
	}
	require.NotNil(t, conn.PageInfo.StartCursor)
	require.NotNil(t, conn.PageInfo.EndCursor)
	assert.Equal(t, cursor.Encode(4), *conn.PageInfo.StartCursor)
	assert.Equal(t, cursor.Encode(6), *conn.PageInfo.EndCursor)
	assert.Equal(t, []Row{{"databaseId": int64(5)}, {"databaseId": int64(6)}, {"databaseId": int64(7)}}, conn.Nodes())
}

func TestAssemble_PagesChain(t *testing.T) {
	exec := &tableExecutor{rows: tenRows()}
	var seen []interface{}
	after := ""
	for page := 0; page < 10; page++ {
		args := map[string]interface{}{"first": 4}
		if after != "" {
			args["after"] = after
		}
		d, err := planner.Build(args, planner.Options{})
		require.NoError(t, err)
		conn, err := Assemble(context.Background(), d, exec)
		require.NoError(t, err)
		for _, node := range conn.Nodes() {
			seen = append(seen, node["databaseId"])
		}
		if !conn.PageInfo.HasNextPage {
			break
		}
		after = *conn.PageInfo.EndCursor
	}
	require.Len(t, seen, 10)
	for i, id := range seen {
		assert.Equal(t, int64(i+1), id)
	}
}

func TestAssemble_LastPage(t *testing.T) {
	limit := 5
	d := &planner.QueryDescriptor{Offset: 8, Limit: &limit}
	conn, err := Assemble(context.Background(), d, &tableExecutor{rows: tenRows()})
	require.NoError(t, err)
	assert.Len(t, conn.Edges, 2)
	assert.False(t, conn.PageInfo.HasNextPage)
	assert.True(t, conn.PageInfo.HasPreviousPage)
	assert.Equal(t, 10, conn.Count)
}

func TestAssemble_Empty(t *testing.T) {
	d := &planner.QueryDescriptor{}
	conn, err := Assemble(context.Background(), d, &tableExecutor{})
	require.NoError(t, err)
	assert.Empty(t, conn.Edges)
	assert.Nil(t, conn.PageInfo.StartCursor)
	assert.Nil(t, conn.PageInfo.EndCursor)
	assert.False(t, conn.PageInfo.HasNextPage)
	assert.False(t, conn.PageInfo.HasPreviousPage)
	assert.Equal(t, 0, conn.Count)
}

func TestBuild_TruncatesToLimit(t *testing.T) {
	limit := 2
	conn := Build(&planner.QueryDescriptor{Limit: &limit}, tenRows(), 10)
	assert.Len(t, conn.Edges, 2)
	assert.True(t, conn.PageInfo.HasNextPage)
}

func TestAssemble_StorageFailure(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	calls := 0
	exec := ExecutorFunc(func(context.Context, *planner.QueryDescriptor) ([]Row, int, error) {
		calls++
		return nil, 0, cause
	})

	_, err := Assemble(context.Background(), &planner.QueryDescriptor{}, exec)
	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.True(t, apperrors.IsKind(err, apperrors.KindStorageFailure))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, cause.Error(), err.Error())
}
