package operators

import (
	"sync"
	"testing"

	"github.com/graphql-go/graphql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relay-graphql/internal/apperrors"
)

func TestOperatorsFor_Defaults(t *testing.T) {
	ints, err := OperatorsFor(Int)
	require.NoError(t, err)
	assert.Equal(t, Set{Eq, Ne, Lt, Lte, Gt, Gte, In, NotIn, Between, NotBetween}, ints)

	strs, err := OperatorsFor(String)
	require.NoError(t, err)
	assert.Equal(t, Set{Eq, Ne, In, NotIn, Like, ILike, NotLike, NotILike}, strs)
}

func TestOperatorsFor_Subset(t *testing.T) {
	set, err := OperatorsFor(String, In, Eq, In)
	require.NoError(t, err)
	assert.Equal(t, Set{Eq, In}, set)

	set, err = OperatorsFor(Boolean, Eq)
	require.NoError(t, err)
	assert.Equal(t, Set{Eq}, set)
}

func TestOperatorsFor_Errors(t *testing.T) {
	tests := []struct {
		name   string
		scalar ScalarKind
		subset []Kind
	}{
		{"no default", Boolean, nil},
		{"unknown scalar", ScalarKind("Float"), nil},
		{"not applicable", String, []Kind{Between}},
		{"pattern on int", Int, []Kind{Like}},
		{"unknown operator", Int, []Kind{Kind("regexp")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := OperatorsFor(tt.scalar, tt.subset...)
			if !apperrors.IsKind(err, apperrors.KindUnsupportedScalarKind) {
				t.Fatalf("expected UnsupportedScalarKind, got %v", err)
			}
		})
	}
}

func TestParse(t *testing.T) {
	k, ok := Parse("notILike")
	assert.True(t, ok)
	assert.Equal(t, NotILike, k)
	_, ok = Parse("regexp")
	assert.False(t, ok)
	assert.Len(t, All(), 14)
}

func TestShapeName(t *testing.T) {
	ints, _ := OperatorsFor(Int)
	assert.Equal(t, "OperatorsIntInput", ShapeName(Int, ints))
	assert.Equal(t, "OperatorsStringEqInInput", ShapeName(String, NewSet(In, Eq)))
	assert.Equal(t, "OperatorsStringILikeLikeInput", ShapeName(String, NewSet(Like, ILike)))
	// an explicit subset equal to the default set shares its name
	assert.Equal(t, "OperatorsStringInput", ShapeName(String, NewSet(NotILike, NotLike, ILike, Like, NotIn, In, Ne, Eq)))
}

func TestFilterInputShape_Fields(t *testing.T) {
	r := NewRegistry()
	shape, err := r.FilterInputShape(Int, NewSet(Eq, In, Between))
	require.NoError(t, err)
	assert.Equal(t, "OperatorsIntBetweenEqInInput", shape.Name())

	fields := shape.Fields()
	require.Len(t, fields, 3)
	assert.Equal(t, graphql.Int, fields["eq"].Type)
	assert.Equal(t, "[Int!]", fields["in"].Type.String())
	assert.Equal(t, "[Int!]", fields["between"].Type.String())
}

func TestFilterInputShape_Memoized(t *testing.T) {
	r := NewRegistry()
	first, err := r.FilterInputShape(String, NewSet(Eq, In))
	require.NoError(t, err)
	second, err := r.FilterInputShape(String, NewSet(In, Eq))
	require.NoError(t, err)
	assert.Same(t, first, second)

	other, err := r.FilterInputShape(Int, NewSet(Eq, In))
	require.NoError(t, err)
	assert.NotSame(t, first, other)
}

func TestFilterInputShape_ConcurrentFirstUse(t *testing.T) {
	r := NewRegistry()
	ops, _ := OperatorsFor(String)

	const workers = 16
	results := make([]*graphql.InputObject, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			shape, err := r.FilterInputShape(String, ops)
			if err != nil {
				t.Errorf("FilterInputShape: %v", err)
				return
			}
			results[i] = shape
		}(i)
	}
	wg.Wait()

	for i := 1; i < workers; i++ {
		assert.Same(t, results[0], results[i])
	}
}

func TestFilterInputShape_Errors(t *testing.T) {
	r := NewRegistry()
	_, err := r.FilterInputShape(String, nil)
	assert.True(t, apperrors.IsKind(err, apperrors.KindUnsupportedScalarKind))
	_, err = r.FilterInputShape(ScalarKind("Float"), NewSet(Eq))
	assert.True(t, apperrors.IsKind(err, apperrors.KindUnsupportedScalarKind))
}
