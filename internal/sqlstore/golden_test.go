package sqlstore

import (
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"

	"relay-graphql/internal/catalog"
	"relay-graphql/internal/operators"
	"relay-graphql/internal/planner"
	"relay-graphql/internal/where"
)

func cond(field string, op operators.Kind, value interface{}) *where.FieldCondition {
	return &where.FieldCondition{Field: field, Operator: op, Value: value}
}

func and(children ...where.Node) *where.And {
	return &where.And{Children: children}
}

var byID = []planner.OrderTerm{{Field: catalog.PrimaryKeyField}}

func TestSelectQueryGolden(t *testing.T) {
	store := New(nil, catalog.Demo(nil))
	g := goldie.New(t, goldie.WithFixtureDir("testdata/golden"), goldie.WithNameSuffix(".golden"))

	tests := []struct {
		name  string
		d     *planner.QueryDescriptor
		count bool
	}{
		{
			name: "people_page",
			d: &planner.QueryDescriptor{
				Collection: catalog.Person,
				Limit:      intPtr(3),
				Offset:     4,
				Where:      and(cond("age", operators.Gt, 20), cond("age", operators.Lt, 30)),
				Projection: []string{"databaseId", "firstName"},
				OrderBy:    byID,
			},
		},
		{
			name: "people_count",
			d: &planner.QueryDescriptor{
				Collection: catalog.Person,
				Limit:      intPtr(3),
				Offset:     4,
				Where:      and(cond("age", operators.Gt, 20), cond("age", operators.Lt, 30)),
				Projection: []string{"databaseId", "firstName"},
				OrderBy:    byID,
			},
			count: true,
		},
		{
			name: "person_posts",
			d: &planner.QueryDescriptor{
				Collection: catalog.Post,
				Limit:      intPtr(2),
				Where:      and(cond("title", operators.Like, "%go%")),
				Projection: []string{"databaseId", "personId", "title"},
				OrderBy:    byID,
				Scope:      &planner.Scope{ParentModel: catalog.Person, Relation: "posts", ParentID: 7},
			},
		},
		{
			name: "people_where_post",
			d: &planner.QueryDescriptor{
				Collection: catalog.Person,
				Projection: []string{"databaseId"},
				Joins: []planner.JoinSpec{{
					RelationKey: "posts",
					Where:       and(cond("title", operators.Like, "%go%")),
				}},
				OrderBy: byID,
			},
		},
		{
			name: "post_tags",
			d: &planner.QueryDescriptor{
				Collection: catalog.Tag,
				Limit:      intPtr(4),
				Projection: []string{"databaseId", "name"},
				OrderBy:    byID,
				Scope:      &planner.Scope{ParentModel: catalog.Post, Relation: "tags", ParentID: 5},
			},
		},
		{
			name: "posts_where_tag_offset",
			d: &planner.QueryDescriptor{
				Collection: catalog.Post,
				Offset:     10,
				Projection: []string{"databaseId", "personId"},
				Joins: []planner.JoinSpec{{
					RelationKey: "tags",
					Where:       and(cond("name", operators.In, []interface{}{"go", "sql"})),
				}},
				OrderBy: byID,
			},
		},
		{
			name: "people_mixed_operators",
			d: &planner.QueryDescriptor{
				Collection: catalog.Person,
				Where: and(
					&where.Or{Children: []where.Node{
						and(cond("age", operators.Between, []interface{}{18, 30})),
						and(cond("firstName", operators.NotILike, "bob%")),
					}},
					cond("email", operators.Eq, nil),
					cond("lastName", operators.NotIn, []interface{}{"x", "y"}),
					cond("age", operators.Ne, 40),
				),
				Projection: []string{"databaseId", "email"},
				OrderBy:    []planner.OrderTerm{{Field: "age", Desc: true}, {Field: catalog.PrimaryKeyField}},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var (
				q   SQLQuery
				err error
			)
			if tt.count {
				q, err = store.CountQuery(tt.d)
			} else {
				q, err = store.SelectQuery(tt.d)
			}
			require.NoError(t, err)
			g.Assert(t, tt.name, []byte(fmt.Sprintf("%s\n-- args: %v\n", q.SQL, q.Args)))
		})
	}
}
