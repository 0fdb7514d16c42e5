// Package planner validates connection arguments and builds the query
// descriptor a storage backend executes.
package planner

import "relay-graphql/internal/where"

// QueryDescriptor is a validated, backend-neutral connection query.
// Offset is never negative and Limit, when set, is positive.
type QueryDescriptor struct {
	// Collection names the model being queried.
	Collection string
	Limit      *int
	Offset     int
	Where      where.Node
	// Projection lists the fields to fetch, always-fetched fields first.
	Projection []string
	Joins      []JoinSpec
	OrderBy    []OrderTerm
	// Scope restricts rows to the children of one parent row.
	Scope *Scope
}

// HasLimit reports whether the descriptor bounds the page size.
func (d *QueryDescriptor) HasLimit() bool {
	return d.Limit != nil
}

// LimitValue returns the limit, or 0 when unbounded.
func (d *QueryDescriptor) LimitValue() int {
	if d.Limit == nil {
		return 0
	}
	return *d.Limit
}

// JoinSpec restricts rows to those with at least one related row matching
// Where. Related rows are never fetched, so Projection is empty.
type JoinSpec struct {
	RelationKey string
	Where       where.Node
	Projection  []string
}

// OrderTerm sorts by one field.
type OrderTerm struct {
	Field string
	Desc  bool
}

func (o OrderTerm) String() string {
	if o.Desc {
		return o.Field + " DESC"
	}
	return o.Field + " ASC"
}

// Scope selects the rows related to ParentID through Relation, a relation
// key declared on the parent model.
type Scope struct {
	ParentModel string
	Relation    string
	ParentID    interface{}
}
