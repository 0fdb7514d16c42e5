// Package where compiles GraphQL filter arguments into a backend-neutral
// condition tree.
//
// A filter is a mapping from field name (or the reserved keys _and/_or) to
// an operator mapping:
//
//	{age: {gt: 20, lt: 30}, _or: [{firstName: {like: "A%"}}, {email: {eq: "a@b.c"}}]}
//
// Compilation is purely structural; quoting and escaping belong to the
// storage layer.
package where

import (
	"reflect"
	"sort"

	"relay-graphql/internal/apperrors"
	"relay-graphql/internal/operators"
)

const (
	// AndKey combines nested filters with logical AND.
	AndKey = "_and"
	// OrKey combines nested filters with logical OR.
	OrKey = "_or"
)

// Node is a condition tree node: *FieldCondition, *And or *Or.
type Node interface {
	isNode()
}

// FieldCondition compares one field against a value. Value is a scalar,
// or a []interface{} for list and pair operators.
type FieldCondition struct {
	Field    string
	Operator operators.Kind
	Value    interface{}
}

// And is satisfied when every child is. An empty And matches all rows.
type And struct {
	Children []Node
}

// Or is satisfied when any child is. An empty Or matches no rows.
type Or struct {
	Children []Node
}

func (*FieldCondition) isNode() {}
func (*And) isNode()            {}
func (*Or) isNode()             {}

// Fields maps each filterable field to its registered operator set.
type Fields map[string]operators.Set

// IsEmpty reports whether n places no constraint on rows.
func IsEmpty(n Node) bool {
	if n == nil {
		return true
	}
	and, ok := n.(*And)
	return ok && len(and.Children) == 0
}

// Compile turns a filter argument into a condition tree. A nil or empty
// argument compiles to an empty And.
func Compile(arg interface{}, fields Fields) (*And, error) {
	c := compiler{fields: fields}
	return c.compile(arg, "where")
}

type compiler struct {
	fields Fields
}

func (c compiler) compile(arg interface{}, path string) (*And, error) {
	root := &And{Children: []Node{}}
	if arg == nil {
		return root, nil
	}
	filter, ok := arg.(map[string]interface{})
	if !ok {
		return nil, apperrors.InvalidArgument(path, arg, "expected an input object")
	}

	keys := make([]string, 0, len(filter))
	for key := range filter {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := filter[key]
		if value == nil && (key == AndKey || key == OrKey) {
			continue
		}
		switch key {
		case AndKey:
			nested, err := c.compileEach(value, path+"."+AndKey)
			if err != nil {
				return nil, err
			}
			for _, n := range nested {
				root.Children = append(root.Children, n.Children...)
			}
		case OrKey:
			nested, err := c.compileEach(value, path+"."+OrKey)
			if err != nil {
				return nil, err
			}
			or := &Or{Children: make([]Node, 0, len(nested))}
			for _, n := range nested {
				or.Children = append(or.Children, simplify(n))
			}
			root.Children = append(root.Children, or)
		default:
			conds, err := c.compileField(key, value, path)
			if err != nil {
				return nil, err
			}
			root.Children = append(root.Children, conds...)
		}
	}
	return root, nil
}

// compileEach accepts a single nested filter or a list of them.
func (c compiler) compileEach(value interface{}, path string) ([]*And, error) {
	items, ok := value.([]interface{})
	if !ok {
		items = []interface{}{value}
	}
	out := make([]*And, 0, len(items))
	for _, item := range items {
		n, err := c.compile(item, path)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func (c compiler) compileField(field string, value interface{}, path string) ([]Node, error) {
	allowed, ok := c.fields[field]
	if !ok {
		return nil, apperrors.UnknownField(field)
	}
	if value == nil {
		return nil, nil
	}
	opMap, ok := value.(map[string]interface{})
	if !ok {
		return nil, apperrors.InvalidArgument(path+"."+field, value, "expected an operator object")
	}

	names := make([]string, 0, len(opMap))
	for name := range opMap {
		names = append(names, name)
	}
	sort.Strings(names)

	present := make([]operators.Kind, 0, len(names))
	for _, name := range names {
		op, known := operators.Parse(name)
		if !known || !allowed.Has(op) {
			return nil, apperrors.UnknownOperator(field, name)
		}
		present = append(present, op)
	}

	conds := make([]Node, 0, len(present))
	for _, op := range operators.NewSet(present...) {
		v, err := checkValue(path+"."+field+"."+string(op), op, opMap[string(op)])
		if err != nil {
			return nil, err
		}
		conds = append(conds, &FieldCondition{Field: field, Operator: op, Value: v})
	}
	return conds, nil
}

func checkValue(arg string, op operators.Kind, v interface{}) (interface{}, error) {
	list, isList := asList(v)
	switch op.Arity() {
	case operators.List:
		if !isList {
			return nil, apperrors.InvalidArgument(arg, v, "expected a list")
		}
		return list, nil
	case operators.Pair:
		if !isList || len(list) != 2 {
			return nil, apperrors.InvalidArgument(arg, v, "expected a list of two values")
		}
		if list[0] == nil || list[1] == nil {
			return nil, apperrors.InvalidArgument(arg, v, "range bounds must not be null")
		}
		return list, nil
	default:
		if isList {
			return nil, apperrors.InvalidArgument(arg, v, "expected a single value")
		}
		if v == nil && op != operators.Eq && op != operators.Ne {
			return nil, apperrors.InvalidArgument(arg, v, "null is only valid for eq and ne")
		}
		return v, nil
	}
}

func asList(v interface{}) ([]interface{}, bool) {
	if v == nil {
		return nil, false
	}
	if list, ok := v.([]interface{}); ok {
		return list, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice {
		return nil, false
	}
	out := make([]interface{}, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// simplify unwraps an And holding a single child.
func simplify(n *And) Node {
	if len(n.Children) == 1 {
		return n.Children[0]
	}
	return n
}

// FieldNames returns the names of every field referenced by n, sorted.
func FieldNames(n Node) []string {
	seen := map[string]bool{}
	var walk func(Node)
	walk = func(n Node) {
		switch v := n.(type) {
		case *FieldCondition:
			seen[v.Field] = true
		case *And:
			for _, c := range v.Children {
				walk(c)
			}
		case *Or:
			for _, c := range v.Children {
				walk(c)
			}
		}
	}
	if n != nil {
		walk(n)
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
