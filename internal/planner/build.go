package planner

import (
	"math"
	"reflect"

	"relay-graphql/internal/apperrors"
	"relay-graphql/internal/cursor"
	"relay-graphql/internal/projection"
	"relay-graphql/internal/where"
)

// Connection argument names.
const (
	ArgFirst   = "first"
	ArgAfter   = "after"
	ArgLast    = "last"
	ArgBefore  = "before"
	ArgWhere   = "where"
	ArgOrderBy = "orderBy"
)

// Backward pagination is rejected outright; last is reported first.
var unsupportedArgs = []string{ArgLast, ArgBefore}

// defaultExclusive cannot fire while last and before are unsupported; it
// keeps the conflict reported if backward pagination is allowed. Callers
// add their own groups through Options.Exclusive.
var defaultExclusive = [][]string{
	{ArgFirst, ArgLast},
	{ArgAfter, ArgBefore},
}

// JoinDecl declares a relation filter argument. When Argument is present in
// the request, its filter is compiled against Fields and attached as a
// JoinSpec on RelationKey.
type JoinDecl struct {
	Argument    string
	RelationKey string
	Fields      where.Fields
}

// Options configures Build for one connection field.
type Options struct {
	Collection string
	// Fields are the filterable fields of the collection.
	Fields where.Fields
	Joins  []JoinDecl
	// Paths are the selected field paths relative to the connection field.
	Paths     []string
	Whitelist []string
	Always    []string
	// Unsupported lists arguments rejected in addition to last and before.
	Unsupported []string
	// Exclusive lists argument groups of which at most one may be set, in
	// addition to {first, last} and {after, before}.
	Exclusive [][]string
	// MaxFirst bounds first when positive.
	MaxFirst     int
	DefaultOrder []OrderTerm
	Scope        *Scope
}

// Build validates connection arguments and compiles them into a descriptor.
// Checks run in a fixed order: unsupported arguments, exclusive groups,
// the after cursor, first, where, then relation filters. No check touches
// storage.
func Build(args map[string]interface{}, opts Options) (*QueryDescriptor, error) {
	for _, name := range append(append([]string(nil), unsupportedArgs...), opts.Unsupported...) {
		if v, ok := args[name]; ok && v != nil {
			return nil, apperrors.UnsupportedArgument(name)
		}
	}
	for _, group := range append(append([][]string(nil), defaultExclusive...), opts.Exclusive...) {
		if err := validateOnlyOneSet(args, group); err != nil {
			return nil, err
		}
	}

	d := &QueryDescriptor{
		Collection: opts.Collection,
		Scope:      opts.Scope,
	}

	after, err := optionalString(args, ArgAfter)
	if err != nil {
		return nil, err
	}
	if d.Offset, err = cursor.OffsetAfter(ArgAfter, after); err != nil {
		return nil, err
	}

	if d.Limit, err = parseFirst(args, opts.MaxFirst); err != nil {
		return nil, err
	}

	if d.Where, err = where.Compile(args[ArgWhere], opts.Fields); err != nil {
		return nil, err
	}

	d.Projection = projection.Projection(opts.Paths, opts.Whitelist, opts.Always)

	for _, decl := range opts.Joins {
		raw, ok := args[decl.Argument]
		if !ok || raw == nil {
			continue
		}
		cond, err := where.Compile(raw, decl.Fields)
		if err != nil {
			return nil, err
		}
		d.Joins = append(d.Joins, JoinSpec{
			RelationKey: decl.RelationKey,
			Where:       cond,
			Projection:  []string{},
		})
	}

	if d.OrderBy, err = orderTerms(args[ArgOrderBy], opts.DefaultOrder); err != nil {
		return nil, err
	}
	return d, nil
}

func validateOnlyOneSet(args map[string]interface{}, group []string) error {
	set := 0
	for _, name := range group {
		if truthy(args[name]) {
			set++
		}
	}
	if set > 1 {
		return apperrors.MutuallyExclusiveArguments(group)
	}
	return nil
}

// truthy treats nil and zero scalar values as unset.
func truthy(v interface{}) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return !rv.IsZero()
	default:
		return true
	}
}

func optionalString(args map[string]interface{}, name string) (string, error) {
	raw, ok := args[name]
	if !ok || raw == nil {
		return "", nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", apperrors.InvalidArgument(name, raw, "expected a string")
	}
	return s, nil
}

func parseFirst(args map[string]interface{}, maxFirst int) (*int, error) {
	raw, ok := args[ArgFirst]
	if !ok || raw == nil {
		return nil, nil
	}
	var first int
	switch v := raw.(type) {
	case int:
		first = v
	case int32:
		first = int(v)
	case int64:
		if v > math.MaxInt32 {
			return nil, apperrors.InvalidArgument(ArgFirst, raw, "too large")
		}
		first = int(v)
	case float64:
		if v != math.Trunc(v) || v > math.MaxInt32 {
			return nil, apperrors.InvalidArgument(ArgFirst, raw, "expected an integer")
		}
		first = int(v)
	default:
		return nil, apperrors.InvalidArgument(ArgFirst, raw, "expected an integer")
	}
	if first <= 0 {
		return nil, apperrors.InvalidArgument(ArgFirst, raw, "must be positive")
	}
	if maxFirst > 0 && first > maxFirst {
		return nil, apperrors.InvalidArgument(ArgFirst, raw, "exceeds the maximum page size")
	}
	return &first, nil
}

// orderTerms applies the requested order, then appends the default terms
// not already used so the order is total. A scalar that rejected its
// literal leaves its error as the argument value.
func orderTerms(raw interface{}, defaults []OrderTerm) ([]OrderTerm, error) {
	var requested []OrderTerm
	switch v := raw.(type) {
	case OrderTerm:
		requested = []OrderTerm{v}
	case []OrderTerm:
		requested = v
	case error:
		return nil, v
	}
	out := make([]OrderTerm, 0, len(requested)+len(defaults))
	used := map[string]bool{}
	for _, term := range append(append([]OrderTerm(nil), requested...), defaults...) {
		if used[term.Field] {
			continue
		}
		used[term.Field] = true
		out = append(out, term)
	}
	return out, nil
}
