// Package operators defines the closed set of filter comparison operators,
// the operators each scalar kind allows, and the GraphQL input shapes that
// expose an operator set to clients.
package operators

import (
	"fmt"
	"sort"

	"relay-graphql/internal/apperrors"
)

// Kind is a filter comparison operator.
type Kind string

const (
	Eq         Kind = "eq"
	Ne         Kind = "ne"
	Lt         Kind = "lt"
	Lte        Kind = "lte"
	Gt         Kind = "gt"
	Gte        Kind = "gte"
	In         Kind = "in"
	NotIn      Kind = "notIn"
	Between    Kind = "between"
	NotBetween Kind = "notBetween"
	Like       Kind = "like"
	ILike      Kind = "iLike"
	NotLike    Kind = "notLike"
	NotILike   Kind = "notILike"
)

// declaration order; compile output follows it
var kinds = []Kind{Eq, Ne, Lt, Lte, Gt, Gte, In, NotIn, Between, NotBetween, Like, ILike, NotLike, NotILike}

var rank = func() map[Kind]int {
	m := make(map[Kind]int, len(kinds))
	for i, k := range kinds {
		m[k] = i
	}
	return m
}()

// All returns every operator in declaration order.
func All() []Kind {
	return append([]Kind(nil), kinds...)
}

// Parse maps an operator name to its Kind.
func Parse(name string) (Kind, bool) {
	k := Kind(name)
	_, ok := rank[k]
	return k, ok
}

// Arity describes the value an operator expects.
type Arity int

const (
	// Single is one scalar value.
	Single Arity = iota
	// List is a sequence of scalar values.
	List
	// Pair is a sequence of exactly two scalar values.
	Pair
)

// Arity returns the value shape the operator expects.
func (k Kind) Arity() Arity {
	switch k {
	case In, NotIn:
		return List
	case Between, NotBetween:
		return Pair
	default:
		return Single
	}
}

// ScalarKind names the scalar type of a filterable field.
type ScalarKind string

const (
	Int     ScalarKind = "Int"
	String  ScalarKind = "String"
	Boolean ScalarKind = "Boolean"
)

var (
	equality = []Kind{Eq, Ne, In, NotIn}
	ordering = []Kind{Lt, Lte, Gt, Gte, Between, NotBetween}
	pattern  = []Kind{Like, ILike, NotLike, NotILike}
)

var applicable = map[ScalarKind][]Kind{
	Int:     concat(equality, ordering),
	String:  concat(equality, pattern),
	Boolean: equality,
}

// Boolean fields have applicable operators but no default set; they must
// be wired with an explicit subset.
var defaults = map[ScalarKind]Set{
	Int:    NewSet(applicable[Int]...),
	String: NewSet(applicable[String]...),
}

func concat(groups ...[]Kind) []Kind {
	var out []Kind
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

// Set is an ordered, duplicate-free operator set.
type Set []Kind

// NewSet returns the operators in declaration order without duplicates.
func NewSet(ops ...Kind) Set {
	seen := make(map[Kind]bool, len(ops))
	out := make(Set, 0, len(ops))
	for _, op := range ops {
		if seen[op] {
			continue
		}
		seen[op] = true
		out = append(out, op)
	}
	sort.Slice(out, func(i, j int) bool { return rank[out[i]] < rank[out[j]] })
	return out
}

// Has reports whether op is in the set.
func (s Set) Has(op Kind) bool {
	for _, k := range s {
		if k == op {
			return true
		}
	}
	return false
}

// Names returns the operator names sorted lexicographically.
func (s Set) Names() []string {
	names := make([]string, len(s))
	for i, k := range s {
		names[i] = string(k)
	}
	sort.Strings(names)
	return names
}

// Equal reports whether both sets contain the same operators.
func (s Set) Equal(other Set) bool {
	if len(s) != len(other) {
		return false
	}
	for _, k := range s {
		if !other.Has(k) {
			return false
		}
	}
	return true
}

// OperatorsFor returns the operator set for a scalar kind: the explicit
// subset when one is given, the kind's default set otherwise. Every
// operator of a subset must apply to the scalar kind.
func OperatorsFor(scalar ScalarKind, subset ...Kind) (Set, error) {
	if len(subset) == 0 {
		set, ok := defaults[scalar]
		if !ok {
			return nil, apperrors.UnsupportedScalarKind(string(scalar), "")
		}
		return append(Set(nil), set...), nil
	}
	allowed := Set(applicable[scalar])
	for _, op := range subset {
		if _, ok := rank[op]; !ok {
			return nil, apperrors.UnsupportedScalarKind(string(scalar), fmt.Sprintf("unknown operator %q", op))
		}
		if !allowed.Has(op) {
			return nil, apperrors.UnsupportedScalarKind(string(scalar), fmt.Sprintf("operator %q does not apply", op))
		}
	}
	return NewSet(subset...), nil
}

// DefaultSet returns the default operators of a scalar kind, if it has any.
func DefaultSet(scalar ScalarKind) (Set, bool) {
	set, ok := defaults[scalar]
	return set, ok
}
