// Package scalars holds custom GraphQL scalars.
package scalars

import (
	"fmt"
	"strings"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/language/ast"

	"relay-graphql/internal/apperrors"
)

// EnumStringValue maps one accepted input string to the value handed to
// resolvers.
type EnumStringValue struct {
	Key   string
	Value interface{}
}

// EnumStringConfig configures EnumString.
type EnumStringConfig struct {
	Name        string
	Description string
	Values      []EnumStringValue
}

// EnumString returns a string scalar accepting only the configured keys.
//
// graphql-go discards the reason a literal fails to parse, so a rejected
// input parses to an *apperrors.Error of kind InvalidArgument instead of
// nil. Resolvers must treat an error-valued argument as the failure.
func EnumString(cfg EnumStringConfig) *graphql.Scalar {
	keys := make([]string, len(cfg.Values))
	values := make(map[string]interface{}, len(cfg.Values))
	for i, v := range cfg.Values {
		keys[i] = v.Key
		values[v.Key] = v.Value
	}
	available := strings.Join(keys, ", ")

	description := cfg.Description
	if description == "" {
		description = "String which is either of the following values: " + available
	}

	notString := func(kind string, value interface{}) interface{} {
		return &apperrors.Error{
			Kind:    apperrors.KindInvalidArgument,
			Value:   value,
			Message: "Query error: Can only parse strings got a: " + kind,
		}
	}
	parse := func(s string) interface{} {
		v, ok := values[s]
		if !ok {
			return &apperrors.Error{
				Kind:    apperrors.KindInvalidArgument,
				Value:   s,
				Message: fmt.Sprintf("Query error: Invalid value '%s', needs to be either of: %s", s, available),
			}
		}
		return v
	}

	return graphql.NewScalar(graphql.ScalarConfig{
		Name:        cfg.Name,
		Description: description,
		Serialize: func(value interface{}) interface{} {
			return value
		},
		ParseValue: func(value interface{}) interface{} {
			s, ok := value.(string)
			if !ok {
				return notString(fmt.Sprintf("%T", value), value)
			}
			return parse(s)
		},
		ParseLiteral: func(valueAST ast.Value) interface{} {
			sv, ok := valueAST.(*ast.StringValue)
			if !ok {
				return notString(valueAST.GetKind(), valueAST.GetValue())
			}
			return parse(sv.Value)
		},
	})
}
