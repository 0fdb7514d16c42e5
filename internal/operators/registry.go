package operators

import (
	"strings"
	"sync"

	"github.com/graphql-go/graphql"

	"relay-graphql/internal/apperrors"
	"relay-graphql/internal/naming"
)

// Registry builds and caches filter input shapes. Shapes are created on
// first use per (scalar kind, operator set) and never replaced, so every
// caller asking for the same key gets the same *graphql.InputObject.
type Registry struct {
	shapes sync.Map // shapeKey -> *graphql.InputObject
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

var defaultRegistry = NewRegistry()

// Default returns the process-wide registry.
func Default() *Registry {
	return defaultRegistry
}

var scalarTypes = map[ScalarKind]*graphql.Scalar{
	Int:     graphql.Int,
	String:  graphql.String,
	Boolean: graphql.Boolean,
}

// FilterInputShape returns the input object with one field per operator.
// Comparison operators take a scalar; in/notIn take a list; between and
// notBetween take a list of two values.
func (r *Registry) FilterInputShape(scalar ScalarKind, ops Set) (*graphql.InputObject, error) {
	key := shapeKey(scalar, ops)
	if cached, ok := r.shapes.Load(key); ok {
		return cached.(*graphql.InputObject), nil
	}

	scalarType, ok := scalarTypes[scalar]
	if !ok {
		return nil, apperrors.UnsupportedScalarKind(string(scalar), "no GraphQL scalar type")
	}
	if len(ops) == 0 {
		return nil, apperrors.UnsupportedScalarKind(string(scalar), "empty operator set")
	}

	fields := graphql.InputObjectConfigFieldMap{}
	for _, op := range NewSet(ops...) {
		var fieldType graphql.Input = scalarType
		if op.Arity() != Single {
			fieldType = graphql.NewList(graphql.NewNonNull(scalarType))
		}
		fields[string(op)] = &graphql.InputObjectFieldConfig{
			Type:        fieldType,
			Description: operatorDescription(op),
		}
	}

	shape := graphql.NewInputObject(graphql.InputObjectConfig{
		Name:   ShapeName(scalar, ops),
		Fields: fields,
	})
	actual, _ := r.shapes.LoadOrStore(key, shape)
	return actual.(*graphql.InputObject), nil
}

// ShapeName names the input type for an operator set:
// Operators<Scalar>Input for the scalar's default set, and
// Operators<Scalar><SortedOps>Input for any other subset.
// Example: (String, {in, eq}) -> "OperatorsStringEqInInput"
func ShapeName(scalar ScalarKind, ops Set) string {
	if def, ok := defaults[scalar]; ok && def.Equal(ops) {
		return "Operators" + string(scalar) + "Input"
	}
	var b strings.Builder
	b.WriteString("Operators")
	b.WriteString(string(scalar))
	for _, name := range ops.Names() {
		b.WriteString(naming.UpperFirst(name))
	}
	b.WriteString("Input")
	return b.String()
}

func shapeKey(scalar ScalarKind, ops Set) string {
	return string(scalar) + ":" + strings.Join(ops.Names(), ",")
}

func operatorDescription(op Kind) string {
	switch op {
	case Eq:
		return "Equal to the value; null matches missing values."
	case Ne:
		return "Not equal to the value."
	case Lt:
		return "Less than the value."
	case Lte:
		return "Less than or equal to the value."
	case Gt:
		return "Greater than the value."
	case Gte:
		return "Greater than or equal to the value."
	case In:
		return "Equal to one of the values."
	case NotIn:
		return "Equal to none of the values."
	case Between:
		return "Within the inclusive range [low, high]."
	case NotBetween:
		return "Outside the inclusive range [low, high]."
	case Like:
		return "Matches the SQL LIKE pattern."
	case ILike:
		return "Matches the SQL LIKE pattern, ignoring case."
	case NotLike:
		return "Does not match the SQL LIKE pattern."
	case NotILike:
		return "Does not match the SQL LIKE pattern, ignoring case."
	default:
		return ""
	}
}
