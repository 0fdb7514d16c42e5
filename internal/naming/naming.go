// Package naming derives SQL table and column names from GraphQL model and
// field names, and builds the names of generated GraphQL types.
package naming

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Namer converts between GraphQL and SQL naming conventions.
type Namer struct {
	config Config
}

// New creates a Namer. A zero Config uses plain inflection.
func New(cfg Config) *Namer {
	return &Namer{config: cfg}
}

// Default returns a Namer without overrides.
func Default() *Namer {
	return &Namer{}
}

// TableName converts a model name to its table name.
// Example: "Person" -> "people", "BlogPost" -> "blog_posts"
func (n *Namer) TableName(modelName string) string {
	snake := ToSnakeCase(modelName)
	parts := strings.Split(snake, "_")
	parts[len(parts)-1] = n.plural(parts[len(parts)-1])
	return strings.Join(parts, "_")
}

// ColumnName converts a GraphQL field name to its column name.
// Example: "firstName" -> "first_name"
func (n *Namer) ColumnName(fieldName string) string {
	return ToSnakeCase(fieldName)
}

// ForeignKey returns the column referencing a model's primary key.
// Example: "Person" -> "person_id"
func (n *Namer) ForeignKey(modelName string) string {
	return ToSnakeCase(modelName) + "_id"
}

// JoinTableName returns the join table for a many-to-many relation, made of
// both singular model names in alphabetical order.
// Example: ("Tag", "Post") -> "post_tag"
func (n *Namer) JoinTableName(left, right string) string {
	names := []string{ToSnakeCase(left), ToSnakeCase(right)}
	sort.Strings(names)
	return names[0] + "_" + names[1]
}

// ConnectionTypeName names the connection type of a relation field.
// Example: ("Person", "posts") -> "PersonPostsConnection"
func (n *Namer) ConnectionTypeName(modelName, fieldName string) string {
	return modelName + UpperFirst(fieldName) + "Connection"
}

// UpperFirst capitalizes the first letter of a camelCase identifier and
// leaves the rest untouched. Example: "notIn" -> "NotIn"
func UpperFirst(s string) string {
	// A Caser is stateful and must not be shared between goroutines.
	return cases.Title(language.Und, cases.NoLower).String(s)
}

// ToSnakeCase converts camelCase or PascalCase to snake_case.
// Runs of capitals are kept together: "HTTPServer" -> "http_server".
func ToSnakeCase(s string) string {
	runes := []rune(s)
	var b strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 {
				prevLower := unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1])
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if prevLower || (nextLower && unicode.IsUpper(runes[i-1])) {
					b.WriteByte('_')
				}
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ToCamelCase converts snake_case to camelCase
func ToCamelCase(s string) string {
	parts := strings.Split(s, "_")
	for i := 1; i < len(parts); i++ {
		parts[i] = UpperFirst(parts[i])
	}
	return strings.Join(parts, "")
}

// IsReservedTypeName reports whether name cannot be used for a generated type.
func IsReservedTypeName(name string) bool {
	lower := strings.ToLower(name)
	if strings.HasPrefix(lower, "__") {
		return true
	}
	switch lower {
	case "query", "mutation", "subscription", "int", "float", "string", "boolean", "id":
		return true
	}
	return false
}
