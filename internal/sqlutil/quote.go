// Package sqlutil provides SQL identifier helpers shared by the query
// builders. Backtick quoting is accepted by both MySQL and SQLite.
package sqlutil

import "strings"

// QuoteIdentifier quotes a SQL identifier (table name, column name, etc.)
// with backticks and escapes any backticks within the identifier.
func QuoteIdentifier(name string) string {
	escaped := strings.ReplaceAll(name, "`", "``")
	return "`" + escaped + "`"
}

// QualifiedIdentifier quotes table.column. An empty table yields the bare
// quoted column.
func QualifiedIdentifier(table, column string) string {
	if table == "" {
		return QuoteIdentifier(column)
	}
	return QuoteIdentifier(table) + "." + QuoteIdentifier(column)
}

// QuoteIdentifiers quotes each name, optionally qualified by table.
func QuoteIdentifiers(table string, names []string) []string {
	out := make([]string, len(names))
	for i, name := range names {
		out[i] = QualifiedIdentifier(table, name)
	}
	return out
}
