// Package projection computes which columns a connection request needs
// from the fields the client selected.
package projection

import (
	"strings"

	"github.com/graphql-go/graphql/language/ast"
)

// NodePrefix is the path prefix of node fields inside a connection.
const NodePrefix = "edges.node."

// SelectedPaths flattens the selection sets of fields into dotted paths
// relative to those fields, including intermediate paths:
//
//	{ edges { node { firstName } } } -> edges, edges.node, edges.node.firstName
//
// Inline fragments and fragment spreads are expanded in place. Paths are
// returned in first-seen order without duplicates.
func SelectedPaths(fields []*ast.Field, fragments map[string]ast.Definition) []string {
	w := walker{fragments: fragments, seen: map[string]struct{}{}}
	for _, field := range fields {
		if field == nil || field.SelectionSet == nil {
			continue
		}
		w.visit(field.SelectionSet.Selections, "", map[string]bool{})
	}
	return w.paths
}

type walker struct {
	fragments map[string]ast.Definition
	seen      map[string]struct{}
	paths     []string
}

func (w *walker) add(path string) {
	if _, ok := w.seen[path]; ok {
		return
	}
	w.seen[path] = struct{}{}
	w.paths = append(w.paths, path)
}

// inFlight holds the fragment names being expanded on the current branch.
func (w *walker) visit(selections []ast.Selection, prefix string, inFlight map[string]bool) {
	for _, selection := range selections {
		switch sel := selection.(type) {
		case *ast.Field:
			if sel.Name == nil || sel.Name.Value == "__typename" {
				continue
			}
			path := prefix + sel.Name.Value
			w.add(path)
			if sel.SelectionSet != nil {
				w.visit(sel.SelectionSet.Selections, path+".", inFlight)
			}
		case *ast.InlineFragment:
			if sel.SelectionSet != nil {
				w.visit(sel.SelectionSet.Selections, prefix, inFlight)
			}
		case *ast.FragmentSpread:
			if w.fragments == nil || sel.Name == nil {
				continue
			}
			name := sel.Name.Value
			if inFlight[name] {
				continue
			}
			fragment, ok := w.fragments[name].(*ast.FragmentDefinition)
			if !ok || fragment.SelectionSet == nil {
				continue
			}
			inFlight[name] = true
			w.visit(fragment.SelectionSet.Selections, prefix, inFlight)
			delete(inFlight, name)
		}
	}
}

// Projection returns the columns to fetch for a connection: the always
// set first, then every requested node field present in whitelist.
// Fields outside the whitelist are never returned.
func Projection(paths, whitelist, always []string) []string {
	return Prefixed(paths, NodePrefix, whitelist, always)
}

// Prefixed is Projection for fields selected under an arbitrary prefix.
// An empty prefix selects top-level fields, as for a plain object field.
func Prefixed(paths []string, prefix string, whitelist, always []string) []string {
	allowed := make(map[string]struct{}, len(whitelist))
	for _, name := range whitelist {
		allowed[name] = struct{}{}
	}

	out := make([]string, 0, len(always)+len(paths))
	seen := make(map[string]struct{}, len(always)+len(paths))
	for _, name := range always {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	for _, path := range paths {
		if !strings.HasPrefix(path, prefix) {
			continue
		}
		name := path[len(prefix):]
		if name == "" || strings.Contains(name, ".") {
			continue
		}
		if _, ok := allowed[name]; !ok {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}
