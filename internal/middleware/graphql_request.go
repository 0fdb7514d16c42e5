package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/graphql-go/graphql/language/ast"
	"github.com/graphql-go/graphql/language/parser"
	"github.com/graphql-go/graphql/language/source"
)

const unknownOperation = "unknown"

type graphQLEnvelope struct {
	Query         string `json:"query"`
	OperationName string `json:"operationName"`
}

type queryMetadata struct {
	operationType  string
	fieldCount     int
	selectionDepth int
	variableCount  int
}

// requestInfo is the parsed view of one GraphQL request, shared by the
// metrics and tracing middlewares so the body is parsed once.
type requestInfo struct {
	query         string
	operationName string
	metadata      *queryMetadata
	parseErr      error
}

func (i *requestInfo) operationType() string {
	if i == nil || i.metadata == nil || strings.TrimSpace(i.metadata.operationType) == "" {
		return unknownOperation
	}
	return i.metadata.operationType
}

type requestInfoKey struct{}

// graphQLRequestInfo returns the request's parsed GraphQL info, parsing it
// on first use and caching it on the returned request's context.
func graphQLRequestInfo(r *http.Request) (*requestInfo, *http.Request) {
	if info, ok := r.Context().Value(requestInfoKey{}).(*requestInfo); ok {
		return info, r
	}
	query, operationName := extractGraphQLRequest(r)
	info := &requestInfo{query: query, operationName: operationName}
	info.metadata, info.parseErr = extractQueryMetadata(query, operationName)
	return info, r.WithContext(context.WithValue(r.Context(), requestInfoKey{}, info))
}

func extractGraphQLRequest(r *http.Request) (string, string) {
	if r.Method == http.MethodGet {
		return r.URL.Query().Get("query"), r.URL.Query().Get("operationName")
	}
	if r.Method != http.MethodPost || r.Body == nil {
		return "", ""
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return "", ""
	}
	r.Body = io.NopCloser(bytes.NewReader(body))

	if strings.Contains(r.Header.Get("Content-Type"), "application/graphql") {
		return string(body), ""
	}

	var payload graphQLEnvelope
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", ""
	}
	return payload.Query, payload.OperationName
}

// extractQueryMetadata parses query and describes the operation that would
// run. It returns nil metadata when there is nothing to run.
func extractQueryMetadata(query, operationName string) (*queryMetadata, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}

	doc, err := parser.Parse(parser.ParseParams{
		Source: source.NewSource(&source.Source{
			Body: []byte(query),
			Name: "GraphQL request",
		}),
	})
	if err != nil {
		return nil, err
	}

	fragments := make(map[string]*ast.FragmentDefinition)
	var operations []*ast.OperationDefinition
	for _, def := range doc.Definitions {
		switch d := def.(type) {
		case *ast.FragmentDefinition:
			fragments[d.Name.Value] = d
		case *ast.OperationDefinition:
			operations = append(operations, d)
		}
	}

	op := selectOperation(operations, operationName)
	if op == nil {
		return nil, nil
	}

	metadata := &queryMetadata{
		operationType: string(op.Operation),
		variableCount: len(op.VariableDefinitions),
	}
	if op.SelectionSet != nil {
		metadata.fieldCount, metadata.selectionDepth = countFieldsAndDepth(op.SelectionSet, fragments, 1, map[string]bool{}, map[string]bool{})
	}
	return metadata, nil
}

// selectOperation picks the named operation, or the only one when no name
// is given.
func selectOperation(operations []*ast.OperationDefinition, name string) *ast.OperationDefinition {
	if name == "" {
		if len(operations) == 0 {
			return nil
		}
		return operations[0]
	}
	for _, op := range operations {
		if op.Name != nil && op.Name.Value == name {
			return op
		}
	}
	return nil
}

func countFieldsAndDepth(selectionSet *ast.SelectionSet, fragments map[string]*ast.FragmentDefinition, currentDepth int, visited, inFlight map[string]bool) (fields, maxDepth int) {
	if selectionSet == nil {
		return 0, currentDepth - 1
	}

	maxDepth = currentDepth
	merge := func(set *ast.SelectionSet, depth int) {
		nestedFields, nestedDepth := countFieldsAndDepth(set, fragments, depth, visited, inFlight)
		fields += nestedFields
		if nestedDepth > maxDepth {
			maxDepth = nestedDepth
		}
	}

	for _, selection := range selectionSet.Selections {
		switch sel := selection.(type) {
		case *ast.Field:
			fields++
			if sel.SelectionSet != nil {
				merge(sel.SelectionSet, currentDepth+1)
			}
		case *ast.InlineFragment:
			if sel.SelectionSet != nil {
				merge(sel.SelectionSet, currentDepth)
			}
		case *ast.FragmentSpread:
			name := sel.Name.Value
			// Each fragment is expanded at most once per operation.
			if inFlight[name] || visited[name] {
				continue
			}
			inFlight[name] = true
			visited[name] = true
			if frag, ok := fragments[name]; ok && frag.SelectionSet != nil {
				merge(frag.SelectionSet, currentDepth)
			}
			delete(inFlight, name)
		}
	}
	return fields, maxDepth
}
