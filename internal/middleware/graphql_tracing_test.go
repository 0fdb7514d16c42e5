package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"relay-graphql/internal/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func setupTracing(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() {
		_ = provider.Shutdown(context.Background())
		otel.SetTracerProvider(previous)
	})
	return recorder
}

func spanAttributes(span sdktrace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	attrs := make(map[attribute.Key]attribute.Value)
	for _, kv := range span.Attributes() {
		attrs[kv.Key] = kv.Value
	}
	return attrs
}

func TestGraphQLTracingMiddleware_RecordsOperation(t *testing.T) {
	recorder := setupTracing(t)

	var inner *logging.Logger
	handler := GraphQLTracingMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		inner = logging.FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	body := `{"query":"query Page($first: Int) { people(first: $first) { edges { node { firstName } } } }","operationName":"Page"}`
	req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	require.NotNil(t, inner, "handler should see a request logger")
	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "graphql.execute", spans[0].Name())

	attrs := spanAttributes(spans[0])
	assert.Equal(t, "query", attrs["graphql.operation.type"].AsString())
	assert.Equal(t, "Page", attrs["graphql.operation.name"].AsString())
	assert.Equal(t, int64(4), attrs["graphql.document.field_count"].AsInt64())
	assert.Equal(t, int64(4), attrs["graphql.document.depth"].AsInt64())
	assert.Equal(t, int64(1), attrs["graphql.document.variable_count"].AsInt64())
	assert.Equal(t, codes.Unset, spans[0].Status().Code)
}

func TestGraphQLTracingMiddleware_ParseError(t *testing.T) {
	recorder := setupTracing(t)
	handler := GraphQLTracingMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))

	req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(`{"query":"{ people { "}`))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "unknown", spanAttributes(spans[0])["graphql.operation.type"].AsString())
}

func TestGraphQLTracingMiddleware_SkipsEmptyQuery(t *testing.T) {
	recorder := setupTracing(t)
	called := false
	handler := GraphQLTracingMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/graphql", nil))

	assert.True(t, called)
	assert.Empty(t, recorder.Ended())
}
