package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"relay-graphql/internal/logging"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "relay-graphql/graphql"

// GraphQLTracingMiddleware wraps GraphQL execution in a graphql.execute span
// and adds the trace and span IDs to the request logger.
func GraphQLTracingMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			info, r := graphQLRequestInfo(r)
			if strings.TrimSpace(info.query) == "" {
				next.ServeHTTP(w, r)
				return
			}

			ctx, span := otel.Tracer(tracerName).Start(r.Context(), "graphql.execute",
				trace.WithSpanKind(trace.SpanKindInternal),
			)
			defer span.End()

			if spanCtx := span.SpanContext(); spanCtx.IsValid() {
				reqLogger := logging.FromContext(ctx).WithFields(
					slog.String("trace_id", spanCtx.TraceID().String()),
					slog.String("span_id", spanCtx.SpanID().String()),
				)
				ctx = logging.WithLogger(ctx, reqLogger)
			}

			if span.IsRecording() {
				span.SetAttributes(requestSpanAttributes(info)...)
				if info.parseErr != nil {
					span.RecordError(info.parseErr)
					span.SetStatus(codes.Error, "graphql parse error")
				}
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func requestSpanAttributes(info *requestInfo) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("graphql.operation.type", info.operationType()),
	}
	if info.operationName != "" {
		attrs = append(attrs, attribute.String("graphql.operation.name", info.operationName))
	}
	if m := info.metadata; m != nil {
		attrs = append(attrs,
			attribute.Int("graphql.document.field_count", m.fieldCount),
			attribute.Int("graphql.document.depth", m.selectionDepth),
			attribute.Int("graphql.document.variable_count", m.variableCount),
		)
	}
	return attrs
}
