package resolver

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"relay-graphql/internal/apperrors"
	"relay-graphql/internal/planner"
)

func startResolverSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if ctx == nil {
		ctx = context.Background()
	}
	tracer := otel.Tracer("relay-graphql/resolver")
	ctx, span := tracer.Start(ctx, name)
	if len(attrs) > 0 {
		span.SetAttributes(attrs...)
	}
	return ctx, span
}

func finishResolverSpan(span trace.Span, err error, outcome string) {
	if span == nil {
		return
	}
	if outcome == "" {
		if err != nil {
			outcome = "error"
		} else {
			outcome = "success"
		}
	}
	span.SetAttributes(attribute.String("graphql.resolver.outcome", outcome))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// outcomeFor separates rejected requests from failures.
func outcomeFor(err error) string {
	switch kind := apperrors.KindOf(err); {
	case err == nil:
		return "success"
	case kind != "" && kind.Client():
		return "rejected"
	default:
		return "error"
	}
}

func setDescriptorAttributes(span trace.Span, d *planner.QueryDescriptor) {
	if !span.IsRecording() {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.Int("graphql.connection.offset", d.Offset),
		attribute.Int("graphql.connection.projection", len(d.Projection)),
		attribute.Int("graphql.connection.joins", len(d.Joins)),
	}
	if d.HasLimit() {
		attrs = append(attrs, attribute.Int("graphql.connection.limit", d.LimitValue()))
	}
	span.SetAttributes(attrs...)
}
