package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// AuthMetrics counts bearer token authentication outcomes.
// A nil *AuthMetrics records nothing.
type AuthMetrics struct {
	attempts         metric.Int64Counter
	failures         metric.Int64Counter
	successes        metric.Int64Counter
	validationErrors metric.Int64Counter
}

func InitAuthMetrics() (*AuthMetrics, error) {
	meter := otel.Meter(meterName + "/auth")

	attempts, err := meter.Int64Counter(
		"auth.attempts.total",
		metric.WithDescription("Total number of authentication attempts"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth attempts counter: %w", err)
	}

	failures, err := meter.Int64Counter(
		"auth.failures.total",
		metric.WithDescription("Total number of authentication failures"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth failures counter: %w", err)
	}

	successes, err := meter.Int64Counter(
		"auth.successes.total",
		metric.WithDescription("Total number of successful authentications"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth successes counter: %w", err)
	}

	validationErrors, err := meter.Int64Counter(
		"auth.token.validation_errors.total",
		metric.WithDescription("Total number of token validation errors"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create token validation errors counter: %w", err)
	}

	return &AuthMetrics{
		attempts:         attempts,
		failures:         failures,
		successes:        successes,
		validationErrors: validationErrors,
	}, nil
}

func (m *AuthMetrics) RecordAttempt(ctx context.Context, endpoint string) {
	if m == nil {
		return
	}
	m.attempts.Add(ctx, 1, metric.WithAttributes(attribute.String("endpoint", endpoint)))
}

func (m *AuthMetrics) RecordFailure(ctx context.Context, endpoint, reason string) {
	if m == nil {
		return
	}
	m.failures.Add(ctx, 1, metric.WithAttributes(
		attribute.String("endpoint", endpoint),
		attribute.String("reason", reason),
	))
}

func (m *AuthMetrics) RecordSuccess(ctx context.Context, endpoint, issuer string) {
	if m == nil {
		return
	}
	m.successes.Add(ctx, 1, metric.WithAttributes(
		attribute.String("endpoint", endpoint),
		attribute.String("issuer", issuer),
	))
}

func (m *AuthMetrics) RecordTokenValidationError(ctx context.Context, errorType string) {
	if m == nil {
		return
	}
	m.validationErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("error_type", errorType)))
}
