package observability

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "relay-graphql"

// GraphQLMetrics holds request-level instruments for the GraphQL endpoint.
type GraphQLMetrics struct {
	requestDuration metric.Float64Histogram
	requestCounter  metric.Int64Counter
	errorCounter    metric.Int64Counter
	activeRequests  metric.Int64UpDownCounter
	queryDepth      metric.Int64Histogram
}

// InitGraphQLMetrics creates the request instruments on the global meter.
func InitGraphQLMetrics() (*GraphQLMetrics, error) {
	meter := otel.Meter(meterName)

	requestDuration, err := meter.Float64Histogram(
		"graphql.request.duration",
		metric.WithDescription("Duration of GraphQL requests in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create request duration histogram: %w", err)
	}

	requestCounter, err := meter.Int64Counter(
		"graphql.requests.total",
		metric.WithDescription("Total number of GraphQL requests"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create request counter: %w", err)
	}

	errorCounter, err := meter.Int64Counter(
		"graphql.errors.total",
		metric.WithDescription("Total number of GraphQL requests that returned errors"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create error counter: %w", err)
	}

	activeRequests, err := meter.Int64UpDownCounter(
		"graphql.requests.active",
		metric.WithDescription("Number of active GraphQL requests"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create active requests counter: %w", err)
	}

	queryDepth, err := meter.Int64Histogram(
		"graphql.query.depth",
		metric.WithDescription("Selection depth of GraphQL operations"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create query depth histogram: %w", err)
	}

	return &GraphQLMetrics{
		requestDuration: requestDuration,
		requestCounter:  requestCounter,
		errorCounter:    errorCounter,
		activeRequests:  activeRequests,
		queryDepth:      queryDepth,
	}, nil
}

// RecordRequest records a GraphQL request with its duration and outcome.
func (m *GraphQLMetrics) RecordRequest(ctx context.Context, duration time.Duration, hasErrors bool, operationType string) {
	attrs := metric.WithAttributes(
		attribute.String("operation_type", operationType),
		attribute.Bool("has_errors", hasErrors),
	)
	m.requestDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
	m.requestCounter.Add(ctx, 1, attrs)
	if hasErrors {
		m.errorCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("operation_type", operationType)))
	}
}

func (m *GraphQLMetrics) RecordQueryDepth(ctx context.Context, depth int64, operationType string) {
	m.queryDepth.Record(ctx, depth, metric.WithAttributes(
		attribute.String("operation_type", operationType),
	))
}

func (m *GraphQLMetrics) IncrementActiveRequests(ctx context.Context) {
	m.activeRequests.Add(ctx, 1)
}

func (m *GraphQLMetrics) DecrementActiveRequests(ctx context.Context) {
	m.activeRequests.Add(ctx, -1)
}

// ConnectionMetrics holds instruments for connection field resolution.
// A nil *ConnectionMetrics records nothing.
type ConnectionMetrics struct {
	pageSize        metric.Int64Histogram
	rejections      metric.Int64Counter
	storageFailures metric.Int64Counter
}

// InitConnectionMetrics creates the connection instruments on the global meter.
func InitConnectionMetrics() (*ConnectionMetrics, error) {
	meter := otel.Meter(meterName)

	pageSize, err := meter.Int64Histogram(
		"graphql.connection.page_size",
		metric.WithDescription("Number of edges returned per connection page"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create page size histogram: %w", err)
	}

	rejections, err := meter.Int64Counter(
		"graphql.connection.rejections.total",
		metric.WithDescription("Connection queries rejected before reaching storage"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create rejection counter: %w", err)
	}

	storageFailures, err := meter.Int64Counter(
		"graphql.connection.storage_failures.total",
		metric.WithDescription("Connection queries that failed in storage"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage failure counter: %w", err)
	}

	return &ConnectionMetrics{
		pageSize:        pageSize,
		rejections:      rejections,
		storageFailures: storageFailures,
	}, nil
}

func (m *ConnectionMetrics) RecordPage(ctx context.Context, collection string, edges int) {
	if m == nil {
		return
	}
	m.pageSize.Record(ctx, int64(edges), metric.WithAttributes(
		attribute.String("collection", collection),
	))
}

// RecordRejection counts a client error by its kind.
func (m *ConnectionMetrics) RecordRejection(ctx context.Context, collection, kind string) {
	if m == nil {
		return
	}
	m.rejections.Add(ctx, 1, metric.WithAttributes(
		attribute.String("collection", collection),
		attribute.String("kind", kind),
	))
}

func (m *ConnectionMetrics) RecordStorageFailure(ctx context.Context, collection string) {
	if m == nil {
		return
	}
	m.storageFailures.Add(ctx, 1, metric.WithAttributes(
		attribute.String("collection", collection),
	))
}

// Metrics bundles every custom instrument of the server.
type Metrics struct {
	GraphQL    *GraphQLMetrics
	Connection *ConnectionMetrics
	Auth       *AuthMetrics
}

// InitMetrics creates all custom instruments.
func InitMetrics(logger *slog.Logger) (*Metrics, error) {
	graphqlMetrics, err := InitGraphQLMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize GraphQL metrics: %w", err)
	}
	connectionMetrics, err := InitConnectionMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize connection metrics: %w", err)
	}
	authMetrics, err := InitAuthMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize auth metrics: %w", err)
	}

	logger.Info("custom metrics initialized")
	return &Metrics{
		GraphQL:    graphqlMetrics,
		Connection: connectionMetrics,
		Auth:       authMetrics,
	}, nil
}
