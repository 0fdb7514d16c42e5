package serverapp

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	"relay-graphql/internal/catalog"
	"relay-graphql/internal/config"
	"relay-graphql/internal/dbexec"
	"relay-graphql/internal/logging"
	"relay-graphql/internal/observability"
)

// bootstrap accumulates what Init acquires, in order, so a failed stage can
// release everything before it.
type bootstrap struct {
	cfg     *config.Config
	logger  *logging.Logger
	catalog *catalog.Catalog
	cleanup cleanupStack

	meterProvider *observability.MeterProvider
	metrics       *observability.Metrics
	db            *sql.DB
	exec          dbexec.QueryExecutor

	handler http.Handler
	addr    string
	srv     *http.Server
}

// Init connects the database, prepares the demo data and assembles the
// HTTP stack. Calling it again after a successful Init does nothing.
func (a *App) Init(ctx context.Context) error {
	a.stateMu.Lock()
	done := a.initialized
	a.stateMu.Unlock()
	if done {
		return nil
	}

	b := &bootstrap{cfg: a.cfg, logger: a.logger, catalog: a.catalog}
	if provider := a.loggerProvider; provider != nil {
		b.cleanup.push("logger provider", func(ctx context.Context) error {
			return provider.Shutdown(ctx, a.logger.Logger)
		})
	}

	stages := []func(context.Context) error{b.telemetry, b.database, b.demoData, b.routes}
	for _, stage := range stages {
		if err := stage(ctx); err != nil {
			_ = b.cleanup.run(context.Background(), a.logger)
			return err
		}
	}

	a.stateMu.Lock()
	a.handler = b.handler
	a.serverAddr = b.addr
	a.srv = b.srv
	a.cleanup = b.cleanup
	a.initialized = true
	a.stateMu.Unlock()
	return nil
}

func (b *bootstrap) telemetry(context.Context) error {
	meterProvider, metrics, err := initMetrics(b.cfg, b.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize OpenTelemetry metrics: %w", err)
	}
	if meterProvider != nil {
		b.cleanup.push("meter provider", func(ctx context.Context) error {
			return meterProvider.Shutdown(ctx, b.logger.Logger)
		})
	}
	b.meterProvider, b.metrics = meterProvider, metrics

	tracerProvider, err := initTracing(b.cfg, b.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize OpenTelemetry tracing: %w", err)
	}
	if tracerProvider != nil {
		b.cleanup.push("tracer provider", func(ctx context.Context) error {
			return tracerProvider.Shutdown(ctx, b.logger.Logger)
		})
	}
	return nil
}

func (b *bootstrap) database(ctx context.Context) error {
	b.logger.Info("connecting to database", databaseAttrs(&b.cfg.Database)...)

	db, statsReg, err := connectDB(b.cfg, b.logger)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	b.cleanup.push("database", func(context.Context) error {
		if statsReg != nil {
			if err := statsReg.Unregister(); err != nil {
				b.logger.Warn("failed to unregister DB stats metrics", slog.String("error", err.Error()))
			}
		}
		return db.Close()
	})

	if err := configureDatabase(ctx, b.cfg, b.logger, db); err != nil {
		return fmt.Errorf("failed to verify database connection: %w", err)
	}
	b.db = db
	b.exec = buildQueryExecutor(b.cfg, db)
	return nil
}

func (b *bootstrap) demoData(ctx context.Context) error {
	return prepareData(ctx, b.cfg, b.logger, b.exec, b.catalog)
}

func (b *bootstrap) routes(context.Context) error {
	schema, err := buildSchema(b.cfg, b.exec, b.catalog, b.metrics)
	if err != nil {
		return fmt.Errorf("failed to build GraphQL schema: %w", err)
	}
	graphqlHandler, err := buildGraphQLHandler(b.cfg, b.logger, &schema, b.metrics)
	if err != nil {
		return fmt.Errorf("failed to initialize GraphQL handler: %w", err)
	}

	mux := buildRouter(b.cfg, b.logger, b.db, graphqlHandler, b.meterProvider)
	b.handler = wrapHTTPHandler(b.cfg, b.logger, mux)
	b.addr = fmt.Sprintf(":%d", b.cfg.Server.Port)
	b.srv = buildServer(b.cfg, b.handler, b.addr)
	b.cleanup.push("HTTP server", b.srv.Shutdown)
	return nil
}
