package serverapp

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"relay-graphql/internal/catalog"
	"relay-graphql/internal/config"
	"relay-graphql/internal/dbexec"
	"relay-graphql/internal/logging"
	"relay-graphql/internal/middleware"
	"relay-graphql/internal/observability"
	"relay-graphql/internal/resolver"
	"relay-graphql/internal/seed"
	"relay-graphql/internal/sqlstore"

	"github.com/XSAM/otelsql"
	_ "github.com/go-sql-driver/mysql"
	"github.com/graphql-go/graphql"
	"github.com/graphql-go/handler"
	_ "github.com/mattn/go-sqlite3"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// Routes served by the app.
const (
	graphqlPath = "/graphql"
	healthPath  = "/health"
	metricsPath = "/metrics"
)

func serviceConfig(cfg *config.Config) observability.Config {
	return observability.Config{
		ServiceName:      cfg.Observability.ServiceName,
		ServiceVersion:   cfg.Observability.ServiceVersion,
		Environment:      cfg.Observability.Environment,
		TraceSampleRatio: cfg.Observability.TraceSampleRatio,
	}
}

func exporterConfig(c config.OTLPConfig) observability.OTLPExporterConfig {
	return observability.OTLPExporterConfig{
		Endpoint:          c.Endpoint,
		Protocol:          c.Protocol,
		Insecure:          c.Insecure,
		TLSCertFile:       c.TLSCertFile,
		TLSClientCertFile: c.TLSClientCertFile,
		TLSClientKeyFile:  c.TLSClientKeyFile,
		Headers:           c.Headers,
		Timeout:           c.Timeout,
		Compression:       c.Compression,
		RetryEnabled:      c.RetryEnabled,
		RetryMaxAttempts:  c.RetryMaxAttempts,
	}
}

// InitLogger builds the process logger, fanning out to OTLP when log
// exports are enabled, and installs it as the slog default.
func InitLogger(cfg *config.Config) (*logging.Logger, *observability.LoggerProvider, error) {
	loggerCfg := logging.Config{
		Level:  cfg.Observability.Logging.Level,
		Format: cfg.Observability.Logging.Format,
	}
	logger := logging.NewLogger(loggerCfg)
	slog.SetDefault(logger.Logger)

	if !cfg.Observability.Logging.ExportsEnabled {
		return logger, nil, nil
	}

	logsConfig := cfg.Observability.GetLogsConfig()
	logger.Info("initializing OpenTelemetry logging",
		slog.String("service_name", cfg.Observability.ServiceName),
		slog.String("otlp_endpoint", logsConfig.Endpoint),
		slog.String("otlp_protocol", logsConfig.Protocol),
		slog.Bool("insecure", logsConfig.Insecure),
	)

	obsCfg := serviceConfig(cfg)
	obsCfg.OTLPConfig = exporterConfig(logsConfig)
	loggerProvider, err := observability.InitLoggerProvider(obsCfg)
	if err != nil {
		return nil, nil, err
	}

	loggerCfg.LoggerProvider = loggerProvider.Provider()
	logger = logging.NewLogger(loggerCfg)
	slog.SetDefault(logger.Logger)
	logger.Info("OpenTelemetry logging initialized successfully")

	return logger, loggerProvider, nil
}

func initMetrics(cfg *config.Config, logger *logging.Logger) (*observability.MeterProvider, *observability.Metrics, error) {
	if !cfg.Observability.MetricsEnabled {
		return nil, nil, nil
	}

	logger.Info("initializing OpenTelemetry metrics",
		slog.String("service_name", cfg.Observability.ServiceName),
		slog.String("service_version", cfg.Observability.ServiceVersion),
		slog.String("environment", cfg.Observability.Environment),
	)

	meterProvider, err := observability.InitMeterProvider(serviceConfig(cfg))
	if err != nil {
		return nil, nil, err
	}

	metrics, err := observability.InitMetrics(logger.Logger)
	if err != nil {
		_ = meterProvider.Shutdown(context.Background(), logger.Logger)
		return nil, nil, err
	}
	return meterProvider, metrics, nil
}

func initTracing(cfg *config.Config, logger *logging.Logger) (*observability.TracerProvider, error) {
	if !cfg.Observability.TracingEnabled {
		return nil, nil
	}

	tracesConfig := cfg.Observability.GetTracesConfig()
	logger.Info("initializing OpenTelemetry tracing",
		slog.String("service_name", cfg.Observability.ServiceName),
		slog.String("otlp_endpoint", tracesConfig.Endpoint),
		slog.String("otlp_protocol", tracesConfig.Protocol),
		slog.Float64("sample_ratio", cfg.Observability.TraceSampleRatio),
	)

	obsCfg := serviceConfig(cfg)
	obsCfg.OTLPConfig = exporterConfig(tracesConfig)
	tracerProvider, err := observability.InitTracerProvider(obsCfg)
	if err != nil {
		return nil, err
	}

	logger.Info("OpenTelemetry tracing initialized successfully")
	return tracerProvider, nil
}

func dbSystem(driver string) attribute.KeyValue {
	if driver == config.DriverSQLite {
		return semconv.DBSystemSqlite
	}
	return semconv.DBSystemMySQL
}

func connectDB(cfg *config.Config, logger *logging.Logger) (*sql.DB, interface{ Unregister() error }, error) {
	driver := cfg.Database.Driver
	if driver == "" {
		driver = config.DriverMySQL
	}

	// Custom TLS (verify-ca/verify-full) must be registered before the DSN is used.
	if err := cfg.Database.RegisterTLS(); err != nil {
		return nil, nil, fmt.Errorf("failed to register database TLS config: %w", err)
	}
	dsn, err := cfg.Database.DataSourceName()
	if err != nil {
		return nil, nil, err
	}

	obs := cfg.Observability
	if !obs.MetricsEnabled && !obs.TracingEnabled {
		db, err := sql.Open(driver, dsn)
		return db, nil, err
	}

	opts := []otelsql.Option{otelsql.WithAttributes(dbSystem(driver))}
	if obs.TracingEnabled {
		opts = append(opts, otelsql.WithSpanOptions(otelsql.SpanOptions{DisableErrSkip: true}))
	}
	switch {
	case obs.SQLCommenterEnabled && obs.TracingEnabled:
		opts = append(opts, otelsql.WithSQLCommenter(true))
		logger.Info("SQLCommenter enabled - trace context will be injected into SQL queries")
	case obs.SQLCommenterEnabled:
		logger.Warn("SQLCommenter requires tracing to be enabled - skipping SQLCommenter")
	}

	db, err := otelsql.Open(driver, dsn, opts...)
	if err != nil {
		return nil, nil, err
	}

	var dbStatsReg interface{ Unregister() error }
	if obs.MetricsEnabled {
		reg, err := otelsql.RegisterDBStatsMetrics(db, otelsql.WithAttributes(dbSystem(driver)))
		if err != nil {
			logger.Warn("failed to register DB stats metrics", slog.String("error", err.Error()))
		} else {
			dbStatsReg = reg
		}
	}

	logger.Info("database instrumentation enabled",
		slog.Bool("metrics", obs.MetricsEnabled),
		slog.Bool("tracing", obs.TracingEnabled),
		slog.Bool("sqlcommenter", obs.SQLCommenterEnabled && obs.TracingEnabled),
	)
	return db, dbStatsReg, nil
}

func configureDatabase(ctx context.Context, cfg *config.Config, logger *logging.Logger, db *sql.DB) error {
	pool := cfg.Database.Pool
	if cfg.Database.InMemory() {
		// Every connection to :memory: is a separate database.
		pool.MaxOpen, pool.MaxIdle, pool.MaxLifetime = 1, 1, 0
	}
	db.SetMaxOpenConns(pool.MaxOpen)
	db.SetMaxIdleConns(pool.MaxIdle)
	db.SetConnMaxLifetime(pool.MaxLifetime)

	if err := waitForDatabase(ctx, cfg, logger, db); err != nil {
		return err
	}

	logger.Info("connected to database",
		slog.String("driver", cfg.Database.Driver),
		slog.Int("pool_max_open", pool.MaxOpen),
		slog.Int("pool_max_idle", pool.MaxIdle),
		slog.Duration("pool_max_lifetime", pool.MaxLifetime),
	)
	return nil
}

// waitForDatabase pings until the database answers or the connection
// timeout passes, backing off exponentially up to 30s between attempts.
// A zero timeout tries once.
func waitForDatabase(ctx context.Context, cfg *config.Config, logger *logging.Logger, db *sql.DB) error {
	timeout := cfg.Database.ConnectionTimeout
	interval := cfg.Database.ConnectionRetryInterval
	if interval <= 0 {
		interval = time.Second
	}

	if timeout == 0 {
		return db.PingContext(ctx)
	}

	deadline := time.Now().Add(timeout)
	for attempt := 1; ; attempt++ {
		err := db.PingContext(ctx)
		if err == nil {
			if attempt > 1 {
				logger.Info("database connection established", slog.Int("attempts", attempt))
			}
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("database not available after %v: %w", timeout, err)
		}

		logger.Warn("database not ready, retrying...",
			slog.Int("attempt", attempt),
			slog.Duration("retry_in", interval),
			slog.String("error", err.Error()),
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
		interval = min(interval*2, 30*time.Second)
	}
}

func buildQueryExecutor(cfg *config.Config, db *sql.DB) dbexec.QueryExecutor {
	return dbexec.WithTimeout(dbexec.NewStandardExecutor(db), cfg.Database.QueryTimeout)
}

// prepareData creates the demo tables and tops up the demo rows when
// configured to.
func prepareData(ctx context.Context, cfg *config.Config, logger *logging.Logger, exec dbexec.QueryExecutor, cat *catalog.Catalog) error {
	dialect := cfg.Database.Driver
	if dialect == "" {
		dialect = seed.DialectMySQL
	}

	if cfg.Database.AutoMigrate {
		if err := seed.Migrate(ctx, exec, dialect); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
		logger.Info("database schema migrated", slog.String("dialect", dialect))
	}

	if !cfg.Seed.Enabled {
		return nil
	}
	result, err := seed.New(exec, cat, cfg.Seed.RandomSeed, logger.Logger).Seed(ctx, cfg.Seed.People)
	if err != nil {
		return fmt.Errorf("failed to seed database: %w", err)
	}
	logger.Info("database seeded",
		slog.Int("existing_people", result.Existing),
		slog.Int("people", result.People),
		slog.Int("posts", result.Posts),
		slog.Int("tags", result.Tags),
	)
	return nil
}

func buildSchema(cfg *config.Config, exec dbexec.QueryExecutor, cat *catalog.Catalog, metrics *observability.Metrics) (graphql.Schema, error) {
	var connectionMetrics *observability.ConnectionMetrics
	if metrics != nil {
		connectionMetrics = metrics.Connection
	}
	r := resolver.NewResolver(sqlstore.New(exec, cat), cat, resolver.Options{
		MaxFirst: cfg.Server.MaxFirst,
		Metrics:  connectionMetrics,
	})
	return r.BuildGraphQLSchema()
}

func oidcAuthConfig(cfg *config.Config) middleware.OIDCAuthConfig {
	return middleware.OIDCAuthConfig{
		Enabled:       cfg.Server.Auth.OIDCEnabled,
		IssuerURL:     cfg.Server.Auth.OIDCIssuerURL,
		Audience:      cfg.Server.Auth.OIDCAudience,
		ClockSkew:     cfg.Server.Auth.OIDCClockSkew,
		SkipTLSVerify: cfg.Server.Auth.OIDCSkipTLSVerify,
		CAFile:        cfg.Server.Auth.OIDCCAFile,
	}
}

// buildGraphQLHandler serves schema and wraps it, outermost first, as:
//
//	OIDC auth -> metrics -> tracing -> graphql
func buildGraphQLHandler(cfg *config.Config, logger *logging.Logger, schema *graphql.Schema, metrics *observability.Metrics) (http.Handler, error) {
	var h http.Handler = handler.New(&handler.Config{
		Schema:   schema,
		Pretty:   true,
		GraphiQL: cfg.Server.GraphiQLEnabled,
	})

	h = middleware.GraphQLTracingMiddleware()(h)

	var authMetrics *observability.AuthMetrics
	if metrics != nil {
		h = middleware.GraphQLMetricsMiddleware(metrics.GraphQL)(h)
		authMetrics = metrics.Auth
		logger.Info("GraphQL metrics middleware enabled")
	}

	if cfg.Server.Auth.OIDCEnabled {
		authMiddleware, err := middleware.OIDCAuthMiddleware(oidcAuthConfig(cfg), logger, authMetrics)
		if err != nil {
			return nil, err
		}
		h = authMiddleware(h)
		logger.Info("OIDC auth middleware enabled")
	}
	return h, nil
}

func buildRouter(cfg *config.Config, logger *logging.Logger, db *sql.DB, graphqlHandler http.Handler, meterProvider *observability.MeterProvider) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle(graphqlPath, graphqlHandler)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			http.Redirect(w, r, graphqlPath, http.StatusFound)
			return
		}
		http.NotFound(w, r)
	})
	mux.HandleFunc(healthPath, healthHandler(db, cfg.Server.HealthCheckTimeout))

	if meterProvider != nil {
		mux.Handle(metricsPath, promhttp.Handler())
		logger.Info("metrics endpoint enabled", slog.String("path", metricsPath))
	}
	return mux
}

// wrapHTTPHandler applies the transport-level middlewares. Logging runs
// outermost so every request, rejected or not, is logged with its ID.
func wrapHTTPHandler(cfg *config.Config, logger *logging.Logger, h http.Handler) http.Handler {
	if cfg.Observability.MetricsEnabled || cfg.Observability.TracingEnabled {
		h = otelhttp.NewHandler(h, "http.server",
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				return httpRootSpanName(r)
			}),
		)
		logger.Info("HTTP instrumentation enabled")
	}

	if cfg.Server.CORSEnabled {
		h = middleware.CORSMiddleware(middleware.CORSConfig{
			Enabled:          true,
			AllowedOrigins:   cfg.Server.CORSAllowedOrigins,
			AllowedMethods:   cfg.Server.CORSAllowedMethods,
			AllowedHeaders:   cfg.Server.CORSAllowedHeaders,
			ExposeHeaders:    cfg.Server.CORSExposeHeaders,
			AllowCredentials: cfg.Server.CORSAllowCredentials,
			MaxAge:           cfg.Server.CORSMaxAge,
		})(h)
	}

	return middleware.LoggingMiddleware(logger, healthPath, metricsPath)(h)
}

func httpRootSpanName(r *http.Request) string {
	if r == nil {
		return "HTTP /*"
	}
	method := strings.TrimSpace(r.Method)
	if method == "" {
		method = "HTTP"
	}
	return method + " " + normalizeHTTPSpanRoute(r.URL.Path)
}

func normalizeHTTPSpanRoute(rawPath string) string {
	switch rawPath {
	case "/", graphqlPath, healthPath, metricsPath:
		return rawPath
	default:
		return "/*"
	}
}

func buildServer(cfg *config.Config, h http.Handler, serverAddr string) *http.Server {
	return &http.Server{
		Addr:              serverAddr,
		Handler:           h,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}
}

func startServer(cfg *config.Config, logger *logging.Logger, srv *http.Server, serverAddr string) chan error {
	serverErrors := make(chan error, 1)
	tlsEnabled := cfg.Server.TLSEnabled()

	go func() {
		protocol := "http"
		if tlsEnabled {
			protocol = "https"
		}

		logAttrs := []any{
			slog.String("protocol", protocol),
			slog.String("address", serverAddr),
			slog.String("graphql_endpoint", graphqlPath),
			slog.String("health_endpoint", healthPath),
			slog.Bool("graphiql", cfg.Server.GraphiQLEnabled),
			slog.Int("max_first", cfg.Server.MaxFirst),
			slog.String("log_level", cfg.Observability.Logging.Level),
			slog.Bool("tls_enabled", tlsEnabled),
		}
		if cfg.Observability.MetricsEnabled {
			logAttrs = append(logAttrs, slog.String("metrics_endpoint", metricsPath))
		}
		logger.Info("server starting", logAttrs...)

		var err error
		if tlsEnabled {
			err = srv.ListenAndServeTLS(cfg.Server.TLSCertFile, cfg.Server.TLSKeyFile)
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			serverErrors <- fmt.Errorf("server failed: %w", err)
		}
	}()
	return serverErrors
}

// healthHandler returns an HTTP handler for health checks
func healthHandler(db *sql.DB, timeout time.Duration) http.HandlerFunc {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return func(w http.ResponseWriter, r *http.Request) {
		reqLogger := logging.FromContext(r.Context())
		w.Header().Set("Content-Type", "application/json")

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			reqLogger.Error("health check failed",
				slog.String("error", err.Error()),
				slog.String("check", "database"),
			)
			w.WriteHeader(http.StatusServiceUnavailable)
			// Generic body; the cause is only logged.
			_, _ = fmt.Fprint(w, `{"status":"unhealthy","database":"failed"}`)
			return
		}

		reqLogger.Debug("health check passed")
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprint(w, `{"status":"healthy","database":"ok"}`)
	}
}
