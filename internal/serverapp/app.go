package serverapp

import (
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"relay-graphql/internal/catalog"
	"relay-graphql/internal/config"
	"relay-graphql/internal/logging"
	"relay-graphql/internal/observability"
)

// App owns runtime resources for the relay-graphql server lifecycle.
type App struct {
	cfg     *config.Config
	logger  *logging.Logger
	catalog *catalog.Catalog

	loggerProvider *observability.LoggerProvider

	stateMu      sync.Mutex
	initialized  bool
	started      bool
	handler      http.Handler
	serverAddr   string
	srv          *http.Server
	serverErrors chan error
	cleanup      cleanupStack

	shutdownOnce sync.Once
	shutdownErr  error
}

// New creates an App lifecycle wrapper.
func New(cfg *config.Config, logger *logging.Logger) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if _, err := cfg.Database.DataSourceName(); err != nil {
		return nil, fmt.Errorf("failed to resolve database configuration: %w", err)
	}

	return &App{
		cfg:     cfg,
		logger:  logger,
		catalog: catalog.Demo(nil),
	}, nil
}

// AttachLoggerProvider registers an optional logger provider for shutdown cleanup.
func (a *App) AttachLoggerProvider(provider *observability.LoggerProvider) {
	a.stateMu.Lock()
	defer a.stateMu.Unlock()
	a.loggerProvider = provider
}

// Handler returns the fully wrapped HTTP handler. It is nil before Init.
func (a *App) Handler() http.Handler {
	a.stateMu.Lock()
	defer a.stateMu.Unlock()
	return a.handler
}

// databaseAttrs describes the configured database without secrets.
func databaseAttrs(cfg *config.DatabaseConfig) []any {
	if cfg.Driver == config.DriverSQLite {
		return []any{
			slog.String("driver", cfg.Driver),
			slog.String("path", cfg.Path),
		}
	}
	return []any{
		slog.String("driver", config.DriverMySQL),
		slog.String("host", cfg.Host),
		slog.Int("port", cfg.Port),
		slog.String("database", cfg.Database),
		slog.Bool("dsn_present", cfg.ConnectionString != ""),
	}
}
