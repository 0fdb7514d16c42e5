package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"strings"
)

// ValidationError represents a configuration validation error with context.
type ValidationError struct {
	Field   string
	Message string
	Hint    string
}

func (e ValidationError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("%s: %s (hint: %s)", e.Field, e.Message, e.Hint)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Field   string
	Message string
	Hint    string
}

// ValidationResult contains the results of configuration validation.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationWarning
}

// HasErrors returns true if there are any validation errors.
func (r *ValidationResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// Error returns a combined error message if there are validation errors.
func (r *ValidationResult) Error() string {
	if !r.HasErrors() {
		return ""
	}
	var msgs []string
	for _, e := range r.Errors {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "; ")
}

// Report logs every warning and error and returns a non-nil error when
// any validation error was found.
func (r *ValidationResult) Report(logger *slog.Logger) error {
	for _, w := range r.Warnings {
		logger.Warn("configuration warning",
			slog.String("field", w.Field),
			slog.String("message", w.Message),
			slog.String("hint", w.Hint),
		)
	}
	if !r.HasErrors() {
		return nil
	}
	for _, e := range r.Errors {
		logger.Error("configuration error",
			slog.String("field", e.Field),
			slog.String("message", e.Message),
			slog.String("hint", e.Hint),
		)
	}
	return errors.New("configuration validation failed: " + r.Error())
}

func (r *ValidationResult) addError(field, message, hint string) {
	r.Errors = append(r.Errors, ValidationError{Field: field, Message: message, Hint: hint})
}

func (r *ValidationResult) addWarning(field, message, hint string) {
	r.Warnings = append(r.Warnings, ValidationWarning{Field: field, Message: message, Hint: hint})
}

// Validate checks the configuration for errors and returns validation results.
// It returns both errors (fatal) and warnings (non-fatal issues).
func (c *Config) Validate() *ValidationResult {
	result := &ValidationResult{}

	c.Database.validate(result)
	c.Server.validate(result)
	c.Observability.validate(result)
	c.Seed.validate(result, c.Database.AutoMigrate)

	return result
}

func (d *DatabaseConfig) validate(result *ValidationResult) {
	switch d.Driver {
	case DriverMySQL:
		d.validateMySQL(result)
	case DriverSQLite:
		if strings.TrimSpace(d.Path) == "" {
			result.addError("database.path", "path is required for the sqlite3 driver",
				`use a file path or ":memory:"`)
		}
		if d.Pool.MaxOpen != 1 && d.InMemory() {
			result.addWarning("database.pool.max_open", "in-memory databases are limited to one connection",
				"use a file path to allow a larger pool")
		}
	default:
		result.addError("database.driver", fmt.Sprintf("unsupported driver %q", d.Driver),
			"valid values are: mysql, sqlite3")
	}

	if d.Pool.MaxOpen < 0 {
		result.addError("database.pool.max_open", "max_open cannot be negative", "")
	}
	if d.Pool.MaxIdle < 0 {
		result.addError("database.pool.max_idle", "max_idle cannot be negative", "")
	}
	if d.Pool.MaxIdle > d.Pool.MaxOpen && d.Pool.MaxOpen > 0 {
		result.addWarning("database.pool.max_idle", "max_idle is greater than max_open",
			"idle connections will be limited to max_open")
	}

	if d.QueryTimeout < 0 {
		result.addError("database.query_timeout", "query_timeout cannot be negative", "")
	}
	if d.ConnectionTimeout < 0 {
		result.addError("database.connection_timeout", "connection_timeout cannot be negative", "")
	}
	if d.ConnectionRetryInterval < 0 {
		result.addError("database.connection_retry_interval", "connection_retry_interval cannot be negative", "")
	}
	if d.ConnectionTimeout > 0 && d.ConnectionRetryInterval == 0 {
		result.addError("database.connection_retry_interval",
			"connection_retry_interval must be greater than 0 when connection_timeout is set",
			"set a retry interval such as 2s, or set connection_timeout to 0 to disable retries")
	}
	if d.ConnectionTimeout > 0 && d.ConnectionRetryInterval > d.ConnectionTimeout {
		result.addWarning("database.connection_retry_interval",
			"connection_retry_interval is greater than connection_timeout",
			"only one connection attempt will be made")
	}
}

func (d *DatabaseConfig) validateMySQL(result *ValidationResult) {
	if d.ConnectionString != "" {
		if _, err := d.DSN(); err != nil {
			result.addError("database.dsn", err.Error(), "use user:pass@tcp(host:port)/db")
		}
	} else {
		if d.Port < 1 || d.Port > 65535 {
			result.addError("database.port", fmt.Sprintf("port %d is out of valid range (1-65535)", d.Port), "")
		}
		if strings.TrimSpace(d.Database) == "" {
			result.addError("database.database", "database name is required", "set database.database or database.dsn")
		}
	}

	validModes := map[string]bool{"": true, "off": true, "skip-verify": true, "verify-ca": true, "verify-full": true}
	if !validModes[d.TLS.Mode] {
		result.addError("database.tls.mode", fmt.Sprintf("invalid TLS mode %q", d.TLS.Mode),
			"valid values are: off, skip-verify, verify-ca, verify-full")
	}
	if (d.TLS.Mode == "verify-ca" || d.TLS.Mode == "verify-full") && d.TLS.CAFile == "" {
		result.addError("database.tls.ca_file", "CA file is required for verify-ca and verify-full modes",
			"set database.tls.ca_file")
	}
	if (d.TLS.CertFile != "") != (d.TLS.KeyFile != "") {
		result.addError("database.tls.cert_file",
			"both cert_file and key_file must be specified for client certificate authentication",
			"provide both cert_file and key_file, or neither")
	}
	if d.TLS.Mode == "skip-verify" {
		result.addWarning("database.tls.mode", "skip-verify mode does not verify server certificates",
			"use verify-ca or verify-full in production")
	}
}

func (s *ServerConfig) validate(result *ValidationResult) {
	if s.Port < 1 || s.Port > 65535 {
		result.addError("server.port", fmt.Sprintf("port %d is out of valid range (1-65535)", s.Port), "")
	}
	if s.MaxFirst <= 0 {
		result.addError("server.max_first", "max_first must be greater than 0", "")
	}

	if s.CORSEnabled {
		if len(s.CORSAllowedOrigins) == 0 {
			result.addError("server.cors_allowed_origins", "CORS enabled but no allowed origins configured",
				"set cors_allowed_origins or disable CORS")
		}

		hasWildcard := false
		for _, origin := range s.CORSAllowedOrigins {
			if strings.TrimSpace(origin) == "*" {
				hasWildcard = true
				break
			}
		}
		if hasWildcard && s.CORSAllowCredentials {
			result.addError("server.cors_allowed_origins", "wildcard origin (*) cannot be used with credentials",
				"use specific origins with credentials, or wildcard without credentials")
		}
		if hasWildcard {
			result.addWarning("server.cors_allowed_origins", "CORS wildcard origin enabled",
				"use specific origins in production for better security")
		}
	}

	if s.Auth.OIDCEnabled {
		if s.Auth.OIDCIssuerURL == "" {
			result.addError("server.auth.oidc_issuer_url", "issuer URL is required when OIDC is enabled", "")
		}
		if s.Auth.OIDCAudience == "" {
			result.addError("server.auth.oidc_audience", "audience is required when OIDC is enabled", "")
		}
		if s.Auth.OIDCSkipTLSVerify {
			result.addWarning("server.auth.oidc_skip_tls_verify", "OIDC provider certificates are not verified",
				"only use oidc_skip_tls_verify in development")
		}
	}

	if (s.TLSCertFile != "") != (s.TLSKeyFile != "") {
		result.addError("server.tls_cert_file", "both tls_cert_file and tls_key_file must be set to serve TLS", "")
	}
}

func (o *ObservabilityConfig) validate(result *ValidationResult) {
	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[o.Logging.Level] {
		result.addError("observability.logging.level", fmt.Sprintf("invalid log level %q", o.Logging.Level),
			"valid values are: debug, info, warn, error")
	}

	validLogFormats := map[string]bool{"json": true, "text": true}
	if !validLogFormats[o.Logging.Format] {
		result.addError("observability.logging.format", fmt.Sprintf("invalid log format %q", o.Logging.Format),
			"valid values are: json, text")
	}

	if o.TraceSampleRatio < 0 || o.TraceSampleRatio > 1 {
		result.addError("observability.trace_sample_ratio", "trace_sample_ratio must be between 0 and 1", "")
	}

	o.OTLP.validate("observability.otlp", result)
	if o.Traces != nil {
		o.Traces.validate("observability.traces", result)
	}
	if o.Logs != nil {
		o.Logs.validate("observability.logs", result)
	}
}

func (o *OTLPConfig) validate(prefix string, result *ValidationResult) {
	validProtocols := map[string]bool{"": true, "grpc": true, "http/protobuf": true}
	if !validProtocols[o.Protocol] {
		result.addError(prefix+".protocol", fmt.Sprintf("invalid OTLP protocol %q", o.Protocol),
			"valid values are: grpc, http/protobuf")
	}

	if o.Protocol == "http/protobuf" && !validOTLPEndpoint(o.Endpoint) {
		result.addError(prefix+".endpoint", fmt.Sprintf("invalid OTLP endpoint %q for http/protobuf", o.Endpoint),
			"use host:port or a full URL")
	}

	validCompressions := map[string]bool{"": true, "none": true, "gzip": true}
	if !validCompressions[o.Compression] {
		result.addError(prefix+".compression", fmt.Sprintf("invalid OTLP compression %q", o.Compression),
			"valid values are: none, gzip")
	}

	if o.RetryMaxAttempts < 0 {
		result.addError(prefix+".retry_max_attempts", "retry_max_attempts cannot be negative", "")
	}
}

func validOTLPEndpoint(endpoint string) bool {
	if endpoint == "" {
		return false
	}
	if strings.Contains(endpoint, "://") {
		parsed, err := url.Parse(endpoint)
		if err != nil {
			return false
		}
		return parsed.Host != ""
	}
	_, _, err := net.SplitHostPort(endpoint)
	return err == nil
}

func (s *SeedConfig) validate(result *ValidationResult, autoMigrate bool) {
	if s.People < 0 {
		result.addError("seed.people", "people cannot be negative", "")
	}
	if s.Enabled && s.People == 0 {
		result.addWarning("seed.people", "seeding is enabled with people = 0", "nothing will be generated")
	}
	if s.Enabled && !autoMigrate {
		result.addWarning("seed.enabled", "seeding without database.auto_migrate requires existing tables",
			"enable database.auto_migrate on a fresh database")
	}
}
