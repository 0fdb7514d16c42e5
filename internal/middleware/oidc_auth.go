package middleware

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"relay-graphql/internal/logging"
	"relay-graphql/internal/observability"

	"github.com/coreos/go-oidc/v3/oidc"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/oauth2"
)

// OIDCAuthConfig controls OIDC/JWKS validation behavior.
type OIDCAuthConfig struct {
	Enabled       bool
	IssuerURL     string
	Audience      string
	ClockSkew     time.Duration
	SkipTLSVerify bool
	CAFile        string
}

type authContextKey struct{}

// AuthContext carries validated JWT claims.
type AuthContext struct {
	Subject  string
	Issuer   string
	Audience []string
	Claims   map[string]interface{}
}

// AuthFromContext returns the auth context from a request context.
func AuthFromContext(ctx context.Context) (AuthContext, bool) {
	auth, ok := ctx.Value(authContextKey{}).(AuthContext)
	return auth, ok
}

// authFailure describes one way a request can fail authentication.
type authFailure struct {
	reason     string
	validation string
	message    string
	logMessage string
}

var (
	failMissingToken = authFailure{
		reason:     "missing_token",
		message:    "missing bearer token",
		logMessage: "authentication failed: missing bearer token",
	}
	failVerification = authFailure{
		reason:     "token_verification_failed",
		validation: "verification_failed",
		message:    "invalid token",
		logMessage: "oidc token validation failed",
	}
	failClaims = authFailure{
		reason:     "claims_parse_failed",
		validation: "claims_parse_failed",
		message:    "invalid token claims",
		logMessage: "oidc token claims parse failed",
	}
	failTime = authFailure{
		reason:     "time_validation_failed",
		validation: "time_validation_failed",
		message:    "invalid token",
		logMessage: "oidc token time validation failed",
	}
)

// OIDCAuthMiddleware validates Bearer tokens when enabled. The provider's
// discovery document is fetched once, at construction. metrics may be nil.
func OIDCAuthMiddleware(cfg OIDCAuthConfig, logger *logging.Logger, metrics *observability.AuthMetrics) (func(http.Handler) http.Handler, error) {
	if !cfg.Enabled {
		return func(next http.Handler) http.Handler { return next }, nil
	}
	if cfg.IssuerURL == "" || cfg.Audience == "" {
		return nil, errors.New("oidc auth enabled but issuer/audience not configured")
	}
	if cfg.ClockSkew == 0 {
		cfg.ClockSkew = 2 * time.Minute
	}

	issuerURL, err := url.Parse(cfg.IssuerURL)
	if err != nil {
		return nil, fmt.Errorf("invalid oidc issuer url: %w", err)
	}
	if issuerURL.Scheme != "https" {
		return nil, errors.New("oidc issuer url must use https")
	}
	if logger != nil && cfg.SkipTLSVerify {
		logger.Warn("oidc tls verification is disabled; enable only for local development",
			"issuer", cfg.IssuerURL,
		)
	}

	httpClient, err := newOIDCHTTPClient(cfg)
	if err != nil {
		return nil, err
	}
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, httpClient)

	provider, err := oidc.NewProvider(ctx, cfg.IssuerURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize oidc provider: %w", err)
	}
	verifier := provider.Verifier(&oidc.Config{ClientID: cfg.Audience})

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			endpoint := r.URL.Path
			metrics.RecordAttempt(r.Context(), endpoint)

			reject := func(f authFailure, cause error) {
				metrics.RecordFailure(r.Context(), endpoint, f.reason)
				if f.validation != "" {
					metrics.RecordTokenValidationError(r.Context(), f.validation)
				}
				if logger != nil {
					attrs := []any{
						slog.String("endpoint", endpoint),
						slog.String("remote_addr", r.RemoteAddr),
					}
					if cause != nil {
						attrs = append(attrs, slog.String("error", cause.Error()))
					}
					logging.FromContext(r.Context()).Warn(f.logMessage, attrs...)
				}
				writeUnauthorized(w, f.message)
			}

			tokenString := bearerToken(r.Header.Get("Authorization"))
			if tokenString == "" {
				reject(failMissingToken, nil)
				return
			}

			idToken, err := verifier.Verify(r.Context(), tokenString)
			if err != nil {
				reject(failVerification, err)
				return
			}

			claims := map[string]interface{}{}
			if err := idToken.Claims(&claims); err != nil {
				reject(failClaims, err)
				return
			}
			if err := validateTimeClaims(claims, cfg.ClockSkew); err != nil {
				reject(failTime, err)
				return
			}

			subject, _ := claims["sub"].(string)
			aud := extractAudience(claims)
			metrics.RecordSuccess(r.Context(), endpoint, cfg.IssuerURL)

			if logger != nil {
				logging.FromContext(r.Context()).Debug("authentication successful",
					slog.String("subject", subject),
					slog.String("issuer", cfg.IssuerURL),
					slog.String("endpoint", endpoint),
				)
			}

			if span := trace.SpanFromContext(r.Context()); span.IsRecording() {
				span.SetAttributes(
					attribute.String("auth.subject", subject),
					attribute.String("auth.issuer", cfg.IssuerURL),
					attribute.Bool("auth.authenticated", true),
				)
				if len(aud) > 0 {
					span.SetAttributes(attribute.StringSlice("auth.audience", aud))
				}
			}

			ctx := context.WithValue(r.Context(), authContextKey{}, AuthContext{
				Subject:  subject,
				Issuer:   cfg.IssuerURL,
				Audience: aud,
				Claims:   claims,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}, nil
}

// newOIDCHTTPClient builds the client used for discovery and JWKS fetches.
func newOIDCHTTPClient(cfg OIDCAuthConfig) (*http.Client, error) {
	tlsConfig := &tls.Config{
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: cfg.SkipTLSVerify, //nolint:gosec // opt-in for local development
	}
	if cfg.CAFile != "" {
		pem, err := os.ReadFile(cfg.CAFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read oidc ca file: %w", err)
		}
		pool, err := x509.SystemCertPool()
		if err != nil || pool == nil {
			pool = x509.NewCertPool()
		}
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("oidc ca file %s contains no certificates", cfg.CAFile)
		}
		tlsConfig.RootCAs = pool
	}
	return &http.Client{
		Transport: &http.Transport{TLSClientConfig: tlsConfig},
		Timeout:   10 * time.Second,
	}, nil
}

func bearerToken(value string) string {
	scheme, token, ok := strings.Cut(value, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func validateTimeClaims(claims map[string]interface{}, skew time.Duration) error {
	if skew <= 0 {
		return nil
	}

	now := time.Now()
	if exp, ok := numericDate(claims["exp"]); ok && now.After(exp.Add(skew)) {
		return errors.New("token expired")
	}
	if nbf, ok := numericDate(claims["nbf"]); ok && now.Add(skew).Before(nbf) {
		return errors.New("token not valid yet")
	}
	return nil
}

func numericDate(value interface{}) (time.Time, bool) {
	switch v := value.(type) {
	case float64:
		return time.Unix(int64(v), 0), true
	case int64:
		return time.Unix(v, 0), true
	case int:
		return time.Unix(int64(v), 0), true
	case json.Number:
		parsed, err := v.Int64()
		if err != nil {
			return time.Time{}, false
		}
		return time.Unix(parsed, 0), true
	case string:
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return time.Time{}, false
		}
		return time.Unix(parsed, 0), true
	default:
		return time.Time{}, false
	}
}

func extractAudience(claims map[string]interface{}) []string {
	switch val := claims["aud"].(type) {
	case string:
		return []string{val}
	case []string:
		return val
	case []interface{}:
		result := make([]string, 0, len(val))
		for _, item := range val {
			if str, ok := item.(string); ok {
				result = append(result, str)
			}
		}
		return result
	default:
		return nil
	}
}
