package serverapp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"relay-graphql/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sqliteConfig() *config.Config {
	return &config.Config{
		Database: config.DatabaseConfig{
			Driver:       config.DriverSQLite,
			Path:         ":memory:",
			AutoMigrate:  true,
			QueryTimeout: 5 * time.Second,
		},
		Server: config.ServerConfig{
			MaxFirst:           10,
			GraphiQLEnabled:    true,
			HealthCheckTimeout: time.Second,
		},
		Observability: config.ObservabilityConfig{
			ServiceName: "relay-graphql",
			Logging:     config.LoggingConfig{Level: "error", Format: "text"},
		},
		Seed: config.SeedConfig{Enabled: true, People: 3, RandomSeed: 7},
	}
}

func newSQLiteApp(t *testing.T) *App {
	t.Helper()
	app, err := New(sqliteConfig(), testLogger())
	require.NoError(t, err)
	require.NoError(t, app.Init(context.Background()))
	t.Cleanup(func() { _ = app.Shutdown(context.Background()) })
	return app
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message    string                 `json:"message"`
		Extensions map[string]interface{} `json:"extensions"`
	} `json:"errors"`
}

func postGraphQL(t *testing.T, h http.Handler, query string) (*httptest.ResponseRecorder, graphQLResponse) {
	t.Helper()
	body, err := json.Marshal(map[string]string{"query": query})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(string(body)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var resp graphQLResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return rec, resp
}

func TestApp_ServesSeededPeople(t *testing.T) {
	app := newSQLiteApp(t)
	h := app.Handler()
	require.NotNil(t, h)

	rec, resp := postGraphQL(t, h, `{
		people(first: 2) {
			count
			edges { cursor node { databaseId } }
			pageInfo { hasNextPage endCursor }
		}
	}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, resp.Errors)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	var data struct {
		People struct {
			Count int `json:"count"`
			Edges []struct {
				Cursor string `json:"cursor"`
				Node   struct {
					DatabaseID int `json:"databaseId"`
				} `json:"node"`
			} `json:"edges"`
			PageInfo struct {
				HasNextPage bool   `json:"hasNextPage"`
				EndCursor   string `json:"endCursor"`
			} `json:"pageInfo"`
		} `json:"people"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.Equal(t, 3, data.People.Count)
	require.Len(t, data.People.Edges, 2)
	assert.Equal(t, 1, data.People.Edges[0].Node.DatabaseID)
	assert.Equal(t, "YXJyYXljb25uZWN0aW9uOjA=", data.People.Edges[0].Cursor)
	assert.True(t, data.People.PageInfo.HasNextPage)
	assert.Equal(t, "YXJyYXljb25uZWN0aW9uOjE=", data.People.PageInfo.EndCursor)
}

func TestApp_RejectionCarriesCode(t *testing.T) {
	app := newSQLiteApp(t)

	_, resp := postGraphQL(t, app.Handler(), `{ people(last: 1) { count } }`)
	require.NotEmpty(t, resp.Errors)
	assert.Equal(t, "UNSUPPORTED_ARGUMENT", resp.Errors[0].Extensions["code"])
	assert.Equal(t, `argument "last" is currently unsupported`, resp.Errors[0].Message)
}

func TestApp_Routes(t *testing.T) {
	app := newSQLiteApp(t)
	h := app.Handler()

	tests := []struct {
		name       string
		path       string
		accept     string
		wantStatus int
		check      func(t *testing.T, rec *httptest.ResponseRecorder)
	}{
		{
			name:       "health",
			path:       "/health",
			wantStatus: http.StatusOK,
			check: func(t *testing.T, rec *httptest.ResponseRecorder) {
				assert.JSONEq(t, `{"status":"healthy","database":"ok"}`, rec.Body.String())
			},
		},
		{
			name:       "root redirects",
			path:       "/",
			wantStatus: http.StatusFound,
			check: func(t *testing.T, rec *httptest.ResponseRecorder) {
				assert.Equal(t, "/graphql", rec.Header().Get("Location"))
			},
		},
		{
			name:       "graphiql",
			path:       "/graphql",
			accept:     "text/html",
			wantStatus: http.StatusOK,
			check: func(t *testing.T, rec *httptest.ResponseRecorder) {
				assert.Contains(t, strings.ToLower(rec.Body.String()), "graphiql")
			},
		},
		{name: "metrics disabled", path: "/metrics", wantStatus: http.StatusNotFound},
		{name: "unknown", path: "/people", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.accept != "" {
				req.Header.Set("Accept", tt.accept)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("GET %s status = %d, want %d", tt.path, rec.Code, tt.wantStatus)
			}
			if tt.check != nil {
				tt.check(t, rec)
			}
		})
	}
}

func TestApp_InitIsIdempotent(t *testing.T) {
	app := newSQLiteApp(t)
	srv := app.srv
	require.NoError(t, app.Init(context.Background()))
	assert.Same(t, srv, app.srv)
}
