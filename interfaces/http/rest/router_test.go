package rest

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"peoplenet/infrastructure/config"
	"peoplenet/infrastructure/di"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Meta    json.RawMessage `json:"meta"`
}

type errorBody struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

func testConfig() *config.Config {
	return &config.Config{
		Environment:     "test",
		LogLevel:        "error",
		StorageBackend:  config.StorageMemory,
		AWSRegion:       "us-east-1",
		CityAPIURL:      "http://127.0.0.1:0/cities",
		CityCacheSize:   10,
		CityRateLimit:   5,
		CityRateWindow:  time.Minute,
		CityMinQueryLen: 2,
		DefaultUserID:   "local",
		AuthDisabled:    true,
		EnableMetrics:   true,
		AllowedOrigins:  []string{"*"},
		EnableCORS:      true,
	}
}

func newTestServer(t *testing.T, cfg *config.Config) (*httptest.Server, *di.Container) {
	t.Helper()
	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")

	c, cleanup, err := di.InitializeContainer(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(cleanup)

	srv := httptest.NewServer(NewRouter(c).Setup())
	t.Cleanup(srv.Close)
	return srv, c
}

func do(t *testing.T, srv *httptest.Server, method, path, body string, headers ...string) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, srv.URL+path, reader)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeData(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	require.True(t, env.Success)
	require.NoError(t, json.Unmarshal(env.Data, v))
}

func decodeError(t *testing.T, resp *http.Response) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

type personBody struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Strength     string   `json:"strength"`
	IntroducedBy string   `json:"introducedBy"`
	Team         string   `json:"team"`
	Tags         []string `json:"tags"`
	Interactions []struct {
		Kind string `json:"kind"`
		Note string `json:"note"`
	} `json:"interactions"`
}

func TestHealthAndReady(t *testing.T) {
	srv, _ := newTestServer(t, testConfig())

	resp := do(t, srv, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, srv, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var status map[string]string
	decodeData(t, resp, &status)
	assert.Equal(t, "ready", status["status"])
}

func TestPeopleLifecycle(t *testing.T) {
	srv, _ := newTestServer(t, testConfig())

	// Create
	resp := do(t, srv, http.MethodPost, "/api/v2/people",
		`{"name":"Ada Lovelace","strength":"core","team":"Engines","tags":["math"]}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created personBody
	decodeData(t, resp, &created)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, "/api/v2/people/"+created.ID, resp.Header.Get("Location"))
	assert.Equal(t, "Ada Lovelace", created.Name)
	assert.Equal(t, "core", created.Strength)

	// List
	resp = do(t, srv, http.MethodGet, "/api/v2/people?search=ada", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var listed []personBody
	decodeData(t, resp, &listed)
	require.Len(t, listed, 1)
	assert.Equal(t, created.ID, listed[0].ID)

	// Update
	resp = do(t, srv, http.MethodPatch, "/api/v2/people/"+created.ID, `{"updates":[
		{"kind":"rename","name":"Ada King"},
		{"kind":"profile","team":"Analytical"},
		{"kind":"add_interaction","date":"2024-03-01","type":"call","note":"catch up"}
	]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var updated personBody
	decodeData(t, resp, &updated)
	assert.Equal(t, "Ada King", updated.Name)
	assert.Equal(t, "Analytical", updated.Team)
	assert.Equal(t, []string{"math"}, updated.Tags)
	require.Len(t, updated.Interactions, 1)
	assert.Equal(t, "call", updated.Interactions[0].Kind)

	// Delete
	resp = do(t, srv, http.MethodDelete, "/api/v2/people/"+created.ID, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = do(t, srv, http.MethodGet, "/api/v2/people/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPeople_RejectsBadInput(t *testing.T) {
	srv, _ := newTestServer(t, testConfig())
	resp := do(t, srv, http.MethodPost, "/api/v2/people", `{"id":"bob","name":"Bob"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"unknown field", http.MethodPost, "/api/v2/people", `{"name":"A","nickname":"x"}`, http.StatusBadRequest},
		{"missing name", http.MethodPost, "/api/v2/people", `{"strength":"core"}`, http.StatusBadRequest},
		{"duplicate id", http.MethodPost, "/api/v2/people", `{"id":"bob","name":"Bob"}`, http.StatusConflict},
		{"unknown update kind", http.MethodPatch, "/api/v2/people/bob", `{"updates":[{"kind":"teleport"}]}`, http.StatusBadRequest},
		{"empty updates", http.MethodPatch, "/api/v2/people/bob", `{"updates":[]}`, http.StatusBadRequest},
		{"rename without name", http.MethodPatch, "/api/v2/people/bob", `{"updates":[{"kind":"rename"}]}`, http.StatusBadRequest},
		{"bad interaction date", http.MethodPatch, "/api/v2/people/bob", `{"updates":[{"kind":"add_interaction","date":"yesterday"}]}`, http.StatusBadRequest},
		{"remove missing interaction", http.MethodPatch, "/api/v2/people/bob", `{"updates":[{"kind":"remove_interaction","index":3}]}`, http.StatusNotFound},
		{"update unknown person", http.MethodPatch, "/api/v2/people/nobody", `{"updates":[{"kind":"rename","name":"X"}]}`, http.StatusNotFound},
		{"bad minRank", http.MethodGet, "/api/v2/people?minRank=high", "", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, srv, tt.method, tt.path, tt.body)

			assert.Equal(t, tt.status, resp.StatusCode)
			body := decodeError(t, resp)
			assert.NotEmpty(t, body.Message)
		})
	}
}

func TestPeople_IDsNeedingJSONEscapes(t *testing.T) {
	srv, _ := newTestServer(t, testConfig())
	require.Equal(t, http.StatusCreated,
		do(t, srv, http.MethodPost, "/api/v2/people", `{"id":"a\"b\\c","name":"Quoted"}`).StatusCode)
	require.Equal(t, http.StatusCreated,
		do(t, srv, http.MethodPost, "/api/v2/people",
			`{"id":"child","name":"Child","introducedByType":"existing","introducedBy":"a\"b\\c"}`).StatusCode)

	resp := do(t, srv, http.MethodGet, "/api/v2/people", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var listed []personBody
	decodeData(t, resp, &listed)
	require.Len(t, listed, 2)
	assert.Equal(t, `a"b\c`, listed[0].ID)
	assert.Equal(t, `a"b\c`, listed[1].IntroducedBy)

	resp = do(t, srv, http.MethodGet, "/api/v2/network/path/child", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var path struct {
		Chain []string `json:"chain"`
		IDs   []string `json:"ids"`
	}
	decodeData(t, resp, &path)
	assert.Equal(t, []string{"You", "Quoted", "Child"}, path.Chain)
	assert.Equal(t, []string{"you", `a"b\c`, "child"}, path.IDs)
}

func TestNetworkEndpoints(t *testing.T) {
	// Arrange
	srv, _ := newTestServer(t, testConfig())
	require.Equal(t, http.StatusCreated,
		do(t, srv, http.MethodPost, "/api/v2/people", `{"id":"grace","name":"Grace","strength":"strong"}`).StatusCode)
	require.Equal(t, http.StatusCreated,
		do(t, srv, http.MethodPost, "/api/v2/people", `{"id":"alan","name":"Alan","introducedByType":"existing","introducedBy":"grace"}`).StatusCode)

	t.Run("graph", func(t *testing.T) {
		resp := do(t, srv, http.MethodGet, "/api/v2/network/graph?layout=circular&width=800&height=600&selected=alan", "")
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var scene struct {
			Nodes []struct {
				ID string `json:"id"`
			} `json:"nodes"`
			Edges       []json.RawMessage `json:"edges"`
			PathNodeIDs []string          `json:"pathNodeIds"`
		}
		decodeData(t, resp, &scene)
		ids := make([]string, 0, len(scene.Nodes))
		for _, n := range scene.Nodes {
			ids = append(ids, n.ID)
		}
		assert.ElementsMatch(t, []string{"you", "grace", "alan"}, ids)
		assert.Len(t, scene.Edges, 2)
		assert.Equal(t, []string{"you", "grace", "alan"}, scene.PathNodeIDs)
	})

	t.Run("graph rejects unknown view", func(t *testing.T) {
		resp := do(t, srv, http.MethodGet, "/api/v2/network/graph?view=sideways", "")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("path", func(t *testing.T) {
		resp := do(t, srv, http.MethodGet, "/api/v2/network/path/alan", "")
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var path struct {
			Chain []string `json:"chain"`
			Label string   `json:"label"`
		}
		decodeData(t, resp, &path)
		assert.Equal(t, []string{"You", "Grace", "Alan"}, path.Chain)
		assert.Equal(t, "Through network", path.Label)
	})

	t.Run("issues", func(t *testing.T) {
		resp := do(t, srv, http.MethodGet, "/api/v2/network/issues", "")
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var result struct {
			Count int `json:"count"`
		}
		decodeData(t, resp, &result)
		assert.Zero(t, result.Count)
	})
}

func TestAuthentication(t *testing.T) {
	cfg := testConfig()
	cfg.AuthDisabled = false
	cfg.JWTSecret = "test-secret"
	cfg.JWTIssuer = "peoplenet"
	srv, c := newTestServer(t, cfg)
	require.NotNil(t, c.JWT)

	alice, err := c.JWT.GenerateToken("alice", "alice@example.com", nil)
	require.NoError(t, err)
	bob, err := c.JWT.GenerateToken("bob", "bob@example.com", nil)
	require.NoError(t, err)

	resp := do(t, srv, http.MethodGet, "/api/v2/people", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = do(t, srv, http.MethodGet, "/api/v2/people", "", "Authorization", "Token abc")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = do(t, srv, http.MethodGet, "/api/v2/people", "", "Authorization", "Bearer not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = do(t, srv, http.MethodPost, "/api/v2/people", `{"id":"ada","name":"Ada"}`, "Authorization", "Bearer "+alice)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// networks are private to their owner
	resp = do(t, srv, http.MethodGet, "/api/v2/people/ada", "", "Authorization", "Bearer "+bob)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp = do(t, srv, http.MethodGet, "/api/v2/people/ada", "", "Authorization", "Bearer "+alice)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// health stays public
	resp = do(t, srv, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestUserRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.UserRateLimit = 2
	srv, _ := newTestServer(t, cfg)

	for i := 0; i < 2; i++ {
		resp := do(t, srv, http.MethodGet, "/api/v2/people", "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	resp := do(t, srv, http.MethodGet, "/api/v2/people", "")

	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "60", resp.Header.Get("Retry-After"))
	assert.Equal(t, "USER_RATE_LIMITED", decodeError(t, resp).Code)
}

func TestCityEndpoints(t *testing.T) {
	// Arrange
	var calls atomic.Int32
	geo := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"data":[{"id":1,"name":"Paris","country":"France","countryCode":"FR","latitude":48.85,"longitude":2.35,"population":2100000}]}`)
	}))
	defer geo.Close()

	cfg := testConfig()
	cfg.CityAPIURL = geo.URL
	srv, _ := newTestServer(t, cfg)

	// Act
	resp := do(t, srv, http.MethodGet, "/api/v2/cities/search?q=Paris", "")

	// Assert
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var results []struct {
		Name    string `json:"name"`
		Country string `json:"country"`
	}
	decodeData(t, resp, &results)
	require.Len(t, results, 1)
	assert.Equal(t, "Paris", results[0].Name)

	resp = do(t, srv, http.MethodGet, "/api/v2/cities/cached?q=paris", "")
	var cached struct {
		Cached  bool              `json:"cached"`
		Results []json.RawMessage `json:"results"`
	}
	decodeData(t, resp, &cached)
	assert.True(t, cached.Cached)
	assert.Len(t, cached.Results, 1)

	resp = do(t, srv, http.MethodGet, "/api/v2/cities/search?q=paris", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(1), calls.Load())

	resp = do(t, srv, http.MethodGet, "/api/v2/cities/usage", "")
	var usage struct {
		Requests   int64 `json:"requests"`
		MemoryHits int64 `json:"memoryHits"`
		Remaining  int   `json:"remaining"`
	}
	decodeData(t, resp, &usage)
	assert.Equal(t, int64(1), usage.Requests)
	assert.Equal(t, int64(1), usage.MemoryHits)
	assert.Equal(t, 4, usage.Remaining)

	resp = do(t, srv, http.MethodDelete, "/api/v2/cities/cache", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp = do(t, srv, http.MethodGet, "/api/v2/cities/cached?q=paris", "")
	decodeData(t, resp, &cached)
	assert.False(t, cached.Cached)
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, testConfig())
	do(t, srv, http.MethodGet, "/api/v2/people", "")

	resp := do(t, srv, http.MethodGet, "/metrics", "")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "peoplenet_http_requests_total")
	assert.Contains(t, string(body), `route="/api/v2/people`)
}

func TestUnknownRoute(t *testing.T) {
	srv, _ := newTestServer(t, testConfig())

	resp := do(t, srv, http.MethodGet, "/api/v2/nothing-here", "")

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", decodeError(t, resp).Type)
}
