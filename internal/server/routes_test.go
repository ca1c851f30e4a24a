package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"nexus-go/internal/analytics"
	"nexus-go/internal/config"
	"nexus-go/internal/database"
	"nexus-go/internal/database/migrate"
	"nexus-go/internal/shortener"
)

var (
	testHost     string
	testPort     string
	testDatabase string
	testUsername string
	testPassword string
)

func TestMain(m *testing.M) {
	teardown, err := mustStartPostgresContainer()
	if err != nil {
		log.Fatalf("could not start postgres container: %v", err)
	}

	code := m.Run()

	if teardown != nil {
		if err := teardown(context.Background()); err != nil {
			log.Printf("could not teardown postgres container: %v", err)
		}
	}

	os.Exit(code)
}

func mustStartPostgresContainer() (func(context.Context) error, error) {
	ctx := context.Background()
	var (
		dbName = "testdb"
		dbPwd  = "testpass"
		dbUser = "testuser"
	)

	container, err := postgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:14-alpine"),
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPwd),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second)),
	)
	if err != nil {
		return nil, err
	}

	testDatabase = dbName
	testPassword = dbPwd
	testUsername = dbUser

	host, err := container.Host(ctx)
	if err != nil {
		return container.Terminate, err
	}
	testHost = host

	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		return container.Terminate, err
	}
	testPort = port.Port()

	return container.Terminate, nil
}

// setupTestServer wires a full server against the container database. A high
// rate limit keeps the limiter out of the way unless a test opts in.
func setupTestServer(t *testing.T, rateLimitMax int) (*httptest.Server, *Server) {
	db, err := database.New(database.Config{
		Host:     testHost,
		Port:     testPort,
		Database: testDatabase,
		Username: testUsername,
		Password: testPassword,
		Schema:   "public",
	})
	require.NoError(t, err)
	require.NoError(t, migrate.RunMigrations(db.DB))

	cfg := &config.Config{
		Port:            8000,
		Env:             "development",
		BaseURL:         "http://localhost:8000",
		AllowedOrigins:  []string{"*"},
		RateLimitMax:    rateLimitMax,
		RateLimitWindow: time.Minute,
	}

	srv, err := NewServer(cfg, db)
	require.NoError(t, err)

	ts := httptest.NewServer(srv.RegisterRoutes())
	t.Cleanup(func() {
		ts.Close()
		srv.Shutdown()
		_ = db.Close()
	})

	return ts, srv
}

func createShortURL(t *testing.T, ts *httptest.Server, body map[string]string) (*http.Response, map[string]any) {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	resp, err := http.Post(ts.URL+"/shorten", "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	defer resp.Body.Close()

	var data map[string]any
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &data))
	}
	return resp, data
}

// noRedirectClient returns the 3xx response instead of following it
var noRedirectClient = &http.Client{
	CheckRedirect: func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	},
}

func TestRoot(t *testing.T) {
	ts, _ := setupTestServer(t, 100000)

	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var data map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&data))
	assert.Equal(t, "active", data["status"])
}

func TestCreateShortURL(t *testing.T) {
	ts, _ := setupTestServer(t, 100000)

	t.Run("generated code", func(t *testing.T) {
		resp, data := createShortURL(t, ts, map[string]string{"original_url": "https://google.com"})

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "https://google.com", data["original_url"])
		assert.Equal(t, float64(0), data["click_count"])
		assert.Equal(t, true, data["is_active"])
		assert.Len(t, data["short_code"], shortener.DefaultCodeLength)
		assert.Equal(t, "http://localhost:8000/"+data["short_code"].(string), data["short_url"])
	})

	t.Run("custom code", func(t *testing.T) {
		resp, data := createShortURL(t, ts, map[string]string{
			"original_url": "https://github.com",
			"custom_code":  "github-home",
		})

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "github-home", data["short_code"])
	})

	t.Run("duplicate custom code", func(t *testing.T) {
		resp, _ := createShortURL(t, ts, map[string]string{
			"original_url": "https://example.com",
			"custom_code":  "taken-twice",
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		resp, data := createShortURL(t, ts, map[string]string{
			"original_url": "https://example2.com",
			"custom_code":  "taken-twice",
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "ALREADY_EXISTS", data["code"])
	})

	t.Run("invalid url", func(t *testing.T) {
		resp, data := createShortURL(t, ts, map[string]string{"original_url": "not-a-valid-url"})

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_INPUT", data["code"])
	})

	t.Run("malformed body", func(t *testing.T) {
		resp, err := http.Post(ts.URL+"/shorten", "application/json", bytes.NewReader([]byte("{not json")))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	})
}

func TestRedirectAndAnalytics(t *testing.T) {
	ts, _ := setupTestServer(t, 100000)

	resp, data := createShortURL(t, ts, map[string]string{"original_url": "https://example.com"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	shortCode := data["short_code"].(string)

	t.Run("redirect", func(t *testing.T) {
		resp, err := noRedirectClient.Get(ts.URL + "/" + shortCode)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusFound, resp.StatusCode)
		assert.Equal(t, "https://example.com", resp.Header.Get("Location"))
	})

	t.Run("analytics reflect the click", func(t *testing.T) {
		// Recording is asynchronous, poll until the event lands
		require.Eventually(t, func() bool {
			resp, err := http.Get(ts.URL + "/api/analytics/" + shortCode)
			if err != nil {
				return false
			}
			defer resp.Body.Close()

			var summary analytics.Summary
			if err := json.NewDecoder(resp.Body).Decode(&summary); err != nil {
				return false
			}
			return summary.TotalClicks == 1
		}, 5*time.Second, 50*time.Millisecond, "click should be recorded")
	})

	t.Run("url record counts the click", func(t *testing.T) {
		require.Eventually(t, func() bool {
			resp, err := http.Get(ts.URL + "/api/urls/" + shortCode)
			if err != nil {
				return false
			}
			defer resp.Body.Close()

			var info map[string]any
			if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
				return false
			}
			return info["click_count"] == float64(1)
		}, 5*time.Second, 50*time.Millisecond)
	})

	t.Run("unknown code", func(t *testing.T) {
		resp, err := noRedirectClient.Get(ts.URL + "/doesnotexist")
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("analytics for unknown code", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/api/analytics/doesnotexist")
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestAnalyticsEmpty(t *testing.T) {
	ts, _ := setupTestServer(t, 100000)

	resp, data := createShortURL(t, ts, map[string]string{"original_url": "https://example.com"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	shortCode := data["short_code"].(string)

	res, err := http.Get(ts.URL + "/api/analytics/" + shortCode)
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	raw, err := io.ReadAll(res.Body)
	require.NoError(t, err)

	// Empty aggregates serialize as empty arrays, not null
	assert.JSONEq(t, `{
        "total_clicks": 0,
        "unique_ips": 0,
        "top_countries": [],
        "top_referrers": [],
        "click_history": [],
        "browser_stats": []
    }`, string(raw))
}

func TestListURLs(t *testing.T) {
	ts, _ := setupTestServer(t, 100000)

	for i := 0; i < 3; i++ {
		resp, _ := createShortURL(t, ts, map[string]string{
			"original_url": fmt.Sprintf("https://example.com/%d", i),
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	resp, err := http.Get(ts.URL + "/api/urls?skip=0&limit=2")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var urls []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&urls))
	assert.Len(t, urls, 2)
}

func TestRateLimiting(t *testing.T) {
	const limit = 5
	ts, _ := setupTestServer(t, limit)

	for i := 0; i < limit; i++ {
		resp, err := http.Get(ts.URL + "/")
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode, "request %d within the limit", i+1)
	}

	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}
