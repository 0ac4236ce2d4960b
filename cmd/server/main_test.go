package main

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"payneteasy-be/internal/callback"
	"payneteasy-be/internal/config"
	"payneteasy-be/internal/middleware"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func testConfig() *config.Config {
	return &config.Config{
		AppPort:             "8080",
		AppEnv:              "test",
		SiteURL:             "https://shop.test",
		PaynetLogin:         "merchant",
		PaynetControlKey:    "control",
		PaynetEndpointID:    "1234",
		PaynetPaymentMethod: "form",
		PaynetLiveURL:       "https://gate.test/",
		PaynetHTTPTimeout:   time.Second,
		AjaxNonceSecret:     "nonce-secret",
		AjaxNonceTTL:        time.Hour,
		InternalSecretKey:   "internal-secret",
	}
}

func TestNewServer(t *testing.T) {
	database, err := sql.Open("mock_driver_main", "")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	router := newServer(ctx, testConfig(), database, zaptest.NewLogger(t))
	require.NotNil(t, router)

	t.Run("Health Check", func(t *testing.T) {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "OK", rr.Body.String())
		assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
	})

	t.Run("Metrics", func(t *testing.T) {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "http_requests_total")
	})

	t.Run("Nonce issued for internal caller", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, callback.NoncePath, nil)
		req.Header.Set("X-Service-Auth", "internal-secret")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		var body map[string]string
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.NotEmpty(t, body["nonce"])
	})

	t.Run("Return route requires order id", func(t *testing.T) {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, callback.ReturnPath, nil))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "Order ID is empty.")
	})
}

func TestNewLimiterConfig(t *testing.T) {
	limited := func(path string, n int) int {
		handler := middleware.NewRateLimiter(newLimiterConfig(testConfig())).Middleware(
			http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }),
		)
		rejected := 0
		for i := 0; i < n; i++ {
			req := httptest.NewRequest(http.MethodPost, path, nil)
			req.RemoteAddr = "203.0.113.7:443"
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)
			if rr.Code == http.StatusTooManyRequests {
				rejected++
			}
		}
		return rejected
	}

	t.Run("Webhook burst from one gateway address passes", func(t *testing.T) {
		assert.Zero(t, limited(callback.WebhookPath, 15))
	})

	t.Run("Admin ajax stays strict", func(t *testing.T) {
		assert.Positive(t, limited(callback.AjaxPath, 15))
	})

	t.Run("Internal key carried over", func(t *testing.T) {
		assert.Equal(t, "internal-secret", newLimiterConfig(testConfig()).InternalKey)
	})
}

// --- Mock Driver for Testing ---
type mockDriver struct{}

func (m *mockDriver) Open(name string) (driver.Conn, error)         { return &mockConn{}, nil }
func (c *mockConn) Prepare(query string) (driver.Stmt, error)       { return &mockStmt{}, nil }
func (c *mockConn) Close() error                                    { return nil }
func (c *mockConn) Begin() (driver.Tx, error)                       { return nil, nil }
func (s *mockStmt) Close() error                                    { return nil }
func (s *mockStmt) NumInput() int                                   { return 0 }
func (s *mockStmt) Exec(args []driver.Value) (driver.Result, error) { return nil, nil }
func (s *mockStmt) Query(args []driver.Value) (driver.Rows, error)  { return nil, nil }

type mockConn struct{}
type mockStmt struct{}

func init() {
	sql.Register("mock_driver_main", &mockDriver{})
}

func TestRun(t *testing.T) {
	origInitDB := initDBFunc
	defer func() { initDBFunc = origInitDB }()
	initDBFunc = func(cfg *config.Config) (*sql.DB, error) {
		return sql.Open("mock_driver_main", "")
	}

	origStartServer := startServerFunc
	defer func() { startServerFunc = origStartServer }()
	var gotAddr string
	startServerFunc = func(ctx context.Context, addr string, handler http.Handler) error {
		gotAddr = addr
		return nil
	}

	t.Setenv("APP_PORT", "8081")
	t.Setenv("APP_ENV", "test")
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("PAYNET_LOGIN", "merchant")
	t.Setenv("PAYNET_CONTROL_KEY", "control")
	t.Setenv("PAYNET_ENDPOINT_ID", "1234")
	t.Setenv("AJAX_NONCE_SECRET", "nonce-secret")
	t.Setenv("JAEGER_ENDPOINT", "")

	assert.NoError(t, run())
	assert.Equal(t, ":8081", gotAddr)
}

func TestRun_InvalidConfig(t *testing.T) {
	t.Setenv("DB_HOST", "")
	t.Setenv("PAYNET_LOGIN", "")

	err := run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}
