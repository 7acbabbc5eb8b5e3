package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gstbill/gstbill/internal/dataset"
	"github.com/gstbill/gstbill/internal/observability"
	_ "github.com/gstbill/gstbill/testing"
)

func testConfig(t *testing.T) *Config {
	t.Helper()
	return &Config{
		AppEnv:             "test",
		StoreDriver:        StoreFile,
		DataFile:           filepath.Join(t.TempDir(), "db.json"),
		NumberingPolicy:    "maxscan",
		RateLimitPerMinute: 1000,
		MaxBodyBytes:       1 << 20,
	}
}

func newTestServer(t *testing.T, cfg *Config) (http.Handler, *Services) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	storage, err := OpenStorage(context.Background(), cfg, logger)
	require.NoError(t, err)
	t.Cleanup(storage.Close)

	metrics := observability.NewMetrics()
	services, err := NewServices(cfg, logger, storage, metrics)
	require.NoError(t, err)
	return NewRouter(services.RouterParams(cfg, logger, metrics, nil)), services
}

func call(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestHealthzAndSecurityHeaders(t *testing.T) {
	router, _ := newTestServer(t, testConfig(t))

	rr := call(t, router, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
	assert.Equal(t, "DENY", rr.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, rr.Header().Get("X-Ratelimit-Limit"))
}

func TestUnknownRouteIsProblem(t *testing.T) {
	router, _ := newTestServer(t, testConfig(t))

	rr := call(t, router, http.MethodGet, "/api/nothing-here", nil)
	require.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "application/problem+json", rr.Header().Get("Content-Type"))
}

func TestInvoiceFlowThroughAPI(t *testing.T) {
	cfg := testConfig(t)
	router, services := newTestServer(t, cfg)

	rr := call(t, router, http.MethodPost, "/api/customers", map[string]any{"name": "Ravi Traders", "phone": "98450 00000"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = call(t, router, http.MethodPost, "/api/invoices", map[string]any{
		"customerName": "Ravi Traders",
		"gstPercent":   18,
		"items":        []map[string]any{{"name": "Cotton bale", "pricePerUnit": 2000, "qty": 2}},
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var created dataset.Invoice
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	assert.Equal(t, 101, created.InvoiceNumber)
	assert.InDelta(t, 4720, created.GrandTotal, 1e-9)

	rr = call(t, router, http.MethodGet, "/api/stats", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var stats map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &stats))
	assert.EqualValues(t, 1, stats["invoiceCount"])
	assert.EqualValues(t, 4720, stats["totalRevenue"])

	rr = call(t, router, http.MethodGet, "/api/counter", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"next":102`)

	rr = call(t, router, http.MethodGet, "/api/export", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "invoice-backup-")

	rr = call(t, router, http.MethodGet, "/api/jobs/health", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = call(t, router, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `gstbill_invoice_events_total{event="created"} 1`)
	assert.Contains(t, rr.Body.String(), "gstbill_http_requests_total")

	assert.Len(t, services.Store.List(context.Background()), 1)
	assert.Len(t, services.MasterData.Customers(context.Background()), 2, "a typed name without customerId gets its own customer record")
}

func TestOpenStorageRedisDriver(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig(t)
	cfg.StoreDriver = StoreRedis
	cfg.RedisAddr = mr.Addr()
	cfg.RedisDatasetKey = "gstbill:test"

	storage, err := OpenStorage(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer storage.Close()
	require.NotNil(t, storage.Redis)

	_, ok := storage.Gateway.(*dataset.RedisGateway)
	assert.True(t, ok)

	services, err := NewServices(cfg, nil, storage, nil)
	require.NoError(t, err)
	require.NoError(t, services.Allocator.Commit(context.Background(), 150))
	assert.True(t, mr.Exists("gstbill:test"))
}

func TestOpenStorageWithoutRedisFallsBack(t *testing.T) {
	cfg := testConfig(t)
	cfg.RedisAddr = "127.0.0.1:1"

	storage, err := OpenStorage(context.Background(), cfg, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	defer storage.Close()
	assert.Nil(t, storage.Redis)
	_, ok := storage.Gateway.(*dataset.FileGateway)
	assert.True(t, ok)
}
