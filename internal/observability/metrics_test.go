package observability

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gstbill/gstbill/internal/dataset"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	return rr.Body.String()
}

func TestMetricsMiddlewareRecordsRequest(t *testing.T) {
	metrics := NewMetrics()

	handler := metrics.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	routeCtx := chi.NewRouteContext()
	routeCtx.RoutePatterns = append(routeCtx.RoutePatterns, "/api/invoices/{id}")
	req := httptest.NewRequest(http.MethodGet, "/api/invoices/inv_1", nil)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusTeapot, rr.Code)

	body := scrape(t, metrics)
	assert.Contains(t, body, `gstbill_http_requests_total{code="418",route="/api/invoices/{id}"} 1`)
	assert.Contains(t, body, `gstbill_http_request_duration_seconds_bucket{route="/api/invoices/{id}"`)
}

func TestInvoiceEventsAreCounted(t *testing.T) {
	metrics := NewMetrics()
	ctx := context.Background()
	metrics.InvoiceEvent(ctx, "created")
	metrics.InvoiceEvent(ctx, "created")
	metrics.InvoiceEvent(ctx, "deleted")

	body := scrape(t, metrics)
	assert.Contains(t, body, `gstbill_invoice_events_total{event="created"} 2`)
	assert.Contains(t, body, `gstbill_invoice_events_total{event="deleted"} 1`)
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	m.InvoiceEvent(context.Background(), "created")

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

type flakyGateway struct {
	saveErr error
}

func (g flakyGateway) Load(context.Context) (*dataset.Dataset, error) {
	return dataset.Default(), nil
}

func (g flakyGateway) Save(context.Context, *dataset.Dataset) error {
	return g.saveErr
}

func TestInstrumentGatewayRecordsOutcome(t *testing.T) {
	metrics := NewMetrics()
	gw := metrics.InstrumentGateway("file", flakyGateway{saveErr: errors.New("disk full")})
	ctx := context.Background()

	ds, err := gw.Load(ctx)
	require.NoError(t, err)
	require.Error(t, gw.Save(ctx, ds))

	body := scrape(t, metrics)
	assert.Contains(t, body, `gstbill_store_operation_duration_seconds_count{driver="file",op="load",result="ok"} 1`)
	assert.Contains(t, body, `gstbill_store_operation_duration_seconds_count{driver="file",op="save",result="error"} 1`)
}

func TestInstrumentGatewayWithoutMetrics(t *testing.T) {
	var m *Metrics
	gw := flakyGateway{}
	assert.Equal(t, dataset.Gateway(gw), m.InstrumentGateway("file", gw))
}

type lockingGateway struct {
	flakyGateway
	updates int
}

func (g *lockingGateway) Update(ctx context.Context, fn func(*dataset.Dataset) error) error {
	g.updates++
	return fn(dataset.Default())
}

func TestInstrumentGatewayKeepsUpdater(t *testing.T) {
	metrics := NewMetrics()
	inner := &lockingGateway{}
	gw := metrics.InstrumentGateway("postgres", inner)

	u, ok := gw.(dataset.Updater)
	require.True(t, ok)
	require.NoError(t, u.Update(context.Background(), func(*dataset.Dataset) error { return nil }))
	assert.Equal(t, 1, inner.updates)

	_, ok = metrics.InstrumentGateway("file", flakyGateway{}).(dataset.Updater)
	assert.False(t, ok)

	body := scrape(t, metrics)
	assert.Contains(t, body, `gstbill_store_operation_duration_seconds_count{driver="postgres",op="update",result="ok"} 1`)
}
