package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gstbill/gstbill/internal/dataset"
	"github.com/gstbill/gstbill/internal/shared"
)

func seededService(t *testing.T) (*Service, *dataset.Repository) {
	t.Helper()
	repo := dataset.NewRepository(dataset.NewFileGateway(filepath.Join(t.TempDir(), "db.json")), nil)
	deletedAt := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.WithTx(context.Background(), func(ds *dataset.Dataset) error {
		ds.Business.Name = "Lakshmi Textiles"
		ds.Customers = append(ds.Customers, dataset.Customer{ID: "cust_1", Name: "Asha"})
		ds.Invoices = append(ds.Invoices, dataset.Invoice{ID: "inv_1", InvoiceNumber: 101})
		ds.DeletedInvoices = append(ds.DeletedInvoices, dataset.Invoice{ID: "inv_0", InvoiceNumber: 100, DeletedAt: &deletedAt})
		ds.Counter.LastInvoiceNumber = 101
		return nil
	}))
	svc := NewService(repo)
	svc.now = func() time.Time { return time.Date(2025, 12, 18, 10, 30, 0, 0, time.UTC) }
	return svc, repo
}

func TestExportCarriesTimestamp(t *testing.T) {
	svc, _ := seededService(t)
	raw, err := json.Marshal(svc.Export(context.Background()))
	require.NoError(t, err)

	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &doc))
	for _, key := range []string{"business", "customers", "products", "invoices", "deletedInvoices", "upiAccounts", "counter", "exportedAt"} {
		assert.Contains(t, doc, key)
	}
	assert.JSONEq(t, `"2025-12-18T10:30:00Z"`, string(doc["exportedAt"]))
}

func TestImportReplacesOnlyPresentCollections(t *testing.T) {
	svc, repo := seededService(t)
	ctx := context.Background()
	hooked := 0
	svc.onImport = append(svc.onImport, func(context.Context) { hooked++ })

	res, err := svc.Import(ctx, []byte(`{
		"products": [{"name": "Rice", "unit": "kg", "defaultPrice": 60}],
		"counter": {"lastInvoiceNumber": 300},
		"deletedInvoices": [],
		"somethingElse": true
	}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"counter", "products"}, res.Replaced)
	assert.Equal(t, 1, hooked)

	ds := repo.Snapshot(ctx)
	assert.Equal(t, "Lakshmi Textiles", ds.Business.Name)
	assert.Len(t, ds.Customers, 1)
	assert.Len(t, ds.Invoices, 1)
	assert.Len(t, ds.DeletedInvoices, 1, "recycle bin is never imported")
	require.Len(t, ds.Products, 1)
	assert.True(t, strings.HasPrefix(ds.Products[0].ID, "prod_"))
	assert.Equal(t, 300, ds.Counter.LastInvoiceNumber)
}

func TestImportRoundTrip(t *testing.T) {
	src, _ := seededService(t)
	raw, err := json.Marshal(src.Export(context.Background()))
	require.NoError(t, err)

	dst := NewService(dataset.NewRepository(dataset.NewFileGateway(filepath.Join(t.TempDir(), "db.json")), nil))
	_, err = dst.Import(context.Background(), raw)
	require.NoError(t, err)

	got := dst.Export(context.Background())
	assert.Equal(t, "Lakshmi Textiles", got.Business.Name)
	assert.Equal(t, 101, got.Counter.LastInvoiceNumber)
	assert.Len(t, got.Invoices, 1)
	assert.Empty(t, got.DeletedInvoices)
}

func TestImportRejectsGarbage(t *testing.T) {
	svc, repo := seededService(t)
	ctx := context.Background()

	for _, body := range []string{`not json`, `[]`, `{}`, `{"unknown": 1}`, `{"customers": "nope"}`} {
		_, err := svc.Import(ctx, []byte(body))
		assert.ErrorIs(t, err, shared.ErrInvalidInput, body)
	}
	assert.Equal(t, "Lakshmi Textiles", repo.Snapshot(ctx).Business.Name)
}

func TestWriteFile(t *testing.T) {
	svc, _ := seededService(t)
	dir := filepath.Join(t.TempDir(), "backups")

	path, err := svc.WriteFile(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "invoice-backup-20251218-103000.json"), path)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc Document
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, "Lakshmi Textiles", doc.Business.Name)
}

func TestBackupRoutes(t *testing.T) {
	svc, _ := seededService(t)
	r := chi.NewRouter()
	NewHandler(nil, svc, 0).MountRoutes(r)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/export", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "invoice-backup-2025-12-18.json")

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/import", bytes.NewBufferString(`{"business":{"name":"New Name"}}`)))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "New Name", svc.Export(context.Background()).Business.Name)

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/import", bytes.NewBufferString(`{}`)))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
