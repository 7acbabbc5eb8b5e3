package masterdata

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gstbill/gstbill/internal/dataset"
	"github.com/gstbill/gstbill/internal/shared"
)

func newTestService(t *testing.T) (*Service, *dataset.Repository) {
	t.Helper()
	repo := dataset.NewRepository(dataset.NewFileGateway(filepath.Join(t.TempDir(), "db.json")), nil)
	return NewService(repo), repo
}

func ptr[T any](v T) *T { return &v }

func TestBusinessMerge(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	assert.Equal(t, "Your Business", svc.Business(ctx).Name)

	b, err := svc.UpdateBusiness(ctx, BusinessPatch{Phone: ptr("98765"), Logo: ptr("data:image/png;base64,AA")})
	require.NoError(t, err)
	assert.Equal(t, "Your Business", b.Name)
	assert.Equal(t, "98765", b.Phone)
	require.NotNil(t, b.Logo)

	b, err = svc.UpdateBusiness(ctx, BusinessPatch{Name: ptr("Lakshmi Textiles"), Logo: ptr("")})
	require.NoError(t, err)
	assert.Equal(t, "Lakshmi Textiles", b.Name)
	assert.Equal(t, "98765", b.Phone)
	assert.Nil(t, b.Logo)

	_, err = svc.UpdateBusiness(ctx, BusinessPatch{Name: ptr("  ")})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
	_, err = svc.UpdateBusiness(ctx, BusinessPatch{GSTIN: ptr("123")})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
	assert.Equal(t, "Lakshmi Textiles", svc.Business(ctx).Name)
}

func TestCustomerCRUD(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	c, err := svc.CreateCustomer(ctx, Customer{Name: " Asha ", Phone: "999"})
	require.NoError(t, err)
	assert.Regexp(t, `^cust_[0-9a-f]{8}$`, c.ID)
	assert.Equal(t, "Asha", c.Name)

	_, err = svc.CreateCustomer(ctx, Customer{ID: c.ID, Name: "Dup"})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
	_, err = svc.CreateCustomer(ctx, Customer{Name: ""})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	updated, ok, err := svc.UpdateCustomer(ctx, c.ID, CustomerPatch{Address: ptr("MG Road")})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Asha", updated.Name)
	assert.Equal(t, "MG Road", updated.Address)

	_, ok, err = svc.UpdateCustomer(ctx, "cust_missing", CustomerPatch{Name: ptr("x")})
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = svc.UpdateCustomer(ctx, c.ID, CustomerPatch{Name: ptr("")})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	ok, err = svc.DeleteCustomer(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, svc.Customers(ctx))

	ok, err = svc.DeleteCustomer(ctx, c.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestProductValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateProduct(ctx, Product{Name: "Rice", DefaultPrice: -1})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	p, err := svc.CreateProduct(ctx, Product{Name: "Rice", Unit: "kg", DefaultPrice: 60})
	require.NoError(t, err)
	assert.Regexp(t, `^prod_`, p.ID)

	p, ok, err := svc.UpdateProduct(ctx, p.ID, ProductPatch{DefaultPrice: ptr(65.5)})
	require.NoError(t, err)
	require.True(t, ok)
	assert.InDelta(t, 65.5, p.DefaultPrice, 1e-9)
	assert.Equal(t, "kg", p.Unit)
	assert.Len(t, svc.Products(ctx), 1)
}

func TestDeletingUpiAccountKeepsInvoiceSnapshot(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateUpiAccount(ctx, UpiAccount{Label: "Shop", UpiID: "not-an-upi"})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	acc, err := svc.CreateUpiAccount(ctx, UpiAccount{Label: "Shop", UpiID: "shop@okbank"})
	require.NoError(t, err)
	require.NoError(t, repo.WithTx(ctx, func(ds *dataset.Dataset) error {
		ds.Invoices = append(ds.Invoices, dataset.Invoice{
			ID: "inv_1", InvoiceNumber: 101, PaymentQrID: acc.ID,
			PaymentQr: &dataset.PaymentQR{Label: acc.Label, UpiID: acc.UpiID},
		})
		return nil
	}))

	ok, err := svc.DeleteUpiAccount(ctx, acc.ID)
	require.NoError(t, err)
	require.True(t, ok)

	ds := repo.Snapshot(ctx)
	assert.Empty(t, ds.UpiAccounts)
	require.Len(t, ds.Invoices, 1)
	assert.Equal(t, acc.ID, ds.Invoices[0].PaymentQrID)
	assert.Equal(t, "shop@okbank", ds.Invoices[0].PaymentQr.UpiID)
}
