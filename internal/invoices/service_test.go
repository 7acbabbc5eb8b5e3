package invoices

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gstbill/gstbill/internal/dataset"
	"github.com/gstbill/gstbill/internal/numbering"
	"github.com/gstbill/gstbill/internal/shared"
)

type recordedEvents struct {
	mu     sync.Mutex
	events []string
}

func (r *recordedEvents) InvoiceEvent(_ context.Context, event string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func newTestService(t *testing.T, policy numbering.Policy) (*Service, *dataset.Repository, *recordedEvents, string) {
	t.Helper()
	repo, path := newTestRepo(t)
	events := &recordedEvents{}
	svc := NewService(NewStore(repo), numbering.NewAllocator(repo, policy), events)
	return svc, repo, events, path
}

func draft(name string, gst int, items ...Item) Draft {
	return Draft{Date: "2025-12-18", CustomerName: name, GSTPercent: gst, Items: items}
}

func TestCreateCashInvoiceWithoutGST(t *testing.T) {
	svc, repo, events, _ := newTestService(t, nil)
	ctx := context.Background()

	d := draft("Asha", 0, Item{Name: "Tiffin", PricePerUnit: 1000, Qty: 4, Unit: "box"})
	d.Status = dataset.StatusPaid
	d.PaymentMode = dataset.PaymentCash
	d.PaymentDate = "2025-12-18"

	inv, err := svc.Create(ctx, d)
	require.NoError(t, err)

	assert.Equal(t, 101, inv.InvoiceNumber)
	assert.InDelta(t, 4000, inv.Subtotal, 1e-9)
	assert.Zero(t, inv.GSTAmount)
	assert.InDelta(t, 4000, inv.GrandTotal, 1e-9)
	assert.Zero(t, inv.BalanceDue)
	assert.Equal(t, "Four Thousand Rupees Only", inv.AmountInWords)
	assert.Equal(t, "2025-12-18", inv.PaymentDate)
	assert.InDelta(t, 4000, inv.Items[0].Total, 1e-9)

	ds := repo.Snapshot(ctx)
	assert.Equal(t, 101, ds.Counter.LastInvoiceNumber)
	require.Len(t, ds.Invoices, 1)
	require.Len(t, ds.Customers, 1)
	assert.Equal(t, ds.Customers[0].ID, inv.CustomerID)
	assert.Equal(t, "Asha", ds.Customers[0].Name)

	assert.Equal(t, []string{EventNumberTaken, EventCreated}, events.events)
	assert.Equal(t, 102, svc.Allocator().Peek(ctx))
}

func TestCreateWithGSTAndPartialPayment(t *testing.T) {
	svc, _, _, _ := newTestService(t, nil)

	d := draft("Meena", 18, Item{Name: "Saree", PricePerUnit: 1500, Qty: 3})
	d.ReceivedAmount = 2000
	d.ReceivedDate = "2025-12-18"
	d.PaymentDate = "2025-12-18"

	inv, err := svc.Create(context.Background(), d)
	require.NoError(t, err)

	assert.InDelta(t, 4500, inv.Subtotal, 1e-9)
	assert.InDelta(t, 810, inv.GSTAmount, 1e-9)
	assert.InDelta(t, 5310, inv.GrandTotal, 1e-9)
	assert.InDelta(t, 3310, inv.BalanceDue, 1e-9)
	assert.Equal(t, "Five Thousand Three Hundred Ten Rupees Only", inv.AmountInWords)
	assert.Equal(t, dataset.StatusUnpaid, inv.Status)
	assert.Empty(t, inv.PaymentDate, "payment date only kept for paid invoices")
	assert.Equal(t, "2025-12-18", inv.ReceivedDate)
	assert.Equal(t, "partial", DisplayState(inv))
}

func TestCreateRejectsInvalidInputWithoutWriting(t *testing.T) {
	svc, _, events, path := newTestService(t, nil)
	ctx := context.Background()

	cases := map[string]Draft{
		"bad gst":       draft("Asha", 7, Item{Name: "x", PricePerUnit: 1, Qty: 1}),
		"no name":       draft("  ", 0, Item{Name: "x", PricePerUnit: 1, Qty: 1}),
		"blank items":   draft("Asha", 0, Item{Name: "  ", PricePerUnit: 1, Qty: 1}),
		"no items":      draft("Asha", 0),
		"neg discount":  {CustomerName: "Asha", Discount: -1, Items: []Item{{Name: "x", Qty: 1}}},
		"bad mode":      {CustomerName: "Asha", PaymentMode: "card", Items: []Item{{Name: "x", Qty: 1}}},
		"negative item": draft("Asha", 0, Item{Name: "x", PricePerUnit: -5, Qty: 1}),
	}
	for name, d := range cases {
		_, err := svc.Create(ctx, d)
		assert.ErrorIs(t, err, shared.ErrInvalidInput, name)
	}

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "nothing may be written for invalid drafts")
	assert.Empty(t, events.events)
}

func TestCreateDropsBlankItems(t *testing.T) {
	svc, _, _, _ := newTestService(t, nil)
	inv, err := svc.Create(context.Background(), draft("Asha", 0,
		Item{Name: "", PricePerUnit: 99, Qty: 1},
		Item{Name: "Rice", PricePerUnit: 60, Qty: 2.5},
	))
	require.NoError(t, err)
	require.Len(t, inv.Items, 1)
	assert.InDelta(t, 150, inv.GrandTotal, 1e-9)
}

func TestCreateKeepsExplicitNumberAndCustomer(t *testing.T) {
	svc, repo, _, _ := newTestService(t, nil)
	ctx := context.Background()

	d := draft("Asha", 0, Item{Name: "x", PricePerUnit: 10, Qty: 1})
	d.InvoiceNumber = 250
	d.CustomerID = "cust_existing"
	inv, err := svc.Create(ctx, d)
	require.NoError(t, err)

	assert.Equal(t, 250, inv.InvoiceNumber)
	assert.Equal(t, "cust_existing", inv.CustomerID)
	ds := repo.Snapshot(ctx)
	assert.Empty(t, ds.Customers)
	assert.Equal(t, 250, ds.Counter.LastInvoiceNumber)
	assert.Equal(t, 251, svc.Allocator().Peek(ctx))
}

func TestStrictPolicyRejectsReusedNumber(t *testing.T) {
	svc, _, _, _ := newTestService(t, numbering.StrictPolicy{})
	ctx := context.Background()

	first, err := svc.Create(ctx, draft("Asha", 0, Item{Name: "x", PricePerUnit: 10, Qty: 1}))
	require.NoError(t, err)
	_, err = svc.SoftDelete(ctx, first.ID)
	require.NoError(t, err)

	second, err := svc.Create(ctx, draft("Asha", 0, Item{Name: "y", PricePerUnit: 10, Qty: 1}))
	require.NoError(t, err)
	assert.Equal(t, first.InvoiceNumber+1, second.InvoiceNumber)

	d := draft("Asha", 0, Item{Name: "z", PricePerUnit: 10, Qty: 1})
	d.InvoiceNumber = first.InvoiceNumber
	_, err = svc.Create(ctx, d)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestCreateSnapshotsUPIAccount(t *testing.T) {
	svc, repo, _, _ := newTestService(t, nil)
	ctx := context.Background()
	require.NoError(t, repo.WithTx(ctx, func(ds *dataset.Dataset) error {
		ds.UpiAccounts = append(ds.UpiAccounts, dataset.UpiAccount{ID: "upi_1", Label: "Shop", UpiID: "shop@upi"})
		return nil
	}))

	d := draft("Asha", 0, Item{Name: "x", PricePerUnit: 10, Qty: 1})
	d.PaymentMode = dataset.PaymentUPI
	d.PaymentQrID = "upi_1"
	inv, err := svc.Create(ctx, d)
	require.NoError(t, err)
	require.NotNil(t, inv.PaymentQr)
	assert.Equal(t, "shop@upi", inv.PaymentQr.UpiID)

	require.NoError(t, repo.WithTx(ctx, func(ds *dataset.Dataset) error {
		ds.UpiAccounts = nil
		return nil
	}))
	got, err := svc.Store().Get(ctx, inv.ID)
	require.NoError(t, err)
	require.NotNil(t, got.PaymentQr)
	assert.Equal(t, "Shop", got.PaymentQr.Label)

	notes := "still here"
	updated, ok, err := svc.Update(ctx, inv.ID, Patch{Notes: &notes})
	require.NoError(t, err)
	require.True(t, ok)
	require.NotNil(t, updated.PaymentQr, "snapshot survives edits after the account is removed")
	assert.Equal(t, "shop@upi", updated.PaymentQr.UpiID)
}

func TestUpdateRederivesTotalsWithoutCommittingNumber(t *testing.T) {
	svc, repo, events, _ := newTestService(t, nil)
	ctx := context.Background()
	inv, err := svc.Create(ctx, draft("Asha", 0, Item{Name: "Tiffin", PricePerUnit: 1000, Qty: 4}))
	require.NoError(t, err)

	gst := 18
	bogus := 1.0
	number := 900
	updated, ok, err := svc.Update(ctx, inv.ID, Patch{GSTPercent: &gst, GrandTotal: &bogus, InvoiceNumber: &number})
	require.NoError(t, err)
	require.True(t, ok)

	assert.InDelta(t, 720, updated.GSTAmount, 1e-9)
	assert.InDelta(t, 4720, updated.GrandTotal, 1e-9)
	assert.InDelta(t, 4720, updated.BalanceDue, 1e-9)
	assert.Equal(t, "Four Thousand Seven Hundred Twenty Rupees Only", updated.AmountInWords)
	assert.Equal(t, inv.ID, updated.ID)
	assert.Equal(t, inv.CreatedAt, updated.CreatedAt)
	assert.Equal(t, 900, updated.InvoiceNumber)
	assert.Equal(t, 101, repo.Snapshot(ctx).Counter.LastInvoiceNumber)
	assert.Contains(t, events.events, EventUpdated)

	bad := 3
	_, _, err = svc.Update(ctx, inv.ID, Patch{GSTPercent: &bad})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	_, ok, err = svc.Update(ctx, "missing", Patch{GSTPercent: &gst})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestServiceRecycleBinEvents(t *testing.T) {
	svc, _, events, _ := newTestService(t, nil)
	ctx := context.Background()
	inv, err := svc.Create(ctx, draft("Asha", 0, Item{Name: "x", PricePerUnit: 1, Qty: 1}))
	require.NoError(t, err)
	events.events = nil

	ok, err := svc.SoftDelete(ctx, inv.ID)
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = svc.Restore(ctx, inv.ID)
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = svc.Purge(ctx, inv.ID)
	require.NoError(t, err)
	assert.False(t, ok, "active invoices cannot be purged")

	assert.Equal(t, []string{EventDeleted, EventRestored}, events.events)
}

func TestComputePreview(t *testing.T) {
	p, err := ComputePreview(PreviewInput{
		Items:          []Item{{Name: "Saree", PricePerUnit: 1500, Qty: 3}},
		GSTPercent:     18,
		ReceivedAmount: 1000,
	})
	require.NoError(t, err)
	assert.InDelta(t, 5310, p.GrandTotal, 1e-9)
	assert.Equal(t, "₹5,310", p.Display.GrandTotal)
	assert.Equal(t, "₹4,310", p.Display.BalanceDue)
	assert.True(t, p.PartiallyPaid)
	assert.Equal(t, "Five Thousand Three Hundred Ten Rupees Only", p.AmountInWords)

	_, err = ComputePreview(PreviewInput{GSTPercent: 10})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}
