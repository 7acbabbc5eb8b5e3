package invoices

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/gstbill/gstbill/internal/dataset"
	"github.com/gstbill/gstbill/internal/inr"
	"github.com/gstbill/gstbill/internal/numbering"
	"github.com/gstbill/gstbill/internal/shared"
	"github.com/gstbill/gstbill/internal/totals"
)

// Draft is what the invoice form submits. Amount fields are inputs only; every derived
// amount is recomputed on save.
type Draft struct {
	InvoiceNumber int    `json:"invoiceNumber" validate:"gte=0"`
	Date          string `json:"date" validate:"omitempty,datetime=2006-01-02"`

	CustomerID    string `json:"customerId"`
	CustomerName  string `json:"customerName" validate:"required,max=200"`
	CustomerPhone string `json:"customerPhone" validate:"max=50"`
	CustomerGSTIN string `json:"customerGstin" validate:"max=20"`

	Items          []Item  `json:"items"`
	GSTPercent     int     `json:"gstPercent" validate:"oneof=0 5 12 18 28"`
	Discount       float64 `json:"discount" validate:"gte=0"`
	ReceivedAmount float64 `json:"receivedAmount" validate:"gte=0"`
	ReceivedDate   string  `json:"receivedDate"`

	Status      Status      `json:"status" validate:"omitempty,oneof=unpaid paid"`
	PaymentDate string      `json:"paymentDate"`
	PaymentMode PaymentMode `json:"paymentMode" validate:"omitempty,oneof=cash upi bank other"`
	PaymentQrID string      `json:"paymentQrId"`
	Notes       string      `json:"notes"`
}

// Events receives lifecycle notifications after a mutation has been persisted.
type Events interface {
	InvoiceEvent(ctx context.Context, event string)
}

// Event names passed to Events.
const (
	EventCreated     = "created"
	EventUpdated     = "updated"
	EventDeleted     = "deleted"
	EventRestored    = "restored"
	EventPurged      = "purged"
	EventBinEmptied  = "bin_emptied"
	EventNumberTaken = "number_committed"
)

// Service orchestrates invoice creation and edits on top of Store: validation, totals,
// number commit, customer and UPI snapshots.
type Service struct {
	store     *Store
	allocator *numbering.Allocator
	validate  *validator.Validate
	events    []Events
}

// NewService builds the service. events may be empty.
func NewService(store *Store, allocator *numbering.Allocator, events ...Events) *Service {
	return &Service{
		store:     store,
		allocator: allocator,
		validate:  validator.New(),
		events:    events,
	}
}

// Store returns the underlying lifecycle store.
func (s *Service) Store() *Store {
	return s.store
}

// Allocator returns the number allocator.
func (s *Service) Allocator() *numbering.Allocator {
	return s.allocator
}

// Create validates d, computes totals, commits the invoice number and stores the invoice,
// all in a single dataset write. Nothing is written when validation fails.
func (s *Service) Create(ctx context.Context, d Draft) (Invoice, error) {
	inv, err := s.prepare(d)
	if err != nil {
		return Invoice{}, err
	}

	var created Invoice
	err = s.store.repo.WithTx(ctx, func(ds *dataset.Dataset) error {
		policy := s.allocator.Policy()
		if inv.InvoiceNumber == 0 {
			inv.InvoiceNumber = policy.Next(ds)
		}
		if err := policy.Commit(ds, inv.InvoiceNumber); err != nil {
			return err
		}
		linkCustomer(ds, &inv)
		snapshotQR(ds, &inv)
		created = s.store.insert(ds, inv)
		return nil
	})
	if err != nil {
		return Invoice{}, fmt.Errorf("create invoice: %w", err)
	}
	s.emit(ctx, EventNumberTaken)
	s.emit(ctx, EventCreated)
	return created, nil
}

// Update merges patch into the active invoice id and re-derives totals, balance and
// amount in words from the merged inputs. Derived amounts in patch are ignored and the
// invoice number counter is not touched. It reports false when id is not active.
func (s *Service) Update(ctx context.Context, id string, patch Patch) (Invoice, bool, error) {
	var updated Invoice
	err := s.store.repo.WithTx(ctx, func(ds *dataset.Dataset) error {
		i := indexOf(ds.Invoices, id)
		if i < 0 {
			return errNoop
		}
		merged := ds.Invoices[i].Clone()
		patch.Apply(&merged)

		inv, err := s.prepare(draftFrom(merged))
		if err != nil {
			return err
		}
		inv.ID = merged.ID
		inv.CreatedAt = merged.CreatedAt
		if inv.CustomerID == "" {
			linkCustomer(ds, &inv)
		}
		snapshotQR(ds, &inv)
		if inv.PaymentQrID == merged.PaymentQrID && inv.PaymentQr == nil {
			inv.PaymentQr = merged.PaymentQr
		}
		ds.Invoices[i] = inv
		updated = inv
		return nil
	})
	if err != nil && !errors.Is(err, errNoop) {
		return Invoice{}, false, fmt.Errorf("update invoice: %w", err)
	}
	if err != nil {
		return Invoice{}, false, nil
	}
	s.emit(ctx, EventUpdated)
	return updated, true, nil
}

// SoftDelete moves id to the recycle bin.
func (s *Service) SoftDelete(ctx context.Context, id string) (bool, error) {
	ok, err := s.store.SoftDelete(ctx, id)
	if ok {
		s.emit(ctx, EventDeleted)
	}
	return ok, err
}

// Restore moves id back from the recycle bin.
func (s *Service) Restore(ctx context.Context, id string) (bool, error) {
	ok, err := s.store.Restore(ctx, id)
	if ok {
		s.emit(ctx, EventRestored)
	}
	return ok, err
}

// Purge removes id from the recycle bin for good.
func (s *Service) Purge(ctx context.Context, id string) (bool, error) {
	ok, err := s.store.Purge(ctx, id)
	if ok {
		s.emit(ctx, EventPurged)
	}
	return ok, err
}

// PurgeAll empties the recycle bin.
func (s *Service) PurgeAll(ctx context.Context) (int, error) {
	n, err := s.store.PurgeAll(ctx)
	if err == nil {
		s.emit(ctx, EventBinEmptied)
	}
	return n, err
}

// CommitNumber records number as allocated without creating an invoice.
func (s *Service) CommitNumber(ctx context.Context, number int) error {
	if err := s.allocator.Commit(ctx, number); err != nil {
		return err
	}
	s.emit(ctx, EventNumberTaken)
	return nil
}

// prepare validates d and builds the invoice with derived amounts. Items with a blank
// name are dropped; at least one must remain.
func (s *Service) prepare(d Draft) (Invoice, error) {
	d.CustomerName = strings.TrimSpace(d.CustomerName)
	d.CustomerPhone = strings.TrimSpace(d.CustomerPhone)
	d.CustomerGSTIN = strings.TrimSpace(d.CustomerGSTIN)
	d.Notes = strings.TrimSpace(d.Notes)

	if err := s.validate.Struct(d); err != nil {
		return Invoice{}, validationError(err)
	}

	items := make([]Item, 0, len(d.Items))
	for _, it := range d.Items {
		it.Name = strings.TrimSpace(it.Name)
		if it.Name == "" {
			continue
		}
		if it.PricePerUnit < 0 || it.Qty < 0 {
			return Invoice{}, fmt.Errorf("%w: item %q has a negative price or quantity", shared.ErrInvalidInput, it.Name)
		}
		items = append(items, it)
	}
	if len(items) == 0 {
		return Invoice{}, fmt.Errorf("%w: at least one item is required", shared.ErrInvalidInput)
	}

	lines := make([]totals.Line, len(items))
	for i, it := range items {
		lines[i] = totals.Line{PricePerUnit: it.PricePerUnit, Qty: it.Qty}
	}
	t := totals.Compute(lines, d.GSTPercent, d.Discount, d.ReceivedAmount)
	for i := range items {
		items[i].Total = t.LineTotals[i]
	}

	status := d.Status
	if status == "" {
		status = dataset.StatusUnpaid
	}
	date := d.Date
	if date == "" {
		date = inr.Today()
	}
	paymentDate := ""
	if status == dataset.StatusPaid {
		paymentDate = d.PaymentDate
	}
	receivedDate := ""
	if t.Received > 0 {
		receivedDate = d.ReceivedDate
	}

	return Invoice{
		InvoiceNumber:  d.InvoiceNumber,
		Date:           date,
		CustomerID:     d.CustomerID,
		CustomerName:   d.CustomerName,
		CustomerPhone:  d.CustomerPhone,
		CustomerGSTIN:  d.CustomerGSTIN,
		Items:          items,
		Subtotal:       t.Subtotal,
		GSTPercent:     t.GSTPercent,
		GSTAmount:      t.GSTAmount,
		Discount:       t.Discount,
		GrandTotal:     t.GrandTotal,
		ReceivedAmount: t.Received,
		ReceivedDate:   receivedDate,
		BalanceDue:     t.BalanceDue,
		AmountInWords:  inr.AmountInWords(t.GrandTotal),
		Status:         status,
		PaymentDate:    paymentDate,
		PaymentMode:    d.PaymentMode,
		PaymentQrID:    d.PaymentQrID,
		Notes:          d.Notes,
	}, nil
}

func draftFrom(inv Invoice) Draft {
	return Draft{
		InvoiceNumber:  inv.InvoiceNumber,
		Date:           inv.Date,
		CustomerID:     inv.CustomerID,
		CustomerName:   inv.CustomerName,
		CustomerPhone:  inv.CustomerPhone,
		CustomerGSTIN:  inv.CustomerGSTIN,
		Items:          inv.Items,
		GSTPercent:     inv.GSTPercent,
		Discount:       inv.Discount,
		ReceivedAmount: inv.ReceivedAmount,
		ReceivedDate:   inv.ReceivedDate,
		Status:         inv.Status,
		PaymentDate:    inv.PaymentDate,
		PaymentMode:    inv.PaymentMode,
		PaymentQrID:    inv.PaymentQrID,
		Notes:          inv.Notes,
	}
}

// linkCustomer creates a customer record for a name typed into the form.
func linkCustomer(ds *dataset.Dataset, inv *Invoice) {
	if inv.CustomerID != "" || inv.CustomerName == "" {
		return
	}
	cust := dataset.Customer{
		ID:    shared.NewID("cust"),
		Name:  inv.CustomerName,
		Phone: inv.CustomerPhone,
		GSTIN: inv.CustomerGSTIN,
	}
	ds.Customers = append(ds.Customers, cust)
	inv.CustomerID = cust.ID
}

// snapshotQR copies the referenced UPI account onto the invoice.
func snapshotQR(ds *dataset.Dataset, inv *Invoice) {
	inv.PaymentQr = nil
	if inv.PaymentQrID == "" {
		return
	}
	for _, acc := range ds.UpiAccounts {
		if acc.ID == inv.PaymentQrID {
			inv.PaymentQr = &dataset.PaymentQR{Label: acc.Label, UpiID: acc.UpiID, QRImage: acc.QRImage}
			return
		}
	}
}

func (s *Service) emit(ctx context.Context, event string) {
	for _, e := range s.events {
		if e != nil {
			e.InvoiceEvent(ctx, event)
		}
	}
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
		}
		return fmt.Errorf("%w: %s", shared.ErrInvalidInput, strings.Join(fields, "; "))
	}
	return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
}
