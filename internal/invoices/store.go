package invoices

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gstbill/gstbill/internal/dataset"
	"github.com/gstbill/gstbill/internal/shared"
)

// errNoop aborts a transaction without writing when the target record is absent.
var errNoop = errors.New("invoices: no-op")

// Store owns the active and deleted invoice partitions. An invoice lives in exactly one.
type Store struct {
	repo *dataset.Repository
	now  func() time.Time
}

// NewStore builds a store on repo.
func NewStore(repo *dataset.Repository) *Store {
	return &Store{repo: repo, now: time.Now}
}

// List returns the active invoices in storage order.
func (s *Store) List(ctx context.Context) []Invoice {
	return s.repo.Snapshot(ctx).Invoices
}

// Deleted returns the recycle bin.
func (s *Store) Deleted(ctx context.Context) []Invoice {
	return s.repo.Snapshot(ctx).DeletedInvoices
}

// Get returns the active invoice with id.
func (s *Store) Get(ctx context.Context, id string) (Invoice, error) {
	ds := s.repo.Snapshot(ctx)
	if i := indexOf(ds.Invoices, id); i >= 0 {
		return ds.Invoices[i], nil
	}
	return Invoice{}, fmt.Errorf("invoice %s: %w", id, shared.ErrNotFound)
}

// Create stores inv as active, assigning an id when absent and stamping createdAt.
// The caller must already have committed inv.InvoiceNumber.
func (s *Store) Create(ctx context.Context, inv Invoice) (Invoice, error) {
	var created Invoice
	err := s.repo.WithTx(ctx, func(ds *dataset.Dataset) error {
		created = s.insert(ds, inv)
		return nil
	})
	if err != nil {
		return Invoice{}, err
	}
	return created, nil
}

func (s *Store) insert(ds *dataset.Dataset, inv Invoice) Invoice {
	inv = inv.Clone()
	inv.ID = shared.EnsureID(inv.ID, "inv")
	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = s.now().UTC()
	}
	inv.DeletedAt = nil
	ds.Invoices = append(ds.Invoices, inv)
	return inv
}

// Update merges patch into an active invoice. Totals are not re-derived here.
// It reports false when id is not active.
func (s *Store) Update(ctx context.Context, id string, patch Patch) (Invoice, bool, error) {
	var updated Invoice
	err := s.repo.WithTx(ctx, func(ds *dataset.Dataset) error {
		i := indexOf(ds.Invoices, id)
		if i < 0 {
			return errNoop
		}
		patch.Apply(&ds.Invoices[i])
		updated = ds.Invoices[i]
		return nil
	})
	return updated, found(err), ignoreNoop(err)
}

// SoftDelete moves an active invoice to the recycle bin and stamps deletedAt.
func (s *Store) SoftDelete(ctx context.Context, id string) (bool, error) {
	err := s.repo.WithTx(ctx, func(ds *dataset.Dataset) error {
		i := indexOf(ds.Invoices, id)
		if i < 0 {
			return errNoop
		}
		inv := ds.Invoices[i]
		deletedAt := s.now().UTC()
		inv.DeletedAt = &deletedAt
		ds.Invoices = removeAt(ds.Invoices, i)
		ds.DeletedInvoices = append(ds.DeletedInvoices, inv)
		return nil
	})
	return found(err), ignoreNoop(err)
}

// Restore moves a deleted invoice back to active and clears deletedAt. Numbers are not
// checked for collisions.
func (s *Store) Restore(ctx context.Context, id string) (bool, error) {
	err := s.repo.WithTx(ctx, func(ds *dataset.Dataset) error {
		i := indexOf(ds.DeletedInvoices, id)
		if i < 0 {
			return errNoop
		}
		inv := ds.DeletedInvoices[i]
		inv.DeletedAt = nil
		ds.DeletedInvoices = removeAt(ds.DeletedInvoices, i)
		ds.Invoices = append(ds.Invoices, inv)
		return nil
	})
	return found(err), ignoreNoop(err)
}

// Purge permanently removes an invoice from the recycle bin.
func (s *Store) Purge(ctx context.Context, id string) (bool, error) {
	err := s.repo.WithTx(ctx, func(ds *dataset.Dataset) error {
		i := indexOf(ds.DeletedInvoices, id)
		if i < 0 {
			return errNoop
		}
		ds.DeletedInvoices = removeAt(ds.DeletedInvoices, i)
		return nil
	})
	return found(err), ignoreNoop(err)
}

// PurgeAll empties the recycle bin and returns how many invoices were removed.
func (s *Store) PurgeAll(ctx context.Context) (int, error) {
	var n int
	err := s.repo.WithTx(ctx, func(ds *dataset.Dataset) error {
		n = len(ds.DeletedInvoices)
		ds.DeletedInvoices = []Invoice{}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

// PurgeDeletedBefore removes recycle-bin entries deleted before cutoff.
func (s *Store) PurgeDeletedBefore(ctx context.Context, cutoff time.Time) (int, error) {
	var n int
	err := s.repo.WithTx(ctx, func(ds *dataset.Dataset) error {
		kept := make([]Invoice, 0, len(ds.DeletedInvoices))
		for _, inv := range ds.DeletedInvoices {
			if inv.DeletedAt != nil && inv.DeletedAt.Before(cutoff) {
				n++
				continue
			}
			kept = append(kept, inv)
		}
		if n == 0 {
			return errNoop
		}
		ds.DeletedInvoices = kept
		return nil
	})
	return n, ignoreNoop(err)
}

// Search matches query against active invoices; see Search.
func (s *Store) Search(ctx context.Context, query string) []Invoice {
	return Search(s.List(ctx), query)
}

// Filter applies criteria to active invoices; see Filter.
func (s *Store) Filter(ctx context.Context, c Criteria) []Invoice {
	return Filter(s.List(ctx), c)
}

// Stats aggregates the active invoices.
func (s *Store) Stats(ctx context.Context) Stats {
	return ComputeStats(s.List(ctx))
}

func indexOf(list []Invoice, id string) int {
	for i := range list {
		if list[i].ID == id {
			return i
		}
	}
	return -1
}

func removeAt(list []Invoice, i int) []Invoice {
	out := make([]Invoice, 0, len(list)-1)
	out = append(out, list[:i]...)
	return append(out, list[i+1:]...)
}

func found(err error) bool {
	return err == nil
}

func ignoreNoop(err error) error {
	if errors.Is(err, errNoop) {
		return nil
	}
	return err
}
