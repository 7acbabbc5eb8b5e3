// Package numbering hands out invoice numbers: peek shows the tentative next number
// while a form is open, commit records it once the invoice is actually created.
package numbering

import (
	"context"
	"fmt"
	"strings"

	"github.com/gstbill/gstbill/internal/dataset"
	"github.com/gstbill/gstbill/internal/shared"
)

// Policy names accepted by ParsePolicy.
const (
	PolicyMaxScan = "maxscan"
	PolicyStrict  = "strict"
)

// Policy derives and records invoice numbers on a loaded dataset.
type Policy interface {
	Name() string
	Next(ds *dataset.Dataset) int
	Commit(ds *dataset.Dataset, number int) error
}

// ParsePolicy maps a configuration value to a Policy. Empty selects max-scan.
func ParsePolicy(name string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", PolicyMaxScan:
		return MaxScanPolicy{}, nil
	case PolicyStrict:
		return StrictPolicy{}, nil
	default:
		return nil, fmt.Errorf("numbering: unknown policy %q", name)
	}
}

// MaxScanPolicy derives the next number from the active invoices alone. It heals a stale
// counter, but deleting the highest-numbered invoice lets its number be handed out again.
type MaxScanPolicy struct{}

func (MaxScanPolicy) Name() string { return PolicyMaxScan }

// Next returns max(active invoice numbers, 100) + 1.
func (MaxScanPolicy) Next(ds *dataset.Dataset) int {
	return maxActive(ds) + 1
}

// Commit raises the counter to number. A reused lower number leaves it alone, so the
// counter stays at the highest number ever committed.
func (MaxScanPolicy) Commit(ds *dataset.Dataset, number int) error {
	if number <= 0 {
		return fmt.Errorf("%w: invoice number must be positive", shared.ErrInvalidInput)
	}
	ds.Counter.LastInvoiceNumber = max(ds.Counter.LastInvoiceNumber, number)
	return nil
}

// StrictPolicy never hands out a number at or below the stored counter.
type StrictPolicy struct{}

func (StrictPolicy) Name() string { return PolicyStrict }

// Next returns max(counter, active invoice numbers, 100) + 1.
func (StrictPolicy) Next(ds *dataset.Dataset) int {
	return max(maxActive(ds), ds.Counter.LastInvoiceNumber) + 1
}

// Commit rejects numbers that were already committed.
func (StrictPolicy) Commit(ds *dataset.Dataset, number int) error {
	if number <= ds.Counter.LastInvoiceNumber {
		return fmt.Errorf("%w: invoice number %d already allocated (last %d)",
			shared.ErrInvalidInput, number, ds.Counter.LastInvoiceNumber)
	}
	ds.Counter.LastInvoiceNumber = number
	return nil
}

func maxActive(ds *dataset.Dataset) int {
	highest := dataset.DefaultStartNumber
	for _, inv := range ds.Invoices {
		highest = max(highest, inv.InvoiceNumber)
	}
	return highest
}

// Allocator exposes peek and commit against the stored dataset.
type Allocator struct {
	repo   *dataset.Repository
	policy Policy
}

// NewAllocator builds an allocator; a nil policy selects max-scan.
func NewAllocator(repo *dataset.Repository, policy Policy) *Allocator {
	if policy == nil {
		policy = MaxScanPolicy{}
	}
	return &Allocator{repo: repo, policy: policy}
}

// Policy returns the active policy.
func (a *Allocator) Policy() Policy {
	return a.policy
}

// Peek returns the tentative next number without reserving it.
func (a *Allocator) Peek(ctx context.Context) int {
	return a.policy.Next(a.repo.Snapshot(ctx))
}

// Last returns the stored counter.
func (a *Allocator) Last(ctx context.Context) int {
	return a.repo.Snapshot(ctx).Counter.LastInvoiceNumber
}

// Commit persists number as the last allocated invoice number.
func (a *Allocator) Commit(ctx context.Context, number int) error {
	return a.repo.WithTx(ctx, func(ds *dataset.Dataset) error {
		return a.policy.Commit(ds, number)
	})
}
