package dataset

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gstbill/gstbill/internal/shared"
)

// Repository is the explicit handle components use to read and mutate the dataset.
// Writers are serialized within the process; every mutation is load, apply, save.
type Repository struct {
	gateway Gateway
	logger  *slog.Logger
	mu      sync.Mutex
}

// NewRepository wraps gateway. A nil logger discards output.
func NewRepository(gateway Gateway, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Repository{gateway: gateway, logger: logger}
}

// Snapshot loads the current dataset. An unreadable store yields Default() with a warning.
func (r *Repository) Snapshot(ctx context.Context) *Dataset {
	ds, err := r.gateway.Load(ctx)
	if err != nil {
		r.logger.Warn("dataset load failed, using defaults", slog.Any("error", err))
		return Default()
	}
	return ds
}

// WithTx loads the dataset, applies fn and saves the result. When fn fails nothing is
// written. Loading failures abort the write so an unreadable store is never clobbered
// with defaults; save failures are returned wrapped in shared.ErrPersistence.
// Gateways implementing Updater run the whole cycle in one store transaction, and fn
// may then be called more than once.
func (r *Repository) WithTx(ctx context.Context, fn func(*Dataset) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if u, ok := r.gateway.(Updater); ok {
		return r.update(ctx, u, fn)
	}

	ds, err := r.gateway.Load(ctx)
	if err != nil {
		return fmt.Errorf("%w: load: %v", shared.ErrPersistence, err)
	}
	if err := fn(ds); err != nil {
		return err
	}
	if err := r.gateway.Save(ctx, ds.Normalize()); err != nil {
		r.logger.Error("dataset save failed", slog.Any("error", err))
		return fmt.Errorf("%w: %v", shared.ErrPersistence, err)
	}
	return nil
}

func (r *Repository) update(ctx context.Context, u Updater, fn func(*Dataset) error) error {
	var fnErr error
	err := u.Update(ctx, func(ds *Dataset) error {
		fnErr = fn(ds)
		return fnErr
	})
	if fnErr != nil {
		return fnErr
	}
	if err != nil {
		r.logger.Error("dataset save failed", slog.Any("error", err))
		return fmt.Errorf("%w: %v", shared.ErrPersistence, err)
	}
	return nil
}
