// Package dashboard serves the invoice summary shown on the landing page, cached in redis
// and invalidated whenever invoices change.
package dashboard

import (
	"context"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"github.com/gstbill/gstbill/internal/inr"
	"github.com/gstbill/gstbill/internal/invoices"
	"github.com/gstbill/gstbill/internal/platform/cache"
)

// Summary is the dashboard payload.
type Summary struct {
	invoices.Stats
	RecycleBinCount int `json:"recycleBinCount"`
	Display         struct {
		TotalRevenue   string `json:"totalRevenue"`
		PaidAmount     string `json:"paidAmount"`
		UnpaidAmount   string `json:"unpaidAmount"`
		PartialBalance string `json:"partialBalance"`
	} `json:"display"`
}

// Service computes and caches Summary.
type Service struct {
	store  *invoices.Store
	cache  *cache.Versioned
	logger *slog.Logger
	group  singleflight.Group
}

// NewService builds the dashboard. A nil cache computes on every call.
func NewService(store *invoices.Store, c *cache.Versioned, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{store: store, cache: c, logger: logger}
}

// Summary returns the cached summary, computing it at most once per version across
// concurrent callers. Cache failures fall back to a direct computation.
func (s *Service) Summary(ctx context.Context) (Summary, error) {
	key, err := s.cache.Key(ctx, "summary")
	if err != nil {
		s.logger.Warn("stats cache unavailable", slog.Any("error", err))
		return s.compute(ctx), nil
	}

	ch := s.group.DoChan(key, func() (any, error) {
		var out Summary
		err := s.cache.FetchJSON(ctx, key, &out, func(ctx context.Context) (any, error) {
			return s.compute(ctx), nil
		})
		return out, err
	})
	select {
	case <-ctx.Done():
		return Summary{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			s.logger.Warn("stats cache fetch failed", slog.Any("error", res.Err))
			return s.compute(ctx), nil
		}
		return res.Val.(Summary), nil
	}
}

func (s *Service) compute(ctx context.Context) Summary {
	out := Summary{
		Stats:           s.store.Stats(ctx),
		RecycleBinCount: len(s.store.Deleted(ctx)),
	}
	out.Display.TotalRevenue = inr.FormatCurrency(out.TotalRevenue)
	out.Display.PaidAmount = inr.FormatCurrency(out.PaidAmount)
	out.Display.UnpaidAmount = inr.FormatCurrency(out.UnpaidAmount)
	out.Display.PartialBalance = inr.FormatCurrency(out.PartialBalance)
	return out
}

// Invalidate drops every cached summary.
func (s *Service) Invalidate(ctx context.Context) {
	if err := s.cache.Bump(ctx); err != nil {
		s.logger.Warn("stats cache bump failed", slog.Any("error", err))
	}
}

// InvoiceEvent invalidates the cache after any invoice mutation.
func (s *Service) InvoiceEvent(ctx context.Context, _ string) {
	s.Invalidate(ctx)
}
