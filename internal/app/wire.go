package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/gstbill/gstbill/internal/backup"
	"github.com/gstbill/gstbill/internal/dashboard"
	"github.com/gstbill/gstbill/internal/dataset"
	"github.com/gstbill/gstbill/internal/invoices"
	"github.com/gstbill/gstbill/internal/masterdata"
	"github.com/gstbill/gstbill/internal/numbering"
	"github.com/gstbill/gstbill/internal/observability"
	"github.com/gstbill/gstbill/internal/platform/cache"
	"github.com/gstbill/gstbill/internal/platform/db"
	"github.com/gstbill/gstbill/jobs"
)

// Storage is the opened dataset gateway plus the connections behind it.
type Storage struct {
	Gateway dataset.Gateway
	// Redis is the shared client for the stats cache; nil when redis is unreachable.
	Redis   *redis.Client
	closers []func()
}

// Close releases every connection opened by OpenStorage.
func (s *Storage) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}

// OpenStorage connects the gateway selected by STORE_DRIVER. Redis is optional unless it
// is the store itself.
func OpenStorage(ctx context.Context, cfg *Config, logger *slog.Logger) (*Storage, error) {
	if logger == nil {
		logger = slog.Default()
	}
	st := &Storage{}

	if cfg.RedisAddr != "" {
		client, err := cache.New(ctx, cfg.RedisAddr)
		switch {
		case err == nil:
			st.Redis = client
			st.closers = append(st.closers, func() { _ = client.Close() })
		case cfg.StoreDriver == StoreRedis:
			return nil, fmt.Errorf("open redis store: %w", err)
		default:
			logger.Warn("redis unavailable, stats cache disabled", slog.Any("error", err))
		}
	}

	switch cfg.StoreDriver {
	case StoreRedis:
		st.Gateway = dataset.NewRedisGateway(st.Redis, cfg.RedisDatasetKey)
	case StorePostgres:
		pool, err := db.New(ctx, cfg.PGDSN)
		if err != nil {
			st.Close()
			return nil, fmt.Errorf("open postgres store: %w", err)
		}
		st.closers = append(st.closers, pool.Close)
		gw := dataset.NewPostgresGateway(pool)
		if err := gw.EnsureSchema(ctx); err != nil {
			st.Close()
			return nil, fmt.Errorf("ensure dataset schema: %w", err)
		}
		st.Gateway = gw
	default:
		st.Gateway = dataset.NewFileGateway(cfg.DataFile)
	}
	logger.Info("dataset store ready", slog.String("driver", cfg.StoreDriver))
	return st, nil
}

// Services holds every domain service built over one dataset repository.
type Services struct {
	Repo       *dataset.Repository
	Store      *invoices.Store
	Allocator  *numbering.Allocator
	Invoices   *invoices.Service
	MasterData *masterdata.Service
	Dashboard  *dashboard.Service
	Backup     *backup.Service
}

// NewServices wires the domain services. metrics may be nil.
func NewServices(cfg *Config, logger *slog.Logger, storage *Storage, metrics *observability.Metrics) (*Services, error) {
	policy, err := numbering.ParsePolicy(cfg.NumberingPolicy)
	if err != nil {
		return nil, err
	}
	repo := dataset.NewRepository(metrics.InstrumentGateway(cfg.StoreDriver, storage.Gateway), logger)
	store := invoices.NewStore(repo)
	allocator := numbering.NewAllocator(repo, policy)

	var statsCache *cache.Versioned
	if storage.Redis != nil {
		statsCache = cache.NewVersioned(storage.Redis, "gstbill:stats", cfg.StatsCacheTTL)
	}
	dash := dashboard.NewService(store, statsCache, logger)

	events := []invoices.Events{dash}
	if metrics != nil {
		events = append(events, metrics)
	}

	return &Services{
		Repo:       repo,
		Store:      store,
		Allocator:  allocator,
		Invoices:   invoices.NewService(store, allocator, events...),
		MasterData: masterdata.NewService(repo),
		Dashboard:  dash,
		Backup:     backup.NewService(repo, dash.Invalidate),
	}, nil
}

// RouterParams builds the HTTP handlers over s. metrics and inspector may be nil.
func (s *Services) RouterParams(cfg *Config, logger *slog.Logger, metrics *observability.Metrics, inspector jobs.QueueInspector) RouterParams {
	return RouterParams{
		Logger:            logger,
		Config:            cfg,
		InvoicesHandler:   invoices.NewHandler(logger, s.Invoices, cfg.MaxBodyBytes),
		MasterDataHandler: masterdata.NewHandler(logger, s.MasterData, cfg.MaxBodyBytes),
		DashboardHandler:  dashboard.NewHandler(s.Dashboard),
		BackupHandler:     backup.NewHandler(logger, s.Backup, cfg.MaxBodyBytes),
		JobHandler:        jobs.NewHandler(inspector, logger),
		Metrics:           metrics,
	}
}
