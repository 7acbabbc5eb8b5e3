package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/gstbill/gstbill/internal/jobs"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// DeletedPurger removes recycle-bin entries deleted before a cutoff.
type DeletedPurger interface {
	PurgeDeletedBefore(ctx context.Context, cutoff time.Time) (int, error)
}

// RecycleBinPurgeJob enforces the recycle-bin retention window.
type RecycleBinPurgeJob struct {
	Store   DeletedPurger
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	OnPurge func(context.Context)
	clock   func() time.Time
}

// NewRecycleBinPurgeJob wires dependencies for the purge handler. onPurge, when set,
// runs after invoices were removed.
func NewRecycleBinPurgeJob(store DeletedPurger, logger *slog.Logger, metrics *jobmetrics.Metrics, onPurge func(context.Context)) *RecycleBinPurgeJob {
	return &RecycleBinPurgeJob{
		Store:   store,
		Logger:  logger,
		Metrics: metrics,
		OnPurge: onPurge,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes purge tasks.
func (j *RecycleBinPurgeJob) Handle(ctx context.Context, t *asynq.Task) (resultErr error) {
	if j == nil || j.Store == nil {
		return errors.New("recycle bin purge: handler not configured")
	}
	var payload RecycleBinPurgePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	metrics := metricsOrDefault(j.Metrics)
	tracker := metrics.Track(TaskRecycleBinPurge)
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := jobLogger(j.Logger, TaskRecycleBinPurge).With(slog.Int("retention_days", payload.RetentionDays))
	if payload.RetentionDays <= 0 {
		logger.Info("retention disabled, nothing to purge")
		return nil
	}

	cutoff := j.clock().AddDate(0, 0, -payload.RetentionDays)
	n, err := j.Store.PurgeDeletedBefore(ctx, cutoff)
	if err != nil {
		logger.Error("purge recycle bin", slog.Any("error", err))
		return err
	}
	metrics.AddItems(TaskRecycleBinPurge, n)
	if n > 0 && j.OnPurge != nil {
		j.OnPurge(ctx)
	}
	logger.Info("recycle bin purged", slog.Int("purged", n), slog.Time("cutoff", cutoff))
	return nil
}

func metricsOrDefault(m *jobmetrics.Metrics) *jobmetrics.Metrics {
	if m != nil {
		return m
	}
	return defaultJobMetrics
}

func jobLogger(logger *slog.Logger, job string) *slog.Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return logger.With(slog.String("job", job))
}
