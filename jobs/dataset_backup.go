package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/gstbill/gstbill/internal/jobs"
)

// BackupWriter writes a dataset export into dir and returns the file path.
type BackupWriter interface {
	WriteFile(ctx context.Context, dir string) (string, error)
}

// DatasetBackupJob writes scheduled dataset exports.
type DatasetBackupJob struct {
	Backup     BackupWriter
	DefaultDir string
	Logger     *slog.Logger
	Metrics    *jobmetrics.Metrics
}

// NewDatasetBackupJob wires dependencies for the backup handler.
func NewDatasetBackupJob(backup BackupWriter, defaultDir string, logger *slog.Logger, metrics *jobmetrics.Metrics) *DatasetBackupJob {
	return &DatasetBackupJob{Backup: backup, DefaultDir: defaultDir, Logger: logger, Metrics: metrics}
}

// Handle processes backup tasks.
func (j *DatasetBackupJob) Handle(ctx context.Context, t *asynq.Task) (resultErr error) {
	if j == nil || j.Backup == nil {
		return errors.New("dataset backup: handler not configured")
	}
	var payload DatasetBackupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	dir := payload.Dir
	if dir == "" {
		dir = j.DefaultDir
	}
	if dir == "" {
		return errors.Join(errors.New("dataset backup: no directory configured"), asynq.SkipRetry)
	}

	metrics := metricsOrDefault(j.Metrics)
	tracker := metrics.Track(TaskDatasetBackup)
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := jobLogger(j.Logger, TaskDatasetBackup)
	path, err := j.Backup.WriteFile(ctx, dir)
	if err != nil {
		logger.Error("write backup", slog.String("dir", dir), slog.Any("error", err))
		return err
	}
	metrics.AddItems(TaskDatasetBackup, 1)
	logger.Info("dataset backup written", slog.String("path", path))
	return nil
}
