// Package jobs runs the background tasks of the invoicing service on asynq: recycle-bin
// retention and scheduled dataset backups.
package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskRecycleBinPurge removes recycle-bin entries older than the retention window.
	TaskRecycleBinPurge = "recyclebin:purge"
	// TaskDatasetBackup writes a timestamped export of the dataset.
	TaskDatasetBackup = "dataset:backup"
)

// RecycleBinPurgePayload configures a purge run. RetentionDays <= 0 keeps everything.
type RecycleBinPurgePayload struct {
	RetentionDays int `json:"retentionDays"`
}

// DatasetBackupPayload configures a backup run. An empty Dir uses the worker default.
type DatasetBackupPayload struct {
	Dir string `json:"dir,omitempty"`
}

// NewRecycleBinPurgeTask constructs a purge task.
func NewRecycleBinPurgeTask(retentionDays int) (*asynq.Task, error) {
	body, err := json.Marshal(RecycleBinPurgePayload{RetentionDays: retentionDays})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskRecycleBinPurge, body, asynq.Queue(QueueDefault), asynq.MaxRetry(3)), nil
}

// NewDatasetBackupTask constructs a backup task.
func NewDatasetBackupTask(dir string) (*asynq.Task, error) {
	body, err := json.Marshal(DatasetBackupPayload{Dir: dir})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDatasetBackup, body, asynq.Queue(QueueDefault), asynq.MaxRetry(3)), nil
}
