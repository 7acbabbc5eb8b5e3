package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/spf13/cobra"

	"github.com/gstbill/gstbill/internal/app"
	"github.com/gstbill/gstbill/internal/platform/cache"
	"github.com/gstbill/gstbill/jobs"
)

// QueueStats summarises the current queue state.
type QueueStats struct {
	Queue     string `json:"queue"`
	Pending   int    `json:"pending"`
	Active    int    `json:"active"`
	Scheduled int    `json:"scheduled"`
	Retry     int    `json:"retry"`
	Archived  int    `json:"archived"`
}

// JobsAPI is the queue surface the jobs subcommands drive.
type JobsAPI interface {
	EnqueueRecycleBinPurge(ctx context.Context, retentionDays int) (*asynq.TaskInfo, error)
	EnqueueDatasetBackup(ctx context.Context, dir string) (*asynq.TaskInfo, error)
	InspectQueue(ctx context.Context) (QueueStats, error)
	Close() error
}

// JobsCLI wraps manual management helpers for asynq jobs.
type JobsCLI struct {
	*jobs.Client
	inspector *asynq.Inspector
}

// NewJobsCLI initialises the helpers against redisAddr, a host:port address or a
// redis:// URL.
func NewJobsCLI(redisAddr string) (*JobsCLI, error) {
	opts, err := cache.AsynqOptions(redisAddr)
	if err != nil {
		return nil, err
	}
	return &JobsCLI{Client: jobs.NewClient(opts), inspector: asynq.NewInspector(opts)}, nil
}

// OpenJobsFromEnv builds a JobsCLI from REDIS_ADDR.
func OpenJobsFromEnv(context.Context) (JobsAPI, error) {
	cfg, err := app.LoadConfig()
	if err != nil {
		return nil, err
	}
	if cfg.RedisAddr == "" {
		return nil, errors.New("jobs: REDIS_ADDR is not set")
	}
	return NewJobsCLI(cfg.RedisAddr)
}

// Close releases underlying resources.
func (c *JobsCLI) Close() error {
	return errors.Join(c.inspector.Close(), c.Client.Close())
}

// InspectQueue reports the metrics of the default queue.
func (c *JobsCLI) InspectQueue(context.Context) (QueueStats, error) {
	info, err := c.inspector.GetQueueInfo(jobs.QueueDefault)
	if err != nil {
		return QueueStats{}, err
	}
	stats := QueueStats{Queue: jobs.QueueDefault}
	if info != nil {
		stats.Pending = info.Pending
		stats.Active = info.Active
		stats.Scheduled = info.Scheduled
		stats.Retry = info.Retry
		stats.Archived = info.Archived
	}
	return stats, nil
}

func jobsCommand(opts Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Enqueue background jobs and inspect the queue",
	}

	var (
		retentionDays int
		dir           string
	)
	trigger := &cobra.Command{
		Use:       "trigger TASK",
		Short:     "Enqueue " + jobs.TaskRecycleBinPurge + " or " + jobs.TaskDatasetBackup,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{jobs.TaskRecycleBinPurge, jobs.TaskDatasetBackup},
		RunE: withJobs(opts, func(cmd *cobra.Command, args []string, api JobsAPI) error {
			var (
				info *asynq.TaskInfo
				err  error
			)
			switch args[0] {
			case jobs.TaskRecycleBinPurge:
				info, err = api.EnqueueRecycleBinPurge(cmd.Context(), retentionDays)
			case jobs.TaskDatasetBackup:
				info, err = api.EnqueueDatasetBackup(cmd.Context(), dir)
			default:
				return fmt.Errorf("jobs: unsupported task %s", args[0])
			}
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "enqueued %s id=%s queue=%s\n", info.Type, info.ID, info.Queue)
			return err
		}),
	}
	trigger.Flags().IntVar(&retentionDays, "retention-days", 30, "purge invoices deleted more than this many days ago")
	trigger.Flags().StringVar(&dir, "dir", "", "backup directory; empty uses the worker default")

	stats := &cobra.Command{
		Use:   "stats",
		Short: "Print default queue depth",
		Args:  cobra.NoArgs,
		RunE: withJobs(opts, func(cmd *cobra.Command, _ []string, api JobsAPI) error {
			st, err := api.InspectQueue(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), st)
		}),
	}

	cmd.AddCommand(trigger, stats)
	return cmd
}

func withJobs(opts Options, run func(cmd *cobra.Command, args []string, api JobsAPI) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if opts.OpenJobs == nil {
			return errors.New("jobs: queue not configured")
		}
		api, err := opts.OpenJobs(cmd.Context())
		if err != nil {
			return err
		}
		defer func() { _ = api.Close() }()
		return run(cmd, args, api)
	}
}
