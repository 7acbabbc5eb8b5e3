package app

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/gstbill/gstbill/internal/numbering"
)

// Store drivers accepted in STORE_DRIVER.
const (
	StoreFile     = "file"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

// Config holds runtime configuration for the application.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":5000"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"15s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"30s"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`
	LogLevel  string `envconfig:"LOG_LEVEL"`

	StoreDriver     string `envconfig:"STORE_DRIVER" default:"file"`
	DataFile        string `envconfig:"DATA_FILE" default:"data/db.json"`
	PGDSN           string `envconfig:"PG_DSN"`
	RedisAddr       string `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	RedisDatasetKey string `envconfig:"REDIS_DATASET_KEY" default:"gstbill:dataset"`

	StatsCacheTTL   time.Duration `envconfig:"STATS_CACHE_TTL" default:"10m"`
	NumberingPolicy string        `envconfig:"NUMBERING_POLICY" default:"maxscan"`

	RateLimitPerMinute int   `envconfig:"RATE_LIMIT_PER_MINUTE" default:"120"`
	MaxBodyBytes       int64 `envconfig:"MAX_BODY_BYTES" default:"8388608"`

	RecycleBinRetentionDays int    `envconfig:"RECYCLE_BIN_RETENTION_DAYS" default:"30"`
	BackupDir               string `envconfig:"BACKUP_DIR" default:"data/backups"`
	BackupCron              string `envconfig:"BACKUP_CRON" default:"0 2 * * *"`
	PurgeCron               string `envconfig:"PURGE_CRON" default:"30 2 * * *"`
	WorkerConcurrency       int    `envconfig:"WORKER_CONCURRENCY" default:"2"`
	WorkerMetricsAddr       string `envconfig:"WORKER_METRICS_ADDR" default:":5001"`
}

// LoadDotEnv loads .env style files into the process environment without overriding
// variables that are already set. Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("config: load %s: %w", f, err)
		}
	}
	return nil
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field requirements envconfig cannot express.
func (c *Config) Validate() error {
	c.StoreDriver = strings.ToLower(strings.TrimSpace(c.StoreDriver))
	switch c.StoreDriver {
	case StoreFile:
		if c.DataFile == "" {
			return fmt.Errorf("config: DATA_FILE is required for the file store")
		}
	case StoreRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("config: REDIS_ADDR is required for the redis store")
		}
	case StorePostgres:
		if c.PGDSN == "" {
			return fmt.Errorf("config: PG_DSN is required for the postgres store")
		}
	default:
		return fmt.Errorf("config: unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if _, err := numbering.ParsePolicy(c.NumberingPolicy); err != nil {
		return fmt.Errorf("config: NUMBERING_POLICY: %w", err)
	}
	if _, err := c.logLevel(); err != nil {
		return fmt.Errorf("config: LOG_LEVEL: %w", err)
	}
	if c.RateLimitPerMinute < 0 {
		return fmt.Errorf("config: RATE_LIMIT_PER_MINUTE must not be negative")
	}
	return nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}
