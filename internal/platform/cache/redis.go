// Package cache holds the redis client constructor and a versioned JSON cache on top of it.
package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

const pingTimeout = 5 * time.Second

// New connects to target, which is either a host:port address or a redis:// or rediss://
// URL carrying credentials and a database number. The client is returned only once it
// answers a ping.
func New(ctx context.Context, target string) (*redis.Client, error) {
	opts, err := ParseOptions(target)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("platform/cache: ping %s: %w", opts.Addr, err)
	}
	return client, nil
}

// ParseOptions turns a REDIS_ADDR value into client options.
func ParseOptions(target string) (*redis.Options, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return nil, fmt.Errorf("platform/cache: empty redis address")
	}
	if strings.Contains(target, "://") {
		opts, err := redis.ParseURL(target)
		if err != nil {
			return nil, fmt.Errorf("platform/cache: parse url: %w", err)
		}
		return opts, nil
	}
	return &redis.Options{Addr: target}, nil
}

// AsynqOptions turns the same REDIS_ADDR value into asynq connection options, so the
// queue sees the credentials and database number the dataset store uses.
func AsynqOptions(target string) (asynq.RedisConnOpt, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return nil, fmt.Errorf("platform/cache: empty redis address")
	}
	if strings.Contains(target, "://") {
		opts, err := asynq.ParseRedisURI(target)
		if err != nil {
			return nil, fmt.Errorf("platform/cache: parse url: %w", err)
		}
		return opts, nil
	}
	return asynq.RedisClientOpt{Addr: target}, nil
}
