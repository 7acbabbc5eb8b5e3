package dataset

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisKey is where RedisGateway keeps the dataset unless configured otherwise.
const DefaultRedisKey = "gstbill:dataset"

// RedisGateway stores the dataset as one JSON string value.
type RedisGateway struct {
	client *redis.Client
	key    string
}

// NewRedisGateway builds a gateway on client; an empty key uses DefaultRedisKey.
func NewRedisGateway(client *redis.Client, key string) *RedisGateway {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisGateway{client: client, key: key}
}

// Load fetches the value; a missing key yields Default().
func (g *RedisGateway) Load(ctx context.Context) (*Dataset, error) {
	raw, err := g.client.Get(ctx, g.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("dataset: redis get: %w", err)
	}
	return Decode(raw)
}

// Save overwrites the value with a single SET.
func (g *RedisGateway) Save(ctx context.Context, ds *Dataset) error {
	raw, err := Encode(ds)
	if err != nil {
		return err
	}
	if err := g.client.Set(ctx, g.key, raw, 0).Err(); err != nil {
		return fmt.Errorf("dataset: redis set: %w", err)
	}
	return nil
}
