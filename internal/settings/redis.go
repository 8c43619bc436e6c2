package settings

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// RedisBackend keeps all settings of a namespace in a single hash.
type RedisBackend struct {
	client *redis.Client
	key    string
}

type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	Namespace string
}

func NewRedisBackend(cfg RedisConfig) *RedisBackend {
	key := cfg.Namespace
	if key == "" {
		key = "weather"
	}
	return &RedisBackend{
		client: redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
		key: key,
	}
}

func (r *RedisBackend) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisBackend) Load(ctx context.Context) (map[string]string, error) {
	values, err := r.client.HGetAll(ctx, r.key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis HGETALL %s: %w", r.key, err)
	}
	return values, nil
}

func (r *RedisBackend) Save(ctx context.Context, set map[string]string, deleted []string) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if len(deleted) > 0 {
			pipe.HDel(ctx, r.key, deleted...)
		}
		if len(set) > 0 {
			fields := make(map[string]interface{}, len(set))
			for k, v := range set {
				fields[k] = v
			}
			pipe.HSet(ctx, r.key, fields)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis save %s: %w", r.key, err)
	}
	return nil
}

func (r *RedisBackend) Close() error {
	return r.client.Close()
}

var _ Backend = (*RedisBackend)(nil)
