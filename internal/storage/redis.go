package storage

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "idcard:visitor:"

// Redis stores visitor values as plain string keys.
type Redis struct {
	Client *redis.Client
	ttl    time.Duration
}

// NewRedis connects to redis with short timeouts.
func NewRedis(addr string, opts Options) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  1 * time.Second,
		WriteTimeout: 1 * time.Second,
	})
	return NewRedisWithClient(client, opts)
}

// NewRedisWithClient wraps an existing client.
func NewRedisWithClient(client *redis.Client, opts Options) *Redis {
	return &Redis{Client: client, ttl: opts.TTL}
}

// Scope returns storage for one visitor.
func (r *Redis) Scope(visitorID string) Storage {
	return &redisScope{r: r, prefix: keyPrefix + visitorID + ":"}
}

// Healthy verifies redis connectivity.
func (r *Redis) Healthy(ctx context.Context) bool {
	if r == nil || r.Client == nil {
		return false
	}
	return r.Client.Ping(ctx).Err() == nil
}

// Close closes the underlying client.
func (r *Redis) Close() error {
	return r.Client.Close()
}

type redisScope struct {
	r      *Redis
	prefix string
}

func (s *redisScope) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.r.Client.Get(ctx, s.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (s *redisScope) Set(ctx context.Context, key, value string) error {
	return s.r.Client.Set(ctx, s.prefix+key, value, s.r.ttl).Err()
}

func (s *redisScope) Delete(ctx context.Context, key string) error {
	return s.r.Client.Del(ctx, s.prefix+key).Err()
}
