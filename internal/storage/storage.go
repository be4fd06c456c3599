package storage

import (
	"context"
	"time"
)

// TokenKey is the fixed key the admin bearer token lives under.
const TokenKey = "token"

// Storage is durable key/value storage scoped to one visitor.
type Storage interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Backend hands out per-visitor storage.
type Backend interface {
	Scope(visitorID string) Storage
	Healthy(ctx context.Context) bool
	Close() error
}

// Options controls backend behavior.
type Options struct {
	// TTL bounds how long an untouched value survives; zero keeps values forever.
	TTL time.Duration
}
