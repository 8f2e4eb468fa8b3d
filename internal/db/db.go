// Package db provides the durable key-value store taskflow keeps all state in.
package db

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Well-known keys
const (
	UserKey        = "taskflow_user"
	UsersKey       = "taskflow_users"
	tasksKeyPrefix = "taskflow_tasks_"
)

// Backend names accepted by Open
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

var (
	// ErrMalformedStoredData is returned when a stored value cannot be decoded or fails validation.
	ErrMalformedStoredData = errors.New("malformed stored data")
	// ErrUnknownBackend is returned by Open for unsupported backend names.
	ErrUnknownBackend = errors.New("unknown storage backend")
)

// TasksKey returns the key holding the task list of a user
func TasksKey(userID string) string {
	return tasksKeyPrefix + userID
}

// Store is a durable key-value store.
// Get reports found=false for absent keys; Delete of an absent key is not an error.
type Store interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error

	// SetMany writes all entries atomically: either every key is written or none is.
	SetMany(ctx context.Context, entries map[string][]byte) error

	Close() error
}

// Options selects and configures a backend
type Options struct {
	Backend     string
	SQLitePath  string
	RedisAddr   string
	RedisPrefix string
}

// Open creates the store described by opts
func Open(ctx context.Context, opts Options) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Backend)) {
	case "", BackendSQLite:
		if opts.SQLitePath == "" {
			return nil, fmt.Errorf("sqlite backend requires a database path")
		}
		// Ensure the directory exists
		if err := os.MkdirAll(filepath.Dir(opts.SQLitePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		return OpenSQLite(opts.SQLitePath)
	case BackendRedis:
		return OpenRedis(ctx, opts.RedisAddr, opts.RedisPrefix)
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
	}
}
