// Package kv provides the persistent string-keyed store that backs the
// session tokens and the bookmarks list.
//
// A Store is shared mutable state with no transaction discipline: each
// call is atomic on its own, but read-modify-write sequences built on top
// of it are not.
package kv

import (
	"context"
	"fmt"
)

// Fixed keys used by the client.
const (
	KeyToken        = "userToken"
	KeyRefreshToken = "refreshToken"
	KeyUser         = "userData"
	KeyBookmarks    = "bookmarks"
)

// Store defines the interface for key-value storage backends.
type Store interface {
	// Get returns the value stored under key and whether it was found.
	Get(ctx context.Context, key string) (value string, found bool, err error)

	// Set stores value under key, overwriting any previous value.
	Set(ctx context.Context, key, value string) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Options selects and configures a backend.
type Options struct {
	Backend     string
	FilePath    string
	SQLitePath  string
	RedisAddr   string
	RedisPrefix string
}

// Open returns the backend described by opts along with a close function.
func Open(ctx context.Context, opts Options) (Store, func() error, error) {
	noop := func() error { return nil }
	switch opts.Backend {
	case BackendMemory:
		return NewMemory(), noop, nil
	case "", BackendFile:
		s, err := NewFile(opts.FilePath)
		if err != nil {
			return nil, nil, fmt.Errorf("kv.Open: %w", err)
		}
		return s, noop, nil
	case BackendSQLite:
		s, err := OpenSQLite(opts.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("kv.Open: %w", err)
		}
		return s, s.Close, nil
	case BackendRedis:
		s, err := DialRedis(ctx, opts.RedisAddr, opts.RedisPrefix)
		if err != nil {
			return nil, nil, fmt.Errorf("kv.Open: %w", err)
		}
		return s, s.Close, nil
	default:
		return nil, nil, fmt.Errorf("kv.Open: unknown backend %q", opts.Backend)
	}
}
