// Package kv provides the persistent key-value capability backing all
// stored quiz state.
package kv

import (
	"context"
	"errors"
	"fmt"
)

// Logical keys used by the stores.
const (
	KeyIdentity    = "identity"
	KeyQuizHistory = "quiz_history"
	KeyLeaderboard = "leaderboard"
)

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// ErrNotFound reports a missing key.
var ErrNotFound = errors.New("key not found")

// Store is a scoped get/set/remove key-value interface. Values are JSON
// documents owned by the caller.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Open selects a backend implementation at startup. The file backend
// stores each key as a JSON file under dir; the sqlite backend stores
// all keys in a single database file at dbPath.
func Open(backend, dir, dbPath string) (Store, error) {
	switch backend {
	case BackendFile:
		return OpenFile(dir)
	case BackendSQLite:
		return OpenSQLite(dbPath)
	default:
		return nil, fmt.Errorf("unknown storage backend %q (expected %s or %s)", backend, BackendFile, BackendSQLite)
	}
}
