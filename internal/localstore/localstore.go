// Package localstore is the durable key/value persistence that survives
// process restarts. Each key holds a single string value.
package localstore

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrClosed is returned by operations on a closed store.
	ErrClosed = errors.New("local store is closed")
	// ErrInvalidKey is returned for empty keys or keys containing path separators.
	ErrInvalidKey = errors.New("invalid local store key")
)

// Store is the durable local persistence contract.
type Store interface {
	// Get returns the value for key and whether it was present.
	Get(key string) (string, bool, error)
	Set(key, value string) error
	// Remove deletes every listed key. Missing keys are ignored.
	Remove(keys ...string) error
	Close() error
}

// Backend names a Store implementation.
type Backend string

const (
	BackendDiskv  Backend = "diskv"
	BackendSQLite Backend = "sqlite"
	BackendMemory Backend = "memory"
)

// Open constructs the backend rooted at dir.
func Open(backend Backend, dir string) (Store, error) {
	switch backend {
	case BackendDiskv, "":
		return NewDiskv(dir)
	case BackendSQLite:
		return NewSQLite(dir)
	case BackendMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown local store backend %q", backend)
	}
}

func validateKey(key string) error {
	if strings.TrimSpace(key) == "" || strings.ContainsAny(key, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}
