// Package cache provides store backends for cached translation payloads.
package cache

import "context"

// Store is the key-value interface the translation caches read through.
// Values are opaque bytes; serialization is the caller's concern.
type Store interface {
	// Get retrieves a value. Returns nil, false, nil when the key is absent.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value without expiry; eviction belongs to the store.
	Set(ctx context.Context, key string, value []byte) error

	// Flush removes every key in the selected logical database.
	Flush(ctx context.Context) error
}

// Inspector is implemented by stores that can describe themselves and
// enumerate their keys.
type Inspector interface {
	Info(ctx context.Context) (*Info, error)
	Keys(ctx context.Context, pattern string) ([]string, error)
}

// Info describes the store for health checks and diagnostics.
type Info struct {
	Endpoint    string // Address the client is connected to
	Version     string // Server version, empty when unknown
	MemoryUsed  uint64 // Bytes in use
	MemoryTotal uint64 // Configured memory limit in bytes, 0 when unlimited or unknown
}
