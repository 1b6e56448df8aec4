package cache

import (
	"bufio"
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// scanBatch is the COUNT hint passed to SCAN when enumerating keys.
const scanBatch = 500

// RedisStore is a Redis-backed translation store.
type RedisStore struct {
	client    *redis.Client
	opTimeout time.Duration
}

// NewRedisStore wraps an existing client. A positive opTimeout bounds every
// store call so a stalled server surfaces as an error instead of a hang.
func NewRedisStore(client *redis.Client, opTimeout time.Duration) *RedisStore {
	return &RedisStore{
		client:    client,
		opTimeout: opTimeout,
	}
}

// Get retrieves a value from Redis.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	val, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

// Set stores a value in Redis without expiration.
func (s *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	return s.client.Set(ctx, key, value, 0).Err()
}

// Flush asynchronously clears the selected database.
func (s *RedisStore) Flush(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	return s.client.FlushDBAsync(ctx).Err()
}

// Info reports server version and memory usage.
func (s *RedisStore) Info(ctx context.Context) (*Info, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	raw, err := s.client.Info(ctx, "server", "memory").Result()
	if err != nil {
		return nil, err
	}

	fields := parseInfo(raw)
	info := &Info{
		Endpoint: s.client.Options().Addr,
		Version:  fields["redis_version"],
	}
	info.MemoryUsed, _ = strconv.ParseUint(fields["used_memory"], 10, 64)
	info.MemoryTotal, _ = strconv.ParseUint(fields["maxmemory"], 10, 64)

	return info, nil
}

// Keys returns every key matching pattern using SCAN.
func (s *RedisStore) Keys(ctx context.Context, pattern string) ([]string, error) {
	var keys []string
	var cursor uint64

	for {
		page, next, err := s.client.Scan(ctx, cursor, pattern, scanBatch).Result()
		if err != nil {
			return nil, err
		}
		keys = append(keys, page...)

		if next == 0 {
			return keys, nil
		}
		cursor = next
	}
}

// Ping tests the Redis connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	return s.client.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.opTimeout)
}

// parseInfo turns INFO output ("key:value" lines, "#" section headers) into a map.
func parseInfo(raw string) map[string]string {
	fields := make(map[string]string)

	scanner := bufio.NewScanner(strings.NewReader(raw))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if key, value, ok := strings.Cut(line, ":"); ok {
			fields[key] = value
		}
	}

	return fields
}

// Verify RedisStore implements Store and Inspector
var (
	_ Store     = (*RedisStore)(nil)
	_ Inspector = (*RedisStore)(nil)
)
