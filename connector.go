package l10ncache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ZaguanLabs/l10ncache/cache"
)

// go-redis command retry bounds used with BackoffSmart.
const (
	smartMinRetryBackoff = 500 * time.Millisecond
	smartMaxRetryBackoff = 750 * time.Millisecond
)

// ConnectOption configures Connect.
type ConnectOption func(*connector)

type connector struct {
	logger    *slog.Logger
	newClient func(*redis.Options) *redis.Client
}

// WithConnectLogger sets the logger used for connection warnings.
func WithConnectLogger(logger *slog.Logger) ConnectOption {
	return func(c *connector) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// withClientFactory replaces redis.NewClient, for tests.
func withClientFactory(fn func(*redis.Options) *redis.Client) ConnectOption {
	return func(c *connector) {
		c.newClient = fn
	}
}

// Connect opens a Redis connection described by cfg, retrying with the
// configured backoff. It returns *ConnectionError once every attempt failed
// and *ConfigError when cfg is invalid.
func Connect(ctx context.Context, cfg Config, opts ...ConnectOption) (*cache.RedisStore, error) {
	c := &connector{
		logger:    slog.Default(),
		newClient: redis.NewClient,
	}
	for _, opt := range opts {
		opt(c)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	options, err := RedisOptions(cfg)
	if err != nil {
		return nil, err
	}

	policy := cfg.RetryPolicy()
	tried := 0

	client, err := WithRetry(ctx, policy, func(attempt int) (*redis.Client, error) {
		tried++
		return c.dial(ctx, options, attempt)
	})
	if err != nil {
		return nil, &ConnectionError{
			Endpoint: endpoint(options),
			Attempts: tried,
			Cause:    err,
		}
	}

	return cache.NewRedisStore(client, cfg.OpTimeout()), nil
}

// dial opens one client and pings it. An out-of-range database index is not
// fatal: the connection falls back to database 0 for this and later attempts.
func (c *connector) dial(ctx context.Context, options *redis.Options, attempt int) (*redis.Client, error) {
	client := c.newClient(options)
	err := client.Ping(ctx).Err()

	if err != nil && isInvalidDB(err) && options.DB != 0 {
		c.logger.Warn("invalid cache database index, using 0",
			"database", options.DB,
			"error", err,
		)
		_ = client.Close()

		options.DB = 0
		client = c.newClient(options)
		err = client.Ping(ctx).Err()
	}

	if err != nil {
		_ = client.Close()
		c.logger.Debug("cache connection attempt failed",
			"endpoint", endpoint(options),
			"attempt", attempt+1,
			"error", err,
		)
		return nil, err
	}

	return client, nil
}

// RedisOptions maps cfg onto go-redis client options.
func RedisOptions(cfg Config) (*redis.Options, error) {
	opts := &redis.Options{
		Network:      "tcp",
		Addr:         net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Username:     cfg.Username,
		Password:     cfg.Password,
		DB:           cfg.Database,
		DialTimeout:  cfg.DialTimeout(),
		ReadTimeout:  cfg.OpTimeout(),
		WriteTimeout: cfg.OpTimeout(),
		MaxRetries:   cfg.Retries,
	}

	if cfg.IsUnixSocket() {
		opts.Network = "unix"
		opts.Addr = strings.TrimPrefix(cfg.Host, "unix://")
	}

	// go-redis treats 0 as "use the default of 3"; -1 disables retries.
	if cfg.Retries == 0 {
		opts.MaxRetries = -1
	}

	switch cfg.Backoff {
	case BackoffNone:
		opts.MinRetryBackoff = -1
		opts.MaxRetryBackoff = -1
	default:
		opts.MinRetryBackoff = smartMinRetryBackoff
		opts.MaxRetryBackoff = smartMaxRetryBackoff
	}

	if cfg.Persistent {
		opts.MinIdleConns = 1
		opts.ConnMaxIdleTime = -1
	}

	tlsCfg, err := cfg.TLSConfig()
	if err != nil {
		return nil, fmt.Errorf("building TLS config: %w", err)
	}
	opts.TLSConfig = tlsCfg

	return opts, nil
}

func isInvalidDB(err error) bool {
	return strings.Contains(err.Error(), "DB index is out of range")
}

func endpoint(opts *redis.Options) string {
	if opts.Network == "unix" {
		return "unix://" + opts.Addr
	}
	return opts.Addr
}

// IsConnectionError reports whether err is a *ConnectionError.
func IsConnectionError(err error) bool {
	var connErr *ConnectionError
	return errors.As(err, &connErr)
}
