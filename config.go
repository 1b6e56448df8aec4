package l10ncache

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// Store drivers.
const (
	DriverRedis  = "redis"
	DriverMemory = "memory"
)

// Config holds the connection and integration settings. It is immutable once
// built and only validated when a connection is attempted.
type Config struct {
	Driver        string  `toml:"driver"`         // "redis" (default) or "memory"
	Scheme        string  `toml:"scheme"`         // "tcp", "tls", "rediss" or "unix"
	Host          string  `toml:"host"`           // Hostname, IP, or socket path
	Port          int     `toml:"port"`           // Ignored for unix sockets
	Database      int     `toml:"database"`       // Logical database index
	Username      string  `toml:"username"`       // ACL user, requires Password
	Password      string  `toml:"password"`       // AUTH password
	Prefix        string  `toml:"prefix"`         // Key namespace
	Timeout       float64 `toml:"timeout"`        // Connect timeout in seconds
	ReadTimeout   float64 `toml:"read_timeout"`   // Read/write timeout in seconds
	Backoff       Backoff `toml:"backoff"`        // "none" or "smart"
	Retries       int     `toml:"retries"`        // Connection attempts
	RetryInterval int     `toml:"retry_interval"` // Milliseconds
	TLS           TLSOpts `toml:"-"`              // Parsed from tls_options
	TLSOptions    any     `toml:"tls_options"`    // Boolean or table, see TLSOpts
	Persistent    bool    `toml:"persistent"`     // Keep an idle connection pinned
	Footnote      bool    `toml:"footnote"`       // Append cache metrics to HTML pages
	InstallRoot   string  `toml:"install_root"`   // Stripped from paths before hashing
	Locale        string  `toml:"locale"`         // Default locale when the host passes none
	ReadableTTL   float64 `toml:"readable_ttl"`   // Readability memo lifetime in seconds
}

// TLSOpts configures transport security. The zero value disables TLS.
type TLSOpts struct {
	Enabled            bool
	ServerName         string
	InsecureSkipVerify bool
	CAFile             string
	CertFile           string
	KeyFile            string
}

// DefaultConfig returns the defaults used when an option is not set.
func DefaultConfig() Config {
	return Config{
		Driver:        DriverRedis,
		Scheme:        "tcp",
		Host:          "127.0.0.1",
		Port:          6379,
		Database:      0,
		Timeout:       0.5,
		ReadTimeout:   0.5,
		Backoff:       BackoffSmart,
		Retries:       3,
		RetryInterval: 20,
		Footnote:      true,
		Locale:        "en_US",
		ReadableTTL:   300,
	}
}

// LoadConfig builds a Config from defaults, an optional TOML file, an
// optional .env file in the working directory, and L10N_* environment
// variables, in increasing order of precedence.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path) // #nosec G304 - config path is operator-provided
		if err != nil {
			return cfg, fmt.Errorf("reading config: %w", err)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	// .env is optional when variables come from the environment.
	_ = godotenv.Load()

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}

	tlsOpts, err := parseTLSOptions(cfg.TLSOptions)
	if err != nil {
		return cfg, err
	}
	cfg.TLS = tlsOpts

	return cfg, nil
}

// applyEnv overrides fields from L10N_* variables.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup("L10N_" + name); ok {
			*dst = v
		}
	}
	num := func(name string, dst *int) error {
		if v, ok := lookup("L10N_" + name); ok {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return &ConfigError{Field: strings.ToLower(name), Message: fmt.Sprintf("invalid integer %q", v)}
			}
			*dst = n
		}
		return nil
	}
	float := func(name string, dst *float64) error {
		if v, ok := lookup("L10N_" + name); ok {
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return &ConfigError{Field: strings.ToLower(name), Message: fmt.Sprintf("invalid number %q", v)}
			}
			*dst = f
		}
		return nil
	}
	flag := func(name string, dst *bool) error {
		if v, ok := lookup("L10N_" + name); ok {
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				return &ConfigError{Field: strings.ToLower(name), Message: fmt.Sprintf("invalid boolean %q", v)}
			}
			*dst = b
		}
		return nil
	}

	str("DRIVER", &c.Driver)
	str("SCHEME", &c.Scheme)
	str("HOST", &c.Host)
	str("USERNAME", &c.Username)
	str("PASSWORD", &c.Password)
	str("PREFIX", &c.Prefix)
	str("INSTALL_ROOT", &c.InstallRoot)
	str("LOCALE", &c.Locale)

	var backoff string
	str("BACKOFF", &backoff)
	if backoff != "" {
		c.Backoff = Backoff(backoff)
	}

	if v, ok := lookup("L10N_TLS"); ok {
		enabled, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return &ConfigError{Field: "tls_options", Message: fmt.Sprintf("invalid boolean %q", v)}
		}
		c.TLSOptions = enabled
	}

	for _, err := range []error{
		num("PORT", &c.Port),
		num("DATABASE", &c.Database),
		num("RETRIES", &c.Retries),
		num("RETRY_INTERVAL", &c.RetryInterval),
		float("TIMEOUT", &c.Timeout),
		float("READ_TIMEOUT", &c.ReadTimeout),
		float("READABLE_TTL", &c.ReadableTTL),
		flag("PERSISTENT", &c.Persistent),
		flag("FOOTNOTE", &c.Footnote),
	} {
		if err != nil {
			return err
		}
	}

	return nil
}

// parseTLSOptions accepts the boolean-or-table form of tls_options.
func parseTLSOptions(v any) (TLSOpts, error) {
	switch opts := v.(type) {
	case nil:
		return TLSOpts{}, nil
	case bool:
		return TLSOpts{Enabled: opts}, nil
	case map[string]any:
		out := TLSOpts{Enabled: true}
		for key, raw := range opts {
			switch key {
			case "server_name", "peer_name":
				out.ServerName, _ = raw.(string)
			case "insecure_skip_verify":
				out.InsecureSkipVerify, _ = raw.(bool)
			case "verify_peer":
				if verify, ok := raw.(bool); ok {
					out.InsecureSkipVerify = !verify
				}
			case "ca_file", "cafile":
				out.CAFile, _ = raw.(string)
			case "cert_file", "local_cert":
				out.CertFile, _ = raw.(string)
			case "key_file", "local_pk":
				out.KeyFile, _ = raw.(string)
			default:
				return TLSOpts{}, &ConfigError{Field: "tls_options", Message: fmt.Sprintf("unknown option %q", key)}
			}
		}
		return out, nil
	default:
		return TLSOpts{}, &ConfigError{Field: "tls_options", Message: fmt.Sprintf("must be a boolean or a table, got %T", v)}
	}
}

// Validate checks the values a connection depends on.
func (c Config) Validate() error {
	switch c.Driver {
	case "", DriverRedis, DriverMemory:
	default:
		return &ConfigError{Field: "driver", Message: fmt.Sprintf("unsupported driver %q", c.Driver)}
	}

	switch c.Scheme {
	case "", "tcp", "redis", "tls", "rediss", "unix":
	default:
		return &ConfigError{Field: "scheme", Message: fmt.Sprintf("unsupported scheme %q", c.Scheme)}
	}

	if c.Host == "" {
		return &ConfigError{Field: "host", Message: "must not be empty"}
	}
	if !c.IsUnixSocket() && (c.Port < 0 || c.Port > 65535) {
		return &ConfigError{Field: "port", Message: "must be between 0 and 65535"}
	}
	if c.Retries < 0 {
		return &ConfigError{Field: "retries", Message: "must not be negative"}
	}
	if c.RetryInterval < 0 {
		return &ConfigError{Field: "retry_interval", Message: "must not be negative"}
	}
	if c.Timeout < 0 || c.ReadTimeout < 0 {
		return &ConfigError{Field: "timeout", Message: "must not be negative"}
	}
	if c.Username != "" && c.Password == "" {
		return &ConfigError{Field: "username", Message: "requires a password"}
	}
	if _, err := parseTLSOptions(c.TLSOptions); err != nil {
		return err
	}

	return nil
}

// IsUnixSocket reports whether the host addresses a local socket.
func (c Config) IsUnixSocket() bool {
	return c.Scheme == "unix" || strings.HasPrefix(c.Host, "unix://")
}

// UsesTLS reports whether the transport must be encrypted.
func (c Config) UsesTLS() bool {
	return c.tlsOpts().Enabled || c.Scheme == "tls" || c.Scheme == "rediss"
}

// tlsOpts prefers the explicit TLS field and falls back to tls_options.
func (c Config) tlsOpts() TLSOpts {
	if c.TLS.Enabled {
		return c.TLS
	}
	opts, _ := parseTLSOptions(c.TLSOptions)
	return opts
}

// RetryPolicy returns the connection retry policy described by the config.
func (c Config) RetryPolicy() RetryPolicy {
	return RetryPolicy{
		Backoff:  c.Backoff,
		Retries:  c.Retries,
		Interval: time.Duration(c.RetryInterval) * time.Millisecond,
	}
}

// DialTimeout returns the connect timeout.
func (c Config) DialTimeout() time.Duration {
	return seconds(c.Timeout)
}

// OpTimeout returns the read/write timeout.
func (c Config) OpTimeout() time.Duration {
	return seconds(c.ReadTimeout)
}

// ReadableMemoTTL returns the readability memo lifetime.
func (c Config) ReadableMemoTTL() time.Duration {
	return seconds(c.ReadableTTL)
}

// Keys returns the key deriver for this configuration.
func (c Config) Keys() KeyDeriver {
	return KeyDeriver{Prefix: c.Prefix, InstallRoot: c.InstallRoot}
}

// TLSConfig builds the client TLS configuration, or nil when TLS is off.
func (c Config) TLSConfig() (*tls.Config, error) {
	if !c.UsesTLS() {
		return nil, nil
	}

	opts := c.tlsOpts()
	cfg := &tls.Config{
		MinVersion:         tls.VersionTLS12,
		ServerName:         opts.ServerName,
		InsecureSkipVerify: opts.InsecureSkipVerify, // #nosec G402 - operator opt-in
	}
	if cfg.ServerName == "" && !c.IsUnixSocket() {
		cfg.ServerName = c.Host
	}

	if opts.CAFile != "" {
		pem, err := os.ReadFile(opts.CAFile)
		if err != nil {
			return nil, fmt.Errorf("reading CA file: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, &ConfigError{Field: "tls_options", Message: "ca_file contains no certificates"}
		}
		cfg.RootCAs = pool
	}

	if opts.CertFile != "" || opts.KeyFile != "" {
		cert, err := tls.LoadX509KeyPair(opts.CertFile, opts.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("loading client certificate: %w", err)
		}
		cfg.Certificates = []tls.Certificate{cert}
	}

	return cfg, nil
}

func seconds(s float64) time.Duration {
	if s <= 0 {
		return 0
	}
	return time.Duration(s * float64(time.Second))
}
