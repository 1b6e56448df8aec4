package l10ncache

import "fmt"

// ConnectionError indicates the store could not be reached after all retries.
// It is only ever returned at boot; callers degrade to uncached lookups.
type ConnectionError struct {
	Endpoint string
	Attempts int
	Cause    error
}

func (e *ConnectionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("connection error: %s after %d attempt(s): %v", e.Endpoint, e.Attempts, e.Cause)
	}
	return fmt.Sprintf("connection error: %s after %d attempt(s)", e.Endpoint, e.Attempts)
}

func (e *ConnectionError) Unwrap() error {
	return e.Cause
}

// StoreError indicates a failed get/set/flush against the store.
// Lookups treat it as a cache miss.
type StoreError struct {
	Op    string // "get", "set", "flush"
	Key   string
	Cause error
}

func (e *StoreError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("store error: %s %s: %v", e.Op, e.Key, e.Cause)
	}
	return fmt.Sprintf("store error: %s: %v", e.Op, e.Cause)
}

func (e *StoreError) Unwrap() error {
	return e.Cause
}

// ParseError indicates a translation file could not be parsed.
type ParseError struct {
	Path    string
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("parse error (%s): %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("parse error (%s): %s", e.Path, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// ReadabilityError indicates a translation file is absent or unreadable.
// This is an expected condition and is never logged as an error.
type ReadabilityError struct {
	Path  string
	Cause error
}

func (e *ReadabilityError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("file not readable: %s: %v", e.Path, e.Cause)
	}
	return fmt.Sprintf("file not readable: %s", e.Path)
}

func (e *ReadabilityError) Unwrap() error {
	return e.Cause
}

// ConfigError indicates an invalid configuration value.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: %s %s", e.Field, e.Message)
}
