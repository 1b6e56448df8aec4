package l10ncache

import (
	"errors"
	"testing"
)

func TestConnectionError(t *testing.T) {
	cause := errors.New("dial tcp 127.0.0.1:6379: connect: connection refused")
	err := &ConnectionError{Endpoint: "127.0.0.1:6379", Attempts: 3, Cause: cause}

	expected := "connection error: 127.0.0.1:6379 after 3 attempt(s): " + cause.Error()
	if err.Error() != expected {
		t.Errorf("unexpected error message: %s", err.Error())
	}

	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the cause")
	}
}

func TestStoreError(t *testing.T) {
	cause := errors.New("i/o timeout")
	err := &StoreError{Op: "get", Key: "translations:a", Cause: cause}

	if err.Error() != "store error: get translations:a: i/o timeout" {
		t.Errorf("unexpected error message: %s", err.Error())
	}

	err2 := &StoreError{Op: "flush", Cause: cause}
	if err2.Error() != "store error: flush: i/o timeout" {
		t.Errorf("unexpected error message: %s", err2.Error())
	}

	if err.Unwrap() != cause {
		t.Error("Unwrap() should return the cause")
	}
}

func TestParseError(t *testing.T) {
	err := &ParseError{Path: "a.mo", Message: "bad magic number"}

	if err.Error() != "parse error (a.mo): bad magic number" {
		t.Errorf("unexpected error message: %s", err.Error())
	}
}

func TestReadabilityError(t *testing.T) {
	err := &ReadabilityError{Path: "/missing.mo"}

	if err.Error() != "file not readable: /missing.mo" {
		t.Errorf("unexpected error message: %s", err.Error())
	}
}

func TestConfigError(t *testing.T) {
	err := &ConfigError{Field: "retries", Message: "must not be negative"}

	if err.Error() != "config error: retries must not be negative" {
		t.Errorf("unexpected error message: %s", err.Error())
	}

	var target *ConfigError
	if !errors.As(error(err), &target) {
		t.Error("errors.As should match *ConfigError")
	}
}
