package l10ncache

import "context"

// ContextSeparator joins a disambiguation context and a singular string into
// a catalog entry key, following the gettext convention.
const ContextSeparator = "\x04"

// Kind identifies the payload shape stored under a cache key.
type Kind string

const (
	// KindMO is a parsed gettext catalog ({headers, entries}).
	KindMO Kind = "mo"
	// KindJSON is a raw script-translation JSON document.
	KindJSON Kind = "json"
)

// Catalog is the parsed form of one domain+locale translation file.
type Catalog struct {
	Headers map[string]string   `msgpack:"headers"`
	Entries map[string][]string `msgpack:"entries"`
}

// EntryKey returns the catalog key for singular, qualified by context when
// one is given. Neither argument may contain ContextSeparator.
func EntryKey(singular, context string) string {
	if context == "" {
		return singular
	}
	return context + ContextSeparator + singular
}

// Store is the remote key-value store the caches read through.
type Store interface {
	// Get returns the stored value and true, or false when the key is absent.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value under key without expiry.
	Set(ctx context.Context, key string, value []byte) error

	// Flush clears every key in the selected logical database.
	Flush(ctx context.Context) error
}

// CatalogParser turns a translation file on disk into a Catalog.
type CatalogParser interface {
	ParseFile(path string) (*Catalog, error)
}

// CatalogParserFunc adapts a function to CatalogParser.
type CatalogParserFunc func(path string) (*Catalog, error)

// ParseFile calls f(path).
func (f CatalogParserFunc) ParseFile(path string) (*Catalog, error) {
	return f(path)
}

// UpgradeEvent describes a completed package upgrade reported by the host.
type UpgradeEvent struct {
	Type         string   // "translation", "plugin", "theme", "core"
	Translations []string // Language packs touched by the upgrade
}
