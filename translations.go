package l10ncache

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/vmihailenco/msgpack/v5"
)

// Backend bundles what the per-request Translations share: the store, the
// parser, the readability memo and the counters. A nil Store means lookups
// always parse from disk.
type Backend struct {
	Store  Store
	Parser CatalogParser
	Memo   *ReadabilityMemo
	Stats  *Stats
	Logger *slog.Logger
}

func (b *Backend) logger() *slog.Logger {
	if b.Logger == nil {
		return slog.Default()
	}
	return b.Logger
}

// Translations is one domain+locale catalog, loaded through the store.
// It is owned by a single request and is not safe for concurrent mutation.
type Translations struct {
	backend *Backend

	catalog      Catalog
	pluralsCount int
	pluralRule   PluralRule
}

// NewTranslations creates an empty catalog bound to backend.
func NewTranslations(backend *Backend) *Translations {
	return &Translations{
		backend:      backend,
		catalog:      Catalog{Headers: map[string]string{}, Entries: map[string][]string{}},
		pluralsCount: 2,
		pluralRule:   DefaultPluralRule,
	}
}

// Load fills the catalog for key, reading through the store. On a miss the
// source file is parsed and written back. It returns false when no usable
// catalog exists, in which case the domain is untranslated.
func (t *Translations) Load(ctx context.Context, domain, mofile, locale, key string) bool {
	log := t.backend.logger().With("domain", domain, "locale", locale)

	if cat, ok := t.fetchCatalog(ctx, key); ok {
		t.adopt(cat)
		t.backend.Stats.lookup(KindMO, resultHit)
		return true
	}

	if err := t.checkReadable(mofile); err != nil {
		t.backend.Stats.lookup(KindMO, resultFail)
		return false
	}

	cat, err := t.backend.Parser.ParseFile(mofile)
	if err != nil {
		log.Warn("failed to parse translation file", "path", mofile, "error", err)
		t.backend.Stats.lookup(KindMO, resultFail)
		return false
	}

	t.adopt(cat)

	data, err := msgpack.Marshal(&t.catalog)
	if err != nil {
		log.Warn("failed to encode catalog", "key", key, "error", err)
	} else {
		t.put(ctx, key, data)
	}

	t.backend.Stats.lookup(KindMO, resultMiss)
	return true
}

// LoadJSON returns the script-translation document for key, reading through
// the store. The file content is passed along verbatim.
func (t *Translations) LoadJSON(ctx context.Context, file, handle, domain, key string) (string, bool) {
	if data, ok := t.get(ctx, key); ok && len(data) > 0 {
		t.backend.Stats.lookup(KindJSON, resultHit)
		return string(data), true
	}

	if err := t.checkReadable(file); err != nil {
		t.backend.Stats.lookup(KindJSON, resultFail)
		return "", false
	}

	data, err := os.ReadFile(file) // #nosec G304 - translation paths come from the host
	if err != nil {
		t.backend.logger().Debug("failed to read script translations",
			"handle", handle,
			"domain", domain,
			"error", &ReadabilityError{Path: file, Cause: err},
		)
		t.backend.Stats.lookup(KindJSON, resultFail)
		return "", false
	}

	t.put(ctx, key, data)
	t.backend.Stats.lookup(KindJSON, resultMiss)
	return string(data), true
}

// Flush clears every key in the configured database.
func (t *Translations) Flush(ctx context.Context) bool {
	if t.backend.Store == nil {
		return false
	}

	if err := t.backend.Store.Flush(ctx); err != nil {
		t.backend.Stats.storeError("flush")
		t.backend.logger().Warn("failed to flush translations", "error", &StoreError{Op: "flush", Cause: err})
		return false
	}
	return true
}

// MergeWith copies other's entries into t, replacing entries with the same key.
func (t *Translations) MergeWith(other *Translations) {
	if other == nil {
		return
	}
	for key, forms := range other.catalog.Entries {
		t.catalog.Entries[key] = forms
	}
}

// Translate returns the translation of singular, or singular itself when the
// catalog has none.
func (t *Translations) Translate(singular, context string) string {
	forms := t.catalog.Entries[EntryKey(singular, context)]
	if len(forms) == 0 || forms[0] == "" {
		return singular
	}
	return forms[0]
}

// TranslatePlural returns the plural form for count, falling back to singular
// or plural when the catalog has no usable form. An empty form counts as
// untranslated, as in Translate.
func (t *Translations) TranslatePlural(singular, plural string, count int, context string) string {
	forms := t.catalog.Entries[EntryKey(singular, context)]

	index := DefaultPluralRule(count)
	if t.pluralsCount != 2 {
		index = t.pluralRule(count)
	}

	if index >= 0 && index < t.pluralsCount && index < len(forms) && forms[index] != "" {
		return forms[index]
	}

	if count == 1 {
		return singular
	}
	return plural
}

// Headers returns the catalog headers.
func (t *Translations) Headers() map[string]string {
	return t.catalog.Headers
}

// Entries returns the catalog entries keyed by EntryKey.
func (t *Translations) Entries() map[string][]string {
	return t.catalog.Entries
}

// PluralsCount returns the number of plural forms of the catalog's locale.
func (t *Translations) PluralsCount() int {
	return t.pluralsCount
}

// adopt replaces the catalog contents and derives the plural rule.
func (t *Translations) adopt(cat *Catalog) {
	t.catalog.Headers = cat.Headers
	if t.catalog.Headers == nil {
		t.catalog.Headers = map[string]string{}
	}
	t.catalog.Entries = cat.Entries
	if t.catalog.Entries == nil {
		t.catalog.Entries = map[string][]string{}
	}
	t.pluralsCount, t.pluralRule = ParsePluralForms(t.catalog.Headers["Plural-Forms"])
}

// fetchCatalog decodes a stored catalog. Payloads missing either map are
// treated as misses.
func (t *Translations) fetchCatalog(ctx context.Context, key string) (*Catalog, bool) {
	data, ok := t.get(ctx, key)
	if !ok {
		return nil, false
	}

	var cat Catalog
	if err := msgpack.Unmarshal(data, &cat); err != nil {
		t.backend.logger().Debug("ignoring malformed cached catalog", "key", key, "error", err)
		return nil, false
	}
	if cat.Headers == nil || cat.Entries == nil {
		return nil, false
	}
	return &cat, true
}

// get reads key from the store. Store failures and timeouts count as misses.
func (t *Translations) get(ctx context.Context, key string) ([]byte, bool) {
	if t.backend.Store == nil {
		return nil, false
	}

	data, ok, err := t.backend.Store.Get(ctx, key)
	if err != nil {
		t.backend.Stats.storeError("get")
		t.backend.logger().Warn("translation cache read failed", "error", &StoreError{Op: "get", Key: key, Cause: err})
		return nil, false
	}
	return data, ok
}

func (t *Translations) put(ctx context.Context, key string, data []byte) {
	if t.backend.Store == nil {
		return
	}

	if err := t.backend.Store.Set(ctx, key, data); err != nil {
		t.backend.Stats.storeError("set")
		t.backend.logger().Warn("translation cache write failed", "error", &StoreError{Op: "set", Key: key, Cause: err})
	}
}

func (t *Translations) checkReadable(path string) error {
	if t.backend.Memo != nil {
		return t.backend.Memo.Check(path)
	}
	if err := openForReading(path); err != nil {
		return &ReadabilityError{Path: path, Cause: err}
	}
	return nil
}

// IsReadabilityError reports whether err is a *ReadabilityError.
func IsReadabilityError(err error) bool {
	var readErr *ReadabilityError
	return errors.As(err, &readErr)
}
