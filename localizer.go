package l10ncache

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/ZaguanLabs/l10ncache/cache"
)

// PathFilter rewrites a translation file path before it is loaded.
// It receives the path and the text domain.
type PathFilter func(path, domain string) string

// Localizer is the host-facing entry point. It owns the store connection,
// the readability memo and the counters, and keeps the catalogs loaded so
// far keyed by text domain. It is safe for concurrent use.
type Localizer struct {
	backend     *Backend
	keys        KeyDeriver
	locale      string
	footnote    bool
	readableTTL time.Duration
	moFilter    PathFilter
	jsonFilter  PathFilter

	mu          sync.RWMutex
	domains     map[string]*Translations
	unavailable map[string]string // domain -> locale that failed to load
	paths       map[string]string // domain -> directory of the loaded file
}

// Option is a functional option for configuring the Localizer.
type Option func(*Localizer)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Localizer) {
		l.backend.Logger = logger
	}
}

// WithStore sets the store. Without one every lookup parses from disk.
func WithStore(store Store) Option {
	return func(l *Localizer) {
		l.backend.Store = store
	}
}

// WithStats sets the counters.
func WithStats(stats *Stats) Option {
	return func(l *Localizer) {
		l.backend.Stats = stats
	}
}

// WithKeys sets the key deriver.
func WithKeys(keys KeyDeriver) Option {
	return func(l *Localizer) {
		l.keys = keys
	}
}

// WithLocale sets the locale used when a lookup names none.
func WithLocale(locale string) Option {
	return func(l *Localizer) {
		l.locale = locale
	}
}

// WithFootnote enables the diagnostic HTML footnote.
func WithFootnote(enabled bool) Option {
	return func(l *Localizer) {
		l.footnote = enabled
	}
}

// WithReadableTTL sets how long readability answers are remembered.
func WithReadableTTL(ttl time.Duration) Option {
	return func(l *Localizer) {
		l.readableTTL = ttl
	}
}

// WithMOFilter rewrites .mo paths before lookup.
func WithMOFilter(filter PathFilter) Option {
	return func(l *Localizer) {
		l.moFilter = filter
	}
}

// WithScriptFilter rewrites script-translation paths before lookup.
func WithScriptFilter(filter PathFilter) Option {
	return func(l *Localizer) {
		l.jsonFilter = filter
	}
}

// NewLocalizer creates a Localizer that parses catalogs with parser.
func NewLocalizer(parser CatalogParser, opts ...Option) *Localizer {
	l := &Localizer{
		backend:     &Backend{Parser: parser},
		locale:      DefaultLocale,
		domains:     make(map[string]*Translations),
		unavailable: make(map[string]string),
		paths:       make(map[string]string),
	}

	for _, opt := range opts {
		opt(l)
	}

	if l.backend.Logger == nil {
		l.backend.Logger = slog.Default()
	}
	if l.backend.Stats == nil {
		l.backend.Stats = NewStats()
	}
	if l.backend.Memo == nil {
		l.backend.Memo = NewReadabilityMemo(l.readableTTL, l.backend.Stats)
	}

	return l
}

// OnLookupMO loads the catalog for domain from mofile and registers it.
// An empty locale uses the localizer's default. It returns false when the
// domain stays untranslated.
func (l *Localizer) OnLookupMO(ctx context.Context, domain, mofile, locale string) bool {
	if locale == "" {
		locale = l.locale
	}
	if l.moFilter != nil {
		mofile = l.moFilter(mofile, domain)
	}

	if !l.backend.Memo.IsReadable(mofile) {
		return false
	}

	key := l.keys.Derive(KindMO, domain, locale, mofile)
	driver := NewTranslations(l.backend)

	if !driver.Load(ctx, domain, mofile, locale, key) {
		l.mu.Lock()
		l.unavailable[domain] = locale
		l.mu.Unlock()
		return false
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if previous, ok := l.domains[domain]; ok {
		driver.MergeWith(previous)
	}

	delete(l.unavailable, domain)
	l.domains[domain] = driver
	l.paths[domain] = filepath.Dir(mofile)

	return true
}

// OnLookupJSON returns the script-translation document in file.
func (l *Localizer) OnLookupJSON(ctx context.Context, file, handle, domain string) (string, bool) {
	if l.jsonFilter != nil {
		file = l.jsonFilter(file, domain)
	}
	if file == "" {
		return "", false
	}

	if !l.backend.Memo.IsReadable(file) {
		return "", false
	}

	locale := ScriptLocale(file, domain)
	key := l.keys.Derive(KindJSON, domain, locale, file)

	return NewTranslations(l.backend).LoadJSON(ctx, file, handle, domain, key)
}

// OnTranslationsUpdated flushes the store after a language pack upgrade.
// Other upgrade types are ignored.
func (l *Localizer) OnTranslationsUpdated(ctx context.Context, event UpgradeEvent) {
	if event.Type != "translation" || len(event.Translations) == 0 {
		return
	}

	if !NewTranslations(l.backend).Flush(ctx) {
		l.backend.logger().Warn("failed to invalidate translations")
	}
}

// Flush clears the store regardless of upgrade events.
func (l *Localizer) Flush(ctx context.Context) bool {
	return NewTranslations(l.backend).Flush(ctx)
}

// Translate returns the translation of text in domain.
func (l *Localizer) Translate(domain, text, context string) string {
	t := l.Catalog(domain)
	if t == nil {
		return text
	}
	return t.Translate(text, context)
}

// TranslatePlural returns the plural form of text for count in domain.
func (l *Localizer) TranslatePlural(domain, singular, plural string, count int, context string) string {
	t := l.Catalog(domain)
	if t == nil {
		if count == 1 {
			return singular
		}
		return plural
	}
	return t.TranslatePlural(singular, plural, count, context)
}

// Catalog returns the loaded catalog for domain, or nil.
func (l *Localizer) Catalog(domain string) *Translations {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.domains[domain]
}

// TextdomainPath returns the directory the domain was loaded from, and false
// when the domain is not loaded.
func (l *Localizer) TextdomainPath(domain string) (string, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	dir, ok := l.paths[domain]
	return dir, ok
}

// Unavailable reports whether the last load of domain failed.
func (l *Localizer) Unavailable(domain string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.unavailable[domain]
	return ok
}

// Domains returns the number of loaded domains.
func (l *Localizer) Domains() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.domains)
}

// Cached reports whether lookups go through a store.
func (l *Localizer) Cached() bool {
	return l.backend.Store != nil
}

// Store returns the store, or nil when uncached.
func (l *Localizer) Store() Store {
	return l.backend.Store
}

// Stats returns the counters.
func (l *Localizer) Stats() *Stats {
	return l.backend.Stats
}

// Locale returns the default locale.
func (l *Localizer) Locale() string {
	return l.locale
}

// Info describes the store, or returns nil when it cannot describe itself.
func (l *Localizer) Info(ctx context.Context) (*cache.Info, error) {
	inspector, ok := l.backend.Store.(cache.Inspector)
	if !ok {
		return nil, nil
	}
	return inspector.Info(ctx)
}

// RenderFootnote appends the diagnostic footnote to an HTML page when the
// footnote option is on.
func (l *Localizer) RenderFootnote(ctx context.Context, page string) string {
	if !l.footnote {
		return page
	}

	info, err := l.Info(ctx)
	if err != nil {
		info = nil
	}
	return Footnote(page, l.backend.Stats.Snapshot(), info)
}

// Close releases the store connection.
func (l *Localizer) Close() error {
	if closer, ok := l.backend.Store.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
