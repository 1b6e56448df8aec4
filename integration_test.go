package l10ncache_test

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/ZaguanLabs/l10ncache"
	"github.com/ZaguanLabs/l10ncache/cache"
	"github.com/ZaguanLabs/l10ncache/mo"
)

func writeCatalog(t *testing.T, dir, name string, cat *l10ncache.Catalog) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := mo.WriteFile(path, cat); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}

func frenchCatalog() *l10ncache.Catalog {
	return &l10ncache.Catalog{
		Headers: map[string]string{
			"Language":     "fr_FR",
			"Plural-Forms": "nplurals=2; plural=(n > 1);",
		},
		Entries: map[string][]string{
			"Hello":  {"Bonjour"},
			"1 item": {"1 élément", "%d éléments"},
		},
	}
}

func newLocalizer(store l10ncache.Store, opts ...l10ncache.Option) *l10ncache.Localizer {
	base := []l10ncache.Option{
		l10ncache.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		l10ncache.WithStore(store),
	}
	return l10ncache.NewLocalizer(mo.NewParser(), append(base, opts...)...)
}

func TestIntegration_BasicTranslation(t *testing.T) {
	path := writeCatalog(t, t.TempDir(), "akismet-fr_FR.mo", frenchCatalog())
	loc := newLocalizer(cache.NewInMemoryStore(0))

	if !loc.OnLookupMO(context.Background(), "akismet", path, "fr_FR") {
		t.Fatal("Lookup failed")
	}

	if got := loc.Translate("akismet", "Hello", ""); got != "Bonjour" {
		t.Errorf("Translate(Hello) = %q, want Bonjour", got)
	}
	if got := loc.Translate("akismet", "Missing", ""); got != "Missing" {
		t.Errorf("Translate(Missing) = %q, want Missing", got)
	}
	if got := loc.TranslatePlural("akismet", "1 item", "%d items", 1, ""); got != "1 élément" {
		t.Errorf("TranslatePlural(1) = %q", got)
	}
	if got := loc.TranslatePlural("akismet", "1 item", "%d items", 5, ""); got != "%d éléments" {
		t.Errorf("TranslatePlural(5) = %q", got)
	}
}

func TestIntegration_CacheHit(t *testing.T) {
	ctx := context.Background()
	store := cache.NewInMemoryStore(0)
	path := writeCatalog(t, t.TempDir(), "akismet-fr_FR.mo", frenchCatalog())

	first := newLocalizer(store)
	first.OnLookupMO(ctx, "akismet", path, "fr_FR")

	// A second process sharing the store takes the fast path.
	second := newLocalizer(store)
	if !second.OnLookupMO(ctx, "akismet", path, "fr_FR") {
		t.Fatal("Warm lookup failed")
	}

	snap := second.Stats().Snapshot()
	if snap.Hits != 1 || snap.Misses != 0 {
		t.Errorf("Expected a store hit, got %+v", snap)
	}
	if second.Translate("akismet", "Hello", "") != "Bonjour" {
		t.Error("Cached catalog should translate like the parsed one")
	}
}

func TestIntegration_FlushForcesReparse(t *testing.T) {
	ctx := context.Background()
	store := cache.NewInMemoryStore(0)
	path := writeCatalog(t, t.TempDir(), "akismet-fr_FR.mo", frenchCatalog())

	loc := newLocalizer(store)
	loc.OnLookupMO(ctx, "akismet", path, "fr_FR")

	loc.OnTranslationsUpdated(ctx, l10ncache.UpgradeEvent{Type: "translation", Translations: []string{"fr_FR"}})
	if store.Len() != 0 {
		t.Fatal("Upgrade event should flush the store")
	}

	loc.OnLookupMO(ctx, "akismet", path, "fr_FR")

	if snap := loc.Stats().Snapshot(); snap.Misses != 2 {
		t.Errorf("Expected 2 parses (misses), got %+v", snap)
	}
}

func TestIntegration_SamePathsDifferentFiles(t *testing.T) {
	ctx := context.Background()
	store := cache.NewInMemoryStore(0)

	plugin := frenchCatalog()
	custom := frenchCatalog()
	custom.Entries["Hello"] = []string{"Salut"}

	a := writeCatalog(t, t.TempDir(), "akismet-fr_FR.mo", plugin)
	b := writeCatalog(t, t.TempDir(), "akismet-fr_FR.mo", custom)

	newLocalizer(store).OnLookupMO(ctx, "akismet", a, "fr_FR")
	newLocalizer(store).OnLookupMO(ctx, "akismet", b, "fr_FR")

	if store.Len() != 2 {
		t.Errorf("Catalogs from different paths should not collide, got %d keys", store.Len())
	}
}

func TestIntegration_ScriptTranslations(t *testing.T) {
	ctx := context.Background()
	store := cache.NewInMemoryStore(0)
	loc := newLocalizer(store)

	doc := `{"translation-revision-date":"2024-01-01","locale_data":{"messages":{"":{"lang":"fr_FR"}}}}`
	dir := t.TempDir()
	path := filepath.Join(dir, "fr_FR-0123456789abcdef.json")
	if err := writeFile(path, doc); err != nil {
		t.Fatal(err)
	}

	got, ok := loc.OnLookupJSON(ctx, path, "wp-i18n", "default")
	if !ok || got != doc {
		t.Fatalf("OnLookupJSON = %q, %v", got, ok)
	}

	keys, _ := store.Keys(ctx, cache.TranslationsPattern)
	if len(keys) != 1 {
		t.Fatalf("Expected 1 cached script translation, got %v", keys)
	}
}

func TestIntegration_CorruptCatalogFailsLookup(t *testing.T) {
	ctx := context.Background()
	store := cache.NewInMemoryStore(0)
	loc := newLocalizer(store)

	// Valid magic, 0x7fffffff entries, both tables at the end of the header.
	header := []byte{
		0xde, 0x12, 0x04, 0x95,
		0x00, 0x00, 0x00, 0x00,
		0xff, 0xff, 0xff, 0x7f,
		0x1c, 0x00, 0x00, 0x00,
		0x1c, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00,
	}
	path := filepath.Join(t.TempDir(), "broken-fr_FR.mo")
	if err := os.WriteFile(path, header, 0o644); err != nil {
		t.Fatal(err)
	}

	if loc.OnLookupMO(ctx, "broken", path, "fr_FR") {
		t.Fatal("Corrupt catalog should fail the lookup")
	}
	if !loc.Unavailable("broken") {
		t.Error("Domain should be recorded as unavailable")
	}
	if store.Len() != 0 {
		t.Error("Nothing should be written for a corrupt catalog")
	}
	if got := loc.Translate("broken", "Hello", ""); got != "Hello" {
		t.Errorf("Untranslated domain should echo input, got %q", got)
	}
}

func TestIntegration_BootMemoryDriver(t *testing.T) {
	cfg := l10ncache.DefaultConfig()
	cfg.Driver = l10ncache.DriverMemory

	loc := l10ncache.Boot(context.Background(), cfg, mo.NewParser(),
		l10ncache.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	defer loc.Close()

	path := writeCatalog(t, t.TempDir(), "default-fr_FR.mo", frenchCatalog())
	if !loc.OnLookupMO(context.Background(), "default", path, "") {
		t.Fatal("Lookup failed")
	}
	if loc.Translate("default", "Hello", "") != "Bonjour" {
		t.Error("Booted localizer should translate")
	}
}
