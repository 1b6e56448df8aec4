// Command l10ncache inspects and manages a translation cache.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/lmittmann/tint"

	"github.com/ZaguanLabs/l10ncache"
	"github.com/ZaguanLabs/l10ncache/cache"
	"github.com/ZaguanLabs/l10ncache/mo"
)

// Build-time variables (can be overridden with ldflags)
var (
	version   = l10ncache.Version
	commit    = l10ncache.GitCommit
	buildDate = l10ncache.BuildDate
)

const usage = `Usage: l10ncache [flags] <command> [args]

Commands:
  lookup <domain> <file.mo> [locale]   Load a catalog through the cache
  script <file.json> <handle> <domain> Load script translations through the cache
  flush                                Clear every cached translation
  info                                 Show store and cache statistics
  warm <dir>                           Pre-load every .mo and .json file under dir
  export <file>                        Dump cached translations to JSON
  import <file>                        Load a JSON dump into the store

Flags:
`

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// cli holds what every subcommand shares.
type cli struct {
	stdout, stderr io.Writer
	jsonOut        bool
	quiet          bool
	logger         *slog.Logger
	localizer      *l10ncache.Localizer
}

func run(args []string, stdout, stderr io.Writer) error {
	flags := flag.NewFlagSet("l10ncache", flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.Usage = func() {
		fmt.Fprintf(stderr, "%s - %s\n\n", l10ncache.Name, l10ncache.Description)
		fmt.Fprint(stderr, usage)
		flags.PrintDefaults()
	}

	configPath := flags.String("config", "", "TOML configuration file")
	driver := flags.String("driver", "", "Store driver override (redis or memory)")
	jsonOutput := flags.Bool("json", false, "Output result as JSON")
	quiet := flags.Bool("quiet", false, "Suppress progress output")
	verbose := flags.Bool("verbose", false, "Log debug messages")
	showVersion := flags.Bool("version", false, "Show version")

	if err := flags.Parse(args); err != nil {
		return err
	}

	if *showVersion {
		fmt.Fprintf(stdout, "%s %s\n", l10ncache.Name, version)
		if commit != "unknown" && commit != "" {
			fmt.Fprintf(stdout, "  commit:  %s\n", commit)
		}
		if buildDate != "unknown" && buildDate != "" {
			fmt.Fprintf(stdout, "  built:   %s\n", buildDate)
		}
		return nil
	}

	if flags.NArg() == 0 {
		flags.Usage()
		return errors.New("a command is required")
	}

	cfg, err := l10ncache.LoadConfig(*configPath)
	if err != nil {
		return err
	}
	if *driver != "" {
		cfg.Driver = *driver
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}

	c := &cli{
		stdout:  stdout,
		stderr:  stderr,
		jsonOut: *jsonOutput,
		quiet:   *quiet,
		logger: slog.New(tint.NewHandler(stderr, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
			NoColor:    !isTerminal(stderr),
		})),
	}

	ctx := context.Background()
	c.localizer = l10ncache.Boot(ctx, cfg, mo.NewParser(), l10ncache.WithLogger(c.logger))
	defer c.localizer.Close()

	command, rest := flags.Arg(0), flags.Args()[1:]
	switch command {
	case "lookup":
		return c.lookup(ctx, rest)
	case "script":
		return c.script(ctx, rest)
	case "flush":
		return c.flush(ctx)
	case "info":
		return c.info(ctx)
	case "warm":
		return c.warm(ctx, rest)
	case "export":
		return c.export(ctx, rest)
	case "import":
		return c.importDump(ctx, rest)
	default:
		flags.Usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

func (c *cli) lookup(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("lookup", flag.ContinueOnError)
	flags.SetOutput(c.stderr)
	text := flags.String("text", "", "String to translate after loading")
	plural := flags.String("plural", "", "Plural form of --text")
	count := flags.Int("count", 1, "Count used with --plural")
	msgctxt := flags.String("context", "", "Disambiguation context")

	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() < 2 {
		return errors.New("usage: lookup [--text s] <domain> <file.mo> [locale]")
	}

	domain, path := flags.Arg(0), flags.Arg(1)
	locale := flags.Arg(2)

	start := time.Now()
	if !c.localizer.OnLookupMO(ctx, domain, path, locale) {
		return fmt.Errorf("no usable catalog for %s in %s", domain, path)
	}
	elapsed := time.Since(start)

	catalog := c.localizer.Catalog(domain)
	result := lookupOutput{
		Domain:       domain,
		File:         path,
		Entries:      len(catalog.Entries()),
		PluralsCount: catalog.PluralsCount(),
		Source:       source(c.localizer.Stats().Snapshot()),
		ElapsedMs:    elapsed.Milliseconds(),
	}
	if *text != "" {
		if *plural != "" {
			result.Translation = c.localizer.TranslatePlural(domain, *text, *plural, *count, *msgctxt)
		} else {
			result.Translation = c.localizer.Translate(domain, *text, *msgctxt)
		}
	}

	if c.jsonOut {
		return writeJSON(c.stdout, result)
	}

	if result.Translation != "" {
		fmt.Fprintln(c.stdout, result.Translation)
	}
	if !c.quiet {
		fmt.Fprintf(c.stderr, "Loaded %s from %s in %v\n", domain, result.Source, elapsed.Round(time.Microsecond))
		fmt.Fprintf(c.stderr, "  Entries:       %d\n", result.Entries)
		fmt.Fprintf(c.stderr, "  Plural forms:  %d\n", result.PluralsCount)
	}
	return nil
}

type lookupOutput struct {
	Domain       string `json:"domain"`
	File         string `json:"file"`
	Entries      int    `json:"entries"`
	PluralsCount int    `json:"plurals_count"`
	Source       string `json:"source"`
	Translation  string `json:"translation,omitempty"`
	ElapsedMs    int64  `json:"elapsed_ms"`
}

// source names where a single lookup was served from.
func source(snap l10ncache.StatsSnapshot) string {
	if snap.Hits > 0 {
		return "cache"
	}
	return "disk"
}

func (c *cli) script(ctx context.Context, args []string) error {
	if len(args) < 3 {
		return errors.New("usage: script <file.json> <handle> <domain>")
	}

	doc, ok := c.localizer.OnLookupJSON(ctx, args[0], args[1], args[2])
	if !ok {
		return fmt.Errorf("no script translations in %s", args[0])
	}

	fmt.Fprintln(c.stdout, doc)
	return nil
}

func (c *cli) flush(ctx context.Context) error {
	if !c.localizer.Flush(ctx) {
		return errors.New("failed to flush translations")
	}
	if !c.quiet {
		fmt.Fprintln(c.stderr, "Translations flushed")
	}
	return nil
}

type infoOutput struct {
	Version     string `json:"version"`
	Cached      bool   `json:"cached"`
	Endpoint    string `json:"endpoint,omitempty"`
	Server      string `json:"server_version,omitempty"`
	MemoryUsed  uint64 `json:"memory_used"`
	MemoryTotal uint64 `json:"memory_total"`
	Keys        int    `json:"translation_keys"`
	Locale      string `json:"default_locale"`
	Language    string `json:"default_language"`
}

func (c *cli) info(ctx context.Context) error {
	out := infoOutput{
		Version:  l10ncache.FullVersion(),
		Cached:   c.localizer.Cached(),
		Locale:   c.localizer.Locale(),
		Language: l10ncache.LanguageName(c.localizer.Locale()),
	}

	info, err := c.localizer.Info(ctx)
	if err != nil {
		return fmt.Errorf("querying store: %w", err)
	}
	if info != nil {
		out.Endpoint = info.Endpoint
		out.Server = info.Version
		out.MemoryUsed = info.MemoryUsed
		out.MemoryTotal = info.MemoryTotal
	}
	if inspector, ok := c.localizer.Store().(cache.Inspector); ok {
		keys, err := inspector.Keys(ctx, cache.TranslationsPattern)
		if err != nil {
			return fmt.Errorf("listing keys: %w", err)
		}
		out.Keys = len(keys)
	}

	if c.jsonOut {
		return writeJSON(c.stdout, out)
	}

	fmt.Fprintf(c.stdout, "%s %s\n", l10ncache.Name, out.Version)
	if !out.Cached {
		fmt.Fprintln(c.stdout, "  Store:     unavailable (uncached)")
		return nil
	}
	fmt.Fprintf(c.stdout, "  Store:     %s %s\n", out.Endpoint, out.Server)
	fmt.Fprintf(c.stdout, "  Memory:    %s", humanize.IBytes(out.MemoryUsed))
	if out.MemoryTotal > 0 {
		fmt.Fprintf(c.stdout, " of %s", humanize.IBytes(out.MemoryTotal))
	}
	fmt.Fprintln(c.stdout)
	fmt.Fprintf(c.stdout, "  Keys:      %s\n", humanize.Comma(int64(out.Keys)))
	fmt.Fprintf(c.stdout, "  Locale:    %s (%s)\n", out.Locale, out.Language)
	return nil
}

func (c *cli) warm(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("warm", flag.ContinueOnError)
	flags.SetOutput(c.stderr)
	workers := flags.Int("workers", 4, "Concurrent lookups")

	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() < 1 {
		return errors.New("usage: warm [--workers n] <dir>")
	}

	jobs, err := collectJobs(flags.Arg(0))
	if err != nil {
		return err
	}

	start := time.Now()
	results := l10ncache.Warm(ctx, c.localizer, jobs, *workers)
	ok, failed := l10ncache.WarmSummary(results)

	if c.jsonOut {
		return writeJSON(c.stdout, map[string]any{
			"files":      len(jobs),
			"loaded":     ok,
			"failed":     failed,
			"elapsed_ms": time.Since(start).Milliseconds(),
		})
	}

	for _, r := range results {
		if !r.OK && !c.quiet {
			fmt.Fprintf(c.stderr, "  failed: %s\n", r.Job.Path)
		}
	}
	fmt.Fprintf(c.stdout, "Warmed %d of %d files in %v\n", ok, len(jobs), time.Since(start).Round(time.Millisecond))
	return nil
}

// collectJobs finds translation files under dir. Names follow the WordPress
// layout: "{domain}-{locale}.mo", "{locale}.mo" for the default domain, and
// "{domain}-{locale}-{hash}.json".
func collectJobs(dir string) ([]l10ncache.WarmJob, error) {
	var jobs []l10ncache.WarmJob

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		name := filepath.Base(path)
		switch filepath.Ext(name) {
		case ".mo":
			domain, locale := splitName(strings.TrimSuffix(name, ".mo"))
			jobs = append(jobs, l10ncache.WarmJob{Kind: l10ncache.KindMO, Domain: domain, Path: path, Locale: locale})
		case ".json":
			stem := strings.TrimSuffix(name, ".json")
			if i := strings.LastIndex(stem, "-"); i >= 0 {
				stem = stem[:i]
			}
			domain, _ := splitName(stem)
			jobs = append(jobs, l10ncache.WarmJob{Kind: l10ncache.KindJSON, Domain: domain, Path: path, Handle: domain})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dir, err)
	}

	return jobs, nil
}

// splitName splits "{domain}-{locale}" on the last dash.
func splitName(stem string) (domain, locale string) {
	i := strings.LastIndex(stem, "-")
	if i < 0 {
		return "default", stem
	}
	return stem[:i], stem[i+1:]
}

func (c *cli) inspectable() (cache.InspectableStore, error) {
	store, ok := c.localizer.Store().(cache.InspectableStore)
	if !ok {
		return nil, errors.New("store unavailable")
	}
	return store, nil
}

func (c *cli) export(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: export <file>")
	}
	store, err := c.inspectable()
	if err != nil {
		return err
	}

	n, err := cache.NewExporter(store).ExportToFile(ctx, args[0], map[string]string{
		"generator": l10ncache.Name + "/" + l10ncache.FullVersion(),
	})
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	if !c.quiet {
		fmt.Fprintf(c.stderr, "Exported %d entries to %s\n", n, args[0])
	}
	return nil
}

func (c *cli) importDump(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: import <file>")
	}
	store, err := c.inspectable()
	if err != nil {
		return err
	}

	result, err := cache.NewImporter(store).ImportFromFile(ctx, args[0])
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	if c.jsonOut {
		return writeJSON(c.stdout, result)
	}
	if !c.quiet {
		fmt.Fprintf(c.stderr, "Imported %d entries (%d failed)\n", result.Imported, result.Failed)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
