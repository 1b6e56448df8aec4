package l10ncache

import (
	"strings"
	"testing"

	"github.com/ZaguanLabs/l10ncache/cache"
)

func TestFootnoteText(t *testing.T) {
	snap := StatsSnapshot{Hits: 3, Misses: 1, ReadableHits: 2, ReadableMisses: 2}
	info := &cache.Info{Endpoint: "127.0.0.1:6379", Version: "7.2.4", MemoryUsed: 2 << 20, MemoryTotal: 64 << 20}

	text := FootnoteText(snap, info)

	for _, want := range []string{"3 hits", "1 misses", "75.0% hit ratio", "readable memo 2/4", "127.0.0.1:6379 v7.2.4", "2.0 MiB of 64 MiB"} {
		if !strings.Contains(text, want) {
			t.Errorf("Footnote %q should contain %q", text, want)
		}
	}
	if strings.Contains(text, "store errors") {
		t.Error("Store errors should only be shown when non-zero")
	}
}

func TestFootnoteText_Uncached(t *testing.T) {
	text := FootnoteText(StatsSnapshot{StoreErrors: 2}, nil)

	if !strings.Contains(text, "uncached") || !strings.Contains(text, "2 store errors") {
		t.Errorf("Unexpected footnote %q", text)
	}
}

func TestFootnote_AppendsToBody(t *testing.T) {
	page := "<!DOCTYPE html><html><head><title>T</title></head><body><p>Hello</p></body></html>"

	out := Footnote(page, StatsSnapshot{Hits: 1}, nil)

	idx := strings.Index(out, "<!-- l10ncache:")
	if idx < 0 {
		t.Fatalf("Footnote comment missing: %q", out)
	}
	if idx < strings.Index(out, "<p>Hello</p>") || idx > strings.Index(out, "</body>") {
		t.Errorf("Footnote should be the last child of body: %q", out)
	}
}

func TestFootnote_NonHTMLUnchanged(t *testing.T) {
	for _, page := range []string{`{"ok":true}`, "plain text", ""} {
		if out := Footnote(page, StatsSnapshot{}, nil); out != page {
			t.Errorf("Non-HTML input changed: %q -> %q", page, out)
		}
	}
}
