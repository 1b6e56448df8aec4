package l10ncache

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/ZaguanLabs/l10ncache/cache"
)

func TestWarm(t *testing.T) {
	ctx := context.Background()
	store := cache.NewInMemoryStore(0)
	parser := frenchParser()
	dir := t.TempDir()

	mo := touch(t, dir, "akismet-fr_FR.mo", nil)
	js := touch(t, dir, "akismet-fr_FR-abc.json", []byte(`{}`))

	jobs := []WarmJob{
		{Kind: KindMO, Domain: "akismet", Path: mo, Locale: "fr_FR"},
		{Kind: KindJSON, Domain: "akismet", Path: js, Handle: "akismet-admin"},
		{Kind: KindMO, Domain: "missing", Path: filepath.Join(dir, "missing.mo"), Locale: "fr_FR"},
		{Kind: KindMO, Domain: "akismet", Path: mo, Locale: "fr_FR"},
	}

	loc := newTestLocalizer(store, parser)
	results := Warm(ctx, loc, jobs, 3)

	if len(results) != len(jobs) {
		t.Fatalf("Expected %d results, got %d", len(jobs), len(results))
	}
	for i, r := range results {
		if r.Job != jobs[i] {
			t.Errorf("Result %d out of order: %+v", i, r.Job)
		}
	}

	want := []bool{true, true, false, true}
	for i, ok := range want {
		if results[i].OK != ok {
			t.Errorf("Job %d: OK = %v, want %v", i, results[i].OK, ok)
		}
	}

	if parser.Calls() != 1 {
		t.Errorf("Duplicate jobs should be loaded once, got %d parses", parser.Calls())
	}
	if store.Len() != 2 {
		t.Errorf("Expected 2 cached payloads, got %d", store.Len())
	}

	ok, failed := WarmSummary(results)
	if ok != 3 || failed != 1 {
		t.Errorf("WarmSummary = %d, %d", ok, failed)
	}
}

func TestWarm_Empty(t *testing.T) {
	results := Warm(context.Background(), newTestLocalizer(nil, nil), nil, 4)
	if len(results) != 0 {
		t.Errorf("Expected no results, got %d", len(results))
	}
}

func TestWarm_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	jobs := []WarmJob{{Kind: KindMO, Domain: "a", Path: "/nonexistent/a.mo"}}
	results := Warm(ctx, newTestLocalizer(nil, nil), jobs, 0)

	if len(results) != 1 || results[0].Job != jobs[0] || results[0].OK {
		t.Errorf("Unexpected results for cancelled warm-up: %+v", results)
	}
}
