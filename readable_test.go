package l10ncache

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestReadabilityMemo_MemoizesPositive(t *testing.T) {
	stats := NewStats()
	memo := NewReadabilityMemo(0, stats)
	path := touch(t, t.TempDir(), "akismet-fr_FR.mo", nil)

	opens := 0
	memo.opener = func(p string) error {
		opens++
		return openForReading(p)
	}

	if !memo.IsReadable(path) || !memo.IsReadable(path) {
		t.Fatal("Existing file should be readable")
	}

	if opens != 1 {
		t.Errorf("Expected 1 filesystem check, got %d", opens)
	}

	snap := stats.Snapshot()
	if snap.ReadableHits != 1 || snap.ReadableMisses != 1 {
		t.Errorf("Expected 1 hit and 1 miss, got %+v", snap)
	}
}

func TestReadabilityMemo_MemoizesNegative(t *testing.T) {
	memo := NewReadabilityMemo(0, NewStats())
	path := filepath.Join(t.TempDir(), "missing.mo")

	if memo.IsReadable(path) {
		t.Fatal("Missing file should not be readable")
	}

	// Creating the file does not change the memoized answer.
	touch(t, filepath.Dir(path), "missing.mo", nil)
	if memo.IsReadable(path) {
		t.Error("Negative answer should be memoized")
	}
}

func TestReadabilityMemo_CheckError(t *testing.T) {
	memo := NewReadabilityMemo(0, nil)
	path := filepath.Join(t.TempDir(), "missing.mo")

	err := memo.Check(path)
	if !IsReadabilityError(err) {
		t.Fatalf("Expected ReadabilityError, got %v", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("First check should carry the filesystem cause, got %v", err)
	}

	err = memo.Check(path)
	var readErr *ReadabilityError
	if !errors.As(err, &readErr) || readErr.Path != path {
		t.Errorf("Memoized check should name the path, got %v", err)
	}
}

func TestReadabilityMemo_DistinctPaths(t *testing.T) {
	memo := NewReadabilityMemo(0, nil)
	dir := t.TempDir()

	a := touch(t, dir, "a.mo", nil)
	b := filepath.Join(dir, "b.mo")

	if !memo.IsReadable(a) || memo.IsReadable(b) {
		t.Error("Paths should be memoized independently")
	}
	if memo.Len() != 2 {
		t.Errorf("Expected 2 memoized paths, got %d", memo.Len())
	}
}

func TestMemoKey(t *testing.T) {
	if memoKey("/a.mo") == memoKey("/b.mo") {
		t.Error("Different paths should have different memo keys")
	}
	if memoKey("/a.mo") != memoKey("/a.mo") {
		t.Error("Memo key should be deterministic")
	}
}
