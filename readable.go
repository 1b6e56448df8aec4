package l10ncache

import (
	"os"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/viccon/sturdyc"
)

// Readability memo sizing.
const (
	memoCapacity        = 10000
	memoShards          = 10
	memoEvictionPercent = 10
	defaultMemoTTL      = 5 * time.Minute
)

// ReadabilityMemo remembers whether translation files can be opened, so
// checking the same file for several lookups touches the filesystem once.
// Negative answers are remembered as well.
type ReadabilityMemo struct {
	memo   *sturdyc.Client[bool]
	stats  *Stats
	opener func(path string) error
}

// NewReadabilityMemo creates a memo whose answers live for ttl. A
// non-positive ttl uses five minutes.
func NewReadabilityMemo(ttl time.Duration, stats *Stats) *ReadabilityMemo {
	if ttl <= 0 {
		ttl = defaultMemoTTL
	}

	return &ReadabilityMemo{
		memo:   sturdyc.New[bool](memoCapacity, memoShards, ttl, memoEvictionPercent),
		stats:  stats,
		opener: openForReading,
	}
}

// IsReadable reports whether path can be opened for reading.
func (m *ReadabilityMemo) IsReadable(path string) bool {
	return m.Check(path) == nil
}

// Check returns nil when path is readable and a *ReadabilityError otherwise.
// A memoized negative answer carries no cause.
func (m *ReadabilityMemo) Check(path string) error {
	key := memoKey(path)

	if readable, ok := m.memo.Get(key); ok {
		m.stats.readableCheck(resultHit)
		if readable {
			return nil
		}
		return &ReadabilityError{Path: path}
	}

	m.stats.readableCheck(resultMiss)

	err := m.opener(path)
	m.memo.Set(key, err == nil)
	if err != nil {
		return &ReadabilityError{Path: path, Cause: err}
	}
	return nil
}

// Len returns the number of memoized paths.
func (m *ReadabilityMemo) Len() int {
	return m.memo.Size()
}

func memoKey(path string) string {
	return "readable:" + strconv.FormatUint(xxhash.Sum64String(path), 32)
}

func openForReading(path string) error {
	f, err := os.Open(path) // #nosec G304 - translation paths come from the host
	if err != nil {
		return err
	}
	return f.Close()
}
