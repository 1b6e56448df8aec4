package l10ncache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Lookup outcomes recorded by Stats.
const (
	resultHit  = "hit"
	resultMiss = "miss"
	resultFail = "fail"
)

// Stats counts cache activity. Counters live on a private registry so several
// localizers can coexist in one process. A nil *Stats records nothing.
type Stats struct {
	registry    *prometheus.Registry
	lookups     *prometheus.CounterVec
	storeErrors *prometheus.CounterVec
	readable    *prometheus.CounterVec
}

// NewStats creates a Stats with its own registry.
func NewStats() *Stats {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Stats{
		registry: reg,
		lookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "l10ncache",
			Name:      "lookups_total",
			Help:      "Translation lookups by payload kind and outcome.",
		}, []string{"kind", "result"}),
		storeErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "l10ncache",
			Name:      "store_errors_total",
			Help:      "Failed store operations, treated as cache misses.",
		}, []string{"op"}),
		readable: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "l10ncache",
			Name:      "readable_checks_total",
			Help:      "Readability checks answered from the memo (hit) or the filesystem (miss).",
		}, []string{"result"}),
	}
}

// Registry exposes the counters for scraping.
func (s *Stats) Registry() *prometheus.Registry {
	return s.registry
}

func (s *Stats) lookup(kind Kind, result string) {
	if s == nil {
		return
	}
	s.lookups.WithLabelValues(string(kind), result).Inc()
}

func (s *Stats) storeError(op string) {
	if s == nil {
		return
	}
	s.storeErrors.WithLabelValues(op).Inc()
}

func (s *Stats) readableCheck(result string) {
	if s == nil {
		return
	}
	s.readable.WithLabelValues(result).Inc()
}

// StatsSnapshot is a point-in-time copy of the counters.
type StatsSnapshot struct {
	Hits           uint64 // Lookups served from the store
	Misses         uint64 // Lookups parsed from disk and written back
	Failures       uint64 // Lookups with no usable catalog
	StoreErrors    uint64
	ReadableHits   uint64
	ReadableMisses uint64
}

// Lookups returns the number of lookups that reached the store or disk.
func (s StatsSnapshot) Lookups() uint64 {
	return s.Hits + s.Misses + s.Failures
}

// HitRatio returns Hits over Hits+Misses, or 0 before any lookup.
func (s StatsSnapshot) HitRatio() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// Snapshot gathers the current counter values.
func (s *Stats) Snapshot() StatsSnapshot {
	var snap StatsSnapshot
	if s == nil {
		return snap
	}

	families, err := s.registry.Gather()
	if err != nil {
		return snap
	}

	for _, family := range families {
		for _, metric := range family.GetMetric() {
			value := uint64(metric.GetCounter().GetValue())
			labels := labelMap(metric)

			switch family.GetName() {
			case "l10ncache_lookups_total":
				switch labels["result"] {
				case resultHit:
					snap.Hits += value
				case resultMiss:
					snap.Misses += value
				case resultFail:
					snap.Failures += value
				}
			case "l10ncache_store_errors_total":
				snap.StoreErrors += value
			case "l10ncache_readable_checks_total":
				if labels["result"] == resultHit {
					snap.ReadableHits += value
				} else {
					snap.ReadableMisses += value
				}
			}
		}
	}

	return snap
}

func labelMap(m *dto.Metric) map[string]string {
	labels := make(map[string]string, len(m.GetLabel()))
	for _, pair := range m.GetLabel() {
		labels[pair.GetName()] = pair.GetValue()
	}
	return labels
}
