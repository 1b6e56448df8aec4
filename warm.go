package l10ncache

import (
	"context"
	"sync"
)

// WarmJob names one translation file to pre-load.
type WarmJob struct {
	Kind   Kind
	Domain string
	Path   string
	Locale string // KindMO only; empty uses the localizer default
	Handle string // KindJSON only
}

// WarmResult reports the outcome of one WarmJob.
type WarmResult struct {
	Job WarmJob
	OK  bool
}

// Warm runs jobs through the localizer's normal lookup path using up to
// workers goroutines, so later requests take the store fast path. Results
// keep the order of jobs. Duplicate jobs are looked up once.
func Warm(ctx context.Context, loc *Localizer, jobs []WarmJob, workers int) []WarmResult {
	results := make([]WarmResult, len(jobs))
	if len(jobs) == 0 {
		return results
	}
	if workers < 1 {
		workers = 1
	}

	// Deduplicate jobs first
	first := make(map[WarmJob]int, len(jobs))
	var unique []int
	for i, job := range jobs {
		if _, seen := first[job]; !seen {
			first[job] = i
			unique = append(unique, i)
		}
	}

	indexes := make(chan int)
	var wg sync.WaitGroup

	for w := 0; w < workers && w < len(unique); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				results[i] = WarmResult{Job: jobs[i], OK: warmOne(ctx, loc, jobs[i])}
			}
		}()
	}

feed:
	for _, i := range unique {
		select {
		case <-ctx.Done():
			break feed
		case indexes <- i:
		}
	}
	close(indexes)
	wg.Wait()

	// Fill in duplicates and anything skipped by cancellation
	for i, job := range jobs {
		if src := first[job]; src != i {
			results[i] = WarmResult{Job: job, OK: results[src].OK}
		} else if results[i].Job != job {
			results[i] = WarmResult{Job: job}
		}
	}

	return results
}

func warmOne(ctx context.Context, loc *Localizer, job WarmJob) bool {
	switch job.Kind {
	case KindJSON:
		_, ok := loc.OnLookupJSON(ctx, job.Path, job.Handle, job.Domain)
		return ok
	default:
		return loc.OnLookupMO(ctx, job.Domain, job.Path, job.Locale)
	}
}

// WarmSummary counts successful and failed results.
func WarmSummary(results []WarmResult) (ok, failed int) {
	for _, r := range results {
		if r.OK {
			ok++
		} else {
			failed++
		}
	}
	return ok, failed
}
