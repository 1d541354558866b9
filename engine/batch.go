package engine

import (
	"context"
	"log/slog"
	"sync"

	"github.com/bencium/agi-detector/models"
)

// AcquireBatch runs the cascade over many targets with at most concurrency
// acquisitions in flight. The returned slice always has one entry per input
// target, in input order; a per-target failure is recorded in its slot and
// never aborts sibling acquisitions.
func (e *Engine) AcquireBatch(ctx context.Context, targets []models.AcquisitionTarget, concurrency int) []models.AcquisitionResult {
	if concurrency <= 0 {
		concurrency = 1
	}

	results := make([]models.AcquisitionResult, len(targets))
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	for i, target := range targets {
		wg.Add(1)
		go func(idx int, t models.AcquisitionTarget) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			results[idx] = e.Acquire(ctx, t)
		}(i, target)
	}

	wg.Wait()

	var failed int
	for i := range results {
		if !results[i].Succeeded {
			failed++
		}
	}
	slog.Info("batch finished",
		"total", len(targets),
		"failed", failed,
		"concurrency", concurrency,
	)
	return results
}
