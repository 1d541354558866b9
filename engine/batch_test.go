package engine

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bencium/agi-detector/models"
)

// gaugeStrategy records the high-water mark of concurrent invocations.
type gaugeStrategy struct {
	inFlight atomic.Int32
	peak     atomic.Int32
	failURL  string
}

func (g *gaugeStrategy) Kind() models.StrategyKind { return models.StrategyFetch }

func (g *gaugeStrategy) Acquire(ctx context.Context, target models.AcquisitionTarget) (*models.Payload, error) {
	cur := g.inFlight.Add(1)
	defer g.inFlight.Add(-1)
	for {
		old := g.peak.Load()
		if cur <= old || g.peak.CompareAndSwap(old, cur) {
			break
		}
	}
	time.Sleep(20 * time.Millisecond)
	if target.URL == g.failURL {
		return nil, errors.New("fetch: HTTP 403 for target")
	}
	return onePayload(), nil
}

func batchTargets(n int) []models.AcquisitionTarget {
	targets := make([]models.AcquisitionTarget, n)
	for i := range targets {
		targets[i] = models.AcquisitionTarget{URL: fmt.Sprintf("https://example.com/posts/%d", i)}
	}
	return targets
}

func TestBatchBoundedConcurrency(t *testing.T) {
	gauge := &gaugeStrategy{}
	eng := newTestEngine([]Strategy{gauge})

	results := eng.AcquireBatch(context.Background(), batchTargets(5), 2)

	if len(results) != 5 {
		t.Fatalf("got %d results, want 5", len(results))
	}
	if peak := gauge.peak.Load(); peak > 2 {
		t.Errorf("observed %d concurrent acquisitions, limit is 2", peak)
	}
	for i, r := range results {
		if !r.Succeeded {
			t.Errorf("result %d failed: %+v", i, r.Error)
		}
	}
}

func TestBatchPreservesOrder(t *testing.T) {
	eng := newTestEngine([]Strategy{&gaugeStrategy{}})
	targets := batchTargets(4)

	results := eng.AcquireBatch(context.Background(), targets, 4)

	for i, r := range results {
		if r.Target.URL != targets[i].URL {
			t.Errorf("result %d holds target %q, want %q", i, r.Target.URL, targets[i].URL)
		}
	}
}

func TestBatchPartialFailureIsolated(t *testing.T) {
	targets := batchTargets(5)
	gauge := &gaugeStrategy{failURL: targets[2].URL}
	eng := newTestEngine([]Strategy{gauge})

	results := eng.AcquireBatch(context.Background(), targets, 2)

	for i, r := range results {
		if i == 2 {
			if r.Succeeded {
				t.Error("target 2 should fail")
			}
			if r.Error == nil || r.Error.Code != models.ErrCodeAllMissed {
				t.Errorf("target 2 error = %+v", r.Error)
			}
			continue
		}
		if !r.Succeeded {
			t.Errorf("target %d failed but should be unaffected: %+v", i, r.Error)
		}
	}
}

func TestBatchZeroConcurrencyStillRuns(t *testing.T) {
	eng := newTestEngine([]Strategy{&gaugeStrategy{}})

	results := eng.AcquireBatch(context.Background(), batchTargets(2), 0)

	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	for i, r := range results {
		if !r.Succeeded {
			t.Errorf("result %d failed: %+v", i, r.Error)
		}
	}
}

func TestBatchEmptyInput(t *testing.T) {
	eng := newTestEngine([]Strategy{&gaugeStrategy{}})
	if results := eng.AcquireBatch(context.Background(), nil, 3); len(results) != 0 {
		t.Errorf("got %d results for empty input, want 0", len(results))
	}
}
