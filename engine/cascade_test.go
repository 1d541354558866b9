package engine

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bencium/agi-detector/cache"
	"github.com/bencium/agi-detector/models"
	"github.com/bencium/agi-detector/pool"
	"github.com/bencium/agi-detector/ratelimit"
	"github.com/bencium/agi-detector/retry"
)

// stubStrategy counts invocations and returns a fixed outcome.
type stubStrategy struct {
	kind    models.StrategyKind
	payload *models.Payload
	err     error
	calls   atomic.Int32
	delay   time.Duration
}

func (s *stubStrategy) Kind() models.StrategyKind { return s.kind }

func (s *stubStrategy) Acquire(ctx context.Context, target models.AcquisitionTarget) (*models.Payload, error) {
	s.calls.Add(1)
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return s.payload, s.err
}

func onePayload() *models.Payload {
	return &models.Payload{Items: []models.Item{{Title: "hit", URL: "https://example.com/a"}}}
}

func newTestEngine(strategies []Strategy) *Engine {
	return New(
		strategies,
		cache.New(time.Minute, 100),
		ratelimit.New(ratelimit.Budget{}),
		retry.Policy{MaxAttempts: 1, BaseDelay: time.Millisecond},
		nil,
	)
}

func TestCascadeShortCircuit(t *testing.T) {
	first := &stubStrategy{kind: models.StrategyFeed, err: errors.New("feed: no feed here")}
	second := &stubStrategy{kind: models.StrategyAPI, payload: onePayload()}
	third := &stubStrategy{kind: models.StrategyFetch, payload: onePayload()}
	fourth := &stubStrategy{kind: models.StrategyBrowser, payload: onePayload()}

	eng := newTestEngine([]Strategy{first, second, third, fourth})
	result := eng.Acquire(context.Background(), models.AcquisitionTarget{URL: "https://example.com/a"})

	if !result.Succeeded {
		t.Fatalf("expected success, got %+v", result.Error)
	}
	if result.StrategyUsed != models.StrategyAPI {
		t.Errorf("StrategyUsed = %s, want api", result.StrategyUsed)
	}
	if n := first.calls.Load(); n != 1 {
		t.Errorf("first strategy invoked %d times, want 1", n)
	}
	if n := third.calls.Load(); n != 0 {
		t.Errorf("strategy after the winner invoked %d times, want 0", n)
	}
	if n := fourth.calls.Load(); n != 0 {
		t.Errorf("browser strategy invoked %d times, want 0", n)
	}
}

func TestCascadeEmptyPayloadIsMiss(t *testing.T) {
	first := &stubStrategy{kind: models.StrategyFeed, payload: &models.Payload{}}
	second := &stubStrategy{kind: models.StrategyFetch, payload: onePayload()}

	eng := newTestEngine([]Strategy{first, second})
	result := eng.Acquire(context.Background(), models.AcquisitionTarget{URL: "https://example.com/a"})

	if !result.Succeeded || result.StrategyUsed != models.StrategyFetch {
		t.Errorf("empty payload should advance the cascade, got %+v", result)
	}
}

func TestCascadeAllMiss(t *testing.T) {
	strategies := []Strategy{
		&stubStrategy{kind: models.StrategyFeed, err: errors.New("feed: parse failed")},
		&stubStrategy{kind: models.StrategyAPI, err: errors.New("api: HTTP 500")},
		&stubStrategy{kind: models.StrategyFetch},
		&stubStrategy{kind: models.StrategyBrowser, err: errors.New("browser: navigation failed")},
	}

	eng := newTestEngine(strategies)
	result := eng.Acquire(context.Background(), models.AcquisitionTarget{URL: "https://example.com/a"})

	if result.Succeeded {
		t.Fatal("expected failure when every strategy misses")
	}
	if result.Error == nil || result.Error.Message == "" {
		t.Fatal("all-miss result must carry an aggregated explanation")
	}
	if result.Error.Code != models.ErrCodeAllMissed {
		t.Errorf("error code = %s, want %s", result.Error.Code, models.ErrCodeAllMissed)
	}
}

func TestCacheHitSkipsCascade(t *testing.T) {
	winner := &stubStrategy{kind: models.StrategyFeed, payload: onePayload()}
	eng := newTestEngine([]Strategy{winner})

	target := models.AcquisitionTarget{URL: "https://example.com/a"}
	first := eng.Acquire(context.Background(), target)
	if !first.Succeeded {
		t.Fatal("setup: first acquire should succeed")
	}

	second := eng.Acquire(context.Background(), target)
	if !second.Succeeded || second.StrategyUsed != models.StrategyFeed {
		t.Errorf("cache hit should replay the original outcome, got %+v", second)
	}
	if n := winner.calls.Load(); n != 1 {
		t.Errorf("strategy invoked %d times across two acquires, want 1 (cache short-circuit)", n)
	}
}

func TestCascadeRetriesWithinStrategy(t *testing.T) {
	flaky := &stubStrategy{kind: models.StrategyFetch, err: errors.New("connection reset by peer")}
	eng := New(
		[]Strategy{flaky},
		cache.New(time.Minute, 100),
		ratelimit.New(ratelimit.Budget{}),
		retry.Policy{MaxAttempts: 3, BaseDelay: time.Millisecond, Kind: retry.BackoffExponential},
		nil,
	)

	result := eng.Acquire(context.Background(), models.AcquisitionTarget{URL: "https://example.com/a"})
	if result.Succeeded {
		t.Fatal("expected failure")
	}
	if n := flaky.calls.Load(); n != 3 {
		t.Errorf("retryable strategy invoked %d times, want 3", n)
	}
}

func TestCascadeTerminalErrorAdvancesWithoutRetry(t *testing.T) {
	blocked := &stubStrategy{kind: models.StrategyFetch, err: errors.New("fetch: HTTP 403 for target")}
	rescue := &stubStrategy{kind: models.StrategyBrowser, payload: onePayload()}
	eng := New(
		[]Strategy{blocked, rescue},
		cache.New(time.Minute, 100),
		ratelimit.New(ratelimit.Budget{}),
		retry.Policy{MaxAttempts: 3, BaseDelay: time.Millisecond},
		nil,
	)

	result := eng.Acquire(context.Background(), models.AcquisitionTarget{URL: "https://example.com/a"})
	if !result.Succeeded || result.StrategyUsed != models.StrategyBrowser {
		t.Fatalf("cascade should fall through to browser, got %+v", result)
	}
	if n := blocked.calls.Load(); n != 1 {
		t.Errorf("blocked strategy invoked %d times, want 1 (no retry on access denial)", n)
	}
}

func TestThrottleDrawsFromSharedBudget(t *testing.T) {
	eng := New(
		nil,
		cache.New(time.Minute, 100),
		ratelimit.New(ratelimit.Budget{Requests: 1, PerInterval: 100 * time.Millisecond}),
		retry.Policy{MaxAttempts: 1, BaseDelay: time.Millisecond},
		nil,
	)

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := eng.Throttle(context.Background()); err != nil {
			t.Fatalf("Throttle #%d: %v", i, err)
		}
	}
	if elapsed := time.Since(start); elapsed < 180*time.Millisecond {
		t.Errorf("3 throttled calls took %v, want >= ~200ms", elapsed)
	}
}

func TestShutdownIdempotent(t *testing.T) {
	var closes atomic.Int32
	eng := newTestEngine(nil)
	eng.closer = func() { closes.Add(1) }

	eng.Shutdown()
	eng.Shutdown()
	if n := closes.Load(); n != 1 {
		t.Errorf("closer ran %d times, want 1", n)
	}
}

func TestShutdownWithoutBrowserIsNoOp(t *testing.T) {
	eng := newTestEngine(nil)
	// closer nil: must not panic.
	eng.Shutdown()
}

const rssTwoItems = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Lab Updates</title>
    <link>https://lab.example.com</link>
    <item>
      <title>Scaling results</title>
      <link>https://lab.example.com/posts/scaling</link>
      <description>New scaling results on frontier evals.</description>
      <pubDate>Mon, 10 Aug 2026 10:00:00 GMT</pubDate>
    </item>
    <item>
      <title>Agentic benchmarks</title>
      <link>https://lab.example.com/posts/agents</link>
      <description>A new agentic benchmark suite.</description>
      <pubDate>Tue, 11 Aug 2026 10:00:00 GMT</pubDate>
    </item>
  </channel>
</rss>`

func TestEndToEnd_FeedStrategyWins(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(rssTwoItems))
	}))
	defer srv.Close()

	feed := NewFeedStrategy(5*time.Second, pool.New(nil))
	laterStrategy := &stubStrategy{kind: models.StrategyBrowser, payload: onePayload()}

	c := cache.New(time.Minute, 100)
	eng := New(
		[]Strategy{feed, laterStrategy},
		c,
		ratelimit.New(ratelimit.Budget{}),
		retry.Policy{MaxAttempts: 1, BaseDelay: time.Millisecond},
		nil,
	)

	target := models.AcquisitionTarget{URL: srv.URL + "/blog", FeedURL: srv.URL + "/feed"}
	result := eng.Acquire(context.Background(), target)

	if !result.Succeeded {
		t.Fatalf("expected success, got %+v", result.Error)
	}
	if result.StrategyUsed != models.StrategyFeed {
		t.Errorf("StrategyUsed = %s, want feed", result.StrategyUsed)
	}
	if len(result.Payload.Items) != 2 {
		t.Fatalf("got %d items, want 2", len(result.Payload.Items))
	}
	if result.Payload.Items[0].Title != "Scaling results" {
		t.Errorf("item title = %q", result.Payload.Items[0].Title)
	}
	if n := laterStrategy.calls.Load(); n != 0 {
		t.Errorf("browser strategy ran despite feed success")
	}
	if c.Get(target.URL) == nil {
		t.Error("cache should hold an entry for the target after success")
	}
}

func TestEndToEnd_BrowserStrategyWins(t *testing.T) {
	browser := NewBrowserStrategy(func(ctx context.Context, target models.AcquisitionTarget) (*models.Payload, error) {
		return &models.Payload{Items: []models.Item{{Title: "Rendered", URL: target.URL, Body: "body text"}}}, nil
	})
	strategies := []Strategy{
		&stubStrategy{kind: models.StrategyFeed, err: errors.New("feed: no feed")},
		&stubStrategy{kind: models.StrategyAPI},
		&stubStrategy{kind: models.StrategyFetch, err: errors.New("fetch: HTTP 403")},
		browser,
	}

	eng := newTestEngine(strategies)
	result := eng.Acquire(context.Background(), models.AcquisitionTarget{URL: "https://example.com/spa"})

	if !result.Succeeded || result.StrategyUsed != models.StrategyBrowser {
		t.Fatalf("want browser win, got %+v", result)
	}
	if result.Payload.Items[0].Title != "Rendered" {
		t.Errorf("unexpected payload: %+v", result.Payload)
	}
}
