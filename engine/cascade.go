package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/bencium/agi-detector/cache"
	"github.com/bencium/agi-detector/models"
	"github.com/bencium/agi-detector/ratelimit"
	"github.com/bencium/agi-detector/retry"
)

// Engine runs the strategy cascade over targets. One Engine instance owns
// one rate-limit bucket and one cache; it is safe for concurrent use.
type Engine struct {
	strategies []Strategy
	cache      *cache.Cache
	limiter    *ratelimit.Limiter
	policy     retry.Policy

	// closer releases the shared browser process and pooled resources.
	// Injected from main so engine/ never imports scraper/.
	closer func()

	closeOnce sync.Once
}

// New creates an Engine. Strategies are tried in the given order; closer
// may be nil when no strategy holds external resources.
func New(strategies []Strategy, c *cache.Cache, l *ratelimit.Limiter, policy retry.Policy, closer func()) *Engine {
	return &Engine{
		strategies: strategies,
		cache:      c,
		limiter:    l,
		policy:     policy,
		closer:     closer,
	}
}

// Acquire runs the cascade for a single target. It never returns an error:
// an all-strategies-missed run yields a failed AcquisitionResult carrying
// an aggregated explanation.
func (e *Engine) Acquire(ctx context.Context, target models.AcquisitionTarget) models.AcquisitionResult {
	if cached := e.cache.Get(target.URL); cached != nil {
		slog.Debug("cache hit, skipping cascade", "url", target.URL)
		hit := *cached
		hit.Target = target
		return hit
	}

	var misses []string
	for _, s := range e.strategies {
		payload, err := e.runStrategy(ctx, s, target)
		switch {
		case err != nil:
			slog.Debug("strategy failed, trying next",
				"strategy", s.Kind(), "url", target.URL, "error", err)
			misses = append(misses, fmt.Sprintf("%s: %v", s.Kind(), err))
			continue
		case payload.Empty():
			slog.Debug("strategy returned no data, trying next",
				"strategy", s.Kind(), "url", target.URL)
			misses = append(misses, fmt.Sprintf("%s: no data", s.Kind()))
			continue
		}

		result := models.AcquisitionResult{
			Target:       target,
			Succeeded:    true,
			Payload:      payload,
			StrategyUsed: s.Kind(),
		}
		e.cache.Set(target.URL, &result)
		slog.Info("target acquired",
			"url", target.URL, "strategy", s.Kind(), "items", len(payload.Items))
		return result
	}

	slog.Warn("all strategies missed", "url", target.URL, "misses", len(misses))
	return models.AcquisitionResult{
		Target:    target,
		Succeeded: false,
		Error: &models.ErrorDetail{
			Code:    models.ErrCodeAllMissed,
			Message: "all strategies missed: " + strings.Join(misses, "; "),
		},
	}
}

// runStrategy wraps one strategy invocation with the shared rate limiter
// and the retry executor. Every retry attempt pays for its own token so the
// aggregate outbound rate stays bounded.
func (e *Engine) runStrategy(ctx context.Context, s Strategy, target models.AcquisitionTarget) (*models.Payload, error) {
	var payload *models.Payload
	err := retry.Do(ctx, e.policy, func(ctx context.Context) error {
		if err := e.limiter.Acquire(ctx); err != nil {
			return err
		}
		p, err := s.Acquire(ctx, target)
		if err != nil {
			return err
		}
		payload = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return payload, nil
}

// Shutdown releases the shared browser process and pooled resources. It is
// idempotent and a no-op when no strategy ever started a browser.
func (e *Engine) Shutdown() {
	e.closeOnce.Do(func() {
		if e.closer != nil {
			e.closer()
		}
	})
}

// Throttle blocks until the engine's shared outbound budget grants a
// token. Adapters that bypass the cascade (e.g. the leaderboard endpoint)
// call this so their requests count against the same bucket.
func (e *Engine) Throttle(ctx context.Context) error {
	return e.limiter.Acquire(ctx)
}

// CacheLen reports the number of live cache entries, for health reporting.
func (e *Engine) CacheLen() int {
	return e.cache.Len()
}
