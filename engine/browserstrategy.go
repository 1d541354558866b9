package engine

import (
	"context"
	"fmt"

	"github.com/bencium/agi-detector/models"
)

// BrowserFetchFunc wraps the browser session subsystem's acquisition logic.
// It is injected from main to avoid an engine/ -> scraper/ import cycle.
type BrowserFetchFunc func(ctx context.Context, target models.AcquisitionTarget) (*models.Payload, error)

// BrowserStrategy is the last-resort strategy: full browser automation via
// the injected callback.
type BrowserStrategy struct {
	fetch BrowserFetchFunc
}

// NewBrowserStrategy creates a BrowserStrategy around the scraper callback.
func NewBrowserStrategy(fetch BrowserFetchFunc) *BrowserStrategy {
	return &BrowserStrategy{fetch: fetch}
}

func (s *BrowserStrategy) Kind() models.StrategyKind { return models.StrategyBrowser }

func (s *BrowserStrategy) Acquire(ctx context.Context, target models.AcquisitionTarget) (*models.Payload, error) {
	if s.fetch == nil {
		return nil, fmt.Errorf("browser: fetch callback not configured")
	}
	return s.fetch(ctx, target)
}
