// Package engine implements the multi-strategy acquisition engine: an
// ordered cascade of acquisition strategies per target, a shared rate
// limiter and retry executor around each strategy, and a bounded-concurrency
// batch processor.
package engine

import (
	"context"

	"github.com/bencium/agi-detector/models"
)

// Strategy is one technique for acquiring data from a target. Strategies
// are tried by the cascade strictly in priority order; a strategy that
// returns an error or an empty payload is a miss and the next one runs.
type Strategy interface {
	// Kind returns the strategy identifier recorded on results.
	Kind() models.StrategyKind

	// Acquire fetches and normalizes content for the target. Returning
	// (nil, nil) or an empty payload means "no data here", which is not an
	// error condition.
	Acquire(ctx context.Context, target models.AcquisitionTarget) (*models.Payload, error)
}
