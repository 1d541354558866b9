package models

import "time"

// StrategyKind identifies the acquisition technique that produced a payload.
type StrategyKind string

const (
	StrategyFeed    StrategyKind = "feed"
	StrategyAPI     StrategyKind = "api"
	StrategyFetch   StrategyKind = "fetch"
	StrategyBrowser StrategyKind = "browser"
)

// Item is one normalized piece of content extracted from a target.
type Item struct {
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Body        string    `json:"body,omitempty"`
	PublishedAt time.Time `json:"published_at,omitempty"`
}

// Payload is the structured data a strategy returns. Downstream consumers
// (persistence, scoring) treat it as opaque.
type Payload struct {
	// Items holds normalized content entries.
	Items []Item `json:"items,omitempty"`

	// Fields holds adapter-specific structured values (e.g. leaderboard
	// scores) that don't fit the item shape.
	Fields map[string]any `json:"fields,omitempty"`

	// Source records provenance for adapter payloads: "scraped" for fresh
	// data, "fallback" for a documented last-known value.
	Source string `json:"provenance,omitempty"`
}

// Empty reports whether the payload carries no usable data. The cascade
// treats an empty payload as a strategy miss.
func (p *Payload) Empty() bool {
	return p == nil || (len(p.Items) == 0 && len(p.Fields) == 0)
}

// AcquisitionResult is the per-target outcome of one cascade run. It is
// produced exactly once and never mutated afterwards.
type AcquisitionResult struct {
	Target       AcquisitionTarget `json:"target"`
	Succeeded    bool              `json:"succeeded"`
	Payload      *Payload          `json:"payload,omitempty"`
	StrategyUsed StrategyKind      `json:"strategy_used,omitempty"`
	Error        *ErrorDetail      `json:"error,omitempty"`
}
