package models

// AcquisitionTarget is one addressable resource to acquire, plus optional
// hints supplied by source configuration. Targets are immutable once
// submitted; strategies receive them by value.
type AcquisitionTarget struct {
	// URL is the target address.
	URL string `json:"url" binding:"required"`

	// Source is an optional identity for the source (e.g. "deepmind-blog").
	// Used for logging and diagnostics only.
	Source string `json:"source,omitempty"`

	// FeedURL is the feed endpoint when the source is known to publish one.
	// When empty, the feed strategy probes conventional feed paths.
	FeedURL string `json:"feed_url,omitempty"`

	// Selectors are CSS selectors the source's content is expected to live
	// under. Strategies treat them as additional wait/extract hints.
	Selectors []string `json:"selectors,omitempty"`
}
