package engine

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/bencium/agi-detector/models"
	"github.com/bencium/agi-detector/pool"
	"github.com/bencium/agi-detector/urlutil"
)

// feedPaths are conventional feed locations probed when a source has no
// declared feed endpoint and the target itself doesn't look like one.
var feedPaths = []string{"/feed", "/rss.xml", "/atom.xml", "/index.xml", "/feed.xml", "/rss"}

// FeedStrategy acquires content via feed-protocol fetch (RSS/Atom/JSON
// Feed) using gofeed. It is the cheapest strategy and runs first.
type FeedStrategy struct {
	client *http.Client
	agents *pool.Pool
}

// NewFeedStrategy creates a FeedStrategy with the given request timeout and
// user-agent pool.
func NewFeedStrategy(timeout time.Duration, agents *pool.Pool) *FeedStrategy {
	return &FeedStrategy{
		client: &http.Client{Timeout: timeout},
		agents: agents,
	}
}

func (s *FeedStrategy) Kind() models.StrategyKind { return models.StrategyFeed }

// Acquire tries each candidate feed URL in order and returns the first
// parseable, non-empty feed as normalized items.
func (s *FeedStrategy) Acquire(ctx context.Context, target models.AcquisitionTarget) (*models.Payload, error) {
	candidates, err := s.candidates(target)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for _, feedURL := range candidates {
		parser := gofeed.NewParser()
		parser.Client = s.client
		if ua := s.agents.Next(); ua != "" {
			parser.UserAgent = ua
		}

		feed, err := parser.ParseURLWithContext(feedURL, ctx)
		if err != nil {
			lastErr = fmt.Errorf("feed: parse %s: %w", feedURL, err)
			continue
		}
		if len(feed.Items) == 0 {
			continue
		}

		slog.Debug("feed parsed", "url", feedURL, "items", len(feed.Items))
		return &models.Payload{Items: normalizeFeedItems(feed)}, nil
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, nil
}

// candidates returns the feed URLs to try: the declared endpoint when the
// source publishes one, the target itself when it looks like a feed, else
// the conventional paths off the target's base.
func (s *FeedStrategy) candidates(target models.AcquisitionTarget) ([]string, error) {
	if target.FeedURL != "" {
		return []string{target.FeedURL}, nil
	}
	if looksLikeFeed(target.URL) {
		return []string{target.URL}, nil
	}

	base, err := urlutil.Base(target.URL)
	if err != nil {
		return nil, fmt.Errorf("feed: %w", err)
	}
	urls := make([]string, 0, len(feedPaths))
	for _, p := range feedPaths {
		urls = append(urls, base+p)
	}
	return urls, nil
}

func looksLikeFeed(rawURL string) bool {
	lower := strings.ToLower(rawURL)
	for _, marker := range []string{"/feed", "/rss", "/atom", ".xml"} {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// normalizeFeedItems maps gofeed items to the engine's item shape,
// preferring full content over the summary.
func normalizeFeedItems(feed *gofeed.Feed) []models.Item {
	items := make([]models.Item, 0, len(feed.Items))
	for _, it := range feed.Items {
		body := it.Content
		if body == "" {
			body = it.Description
		}
		var publishedAt time.Time
		if it.PublishedParsed != nil {
			publishedAt = *it.PublishedParsed
		}
		items = append(items, models.Item{
			Title:       strings.TrimSpace(it.Title),
			URL:         it.Link,
			Body:        body,
			PublishedAt: publishedAt,
		})
	}
	return items
}
