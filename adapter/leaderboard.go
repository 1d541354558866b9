// Package adapter layers source-specific strategies on the engine
// primitives. The leaderboard adapter scrapes a benchmark leaderboard page
// through a browser session and falls back to a documented last-known value
// rather than returning nothing.
package adapter

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"

	"github.com/bencium/agi-detector/models"
	"github.com/bencium/agi-detector/scraper"
)

// Provenance values every consumer must check to tell fresh data from the
// hardcoded fallback.
const (
	SourceScraped  = "scraped"
	SourceFallback = "fallback"
)

// Last-known leaderboard state, updated manually when the page changes.
// Returning this instead of an empty result is a deliberate policy for this
// rarely-changing source; the Source tag keeps the substitution honest.
const (
	fallbackBenchmark = "ARC-AGI-2"
	fallbackTopEntry  = "o3-preview (tuned)"
	fallbackTopScore  = 75.7
)

// Precompiled selectors for the in-page heuristics.
var (
	selTableRows = cascadia.MustCompile("table tbody tr")
	selAnyRows   = cascadia.MustCompile("table tr")
	selChartData = cascadia.MustCompile("[data-score], [data-value]")
)

// Renderer is the browser-session dependency; *scraper.Scraper satisfies it.
type Renderer interface {
	Render(ctx context.Context, target models.AcquisitionTarget) (*scraper.RenderResult, error)
}

// LeaderboardStrategy acquires benchmark standings from a JS-rendered
// leaderboard page. It tries three DOM heuristics in order: structured
// table rows, chart elements carrying data attributes, then gives up on
// in-page parsing and returns the fallback value.
type LeaderboardStrategy struct {
	renderer Renderer
}

// NewLeaderboardStrategy creates the adapter around a renderer.
func NewLeaderboardStrategy(r Renderer) *LeaderboardStrategy {
	return &LeaderboardStrategy{renderer: r}
}

func (l *LeaderboardStrategy) Kind() models.StrategyKind { return models.StrategyBrowser }

// Acquire never returns an empty payload: a render failure or a page none
// of the heuristics understand yields the fallback value tagged
// Source: "fallback".
func (l *LeaderboardStrategy) Acquire(ctx context.Context, target models.AcquisitionTarget) (*models.Payload, error) {
	rendered, err := l.renderer.Render(ctx, target)
	if err != nil {
		slog.Warn("leaderboard: render failed, using fallback value",
			"url", target.URL, "error", err)
		return fallbackPayload(), nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rendered.HTML))
	if err != nil {
		slog.Warn("leaderboard: unparsable HTML, using fallback value",
			"url", target.URL, "error", err)
		return fallbackPayload(), nil
	}

	if entries := parseTableRows(doc); len(entries) > 0 {
		return scrapedPayload(entries), nil
	}
	if entries := parseChartElements(doc); len(entries) > 0 {
		return scrapedPayload(entries), nil
	}

	slog.Warn("leaderboard: no heuristic matched, using fallback value", "url", target.URL)
	return fallbackPayload(), nil
}

// Entry is one leaderboard row.
type Entry struct {
	Rank  int     `json:"rank"`
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// parseTableRows handles the structured-table shape: rows whose cells hold
// a name and a numeric score.
func parseTableRows(doc *goquery.Document) []Entry {
	rows := doc.FindMatcher(selTableRows)
	if rows.Length() == 0 {
		rows = doc.FindMatcher(selAnyRows)
	}

	var entries []Entry
	rows.Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 2 {
			return
		}
		var name string
		var score float64
		var found bool
		cells.Each(func(_ int, cell *goquery.Selection) {
			text := strings.TrimSpace(cell.Text())
			if v, err := parseScore(text); err == nil {
				// Bare integers are ranks or years, never scores; a score
				// cell carries a decimal point, percent sign, or unit.
				if !isRankText(text) {
					score = v
					found = true
				}
				return
			}
			if name == "" && text != "" {
				name = text
			}
		})
		if found && name != "" {
			entries = append(entries, Entry{Rank: len(entries) + 1, Name: name, Score: score})
		}
	})
	return entries
}

// parseChartElements handles chart/graphic markup carrying the score in
// data attributes.
func parseChartElements(doc *goquery.Document) []Entry {
	var entries []Entry
	doc.FindMatcher(selChartData).Each(func(_ int, el *goquery.Selection) {
		raw, ok := el.Attr("data-score")
		if !ok {
			raw, ok = el.Attr("data-value")
		}
		if !ok {
			return
		}
		score, err := parseScore(raw)
		if err != nil {
			return
		}
		name := firstNonEmpty(
			el.AttrOr("data-label", ""),
			el.AttrOr("data-name", ""),
			strings.TrimSpace(el.Text()),
		)
		if name == "" {
			return
		}
		entries = append(entries, Entry{Rank: len(entries) + 1, Name: name, Score: score})
	})
	return entries
}

func scrapedPayload(entries []Entry) *models.Payload {
	return &models.Payload{
		Source: SourceScraped,
		Fields: map[string]any{
			"benchmark": fallbackBenchmark,
			"topEntry":  entries[0].Name,
			"topScore":  entries[0].Score,
			"entries":   entries,
		},
	}
}

func fallbackPayload() *models.Payload {
	return &models.Payload{
		Source: SourceFallback,
		Fields: map[string]any{
			"benchmark": fallbackBenchmark,
			"topEntry":  fallbackTopEntry,
			"topScore":  fallbackTopScore,
		},
	}
}

// parseScore parses "75.7", "75.7%", or "75.7 pts" style values.
func parseScore(text string) (float64, error) {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.TrimSuffix(cleaned, "%")
	if idx := strings.IndexByte(cleaned, ' '); idx > 0 {
		cleaned = cleaned[:idx]
	}
	return strconv.ParseFloat(strings.TrimSpace(cleaned), 64)
}

// isRankText filters bare integer cells ("1", "#2", "2026") so ranks and
// years are not mistaken for entry names or scores.
func isRankText(text string) bool {
	t := strings.TrimPrefix(strings.TrimSpace(text), "#")
	_, err := strconv.Atoi(t)
	return err == nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
