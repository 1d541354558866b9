package scraper

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/go-rod/rod"
)

// challengeMarkers identify anti-bot interstitials by page title or body
// fragments. Cloudflare variants first, then generic phrasings.
var challengeMarkers = []string{
	"just a moment",
	"checking your browser",
	"attention required",
	"verifying you are human",
	"verify you are human",
	"ddos protection by",
	"cf-browser-verification",
	"cf-challenge",
	"challenge-platform",
}

// challengePollInterval is how often the interstitial is re-checked while
// waiting for it to clear.
const challengePollInterval = 500 * time.Millisecond

// isChallengePage checks title and body text for interstitial markers.
func isChallengePage(title, body string) bool {
	haystack := strings.ToLower(title + " " + body)
	for _, m := range challengeMarkers {
		if strings.Contains(haystack, m) {
			return true
		}
	}
	return false
}

// waitChallenge waits (bounded by ChallengeTimeout) for an interstitial to
// clear, then pauses SettleDelay before extraction. Timeout is non-fatal:
// some challenges resolve without an observable signal change, so the
// caller proceeds with extraction regardless.
func (s *Scraper) waitChallenge(ctx context.Context, page *rod.Page) {
	title := pageTitle(page)
	body := pageBodySnippet(page)
	if !isChallengePage(title, body) {
		return
	}

	slog.Info("anti-bot challenge detected, waiting for it to clear", "title", title)
	deadline := time.Now().Add(s.cfg.ChallengeTimeout)

	for time.Now().Before(deadline) {
		select {
		case <-time.After(challengePollInterval):
		case <-ctx.Done():
			return
		}

		if !isChallengePage(pageTitle(page), pageBodySnippet(page)) {
			slog.Info("challenge cleared, settling", "settle", s.cfg.SettleDelay)
			select {
			case <-time.After(s.cfg.SettleDelay):
			case <-ctx.Done():
			}
			return
		}
	}

	slog.Warn("challenge wait timed out, proceeding with extraction anyway")
}

// pageBodySnippet reads the first few KB of visible body text, swallowing
// errors. The snippet is only used for marker matching.
func pageBodySnippet(page *rod.Page) string {
	res, err := page.Eval(`() => (document.body ? document.body.innerText : "").slice(0, 4096)`)
	if err != nil {
		return ""
	}
	return res.Value.Str()
}
