package scraper

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/go-rod/rod"

	"github.com/bencium/agi-detector/models"
)

// notFoundMarkers identify dead targets by title. These are immediately
// fatal: retrying a 404 never helps, unlike a flaky network error.
var notFoundMarkers = []string{
	"not found",
	"page doesn't exist",
	"page does not exist",
}

// reNotFoundStatus matches a standalone 404 in a title without firing on
// longer numbers ("40404") or identifiers that merely contain the digits.
var reNotFoundStatus = regexp.MustCompile(`(?:^|[^0-9])404(?:[^0-9]|$)`)

// navigate drives the page to targetURL with its own retry loop. This is
// distinct from the generic retry executor because a "page not found" title
// must abort immediately instead of being retried. On failure it waits
// 2^attempt seconds before the next try; on exhaustion the last error
// surfaces.
func (s *Scraper) navigate(ctx context.Context, page *rod.Page, targetURL string) error {
	var lastErr error
	for attempt := 0; attempt <= s.cfg.NavRetries; attempt++ {
		navCtx, cancel := context.WithTimeout(ctx, s.cfg.NavigationTimeout)
		err := page.Context(navCtx).Navigate(targetURL)
		cancel()

		if err == nil {
			if title := pageTitle(page); isNotFoundTitle(title) {
				return models.NewAcquireError(
					models.ErrCodeNavigation,
					"page not found: "+title,
					nil,
				)
			}
			return nil
		}
		lastErr = err

		if attempt == s.cfg.NavRetries {
			break
		}
		backoff := time.Duration(1<<uint(attempt)) * time.Second
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return models.NewAcquireError(models.ErrCodeNavigation, "navigation failed after retries", lastErr)
}

// pageTitle reads document.title, swallowing errors (best-effort).
func pageTitle(page *rod.Page) string {
	res, err := page.Eval(`() => document.title`)
	if err != nil {
		return ""
	}
	return res.Value.Str()
}

func isNotFoundTitle(title string) bool {
	lower := strings.ToLower(title)
	for _, m := range notFoundMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return reNotFoundStatus.MatchString(lower)
}
