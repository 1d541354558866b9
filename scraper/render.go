package scraper

import (
	"context"
	"errors"

	"github.com/bencium/agi-detector/content"
	"github.com/bencium/agi-detector/models"
)

// RenderResult is the rendered page a session produced.
type RenderResult struct {
	HTML  string
	Title string
}

// Render acquires the fully rendered HTML of a target through an isolated
// browser session.
//
// Lifecycle:
//
//  1. Hard deadline on the whole attempt
//  2. Open session (lazy browser launch, fingerprint, stealth)
//  3. DEFER session close — runs on every exit path, strictly before the
//     result reaches the caller
//  4. Mount resource blocking (before navigation, or it misses the load)
//  5. Navigate with the navigation retry loop
//  6. Challenge wait (non-fatal on timeout)
//  7. Content wait (race containers, fall back, proceed regardless)
//  8. Extract HTML + title
func (s *Scraper) Render(ctx context.Context, target models.AcquisitionTarget) (*RenderResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.PageTimeout)
	defer cancel()

	sess, err := s.newSession(target.URL)
	if err != nil {
		return nil, err
	}
	defer sess.Close()

	router := blockResources(sess.page, s.cfg.BlockedResourceTypes)
	if router != nil {
		defer func() { _ = router.Stop() }()
	}

	if err := s.navigate(ctx, sess.page, target.URL); err != nil {
		return nil, err
	}

	s.waitChallenge(ctx, sess.page)
	s.waitContent(ctx, sess.page, target.Selectors)

	page := sess.page.Context(ctx)
	html, err := page.HTML()
	if err != nil {
		return nil, categorizeError(err, "failed to extract page HTML")
	}

	return &RenderResult{
		HTML:  html,
		Title: pageTitle(sess.page),
	}, nil
}

// AcquirePage is the browser strategy entry point wired into the engine:
// render, then normalize into a payload. A rendered page with no extractable
// article is a miss (nil payload), not an error.
func (s *Scraper) AcquirePage(ctx context.Context, target models.AcquisitionTarget) (*models.Payload, error) {
	rendered, err := s.Render(ctx, target)
	if err != nil {
		return nil, err
	}
	return content.Extract(rendered.HTML, target.URL, rendered.Title), nil
}

// categorizeError wraps raw errors into typed AcquireErrors so callers can
// classify them.
func categorizeError(err error, msg string) *models.AcquireError {
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return models.NewAcquireError(models.ErrCodeTimeout, msg, err)
	default:
		return models.NewAcquireError(models.ErrCodeBrowserCrash, msg, err)
	}
}
