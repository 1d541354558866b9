package scraper

import (
	"log/slog"
	"math/rand"
	"net/url"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/ysmood/gson"

	"github.com/bencium/agi-detector/models"
)

// Viewport jitter keeps sessions from sharing an exact fingerprint while
// staying within common laptop dimensions.
const (
	baseViewportWidth  = 1366
	baseViewportHeight = 768
	viewportJitterW    = 128
	viewportJitterH    = 96

	sessionTimezone = "America/New_York"
	sessionLocale   = "en-US"
)

// session is one isolated, disposable automation context: its own cookies
// (incognito browser context), randomized viewport, rotated user agent, and
// stealth patches. It is exclusively owned by a single acquisition attempt
// and must be closed on every exit path before the attempt's result is
// handed upward.
type session struct {
	page      *rod.Page
	incognito *rod.Browser
	root      *rod.Browser
}

// newSession opens an isolated session on the shared browser. Stealth
// patches are installed before any navigation so they take effect for the
// first page load.
func (s *Scraper) newSession(targetURL string) (*session, error) {
	browser, err := s.browserHandle()
	if err != nil {
		return nil, err
	}

	incognito, err := browser.Incognito()
	if err != nil {
		return nil, models.NewAcquireError(models.ErrCodeBrowserCrash, "failed to create incognito context", err)
	}

	page, err := incognito.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, models.NewAcquireError(models.ErrCodeBrowserCrash, "failed to open page", err)
	}

	sess := &session{page: page, incognito: incognito, root: browser}

	if err := sess.fingerprint(s.userAgent(), targetURL); err != nil {
		sess.Close()
		return nil, err
	}
	return sess, nil
}

// fingerprint applies the per-session disguise: stealth JS, viewport
// jitter, UA rotation, fixed locale/timezone, and a plausible Referer.
func (sess *session) fingerprint(userAgent, targetURL string) error {
	// Stealth patches must land before navigation: they mask
	// navigator.webdriver, fake the plugin list, and normalize other
	// automation tells.
	if _, err := sess.page.EvalOnNewDocument(stealth.JS); err != nil {
		slog.Warn("stealth injection failed, proceeding without stealth", "error", err)
	}

	width := baseViewportWidth + rand.Intn(viewportJitterW) - viewportJitterW/2
	height := baseViewportHeight + rand.Intn(viewportJitterH) - viewportJitterH/2
	if err := sess.page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             width,
		Height:            height,
		DeviceScaleFactor: 1,
	}); err != nil {
		return models.NewAcquireError(models.ErrCodeBrowserCrash, "failed to set viewport", err)
	}

	if err := sess.page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
		UserAgent:      userAgent,
		AcceptLanguage: sessionLocale,
	}); err != nil {
		return models.NewAcquireError(models.ErrCodeBrowserCrash, "failed to set user agent", err)
	}

	_ = proto.EmulationSetTimezoneOverride{TimezoneID: sessionTimezone}.Call(sess.page)

	// A Google search Referer makes the first navigation look organic.
	if u, err := url.Parse(targetURL); err == nil {
		referer := "https://www.google.com/search?q=" + url.QueryEscape(u.Hostname())
		_ = proto.NetworkSetExtraHTTPHeaders{
			Headers: proto.NetworkHeaders{"Referer": gson.New(referer)},
		}.Call(sess.page)
	}

	return nil
}

// Close releases the page and disposes the incognito context. Errors are
// swallowed: cleanup must not mask the attempt's own outcome.
func (sess *session) Close() {
	if sess.page != nil {
		_ = sess.page.Close()
	}
	if sess.incognito != nil && sess.incognito.BrowserContextID != "" {
		_ = proto.TargetDisposeBrowserContext{
			BrowserContextID: sess.incognito.BrowserContextID,
		}.Call(sess.root)
	}
}
