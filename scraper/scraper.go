// Package scraper is the browser session subsystem: it owns the shared
// browser process, hands out isolated fingerprint-randomized sessions, and
// survives anti-bot challenges during navigation.
package scraper

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"

	"github.com/bencium/agi-detector/config"
	"github.com/bencium/agi-detector/models"
	"github.com/bencium/agi-detector/pool"
)

// Scraper manages the shared browser process lifecycle. The process is
// started lazily on first need and torn down exactly once via Close; it is
// never restarted implicitly mid-run. Sessions are cheap, disposable
// children of it and safe to run in parallel.
type Scraper struct {
	cfg     config.BrowserConfig
	agents  *pool.Pool
	proxies *pool.Pool

	mu       sync.Mutex
	launcher *launcher.Launcher
	browser  *rod.Browser
	started  bool
	closed   bool
}

// New creates a Scraper. No browser process is started until the first
// session is requested.
func New(cfg config.BrowserConfig, agents, proxies *pool.Pool) *Scraper {
	return &Scraper{
		cfg:     cfg,
		agents:  agents,
		proxies: proxies,
	}
}

// Started reports whether the browser process has been launched.
func (s *Scraper) Started() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started
}

// browserHandle returns the shared browser, launching it on first call.
// The double-init guard lives here: concurrent callers serialize on the
// mutex and only the first one launches.
func (s *Scraper) browserHandle() (*rod.Browser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, models.NewAcquireError(models.ErrCodeBrowserCrash, "scraper already shut down", nil)
	}
	if s.started {
		return s.browser, nil
	}

	l := launcher.New().
		Headless(s.cfg.Headless).
		NoSandbox(s.cfg.NoSandbox)

	if s.cfg.BrowserBin != "" {
		l = l.Bin(s.cfg.BrowserBin)
	}
	if proxy := s.proxies.Next(); proxy != "" {
		l = l.Proxy(proxy)
	}

	// ── Stealth flags ────────────────────────────────────────────────
	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("disable-features"), "AudioServiceOutOfProcess,TranslateUI")
	l.Set(flags.Flag("disable-ipc-flooding-protection"))
	l.Set(flags.Flag("disable-popup-blocking"))
	l.Set(flags.Flag("disable-prompt-on-repost"))
	l.Set(flags.Flag("disable-renderer-backgrounding"))
	l.Set(flags.Flag("disable-background-timer-throttling"))
	l.Set(flags.Flag("disable-backgrounding-occluded-windows"))
	l.Set(flags.Flag("disable-component-update"))
	l.Set(flags.Flag("disable-default-apps"))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-extensions"))
	l.Set(flags.Flag("no-first-run"))

	controlURL, err := l.Launch()
	if err != nil {
		return nil, models.NewAcquireError(
			models.ErrCodeBrowserCrash,
			"failed to launch browser",
			err,
		)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, models.NewAcquireError(
			models.ErrCodeBrowserCrash,
			"failed to connect to browser",
			err,
		)
	}

	s.launcher = l
	s.browser = browser
	s.started = true
	slog.Info("browser launched", "controlURL", controlURL, "headless", s.cfg.Headless)
	return s.browser, nil
}

// Close kills the browser process if one was started. It is idempotent and
// a no-op when no browser was ever launched. Call on graceful shutdown to
// prevent zombie Chrome processes.
func (s *Scraper) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true

	if !s.started {
		return
	}
	slog.Info("scraper shutting down: closing browser")
	if err := s.browser.Close(); err != nil {
		slog.Warn("browser close failed", "error", err)
	}
	if s.launcher != nil {
		s.launcher.Cleanup()
	}
	slog.Info("scraper shutdown complete")
}

// userAgent returns the next pooled user agent, falling back to a fixed
// Chrome string for an empty pool.
func (s *Scraper) userAgent() string {
	if ua := s.agents.Next(); ua != "" {
		return ua
	}
	return fmt.Sprintf("Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/%d.0.0.0 Safari/537.36", 131)
}
