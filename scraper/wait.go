package scraper

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
)

// condition is one readiness signal the page can satisfy.
type condition struct {
	name string
	wait func(ctx context.Context) error
}

// waitFirst races the conditions and returns the name of the first one that
// resolves. If none resolves within its own timeout, the fallback runs; if
// that also fails, ("", false) is returned and the caller proceeds anyway —
// extraction is always attempted, never blocked indefinitely.
func waitFirst(ctx context.Context, conds []condition, fallback condition) (string, bool) {
	if len(conds) > 0 {
		raceCtx, cancel := context.WithCancel(ctx)
		winner := make(chan string, len(conds))

		for _, c := range conds {
			go func(c condition) {
				if err := c.wait(raceCtx); err == nil {
					winner <- c.name
				} else {
					winner <- ""
				}
			}(c)
		}

		for range conds {
			name := <-winner
			if name != "" {
				cancel()
				return name, true
			}
		}
		cancel()
	}

	if fallback.wait != nil {
		if err := fallback.wait(ctx); err == nil {
			return fallback.name, true
		}
	}
	return "", false
}

// contentConditions builds the selector race for the content-wait: common
// article containers plus any source-specific selector hints, each with its
// own bounded wait.
func (s *Scraper) contentConditions(page *rod.Page, hints []string) []condition {
	selectors := append([]string{"article", "main", "[role=main]", ".post", "#content"}, hints...)
	conds := make([]condition, 0, len(selectors))
	for _, sel := range selectors {
		conds = append(conds, condition{
			name: sel,
			wait: func(ctx context.Context) error {
				_, err := page.Context(ctx).Timeout(s.cfg.ContentWait).Element(sel)
				return err
			},
		})
	}
	return conds
}

// waitContent races the content containers, falling back to DOM stability
// as a network-quiescence proxy, and proceeds regardless on total miss.
func (s *Scraper) waitContent(ctx context.Context, page *rod.Page, hints []string) {
	fallback := condition{
		name: "dom-stable",
		wait: func(ctx context.Context) error {
			return page.Context(ctx).Timeout(s.cfg.ContentWait).WaitDOMStable(300*time.Millisecond, 0.1)
		},
	}

	name, ok := waitFirst(ctx, s.contentConditions(page, hints), fallback)
	if ok {
		slog.Debug("content wait satisfied", "condition", name)
	} else {
		slog.Debug("no content condition satisfied, extracting current DOM")
	}
}
