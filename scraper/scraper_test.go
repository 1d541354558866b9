package scraper

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bencium/agi-detector/config"
	"github.com/bencium/agi-detector/pool"
)

func TestIsChallengePage(t *testing.T) {
	tests := []struct {
		name  string
		title string
		body  string
		want  bool
	}{
		{"cloudflare title", "Just a moment...", "", true},
		{"checking browser", "example.com", "Checking your browser before accessing", true},
		{"attention required", "Attention Required! | Cloudflare", "", true},
		{"turnstile body", "example.com", "Verifying you are human. This may take a few seconds.", true},
		{"challenge platform marker", "", "/cdn-cgi/challenge-platform/h/b", true},
		{"case insensitive", "JUST A MOMENT", "", true},
		{"normal article", "Frontier eval results", "We evaluated the latest models.", false},
		{"empty page", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isChallengePage(tt.title, tt.body); got != tt.want {
				t.Errorf("isChallengePage(%q, %q) = %v, want %v", tt.title, tt.body, got, tt.want)
			}
		})
	}
}

func TestIsNotFoundTitle(t *testing.T) {
	tests := []struct {
		title string
		want  bool
	}{
		{"404 Not Found", true},
		{"404", true},
		{"Error 404 - Example", true},
		{"Page Not Found | Example", true},
		{"This page doesn't exist", true},
		{"Oops, that page does not exist", true},
		{"Frontier eval results", false},
		{"Room 4041 booking", false},
		{"40404 results for your query", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := isNotFoundTitle(tt.title); got != tt.want {
			t.Errorf("isNotFoundTitle(%q) = %v, want %v", tt.title, got, tt.want)
		}
	}
}

func TestWaitFirstReturnsFirstWinner(t *testing.T) {
	conds := []condition{
		{name: "slow", wait: func(ctx context.Context) error {
			select {
			case <-time.After(time.Second):
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		}},
		{name: "fast", wait: func(ctx context.Context) error {
			return nil
		}},
	}

	start := time.Now()
	name, ok := waitFirst(context.Background(), conds, condition{})
	if !ok || name != "fast" {
		t.Errorf("waitFirst = (%q, %v), want (fast, true)", name, ok)
	}
	if time.Since(start) > 500*time.Millisecond {
		t.Error("winner should resolve without waiting for the slow condition")
	}
}

func TestWaitFirstFallsBack(t *testing.T) {
	failing := condition{name: "selector", wait: func(ctx context.Context) error {
		return errors.New("element not found")
	}}
	fallback := condition{name: "dom-stable", wait: func(ctx context.Context) error {
		return nil
	}}

	name, ok := waitFirst(context.Background(), []condition{failing, failing}, fallback)
	if !ok || name != "dom-stable" {
		t.Errorf("waitFirst = (%q, %v), want (dom-stable, true)", name, ok)
	}
}

func TestWaitFirstTotalMiss(t *testing.T) {
	fail := func(ctx context.Context) error { return errors.New("nope") }

	name, ok := waitFirst(context.Background(),
		[]condition{{name: "a", wait: fail}},
		condition{name: "b", wait: fail})
	if ok || name != "" {
		t.Errorf("waitFirst = (%q, %v), want (\"\", false)", name, ok)
	}
}

func TestWaitFirstNoConditions(t *testing.T) {
	name, ok := waitFirst(context.Background(), nil, condition{})
	if ok || name != "" {
		t.Errorf("waitFirst with nothing to wait on = (%q, %v), want (\"\", false)", name, ok)
	}
}

func TestCloseBeforeStartIsNoOp(t *testing.T) {
	s := New(testBrowserConfig(), pool.New(nil), pool.New(nil))
	if s.Started() {
		t.Fatal("scraper should not report started before first use")
	}
	// Close without a launched browser must not panic, and must stay
	// idempotent.
	s.Close()
	s.Close()
	if s.Started() {
		t.Error("Close must not flip the started flag")
	}
}

func TestUserAgentFallback(t *testing.T) {
	s := New(testBrowserConfig(), pool.New(nil), pool.New(nil))
	if ua := s.userAgent(); ua == "" {
		t.Error("empty pool should fall back to a fixed user agent")
	}

	s = New(testBrowserConfig(), pool.New([]string{"agent-a", "agent-b"}), pool.New(nil))
	if ua := s.userAgent(); ua != "agent-a" {
		t.Errorf("pooled user agent = %q, want agent-a", ua)
	}
}

func testBrowserConfig() config.BrowserConfig {
	return config.BrowserConfig{
		Headless:          true,
		PageTimeout:       time.Minute,
		NavigationTimeout: 15 * time.Second,
		NavRetries:        2,
		ChallengeTimeout:  20 * time.Second,
		SettleDelay:       2 * time.Second,
		ContentWait:       4 * time.Second,
	}
}
