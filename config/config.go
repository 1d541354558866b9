package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Browser   BrowserConfig
	Strategy  StrategyConfig
	Retry     RetryConfig
	RateLimit RateLimitConfig
	Cache     CacheConfig
	Log       LogConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"
}

// BrowserConfig controls the shared browser process and per-attempt
// sessions.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: false

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string

	// PageTimeout is the hard deadline for one browser acquisition attempt.
	PageTimeout time.Duration // default: 60s

	// NavigationTimeout bounds a single navigation.
	NavigationTimeout time.Duration // default: 15s

	// NavRetries is the maximum number of navigation retries after the
	// first attempt.
	NavRetries int // default: 2

	// ChallengeTimeout bounds the wait for an anti-bot interstitial to
	// clear. Expiry is non-fatal.
	ChallengeTimeout time.Duration // default: 20s

	// SettleDelay is the pause after a challenge clears before extraction.
	SettleDelay time.Duration // default: 2s

	// ContentWait bounds each individual content-container wait.
	ContentWait time.Duration // default: 4s

	// BlockedResourceTypes lists resource types blocked in sessions.
	// default: ["Image", "Stylesheet", "Font", "Media"]
	BlockedResourceTypes []string
}

// StrategyConfig controls the non-browser strategies and the shared pools.
type StrategyConfig struct {
	// HTTPTimeout is the deadline for feed, API-probe and plain fetches.
	HTTPTimeout time.Duration // default: 15s

	// UserAgents rotate round-robin across requests and sessions.
	UserAgents []string

	// Proxies rotate round-robin; empty means direct connections.
	Proxies []string
}

// RetryConfig controls the generic retry executor.
type RetryConfig struct {
	// MaxAttempts is the total number of invocations per strategy.
	MaxAttempts int // default: 3

	// BaseDelay is the unit backoff delay.
	BaseDelay time.Duration // default: 500ms

	// Backoff is "linear" or "exponential".
	Backoff string // default: "exponential"
}

// RateLimitConfig controls the shared outbound token bucket.
type RateLimitConfig struct {
	// Requests is the bucket capacity and refill amount.
	Requests int // default: 5

	// PerInterval is the refill interval.
	PerInterval time.Duration // default: 1s
}

// CacheConfig controls the acquisition result cache.
type CacheConfig struct {
	// TTL is the entry lifetime.
	TTL time.Duration // default: 10m

	// MaxEntries is the maximum number of cached results.
	MaxEntries int // default: 1000
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// defaultUserAgents is used when no pool is configured. Real Chrome strings
// on common platforms.
var defaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/130.0.0.0 Safari/537.36",
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host: envOr("AGID_HOST", "0.0.0.0"),
			Port: envIntOr("AGID_PORT", 8080),
			Mode: envOr("AGID_MODE", "release"),
		},
		Browser: BrowserConfig{
			Headless:          envBoolOr("AGID_HEADLESS", true),
			NoSandbox:         envBoolOr("AGID_NO_SANDBOX", false),
			BrowserBin:        os.Getenv("AGID_BROWSER_BIN"),
			PageTimeout:       envDurationOr("AGID_PAGE_TIMEOUT", 60*time.Second),
			NavigationTimeout: envDurationOr("AGID_NAV_TIMEOUT", 15*time.Second),
			NavRetries:        envIntOr("AGID_NAV_RETRIES", 2),
			ChallengeTimeout:  envDurationOr("AGID_CHALLENGE_TIMEOUT", 20*time.Second),
			SettleDelay:       envDurationOr("AGID_SETTLE_DELAY", 2*time.Second),
			ContentWait:       envDurationOr("AGID_CONTENT_WAIT", 4*time.Second),
			BlockedResourceTypes: envSliceOr("AGID_BLOCKED_RESOURCES", []string{
				"Image", "Stylesheet", "Font", "Media",
			}),
		},
		Strategy: StrategyConfig{
			HTTPTimeout: envDurationOr("AGID_HTTP_TIMEOUT", 15*time.Second),
			UserAgents:  envSliceOr("AGID_USER_AGENTS", defaultUserAgents),
			Proxies:     envSliceOr("AGID_PROXIES", nil),
		},
		Retry: RetryConfig{
			MaxAttempts: envIntOr("AGID_MAX_RETRIES", 3),
			BaseDelay:   envDurationOr("AGID_RETRY_BASE_DELAY", 500*time.Millisecond),
			Backoff:     envOr("AGID_RETRY_BACKOFF", "exponential"),
		},
		RateLimit: RateLimitConfig{
			Requests:    envIntOr("AGID_RATE_REQUESTS", 5),
			PerInterval: envDurationOr("AGID_RATE_INTERVAL", time.Second),
		},
		Cache: CacheConfig{
			TTL:        envDurationOr("AGID_CACHE_TTL", 10*time.Minute),
			MaxEntries: envIntOr("AGID_CACHE_MAX_ENTRIES", 1000),
		},
		Log: LogConfig{
			Level:  envOr("AGID_LOG_LEVEL", "info"),
			Format: envOr("AGID_LOG_FORMAT", "json"),
		},
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
