package engine

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/bencium/agi-detector/pool"
)

// proxySelector returns an http.Transport proxy function that rotates
// through the pool on every request, so all configured proxies share the
// outbound load. A nil return means direct connections: the pool is empty,
// or the next entry is unusable (logged and skipped for that request).
func proxySelector(proxies *pool.Pool) func(*http.Request) (*url.URL, error) {
	if proxies == nil || proxies.Size() == 0 {
		return nil
	}
	return func(*http.Request) (*url.URL, error) {
		raw := proxies.Next()
		if raw == "" {
			return nil, nil
		}
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			slog.Warn("skipping unusable proxy entry", "proxy", raw)
			return nil, nil
		}
		return u, nil
	}
}
