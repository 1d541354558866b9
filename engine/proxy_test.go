package engine

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bencium/agi-detector/pool"
)

func TestProxySelectorRotates(t *testing.T) {
	selector := proxySelector(pool.New([]string{
		"http://proxy-a:8080",
		"http://proxy-b:8080",
	}))
	if selector == nil {
		t.Fatal("expected a selector for a populated pool")
	}

	req := httptest.NewRequest(http.MethodGet, "https://example.com/post", nil)

	first, err := selector(req)
	if err != nil || first == nil {
		t.Fatalf("first selection: %v, %v", first, err)
	}
	second, err := selector(req)
	if err != nil || second == nil {
		t.Fatalf("second selection: %v, %v", second, err)
	}
	if first.Host == second.Host {
		t.Errorf("consecutive requests used the same proxy %q", first.Host)
	}

	third, _ := selector(req)
	if third.Host != first.Host {
		t.Errorf("rotation should wrap around: got %q, want %q", third.Host, first.Host)
	}
}

func TestProxySelectorEmptyPool(t *testing.T) {
	if proxySelector(pool.New(nil)) != nil {
		t.Error("empty pool should mean direct connections (nil selector)")
	}
	if proxySelector(nil) != nil {
		t.Error("nil pool should mean direct connections (nil selector)")
	}
}

func TestProxySelectorSkipsUnusableEntry(t *testing.T) {
	selector := proxySelector(pool.New([]string{"socks5://unsupported:1080"}))
	req := httptest.NewRequest(http.MethodGet, "https://example.com", nil)

	u, err := selector(req)
	if err != nil {
		t.Fatal(err)
	}
	if u != nil {
		t.Errorf("unusable entry should fall back to direct, got %v", u)
	}
}

func TestFetchStrategyRotatesProxies(t *testing.T) {
	s := NewFetchStrategy(time.Second, pool.New(nil), pool.New([]string{
		"http://proxy-a:8080",
		"http://proxy-b:8080",
	}))
	transport, ok := s.client.Transport.(*http.Transport)
	if !ok {
		t.Fatal("fetch strategy should use an http.Transport")
	}
	if transport.Proxy == nil {
		t.Fatal("transport has no proxy function despite a configured pool")
	}

	req := httptest.NewRequest(http.MethodGet, "https://example.com", nil)
	first, _ := transport.Proxy(req)
	second, _ := transport.Proxy(req)
	if first == nil || second == nil || first.Host == second.Host {
		t.Errorf("consecutive fetches should exit via different proxies: %v, %v", first, second)
	}
}
