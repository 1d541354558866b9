// Package urlutil canonicalizes target URLs so equivalent targets collide
// on the same cache key.
package urlutil

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// Canonicalize returns a stable form of rawURL: lowercased scheme and host,
// default ports dropped, query parameters sorted by key, fragment removed,
// and the trailing slash stripped from non-root paths.
func Canonicalize(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", fmt.Errorf("urlutil: parse %q: %w", rawURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("urlutil: not an absolute URL: %q", rawURL)
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	// Drop default ports so example.com and example.com:443 collide.
	if (u.Scheme == "https" && strings.HasSuffix(u.Host, ":443")) ||
		(u.Scheme == "http" && strings.HasSuffix(u.Host, ":80")) {
		u.Host = u.Host[:strings.LastIndexByte(u.Host, ':')]
	}

	if u.Path != "/" {
		u.Path = strings.TrimSuffix(u.Path, "/")
	}

	u.RawQuery = sortQuery(u.Query())

	return u.String(), nil
}

// sortQuery re-encodes query values with keys (and repeated values) in
// sorted order. url.Values.Encode sorts keys already; values within a key
// are sorted here so ?a=2&a=1 and ?a=1&a=2 collide too.
func sortQuery(values url.Values) string {
	for _, vs := range values {
		sort.Strings(vs)
	}
	return values.Encode()
}

// Base returns the scheme://host root of rawURL, used to probe conventional
// paths (feeds, JSON APIs) relative to a target.
func Base(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("urlutil: parse %q: %w", rawURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("urlutil: not an absolute URL: %q", rawURL)
	}
	return u.Scheme + "://" + u.Host, nil
}
