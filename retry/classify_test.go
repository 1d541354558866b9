package retry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"syscall"
	"testing"
)

func TestRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"connection reset", errors.New("read tcp: connection reset by peer"), true},
		{"timeout message", errors.New("navigation timeout exceeded"), true},
		{"network message", errors.New("network unreachable during fetch"), true},
		{"aborted message", errors.New("request aborted mid-flight"), true},
		{"dns failure", &net.DNSError{Err: "no such host", Name: "example.com"}, true},
		{"econnreset wrapped", fmt.Errorf("dial: %w", syscall.ECONNRESET), true},
		{"econnrefused wrapped", fmt.Errorf("dial: %w", syscall.ECONNREFUSED), true},
		{"deadline exceeded", context.DeadlineExceeded, true},
		{"unexpected eof", errors.New("unexpected EOF"), true},
		{"http 503", errors.New("fetch: HTTP 503 (content-type: text/plain) for https://x"), true},
		{"http 403", errors.New("fetch: HTTP 403 (content-type: text/html) for https://x"), false},
		{"forbidden", errors.New("server said: Forbidden"), false},
		{"access denied", errors.New("api: access denied (403) at https://x/api"), false},
		{"unauthorized", errors.New("401 Unauthorized"), false},
		{"invalid target", errors.New("urlutil: not an absolute URL: \"x\""), false},
		{"page not found", errors.New("NAVIGATION_FAILED: page not found: 404"), false},
		{"terminal wins over retryable words", errors.New("403 forbidden after network timeout"), false},
		{"unknown error", errors.New("something odd happened"), false},
		{"status digits inside url are not terminal", errors.New("fetch: get https://example.com/403-report: connection reset by peer"), true},
		{"paren status", errors.New("api: access denied (401) at https://x/api"), false},
		{"bare eof typed", io.EOF, true},
		{"wrapped unexpected eof typed", fmt.Errorf("read body: %w", io.ErrUnexpectedEOF), true},
		{"eof letters inside a word", errors.New("parse geoffrey block failed"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Retryable(tt.err); got != tt.want {
				t.Errorf("Retryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
