package retry

import (
	"context"
	"errors"
	"io"
	"net"
	"regexp"
	"strings"
	"syscall"
)

// terminalMarkers are message fragments that identify access denials and
// invalid targets. These must never be retried in place: the cascade should
// fall through to the next strategy instead of hammering a blocked path.
var terminalMarkers = []string{
	"forbidden",
	"access denied",
	"unauthorized",
	"invalid url",
	"not an absolute url",
	"unsupported protocol scheme",
	"page not found",
}

// reDeniedStatus matches 401/403 status codes anchored by surrounding
// punctuation, so the digits inside a URL or title (e.g. "/403-report")
// don't trip the terminal path.
var reDeniedStatus = regexp.MustCompile(`(?:^|[\s(:=])(?:401|403)(?:[\s):,.]|$)`)

// retryableMarkers are message fragments that indicate transient transport
// or automation faults worth another attempt.
var retryableMarkers = []string{
	"timeout",
	"timed out",
	"deadline exceeded",
	"network",
	"navigation",
	"aborted",
	"connection reset",
	"connection refused",
	"temporary",
	"unexpected eof",
	"broken pipe",
	"no such host",
	"http 5",
}

// Retryable classifies err. Two independent signals mark an error
// retryable: known transient network fault types, and substring matches
// against the error message. Explicit access/authorization failures are
// terminal regardless of other signals.
func Retryable(err error) bool {
	if err == nil {
		return false
	}

	msg := strings.ToLower(err.Error())
	for _, m := range terminalMarkers {
		if strings.Contains(msg, m) {
			return false
		}
	}
	if reDeniedStatus.MatchString(msg) {
		return false
	}

	// Typed transient network faults.
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	switch {
	case errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, syscall.ECONNREFUSED),
		errors.Is(err, syscall.EPIPE),
		errors.Is(err, syscall.ENETUNREACH),
		errors.Is(err, syscall.ENETRESET),
		errors.Is(err, io.EOF),
		errors.Is(err, io.ErrUnexpectedEOF),
		errors.Is(err, context.DeadlineExceeded):
		return true
	}

	for _, m := range retryableMarkers {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}
