// Package nse provides a resilient, rate-limited session client for the
// NSE corporate filings endpoints. The upstream host rejects cookieless and
// bursty clients, so all requests flow through one authenticated session and
// one shared request-interval gate.
package nse

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"syscall"
)

// APIError represents a non-2xx response from the NSE API.
type APIError struct {
	StatusCode int
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("NSE API error: status %d (endpoint: %s)", e.StatusCode, e.Endpoint)
}

// RequestError is the terminal error returned when the retry ceiling is
// exhausted. It wraps the last failure observed.
type RequestError struct {
	Endpoint string
	Attempts int
	Err      error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("NSE request failed after %d attempts (endpoint: %s): %v", e.Attempts, e.Endpoint, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// errorClass buckets a failed attempt for retry handling.
type errorClass int

const (
	errClassConnection errorClass = iota // reset/timeout/refused: reinit session, short wait
	errClassAuth                         // 401/403: reinit session, short wait
	errClassServer                       // 5xx: longer exponential backoff
	errClassOther                        // everything else: jittered exponential backoff
)

// classifyFailure buckets a transport error or HTTP status for retry handling.
func classifyFailure(err error, statusCode int) errorClass {
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return errClassConnection
		}
		if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.ECONNREFUSED) ||
			errors.Is(err, syscall.EPIPE) || errors.Is(err, os.ErrDeadlineExceeded) {
			return errClassConnection
		}
		msg := err.Error()
		if strings.Contains(msg, "connection reset") || strings.Contains(msg, "EOF") ||
			strings.Contains(msg, "connection refused") {
			return errClassConnection
		}
		return errClassOther
	}

	switch {
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return errClassAuth
	case statusCode >= 500:
		return errClassServer
	default:
		return errClassOther
	}
}
