package tmdb

import (
	"fmt"
	"net/http"
)

// ErrorKind classifies a failed call to the movie database API.
type ErrorKind int

const (
	// KindConnection - transport-level failure before a response arrived
	KindConnection ErrorKind = iota
	// KindTimeout - the request exceeded the client timeout
	KindTimeout
	// KindAuth - the API rejected the configured credential (401/403)
	KindAuth
	// KindRateLimited - the API returned 429
	KindRateLimited
	// KindHTTPStatus - any other non-2xx response, Status carries the code
	KindHTTPStatus
	// KindUnparseable - the response body was not valid JSON
	KindUnparseable
)

// Error is the only error type the gateway returns for failed API
// calls; raw transport errors never escape it.
type Error struct {
	Kind   ErrorKind
	Status int
	Err    error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindConnection:
		return fmt.Sprintf("tmdb: connection failure: %v", e.Err)
	case KindTimeout:
		return fmt.Sprintf("tmdb: request timed out: %v", e.Err)
	case KindAuth:
		return fmt.Sprintf("tmdb: credential rejected (status %d)", e.Status)
	case KindRateLimited:
		return "tmdb: rate limited (status 429)"
	case KindHTTPStatus:
		return fmt.Sprintf("tmdb: unexpected status code %d", e.Status)
	case KindUnparseable:
		return fmt.Sprintf("tmdb: malformed response: %v", e.Err)
	}
	return fmt.Sprintf("tmdb: unknown error: %v", e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// UserMessage maps a gateway error to the inline message shown to the
// user. Non-gateway errors get a generic message.
func UserMessage(err error) string {
	e, ok := err.(*Error)
	if !ok {
		return "Failed to fetch movies. Please try again."
	}

	switch e.Kind {
	case KindTimeout:
		return "The movie database took too long to respond. Please try again."
	case KindConnection:
		return "Could not reach the movie database. Please check your connection and try again."
	case KindAuth:
		return "The movie database rejected the configured API credential."
	case KindRateLimited:
		return "Too many requests to the movie database. Please wait a moment and try again."
	case KindUnparseable:
		return "The movie database returned an unreadable response. Please try again."
	default:
		return fmt.Sprintf("The movie database returned an error (status %d). Please try again.", e.Status)
	}
}

func statusKind(status int) ErrorKind {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return KindAuth
	case status == http.StatusTooManyRequests:
		return KindRateLimited
	default:
		return KindHTTPStatus
	}
}
