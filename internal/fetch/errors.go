package fetch

import "fmt"

// Reason classifies a fetch failure.
type Reason int

const (
	// ReasonTimeout means the request exceeded its deadline.
	ReasonTimeout Reason = iota

	// ReasonHTTPStatus means the source answered with a non-200 status.
	ReasonHTTPStatus

	// ReasonProxyUnreachable means the SOCKS5 proxy could not be reached.
	ReasonProxyUnreachable

	// ReasonConnection means the connection to the source failed after
	// the proxy was reached (reset, refused, broken circuit).
	ReasonConnection

	// ReasonDecode means the response body could not be read or decoded.
	ReasonDecode
)

// String returns the reason name used in logs and cycle reports.
func (r Reason) String() string {
	switch r {
	case ReasonTimeout:
		return "timeout"
	case ReasonHTTPStatus:
		return "http status"
	case ReasonProxyUnreachable:
		return "proxy unreachable"
	case ReasonConnection:
		return "connection error"
	case ReasonDecode:
		return "decode error"
	default:
		return "unknown"
	}
}

// FetchError is the typed failure the Fetcher returns.
// It is always recoverable: the orchestrator logs it, counts it, and
// proceeds to the next source.
type FetchError struct {
	// Reason classifies the failure.
	Reason Reason

	// StatusCode is set when Reason is ReasonHTTPStatus.
	StatusCode int

	// Source is the source URL the fetch was for.
	Source string

	// Err is the underlying transport error, when there is one.
	Err error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	if e.Reason == ReasonHTTPStatus {
		return fmt.Sprintf("fetch %s: HTTP %d", e.Source, e.StatusCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %s: %v", e.Source, e.Reason, e.Err)
	}
	return fmt.Sprintf("fetch %s: %s", e.Source, e.Reason)
}

// Unwrap returns the underlying error for errors.Is/As chains.
func (e *FetchError) Unwrap() error {
	return e.Err
}
