package alert

import (
	"errors"
	"fmt"
)

// ErrNoDestination is returned by Dispatch when no destination address
// is configured. No connection is attempted.
var ErrNoDestination = errors.New("no alert destination configured")

// Reason classifies why a dispatch failed.
type Reason int

const (
	// ReasonConnection means the SMTP server could not be reached.
	ReasonConnection Reason = iota

	// ReasonAuth means the server rejected the credentials.
	ReasonAuth

	// ReasonDisconnected means the server dropped the connection
	// mid-session.
	ReasonDisconnected

	// ReasonProtocol means the server answered with something that is
	// not valid SMTP.
	ReasonProtocol
)

// String returns a human-readable reason name.
func (r Reason) String() string {
	switch r {
	case ReasonConnection:
		return "connection failed"
	case ReasonAuth:
		return "authentication rejected"
	case ReasonDisconnected:
		return "server disconnected"
	case ReasonProtocol:
		return "protocol error"
	default:
		return "unknown"
	}
}

// DispatchError is the error type returned by failed dispatches.
type DispatchError struct {
	// Reason classifies the failure.
	Reason Reason

	// Server is the SMTP server address.
	Server string

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *DispatchError) Error() string {
	return fmt.Sprintf("alert dispatch to %s: %s: %v", e.Server, e.Reason, e.Err)
}

// Unwrap returns the underlying error.
func (e *DispatchError) Unwrap() error {
	return e.Err
}
