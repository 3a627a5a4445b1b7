package config

import "errors"

// Configuration validation errors.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages.
var (
	// ErrConfigNotFound is returned when the configuration file does not exist.
	ErrConfigNotFound = errors.New("configuration file not found")

	// ErrNoSources is returned when the configuration names no valid
	// sources after normalization. With nothing to fetch, a cycle would
	// be a no-op.
	ErrNoSources = errors.New("no valid sources configured")

	// ErrNoIndicators is returned when the configuration names no valid
	// indicators after normalization. Scanning without indicators could
	// never produce a finding.
	ErrNoIndicators = errors.New("no valid indicators configured")

	// ErrMissingSMTPServer is returned when an alert destination is set
	// but no SMTP server address is configured to deliver through.
	ErrMissingSMTPServer = errors.New("alert destination set but smtp_addr is empty")
)
