// Package log provides secure logging functionality with automatic redaction
// of sensitive information, built on top of the standard slog package.
//
// This package extends slog to provide:
//   - Automatic masking of sensitive attribute values (passwords, tokens, keys)
//   - In-text redaction of leak material (emails, credential assignments,
//     card and SSN shapes) inside log messages and string attributes
//   - Configurable log levels with verbose mode support
//   - Compatibility with tornago's slog-based logging
//
// # Security Features
//
// DarkHound's log lines routinely carry excerpts of leak content: source
// snippets, matched indicators, extracted entities. The SecureHandler
// guarantees structurally that every record passes through the redaction
// filter before reaching the sink, so no component can accidentally log
// raw leak material. Attribute keys that name secrets (password, token,
// api_key, context, ...) are masked entirely; free text is scrubbed
// pattern by pattern.
//
// Even in verbose mode, sensitive values are masked to prevent accidental
// exposure of secrets in logs that may be shared or stored.
//
// # Usage
//
//	// Create a secure logger
//	logger := log.NewSecureLogger(os.Stderr, true) // verbose=true
//
//	// Use as a standard slog.Logger
//	logger.Warn("indicator matched",
//	    "context", "password: hunter2",  // Masked: key names leak content
//	    "source", "http://example.onion",
//	)
//
// The logger is injected into each component rather than installed as a
// process-wide default; "every log line is sanitized" holds because the
// filter is composed into the sink, not because callers remember to call it.
package log
