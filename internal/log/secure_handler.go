package log

import (
	"context"
	"io"
	"log/slog"
	"regexp"
	"strings"
)

// sensitiveKeys contains attribute keys whose values are always masked
// entirely. These keys either name secrets or carry raw leak content
// (the finding context and entity renderings must never reach a sink).
var sensitiveKeys = map[string]bool{
	// Authentication
	"password":      true,
	"passwd":        true,
	"secret":        true,
	"token":         true,
	"api_key":       true,
	"apikey":        true,
	"api-key":       true,
	"access_token":  true,
	"refresh_token": true,
	"private_key":   true,
	"privatekey":    true,

	// HTTP headers
	"authorization":       true,
	"cookie":              true,
	"set-cookie":          true,
	"x-api-key":           true,
	"proxy-authorization": true,

	// Credentials
	"credential":  true,
	"credentials": true,
	"auth":        true,

	// Leak material carried by findings
	"context":  true,
	"excerpt":  true,
	"entities": true,
}

// redaction pairs a detection pattern with its replacement marker.
// Unlike whole-value masking, these rewrite only the sensitive span so
// the rest of the text stays useful for debugging.
type redaction struct {
	pattern     *regexp.Regexp
	replacement string
}

// sensitivePatterns are applied to log messages and string attribute
// values. Order matters: the password-assignment pattern must run before
// the long-token pattern so the assignment marker survives.
var sensitivePatterns = []redaction{
	// Password-like assignments ("password: hunter2", "pwd=s3cret")
	{regexp.MustCompile(`(?i)(password|passwd|pwd|pass)["'\s]*[:=]["'\s]*\S+`), "$1:" + MaskValue},

	// Email addresses
	{regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`), "[EMAIL_REDACTED]"},

	// Bearer and basic auth values
	{regexp.MustCompile(`(?i)\b(bearer|basic)\s+[A-Za-z0-9._+/=-]+`), "$1 " + MaskValue},

	// Long alphanumeric tokens (API keys, session tokens, hashes)
	{regexp.MustCompile(`\b[A-Za-z0-9]{32,}\b`), "[TOKEN_REDACTED]"},

	// Credit card number shapes
	{regexp.MustCompile(`\b\d{4}[-\s]?\d{4}[-\s]?\d{4}[-\s]?\d{4}\b`), "[CC_REDACTED]"},

	// US social security number shapes
	{regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`), "[SSN_REDACTED]"},

	// Private key markers
	{regexp.MustCompile(`(?i)-----BEGIN[^-]*(PRIVATE|SECRET)[^-]*KEY-----`), "[KEY_REDACTED]"},
}

// MaskValue is the string used to replace sensitive values.
const MaskValue = "***REDACTED***"

// SecureHandler wraps an slog.Handler to redact sensitive information.
// It intercepts log records and sanitizes the message and attribute
// values before passing them to the underlying handler.
//
// Design decision: We use a handler wrapper rather than a custom logger
// because:
//  1. It integrates seamlessly with standard slog APIs
//  2. It works with any underlying handler (text, JSON, etc.)
//  3. It's compatible with tornago and other slog-based libraries
type SecureHandler struct {
	// handler is the underlying slog handler that receives redacted records.
	handler slog.Handler
}

// NewSecureHandler creates a new SecureHandler wrapping the given handler.
// All log messages and attributes will be redacted before being passed to
// the underlying handler. If handler is nil, the returned SecureHandler
// uses slog.Default().Handler().
func NewSecureHandler(handler slog.Handler) *SecureHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &SecureHandler{handler: handler}
}

// Enabled reports whether the handler handles records at the given level.
// It delegates to the underlying handler.
func (h *SecureHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle redacts the record's message and attributes and passes it to the
// underlying handler.
func (h *SecureHandler) Handle(ctx context.Context, r slog.Record) error {
	redacted := slog.NewRecord(r.Time, r.Level, Redact(r.Message), r.PC)

	r.Attrs(func(a slog.Attr) bool {
		redacted.AddAttrs(h.redactAttr(a))
		return true
	})

	return h.handler.Handle(ctx, redacted)
}

// WithAttrs returns a new handler with the given attributes added.
// Attributes are redacted before being added.
func (h *SecureHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	redactedAttrs := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		redactedAttrs[i] = h.redactAttr(a)
	}
	return &SecureHandler{handler: h.handler.WithAttrs(redactedAttrs)}
}

// WithGroup returns a new handler with the given group name.
func (h *SecureHandler) WithGroup(name string) slog.Handler {
	return &SecureHandler{handler: h.handler.WithGroup(name)}
}

// redactAttr redacts a single attribute, recursively handling groups.
func (h *SecureHandler) redactAttr(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		redactedAttrs := make([]slog.Attr, len(attrs))
		for i, groupAttr := range attrs {
			redactedAttrs[i] = h.redactAttr(groupAttr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(redactedAttrs...)}
	}

	// Keys that name secrets or leak material are masked entirely
	keyLower := strings.ToLower(a.Key)
	if sensitiveKeys[keyLower] || containsSensitiveKeyword(keyLower) {
		return slog.String(a.Key, MaskValue)
	}

	// Other string values are scrubbed pattern by pattern
	if a.Value.Kind() == slog.KindString {
		if redacted := Redact(a.Value.String()); redacted != a.Value.String() {
			return slog.String(a.Key, redacted)
		}
	}

	return a
}

// containsSensitiveKeyword checks if the key contains sensitive keywords.
// Note: We intentionally exclude the bare "key" keyword as it causes false
// positives (e.g., "primary_key", "keyboard"). Specific key-related names
// like "api_key" and "private_key" are covered by the sensitiveKeys map.
func containsSensitiveKeyword(key string) bool {
	sensitiveKeywords := []string{
		"password", "passwd", "secret", "token", "auth", "credential", "private",
	}

	for _, keyword := range sensitiveKeywords {
		if strings.Contains(key, keyword) {
			return true
		}
	}
	return false
}

// Redact rewrites every sensitive span in s with its redaction marker.
// It is a pure filter: the same input always yields the same output, and
// input without sensitive content is returned unchanged. The alert
// renderer reuses it so alert bodies get the same guarantees as log lines.
func Redact(s string) string {
	for _, r := range sensitivePatterns {
		s = r.pattern.ReplaceAllString(s, r.replacement)
	}
	return s
}

// NewSecureLogger creates a new slog.Logger with secure handling.
// The logger redacts sensitive information in all log output.
//
// Parameters:
//   - w: The io.Writer to write log output to (typically os.Stderr)
//   - verbose: If true, sets log level to Debug; otherwise Warn
//
// Returns a *slog.Logger to be injected into components that accept
// *slog.Logger (including tornago).
func NewSecureLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	textHandler := slog.NewTextHandler(w, opts)
	secureHandler := NewSecureHandler(textHandler)

	return slog.New(secureHandler)
}

// NewSecureJSONLogger creates a new slog.Logger with secure handling
// that outputs JSON format. Useful for structured log aggregation.
//
// Parameters:
//   - w: The io.Writer to write log output to
//   - verbose: If true, sets log level to Debug; otherwise Warn
//
// Returns a *slog.Logger configured for JSON output with redaction.
func NewSecureJSONLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	jsonHandler := slog.NewJSONHandler(w, opts)
	secureHandler := NewSecureHandler(jsonHandler)

	return slog.New(secureHandler)
}
