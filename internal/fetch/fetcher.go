package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/nao1215/darkhound/internal/validate"
)

// Fetch bounds.
const (
	// MaxBodySize is the response body ceiling. Content beyond it is
	// truncated, not rejected; a partial page can still contain matches.
	MaxBodySize = 1 << 20 // 1 MiB

	// DefaultTimeout replaces out-of-range per-fetch timeouts.
	DefaultTimeout = 30 * time.Second

	// MaxTimeout is the upper bound for a per-fetch timeout.
	MaxTimeout = 120 * time.Second

	// defaultUserAgent identifies the monitor in HTTP requests.
	// A generic browser string would be dishonest; sources that block
	// scanners will block on behavior anyway.
	defaultUserAgent = "DarkHound/1.0 (+https://github.com/nao1215/darkhound)"
)

// Result is the outcome of a successful fetch.
type Result struct {
	// Content is the sanitized, length-capped body.
	Content string

	// Title is the page title when one could be extracted (best effort,
	// empty for non-HTML content).
	Title string

	// StatusCode is the HTTP status (always 200 on success).
	StatusCode int

	// Truncated is true when the body exceeded MaxBodySize.
	Truncated bool
}

// Fetcher retrieves single resources through the anonymizing proxy.
// It is safe for concurrent use; each Fetch is independent.
type Fetcher struct {
	// client is the proxied HTTP client all requests go through.
	client *http.Client

	// proxyAddress is used to classify dial failures as proxy-unreachable.
	proxyAddress string

	// timeout is the per-fetch deadline, already clamped at construction.
	timeout time.Duration

	// userAgent is sent with every request.
	userAgent string

	// logger for structured logging.
	logger *slog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the per-fetch timeout.
// Values outside (0, MaxTimeout] are replaced by DefaultTimeout with a
// warning; a misconfigured timeout degrades the fetch, it never breaks it.
func WithTimeout(timeout time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = timeout
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// WithProxyAddress records the proxy address for error classification.
func WithProxyAddress(addr string) Option {
	return func(f *Fetcher) {
		f.proxyAddress = addr
	}
}

// New creates a Fetcher over the given HTTP client.
// The client must already be configured for the proxy (tor.Client's
// NewHTTPClient); the Fetcher never builds transports itself, which keeps
// tests free to inject a plain client.
func New(client *http.Client, opts ...Option) *Fetcher {
	f := &Fetcher{
		client:    client,
		timeout:   DefaultTimeout,
		userAgent: defaultUserAgent,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		opt(f)
	}

	if f.timeout <= 0 || f.timeout > MaxTimeout {
		f.logger.Warn("fetch timeout out of range, using default",
			"configured", f.timeout,
			"default", DefaultTimeout,
		)
		f.timeout = DefaultTimeout
	}

	return f
}

// Fetch retrieves one source and returns its sanitized content.
//
// The source is re-validated defensively even though the config loader
// already dropped invalid entries; a source that fails the URL predicate
// fails closed with validate.ErrInvalidInput and no I/O is attempted.
// All transport failures come back as *FetchError.
func (f *Fetcher) Fetch(ctx context.Context, source string) (*Result, error) {
	if err := validate.SourceURL(source); err != nil {
		return nil, fmt.Errorf("refusing to fetch: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, fmt.Errorf("refusing to fetch: %w: %v", validate.ErrInvalidInput, err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, f.classifyTransportError(source, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain a little so the connection can be reused, then report.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096)) //nolint:errcheck // Best effort drain
		return nil, &FetchError{Reason: ReasonHTTPStatus, StatusCode: resp.StatusCode, Source: source}
	}

	// Read one byte past the ceiling to detect truncation.
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize+1))
	if err != nil {
		if isTimeout(err) {
			return nil, &FetchError{Reason: ReasonTimeout, Source: source, Err: err}
		}
		return nil, &FetchError{Reason: ReasonDecode, Source: source, Err: err}
	}

	truncated := false
	if len(body) > MaxBodySize {
		body = body[:MaxBodySize]
		truncated = true
		f.logger.Debug("response body truncated", "source", source, "limit", MaxBodySize)
	}

	raw := string(body)

	return &Result{
		Content:    validate.SanitizeHTML(raw),
		Title:      extractTitle(raw),
		StatusCode: resp.StatusCode,
		Truncated:  truncated,
	}, nil
}

// Timeout returns the effective per-fetch timeout.
func (f *Fetcher) Timeout() time.Duration {
	return f.timeout
}

// classifyTransportError maps a transport error to a FetchError reason.
func (f *Fetcher) classifyTransportError(source string, err error) *FetchError {
	if isTimeout(err) {
		return &FetchError{Reason: ReasonTimeout, Source: source, Err: err}
	}

	// A dial failure that names the proxy address, or a SOCKS-level
	// failure, means we never got past the proxy.
	msg := err.Error()
	if (f.proxyAddress != "" && strings.Contains(msg, f.proxyAddress)) ||
		strings.Contains(msg, "socks") {
		return &FetchError{Reason: ReasonProxyUnreachable, Source: source, Err: err}
	}

	return &FetchError{Reason: ReasonConnection, Source: source, Err: err}
}

// isTimeout reports whether err is a deadline or timeout error.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
