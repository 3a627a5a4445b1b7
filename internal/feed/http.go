package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nao1215/darkhound/internal/model"
)

// Client bounds.
const (
	// defaultLookupTimeout bounds one feed query.
	defaultLookupTimeout = 15 * time.Second

	// maxResponseSize caps the feed response body.
	maxResponseSize = 1 << 20 // 1 MiB
)

// record is the wire shape of one feed entry.
type record struct {
	Indicator string            `json:"indicator"`
	Context   string            `json:"context"`
	Entities  map[string]string `json:"entities"`
	RiskScore int               `json:"risk_score"`
}

// HTTPClient queries a JSON threat-feed endpoint.
// The endpoint receives the indicator set as a repeated "indicator"
// query parameter and returns a JSON array of records.
type HTTPClient struct {
	// endpoint is the feed URL. Empty disables lookups.
	endpoint string

	// apiKey is sent as the X-API-Key header when set.
	apiKey string

	// client is the HTTP client used for queries. Feed endpoints are
	// clearnet services run by intel vendors; they are not fetched
	// through the anonymizing proxy.
	client *http.Client

	// logger for structured logging.
	logger *slog.Logger
}

// HTTPOption configures an HTTPClient.
type HTTPOption func(*HTTPClient)

// WithHTTPClient overrides the HTTP client (used in tests).
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(c *HTTPClient) {
		c.client = client
	}
}

// WithAPIKey sets the X-API-Key header value.
func WithAPIKey(key string) HTTPOption {
	return func(c *HTTPClient) {
		c.apiKey = key
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) HTTPOption {
	return func(c *HTTPClient) {
		c.logger = logger
	}
}

// NewHTTPClient creates a feed client for the given endpoint.
func NewHTTPClient(endpoint string, opts ...HTTPOption) *HTTPClient {
	c := &HTTPClient{
		endpoint: endpoint,
		client:   &http.Client{Timeout: defaultLookupTimeout},
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Lookup implements Lookup against the configured endpoint.
// Records that cannot be turned into a valid Finding (empty indicator)
// are skipped; everything else goes through the validating factory so
// caps and clamping hold for feed data exactly as for scanner data.
func (c *HTTPClient) Lookup(ctx context.Context, indicators []string) ([]model.Finding, error) {
	if c.endpoint == "" {
		return nil, nil
	}

	u, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid feed endpoint: %w", err)
	}

	q := u.Query()
	for _, indicator := range indicators {
		q.Add("indicator", indicator)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build feed request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("feed lookup failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed lookup returned HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read feed response: %w", err)
	}

	var records []record
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, fmt.Errorf("failed to parse feed response: %w", err)
	}

	findings := make([]model.Finding, 0, len(records))
	for _, r := range records {
		indicator := strings.TrimSpace(r.Indicator)
		if indicator == "" {
			c.logger.Debug("skipping feed record without indicator")
			continue
		}

		finding, err := model.NewFinding(indicator, r.Context, r.Entities, r.RiskScore)
		if err != nil {
			c.logger.Debug("skipping invalid feed record", "error", err)
			continue
		}
		findings = append(findings, finding)
	}

	return findings, nil
}

// Ensure HTTPClient implements Lookup.
var _ Lookup = (*HTTPClient)(nil)
