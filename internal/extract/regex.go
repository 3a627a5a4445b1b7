package extract

import (
	"context"
	"regexp"
	"strings"
)

// Entity kinds produced by the RegexExtractor.
const (
	KindPassword       = "password"
	KindCredential     = "credential"
	KindEmail          = "email"
	KindURL            = "url"
	KindIPAddress      = "ip_address"
	KindBitcoinAddress = "bitcoin_address"
	KindOnionAddress   = "onion_address"
)

// entityPatterns maps entity kinds to their detection patterns.
// Checked in a fixed order so the first match per kind wins.
var entityPatterns = []struct {
	kind    string
	pattern *regexp.Regexp
}{
	{KindPassword, regexp.MustCompile(`(?i)(?:password|passwd|pwd)["'\s]*[:=]["'\s]*(\S+)`)},
	{KindCredential, regexp.MustCompile(`(?i)(?:credential|login|user(?:name)?)["'\s]*[:=]["'\s]*(\S+)`)},
	{KindEmail, regexp.MustCompile(`([A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,})`)},
	{KindOnionAddress, regexp.MustCompile(`([a-z2-7]{56}\.onion)`)},
	{KindURL, regexp.MustCompile(`(https?://[^\s"'<>]+)`)},
	{KindIPAddress, regexp.MustCompile(`\b((?:\d{1,3}\.){3}\d{1,3})\b`)},
	{KindBitcoinAddress, regexp.MustCompile(`\b([13][a-km-zA-HJ-NP-Z1-9]{25,34}|bc1[a-z0-9]{39,59})\b`)},
}

// maxEntityValueLength bounds a single extracted value.
const maxEntityValueLength = 100

// RegexExtractor is the default Extractor: deterministic pattern-based
// extraction of the leak-relevant entity kinds. It never fails on
// well-formed input, needs no external service, and gives the risk
// scoring policy the "password"/"credential"/"email" kinds it keys on.
//
// Design decision: A full NLP backend adds deployment weight (model
// files, latency, nondeterminism) that the baseline scoring policy
// cannot exploit - it only checks keyword presence in the rendered
// entity map. The regex extractor covers exactly the kinds the policy
// reads, and richer backends can be swapped in behind the interface.
type RegexExtractor struct{}

// NewRegexExtractor creates the default extractor.
func NewRegexExtractor() *RegexExtractor {
	return &RegexExtractor{}
}

// Extract implements Extractor.
// It returns at most one entity per kind (the first match), with values
// bounded to keep downstream renderings small.
func (e *RegexExtractor) Extract(ctx context.Context, text string) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, &ExtractError{Err: err}
	}

	entities := make(map[string]string)
	for _, ep := range entityPatterns {
		match := ep.pattern.FindStringSubmatch(text)
		if match == nil {
			continue
		}

		value := match[len(match)-1]
		value = strings.Trim(value, `"',;`)
		if value == "" {
			continue
		}
		if len(value) > maxEntityValueLength {
			value = value[:maxEntityValueLength]
		}
		entities[ep.kind] = value
	}

	return entities, nil
}

// Ensure RegexExtractor implements Extractor.
var _ Extractor = (*RegexExtractor)(nil)
