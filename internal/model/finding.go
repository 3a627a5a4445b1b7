package model

import (
	"errors"
	"sort"
	"strings"
	"time"
)

// Field-length ceilings enforced at Finding construction time and again
// at the persistence boundary. Content beyond a ceiling is truncated,
// never rejected.
const (
	// MaxIndicatorLength is the maximum length of an indicator token.
	// Indicators longer than this are dropped at configuration load.
	MaxIndicatorLength = 100

	// MaxContextLength is the maximum length of a finding's context excerpt
	// as stored. The scanner produces shorter excerpts (MaxExcerptLength);
	// this larger ceiling is defense in depth at the persistence boundary.
	MaxContextLength = 1000

	// MaxExcerptLength is the maximum length of the context excerpt the
	// scanner builds around a single match.
	MaxExcerptLength = 200

	// MaxEntitiesLength is the maximum length of the rendered entity map.
	MaxEntitiesLength = 500

	// MinRiskScore and MaxRiskScore bound the risk score range.
	// Scores outside the range are clamped, never rejected.
	MinRiskScore = 1
	MaxRiskScore = 10
)

// ErrEmptyIndicator is returned by NewFinding when the indicator is empty.
// A finding without an indicator cannot be attributed to any configured
// leak signal and is meaningless to store or alert on.
var ErrEmptyIndicator = errors.New("finding indicator must not be empty")

// ErrEmptyContext reports a finding whose context excerpt is empty.
// The store rejects such findings before any I/O.
var ErrEmptyContext = errors.New("finding context must not be empty")

// ErrMissingEntities reports a finding with no extracted entities.
// The store rejects such findings before any I/O.
var ErrMissingEntities = errors.New("finding entities must not be empty")

// Finding is one detected occurrence of an indicator in fetched content.
// It carries the matched token, a length-capped excerpt of the surrounding
// content, the entities extracted from that excerpt, and a risk score.
//
// A Finding is immutable once constructed. Construction goes through
// NewFinding, which enforces the length caps and the risk score range,
// so an invalid Finding is impossible to represent. Consumers (the store
// and the dispatcher) are independent readers and never mutate it.
type Finding struct {
	// Indicator is the configured token that matched, truncated to
	// MaxIndicatorLength.
	Indicator string

	// Context is the excerpt of source content surrounding the match,
	// truncated to MaxContextLength.
	Context string

	// Entities maps entity kind (e.g. "email", "password") to the
	// extracted entity text. Values are truncated so that the rendered
	// form fits MaxEntitiesLength.
	Entities map[string]string

	// RiskScore is the computed risk in [MinRiskScore, MaxRiskScore].
	RiskScore int
}

// NewFinding constructs a validated Finding.
// The indicator and context are truncated to their ceilings, the risk
// score is clamped to [MinRiskScore, MaxRiskScore], and the entity map
// is copied so later mutation of the caller's map cannot reach the
// Finding. An empty indicator is the only construction error.
func NewFinding(indicator, context string, entities map[string]string, riskScore int) (Finding, error) {
	if indicator == "" {
		return Finding{}, ErrEmptyIndicator
	}

	copied := make(map[string]string, len(entities))
	for k, v := range entities {
		copied[k] = v
	}

	return Finding{
		Indicator: Truncate(indicator, MaxIndicatorLength),
		Context:   Truncate(context, MaxContextLength),
		Entities:  copied,
		RiskScore: ClampRiskScore(riskScore),
	}, nil
}

// RenderedEntities returns the deterministic string rendering of the
// entity map: "kind: value; kind: value" with kinds sorted, truncated
// to MaxEntitiesLength. This rendering is what gets persisted, what the
// risk scoring policy evaluates, and what length caps apply to.
func (f Finding) RenderedEntities() string {
	return RenderEntities(f.Entities)
}

// RenderEntities renders an entity map deterministically.
// Kinds are sorted so the same map always renders identically, and the
// result is truncated to MaxEntitiesLength.
func RenderEntities(entities map[string]string) string {
	if len(entities) == 0 {
		return ""
	}

	kinds := make([]string, 0, len(entities))
	for kind := range entities {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)

	var sb strings.Builder
	for i, kind := range kinds {
		if i > 0 {
			sb.WriteString("; ")
		}
		sb.WriteString(kind)
		sb.WriteString(": ")
		sb.WriteString(entities[kind])
	}

	return Truncate(sb.String(), MaxEntitiesLength)
}

// ClampRiskScore forces a score into [MinRiskScore, MaxRiskScore].
func ClampRiskScore(score int) int {
	if score < MinRiskScore {
		return MinRiskScore
	}
	if score > MaxRiskScore {
		return MaxRiskScore
	}
	return score
}

// Truncate cuts s to at most max bytes.
// Indicator tokens and rendered entities are ASCII in practice, so byte
// truncation matches the persisted column semantics.
func Truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

// PersistedLeak is the on-disk representation of a Finding: the Finding
// fields plus the monotonic identifier and the creation timestamp the
// store assigns at insert time. Rows are append-only and never mutated.
type PersistedLeak struct {
	// ID is the auto-incrementing row identifier.
	ID int64

	// Indicator is the matched token (<=100 chars).
	Indicator string

	// Context is the stored excerpt (<=1000 chars).
	Context string

	// Entities is the stored entity rendering (<=500 chars).
	Entities string

	// RiskScore is the stored score in [1,10].
	RiskScore int

	// CreatedAt is the insert timestamp assigned by the store.
	CreatedAt time.Time
}
