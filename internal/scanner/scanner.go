package scanner

import (
	"context"
	"log/slog"
	"strings"

	"github.com/nao1215/darkhound/internal/extract"
	"github.com/nao1215/darkhound/internal/feed"
	"github.com/nao1215/darkhound/internal/model"
)

const (
	// MaxIndicatorsPerScan bounds how many indicators a single scan
	// evaluates. Extra indicators are ignored with a warning so one
	// oversized configuration cannot turn a scan quadratic.
	MaxIndicatorsPerScan = 10

	// ContextRadius is how many bytes of content are kept on each side
	// of a match when building the excerpt.
	ContextRadius = 50

	// MaxFeedFindings bounds how many threat feed findings one scan
	// appends. The feed is advisory; it must not drown local matches.
	MaxFeedFindings = 5
)

// Result is the outcome of scanning one piece of content.
type Result struct {
	// Findings holds the validated findings in match order: indicator
	// matches first, then media findings, then feed findings.
	Findings []model.Finding

	// ExtractionFailures counts candidates dropped because entity
	// extraction failed on their excerpt.
	ExtractionFailures int

	// FeedFailures counts failed threat feed lookups (0 or 1 per scan).
	FeedFailures int
}

// Scanner matches indicators against content and produces findings.
type Scanner struct {
	extractor    extract.Extractor
	feed         feed.Lookup
	logger       *slog.Logger
	inspectMedia bool
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithExtractor replaces the default regex extractor.
func WithExtractor(e extract.Extractor) Option {
	return func(s *Scanner) {
		if e != nil {
			s.extractor = e
		}
	}
}

// WithFeed enables threat feed enrichment for matched indicators.
func WithFeed(f feed.Lookup) Option {
	return func(s *Scanner) {
		if f != nil {
			s.feed = f
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scanner) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMediaInspection enables EXIF extraction from embedded images.
func WithMediaInspection(enabled bool) Option {
	return func(s *Scanner) {
		s.inspectMedia = enabled
	}
}

// New creates a Scanner. Without options it uses the regex extractor,
// no feed, no media inspection, and a discard-equivalent default logger.
func New(opts ...Option) *Scanner {
	s := &Scanner{
		extractor: extract.NewRegexExtractor(),
		feed:      feed.Disabled{},
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan evaluates every indicator against content.
//
// Matching is a case-insensitive substring search. Every non-overlapping
// occurrence of an indicator yields one finding, built from the excerpt
// around that occurrence. Empty content or an empty indicator list is a
// valid scan with zero findings, not an error; the only error Scan
// returns is context cancellation.
func (s *Scanner) Scan(ctx context.Context, content string, indicators []string) (Result, error) {
	var result Result

	if err := ctx.Err(); err != nil {
		return result, err
	}

	if len(indicators) > MaxIndicatorsPerScan {
		s.logger.Warn("indicator list exceeds per-scan cap, ignoring extras",
			"configured", len(indicators),
			"cap", MaxIndicatorsPerScan)
		indicators = indicators[:MaxIndicatorsPerScan]
	}

	lowerContent := strings.ToLower(content)
	matched := make([]string, 0, len(indicators))

	for _, indicator := range indicators {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if indicator == "" {
			continue
		}

		lowered := strings.ToLower(indicator)
		found := false
		for idx := strings.Index(lowerContent, lowered); idx >= 0; {
			if err := ctx.Err(); err != nil {
				return result, err
			}
			found = true

			excerpt := buildExcerpt(content, idx, len(indicator))

			entities, err := s.extractor.Extract(ctx, excerpt)
			if err != nil {
				result.ExtractionFailures++
				s.logger.Warn("entity extraction failed, dropping candidate",
					"indicator", indicator,
					"offset", idx,
					"error", err)
			} else if finding, ferr := model.NewFinding(indicator, excerpt, entities, ScoreEntities(model.RenderEntities(entities))); ferr != nil {
				// Unreachable for non-empty indicators; counted for symmetry.
				result.ExtractionFailures++
			} else {
				result.Findings = append(result.Findings, finding)
			}

			// Advance past this occurrence; matches never overlap.
			rest := strings.Index(lowerContent[idx+len(lowered):], lowered)
			if rest < 0 {
				break
			}
			idx += len(lowered) + rest
		}
		if found {
			matched = append(matched, indicator)
		}
	}

	if s.inspectMedia {
		result.Findings = append(result.Findings, s.scanMedia(ctx, content)...)
	}

	if len(matched) > 0 {
		enriched, err := s.feed.Lookup(ctx, matched)
		if err != nil {
			result.FeedFailures++
			s.logger.Warn("threat feed lookup failed", "error", err)
		} else {
			if len(enriched) > MaxFeedFindings {
				enriched = enriched[:MaxFeedFindings]
			}
			result.Findings = append(result.Findings, enriched...)
		}
	}

	return result, nil
}

// buildExcerpt cuts the content window around a match: ContextRadius
// bytes on each side, then the model excerpt ceiling as a hard cap.
func buildExcerpt(content string, matchIdx, matchLen int) string {
	start := matchIdx - ContextRadius
	if start < 0 {
		start = 0
	}
	end := matchIdx + matchLen + ContextRadius
	if end > len(content) {
		end = len(content)
	}
	return model.Truncate(content[start:end], model.MaxExcerptLength)
}
