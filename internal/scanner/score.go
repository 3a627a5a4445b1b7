package scanner

import (
	"strings"

	"github.com/nao1215/darkhound/internal/model"
)

// Risk scores assigned by the baseline policy, from most to least
// severe. The policy inspects the rendered entity string, so an
// extracted password entity and the literal word "password" in a
// context excerpt score the same: both mean credential material sits
// next to the matched indicator.
const (
	scorePassword   = 10
	scoreCredential = 8
	scoreEmail      = 7
	scoreGeneric    = 3
	scoreBare       = 1
)

// ScoreEntities computes the risk score for a finding from its rendered
// entity string. The first matching rule wins:
//
//	contains "password"   -> 10
//	contains "credential" -> 8
//	contains "email"      -> 7
//	non-empty             -> 3
//	empty                 -> 1
//
// The result is clamped to [model.MinRiskScore, model.MaxRiskScore] so
// a future rule change cannot leak an out-of-range score downstream.
func ScoreEntities(rendered string) int {
	lower := strings.ToLower(rendered)

	var score int
	switch {
	case lower == "":
		score = scoreBare
	case strings.Contains(lower, "password"):
		score = scorePassword
	case strings.Contains(lower, "credential"):
		score = scoreCredential
	case strings.Contains(lower, "email"):
		score = scoreEmail
	default:
		score = scoreGeneric
	}

	return model.ClampRiskScore(score)
}
