// Package planner implements the memory action planner: given an observed
// interaction, decide which memory items to add, update, or delete. Grounded
// on memory-tools/internal/domain/action/{planner,scorer}.go, adapted from
// the teacher's service-specific memory kinds to the generic memory.Item.
package planner

import (
	"strings"

	"github.com/cyrup-ai/sweetmcp-sub007/internal/memory"
)

// Scorer assigns an importance score in [0,1] to candidate memory content,
// ported from the teacher's keyword-weighted AnalyzeTextImportance.
type Scorer struct{}

// NewScorer returns a stateless heuristic scorer.
func NewScorer() *Scorer { return &Scorer{} }

var importanceKeywords = map[string]float32{
	"always":      0.3,
	"never":       0.3,
	"must":        0.25,
	"require":     0.25,
	"prefer":      0.2,
	"important":   0.25,
	"remember":    0.3,
	"please":      -0.05,
	"maybe":       -0.1,
	"might":       -0.1,
}

// ScoreImportance blends a base score with keyword signals found in text,
// mirroring the teacher's AnalyzeTextImportance.
func (s *Scorer) ScoreImportance(text string) float32 {
	lower := strings.ToLower(text)
	score := float32(0.4)
	for kw, weight := range importanceKeywords {
		if strings.Contains(lower, kw) {
			score += weight
		}
	}
	return clampF32(score)
}

// ScoreConfidence maps an importance score and evidence count to a
// memory.Confidence level.
func (s *Scorer) ScoreConfidence(importance float32, evidenceCount int) memory.Confidence {
	boost := float32(0)
	if evidenceCount > 1 {
		boost = minF32(0.2, float32(evidenceCount-1)*0.05)
	}
	return memory.FromWeight(float64(clampF32(importance + boost)))
}

func clampF32(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func minF32(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}
