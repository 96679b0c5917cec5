package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cyrup-ai/sweetmcp-sub007/internal/memory"
)

func TestScoreImportance_BaseScoreForNeutralText(t *testing.T) {
	s := NewScorer()
	assert.InDelta(t, 0.4, s.ScoreImportance("the sky is blue"), 0.0001)
}

func TestScoreImportance_KeywordsRaiseScore(t *testing.T) {
	s := NewScorer()
	got := s.ScoreImportance("you must always remember this")
	assert.Greater(t, got, float32(0.4))
}

func TestScoreImportance_HedgeWordsLowerScore(t *testing.T) {
	s := NewScorer()
	got := s.ScoreImportance("maybe please consider this")
	assert.Less(t, got, float32(0.4))
}

func TestScoreImportance_ClampsAtOne(t *testing.T) {
	s := NewScorer()
	got := s.ScoreImportance("always never must require prefer important remember")
	assert.Equal(t, float32(1.0), got)
}

func TestScoreConfidence_HigherEvidenceCountBoostsConfidence(t *testing.T) {
	s := NewScorer()
	low := s.ScoreConfidence(0.3, 1)
	high := s.ScoreConfidence(0.3, 5)
	assert.GreaterOrEqual(t, high, low)
}

func TestScoreConfidence_MapsThroughFromWeight(t *testing.T) {
	s := NewScorer()
	got := s.ScoreConfidence(0.9, 1)
	assert.Equal(t, memory.FromWeight(0.9), got)
}
