package committee

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSteeringFeedback_NilBeforeMinRounds(t *testing.T) {
	s := NewSteeringSystem()
	history := []Round{{Consensus: 0.5, Progress: 0.5}}
	assert.Nil(t, s.GenerateSteeringFeedback(history, PhaseInitial))
}

func TestGenerateSteeringFeedback_EncouragingOnClearImprovement(t *testing.T) {
	s := NewSteeringSystem()
	history := []Round{
		{Consensus: 0.5, Progress: 0.5},
		{
			Consensus: 0.65,
			Progress:  0.65,
			Evaluations: []Evaluation{
				{AgentID: "performance", ObjectiveAlignment: 0.9, ImplementationQuality: 0.4, RiskAssessment: 0.1, Reasoning: "strong"},
				{AgentID: "security", ObjectiveAlignment: 0.8, ImplementationQuality: 0.3, RiskAssessment: 0.1},
				{AgentID: "architecture", ObjectiveAlignment: 0.85, ImplementationQuality: 0.35, RiskAssessment: 0.05},
			},
		},
	}
	feedback := s.GenerateSteeringFeedback(history, PhaseInitial)
	require.NotNil(t, feedback)
	assert.Equal(t, Encouraging, feedback.Type)
	assert.True(t, feedback.ShouldContinue())
	assert.Contains(t, feedback.FocusAreas, "implementation quality")
	assert.Equal(t, "implementation quality", feedback.PrimaryFocus())
}

func TestIdentifyFocusAreas_DefaultsWhenNothingIsWeak(t *testing.T) {
	round := Round{Evaluations: []Evaluation{
		{AgentID: "a", ObjectiveAlignment: 0.9, ImplementationQuality: 0.9, RiskAssessment: 0.1},
		{AgentID: "b", ObjectiveAlignment: 0.85, ImplementationQuality: 0.8, RiskAssessment: 0.1},
		{AgentID: "c", ObjectiveAlignment: 0.8, ImplementationQuality: 0.85, RiskAssessment: 0.1},
	}}
	assert.Equal(t, []string{"fine-tuning details", "edge case handling", "performance optimization"}, identifyFocusAreas(round))
}

func TestIdentifyFocusAreas_FlagsLowSubScoresAndErrors(t *testing.T) {
	round := Round{
		ErrorCount: 1,
		Evaluations: []Evaluation{
			{AgentID: "a", ObjectiveAlignment: 0.3, ImplementationQuality: 0.3, RiskAssessment: 0.9},
			{AgentID: "b", ObjectiveAlignment: 0.2, ImplementationQuality: 0.2, RiskAssessment: 0.9},
			{AgentID: "c", ObjectiveAlignment: 0.25, ImplementationQuality: 0.25, RiskAssessment: 0.85},
		},
	}
	areas := identifyFocusAreas(round)
	assert.Contains(t, areas, "objective alignment")
	assert.Contains(t, areas, "implementation quality")
	assert.Contains(t, areas, "risk assessment")
	assert.Contains(t, areas, "evaluation reliability")
	assert.NotContains(t, areas, "a")
}

func TestGenerateSteeringFeedback_CorrectiveOnSharpDecline(t *testing.T) {
	s := NewSteeringSystem()
	history := []Round{
		{Consensus: 0.8, Progress: 0.8, Evaluations: []Evaluation{{AgentID: "security", ObjectiveAlignment: 0.9}}},
		{Consensus: 0.5, Progress: 0.5, Evaluations: []Evaluation{{AgentID: "security", ObjectiveAlignment: 0.3, Reasoning: "regressed"}}},
	}
	feedback := s.GenerateSteeringFeedback(history, PhaseInitial)
	require.NotNil(t, feedback)
	assert.Equal(t, Corrective, feedback.Type)
	assert.Equal(t, UrgencyHigh, feedback.Urgency())
	assert.NotEmpty(t, feedback.TopConcerns)
}

func TestGenerateSteeringFeedback_RefocusingWhenPlateaued(t *testing.T) {
	s := NewSteeringSystem()
	history := []Round{
		{Consensus: 0.6, Progress: 0.6},
		{Consensus: 0.61, Progress: 0.615},
	}
	feedback := s.GenerateSteeringFeedback(history, PhaseReview)
	require.NotNil(t, feedback)
	assert.Equal(t, Refocusing, feedback.Type)
	assert.Contains(t, feedback.FreshPerspectives, string(Testing))
}

func TestGenerateSteeringFeedback_ConcludingIsTerminal(t *testing.T) {
	feedback := SteeringFeedback{Type: Concluding}
	assert.False(t, feedback.ShouldContinue())
}

func TestSteeringFeedback_UrgencyDefaultsLow(t *testing.T) {
	feedback := SteeringFeedback{Type: Encouraging}
	assert.Equal(t, UrgencyLow, feedback.Urgency())
}
