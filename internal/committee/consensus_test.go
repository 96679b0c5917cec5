package committee

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyrup-ai/sweetmcp-sub007/internal/mcts"
)

func sampleState() mcts.CodeState {
	return mcts.CodeState{Code: "f()", Latency: 0.4, Memory: 0.3, Relevance: 0.6}
}

func TestAgent_Evaluate_Deterministic(t *testing.T) {
	agent := NewAgent(Performance)
	state := sampleState()

	e1, err := agent.Evaluate(context.Background(), state, "inline_critical_functions", PhaseReview)
	require.NoError(t, err)
	e2, err := agent.Evaluate(context.Background(), state, "inline_critical_functions", PhaseReview)
	require.NoError(t, err)

	assert.Equal(t, e1, e2)
}

func TestAgent_Evaluate_RejectsEmptyAction(t *testing.T) {
	agent := NewAgent(Security)
	_, err := agent.Evaluate(context.Background(), sampleState(), "", PhaseInitial)
	assert.Error(t, err)
}

func TestConsensus_RunRound_Deterministic(t *testing.T) {
	c := NewConsensus(DefaultRubric(), PhaseInitial)
	state := sampleState()

	r1 := c.RunRound(context.Background(), state, "optimize_memory_allocation")
	r2 := c.RunRound(context.Background(), state, "optimize_memory_allocation")

	assert.Equal(t, r1.Consensus, r2.Consensus)
	assert.Len(t, r1.Evaluations, len(DefaultRubric().Perspectives))
}

func TestConsensus_Evaluate_SatisfiesMCTSEvaluator(t *testing.T) {
	var _ mcts.Evaluator = (*Consensus)(nil)

	c := NewConsensus(DefaultRubric(), PhaseInitial)
	score, err := c.Evaluate(context.Background(), sampleState())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, score, 0.0)
	assert.LessOrEqual(t, score, 1.0)
}

func TestWeightedConsensus_EmptyIsZero(t *testing.T) {
	assert.Equal(t, 0.0, WeightedConsensus(nil))
}

func TestWeightedConsensus_HigherWeightedPerspectiveDominates(t *testing.T) {
	evals := []Evaluation{
		{AgentID: string(Performance), ObjectiveAlignment: 1.0},
		{AgentID: string(Documentation), ObjectiveAlignment: 0.0},
	}
	got := WeightedConsensus(evals)
	// performance's weight (1.2) exceeds documentation's (0.7), so the
	// blended score should lean toward performance's 1.0 rather than land at 0.5.
	assert.Greater(t, got, 0.5)
}

func TestRunNoisyRound_DeterministicAcrossRuns(t *testing.T) {
	c := NewConsensus(DefaultRubric(), PhaseInitial)
	state := sampleState()

	r1 := c.RunNoisyRound(context.Background(), state, "batch_operations")
	r2 := c.RunNoisyRound(context.Background(), state, "batch_operations")

	assert.Equal(t, r1.Consensus, r2.Consensus)
}

func TestBatchRounds_PreservesOrder(t *testing.T) {
	c := NewConsensus(DefaultRubric(), PhaseInitial)
	states := []mcts.CodeState{
		{Latency: 0.1, Memory: 0.1, Relevance: 0.9},
		{Latency: 0.9, Memory: 0.9, Relevance: 0.1},
	}
	rounds := BatchRounds(context.Background(), c, states)
	require.Len(t, rounds, 2)

	direct0 := c.RunRound(context.Background(), states[0], actionFor(states[0]))
	direct1 := c.RunRound(context.Background(), states[1], actionFor(states[1]))
	assert.Equal(t, direct0.Consensus, rounds[0].Consensus)
	assert.Equal(t, direct1.Consensus, rounds[1].Consensus)
}
