package quantum

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyrup-ai/sweetmcp-sub007/internal/mcts"
)

func TestAmplify_StopsAsSoonAsEveryNodeCrossesThreshold(t *testing.T) {
	nodes := []*NodeState{NewNodeState(mcts.CodeState{}), NewNodeState(mcts.CodeState{})}
	calls := 0
	reward := func(ctx context.Context, n *NodeState) (float64, error) {
		calls++
		return 0.9, nil
	}

	result, err := Amplify(context.Background(), nodes, reward, 10, 0.5, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Iterations)
	assert.Equal(t, len(nodes), calls)
	assert.Equal(t, len(nodes), result.Boosted)
	assert.Equal(t, []float64{0.9, 0.9}, result.FinalRewards)
}

func TestAmplify_ExhaustsMaxIterationsWhenThresholdNeverMet(t *testing.T) {
	nodes := []*NodeState{NewNodeState(mcts.CodeState{})}
	reward := func(ctx context.Context, n *NodeState) (float64, error) {
		return 0.1, nil
	}

	result, err := Amplify(context.Background(), nodes, reward, 5, 0.99, 0)
	require.NoError(t, err)
	assert.Equal(t, 5, result.Iterations)
	assert.Equal(t, 0, result.Boosted)
}

func TestAmplify_EvolvesPhaseAndDecoherenceWhenBelowThreshold(t *testing.T) {
	n := NewNodeState(mcts.CodeState{})
	reward := func(ctx context.Context, n *NodeState) (float64, error) {
		return 0.1, nil
	}

	_, err := Amplify(context.Background(), []*NodeState{n}, reward, 1, 0.99, 0)
	require.NoError(t, err)
	assert.Greater(t, n.Decoherence, 0.0)
}

func TestAmplify_OnlyBoostsNodesAboveThreshold(t *testing.T) {
	strong := NewNodeState(mcts.CodeState{})
	weak := NewNodeState(mcts.CodeState{})
	rewards := map[*NodeState]float64{strong: 0.95, weak: 0.1}
	reward := func(ctx context.Context, n *NodeState) (float64, error) {
		return rewards[n], nil
	}

	result, err := Amplify(context.Background(), []*NodeState{strong, weak}, reward, 1, 0.5, 2.0)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Boosted)
	assert.Greater(t, strong.Probability(), weak.Probability())
}

func TestAmplify_RenormalizesAcrossPopulation(t *testing.T) {
	a := NewNodeState(mcts.CodeState{})
	b := NewNodeState(mcts.CodeState{})
	reward := func(ctx context.Context, n *NodeState) (float64, error) {
		return 0.9, nil
	}

	_, err := Amplify(context.Background(), []*NodeState{a, b}, reward, 1, 0.5, 3.0)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, a.Probability()+b.Probability(), 0.0001)
}

func TestAmplify_PropagatesEvaluatorError(t *testing.T) {
	nodes := []*NodeState{NewNodeState(mcts.CodeState{})}
	boom := errors.New("boom")
	reward := func(ctx context.Context, n *NodeState) (float64, error) {
		return 0, boom
	}

	_, err := Amplify(context.Background(), nodes, reward, 5, 0.5, 0)
	assert.ErrorIs(t, err, boom)
}

func TestAmplify_StopsImmediatelyOnCancelledContext(t *testing.T) {
	nodes := []*NodeState{NewNodeState(mcts.CodeState{})}
	reward := func(ctx context.Context, n *NodeState) (float64, error) {
		return 0.1, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := Amplify(ctx, nodes, reward, 10, 0.99, 0)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, result.Iterations)
}

func TestAmplify_DefaultsMaxIterationsWhenNonPositive(t *testing.T) {
	nodes := []*NodeState{NewNodeState(mcts.CodeState{})}
	calls := 0
	reward := func(ctx context.Context, n *NodeState) (float64, error) {
		calls++
		return 0.1, nil
	}

	result, err := Amplify(context.Background(), nodes, reward, 0, 0.99, 0)
	require.NoError(t, err)
	assert.Equal(t, 20, result.Iterations)
	assert.Equal(t, 20, calls)
}
