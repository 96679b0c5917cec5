package mcts

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNode_UCB1_UnvisitedChildIsInfinite(t *testing.T) {
	gen := NewActionGenerator(OptimizationSpec{})
	root := NewNode(CodeState{Latency: 0.5, Memory: 0.5, Relevance: 0.5}, "", nil, gen)
	assert.True(t, math.IsInf(root.UCB1(1, 1.4), 1))
}

func TestNode_UCB1_MonotonicInParentVisits(t *testing.T) {
	gen := NewActionGenerator(OptimizationSpec{})
	root := NewNode(CodeState{}, "", nil, gen)
	child := NewNode(CodeState{}, "a", root, gen)
	child.Visits = 5
	child.TotalReward = 2.5

	low := child.UCB1(10, 1.4)
	high := child.UCB1(1000, 1.4)
	assert.Greater(t, high, low, "exploration bonus must grow with parent visit count")
}

func TestNode_UCB1_MonotonicInExplorationConstant(t *testing.T) {
	gen := NewActionGenerator(OptimizationSpec{})
	root := NewNode(CodeState{}, "", nil, gen)
	child := NewNode(CodeState{}, "a", root, gen)
	child.Visits = 5
	child.TotalReward = 2.5

	low := child.UCB1(50, 0.5)
	high := child.UCB1(50, 2.0)
	assert.Greater(t, high, low)
}

func TestNode_Expand_AttachesChildAndDecrementsUntried(t *testing.T) {
	gen := NewActionGenerator(OptimizationSpec{})
	root := NewNode(CodeState{Latency: 0.5, Memory: 0.5, Relevance: 0.5}, "", nil, gen)
	before := len(root.Untried)
	require := assert.New(t)
	require.Greater(before, 0)

	child := root.Expand(gen)
	require.NotNil(child)
	require.Equal(before-1, len(root.Untried))
	require.Equal(root, child.Parent)
	require.Contains(root.Children, child.Action)
}

func TestNode_Expand_ReturnsNilWhenFullyExpanded(t *testing.T) {
	gen := NewActionGenerator(OptimizationSpec{})
	root := NewNode(CodeState{}, "", nil, gen)
	for root.Expand(gen) != nil {
	}
	assert.True(t, root.IsFullyExpanded())
	assert.Nil(t, root.Expand(gen))
}

func TestNode_Backpropagate_UpdatesAncestorChain(t *testing.T) {
	gen := NewActionGenerator(OptimizationSpec{})
	root := NewNode(CodeState{}, "", nil, gen)
	child := root.Expand(gen)
	grandchild := child.Expand(gen)
	if grandchild == nil {
		grandchild = child.Expand(gen)
	}

	grandchild.Backpropagate(1.0)

	assert.Equal(t, 1, grandchild.Visits)
	assert.Equal(t, 1, child.Visits)
	assert.Equal(t, 1, root.Visits)
	assert.Equal(t, 1.0, root.TotalReward)
}

func TestNode_SelectBestChild_TiesBreakByInsertionOrderDeterministically(t *testing.T) {
	gen := NewActionGenerator(OptimizationSpec{})

	for attempt := 0; attempt < 20; attempt++ {
		root := NewNode(CodeState{}, "", nil, gen)
		var children []*Node
		for root.IsFullyExpanded() == false && len(children) < 3 {
			c := root.Expand(gen)
			if c == nil {
				break
			}
			c.Visits = 4
			c.TotalReward = 2.0 // identical UCB1 score for every child
			children = append(children, c)
		}
		root.Visits = 4 * len(children) // a parent counts every visit of its children
		require := assert.New(t)
		require.GreaterOrEqual(len(children), 2, "need at least two tied children to exercise the tie-break")

		first := root.Children[root.ChildOrder[0]]
		got := root.SelectBestChild(1.4)
		require.Equal(first, got, "tie must always resolve to the first-inserted child")
	}
}

func TestNode_BestChildByVisits_PicksMostVisited(t *testing.T) {
	gen := NewActionGenerator(OptimizationSpec{})
	root := NewNode(CodeState{}, "", nil, gen)
	a := root.Expand(gen)
	b := root.Expand(gen)
	require := assert.New(t)
	require.NotNil(a)
	require.NotNil(b)

	a.Visits = 3
	b.Visits = 9

	assert.Equal(t, b, root.BestChildByVisits())
}
