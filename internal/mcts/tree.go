package mcts

import (
	"context"
	"time"
)

// Evaluator scores a state reached by applying a sequence of actions,
// returning a reward in [0,1]. internal/committee.Consensus implements
// this; mcts never imports committee directly, keeping the search
// algorithm decoupled from how rewards are produced (the quantum layer
// supplies an alternate Evaluator too).
type Evaluator interface {
	Evaluate(ctx context.Context, state CodeState) (reward float64, err error)
}

// TerminationReason names why a search run stopped, surfaced in metrics and
// the final Result.
type TerminationReason string

const (
	TerminationIterationCap  TerminationReason = "iteration_cap"
	TerminationWallClock     TerminationReason = "wall_clock"
	TerminationConvergence   TerminationReason = "convergence"
	TerminationMemoryPressure TerminationReason = "memory_pressure"
)

// TerminationConfig bounds a search run per spec.md §4.5's termination
// conditions.
type TerminationConfig struct {
	MaxIterations int
	MaxDuration   time.Duration
	MaxNodes      int
	// ConvergenceWindow and ConvergenceThreshold define convergence: the
	// search stops early if the best child's average reward changes by
	// less than ConvergenceThreshold across ConvergenceWindow consecutive
	// iterations.
	ConvergenceWindow    int
	ConvergenceThreshold float64
}

func (c TerminationConfig) normalized() TerminationConfig {
	if c.MaxIterations <= 0 {
		c.MaxIterations = 1000
	}
	if c.MaxDuration <= 0 {
		c.MaxDuration = 5 * time.Second
	}
	if c.MaxNodes <= 0 {
		c.MaxNodes = 100000
	}
	if c.ConvergenceWindow <= 0 {
		c.ConvergenceWindow = 20
	}
	if c.ConvergenceThreshold <= 0 {
		c.ConvergenceThreshold = 0.001
	}
	return c
}

// Tree drives the selection -> expansion -> simulation -> backpropagation
// loop over a root state.
type Tree struct {
	root       *Node
	generator  *ActionGenerator
	evaluator  Evaluator
	exploration float64
	nodeCount  int
}

// NewTree builds a search tree rooted at the given initial state.
func NewTree(root CodeState, generator *ActionGenerator, evaluator Evaluator, explorationConstant float64) *Tree {
	if explorationConstant <= 0 {
		explorationConstant = 1.41421356
	}
	rootNode := NewNode(root, "", nil, generator)
	return &Tree{
		root:        rootNode,
		generator:   generator,
		evaluator:   evaluator,
		exploration: explorationConstant,
		nodeCount:   1,
	}
}

// Run executes the search loop until a termination condition fires,
// returning the reason, or the evaluator's error if an evaluation fails.
func (t *Tree) Run(ctx context.Context, cfg TerminationConfig) (TerminationReason, error) {
	cfg = cfg.normalized()
	start := time.Now()

	window := make([]float64, 0, cfg.ConvergenceWindow)

	for iter := 0; iter < cfg.MaxIterations; iter++ {
		select {
		case <-ctx.Done():
			return TerminationWallClock, nil
		default:
		}

		if time.Since(start) > cfg.MaxDuration {
			return TerminationWallClock, nil
		}
		if float64(t.nodeCount) > float64(cfg.MaxNodes)*0.8 {
			return TerminationMemoryPressure, nil
		}

		leaf := t.selectLeaf()
		var expanded *Node
		if !leaf.IsFullyExpanded() {
			expanded = leaf.Expand(t.generator)
			if expanded != nil {
				t.nodeCount++
			}
		}
		evalTarget := expanded
		if evalTarget == nil {
			evalTarget = leaf
		}

		reward, err := t.evaluator.Evaluate(ctx, evalTarget.State)
		if err != nil {
			return "", err
		}
		evalTarget.Backpropagate(reward)

		if best := t.root.BestChildByVisits(); best != nil {
			window = append(window, best.AverageReward())
			if len(window) > cfg.ConvergenceWindow {
				window = window[1:]
			}
			if len(window) == cfg.ConvergenceWindow && hasConverged(window, cfg.ConvergenceThreshold) {
				return TerminationConvergence, nil
			}
		}
	}

	return TerminationIterationCap, nil
}

func hasConverged(window []float64, threshold float64) bool {
	min, max := window[0], window[0]
	for _, v := range window {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return (max - min) < threshold
}

// selectLeaf walks from the root choosing the best UCB1 child at each level
// until it reaches a node that isn't fully expanded or has no children.
func (t *Tree) selectLeaf() *Node {
	cur := t.root
	for cur.IsFullyExpanded() && !cur.IsLeaf() {
		next := cur.SelectBestChild(t.exploration)
		if next == nil {
			break
		}
		cur = next
	}
	return cur
}

// Root exposes the tree's root node for analysis.
func (t *Tree) Root() *Node { return t.root }

// NodeCount reports the total number of nodes allocated so far.
func (t *Tree) NodeCount() int { return t.nodeCount }
