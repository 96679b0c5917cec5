package quantum

import (
	"context"
	"math"
)

// DefaultBoostFactor is the amplitude multiplier applied to a node whose
// measured reward has crossed qualityThreshold, when no explicit factor is
// given.
const DefaultBoostFactor = 1.5

// RewardFunc scores a quantum node state's underlying classical state,
// mirroring mcts.Evaluator but over quantum states; committee.Consensus can
// be adapted into this via a thin wrapper in the planner wiring.
type RewardFunc func(ctx context.Context, n *NodeState) (float64, error)

// AmplifyResult reports what a population-level amplification pass did:
// how many rounds it ran, how many nodes were boosted in the final round,
// and each node's last measured reward (same order as the input slice).
type AmplifyResult struct {
	Iterations   int
	Boosted      int
	FinalRewards []float64
}

// Amplify runs bounded amplitude amplification (Grover-style selective
// boosting of high-reward states) over a population of node states,
// stopping once every node's measured reward crosses qualityThreshold or
// maxIterations is exhausted, per spec.md §4.8's "bounded loop over nodes
// above a quality threshold, multiplying amplitudes by a boost factor and
// renormalizing". Nodes still below threshold instead get a phase rotation
// proportional to their distance from it and a small decoherence penalty.
func Amplify(ctx context.Context, nodes []*NodeState, reward RewardFunc, maxIterations int, qualityThreshold, boostFactor float64) (AmplifyResult, error) {
	if maxIterations <= 0 {
		maxIterations = 20
	}
	if boostFactor <= 0 {
		boostFactor = DefaultBoostFactor
	}

	result := AmplifyResult{FinalRewards: make([]float64, len(nodes))}

	for i := 0; i < maxIterations; i++ {
		result.Iterations = i + 1
		allAboveThreshold := true
		boosted := 0

		for idx, n := range nodes {
			r, err := reward(ctx, n)
			if err != nil {
				return result, err
			}
			result.FinalRewards[idx] = r

			if r < qualityThreshold {
				allAboveThreshold = false
				// Rotate the amplitude's phase proportionally to how far the
				// current reward is from the threshold, then decay
				// coherence a small fixed amount (amplification isn't
				// free).
				n.EvolvePhase((qualityThreshold - r) * 0.5)
				n.ApplyAmplitude()
				n.UpdateDecoherence(0.02)
				continue
			}
			boostNode(n, boostFactor)
			boosted++
		}
		result.Boosted = boosted
		renormalizePopulation(nodes)

		if allAboveThreshold {
			return result, nil
		}

		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}
	}

	return result, nil
}

// boostNode multiplies a node's superposition amplitudes by factor,
// amplifying its contribution ahead of the population renormalization.
func boostNode(n *NodeState, factor float64) {
	scale := complex(factor, 0)
	for i, amp := range n.Superposition {
		n.Superposition[i] = amp * scale
	}
}

// renormalizePopulation scales every node's superposition so the total
// probability mass across the whole population sums to 1, the
// population-level renormalization an amplification pass needs after
// selectively boosting some nodes' amplitudes and leaving others alone.
func renormalizePopulation(nodes []*NodeState) {
	var total float64
	for _, n := range nodes {
		total += n.Probability()
	}
	if total <= 0 {
		return
	}
	scale := complex(1/math.Sqrt(total), 0)
	for _, n := range nodes {
		for i, amp := range n.Superposition {
			n.Superposition[i] = amp * scale
		}
	}
}
