package committee

import (
	"context"
	"hash/fnv"
	"sync"

	"github.com/cyrup-ai/sweetmcp-sub007/internal/mcts"
)

// Round is one committee evaluation round: every agent's evaluation plus
// the weighted consensus score derived from them.
type Round struct {
	Phase       Phase
	Evaluations []Evaluation
	Consensus   float64
	Progress    float64 // consensus relative to the round's rubric, used by steering
	ErrorCount  int      // agents whose Evaluate call was rejected and skipped this round
}

// Consensus runs a rubric's agents over a state and aggregates their scores
// into a single weighted consensus value, implementing mcts.Evaluator so a
// Consensus can be plugged directly into an mcts.Tree as its reward source.
type Consensus struct {
	rubric EvaluationRubric
	phase  Phase
}

// NewConsensus builds a Consensus over the given rubric at a fixed phase.
func NewConsensus(rubric EvaluationRubric, phase Phase) *Consensus {
	return &Consensus{rubric: rubric, phase: phase}
}

// Evaluate runs every agent concurrently and returns the weighted consensus
// score, satisfying mcts.Evaluator. The action evaluated is the last one
// applied to reach state (or "initial" for the root state), since
// mcts.Evaluator carries no separate action parameter.
func (c *Consensus) Evaluate(ctx context.Context, state mcts.CodeState) (float64, error) {
	round := c.RunRound(ctx, state, actionFor(state))
	return round.Consensus, nil
}

func actionFor(state mcts.CodeState) string {
	if len(state.AppliedActions) == 0 {
		return "initial"
	}
	return state.AppliedActions[len(state.AppliedActions)-1]
}

// RunRound evaluates every agent in the rubric against (state, action), in
// parallel, and computes the weighted consensus, mirroring the Rust
// committee's batch/parallel evaluation path. Agents rejecting the
// evaluation (empty id/action, which cannot happen for rubric-built agents
// and a non-empty action) are skipped rather than failing the whole round.
func (c *Consensus) RunRound(ctx context.Context, state mcts.CodeState, action string) Round {
	evaluations, errCount := c.evaluateAll(ctx, state, action, noPerturbation)
	consensus := WeightedConsensus(evaluations)
	return Round{
		Phase:       c.phase,
		Evaluations: evaluations,
		Consensus:   consensus,
		Progress:    consensus,
		ErrorCount:  errCount,
	}
}

// RunNoisyRound is the "noisy" committee variant from spec.md §4.7: each
// agent's scores are perturbed by a small deterministic offset derived from
// a hash of (agent id, action), so repeated runs over identical input are
// still reproducible while exercising the committee's robustness to
// disagreement.
func (c *Consensus) RunNoisyRound(ctx context.Context, state mcts.CodeState, action string) Round {
	evaluations, errCount := c.evaluateAll(ctx, state, action, hashPerturbation)
	consensus := WeightedConsensus(evaluations)
	return Round{
		Phase:       c.phase,
		Evaluations: evaluations,
		Consensus:   consensus,
		Progress:    consensus,
		ErrorCount:  errCount,
	}
}

// evaluateAll runs every rubric agent concurrently and returns the
// successful evaluations plus a count of agents whose Evaluate call was
// rejected and skipped, which steering's identifyFocusAreas folds into
// "evaluation reliability".
func (c *Consensus) evaluateAll(ctx context.Context, state mcts.CodeState, action string, perturb func(agentID, action string, v float64) float64) ([]Evaluation, int) {
	agents := c.rubric.Agents()
	evaluations := make([]Evaluation, 0, len(agents))
	results := make([]*Evaluation, len(agents))

	var wg sync.WaitGroup
	for i, agent := range agents {
		wg.Add(1)
		go func(i int, agent *Agent) {
			defer wg.Done()
			eval, err := agent.Evaluate(ctx, state, action, c.phase)
			if err != nil {
				return
			}
			eval.ObjectiveAlignment = clamp01(perturb(eval.AgentID, action, eval.ObjectiveAlignment))
			eval.ImplementationQuality = clamp01(perturb(eval.AgentID, action, eval.ImplementationQuality))
			eval.RiskAssessment = clamp01(perturb(eval.AgentID, action, eval.RiskAssessment))
			eval.MakesProgress = eval.ObjectiveAlignment > 0.5
			results[i] = &eval
		}(i, agent)
	}
	wg.Wait()

	errCount := 0
	for _, r := range results {
		if r != nil {
			evaluations = append(evaluations, *r)
		} else {
			errCount++
		}
	}
	return evaluations, errCount
}

func noPerturbation(_, _ string, v float64) float64 { return v }

// hashPerturbation derives a small, deterministic offset in [-0.05, 0.05]
// from an FNV hash of agentID+action, so the same input always produces
// the same perturbation.
func hashPerturbation(agentID, action string, v float64) float64 {
	h := fnv.New32a()
	h.Write([]byte(agentID))
	h.Write([]byte(action))
	frac := float64(h.Sum32()%1000) / 1000.0 // [0, 1)
	offset := (frac - 0.5) * 0.1              // [-0.05, 0.05)
	return v + offset
}

// WeightedConsensus blends a set of evaluations using each agent id's
// keyword-matched weight from PerspectiveWeights, per spec.md §4.7's
// weighted consensus formula.
func WeightedConsensus(evaluations []Evaluation) float64 {
	var sum, totalWeight float64
	for _, e := range evaluations {
		w := weightForID(e.AgentID)
		sum += e.ObjectiveAlignment * w
		totalWeight += w
	}
	if totalWeight == 0 {
		return 0
	}
	return sum / totalWeight
}

// BatchRounds runs RunRound over multiple states concurrently, for the
// MCTS simulation step evaluating several candidate children at once.
// Order is preserved: rounds[i] always corresponds to states[i].
func BatchRounds(ctx context.Context, c *Consensus, states []mcts.CodeState) []Round {
	rounds := make([]Round, len(states))
	var wg sync.WaitGroup
	for i, s := range states {
		wg.Add(1)
		go func(i int, s mcts.CodeState) {
			defer wg.Done()
			rounds[i] = c.RunRound(ctx, s, actionFor(s))
		}(i, s)
	}
	wg.Wait()
	return rounds
}
