// Package committee implements the committee-evaluated scoring layer from
// spec.md §4.7: perspective-tagged simulated agents, a weighted consensus,
// and the steering feedback system, ported from original_source's
// cognitive/committee/evaluation/agent_simulation_core.rs and
// cognitive/committee/consensus/steering.rs.
package committee

import (
	"context"
	"fmt"
	"strings"

	"github.com/cyrup-ai/sweetmcp-sub007/internal/gatewayerr"
	"github.com/cyrup-ai/sweetmcp-sub007/internal/mcts"
)

// Perspective names one committee member's evaluation angle.
type Perspective string

const (
	Performance     Perspective = "performance"
	Security        Perspective = "security"
	Maintainability Perspective = "maintainability"
	User            Perspective = "user"
	Architecture    Perspective = "architecture"
	Testing         Perspective = "testing"
	Documentation   Perspective = "documentation"
	Unknown         Perspective = "unknown"
)

// Phase names which round of committee evaluation is running, affecting the
// base-score modifier.
type Phase string

const (
	PhaseInitial Phase = "initial"
	PhaseReview  Phase = "review"
	PhaseRefine  Phase = "refine"
)

func phaseModifier(phase Phase) float64 {
	switch phase {
	case PhaseReview:
		return 0.05
	case PhaseRefine:
		return 0.1
	default:
		return 0.0
	}
}

// baseScores mirrors calculate_agent_base_score's per-perspective constants.
var baseScores = map[Perspective]float64{
	Performance:     0.8,
	Security:        0.6,
	Maintainability: 0.7,
	User:            0.75,
	Architecture:    0.65,
	Testing:         0.55,
	Documentation:   0.5,
}

func baseScoreFor(p Perspective) float64 {
	if v, ok := baseScores[p]; ok {
		return v
	}
	return 0.6
}

// PerspectiveWeights mirrors get_agent_perspective_weights, used when
// aggregating agent scores into a consensus.
var PerspectiveWeights = map[Perspective]float64{
	Performance:     1.2,
	Security:        1.1,
	Maintainability: 1.0,
	User:            1.0,
	Architecture:    0.9,
	Testing:         0.8,
	Documentation:   0.7,
}

// weightForID returns the weight of the first perspective keyword (in
// PerspectiveWeights' declaration order) that agentID contains, per spec.md
// §4.7's "agents whose id contains a keyword inherit its weight". Defaults
// to 1.0 when no keyword matches.
func weightForID(agentID string) float64 {
	lower := strings.ToLower(agentID)
	for _, p := range []Perspective{Performance, Security, Maintainability, User, Architecture, Testing, Documentation} {
		if strings.Contains(lower, string(p)) {
			return PerspectiveWeights[p]
		}
	}
	return 1.0
}

// Evaluation is one agent's scored opinion of an action applied to a state,
// matching spec.md §3's committee evaluation round shape.
type Evaluation struct {
	AgentID               string
	Action                string
	MakesProgress         bool
	ObjectiveAlignment    float64
	ImplementationQuality float64
	RiskAssessment        float64
	Reasoning             string
	SuggestedImprovements []string
}

// Agent simulates one committee member's evaluation, deterministic given
// (perspective, phase, state, action) so repeated runs over the same input
// are reproducible, as spec.md's testable properties require.
type Agent struct {
	ID          string
	Perspective Perspective
}

// NewAgent builds an agent for a fixed perspective, using the perspective
// tag itself as the agent id.
func NewAgent(p Perspective) *Agent {
	return &Agent{ID: string(p), Perspective: p}
}

// Evaluate scores an (state, action) pair deterministically from the
// state's metrics, the perspective's base score, and the phase modifier,
// mirroring simulate_agent_evaluation + calculate_agent_base_score +
// calculate_phase_modifier + validate_evaluation. Any empty agent id or
// action rejects the evaluation.
func (a *Agent) Evaluate(_ context.Context, state mcts.CodeState, action string, phase Phase) (Evaluation, error) {
	if a.ID == "" || action == "" {
		return Evaluation{}, gatewayerr.Validation("agent evaluation requires a non-empty agent id and action", nil)
	}

	base := baseScoreFor(a.Perspective) + phaseModifier(phase)
	alignment := clamp01(base + metricAdjustment(a.Perspective, state))
	quality := clamp01(0.75 - 0.015*float64(len(state.AppliedActions)) + qualityAdjustment(a.Perspective, state))
	risk := clamp01(0.25 + riskAdjustment(a.Perspective, state))

	return Evaluation{
		AgentID:               a.ID,
		Action:                action,
		MakesProgress:         alignment > 0.5,
		ObjectiveAlignment:    alignment,
		ImplementationQuality: quality,
		RiskAssessment:        risk,
		Reasoning:             a.reasoning(state, alignment),
		SuggestedImprovements: a.suggestions(state),
	}, nil
}

// metricAdjustment nudges the alignment score by how the state's metrics
// compare to a neutral baseline, so the committee's opinion actually tracks
// the search instead of being a constant per perspective.
func metricAdjustment(p Perspective, state mcts.CodeState) float64 {
	switch p {
	case Performance:
		return (0.5 - state.Latency) * 0.1
	case Security:
		return 0
	case Maintainability:
		return -0.01 * float64(len(state.AppliedActions))
	case User:
		return (state.Relevance - 0.5) * 0.2
	case Architecture:
		return -0.005 * float64(len(state.AppliedActions))
	case Testing:
		return (state.Relevance - 0.5) * 0.1
	case Documentation:
		return 0
	default:
		return 0
	}
}

// qualityAdjustment nudges the implementation-quality score; maintainability
// and architecture perspectives track the state's relevance, while testing
// discounts each applied action on top of the per-action discount Evaluate
// applies to every perspective.
func qualityAdjustment(p Perspective, state mcts.CodeState) float64 {
	switch p {
	case Maintainability, Architecture:
		return (state.Relevance - 0.5) * 0.1
	case Testing:
		return -0.02 * float64(len(state.AppliedActions))
	default:
		return 0
	}
}

// riskAdjustment nudges the risk score; security and architecture
// perspectives treat a longer applied-action chain as a larger surface for
// regressions, while performance treats elevated latency as risk.
func riskAdjustment(p Perspective, state mcts.CodeState) float64 {
	switch p {
	case Security, Architecture:
		return 0.02 * float64(len(state.AppliedActions))
	case Performance:
		return state.Latency * 0.1
	default:
		return 0
	}
}

func (a *Agent) reasoning(state mcts.CodeState, score float64) string {
	switch a.Perspective {
	case Performance:
		return fmt.Sprintf("latency=%.3f memory=%.3f score=%.2f: performance trajectory assessed against baseline", state.Latency, state.Memory, score)
	case Security:
		return fmt.Sprintf("score=%.2f: no new attack surface detected across %d applied actions", score, len(state.AppliedActions))
	case Maintainability:
		return fmt.Sprintf("score=%.2f: action sequence length %d weighed against code clarity", score, len(state.AppliedActions))
	case User:
		return fmt.Sprintf("relevance=%.3f score=%.2f: outcome evaluated against user objective", state.Relevance, score)
	case Architecture:
		return fmt.Sprintf("score=%.2f: structural coherence across %d actions", score, len(state.AppliedActions))
	case Testing:
		return fmt.Sprintf("score=%.2f: testability impact of applied changes", score)
	case Documentation:
		return fmt.Sprintf("score=%.2f: documentation burden of applied changes", score)
	default:
		return fmt.Sprintf("score=%.2f", score)
	}
}

func (a *Agent) suggestions(state mcts.CodeState) []string {
	switch a.Perspective {
	case Performance:
		return []string{"profile hot paths", "reduce allocations in the critical path"}
	case Security:
		return []string{"review input validation on new code paths"}
	case Maintainability:
		return []string{"extract repeated logic into named helpers"}
	case User:
		return []string{"validate against the stated user objective"}
	case Architecture:
		return []string{"check module boundaries remain coherent"}
	case Testing:
		return []string{"add coverage for the newly applied actions"}
	case Documentation:
		return []string{"update docs for any changed public behavior"}
	default:
		return nil
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
