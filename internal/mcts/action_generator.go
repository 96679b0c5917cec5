package mcts

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ActionGenerator produces the candidate action set for a given state,
// blending core, state-conditional, spec-conditional, and aggressive action
// sources, ported from original_source's
// cognitive/mcts/actions/action_generator.rs ActionGenerator, with a cache
// keyed on quantized state characteristics to avoid recomputing an
// identical action list for near-identical states.
type ActionGenerator struct {
	spec OptimizationSpec

	mu    sync.Mutex
	cache map[string][]string
}

// NewActionGenerator binds a generator to a fixed optimization spec.
func NewActionGenerator(spec OptimizationSpec) *ActionGenerator {
	return &ActionGenerator{spec: spec, cache: make(map[string][]string)}
}

// GetPossibleActions returns the action list for state, using a cache keyed
// on a 2-decimal quantization of (latency, memory, relevance).
func (g *ActionGenerator) GetPossibleActions(state CodeState) []string {
	key := fmt.Sprintf("l%.2f_m%.2f_r%.2f", state.Latency, state.Memory, state.Relevance)

	g.mu.Lock()
	if cached, ok := g.cache[key]; ok {
		g.mu.Unlock()
		return cached
	}
	g.mu.Unlock()

	actions := make([]string, 0, 20)
	actions = append(actions, g.coreActions()...)
	actions = append(actions, g.performanceSpecificActions(state)...)
	actions = append(actions, g.contextAwareActions(state)...)
	actions = append(actions, g.aggressiveActions(state)...)
	actions = g.prioritize(actions, state)

	g.mu.Lock()
	g.cache[key] = actions
	g.mu.Unlock()
	return actions
}

// prioritize orders actions by a score combining how well they address the
// state's current metric needs (+0.3 per metric the action is conditioned
// on matching) and how well they align with the user's stated objective
// keywords (+0.4), capped at 1.0.
func (g *ActionGenerator) prioritize(actions []string, state CodeState) []string {
	baseline := g.spec.BaselineMetrics
	needsLatency := state.Latency > baseline.Latency*1.1
	needsMemory := state.Memory > baseline.Memory*1.1
	needsRelevance := state.Relevance < baseline.Relevance*0.9
	objective := strings.ToLower(g.spec.UserObjective)

	scores := make(map[string]float64, len(actions))
	for _, a := range actions {
		var score float64
		if needsLatency && strings.Contains(a, "latency") {
			score += 0.3
		}
		if needsMemory && strings.Contains(a, "memory") {
			score += 0.3
		}
		if needsRelevance && (strings.Contains(a, "accuracy") || strings.Contains(a, "quality") || strings.Contains(a, "relevance")) {
			score += 0.3
		}
		if objective != "" && actionMatchesObjective(a, objective) {
			score += 0.4
		}
		scores[a] = clamp01(score)
	}

	ordered := append([]string(nil), actions...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return scores[ordered[i]] > scores[ordered[j]]
	})
	return ordered
}

func actionMatchesObjective(action, objective string) bool {
	for _, kw := range strings.Fields(strings.ReplaceAll(action, "_", " ")) {
		if len(kw) > 3 && strings.Contains(objective, kw) {
			return true
		}
	}
	return false
}

func (g *ActionGenerator) coreActions() []string {
	return []string{
		"optimize_memory_allocation",
		"reduce_computational_complexity",
		"improve_algorithm_efficiency",
		"parallelize_independent_work",
		"inline_critical_functions",
		"batch_operations",
		"add_strategic_caching",
		"optimize_data_structures",
		"reduce_lock_contention",
		"enable_simd_operations",
	}
}

func (g *ActionGenerator) performanceSpecificActions(state CodeState) []string {
	var actions []string
	baseline := g.spec.BaselineMetrics

	if state.Latency > baseline.Latency*1.1 {
		actions = append(actions,
			"aggressive_latency_optimization",
			"reduce_io_operations",
			"optimize_hot_paths",
			"implement_lazy_loading",
			"reduce_function_call_overhead",
		)
	}
	if state.Memory > baseline.Memory*1.1 {
		actions = append(actions,
			"aggressive_memory_optimization",
			"implement_object_pooling",
			"reduce_memory_fragmentation",
			"optimize_garbage_collection",
			"implement_memory_mapping",
		)
	}
	if state.Relevance < baseline.Relevance*0.9 {
		actions = append(actions,
			"improve_algorithm_accuracy",
			"enhance_data_quality",
			"refine_heuristics",
			"implement_adaptive_algorithms",
			"improve_feature_selection",
		)
	}
	return actions
}

func (g *ActionGenerator) contextAwareActions(state CodeState) []string {
	var actions []string
	if g.spec.Restrictions.MaxLatencyIncrease < 10.0 {
		actions = append(actions,
			"micro_optimize_critical_sections",
			"eliminate_unnecessary_allocations",
			"optimize_branch_prediction",
		)
	}
	return actions
}

// aggressiveActions supplements the action space once the state's overall
// performance score has fallen below 0.5, escalating to a more drastic set
// once it falls below 0.3 — exploitation of the remaining search budget
// takes over from broad exploration as the state keeps underperforming.
func (g *ActionGenerator) aggressiveActions(state CodeState) []string {
	score := PerformanceScore(state, g.spec.BaselineMetrics)
	if score >= 0.5 {
		return nil
	}
	actions := []string{
		"restructure_critical_path",
		"adopt_alternate_data_layout",
		"apply_speculative_precomputation",
	}
	if score < 0.3 {
		actions = append(actions,
			"rewrite_core_algorithm",
			"replace_data_model",
			"drop_non_essential_features",
		)
	}
	return actions
}
