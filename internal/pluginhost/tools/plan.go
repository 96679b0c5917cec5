package tools

import (
	"context"
	"encoding/json"
	"time"

	"github.com/invopop/jsonschema"

	"github.com/cyrup-ai/sweetmcp-sub007/internal/committee"
	"github.com/cyrup-ai/sweetmcp-sub007/internal/gatewayerr"
	"github.com/cyrup-ai/sweetmcp-sub007/internal/mcts"
	"github.com/cyrup-ai/sweetmcp-sub007/internal/pluginhost"
)

// PlanOptimizeParams describes the state a planning run starts from and the
// baseline it measures improvement against, per spec.md §4.5's
// OptimizationSpec/CodeState inputs.
type PlanOptimizeParams struct {
	Latency         float64 `json:"latency" jsonschema:"required,description=current latency metric"`
	Memory          float64 `json:"memory" jsonschema:"required,description=current memory metric"`
	Relevance       float64 `json:"relevance" jsonschema:"required,description=current relevance score, 0..1"`
	BaselineLatency float64 `json:"baseline_latency" jsonschema:"required"`
	BaselineMemory  float64 `json:"baseline_memory" jsonschema:"required"`
	Objective       string  `json:"objective,omitempty" jsonschema:"description=free-text optimization goal, e.g. reduce latency"`
	MaxIterations   int     `json:"max_iterations,omitempty" jsonschema:"description=search budget, default 500"`
}

// PlanOptimize runs the committee-evaluated MCTS planner to completion and
// reports its best path, grounded on mcts.Tree.Run driven by a
// committee.Consensus evaluator, the same wiring spec.md §4.5 and §4.7
// describe as the planner's reward source.
type PlanOptimize struct {
	schema map[string]any
}

// NewPlanOptimize builds the plan_optimize tool.
func NewPlanOptimize() *PlanOptimize {
	reflector := jsonschema.Reflector{ExpandedStruct: true}
	raw, _ := json.Marshal(reflector.Reflect(&PlanOptimizeParams{}))
	var schema map[string]any
	_ = json.Unmarshal(raw, &schema)
	return &PlanOptimize{schema: schema}
}

func (p *PlanOptimize) Description() pluginhost.ToolDescription {
	return pluginhost.ToolDescription{
		Name:        "plan_optimize",
		Description: "Runs the committee-evaluated MCTS planner over a code-state snapshot and returns its best action sequence.",
		InputSchema: p.schema,
	}
}

func (p *PlanOptimize) Call(ctx context.Context, args json.RawMessage) (*pluginhost.Result, error) {
	var params PlanOptimizeParams
	if err := json.Unmarshal(args, &params); err != nil {
		return nil, gatewayerr.Validation("plan_optimize arguments must match schema", nil).Wrap(err)
	}

	spec := mcts.OptimizationSpec{
		BaselineMetrics: mcts.BaselineMetrics{Latency: params.BaselineLatency, Memory: params.BaselineMemory, Relevance: 1},
		UserObjective:   params.Objective,
	}
	root := mcts.CodeState{Latency: params.Latency, Memory: params.Memory, Relevance: params.Relevance}

	generator := mcts.NewActionGenerator(spec)
	consensus := committee.NewConsensus(committee.DefaultRubric(), committee.PhaseInitial)
	tree := mcts.NewTree(root, generator, consensus, 1.41421356)

	maxIter := params.MaxIterations
	if maxIter <= 0 {
		maxIter = 500
	}
	reason, err := tree.Run(ctx, mcts.TerminationConfig{MaxIterations: maxIter, MaxDuration: 5 * time.Second})
	if err != nil {
		return nil, gatewayerr.Internal("planning run failed", nil).Wrap(err)
	}

	// Tree.Run doesn't report how many iterations it actually completed
	// (only why it stopped), so Result.Iterations is left at the caller's
	// budget rather than a true count.
	result := mcts.BuildResult(tree, reason, maxIter)
	score := mcts.PerformanceScore(result.BestState, spec.BaselineMetrics)

	payload, err := json.Marshal(map[string]any{
		"termination_reason": string(result.TerminationReason),
		"best_path":           result.BestPath,
		"convergence_trend":   string(result.Analysis.ConvergenceTrend),
		"performance_score":   score,
		"node_count":          result.Analysis.TotalNodes,
		"max_depth":           result.Analysis.MaxDepth,
	})
	if err != nil {
		return nil, gatewayerr.Internal("failed to encode plan_optimize result", nil).Wrap(err)
	}
	return pluginhost.JSONResult(payload), nil
}
