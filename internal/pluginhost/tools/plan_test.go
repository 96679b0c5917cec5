package tools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanOptimize_ReturnsNonEmptyBestPath(t *testing.T) {
	tool := NewPlanOptimize()
	args, _ := json.Marshal(PlanOptimizeParams{
		Latency: 0.8, Memory: 0.8, Relevance: 0.4,
		BaselineLatency: 0.3, BaselineMemory: 0.3,
		Objective:     "reduce latency and memory",
		MaxIterations: 30,
	})

	result, err := tool.Call(context.Background(), args)
	require.NoError(t, err)
	require.Len(t, result.Content, 1)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(result.Content[0].(*mcp.TextContent).Text), &decoded))
	assert.NotEmpty(t, decoded["termination_reason"])
	assert.Contains(t, decoded, "best_path")
	assert.Contains(t, decoded, "performance_score")
	assert.Contains(t, decoded, "convergence_trend")
}

func TestPlanOptimize_DefaultsMaxIterations(t *testing.T) {
	tool := NewPlanOptimize()
	args, _ := json.Marshal(PlanOptimizeParams{Latency: 0.5, Memory: 0.5, Relevance: 0.5})

	result, err := tool.Call(context.Background(), args)
	require.NoError(t, err)
	assert.NotEmpty(t, result.Content)
}

func TestPlanOptimize_MalformedArgumentsReturnValidationError(t *testing.T) {
	tool := NewPlanOptimize()
	_, err := tool.Call(context.Background(), json.RawMessage(`not json`))
	assert.Error(t, err)
}

func TestPlanOptimize_Description_NamesItself(t *testing.T) {
	tool := NewPlanOptimize()
	assert.Equal(t, "plan_optimize", tool.Description().Name)
}
