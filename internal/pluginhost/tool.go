// Package pluginhost implements the sandboxed tool-host surface from
// spec.md §4.3: tool registration, JSON-Schema-described parameters,
// dispatch, and sandboxed calls bounded by wall-clock time. No CPU or memory
// limit is enforced on a call.
package pluginhost

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Result is the outcome of a tool invocation. It is the same
// mcp.CallToolResult the teacher's MCP servers return from every
// mcp.AddTool handler (mcp_route.go's RegisterTools call sites), so a
// Dispatcher-hosted tool's result needs no translation if it's ever mounted
// directly on an mcp.Server instead of dispatched through the Sandbox.
type Result = mcp.CallToolResult

// ToolDescription is the externally visible schema of a tool: the SDK's own
// mcp.Tool registration type, generated via invopop/jsonschema from a
// tool's parameter struct, matching the teacher's dynamic tools/list shape.
type ToolDescription = mcp.Tool

// Tool is the dispatch contract every plugin implements.
type Tool interface {
	Description() ToolDescription
	Call(ctx context.Context, args json.RawMessage) (*Result, error)
}

// TextResult is a convenience constructor for a single-text-block result.
func TextResult(text string) *Result {
	return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: text}}}
}

// ErrorResult is a convenience constructor for a single-text-block error
// result (IsError=true), matching how MCP surfaces tool-level failures
// distinctly from transport-level errors.
func ErrorResult(message string) *Result {
	return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: message}}, IsError: true}
}

// JSONResult wraps an already-marshaled JSON payload as a single text
// content block, used by tools (memory, planner) whose natural result shape
// is structured data rather than prose.
func JSONResult(payload json.RawMessage) *Result {
	return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: string(payload)}}}
}
