package gateway

import (
	"context"
	"encoding/json"

	"github.com/cyrup-ai/sweetmcp-sub007/internal/gatewayerr"
)

// ToolCaller dispatches a named tool call, implemented by the
// httpserver/routes adapter over pluginhost.Dispatcher. Kept as a narrow interface here so gateway never
// imports pluginhost directly (pluginhost has no reason to import gateway
// either, but this keeps the dependency direction explicit and one-way).
type ToolCaller interface {
	CallTool(ctx context.Context, name string, args json.RawMessage) (ToolResult, error)
}

// ToolLister optionally supplements a ToolCaller with a "tools/list"
// listing, implemented by the same httpserver/routes adapter. A ToolCaller that doesn't
// implement it just never answers "tools/list" locally.
type ToolLister interface {
	ListTools(ctx context.Context) []ToolDescription
}

// ToolDescription mirrors pluginhost.ToolDescription's wire shape without
// requiring an import of the pluginhost package.
type ToolDescription struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"inputSchema"`
}

// ToolResult mirrors pluginhost.Result's wire shape without requiring an
// import of the pluginhost package.
type ToolResult struct {
	Content []json.RawMessage `json:"content"`
	IsError bool               `json:"isError"`
}

// ErrNoLocalRoute is returned by Route when no local tool claims the
// requested method, so the caller (the /messages handler) can fall through
// to peer/bridge forwarding instead of failing the request outright.
var ErrNoLocalRoute = gatewayerr.NotFound("no local route for method", nil)

// Router dispatches a canonical envelope to the local tool host, supporting
// both the explicit "call_tool" wrapper form and direct method-name
// dispatch (a bare method that happens to match a registered tool name),
// per spec.md §4.3 and the canonical-echo example in §7.
type Router struct {
	tools ToolCaller
}

// NewRouter binds a Router to a tool caller.
func NewRouter(tools ToolCaller) *Router {
	return &Router{tools: tools}
}

type callToolParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// Route dispatches env to the local tool host and returns a canonical
// Response. It returns ErrNoLocalRoute when the method is neither
// "call_tool" nor a direct tool name, so the bridge can forward to a peer.
func (r *Router) Route(ctx context.Context, env Envelope) (Response, error) {
	if env.Method == "tools/list" {
		return r.routeToolsList(ctx, env)
	}

	var (
		toolName string
		args     json.RawMessage
	)

	if env.Method == "call_tool" {
		var params callToolParams
		if err := json.Unmarshal(env.Params, &params); err != nil {
			return Response{}, gatewayerr.Validation("call_tool params must have name/arguments", nil).Wrap(err)
		}
		toolName, args = params.Name, params.Arguments
	} else {
		toolName, args = env.Method, env.Params
	}

	result, err := r.tools.CallTool(ctx, toolName, args)
	if err != nil {
		if ge, ok := gatewayerr.As(err); ok && ge.Kind == gatewayerr.KindNotFound {
			return Response{}, ErrNoLocalRoute
		}
		return Response{}, err
	}

	resultJSON, err := json.Marshal(result)
	if err != nil {
		return Response{}, gatewayerr.Internal("failed to encode tool result", nil).Wrap(err)
	}
	var decoded any
	if err := json.Unmarshal(resultJSON, &decoded); err != nil {
		return Response{}, gatewayerr.Internal("failed to decode tool result", nil).Wrap(err)
	}

	return NewResultResponse(env.ID, decoded), nil
}

// routeToolsList answers "tools/list" from a ToolLister, or falls back to
// ErrNoLocalRoute (letting a peer/default bridge answer instead) when the
// bound ToolCaller doesn't implement it.
func (r *Router) routeToolsList(ctx context.Context, env Envelope) (Response, error) {
	lister, ok := r.tools.(ToolLister)
	if !ok {
		return Response{}, ErrNoLocalRoute
	}
	return NewResultResponse(env.ID, map[string]any{"tools": lister.ListTools(ctx)}), nil
}
