package gateway

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyrup-ai/sweetmcp-sub007/internal/gatewayerr"
)

type fakeToolCaller struct {
	results map[string]ToolResult
}

func (f fakeToolCaller) CallTool(_ context.Context, name string, _ json.RawMessage) (ToolResult, error) {
	if r, ok := f.results[name]; ok {
		return r, nil
	}
	return ToolResult{}, gatewayerr.NotFound("tool not registered", name)
}

func TestRouter_Route_DirectMethodDispatch(t *testing.T) {
	caller := fakeToolCaller{results: map[string]ToolResult{
		"echo": {Content: []json.RawMessage{json.RawMessage(`{"text":"hi"}`)}},
	}}
	router := NewRouter(caller)

	resp, err := router.Route(context.Background(), Envelope{Method: "echo", ID: json.RawMessage(`1`)})
	require.NoError(t, err)
	assert.Nil(t, resp.Error)
}

func TestRouter_Route_CallToolWrapperForm(t *testing.T) {
	caller := fakeToolCaller{results: map[string]ToolResult{
		"echo": {Content: []json.RawMessage{json.RawMessage(`{"text":"hi"}`)}},
	}}
	router := NewRouter(caller)

	params, _ := json.Marshal(callToolParams{Name: "echo", Arguments: json.RawMessage(`{"message":"hi"}`)})
	resp, err := router.Route(context.Background(), Envelope{Method: "call_tool", Params: params, ID: json.RawMessage(`2`)})
	require.NoError(t, err)
	assert.Nil(t, resp.Error)
}

func TestRouter_Route_UnknownMethodReturnsErrNoLocalRoute(t *testing.T) {
	router := NewRouter(fakeToolCaller{results: map[string]ToolResult{}})

	_, err := router.Route(context.Background(), Envelope{Method: "nonexistent_method"})
	require.Error(t, err)
	assert.Same(t, ErrNoLocalRoute, err)
}

func TestRouter_Route_MalformedCallToolParams(t *testing.T) {
	router := NewRouter(fakeToolCaller{})
	_, err := router.Route(context.Background(), Envelope{Method: "call_tool", Params: json.RawMessage(`not json`)})
	require.Error(t, err)
	ge, ok := gatewayerr.As(err)
	require.True(t, ok)
	assert.Equal(t, gatewayerr.KindValidation, ge.Kind)
}

type fakeToolLister struct {
	fakeToolCaller
	descriptions []ToolDescription
}

func (f fakeToolLister) ListTools(_ context.Context) []ToolDescription {
	return f.descriptions
}

func TestRouter_Route_ToolsListReturnsListerDescriptions(t *testing.T) {
	lister := fakeToolLister{descriptions: []ToolDescription{{Name: "echo", Description: "echoes input"}}}
	router := NewRouter(lister)

	resp, err := router.Route(context.Background(), Envelope{Method: "tools/list", ID: json.RawMessage(`3`)})
	require.NoError(t, err)
	require.Nil(t, resp.Error)

	result, ok := resp.Result.(map[string]any)
	require.True(t, ok)
	tools, ok := result["tools"].([]ToolDescription)
	require.True(t, ok)
	require.Len(t, tools, 1)
	assert.Equal(t, "echo", tools[0].Name)
}

func TestRouter_Route_ToolsListWithoutListerIsNoLocalRoute(t *testing.T) {
	router := NewRouter(fakeToolCaller{results: map[string]ToolResult{}})

	_, err := router.Route(context.Background(), Envelope{Method: "tools/list"})
	require.Error(t, err)
	assert.Same(t, ErrNoLocalRoute, err)
}
