package pluginhost

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyrup-ai/sweetmcp-sub007/internal/gatewayerr"
)

type stubTool struct {
	name string
	fn   func(ctx context.Context, args json.RawMessage) (*Result, error)
}

func (s stubTool) Description() ToolDescription { return ToolDescription{Name: s.name} }
func (s stubTool) Call(ctx context.Context, args json.RawMessage) (*Result, error) {
	return s.fn(ctx, args)
}

func TestDispatcher_CallTool_UnknownNameIsNotFound(t *testing.T) {
	d := NewDispatcher(NewRegistry(), NewSandbox(time.Second))
	_, err := d.CallTool(context.Background(), "missing", nil)
	require.Error(t, err)
	ge, ok := gatewayerr.As(err)
	require.True(t, ok)
	assert.Equal(t, gatewayerr.KindNotFound, ge.Kind)
}

func TestDispatcher_CallTool_DispatchesToRegisteredTool(t *testing.T) {
	registry := NewRegistry()
	registry.Register(stubTool{name: "echo", fn: func(ctx context.Context, args json.RawMessage) (*Result, error) {
		return TextResult("hi"), nil
	}})
	d := NewDispatcher(registry, NewSandbox(time.Second))

	result, err := d.CallTool(context.Background(), "echo", nil)
	require.NoError(t, err)
	require.Len(t, result.Content, 1)
	textContent, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	assert.Equal(t, "hi", textContent.Text)
}

func TestSandbox_Run_RecoversPanic(t *testing.T) {
	s := NewSandbox(time.Second)
	tool := stubTool{name: "boom", fn: func(ctx context.Context, args json.RawMessage) (*Result, error) {
		panic("kaboom")
	}}

	_, err := s.Run(context.Background(), tool, nil)
	require.Error(t, err)
	ge, ok := gatewayerr.As(err)
	require.True(t, ok)
	assert.Equal(t, gatewayerr.KindSandbox, ge.Kind)
}

func TestSandbox_Run_TimesOutSlowTool(t *testing.T) {
	s := NewSandbox(10 * time.Millisecond)
	tool := stubTool{name: "slow", fn: func(ctx context.Context, args json.RawMessage) (*Result, error) {
		// Ignores ctx cancellation so the sandbox's own wall-time branch is
		// what fires, deterministically, rather than racing the tool's own
		// cancellation handling.
		time.Sleep(200 * time.Millisecond)
		return TextResult("too slow"), nil
	}}

	_, err := s.Run(context.Background(), tool, nil)
	require.Error(t, err)
	ge, ok := gatewayerr.As(err)
	require.True(t, ok)
	assert.Equal(t, gatewayerr.KindTimeout, ge.Kind)
}

func TestRegistry_ListIsSortedByName(t *testing.T) {
	r := NewRegistry()
	r.Register(stubTool{name: "zebra"})
	r.Register(stubTool{name: "apple"})

	descs := r.List()
	require.Len(t, descs, 2)
	assert.Equal(t, "apple", descs[0].Name)
	assert.Equal(t, "zebra", descs[1].Name)
}

func TestRegistry_Unregister(t *testing.T) {
	r := NewRegistry()
	r.Register(stubTool{name: "echo"})
	r.Unregister("echo")

	_, err := r.Get("echo")
	assert.Error(t, err)
}
