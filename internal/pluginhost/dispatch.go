package pluginhost

import (
	"context"
	"encoding/json"
)

// Dispatcher binds a Registry and Sandbox together for the call_tool
// operation, matching the teacher's serveMCP handler's tool dispatch branch.
type Dispatcher struct {
	registry *Registry
	sandbox  *Sandbox
}

// NewDispatcher builds a Dispatcher over a registry and sandbox.
func NewDispatcher(registry *Registry, sandbox *Sandbox) *Dispatcher {
	return &Dispatcher{registry: registry, sandbox: sandbox}
}

// CallTool looks up a tool by name and executes it under the sandbox.
func (d *Dispatcher) CallTool(ctx context.Context, name string, args json.RawMessage) (*Result, error) {
	tool, err := d.registry.Get(name)
	if err != nil {
		return nil, err
	}
	return d.sandbox.Run(ctx, tool, args)
}

// ListTools returns every registered tool's description.
func (d *Dispatcher) ListTools() []ToolDescription {
	return d.registry.List()
}
