package pluginhost

import (
	"sort"
	"sync"

	"github.com/cyrup-ai/sweetmcp-sub007/internal/gatewayerr"
)

// Registry holds every registered tool, keyed by name, mirroring the
// teacher's MCPRoute tool wiring (mcp_route.go's NewMCPRoute constructor)
// generalized from "a fixed set wired at startup" to a mutable registry
// plugins can join and leave.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

// NewRegistry returns an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register adds a tool under its own declared name. Re-registering the same
// name overwrites the previous entry, so hot-reloading a tool's
// implementation doesn't require a restart.
func (r *Registry) Register(tool Tool) {
	name := tool.Description().Name
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[name] = tool
}

// Unregister removes a tool by name.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tools, name)
}

// Get looks up a tool by name.
func (r *Registry) Get(name string) (Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tool, ok := r.tools[name]
	if !ok {
		return nil, gatewayerr.NotFound("tool not found", name)
	}
	return tool, nil
}

// List returns every registered tool's description, sorted by name for a
// stable tools/list response.
func (r *Registry) List() []ToolDescription {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]ToolDescription, 0, len(r.tools))
	for _, t := range r.tools {
		out = append(out, t.Description())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Len reports the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}
