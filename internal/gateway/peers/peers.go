// Package peers implements the gateway's peer-forwarding registry: a
// YAML-configured list of sibling gateway nodes the bridge can forward to
// when a method isn't locally dispatchable, each guarded by its own
// circuit breaker. Grounded on
// mcp-tools/internal/infrastructure/mcpprovider's Config/LoadConfig,
// generalized from "one external MCP provider" to N peer gateway nodes.
package peers

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cyrup-ai/sweetmcp-sub007/internal/gateway"
	"github.com/cyrup-ai/sweetmcp-sub007/internal/gatewayerr"
)

// Peer describes one sibling gateway node this node can forward to.
type Peer struct {
	Name     string   `yaml:"name"`
	Endpoint string   `yaml:"endpoint"`
	Enabled  bool     `yaml:"enabled"`
	Timeout  string   `yaml:"timeout"`
	Methods  []string `yaml:"methods,omitempty"` // methods this peer handles; empty = any
}

// TimeoutDuration parses Timeout, defaulting to 5s when unset or invalid.
func (p Peer) TimeoutDuration() time.Duration {
	if p.Timeout == "" {
		return 5 * time.Second
	}
	d, err := time.ParseDuration(p.Timeout)
	if err != nil {
		return 5 * time.Second
	}
	return d
}

// Config is the top-level peers.yaml shape.
type Config struct {
	Peers []Peer `yaml:"peers"`
}

// LoadConfig reads and parses a peers YAML file, expanding environment
// variables in both the path and the file content, mirroring
// mcpprovider.LoadConfig.
func LoadConfig(path string) (*Config, error) {
	path = os.ExpandEnv(path)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, gatewayerr.Internal("failed to read peers config", path).Wrap(err)
	}

	var cfg Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, gatewayerr.Internal("failed to parse peers config", path).Wrap(err)
	}
	return &cfg, nil
}

// Registry holds one gateway.Bridge per enabled peer, keyed by name, each
// wrapping its own circuit breaker (constructed inside gateway.NewBridge).
type Registry struct {
	bridges map[string]*gateway.Bridge
	byMethod map[string]string // method -> peer name, for peers that declare Methods
}

// NewRegistry builds bridges for every enabled peer in cfg.
func NewRegistry(cfg *Config, client *http.Client) *Registry {
	r := &Registry{
		bridges:  make(map[string]*gateway.Bridge),
		byMethod: make(map[string]string),
	}
	for _, p := range cfg.Peers {
		if !p.Enabled {
			continue
		}
		downstream := &gateway.HTTPDownstream{Client: client, Base: p.Endpoint}
		r.bridges[p.Name] = gateway.NewBridge(downstream, p.TimeoutDuration())
		for _, m := range p.Methods {
			r.byMethod[m] = p.Name
		}
	}
	return r
}

// BridgeFor returns the bridge for a named peer.
func (r *Registry) BridgeFor(name string) (*gateway.Bridge, error) {
	b, ok := r.bridges[name]
	if !ok {
		return nil, gatewayerr.NotFound("unknown peer", name)
	}
	return b, nil
}

// RouteFor resolves which peer (if any) declares ownership of method,
// returning its bridge or a not-found error when no peer claims it.
func (r *Registry) RouteFor(method string) (*gateway.Bridge, error) {
	name, ok := r.byMethod[method]
	if !ok {
		return nil, gatewayerr.NotFound("no peer declares this method", method)
	}
	return r.BridgeFor(name)
}

// Names returns every enabled peer name, mostly for health reporting. The
// order of the returned names is not defined.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.bridges))
	for name := range r.bridges {
		names = append(names, name)
	}
	return names
}

// String renders a peer for log/debug output.
func (p Peer) String() string {
	return fmt.Sprintf("%s(%s)", p.Name, p.Endpoint)
}
