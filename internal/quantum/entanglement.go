package quantum

import "sync"

// DefaultDensityCap bounds how many entanglement edges a single node may
// hold, per spec.md §4.8's "creation under a configured density cap" —
// without it, a densely-connected region of the tree could force every
// measurement to fan out across the whole graph.
const DefaultDensityCap = 8

// EntanglementGraph tracks bidirectional entanglement edges between quantum
// node states, keyed by node id. Creation, pruning, and weight
// redistribution operations mirror original_source's
// cognitive/quantum_mcts/entanglement/engine operations, simplified to the
// adjacency this module needs without the Rust implementation's SIMD
// batching.
type EntanglementGraph struct {
	mu         sync.RWMutex
	nodes      map[string]*NodeState
	edges      map[string]map[string]float64 // nodeID -> peerID -> strength
	densityCap int
}

// NewEntanglementGraph returns an empty graph with DefaultDensityCap.
func NewEntanglementGraph() *EntanglementGraph {
	return NewEntanglementGraphWithCap(DefaultDensityCap)
}

// NewEntanglementGraphWithCap returns an empty graph enforcing a custom
// per-node entanglement density cap.
func NewEntanglementGraphWithCap(densityCap int) *EntanglementGraph {
	if densityCap <= 0 {
		densityCap = DefaultDensityCap
	}
	return &EntanglementGraph{
		nodes:      make(map[string]*NodeState),
		edges:      make(map[string]map[string]float64),
		densityCap: densityCap,
	}
}

// Register adds or replaces the node state tracked under id.
func (g *EntanglementGraph) Register(id string, state *NodeState) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nodes[id] = state
}

// Entangle creates a bidirectional entanglement edge of the given strength
// between two registered node ids. If either node is already at the
// configured density cap and the edge would be new (not an update to an
// existing edge), the call is a no-op and reports false.
func (g *EntanglementGraph) Entangle(a, b string, strength float64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	_, aExists := g.edges[a][b]
	if !aExists {
		if len(g.edges[a]) >= g.densityCap || len(g.edges[b]) >= g.densityCap {
			return false
		}
	}

	if g.edges[a] == nil {
		g.edges[a] = make(map[string]float64)
	}
	if g.edges[b] == nil {
		g.edges[b] = make(map[string]float64)
	}
	g.edges[a][b] = strength
	g.edges[b][a] = strength

	if n, ok := g.nodes[a]; ok {
		n.AddEntanglement(b)
	}
	if n, ok := g.nodes[b]; ok {
		n.AddEntanglement(a)
	}
	return true
}

// Prune removes every entanglement edge below minStrength, the periodic
// cleanup that keeps the graph from accumulating negligible connections,
// and returns the number of edges removed.
func (g *EntanglementGraph) Prune(minStrength float64) int {
	g.mu.Lock()
	defer g.mu.Unlock()

	pruned := 0
	for a, peers := range g.edges {
		for b, strength := range peers {
			if strength < minStrength {
				delete(peers, b)
				if n, ok := g.nodes[a]; ok {
					n.RemoveEntanglement(b)
				}
				// Each edge is stored once per direction; count it once.
				if a < b {
					pruned++
				}
			}
		}
	}
	return pruned
}

// Redistribute spreads a node's total entanglement strength evenly across
// its current peers, used after a peer is removed so the remaining
// connections absorb its share rather than leaving the total strength
// diminished.
func (g *EntanglementGraph) Redistribute(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	peers := g.edges[id]
	if len(peers) == 0 {
		return
	}
	var total float64
	for _, s := range peers {
		total += s
	}
	share := total / float64(len(peers))
	for peer := range peers {
		peers[peer] = share
		if g.edges[peer] != nil {
			g.edges[peer][id] = share
		}
	}
}

// Neighbors returns the entangled peer ids and their strengths for a node.
func (g *EntanglementGraph) Neighbors(id string) map[string]float64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make(map[string]float64, len(g.edges[id]))
	for peer, strength := range g.edges[id] {
		out[peer] = strength
	}
	return out
}

// Degree returns the number of entanglement edges a node currently holds.
func (g *EntanglementGraph) Degree(id string) int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.edges[id])
}
