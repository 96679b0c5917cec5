package quantum

// NetworkHealth summarizes the entanglement graph's overall coherence,
// used to decide whether the quantum layer should keep running or fall
// back to classical committee evaluation for the remainder of a search.
type NetworkHealth struct {
	TotalNodes        int
	AverageCoherence  float64
	AverageDegree     float64
	DecoherentNodes   int // nodes with coherence below the health threshold
}

// AnalyzeNetwork computes a NetworkHealth snapshot over every registered
// node in the graph.
func (g *EntanglementGraph) AnalyzeNetwork(coherenceThreshold float64) NetworkHealth {
	g.mu.RLock()
	defer g.mu.RUnlock()

	health := NetworkHealth{TotalNodes: len(g.nodes)}
	if len(g.nodes) == 0 {
		return health
	}

	var coherenceSum float64
	var degreeSum int
	for id, n := range g.nodes {
		coherence := n.Coherence()
		coherenceSum += coherence
		degreeSum += len(g.edges[id])
		if coherence < coherenceThreshold {
			health.DecoherentNodes++
		}
	}

	health.AverageCoherence = coherenceSum / float64(len(g.nodes))
	health.AverageDegree = float64(degreeSum) / float64(len(g.nodes))
	return health
}

// ResolutionPlan is a recommended remediation when network health degrades:
// which nodes to reset and whether to fall back to classical evaluation
// entirely.
type ResolutionPlan struct {
	NodesToReset   []string
	FallbackToClassical bool
}

// PlanResolution inspects every node's coherence and proposes a reset list.
// If more than half the network has decohered, it recommends falling back
// to classical (non-quantum) committee evaluation rather than resetting
// piecemeal.
func (g *EntanglementGraph) PlanResolution(coherenceThreshold float64) ResolutionPlan {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var toReset []string
	for id, n := range g.nodes {
		if n.Coherence() < coherenceThreshold {
			toReset = append(toReset, id)
		}
	}

	plan := ResolutionPlan{NodesToReset: toReset}
	if len(g.nodes) > 0 && float64(len(toReset)) > float64(len(g.nodes))/2 {
		plan.FallbackToClassical = true
	}
	return plan
}
