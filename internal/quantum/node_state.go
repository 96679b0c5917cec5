// Package quantum implements the optional quantum-inspired amplitude layer
// from spec.md §4.8: complex amplitude nodes, an entanglement graph,
// decoherence, amplitude amplification, and measurement. Grounded on
// original_source's cognitive/quantum_mcts/node_state/core.rs.
package quantum

import (
	"math"
	"math/cmplx"

	"github.com/cyrup-ai/sweetmcp-sub007/internal/mcts"
)

const tau = 2 * math.Pi

// DefaultSuperpositionSize is the number of basis amplitudes a new node
// state carries when none is requested, mirroring QuantumNodeState::new's
// default superposition size of 4 candidate improvements.
const DefaultSuperpositionSize = 4

// NodeState is the quantum-augmented counterpart of mcts.CodeState: a
// classical state plus a superposition of amplitudes over candidate
// improvements, a phase, a decoherence factor, and a list of entangled
// node ids, mirroring QuantumNodeState/SuperpositionState.
type NodeState struct {
	Classical     mcts.CodeState
	Superposition []complex128
	Phase         float64
	Decoherence   float64
	Entanglements []string
}

// NewNodeState creates a quantum state at maximal coherence with a
// uniform superposition of DefaultSuperpositionSize basis amplitudes,
// normalized so total probability is 1, at phase 0.
func NewNodeState(classical mcts.CodeState) *NodeState {
	return NewNodeStateWithSize(classical, DefaultSuperpositionSize)
}

// NewNodeStateWithSize creates a quantum state with a custom superposition
// size: each basis amplitude starts as an equal real weight so the total
// probability (sum of |amp|^2 across the vector) is 1.
func NewNodeStateWithSize(classical mcts.CodeState, size int) *NodeState {
	if size <= 0 {
		size = DefaultSuperpositionSize
	}
	weight := complex(1/math.Sqrt(float64(size)), 0)
	superposition := make([]complex128, size)
	for i := range superposition {
		superposition[i] = weight
	}
	return &NodeState{
		Classical:     classical,
		Superposition: superposition,
		Phase:         0,
		Decoherence:   0,
		Entanglements: make([]string, 0, 16),
	}
}

// EvolvePhase advances the phase by delta, normalized to [0, 2π).
func (n *NodeState) EvolvePhase(delta float64) {
	n.Phase = normalizePhase(n.Phase + delta)
}

// SetPhase sets the phase directly, normalized to [0, 2π).
func (n *NodeState) SetPhase(phase float64) {
	n.Phase = normalizePhase(phase)
}

func normalizePhase(phase float64) float64 {
	normalized := math.Mod(phase, tau)
	if normalized < 0 {
		normalized += tau
	}
	return normalized
}

// UpdateDecoherence adds delta to the decoherence factor, clamped to [0,1].
func (n *NodeState) UpdateDecoherence(delta float64) {
	n.Decoherence = clamp01(n.Decoherence + delta)
}

// SetDecoherence sets the decoherence factor directly, clamped to [0,1].
func (n *NodeState) SetDecoherence(d float64) {
	n.Decoherence = clamp01(d)
}

// DecayCoherence applies exponential decoherence decay over an elapsed time
// delta at the given decay rate: decoherence moves toward 1 following
// 1 - (1-decoherence)*exp(-rate*dt).
func (n *NodeState) DecayCoherence(decayRate, timeDelta float64) {
	decayFactor := math.Exp(-decayRate * timeDelta)
	n.Decoherence = clamp01(1 - (1-n.Decoherence)*decayFactor)
}

// IsCoherent reports whether decoherence is below threshold.
func (n *NodeState) IsCoherent(threshold float64) bool { return n.Decoherence < threshold }

// Coherence returns 1 - decoherence.
func (n *NodeState) Coherence() float64 { return 1 - n.Decoherence }

// ApplyAmplitude multiplies every basis amplitude by the current phase
// factor e^(i*phase), the quantum rotation an action application
// corresponds to.
func (n *NodeState) ApplyAmplitude() {
	rotation := cmplx.Exp(complex(0, n.Phase))
	for i, amp := range n.Superposition {
		n.Superposition[i] = amp * rotation
	}
}

// Probability returns the sum of |amp|^2 across the superposition, the
// Born-rule probability weight before decoherence attenuation.
func (n *NodeState) Probability() float64 {
	var sum float64
	for _, amp := range n.Superposition {
		sum += real(amp)*real(amp) + imag(amp)*imag(amp)
	}
	return sum
}

// AddEntanglement records an entangled node id if not already present.
func (n *NodeState) AddEntanglement(nodeID string) {
	for _, id := range n.Entanglements {
		if id == nodeID {
			return
		}
	}
	n.Entanglements = append(n.Entanglements, nodeID)
}

// RemoveEntanglement drops an entangled node id if present.
func (n *NodeState) RemoveEntanglement(nodeID string) {
	for i, id := range n.Entanglements {
		if id == nodeID {
			n.Entanglements = append(n.Entanglements[:i], n.Entanglements[i+1:]...)
			return
		}
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
