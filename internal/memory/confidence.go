package memory

import (
	"math"
	"time"
)

// ConfidenceModel implements the additive/decay/reinforcement arithmetic from
// spec.md §4.4, grounded on the decay-rate-per-day formulation in
// original_source's memory/semantic/confidence.rs.
type ConfidenceModel struct {
	// DecayRatePerDay is the exponential decay constant applied to a
	// confidence weight as an item ages.
	DecayRatePerDay float64
}

// NewConfidenceModel returns a model with the original source's default
// decay rate (roughly a 30-day half-life).
func NewConfidenceModel() *ConfidenceModel {
	return &ConfidenceModel{DecayRatePerDay: math.Ln2 / 30}
}

// Factor is one weighted input (a 0..1 score with its own weight) to Combine.
type Factor struct {
	Value  float64
	Weight float64
}

// Combine additively blends weighted factors into a single clamped
// confidence weight: sum(value*weight) / sum(weight).
func (m *ConfidenceModel) Combine(factors []Factor) float64 {
	var sum, totalWeight float64
	for _, f := range factors {
		sum += f.Value * f.Weight
		totalWeight += f.Weight
	}
	if totalWeight == 0 {
		return 0
	}
	return clamp01(sum / totalWeight)
}

// Decay applies exponential decay to a confidence weight over the given age.
// Decay(c, 0) = c; Decay(c, +Inf) approaches VeryLow's weight, never below it,
// matching the testable property in spec.md §8.
func (m *ConfidenceModel) Decay(weight float64, age time.Duration) float64 {
	days := age.Hours() / 24
	if days <= 0 {
		return clamp01(weight)
	}
	floor := VeryLow.Weight()
	decayed := floor + (weight-floor)*math.Exp(-m.DecayRatePerDay*days)
	return clamp01(decayed)
}

// Reinforce boosts a confidence weight toward 1 by a reinforcement strength:
// new = old + strength*(1 - old).
func (m *ConfidenceModel) Reinforce(weight, strength float64) float64 {
	return clamp01(weight + strength*(1-weight))
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

// ApplyDecay returns the item's confidence level decayed for its current age,
// evaluated relative to `now`.
func (m *ConfidenceModel) ApplyDecay(item *Item, now time.Time) Confidence {
	age := now.Sub(item.CreatedAt)
	decayed := m.Decay(item.Confidence.Weight(), age)
	return FromWeight(decayed)
}
