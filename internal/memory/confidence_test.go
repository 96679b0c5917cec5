package memory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConfidenceModel_DecayAtZeroAgeIsIdentity(t *testing.T) {
	m := NewConfidenceModel()
	assert.Equal(t, 0.9, m.Decay(0.9, 0))
}

func TestConfidenceModel_DecayNeverDropsBelowVeryLowFloor(t *testing.T) {
	m := NewConfidenceModel()
	decayed := m.Decay(0.9, 365*24*time.Hour)
	assert.GreaterOrEqual(t, decayed, VeryLow.Weight())
}

func TestConfidenceModel_DecayIsMonotonicallyDecreasingWithAge(t *testing.T) {
	m := NewConfidenceModel()
	at10 := m.Decay(0.9, 10*24*time.Hour)
	at20 := m.Decay(0.9, 20*24*time.Hour)
	assert.Greater(t, at10, at20)
}

func TestConfidenceModel_ReinforceMovesTowardOne(t *testing.T) {
	m := NewConfidenceModel()
	got := m.Reinforce(0.5, 0.5)
	assert.Equal(t, 0.75, got)
}

func TestConfidenceModel_ReinforceClampsAtOne(t *testing.T) {
	m := NewConfidenceModel()
	assert.Equal(t, 1.0, m.Reinforce(0.9, 5))
}

func TestConfidenceModel_CombineWeightsFactorsProportionally(t *testing.T) {
	m := NewConfidenceModel()
	got := m.Combine([]Factor{{Value: 1.0, Weight: 3}, {Value: 0.0, Weight: 1}})
	assert.InDelta(t, 0.75, got, 0.0001)
}

func TestConfidenceModel_CombineEmptyIsZero(t *testing.T) {
	m := NewConfidenceModel()
	assert.Equal(t, 0.0, m.Combine(nil))
}

func TestConfidenceModel_ApplyDecay(t *testing.T) {
	m := NewConfidenceModel()
	created := time.Unix(0, 0)
	item := &Item{Confidence: VeryHigh, CreatedAt: created}

	unchanged := m.ApplyDecay(item, created)
	assert.Equal(t, VeryHigh, unchanged)

	muchLater := m.ApplyDecay(item, created.Add(365*24*time.Hour))
	assert.LessOrEqual(t, muchLater, VeryHigh)
}
