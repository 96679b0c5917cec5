package memory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyrup-ai/sweetmcp-sub007/internal/clock"
)

func TestRelationshipGraph_RejectsSelfLoop(t *testing.T) {
	g := NewRelationshipGraph(nil, clock.Frozen{At: time.Unix(0, 0)})
	_, err := g.Insert("item-1", "item-1", RelatedTo, 0.5)
	assert.Error(t, err)
}

func TestRelationshipGraph_RejectsDuplicateTriple(t *testing.T) {
	g := NewRelationshipGraph(nil, clock.Frozen{At: time.Unix(0, 0)})
	_, err := g.Insert("a", "b", CausedBy, 0.5)
	require.NoError(t, err)

	_, err = g.Insert("a", "b", CausedBy, 0.9)
	assert.Error(t, err, "inserting the same (source, type, target) triple twice must fail")
}

func TestRelationshipGraph_BidirectionalTypeCreatesReverseEdge(t *testing.T) {
	g := NewRelationshipGraph(nil, clock.Frozen{At: time.Unix(0, 0)})
	_, err := g.Insert("a", "b", RelatedTo, 0.5)
	require.NoError(t, err)

	assert.Equal(t, 2, g.Len())
	reverse := g.Neighbors("b")
	require.Len(t, reverse, 1)
	assert.Equal(t, "a", reverse[0].TargetID)
}

func TestRelationshipGraph_UnidirectionalTypeCreatesOnlyOneEdge(t *testing.T) {
	g := NewRelationshipGraph(nil, clock.Frozen{At: time.Unix(0, 0)})
	_, err := g.Insert("a", "b", CausedBy, 0.5)
	require.NoError(t, err)
	assert.Equal(t, 1, g.Len())
}

func TestRelationshipGraph_UpdateStrengthClamps(t *testing.T) {
	g := NewRelationshipGraph(nil, clock.Frozen{At: time.Unix(0, 0)})
	rel, err := g.Insert("a", "b", CausedBy, 0.9)
	require.NoError(t, err)

	updated, err := g.UpdateStrength(rel.ID, 0.5)
	require.NoError(t, err)
	assert.Equal(t, 1.0, updated.Strength)

	updated, err = g.UpdateStrength(rel.ID, -5)
	require.NoError(t, err)
	assert.Equal(t, 0.0, updated.Strength)
}

func TestRelationshipGraph_DeleteRemovesFromBothIndexes(t *testing.T) {
	g := NewRelationshipGraph(nil, clock.Frozen{At: time.Unix(0, 0)})
	rel, err := g.Insert("a", "b", CausedBy, 0.5)
	require.NoError(t, err)

	require.NoError(t, g.Delete(rel.ID))
	assert.Empty(t, g.Neighbors("a"))
	assert.Empty(t, g.Incoming("b"))
}

func TestRelationship_Quality_WeightsStrengthConfidenceType(t *testing.T) {
	rel := &Relationship{Type: PartOf, Strength: 1.0, Confidence: VeryHigh}
	// 0.4*1.0 + 0.3*0.9 + 0.3*0.8 = 0.91
	assert.InDelta(t, 0.91, rel.Quality(), 0.001)
}

func TestFromWeight_BoundaryValues(t *testing.T) {
	cases := []struct {
		w    float64
		want Confidence
	}{
		{0.0, VeryLow},
		{0.19, VeryLow},
		{0.2, Low},
		{0.39, Low},
		{0.4, Medium},
		{0.59, Medium},
		{0.6, High},
		{0.79, High},
		{0.8, VeryHigh},
		{1.0, VeryHigh},
	}
	for _, c := range cases {
		assert.Equalf(t, c.want, FromWeight(c.w), "weight %v", c.w)
	}
}
