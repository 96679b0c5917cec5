package memory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyrup-ai/sweetmcp-sub007/internal/clock"
)

func TestCleanup_DeletesItemsOlderThanMaxAge(t *testing.T) {
	frozen := clock.Frozen{At: time.Unix(0, 0).Add(365 * 24 * time.Hour)}
	store := NewItemStore(0, clock.Frozen{At: time.Unix(0, 0)})
	old, err := store.Create(Item{Content: "old", Confidence: Medium})
	require.NoError(t, err)

	report := Cleanup(store, CleanupPolicy{MaxAge: 24 * time.Hour}, frozen)
	assert.Equal(t, 1, report.Scanned)
	assert.Equal(t, 1, report.Deleted)
	_, err = store.Get(old.ID)
	assert.Error(t, err)
}

func TestCleanup_DeletesItemsBelowMinConfidence(t *testing.T) {
	store := NewItemStore(0, clock.Frozen{At: time.Unix(0, 0)})
	_, err := store.Create(Item{Content: "weak", Confidence: Low})
	require.NoError(t, err)
	strong, err := store.Create(Item{Content: "strong", Confidence: VeryHigh})
	require.NoError(t, err)

	report := Cleanup(store, CleanupPolicy{MinConfidence: Medium}, clock.Frozen{At: time.Unix(0, 0)})
	assert.Equal(t, 1, report.Deleted)
	_, err = store.Get(strong.ID)
	assert.NoError(t, err)
}

func TestCleanup_RespectsBatchSizeCap(t *testing.T) {
	frozen := clock.Frozen{At: time.Unix(0, 0).Add(365 * 24 * time.Hour)}
	store := NewItemStore(0, clock.Frozen{At: time.Unix(0, 0)})
	for i := 0; i < 5; i++ {
		_, err := store.Create(Item{Content: "old", Confidence: Medium})
		require.NoError(t, err)
	}

	report := Cleanup(store, CleanupPolicy{MaxAge: time.Hour, BatchSize: 2}, frozen)
	assert.Equal(t, 2, report.Deleted)
}

func TestComputeStats_EmptyStoreIsZeroValue(t *testing.T) {
	store := NewItemStore(0, clock.Frozen{At: time.Unix(0, 0)})
	stats := ComputeStats(store, clock.Frozen{At: time.Unix(0, 0)})
	assert.Equal(t, 0, stats.TotalItems)
	assert.Equal(t, 0.0, stats.HealthScore)
}

func TestComputeStats_AggregatesByKindAndConfidence(t *testing.T) {
	store := NewItemStore(0, clock.Frozen{At: time.Unix(0, 0)})
	_, err := store.Create(Item{Content: "a", Kind: "episodic", Confidence: High})
	require.NoError(t, err)
	_, err = store.Create(Item{Content: "b", Kind: "semantic", Confidence: High})
	require.NoError(t, err)

	stats := ComputeStats(store, clock.Frozen{At: time.Unix(0, 0)})
	assert.Equal(t, 2, stats.TotalItems)
	assert.Equal(t, 1, stats.ByKind["episodic"])
	assert.Equal(t, 2, stats.ByConfidence[High.String()])
	assert.GreaterOrEqual(t, stats.HealthScore, 0.0)
	assert.LessOrEqual(t, stats.HealthScore, 1.0)
}

func TestOptimize_NoneStrategyIsNoOp(t *testing.T) {
	store := NewItemStore(0, clock.Frozen{At: time.Unix(0, 0)})
	_, err := store.Create(Item{Content: "a", Embedding: []float32{1, 0}, Confidence: Medium})
	require.NoError(t, err)

	report := Optimize(store, OptimizeNone, 0)
	assert.Equal(t, 0, report.ItemsProcessed)
	assert.Nil(t, report.Codebook)
}

func TestOptimize_CompressTrainsCodebookOverEmbeddings(t *testing.T) {
	store := NewItemStore(0, clock.Frozen{At: time.Unix(0, 0)})
	for i := 0; i < 4; i++ {
		_, err := store.Create(Item{Content: "a", Embedding: []float32{float32(i), 0}, Confidence: Medium})
		require.NoError(t, err)
	}

	report := Optimize(store, OptimizeCompress, 2)
	assert.Equal(t, 4, report.ItemsProcessed)
	require.NotNil(t, report.Codebook)
}

func TestOptimize_CompressWithNoEmbeddingsProcessesNothing(t *testing.T) {
	store := NewItemStore(0, clock.Frozen{At: time.Unix(0, 0)})
	_, err := store.Create(Item{Content: "a", Confidence: Medium})
	require.NoError(t, err)

	report := Optimize(store, OptimizeCompress, 2)
	assert.Equal(t, 0, report.ItemsProcessed)
	assert.Nil(t, report.Codebook)
}
