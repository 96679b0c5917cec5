package memory

import (
	"time"

	"github.com/cyrup-ai/sweetmcp-sub007/internal/clock"
	"github.com/cyrup-ai/sweetmcp-sub007/internal/vectormath"
)

// CleanupPolicy configures the item-lifecycle sweep per spec.md §4.4's
// "cleanup" operation: items older than MaxAge, below MinConfidence, or
// unused for longer than MaxUnused are eligible for deletion.
type CleanupPolicy struct {
	MaxAge       time.Duration
	MinConfidence Confidence
	MaxUnused    time.Duration
	BatchSize    int
}

// CleanupReport summarizes one cleanup pass.
type CleanupReport struct {
	Scanned int
	Deleted int
	Errors  int
}

// Cleanup scans the store and deletes items matching the policy, bounded to
// BatchSize deletions per call so a single sweep can't stall the store under
// a write lock for an unbounded duration.
func Cleanup(store *ItemStore, policy CleanupPolicy, src clock.Source) CleanupReport {
	if src == nil {
		src = clock.Real{}
	}
	batch := policy.BatchSize
	if batch <= 0 {
		batch = 500
	}

	now := src.Now()
	items := store.All()
	report := CleanupReport{Scanned: len(items)}

	for _, item := range items {
		if report.Deleted >= batch {
			break
		}
		if !shouldDelete(item, policy, now) {
			continue
		}
		if err := store.Delete(item.ID); err != nil {
			report.Errors++
			continue
		}
		report.Deleted++
	}
	return report
}

func shouldDelete(item *Item, policy CleanupPolicy, now time.Time) bool {
	if policy.MaxAge > 0 && now.Sub(item.CreatedAt) > policy.MaxAge {
		return true
	}
	if item.Confidence < policy.MinConfidence {
		return true
	}
	if policy.MaxUnused > 0 && now.Sub(item.LastAccessedAt) > policy.MaxUnused {
		return true
	}
	return false
}

// Stats reports aggregate health metrics over the current store contents,
// per spec.md §4.4's "stats" operation.
type Stats struct {
	TotalItems          int
	ByKind              map[string]int
	ByConfidence        map[string]int
	AverageAccessCount  float64
	EfficiencyScore     float64 // fraction of items accessed at least once
	AccessEfficiency    float64 // average accesses per day since creation
	HealthScore         float64 // blended 0..1 score
}

// ComputeStats scans the store once and derives every figure in Stats.
func ComputeStats(store *ItemStore, src clock.Source) Stats {
	if src == nil {
		src = clock.Real{}
	}
	now := src.Now()
	items := store.All()

	stats := Stats{
		TotalItems:   len(items),
		ByKind:       make(map[string]int),
		ByConfidence: make(map[string]int),
	}
	if len(items) == 0 {
		return stats
	}

	var totalAccess uint64
	var accessed int
	var accessRateSum float64

	for _, item := range items {
		stats.ByKind[item.Kind]++
		stats.ByConfidence[item.Confidence.String()]++
		totalAccess += item.AccessCount
		if item.AccessCount > 0 {
			accessed++
		}
		ageDays := now.Sub(item.CreatedAt).Hours() / 24
		if ageDays < 1 {
			ageDays = 1
		}
		accessRateSum += float64(item.AccessCount) / ageDays
	}

	n := float64(len(items))
	stats.AverageAccessCount = float64(totalAccess) / n
	stats.EfficiencyScore = float64(accessed) / n
	stats.AccessEfficiency = accessRateSum / n

	avgConfidence := 0.0
	for _, item := range items {
		avgConfidence += item.Confidence.Weight()
	}
	avgConfidence /= n

	stats.HealthScore = clamp01(0.4*stats.EfficiencyScore + 0.3*avgConfidence + 0.3*minF(1, stats.AccessEfficiency))
	return stats
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

// OptimizationStrategy selects how Optimize compresses or reindexes the
// store, per spec.md §4.4's optimization strategies.
type OptimizationStrategy int

const (
	OptimizeNone OptimizationStrategy = iota
	OptimizeCompress
	OptimizeReindex
)

// OptimizationReport summarizes an Optimize call.
type OptimizationReport struct {
	Strategy       OptimizationStrategy
	ItemsProcessed int
	Codebook       *vectormath.Codebook
}

// Optimize applies the given strategy over the current store contents.
// OptimizeCompress trains a vector-quantization codebook over all
// embeddings; OptimizeReindex is a no-op placeholder for index rebuilds the
// in-memory store doesn't require but the pgstore adapter does.
func Optimize(store *ItemStore, strategy OptimizationStrategy, codebookSize int) OptimizationReport {
	report := OptimizationReport{Strategy: strategy}
	if strategy != OptimizeCompress {
		return report
	}

	items := store.All()
	vecs := make([][]float32, 0, len(items))
	for _, item := range items {
		if len(item.Embedding) > 0 {
			vecs = append(vecs, item.Embedding)
		}
	}
	report.ItemsProcessed = len(vecs)
	if len(vecs) == 0 {
		return report
	}
	if codebookSize <= 0 {
		codebookSize = 256
	}
	report.Codebook = vectormath.TrainCodebook(vecs, codebookSize, 25)
	return report
}
