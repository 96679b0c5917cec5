package memory

import (
	"context"
	"sort"

	"github.com/cyrup-ai/sweetmcp-sub007/internal/gatewayerr"
	"github.com/cyrup-ai/sweetmcp-sub007/internal/vectormath"
)

// Embedder converts free text into an embedding vector, the abstraction
// search_by_text is built on (internal/memory/embeddings.Client satisfies
// this in production; tests supply a deterministic fake).
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// SearchOptions configures every search entry point per spec.md §4.4.
type SearchOptions struct {
	Limit         int
	MinSimilarity float32
	Kind          string // empty matches every kind
}

func (o SearchOptions) normalized() SearchOptions {
	if o.Limit <= 0 {
		o.Limit = 10
	}
	if o.MinSimilarity < 0 {
		o.MinSimilarity = 0
	}
	if o.MinSimilarity > 1 {
		o.MinSimilarity = 1
	}
	return o
}

// SearchResult pairs an item with its similarity score to the query vector.
type SearchResult struct {
	Item       *Item
	Similarity float32
}

// Searcher implements the vector-search surface over an ItemStore. It holds
// an optional pairwise similarity cache, which the search methods do not
// consult: every similarity is computed directly.
type Searcher struct {
	store    *ItemStore
	embedder Embedder
	cache    *vectormath.SimilarityCache
}

// NewSearcher binds a searcher to a store and embedder. cache may be nil; it
// is stored but not used by the search methods.
func NewSearcher(store *ItemStore, embedder Embedder, cache *vectormath.SimilarityCache) *Searcher {
	return &Searcher{store: store, embedder: embedder, cache: cache}
}

// SearchByEmbedding ranks every stored item against a query vector by cosine
// similarity, per spec.md §4.4's "search_by_embedding" operation. An item is
// included when similarity >= MinSimilarity; MinSimilarity=1.0 therefore
// yields only exact matches, and MinSimilarity=0 includes everything.
func (s *Searcher) SearchByEmbedding(query []float32, opts SearchOptions) []SearchResult {
	opts = opts.normalized()
	results := s.rankByEmbedding(query, opts)
	if len(results) > opts.Limit {
		results = results[:opts.Limit]
	}
	return results
}

// rankByEmbedding ranks every matching stored item by cosine similarity and
// returns the full sorted set, deliberately not truncated to opts.Limit:
// callers that still need to exclude a seed or anchor item (FindSimilarToID,
// GetRecommendations) must do that exclusion before any limit is applied, or
// a seed ranked within the top Limit results would shrink the returned set
// below what the caller asked for instead of being replaced by the next-best
// match.
func (s *Searcher) rankByEmbedding(query []float32, opts SearchOptions) []SearchResult {
	items := s.store.All()
	results := make([]SearchResult, 0, len(items))

	for _, item := range items {
		if opts.Kind != "" && item.Kind != opts.Kind {
			continue
		}
		if len(item.Embedding) == 0 {
			continue
		}
		sim := vectormath.Cosine(query, item.Embedding)
		if sim < opts.MinSimilarity {
			continue
		}
		results = append(results, SearchResult{Item: item, Similarity: sim})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Similarity != results[j].Similarity {
			return results[i].Similarity > results[j].Similarity
		}
		return results[i].Item.ID < results[j].Item.ID
	})
	return results
}

// SearchByText embeds the query text then delegates to SearchByEmbedding.
func (s *Searcher) SearchByText(ctx context.Context, text string, opts SearchOptions) ([]SearchResult, error) {
	if s.embedder == nil {
		return nil, gatewayerr.Internal("no embedder configured", nil)
	}
	vec, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, gatewayerr.Transport("embedding request failed", nil).Wrap(err)
	}
	return s.SearchByEmbedding(vec, opts), nil
}

// BatchSearchResult reports the outcome of one query in a BatchSearch call.
// Each query gets its own typed result rather than a best-effort partial
// list, so callers can distinguish "zero matches" from "query failed".
type BatchSearchResult struct {
	Query   string
	Results []SearchResult
	Err     error
}

// BatchSearch runs SearchByText over a batch of query strings, per spec.md
// §4.4's "batch_search". One failing embed does not abort the rest of the
// batch; failures are reported per-query in BatchSearchResult.Err.
func (s *Searcher) BatchSearch(ctx context.Context, queries []string, opts SearchOptions) []BatchSearchResult {
	out := make([]BatchSearchResult, len(queries))
	for i, q := range queries {
		results, err := s.SearchByText(ctx, q, opts)
		out[i] = BatchSearchResult{Query: q, Results: results, Err: err}
	}
	return out
}

// FindSimilarToID finds items similar to an existing stored item's own
// embedding, excluding the item itself from its own result set.
func (s *Searcher) FindSimilarToID(id string, opts SearchOptions) ([]SearchResult, error) {
	anchor, ok := s.store.Peek(id)
	if !ok {
		return nil, gatewayerr.NotFound("item not found", id)
	}
	if len(anchor.Embedding) == 0 {
		return nil, gatewayerr.Validation("item has no embedding", id)
	}
	opts = opts.normalized()
	results := s.rankByEmbedding(anchor.Embedding, opts)
	filtered := results[:0]
	for _, r := range results {
		if r.Item.ID == id {
			continue
		}
		filtered = append(filtered, r)
	}
	if len(filtered) > opts.Limit {
		filtered = filtered[:opts.Limit]
	}
	return filtered, nil
}

// GetRecommendations computes a recommendation vector from positive and
// negative example item ids (centroid of positives minus half the centroid
// of negatives, per vectormath.Recommendation) and searches with it.
func (s *Searcher) GetRecommendations(positiveIDs, negativeIDs []string, opts SearchOptions) ([]SearchResult, error) {
	positives, err := s.embeddingsFor(positiveIDs)
	if err != nil {
		return nil, err
	}
	negatives, err := s.embeddingsFor(negativeIDs)
	if err != nil {
		return nil, err
	}
	if len(positives) == 0 {
		return nil, gatewayerr.Validation("at least one positive example required", nil)
	}

	opts = opts.normalized()
	query := vectormath.Recommendation(positives, negatives)
	results := s.rankByEmbedding(query, opts)

	exclude := make(map[string]struct{}, len(positiveIDs)+len(negativeIDs))
	for _, id := range positiveIDs {
		exclude[id] = struct{}{}
	}
	for _, id := range negativeIDs {
		exclude[id] = struct{}{}
	}
	filtered := results[:0]
	for _, r := range results {
		if _, skip := exclude[r.Item.ID]; skip {
			continue
		}
		filtered = append(filtered, r)
	}
	if len(filtered) > opts.Limit {
		filtered = filtered[:opts.Limit]
	}
	return filtered, nil
}

func (s *Searcher) embeddingsFor(ids []string) ([][]float32, error) {
	out := make([][]float32, 0, len(ids))
	for _, id := range ids {
		item, ok := s.store.Peek(id)
		if !ok {
			return nil, gatewayerr.NotFound("item not found", id)
		}
		if len(item.Embedding) == 0 {
			continue
		}
		out = append(out, item.Embedding)
	}
	return out, nil
}
