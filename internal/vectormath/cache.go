package vectormath

import (
	lru "github.com/hashicorp/golang-lru"
)

// SimilarityCache memoizes cosine-similarity computations keyed by a pair of
// item ids, grounded on the teacher's use of hashicorp/golang-lru for its
// tool-config cache (mcp-tools/internal/infrastructure/toolconfig).
type SimilarityCache struct {
	cache *lru.Cache
}

type pairKey struct {
	a, b string
}

// NewSimilarityCache builds a bounded LRU cache of the given size.
func NewSimilarityCache(size int) (*SimilarityCache, error) {
	if size <= 0 {
		size = 1024
	}
	c, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &SimilarityCache{cache: c}, nil
}

func key(a, b string) pairKey {
	if a <= b {
		return pairKey{a, b}
	}
	return pairKey{b, a}
}

// Get returns a cached similarity score for the unordered pair (a, b).
func (s *SimilarityCache) Get(a, b string) (float32, bool) {
	v, ok := s.cache.Get(key(a, b))
	if !ok {
		return 0, false
	}
	return v.(float32), true
}

// Put stores a computed similarity score for the unordered pair (a, b).
func (s *SimilarityCache) Put(a, b string, similarity float32) {
	s.cache.Add(key(a, b), similarity)
}

// Len returns the current number of cached entries.
func (s *SimilarityCache) Len() int { return s.cache.Len() }

// Purge clears the cache, used when the underlying embedding dimension or
// index type changes.
func (s *SimilarityCache) Purge() { s.cache.Purge() }
