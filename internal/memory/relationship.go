package memory

import (
	"sync"
	"time"

	"github.com/cyrup-ai/sweetmcp-sub007/internal/clock"
	"github.com/cyrup-ai/sweetmcp-sub007/internal/gatewayerr"
)

// Locker abstracts the per-source mutation lock spec.md §5 requires for
// relationship graph mutations. graphlock provides a Redis-backed
// implementation; NewInProcessLocker provides the in-process one.
type Locker interface {
	Lock(sourceID string) (unlock func(), err error)
}

type inProcessLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewInProcessLocker returns a Locker keyed per source id, for single-node
// deployments or tests that don't configure Redis.
func NewInProcessLocker() Locker {
	return &inProcessLocker{locks: make(map[string]*sync.Mutex)}
}

func (l *inProcessLocker) Lock(sourceID string) (func(), error) {
	l.mu.Lock()
	m, ok := l.locks[sourceID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[sourceID] = m
	}
	l.mu.Unlock()
	m.Lock()
	return m.Unlock, nil
}

// RelationshipGraph is the semantic relationship adjacency from spec.md §3,
// indexed by both source and target for O(1) neighbor lookups in either
// direction, as centrality analysis requires.
type RelationshipGraph struct {
	mu       sync.RWMutex
	edges    map[string]*Relationship // id -> edge
	bySource map[string]map[string]struct{}
	byTarget map[string]map[string]struct{}
	locker   Locker
	clock    clock.Source
}

// NewRelationshipGraph builds an empty graph guarded by the given locker.
func NewRelationshipGraph(locker Locker, src clock.Source) *RelationshipGraph {
	if locker == nil {
		locker = NewInProcessLocker()
	}
	if src == nil {
		src = clock.Real{}
	}
	return &RelationshipGraph{
		edges:    make(map[string]*Relationship),
		bySource: make(map[string]map[string]struct{}),
		byTarget: make(map[string]map[string]struct{}),
		locker:   locker,
		clock:    src,
	}
}

// Insert adds a new relationship, enforcing source != target and triple
// uniqueness. Mutation is serialized per-source via the configured Locker.
func (g *RelationshipGraph) Insert(sourceID, targetID string, t RelationshipType, strength float64) (*Relationship, error) {
	if sourceID == targetID {
		return nil, gatewayerr.Validation("relationship source and target must differ", sourceID)
	}

	unlock, err := g.locker.Lock(sourceID)
	if err != nil {
		return nil, gatewayerr.Internal("failed to acquire relationship lock", err.Error())
	}
	defer unlock()

	id := RelationshipID(sourceID, t, targetID)

	g.mu.Lock()
	defer g.mu.Unlock()
	if _, exists := g.edges[id]; exists {
		return nil, gatewayerr.Validation("relationship already exists", id)
	}

	profile := profileFor(t)
	now := g.clock.Now()
	rel := &Relationship{
		ID:         id,
		SourceID:   sourceID,
		TargetID:   targetID,
		Type:       t,
		Confidence: FromWeight(profile.defaultConfidence),
		Strength:   clampStrength(strength),
		Metadata:   map[string]any{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	g.edges[id] = rel
	g.index(rel)

	if profile.bidirectional {
		reverseID := RelationshipID(targetID, t, sourceID)
		if _, exists := g.edges[reverseID]; !exists {
			reverse := &Relationship{
				ID: reverseID, SourceID: targetID, TargetID: sourceID, Type: t,
				Confidence: rel.Confidence, Strength: rel.Strength,
				Metadata: map[string]any{}, CreatedAt: now, UpdatedAt: now,
			}
			g.edges[reverseID] = reverse
			g.index(reverse)
		}
	}

	return cloneRelationship(rel), nil
}

func (g *RelationshipGraph) index(rel *Relationship) {
	if g.bySource[rel.SourceID] == nil {
		g.bySource[rel.SourceID] = make(map[string]struct{})
	}
	g.bySource[rel.SourceID][rel.ID] = struct{}{}
	if g.byTarget[rel.TargetID] == nil {
		g.byTarget[rel.TargetID] = make(map[string]struct{})
	}
	g.byTarget[rel.TargetID][rel.ID] = struct{}{}
}

func (g *RelationshipGraph) unindex(rel *Relationship) {
	delete(g.bySource[rel.SourceID], rel.ID)
	delete(g.byTarget[rel.TargetID], rel.ID)
}

// UpdateStrength mutates an edge's strength, clamping to [0,1] and bumping
// UpdatedAt, holding the per-source lock for the edge's source.
func (g *RelationshipGraph) UpdateStrength(id string, delta float64) (*Relationship, error) {
	g.mu.RLock()
	rel, ok := g.edges[id]
	g.mu.RUnlock()
	if !ok {
		return nil, gatewayerr.NotFound("relationship not found", id)
	}

	unlock, err := g.locker.Lock(rel.SourceID)
	if err != nil {
		return nil, gatewayerr.Internal("failed to acquire relationship lock", err.Error())
	}
	defer unlock()

	g.mu.Lock()
	defer g.mu.Unlock()
	rel.Strength = clampStrength(rel.Strength + delta)
	rel.UpdatedAt = g.clock.Now()
	return cloneRelationship(rel), nil
}

// Delete removes an edge by id under its source's lock.
func (g *RelationshipGraph) Delete(id string) error {
	g.mu.RLock()
	rel, ok := g.edges[id]
	g.mu.RUnlock()
	if !ok {
		return gatewayerr.NotFound("relationship not found", id)
	}

	unlock, err := g.locker.Lock(rel.SourceID)
	if err != nil {
		return gatewayerr.Internal("failed to acquire relationship lock", err.Error())
	}
	defer unlock()

	g.mu.Lock()
	defer g.mu.Unlock()
	g.unindex(rel)
	delete(g.edges, id)
	return nil
}

// Neighbors returns outgoing edges from sourceID.
func (g *RelationshipGraph) Neighbors(sourceID string) []*Relationship {
	g.mu.RLock()
	defer g.mu.RUnlock()
	ids := g.bySource[sourceID]
	out := make([]*Relationship, 0, len(ids))
	for id := range ids {
		out = append(out, cloneRelationship(g.edges[id]))
	}
	return out
}

// Incoming returns edges that target targetID.
func (g *RelationshipGraph) Incoming(targetID string) []*Relationship {
	g.mu.RLock()
	defer g.mu.RUnlock()
	ids := g.byTarget[targetID]
	out := make([]*Relationship, 0, len(ids))
	for id := range ids {
		out = append(out, cloneRelationship(g.edges[id]))
	}
	return out
}

// All returns every edge in the graph, used by centrality analysis.
func (g *RelationshipGraph) All() []*Relationship {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]*Relationship, 0, len(g.edges))
	for _, rel := range g.edges {
		out = append(out, cloneRelationship(rel))
	}
	return out
}

// Len reports the number of edges currently stored.
func (g *RelationshipGraph) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.edges)
}

// ArchivalThresholds configures archival/deletion decisions over edges.
type ArchivalThresholds struct {
	MaxAge         time.Duration
	MaxInactivity  time.Duration
	MinQuality     float64
	MinStrength    float64
	MinConfidence  Confidence
}

// ShouldArchive reports whether rel is stale enough to archive/delete under
// the given thresholds, evaluated at `now`.
func (t ArchivalThresholds) ShouldArchive(rel *Relationship, now time.Time) bool {
	if t.MaxAge > 0 && now.Sub(rel.CreatedAt) > t.MaxAge {
		return true
	}
	if t.MaxInactivity > 0 && now.Sub(rel.UpdatedAt) > t.MaxInactivity {
		return true
	}
	if rel.Quality() < t.MinQuality {
		return true
	}
	if rel.Strength < t.MinStrength {
		return true
	}
	if rel.Confidence < t.MinConfidence {
		return true
	}
	return false
}

func cloneRelationship(rel *Relationship) *Relationship {
	cp := *rel
	cp.Metadata = make(map[string]any, len(rel.Metadata))
	for k, v := range rel.Metadata {
		cp.Metadata[k] = v
	}
	return &cp
}
