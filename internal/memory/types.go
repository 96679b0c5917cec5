// Package memory implements the cognitive-memory engine: item store, vector
// search, semantic relationships, confidence decay, centrality analysis, and
// lifecycle/optimization, per spec.md §3 and §4.4.
package memory

import (
	"time"

	"github.com/google/uuid"
)

// Confidence is one of five ordered levels, each with a fixed numeric weight.
type Confidence int

const (
	VeryLow Confidence = iota
	Low
	Medium
	High
	VeryHigh
)

// Weight returns the numeric value backing ordering and decay arithmetic.
func (c Confidence) Weight() float64 {
	switch c {
	case VeryLow:
		return 0.1
	case Low:
		return 0.3
	case Medium:
		return 0.5
	case High:
		return 0.7
	case VeryHigh:
		return 0.9
	default:
		return 0.5
	}
}

func (c Confidence) String() string {
	switch c {
	case VeryLow:
		return "very_low"
	case Low:
		return "low"
	case Medium:
		return "medium"
	case High:
		return "high"
	case VeryHigh:
		return "very_high"
	default:
		return "unknown"
	}
}

// FromWeight maps a decayed/boosted numeric weight back to the nearest
// enumerated level, used after ConfidenceModel.Decay/Reinforce.
func FromWeight(w float64) Confidence {
	switch {
	case w >= 0.8:
		return VeryHigh
	case w >= 0.6:
		return High
	case w >= 0.4:
		return Medium
	case w >= 0.2:
		return Low
	default:
		return VeryLow
	}
}

// Item is a cognitive-memory item: content plus embedding plus confidence and
// access bookkeeping. kind distinguishes the supplemented memory kinds from
// SPEC_FULL.md §2 (core/episodic/project_fact/conversation) without changing
// the shape spec.md §3 defines.
type Item struct {
	ID             string
	Kind           string
	Content        string
	Embedding      []float32
	Confidence     Confidence
	CreatedAt      time.Time
	UpdatedAt      time.Time
	LastAccessedAt time.Time
	AccessCount    uint64
	Metadata       map[string]any
}

// NewItemID mints a globally unique item id, matching the teacher's
// google/uuid usage throughout memory-tools' repositories.
func NewItemID() string { return uuid.NewString() }

// RelationshipType names a semantic relationship kind with weights used by
// the quality-score formula in spec.md §3.
type RelationshipType string

const (
	RelatedTo    RelationshipType = "related_to"
	CausedBy     RelationshipType = "caused_by"
	PartOf       RelationshipType = "part_of"
	Contradicts  RelationshipType = "contradicts"
	Supports     RelationshipType = "supports"
	Supersedes   RelationshipType = "supersedes"
)

// typeProfile gives each relationship type a default confidence, strength
// weight, quality weight, and whether it is bidirectional, per spec.md §3.
type typeProfile struct {
	defaultConfidence float64
	strengthWeight    float64
	qualityWeight     float64
	bidirectional     bool
}

var typeProfiles = map[RelationshipType]typeProfile{
	RelatedTo:   {0.6, 0.5, 0.5, true},
	CausedBy:    {0.7, 0.8, 0.7, false},
	PartOf:      {0.8, 0.9, 0.8, false},
	Contradicts: {0.7, 0.6, 0.6, true},
	Supports:    {0.65, 0.7, 0.6, false},
	Supersedes:  {0.75, 0.8, 0.7, false},
}

func profileFor(t RelationshipType) typeProfile {
	if p, ok := typeProfiles[t]; ok {
		return p
	}
	return typeProfile{0.5, 0.5, 0.5, true}
}

// Relationship is a directed semantic edge between two items, per spec.md §3.
type Relationship struct {
	ID         string
	SourceID   string
	TargetID   string
	Type       RelationshipType
	Confidence Confidence
	Strength   float64
	Metadata   map[string]any
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// RelationshipID computes the canonical id source_id:type:target_id.
func RelationshipID(source string, t RelationshipType, target string) string {
	return source + ":" + string(t) + ":" + target
}

// Quality computes q = 0.4*strength + 0.3*confidence + 0.3*type_weight.
func (r *Relationship) Quality() float64 {
	p := profileFor(r.Type)
	return 0.4*r.Strength + 0.3*r.Confidence.Weight() + 0.3*p.qualityWeight
}

// clampStrength clamps a strength value to [0,1], applied on every mutation
// per spec.md §3's invariant.
func clampStrength(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}
