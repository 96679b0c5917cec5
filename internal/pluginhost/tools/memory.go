package tools

import (
	"context"
	"encoding/json"

	"github.com/invopop/jsonschema"

	"github.com/cyrup-ai/sweetmcp-sub007/internal/clock"
	"github.com/cyrup-ai/sweetmcp-sub007/internal/gatewayerr"
	"github.com/cyrup-ai/sweetmcp-sub007/internal/memory"
	"github.com/cyrup-ai/sweetmcp-sub007/internal/pluginhost"
)

// MemoryObserveParams records a new cognitive-memory item, mirroring
// memory-tools' HandleObserve request body (content/kind/confidence).
type MemoryObserveParams struct {
	Content    string `json:"content" jsonschema:"required,description=text content to remember"`
	Kind       string `json:"kind,omitempty" jsonschema:"description=core/episodic/project_fact/conversation"`
	Confidence string `json:"confidence,omitempty" jsonschema:"description=very_low/low/medium/high/very_high"`
}

// MemoryObserve stores a new item in the cognitive-memory engine, embedding
// it via the configured Embedder, grounded on
// memory-tools/internal/interfaces/httpserver/handlers.HandleObserve's
// embed-then-persist flow.
type MemoryObserve struct {
	store    *memory.ItemStore
	embedder memory.Embedder
	clock    clock.Source
	schema   map[string]any
}

// NewMemoryObserve builds the memory_observe tool over a shared item store
// and embedder.
func NewMemoryObserve(store *memory.ItemStore, embedder memory.Embedder, src clock.Source) *MemoryObserve {
	if src == nil {
		src = clock.Real{}
	}
	reflector := jsonschema.Reflector{ExpandedStruct: true}
	raw, _ := json.Marshal(reflector.Reflect(&MemoryObserveParams{}))
	var schema map[string]any
	_ = json.Unmarshal(raw, &schema)
	return &MemoryObserve{store: store, embedder: embedder, clock: src, schema: schema}
}

func (m *MemoryObserve) Description() pluginhost.ToolDescription {
	return pluginhost.ToolDescription{
		Name:        "memory_observe",
		Description: "Stores a new item in the cognitive-memory engine.",
		InputSchema: m.schema,
	}
}

func (m *MemoryObserve) Call(ctx context.Context, args json.RawMessage) (*pluginhost.Result, error) {
	var params MemoryObserveParams
	if err := json.Unmarshal(args, &params); err != nil {
		return nil, gatewayerr.Validation("memory_observe arguments must match schema", nil).Wrap(err)
	}
	if params.Content == "" {
		return nil, gatewayerr.Validation("content must not be empty", nil)
	}
	kind := params.Kind
	if kind == "" {
		kind = "episodic"
	}
	confidence := memory.Medium
	if params.Confidence != "" {
		confidence = confidenceFromString(params.Confidence)
	}

	embedding, err := m.embedder.Embed(ctx, params.Content)
	if err != nil {
		return nil, gatewayerr.Transport("failed to embed memory content", nil).Wrap(err)
	}

	now := m.clock.Now()
	item, err := m.store.Create(memory.Item{
		ID:             memory.NewItemID(),
		Kind:           kind,
		Content:        params.Content,
		Embedding:      embedding,
		Confidence:     confidence,
		CreatedAt:      now,
		UpdatedAt:      now,
		LastAccessedAt: now,
	})
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(map[string]any{"id": item.ID, "kind": item.Kind, "confidence": item.Confidence.String()})
	if err != nil {
		return nil, gatewayerr.Internal("failed to encode memory_observe result", nil).Wrap(err)
	}
	return pluginhost.JSONResult(payload), nil
}

func confidenceFromString(s string) memory.Confidence {
	switch s {
	case "very_low":
		return memory.VeryLow
	case "low":
		return memory.Low
	case "high":
		return memory.High
	case "very_high":
		return memory.VeryHigh
	default:
		return memory.Medium
	}
}

// MemoryRecallParams searches stored memory by free text, mirroring
// memory-tools' HandleLoad query-by-similarity contract.
type MemoryRecallParams struct {
	Query         string  `json:"query" jsonschema:"required,description=free text to search for"`
	Limit         int     `json:"limit,omitempty" jsonschema:"description=max results, default 10"`
	MinSimilarity float32 `json:"min_similarity,omitempty" jsonschema:"description=minimum cosine similarity, 0..1"`
	Kind          string  `json:"kind,omitempty" jsonschema:"description=restrict to one memory kind"`
}

// MemoryRecall exposes Searcher.SearchByText as a callable tool, per
// spec.md §4.4's search_by_text operation.
type MemoryRecall struct {
	searcher *memory.Searcher
	schema   map[string]any
}

// NewMemoryRecall builds the memory_recall tool over a shared Searcher.
func NewMemoryRecall(searcher *memory.Searcher) *MemoryRecall {
	reflector := jsonschema.Reflector{ExpandedStruct: true}
	raw, _ := json.Marshal(reflector.Reflect(&MemoryRecallParams{}))
	var schema map[string]any
	_ = json.Unmarshal(raw, &schema)
	return &MemoryRecall{searcher: searcher, schema: schema}
}

func (m *MemoryRecall) Description() pluginhost.ToolDescription {
	return pluginhost.ToolDescription{
		Name:        "memory_recall",
		Description: "Searches the cognitive-memory engine by free text, returning items ranked by cosine similarity.",
		InputSchema: m.schema,
	}
}

func (m *MemoryRecall) Call(ctx context.Context, args json.RawMessage) (*pluginhost.Result, error) {
	var params MemoryRecallParams
	if err := json.Unmarshal(args, &params); err != nil {
		return nil, gatewayerr.Validation("memory_recall arguments must match schema", nil).Wrap(err)
	}
	if params.Query == "" {
		return nil, gatewayerr.Validation("query must not be empty", nil)
	}

	results, err := m.searcher.SearchByText(ctx, params.Query, memory.SearchOptions{
		Limit:         params.Limit,
		MinSimilarity: params.MinSimilarity,
		Kind:          params.Kind,
	})
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(searchResultsJSON(results))
	if err != nil {
		return nil, gatewayerr.Internal("failed to encode memory_recall result", nil).Wrap(err)
	}
	return pluginhost.JSONResult(payload), nil
}

// MemoryRecommendParams drives Searcher.GetRecommendations, per spec.md
// §4.4's get_recommendations operation.
type MemoryRecommendParams struct {
	Positives []string `json:"positives" jsonschema:"required,description=item ids the recommendation should resemble"`
	Negatives []string `json:"negatives,omitempty" jsonschema:"description=item ids the recommendation should avoid"`
	Limit     int      `json:"limit,omitempty" jsonschema:"description=max results, default 10"`
}

// MemoryRecommend exposes Searcher.GetRecommendations as a callable tool.
type MemoryRecommend struct {
	searcher *memory.Searcher
	schema   map[string]any
}

// NewMemoryRecommend builds the memory_recommend tool over a shared
// Searcher.
func NewMemoryRecommend(searcher *memory.Searcher) *MemoryRecommend {
	reflector := jsonschema.Reflector{ExpandedStruct: true}
	raw, _ := json.Marshal(reflector.Reflect(&MemoryRecommendParams{}))
	var schema map[string]any
	_ = json.Unmarshal(raw, &schema)
	return &MemoryRecommend{searcher: searcher, schema: schema}
}

func (m *MemoryRecommend) Description() pluginhost.ToolDescription {
	return pluginhost.ToolDescription{
		Name:        "memory_recommend",
		Description: "Recommends memory items similar to a set of positive examples and dissimilar to negatives.",
		InputSchema: m.schema,
	}
}

func (m *MemoryRecommend) Call(ctx context.Context, args json.RawMessage) (*pluginhost.Result, error) {
	var params MemoryRecommendParams
	if err := json.Unmarshal(args, &params); err != nil {
		return nil, gatewayerr.Validation("memory_recommend arguments must match schema", nil).Wrap(err)
	}
	if len(params.Positives) == 0 {
		return nil, gatewayerr.Validation("positives must not be empty", nil)
	}

	results, err := m.searcher.GetRecommendations(params.Positives, params.Negatives, memory.SearchOptions{Limit: params.Limit})
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(searchResultsJSON(results))
	if err != nil {
		return nil, gatewayerr.Internal("failed to encode memory_recommend result", nil).Wrap(err)
	}
	return pluginhost.JSONResult(payload), nil
}

func searchResultsJSON(results []memory.SearchResult) []map[string]any {
	out := make([]map[string]any, 0, len(results))
	for _, r := range results {
		out = append(out, map[string]any{
			"id":         r.Item.ID,
			"content":    r.Item.Content,
			"kind":       r.Item.Kind,
			"similarity": r.Similarity,
			"confidence": r.Item.Confidence.String(),
		})
	}
	return out
}
