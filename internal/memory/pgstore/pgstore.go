// Package pgstore is a Postgres/pgvector-flavored persistence adapter for
// the abstract memory store contract from spec.md §6 ("on-disk schema is
// not standardized"), grounded on
// memory-tools/internal/infrastructure/postgres and vector_search.go's
// `embedding <=> $1::vector` query shape.
package pgstore

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cyrup-ai/sweetmcp-sub007/internal/gatewayerr"
	"github.com/cyrup-ai/sweetmcp-sub007/internal/memory"
)

// Repository is a pgx-backed implementation of the memory item store,
// usable in place of memory.ItemStore when durability across process
// restarts is required.
type Repository struct {
	pool *pgxpool.Pool
}

// New builds a Repository over an existing connection pool. Connect with
// pgxpool.New(ctx, dsn) and pass the result here; pool lifecycle is the
// caller's responsibility.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// EnsureSchema creates the memory_items table and its vector index if
// absent. dim is the fixed embedding dimension (config.Config.EmbeddingDimension).
func (r *Repository) EnsureSchema(ctx context.Context, dim int) error {
	ddl := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS memory_items (
	id TEXT PRIMARY KEY,
	kind TEXT NOT NULL,
	content TEXT NOT NULL,
	embedding vector(%d),
	confidence SMALLINT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	last_accessed_at TIMESTAMPTZ NOT NULL,
	access_count BIGINT NOT NULL DEFAULT 0,
	metadata JSONB NOT NULL DEFAULT '{}'
);
CREATE INDEX IF NOT EXISTS memory_items_embedding_idx
	ON memory_items USING ivfflat (embedding vector_cosine_ops);
`, dim)
	_, err := r.pool.Exec(ctx, ddl)
	if err != nil {
		return gatewayerr.Internal("failed to ensure memory_items schema", nil).Wrap(err)
	}
	return nil
}

// Insert persists a new item row.
func (r *Repository) Insert(ctx context.Context, item *memory.Item) error {
	_, err := r.pool.Exec(ctx, `
INSERT INTO memory_items (id, kind, content, embedding, confidence, created_at, updated_at, last_accessed_at, access_count, metadata)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
`, item.ID, item.Kind, item.Content, vectorLiteral(item.Embedding), int(item.Confidence),
		item.CreatedAt, item.UpdatedAt, item.LastAccessedAt, item.AccessCount, item.Metadata)
	if err != nil {
		return gatewayerr.Internal("failed to insert memory item", item.ID).Wrap(err)
	}
	return nil
}

// Get loads a single item by id and bumps its access bookkeeping.
func (r *Repository) Get(ctx context.Context, id string) (*memory.Item, error) {
	row := r.pool.QueryRow(ctx, `
UPDATE memory_items SET last_accessed_at = now(), access_count = access_count + 1
WHERE id = $1
RETURNING id, kind, content, confidence, created_at, updated_at, last_accessed_at, access_count, metadata
`, id)

	item := &memory.Item{}
	var confidence int
	if err := row.Scan(&item.ID, &item.Kind, &item.Content, &confidence,
		&item.CreatedAt, &item.UpdatedAt, &item.LastAccessedAt, &item.AccessCount, &item.Metadata); err != nil {
		if err == pgx.ErrNoRows {
			return nil, gatewayerr.NotFound("item not found", id)
		}
		return nil, gatewayerr.Internal("failed to load memory item", id).Wrap(err)
	}
	item.Confidence = memory.Confidence(confidence)
	return item, nil
}

// Delete removes an item row by id.
func (r *Repository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM memory_items WHERE id = $1`, id)
	if err != nil {
		return gatewayerr.Internal("failed to delete memory item", id).Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return gatewayerr.NotFound("item not found", id)
	}
	return nil
}

// SearchByEmbedding runs a pgvector cosine-distance nearest-neighbor query,
// mirroring vector_search.go's `1 - (embedding <=> $1::vector) AS similarity`
// shape.
func (r *Repository) SearchByEmbedding(ctx context.Context, query []float32, limit int, minSimilarity float32) ([]memory.Item, []float32, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.pool.Query(ctx, `
SELECT id, kind, content, confidence, created_at, updated_at, last_accessed_at, access_count, metadata,
       1 - (embedding <=> $1::vector) AS similarity
FROM memory_items
WHERE 1 - (embedding <=> $1::vector) >= $2
ORDER BY similarity DESC
LIMIT $3
`, vectorLiteral(query), minSimilarity, limit)
	if err != nil {
		return nil, nil, gatewayerr.Internal("vector search query failed", nil).Wrap(err)
	}
	defer rows.Close()

	var items []memory.Item
	var similarities []float32
	for rows.Next() {
		var item memory.Item
		var confidence int
		var sim float32
		if err := rows.Scan(&item.ID, &item.Kind, &item.Content, &confidence,
			&item.CreatedAt, &item.UpdatedAt, &item.LastAccessedAt, &item.AccessCount, &item.Metadata, &sim); err != nil {
			return nil, nil, gatewayerr.Internal("vector search row scan failed", nil).Wrap(err)
		}
		item.Confidence = memory.Confidence(confidence)
		items = append(items, item)
		similarities = append(similarities, sim)
	}
	return items, similarities, rows.Err()
}

// vectorLiteral renders a float32 slice as a pgvector text literal, e.g.
// "[0.1,0.2,0.3]".
func vectorLiteral(v []float32) string {
	if len(v) == 0 {
		return "[]"
	}
	out := make([]byte, 0, len(v)*8)
	out = append(out, '[')
	for i, x := range v {
		if i > 0 {
			out = append(out, ',')
		}
		out = fmt.Appendf(out, "%g", x)
	}
	out = append(out, ']')
	return string(out)
}

// CleanupOlderThan deletes items last accessed before the cutoff, used by
// the scheduled cleanup job for the durable backend.
func (r *Repository) CleanupOlderThan(ctx context.Context, cutoff time.Time, batchSize int) (int64, error) {
	if batchSize <= 0 {
		batchSize = 500
	}
	tag, err := r.pool.Exec(ctx, `
DELETE FROM memory_items
WHERE id IN (
	SELECT id FROM memory_items WHERE last_accessed_at < $1 LIMIT $2
)
`, cutoff, batchSize)
	if err != nil {
		return 0, gatewayerr.Internal("cleanup query failed", nil).Wrap(err)
	}
	return tag.RowsAffected(), nil
}
