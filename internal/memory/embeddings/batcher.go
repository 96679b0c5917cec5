package embeddings

import (
	"context"
	"sync"
	"time"
)

// request is one pending embed call awaiting a batch flush.
type request struct {
	text   string
	result chan<- batchResult
}

type batchResult struct {
	vec []float32
	err error
}

// Batcher coalesces individual Embed calls into EmbedBatch requests, grounded
// on memory-tools/internal/domain/embedding/batcher.go's debounced batching
// of embedding requests to reduce round-trips under load.
type Batcher struct {
	client   *Client
	maxBatch int
	maxWait  time.Duration

	mu      sync.Mutex
	pending []request
	timer   *time.Timer
}

// NewBatcher wraps a Client with coalescing behavior: up to maxBatch
// requests, or whatever has accumulated after maxWait, are sent together.
func NewBatcher(client *Client, maxBatch int, maxWait time.Duration) *Batcher {
	if maxBatch <= 0 {
		maxBatch = 32
	}
	if maxWait <= 0 {
		maxWait = 10 * time.Millisecond
	}
	return &Batcher{client: client, maxBatch: maxBatch, maxWait: maxWait}
}

// Embed enqueues a single text for embedding, blocking until its batch (which
// may include other concurrent callers' texts) is flushed.
func (b *Batcher) Embed(ctx context.Context, text string) ([]float32, error) {
	resultCh := make(chan batchResult, 1)

	b.mu.Lock()
	b.pending = append(b.pending, request{text: text, result: resultCh})
	shouldFlush := len(b.pending) >= b.maxBatch
	if shouldFlush {
		if b.timer != nil {
			b.timer.Stop()
			b.timer = nil
		}
	} else if b.timer == nil {
		b.timer = time.AfterFunc(b.maxWait, func() { b.flush(ctx) })
	}
	b.mu.Unlock()

	if shouldFlush {
		b.flush(ctx)
	}

	select {
	case res := <-resultCh:
		return res.vec, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (b *Batcher) flush(ctx context.Context) {
	b.mu.Lock()
	batch := b.pending
	b.pending = nil
	b.timer = nil
	b.mu.Unlock()

	if len(batch) == 0 {
		return
	}

	texts := make([]string, len(batch))
	for i, r := range batch {
		texts[i] = r.text
	}

	vecs, err := b.client.EmbedBatch(ctx, texts)
	for i, r := range batch {
		if err != nil {
			r.result <- batchResult{err: err}
			continue
		}
		if i >= len(vecs) {
			r.result <- batchResult{err: err}
			continue
		}
		r.result <- batchResult{vec: vecs[i]}
	}
}
