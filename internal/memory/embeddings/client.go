// Package embeddings implements the HTTP embedding client the memory engine
// uses for search_by_text, grounded on
// memory-tools/internal/domain/embedding/client.go's batching HTTP client.
package embeddings

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cyrup-ai/sweetmcp-sub007/internal/gatewayerr"
)

// Client calls an external embedding service over HTTP, implementing
// memory.Embedder.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// New builds an embedding client pointed at baseURL with the given timeout.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
	}
}

type embedRequest struct {
	Input []string `json:"input"`
}

type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// Embed requests a single embedding vector for text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vecs) == 0 {
		return nil, gatewayerr.Transport("embedding service returned no vectors", nil)
	}
	return vecs[0], nil
}

// EmbedBatch requests embeddings for multiple texts in a single HTTP call.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	body, err := json.Marshal(embedRequest{Input: texts})
	if err != nil {
		return nil, gatewayerr.Internal("failed to encode embedding request", nil).Wrap(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, gatewayerr.Internal("failed to build embedding request", nil).Wrap(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, gatewayerr.Transport("embedding request failed", nil).Wrap(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, gatewayerr.Transport(fmt.Sprintf("embedding service returned status %d", resp.StatusCode), nil)
	}

	var out embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, gatewayerr.Transport("failed to decode embedding response", nil).Wrap(err)
	}
	return out.Embeddings, nil
}
