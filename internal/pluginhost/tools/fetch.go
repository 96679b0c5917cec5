package tools

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/invopop/jsonschema"

	"github.com/cyrup-ai/sweetmcp-sub007/internal/pluginhost"
)

// FetchParams is the fetch tool's parameters: a URL and an optional ordered
// list of fallback mirrors to try if the primary fails.
type FetchParams struct {
	URL       string   `json:"url" jsonschema:"required,description=primary URL to fetch"`
	Fallbacks []string `json:"fallbacks,omitempty" jsonschema:"description=fallback URLs tried in order if the primary fails"`
}

// Fetch retrieves content over HTTP, falling through an ordered list of
// mirrors on failure, per spec.md §4.3's multi-stage fallback content
// fetcher.
type Fetch struct {
	client *http.Client
	schema map[string]any
}

// NewFetch builds the fetch tool with the given per-attempt timeout.
func NewFetch(timeout time.Duration) *Fetch {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	reflector := jsonschema.Reflector{ExpandedStruct: true}
	raw, _ := json.Marshal(reflector.Reflect(&FetchParams{}))
	var schema map[string]any
	_ = json.Unmarshal(raw, &schema)
	return &Fetch{client: &http.Client{Timeout: timeout}, schema: schema}
}

func (f *Fetch) Description() pluginhost.ToolDescription {
	return pluginhost.ToolDescription{
		Name:        "fetch",
		Description: "Fetches content from a URL, falling through configured mirrors on failure.",
		InputSchema: f.schema,
	}
}

func (f *Fetch) Call(ctx context.Context, args json.RawMessage) (*pluginhost.Result, error) {
	var params FetchParams
	if err := json.Unmarshal(args, &params); err != nil {
		return pluginhost.ErrorResult("invalid arguments: " + err.Error()), nil
	}

	candidates := append([]string{params.URL}, params.Fallbacks...)
	var lastErr error
	for _, url := range candidates {
		body, err := f.fetchOne(ctx, url)
		if err == nil {
			return pluginhost.TextResult(body), nil
		}
		lastErr = err
	}
	return pluginhost.ErrorResult("all fetch attempts failed: " + lastErr.Error()), nil
}

func (f *Fetch) fetchOne(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", &httpStatusError{status: resp.StatusCode, url: url}
	}

	const maxBody = 1 << 20
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

type httpStatusError struct {
	status int
	url    string
}

func (e *httpStatusError) Error() string {
	return "fetch of " + e.url + " returned non-2xx status"
}
