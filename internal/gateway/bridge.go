package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/cyrup-ai/sweetmcp-sub007/internal/gatewayerr"
	"github.com/cyrup-ai/sweetmcp-sub007/internal/telemetry"
)

const maxBatchConcurrency = 10

// Downstream is the transport the Bridge forwards canonical requests
// across, grounded on mcpprovider.Bridge.sendRequest generalized to any
// downstream MCP-speaking service (not just a provider's own HTTP
// endpoint).
type Downstream interface {
	Send(ctx context.Context, env Envelope) (Response, error)
	URL() string
}

// HTTPDownstream sends canonical envelopes to a downstream MCP service over
// plain HTTP JSON, mirroring mcpprovider.Bridge.sendRequest without its
// MCP-session-header and SSE-body special cases (the downstream here always
// speaks canonical JSON-RPC).
type HTTPDownstream struct {
	Client *http.Client
	Base   string
}

func (d *HTTPDownstream) URL() string { return d.Base }

func (d *HTTPDownstream) Send(ctx context.Context, env Envelope) (Response, error) {
	body, err := json.Marshal(env)
	if err != nil {
		return Response{}, gatewayerr.Internal("failed to marshal downstream request", nil).Wrap(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.Base, bytes.NewReader(body))
	if err != nil {
		return Response{}, gatewayerr.Transport("failed to build downstream request", nil).Wrap(err)
	}
	req.Header.Set("Content-Type", "application/json")

	httpResp, err := d.Client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return Response{}, gatewayerr.Timeout("downstream request timed out", d.Base).Wrap(err)
		}
		return Response{}, gatewayerr.Transport("downstream request failed", d.Base).Wrap(err)
	}
	defer httpResp.Body.Close()

	respBytes, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return Response{}, gatewayerr.Transport("failed to read downstream response", d.Base).Wrap(err)
	}
	if httpResp.StatusCode >= 400 {
		return Response{}, gatewayerr.Transport(
			fmt.Sprintf("downstream returned HTTP %d", httpResp.StatusCode), string(respBytes))
	}

	var resp Response
	if err := json.Unmarshal(respBytes, &resp); err != nil {
		return Response{}, gatewayerr.Internal("downstream response is not valid json", string(respBytes)).Wrap(err)
	}
	return resp, nil
}

// Bridge forwards canonical envelopes to a Downstream with a timeout,
// circuit breaker, and retry policy, per spec.md §4.2's forward_request
// contract.
type Bridge struct {
	downstream Downstream
	timeout    time.Duration
	breaker    *gobreaker.CircuitBreaker
}

// NewBridge wraps downstream with a per-bridge circuit breaker and request
// timeout.
func NewBridge(downstream Downstream, timeout time.Duration) *Bridge {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	name := downstream.URL()
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name: name,
		OnStateChange: func(_ string, from, to gobreaker.State) {
			telemetry.BridgeCircuitState.WithLabelValues(name).Set(breakerStateValue(to))
		},
	})
	return &Bridge{downstream: downstream, timeout: timeout, breaker: breaker}
}

// DownstreamURL reports the wrapped downstream's address, used in health
// reporting.
func (b *Bridge) DownstreamURL() string { return b.downstream.URL() }

func breakerStateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateOpen:
		return 1
	case gobreaker.StateHalfOpen:
		return 0.5
	default:
		return 0
	}
}

// Forward implements spec.md §4.2's forward_request: validate, send with
// timeout, post-process the response. Failures at any step become a
// canonical error response carrying the original request's id.
func (b *Bridge) Forward(ctx context.Context, env Envelope) Response {
	if err := Validate(&env); err != nil {
		return FailureResponseWithID(err, env.ID)
	}

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	result, err := b.breaker.Execute(func() (any, error) {
		return b.downstream.Send(ctx, env)
	})
	if err != nil {
		return b.transportFailure(err, env.ID)
	}

	resp := result.(Response)
	return postProcess(resp, env.ID)
}

func (b *Bridge) transportFailure(err error, id json.RawMessage) Response {
	code := CodeUnavailable
	kind := "unavailable"
	if ge, ok := gatewayerr.As(err); ok && ge.Kind == gatewayerr.KindTimeout {
		code = CodeTimeout
		kind = "timeout"
	}
	data := map[string]any{"downstream_url": b.downstream.URL(), "kind": kind}
	return NewErrorResponse(id, code, err.Error(), data)
}

// postProcess ensures the downstream reply carries jsonrpc/id fields
// matching the request, wrapping malformed (non-object) results as an
// internal-error response, per spec.md §4.2 step 3.
func postProcess(resp Response, requestID json.RawMessage) Response {
	if resp.Version == "" {
		resp.Version = "2.0"
	}
	if len(resp.ID) == 0 {
		resp.ID = requestID
	}
	if resp.Error == nil && resp.Result != nil {
		if !isJSONObjectOrArray(resp.Result) {
			return NewErrorResponse(requestID, CodeInternal, "downstream result is not an object", nil)
		}
	}
	return resp
}

func isJSONObjectOrArray(v any) bool {
	b, err := json.Marshal(v)
	if err != nil {
		return false
	}
	var probe any
	if err := json.Unmarshal(b, &probe); err != nil {
		return false
	}
	switch probe.(type) {
	case map[string]any, []any:
		return true
	default:
		return false
	}
}

// FailureResponseWithID is FailureResponse but preserves the original
// request id instead of forcing Null, used where the id is already known
// good (post-validation failures downstream of parsing).
func FailureResponseWithID(err error, id json.RawMessage) Response {
	resp := FailureResponse(err)
	if len(id) > 0 {
		resp.ID = id
	}
	return resp
}

// ForwardBatch dispatches a batch of envelopes concurrently with a
// semaphore of width 10, preserving request order in the reply slice, per
// spec.md §4.2's batch forwarding contract. A panic or unexpected failure
// in a single slot produces an internal-error element at that position
// rather than failing the whole batch.
func (b *Bridge) ForwardBatch(ctx context.Context, envs []Envelope) []Response {
	responses := make([]Response, len(envs))
	sem := make(chan struct{}, maxBatchConcurrency)
	done := make(chan struct{}, len(envs))

	for i, env := range envs {
		go func(i int, env Envelope) {
			sem <- struct{}{}
			defer func() {
				<-sem
				if r := recover(); r != nil {
					responses[i] = NewErrorResponse(NullID, CodeInternal, fmt.Sprintf("task panicked: %v", r), nil)
				}
				done <- struct{}{}
			}()
			responses[i] = b.Forward(ctx, env)
		}(i, env)
	}
	for range envs {
		<-done
	}
	return responses
}

// RetryPolicy configures ForwardWithRetry's bounded-attempt behavior.
type RetryPolicy struct {
	MaxRetries int
	Delay      time.Duration
}

// ForwardWithRetry retries Forward up to policy.MaxRetries times with a
// fixed delay between attempts, suppressing retries when the failure looks
// like a client-side (4xx) error, per spec.md §4.2's forward_request_with_retry.
func (b *Bridge) ForwardWithRetry(ctx context.Context, env Envelope, policy RetryPolicy) Response {
	attempts := policy.MaxRetries
	if attempts <= 0 {
		attempts = 1
	}

	var last Response
	for attempt := 0; attempt < attempts; attempt++ {
		last = b.Forward(ctx, env)
		if last.Error == nil {
			return last
		}
		if isClientError(last.Error) {
			return last
		}
		if attempt < attempts-1 {
			telemetry.BridgeRetries.WithLabelValues(b.downstream.URL()).Inc()
			select {
			case <-ctx.Done():
				return last
			case <-time.After(policy.Delay):
			}
		}
	}
	return last
}

// isClientError reports whether an error response's message (or its data,
// when that is a string) names a downstream HTTP 4xx status, or whether a
// map data carries kind "client_error"; retries should not paper over these.
func isClientError(e *ErrorObject) bool {
	text := e.Message
	if data, ok := e.Data.(string); ok {
		text = data
	} else if m, ok := e.Data.(map[string]any); ok {
		if kind, _ := m["kind"].(string); kind == "client_error" {
			return true
		}
	}
	if !strings.Contains(text, "HTTP ") {
		return false
	}
	idx := strings.Index(text, "HTTP ")
	rest := strings.TrimSpace(text[idx+5:])
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return false
	}
	code, err := strconv.Atoi(fields[0])
	if err != nil {
		return false
	}
	return code >= 400 && code < 500
}
