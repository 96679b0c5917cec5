package gateway

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyrup-ai/sweetmcp-sub007/internal/gatewayerr"
)

type fakeDownstream struct {
	url      string
	resp     Response
	err      error
	delay    time.Duration
	calls    int
}

func (f *fakeDownstream) URL() string { return f.url }

func (f *fakeDownstream) Send(ctx context.Context, env Envelope) (Response, error) {
	f.calls++
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return Response{}, gatewayerr.Timeout("downstream request timed out", f.url).Wrap(ctx.Err())
		}
	}
	if f.err != nil {
		return Response{}, f.err
	}
	return f.resp, nil
}

func TestBridge_Forward_Success(t *testing.T) {
	down := &fakeDownstream{url: "http://peer", resp: Response{Version: "2.0", Result: map[string]any{"ok": true}}}
	b := NewBridge(down, time.Second)

	resp := b.Forward(context.Background(), validEnvelope())
	assert.Nil(t, resp.Error)
	assert.Equal(t, "2.0", resp.Version)
	assert.Equal(t, json.RawMessage(`1`), resp.ID)
}

func TestBridge_Forward_InvalidEnvelopeNeverReachesDownstream(t *testing.T) {
	down := &fakeDownstream{url: "http://peer", resp: Response{Version: "2.0"}}
	b := NewBridge(down, time.Second)

	resp := b.Forward(context.Background(), Envelope{Version: "1.0", Method: "x"})
	require.NotNil(t, resp.Error)
	assert.Equal(t, 0, down.calls)
}

func TestBridge_Forward_TimeoutBecomesCodeTimeout(t *testing.T) {
	down := &fakeDownstream{url: "http://peer", delay: 50 * time.Millisecond}
	b := NewBridge(down, 5*time.Millisecond)

	resp := b.Forward(context.Background(), validEnvelope())
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeTimeout, resp.Error.Code)
}

func TestBridge_Forward_TransportFailureBecomesCodeUnavailable(t *testing.T) {
	down := &fakeDownstream{url: "http://peer", err: gatewayerr.Transport("boom", nil)}
	b := NewBridge(down, time.Second)

	resp := b.Forward(context.Background(), validEnvelope())
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeUnavailable, resp.Error.Code)
}

func TestBridge_Forward_NonObjectResultBecomesInternalError(t *testing.T) {
	down := &fakeDownstream{url: "http://peer", resp: Response{Version: "2.0", Result: "just a string"}}
	b := NewBridge(down, time.Second)

	resp := b.Forward(context.Background(), validEnvelope())
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeInternal, resp.Error.Code)
}

func TestBridge_Forward_FillsMissingVersionAndID(t *testing.T) {
	down := &fakeDownstream{url: "http://peer", resp: Response{Result: map[string]any{"ok": true}}}
	b := NewBridge(down, time.Second)

	resp := b.Forward(context.Background(), validEnvelope())
	assert.Equal(t, "2.0", resp.Version)
	assert.Equal(t, json.RawMessage(`1`), resp.ID)
}

func TestBridge_ForwardBatch_PreservesOrder(t *testing.T) {
	down := &fakeDownstream{url: "http://peer", resp: Response{Version: "2.0", Result: map[string]any{"ok": true}}}
	b := NewBridge(down, time.Second)

	envs := make([]Envelope, 20)
	for i := range envs {
		id, _ := json.Marshal(i)
		envs[i] = Envelope{Version: "2.0", Method: "echo", ID: id}
	}

	responses := b.ForwardBatch(context.Background(), envs)
	require.Len(t, responses, 20)
	for i, resp := range responses {
		id, _ := json.Marshal(i)
		assert.Equal(t, json.RawMessage(id), resp.ID, "response %d out of order", i)
	}
}

func TestBridge_ForwardWithRetry_RetriesOnTransportError(t *testing.T) {
	down := &fakeDownstream{url: "http://peer", err: gatewayerr.Transport("boom", nil)}
	b := NewBridge(down, time.Second)

	resp := b.ForwardWithRetry(context.Background(), validEnvelope(), RetryPolicy{MaxRetries: 3, Delay: time.Millisecond})
	require.NotNil(t, resp.Error)
	assert.Equal(t, 3, down.calls)
}

func TestBridge_ForwardWithRetry_StopsOnSuccess(t *testing.T) {
	down := &fakeDownstream{url: "http://peer", resp: Response{Version: "2.0", Result: map[string]any{"ok": true}}}
	b := NewBridge(down, time.Second)

	resp := b.ForwardWithRetry(context.Background(), validEnvelope(), RetryPolicy{MaxRetries: 3, Delay: time.Millisecond})
	assert.Nil(t, resp.Error)
	assert.Equal(t, 1, down.calls)
}

func TestBridge_ForwardWithRetry_DoesNotRetryClientError(t *testing.T) {
	down := &fakeDownstream{url: "http://peer", resp: Response{}, err: gatewayerr.Transport("downstream returned HTTP 404", "not found")}
	b := NewBridge(down, time.Second)

	resp := b.ForwardWithRetry(context.Background(), validEnvelope(), RetryPolicy{MaxRetries: 3, Delay: time.Millisecond})
	require.NotNil(t, resp.Error)
	assert.Equal(t, 1, down.calls)
}
