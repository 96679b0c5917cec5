package gateway

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyrup-ai/sweetmcp-sub007/internal/gatewayerr"
)

func TestNormalize_CanonicalBodyPassesThrough(t *testing.T) {
	body := []byte(`{"jsonrpc":"2.0","method":"echo","params":{"message":"hi"},"id":1}`)
	norm, err := Normalize(body, RequestContext{})
	require.NoError(t, err)
	assert.Equal(t, ProtocolCanonical, norm.Protocol)
	assert.Equal(t, "echo", norm.Envelope.Method)
}

func TestNormalize_MCPBodyConvertsToCanonical(t *testing.T) {
	body := []byte(`{"method":"echo","arguments":{"message":"hi"}}`)
	norm, err := Normalize(body, RequestContext{})
	require.NoError(t, err)
	assert.Equal(t, ProtocolMCP, norm.Protocol)
	assert.Equal(t, "echo", norm.Envelope.Method)
	assert.NotEmpty(t, norm.Envelope.ID)
}

func TestNormalize_GraphQLBodyConvertsToCanonical(t *testing.T) {
	body := []byte(`{"query":"{ ping }"}`)
	norm, err := Normalize(body, RequestContext{})
	require.NoError(t, err)
	assert.Equal(t, ProtocolGraphQL, norm.Protocol)
	assert.Equal(t, "query", norm.Envelope.Method)
}

func TestNormalize_MalformedJSONIsValidationError(t *testing.T) {
	_, err := Normalize([]byte(`not json`), RequestContext{})
	assert.Error(t, err)
}

func TestNormalize_InvalidCanonicalEnvelopeIsRejectedAfterTransform(t *testing.T) {
	body := []byte(`{"jsonrpc":"2.0","method":"a/b","id":1}`)
	_, err := Normalize(body, RequestContext{})
	assert.Error(t, err)
}

func TestReshape_CanonicalIsPlainJSON(t *testing.T) {
	resp := Response{Version: "2.0", ID: json.RawMessage("1"), Result: map[string]any{"ok": true}}
	out, err := Reshape(resp, ProtocolCanonical)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, map[string]any{"ok": true}, decoded["result"])
}

func TestReshape_GraphQLWrapsResultInData(t *testing.T) {
	resp := Response{Version: "2.0", Result: map[string]any{"ping": "pong"}}
	out, err := Reshape(resp, ProtocolGraphQL)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, map[string]any{"ping": "pong"}, decoded["data"])
}

func TestReshape_GraphQLWrapsErrorInErrorsArray(t *testing.T) {
	resp := Response{Version: "2.0", Error: &ErrorObject{Code: CodeMethodNotFound, Message: "not found"}}
	out, err := Reshape(resp, ProtocolGraphQL)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out, &decoded))
	errs := decoded["errors"].([]any)
	require.Len(t, errs, 1)
	assert.Equal(t, "not found", errs[0].(map[string]any)["message"])
}

func TestReshape_BinaryFramesResultWithMarker(t *testing.T) {
	resp := Response{Version: "2.0", Result: map[string]any{"ok": true}}
	out, err := Reshape(resp, ProtocolBinary)
	require.NoError(t, err)

	assert.Equal(t, binaryMarker, out[:4])
	segLen := binary.BigEndian.Uint32(out[4:8])
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out[8:8+segLen], &decoded))
}

func TestFailureResponse_UsesKindMappedCode(t *testing.T) {
	resp := FailureResponse(gatewayerr.NotFound("unknown method", "x"))
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeMethodNotFound, resp.Error.Code)
	assert.Equal(t, NullID, resp.ID)
}

func TestFailureResponse_PlainErrorBecomesInternal(t *testing.T) {
	resp := FailureResponse(errors.New("boom"))
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeInternal, resp.Error.Code)
}
