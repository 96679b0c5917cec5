package gateway

import (
	"encoding/json"

	"github.com/google/uuid"

	"github.com/cyrup-ai/sweetmcp-sub007/internal/gatewayerr"
)

// mcpFromStreamable converts an MCP-streamable body (method/params or
// method/arguments, no jsonrpc field) into a canonical Envelope, minting an
// id when the source omitted one, per spec.md §4.1's MCP transform.
func mcpFromStreamable(body []byte) (Envelope, error) {
	var raw struct {
		Method    string          `json:"method"`
		Params    json.RawMessage `json:"params"`
		Arguments json.RawMessage `json:"arguments"`
		ID        json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return Envelope{}, gatewayerr.Validation("malformed mcp streamable body", nil).Wrap(err)
	}

	params := raw.Params
	if len(params) == 0 {
		params = raw.Arguments
	}

	id := raw.ID
	if len(id) == 0 {
		id = mintID()
	}

	return Envelope{Version: "2.0", Method: raw.Method, Params: params, ID: id}, nil
}

// mintID generates a fresh request id as a JSON string literal, used
// whenever an inbound non-canonical protocol omits one.
func mintID() json.RawMessage {
	b, _ := json.Marshal(uuid.NewString())
	return b
}
