// Package gateway implements the protocol-normalization layer from spec.md
// §4.1-§4.2: envelope validation, protocol detection and transforms, the
// SSE session layer, and the JSON-RPC bridge/forwarder. Grounded on
// janhq-server/services/mcp-tools' mcpprovider.Bridge and httpserver
// packages, generalized from a single fixed downstream shape to the
// multi-protocol surface spec.md describes.
package gateway

import (
	"encoding/json"

	"github.com/cyrup-ai/sweetmcp-sub007/internal/gatewayerr"
)

const (
	maxParamsDepth = 10
	maxBatchSize   = 100
)

// Envelope is the canonical JSON-RPC request representation every protocol
// normalizes to, per spec.md §3.
type Envelope struct {
	Version string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
	ID      json.RawMessage `json:"id,omitempty"`
}

// ErrorObject is the canonical JSON-RPC error shape.
type ErrorObject struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Response is the canonical JSON-RPC response: exactly one of Result or
// Error is populated.
type Response struct {
	Version string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *ErrorObject    `json:"error,omitempty"`
}

// Standard canonical error codes, per spec.md §6.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternal       = -32603
	CodeUnavailable    = -32001
	CodeTimeout        = -32002
)

// NullID is the JSON "null" id literal used on responses whose request id
// couldn't be determined (parse failures, batch task-join failures).
var NullID = json.RawMessage("null")

// NewErrorResponse builds a canonical error response for id.
func NewErrorResponse(id json.RawMessage, code int, message string, data any) Response {
	if id == nil {
		id = NullID
	}
	return Response{
		Version: "2.0",
		ID:      id,
		Error:   &ErrorObject{Code: code, Message: message, Data: data},
	}
}

// NewResultResponse builds a canonical success response for id.
func NewResultResponse(id json.RawMessage, result any) Response {
	return Response{Version: "2.0", ID: id, Result: result}
}

// Validate enforces every rule from spec.md §4.1's "Validation (canonical)"
// paragraph: version, non-empty method, id type, params shape, nesting
// depth, and method-name character restrictions.
func Validate(e *Envelope) error {
	if e.Version != "2.0" {
		return gatewayerr.Validation("invalid or missing jsonrpc version", e.Version)
	}
	if e.Method == "" {
		return gatewayerr.Validation("missing method", nil)
	}
	if containsPathSeparators(e.Method) {
		return gatewayerr.Validation("method name contains illegal characters", e.Method)
	}
	if err := validateID(e.ID); err != nil {
		return err
	}
	if err := validateParams(e.Params); err != nil {
		return err
	}
	return nil
}

func containsPathSeparators(method string) bool {
	for i := 0; i < len(method); i++ {
		switch method[i] {
		case '/', '\\':
			return true
		}
	}
	for i := 0; i+1 < len(method); i++ {
		if method[i] == '.' && method[i+1] == '.' {
			return true
		}
	}
	return false
}

func validateID(id json.RawMessage) error {
	if len(id) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(id, &v); err != nil {
		return gatewayerr.Validation("invalid id", string(id))
	}
	switch v.(type) {
	case string, float64, nil:
		return nil
	default:
		return gatewayerr.Validation("id must be string, integer, or null", string(id))
	}
}

func validateParams(params json.RawMessage) error {
	if len(params) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(params, &v); err != nil {
		return gatewayerr.Validation("params is not valid JSON", nil)
	}
	switch v.(type) {
	case map[string]any, []any:
	default:
		return gatewayerr.Validation("params must be an object or array", nil)
	}
	if depth := jsonDepth(v, 0); depth > maxParamsDepth {
		return gatewayerr.Validation("params nesting exceeds maximum depth", depth)
	}
	return nil
}

func jsonDepth(v any, current int) int {
	switch t := v.(type) {
	case map[string]any:
		max := current
		for _, child := range t {
			if d := jsonDepth(child, current+1); d > max {
				max = d
			}
		}
		return max
	case []any:
		max := current
		for _, child := range t {
			if d := jsonDepth(child, current+1); d > max {
				max = d
			}
		}
		return max
	default:
		return current
	}
}

// ValidateBatch enforces spec.md §4.1's batch-size boundary: empty batches
// and batches over 100 elements are rejected.
func ValidateBatch(batch []Envelope) error {
	if len(batch) == 0 {
		return gatewayerr.Validation("batch must not be empty", nil)
	}
	if len(batch) > maxBatchSize {
		return gatewayerr.Capacity("batch exceeds maximum size", len(batch))
	}
	return nil
}
