package gateway

import (
	"encoding/json"

	"github.com/cyrup-ai/sweetmcp-sub007/internal/gatewayerr"
)

type graphqlRequest struct {
	Query         string          `json:"query"`
	Variables     json.RawMessage `json:"variables,omitempty"`
	OperationName string          `json:"operationName,omitempty"`
}

// graphqlFromBody converts a GraphQL POST body into a canonical Envelope,
// per spec.md §4.1: method is the operation name if present, else
// "query"; params carries {query, variables, operationName?}.
func graphqlFromBody(body []byte) (Envelope, error) {
	var req graphqlRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return Envelope{}, gatewayerr.Validation("malformed graphql body", nil).Wrap(err)
	}

	method := req.OperationName
	if method == "" {
		method = "query"
	}

	fields := map[string]any{
		"query":     req.Query,
		"variables": json.RawMessage(orNullJSON(req.Variables)),
	}
	if req.OperationName != "" {
		fields["operationName"] = req.OperationName
	}
	params, err := json.Marshal(fields)
	if err != nil {
		return Envelope{}, gatewayerr.Internal("failed to encode graphql params", nil).Wrap(err)
	}

	return Envelope{Version: "2.0", Method: method, Params: params, ID: mintID()}, nil
}

func orNullJSON(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 {
		return json.RawMessage("null")
	}
	return raw
}

// graphqlReply wraps a canonical Response back into GraphQL's {data}/{errors}
// reply shape, per spec.md §4.1's reverse transform.
func graphqlReply(resp Response) ([]byte, error) {
	if resp.Error != nil {
		return json.Marshal(map[string]any{
			"errors": []map[string]any{{
				"message":    resp.Error.Message,
				"extensions": map[string]any{"code": resp.Error.Code},
			}},
		})
	}
	return json.Marshal(map[string]any{"data": resp.Result})
}
