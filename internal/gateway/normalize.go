package gateway

import (
	"encoding/json"

	"github.com/cyrup-ai/sweetmcp-sub007/internal/gatewayerr"
)

// NormalizedRequest pairs a canonical Envelope with enough context (which
// protocol it arrived in) to reshape the eventual reply back to the
// caller's original wire format.
type NormalizedRequest struct {
	Envelope Envelope
	Protocol Protocol
}

// Normalize detects body's protocol and converts it to a canonical
// Envelope, implementing spec.md §4.1 end to end: detection, transform,
// and canonical validation. Transform or validation failures are returned
// as gatewayerr errors; callers convert them to canonical error responses
// via FailureResponse.
func Normalize(body []byte, ctx RequestContext) (NormalizedRequest, error) {
	detection := Detect(body, ctx)

	var (
		env Envelope
		err error
	)
	switch detection.Protocol {
	case ProtocolCanonical:
		err = json.Unmarshal(body, &env)
		if err != nil {
			return NormalizedRequest{}, gatewayerr.Validation("malformed json body", nil).Wrap(err)
		}
		if env.Version == "" {
			env.Version = "2.0"
		}
	case ProtocolMCP:
		env, err = mcpFromStreamable(body)
	case ProtocolGraphQL:
		env, err = graphqlFromBody(body)
	case ProtocolBinary:
		env, err = binaryFromBody(body)
	default:
		err = gatewayerr.Validation("unrecognized protocol", string(detection.Protocol))
	}
	if err != nil {
		return NormalizedRequest{}, err
	}

	if err := Validate(&env); err != nil {
		return NormalizedRequest{}, err
	}

	return NormalizedRequest{Envelope: env, Protocol: detection.Protocol}, nil
}

// Reshape converts a canonical Response back into the wire bytes
// appropriate for protocol, per spec.md §4.1's reverse transforms:
// canonical/MCP replies are emitted verbatim as JSON.
func Reshape(resp Response, protocol Protocol) ([]byte, error) {
	switch protocol {
	case ProtocolGraphQL:
		return graphqlReply(resp)
	case ProtocolBinary:
		return binaryReply(resp)
	default:
		return json.Marshal(resp)
	}
}

// FailureResponse converts any error into the canonical error response
// shape spec.md §4.1 describes: id = Null, code drawn from the error kind
// if it's a gatewayerr.Error, else -32603 (internal error).
func FailureResponse(err error) Response {
	if ge, ok := gatewayerr.As(err); ok {
		return NewErrorResponse(NullID, codeForKind(ge.Kind), ge.Message, ge.Data)
	}
	return NewErrorResponse(NullID, CodeInternal, err.Error(), nil)
}

func codeForKind(k gatewayerr.Kind) int {
	switch k {
	case gatewayerr.KindValidation:
		return CodeInvalidParams
	case gatewayerr.KindNotFound:
		return CodeMethodNotFound
	case gatewayerr.KindTimeout:
		return CodeTimeout
	case gatewayerr.KindTransport, gatewayerr.KindCapacity:
		return CodeUnavailable
	default:
		return CodeInternal
	}
}
