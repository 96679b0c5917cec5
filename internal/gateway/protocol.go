package gateway

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"
)

// Protocol names the wire dialect a request arrived in, remembered so the
// reply can be reshaped back into the caller's original shape.
type Protocol string

const (
	ProtocolCanonical Protocol = "canonical"
	ProtocolMCP       Protocol = "mcp_streamable"
	ProtocolGraphQL   Protocol = "graphql"
	ProtocolBinary    Protocol = "binary"
)

// binaryMarker is the four-byte framing prefix this gateway's
// Cap'n-Proto-ish binary protocol uses, grounded on spec.md §4.1's
// "binary marker consistent with the Cap'n-Proto-ish framing".
var binaryMarker = []byte{0x43, 0x41, 0x50, 0x4e} // "CAPN"

// Detection is the outcome of running the protocol detector over a request:
// the inferred protocol plus a confidence in [0,1].
type Detection struct {
	Protocol   Protocol
	Confidence float64
}

// RequestContext carries the HTTP-level hints (headers, path) the detector
// uses to refine its body-derived guess.
type RequestContext struct {
	ContentType string
	Path        string
}

// Detect classifies body as one of {canonical, mcp_streamable, graphql,
// binary}, per spec.md §4.1's short-circuiting detection algorithm: each
// step below fires in order, stopping at the first confidence ≥ 0.8 match.
func Detect(body []byte, ctx RequestContext) Detection {
	if bytes.HasPrefix(bytes.TrimSpace(body), binaryMarker) {
		return refineByHeaders(Detection{Protocol: ProtocolBinary, Confidence: 0.7}, ctx)
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(body, &probe); err == nil {
		if _, ok := probe["jsonrpc"]; ok {
			return Detection{Protocol: ProtocolCanonical, Confidence: 1.0}
		}
		_, hasMethod := probe["method"]
		_, hasParams := probe["params"]
		_, hasArguments := probe["arguments"]
		if hasMethod && (hasParams || hasArguments) {
			return refineByHeaders(Detection{Protocol: ProtocolMCP, Confidence: 0.9}, ctx)
		}
		if _, hasQuery := probe["query"]; hasQuery {
			return refineByHeaders(Detection{Protocol: ProtocolGraphQL, Confidence: 0.8}, ctx)
		}
	}

	refined := refineByHeaders(Detection{Protocol: ProtocolCanonical, Confidence: 0.3}, ctx)
	if refined.Confidence >= 0.8 {
		return refined
	}
	return Detection{Protocol: ProtocolCanonical, Confidence: 0.3}
}

// refineByHeaders adjusts confidence using Content-Type and request path
// hints, per spec.md §4.1 step 4. It never downgrades a protocol the body
// already matched with high confidence; it only raises confidence when the
// transport-level hints agree, or nudges toward a different protocol when
// the body was ambiguous.
func refineByHeaders(d Detection, ctx RequestContext) Detection {
	ct := strings.ToLower(ctx.ContentType)
	path := strings.ToLower(ctx.Path)

	switch {
	case strings.Contains(ct, "application/graphql") || strings.Contains(path, "/graphql"):
		if d.Protocol == ProtocolGraphQL {
			d.Confidence = maxF(d.Confidence, 0.95)
		} else if d.Confidence < 0.8 {
			d = Detection{Protocol: ProtocolGraphQL, Confidence: 0.85}
		}
	case strings.Contains(ct, "application/capnp"):
		if d.Protocol == ProtocolBinary {
			d.Confidence = maxF(d.Confidence, 0.9)
		} else if d.Confidence < 0.8 {
			d = Detection{Protocol: ProtocolBinary, Confidence: 0.85}
		}
	case strings.Contains(path, "/mcp"):
		if d.Protocol == ProtocolMCP {
			d.Confidence = maxF(d.Confidence, 0.95)
		}
	case strings.Contains(path, "/rpc"):
		if d.Protocol == ProtocolCanonical {
			d.Confidence = maxF(d.Confidence, 0.95)
		}
	}
	return d
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// ContextFromRequest extracts the RequestContext hints from an *http.Request.
func ContextFromRequest(r *http.Request) RequestContext {
	return RequestContext{ContentType: r.Header.Get("Content-Type"), Path: r.URL.Path}
}
