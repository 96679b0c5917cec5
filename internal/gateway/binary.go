package gateway

import (
	"encoding/binary"
	"encoding/json"

	"github.com/cyrup-ai/sweetmcp-sub007/internal/gatewayerr"
)

// binaryFromBody parses a Cap'n-Proto-ish framed body into a canonical
// Envelope: the first two length-prefixed segments are the method (as a
// UTF-8 string) and the params (as a raw JSON blob), per spec.md §4.1's
// binary transform. Framing is [4-byte marker][4-byte len][bytes]...,
// repeated per segment.
func binaryFromBody(body []byte) (Envelope, error) {
	segments, err := readFramedSegments(body, 2)
	if err != nil {
		return Envelope{}, err
	}

	method := string(segments[0])
	params := segments[1]
	if len(params) == 0 {
		params = json.RawMessage("{}")
	}
	if !json.Valid(params) {
		return Envelope{}, gatewayerr.Validation("binary frame params segment is not valid json", nil)
	}

	return Envelope{Version: "2.0", Method: method, Params: params, ID: mintID()}, nil
}

func readFramedSegments(body []byte, count int) ([][]byte, error) {
	if len(body) < len(binaryMarker) {
		return nil, gatewayerr.Validation("binary frame too short for marker", nil)
	}
	cursor := len(binaryMarker)
	segments := make([][]byte, 0, count)

	for i := 0; i < count; i++ {
		if cursor+4 > len(body) {
			return nil, gatewayerr.Validation("binary frame truncated before segment length", nil)
		}
		segLen := int(binary.BigEndian.Uint32(body[cursor : cursor+4]))
		cursor += 4
		if segLen < 0 || cursor+segLen > len(body) {
			return nil, gatewayerr.Validation("binary frame segment length out of bounds", segLen)
		}
		segments = append(segments, body[cursor:cursor+segLen])
		cursor += segLen
	}
	return segments, nil
}

// binaryReply frames a canonical Response as a single length-prefixed
// segment: [4-byte marker][4-byte len][json bytes], per spec.md §4.1's
// "binary replies frame the result length-prefixed".
func binaryReply(resp Response) ([]byte, error) {
	payload, err := json.Marshal(resp)
	if err != nil {
		return nil, gatewayerr.Internal("failed to encode binary reply payload", nil).Wrap(err)
	}

	out := make([]byte, 0, len(binaryMarker)+4+len(payload))
	out = append(out, binaryMarker...)
	lenBuf := make([]byte, 4)
	binary.BigEndian.PutUint32(lenBuf, uint32(len(payload)))
	out = append(out, lenBuf...)
	out = append(out, payload...)
	return out, nil
}
