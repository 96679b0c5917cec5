package gateway

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func frameSegments(segments ...[]byte) []byte {
	out := append([]byte(nil), binaryMarker...)
	for _, seg := range segments {
		lenBuf := make([]byte, 4)
		binary.BigEndian.PutUint32(lenBuf, uint32(len(seg)))
		out = append(out, lenBuf...)
		out = append(out, seg...)
	}
	return out
}

func TestBinaryFromBody_ParsesMethodAndParams(t *testing.T) {
	body := frameSegments([]byte("echo"), []byte(`{"message":"hi"}`))
	env, err := binaryFromBody(body)
	require.NoError(t, err)
	assert.Equal(t, "echo", env.Method)
	assert.JSONEq(t, `{"message":"hi"}`, string(env.Params))
}

func TestBinaryFromBody_EmptyParamsSegmentDefaultsToEmptyObject(t *testing.T) {
	body := frameSegments([]byte("echo"), []byte(""))
	env, err := binaryFromBody(body)
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(env.Params))
}

func TestBinaryFromBody_InvalidJSONParamsSegmentIsError(t *testing.T) {
	body := frameSegments([]byte("echo"), []byte("not json"))
	_, err := binaryFromBody(body)
	assert.Error(t, err)
}

func TestBinaryFromBody_TooShortForMarkerIsError(t *testing.T) {
	_, err := binaryFromBody([]byte{0x43, 0x41})
	assert.Error(t, err)
}

func TestBinaryFromBody_TruncatedSegmentLengthIsError(t *testing.T) {
	body := append([]byte(nil), binaryMarker...)
	body = append(body, 0x00, 0x00) // only 2 of 4 length bytes
	_, err := binaryFromBody(body)
	assert.Error(t, err)
}

func TestBinaryFromBody_SegmentLengthOutOfBoundsIsError(t *testing.T) {
	body := append([]byte(nil), binaryMarker...)
	lenBuf := make([]byte, 4)
	binary.BigEndian.PutUint32(lenBuf, 1000)
	body = append(body, lenBuf...)
	body = append(body, []byte("short")...)
	_, err := binaryFromBody(body)
	assert.Error(t, err)
}

func TestBinaryFromBody_MintsID(t *testing.T) {
	body := frameSegments([]byte("echo"), []byte(`{}`))
	env, err := binaryFromBody(body)
	require.NoError(t, err)
	assert.NotEmpty(t, env.ID)
}
