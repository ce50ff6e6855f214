// Package cdn implements the toy CDN/origin pair (C8): the external
// wire/timing contract that exercises the same cache policies and the same
// in-flight coalescing model as package simulator, but over a real TCP
// transport instead of a lazy in-process trace. Grounded on
// proj-net/src/msg.rs's fixed-size frame codec and proj-toy-cdn's
// three-task client loop, re-expressed with net + golang.org/x/sync/errgroup
// instead of tokio tasks and channels.
package cdn

import (
	"encoding/binary"
	"fmt"
	"io"
)

// ResponsePayloadSize is N in spec §6's OriginResponse frame: a
// compile-time constant the origin fills with arbitrary bytes and the
// client ignores. 8 matches the deployment default the spec names.
const ResponsePayloadSize = 8

// requestFrameSize is CdnRequest's wire size: 8 bytes, a little-endian u64 key.
const requestFrameSize = 8

// responseFrameSize is OriginResponse's wire size: the key plus the payload.
const responseFrameSize = 8 + ResponsePayloadSize

// WriteRequest encodes a CdnRequest frame (client -> origin): an 8-byte
// little-endian key, no framing beyond the fixed size.
func WriteRequest(w io.Writer, key uint64) error {
	var buf [requestFrameSize]byte
	binary.LittleEndian.PutUint64(buf[:], key)
	_, err := w.Write(buf[:])
	return err
}

// ReadRequest decodes one CdnRequest frame, blocking until a full frame is
// available or the connection is closed.
func ReadRequest(r io.Reader) (uint64, error) {
	var buf [requestFrameSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}

// OriginResponse is one decoded OriginResponse frame. The client ignores
// Payload; it exists only to give the frame a non-trivial, configurable size.
type OriginResponse struct {
	Key     uint64
	Payload [ResponsePayloadSize]byte
}

// WriteResponse encodes an OriginResponse frame (origin -> client): the key
// followed by the payload bytes, verbatim.
func WriteResponse(w io.Writer, key uint64, payload [ResponsePayloadSize]byte) error {
	var buf [responseFrameSize]byte
	binary.LittleEndian.PutUint64(buf[:8], key)
	copy(buf[8:], payload[:])
	_, err := w.Write(buf[:])
	return err
}

// ReadResponse decodes one OriginResponse frame.
func ReadResponse(r io.Reader) (OriginResponse, error) {
	var buf [responseFrameSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return OriginResponse{}, fmt.Errorf("cdn: read response frame: %w", err)
	}
	var resp OriginResponse
	resp.Key = binary.LittleEndian.Uint64(buf[:8])
	copy(resp.Payload[:], buf[8:])
	return resp, nil
}
