package tss

import (
	"github.com/fxamacker/cbor/v2"
)

// MessageType distinguishes the three kinds of wire payloads a round can
// produce; it is the second framing byte and part of the signed envelope.
type MessageType byte

const (
	MessageTypeDirect MessageType = iota
	MessageTypeBroadcast
	MessageTypeBroadcastConsensus
)

func (mt MessageType) String() string {
	switch mt {
	case MessageTypeDirect:
		return "Direct"
	case MessageTypeBroadcast:
		return "Broadcast"
	case MessageTypeBroadcastConsensus:
		return "BroadcastConsensus"
	}
	return "Unknown"
}

// The on-wire encoding must be deterministic so that hashes of the same
// payload agree across parties; cbor core deterministic mode guarantees
// that, while staying self-describing.
var cborEncMode, _ = cbor.CoreDetEncOptions().EncMode()

func MarshalMessage(v interface{}) ([]byte, error) {
	return cborEncMode.Marshal(v)
}

func UnmarshalMessage(bz []byte, v interface{}) error {
	return cbor.Unmarshal(bz, v)
}

// FrameMessage prepends the round number and message type to a message body.
// The round tag travels above the cryptographic layer so that misrouted or
// corrupted payloads fail with a clear error before any verification runs.
func FrameMessage(round int, mt MessageType, body []byte) []byte {
	framed := make([]byte, 0, 2+len(body))
	framed = append(framed, byte(round), byte(mt))
	return append(framed, body...)
}

// UnframeMessage splits a framed wire payload into its round tag, message
// type and body.
func UnframeMessage(bz []byte) (round int, mt MessageType, body []byte, ok bool) {
	if len(bz) < 2 {
		return 0, 0, nil, false
	}
	return int(bz[0]), MessageType(bz[1]), bz[2:], true
}
