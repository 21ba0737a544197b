package tss

import (
	"io"
)

type (
	// Outgoing is the wire output of one round for one party: either a single
	// payload broadcast to every other party, or one payload per recipient
	// index. Bodies are deterministic cbor; the session adds framing.
	Outgoing struct {
		IsBroadcast bool
		// Broadcast body; set when IsBroadcast
		Broadcast []byte
		// Direct bodies indexed by recipient; own slot nil
		Direct [][]byte
	}

	// Round is one step of a protocol's per-party state machine. A round
	// emits its outgoing payloads, verifies incoming ones (cryptographic
	// verification of embedded proofs happens in Verify) and finalizes into
	// its successor, a result, or a failure.
	Round interface {
		// RoundNumber is 1-indexed.
		RoundNumber() int
		// NextRoundNumber is 0 when this round is terminal.
		NextRoundNumber() int
		// NeedsConsensus marks a broadcast round that is followed by the
		// session-level hash-exchange service round.
		NeedsConsensus() bool
		Emit(rnd io.Reader) (*Outgoing, *Error)
		Verify(from int, wireBytes []byte) (payload interface{}, err *Error)
		Finalize(rnd io.Reader, payloads *HoleVec) (next Round, result interface{}, err *Error)
		WrapError(err error, kind ErrorKind, culprits ...*PartyID) *Error
	}
)

func NewBroadcastOutgoing(body []byte) *Outgoing {
	return &Outgoing{IsBroadcast: true, Broadcast: body}
}

func NewDirectOutgoing(bodies [][]byte) *Outgoing {
	return &Outgoing{IsBroadcast: false, Direct: bodies}
}
