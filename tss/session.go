package tss

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/tmpfs/synedrion/common"
)

const (
	// SessionIDLength is the byte length of a session identifier: 32 uniform
	// random bytes, also used as the shared randomness bound into every
	// proof transcript.
	SessionIDLength = 32
)

type (
	cachedMessage struct {
		from  int
		round int
		mt    MessageType
		body  []byte
	}

	// Session drives a sequence of rounds for one party. It is a
	// single-threaded cooperative state machine: the caller interleaves
	// EmitMessages, Receive (as transport delivers), and FinalizeRound once
	// IsFinishedReceiving reports true. It never blocks internally and is
	// single-use.
	Session struct {
		task        string
		sessionID   []byte
		parties     SortedPartyIDs
		ourIdx      int
		totalRounds int

		rnd   Round
		accum *HoleVec
		cache []cachedMessage

		// per-sender hashes of the broadcast bodies of a consensus-flagged
		// round; the digest over them is gossiped in the service round
		bcastHashes [][]byte

		result   interface{}
		finished bool
	}
)

func NewSession(task string, sessionID []byte, parties SortedPartyIDs, ourIdx, totalRounds int, first Round) (*Session, error) {
	if len(sessionID) != SessionIDLength {
		return nil, fmt.Errorf("session id must be %d bytes", SessionIDLength)
	}
	if ourIdx < 0 || len(parties) <= ourIdx {
		return nil, fmt.Errorf("own party index %d out of range", ourIdx)
	}
	if first == nil || first.RoundNumber() != 1 {
		return nil, errors.New("a session must begin at round 1")
	}
	return &Session{
		task:        task,
		sessionID:   append([]byte{}, sessionID...),
		parties:     parties,
		ourIdx:      ourIdx,
		totalRounds: totalRounds,
		rnd:         first,
	}, nil
}

func (s *Session) SessionID() []byte        { return s.sessionID }
func (s *Session) Parties() SortedPartyIDs  { return s.parties }
func (s *Session) PartyID() *PartyID        { return s.parties[s.ourIdx] }
func (s *Session) CurrentRoundNumber() int  { return s.rnd.RoundNumber() }
func (s *Session) TotalRounds() int         { return s.totalRounds }
func (s *Session) IsFinished() bool         { return s.finished }
func (s *Session) HasCached() bool          { return 0 < len(s.cache) }

// IsFinal reports whether the current round is the protocol's last.
func (s *Session) IsFinal() bool {
	return s.finished || s.rnd.NextRoundNumber() == 0
}

// EmitMessages serializes the current round's outgoing payload, prepends the
// round framing, and opens the round's accumulator. It must be called exactly
// once per round, before any Receive.
func (s *Session) EmitMessages(rnd io.Reader) (*Outgoing, *Error) {
	if s.finished {
		return nil, s.myFault(errors.New("the session already produced its result"))
	}
	if s.accum != nil {
		return nil, s.myFault(errors.New("the session is not in a sending state"))
	}
	out, err := s.rnd.Emit(rnd)
	if err != nil {
		return nil, err
	}
	number := s.rnd.RoundNumber()
	framed := &Outgoing{IsBroadcast: out.IsBroadcast}
	if out.IsBroadcast {
		mt := MessageTypeBroadcast
		if _, ok := s.rnd.(*consensusRound); ok {
			mt = MessageTypeBroadcastConsensus
		}
		framed.Broadcast = FrameMessage(number, mt, out.Broadcast)
	} else {
		framed.Direct = make([][]byte, len(out.Direct))
		for j, body := range out.Direct {
			if body == nil {
				continue
			}
			framed.Direct[j] = FrameMessage(number, MessageTypeDirect, body)
		}
	}
	s.accum = NewHoleVec(len(s.parties), s.ourIdx)
	if s.rnd.NeedsConsensus() {
		s.bcastHashes = make([][]byte, len(s.parties))
		s.bcastHashes[s.ourIdx] = common.SHA512_256(out.Broadcast)
	}
	common.Logger.Debugf("party %s: %s round %d emitted", s.PartyID(), s.task, number)
	return framed, nil
}

// Receive decodes the framing tag of an incoming payload and routes it:
// current-round payloads are verified and stored, payloads exactly one round
// ahead are cached, consensus echoes for a round still being received are
// cached, anything else is rejected as out of order.
func (s *Session) Receive(from int, wireBytes []byte) *Error {
	if from < 0 || len(s.parties) <= from || from == s.ourIdx {
		return s.myFault(fmt.Errorf("received a message with an invalid sender index %d", from))
	}
	round, mt, body, ok := UnframeMessage(wireBytes)
	if !ok {
		return s.theirFault(errors.New("message too short to carry a round tag"), KindDeserialization, from)
	}
	cur := s.rnd.RoundNumber()
	_, inConsensus := s.rnd.(*consensusRound)

	switch {
	case round == cur && s.matchesCurrentStage(mt, inConsensus):
		return s.receiveCurrent(from, mt, body)
	case round == cur+1 && round <= s.totalRounds && mt != MessageTypeBroadcastConsensus:
		// a fast party already finalized round `cur` and moved on; hold its
		// message until we transition
		s.cache = append(s.cache, cachedMessage{from: from, round: round, mt: mt, body: body})
		return nil
	case round == cur && mt == MessageTypeBroadcastConsensus && s.rnd.NeedsConsensus() && !inConsensus:
		// the consensus echo for the round we are still receiving
		s.cache = append(s.cache, cachedMessage{from: from, round: round, mt: mt, body: body})
		return nil
	default:
		return s.theirFault(
			fmt.Errorf("unexpected round %d (%s) message while in round %d", round, mt, cur),
			KindOutOfOrderMessage, from)
	}
}

func (s *Session) matchesCurrentStage(mt MessageType, inConsensus bool) bool {
	if inConsensus {
		return mt == MessageTypeBroadcastConsensus
	}
	return mt != MessageTypeBroadcastConsensus
}

func (s *Session) receiveCurrent(from int, mt MessageType, body []byte) *Error {
	if s.accum == nil {
		return s.myFault(errors.New("the session is in a sending state, cannot receive messages"))
	}
	if s.accum.Has(from) {
		return s.theirFault(errors.New("duplicate message for an already filled slot"), KindDuplicateMessage, from)
	}
	payload, err := s.rnd.Verify(from, body)
	if err != nil {
		return err
	}
	if err := s.accum.Put(from, payload); err != nil {
		return s.myFault(err)
	}
	if s.rnd.NeedsConsensus() {
		s.bcastHashes[from] = common.SHA512_256(body)
	}
	return nil
}

// ApplyCached feeds the cached messages that belong to the current stage into
// the current round and keeps those that are still ahead in the cache. Call
// it after FinalizeRound and EmitMessages, before waiting for new deliveries.
func (s *Session) ApplyCached() *Error {
	cached := s.cache
	s.cache = nil
	keep := make([]cachedMessage, 0, len(cached))
	cur := s.rnd.RoundNumber()
	_, inConsensus := s.rnd.(*consensusRound)
	for _, msg := range cached {
		switch {
		case msg.round == cur && s.matchesCurrentStage(msg.mt, inConsensus):
			if err := s.receiveCurrent(msg.from, msg.mt, msg.body); err != nil {
				return err
			}
		case msg.round == cur+1 && msg.mt != MessageTypeBroadcastConsensus:
			// still one round ahead of us; hold it for the next transition
			keep = append(keep, msg)
		case msg.round == cur && msg.mt == MessageTypeBroadcastConsensus && s.rnd.NeedsConsensus() && !inConsensus:
			keep = append(keep, msg)
		default:
			return s.theirFault(
				fmt.Errorf("cached round %d (%s) message does not belong to round %d", msg.round, msg.mt, cur),
				KindOutOfOrderMessage, msg.from)
		}
	}
	s.cache = keep
	return nil
}

// IsFinishedReceiving is true iff every non-self accumulator slot is filled.
func (s *Session) IsFinishedReceiving() bool {
	return s.accum != nil && s.accum.IsFull()
}

// WaitingFor reports the parties whose current-round message has not arrived.
// Timeouts are the caller's responsibility; see MissingError.
func (s *Session) WaitingFor() []*PartyID {
	if s.accum == nil {
		return nil
	}
	missing := s.accum.Missing()
	ids := make([]*PartyID, 0, len(missing))
	for _, j := range missing {
		ids = append(ids, s.parties[j])
	}
	return ids
}

// MissingError blames the parties the session is still waiting for; callers
// invoke it when their own delivery timeout elapses.
func (s *Session) MissingError() *Error {
	waiting := s.WaitingFor()
	if len(waiting) == 0 {
		return s.myFault(errors.New("no messages are missing"))
	}
	return NewError(errors.New("timed out waiting for round messages"),
		KindMissingMessage, s.task, s.rnd.RoundNumber(), s.PartyID(), waiting...)
}

// FinalizeRound consumes the accumulator and advances the session: to the
// next round, through a consensus service round when the finalized round
// requires one, or to the terminal result.
func (s *Session) FinalizeRound(rnd io.Reader) *Error {
	if s.finished {
		return s.myFault(errors.New("the session already produced its result"))
	}
	if s.accum == nil {
		return s.myFault(errors.New("the session is in a sending state, cannot finalize"))
	}
	if !s.accum.IsFull() {
		return s.myFault(fmt.Errorf("messages from parties %v are missing", s.accum.Missing()))
	}
	accum := s.accum
	s.accum = nil
	next, result, err := s.rnd.Finalize(rnd, accum)
	if err != nil {
		return err
	}
	if result != nil {
		s.result = result
		s.finished = true
		common.Logger.Infof("party %s: %s finished!", s.PartyID(), s.task)
		return nil
	}
	if next == nil {
		return s.myFault(errors.New("round finalized to neither a successor nor a result"))
	}
	if s.rnd.NeedsConsensus() {
		next = &consensusRound{
			number:  s.rnd.RoundNumber(),
			next:    next,
			digest:  common.SHA512_256(s.bcastHashes...),
			session: s,
		}
		s.bcastHashes = nil
	}
	s.rnd = next
	common.Logger.Debugf("party %s: %s advanced to round %d", s.PartyID(), s.task, s.rnd.RoundNumber())
	return nil
}

// Result returns the session's terminal output.
func (s *Session) Result() (interface{}, *Error) {
	if !s.finished {
		return nil, s.myFault(errors.New("the session has not produced a result yet"))
	}
	return s.result, nil
}

func (s *Session) myFault(err error) *Error {
	return NewError(err, KindMyFault, s.task, s.rnd.RoundNumber(), s.PartyID())
}

func (s *Session) theirFault(err error, kind ErrorKind, from int) *Error {
	return NewError(err, kind, s.task, s.rnd.RoundNumber(), s.PartyID(), s.parties[from])
}

// ----- //

// consensusRound is the anti-equivocation service round the session
// interposes after a broadcast round flagged with NeedsConsensus: each party
// gossips the digest of the broadcast set it received, and any mismatch
// convicts the sender of equivocation.
type consensusRound struct {
	number  int
	next    Round
	digest  []byte
	session *Session
}

var _ Round = (*consensusRound)(nil)

func (r *consensusRound) RoundNumber() int     { return r.number }
func (r *consensusRound) NextRoundNumber() int { return r.next.RoundNumber() }
func (r *consensusRound) NeedsConsensus() bool { return false }

func (r *consensusRound) Emit(_ io.Reader) (*Outgoing, *Error) {
	return NewBroadcastOutgoing(r.digest), nil
}

func (r *consensusRound) Verify(from int, wireBytes []byte) (interface{}, *Error) {
	if !bytes.Equal(wireBytes, r.digest) {
		return nil, r.WrapError(errors.New("broadcast consensus digest mismatch"),
			KindConsensusMismatch, r.session.parties[from])
	}
	return struct{}{}, nil
}

func (r *consensusRound) Finalize(_ io.Reader, _ *HoleVec) (Round, interface{}, *Error) {
	return r.next, nil, nil
}

func (r *consensusRound) WrapError(err error, kind ErrorKind, culprits ...*PartyID) *Error {
	return NewError(err, kind, r.session.task, r.number, r.session.PartyID(), culprits...)
}
