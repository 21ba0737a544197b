package tss_test

import (
	"fmt"
	"io"
	mrand "math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tmpfs/synedrion/test"
	"github.com/tmpfs/synedrion/tss"
)

// mockRound is a trivial N-round echo protocol used to exercise the session
// driver without any cryptography. Every round broadcasts a payload derived
// from the round number and collects everyone else's.
type mockRound struct {
	number    int
	total     int
	consensus bool
	parties   tss.SortedPartyIDs
	ourIdx    int
	seen      map[int][]string
}

var _ tss.Round = (*mockRound)(nil)

func newMockRound(parties tss.SortedPartyIDs, ourIdx, total int, consensus bool) *mockRound {
	return &mockRound{
		number:    1,
		total:     total,
		consensus: consensus,
		parties:   parties,
		ourIdx:    ourIdx,
		seen:      make(map[int][]string),
	}
}

func (r *mockRound) RoundNumber() int { return r.number }
func (r *mockRound) NextRoundNumber() int {
	if r.number == r.total {
		return 0
	}
	return r.number + 1
}
func (r *mockRound) NeedsConsensus() bool { return r.consensus && r.number == 1 }

func (r *mockRound) Emit(_ io.Reader) (*tss.Outgoing, *tss.Error) {
	body := []byte(fmt.Sprintf("r%d-p%d", r.number, r.ourIdx))
	return tss.NewBroadcastOutgoing(body), nil
}

func (r *mockRound) Verify(from int, wireBytes []byte) (interface{}, *tss.Error) {
	return string(wireBytes), nil
}

func (r *mockRound) Finalize(_ io.Reader, payloads *tss.HoleVec) (tss.Round, interface{}, *tss.Error) {
	collected := make([]string, 0, payloads.Len())
	for j := 0; j < payloads.Len(); j++ {
		if item, ok := payloads.Get(j); ok {
			collected = append(collected, item.(string))
		}
	}
	r.seen[r.number] = collected
	if r.number == r.total {
		return nil, r.seen, nil
	}
	next := *r
	next.number++
	return &next, nil, nil
}

func (r *mockRound) WrapError(err error, kind tss.ErrorKind, culprits ...*tss.PartyID) *tss.Error {
	return tss.NewError(err, kind, "mock", r.number, r.parties[r.ourIdx], culprits...)
}

func makeSessions(t *testing.T, n, rounds int, consensus bool) []*tss.Session {
	parties := tss.GenerateTestPartyIDs(n)
	sessions := make([]*tss.Session, n)
	sessionID := test.RepeatSeed(0x42, tss.SessionIDLength)
	for i := range sessions {
		var err error
		sessions[i], err = tss.NewSession("mock", sessionID, parties, i, rounds, newMockRound(parties, i, rounds, consensus))
		require.NoError(t, err)
	}
	return sessions
}

func TestSessionRunsToCompletion(t *testing.T) {
	sessions := makeSessions(t, 3, 3, false)
	results, err := test.RunSessions(sessions, nil, nil, nil)
	assert.Nil(t, err)
	for _, res := range results {
		seen := res.(map[int][]string)
		for round := 1; round <= 3; round++ {
			assert.Len(t, seen[round], 2, "each round should have collected both peers")
		}
	}
}

func TestSessionArbitraryDeliveryOrder(t *testing.T) {
	for trial := 0; trial < 20; trial++ {
		sessions := makeSessions(t, 4, 3, false)
		shuffle := mrand.New(mrand.NewSource(int64(trial)))
		_, err := test.RunSessions(sessions, nil, shuffle, nil)
		assert.Nil(t, err, "trial %d", trial)
	}
}

func TestSessionCachesOneRoundAhead(t *testing.T) {
	sessions := makeSessions(t, 2, 2, false)
	s0, s1 := sessions[0], sessions[1]

	out0, terr := s0.EmitMessages(nil)
	require.Nil(t, terr)
	out1, terr := s1.EmitMessages(nil)
	require.Nil(t, terr)

	// deliver p1 -> p0 and advance p0 to round 2
	require.Nil(t, s0.Receive(1, out1.Broadcast))
	require.True(t, s0.IsFinishedReceiving())
	require.Nil(t, s0.FinalizeRound(nil))
	out0r2, terr := s0.EmitMessages(nil)
	require.Nil(t, terr)
	require.Nil(t, s0.ApplyCached())

	// p1 is still in round 1; the round-2 message must be cached, not applied
	require.Nil(t, s1.Receive(0, out0r2.Broadcast))
	assert.True(t, s1.HasCached())
	assert.False(t, s1.IsFinishedReceiving())

	// now the delayed round-1 message arrives and p1 catches up
	require.Nil(t, s1.Receive(0, out0.Broadcast))
	require.True(t, s1.IsFinishedReceiving())
	require.Nil(t, s1.FinalizeRound(nil))
	_, terr = s1.EmitMessages(nil)
	require.Nil(t, terr)
	require.Nil(t, s1.ApplyCached())
	assert.False(t, s1.HasCached())
	assert.True(t, s1.IsFinishedReceiving())
}

func TestSessionRejectsTwoRoundsAhead(t *testing.T) {
	sessions := makeSessions(t, 2, 3, false)
	s0 := sessions[0]
	_, terr := s0.EmitMessages(nil)
	require.Nil(t, terr)

	// craft a round-3 frame while s0 is in round 1
	bogus := tss.FrameMessage(3, tss.MessageTypeBroadcast, []byte("r3-p1"))
	err := s0.Receive(1, bogus)
	require.NotNil(t, err)
	assert.Equal(t, tss.KindOutOfOrderMessage, err.Kind())
	require.Len(t, err.Culprits(), 1)
	assert.Equal(t, 1, err.Culprits()[0].Index)
}

func TestSessionRejectsDuplicates(t *testing.T) {
	sessions := makeSessions(t, 2, 2, false)
	s0, s1 := sessions[0], sessions[1]
	_, terr := s0.EmitMessages(nil)
	require.Nil(t, terr)
	out1, terr := s1.EmitMessages(nil)
	require.Nil(t, terr)

	require.Nil(t, s0.Receive(1, out1.Broadcast))
	err := s0.Receive(1, out1.Broadcast)
	require.NotNil(t, err)
	assert.Equal(t, tss.KindDuplicateMessage, err.Kind())
}

func TestSessionLifecycleFaults(t *testing.T) {
	sessions := makeSessions(t, 2, 2, false)
	s0 := sessions[0]

	// receive before emit is our own state error
	err := s0.Receive(1, tss.FrameMessage(1, tss.MessageTypeBroadcast, []byte("x")))
	require.NotNil(t, err)
	assert.Equal(t, tss.KindMyFault, err.Kind())

	// finalize with unfilled slots is our own state error too
	_, terr := s0.EmitMessages(nil)
	require.Nil(t, terr)
	err = s0.FinalizeRound(nil)
	require.NotNil(t, err)
	assert.Equal(t, tss.KindMyFault, err.Kind())

	// double emit within one round
	_, terr = s0.EmitMessages(nil)
	require.NotNil(t, terr)
	assert.Equal(t, tss.KindMyFault, terr.Kind())
}

func TestSessionWaitingFor(t *testing.T) {
	sessions := makeSessions(t, 3, 2, false)
	s0 := sessions[0]
	out1, terr := sessions[1].EmitMessages(nil)
	require.Nil(t, terr)
	_, terr = s0.EmitMessages(nil)
	require.Nil(t, terr)
	require.Nil(t, s0.Receive(1, out1.Broadcast))

	waiting := s0.WaitingFor()
	require.Len(t, waiting, 1)
	assert.Equal(t, 2, waiting[0].Index)

	err := s0.MissingError()
	require.NotNil(t, err)
	assert.Equal(t, tss.KindMissingMessage, err.Kind())
	assert.Equal(t, 2, err.Culprits()[0].Index)
}

func TestBroadcastConsensusDetectsEquivocation(t *testing.T) {
	sessions := makeSessions(t, 3, 2, true)
	// party 0 equivocates: party 2 sees a different round-1 broadcast body
	intercept := func(from, to int, bz []byte) ([]byte, bool) {
		round, mt, _, ok := tss.UnframeMessage(bz)
		if ok && round == 1 && mt == tss.MessageTypeBroadcast && from == 0 && to == 2 {
			return tss.FrameMessage(1, tss.MessageTypeBroadcast, []byte("r1-p0-forged")), true
		}
		return bz, true
	}
	_, err := test.RunSessions(sessions, nil, nil, intercept)
	require.NotNil(t, err)
	assert.Equal(t, tss.KindConsensusMismatch, err.Kind())
}

func TestBroadcastConsensusPasses(t *testing.T) {
	sessions := makeSessions(t, 3, 2, true)
	_, err := test.RunSessions(sessions, nil, nil, nil)
	assert.Nil(t, err)
}
