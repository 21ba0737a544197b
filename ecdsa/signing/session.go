package signing

import (
	"errors"
	"io"

	"github.com/tmpfs/synedrion/common"
	"github.com/tmpfs/synedrion/ecdsa/keygen"
	"github.com/tmpfs/synedrion/tss"
)

// NewSessionID samples the 32 uniform random bytes identifying a session;
// they double as the shared randomness bound into every proof transcript.
// Whether the party identifiers should be folded in as well is a deliberate
// choice: the identifier is unique per session by construction, so random
// bytes suffice.
func NewSessionID(rnd io.Reader) ([]byte, error) {
	return common.GetRandomBytes(rnd, tss.SessionIDLength)
}

// NewSigningSession creates the per-party state machine of the interactive
// signing protocol: presigning rounds 1a-3 composed with the signing round
// in one five-round pipeline. The message is the 32-byte prehash to sign.
func NewSigningSession(sessionID []byte, parties tss.SortedPartyIDs, ourID *tss.PartyID, key keygen.LocalPartySaveData, msg []byte) (*tss.Session, error) {
	m, err := msgToInt(msg)
	if err != nil {
		return nil, err
	}
	first, ourIdx, err := newFirstRound(TaskName, sessionID, parties, ourID, key)
	if err != nil {
		return nil, err
	}
	first.temp.m = m
	return tss.NewSession(TaskName, sessionID, parties, ourIdx, SigningRounds, first)
}

// NewPresigningSession runs presigning only: the session's result is the
// (R, k_i, chi_i) triple, to be finished later with FinalizeWithSigmaShares.
func NewPresigningSession(sessionID []byte, parties tss.SortedPartyIDs, ourID *tss.PartyID, key keygen.LocalPartySaveData) (*tss.Session, error) {
	first, ourIdx, err := newFirstRound(TaskNamePresign, sessionID, parties, ourID, key)
	if err != nil {
		return nil, err
	}
	return tss.NewSession(TaskNamePresign, sessionID, parties, ourIdx, PresigningRounds, first)
}

func newFirstRound(task string, sessionID []byte, parties tss.SortedPartyIDs, ourID *tss.PartyID, key keygen.LocalPartySaveData) (*presign1a, int, error) {
	if len(parties) < 2 {
		return nil, 0, errors.New("signing requires at least two parties")
	}
	ourPID := parties.FindByID(ourID.Id)
	if ourPID == nil {
		return nil, 0, errors.New("our party id is not in the signing set")
	}
	subset := keygen.BuildLocalSaveDataSubset(key, parties)
	if err := subset.Validate(); err != nil {
		return nil, 0, err
	}
	i, err := subset.OriginalIndex()
	if err != nil {
		return nil, 0, err
	}
	if i != ourPID.Index {
		return nil, 0, errors.New("the key share index does not match our party slot")
	}
	round := &presign1a{&base{
		task:      task,
		sessionID: append([]byte{}, sessionID...),
		parties:   parties,
		partyIdx:  i,
		key:       &subset,
		temp:      newLocalTempData(len(parties)),
	}}
	return round, i, nil
}
