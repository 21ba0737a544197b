package signing_test

import (
	"math/big"
	mrand "math/rand"
	"strings"
	"testing"

	"github.com/ipfs/go-log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tmpfs/synedrion/common"
	"github.com/tmpfs/synedrion/crypto"
	"github.com/tmpfs/synedrion/ecdsa/keygen"
	"github.com/tmpfs/synedrion/ecdsa/signing"
	"github.com/tmpfs/synedrion/test"
	"github.com/tmpfs/synedrion/tss"
)

const (
	testParticipants = 3
	testPaillierBits = 1024
)

var testMessage = []byte("abcdefghijklmnopqrstuvwxyz123456")

func setUp(level string) {
	if err := log.SetLogLevel("synedrion", level); err != nil {
		panic(err)
	}
}

func setUpKeys(t *testing.T, seed []byte, secret *big.Int) ([]keygen.LocalPartySaveData, tss.SortedPartyIDs) {
	keys, err := keygen.NewCentralizedKeyShares(test.NewSeededReader(seed), testParticipants, testPaillierBits, secret)
	require.NoError(t, err, "should run centralized keygen")
	return keys, tss.GenerateTestPartyIDs(testParticipants)
}

func newSigningSessions(t *testing.T, keys []keygen.LocalPartySaveData, parties tss.SortedPartyIDs, sessionID []byte, msg []byte) []*tss.Session {
	sessions := make([]*tss.Session, len(keys))
	for i := range keys {
		var err error
		sessions[i], err = signing.NewSigningSession(sessionID, parties, parties[i], keys[i], msg)
		require.NoError(t, err)
	}
	return sessions
}

func assertCommonValidSignature(t *testing.T, results []interface{}, keys []keygen.LocalPartySaveData) *common.SignatureData {
	require.NotEmpty(t, results)
	first := results[0].(*common.SignatureData)
	for _, res := range results[1:] {
		data := res.(*common.SignatureData)
		assert.Equal(t, first.R, data.R, "every party must compute the same r")
		assert.Equal(t, first.S, data.S, "every party must compute the same s")
		assert.Equal(t, first.SignatureRecovery, data.SignatureRecovery)
	}

	pk := keys[0].ECDSAPub.ToECDSAPubKey()
	assert.True(t, first.VerifyPrehash(pk), "the signature must verify under the aggregate key")

	// s must be low-canonical
	halfN := new(big.Int).Rsh(tss.EC().Params().N, 1)
	assert.True(t, new(big.Int).SetBytes(first.S).Cmp(halfN) <= 0)

	recovered, err := first.RecoverPubKey()
	require.NoError(t, err)
	assert.Zero(t, recovered.X.Cmp(pk.X), "the recovered key must match the aggregate key")
	assert.Zero(t, recovered.Y.Cmp(pk.Y))
	return first
}

// E1: fixed-seed keygen, run interactive signing, verify the signature.
func TestE2ESigning(t *testing.T) {
	setUp("info")
	keys, parties := setUpKeys(t, test.RepeatSeed(0x01, 32), nil)

	sessionID, err := signing.NewSessionID(nil)
	require.NoError(t, err)
	sessions := newSigningSessions(t, keys, parties, sessionID, testMessage)

	results, terr := test.RunSessions(sessions, nil, nil, nil)
	require.Nil(t, terr)
	assertCommonValidSignature(t, results, keys)
}

// E2 / property 9: shuffled dispatch order over many trials; each trial's
// parties agree on one signature.
func TestE2EShuffledDelivery(t *testing.T) {
	setUp("error")
	trials := 100
	if testing.Short() {
		trials = 3
	}
	keys, parties := setUpKeys(t, test.RepeatSeed(0x01, 32), nil)

	for trial := 0; trial < trials; trial++ {
		sessionID, err := signing.NewSessionID(nil)
		require.NoError(t, err)
		sessions := newSigningSessions(t, keys, parties, sessionID, testMessage)
		shuffle := mrand.New(mrand.NewSource(int64(trial)))
		results, terr := test.RunSessions(sessions, nil, shuffle, nil)
		require.Nil(t, terr, "trial %d", trial)
		assertCommonValidSignature(t, results, keys)
	}
}

// E3: one corrupted AffG proof in round 2 convicts the sender; no party
// produces a signature.
func TestE2ECorruptedAffGProof(t *testing.T) {
	setUp("error")
	keys, parties := setUpKeys(t, test.RepeatSeed(0x01, 32), nil)
	sessionID, err := signing.NewSessionID(nil)
	require.NoError(t, err)
	sessions := newSigningSessions(t, keys, parties, sessionID, testMessage)

	tampered := false
	intercept := func(from, to int, bz []byte) ([]byte, bool) {
		round, mt, body, ok := tss.UnframeMessage(bz)
		if !ok || tampered || round != 3 || from != 1 || to != 0 {
			return bz, true
		}
		msg := new(signing.PreSignRound2Message)
		if err := tss.UnmarshalMessage(body, msg); err != nil {
			return bz, true
		}
		msg.AffgProofDelta[2][0] ^= 1
		newBody, err := tss.MarshalMessage(msg)
		if err != nil {
			return bz, true
		}
		tampered = true
		return tss.FrameMessage(round, mt, newBody), true
	}

	_, terr := test.RunSessions(sessions, nil, nil, intercept)
	require.NotNil(t, terr)
	assert.True(t, tampered)
	assert.Equal(t, tss.KindVerificationFail, terr.Kind())
	require.Len(t, terr.Culprits(), 1)
	assert.Equal(t, 1, terr.Culprits()[0].Index)
	assert.True(t, strings.Contains(terr.Cause().Error(), "psi"))

	for _, s := range sessions {
		assert.False(t, s.IsFinished(), "no party may produce a signature")
	}
}

// E4: the same key shares under different session identifiers produce
// distinct signatures, both valid under the same key.
func TestE2EDistinctSessions(t *testing.T) {
	setUp("error")
	keys, parties := setUpKeys(t, test.RepeatSeed(0x01, 32), nil)

	var signatures []*common.SignatureData
	for trial := 0; trial < 2; trial++ {
		sessionID, err := signing.NewSessionID(nil)
		require.NoError(t, err)
		sessions := newSigningSessions(t, keys, parties, sessionID, testMessage)
		results, terr := test.RunSessions(sessions, nil, nil, nil)
		require.Nil(t, terr)
		signatures = append(signatures, assertCommonValidSignature(t, results, keys))
	}
	assert.NotEqual(t, signatures[0].R, signatures[1].R, "distinct sessions must produce distinct nonces")
}

// E5: a party whose round-3 messages never arrive stalls the others, who
// report it as missing.
func TestE2EDroppedRound3Message(t *testing.T) {
	setUp("error")
	keys, parties := setUpKeys(t, test.RepeatSeed(0x01, 32), nil)
	sessionID, err := signing.NewSessionID(nil)
	require.NoError(t, err)
	sessions := newSigningSessions(t, keys, parties, sessionID, testMessage)

	intercept := func(from, to int, bz []byte) ([]byte, bool) {
		round, _, _, ok := tss.UnframeMessage(bz)
		if ok && round == 4 && from == 2 {
			return nil, false // drop party 2's presign round 3 entirely
		}
		return bz, true
	}

	_, terr := test.RunSessions(sessions, nil, nil, intercept)
	require.NotNil(t, terr)
	assert.Equal(t, tss.KindMissingMessage, terr.Kind())
	require.Len(t, terr.Culprits(), 1)
	assert.Equal(t, 2, terr.Culprits()[0].Index)

	assert.False(t, sessions[0].IsFinishedReceiving())
	assert.False(t, sessions[1].IsFinishedReceiving())
}

// A lying delta share passes every round proof but fails the final equality
// check, triggering the identification sub-protocol. The honest victim's
// evidence must verify for third parties.
func TestE2EDeltaMismatchIdentification(t *testing.T) {
	setUp("error")
	keys, parties := setUpKeys(t, test.RepeatSeed(0x01, 32), nil)
	sessionID, err := signing.NewSessionID(nil)
	require.NoError(t, err)
	sessions := newSigningSessions(t, keys, parties, sessionID, testMessage)

	var capturedK, capturedG *big.Int
	intercept := func(from, to int, bz []byte) ([]byte, bool) {
		round, mt, body, ok := tss.UnframeMessage(bz)
		if !ok {
			return bz, true
		}
		if round == 1 && from == 0 && capturedK == nil {
			msg := new(signing.PreSignRound1AMessage)
			if err := tss.UnmarshalMessage(body, msg); err == nil {
				capturedK = msg.UnmarshalK()
				capturedG = msg.UnmarshalG()
			}
		}
		if round == 4 && from == 1 && to == 0 {
			msg := new(signing.PreSignRound3Message)
			if err := tss.UnmarshalMessage(body, msg); err != nil {
				return bz, true
			}
			msg.DeltaShare[31] ^= 1
			newBody, err := tss.MarshalMessage(msg)
			if err != nil {
				return bz, true
			}
			return tss.FrameMessage(round, mt, newBody), true
		}
		return bz, true
	}

	_, terr := test.RunSessions(sessions, nil, nil, intercept)
	require.NotNil(t, terr)
	assert.Equal(t, tss.KindProtocol, terr.Kind())

	abort, ok := terr.Cause().(*signing.IdentifiableAbortError)
	require.True(t, ok)
	require.NotNil(t, abort.Evidence)
	require.NotNil(t, capturedK)

	// the honest victim (party 0) produced evidence any verifier can check
	ok = signing.VerifyIdentificationEvidence(abort.Evidence, &keys[1], sessionID, 0, 1, capturedK, capturedG)
	assert.True(t, ok, "the victim's identification evidence must verify")
}

// E6 / property 4: presigning-only sessions yield triples satisfying the
// presigning invariants.
func TestE2EPresigningOnly(t *testing.T) {
	setUp("error")
	q := tss.EC().Params().N
	secret := common.GetRandomPositiveInt(nil, q)
	keys, parties := setUpKeys(t, test.RepeatSeed(0x01, 32), secret)

	sessionID, err := signing.NewSessionID(nil)
	require.NoError(t, err)
	sessions := make([]*tss.Session, len(keys))
	for i := range keys {
		sessions[i], err = signing.NewPresigningSession(sessionID, parties, parties[i], keys[i])
		require.NoError(t, err)
	}

	results, terr := test.RunSessions(sessions, nil, nil, nil)
	require.Nil(t, terr)

	modQ := common.ModInt(q)
	k := big.NewInt(0)
	kx := big.NewInt(0)
	first := results[0].(*signing.PresigningData)
	for _, res := range results {
		triple := res.(*signing.PresigningData)
		assert.True(t, triple.BigR.Equals(first.BigR), "all parties share one nonce point")
		k = modQ.Add(k, triple.KShare)
		kx = modQ.Add(kx, triple.ChiShare)
	}

	// sum chi_i == k * x
	assert.Zero(t, kx.Cmp(modQ.Mul(k, secret)), "chi shares must sum to k*x")
	// R == k^-1 * G
	kInv := modQ.ModInverse(k)
	expectedR := crypto.ScalarBaseMult(tss.EC(), kInv)
	assert.True(t, first.BigR.Equals(expectedR), "R must equal the inverse-nonce point")

	// one more broadcast finishes a signature on any message
	sigmaShares := make(map[*tss.PartyID]*big.Int, len(results))
	for i, res := range results {
		sigma, err := signing.SigmaShare(res.(*signing.PresigningData), testMessage)
		require.NoError(t, err)
		sigmaShares[parties[i]] = sigma
	}
	data, err := signing.FinalizeWithSigmaShares(&keys[0], first, testMessage, sigmaShares)
	require.NoError(t, err)
	assert.True(t, data.VerifyPrehash(keys[0].ECDSAPub.ToECDSAPubKey()))
}
