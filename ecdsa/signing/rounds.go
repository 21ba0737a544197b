package signing

import (
	"math/big"

	"github.com/tmpfs/synedrion/crypto"
	"github.com/tmpfs/synedrion/ecdsa/keygen"
	"github.com/tmpfs/synedrion/tss"
)

const (
	TaskName        = "signing"
	TaskNamePresign = "presigning"

	SigningRounds    = 5
	PresigningRounds = 4
)

var zero = big.NewInt(0)

type (
	base struct {
		task      string
		sessionID []byte
		parties   tss.SortedPartyIDs
		partyIdx  int
		key       *keygen.LocalPartySaveData
		temp      *localTempData
	}
	presign1a struct {
		*base
	}
	presign1b struct {
		*presign1a
	}
	presign2 struct {
		*presign1b
	}
	presign3 struct {
		*presign2
	}
	signRound struct {
		*presign3
	}
)

var (
	_ tss.Round = (*presign1a)(nil)
	_ tss.Round = (*presign1b)(nil)
	_ tss.Round = (*presign2)(nil)
	_ tss.Round = (*presign3)(nil)
	_ tss.Round = (*signRound)(nil)
)

type (
	localTempData struct {
		// the prehashed message as a scalar; nil in presigning-only mode
		m *big.Int

		// round 1a
		KShare     *big.Int
		GammaShare *big.Int
		K          *big.Int
		G          *big.Int
		KNonce     *big.Int
		GNonce     *big.Int
		r1msgK     []*big.Int
		r1msgG     []*big.Int

		// round 2
		BigGammaShare   *crypto.ECPoint
		DeltaShareBetas []*big.Int // -betaNeg mod q, per recipient
		ChiShareBetas   []*big.Int
		DeltaBetaNegs   []*big.Int // integer betaNeg, kept for identification
		DeltaMtAFs      []*big.Int // F_{i,j} under our own key, kept for identification

		// round 3
		BigGamma         *crypto.ECPoint
		DeltaShareAlphas []*big.Int
		ChiShareAlphas   []*big.Int
		r2msgDs          []*big.Int // D_{j,i} received, kept for identification
		DeltaShare       *big.Int   // scalar form
		DeltaShareInt    *big.Int   // exact signed integer, kept for identification
		ChiShare         *big.Int
		BigDeltaShare    *crypto.ECPoint

		// signing round
		BigR       *crypto.ECPoint
		Rx         *big.Int
		SigmaShare *big.Int
	}

	presignRound1APayload struct {
		K *big.Int
		G *big.Int
	}
	presignRound2Payload struct {
		BigGammaShare *crypto.ECPoint
		AlphaDeltaInt *big.Int // signed integer
		AlphaChi      *big.Int // scalar
		D             *big.Int
	}
	presignRound3Payload struct {
		DeltaShare    *big.Int
		BigDeltaShare *crypto.ECPoint
	}
	signRoundPayload struct {
		SigmaShare *big.Int
	}
)

func newLocalTempData(partyCount int) *localTempData {
	return &localTempData{
		r1msgK:           make([]*big.Int, partyCount),
		r1msgG:           make([]*big.Int, partyCount),
		DeltaShareBetas:  make([]*big.Int, partyCount),
		ChiShareBetas:    make([]*big.Int, partyCount),
		DeltaBetaNegs:    make([]*big.Int, partyCount),
		DeltaMtAFs:       make([]*big.Int, partyCount),
		DeltaShareAlphas: make([]*big.Int, partyCount),
		ChiShareAlphas:   make([]*big.Int, partyCount),
		r2msgDs:          make([]*big.Int, partyCount),
	}
}

// ----- //

func (round *base) PartyCount() int {
	return len(round.parties)
}

func (round *base) PartyID() *tss.PartyID {
	return round.parties[round.partyIdx]
}

func (round *base) Party(j int) *tss.PartyID {
	return round.parties[j]
}

func (round *base) wrapErrorNum(number int, err error, kind tss.ErrorKind, culprits ...*tss.PartyID) *tss.Error {
	return tss.NewError(err, kind, round.task, number, round.PartyID(), culprits...)
}

func (round *presign1a) WrapError(err error, kind tss.ErrorKind, culprits ...*tss.PartyID) *tss.Error {
	return round.wrapErrorNum(1, err, kind, culprits...)
}

func (round *presign1b) WrapError(err error, kind tss.ErrorKind, culprits ...*tss.PartyID) *tss.Error {
	return round.wrapErrorNum(2, err, kind, culprits...)
}

func (round *presign2) WrapError(err error, kind tss.ErrorKind, culprits ...*tss.PartyID) *tss.Error {
	return round.wrapErrorNum(3, err, kind, culprits...)
}

func (round *presign3) WrapError(err error, kind tss.ErrorKind, culprits ...*tss.PartyID) *tss.Error {
	return round.wrapErrorNum(4, err, kind, culprits...)
}

func (round *signRound) WrapError(err error, kind tss.ErrorKind, culprits ...*tss.PartyID) *tss.Error {
	return round.wrapErrorNum(5, err, kind, culprits...)
}
