package signing

import (
	"errors"
	"fmt"
	"io"
	"math/big"

	"github.com/tmpfs/synedrion/common"
	"github.com/tmpfs/synedrion/crypto"
	zkplogstar "github.com/tmpfs/synedrion/crypto/zkp/logstar"
	"github.com/tmpfs/synedrion/tss"
)

func (round *presign2) RoundNumber() int     { return 3 }
func (round *presign2) NextRoundNumber() int { return 4 }
func (round *presign2) NeedsConsensus() bool { return false }

// Fig 7. Round 2: run both MtA legs towards every recipient and publish
// Gamma_i with the binding proofs.
func (round *presign2) Emit(rnd io.Reader) (*tss.Outgoing, *tss.Error) {
	i := round.partyIdx
	ec := tss.EC()
	pk := &round.key.PaillierSK.PublicKey
	aux := common.SessionAuxInt(round.sessionID, i)

	BigGammaShare := crypto.ScalarBaseMult(ec, round.temp.GammaShare)
	g := crypto.NewECPointNoCurveCheck(ec, ec.Params().Gx, ec.Params().Gy)

	bodies := make([][]byte, round.PartyCount())
	for j := 0; j < round.PartyCount(); j++ {
		if j == i {
			continue
		}
		Kj := round.temp.r1msgK[j]

		DeltaMtA, err := NewMtA(rnd, ec, Kj, round.temp.GammaShare, BigGammaShare,
			round.key.PaillierPKs[j], pk,
			round.key.NTildej[j], round.key.H1j[j], round.key.H2j[j], aux)
		if err != nil {
			return nil, round.WrapError(errors.New("MtADelta failed"), tss.KindMyFault)
		}
		ChiMtA, err := NewMtA(rnd, ec, Kj, round.key.Xi, round.key.BigXj[i],
			round.key.PaillierPKs[j], pk,
			round.key.NTildej[j], round.key.H1j[j], round.key.H2j[j], aux)
		if err != nil {
			return nil, round.WrapError(errors.New("MtAChi failed"), tss.KindMyFault)
		}
		ProofLogstar, err := zkplogstar.NewProof(rnd, ec, pk, round.temp.G, BigGammaShare, g,
			round.key.NTildej[j], round.key.H1j[j], round.key.H2j[j],
			round.temp.GammaShare, round.temp.GNonce, aux)
		if err != nil {
			return nil, round.WrapError(errors.New("prooflogstar generation failed"), tss.KindMyFault)
		}

		body, err := marshalMessage(NewPreSignRound2Message(
			BigGammaShare, DeltaMtA.Dji, DeltaMtA.Fji, ChiMtA.Dji, ChiMtA.Fji,
			DeltaMtA.Proofji, ChiMtA.Proofji, ProofLogstar))
		if err != nil {
			return nil, round.WrapError(err, tss.KindMyFault)
		}
		bodies[j] = body

		round.temp.DeltaShareBetas[j] = DeltaMtA.Beta
		round.temp.ChiShareBetas[j] = ChiMtA.Beta
		round.temp.DeltaBetaNegs[j] = DeltaMtA.BetaNeg
		round.temp.DeltaMtAFs[j] = DeltaMtA.Fji
	}

	round.temp.BigGammaShare = BigGammaShare
	return tss.NewDirectOutgoing(bodies), nil
}

func (round *presign2) Verify(from int, wireBytes []byte) (interface{}, *tss.Error) {
	ec := tss.EC()
	Pj := round.Party(from)

	msg := new(PreSignRound2Message)
	if err := unmarshalMessage(wireBytes, msg); err != nil {
		return nil, round.WrapError(err, tss.KindDeserialization, Pj)
	}
	if !msg.ValidateBasic() {
		return nil, round.WrapError(errors.New("round 2 message failed ValidateBasic"), tss.KindDeserialization, Pj)
	}
	BigGammaSharej, err := msg.UnmarshalBigGammaShare(ec)
	if err != nil {
		return nil, round.WrapError(err, tss.KindDeserialization, Pj)
	}
	DeltaD := msg.UnmarshalDjiDelta()
	DeltaF := msg.UnmarshalFjiDelta()
	ChiD := msg.UnmarshalDjiChi()
	ChiF := msg.UnmarshalFjiChi()

	proofAffgDelta, err := msg.UnmarshalAffgProofDelta(ec)
	if err != nil {
		return nil, round.WrapError(err, tss.KindDeserialization, Pj)
	}
	proofAffgChi, err := msg.UnmarshalAffgProofChi(ec)
	if err != nil {
		return nil, round.WrapError(err, tss.KindDeserialization, Pj)
	}
	proofLogstar, err := msg.UnmarshalLogstarProof(ec)
	if err != nil {
		return nil, round.WrapError(err, tss.KindDeserialization, Pj)
	}

	pk := &round.key.PaillierSK.PublicKey
	aux := common.SessionAuxInt(round.sessionID, from)

	ok := proofAffgDelta.Verify(ec, pk, round.key.PaillierPKs[from],
		round.key.NTildei, round.key.H1i, round.key.H2i,
		round.temp.K, DeltaD, DeltaF, BigGammaSharej, aux)
	if !ok {
		return nil, round.WrapError(errors.New("failed to verify AffGProof (psi)"), tss.KindVerificationFail, Pj)
	}
	ok = proofAffgChi.Verify(ec, pk, round.key.PaillierPKs[from],
		round.key.NTildei, round.key.H1i, round.key.H2i,
		round.temp.K, ChiD, ChiF, round.key.BigXj[from], aux)
	if !ok {
		return nil, round.WrapError(errors.New("failed to verify AffGProof (psi_hat)"), tss.KindVerificationFail, Pj)
	}
	g := crypto.NewECPointNoCurveCheck(ec, ec.Params().Gx, ec.Params().Gy)
	ok = proofLogstar.Verify(ec, round.key.PaillierPKs[from],
		round.temp.r1msgG[from], BigGammaSharej, g,
		round.key.NTildei, round.key.H1i, round.key.H2i, aux)
	if !ok {
		return nil, round.WrapError(errors.New("failed to verify LogStarProof (psi_hat_prime)"), tss.KindVerificationFail, Pj)
	}

	// decrypt the MtA outputs; alpha is a bounded signed integer
	AlphaDelta, err := round.key.PaillierSK.DecryptSigned(DeltaD)
	if err != nil {
		return nil, round.WrapError(errors.New("failed to decrypt the delta MtA share"), tss.KindVerificationFail, Pj)
	}
	q := ec.Params().N
	q3 := new(big.Int).Mul(q, q)
	q3 = new(big.Int).Mul(q, q3)
	alphaBound := new(big.Int).Lsh(q3, 1)
	if AlphaDelta.CmpAbs(alphaBound) > 0 {
		return nil, round.WrapError(errors.New("the delta MtA share is out of bounds"), tss.KindVerificationFail, Pj)
	}
	AlphaChi, err := round.key.PaillierSK.DecryptSigned(ChiD)
	if err != nil {
		return nil, round.WrapError(errors.New("failed to decrypt the chi MtA share"), tss.KindVerificationFail, Pj)
	}

	return &presignRound2Payload{
		BigGammaShare: BigGammaSharej,
		AlphaDeltaInt: AlphaDelta,
		AlphaChi:      new(big.Int).Mod(AlphaChi, q),
		D:             DeltaD,
	}, nil
}

func (round *presign2) Finalize(_ io.Reader, payloads *tss.HoleVec) (tss.Round, interface{}, *tss.Error) {
	i := round.partyIdx
	ec := tss.EC()
	q := ec.Params().N
	modN := common.ModInt(q)

	BigGamma := round.temp.BigGammaShare
	// delta as an exact signed integer; its scalar form feeds the protocol,
	// the integer form survives for the identification sub-protocol
	DeltaShareInt := new(big.Int).Mul(round.temp.KShare, round.temp.GammaShare)
	DeltaShare := modN.Mul(round.temp.KShare, round.temp.GammaShare)
	ChiShare := modN.Mul(round.temp.KShare, round.key.Xi)

	var err error
	for j := 0; j < round.PartyCount(); j++ {
		if j == i {
			continue
		}
		item, ok := payloads.Get(j)
		if !ok {
			return nil, nil, round.WrapError(fmt.Errorf("round 2 payload from party %d is missing", j), tss.KindMyFault)
		}
		payload := item.(*presignRound2Payload)

		BigGamma, err = BigGamma.Add(payload.BigGammaShare)
		if err != nil {
			return nil, nil, round.WrapError(errors.New("failed to collect BigGamma"), tss.KindMyFault)
		}

		alphaScalar := new(big.Int).Mod(payload.AlphaDeltaInt, q)
		DeltaShare = modN.Add(DeltaShare, alphaScalar)
		DeltaShare = modN.Add(DeltaShare, round.temp.DeltaShareBetas[j])
		DeltaShareInt.Add(DeltaShareInt, payload.AlphaDeltaInt)
		DeltaShareInt.Sub(DeltaShareInt, round.temp.DeltaBetaNegs[j])

		ChiShare = modN.Add(ChiShare, payload.AlphaChi)
		ChiShare = modN.Add(ChiShare, round.temp.ChiShareBetas[j])

		round.temp.DeltaShareAlphas[j] = alphaScalar
		round.temp.ChiShareAlphas[j] = payload.AlphaChi
		round.temp.r2msgDs[j] = payload.D
	}

	BigDeltaShare := BigGamma.ScalarMult(round.temp.KShare)

	round.temp.BigGamma = BigGamma
	round.temp.DeltaShare = DeltaShare
	round.temp.DeltaShareInt = DeltaShareInt
	round.temp.ChiShare = ChiShare
	round.temp.BigDeltaShare = BigDeltaShare
	return &presign3{round}, nil, nil
}
