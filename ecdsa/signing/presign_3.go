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

// PresigningData is the output of the presigning protocol: enough to finish
// a signature on any message with one more broadcast round.
type PresigningData struct {
	BigR     *crypto.ECPoint
	KShare   *big.Int
	ChiShare *big.Int
}

func (round *presign3) RoundNumber() int { return 4 }
func (round *presign3) NextRoundNumber() int {
	if round.temp.m == nil {
		return 0
	}
	return 5
}
func (round *presign3) NeedsConsensus() bool { return false }

// Fig 7. Round 3: send delta_i and Delta_i with the proof binding K_i to
// Delta_i over the base Gamma.
func (round *presign3) Emit(rnd io.Reader) (*tss.Outgoing, *tss.Error) {
	i := round.partyIdx
	ec := tss.EC()
	pk := &round.key.PaillierSK.PublicKey
	aux := common.SessionAuxInt(round.sessionID, i)

	bodies := make([][]byte, round.PartyCount())
	for j := 0; j < round.PartyCount(); j++ {
		if j == i {
			continue
		}
		ProofLogstar, err := zkplogstar.NewProof(rnd, ec, pk, round.temp.K,
			round.temp.BigDeltaShare, round.temp.BigGamma,
			round.key.NTildej[j], round.key.H1j[j], round.key.H2j[j],
			round.temp.KShare, round.temp.KNonce, aux)
		if err != nil {
			return nil, round.WrapError(errors.New("prooflogstar generation failed"), tss.KindMyFault)
		}
		body, err := marshalMessage(NewPreSignRound3Message(round.temp.DeltaShare, round.temp.BigDeltaShare, ProofLogstar))
		if err != nil {
			return nil, round.WrapError(err, tss.KindMyFault)
		}
		bodies[j] = body
	}
	return tss.NewDirectOutgoing(bodies), nil
}

func (round *presign3) Verify(from int, wireBytes []byte) (interface{}, *tss.Error) {
	ec := tss.EC()
	Pj := round.Party(from)

	msg := new(PreSignRound3Message)
	if err := unmarshalMessage(wireBytes, msg); err != nil {
		return nil, round.WrapError(err, tss.KindDeserialization, Pj)
	}
	if !msg.ValidateBasic() {
		return nil, round.WrapError(errors.New("round 3 message failed ValidateBasic"), tss.KindDeserialization, Pj)
	}
	BigDeltaSharej, err := msg.UnmarshalBigDeltaShare(ec)
	if err != nil {
		return nil, round.WrapError(err, tss.KindDeserialization, Pj)
	}
	proofLogstar, err := msg.UnmarshalProofLogstar(ec)
	if err != nil {
		return nil, round.WrapError(err, tss.KindDeserialization, Pj)
	}

	aux := common.SessionAuxInt(round.sessionID, from)
	ok := proofLogstar.Verify(ec, round.key.PaillierPKs[from],
		round.temp.r1msgK[from], BigDeltaSharej, round.temp.BigGamma,
		round.key.NTildei, round.key.H1i, round.key.H2i, aux)
	if !ok {
		return nil, round.WrapError(errors.New("failed to verify LogStarProof (psi_hat_pprime)"), tss.KindVerificationFail, Pj)
	}

	return &presignRound3Payload{
		DeltaShare:    msg.UnmarshalDeltaShare(),
		BigDeltaShare: BigDeltaSharej,
	}, nil
}

// Finalize checks delta·G against the sum of the Delta shares. On success it
// produces the presigning triple (and hands over to the signing round in
// interactive mode); on failure it assembles the identification evidence.
func (round *presign3) Finalize(rnd io.Reader, payloads *tss.HoleVec) (tss.Round, interface{}, *tss.Error) {
	i := round.partyIdx
	ec := tss.EC()
	modN := common.ModInt(ec.Params().N)

	Delta := round.temp.DeltaShare
	BigDelta := round.temp.BigDeltaShare
	var err error
	for j := 0; j < round.PartyCount(); j++ {
		if j == i {
			continue
		}
		item, ok := payloads.Get(j)
		if !ok {
			return nil, nil, round.WrapError(fmt.Errorf("round 3 payload from party %d is missing", j), tss.KindMyFault)
		}
		payload := item.(*presignRound3Payload)
		Delta = modN.Add(Delta, payload.DeltaShare)
		BigDelta, err = BigDelta.Add(payload.BigDeltaShare)
		if err != nil {
			return nil, nil, round.WrapError(errors.New("failed to collect BigDelta"), tss.KindMyFault)
		}
	}

	DeltaPoint := crypto.ScalarBaseMult(ec, Delta)
	if !DeltaPoint.Equals(BigDelta) {
		// a party deviated; produce the diagnostic proofs as blame evidence
		evidence, evErr := round.newIdentificationEvidence(rnd)
		if evErr != nil {
			return nil, nil, round.WrapError(evErr, tss.KindMyFault)
		}
		return nil, nil, round.WrapError(
			&IdentifiableAbortError{Evidence: evidence},
			tss.KindProtocol)
	}

	deltaInverse := modN.ModInverse(Delta)
	BigR := round.temp.BigGamma.ScalarMult(deltaInverse)
	round.temp.BigR = BigR

	if round.temp.m == nil {
		return nil, &PresigningData{
			BigR:     BigR,
			KShare:   round.temp.KShare,
			ChiShare: round.temp.ChiShare,
		}, nil
	}
	return &signRound{round}, nil, nil
}
