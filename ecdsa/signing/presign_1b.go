package signing

import (
	"errors"
	"io"

	"github.com/tmpfs/synedrion/common"
	zkpenc "github.com/tmpfs/synedrion/crypto/zkp/enc"
	"github.com/tmpfs/synedrion/tss"
)

func (round *presign1b) RoundNumber() int     { return 2 }
func (round *presign1b) NextRoundNumber() int { return 3 }
func (round *presign1b) NeedsConsensus() bool { return false }

// Fig 7. Round 1 (direct part): prove to every verifier that the plaintext
// of K is in range under that verifier's ring-Pedersen parameters.
func (round *presign1b) Emit(rnd io.Reader) (*tss.Outgoing, *tss.Error) {
	i := round.partyIdx
	ec := tss.EC()
	pk := &round.key.PaillierSK.PublicKey
	aux := common.SessionAuxInt(round.sessionID, i)

	bodies := make([][]byte, round.PartyCount())
	for j := 0; j < round.PartyCount(); j++ {
		if j == i {
			continue
		}
		proof, err := zkpenc.NewProof(rnd, ec, pk, round.temp.K,
			round.key.NTildej[j], round.key.H1j[j], round.key.H2j[j],
			round.temp.KShare, round.temp.KNonce, aux)
		if err != nil {
			return nil, round.WrapError(errors.New("proofenc generation failed"), tss.KindMyFault)
		}
		body, err := marshalMessage(NewPreSignRound1BMessage(proof))
		if err != nil {
			return nil, round.WrapError(err, tss.KindMyFault)
		}
		bodies[j] = body
	}
	return tss.NewDirectOutgoing(bodies), nil
}

func (round *presign1b) Verify(from int, wireBytes []byte) (interface{}, *tss.Error) {
	msg := new(PreSignRound1BMessage)
	if err := unmarshalMessage(wireBytes, msg); err != nil {
		return nil, round.WrapError(err, tss.KindDeserialization, round.Party(from))
	}
	if !msg.ValidateBasic() {
		return nil, round.WrapError(errors.New("round 1b message failed ValidateBasic"), tss.KindDeserialization, round.Party(from))
	}
	proof, err := msg.UnmarshalEncProof()
	if err != nil {
		return nil, round.WrapError(err, tss.KindDeserialization, round.Party(from))
	}
	aux := common.SessionAuxInt(round.sessionID, from)
	ok := proof.Verify(tss.EC(), round.key.PaillierPKs[from],
		round.key.NTildei, round.key.H1i, round.key.H2i,
		round.temp.r1msgK[from], aux)
	if !ok {
		return nil, round.WrapError(errors.New("failed to verify EncProof"), tss.KindVerificationFail, round.Party(from))
	}
	return struct{}{}, nil
}

func (round *presign1b) Finalize(_ io.Reader, _ *tss.HoleVec) (tss.Round, interface{}, *tss.Error) {
	return &presign2{round}, nil, nil
}
