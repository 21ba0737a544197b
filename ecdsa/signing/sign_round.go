package signing

import (
	"errors"
	"fmt"
	"io"
	"math/big"

	"github.com/tmpfs/synedrion/common"
	"github.com/tmpfs/synedrion/tss"
)

func (round *signRound) RoundNumber() int     { return 5 }
func (round *signRound) NextRoundNumber() int { return 0 }
func (round *signRound) NeedsConsensus() bool { return false }

// Fig 8. Round 1: combine the presigning triple with the message and
// broadcast the signature share.
func (round *signRound) Emit(_ io.Reader) (*tss.Outgoing, *tss.Error) {
	modN := common.ModInt(tss.EC().Params().N)

	Rx := new(big.Int).Mod(round.temp.BigR.X(), tss.EC().Params().N)
	SigmaShare := modN.Add(modN.Mul(round.temp.KShare, round.temp.m), modN.Mul(Rx, round.temp.ChiShare))

	round.temp.Rx = Rx
	round.temp.SigmaShare = SigmaShare

	body, err := marshalMessage(NewSignRoundMessage(SigmaShare))
	if err != nil {
		return nil, round.WrapError(err, tss.KindMyFault)
	}
	return tss.NewBroadcastOutgoing(body), nil
}

func (round *signRound) Verify(from int, wireBytes []byte) (interface{}, *tss.Error) {
	msg := new(SignRoundMessage)
	if err := unmarshalMessage(wireBytes, msg); err != nil {
		return nil, round.WrapError(err, tss.KindDeserialization, round.Party(from))
	}
	if !msg.ValidateBasic() {
		return nil, round.WrapError(errors.New("sign round message failed ValidateBasic"), tss.KindDeserialization, round.Party(from))
	}
	return &signRoundPayload{SigmaShare: msg.UnmarshalSigmaShare()}, nil
}

func (round *signRound) Finalize(_ io.Reader, payloads *tss.HoleVec) (tss.Round, interface{}, *tss.Error) {
	i := round.partyIdx
	modN := common.ModInt(tss.EC().Params().N)

	Sigma := round.temp.SigmaShare
	for j := 0; j < round.PartyCount(); j++ {
		if j == i {
			continue
		}
		item, ok := payloads.Get(j)
		if !ok {
			return nil, nil, round.WrapError(fmt.Errorf("sign round payload from party %d is missing", j), tss.KindMyFault)
		}
		Sigma = modN.Add(Sigma, item.(*signRoundPayload).SigmaShare)
	}

	data, err := assembleSignature(round.temp.BigR, Sigma, round.temp.m, round.key)
	if err != nil {
		return nil, nil, round.WrapError(err, tss.KindVerificationFail)
	}
	return nil, data, nil
}
