package signing

import (
	"errors"
	"fmt"
	"io"

	"github.com/tmpfs/synedrion/common"
	"github.com/tmpfs/synedrion/tss"
)

func (round *presign1a) RoundNumber() int     { return 1 }
func (round *presign1a) NextRoundNumber() int { return 2 }
func (round *presign1a) NeedsConsensus() bool { return true }

// Fig 7. Round 1: sample k and gamma, broadcast their encryptions.
func (round *presign1a) Emit(rnd io.Reader) (*tss.Outgoing, *tss.Error) {
	q := tss.EC().Params().N

	KShare := common.GetRandomPositiveInt(rnd, q)
	GammaShare := common.GetRandomPositiveInt(rnd, q)

	pk := &round.key.PaillierSK.PublicKey
	K, KNonce, err := pk.EncryptAndReturnRandomness(rnd, KShare)
	if err != nil {
		return nil, round.WrapError(errors.New("paillier encryption failed"), tss.KindMyFault)
	}
	G, GNonce, err := pk.EncryptAndReturnRandomness(rnd, GammaShare)
	if err != nil {
		return nil, round.WrapError(errors.New("paillier encryption failed"), tss.KindMyFault)
	}

	round.temp.KShare = KShare
	round.temp.GammaShare = GammaShare
	round.temp.K = K
	round.temp.G = G
	round.temp.KNonce = KNonce
	round.temp.GNonce = GNonce

	body, err := marshalMessage(NewPreSignRound1AMessage(K, G))
	if err != nil {
		return nil, round.WrapError(err, tss.KindMyFault)
	}
	return tss.NewBroadcastOutgoing(body), nil
}

func (round *presign1a) Verify(from int, wireBytes []byte) (interface{}, *tss.Error) {
	msg := new(PreSignRound1AMessage)
	if err := unmarshalMessage(wireBytes, msg); err != nil {
		return nil, round.WrapError(err, tss.KindDeserialization, round.Party(from))
	}
	if !msg.ValidateBasic() {
		return nil, round.WrapError(errors.New("round 1a message failed ValidateBasic"), tss.KindDeserialization, round.Party(from))
	}
	return &presignRound1APayload{K: msg.UnmarshalK(), G: msg.UnmarshalG()}, nil
}

func (round *presign1a) Finalize(_ io.Reader, payloads *tss.HoleVec) (tss.Round, interface{}, *tss.Error) {
	i := round.partyIdx
	round.temp.r1msgK[i] = round.temp.K
	round.temp.r1msgG[i] = round.temp.G
	for j := 0; j < round.PartyCount(); j++ {
		if j == i {
			continue
		}
		item, ok := payloads.Get(j)
		if !ok {
			return nil, nil, round.WrapError(fmt.Errorf("round 1a payload from party %d is missing", j), tss.KindMyFault)
		}
		payload := item.(*presignRound1APayload)
		round.temp.r1msgK[j] = payload.K
		round.temp.r1msgG[j] = payload.G
	}
	return &presign1b{round}, nil, nil
}
