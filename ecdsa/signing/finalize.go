package signing

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/hashicorp/go-multierror"

	"github.com/tmpfs/synedrion/common"
	"github.com/tmpfs/synedrion/crypto"
	"github.com/tmpfs/synedrion/ecdsa/keygen"
	"github.com/tmpfs/synedrion/tss"
)

// assembleSignature turns the aggregated sigma into a canonical signature:
// s is normalized to the low half of the curve order (flipping the recovery
// parity bit when negated), the recovery byte is derived from BigR, and the
// result is checked against the aggregate verifying key before release.
func assembleSignature(BigR *crypto.ECPoint, sigma, m *big.Int, key *keygen.LocalPartySaveData) (*common.SignatureData, error) {
	N := tss.EC().Params().N

	r := new(big.Int).Mod(BigR.X(), N)
	s := new(big.Int).Set(sigma)
	if r.Sign() == 0 || s.Sign() == 0 {
		return nil, errors.New("assembled a degenerate signature")
	}

	// byte v = if(R.X > curve.N) then 2 else 0 | (if R.Y.IsEven then 0 else 1)
	recId := 0
	if BigR.X().Cmp(N) > 0 {
		recId = 2
	}
	if BigR.Y().Bit(0) != 0 {
		recId |= 1
	}

	// the s value must be in the lower half of the curve order to be accepted
	// by consensus-layer verifiers; flipping it mirrors R
	halfN := new(big.Int).Rsh(N, 1)
	if s.Cmp(halfN) > 0 {
		s.Sub(N, s)
		recId ^= 1
	}

	msgBz := common.PadToLengthBytesInPlace(m.Bytes(), 32)
	data := common.NewSignatureData(r, s, byte(recId), msgBz)

	pk := key.ECDSAPub.ToECDSAPubKey()
	if !data.VerifyPrehash(pk) {
		return nil, errors.New("signature verification failed")
	}
	return data, nil
}

// FinalizeWithSigmaShares builds a signature offline from a presigning triple,
// a message and the sigma shares of every party (our own included). It is the
// one-round completion path: presign once, then finish any message with a
// single broadcast exchange.
func FinalizeWithSigmaShares(
	key *keygen.LocalPartySaveData,
	presign *PresigningData,
	msg []byte,
	sigmaShares map[*tss.PartyID]*big.Int,
) (*common.SignatureData, error) {
	if presign == nil || presign.BigR == nil {
		return nil, errors.New("a presigning triple is required")
	}
	m, err := msgToInt(msg)
	if err != nil {
		return nil, err
	}
	modN := common.ModInt(tss.EC().Params().N)

	var multiErr error
	sigma := big.NewInt(0)
	for Pj, sigmaJ := range sigmaShares {
		if sigmaJ == nil {
			multiErr = multierror.Append(multiErr, fmt.Errorf("party %s contributed a nil sigma share", Pj))
			continue
		}
		sigma = modN.Add(sigma, sigmaJ)
	}
	if multiErr != nil {
		return nil, multiErr
	}
	return assembleSignature(presign.BigR, sigma, m, key)
}

// SigmaShare computes this party's signature share for a message from its
// presigning triple.
func SigmaShare(presign *PresigningData, msg []byte) (*big.Int, error) {
	m, err := msgToInt(msg)
	if err != nil {
		return nil, err
	}
	N := tss.EC().Params().N
	modN := common.ModInt(N)
	r := new(big.Int).Mod(presign.BigR.X(), N)
	return modN.Add(modN.Mul(presign.KShare, m), modN.Mul(r, presign.ChiShare)), nil
}

// msgToInt interprets a 32-byte prehashed message as a curve scalar. Values
// at or beyond the group order are rejected rather than silently reduced.
func msgToInt(msg []byte) (*big.Int, error) {
	if len(msg) != 32 {
		return nil, errors.New("the prehashed message must be exactly 32 bytes")
	}
	m := new(big.Int).SetBytes(msg)
	if m.Cmp(tss.EC().Params().N) >= 0 {
		return nil, errors.New("the prehashed message is not a reduced curve scalar")
	}
	return m, nil
}
