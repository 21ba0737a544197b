package common

import (
	"crypto/ecdsa"
	"math/big"

	"github.com/btcsuite/btcd/btcec"
	"github.com/pkg/errors"
)

var ErrNoRecoveryByte = errors.New("signature data carries no recovery byte")

// SignatureData is the terminal output of an interactive signing session.
// R and S are big-endian 32-byte curve scalars; SignatureRecovery is a single
// byte (0 or 1) encoding the parity of the ephemeral nonce point, so that the
// verifying key can be recovered from (M, R, S, SignatureRecovery).
type SignatureData struct {
	Signature         []byte
	SignatureRecovery []byte
	R                 []byte
	S                 []byte
	M                 []byte
}

func NewSignatureData(r, s *big.Int, recovery byte, msg []byte) *SignatureData {
	rBz := PadToLengthBytesInPlace(r.Bytes(), 32)
	sBz := PadToLengthBytesInPlace(s.Bytes(), 32)
	return &SignatureData{
		Signature:         append(append([]byte{}, rBz...), sBz...),
		SignatureRecovery: []byte{recovery},
		R:                 rBz,
		S:                 sBz,
		M:                 msg,
	}
}

// VerifyPrehash checks (R, S) against the given public key using standard
// ECDSA prehash verification.
func (sig *SignatureData) VerifyPrehash(pk *ecdsa.PublicKey) bool {
	if sig == nil || pk == nil {
		return false
	}
	r := new(big.Int).SetBytes(sig.R)
	s := new(big.Int).SetBytes(sig.S)
	return ecdsa.Verify(pk, sig.M, r, s)
}

// RecoverPubKey extracts the verifying key from the signature and the
// recovery byte via btcec compact-signature recovery.
func (sig *SignatureData) RecoverPubKey() (*ecdsa.PublicKey, error) {
	if len(sig.SignatureRecovery) == 0 {
		return nil, ErrNoRecoveryByte
	}
	compact := make([]byte, 0, 65)
	// 27 is the compact sig magic; +4 marks a compressed pubkey
	compact = append(compact, 27+sig.SignatureRecovery[0]+4)
	compact = append(compact, PadToLengthBytesInPlace(sig.R, 32)...)
	compact = append(compact, PadToLengthBytesInPlace(sig.S, 32)...)
	pub, _, err := btcec.RecoverCompact(btcec.S256(), compact, sig.M)
	if err != nil {
		return nil, err
	}
	return pub.ToECDSA(), nil
}
