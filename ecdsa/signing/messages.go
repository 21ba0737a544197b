package signing

import (
	"crypto/elliptic"
	"math/big"

	"github.com/tmpfs/synedrion/common"
	"github.com/tmpfs/synedrion/crypto"
	zkpaffg "github.com/tmpfs/synedrion/crypto/zkp/affg"
	zkpenc "github.com/tmpfs/synedrion/crypto/zkp/enc"
	zkplogstar "github.com/tmpfs/synedrion/crypto/zkp/logstar"
	"github.com/tmpfs/synedrion/tss"
)

// The round message bodies below travel as deterministic cbor, framed by the
// session with the round number and message type, so the same payload hashes
// identically on every party. The share scalars (delta, sigma) are big-endian
// 32-byte values and the share points (Gamma_i, Delta_i) use the 33-byte
// compressed encoding. Proofs travel as the parts of each proof's Bytes():
// unpadded big-endian integers, with curve points split into separate X and Y
// coordinates rather than compressed.

type (
	PreSignRound1AMessage struct {
		K []byte
		G []byte
	}

	PreSignRound1BMessage struct {
		EncProof [][]byte
	}

	PreSignRound2Message struct {
		BigGammaShare  []byte
		DjiDelta       []byte
		FjiDelta       []byte
		DjiChi         []byte
		FjiChi         []byte
		AffgProofDelta [][]byte
		AffgProofChi   [][]byte
		LogstarProof   [][]byte
	}

	PreSignRound3Message struct {
		DeltaShare    []byte
		BigDeltaShare []byte
		ProofLogstar  [][]byte
	}

	SignRoundMessage struct {
		SigmaShare []byte
	}
)

// ----- //

func NewPreSignRound1AMessage(K, G *big.Int) *PreSignRound1AMessage {
	return &PreSignRound1AMessage{
		K: K.Bytes(),
		G: G.Bytes(),
	}
}

func (m *PreSignRound1AMessage) ValidateBasic() bool {
	return m != nil &&
		common.NonEmptyBytes(m.K) &&
		common.NonEmptyBytes(m.G)
}

func (m *PreSignRound1AMessage) UnmarshalK() *big.Int {
	return new(big.Int).SetBytes(m.K)
}

func (m *PreSignRound1AMessage) UnmarshalG() *big.Int {
	return new(big.Int).SetBytes(m.G)
}

// ----- //

func NewPreSignRound1BMessage(proof *zkpenc.ProofEnc) *PreSignRound1BMessage {
	pfBz := proof.Bytes()
	return &PreSignRound1BMessage{EncProof: pfBz[:]}
}

func (m *PreSignRound1BMessage) ValidateBasic() bool {
	return m != nil &&
		common.NonEmptyMultiBytes(m.EncProof, zkpenc.ProofEncBytesParts)
}

func (m *PreSignRound1BMessage) UnmarshalEncProof() (*zkpenc.ProofEnc, error) {
	return zkpenc.NewProofFromBytes(m.EncProof)
}

// ----- //

func NewPreSignRound2Message(
	BigGammaShare *crypto.ECPoint,
	DjiDelta, FjiDelta, DjiChi, FjiChi *big.Int,
	AffgProofDelta, AffgProofChi *zkpaffg.ProofAffg,
	LogstarProof *zkplogstar.ProofLogstar,
) *PreSignRound2Message {
	AffgDeltaBz := AffgProofDelta.Bytes()
	AffgChiBz := AffgProofChi.Bytes()
	LogstarBz := LogstarProof.Bytes()
	return &PreSignRound2Message{
		BigGammaShare:  BigGammaShare.Bytes(),
		DjiDelta:       DjiDelta.Bytes(),
		FjiDelta:       FjiDelta.Bytes(),
		DjiChi:         DjiChi.Bytes(),
		FjiChi:         FjiChi.Bytes(),
		AffgProofDelta: AffgDeltaBz[:],
		AffgProofChi:   AffgChiBz[:],
		LogstarProof:   LogstarBz[:],
	}
}

func (m *PreSignRound2Message) ValidateBasic() bool {
	return m != nil &&
		common.NonEmptyBytes(m.BigGammaShare) &&
		common.NonEmptyBytes(m.DjiDelta) &&
		common.NonEmptyBytes(m.FjiDelta) &&
		common.NonEmptyBytes(m.DjiChi) &&
		common.NonEmptyBytes(m.FjiChi) &&
		common.NonEmptyMultiBytes(m.AffgProofDelta, zkpaffg.ProofAffgBytesParts) &&
		common.NonEmptyMultiBytes(m.AffgProofChi, zkpaffg.ProofAffgBytesParts) &&
		common.NonEmptyMultiBytes(m.LogstarProof, zkplogstar.ProofLogstarBytesParts)
}

func (m *PreSignRound2Message) UnmarshalBigGammaShare(ec elliptic.Curve) (*crypto.ECPoint, error) {
	return crypto.DecodeECPoint(ec, m.BigGammaShare)
}

func (m *PreSignRound2Message) UnmarshalDjiDelta() *big.Int {
	return new(big.Int).SetBytes(m.DjiDelta)
}

func (m *PreSignRound2Message) UnmarshalFjiDelta() *big.Int {
	return new(big.Int).SetBytes(m.FjiDelta)
}

func (m *PreSignRound2Message) UnmarshalDjiChi() *big.Int {
	return new(big.Int).SetBytes(m.DjiChi)
}

func (m *PreSignRound2Message) UnmarshalFjiChi() *big.Int {
	return new(big.Int).SetBytes(m.FjiChi)
}

func (m *PreSignRound2Message) UnmarshalAffgProofDelta(ec elliptic.Curve) (*zkpaffg.ProofAffg, error) {
	return zkpaffg.NewProofFromBytes(ec, m.AffgProofDelta)
}

func (m *PreSignRound2Message) UnmarshalAffgProofChi(ec elliptic.Curve) (*zkpaffg.ProofAffg, error) {
	return zkpaffg.NewProofFromBytes(ec, m.AffgProofChi)
}

func (m *PreSignRound2Message) UnmarshalLogstarProof(ec elliptic.Curve) (*zkplogstar.ProofLogstar, error) {
	return zkplogstar.NewProofFromBytes(ec, m.LogstarProof)
}

// ----- //

func NewPreSignRound3Message(
	DeltaShare *big.Int,
	BigDeltaShare *crypto.ECPoint,
	ProofLogstar *zkplogstar.ProofLogstar,
) *PreSignRound3Message {
	ProofBz := ProofLogstar.Bytes()
	return &PreSignRound3Message{
		DeltaShare:    common.PadToLengthBytesInPlace(DeltaShare.Bytes(), 32),
		BigDeltaShare: BigDeltaShare.Bytes(),
		ProofLogstar:  ProofBz[:],
	}
}

func (m *PreSignRound3Message) ValidateBasic() bool {
	return m != nil &&
		common.NonEmptyBytes(m.DeltaShare) &&
		common.NonEmptyBytes(m.BigDeltaShare) &&
		common.NonEmptyMultiBytes(m.ProofLogstar, zkplogstar.ProofLogstarBytesParts)
}

func (m *PreSignRound3Message) UnmarshalDeltaShare() *big.Int {
	return new(big.Int).SetBytes(m.DeltaShare)
}

func (m *PreSignRound3Message) UnmarshalBigDeltaShare(ec elliptic.Curve) (*crypto.ECPoint, error) {
	return crypto.DecodeECPoint(ec, m.BigDeltaShare)
}

func (m *PreSignRound3Message) UnmarshalProofLogstar(ec elliptic.Curve) (*zkplogstar.ProofLogstar, error) {
	return zkplogstar.NewProofFromBytes(ec, m.ProofLogstar)
}

// ----- //

func NewSignRoundMessage(SigmaShare *big.Int) *SignRoundMessage {
	return &SignRoundMessage{
		SigmaShare: common.PadToLengthBytesInPlace(SigmaShare.Bytes(), 32),
	}
}

func (m *SignRoundMessage) ValidateBasic() bool {
	return m != nil &&
		common.NonEmptyBytes(m.SigmaShare)
}

func (m *SignRoundMessage) UnmarshalSigmaShare() *big.Int {
	return new(big.Int).SetBytes(m.SigmaShare)
}

// ----- //

func marshalMessage(v interface{}) ([]byte, error) {
	return tss.MarshalMessage(v)
}

func unmarshalMessage(bz []byte, v interface{}) error {
	return tss.UnmarshalMessage(bz, v)
}
