package crypto

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"errors"
	"fmt"
	"math/big"
	"sync/atomic"

	"github.com/fxamacker/cbor/v2"

	"github.com/tmpfs/synedrion/common"
	"github.com/tmpfs/synedrion/tss"
)

// ECPoint represents a point on an elliptic curve in affine form. It is designed to be immutable
type ECPoint struct {
	curve  elliptic.Curve
	coords [2]*big.Int
	// get/set with atomic; avoids a data race in ValidateBasic
	onCurveKnown uint32
}

// Creates a new ECPoint and checks that the given coordinates are on the elliptic curve.
func NewECPoint(curve elliptic.Curve, X, Y *big.Int) (*ECPoint, error) {
	if !isOnCurve(curve, X, Y) {
		return nil, fmt.Errorf("NewECPoint: the given point is not on the elliptic curve")
	}
	return &ECPoint{curve, [2]*big.Int{X, Y}, 1}, nil
}

// Creates a new ECPoint without checking that the coordinates are on the elliptic curve.
// Only use this function when you are completely sure that the point is already on the curve.
func NewECPointNoCurveCheck(curve elliptic.Curve, X, Y *big.Int) *ECPoint {
	return &ECPoint{curve, [2]*big.Int{X, Y}, 0}
}

func (p *ECPoint) X() *big.Int {
	return new(big.Int).Set(p.coords[0])
}

func (p *ECPoint) Y() *big.Int {
	return new(big.Int).Set(p.coords[1])
}

func (p *ECPoint) Curve() elliptic.Curve {
	return p.curve
}

func (p *ECPoint) Add(b *ECPoint) (*ECPoint, error) {
	x, y := p.curve.Add(p.X(), p.Y(), b.X(), b.Y())
	return NewECPoint(p.curve, x, y)
}

func (p *ECPoint) Sub(b *ECPoint) (*ECPoint, error) {
	return p.Add(b.Neg())
}

func (p *ECPoint) Neg() *ECPoint {
	order := p.curve.Params().P
	negY := new(big.Int).Neg(p.Y())
	negY.Mod(negY, order) // ok here because we're describing a curve point.
	return NewECPointNoCurveCheck(p.curve, p.X(), negY)
}

func (p *ECPoint) ScalarMultBytes(k []byte) *ECPoint {
	x, y := p.curve.ScalarMult(p.X(), p.Y(), k)
	newP, _ := NewECPoint(p.curve, x, y) // it must be on the curve, no need to check.
	return newP
}

func (p *ECPoint) ScalarMult(k *big.Int) *ECPoint {
	return p.ScalarMultBytes(k.Bytes())
}

func (p *ECPoint) IsOnCurve() bool {
	return isOnCurve(p.curve, p.coords[0], p.coords[1])
}

func (p *ECPoint) Equals(b *ECPoint) bool {
	if p == nil || b == nil {
		return false
	}
	return p.X().Cmp(b.X()) == 0 && p.Y().Cmp(b.Y()) == 0
}

func (p *ECPoint) ValidateBasic() bool {
	if p == nil || p.coords[0] == nil || p.coords[1] == nil {
		return false
	}
	onCurveKnown := atomic.LoadUint32(&p.onCurveKnown) == 1
	res := onCurveKnown || p.IsOnCurve()
	if res && !onCurveKnown {
		atomic.StoreUint32(&p.onCurveKnown, 1)
	}
	return res
}

// Bytes returns the SEC1 compressed encoding of the point: a parity byte
// (0x02 or 0x03) followed by the 32-byte big-endian X coordinate.
func (p *ECPoint) Bytes() []byte {
	byteSize := (p.curve.Params().BitSize + 7) / 8
	out := make([]byte, 1, 1+byteSize)
	out[0] = byte(0x02) | byte(p.Y().Bit(0))
	bzX := common.PadToLengthBytesInPlace(p.X().Bytes(), byteSize)
	return append(out, bzX...)
}

// MarshalCBOR encodes the point in its compressed form; the encoding is a
// single cbor byte string, which is canonical by construction.
func (p *ECPoint) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(p.Bytes())
}

func (p *ECPoint) UnmarshalCBOR(data []byte) error {
	var bz []byte
	if err := cbor.Unmarshal(data, &bz); err != nil {
		return err
	}
	pt, err := DecodeECPoint(tss.EC(), bz)
	if err != nil {
		return err
	}
	p.curve = pt.curve
	p.coords = pt.coords
	atomic.StoreUint32(&p.onCurveKnown, 1)
	return nil
}

func (p *ECPoint) ToECDSAPubKey() *ecdsa.PublicKey {
	return &ecdsa.PublicKey{
		Curve: p.curve,
		X:     p.X(),
		Y:     p.Y(),
	}
}

// ----- //

func isOnCurve(c elliptic.Curve, x, y *big.Int) bool {
	if x == nil || y == nil {
		return false
	}
	return c.IsOnCurve(x, y)
}

func ScalarBaseMult(curve elliptic.Curve, k *big.Int) *ECPoint {
	x, y := curve.ScalarBaseMult(k.Bytes())
	p, _ := NewECPoint(curve, x, y) // it must be on the curve, no need to check.
	return p
}

// DecodeECPoint reverses Bytes: it decompresses a 33-byte SEC1 compressed
// point on the given curve (secp256k1: y^2 = x^3 + 7).
func DecodeECPoint(curve elliptic.Curve, bz []byte) (*ECPoint, error) {
	byteSize := (curve.Params().BitSize + 7) / 8
	if len(bz) != 1+byteSize || (bz[0] != 0x02 && bz[0] != 0x03) {
		return nil, errors.New("DecodeECPoint: malformed compressed point")
	}
	x := new(big.Int).SetBytes(bz[1:])
	return decompressPointSecp256k1(curve, x, bz[0]&1)
}

func decompressPointSecp256k1(curve elliptic.Curve, x *big.Int, sign byte) (*ECPoint, error) {
	params := curve.Params()
	modP := common.ModInt(params.P)

	// secp256k1: y^2 = x^3 + 7
	x3 := new(big.Int).Mul(x, x)
	x3.Mul(x3, x)
	y2 := x3.Add(x3, big.NewInt(7))

	y := modP.Sqrt(y2)
	if y == nil {
		return nil, errors.New("DecodeECPoint: invalid point")
	}
	if y.Bit(0) != uint(sign)&1 {
		y = modP.Neg(y)
	}
	return NewECPoint(curve, x, y)
}
