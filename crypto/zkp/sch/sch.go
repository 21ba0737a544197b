package zkpsch

import (
	"crypto/elliptic"
	"errors"
	"fmt"
	"io"
	"math/big"

	"github.com/tmpfs/synedrion/common"
	"github.com/tmpfs/synedrion/crypto"
)

const (
	ProofSchBytesParts = 3
)

type (
	// ProofSch attests knowledge of the discrete log x of X = x·G.
	ProofSch struct {
		A *crypto.ECPoint
		Z *big.Int
	}
)

func NewProof(rnd io.Reader, X *crypto.ECPoint, x, aux *big.Int) (*ProofSch, error) {
	if x == nil || X == nil || aux == nil || !X.ValidateBasic() {
		return nil, errors.New("ProveSch constructor received nil or invalid value(s)")
	}
	ec := X.Curve()
	q := ec.Params().N
	g := crypto.NewECPointNoCurveCheck(ec, ec.Params().Gx, ec.Params().Gy) // already on the curve.

	// Fig 22.1
	alpha := common.GetRandomPositiveInt(rnd, q)
	A := crypto.ScalarBaseMult(ec, alpha)

	// Fig 22.2 e
	var e *big.Int
	{
		eHash := common.SHA512_256i(aux, X.X(), X.Y(), g.X(), g.Y(), A.X(), A.Y())
		e = common.RejectionSample(q, eHash)
	}

	// Fig 22.3
	z := new(big.Int).Mul(e, x)
	z = common.ModInt(q).Add(alpha, z)

	return &ProofSch{A: A, Z: z}, nil
}

func NewProofFromBytes(ec elliptic.Curve, bzs [][]byte) (*ProofSch, error) {
	if !common.NonEmptyMultiBytes(bzs, ProofSchBytesParts) {
		return nil, fmt.Errorf("expected %d byte parts to construct ProofSch", ProofSchBytesParts)
	}
	point, err := crypto.NewECPoint(ec,
		new(big.Int).SetBytes(bzs[0]),
		new(big.Int).SetBytes(bzs[1]))
	if err != nil {
		return nil, err
	}
	return &ProofSch{
		A: point,
		Z: new(big.Int).SetBytes(bzs[2]),
	}, nil
}

func (pf *ProofSch) Verify(X *crypto.ECPoint, aux *big.Int) bool {
	if pf == nil || !pf.ValidateBasic() || X == nil || aux == nil {
		return false
	}
	ec := X.Curve()
	q := ec.Params().N
	g := crypto.NewECPointNoCurveCheck(ec, ec.Params().Gx, ec.Params().Gy)

	var e *big.Int
	{
		eHash := common.SHA512_256i(aux, X.X(), X.Y(), g.X(), g.Y(), pf.A.X(), pf.A.Y())
		e = common.RejectionSample(q, eHash)
	}

	// Fig 22. Verification
	left := crypto.ScalarBaseMult(ec, pf.Z)
	XEXPe := X.ScalarMult(e)
	right, err := pf.A.Add(XEXPe)
	if err != nil {
		return false
	}
	if right.X().Cmp(left.X()) != 0 || right.Y().Cmp(left.Y()) != 0 {
		return false
	}
	return true
}

func (pf *ProofSch) ValidateBasic() bool {
	return pf.Z != nil && pf.A != nil
}

func (pf *ProofSch) Bytes() [ProofSchBytesParts][]byte {
	return [...][]byte{
		pf.A.X().Bytes(),
		pf.A.Y().Bytes(),
		pf.Z.Bytes(),
	}
}
