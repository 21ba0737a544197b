package zkplogstar_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tmpfs/synedrion/common"
	"github.com/tmpfs/synedrion/crypto"
	"github.com/tmpfs/synedrion/crypto/paillier"
	zkplogstar "github.com/tmpfs/synedrion/crypto/zkp/logstar"
	"github.com/tmpfs/synedrion/tss"
)

const testPaillierBits = 1024

func testRingPedersen(t *testing.T) (NCap, s, tt *big.Int) {
	P := common.GetRandomPrimeInt(nil, testPaillierBits/2)
	Q := common.GetRandomPrimeInt(nil, testPaillierBits/2)
	require.NotNil(t, P)
	require.NotNil(t, Q)
	NCap = new(big.Int).Mul(P, Q)
	modNCap := common.ModInt(NCap)
	f := common.GetRandomPositiveRelativelyPrimeInt(nil, NCap)
	alpha := common.GetRandomPositiveRelativelyPrimeInt(nil, NCap)
	s = modNCap.Mul(f, f)
	tt = modNCap.Exp(s, alpha)
	return
}

func TestLogstarProof(t *testing.T) {
	ec := tss.EC()
	q := ec.Params().N
	g := crypto.NewECPointNoCurveCheck(ec, ec.Params().Gx, ec.Params().Gy)

	_, pk, err := paillier.GenerateKeyPair(nil, testPaillierBits)
	require.NoError(t, err)
	NCap, s, tt := testRingPedersen(t)

	x := common.GetRandomPositiveInt(nil, q)
	C, rho, err := pk.EncryptAndReturnRandomness(nil, x)
	require.NoError(t, err)
	X := crypto.ScalarBaseMult(ec, x)

	aux := common.SessionAuxInt([]byte("session"), 0)
	proof, err := zkplogstar.NewProof(nil, ec, pk, C, X, g, NCap, s, tt, x, rho, aux)
	require.NoError(t, err)

	assert.True(t, proof.Verify(ec, pk, C, X, g, NCap, s, tt, aux))

	// an arbitrary base point is part of the statement
	base := crypto.ScalarBaseMult(ec, big.NewInt(7))
	Xb := base.ScalarMult(x)
	proofB, err := zkplogstar.NewProof(nil, ec, pk, C, Xb, base, NCap, s, tt, x, rho, aux)
	require.NoError(t, err)
	assert.True(t, proofB.Verify(ec, pk, C, Xb, base, NCap, s, tt, aux))
	assert.False(t, proofB.Verify(ec, pk, C, X, g, NCap, s, tt, aux))

	// aux binding
	assert.False(t, proof.Verify(ec, pk, C, X, g, NCap, s, tt, common.SessionAuxInt([]byte("session"), 1)))

	// tampering
	bzs := proof.Bytes()
	restored, err := zkplogstar.NewProofFromBytes(ec, bzs[:])
	require.NoError(t, err)
	assert.True(t, restored.Verify(ec, pk, C, X, g, NCap, s, tt, aux))
	restored.Z3 = new(big.Int).Add(restored.Z3, big.NewInt(1))
	assert.False(t, restored.Verify(ec, pk, C, X, g, NCap, s, tt, aux))
}
