package zkpmul_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tmpfs/synedrion/common"
	"github.com/tmpfs/synedrion/crypto/paillier"
	zkpmul "github.com/tmpfs/synedrion/crypto/zkp/mul"
	"github.com/tmpfs/synedrion/tss"
)

const testPaillierBits = 1024

func TestMulProof(t *testing.T) {
	ec := tss.EC()
	q := ec.Params().N

	_, pk, err := paillier.GenerateKeyPair(nil, testPaillierBits)
	require.NoError(t, err)

	x := common.GetRandomPositiveInt(nil, q)
	y := common.GetRandomPositiveInt(nil, q)
	X, rhox, err := pk.EncryptAndReturnRandomness(nil, x)
	require.NoError(t, err)
	Y, err := pk.Encrypt(nil, y)
	require.NoError(t, err)
	// C = x ⊙ Y with no re-randomization, matching the identification path
	C, err := pk.HomoMult(x, Y)
	require.NoError(t, err)

	aux := common.SessionAuxInt([]byte("session"), 0)
	proof, err := zkpmul.NewProof(nil, ec, pk, X, Y, C, x, rhox, aux)
	require.NoError(t, err)

	assert.True(t, proof.Verify(ec, pk, X, Y, C, aux))

	// aux binding
	assert.False(t, proof.Verify(ec, pk, X, Y, C, common.SessionAuxInt([]byte("session"), 3)))

	// wrong product
	wrongC, err := pk.HomoMult(new(big.Int).Add(x, big.NewInt(1)), Y)
	require.NoError(t, err)
	assert.False(t, proof.Verify(ec, pk, X, Y, wrongC, aux))

	// round trip
	bzs := proof.Bytes()
	restored, err := zkpmul.NewProofFromBytes(bzs[:])
	require.NoError(t, err)
	assert.True(t, restored.Verify(ec, pk, X, Y, C, aux))
}
