package zkpenc_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tmpfs/synedrion/common"
	"github.com/tmpfs/synedrion/crypto/paillier"
	zkpenc "github.com/tmpfs/synedrion/crypto/zkp/enc"
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

func TestEncProof(t *testing.T) {
	ec := tss.EC()
	q := ec.Params().N

	_, pk, err := paillier.GenerateKeyPair(nil, testPaillierBits)
	require.NoError(t, err)
	NCap, s, tt := testRingPedersen(t)

	k := common.GetRandomPositiveInt(nil, q)
	K, rho, err := pk.EncryptAndReturnRandomness(nil, k)
	require.NoError(t, err)

	aux := common.SessionAuxInt([]byte("session"), 0)
	proof, err := zkpenc.NewProof(nil, ec, pk, K, NCap, s, tt, k, rho, aux)
	require.NoError(t, err)

	assert.True(t, proof.Verify(ec, pk, NCap, s, tt, K, aux))

	// binding: another session/prover aux must reject
	otherAux := common.SessionAuxInt([]byte("session"), 1)
	assert.False(t, proof.Verify(ec, pk, NCap, s, tt, K, otherAux))

	// a tampered transcript must reject
	proof.Z1 = new(big.Int).Add(proof.Z1, big.NewInt(1))
	assert.False(t, proof.Verify(ec, pk, NCap, s, tt, K, aux))
}

func TestEncProofBytes(t *testing.T) {
	ec := tss.EC()
	q := ec.Params().N

	_, pk, err := paillier.GenerateKeyPair(nil, testPaillierBits)
	require.NoError(t, err)
	NCap, s, tt := testRingPedersen(t)

	k := common.GetRandomPositiveInt(nil, q)
	K, rho, err := pk.EncryptAndReturnRandomness(nil, k)
	require.NoError(t, err)

	aux := common.SessionAuxInt([]byte("session"), 2)
	proof, err := zkpenc.NewProof(nil, ec, pk, K, NCap, s, tt, k, rho, aux)
	require.NoError(t, err)

	bzs := proof.Bytes()
	restored, err := zkpenc.NewProofFromBytes(bzs[:])
	require.NoError(t, err)
	assert.True(t, restored.Verify(ec, pk, NCap, s, tt, K, aux))
}
