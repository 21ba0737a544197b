package paillier_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tmpfs/synedrion/common"
	"github.com/tmpfs/synedrion/crypto"
	"github.com/tmpfs/synedrion/crypto/paillier"
	"github.com/tmpfs/synedrion/tss"
)

const testPaillierBits = 1024

var (
	testSK *paillier.PrivateKey
	testPK *paillier.PublicKey
)

func setUp(t *testing.T) {
	if testSK != nil {
		return
	}
	var err error
	testSK, testPK, err = paillier.GenerateKeyPair(nil, testPaillierBits)
	require.NoError(t, err)
}

func TestEncryptDecrypt(t *testing.T) {
	setUp(t)
	m := common.GetRandomPositiveInt(nil, testPK.N)
	c, err := testPK.Encrypt(nil, m)
	require.NoError(t, err)
	decrypted, err := testSK.Decrypt(c)
	require.NoError(t, err)
	assert.Zero(t, m.Cmp(decrypted))
}

func TestEncryptRejectsOutOfRange(t *testing.T) {
	setUp(t)
	_, err := testPK.Encrypt(nil, new(big.Int).Neg(big.NewInt(1)))
	assert.Error(t, err)
	_, err = testPK.Encrypt(nil, testPK.N)
	assert.Error(t, err)
}

func TestHomoAdd(t *testing.T) {
	setUp(t)
	q := tss.EC().Params().N
	a := common.GetRandomPositiveInt(nil, q)
	b := common.GetRandomPositiveInt(nil, q)
	ca, err := testPK.Encrypt(nil, a)
	require.NoError(t, err)
	cb, err := testPK.Encrypt(nil, b)
	require.NoError(t, err)
	sum, err := testPK.HomoAdd(ca, cb)
	require.NoError(t, err)
	decrypted, err := testSK.Decrypt(sum)
	require.NoError(t, err)
	assert.Zero(t, decrypted.Cmp(new(big.Int).Add(a, b)))
}

func TestHomoMult(t *testing.T) {
	setUp(t)
	q := tss.EC().Params().N
	m := common.GetRandomPositiveInt(nil, q)
	x := common.GetRandomPositiveInt(nil, q)
	c, err := testPK.Encrypt(nil, x)
	require.NoError(t, err)
	cm, err := testPK.HomoMult(m, c)
	require.NoError(t, err)
	decrypted, err := testSK.Decrypt(cm)
	require.NoError(t, err)
	assert.Zero(t, decrypted.Cmp(new(big.Int).Mul(m, x)))
}

func TestSignedRoundTrip(t *testing.T) {
	setUp(t)
	q := tss.EC().Params().N
	m := new(big.Int).Neg(common.GetRandomPositiveInt(nil, q))
	c, _, err := testPK.EncryptSignedAndReturnRandomness(nil, m)
	require.NoError(t, err)
	decrypted, err := testSK.DecryptSigned(c)
	require.NoError(t, err)
	assert.Zero(t, decrypted.Cmp(m))
}

func TestDeriveRandomizer(t *testing.T) {
	setUp(t)
	q := tss.EC().Params().N
	m := common.GetRandomPositiveInt(nil, q)
	c, _, err := testPK.EncryptAndReturnRandomness(nil, m)
	require.NoError(t, err)
	derived, err := testSK.DeriveRandomizer(c)
	require.NoError(t, err)
	// re-encrypting with the derived randomizer reproduces the ciphertext
	c2, err := testPK.EncryptWithChosenRandomness(m, derived)
	require.NoError(t, err)
	assert.Zero(t, c.Cmp(c2))
}

func TestModulusProof(t *testing.T) {
	setUp(t)
	q := tss.EC().Params().N
	k := common.GetRandomPositiveInt(nil, q)
	pub := crypto.ScalarBaseMult(tss.EC(), common.GetRandomPositiveInt(nil, q))

	proof := testSK.Proof(k, pub)
	ok, err := proof.Verify(testPK.N, k, pub)
	require.NoError(t, err)
	assert.True(t, ok)

	// a proof for one statement must not verify for another
	otherK := new(big.Int).Add(k, big.NewInt(1))
	ok, err = proof.Verify(testPK.N, otherK, pub)
	require.NoError(t, err)
	assert.False(t, ok)
}
