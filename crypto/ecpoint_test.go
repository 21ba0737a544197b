package crypto_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tmpfs/synedrion/common"
	"github.com/tmpfs/synedrion/crypto"
	"github.com/tmpfs/synedrion/tss"
)

func TestECPointArithmetic(t *testing.T) {
	ec := tss.EC()
	q := ec.Params().N

	a := common.GetRandomPositiveInt(nil, q)
	b := common.GetRandomPositiveInt(nil, q)
	A := crypto.ScalarBaseMult(ec, a)
	B := crypto.ScalarBaseMult(ec, b)

	sum, err := A.Add(B)
	require.NoError(t, err)
	expected := crypto.ScalarBaseMult(ec, common.ModInt(q).Add(a, b))
	assert.True(t, sum.Equals(expected))

	diff, err := sum.Sub(B)
	require.NoError(t, err)
	assert.True(t, diff.Equals(A))
}

func TestECPointCompressedEncoding(t *testing.T) {
	ec := tss.EC()
	q := ec.Params().N

	for i := 0; i < 8; i++ {
		k := common.GetRandomPositiveInt(nil, q)
		P := crypto.ScalarBaseMult(ec, k)
		bz := P.Bytes()
		require.Len(t, bz, 33)
		assert.Contains(t, []byte{0x02, 0x03}, bz[0])

		decoded, err := crypto.DecodeECPoint(ec, bz)
		require.NoError(t, err)
		assert.True(t, decoded.Equals(P))
	}

	// malformed encodings are rejected
	_, err := crypto.DecodeECPoint(ec, []byte{0x04})
	assert.Error(t, err)
	bad := crypto.ScalarBaseMult(ec, big.NewInt(5)).Bytes()
	bad[0] = 0x05
	_, err = crypto.DecodeECPoint(ec, bad)
	assert.Error(t, err)
}

func TestNewECPointRejectsOffCurve(t *testing.T) {
	_, err := crypto.NewECPoint(tss.EC(), big.NewInt(1), big.NewInt(1))
	assert.Error(t, err)
}
