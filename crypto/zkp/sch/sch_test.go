package zkpsch_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tmpfs/synedrion/common"
	"github.com/tmpfs/synedrion/crypto"
	zkpsch "github.com/tmpfs/synedrion/crypto/zkp/sch"
	"github.com/tmpfs/synedrion/tss"
)

func TestSchProof(t *testing.T) {
	ec := tss.EC()
	q := ec.Params().N

	x := common.GetRandomPositiveInt(nil, q)
	X := crypto.ScalarBaseMult(ec, x)

	aux := common.SessionAuxInt([]byte("session"), 0)
	proof, err := zkpsch.NewProof(nil, X, x, aux)
	require.NoError(t, err)

	assert.True(t, proof.Verify(X, aux))

	// aux binding
	assert.False(t, proof.Verify(X, common.SessionAuxInt([]byte("session"), 1)))

	// a different public point must reject
	otherX := crypto.ScalarBaseMult(ec, new(big.Int).Add(x, big.NewInt(1)))
	assert.False(t, proof.Verify(otherX, aux))

	// round trip
	bzs := proof.Bytes()
	restored, err := zkpsch.NewProofFromBytes(ec, bzs[:])
	require.NoError(t, err)
	assert.True(t, restored.Verify(X, aux))

	// tampering
	restored.Z = new(big.Int).Add(restored.Z, big.NewInt(1))
	assert.False(t, restored.Verify(X, aux))
}
