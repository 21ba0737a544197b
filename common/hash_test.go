package common_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tmpfs/synedrion/common"
)

func TestSHA512_256FramesInputs(t *testing.T) {
	// concatenation splits must not collide
	a := common.SHA512_256([]byte("ab"), []byte("c"))
	b := common.SHA512_256([]byte("a"), []byte("bc"))
	require.NotNil(t, a)
	require.NotNil(t, b)
	assert.NotEqual(t, a, b)
}

func TestSessionAuxIntBindsPartyAndSession(t *testing.T) {
	sid := []byte("0123456789abcdef0123456789abcdef")
	aux0 := common.SessionAuxInt(sid, 0)
	aux1 := common.SessionAuxInt(sid, 1)
	assert.NotZero(t, aux0.Cmp(aux1), "distinct party slots must produce distinct aux values")

	other := common.SessionAuxInt([]byte("fedcba9876543210fedcba9876543210"), 0)
	assert.NotZero(t, aux0.Cmp(other), "distinct sessions must produce distinct aux values")
}

func TestRejectionSample(t *testing.T) {
	q, _ := new(big.Int).SetString("fffffffffffffffffffffffffffffffebaaedce6af48a03bbfd25e8cd0364141", 16)
	for i := int64(1); i < 50; i++ {
		e := common.RejectionSample(q, big.NewInt(i*7919))
		assert.True(t, e.Cmp(q) < 0 && e.Sign() >= 0)
	}
}
