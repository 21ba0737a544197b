package tss_test

import (
	"testing"

	"github.com/btcsuite/btcd/btcec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tmpfs/synedrion/test"
	"github.com/tmpfs/synedrion/tss"
)

func TestSignedMessageRoundTrip(t *testing.T) {
	priv, err := btcec.NewPrivateKey(btcec.S256())
	require.NoError(t, err)
	signer := tss.NewMessageSigner(priv)

	sessionID := test.RepeatSeed(0x07, tss.SessionIDLength)
	payload := []byte("round body")

	sm, err := signer.Sign(sessionID, 3, tss.MessageTypeDirect, payload)
	require.NoError(t, err)

	bz, err := sm.Marshal()
	require.NoError(t, err)
	decoded, err := tss.UnmarshalSignedMessage(bz)
	require.NoError(t, err)
	assert.Equal(t, sm, decoded)

	assert.NoError(t, decoded.Verify(signer.PubKey(), sessionID))
}

func TestSignedMessageVerifyFailures(t *testing.T) {
	priv, err := btcec.NewPrivateKey(btcec.S256())
	require.NoError(t, err)
	otherPriv, err := btcec.NewPrivateKey(btcec.S256())
	require.NoError(t, err)
	signer := tss.NewMessageSigner(priv)

	sessionID := test.RepeatSeed(0x07, tss.SessionIDLength)
	sm, err := signer.Sign(sessionID, 3, tss.MessageTypeBroadcast, []byte("round body"))
	require.NoError(t, err)

	// a different party's verifying key
	assert.Error(t, sm.Verify(otherPriv.PubKey(), sessionID))

	// wrong session
	assert.Error(t, sm.Verify(signer.PubKey(), test.RepeatSeed(0x08, tss.SessionIDLength)))

	// any field mutation invalidates the signature
	tampered := *sm
	tampered.Round = 4
	assert.Error(t, tampered.Verify(signer.PubKey(), sessionID))

	tampered = *sm
	tampered.Payload = append([]byte{}, sm.Payload...)
	tampered.Payload[0] ^= 1
	assert.Error(t, tampered.Verify(signer.PubKey(), sessionID))

	tampered = *sm
	tampered.MessageType = uint8(tss.MessageTypeBroadcastConsensus)
	assert.Error(t, tampered.Verify(signer.PubKey(), sessionID))
}
