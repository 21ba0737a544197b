package tss

import (
	"bytes"
	"errors"

	"github.com/btcsuite/btcd/btcec"

	"github.com/tmpfs/synedrion/common"
)

// signedMessageTag is the domain separation tag of the envelope hash; it is
// part of the public ABI so third parties can verify envelope signatures.
var signedMessageTag = []byte("SignedMessage")

type (
	// SignedMessage wraps an outbound wire payload for authenticated
	// transports. Besides the payload itself, the session id, round and
	// message type are signed so a malicious third party cannot replay the
	// payload in another session or round.
	SignedMessage struct {
		SessionID   []byte
		Round       uint8
		MessageType uint8
		Payload     []byte
		Signature   []byte
	}

	// MessageSigner produces signed envelopes under a party's long-term key.
	// The key never leaves the signer.
	MessageSigner struct {
		priv *btcec.PrivateKey
	}
)

func messageHash(sessionID []byte, round uint8, mt MessageType, payload []byte) []byte {
	return common.SHA512_256(signedMessageTag, sessionID, []byte{round}, []byte{byte(mt)}, payload)
}

func NewMessageSigner(priv *btcec.PrivateKey) *MessageSigner {
	return &MessageSigner{priv: priv}
}

func (ms *MessageSigner) PubKey() *btcec.PublicKey {
	return ms.priv.PubKey()
}

func (ms *MessageSigner) Sign(sessionID []byte, round int, mt MessageType, payload []byte) (*SignedMessage, error) {
	sig, err := ms.priv.Sign(messageHash(sessionID, uint8(round), mt, payload))
	if err != nil {
		return nil, err
	}
	return &SignedMessage{
		SessionID:   append([]byte{}, sessionID...),
		Round:       uint8(round),
		MessageType: uint8(mt),
		Payload:     append([]byte{}, payload...),
		Signature:   sig.Serialize(),
	}, nil
}

// Verify checks the envelope signature against the expected verifying key of
// the claimed party slot and that the envelope belongs to the given session.
func (sm *SignedMessage) Verify(pub *btcec.PublicKey, expectedSessionID []byte) error {
	if sm == nil || pub == nil {
		return errors.New("signed message or verifying key is nil")
	}
	if !bytes.Equal(sm.SessionID, expectedSessionID) {
		return errors.New("signed message belongs to another session")
	}
	sig, err := btcec.ParseDERSignature(sm.Signature, btcec.S256())
	if err != nil {
		return err
	}
	if !sig.Verify(messageHash(sm.SessionID, sm.Round, MessageType(sm.MessageType), sm.Payload), pub) {
		return errors.New("envelope signature verification failed")
	}
	return nil
}

func (sm *SignedMessage) Marshal() ([]byte, error) {
	return MarshalMessage(sm)
}

func UnmarshalSignedMessage(bz []byte) (*SignedMessage, error) {
	sm := new(SignedMessage)
	if err := UnmarshalMessage(bz, sm); err != nil {
		return nil, err
	}
	return sm, nil
}
