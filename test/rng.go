package test

import (
	"io"

	"golang.org/x/crypto/sha3"
)

// NewSeededReader returns a deterministic entropy stream for test scenarios
// that pin their randomness, backed by SHAKE-256 over the seed.
func NewSeededReader(seed []byte) io.Reader {
	h := sha3.NewShake256()
	_, _ = h.Write(seed)
	return h
}

// RepeatSeed builds the fixed byte-repeated seeds the end-to-end scenarios
// use (e.g. 32 bytes of 0x01).
func RepeatSeed(b byte, length int) []byte {
	seed := make([]byte, length)
	for i := range seed {
		seed[i] = b
	}
	return seed
}
