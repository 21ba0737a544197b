package tss

import (
	"crypto/elliptic"

	"github.com/btcsuite/btcd/btcec"
)

var (
	ec elliptic.Curve
)

// Init default curve (secp256k1). The protocol is specified over secp256k1
// only; there is no runtime curve registry.
func init() {
	ec = btcec.S256()
}

// EC returns the secp256k1 curve parameters shared by the whole module.
func EC() elliptic.Curve {
	return ec
}
