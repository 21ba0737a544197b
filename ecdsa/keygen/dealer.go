package keygen

import (
	"errors"
	"io"
	"math/big"

	"github.com/tmpfs/synedrion/common"
	"github.com/tmpfs/synedrion/crypto"
	"github.com/tmpfs/synedrion/crypto/paillier"
	"github.com/tmpfs/synedrion/tss"
)

const (
	// PaillierModulusLen is the recommended Paillier modulus length.
	PaillierModulusLen = 2048
)

// NewCentralizedKeyShares is a trusted-dealer substitute for the distributed
// key-generation protocol: it samples an ECDSA key, splits it into additive
// shares and equips every party with a Paillier key pair and ring-Pedersen
// parameters. Use it for tests and tooling; production deployments run the
// distributed protocol instead.
//
// A share of zero is permitted (probability ~2^-256 per party); nothing in
// the signing protocol divides by a share.
func NewCentralizedKeyShares(rnd io.Reader, partyCount, paillierModulusLen int, secret *big.Int) ([]LocalPartySaveData, error) {
	if partyCount < 2 {
		return nil, errors.New("centralized keygen needs at least two parties")
	}
	ec := tss.EC()
	q := ec.Params().N

	if secret == nil {
		secret = common.GetRandomPositiveInt(rnd, q)
	}
	if secret.Sign() == 0 || secret.Cmp(q) >= 0 {
		return nil, errors.New("the secret key must be a non-zero curve scalar")
	}

	// additive split: the last share absorbs the remainder
	modQ := common.ModInt(q)
	shares := make([]*big.Int, partyCount)
	acc := big.NewInt(0)
	for i := 0; i < partyCount-1; i++ {
		shares[i] = common.GetRandomPositiveInt(rnd, q)
		acc = modQ.Add(acc, shares[i])
	}
	shares[partyCount-1] = modQ.Sub(secret, acc)

	saves := make([]LocalPartySaveData, partyCount)
	for i := range saves {
		saves[i] = NewLocalPartySaveData(partyCount)
	}

	bigXs := make([]*crypto.ECPoint, partyCount)
	for i, xi := range shares {
		bigXs[i] = crypto.ScalarBaseMult(ec, xi)
	}
	ecdsaPub := bigXs[0]
	var err error
	for _, X := range bigXs[1:] {
		if ecdsaPub, err = ecdsaPub.Add(X); err != nil {
			return nil, err
		}
	}

	for i := range saves {
		paiSK, paiPK, err := paillier.GenerateKeyPair(rnd, paillierModulusLen)
		if err != nil {
			return nil, err
		}
		NTildei, h1i, h2i, err := generateRingPedersenParams(rnd, paillierModulusLen)
		if err != nil {
			return nil, err
		}
		saves[i].LocalPreParams = LocalPreParams{
			PaillierSK: paiSK,
			NTildei:    NTildei,
			H1i:        h1i,
			H2i:        h2i,
		}
		saves[i].LocalSecrets = LocalSecrets{
			Xi:      shares[i],
			ShareID: big.NewInt(int64(i) + 1),
		}
		saves[i].ECDSAPub = ecdsaPub
		for j := range saves {
			saves[j].PaillierPKs[i] = paiPK
			saves[j].NTildej[i] = NTildei
			saves[j].H1j[i] = h1i
			saves[j].H2j[i] = h2i
		}
	}
	for i := range saves {
		for j := range saves {
			saves[j].Ks[i] = saves[i].ShareID
			saves[j].BigXj[i] = bigXs[i]
		}
	}
	return saves, nil
}

// generateRingPedersenParams builds the (NTilde, h1, h2) commitment
// parameters used by the range proofs: h1 is a quadratic residue and h2 lies
// in the group generated by h1.
func generateRingPedersenParams(rnd io.Reader, modulusBitLen int) (NTilde, h1, h2 *big.Int, err error) {
	P := common.GetRandomPrimeInt(rnd, modulusBitLen/2)
	Q := common.GetRandomPrimeInt(rnd, modulusBitLen/2)
	if P == nil || Q == nil {
		return nil, nil, nil, errors.New("ring-Pedersen prime generation failed")
	}
	NTilde = new(big.Int).Mul(P, Q)
	modNTilde := common.ModInt(NTilde)

	f1 := common.GetRandomPositiveRelativelyPrimeInt(rnd, NTilde)
	alpha := common.GetRandomPositiveRelativelyPrimeInt(rnd, NTilde)
	h1 = modNTilde.Mul(f1, f1)
	h2 = modNTilde.Exp(h1, alpha)
	return NTilde, h1, h2, nil
}
