package signing

import (
	"crypto/elliptic"
	"io"
	"math/big"

	"github.com/tmpfs/synedrion/common"
	"github.com/tmpfs/synedrion/crypto"
	"github.com/tmpfs/synedrion/crypto/paillier"
	zkpaffg "github.com/tmpfs/synedrion/crypto/zkp/affg"
)

// MtAOut carries one sender-side leg of the multiplicative-to-additive
// conversion: the ciphertext pair (Dji, Fji), the sender's additive share
// Beta, and the AffG proof binding them to the sender's multiplier.
type MtAOut struct {
	Dji     *big.Int
	Fji     *big.Int
	Sij     *big.Int
	Rij     *big.Int
	BetaNeg *big.Int // the positive value encrypted into Dji
	Beta    *big.Int // -BetaNeg mod q, the sender's additive share
	Proofji *zkpaffg.ProofAffg
}

// NewMtA converts the product gammai * kj into additive shares:
// Dji = gammai ⊙ Kj ⊕ Enc_pkj(betaNeg) and Fji = Enc_pki(betaNeg), so the
// recipient decrypts alpha = gammai*kj + betaNeg while the sender keeps
// beta = -betaNeg.
func NewMtA(rnd io.Reader, ec elliptic.Curve, Kj *big.Int, gammai *big.Int, BigGammai *crypto.ECPoint, pkj *paillier.PublicKey, pki *paillier.PublicKey, NCap, s, t, aux *big.Int) (*MtAOut, error) {
	q := ec.Params().N
	q3 := new(big.Int).Mul(q, q)
	q3 = new(big.Int).Mul(q, q3)

	betaNeg := common.GetRandomPositiveInt(rnd, q3)

	gammaK, err := pkj.HomoMult(gammai, Kj)
	if err != nil {
		return nil, err
	}
	Dji, sij, err := pkj.EncryptAndReturnRandomness(rnd, betaNeg)
	if err != nil {
		return nil, err
	}
	Dji, err = pkj.HomoAdd(gammaK, Dji)
	if err != nil {
		return nil, err
	}

	Fji, rij, err := pki.EncryptAndReturnRandomness(rnd, betaNeg)
	if err != nil {
		return nil, err
	}

	beta := common.ModInt(q).Sub(zero, betaNeg)

	Psiji, err := zkpaffg.NewProof(rnd, ec, pkj, pki, NCap, s, t, Kj, Dji, Fji, BigGammai, gammai, betaNeg, sij, rij, aux)
	if err != nil {
		return nil, err
	}

	return &MtAOut{
		Dji:     Dji,
		Fji:     Fji,
		Sij:     sij,
		Rij:     rij,
		BetaNeg: betaNeg,
		Beta:    beta,
		Proofji: Psiji,
	}, nil
}
