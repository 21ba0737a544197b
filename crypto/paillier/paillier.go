// The Paillier Crypto-system is an additive crypto-system. This means that given two ciphertexts, one can perform operations equivalent to adding the respective plain texts.
// Additionally, Paillier Crypto-system supports further computations:
//
// * Encrypted integers can be added together
// * Encrypted integers can be multiplied by an unencrypted integer
// * Encrypted integers and unencrypted integers can be added together

package paillier

import (
	"errors"
	"fmt"
	"io"
	gmath "math"
	"math/big"
	"strconv"

	"github.com/otiai10/primes"

	"github.com/tmpfs/synedrion/common"
	crypto2 "github.com/tmpfs/synedrion/crypto"
)

const (
	ProofIters        = 13
	verifyPrimesUntil = 1000 // Verify uses primes <1000
)

type (
	PublicKey struct {
		N *big.Int
	}

	PrivateKey struct {
		PublicKey
		LambdaN, // lcm(p-1, q-1)
		PhiN *big.Int // (p-1) * (q-1)
	}

	// Proof is a non-interactive proof that the Paillier modulus is well-formed
	Proof [ProofIters]*big.Int
)

var (
	ErrMessageTooLong   = fmt.Errorf("the message is too large or < 0")
	ErrMessageMalFormed = fmt.Errorf("the message is mal-formed")

	zero = big.NewInt(0)
	one  = big.NewInt(1)
)

func init() {
	// init primes cache
	_ = primes.Globally.Until(verifyPrimesUntil)
}

// GenerateKeyPair samples two distinct primes of modulusBitLen/2 bits each.
// Key-share generation is dealer territory in this module, so the safe-prime
// search of the distributed keygen protocol is not reproduced here.
func GenerateKeyPair(rnd io.Reader, modulusBitLen int) (privateKey *PrivateKey, publicKey *PublicKey, err error) {
	var P, Q *big.Int
	for {
		P = common.GetRandomPrimeInt(rnd, modulusBitLen/2)
		Q = common.GetRandomPrimeInt(rnd, modulusBitLen/2)
		if P == nil || Q == nil {
			return nil, nil, errors.New("GenerateKeyPair: prime generation failed")
		}
		if P.Cmp(Q) != 0 {
			break
		}
	}
	N := new(big.Int).Mul(P, Q)

	// phiN = P-1 * Q-1
	PMinus1, QMinus1 := new(big.Int).Sub(P, one), new(big.Int).Sub(Q, one)
	phiN := new(big.Int).Mul(PMinus1, QMinus1)

	// lambdaN = lcm(P−1, Q−1)
	gcd := new(big.Int).GCD(nil, nil, PMinus1, QMinus1)
	lambdaN := new(big.Int).Div(phiN, gcd)

	publicKey = &PublicKey{N: N}
	privateKey = &PrivateKey{PublicKey: *publicKey, LambdaN: lambdaN, PhiN: phiN}
	return
}

// ----- //

func (publicKey *PublicKey) EncryptAndReturnRandomness(rnd io.Reader, m *big.Int) (c *big.Int, x *big.Int, err error) {
	if m.Cmp(zero) == -1 || m.Cmp(publicKey.N) != -1 { // m < 0 || m >= N ?
		return nil, nil, ErrMessageTooLong
	}
	x = common.GetRandomPositiveRelativelyPrimeInt(rnd, publicKey.N)
	c, err = publicKey.EncryptWithChosenRandomness(m, x)
	return
}

func (publicKey *PublicKey) EncryptWithChosenRandomness(m, x *big.Int) (c *big.Int, err error) {
	if m.Cmp(zero) == -1 || m.Cmp(publicKey.N) != -1 { // m < 0 || m >= N ?
		return nil, ErrMessageTooLong
	}
	N2 := publicKey.NSquare()
	// 1. gamma^m mod N2
	Gm := new(big.Int).Exp(publicKey.Gamma(), m, N2)
	// 2. x^N mod N2
	xN := new(big.Int).Exp(x, publicKey.N, N2)
	// 3. (1) * (2) mod N2
	c = common.ModInt(N2).Mul(Gm, xN)
	return
}

func (publicKey *PublicKey) Encrypt(rnd io.Reader, m *big.Int) (c *big.Int, err error) {
	c, _, err = publicKey.EncryptAndReturnRandomness(rnd, m)
	return
}

// EncryptSignedAndReturnRandomness maps a signed plaintext into Z_N before
// encrypting; negative values become N - |m|.
func (publicKey *PublicKey) EncryptSignedAndReturnRandomness(rnd io.Reader, m *big.Int) (c *big.Int, x *big.Int, err error) {
	mm := new(big.Int).Mod(m, publicKey.N)
	return publicKey.EncryptAndReturnRandomness(rnd, mm)
}

func (publicKey *PublicKey) HomoMult(m, c1 *big.Int) (*big.Int, error) {
	if m.Cmp(zero) == -1 || m.Cmp(publicKey.N) != -1 { // m < 0 || m >= N ?
		return nil, ErrMessageTooLong
	}
	N2 := publicKey.NSquare()
	if c1.Cmp(zero) == -1 || c1.Cmp(N2) != -1 { // c1 < 0 || c1 >= N2 ?
		return nil, ErrMessageTooLong
	}
	// cipher^m mod N2
	return common.ModInt(N2).Exp(c1, m), nil
}

// HomoMultSigned multiplies a ciphertext by a signed integer; a negative
// multiplier is reduced into Z_N first.
func (publicKey *PublicKey) HomoMultSigned(m, c1 *big.Int) (*big.Int, error) {
	return publicKey.HomoMult(new(big.Int).Mod(m, publicKey.N), c1)
}

func (publicKey *PublicKey) HomoAdd(c1, c2 *big.Int) (*big.Int, error) {
	N2 := publicKey.NSquare()
	if c1.Cmp(zero) == -1 || c1.Cmp(N2) != -1 { // c1 < 0 || c1 >= N2 ?
		return nil, ErrMessageTooLong
	}
	if c2.Cmp(zero) == -1 || c2.Cmp(N2) != -1 { // c2 < 0 || c2 >= N2 ?
		return nil, ErrMessageTooLong
	}
	// c1 * c2 mod N2
	return common.ModInt(N2).Mul(c1, c2), nil
}

func (publicKey *PublicKey) NSquare() *big.Int {
	return new(big.Int).Mul(publicKey.N, publicKey.N)
}

// AsInts returns the PublicKey serialised to a slice of *big.Int for hashing
func (publicKey *PublicKey) AsInts() []*big.Int {
	return []*big.Int{publicKey.N, publicKey.Gamma()}
}

// Gamma returns N+1
func (publicKey *PublicKey) Gamma() *big.Int {
	return new(big.Int).Add(publicKey.N, one)
}

// ----- //

func (privateKey *PrivateKey) Decrypt(c *big.Int) (m *big.Int, err error) {
	N2 := privateKey.NSquare()
	if c.Cmp(zero) == -1 || c.Cmp(N2) != -1 { // c < 0 || c >= N2 ?
		return nil, ErrMessageTooLong
	}
	cg := new(big.Int).GCD(nil, nil, c, N2)
	if cg.Cmp(one) == 1 {
		return nil, ErrMessageMalFormed
	}
	// 1. L(u) = (c^LambdaN-1 mod N2) / N
	Lc := L(new(big.Int).Exp(c, privateKey.LambdaN, N2), privateKey.N)
	// 2. L(u) = (Gamma^LambdaN-1 mod N2) / N
	Lg := L(new(big.Int).Exp(privateKey.Gamma(), privateKey.LambdaN, N2), privateKey.N)
	// 3. (1) * modInv(2) mod N
	inv := new(big.Int).ModInverse(Lg, privateKey.N)
	m = common.ModInt(privateKey.N).Mul(Lc, inv)
	return
}

// DecryptSigned decrypts to the centered remainder: the result lies in
// (-N/2, N/2], so plaintexts that were encrypted as N - |m| come back negative.
func (privateKey *PrivateKey) DecryptSigned(c *big.Int) (m *big.Int, err error) {
	m, err = privateKey.Decrypt(c)
	if err != nil {
		return nil, err
	}
	half := new(big.Int).Rsh(privateKey.N, 1)
	if m.Cmp(half) > 0 {
		m = new(big.Int).Sub(m, privateKey.N)
	}
	return m, nil
}

// DeriveRandomizer recovers the randomizer x of a ciphertext
// c = Gamma^m * x^N mod N^2 using the factorization carried by the secret key.
func (privateKey *PrivateKey) DeriveRandomizer(c *big.Int) (*big.Int, error) {
	m, err := privateKey.Decrypt(c)
	if err != nil {
		return nil, err
	}
	N2 := privateKey.NSquare()
	modN2 := common.ModInt(N2)
	// c * Gamma^-m = x^N mod N^2
	GmInv := modN2.Exp(privateKey.Gamma(), new(big.Int).Neg(m))
	xN := modN2.Mul(c, GmInv)
	// x = (x^N)^(N^-1 mod phi(N)) mod N
	NInv := new(big.Int).ModInverse(privateKey.N, privateKey.PhiN)
	if NInv == nil {
		return nil, ErrMessageMalFormed
	}
	return common.ModInt(privateKey.N).Exp(new(big.Int).Mod(xN, privateKey.N), NInv), nil
}

// ----- //

// Proof is an implementation of Gennaro, R., Micciancio, D., Rabin, T.:
// An efficient non-interactive statistical zero-knowledge proof system for quasi-safe prime products.
// In: In Proc. of the 5th ACM Conference on Computer and Communications Security (CCS-98. Citeseer (1998)

func (privateKey *PrivateKey) Proof(k *big.Int, ecdsaPub *crypto2.ECPoint) Proof {
	var pi Proof
	iters := ProofIters
	xs := GenerateXs(iters, k, privateKey.N, ecdsaPub)
	for i := 0; i < iters; i++ {
		M := new(big.Int).ModInverse(privateKey.N, privateKey.PhiN)
		pi[i] = new(big.Int).Exp(xs[i], M, privateKey.N)
	}
	return pi
}

func (pf Proof) Verify(pkN, k *big.Int, ecdsaPub *crypto2.ECPoint) (bool, error) {
	iters := ProofIters
	prms := primes.Until(verifyPrimesUntil).List() // uses cache primed in init()
	for _, prm := range prms {
		// If prm divides N then Return 0
		if new(big.Int).Mod(pkN, big.NewInt(prm)).Cmp(zero) == 0 {
			return false, nil
		}
	}
	xs := GenerateXs(iters, k, pkN, ecdsaPub)
	if len(xs) != iters {
		return false, fmt.Errorf("paillier proof verify: expected %d xs but got %d", iters, len(xs))
	}
	for i, xi := range xs {
		xiModN := new(big.Int).Mod(xi, pkN)
		yiExpN := new(big.Int).Exp(pf[i], pkN, pkN)
		if xiModN.Cmp(yiExpN) != 0 {
			return false, nil
		}
	}
	return true, nil
}

// ----- utils

func L(u, N *big.Int) *big.Int {
	t := new(big.Int).Sub(u, one)
	return new(big.Int).Div(t, N)
}

// GenerateXs generates the challenges used in the Paillier key Proof
func GenerateXs(m int, k, N *big.Int, ecdsaPub *crypto2.ECPoint) []*big.Int {
	var i, n int
	ret := make([]*big.Int, m)
	sX, sY := ecdsaPub.X(), ecdsaPub.Y()
	kb, sXb, sYb, Nb := k.Bytes(), sX.Bytes(), sY.Bytes(), N.Bytes()
	bits := N.BitLen()
	blocks := int(gmath.Ceil(float64(bits) / 256))
	for i < m {
		xi := make([]byte, 0, blocks*32)
		ib := []byte(strconv.Itoa(i))
		nb := []byte(strconv.Itoa(n))
		for j := 0; j < blocks; j++ {
			jBz := []byte(strconv.Itoa(j))
			hash := common.SHA512_256(ib, jBz, nb, kb, sXb, sYb, Nb)
			if hash == nil {
				panic(errors.New("GenerateXs hash write error!"))
			}
			xi = append(xi, hash...) // xi1||···||xib
		}
		ret[i] = new(big.Int).SetBytes(xi)
		if common.IsNumberInMultiplicativeGroup(N, ret[i]) {
			i++
		} else {
			n++
		}
	}
	return ret
}
