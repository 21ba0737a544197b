package common

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"

	"github.com/pkg/errors"
)

const (
	mustGetRandomIntMaxBits = 5000
)

// PrimeSource returns the given reader, or crypto/rand's reader when nil.
// Every sampling routine below takes an explicit entropy handle so that
// sessions (and tests) control their randomness; nil selects the process CSPRNG.
func PrimeSource(rnd io.Reader) io.Reader {
	if rnd == nil {
		return rand.Reader
	}
	return rnd
}

// MustGetRandomInt panics if it is unable to gather entropy or when `bits` is <= 0
func MustGetRandomInt(rnd io.Reader, bits int) *big.Int {
	if bits <= 0 || mustGetRandomIntMaxBits < bits {
		panic(fmt.Errorf("MustGetRandomInt: bits should be positive, non-zero and less than %d", mustGetRandomIntMaxBits))
	}
	// Max random value e.g. 2^256 - 1
	max := new(big.Int)
	max = max.Exp(two, big.NewInt(int64(bits)), nil).Sub(max, one)

	n, err := rand.Int(PrimeSource(rnd), max)
	if err != nil {
		panic(errors.Wrap(err, "rand.Int failure in MustGetRandomInt!"))
	}
	return n
}

func GetRandomPositiveInt(rnd io.Reader, lessThan *big.Int) *big.Int {
	if lessThan == nil || zero.Cmp(lessThan) != -1 {
		return nil
	}
	var try *big.Int
	for {
		try = MustGetRandomInt(rnd, lessThan.BitLen())
		if try.Cmp(lessThan) < 0 && try.Cmp(zero) >= 0 {
			break
		}
	}
	return try
}

func GetRandomPrimeInt(rnd io.Reader, bits int) *big.Int {
	if bits < 2 {
		return nil
	}
	// candidates are read from rnd alone, so a seeded reader yields a reproducible prime
	for {
		bz := make([]byte, (bits+7)/8)
		if _, err := io.ReadFull(PrimeSource(rnd), bz); err != nil {
			return nil
		}
		try := new(big.Int).Rsh(new(big.Int).SetBytes(bz), uint(len(bz)*8-bits))
		try.SetBit(try, bits-1, 1).SetBit(try, bits-2, 1).SetBit(try, 0, 1)
		if try.ProbablyPrime(20) {
			return try
		}
	}
}

// Generate a random element in the group of all the elements in Z/nZ that
// has a multiplicative inverse.
func GetRandomPositiveRelativelyPrimeInt(rnd io.Reader, n *big.Int) *big.Int {
	if n == nil || zero.Cmp(n) != -1 {
		return nil
	}
	var try *big.Int
	for {
		try = MustGetRandomInt(rnd, n.BitLen())
		if IsNumberInMultiplicativeGroup(n, try) {
			break
		}
	}
	return try
}

func IsNumberInMultiplicativeGroup(n, v *big.Int) bool {
	if n == nil || v == nil || zero.Cmp(n) != -1 {
		return false
	}
	gcd := big.NewInt(0)
	return v.Cmp(n) < 0 && v.Cmp(one) >= 0 &&
		gcd.GCD(nil, nil, v, n).Cmp(one) == 0
}

// GetRandomBytes returns uniformly random bytes of the requested length.
func GetRandomBytes(rnd io.Reader, length int) ([]byte, error) {
	if length <= 0 {
		return nil, errors.New("invalid length")
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(PrimeSource(rnd), buf); err != nil {
		return nil, err
	}
	return buf, nil
}
