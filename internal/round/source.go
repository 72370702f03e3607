package round

import (
	"crypto/rand"
	"math/big"
)

// Source yields integers in [0, n). *math/rand/v2.Rand satisfies it, which
// is what tests use for reproducible picks.
type Source interface {
	IntN(n int) int
}

// CryptoSource draws from crypto/rand.
type CryptoSource struct{}

// IntN panics if n <= 0, like math/rand.
func (CryptoSource) IntN(n int) int {
	if n <= 0 {
		panic("round: invalid argument to IntN")
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		// crypto/rand.Reader does not fail on supported platforms.
		panic(err)
	}
	return int(v.Int64())
}
