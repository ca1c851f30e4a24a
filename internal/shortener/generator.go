package shortener

import (
	"crypto/rand"
	"math/big"
)

const (
	alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

	// DefaultCodeLength of 6 gives 62^6 (~56.8 billion) possible codes,
	// so generation collisions are vanishingly rare.
	DefaultCodeLength = 6
)

// GenerateCode produces a random alphanumeric code of the given length,
// drawn uniformly from [A-Za-z0-9]. It has no side effects; uniqueness
// checks are the caller's responsibility.
func GenerateCode(length int) (string, error) {
	if length <= 0 {
		length = DefaultCodeLength
	}

	code := make([]byte, length)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(alphabet))))
		if err != nil {
			return "", err
		}
		code[i] = alphabet[n.Int64()]
	}

	return string(code), nil
}
