package crypto

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// CodeAlphabet is the symbol set minted codes are drawn from.
const CodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateCode returns n symbols sampled uniformly from CodeAlphabet using crypto/rand.
func GenerateCode(n int) (string, error) {
	if n <= 0 {
		return "", fmt.Errorf("code length must be positive, got %d", n)
	}
	max := big.NewInt(int64(len(CodeAlphabet)))
	out := make([]byte, n)
	for i := range out {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate random index: %w", err)
		}
		out[i] = CodeAlphabet[idx.Int64()]
	}
	return string(out), nil
}
