package crypto

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// ConfirmCode returns a uniformly random numeric string of the given length,
// zero-padded. Codes are not unique across signups; the attempt cap on the
// ledger bounds guessing.
func ConfirmCode(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("confirm code length must be positive, got %d", length)
	}
	max := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(length)), nil)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", length, n), nil
}
