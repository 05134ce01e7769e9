package cryptox

import (
	"crypto/rand"
	"math/big"
	"strings"
)

// NumericCode returns a random code of n decimal digits, left-padded with
// zeros. Used for emailed 2FA and password reset codes.
func NumericCode(n int) (string, error) {
	var sb strings.Builder
	sb.Grow(n)

	for range n {
		d, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		sb.WriteByte(byte('0' + d.Int64()))
	}
	return sb.String(), nil
}
