package forge

import (
	"fmt"
	"math/big"
	"strings"
)

// hexWidth is the digit width of a 256-bit word in base 16.
const hexWidth = 64

// EncodeUint256 encodes n as the 0x-prefixed, 64-digit lowercase hex string
// the verifier contract expects for every scalar. Leading zeros are kept.
// Values above 2^256-1 are not truncated; keeping them in range is the
// caller's job.
func EncodeUint256(n *big.Int) (string, error) {
	if n == nil {
		return "", fmt.Errorf("cannot encode nil value")
	}
	if n.Sign() < 0 {
		return "", fmt.Errorf("cannot encode negative value %s", n.String())
	}
	digits := n.Text(16)
	if len(digits) < hexWidth {
		digits = strings.Repeat("0", hexWidth-len(digits)) + digits
	}
	return "0x" + digits, nil
}
