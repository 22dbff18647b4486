package random

import (
	"crypto/rand"
	"fmt"
)

// alphabet is the 62-symbol set short codes are drawn from.
const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// NewCode generates a random short code of the given length using a
// cryptographically secure source. Codes are not sequential, so they
// cannot be enumerated by walking an ID space.
func NewCode(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("invalid code length: %d", length)
	}

	code := make([]byte, length)
	// Rejection sampling keeps the distribution uniform: 256 is not a
	// multiple of 62, so plain modulo would bias the low symbols.
	max := byte(len(alphabet) * (256 / len(alphabet))) // 248

	buf := make([]byte, length)
	filled := 0
	for filled < length {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("failed to read random bytes: %w", err)
		}
		for _, b := range buf {
			if b >= max {
				continue
			}
			code[filled] = alphabet[int(b)%len(alphabet)]
			filled++
			if filled == length {
				break
			}
		}
	}

	return string(code), nil
}
