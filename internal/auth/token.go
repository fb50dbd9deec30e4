package auth

import (
	"crypto/rand"
	"encoding/hex"
)

// tokenBytes gives 256 bits of entropy per token; hex keeps the result
// URL-safe for links embedded in email.
const tokenBytes = 32

// GenerateToken returns a cryptographically random opaque token.
func GenerateToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
