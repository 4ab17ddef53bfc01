// File: internal/platform/crypto/generator.go
package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// GenerateKey returns an n-character key drawn from the URL-safe base64
// alphabet, so it can be pasted into a .env file as is. Each character
// carries six bits of randomness.
func GenerateKey(n int) (string, error) {
	if n <= 0 {
		return "", fmt.Errorf("key length must be positive, got %d", n)
	}
	b := make([]byte, base64.RawURLEncoding.DecodedLen(n)+1)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b)[:n], nil
}

// SessionKeys holds a fresh hash and block key pair for the session cookie.
type SessionKeys struct {
	HashKey  string
	BlockKey string
}

// GenerateSessionKeys returns a 64-character hash key and a 32-character block
// key, which selects AES-256 for the cookie.
func GenerateSessionKeys() (SessionKeys, error) {
	hash, err := GenerateKey(64)
	if err != nil {
		return SessionKeys{}, err
	}
	block, err := GenerateKey(32)
	if err != nil {
		return SessionKeys{}, err
	}
	return SessionKeys{HashKey: hash, BlockKey: block}, nil
}
