// internal/uploads/token.go

// Package uploads packages validated submissions on disk, registers them,
// and rebuilds the admin listing from the data directory.
package uploads

import (
	"crypto/rand"
	"encoding/hex"
)

// TokenLength is the length of an upload ID in hex characters.
const TokenLength = 16

// NewToken returns a 16-character lowercase hex upload ID.
func NewToken() (string, error) {
	b := make([]byte, TokenLength/2)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
