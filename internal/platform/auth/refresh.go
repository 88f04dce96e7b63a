package auth

import (
	"crypto/rand"
	"encoding/base64"
)

const refreshTokenBytes = 64

// NewRefreshToken returns a high-entropy opaque token. It is single-use: the
// stored copy is overwritten on every successful refresh.
func NewRefreshToken() (string, error) {
	buf := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf), nil
}
