package repository

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

const shareTokenBytes = 32

// NewShareToken 256-bit random, URL-safe token
func NewShareToken() (string, error) {
	b := make([]byte, shareTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate share token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
