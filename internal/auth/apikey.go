// Package auth verifies gateway API keys against stored bcrypt hashes.
package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidKey is returned when a presented key matches no stored hash.
var ErrInvalidKey = errors.New("invalid api key")

// Verifier checks presented API keys against a set of bcrypt hashes.
// An empty hash set disables verification entirely.
type Verifier struct {
	hashes [][]byte
}

// NewVerifier validates that every configured hash parses as bcrypt.
func NewVerifier(hashes []string) (*Verifier, error) {
	parsed := make([][]byte, 0, len(hashes))
	for i, h := range hashes {
		if _, err := bcrypt.Cost([]byte(h)); err != nil {
			return nil, fmt.Errorf("api key hash %d: %w", i, err)
		}
		parsed = append(parsed, []byte(h))
	}
	return &Verifier{hashes: parsed}, nil
}

// Enabled reports whether any keys are configured.
func (v *Verifier) Enabled() bool { return len(v.hashes) > 0 }

// Verify checks the presented key. With no configured hashes every key is
// accepted.
func (v *Verifier) Verify(key string) error {
	if !v.Enabled() {
		return nil
	}
	for _, hash := range v.hashes {
		if bcrypt.CompareHashAndPassword(hash, []byte(key)) == nil {
			return nil
		}
	}
	return ErrInvalidKey
}

// HashKey mints a bcrypt hash for a new API key, for operators provisioning
// configuration.
func HashKey(key string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
