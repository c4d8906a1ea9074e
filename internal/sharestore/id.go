package sharestore

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// idBytes is the number of random bytes per share id. 16 bytes gives
// 128 bits of entropy, enough that collisions are negligible.
const idBytes = 16

// NewID generates an unguessable, URL-safe share id from the
// cryptographically secure random source. The result is 22 characters.
func NewID() (string, error) {
	b := make([]byte, idBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
