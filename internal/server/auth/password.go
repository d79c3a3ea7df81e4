package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
)

const (
	// Argon2id parameters per RFC 9106
	argonMemory      = 64 * 1024 // KiB
	argonIterations  = 1
	argonParallelism = 4
	argonKeyLength   = 32

	// SaltLength is the size of the per-user password salt in bytes.
	SaltLength = 32
)

// GenerateSalt generates a cryptographically secure random salt.
func GenerateSalt(length int) ([]byte, error) {
	salt := make([]byte, length)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	return salt, nil
}

// HashPassword derives a one-way hash of the password with the given salt
// using Argon2id. The plaintext never leaves this function.
func HashPassword(password string, salt []byte) []byte {
	return argon2.IDKey(
		[]byte(password),
		salt,
		argonIterations,
		argonMemory,
		argonParallelism,
		argonKeyLength,
	)
}

// VerifyPassword checks a password against its stored hash in constant time.
func VerifyPassword(password string, salt, expectedHash []byte) bool {
	hash := HashPassword(password, salt)
	return subtle.ConstantTimeCompare(hash, expectedHash) == 1
}
