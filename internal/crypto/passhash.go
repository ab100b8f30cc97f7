// Package crypto implements password hashing and confirmation-code generation.
package crypto

import (
	"crypto/rand"
	"crypto/subtle"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters (tuned for server-side hashing).
const (
	argonTime    uint32 = 3         // iterations
	argonMemory  uint32 = 64 * 1024 // 64 MB
	argonThreads uint8  = 1
	argonKeyLen  uint32 = 32

	saltLen = 16
)

// RandBytes returns n cryptographically secure random bytes.
func RandBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	_, err := rand.Read(b)
	return b, err
}

// HashPassword derives an Argon2id hash of password. When salt is nil a fresh
// 16-byte salt is generated; the same (password, salt) pair always yields the
// same hash, which is what verification-by-recompute relies on.
func HashPassword(password, salt []byte) (hash, usedSalt []byte, err error) {
	if salt == nil {
		salt, err = RandBytes(saltLen)
		if err != nil {
			return nil, nil, err
		}
	}
	return argon2.IDKey(password, salt, argonTime, argonMemory, argonThreads, argonKeyLen), salt, nil
}

// VerifyPassword recomputes the hash and compares in constant time.
func VerifyPassword(password, salt, expected []byte) bool {
	got := argon2.IDKey(password, salt, argonTime, argonMemory, argonThreads, argonKeyLen)
	return subtle.ConstantTimeCompare(got, expected) == 1
}
