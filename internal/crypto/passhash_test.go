package crypto

import (
	"bytes"
	"testing"
)

func TestRandBytes_LengthAndUniqueness(t *testing.T) {
	t.Parallel()

	const n = 64
	a, err := RandBytes(n)
	if err != nil {
		t.Fatalf("RandBytes: %v", err)
	}
	if len(a) != n {
		t.Fatalf("len=%d, want=%d", len(a), n)
	}
	b, err := RandBytes(n)
	if err != nil {
		t.Fatalf("RandBytes(2): %v", err)
	}
	if bytes.Equal(a, b) {
		t.Fatalf("two subsequent RandBytes(%d) are equal", n)
	}
}

func TestHashPassword_GeneratesSaltWhenNil(t *testing.T) {
	t.Parallel()

	h1, s1, err := HashPassword([]byte("pw"), nil)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if len(s1) != saltLen {
		t.Fatalf("salt len=%d, want=%d", len(s1), saltLen)
	}
	h2, s2, err := HashPassword([]byte("pw"), nil)
	if err != nil {
		t.Fatalf("HashPassword(2): %v", err)
	}
	if bytes.Equal(s1, s2) {
		t.Fatalf("two generated salts are equal")
	}
	if bytes.Equal(h1, h2) {
		t.Fatalf("hashes with different salts should differ")
	}
}

func TestHashPassword_DeterministicOnSameInput(t *testing.T) {
	t.Parallel()

	pw := []byte("p@ssw0rd")
	salt := []byte("NaCl-16-bytes?")

	h1, _, err := HashPassword(pw, salt)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	h2, usedSalt, err := HashPassword(pw, salt)
	if err != nil {
		t.Fatalf("HashPassword(2): %v", err)
	}
	if !bytes.Equal(usedSalt, salt) {
		t.Fatalf("provided salt was not used")
	}
	if !bytes.Equal(h1, h2) {
		t.Fatalf("hash not deterministic for same input")
	}

	h3, _, _ := HashPassword([]byte("p@ssw0rd!"), salt)
	if bytes.Equal(h1, h3) {
		t.Fatalf("hash should differ when password differs")
	}
}

func TestVerifyPassword(t *testing.T) {
	t.Parallel()

	pw := []byte("correct horse battery staple")
	hash, salt, err := HashPassword(pw, nil)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}

	if !VerifyPassword(pw, salt, hash) {
		t.Fatalf("VerifyPassword: expected true for correct password")
	}
	if VerifyPassword([]byte("wrong"), salt, hash) {
		t.Fatalf("VerifyPassword: expected false for wrong password")
	}
	if VerifyPassword(pw, []byte("wrong-salt"), hash) {
		t.Fatalf("VerifyPassword: expected false for wrong salt")
	}
}
