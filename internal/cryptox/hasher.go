// Package cryptox holds the password hashing primitives used by the auth
// service. Digests are self-describing strings so that a stored value can
// always be verified regardless of the hasher currently configured.
package cryptox

import (
	"strings"
)

// Hasher turns plaintext passwords into storable digests.
//
// Hash never returns the same digest twice for the same input. Verify never
// fails: a malformed digest simply does not match.
type Hasher interface {
	Hash(plain string) ([]byte, error)
	Verify(plain string, digest []byte) bool
}

// NewHasher returns the hasher named by kind ("bcrypt" or "argon2id").
// Verification falls back to the other scheme when a digest was produced by
// it, so switching hashers does not lock out existing users.
func NewHasher(kind string, bcryptCost int) Hasher {
	b := NewBcryptHasher(bcryptCost)
	a := NewArgon2idHasher()

	if kind == "argon2id" {
		return &multiHasher{primary: a, bcrypt: b, argon: a}
	}
	return &multiHasher{primary: b, bcrypt: b, argon: a}
}

type multiHasher struct {
	primary Hasher
	bcrypt  *BcryptHasher
	argon   *Argon2idHasher
}

func (m *multiHasher) Hash(plain string) ([]byte, error) {
	return m.primary.Hash(plain)
}

func (m *multiHasher) Verify(plain string, digest []byte) bool {
	if strings.HasPrefix(string(digest), argon2idPrefix) {
		return m.argon.Verify(plain, digest)
	}
	return m.bcrypt.Verify(plain, digest)
}
