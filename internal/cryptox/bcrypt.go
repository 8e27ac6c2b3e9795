package cryptox

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"fmt"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"golang.org/x/crypto/bcrypt"
)

// bcryptMaxInput is the longest input bcrypt consumes without truncation.
const bcryptMaxInput = 72

// prehashedPrefix marks digests whose input was reduced to base64(sha256)
// before bcrypt. The remainder is a regular "$2a$..." digest.
const prehashedPrefix = "$sha256"

// BcryptHasher stores passwords up to 72 bytes as plain bcrypt digests.
// Longer ones are pre-hashed with SHA-256 so that no byte is ignored.
type BcryptHasher struct {
	Cost int
}

// NewBcryptHasher clamps cost into bcrypt's accepted range; anything below
// MinCost means "use the default".
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}
	return &BcryptHasher{Cost: cost}
}

func (h *BcryptHasher) Hash(plain string) ([]byte, error) {
	if plain == "" {
		return nil, fmt.Errorf("%w: empty password", common.ErrInvalidInput)
	}

	input, prefix := []byte(plain), ""
	if len(input) > bcryptMaxInput {
		input, prefix = prehash(plain), prehashedPrefix
	}

	digest, err := bcrypt.GenerateFromPassword(input, h.Cost)
	if err != nil {
		return nil, fmt.Errorf("bcrypt: %w", err)
	}
	return append([]byte(prefix), digest...), nil
}

func (h *BcryptHasher) Verify(plain string, digest []byte) bool {
	if rest, ok := bytes.CutPrefix(digest, []byte(prehashedPrefix)); ok {
		return bcrypt.CompareHashAndPassword(rest, prehash(plain)) == nil
	}
	return bcrypt.CompareHashAndPassword(digest, []byte(plain)) == nil
}

func prehash(plain string) []byte {
	sum := sha256.Sum256([]byte(plain))
	out := make([]byte, base64.StdEncoding.EncodedLen(len(sum)))
	base64.StdEncoding.Encode(out, sum[:])
	return out
}
