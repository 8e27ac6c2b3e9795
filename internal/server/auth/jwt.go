// Package auth issues and validates session tokens and keeps the optional
// denylist of tokens revoked before their natural expiry.
package auth

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTTL is the token lifetime used when none is configured.
const DefaultTTL = 30 * time.Minute

// signatureEncoding rejects non-zero padding bits so that every byte of the
// signature segment is significant.
var signatureEncoding = base64.RawURLEncoding.Strict()

// TokenService signs and validates HS256 session tokens. The key is copied at
// construction and never mutated, so one instance is safe for concurrent use.
type TokenService struct {
	key   []byte
	ttl   time.Duration
	newID func() string
}

func NewTokenService(secret []byte, ttl time.Duration) (*TokenService, error) {
	if len(secret) == 0 {
		return nil, errors.New("token signing secret must not be empty")
	}
	if ttl == 0 {
		ttl = DefaultTTL
	}
	if ttl < 0 {
		return nil, fmt.Errorf("token ttl must be positive, got %s", ttl)
	}
	return &TokenService{
		key:   append([]byte(nil), secret...),
		ttl:   ttl,
		newID: uuid.NewString,
	}, nil
}

// TTL reports the configured token lifetime.
func (s *TokenService) TTL() time.Duration { return s.ttl }

// Issue signs a token for subjectID valid from now until now+TTL. Times are
// truncated to whole seconds, the precision the token carries.
func (s *TokenService) Issue(subjectID string, now time.Time) (*models.SessionToken, error) {
	if subjectID == "" {
		return nil, fmt.Errorf("%w: empty subject", common.ErrInvalidInput)
	}

	claims := jwt.RegisteredClaims{
		ID:        s.newID(),
		Subject:   subjectID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}

	value, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &models.SessionToken{
		Value:     value,
		ID:        claims.ID,
		SubjectID: subjectID,
		IssuedAt:  claims.IssuedAt.UTC(),
		ExpiresAt: claims.ExpiresAt.UTC(),
	}, nil
}

// Validate checks the signature first and only then decodes the claims, so
// any modification of the value is reported as ErrTamperedToken regardless
// of what the modified claims say.
func (s *TokenService) Validate(value string, now time.Time) (*models.Claims, error) {
	claims, err := s.verify(value)
	if err != nil {
		return nil, err
	}

	if now.Before(claims.IssuedAt) || now.After(claims.ExpiresAt) {
		return nil, common.ErrExpiredToken
	}
	return claims, nil
}

// Inspect verifies the signature and decodes the claims without checking the
// validity window. Logout uses it to acknowledge already expired tokens.
func (s *TokenService) Inspect(value string) (*models.Claims, error) {
	return s.verify(value)
}

func (s *TokenService) verify(value string) (*models.Claims, error) {
	dot := strings.LastIndexByte(value, '.')
	if dot <= 0 {
		return nil, common.ErrMalformedToken
	}

	sig, err := signatureEncoding.DecodeString(value[dot+1:])
	if err != nil {
		return nil, common.ErrTamperedToken
	}
	if err := jwt.SigningMethodHS256.Verify(value[:dot], sig, s.key); err != nil {
		return nil, common.ErrTamperedToken
	}

	// The signature is ours; anything that fails from here on is a shape
	// problem, not tampering.
	rc := &jwt.RegisteredClaims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if _, err := parser.ParseWithClaims(value, rc, func(*jwt.Token) (any, error) { return s.key, nil }); err != nil {
		return nil, common.ErrMalformedToken
	}
	if rc.ID == "" || rc.Subject == "" || rc.IssuedAt == nil || rc.ExpiresAt == nil {
		return nil, common.ErrMalformedToken
	}

	return &models.Claims{
		ID:        rc.ID,
		SubjectID: rc.Subject,
		IssuedAt:  rc.IssuedAt.UTC(),
		ExpiresAt: rc.ExpiresAt.UTC(),
	}, nil
}
