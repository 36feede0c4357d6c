// Package auth issues and verifies admin bearer tokens and hashes passwords.
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/bazarromero/catalog/pkg/apperror"
)

// DefaultTTL is the lifetime of an issued token.
const DefaultTTL = 8 * time.Hour

// ErrInvalidToken covers malformed, tampered, expired and wrongly-signed tokens.
var ErrInvalidToken = fmt.Errorf("invalid token: %w", apperror.ErrUnauthorized)

// Identity is the admin a token was issued to.
type Identity struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// Claims is the signed token payload.
type Claims struct {
	Identity
	jwt.RegisteredClaims
}

// TokenService signs tokens with a single HS256 secret.
type TokenService struct {
	secret    []byte
	ttl       time.Duration
	ephemeral bool
	now       func() time.Time
}

// NewTokenService returns a service signing with secret. An empty secret is
// replaced by 64 random bytes; such tokens die with the process.
func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	s := &TokenService{secret: []byte(secret), ttl: ttl, now: time.Now}
	if ttl <= 0 {
		s.ttl = DefaultTTL
	}
	if secret == "" {
		generated, err := RandomHex(64)
		if err != nil {
			return nil, fmt.Errorf("generate token secret: %w", err)
		}
		s.secret = []byte(generated)
		s.ephemeral = true
	}
	return s, nil
}

// Ephemeral reports whether the secret was generated at startup.
func (s *TokenService) Ephemeral() bool { return s.ephemeral }

// Issue returns a signed token for id.
func (s *TokenService) Issue(id Identity) (string, error) {
	now := s.now()
	claims := Claims{
		Identity: id,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature and expiry and returns the embedded claims.
func (s *TokenService) Verify(token string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// RandomHex returns n random bytes hex-encoded.
func RandomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
