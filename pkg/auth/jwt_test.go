package auth

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bazarromero/catalog/pkg/apperror"
)

func newService(t *testing.T, secret string) *TokenService {
	t.Helper()
	s, err := NewTokenService(secret, 0)
	require.NoError(t, err)
	return s
}

func TestIssueAndVerify(t *testing.T) {
	s := newService(t, "test-secret")

	token, err := s.Issue(Identity{ID: 1, Username: "admin"})
	require.NoError(t, err)

	claims, err := s.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, int64(1), claims.Identity.ID)
	assert.Equal(t, "admin", claims.Username)
	assert.Equal(t, DefaultTTL, claims.ExpiresAt.Sub(claims.IssuedAt.Time))
}

func TestPayloadFieldNames(t *testing.T) {
	s := newService(t, "test-secret")
	token, err := s.Issue(Identity{ID: 9, Username: "bazar_ab12cd"})
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	raw, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(raw, &payload))
	assert.EqualValues(t, 9, payload["id"])
	assert.Equal(t, "bazar_ab12cd", payload["username"])
	assert.Contains(t, payload, "iat")
	assert.Contains(t, payload, "exp")
}

func TestVerifyRejectsTamperedPayload(t *testing.T) {
	s := newService(t, "test-secret")
	token, err := s.Issue(Identity{ID: 1, Username: "admin"})
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	forged, _ := json.Marshal(map[string]any{"id": 2, "username": "root", "exp": time.Now().Add(time.Hour).Unix()})
	parts[1] = base64.RawURLEncoding.EncodeToString(forged)

	_, err = s.Verify(strings.Join(parts, "."))
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}

func TestVerifyRejectsOtherSecret(t *testing.T) {
	token, err := newService(t, "one").Issue(Identity{ID: 1, Username: "admin"})
	require.NoError(t, err)

	_, err = newService(t, "two").Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsExpired(t *testing.T) {
	s := newService(t, "test-secret")
	issued := time.Now().Add(-9 * time.Hour)
	s.now = func() time.Time { return issued }
	token, err := s.Issue(Identity{ID: 1, Username: "admin"})
	require.NoError(t, err)

	s.now = time.Now
	_, err = s.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsUnsignedAlgorithm(t *testing.T) {
	s := newService(t, "test-secret")
	claims := Claims{
		Identity:         Identity{ID: 1, Username: "admin"},
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = s.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	_, err := newService(t, "test-secret").Verify("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestEmptySecretIsGenerated(t *testing.T) {
	a := newService(t, "")
	b := newService(t, "")

	assert.True(t, a.Ephemeral())
	assert.Len(t, a.secret, 128)
	assert.NotEqual(t, a.secret, b.secret)

	token, err := a.Issue(Identity{ID: 1, Username: "admin"})
	require.NoError(t, err)
	_, err = b.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret!")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(hash, "$2a$10$"))
	assert.True(t, CheckPassword(hash, "s3cret!"))
	assert.False(t, CheckPassword(hash, "S3cret!"))
	assert.False(t, CheckPassword("not-a-hash", "s3cret!"))
}

func TestCheckMissingNeverMatches(t *testing.T) {
	assert.False(t, CheckMissing("no-such-account"))
	assert.False(t, CheckMissing(""))
	assert.True(t, strings.HasPrefix(placeholderHash(), "$2a$10$"))
}
