package token_adapter

import (
	"context"
	"testing"
	"time"

	"listing-service/internal/core/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "test-signing-key"

func sign(t *testing.T, method jwt.SigningMethod, key interface{}, claims jwtCustomClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func claimsFor(id uuid.UUID, role string, ttl time.Duration) jwtCustomClaims {
	return jwtCustomClaims{
		UserID: id,
		Email:  "asha@example.com",
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
}

func TestVerifyValidToken(t *testing.T) {
	v, err := NewTokenVerifier(testKey)
	require.NoError(t, err)
	id := uuid.New()

	p, err := v.Verify(context.Background(), sign(t, jwt.SigningMethodHS256, []byte(testKey), claimsFor(id, "admin", time.Hour)))
	require.NoError(t, err)
	assert.Equal(t, id, p.UserID)
	assert.Equal(t, "asha@example.com", p.Email)
	assert.True(t, p.IsAdmin())
}

func TestVerifyRejects(t *testing.T) {
	v, err := NewTokenVerifier(testKey)
	require.NoError(t, err)
	ctx := context.Background()

	tests := map[string]string{
		"expired":     sign(t, jwt.SigningMethodHS256, []byte(testKey), claimsFor(uuid.New(), "user", -time.Minute)),
		"wrong key":   sign(t, jwt.SigningMethodHS256, []byte("other"), claimsFor(uuid.New(), "user", time.Hour)),
		"wrong alg":   sign(t, jwt.SigningMethodHS512, []byte(testKey), claimsFor(uuid.New(), "user", time.Hour)),
		"no user":     sign(t, jwt.SigningMethodHS256, []byte(testKey), claimsFor(uuid.Nil, "user", time.Hour)),
		"garbage":     "not-a-token",
		"empty token": "",
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := v.Verify(ctx, token)
			assert.ErrorIs(t, err, domain.ErrTokenInvalid)
		})
	}
}

func TestNewTokenVerifierRequiresKey(t *testing.T) {
	_, err := NewTokenVerifier("")
	assert.Error(t, err)
}
