package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wirenest/roomcast/internal/domain"
)

func TestVerifyRoundTrip(t *testing.T) {
	v := NewJWTVerifier("test-secret")
	token, err := v.Sign(domain.User{ID: "u1", Email: "a@example.com", Name: "Alice"}, time.Minute)
	require.NoError(t, err)

	user, err := v.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, domain.UserID("u1"), user.ID)
	assert.Equal(t, "a@example.com", user.Email)
	assert.Equal(t, "Alice", user.Name)
}

func TestVerifyFallsBackToEmailForName(t *testing.T) {
	v := NewJWTVerifier("test-secret")
	token, err := v.Sign(domain.User{ID: "u1", Email: "a@example.com"}, time.Minute)
	require.NoError(t, err)

	user, err := v.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", user.Name)
}

func TestVerifyRejections(t *testing.T) {
	v := NewJWTVerifier("test-secret")

	expired, err := v.Sign(domain.User{ID: "u1", Name: "Alice"}, -time.Minute)
	require.NoError(t, err)

	other := NewJWTVerifier("other-secret")
	wrongKey, err := other.Sign(domain.User{ID: "u1", Name: "Alice"}, time.Minute)
	require.NoError(t, err)

	noSubject, err := v.Sign(domain.User{Name: "Alice"}, time.Minute)
	require.NoError(t, err)

	blankIdentity, err := v.Sign(domain.User{ID: "u1"}, time.Minute)
	require.NoError(t, err)

	oversizedName, err := v.Sign(domain.User{ID: "u1", Name: strings.Repeat("x", domain.MaxNameLen+1)}, time.Minute)
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
		Name:             "Alice",
		RegisteredClaims: jwt.RegisteredClaims{Subject: "u1"},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	testCases := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"expired", expired},
		{"wrong key", wrongKey},
		{"missing subject", noSubject},
		{"blank identity", blankIdentity},
		{"oversized name", oversizedName},
		{"alg none", unsigned},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := v.Verify(context.Background(), tc.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
