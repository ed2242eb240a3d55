// Package auth resolves opaque bearer credentials to user identities.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/wirenest/roomcast/internal/domain"
)

var ErrInvalidToken = errors.New("invalid token")

// Verifier maps a raw bearer credential to a user identity or fails.
// Implementations may perform network I/O and must honor ctx.
type Verifier interface {
	Verify(ctx context.Context, token string) (domain.User, error)
}

// Claims carries the identity fields the issuing service signs into
// its tokens.
type Claims struct {
	Email string `json:"email,omitempty"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

// JWTVerifier validates HMAC-signed tokens locally.
type JWTVerifier struct {
	secret []byte
}

func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret)}
}

// Verify parses and validates the token string. Signature, expiry and
// signing method are all checked before the identity is trusted.
func (v *JWTVerifier) Verify(_ context.Context, tokenString string) (domain.User, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return domain.User{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return domain.User{}, ErrInvalidToken
	}
	if claims.Subject == "" {
		return domain.User{}, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	name := claims.Name
	if name == "" {
		name = claims.Email
	}
	user, err := domain.NewUser(domain.UserID(claims.Subject), claims.Email, name)
	if err != nil {
		return domain.User{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	return *user, nil
}

// Sign mints a token for the given identity. Used by tests; production
// tokens come from the credential service that owns the shared secret.
func (v *JWTVerifier) Sign(user domain.User, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		Email: user.Email,
		Name:  user.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   string(user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}
