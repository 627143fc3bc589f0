package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const jwtIssuer = "clubsphere"

// Claims is the payload of locally issued tokens.
type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// JWTVerifier verifies HS256 tokens signed with a shared secret. It backs
// auth_mode=jwt for local development and tests, where no identity
// provider is reachable.
type JWTVerifier struct {
	secret []byte
	ttl    time.Duration
}

// NewJWTVerifier returns a verifier for secret. ttl bounds tokens minted
// by Issue.
func NewJWTVerifier(secret string, ttl time.Duration) (*JWTVerifier, error) {
	if len(secret) < 32 {
		return nil, errors.New("jwt secret must be at least 32 characters")
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &JWTVerifier{secret: []byte(secret), ttl: ttl}, nil
}

// Issue mints a token for email.
func (v *JWTVerifier) Issue(email, name string) (string, error) {
	now := time.Now()
	claims := Claims{
		Email: email,
		Name:  name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			Issuer:    jwtIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(v.ttl)),
			ID:        uuid.NewString(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

// Verify parses and validates token.
func (v *JWTVerifier) Verify(_ context.Context, token string) (Identity, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.secret, nil
	}, jwt.WithIssuer(jwtIssuer), jwt.WithExpirationRequired())
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.Email == "" {
		return Identity{}, ErrInvalidToken
	}
	return Identity{Email: claims.Email, Name: claims.Name}, nil
}
