package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/vzeefun/vzee/internal/dependencies/clock"
	"github.com/vzeefun/vzee/internal/model"
)

// IdentityClaims are the claims carried by an identity token
type IdentityClaims struct {
	jwt.RegisteredClaims
	Email   string `json:"email"`
	Name    string `json:"name,omitempty"`
	Picture string `json:"picture,omitempty"`
}

// TokenVerifier mints and verifies HS256 identity tokens
type TokenVerifier struct {
	secret []byte
	issuer string
	clock  clock.Clock
}

// NewTokenVerifier creates a verifier for the given shared secret
func NewTokenVerifier(secret []byte, issuer string, clock clock.Clock) *TokenVerifier {
	return &TokenVerifier{secret: secret, issuer: issuer, clock: clock}
}

// Mint signs an identity token valid for ttl
func (v *TokenVerifier) Mint(identity model.Identity, ttl time.Duration) (string, error) {
	now := v.clock.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, IdentityClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.Subject,
			Issuer:    v.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Email:   identity.Email,
		Name:    identity.DisplayName,
		Picture: identity.PictureURL,
	})
	return token.SignedString(v.secret)
}

// Verify checks signature, issuer and expiry and returns the identity
func (v *TokenVerifier) Verify(raw string) (model.Identity, error) {
	claims := &IdentityClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(v.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(v.clock.Now),
	)
	if err != nil {
		return model.Identity{}, fmt.Errorf("%w: %v", ErrInvalidIDToken, err)
	}
	if !token.Valid || claims.Email == "" {
		return model.Identity{}, ErrInvalidIDToken
	}

	return model.Identity{
		Subject:     claims.Subject,
		Email:       claims.Email,
		DisplayName: claims.Name,
		PictureURL:  claims.Picture,
	}, nil
}
