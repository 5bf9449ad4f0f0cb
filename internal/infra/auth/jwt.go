// Package auth verifies bearer tokens issued by the identity service.
// Token issuance and password handling live elsewhere; this package
// only extracts a viewer identity from a presented token.
package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// JWTVerifier validates HMAC-SHA-256 signed tokens and extracts the
// viewer id from the subject claim.
type JWTVerifier struct {
	secret []byte
}

// NewJWTVerifier creates a verifier for the given shared secret.
func NewJWTVerifier(secret string) (*JWTVerifier, error) {
	if secret == "" {
		return nil, errors.New("missing jwt secret")
	}

	return &JWTVerifier{secret: []byte(secret)}, nil
}

// Verify parses and validates the token, returning the viewer id.
// Any "Bearer " prefix is ignored.
func (v *JWTVerifier) Verify(tokString string) (string, error) {
	tokString = strings.TrimPrefix(tokString, "Bearer ")
	if tokString == "" {
		return "", errors.New("missing token")
	}

	tok, err := jwt.Parse(tokString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("could not parse token: %w", err)
	}

	claims, ok := tok.Claims.(jwt.MapClaims)
	if !tok.Valid || !ok {
		return "", errors.New("invalid token")
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", errors.New("token has no subject")
	}

	return sub, nil
}

// Sign issues a token for the given viewer id. Used by tests and local
// tooling; production tokens come from the identity service.
func (v *JWTVerifier) Sign(viewerID string) (string, error) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": viewerID})

	signed, err := tok.SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("error signing token: %w", err)
	}

	return signed, nil
}
