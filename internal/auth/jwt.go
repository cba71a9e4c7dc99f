// Package auth validates bearer tokens and API keys for the HTTP API.
package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Roles recognized in token claims
const (
	RoleAdmin  = "admin"
	RoleViewer = "viewer"
	RoleSystem = "system"
)

// ErrInvalidToken is returned for tokens that fail validation
var ErrInvalidToken = errors.New("invalid token")

// JWTValidator validates HMAC-signed bearer tokens
type JWTValidator struct {
	secret []byte
}

// NewJWTValidator creates a validator for tokens signed with the shared secret
func NewJWTValidator(secret string) *JWTValidator {
	return &JWTValidator{secret: []byte(secret)}
}

type apiClaims struct {
	Name  string   `json:"name"`
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

// ValidateToken parses and validates a bearer token and returns the caller
func (v *JWTValidator) ValidateToken(tokenString string) (*UserContext, error) {
	if len(v.secret) == 0 {
		return nil, errors.New("jwt secret not configured")
	}

	token, err := jwt.ParseWithClaims(tokenString, &apiClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*apiClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	roles := claims.Roles
	if len(roles) == 0 {
		roles = []string{RoleViewer}
	}

	return &UserContext{
		Subject: claims.Subject,
		Name:    claims.Name,
		Roles:   roles,
	}, nil
}
