// Package auth provides JWT validation and the role model used by the
// middleware and repositories.
package auth

import (
	"context"
	"crypto/rsa"
	"os"

	"github.com/dgrijalva/jwt-go"
	"github.com/pkg/errors"
)

// Roles recognised in token claims.
const (
	RoleAdmin   = "ADMIN"
	RoleTeacher = "TEACHER"
	RoleStudent = "STUDENT"
)

// ctxKey represents the type of value for the context key.
type ctxKey int

// Key is used to store/retrieve Claims from a context.Context.
const Key ctxKey = 1

// Claims is the payload carried by our tokens.
type Claims struct {
	jwt.StandardClaims
	UserId int    `json:"user_id"`
	Role   string `json:"role"`
	Type   string `json:"type"`
}

// Authorized reports whether the claims carry one of the given roles.
func (c Claims) Authorized(roles ...string) bool {
	for _, role := range roles {
		if c.Role == role {
			return true
		}
	}
	return false
}

// GetClaims extracts the Claims stored in the context by the middleware.
func GetClaims(ctx context.Context) (Claims, error) {
	claims, ok := ctx.Value(Key).(Claims)
	if !ok {
		return Claims{}, errors.New("claims missing from context")
	}
	return claims, nil
}

// Auth validates tokens signed with the service's RSA key.
type Auth struct {
	privateKey *rsa.PrivateKey
}

func NewAuth(privateKeyPath string) (*Auth, error) {
	keyData, err := os.ReadFile(privateKeyPath)
	if err != nil {
		return nil, errors.Wrap(err, "reading private key file")
	}

	privateKey, err := jwt.ParseRSAPrivateKeyFromPEM(keyData)
	if err != nil {
		return nil, errors.Wrap(err, "parsing private key")
	}

	return &Auth{privateKey: privateKey}, nil
}

// ValidateToken checks the signature and expiry and returns the claims.
func (a *Auth) ValidateToken(tokenStr string) (Claims, error) {
	var claims Claims

	token, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, errors.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return &a.privateKey.PublicKey, nil
	})
	if err != nil {
		return Claims{}, errors.Wrap(err, "parsing token")
	}

	if !token.Valid {
		return Claims{}, errors.New("invalid token")
	}

	return claims, nil
}
