package commands

import (
	"os"
	"time"

	"school-attendance/backend/internal/auth"
	"school-attendance/backend/internal/repository/postgres/user"

	"github.com/dgrijalva/jwt-go"
	"github.com/pkg/errors"
)

const (
	accessTokenTTL  = 12 * time.Hour
	refreshTokenTTL = 30 * 24 * time.Hour
)

// GenToken signs an access/refresh token pair for the user.
func GenToken(claims user.AuthClaims, privateKeyPath string) (string, string, error) {
	keyData, err := os.ReadFile(privateKeyPath)
	if err != nil {
		return "", "", errors.Wrap(err, "reading private key")
	}

	privateKey, err := jwt.ParseRSAPrivateKeyFromPEM(keyData)
	if err != nil {
		return "", "", errors.Wrap(err, "parsing private key")
	}

	now := time.Now()

	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodRS256, auth.Claims{
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(accessTokenTTL).Unix(),
		},
		UserId: claims.ID,
		Role:   claims.Role,
		Type:   "access",
	}).SignedString(privateKey)
	if err != nil {
		return "", "", errors.Wrap(err, "signing access token")
	}

	refreshToken, err := jwt.NewWithClaims(jwt.SigningMethodRS256, auth.Claims{
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(refreshTokenTTL).Unix(),
		},
		UserId: claims.ID,
		Role:   claims.Role,
		Type:   "refresh",
	}).SignedString(privateKey)
	if err != nil {
		return "", "", errors.Wrap(err, "signing refresh token")
	}

	return accessToken, refreshToken, nil
}

// VerifyTokens checks the pair belongs together and the refresh token is
// still valid. The access token may already be expired.
func VerifyTokens(accessToken, refreshToken, privateKeyPath string) (auth.Claims, auth.Claims, error) {
	keyData, err := os.ReadFile(privateKeyPath)
	if err != nil {
		return auth.Claims{}, auth.Claims{}, errors.Wrap(err, "reading private key")
	}

	privateKey, err := jwt.ParseRSAPrivateKeyFromPEM(keyData)
	if err != nil {
		return auth.Claims{}, auth.Claims{}, errors.Wrap(err, "parsing private key")
	}

	keyFunc := func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return &privateKey.PublicKey, nil
	}

	var accessClaims auth.Claims
	if _, err = jwt.ParseWithClaims(accessToken, &accessClaims, keyFunc); err != nil {
		validationErr, ok := err.(*jwt.ValidationError)
		if !ok || validationErr.Errors != jwt.ValidationErrorExpired {
			return auth.Claims{}, auth.Claims{}, errors.Wrap(err, "parsing access token")
		}
	}

	var refreshClaims auth.Claims
	if _, err = jwt.ParseWithClaims(refreshToken, &refreshClaims, keyFunc); err != nil {
		return auth.Claims{}, auth.Claims{}, errors.Wrap(err, "parsing refresh token")
	}

	if refreshClaims.Type != "refresh" {
		return auth.Claims{}, auth.Claims{}, errors.New("not a refresh token")
	}
	if accessClaims.UserId != refreshClaims.UserId {
		return auth.Claims{}, auth.Claims{}, errors.New("token pair mismatch")
	}

	return accessClaims, refreshClaims, nil
}
