package commands

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"

	"school-attendance/backend/internal/auth"
	"school-attendance/backend/internal/repository/postgres/user"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestKey(t *testing.T) string {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	keyPath := filepath.Join(t.TempDir(), "private.pem")
	pemData := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})
	require.NoError(t, os.WriteFile(keyPath, pemData, 0o600))

	return keyPath
}

func TestGenTokenRoundTrip(t *testing.T) {
	keyPath := writeTestKey(t)

	access, refresh, err := GenToken(user.AuthClaims{ID: 42, Role: auth.RoleTeacher}, keyPath)
	require.NoError(t, err)
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)
	assert.NotEqual(t, access, refresh)

	accessClaims, refreshClaims, err := VerifyTokens(access, refresh, keyPath)
	require.NoError(t, err)

	assert.Equal(t, 42, accessClaims.UserId)
	assert.Equal(t, auth.RoleTeacher, accessClaims.Role)
	assert.Equal(t, "access", accessClaims.Type)
	assert.Equal(t, "refresh", refreshClaims.Type)
	assert.Equal(t, accessClaims.UserId, refreshClaims.UserId)
}

func TestVerifyTokensRejectsMismatchedPair(t *testing.T) {
	keyPath := writeTestKey(t)

	access, _, err := GenToken(user.AuthClaims{ID: 1, Role: auth.RoleAdmin}, keyPath)
	require.NoError(t, err)
	_, refresh, err := GenToken(user.AuthClaims{ID: 2, Role: auth.RoleStudent}, keyPath)
	require.NoError(t, err)

	_, _, err = VerifyTokens(access, refresh, keyPath)
	assert.Error(t, err)
}

func TestVerifyTokensRejectsAccessTokenAsRefresh(t *testing.T) {
	keyPath := writeTestKey(t)

	access, _, err := GenToken(user.AuthClaims{ID: 7, Role: auth.RoleStudent}, keyPath)
	require.NoError(t, err)

	_, _, err = VerifyTokens(access, access, keyPath)
	assert.Error(t, err)
}

func TestValidateTokenAcceptsGeneratedAccessToken(t *testing.T) {
	keyPath := writeTestKey(t)

	access, _, err := GenToken(user.AuthClaims{ID: 9, Role: auth.RoleAdmin}, keyPath)
	require.NoError(t, err)

	a, err := auth.NewAuth(keyPath)
	require.NoError(t, err)

	claims, err := a.ValidateToken(access)
	require.NoError(t, err)
	assert.Equal(t, 9, claims.UserId)
	assert.True(t, claims.Authorized(auth.RoleAdmin))
	assert.False(t, claims.Authorized(auth.RoleStudent))
}
