package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateAccessToken(t *testing.T) {
	current := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	svc, err := NewJWTService(JWTConfig{
		Secret: "test-secret",
		Issuer: "workhive",
		Clock:  func() time.Time { return current },
	})
	require.NoError(t, err)

	token, err := svc.GenerateAccessToken(AccessTokenInput{
		UserID: "user-1",
		Roles:  []string{"business_owner"},
	})
	require.NoError(t, err)

	claims, err := svc.ValidateAccessToken(token)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.UserID)
	require.Equal(t, []string{"business_owner"}, claims.Roles)
	require.Equal(t, "workhive", claims.Issuer)
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	current := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	svc, err := NewJWTService(JWTConfig{
		Secret:         "test-secret",
		AccessTokenTTL: time.Minute,
		Clock:          func() time.Time { return current },
	})
	require.NoError(t, err)

	token, err := svc.GenerateAccessToken(AccessTokenInput{UserID: "user-1"})
	require.NoError(t, err)

	current = current.Add(2 * time.Minute)
	_, err = svc.ValidateAccessToken(token)
	require.Error(t, err)
}

func TestValidateRejectsWrongIssuer(t *testing.T) {
	issuerA, err := NewJWTService(JWTConfig{Secret: "s", Issuer: "a"})
	require.NoError(t, err)
	issuerB, err := NewJWTService(JWTConfig{Secret: "s", Issuer: "b"})
	require.NoError(t, err)

	token, err := issuerA.GenerateAccessToken(AccessTokenInput{UserID: "user-1"})
	require.NoError(t, err)

	_, err = issuerB.ValidateAccessToken(token)
	require.Error(t, err)
}

func TestNewJWTServiceRequiresSecret(t *testing.T) {
	_, err := NewJWTService(JWTConfig{})
	require.Error(t, err)
}
