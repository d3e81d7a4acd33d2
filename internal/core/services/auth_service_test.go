package services

import (
	"context"
	"testing"

	"red-reserve/internal/adapters/persistence/repositories"
	"red-reserve/internal/config"
	"red-reserve/internal/pkg/jwt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		AppMode: "dev",
		JWT: config.JWTConfig{
			Secret:           "test-secret",
			RefreshSecret:    "test-refresh-secret",
			AccessTokenMins:  15,
			RefreshTokenDays: 7,
		},
	}
}

func TestDonorSignupAndLogin(t *testing.T) {
	ctx := context.Background()
	store := repositories.NewMemoryStore()
	svc := NewAuthService(store, testConfig())

	require.NoError(t, svc.DonorSignup(ctx, &DonorSignupInput{
		Email:    "Asha@Example.com",
		Password: "correct-horse",
	}))

	// Email uniqueness is case-insensitive
	err := svc.DonorSignup(ctx, &DonorSignupInput{
		Email:    "asha@example.COM",
		Password: "another-pass",
	})
	assert.ErrorIs(t, err, ErrEmailAlreadyUsed)

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.DonorLogin(ctx, &LoginInput{Email: "asha@example.com", Password: "wrong"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.DonorLogin(ctx, &LoginInput{Email: "nobody@example.com", Password: "x"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("success", func(t *testing.T) {
		tokens, err := svc.DonorLogin(ctx, &LoginInput{Email: "ASHA@example.com", Password: "correct-horse"})
		require.NoError(t, err)

		claims, err := svc.ValidateAccessToken(tokens.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, jwt.RoleDonor, claims.Role)
		assert.Equal(t, "asha@example.com", claims.Email)
		assert.Empty(t, claims.HospitalName)
	})
}

func TestHospitalSignupAndLogin(t *testing.T) {
	ctx := context.Background()
	store := repositories.NewMemoryStore()
	svc := NewAuthService(store, testConfig())

	require.NoError(t, svc.HospitalSignup(ctx, &HospitalSignupInput{
		Name:     "City General",
		License:  "LIC-1",
		Contact:  "5550400",
		Pincode:  "560006",
		Address:  "1 Hospital Rd",
		Email:    "city@example.org",
		Password: "ward-keeper",
	}))

	err := svc.HospitalSignup(ctx, &HospitalSignupInput{
		Name: "City General Copy", Contact: "x", Pincode: "x", Address: "x",
		Email: "city@example.org", Password: "ward-keeper",
	})
	assert.ErrorIs(t, err, ErrEmailAlreadyUsed)

	tokens, err := svc.HospitalLogin(ctx, &LoginInput{Email: "city@example.org", Password: "ward-keeper"})
	require.NoError(t, err)

	claims, err := svc.ValidateAccessToken(tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, jwt.RoleHospital, claims.Role)
	assert.Equal(t, "City General", claims.HospitalName)
}

func TestRefreshTokenRotation(t *testing.T) {
	ctx := context.Background()
	store := repositories.NewMemoryStore()
	svc := NewAuthService(store, testConfig())

	require.NoError(t, svc.DonorSignup(ctx, &DonorSignupInput{
		Email:    "asha@example.com",
		Password: "correct-horse",
	}))
	tokens, err := svc.DonorLogin(ctx, &LoginInput{Email: "asha@example.com", Password: "correct-horse"})
	require.NoError(t, err)

	rotated, err := svc.RefreshToken(ctx, tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, tokens.RefreshToken, rotated.RefreshToken)

	// The used refresh token is revoked: replaying it fails
	_, err = svc.RefreshToken(ctx, tokens.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenRevoked)

	// The rotated token still works
	_, err = svc.RefreshToken(ctx, rotated.RefreshToken)
	require.NoError(t, err)

	_, err = svc.RefreshToken(ctx, "garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestLogoutRevokesToken(t *testing.T) {
	ctx := context.Background()
	store := repositories.NewMemoryStore()
	svc := NewAuthService(store, testConfig())

	require.NoError(t, svc.DonorSignup(ctx, &DonorSignupInput{
		Email:    "asha@example.com",
		Password: "correct-horse",
	}))
	tokens, err := svc.DonorLogin(ctx, &LoginInput{Email: "asha@example.com", Password: "correct-horse"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, tokens.RefreshToken))

	_, err = svc.RefreshToken(ctx, tokens.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenRevoked)
}
