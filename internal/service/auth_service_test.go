package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/crid-api/internal/models"
	appErrors "github.com/noah-isme/crid-api/pkg/errors"
)

func newAuthFixture(t *testing.T) *AuthService {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	require.NoError(t, err)
	return NewAuthService(nil, nil, AuthConfig{
		SecretaryID:           "secretary-1",
		SecretaryEmail:        "secretary@school.test",
		SecretaryFullName:     "Ana Souza",
		SecretaryPasswordHash: string(hash),
		AccessTokenSecret:     "test-secret",
		AccessTokenExpiry:     time.Hour,
		Issuer:                "crid-api",
	})
}

func TestLoginSuccess(t *testing.T) {
	svc := newAuthFixture(t)

	resp, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "secretary@school.test",
		Password: "correct horse",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Greater(t, resp.ExpiresIn, int64(0))
	assert.Equal(t, "secretary-1", resp.User.ID)
	assert.Equal(t, models.RoleSecretary, resp.User.Role)
}

func TestLoginWrongPassword(t *testing.T) {
	svc := newAuthFixture(t)

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "secretary@school.test",
		Password: "wrong",
	})
	require.ErrorIs(t, err, appErrors.ErrInvalidCredentials)
}

func TestLoginUnknownEmail(t *testing.T) {
	svc := newAuthFixture(t)

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "intruder@school.test",
		Password: "correct horse",
	})
	require.ErrorIs(t, err, appErrors.ErrInvalidCredentials)
}

func TestLoginValidation(t *testing.T) {
	svc := newAuthFixture(t)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "not-an-email", Password: "x"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestValidateTokenRoundTrip(t *testing.T) {
	svc := newAuthFixture(t)
	resp, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "secretary@school.test",
		Password: "correct horse",
	})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "secretary-1", claims.UserID)
	assert.Equal(t, models.RoleSecretary, claims.Role)
	assert.Equal(t, "crid-api", claims.Issuer)
	assert.NotEmpty(t, claims.ID)
}

func TestValidateTokenRejectsTampering(t *testing.T) {
	svc := newAuthFixture(t)
	resp, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "secretary@school.test",
		Password: "correct horse",
	})
	require.NoError(t, err)

	_, err = svc.ValidateToken(resp.AccessToken + "x")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)

	_, err = svc.ValidateToken("not-a-token")
	require.Error(t, err)
}
