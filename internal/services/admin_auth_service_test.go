package services_test

import (
	"context"
	"testing"

	"github.com/novocode/novocode-api/internal/models"
	"github.com/novocode/novocode-api/internal/services"
	apperrors "github.com/novocode/novocode-api/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func adminUser(t *testing.T, password string, role models.UserRole) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &models.User{
		ID:           "7a9c1d2e-0000-4000-8000-000000000001",
		Name:         "Ana",
		Email:        "ana@novocode.com.br",
		PasswordHash: string(hash),
		Role:         role,
	}
}

func TestAdminAuthService_Login(t *testing.T) {
	users := new(MockUserStore)
	service := services.NewAdminAuthService(users, testConfig())
	ctx := context.Background()

	users.On("FindByEmail", ctx, "ana@novocode.com.br").
		Return(adminUser(t, "correct horse battery", models.UserRoleAdmin), nil).Once()

	session, token, err := service.Login(ctx, "  Ana@NovoCode.com.br ", "correct horse battery")

	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, models.UserRoleAdmin, session.Role)
	assert.Greater(t, session.ExpiresAt, session.IssuedAt)

	claims, err := service.GetTokenManager().ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "ana@novocode.com.br", claims.Email)
	assert.Equal(t, string(models.UserRoleAdmin), claims.Role)
}

func TestAdminAuthService_Login_WrongPassword(t *testing.T) {
	users := new(MockUserStore)
	service := services.NewAdminAuthService(users, testConfig())
	ctx := context.Background()

	users.On("FindByEmail", ctx, "ana@novocode.com.br").
		Return(adminUser(t, "correct horse battery", models.UserRoleAdmin), nil).Once()

	_, _, err := service.Login(ctx, "ana@novocode.com.br", "wrong password")

	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestAdminAuthService_Login_UnknownEmail(t *testing.T) {
	users := new(MockUserStore)
	service := services.NewAdminAuthService(users, testConfig())
	ctx := context.Background()

	users.On("FindByEmail", ctx, mock.Anything).Return(nil, nil).Once()

	_, _, err := service.Login(ctx, "ghost@novocode.com.br", "whatever123")

	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
}

func TestAdminAuthService_Login_InvalidRole(t *testing.T) {
	users := new(MockUserStore)
	service := services.NewAdminAuthService(users, testConfig())
	ctx := context.Background()

	users.On("FindByEmail", ctx, mock.Anything).
		Return(adminUser(t, "correct horse battery", models.UserRole("VIEWER")), nil).Once()

	_, _, err := service.Login(ctx, "ana@novocode.com.br", "correct horse battery")

	assert.ErrorIs(t, err, services.ErrAdminNotEligible)
	assert.ErrorIs(t, err, apperrors.ErrAccessDenied)
}

func TestAdminAuthService_Login_StoreUnavailable(t *testing.T) {
	users := new(MockUserStore)
	service := services.NewAdminAuthService(users, testConfig())
	ctx := context.Background()

	users.On("FindByEmail", ctx, mock.Anything).Return(nil, apperrors.ErrUnavailable).Once()

	_, _, err := service.Login(ctx, "ana@novocode.com.br", "correct horse battery")

	assert.ErrorIs(t, err, apperrors.ErrUnavailable)
}

func TestAdminAuthService_CookieSettings(t *testing.T) {
	service := services.NewAdminAuthService(new(MockUserStore), testConfig())

	assert.Equal(t, 12*3600, service.GetSessionTTL())
	assert.Equal(t, "novocode.com.br", service.GetCookieDomain())
	assert.True(t, service.GetCookieSecure())
}
