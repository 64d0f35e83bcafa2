package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/novocode/novocode-api/config"
	"github.com/novocode/novocode-api/internal/models"
	apperrors "github.com/novocode/novocode-api/pkg/errors"
	"github.com/novocode/novocode-api/pkg/jwt"
	"github.com/novocode/novocode-api/pkg/logger"
	"github.com/novocode/novocode-api/pkg/metrics"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials   = fmt.Errorf("invalid email or password: %w", apperrors.ErrUnauthorized)
	ErrAdminNotEligible     = apperrors.AccessDeniedError("user not eligible for back-office login")
	ErrAdminJWTSecretNotSet = errors.New("JWT secret not configured")
)

// Compared against when the email is unknown so both failures cost the same.
var unknownUserHash, _ = bcrypt.GenerateFromPassword([]byte("novocode-unknown-user"), bcrypt.DefaultCost) //nolint:errcheck

// AdminAuthService handles email and password login for staff.
type AdminAuthService struct {
	users        UserStore
	config       *config.Config
	tokenManager *jwt.TokenManager
	now          func() time.Time
}

func NewAdminAuthService(users UserStore, cfg *config.Config) *AdminAuthService {
	var tokenManager *jwt.TokenManager
	if cfg.Auth.JWTSecret != "" {
		tokenManager = jwt.NewTokenManager(
			cfg.Auth.JWTSecret,
			cfg.Auth.JWTIssuer,
			cfg.Auth.SessionTTLHours,
		)
	}

	return &AdminAuthService{
		users:        users,
		config:       cfg,
		tokenManager: tokenManager,
		now:          time.Now,
	}
}

// Login checks the password and returns the session with its signed token.
func (s *AdminAuthService) Login(ctx context.Context, email, password string) (*models.AdminSession, string, error) {
	if s.tokenManager == nil {
		return nil, "", ErrAdminJWTSecretNotSet
	}

	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		metrics.AdminLogins.WithLabelValues("error").Inc()
		return nil, "", err
	}

	if user == nil {
		_ = bcrypt.CompareHashAndPassword(unknownUserHash, []byte(password)) //nolint:errcheck
		metrics.AdminLogins.WithLabelValues("invalid_credentials").Inc()
		logger.Warn("Admin login for unknown email", zap.String("email", email))
		return nil, "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		metrics.AdminLogins.WithLabelValues("invalid_credentials").Inc()
		logger.Warn("Admin login with wrong password", zap.String("user_id", user.ID))
		return nil, "", ErrInvalidCredentials
	}

	if !user.Role.IsValid() {
		metrics.AdminLogins.WithLabelValues("not_eligible").Inc()
		logger.Warn("Admin login with invalid role",
			zap.String("user_id", user.ID),
			zap.String("role", string(user.Role)))
		return nil, "", ErrAdminNotEligible
	}

	token, err := s.tokenManager.GenerateToken(user.ID, user.Email, user.Name, string(user.Role))
	if err != nil {
		metrics.AdminLogins.WithLabelValues("error").Inc()
		return nil, "", fmt.Errorf("failed to generate admin session token: %w", err)
	}

	now := s.now()
	session := &models.AdminSession{
		UserID:    user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Role:      user.Role,
		ExpiresAt: now.Add(s.tokenManager.GetExpirationTime()).Unix(),
		IssuedAt:  now.Unix(),
	}

	metrics.AdminLogins.WithLabelValues("success").Inc()
	logger.Info("Admin logged in", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))

	return session, token, nil
}

func (s *AdminAuthService) GetSessionTTL() int {
	return s.config.Auth.SessionTTLHours * 3600
}

func (s *AdminAuthService) GetCookieDomain() string {
	return s.config.Auth.CookieDomain
}

func (s *AdminAuthService) GetCookieSecure() bool {
	return s.config.Auth.CookieSecure
}

func (s *AdminAuthService) GetTokenManager() *jwt.TokenManager {
	return s.tokenManager
}
