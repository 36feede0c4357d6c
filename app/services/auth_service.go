package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/bazarromero/catalog/app/models"
	"github.com/bazarromero/catalog/app/repositories"
	"github.com/bazarromero/catalog/app/requests"
	"github.com/bazarromero/catalog/pkg/apperror"
	"github.com/bazarromero/catalog/pkg/auth"
	"github.com/bazarromero/catalog/pkg/logger"
	"github.com/bazarromero/catalog/pkg/metrics"
	"github.com/bazarromero/catalog/pkg/ratelimit"
	"github.com/bazarromero/catalog/pkg/validate"
)

var (
	ErrInvalidCredentials = apperror.ErrInvalidCredentials

	ErrWrongPassword = fmt.Errorf("current password is incorrect: %w", apperror.ErrUnauthorized)
)

type AuthService struct {
	users   repositories.UserRepository
	tokens  *auth.TokenService
	limiter ratelimit.Limiter
}

func NewAuthService(users repositories.UserRepository, tokens *auth.TokenService, limiter ratelimit.Limiter) *AuthService {
	return &AuthService{users: users, tokens: tokens, limiter: limiter}
}

// Login verifies the credentials and returns a bearer token. On success the
// rate-limit counter for clientKey is cleared.
func (s *AuthService) Login(ctx context.Context, req requests.LoginRequest, clientKey string) (string, error) {
	if errs := validate.Struct(req); validate.HasErrors(errs) {
		metrics.RecordLogin("failure")
		return "", apperror.NewValidation(errs.Messages()...)
	}

	user, err := s.users.FindByUsername(ctx, req.Username)
	if errors.Is(err, repositories.ErrUserNotFound) {
		auth.CheckMissing(req.Password)
		metrics.RecordLogin("failure")
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", storeErr(ctx, "find user", err)
	}
	if !auth.CheckPassword(user.Password, req.Password) {
		metrics.RecordLogin("failure")
		logger.WithCtx(ctx).Warn("login failed", "username", req.Username)
		return "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(auth.Identity{ID: user.ID, Username: user.Username})
	if err != nil {
		return "", storeErr(ctx, "issue token", err)
	}

	if s.limiter != nil {
		if err := s.limiter.Clear(ctx, clientKey); err != nil {
			logger.WithCtx(ctx).Warn("rate limit clear failed", "error", err)
		}
	}
	metrics.RecordLogin("success")
	logger.WithCtx(ctx).Info("admin logged in", "user_id", user.ID)
	return token, nil
}

// ChangePassword replaces the password of userID after verifying the old one.
func (s *AuthService) ChangePassword(ctx context.Context, userID int64, req requests.ChangePasswordRequest) error {
	if errs := validate.Struct(req); validate.HasErrors(errs) {
		return apperror.NewValidation(errs.Messages()...)
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return storeErr(ctx, "find user", err)
	}
	if !auth.CheckPassword(user.Password, req.OldPassword) {
		return ErrWrongPassword
	}
	if auth.CheckPassword(user.Password, req.NewPassword) {
		return apperror.NewValidation("The new password must be different from the current one.")
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return storeErr(ctx, "hash password", err)
	}
	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return storeErr(ctx, "update password", err)
	}
	logger.WithCtx(ctx).Info("admin password changed", "user_id", userID)
	return nil
}

// EnsureAdmin creates the first admin account when none exists.
func (s *AuthService) EnsureAdmin(ctx context.Context, username, password string) (bool, error) {
	return SeedAdmin(ctx, s.users, username, password)
}

// SeedAdmin stores username with a bcrypt hash of password unless users
// already holds an account. It reports whether one was created.
func SeedAdmin(ctx context.Context, users repositories.UserRepository, username, password string) (bool, error) {
	n, err := users.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("count users: %w", err)
	}
	if n > 0 {
		return false, nil
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return false, fmt.Errorf("hash admin password: %w", err)
	}
	if _, err := users.Create(ctx, models.User{Username: username, Password: hash}); err != nil {
		return false, fmt.Errorf("create admin: %w", err)
	}
	return true, nil
}

// Verify returns the identity carried by a valid token.
func (s *AuthService) Verify(token string) (auth.Identity, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return auth.Identity{}, err
	}
	return claims.Identity, nil
}
