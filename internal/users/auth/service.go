// Copyright (c) 2026 Corven. All rights reserved.
// Author: dev@corven.io

// Package auth implements the stateless authentication pipeline: login,
// token validation, and the per-request principal resolution the HTTP
// gate runs on.
package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/corven-io/corven/internal/platform/apperr"
	"github.com/corven-io/corven/internal/platform/constants"
	"github.com/corven-io/corven/internal/platform/dberr"
	"github.com/corven-io/corven/internal/platform/sec"
	"github.com/corven-io/corven/internal/users/user"
)

// CredentialStore is the slice of the user store the pipeline needs.
type CredentialStore interface {
	FindByUsername(ctx context.Context, username string) (*user.User, error)
}

// Service orchestrates the authentication flows.
//
// It holds no per-session state: every issued token is self-contained and
// every request re-resolves its principal against the credential store.
type Service struct {
	users    CredentialStore
	attempts AttemptStore
	tokens   *sec.TokenService
	logger   *slog.Logger
}

// NewService wires the authentication pipeline.
func NewService(users CredentialStore, attempts AttemptStore, tokens *sec.TokenService, logger *slog.Logger) *Service {
	return &Service{
		users:    users,
		attempts: attempts,
		tokens:   tokens,
		logger:   logger,
	}
}

// LoginResult is the successful login payload.
type LoginResult struct {
	Token     string    `json:"token"`
	TokenType string    `json:"tokenType"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Login verifies the credentials and issues an access token.
//
// Failures deliberately collapse into one generic Unauthorized message so
// the response never reveals whether the username exists, the password
// was wrong, or the account is disabled. Repeated failures for the same
// username trip the attempt throttle.
func (service *Service) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	count, err := service.attempts.Count(ctx, username)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if count >= constants.MaxLoginAttempts {
		service.logger.Warn("login_throttled", slog.String("username", username))
		return nil, apperr.RateLimited(int(constants.LoginAttemptWindow.Seconds()))
	}

	account, err := service.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			return nil, service.failAttempt(ctx, username)
		}
		return nil, err
	}

	if !sec.CheckPasswordHash(password, account.PasswordHash) {
		return nil, service.failAttempt(ctx, username)
	}

	if !account.IsActive() {
		service.logger.Warn("login_rejected_disabled_account", slog.String("username", username))
		return nil, apperr.Unauthorized("Invalid username or password")
	}

	token, err := service.tokens.Issue(account.Username)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	expiresAt, err := service.tokens.ParseExpiry(token)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	if err := service.attempts.Reset(ctx, username); err != nil {
		// A stale counter only shortens the throttle window; the login
		// itself succeeded.
		service.logger.Warn("login_attempt_reset_failed", slog.String("username", username), slog.Any("error", err))
	}

	service.logger.Info("login_succeeded", slog.String("username", username))

	return &LoginResult{
		Token:     token,
		TokenType: constants.TokenTypeBearer,
		Username:  account.Username,
		ExpiresAt: expiresAt,
	}, nil
}

// failAttempt records the failure and returns the generic rejection.
func (service *Service) failAttempt(ctx context.Context, username string) error {
	count, err := service.attempts.Record(ctx, username, constants.LoginAttemptWindow)
	if err != nil {
		service.logger.Error("login_attempt_record_failed", slog.String("username", username), slog.Any("error", err))
	} else {
		service.logger.Info("login_failed",
			slog.String("username", username),
			slog.Int("attempt_count", count),
		)
	}
	return apperr.Unauthorized("Invalid username or password")
}

// ValidateToken reports whether the token is currently acceptable.
//
// Malformed, forged, and expired tokens all collapse into false.
func (service *Service) ValidateToken(token string) bool {
	return service.tokens.Validate(token)
}

// ResolvePrincipal turns a bearer token into a request principal.
//
// The token only carries the subject; enablement always comes from a
// fresh credential lookup, so a deactivated account loses access the
// moment its record changes even while its tokens are still unexpired.
// A disabled principal is still returned; the gate decides admission.
func (service *Service) ResolvePrincipal(ctx context.Context, token string) (*sec.Principal, error) {
	claims, err := service.tokens.Verify(token)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid or expired token")
	}

	account, err := service.users.FindByUsername(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			return nil, apperr.Unauthorized("Unknown token subject")
		}
		return nil, err
	}

	return sec.NewPrincipal(account.Username, account.IsActive()), nil
}
