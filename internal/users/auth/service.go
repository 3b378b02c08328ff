// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth turns credentials into access tokens.

Architecture:

  - Service: Register and Login on top of the account identity store.
  - Throttle: failed login attempts per email, kept in Redis.
  - Security: RS256 access tokens issued by [sec.TokenService].

The package owns no persistent data; accounts live in the account package.
*/
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/taibuivan/yamdb/internal/platform/apperr"
	"github.com/taibuivan/yamdb/internal/platform/sec"
	"github.com/taibuivan/yamdb/internal/users/account"
)

// # Contracts & Types

// Accounts is the part of the identity store that authentication needs.
type Accounts interface {
	CreateUser(context context.Context, email, password string, profile account.Profile) (*account.User, error)
	Authenticate(context context.Context, email, password string) (*account.User, error)
}

// TokenIssuer signs access tokens. [sec.TokenService] satisfies it.
type TokenIssuer interface {
	GenerateAccessToken(userID, username string, role sec.Role, timeToLive time.Duration) (string, error)
}

// Throttle counts failed logins per key.
type Throttle interface {
	// Check returns RATE_LIMITED while the key is locked out.
	Check(context context.Context, key string) error

	// RecordFailure counts one failed attempt against the key.
	RecordFailure(context context.Context, key string) error

	// Reset clears the key after a successful login.
	Reset(context context.Context, key string) error
}

// Session is the result of a successful register or login.
type Session struct {
	AccessToken string        `json:"access_token"`
	TokenType   string        `json:"token_type"`
	ExpiresIn   int           `json:"expires_in"`
	User        *account.User `json:"user"`
}

// Service implements the authentication use cases.
//
// # Review Process
//
// Changes to login or token issuance must keep the single INVALID_CREDENTIALS
// answer for unknown emails and wrong passwords.
type Service struct {
	accounts Accounts
	tokens   TokenIssuer
	throttle Throttle
	tokenTTL time.Duration
	logger   *slog.Logger
}

// NewService constructs a new [Service].
func NewService(accounts Accounts, tokens TokenIssuer, throttle Throttle, tokenTTL time.Duration, logger *slog.Logger) *Service {
	return &Service{
		accounts: accounts,
		tokens:   tokens,
		throttle: throttle,
		tokenTTL: tokenTTL,
		logger:   logger,
	}
}

// # Use Cases

/*
Register creates a regular account and signs the new user in.

Returns:
  - *Session: Access token plus the created account
  - error: VALIDATION_ERROR or CONFLICT from the identity store
*/
func (service *Service) Register(context context.Context, email, password string, profile account.Profile) (*Session, error) {
	user, err := service.accounts.CreateUser(context, email, password, profile)
	if err != nil {
		return nil, err
	}

	service.logger.InfoContext(context, "auth_user_registered", slog.String("user_id", user.ID))
	return service.issue(user)
}

/*
Login exchanges an email/password pair for an access token.

Description: Failed attempts are counted per email. Once the limit is reached
the email is locked out for the configured window, even for the right password.
A throttle store outage is logged and does not block logins.

Returns:
  - *Session: Access token plus the account
  - error: UNAUTHORIZED (INVALID_CREDENTIALS) or RATE_LIMITED
*/
func (service *Service) Login(context context.Context, email, password string) (*Session, error) {
	key := throttleKey(email)

	if err := service.throttle.Check(context, key); err != nil {
		if apperr.HasCode(err, apperr.CodeRateLimited) {
			service.logger.WarnContext(context, "auth_login_throttled")
			return nil, err
		}
		service.logger.WarnContext(context, "auth_throttle_unavailable", slog.Any("error", err))
	}

	user, err := service.accounts.Authenticate(context, email, password)
	if err != nil {
		if apperr.HasReason(err, apperr.ReasonInvalidCredentials) {
			if recordErr := service.throttle.RecordFailure(context, key); recordErr != nil {
				service.logger.WarnContext(context, "auth_throttle_unavailable", slog.Any("error", recordErr))
			}
		}
		return nil, err
	}

	if err := service.throttle.Reset(context, key); err != nil {
		service.logger.WarnContext(context, "auth_throttle_unavailable", slog.Any("error", err))
	}

	service.logger.InfoContext(context, "auth_login_succeeded", slog.String("user_id", user.ID))
	return service.issue(user)
}

// # Helpers

func (service *Service) issue(user *account.User) (*Session, error) {
	token, err := service.tokens.GenerateAccessToken(user.ID, user.DisplayName(), user.Role, service.tokenTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_token_generation_failed: %w", err)
	}

	return &Session{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(service.tokenTTL.Seconds()),
		User:        user,
	}, nil
}

// throttleKey folds the whole address so case variants share one counter.
func throttleKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
