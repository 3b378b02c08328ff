// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/taibuivan/yamdb/internal/core/policy"
	"github.com/taibuivan/yamdb/internal/platform/apperr"
	"github.com/taibuivan/yamdb/internal/platform/constants"
	"github.com/taibuivan/yamdb/internal/platform/sec"
	"github.com/taibuivan/yamdb/internal/platform/validate"
	"github.com/taibuivan/yamdb/pkg/pagination"
	"github.com/taibuivan/yamdb/pkg/pointer"
	"github.com/taibuivan/yamdb/pkg/uuidv7"
)

// ErrInvalidCredentials is the single answer to every failed login, whether
// the email exists or not.
var ErrInvalidCredentials = apperr.Unauthorized("Invalid email or password").
	WithReason(apperr.ReasonInvalidCredentials)

// # Service Layer

// Service orchestrates the identity store.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService constructs a new [Service] with its repository dependency.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// NormalizeEmail trims the address and lower-cases its domain part.
// The local part is kept as typed; uniqueness is case-insensitive anyway.
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)

	local, domain, found := strings.Cut(email, "@")
	if !found {
		return email
	}
	return local + "@" + strings.ToLower(domain)
}

// # Account Creation

/*
CreateUser registers a regular account.

Returns:
  - *User: The persisted account with role user
  - error: VALIDATION_ERROR (empty email or password) or CONFLICT (DUPLICATE_EMAIL / DUPLICATE_USERNAME)
*/
func (service *Service) CreateUser(context context.Context, email, password string, profile Profile) (*User, error) {
	return service.create(context, email, password, profile, sec.RoleUser)
}

/*
CreateSuperuser registers an administrator. It is the only path that grants
the admin role and is reachable from the command line only.
*/
func (service *Service) CreateSuperuser(context context.Context, email, password string, profile Profile) (*User, error) {
	return service.create(context, email, password, profile, sec.RoleAdmin)
}

func (service *Service) create(context context.Context, email, password string, profile Profile, role sec.Role) (*User, error) {
	user := &User{
		ID:        uuidv7.New(),
		Email:     NormalizeEmail(email),
		Username:  normalizeUsername(profile.Username),
		FirstName: strings.TrimSpace(profile.FirstName),
		LastName:  strings.TrimSpace(profile.LastName),
		Bio:       profile.Bio,
		Role:      role,
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, user.Email)
	if user.Email != "" {
		validator.MaxLen(FieldEmail, user.Email, constants.MaxEmailLength).Email(FieldEmail, user.Email)
	}
	validator.Required(FieldPassword, password)
	if password != "" {
		validator.MinLen(FieldPassword, password, constants.MinPasswordLength)
	}
	validateProfile(validator, user)

	if err := validator.Err(); err != nil {
		return nil, err
	}

	hash, err := sec.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("account_service_hash_failed: %w", err)
	}
	user.PasswordHash = hash

	if err := service.repo.Create(context, user); err != nil {
		return nil, fmt.Errorf("account_service_create_failed: %w", err)
	}

	service.logger.InfoContext(context, "user_account_created",
		slog.String("user_id", user.ID),
		slog.String("role", user.Role.String()),
	)
	return user, nil
}

// # Authentication

/*
Authenticate verifies an email/password pair.

Description: An unknown email still pays for one bcrypt comparison, so the
response time does not reveal whether the address is registered.

Returns:
  - *User: The matching account
  - error: UNAUTHORIZED (INVALID_CREDENTIALS)
*/
func (service *Service) Authenticate(context context.Context, email, password string) (*User, error) {
	user, err := service.repo.FindByEmail(context, NormalizeEmail(email))
	if err != nil {
		if !apperr.HasCode(err, apperr.CodeNotFound) {
			return nil, fmt.Errorf("account_service_authenticate_failed: %w", err)
		}
		sec.BurnPasswordCheck(password)
		return nil, ErrInvalidCredentials
	}

	if !sec.CheckPasswordHash(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// # Profile Management

// GetUser returns an account by id.
func (service *Service) GetUser(context context.Context, id string) (*User, error) {
	user, err := service.repo.FindByID(context, id)
	if err != nil {
		return nil, fmt.Errorf("account_service_get_failed: %w", err)
	}
	return user, nil
}

// ListUsers returns a page of accounts. Administrators only.
func (service *Service) ListUsers(context context.Context, actor *policy.Actor, page pagination.Params) ([]*User, int, error) {
	if actor == nil || actor.Role != sec.RoleAdmin {
		return nil, 0, apperr.Forbidden("Only administrators may list users")
	}
	return service.repo.List(context, page.Normalize())
}

/*
UpdateProfile applies a partial profile update to targetID.

Description: Allowed for the account owner and administrators. Email, password
and role are not part of the profile.
*/
func (service *Service) UpdateProfile(context context.Context, actor *policy.Actor, targetID string, input ProfileInput) (*User, error) {
	if !policy.CanManageUser(actor, targetID) {
		return nil, apperr.Forbidden("You may not edit this account")
	}

	user, err := service.repo.FindByID(context, targetID)
	if err != nil {
		return nil, err
	}

	if input.Username != nil {
		user.Username = normalizeUsername(input.Username)
	}
	user.FirstName = strings.TrimSpace(pointer.Fallback(input.FirstName, user.FirstName))
	user.LastName = strings.TrimSpace(pointer.Fallback(input.LastName, user.LastName))
	user.Bio = pointer.Fallback(input.Bio, user.Bio)

	validator := &validate.Validator{}
	validateProfile(validator, user)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	if err := service.repo.UpdateProfile(context, user); err != nil {
		return nil, fmt.Errorf("account_service_update_failed: %w", err)
	}

	service.logger.InfoContext(context, "user_profile_updated", slog.String("user_id", targetID))
	return user, nil
}

/*
SetRole changes another account's role. Administrators only, and only to
user or moderator: admin is granted exclusively by CreateSuperuser.
*/
func (service *Service) SetRole(context context.Context, actor *policy.Actor, targetID string, role sec.Role) (*User, error) {
	if actor == nil || actor.Role != sec.RoleAdmin {
		return nil, apperr.Forbidden("Only administrators may change roles")
	}
	if actor.UserID == targetID {
		return nil, apperr.Forbidden("You may not change your own role")
	}

	validator := &validate.Validator{}
	validator.OneOf(FieldRole, string(role), string(sec.RoleUser), string(sec.RoleModerator))
	if err := validator.Err(); err != nil {
		return nil, err
	}

	user, err := service.repo.FindByID(context, targetID)
	if err != nil {
		return nil, err
	}

	if err := service.repo.SetRole(context, targetID, role); err != nil {
		return nil, fmt.Errorf("account_service_set_role_failed: %w", err)
	}
	user.Role = role

	service.logger.WarnContext(context, "user_role_changed",
		slog.String("user_id", targetID),
		slog.String("role", role.String()),
		slog.String("by", actor.UserID),
	)
	return user, nil
}

/*
DeleteUser removes an account with everything it authored.

Description: Allowed for the owner and administrators. Ratings of the titles
the account had reviewed are recomputed in the same transaction.
*/
func (service *Service) DeleteUser(context context.Context, actor *policy.Actor, targetID string) error {
	if !policy.CanManageUser(actor, targetID) {
		return apperr.Forbidden("You may not delete this account")
	}

	titleIDs, err := service.repo.Delete(context, targetID)
	if err != nil {
		return fmt.Errorf("account_service_delete_failed: %w", err)
	}

	service.logger.WarnContext(context, "user_account_deleted",
		slog.String("user_id", targetID),
		slog.Int("recomputed_titles", len(titleIDs)),
	)
	return nil
}

// # Helpers

func normalizeUsername(username *string) *string {
	if username == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*username)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func validateProfile(validator *validate.Validator, user *User) {
	if user.Username != nil {
		validator.MaxLen(FieldUsername, *user.Username, constants.MaxUsernameLength).
			Username(FieldUsername, *user.Username)
		validator.Custom(FieldUsername, strings.EqualFold(*user.Username, "me"), "This username is reserved")
	}
	validator.MaxLen(FieldFirstName, user.FirstName, constants.MaxPersonName)
	validator.MaxLen(FieldLastName, user.LastName, constants.MaxPersonName)
	validator.MaxLen(FieldBio, user.Bio, constants.MaxBioLength)
}
