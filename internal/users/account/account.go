// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package account is the identity store: user accounts, their normalized email
identity and their role.

# Architecture

  - Entities: User.
  - Identity: email is unique case-insensitively; the domain part is stored lower-cased.
  - Roles: closed set {user, moderator, admin}; admin is granted only through
    [Service.CreateSuperuser].
  - Deletion: removing an account cascades its reviews and comments and
    recomputes the rating of every title it had reviewed, in one transaction.
*/
package account

import (
	"context"
	"time"

	"github.com/taibuivan/yamdb/internal/platform/sec"
	"github.com/taibuivan/yamdb/pkg/pagination"
)

// # Domain Entities

// User represents a registered member of the platform.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Username     *string   `json:"username"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Bio          string    `json:"bio"`
	Role         sec.Role  `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// DisplayName returns the username, falling back to the email.
func (user *User) DisplayName() string {
	if user.Username != nil && *user.Username != "" {
		return *user.Username
	}
	return user.Email
}

// Profile carries the optional fields supplied at account creation.
type Profile struct {
	Username  *string
	FirstName string
	LastName  string
	Bio       string
}

// ProfileInput carries a partial profile update; nil fields stay unchanged.
// An empty Username clears it.
type ProfileInput struct {
	Username  *string
	FirstName *string
	LastName  *string
	Bio       *string
}

// # Field Identifiers

const (
	FieldEmail     = "email"
	FieldPassword  = "password"
	FieldUsername  = "username"
	FieldFirstName = "first_name"
	FieldLastName  = "last_name"
	FieldBio       = "bio"
	FieldRole      = "role"
)

// # Repository Contracts

// Repository defines the persistence contract for user accounts.
type Repository interface {
	/*
		Create persists a new account.

		Returns:
		  - error: apperr.Conflict(DUPLICATE_EMAIL / DUPLICATE_USERNAME)
	*/
	Create(context context.Context, user *User) error

	// FindByID retrieves an account by id, or apperr.NotFound.
	FindByID(context context.Context, id string) (*User, error)

	// FindByEmail retrieves an account by email, compared case-insensitively.
	FindByEmail(context context.Context, email string) (*User, error)

	// List returns a page of accounts ordered by creation time.
	List(context context.Context, page pagination.Params) ([]*User, int, error)

	// UpdateProfile writes username, names and bio.
	UpdateProfile(context context.Context, user *User) error

	// SetRole changes an account's role.
	SetRole(context context.Context, id string, role sec.Role) error

	/*
		Delete removes the account, its reviews and comments, and recomputes the
		rating of every title it had reviewed, all in one transaction.

		Returns:
		  - []string: ids of the titles whose rating was recomputed
		  - error: apperr.NotFound if the account does not exist
	*/
	Delete(context context.Context, id string) ([]string, error)
}
