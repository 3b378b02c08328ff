// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package schema holds physical table and column names so that query builders
// never spell an identifier twice.
package schema

// UserAccountTable represents the 'users.account' table
type UserAccountTable struct {
	Table        string
	ID           string
	Email        string
	PasswordHash string
	Username     string
	FirstName    string
	LastName     string
	Bio          string
	Role         string
	CreatedAt    string
	UpdatedAt    string
}

// UserAccount is the schema definition for users.account
var UserAccount = UserAccountTable{
	Table:        "users.account",
	ID:           "id",
	Email:        "email",
	PasswordHash: "passwordhash",
	Username:     "username",
	FirstName:    "firstname",
	LastName:     "lastname",
	Bio:          "bio",
	Role:         "role",
	CreatedAt:    "createdat",
	UpdatedAt:    "updatedat",
}

// Columns returns all standard column names
func (t UserAccountTable) Columns() []string {
	return []string{
		t.ID, t.Email, t.PasswordHash, t.Username, t.FirstName,
		t.LastName, t.Bio, t.Role, t.CreatedAt, t.UpdatedAt,
	}
}

// Unique constraint names raised on duplicate identities.
const (
	ConstraintAccountEmail    = "account_email_lower_key"
	ConstraintAccountUsername = "account_username_key"
)
