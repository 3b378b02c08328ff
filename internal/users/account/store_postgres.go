// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package account (Postgres) implements the storage layer for user accounts.

# Schema Table Mapping
  - users.account: identity, credentials and profile.
  - social.review: read on deletion to find the titles whose rating must move.
*/
package account

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/yamdb/internal/core/rating"
	"github.com/taibuivan/yamdb/internal/platform/apperr"
	"github.com/taibuivan/yamdb/internal/platform/database/schema"
	"github.com/taibuivan/yamdb/internal/platform/dberr"
	"github.com/taibuivan/yamdb/internal/platform/postgres"
	"github.com/taibuivan/yamdb/internal/platform/sec"
	"github.com/taibuivan/yamdb/pkg/pagination"
)

var (
	// ErrDuplicateEmail is returned when the email is already registered.
	ErrDuplicateEmail = apperr.Conflict("Email is already registered").WithReason(apperr.ReasonDuplicateEmail)
	// ErrDuplicateUsername is returned when the username is already taken.
	ErrDuplicateUsername = apperr.Conflict("Username is already taken").WithReason(apperr.ReasonDuplicateUsername)
)

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates the Postgres identity store.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

var accountColumns = strings.Join([]string{
	schema.UserAccount.ID, schema.UserAccount.Email, schema.UserAccount.PasswordHash,
	schema.UserAccount.Username, schema.UserAccount.FirstName, schema.UserAccount.LastName,
	schema.UserAccount.Bio, schema.UserAccount.Role, schema.UserAccount.CreatedAt,
}, ", ")

func scanUser(row pgx.Row, extra ...any) (*User, error) {
	user := &User{}
	targets := append([]any{
		&user.ID, &user.Email, &user.PasswordHash,
		&user.Username, &user.FirstName, &user.LastName,
		&user.Bio, &user.Role, &user.CreatedAt,
	}, extra...)

	if err := row.Scan(targets...); err != nil {
		return nil, err
	}
	return user, nil
}

// translateUnique maps the identity constraints to their typed conflicts.
func translateUnique(err error, action string) error {
	switch {
	case dberr.IsUniqueViolation(err, schema.ConstraintAccountEmail):
		return ErrDuplicateEmail
	case dberr.IsUniqueViolation(err, schema.ConstraintAccountUsername):
		return ErrDuplicateUsername
	default:
		return dberr.Wrap(err, action)
	}
}

/*
Create inserts a new account row.

Description: Uniqueness is left to the database; a race between two
registrations of the same email surfaces as DUPLICATE_EMAIL, never as a
second account.
*/
func (repository *PostgresRepository) Create(context context.Context, user *User) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING %s`,
		schema.UserAccount.Table,
		schema.UserAccount.ID, schema.UserAccount.Email, schema.UserAccount.PasswordHash,
		schema.UserAccount.Username, schema.UserAccount.FirstName, schema.UserAccount.LastName,
		schema.UserAccount.Bio, schema.UserAccount.Role,
		schema.UserAccount.CreatedAt,
	)

	err := repository.pool.QueryRow(context, query,
		user.ID, user.Email, user.PasswordHash,
		user.Username, user.FirstName, user.LastName,
		user.Bio, user.Role,
	).Scan(&user.CreatedAt)

	return translateUnique(err, "create_account")
}

func (repository *PostgresRepository) FindByID(context context.Context, id string) (*User, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		accountColumns, schema.UserAccount.Table, schema.UserAccount.ID)

	user, err := scanUser(repository.pool.QueryRow(context, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("User")
	}
	if err != nil {
		return nil, dberr.Wrap(err, "get_account")
	}
	return user, nil
}

func (repository *PostgresRepository) FindByEmail(context context.Context, email string) (*User, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE lower(%s) = lower($1)`,
		accountColumns, schema.UserAccount.Table, schema.UserAccount.Email)

	user, err := scanUser(repository.pool.QueryRow(context, query, email))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("User")
	}
	if err != nil {
		return nil, dberr.Wrap(err, "get_account_by_email")
	}
	return user, nil
}

func (repository *PostgresRepository) List(context context.Context, page pagination.Params) ([]*User, int, error) {
	query := fmt.Sprintf(`
		SELECT %s, COUNT(*) OVER()
		FROM %s
		ORDER BY %s ASC, %s ASC
		LIMIT $1 OFFSET $2`,
		accountColumns, schema.UserAccount.Table,
		schema.UserAccount.CreatedAt, schema.UserAccount.ID,
	)

	rows, err := repository.pool.Query(context, query, page.Limit, page.Offset())
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_accounts")
	}
	defer rows.Close()

	users := make([]*User, 0)
	total := 0
	for rows.Next() {
		user, err := scanUser(rows, &total)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "scan_account")
		}
		users = append(users, user)
	}

	return users, total, dberr.Wrap(rows.Err(), "list_accounts")
}

func (repository *PostgresRepository) UpdateProfile(context context.Context, user *User) error {
	query := fmt.Sprintf(`
		UPDATE %s SET %s = $2, %s = $3, %s = $4, %s = $5, %s = now()
		WHERE %s = $1`,
		schema.UserAccount.Table,
		schema.UserAccount.Username, schema.UserAccount.FirstName, schema.UserAccount.LastName,
		schema.UserAccount.Bio, schema.UserAccount.UpdatedAt,
		schema.UserAccount.ID,
	)

	tag, err := repository.pool.Exec(context, query, user.ID, user.Username, user.FirstName, user.LastName, user.Bio)
	if err != nil {
		return translateUnique(err, "update_account")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("User")
	}
	return nil
}

func (repository *PostgresRepository) SetRole(context context.Context, id string, role sec.Role) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = now() WHERE %s = $1`,
		schema.UserAccount.Table, schema.UserAccount.Role, schema.UserAccount.UpdatedAt, schema.UserAccount.ID)

	tag, err := repository.pool.Exec(context, query, id, role)
	if err != nil {
		return dberr.Wrap(err, "set_account_role")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("User")
	}
	return nil
}

/*
Delete removes an account and keeps every affected rating consistent.

Description: The account row is locked first, which blocks new reviews by
this user (their foreign-key check needs a share lock on it). The reviewed
titles are then locked in id order, the account is deleted (reviews and
comments cascade) and each title's rating is recomputed.
*/
func (repository *PostgresRepository) Delete(context context.Context, id string) ([]string, error) {
	var titleIDs []string

	err := postgres.InTx(context, repository.pool, func(transaction pgx.Tx) error {
		lockAccount := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 FOR UPDATE`,
			schema.UserAccount.ID, schema.UserAccount.Table, schema.UserAccount.ID)

		var locked string
		err := transaction.QueryRow(context, lockAccount, id).Scan(&locked)
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.NotFound("User")
		}
		if err != nil {
			return dberr.Wrap(err, "lock_account")
		}

		reviewed := fmt.Sprintf(`SELECT DISTINCT %s FROM %s WHERE %s = $1 ORDER BY %s`,
			schema.SocialReview.TitleID, schema.SocialReview.Table, schema.SocialReview.AuthorID,
			schema.SocialReview.TitleID)

		rows, err := transaction.Query(context, reviewed, id)
		if err != nil {
			return dberr.Wrap(err, "list_reviewed_titles")
		}
		titleIDs, err = pgx.CollectRows(rows, pgx.RowTo[string])
		if err != nil {
			return dberr.Wrap(err, "collect_reviewed_titles")
		}

		titleIDs, err = rating.LockTitles(context, transaction, titleIDs)
		if err != nil {
			return err
		}

		deleteAccount := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, schema.UserAccount.Table, schema.UserAccount.ID)
		if _, err := transaction.Exec(context, deleteAccount, id); err != nil {
			return dberr.Wrap(err, "delete_account")
		}

		for _, titleID := range titleIDs {
			if _, err := rating.RecomputeTx(context, transaction, titleID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return titleIDs, nil
}
