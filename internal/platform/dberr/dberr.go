// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
//
// Constraint violations raised by PostgreSQL are classified by SQLSTATE so that
// a race on a unique index surfaces as a CONFLICT instead of a raw storage error.
package dberr

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/taibuivan/yamdb/internal/platform/apperr"
)

var (
	// ErrNotFound is a standard error returned when a queried row doesn't exist.
	ErrNotFound = apperr.NotFound("Resource")
)

// Wrap inspects a database error and wraps it into a meaningful [apperr.AppError].
// It hides internal database details from the client while classifying the error type.
func Wrap(err error, action string) error {
	if err == nil {
		return nil
	}

	// Already classified further down the stack
	if apperr.IsAppError(err) {
		return err
	}

	// 1. Not Found mapping
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}

	// 2. Constraint violations
	if pgError := asPgError(err); pgError != nil {
		switch pgError.Code {
		case pgerrcode.UniqueViolation:
			return apperr.Conflict("Resource already exists").WithCause(err)
		case pgerrcode.ForeignKeyViolation:
			return apperr.NotFound("Referenced resource").WithCause(err)
		case pgerrcode.CheckViolation:
			return apperr.ValidationError("Value out of range").WithReason(apperr.ReasonOutOfRange).WithCause(err)
		case pgerrcode.NotNullViolation:
			return apperr.ValidationError("Required value missing").WithReason(apperr.ReasonRequired).WithCause(err)
		case pgerrcode.DeadlockDetected, pgerrcode.SerializationFailure:
			return apperr.Conflict("Concurrent update, retry").WithCause(err)
		}
	}

	// 3. Unknown query errors become Internal Server Errors
	return apperr.Internal(errors.Join(errors.New(action), err))
}

// IsUniqueViolation reports whether err is a unique violation on the named
// constraint. An empty constraint matches any unique violation.
func IsUniqueViolation(err error, constraint string) bool {
	return isViolation(err, pgerrcode.UniqueViolation, constraint)
}

// IsForeignKeyViolation reports whether err is a foreign key violation on the
// named constraint. An empty constraint matches any foreign key violation.
func IsForeignKeyViolation(err error, constraint string) bool {
	return isViolation(err, pgerrcode.ForeignKeyViolation, constraint)
}

func isViolation(err error, code, constraint string) bool {
	pgError := asPgError(err)
	if pgError == nil || pgError.Code != code {
		return false
	}
	return constraint == "" || pgError.ConstraintName == constraint
}

func asPgError(err error) *pgconn.PgError {
	var pgError *pgconn.PgError
	if errors.As(err, &pgError) {
		return pgError
	}
	return nil
}
