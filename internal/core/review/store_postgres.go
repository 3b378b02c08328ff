// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package review

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/yamdb/internal/core/rating"
	"github.com/taibuivan/yamdb/internal/platform/apperr"
	"github.com/taibuivan/yamdb/internal/platform/database/schema"
	"github.com/taibuivan/yamdb/internal/platform/dberr"
	"github.com/taibuivan/yamdb/internal/platform/postgres"
	"github.com/taibuivan/yamdb/pkg/pagination"
)

// ErrDuplicateReview is returned when an author reviews the same title twice.
var ErrDuplicateReview = apperr.Conflict("You have already reviewed this title").
	WithReason(apperr.ReasonDuplicateReview)

type postgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs a PostgreSQL backed review ledger.
func NewPostgresRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

// reviewSelect joins the author's username for display.
var reviewSelect = fmt.Sprintf(`
	SELECT r.%[1]s, r.%[2]s, r.%[3]s, COALESCE(a.%[4]s, ''), r.%[5]s, r.%[6]s, r.%[7]s, r.%[8]s
	FROM %[9]s r
	LEFT JOIN %[10]s a ON a.%[11]s = r.%[3]s`,
	schema.SocialReview.ID, schema.SocialReview.TitleID, schema.SocialReview.AuthorID,
	schema.UserAccount.Username,
	schema.SocialReview.Text, schema.SocialReview.Score,
	schema.SocialReview.CreatedAt, schema.SocialReview.UpdatedAt,
	schema.SocialReview.Table, schema.UserAccount.Table, schema.UserAccount.ID,
)

func scanReview(row pgx.Row, extra ...any) (*Review, error) {
	review := &Review{}
	targets := append([]any{
		&review.ID, &review.TitleID, &review.AuthorID, &review.Author,
		&review.Text, &review.Score, &review.CreatedAt, &review.UpdatedAt,
	}, extra...)

	if err := row.Scan(targets...); err != nil {
		return nil, err
	}
	return review, nil
}

func (repository *postgresRepository) ListForTitle(context context.Context, titleID string, page pagination.Params) ([]*Review, int, error) {
	if err := repository.titleExists(context, titleID); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT q.*, COUNT(*) OVER() FROM (%s WHERE r.%s = $1) q
		ORDER BY q.%s ASC, q.%s ASC
		LIMIT $2 OFFSET $3`,
		reviewSelect, schema.SocialReview.TitleID,
		schema.SocialReview.CreatedAt, schema.SocialReview.ID,
	)

	rows, err := repository.pool.Query(context, query, titleID, page.Limit, page.Offset())
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_reviews")
	}
	defer rows.Close()

	reviews := make([]*Review, 0)
	total := 0
	for rows.Next() {
		review, err := scanReview(rows, &total)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "scan_review")
		}
		reviews = append(reviews, review)
	}

	return reviews, total, dberr.Wrap(rows.Err(), "list_reviews")
}

func (repository *postgresRepository) FindByID(context context.Context, titleID, reviewID string) (*Review, error) {
	query := reviewSelect + fmt.Sprintf(` WHERE r.%s = $1 AND r.%s = $2`,
		schema.SocialReview.ID, schema.SocialReview.TitleID)

	review, err := scanReview(repository.pool.QueryRow(context, query, reviewID, titleID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("Review")
	}
	if err != nil {
		return nil, dberr.Wrap(err, "get_review")
	}
	return review, nil
}

/*
Create inserts the review and recomputes the title rating.

Description: The title lock is taken first, so two authors reviewing the same
title serialize and the second recompute sees the first review. A unique
violation on (titleid, authorid) rolls everything back.
*/
func (repository *postgresRepository) Create(context context.Context, review *Review) (*int, error) {
	var value *int

	err := postgres.InTx(context, repository.pool, func(transaction pgx.Tx) error {
		if err := rating.LockTitle(context, transaction, review.TitleID); err != nil {
			return err
		}

		query := fmt.Sprintf(`
			INSERT INTO %s (%s, %s, %s, %s, %s)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING %s, %s`,
			schema.SocialReview.Table,
			schema.SocialReview.ID, schema.SocialReview.TitleID, schema.SocialReview.AuthorID,
			schema.SocialReview.Text, schema.SocialReview.Score,
			schema.SocialReview.CreatedAt, schema.SocialReview.UpdatedAt,
		)

		err := transaction.QueryRow(context, query,
			review.ID, review.TitleID, review.AuthorID, review.Text, review.Score,
		).Scan(&review.CreatedAt, &review.UpdatedAt)
		if dberr.IsUniqueViolation(err, schema.ConstraintReviewTitleAuthor) {
			return ErrDuplicateReview
		}
		if err != nil {
			return dberr.Wrap(err, "create_review")
		}

		value, err = rating.RecomputeTx(context, transaction, review.TitleID)
		return err
	})

	return value, err
}

// Update rewrites text and score, then recomputes the rating.
func (repository *postgresRepository) Update(context context.Context, review *Review) (*int, error) {
	var value *int

	err := postgres.InTx(context, repository.pool, func(transaction pgx.Tx) error {
		if err := rating.LockTitle(context, transaction, review.TitleID); err != nil {
			return err
		}

		query := fmt.Sprintf(`
			UPDATE %s SET %s = $3, %s = $4, %s = now()
			WHERE %s = $1 AND %s = $2
			RETURNING %s`,
			schema.SocialReview.Table,
			schema.SocialReview.Text, schema.SocialReview.Score, schema.SocialReview.UpdatedAt,
			schema.SocialReview.ID, schema.SocialReview.TitleID,
			schema.SocialReview.UpdatedAt,
		)

		err := transaction.QueryRow(context, query,
			review.ID, review.TitleID, review.Text, review.Score,
		).Scan(&review.UpdatedAt)
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.NotFound("Review")
		}
		if err != nil {
			return dberr.Wrap(err, "update_review")
		}

		value, err = rating.RecomputeTx(context, transaction, review.TitleID)
		return err
	})

	return value, err
}

// Delete removes the review, cascading its comments, then recomputes the rating.
func (repository *postgresRepository) Delete(context context.Context, titleID, reviewID string) (*int, error) {
	var value *int

	err := postgres.InTx(context, repository.pool, func(transaction pgx.Tx) error {
		if err := rating.LockTitle(context, transaction, titleID); err != nil {
			return err
		}

		query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = $2`,
			schema.SocialReview.Table, schema.SocialReview.ID, schema.SocialReview.TitleID)

		tag, err := transaction.Exec(context, query, reviewID, titleID)
		if err != nil {
			return dberr.Wrap(err, "delete_review")
		}
		if tag.RowsAffected() == 0 {
			return apperr.NotFound("Review")
		}

		value, err = rating.RecomputeTx(context, transaction, titleID)
		return err
	})

	return value, err
}

func (repository *postgresRepository) titleExists(context context.Context, titleID string) error {
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1)`, schema.CoreTitle.Table, schema.CoreTitle.ID)

	var exists bool
	if err := repository.pool.QueryRow(context, query, titleID).Scan(&exists); err != nil {
		return dberr.Wrap(err, "title_exists")
	}
	if !exists {
		return apperr.NotFound("Title")
	}
	return nil
}
