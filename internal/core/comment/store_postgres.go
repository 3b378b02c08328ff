// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package comment

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/yamdb/internal/platform/apperr"
	"github.com/taibuivan/yamdb/internal/platform/database/schema"
	"github.com/taibuivan/yamdb/internal/platform/dberr"
	"github.com/taibuivan/yamdb/pkg/pagination"
)

const (
	reviewForeignKey = "comment_reviewid_fkey"
	authorForeignKey = "comment_authorid_fkey"
)

type postgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs a PostgreSQL backed comment store.
func NewPostgresRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

var commentSelect = fmt.Sprintf(`
	SELECT c.%[1]s, c.%[2]s, c.%[3]s, COALESCE(a.%[4]s, ''), c.%[5]s, c.%[6]s, c.%[7]s
	FROM %[8]s c
	LEFT JOIN %[9]s a ON a.%[10]s = c.%[3]s`,
	schema.SocialComment.ID, schema.SocialComment.ReviewID, schema.SocialComment.AuthorID,
	schema.UserAccount.Username,
	schema.SocialComment.Text, schema.SocialComment.CreatedAt, schema.SocialComment.UpdatedAt,
	schema.SocialComment.Table, schema.UserAccount.Table, schema.UserAccount.ID,
)

func (repository *postgresRepository) ListForReview(context context.Context, reviewID string, page pagination.Params) ([]*Comment, int, error) {
	query := fmt.Sprintf(`
		SELECT q.*, COUNT(*) OVER() FROM (%s WHERE c.%s = $1) q
		ORDER BY q.%s ASC, q.%s ASC
		LIMIT $2 OFFSET $3`,
		commentSelect, schema.SocialComment.ReviewID,
		schema.SocialComment.CreatedAt, schema.SocialComment.ID,
	)

	rows, err := repository.pool.Query(context, query, reviewID, page.Limit, page.Offset())
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_comments")
	}
	defer rows.Close()

	comments := make([]*Comment, 0)
	total := 0
	for rows.Next() {
		comment := &Comment{}
		if err := rows.Scan(
			&comment.ID, &comment.ReviewID, &comment.AuthorID, &comment.Author,
			&comment.Text, &comment.CreatedAt, &comment.UpdatedAt, &total,
		); err != nil {
			return nil, 0, dberr.Wrap(err, "scan_comment")
		}
		comments = append(comments, comment)
	}

	return comments, total, dberr.Wrap(rows.Err(), "list_comments")
}

func (repository *postgresRepository) FindByID(context context.Context, reviewID, commentID string) (*Comment, error) {
	query := commentSelect + fmt.Sprintf(` WHERE c.%s = $1 AND c.%s = $2`,
		schema.SocialComment.ID, schema.SocialComment.ReviewID)

	comment := &Comment{}
	err := repository.pool.QueryRow(context, query, commentID, reviewID).Scan(
		&comment.ID, &comment.ReviewID, &comment.AuthorID, &comment.Author,
		&comment.Text, &comment.CreatedAt, &comment.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("Comment")
	}
	if err != nil {
		return nil, dberr.Wrap(err, "get_comment")
	}
	return comment, nil
}

func (repository *postgresRepository) Create(context context.Context, comment *Comment) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s) VALUES ($1, $2, $3, $4)
		RETURNING %s, %s`,
		schema.SocialComment.Table,
		schema.SocialComment.ID, schema.SocialComment.ReviewID, schema.SocialComment.AuthorID, schema.SocialComment.Text,
		schema.SocialComment.CreatedAt, schema.SocialComment.UpdatedAt,
	)

	err := repository.pool.QueryRow(context, query,
		comment.ID, comment.ReviewID, comment.AuthorID, comment.Text,
	).Scan(&comment.CreatedAt, &comment.UpdatedAt)

	// The review may vanish between lookup and insert
	if dberr.IsForeignKeyViolation(err, reviewForeignKey) {
		return apperr.NotFound("Review")
	}
	if dberr.IsForeignKeyViolation(err, authorForeignKey) {
		return apperr.NotFound("User")
	}
	return dberr.Wrap(err, "create_comment")
}

func (repository *postgresRepository) UpdateText(context context.Context, comment *Comment) error {
	query := fmt.Sprintf(`
		UPDATE %s SET %s = $3, %s = now()
		WHERE %s = $1 AND %s = $2
		RETURNING %s`,
		schema.SocialComment.Table,
		schema.SocialComment.Text, schema.SocialComment.UpdatedAt,
		schema.SocialComment.ID, schema.SocialComment.ReviewID,
		schema.SocialComment.UpdatedAt,
	)

	err := repository.pool.QueryRow(context, query, comment.ID, comment.ReviewID, comment.Text).Scan(&comment.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound("Comment")
	}
	return dberr.Wrap(err, "update_comment")
}

func (repository *postgresRepository) Delete(context context.Context, reviewID, commentID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = $2`,
		schema.SocialComment.Table, schema.SocialComment.ID, schema.SocialComment.ReviewID)

	tag, err := repository.pool.Exec(context, query, commentID, reviewID)
	if err != nil {
		return dberr.Wrap(err, "delete_comment")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Comment")
	}
	return nil
}
