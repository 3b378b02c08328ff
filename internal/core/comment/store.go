// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package comment

import (
	"context"

	"github.com/taibuivan/yamdb/pkg/pagination"
)

// Repository defines the persistence contract for comments.
type Repository interface {
	// ListForReview returns a page of comments ordered by creation time, then id.
	ListForReview(context context.Context, reviewID string, page pagination.Params) ([]*Comment, int, error)

	/*
		FindByID retrieves a comment that belongs to reviewID.

		Returns:
		  - error: apperr.NotFound("Comment") if absent or attached elsewhere
	*/
	FindByID(context context.Context, reviewID, commentID string) (*Comment, error)

	// Create inserts the comment and fills CreatedAt.
	Create(context context.Context, comment *Comment) error

	// UpdateText rewrites the comment body.
	UpdateText(context context.Context, comment *Comment) error

	// Delete removes the comment.
	Delete(context context.Context, reviewID, commentID string) error
}
