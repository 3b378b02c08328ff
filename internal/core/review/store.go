// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package review

import (
	"context"

	"github.com/taibuivan/yamdb/pkg/pagination"
)

// Repository defines the persistence contract for the review ledger.
//
// Every mutating method runs in one transaction that locks the title row,
// writes the review and recomputes the title rating. The returned *int is the
// rating committed with the mutation.
type Repository interface {
	/*
		ListForTitle returns a page of the title's reviews ordered by creation
		time, then id.

		Returns:
		  - error: apperr.NotFound("Title") if the title does not exist
	*/
	ListForTitle(context context.Context, titleID string, page pagination.Params) ([]*Review, int, error)

	/*
		FindByID retrieves a review that belongs to titleID.

		Returns:
		  - error: apperr.NotFound("Review") if absent or attached to another title
	*/
	FindByID(context context.Context, titleID, reviewID string) (*Review, error)

	/*
		Create inserts the review. CreatedAt is filled from storage.

		Returns:
		  - error: apperr.Conflict(DUPLICATE_REVIEW) if the author already reviewed the title
	*/
	Create(context context.Context, review *Review) (*int, error)

	// Update rewrites text and score of an existing review.
	Update(context context.Context, review *Review) (*int, error)

	// Delete removes the review; its comments cascade.
	Delete(context context.Context, titleID, reviewID string) (*int, error)
}
