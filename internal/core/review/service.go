// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package review

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/taibuivan/yamdb/internal/core/policy"
	"github.com/taibuivan/yamdb/internal/platform/constants"
	"github.com/taibuivan/yamdb/internal/platform/validate"
	"github.com/taibuivan/yamdb/pkg/pagination"
	"github.com/taibuivan/yamdb/pkg/uuidv7"
)

const resourceName = "review"

// # Service Layer

// Service orchestrates the review ledger. Every mutation is checked against
// [policy.Authorize] before storage is touched.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService constructs a new review [Service].
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// # Lookups

// ListReviews returns a title's reviews, oldest first.
func (service *Service) ListReviews(context context.Context, titleID string, page pagination.Params) ([]*Review, int, error) {
	return service.repo.ListForTitle(context, titleID, page.Normalize())
}

// GetReview fetches one review of a title.
func (service *Service) GetReview(context context.Context, titleID, reviewID string) (*Review, error) {
	return service.repo.FindByID(context, titleID, reviewID)
}

// # Mutations

/*
CreateReview records the actor's review of a title.

Description: Any authenticated actor may review. Text and score are both
required. The title rating is recomputed in the same transaction.

Returns:
  - *Review: The persisted review
  - error: FORBIDDEN, VALIDATION_ERROR (REQUIRED / OUT_OF_RANGE),
    NOT_FOUND (title) or CONFLICT (DUPLICATE_REVIEW)
*/
func (service *Service) CreateReview(context context.Context, actor *policy.Actor, titleID string, input Input) (*Review, error) {
	if err := policy.Authorize(actor, "", policy.ActionCreate, resourceName); err != nil {
		return nil, err
	}

	validator := &validate.Validator{}
	if input.Text == nil {
		validator.Required(FieldText, "")
	}
	if input.Score == nil {
		validator.Required(FieldScore, "")
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	review := &Review{
		ID:       uuidv7.New(),
		TitleID:  titleID,
		AuthorID: actor.UserID,
		Text:     strings.TrimSpace(*input.Text),
		Score:    *input.Score,
	}
	if err := validateReview(review); err != nil {
		return nil, err
	}

	value, err := service.repo.Create(context, review)
	if err != nil {
		return nil, fmt.Errorf("review_create_failed: %w", err)
	}

	service.logger.InfoContext(context, "review_created",
		slog.String("review_id", review.ID),
		slog.String("title_id", titleID),
		slog.Any("rating", value),
	)
	return review, nil
}

/*
UpdateReview edits text and/or score.

Description: Only the author or a moderator/admin may edit. A denied call
returns FORBIDDEN and leaves the review and the title rating untouched.
*/
func (service *Service) UpdateReview(context context.Context, actor *policy.Actor, titleID, reviewID string, input Input) (*Review, error) {
	review, err := service.repo.FindByID(context, titleID, reviewID)
	if err != nil {
		return nil, err
	}

	if err := policy.Authorize(actor, review.AuthorID, policy.ActionUpdate, resourceName); err != nil {
		return nil, err
	}

	if input.Text != nil {
		review.Text = strings.TrimSpace(*input.Text)
	}
	if input.Score != nil {
		review.Score = *input.Score
	}
	if err := validateReview(review); err != nil {
		return nil, err
	}

	value, err := service.repo.Update(context, review)
	if err != nil {
		return nil, fmt.Errorf("review_update_failed: %w", err)
	}

	service.logger.InfoContext(context, "review_updated",
		slog.String("review_id", review.ID),
		slog.String("title_id", titleID),
		slog.Any("rating", value),
	)
	return review, nil
}

// DeleteReview removes a review and its comments, then recomputes the rating.
func (service *Service) DeleteReview(context context.Context, actor *policy.Actor, titleID, reviewID string) error {
	review, err := service.repo.FindByID(context, titleID, reviewID)
	if err != nil {
		return err
	}

	if err := policy.Authorize(actor, review.AuthorID, policy.ActionDelete, resourceName); err != nil {
		return err
	}

	value, err := service.repo.Delete(context, titleID, reviewID)
	if err != nil {
		return fmt.Errorf("review_delete_failed: %w", err)
	}

	service.logger.InfoContext(context, "review_deleted",
		slog.String("review_id", reviewID),
		slog.String("title_id", titleID),
		slog.Any("rating", value),
	)
	return nil
}

func validateReview(review *Review) error {
	validator := &validate.Validator{}
	validator.Range(FieldScore, review.Score, constants.MinScore, constants.MaxScore)
	validator.Required(FieldText, review.Text).MaxLen(FieldText, review.Text, constants.MaxReviewLength)
	return validator.Err()
}
