// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package comment

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/taibuivan/yamdb/internal/core/policy"
	"github.com/taibuivan/yamdb/internal/core/review"
	"github.com/taibuivan/yamdb/internal/platform/constants"
	"github.com/taibuivan/yamdb/internal/platform/validate"
	"github.com/taibuivan/yamdb/pkg/pagination"
	"github.com/taibuivan/yamdb/pkg/uuidv7"
)

const resourceName = "comment"

// ReviewFinder resolves the review a comment hangs off. [*review.Service]
// satisfies it.
type ReviewFinder interface {
	GetReview(context context.Context, titleID, reviewID string) (*review.Review, error)
}

// Service orchestrates the comment thread.
type Service struct {
	repo    Repository
	reviews ReviewFinder
	logger  *slog.Logger
}

// NewService constructs a new comment [Service].
func NewService(repo Repository, reviews ReviewFinder, logger *slog.Logger) *Service {
	return &Service{repo: repo, reviews: reviews, logger: logger}
}

// ListComments returns the review's comments, oldest first.
func (service *Service) ListComments(context context.Context, titleID, reviewID string, page pagination.Params) ([]*Comment, int, error) {
	if _, err := service.reviews.GetReview(context, titleID, reviewID); err != nil {
		return nil, 0, err
	}
	return service.repo.ListForReview(context, reviewID, page.Normalize())
}

// GetComment fetches one comment of a review.
func (service *Service) GetComment(context context.Context, titleID, reviewID, commentID string) (*Comment, error) {
	if _, err := service.reviews.GetReview(context, titleID, reviewID); err != nil {
		return nil, err
	}
	return service.repo.FindByID(context, reviewID, commentID)
}

/*
CreateComment attaches a comment to a review. Any authenticated actor may comment.

Returns:
  - error: FORBIDDEN (anonymous), VALIDATION_ERROR or NOT_FOUND (title/review)
*/
func (service *Service) CreateComment(context context.Context, actor *policy.Actor, titleID, reviewID string, text *string) (*Comment, error) {
	if err := policy.Authorize(actor, "", policy.ActionCreate, resourceName); err != nil {
		return nil, err
	}

	body, err := validateText(text)
	if err != nil {
		return nil, err
	}

	if _, err := service.reviews.GetReview(context, titleID, reviewID); err != nil {
		return nil, err
	}

	comment := &Comment{
		ID:       uuidv7.New(),
		ReviewID: reviewID,
		AuthorID: actor.UserID,
		Text:     body,
	}
	if err := service.repo.Create(context, comment); err != nil {
		return nil, fmt.Errorf("comment_create_failed: %w", err)
	}

	service.logger.InfoContext(context, "comment_created",
		slog.String("comment_id", comment.ID),
		slog.String("review_id", reviewID),
	)
	return comment, nil
}

// UpdateComment rewrites the body; author or moderator/admin only.
func (service *Service) UpdateComment(context context.Context, actor *policy.Actor, titleID, reviewID, commentID string, text *string) (*Comment, error) {
	comment, err := service.GetComment(context, titleID, reviewID, commentID)
	if err != nil {
		return nil, err
	}

	if err := policy.Authorize(actor, comment.AuthorID, policy.ActionUpdate, resourceName); err != nil {
		return nil, err
	}

	if text == nil {
		return comment, nil
	}

	body, err := validateText(text)
	if err != nil {
		return nil, err
	}
	comment.Text = body

	if err := service.repo.UpdateText(context, comment); err != nil {
		return nil, fmt.Errorf("comment_update_failed: %w", err)
	}

	service.logger.InfoContext(context, "comment_updated", slog.String("comment_id", comment.ID))
	return comment, nil
}

// DeleteComment removes a comment; author or moderator/admin only.
func (service *Service) DeleteComment(context context.Context, actor *policy.Actor, titleID, reviewID, commentID string) error {
	comment, err := service.GetComment(context, titleID, reviewID, commentID)
	if err != nil {
		return err
	}

	if err := policy.Authorize(actor, comment.AuthorID, policy.ActionDelete, resourceName); err != nil {
		return err
	}

	if err := service.repo.Delete(context, reviewID, commentID); err != nil {
		return fmt.Errorf("comment_delete_failed: %w", err)
	}

	service.logger.InfoContext(context, "comment_deleted", slog.String("comment_id", commentID))
	return nil
}

func validateText(text *string) (string, error) {
	body := ""
	if text != nil {
		body = strings.TrimSpace(*text)
	}

	validator := &validate.Validator{}
	validator.Required(FieldText, body).MaxLen(FieldText, body, constants.MaxCommentLength)
	return body, validator.Err()
}
