// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package comment_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yamdb/internal/core/comment"
	"github.com/taibuivan/yamdb/internal/core/policy"
	"github.com/taibuivan/yamdb/internal/core/review"
	"github.com/taibuivan/yamdb/internal/platform/apperr"
	"github.com/taibuivan/yamdb/internal/platform/sec"
	"github.com/taibuivan/yamdb/pkg/pagination"
	"github.com/taibuivan/yamdb/pkg/pointer"
)

type stubReviews map[string]string // reviewID -> titleID

func (s stubReviews) GetReview(_ context.Context, titleID, reviewID string) (*review.Review, error) {
	if s[reviewID] != titleID {
		return nil, apperr.NotFound("Review")
	}
	return &review.Review{ID: reviewID, TitleID: titleID}, nil
}

type memoryComments struct {
	mu       sync.Mutex
	comments map[string]*comment.Comment
	order    []string
}

func (m *memoryComments) ListForReview(_ context.Context, reviewID string, _ pagination.Params) ([]*comment.Comment, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*comment.Comment, 0)
	for _, id := range m.order {
		if c, ok := m.comments[id]; ok && c.ReviewID == reviewID {
			clone := *c
			out = append(out, &clone)
		}
	}
	return out, len(out), nil
}

func (m *memoryComments) FindByID(_ context.Context, reviewID, commentID string) (*comment.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.comments[commentID]
	if !ok || c.ReviewID != reviewID {
		return nil, apperr.NotFound("Comment")
	}
	clone := *c
	return &clone, nil
}

func (m *memoryComments) Create(_ context.Context, c *comment.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	clone := *c
	m.comments[c.ID] = &clone
	m.order = append(m.order, c.ID)
	return nil
}

func (m *memoryComments) UpdateText(_ context.Context, c *comment.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.comments[c.ID].Text = c.Text
	return nil
}

func (m *memoryComments) Delete(_ context.Context, _, commentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.comments, commentID)
	return nil
}

const (
	titleID  = "title-1"
	reviewID = "review-1"
)

var (
	author   = &policy.Actor{UserID: "author", Role: sec.RoleUser}
	stranger = &policy.Actor{UserID: "stranger", Role: sec.RoleUser}
	admin    = &policy.Actor{UserID: "admin", Role: sec.RoleAdmin}
)

func newService() *comment.Service {
	store := &memoryComments{comments: map[string]*comment.Comment{}}
	return comment.NewService(store, stubReviews{reviewID: titleID}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestCreateComment(t *testing.T) {
	service := newService()
	ctx := context.Background()

	created, err := service.CreateComment(ctx, stranger, titleID, reviewID, pointer.To("  Agreed  "))
	require.NoError(t, err)
	assert.Equal(t, "Agreed", created.Text)
	assert.Equal(t, stranger.UserID, created.AuthorID)

	_, err = service.CreateComment(ctx, nil, titleID, reviewID, pointer.To("anon"))
	assert.True(t, apperr.HasCode(err, apperr.CodeForbidden))

	_, err = service.CreateComment(ctx, author, titleID, reviewID, pointer.To(" "))
	assert.True(t, apperr.HasReason(err, apperr.ReasonRequired))

	_, err = service.CreateComment(ctx, author, titleID, reviewID, nil)
	assert.True(t, apperr.HasReason(err, apperr.ReasonRequired))

	_, err = service.CreateComment(ctx, author, "other-title", reviewID, pointer.To("x"))
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))

	listed, total, err := service.ListComments(ctx, titleID, reviewID, pagination.Params{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, created.ID, listed[0].ID)
}

/*
TestCommentPolicy lets authors and staff edit, and nobody else.
*/
func TestCommentPolicy(t *testing.T) {
	service := newService()
	ctx := context.Background()

	created, err := service.CreateComment(ctx, author, titleID, reviewID, pointer.To("first"))
	require.NoError(t, err)

	_, err = service.UpdateComment(ctx, stranger, titleID, reviewID, created.ID, pointer.To("hijack"))
	assert.True(t, apperr.HasCode(err, apperr.CodeForbidden))

	assert.True(t, apperr.HasCode(service.DeleteComment(ctx, stranger, titleID, reviewID, created.ID), apperr.CodeForbidden))

	stored, err := service.GetComment(ctx, titleID, reviewID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "first", stored.Text)

	updated, err := service.UpdateComment(ctx, author, titleID, reviewID, created.ID, pointer.To("edited"))
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Text)

	require.NoError(t, service.DeleteComment(ctx, admin, titleID, reviewID, created.ID))

	_, err = service.GetComment(ctx, titleID, reviewID, created.ID)
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))
}
