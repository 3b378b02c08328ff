// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package review_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yamdb/internal/core/policy"
	"github.com/taibuivan/yamdb/internal/core/review"
	"github.com/taibuivan/yamdb/internal/platform/apperr"
	"github.com/taibuivan/yamdb/internal/platform/postgres/pgtest"
	"github.com/taibuivan/yamdb/internal/platform/sec"
	"github.com/taibuivan/yamdb/pkg/pagination"
	"github.com/taibuivan/yamdb/pkg/pointer"
)

/*
TestPostgres_SolarisScenario replays the reference scenario against Postgres.
*/
func TestPostgres_SolarisScenario(t *testing.T) {
	pool := pgtest.New(t)
	ctx := context.Background()
	service := review.NewService(review.NewPostgresRepository(pool), slog.New(slog.NewTextHandler(io.Discard, nil)))

	titleID := pgtest.InsertTitle(t, pool, "Solaris", 1972)
	actorA := &policy.Actor{UserID: pgtest.InsertUser(t, pool, "a@example.com", sec.RoleUser), Role: sec.RoleUser}
	actorB := &policy.Actor{UserID: pgtest.InsertUser(t, pool, "b@example.com", sec.RoleUser), Role: sec.RoleUser}

	reviewA, err := service.CreateReview(ctx, actorA, titleID, input("A masterpiece", 8))
	require.NoError(t, err)
	assert.False(t, reviewA.CreatedAt.IsZero())

	_, err = service.CreateReview(ctx, actorB, titleID, input("Slow", 6))
	require.NoError(t, err)
	assert.Equal(t, pointer.To(7), pgtest.Rating(t, pool, titleID))

	listed, total, err := service.ListReviews(ctx, titleID, pagination.Params{Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Equal(t, 2, total)
	assert.Equal(t, reviewA.ID, listed[0].ID)

	require.NoError(t, service.DeleteReview(ctx, actorA, titleID, reviewA.ID))
	assert.Equal(t, pointer.To(6), pgtest.Rating(t, pool, titleID))

	_, err = service.CreateReview(ctx, actorB, titleID, input("Again", 3))
	assert.True(t, apperr.HasReason(err, apperr.ReasonDuplicateReview))
	assert.Equal(t, pointer.To(6), pgtest.Rating(t, pool, titleID))

	_, _, err = service.ListReviews(ctx, pgtest.InsertTitle(t, pool, "Empty", 2000), pagination.Params{})
	require.NoError(t, err)
}

/*
TestPostgres_ConcurrentReviews fires many reviews at one title at once; the
title lock makes the final rating match the full committed set.
*/
func TestPostgres_ConcurrentReviews(t *testing.T) {
	pool := pgtest.New(t)
	ctx := context.Background()
	service := review.NewService(review.NewPostgresRepository(pool), slog.New(slog.NewTextHandler(io.Discard, nil)))

	titleID := pgtest.InsertTitle(t, pool, "Stalker", 1979)

	const reviewers = 12
	actors := make([]*policy.Actor, reviewers)
	for i := range actors {
		actors[i] = &policy.Actor{
			UserID: pgtest.InsertUser(t, pool, fmt.Sprintf("u%d@example.com", i), sec.RoleUser),
			Role:   sec.RoleUser,
		}
	}

	var wg sync.WaitGroup
	errs := make(chan error, reviewers)
	for i, actor := range actors {
		wg.Add(1)
		go func(score int, actor *policy.Actor) {
			defer wg.Done()
			_, err := service.CreateReview(ctx, actor, titleID, input("concurrent", score))
			errs <- err
		}(i%10+1, actor)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	// Scores 1..10, 1, 2: sum 58 over 12 rounds half up to 5.
	assert.Equal(t, pointer.To(5), pgtest.Rating(t, pool, titleID))
}

func TestPostgres_UpdateAndCascade(t *testing.T) {
	pool := pgtest.New(t)
	ctx := context.Background()
	repository := review.NewPostgresRepository(pool)
	service := review.NewService(repository, slog.New(slog.NewTextHandler(io.Discard, nil)))

	titleID := pgtest.InsertTitle(t, pool, "Mirror", 1975)
	author := &policy.Actor{UserID: pgtest.InsertUser(t, pool, "a@example.com", sec.RoleUser), Role: sec.RoleUser}
	stranger := &policy.Actor{UserID: pgtest.InsertUser(t, pool, "s@example.com", sec.RoleUser), Role: sec.RoleUser}

	created, err := service.CreateReview(ctx, author, titleID, input("Good", 6))
	require.NoError(t, err)

	_, err = service.UpdateReview(ctx, stranger, titleID, created.ID, review.Input{Score: pointer.To(1)})
	assert.True(t, apperr.HasCode(err, apperr.CodeForbidden))
	assert.Equal(t, pointer.To(6), pgtest.Rating(t, pool, titleID))

	updated, err := service.UpdateReview(ctx, author, titleID, created.ID, review.Input{Score: pointer.To(9)})
	require.NoError(t, err)
	assert.Equal(t, 9, updated.Score)
	assert.Equal(t, pointer.To(9), pgtest.Rating(t, pool, titleID))

	_, err = pool.Exec(ctx,
		`INSERT INTO social.comment (id, reviewid, authorid, text) VALUES (gen_random_uuid(), $1, $2, 'agree')`,
		created.ID, stranger.UserID)
	require.NoError(t, err)

	require.NoError(t, service.DeleteReview(ctx, author, titleID, created.ID))
	assert.Equal(t, 0, pgtest.Count(t, pool, "social.comment", "reviewid = $1", created.ID))
	assert.Nil(t, pgtest.Rating(t, pool, titleID))
}
