// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package rating owns the derived core.title.rating column.

A title's rating is the arithmetic mean of its review scores rounded half up
to an integer, or NULL when the title has no reviews. It is recomputed inside
the same transaction as every review mutation, after the title row has been
locked, so a committed rating always reflects the full committed review set.
Nothing else in the repository writes the column.
*/
package rating

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/yamdb/internal/platform/apperr"
	"github.com/taibuivan/yamdb/internal/platform/dberr"
	"github.com/taibuivan/yamdb/internal/platform/postgres"
	"github.com/taibuivan/yamdb/pkg/slice"
)

// Compute returns round-half-up(mean(scores)), or nil for no scores.
//
// Integer arithmetic keeps the result exact: for n scores summing to s,
// floor(s/n + 1/2) == (2s + n) / (2n) for non-negative s.
func Compute(scores []int) *int {
	if len(scores) == 0 {
		return nil
	}

	sum := slice.Reduce(scores, 0, func(total, score int) int { return total + score })

	n := len(scores)
	rounded := (2*sum + n) / (2 * n)
	return &rounded
}

// LockTitle takes a row lock on the title so concurrent review mutations on it
// serialize. It returns NOT_FOUND if the title does not exist.
func LockTitle(ctx context.Context, tx postgres.Querier, titleID string) error {
	var id string
	err := tx.QueryRow(ctx, `SELECT id FROM core.title WHERE id = $1 FOR UPDATE`, titleID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound("Title")
	}
	return dberr.Wrap(err, "lock_title")
}

// LockTitles locks titleIDs in the given order and returns the ones that
// still exist. Titles deleted concurrently are skipped.
func LockTitles(ctx context.Context, tx postgres.Querier, titleIDs []string) ([]string, error) {
	locked := make([]string, 0, len(titleIDs))
	for _, titleID := range titleIDs {
		err := LockTitle(ctx, tx, titleID)
		if apperr.HasCode(err, apperr.CodeNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		locked = append(locked, titleID)
	}
	return locked, nil
}

// RecomputeTx reads the title's current scores and stores the new rating,
// all through tx. Callers must hold the title lock (see [LockTitle]).
func RecomputeTx(ctx context.Context, tx postgres.Querier, titleID string) (*int, error) {
	rows, err := tx.Query(ctx, `SELECT score FROM social.review WHERE titleid = $1`, titleID)
	if err != nil {
		return nil, dberr.Wrap(err, "rating_read_scores")
	}

	scores, err := pgx.CollectRows(rows, pgx.RowTo[int])
	if err != nil {
		return nil, dberr.Wrap(err, "rating_collect_scores")
	}

	value := Compute(scores)

	tag, err := tx.Exec(ctx, `UPDATE core.title SET rating = $2 WHERE id = $1`, titleID, value)
	if err != nil {
		return nil, dberr.Wrap(err, "rating_write")
	}
	if tag.RowsAffected() == 0 {
		return nil, apperr.NotFound("Title")
	}

	return value, nil
}

// # Standalone Recomputation

// Aggregator recomputes ratings outside a review mutation, e.g. after bulk
// imports or from the admin CLI. Running it twice yields the same value.
type Aggregator struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewAggregator constructs an [Aggregator].
func NewAggregator(pool *pgxpool.Pool, logger *slog.Logger) *Aggregator {
	return &Aggregator{pool: pool, logger: logger}
}

// Recompute locks the title and rewrites its rating in one transaction.
func (aggregator *Aggregator) Recompute(ctx context.Context, titleID string) (*int, error) {
	var value *int

	err := postgres.InTx(ctx, aggregator.pool, func(tx pgx.Tx) error {
		if err := LockTitle(ctx, tx, titleID); err != nil {
			return err
		}

		var err error
		value, err = RecomputeTx(ctx, tx, titleID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("rating_recompute_failed: %w", err)
	}

	aggregator.logger.Info("title_rating_recomputed",
		slog.String("title_id", titleID),
		slog.Any("rating", value),
	)

	return value, nil
}

// RecomputeAll repairs every title's rating, one transaction per title, and
// returns how many titles were processed.
func (aggregator *Aggregator) RecomputeAll(ctx context.Context) (int, error) {
	rows, err := aggregator.pool.Query(ctx, `SELECT id FROM core.title ORDER BY id`)
	if err != nil {
		return 0, dberr.Wrap(err, "rating_list_titles")
	}

	titleIDs, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return 0, dberr.Wrap(err, "rating_collect_titles")
	}

	for _, titleID := range titleIDs {
		if _, err := aggregator.Recompute(ctx, titleID); err != nil {
			// Deleted since the listing.
			if apperr.HasCode(err, apperr.CodeNotFound) {
				continue
			}
			return 0, err
		}
	}

	return len(titleIDs), nil
}
