// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package catalog provides the PostgreSQL implementation for the catalog's data access.

  - JSON Aggregation: a title's genres come back in the same round-trip.
  - Window Functions: COUNT(*) OVER() returns the total without a second query.
  - Transactions: a title and its genre edges are written atomically.
*/
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/yamdb/internal/platform/apperr"
	"github.com/taibuivan/yamdb/internal/platform/database/schema"
	"github.com/taibuivan/yamdb/internal/platform/dberr"
	"github.com/taibuivan/yamdb/internal/platform/postgres"
	"github.com/taibuivan/yamdb/pkg/pagination"
)

// # Vocabulary Repository

type termRepository struct {
	pool       *pgxpool.Pool
	table      schema.CoreVocabularyTable
	kind       Kind
	constraint string
}

// NewCategoryRepository constructs a PostgreSQL backed category store.
func NewCategoryRepository(pool *pgxpool.Pool) TermRepository {
	return &termRepository{pool: pool, table: schema.CoreCategory, kind: KindCategory, constraint: schema.ConstraintCategorySlug}
}

// NewGenreRepository constructs a PostgreSQL backed genre store.
func NewGenreRepository(pool *pgxpool.Pool) TermRepository {
	return &termRepository{pool: pool, table: schema.CoreGenre, kind: KindGenre, constraint: schema.ConstraintGenreSlug}
}

func (repository *termRepository) List(context context.Context, search string, page pagination.Params) ([]*Term, int, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, COUNT(*) OVER()
		FROM %s
		WHERE ($1 = '' OR %s ILIKE '%%' || $1 || '%%')
		ORDER BY %s ASC, %s ASC
		LIMIT $2 OFFSET $3`,
		repository.table.ID, repository.table.Name, repository.table.Slug,
		repository.table.Table,
		repository.table.Name,
		repository.table.Name, repository.table.Slug,
	)

	rows, err := repository.pool.Query(context, query, search, page.Limit, page.Offset())
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_terms")
	}
	defer rows.Close()

	terms := make([]*Term, 0)
	total := 0
	for rows.Next() {
		term := &Term{}
		if err := rows.Scan(&term.ID, &term.Name, &term.Slug, &total); err != nil {
			return nil, 0, dberr.Wrap(err, "scan_term")
		}
		terms = append(terms, term)
	}

	return terms, total, dberr.Wrap(rows.Err(), "list_terms")
}

func (repository *termRepository) FindBySlug(context context.Context, slug string) (*Term, error) {
	query := fmt.Sprintf(`SELECT %s, %s, %s FROM %s WHERE %s = $1`,
		repository.table.ID, repository.table.Name, repository.table.Slug,
		repository.table.Table, repository.table.Slug,
	)

	term := &Term{}
	err := repository.pool.QueryRow(context, query, slug).Scan(&term.ID, &term.Name, &term.Slug)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound(repository.kind.Resource())
	}
	if err != nil {
		return nil, dberr.Wrap(err, "get_term_by_slug")
	}
	return term, nil
}

func (repository *termRepository) Create(context context.Context, term *Term) error {
	query := fmt.Sprintf(`INSERT INTO %s (%s, %s, %s) VALUES ($1, $2, $3)`,
		repository.table.Table, repository.table.ID, repository.table.Name, repository.table.Slug,
	)

	_, err := repository.pool.Exec(context, query, term.ID, term.Name, term.Slug)
	if dberr.IsUniqueViolation(err, repository.constraint) {
		return apperr.Conflict(repository.kind.Resource() + " with this slug already exists").
			WithReason(apperr.ReasonDuplicateSlug)
	}
	return dberr.Wrap(err, "create_term")
}

func (repository *termRepository) Rename(context context.Context, slug, name string) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2 WHERE %s = $1`,
		repository.table.Table, repository.table.Name, repository.table.Slug,
	)

	tag, err := repository.pool.Exec(context, query, slug, name)
	if err != nil {
		return dberr.Wrap(err, "rename_term")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(repository.kind.Resource())
	}
	return nil
}

func (repository *termRepository) Delete(context context.Context, slug string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, repository.table.Table, repository.table.Slug)

	tag, err := repository.pool.Exec(context, query, slug)
	if err != nil {
		return dberr.Wrap(err, "delete_term")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(repository.kind.Resource())
	}
	return nil
}

// # Title Repository

type titleRepository struct {
	pool *pgxpool.Pool
}

// NewTitleRepository constructs a PostgreSQL backed title store.
func NewTitleRepository(pool *pgxpool.Pool) TitleRepository {
	return &titleRepository{pool: pool}
}

// titleSelect is shared by List and FindByID; callers append WHERE/ORDER clauses.
var titleSelect = fmt.Sprintf(`
	SELECT
		t.%[1]s, t.%[2]s, t.%[3]s, t.%[4]s, t.%[5]s, t.%[6]s,
		c.%[7]s, c.%[8]s,
		COALESCE((
			SELECT json_agg(json_build_object('name', g.%[7]s, 'slug', g.%[8]s) ORDER BY g.%[8]s)
			FROM %[9]s g
			JOIN %[10]s tg ON tg.%[11]s = g.%[12]s
			WHERE tg.%[13]s = t.%[1]s
		), '[]') AS genres,
		COUNT(*) OVER() AS total_count
	FROM %[14]s t
	LEFT JOIN %[15]s c ON c.%[12]s = t.%[16]s
	WHERE TRUE`,
	schema.CoreTitle.ID, schema.CoreTitle.Name, schema.CoreTitle.Year,
	schema.CoreTitle.Description, schema.CoreTitle.Rating, schema.CoreTitle.CreatedAt,
	schema.CoreCategory.Name, schema.CoreCategory.Slug,
	schema.CoreGenre.Table, schema.TitleGenre.Table, schema.TitleGenre.GenreID, schema.CoreGenre.ID,
	schema.TitleGenre.TitleID,
	schema.CoreTitle.Table, schema.CoreCategory.Table, schema.CoreTitle.CategoryID,
)

/*
List returns a filtered, paginated slice of titles and the total count.

Filters are appended as positional arguments; the genre filter uses EXISTS so
a title with several genres is returned once.
*/
func (repository *titleRepository) List(context context.Context, filter TitleFilter, page pagination.Params) ([]*Title, int, error) {
	var queryBuilder strings.Builder
	var args []any
	argID := 1

	queryBuilder.WriteString(titleSelect)

	if filter.Category != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND c.%s = $%d", schema.CoreCategory.Slug, argID))
		args = append(args, filter.Category)
		argID++
	}

	if filter.Genre != "" {
		queryBuilder.WriteString(fmt.Sprintf(` AND EXISTS (
			SELECT 1 FROM %s tg JOIN %s g ON g.%s = tg.%s
			WHERE tg.%s = t.%s AND g.%s = $%d)`,
			schema.TitleGenre.Table, schema.CoreGenre.Table, schema.CoreGenre.ID, schema.TitleGenre.GenreID,
			schema.TitleGenre.TitleID, schema.CoreTitle.ID, schema.CoreGenre.Slug, argID))
		args = append(args, filter.Genre)
		argID++
	}

	if filter.Year != nil {
		queryBuilder.WriteString(fmt.Sprintf(" AND t.%s = $%d", schema.CoreTitle.Year, argID))
		args = append(args, *filter.Year)
		argID++
	}

	if filter.Name != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND t.%s ILIKE '%%' || $%d || '%%'", schema.CoreTitle.Name, argID))
		args = append(args, filter.Name)
		argID++
	}

	queryBuilder.WriteString(fmt.Sprintf(" ORDER BY t.%s ASC, t.%s ASC LIMIT $%d OFFSET $%d",
		schema.CoreTitle.Name, schema.CoreTitle.ID, argID, argID+1))
	args = append(args, page.Limit, page.Offset())

	rows, err := repository.pool.Query(context, queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_titles")
	}
	defer rows.Close()

	titles := make([]*Title, 0)
	total := 0
	for rows.Next() {
		title, err := scanTitle(rows, &total)
		if err != nil {
			return nil, 0, err
		}
		titles = append(titles, title)
	}

	return titles, total, dberr.Wrap(rows.Err(), "list_titles")
}

func (repository *titleRepository) FindByID(context context.Context, id string) (*Title, error) {
	query := titleSelect + fmt.Sprintf(" AND t.%s = $1", schema.CoreTitle.ID)

	var total int
	title, err := scanTitle(repository.pool.QueryRow(context, query, id), &total)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("Title")
	}
	return title, err
}

func scanTitle(row pgx.Row, total *int) (*Title, error) {
	title := &Title{}
	var categoryName, categorySlug *string
	var genres []byte

	err := row.Scan(
		&title.ID, &title.Name, &title.Year, &title.Description, &title.Rating, &title.CreatedAt,
		&categoryName, &categorySlug,
		&genres,
		total,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, dberr.Wrap(err, "scan_title")
	}

	if categorySlug != nil {
		title.Category = &Term{Name: *categoryName, Slug: *categorySlug}
	}

	title.Genres = make([]Term, 0)
	if err := json.Unmarshal(genres, &title.Genres); err != nil {
		return nil, apperr.Internal(fmt.Errorf("decode title genres: %w", err))
	}

	return title, nil
}

/*
Create inserts the title row and its genre edges in one transaction.
*/
func (repository *titleRepository) Create(context context.Context, id string, write TitleWrite) error {
	return postgres.InTx(context, repository.pool, func(transaction pgx.Tx) error {
		categoryID, err := resolveCategory(context, transaction, write.CategorySlug)
		if err != nil {
			return err
		}

		query := fmt.Sprintf(`INSERT INTO %s (%s, %s, %s, %s, %s) VALUES ($1, $2, $3, $4, $5)`,
			schema.CoreTitle.Table,
			schema.CoreTitle.ID, schema.CoreTitle.Name, schema.CoreTitle.Year,
			schema.CoreTitle.Description, schema.CoreTitle.CategoryID,
		)
		if _, err := transaction.Exec(context, query, id, write.Name, write.Year, write.Description, categoryID); err != nil {
			return dberr.Wrap(err, "create_title")
		}

		return replaceGenres(context, transaction, id, write.GenreSlugs)
	})
}

/*
Update rewrites name, year, description, category and genres. The row lock
taken by UPDATE also serializes it with concurrent rating recomputation.
*/
func (repository *titleRepository) Update(context context.Context, id string, write TitleWrite) error {
	return postgres.InTx(context, repository.pool, func(transaction pgx.Tx) error {
		categoryID, err := resolveCategory(context, transaction, write.CategorySlug)
		if err != nil {
			return err
		}

		query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = $3, %s = $4, %s = $5, %s = now() WHERE %s = $1`,
			schema.CoreTitle.Table,
			schema.CoreTitle.Name, schema.CoreTitle.Year, schema.CoreTitle.Description,
			schema.CoreTitle.CategoryID, schema.CoreTitle.UpdatedAt, schema.CoreTitle.ID,
		)
		tag, err := transaction.Exec(context, query, id, write.Name, write.Year, write.Description, categoryID)
		if err != nil {
			return dberr.Wrap(err, "update_title")
		}
		if tag.RowsAffected() == 0 {
			return apperr.NotFound("Title")
		}

		deleteEdges := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, schema.TitleGenre.Table, schema.TitleGenre.TitleID)
		if _, err := transaction.Exec(context, deleteEdges, id); err != nil {
			return dberr.Wrap(err, "clear_title_genres")
		}

		return replaceGenres(context, transaction, id, write.GenreSlugs)
	})
}

func (repository *titleRepository) Delete(context context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, schema.CoreTitle.Table, schema.CoreTitle.ID)

	tag, err := repository.pool.Exec(context, query, id)
	if err != nil {
		return dberr.Wrap(err, "delete_title")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Title")
	}
	return nil
}

// resolveCategory maps an optional category slug to its id.
func resolveCategory(context context.Context, tx postgres.Querier, slug *string) (*string, error) {
	if slug == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		schema.CoreCategory.ID, schema.CoreCategory.Table, schema.CoreCategory.Slug)

	var id string
	err := tx.QueryRow(context, query, *slug).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("Category")
	}
	if err != nil {
		return nil, dberr.Wrap(err, "resolve_category")
	}
	return &id, nil
}

// replaceGenres inserts one edge per slug and fails with NOT_FOUND if any slug
// has no genre, which rolls back the surrounding transaction.
func replaceGenres(context context.Context, tx postgres.Querier, titleID string, slugs []string) error {
	unique := slices.Compact(slices.Sorted(slices.Values(slugs)))
	if len(unique) == 0 {
		return nil
	}

	query := fmt.Sprintf(`INSERT INTO %s (%s, %s) SELECT $1, g.%s FROM %s g WHERE g.%s = ANY($2)`,
		schema.TitleGenre.Table, schema.TitleGenre.TitleID, schema.TitleGenre.GenreID,
		schema.CoreGenre.ID, schema.CoreGenre.Table, schema.CoreGenre.Slug,
	)

	tag, err := tx.Exec(context, query, titleID, unique)
	if err != nil {
		return dberr.Wrap(err, "insert_title_genres")
	}
	if int(tag.RowsAffected()) != len(unique) {
		return apperr.NotFound("Genre")
	}
	return nil
}
