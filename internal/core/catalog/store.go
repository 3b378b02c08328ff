// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog

import (
	"context"

	"github.com/taibuivan/yamdb/pkg/pagination"
)

// TermRepository defines the persistence contract for one vocabulary.
type TermRepository interface {
	/*
		List returns a page of terms ordered by name, optionally filtered by a
		case-insensitive name substring.
	*/
	List(context context.Context, search string, page pagination.Params) ([]*Term, int, error)

	/*
		FindBySlug retrieves a term by its slug.

		Returns:
		  - error: apperr.NotFound if absent
	*/
	FindBySlug(context context.Context, slug string) (*Term, error)

	/*
		Create persists a new term.

		Returns:
		  - error: apperr.Conflict(DUPLICATE_SLUG) if the slug is taken
	*/
	Create(context context.Context, term *Term) error

	// Rename changes a term's display name. The slug is never written.
	Rename(context context.Context, slug, name string) error

	// Delete removes a term; references to it are released by foreign-key rules.
	Delete(context context.Context, slug string) error
}

// TitleRepository defines the persistence contract for titles.
type TitleRepository interface {
	/*
		List returns a filtered page of titles and the total match count.
	*/
	List(context context.Context, filter TitleFilter, page pagination.Params) ([]*Title, int, error)

	/*
		FindByID retrieves a title with its category and genres.

		Returns:
		  - error: apperr.NotFound if absent
	*/
	FindByID(context context.Context, id string) (*Title, error)

	/*
		Create persists a title and its genre edges atomically.

		Returns:
		  - error: apperr.NotFound if the category or any genre slug is unknown
	*/
	Create(context context.Context, id string, write TitleWrite) error

	/*
		Update replaces the title's mutable fields and genre edges atomically.
		The rating column is never touched.
	*/
	Update(context context.Context, id string, write TitleWrite) error

	// Delete removes a title; its reviews and comments cascade.
	Delete(context context.Context, id string) error
}
