// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package catalog holds the reviewable works and the vocabularies that classify them.

# Entities

  - Category: single-valued classification of a Title ("Film", "Book").
  - Genre: multi-valued tag of a Title ("Drama", "Sci-Fi").
  - Title: a catalogued work with a derived, read-only rating.

Categories and genres are addressed by slug, which never changes once set.
Deleting a category nulls the reference on its titles; deleting a genre removes
the membership edges only; deleting a title cascades to its reviews and their
comments through foreign keys.
*/
package catalog

import (
	"time"

	"github.com/taibuivan/yamdb/pkg/slice"
)

// # Domain Entities

// Term is a slug-keyed vocabulary entry. Categories and genres share it.
type Term struct {
	ID   string `json:"-"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Title represents a catalogued creative work.
type Title struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Year        int       `json:"year"`
	Description string    `json:"description"`
	Category    *Term     `json:"category"`
	Genres      []Term    `json:"genre"`
	Rating      *int      `json:"rating"`
	CreatedAt   time.Time `json:"created_at"`
}

// GenreSlugs returns the slugs of the title's genres in stored order.
func (title *Title) GenreSlugs() []string {
	return slice.Map(title.Genres, func(genre Term) string { return genre.Slug })
}

// # Vocabulary Kind

// Kind selects which vocabulary a [Term] operation targets.
type Kind int

const (
	KindCategory Kind = iota + 1
	KindGenre
)

// Resource returns the name used in client-facing messages.
func (kind Kind) Resource() string {
	switch kind {
	case KindCategory:
		return "Category"
	case KindGenre:
		return "Genre"
	default:
		return "Term"
	}
}

// # Queries

// TitleFilter narrows a title listing. Zero values mean "no constraint".
type TitleFilter struct {
	Category string
	Genre    string
	Year     *int
	Name     string
}

// # Inputs

// TermInput carries fields for creating or renaming a vocabulary entry.
// A nil Slug on create derives one from Name.
type TermInput struct {
	Name *string
	Slug *string
}

// TitleInput carries title fields. On create Name and Year are required;
// on update nil fields stay unchanged. An empty Category clears the reference.
type TitleInput struct {
	Name        *string
	Year        *int
	Description *string
	Category    *string
	Genres      *[]string
}

// TitleWrite is the complete, validated state a store persists for a title.
type TitleWrite struct {
	Name         string
	Year         int
	Description  string
	CategorySlug *string
	GenreSlugs   []string
}
