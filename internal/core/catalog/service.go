// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/taibuivan/yamdb/internal/core/policy"
	"github.com/taibuivan/yamdb/internal/platform/apperr"
	"github.com/taibuivan/yamdb/internal/platform/constants"
	"github.com/taibuivan/yamdb/internal/platform/validate"
	"github.com/taibuivan/yamdb/pkg/pagination"
	"github.com/taibuivan/yamdb/pkg/slug"
	"github.com/taibuivan/yamdb/pkg/uuidv7"
)

// Field names reported in validation details.
const (
	FieldName        = "name"
	FieldSlug        = "slug"
	FieldYear        = "year"
	FieldDescription = "description"
)

// minYear is the earliest year a title may carry.
const minYear = 1

// # Service Layer

// Service orchestrates the catalog: vocabularies and titles.
// Reads are public; every write requires an administrator.
type Service struct {
	categories TermRepository
	genres     TermRepository
	titles     TitleRepository
	logger     *slog.Logger
	now        func() time.Time
}

// NewService constructs a new [Service] with its required repositories.
func NewService(categories, genres TermRepository, titles TitleRepository, logger *slog.Logger) *Service {
	return &Service{
		categories: categories,
		genres:     genres,
		titles:     titles,
		logger:     logger,
		now:        time.Now,
	}
}

func (service *Service) terms(kind Kind) (TermRepository, error) {
	switch kind {
	case KindCategory:
		return service.categories, nil
	case KindGenre:
		return service.genres, nil
	default:
		return nil, apperr.Internal(fmt.Errorf("unknown vocabulary kind %d", int(kind)))
	}
}

// # Vocabulary Lookups

// ListTerms returns a page of categories or genres ordered by name.
func (service *Service) ListTerms(context context.Context, kind Kind, search string, page pagination.Params) ([]*Term, int, error) {
	repository, err := service.terms(kind)
	if err != nil {
		return nil, 0, err
	}
	return repository.List(context, strings.TrimSpace(search), page.Normalize())
}

// GetTerm retrieves a category or genre by slug.
func (service *Service) GetTerm(context context.Context, kind Kind, slug string) (*Term, error) {
	repository, err := service.terms(kind)
	if err != nil {
		return nil, err
	}
	return repository.FindBySlug(context, slug)
}

// # Vocabulary Management

/*
CreateTerm registers a new category or genre.

Description: The slug is derived from the name when omitted. An explicit slug
must already be in canonical form; a derived one that comes out empty
(e.g. a name made only of punctuation) is rejected.

Returns:
  - *Term: The persisted entry
  - error: FORBIDDEN, VALIDATION_ERROR or CONFLICT(DUPLICATE_SLUG)
*/
func (service *Service) CreateTerm(context context.Context, actor *policy.Actor, kind Kind, input TermInput) (*Term, error) {
	if err := policy.AuthorizeCatalog(actor); err != nil {
		return nil, err
	}

	repository, err := service.terms(kind)
	if err != nil {
		return nil, err
	}

	term := &Term{ID: uuidv7.New()}
	if input.Name != nil {
		term.Name = strings.TrimSpace(*input.Name)
	}

	validator := &validate.Validator{}
	validator.Required(FieldName, term.Name).MaxLen(FieldName, term.Name, constants.MaxNameLength)

	// Explicit slug wins, otherwise derive from the name
	if input.Slug != nil {
		term.Slug = *input.Slug
		validator.Required(FieldSlug, term.Slug)
		if term.Slug != "" {
			validator.Slug(FieldSlug, term.Slug).MaxLen(FieldSlug, term.Slug, constants.MaxSlugLength)
		}
	} else if term.Name != "" {
		term.Slug = slug.Truncate(slug.From(term.Name), constants.MaxSlugLength)
		validator.Custom(FieldSlug, term.Slug == "", "Cannot derive a slug from this name")
	}

	if err := validator.Err(); err != nil {
		return nil, err
	}

	if err := repository.Create(context, term); err != nil {
		return nil, err
	}

	service.logger.InfoContext(context, "term_created",
		slog.String("kind", kind.Resource()),
		slog.String("slug", term.Slug),
	)
	return term, nil
}

/*
UpdateTerm renames a category or genre.

Description: The slug identifies the entry and cannot change. Sending the
current slug back is accepted; any other value is IMMUTABLE_KEY.
*/
func (service *Service) UpdateTerm(context context.Context, actor *policy.Actor, kind Kind, currentSlug string, input TermInput) (*Term, error) {
	if err := policy.AuthorizeCatalog(actor); err != nil {
		return nil, err
	}

	repository, err := service.terms(kind)
	if err != nil {
		return nil, err
	}

	term, err := repository.FindBySlug(context, currentSlug)
	if err != nil {
		return nil, err
	}

	if input.Slug != nil && *input.Slug != term.Slug {
		return nil, validate.ImmutableKeyError(FieldSlug)
	}

	if input.Name == nil {
		return term, nil
	}

	name := strings.TrimSpace(*input.Name)
	validator := &validate.Validator{}
	validator.Required(FieldName, name).MaxLen(FieldName, name, constants.MaxNameLength)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	if err := repository.Rename(context, term.Slug, name); err != nil {
		return nil, err
	}
	term.Name = name

	service.logger.InfoContext(context, "term_renamed",
		slog.String("kind", kind.Resource()),
		slog.String("slug", term.Slug),
	)
	return term, nil
}

// DeleteTerm removes a category (titles keep existing, uncategorised) or a
// genre (only membership edges go).
func (service *Service) DeleteTerm(context context.Context, actor *policy.Actor, kind Kind, slug string) error {
	if err := policy.AuthorizeCatalog(actor); err != nil {
		return err
	}

	repository, err := service.terms(kind)
	if err != nil {
		return err
	}

	if err := repository.Delete(context, slug); err != nil {
		return err
	}

	service.logger.InfoContext(context, "term_deleted",
		slog.String("kind", kind.Resource()),
		slog.String("slug", slug),
	)
	return nil
}

// # Title Lookups

// ListTitles retrieves a filtered, paginated list of titles.
func (service *Service) ListTitles(context context.Context, filter TitleFilter, page pagination.Params) ([]*Title, int, error) {
	filter.Name = strings.TrimSpace(filter.Name)
	return service.titles.List(context, filter, page.Normalize())
}

// GetTitle fetches one title with its category, genres and rating.
func (service *Service) GetTitle(context context.Context, id string) (*Title, error) {
	return service.titles.FindByID(context, id)
}

// # Title Management

/*
CreateTitle catalogs a new work.

Description: Name and year are required. Category and genres are referenced
by slug and must exist. The rating starts empty and is owned by the
rating aggregator.

Returns:
  - *Title: The persisted title as read back from storage
  - error: FORBIDDEN, VALIDATION_ERROR or NOT_FOUND (unknown category/genre)
*/
func (service *Service) CreateTitle(context context.Context, actor *policy.Actor, input TitleInput) (*Title, error) {
	if err := policy.AuthorizeCatalog(actor); err != nil {
		return nil, err
	}

	validator := &validate.Validator{}
	if input.Name == nil {
		validator.Required(FieldName, "")
	}
	if input.Year == nil {
		validator.Required(FieldYear, "")
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	write, err := service.mergeTitle(TitleWrite{}, input)
	if err != nil {
		return nil, err
	}

	id := uuidv7.New()
	if err := service.titles.Create(context, id, write); err != nil {
		return nil, err
	}

	service.logger.InfoContext(context, "title_created", slog.String("title_id", id))
	return service.titles.FindByID(context, id)
}

/*
UpdateTitle applies a partial update. Absent fields keep their stored value;
a present genre list replaces the current one; an empty category clears it.
*/
func (service *Service) UpdateTitle(context context.Context, actor *policy.Actor, id string, input TitleInput) (*Title, error) {
	if err := policy.AuthorizeCatalog(actor); err != nil {
		return nil, err
	}

	current, err := service.titles.FindByID(context, id)
	if err != nil {
		return nil, err
	}

	base := TitleWrite{
		Name:        current.Name,
		Year:        current.Year,
		Description: current.Description,
		GenreSlugs:  current.GenreSlugs(),
	}
	if current.Category != nil {
		categorySlug := current.Category.Slug
		base.CategorySlug = &categorySlug
	}

	write, err := service.mergeTitle(base, input)
	if err != nil {
		return nil, err
	}

	if err := service.titles.Update(context, id, write); err != nil {
		return nil, err
	}

	service.logger.InfoContext(context, "title_updated", slog.String("title_id", id))
	return service.titles.FindByID(context, id)
}

// DeleteTitle removes a title together with its reviews and their comments.
func (service *Service) DeleteTitle(context context.Context, actor *policy.Actor, id string) error {
	if err := policy.AuthorizeCatalog(actor); err != nil {
		return err
	}

	if err := service.titles.Delete(context, id); err != nil {
		return err
	}

	service.logger.InfoContext(context, "title_deleted", slog.String("title_id", id))
	return nil
}

// mergeTitle overlays input onto base and validates the result.
func (service *Service) mergeTitle(base TitleWrite, input TitleInput) (TitleWrite, error) {
	write := base

	if input.Name != nil {
		write.Name = strings.TrimSpace(*input.Name)
	}
	if input.Year != nil {
		write.Year = *input.Year
	}
	if input.Description != nil {
		write.Description = *input.Description
	}
	if input.Category != nil {
		if *input.Category == "" {
			write.CategorySlug = nil
		} else {
			categorySlug := *input.Category
			write.CategorySlug = &categorySlug
		}
	}
	if input.Genres != nil {
		write.GenreSlugs = append([]string(nil), (*input.Genres)...)
	}

	validator := &validate.Validator{}
	validator.Required(FieldName, write.Name).MaxLen(FieldName, write.Name, constants.MaxNameLength)
	validator.Range(FieldYear, write.Year, minYear, service.now().Year())
	validator.MaxLen(FieldDescription, write.Description, constants.MaxDescriptionLength)

	if err := validator.Err(); err != nil {
		return TitleWrite{}, err
	}
	return write, nil
}
