// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package catalog provides the HTTP interface for browsing and managing the catalog.

# Routing Strategy

  - Public (v1): listing and detail endpoints for categories, genres and titles.
  - Restricted (v1): POST, PATCH and DELETE require the admin role.

Reviews are mounted under /titles/{titleID}/reviews so the title id is
available to the review handler through the shared route context.
*/
package catalog

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/yamdb/internal/core/policy"
	"github.com/taibuivan/yamdb/internal/platform/middleware"
	requestutil "github.com/taibuivan/yamdb/internal/platform/request"
	"github.com/taibuivan/yamdb/internal/platform/respond"
	"github.com/taibuivan/yamdb/internal/platform/sec"
	"github.com/taibuivan/yamdb/pkg/pagination"
)

// TitleIDParam is the route parameter carrying a title id.
const TitleIDParam = "titleID"

// # Handler Implementation

// Handler implements the HTTP layer for the catalog.
type Handler struct {
	service *Service
}

// NewHandler constructs a new catalog [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// CategoryRoutes returns the router mounted at /categories.
func (handler *Handler) CategoryRoutes() chi.Router {
	return handler.termRoutes(KindCategory)
}

// GenreRoutes returns the router mounted at /genres.
func (handler *Handler) GenreRoutes() chi.Router {
	return handler.termRoutes(KindGenre)
}

func (handler *Handler) termRoutes(kind Kind) chi.Router {
	router := chi.NewRouter()

	// ## Public Discovery Endpoints
	router.Get("/", handler.listTerms(kind))
	router.Get("/{slug}", handler.getTerm(kind))

	// ## Vocabulary Management (Admin Protected)
	router.Group(func(admin chi.Router) {
		admin.Use(middleware.RequireRole(sec.RoleAdmin))

		admin.Post("/", handler.createTerm(kind))
		admin.Patch("/{slug}", handler.updateTerm(kind))
		admin.Delete("/{slug}", handler.deleteTerm(kind))
	})

	return router
}

// TitleRoutes returns the router mounted at /titles. A non-nil reviews
// handler is mounted at /titles/{titleID}/reviews.
func (handler *Handler) TitleRoutes(reviews http.Handler) chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.listTitles)
	router.With(middleware.RequireRole(sec.RoleAdmin)).Post("/", handler.createTitle)

	router.Route("/{"+TitleIDParam+"}", func(title chi.Router) {
		title.Get("/", handler.getTitle)

		title.Group(func(admin chi.Router) {
			admin.Use(middleware.RequireRole(sec.RoleAdmin))

			admin.Patch("/", handler.updateTitle)
			admin.Delete("/", handler.deleteTitle)
		})

		if reviews != nil {
			title.Mount("/reviews", reviews)
		}
	})

	return router
}

// # Request Payloads

// termRequest defines the inbound JSON schema for category and genre writes.
type termRequest struct {
	Name *string `json:"name"`
	Slug *string `json:"slug"`
}

// titleRequest defines the inbound JSON schema for title writes.
// There is no rating field: unknown fields are rejected by the decoder.
type titleRequest struct {
	Name        *string   `json:"name"`
	Year        *int      `json:"year"`
	Description *string   `json:"description"`
	Category    *string   `json:"category"`
	Genre       *[]string `json:"genre"`
}

func (payload titleRequest) input() TitleInput {
	return TitleInput{
		Name:        payload.Name,
		Year:        payload.Year,
		Description: payload.Description,
		Category:    payload.Category,
		Genres:      payload.Genre,
	}
}

// # Vocabulary Endpoints

/*
GET /api/v1/categories and GET /api/v1/genres.

Request:
  - search: string (Name substring, case-insensitive)
  - page, limit: int

Response:
  - 200: []Term: Paginated list ordered by name
*/
func (handler *Handler) listTerms(kind Kind) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		page := pagination.FromRequest(request)

		terms, total, err := handler.service.ListTerms(request.Context(), kind, request.URL.Query().Get("search"), page)
		if err != nil {
			respond.Error(writer, request, err)
			return
		}

		respond.Paginated(writer, terms, pagination.NewMeta(page, total))
	}
}

func (handler *Handler) getTerm(kind Kind) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		term, err := handler.service.GetTerm(request.Context(), kind, requestutil.Param(request, "slug"))
		if err != nil {
			respond.Error(writer, request, err)
			return
		}
		respond.OK(writer, term)
	}
}

/*
POST /api/v1/categories and POST /api/v1/genres.

Response:
  - 201: Term: Created
  - 400: VALIDATION_ERROR
  - 409: CONFLICT (DUPLICATE_SLUG)
*/
func (handler *Handler) createTerm(kind Kind) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		var payload termRequest
		if err := requestutil.DecodeJSON(writer, request, &payload); err != nil {
			respond.Error(writer, request, err)
			return
		}

		actor := policy.FromClaims(requestutil.Claims(request))
		term, err := handler.service.CreateTerm(request.Context(), actor, kind, TermInput(payload))
		if err != nil {
			respond.Error(writer, request, err)
			return
		}
		respond.Created(writer, term)
	}
}

/*
PATCH /api/v1/categories/{slug} and PATCH /api/v1/genres/{slug}.

Response:
  - 200: Term: Renamed
  - 400: VALIDATION_ERROR (IMMUTABLE_KEY when the slug differs)
*/
func (handler *Handler) updateTerm(kind Kind) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		var payload termRequest
		if err := requestutil.DecodeJSON(writer, request, &payload); err != nil {
			respond.Error(writer, request, err)
			return
		}

		actor := policy.FromClaims(requestutil.Claims(request))
		term, err := handler.service.UpdateTerm(request.Context(), actor, kind, requestutil.Param(request, "slug"), TermInput(payload))
		if err != nil {
			respond.Error(writer, request, err)
			return
		}
		respond.OK(writer, term)
	}
}

func (handler *Handler) deleteTerm(kind Kind) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		actor := policy.FromClaims(requestutil.Claims(request))
		if err := handler.service.DeleteTerm(request.Context(), actor, kind, requestutil.Param(request, "slug")); err != nil {
			respond.Error(writer, request, err)
			return
		}
		respond.NoContent(writer)
	}
}

// # Title Endpoints

/*
GET /api/v1/titles.

Request:
  - category: string (Category slug)
  - genre: string (Genre slug)
  - year: int
  - name: string (Name substring, case-insensitive)
  - page, limit: int

Response:
  - 200: []Title: Paginated list ordered by name
*/
func (handler *Handler) listTitles(writer http.ResponseWriter, request *http.Request) {
	page := pagination.FromRequest(request)
	query := request.URL.Query()

	year, err := requestutil.OptionalInt(request, "year")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	filter := TitleFilter{
		Category: query.Get("category"),
		Genre:    query.Get("genre"),
		Year:     year,
		Name:     query.Get("name"),
	}

	titles, total, err := handler.service.ListTitles(request.Context(), filter, page)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, titles, pagination.NewMeta(page, total))
}

func (handler *Handler) getTitle(writer http.ResponseWriter, request *http.Request) {
	titleID, err := requestutil.ID(request, TitleIDParam, "Title")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	title, err := handler.service.GetTitle(request.Context(), titleID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, title)
}

/*
POST /api/v1/titles.

Response:
  - 201: Title: Created, rating null
  - 400: VALIDATION_ERROR
  - 404: NOT_FOUND (unknown category or genre slug)
*/
func (handler *Handler) createTitle(writer http.ResponseWriter, request *http.Request) {
	var payload titleRequest
	if err := requestutil.DecodeJSON(writer, request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	actor := policy.FromClaims(requestutil.Claims(request))
	title, err := handler.service.CreateTitle(request.Context(), actor, payload.input())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, title)
}

func (handler *Handler) updateTitle(writer http.ResponseWriter, request *http.Request) {
	titleID, err := requestutil.ID(request, TitleIDParam, "Title")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var payload titleRequest
	if err := requestutil.DecodeJSON(writer, request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	actor := policy.FromClaims(requestutil.Claims(request))
	title, err := handler.service.UpdateTitle(request.Context(), actor, titleID, payload.input())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, title)
}

func (handler *Handler) deleteTitle(writer http.ResponseWriter, request *http.Request) {
	titleID, err := requestutil.ID(request, TitleIDParam, "Title")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	actor := policy.FromClaims(requestutil.Claims(request))
	if err := handler.service.DeleteTitle(request.Context(), actor, titleID); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}
