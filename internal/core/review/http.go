// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package review

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/yamdb/internal/core/catalog"
	"github.com/taibuivan/yamdb/internal/core/policy"
	"github.com/taibuivan/yamdb/internal/platform/middleware"
	requestutil "github.com/taibuivan/yamdb/internal/platform/request"
	"github.com/taibuivan/yamdb/internal/platform/respond"
	"github.com/taibuivan/yamdb/pkg/pagination"
)

// ReviewIDParam is the route parameter carrying a review id.
const ReviewIDParam = "reviewID"

// Handler implements the HTTP layer for reviews. It is mounted under
// /titles/{titleID}/reviews by the catalog handler.
type Handler struct {
	service *Service
}

// NewHandler constructs a new review [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the review router. A non-nil comments handler is mounted at
// /{reviewID}/comments.
func (handler *Handler) Routes(comments http.Handler) chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.listReviews)
	router.With(middleware.RequireAuth).Post("/", handler.createReview)

	router.Route("/{"+ReviewIDParam+"}", func(review chi.Router) {
		review.Get("/", handler.getReview)

		review.Group(func(authed chi.Router) {
			authed.Use(middleware.RequireAuth)

			authed.Patch("/", handler.updateReview)
			authed.Delete("/", handler.deleteReview)
		})

		if comments != nil {
			review.Mount("/comments", comments)
		}
	})

	return router
}

// reviewRequest defines the inbound JSON schema for review writes.
type reviewRequest struct {
	Text  *string `json:"text"`
	Score *int    `json:"score"`
}

// titleID resolves the parent title from the enclosing route.
func titleID(request *http.Request) (string, error) {
	return requestutil.ID(request, catalog.TitleIDParam, "Title")
}

func ids(request *http.Request) (string, string, error) {
	parent, err := titleID(request)
	if err != nil {
		return "", "", err
	}
	reviewID, err := requestutil.ID(request, ReviewIDParam, "Review")
	if err != nil {
		return "", "", err
	}
	return parent, reviewID, nil
}

/*
GET /api/v1/titles/{titleID}/reviews.

Response:
  - 200: []Review: Paginated, oldest first
  - 404: NOT_FOUND: Title not found
*/
func (handler *Handler) listReviews(writer http.ResponseWriter, request *http.Request) {
	parent, err := titleID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	page := pagination.FromRequest(request)
	reviews, total, err := handler.service.ListReviews(request.Context(), parent, page)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, reviews, pagination.NewMeta(page, total))
}

func (handler *Handler) getReview(writer http.ResponseWriter, request *http.Request) {
	parent, reviewID, err := ids(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	review, err := handler.service.GetReview(request.Context(), parent, reviewID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, review)
}

/*
POST /api/v1/titles/{titleID}/reviews.

Response:
  - 201: Review: Created
  - 400: VALIDATION_ERROR (OUT_OF_RANGE for a score outside 1..10)
  - 401: UNAUTHORIZED
  - 409: CONFLICT (DUPLICATE_REVIEW)
*/
func (handler *Handler) createReview(writer http.ResponseWriter, request *http.Request) {
	parent, err := titleID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var payload reviewRequest
	if err := requestutil.DecodeJSON(writer, request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	actor := policy.FromClaims(requestutil.Claims(request))
	review, err := handler.service.CreateReview(request.Context(), actor, parent, Input(payload))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, review)
}

func (handler *Handler) updateReview(writer http.ResponseWriter, request *http.Request) {
	parent, reviewID, err := ids(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var payload reviewRequest
	if err := requestutil.DecodeJSON(writer, request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	actor := policy.FromClaims(requestutil.Claims(request))
	review, err := handler.service.UpdateReview(request.Context(), actor, parent, reviewID, Input(payload))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, review)
}

func (handler *Handler) deleteReview(writer http.ResponseWriter, request *http.Request) {
	parent, reviewID, err := ids(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	actor := policy.FromClaims(requestutil.Claims(request))
	if err := handler.service.DeleteReview(request.Context(), actor, parent, reviewID); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}
