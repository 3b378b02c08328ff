// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package comment

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/yamdb/internal/core/catalog"
	"github.com/taibuivan/yamdb/internal/core/policy"
	"github.com/taibuivan/yamdb/internal/core/review"
	"github.com/taibuivan/yamdb/internal/platform/middleware"
	requestutil "github.com/taibuivan/yamdb/internal/platform/request"
	"github.com/taibuivan/yamdb/internal/platform/respond"
	"github.com/taibuivan/yamdb/pkg/pagination"
)

// CommentIDParam is the route parameter carrying a comment id.
const CommentIDParam = "commentID"

// Handler implements the HTTP layer for comments. It is mounted under
// /titles/{titleID}/reviews/{reviewID}/comments.
type Handler struct {
	service *Service
}

// NewHandler constructs a new comment [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the comment router.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.listComments)
	router.Get("/{"+CommentIDParam+"}", handler.getComment)

	router.Group(func(authed chi.Router) {
		authed.Use(middleware.RequireAuth)

		authed.Post("/", handler.createComment)
		authed.Patch("/{"+CommentIDParam+"}", handler.updateComment)
		authed.Delete("/{"+CommentIDParam+"}", handler.deleteComment)
	})

	return router
}

// commentRequest defines the inbound JSON schema for comment writes.
type commentRequest struct {
	Text *string `json:"text"`
}

// parents resolves the enclosing title and review ids.
func parents(request *http.Request) (string, string, error) {
	titleID, err := requestutil.ID(request, catalog.TitleIDParam, "Title")
	if err != nil {
		return "", "", err
	}
	reviewID, err := requestutil.ID(request, review.ReviewIDParam, "Review")
	if err != nil {
		return "", "", err
	}
	return titleID, reviewID, nil
}

/*
GET /api/v1/titles/{titleID}/reviews/{reviewID}/comments.

Response:
  - 200: []Comment: Paginated, oldest first
  - 404: NOT_FOUND: Title or review not found
*/
func (handler *Handler) listComments(writer http.ResponseWriter, request *http.Request) {
	titleID, reviewID, err := parents(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	page := pagination.FromRequest(request)
	comments, total, err := handler.service.ListComments(request.Context(), titleID, reviewID, page)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, comments, pagination.NewMeta(page, total))
}

func (handler *Handler) getComment(writer http.ResponseWriter, request *http.Request) {
	titleID, reviewID, err := parents(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	commentID, err := requestutil.ID(request, CommentIDParam, "Comment")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	comment, err := handler.service.GetComment(request.Context(), titleID, reviewID, commentID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, comment)
}

func (handler *Handler) createComment(writer http.ResponseWriter, request *http.Request) {
	titleID, reviewID, err := parents(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var payload commentRequest
	if err := requestutil.DecodeJSON(writer, request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	actor := policy.FromClaims(requestutil.Claims(request))
	comment, err := handler.service.CreateComment(request.Context(), actor, titleID, reviewID, payload.Text)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, comment)
}

func (handler *Handler) updateComment(writer http.ResponseWriter, request *http.Request) {
	titleID, reviewID, err := parents(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	commentID, err := requestutil.ID(request, CommentIDParam, "Comment")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var payload commentRequest
	if err := requestutil.DecodeJSON(writer, request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	actor := policy.FromClaims(requestutil.Claims(request))
	comment, err := handler.service.UpdateComment(request.Context(), actor, titleID, reviewID, commentID, payload.Text)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, comment)
}

func (handler *Handler) deleteComment(writer http.ResponseWriter, request *http.Request) {
	titleID, reviewID, err := parents(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	commentID, err := requestutil.ID(request, CommentIDParam, "Comment")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	actor := policy.FromClaims(requestutil.Claims(request))
	if err := handler.service.DeleteComment(request.Context(), actor, titleID, reviewID, commentID); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}
