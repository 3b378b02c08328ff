// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package account provides the HTTP delivery layer for profile management.

# Security

  - /users/me: any authenticated user, acting on their own account.
  - /users and /users/{userID}: administrators only.
*/
package account

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

const userIDParam = "userID"

// Handler implements the HTTP layer for user account management.
type Handler struct {
	accountService *Service
}

// NewHandler constructs a new account [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{accountService: service}
}

// Routes returns a [chi.Router] configured with the account endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// ## Self Service
	router.Group(func(self chi.Router) {
		self.Use(middleware.RequireAuth)

		self.Get("/me", handler.getMe)
		self.Patch("/me", handler.updateMe)
		self.Delete("/me", handler.deleteMe)
	})

	// ## Administration
	router.Group(func(admin chi.Router) {
		admin.Use(middleware.RequireRole(sec.RoleAdmin))

		admin.Get("/", handler.listUsers)
		admin.Get("/{"+userIDParam+"}", handler.getUser)
		admin.Patch("/{"+userIDParam+"}", handler.updateUser)
		admin.Delete("/{"+userIDParam+"}", handler.deleteUser)
		admin.Put("/{"+userIDParam+"}/role", handler.setRole)
	})

	return router
}

// # Request Payloads

// profileRequest defines the JSON payload for profile updates.
type profileRequest struct {
	Username  *string `json:"username"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Bio       *string `json:"bio"`
}

// roleRequest defines the JSON payload for role changes.
type roleRequest struct {
	Role string `json:"role"`
}

// # Self Service Endpoints

/*
GET /api/v1/users/me.

Response:
  - 200: User: The caller's account
  - 401: UNAUTHORIZED
*/
func (handler *Handler) getMe(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.accountService.GetUser(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, user)
}

/*
PATCH /api/v1/users/me.

Response:
  - 200: User: The updated profile
  - 400: VALIDATION_ERROR
  - 409: CONFLICT (DUPLICATE_USERNAME)
*/
func (handler *Handler) updateMe(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	handler.patchProfile(writer, request, claims.UserID)
}

func (handler *Handler) deleteMe(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.accountService.DeleteUser(request.Context(), policy.FromClaims(claims), claims.UserID); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

// # Administration Endpoints

/*
GET /api/v1/users.

Response:
  - 200: []User: Paginated, oldest first
  - 403: FORBIDDEN
*/
func (handler *Handler) listUsers(writer http.ResponseWriter, request *http.Request) {
	page := pagination.FromRequest(request)
	actor := policy.FromClaims(requestutil.Claims(request))

	users, total, err := handler.accountService.ListUsers(request.Context(), actor, page)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Paginated(writer, users, pagination.NewMeta(page, total))
}

func (handler *Handler) getUser(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.ID(request, userIDParam, "User")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.accountService.GetUser(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, user)
}

func (handler *Handler) updateUser(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.ID(request, userIDParam, "User")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	handler.patchProfile(writer, request, userID)
}

func (handler *Handler) deleteUser(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.ID(request, userIDParam, "User")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	actor := policy.FromClaims(requestutil.Claims(request))
	if err := handler.accountService.DeleteUser(request.Context(), actor, userID); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

/*
PUT /api/v1/users/{userID}/role.

Request:
  - role: string (user, moderator)

Response:
  - 200: User: Updated account
  - 400: VALIDATION_ERROR (admin cannot be granted here)
*/
func (handler *Handler) setRole(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.ID(request, userIDParam, "User")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var payload roleRequest
	if err := requestutil.DecodeJSON(writer, request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	actor := policy.FromClaims(requestutil.Claims(request))
	user, err := handler.accountService.SetRole(request.Context(), actor, userID, sec.Role(payload.Role))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, user)
}

func (handler *Handler) patchProfile(writer http.ResponseWriter, request *http.Request, targetID string) {
	var payload profileRequest
	if err := requestutil.DecodeJSON(writer, request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	actor := policy.FromClaims(requestutil.Claims(request))
	user, err := handler.accountService.UpdateProfile(request.Context(), actor, targetID, ProfileInput(payload))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, user)
}
