// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yamdb/internal/api"
	"github.com/taibuivan/yamdb/internal/core/catalog"
	"github.com/taibuivan/yamdb/internal/core/comment"
	"github.com/taibuivan/yamdb/internal/core/review"
	"github.com/taibuivan/yamdb/internal/platform/config"
	"github.com/taibuivan/yamdb/internal/platform/postgres/pgtest"
	"github.com/taibuivan/yamdb/internal/platform/sec"
	"github.com/taibuivan/yamdb/internal/users/account"
	"github.com/taibuivan/yamdb/internal/users/auth"
)

// openThrottle never throttles.
type openThrottle struct{}

func (openThrottle) Check(context.Context, string) error         { return nil }
func (openThrottle) RecordFailure(context.Context, string) error { return nil }
func (openThrottle) Reset(context.Context, string) error         { return nil }

type harness struct {
	t        *testing.T
	handler  http.Handler
	accounts *account.Service
}

func newHarness(t *testing.T) *harness {
	pool := pgtest.New(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	tokens := sec.NewTokenServiceFromKeys(key, &key.PublicKey, "yamdb.test")

	accountService := account.NewService(account.NewPostgresRepository(pool), logger)
	authService := auth.NewService(accountService, tokens, openThrottle{}, time.Hour, logger)
	catalogService := catalog.NewService(
		catalog.NewCategoryRepository(pool),
		catalog.NewGenreRepository(pool),
		catalog.NewTitleRepository(pool),
		logger,
	)
	reviewService := review.NewService(review.NewPostgresRepository(pool), logger)
	commentService := comment.NewService(comment.NewPostgresRepository(pool), reviewService, logger)

	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func(context.Context) error { return nil },
		CheckCache:    func(context.Context) error { return errors.New("redis down") },
	}, logger)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	cfg := &config.Config{ServerPort: "0", Environment: "test"}
	server := api.NewServer(ctx, cfg, logger, tokens, api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      auth.NewHandler(authService),
		Account:   account.NewHandler(accountService),
		Catalog:   catalog.NewHandler(catalogService),
		Review:    review.NewHandler(reviewService),
		Comment:   comment.NewHandler(commentService),
	})

	return &harness{t: t, handler: server.Handler(), accounts: accountService}
}

// do sends a JSON request and decodes the "data" member (or the whole error envelope).
func (h *harness) do(method, path, token, body string) (int, map[string]any) {
	h.t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	request := httptest.NewRequest(method, path, reader)
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}

	recorder := httptest.NewRecorder()
	h.handler.ServeHTTP(recorder, request)

	if recorder.Code == http.StatusNoContent {
		return recorder.Code, nil
	}

	var envelope map[string]any
	require.NoError(h.t, json.Unmarshal(recorder.Body.Bytes(), &envelope), recorder.Body.String())
	if data, ok := envelope["data"].(map[string]any); ok {
		return recorder.Code, data
	}
	return recorder.Code, envelope
}

func (h *harness) register(email string) string {
	h.t.Helper()

	status, data := h.do(http.MethodPost, "/api/v1/auth/register", "",
		`{"email":"`+email+`","password":"correct horse"}`)
	require.Equal(h.t, http.StatusCreated, status, data)
	return data["access_token"].(string)
}

func (h *harness) admin() string {
	h.t.Helper()

	_, err := h.accounts.CreateSuperuser(context.Background(), "root@example.com", "correct horse", account.Profile{})
	require.NoError(h.t, err)

	status, data := h.do(http.MethodPost, "/api/v1/auth/login", "",
		`{"email":"root@example.com","password":"correct horse"}`)
	require.Equal(h.t, http.StatusOK, status, data)
	return data["access_token"].(string)
}

/*
TestAPI_ReviewFlow walks the Solaris scenario through the HTTP surface.
*/
func TestAPI_ReviewFlow(t *testing.T) {
	h := newHarness(t)
	admin := h.admin()
	first := h.register("first@example.com")
	second := h.register("second@example.com")
	moderator := h.register("mod@example.com")

	// Catalog writes are admin only.
	status, _ := h.do(http.MethodPost, "/api/v1/categories", first, `{"name":"Film"}`)
	assert.Equal(t, http.StatusForbidden, status)

	status, category := h.do(http.MethodPost, "/api/v1/categories", admin, `{"name":"Film"}`)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "film", category["slug"])

	status, _ = h.do(http.MethodPost, "/api/v1/genres", admin, `{"name":"Science Fiction","slug":"sci-fi"}`)
	require.Equal(t, http.StatusCreated, status)

	status, _ = h.do(http.MethodPost, "/api/v1/titles", admin, `{"name":"Solaris","year":1972,"rating":10}`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, title := h.do(http.MethodPost, "/api/v1/titles", admin,
		`{"name":"Solaris","year":1972,"category":"film","genre":["sci-fi"]}`)
	require.Equal(t, http.StatusCreated, status)
	assert.Nil(t, title["rating"])
	titlePath := "/api/v1/titles/" + title["id"].(string)

	// Reviews.
	status, _ = h.do(http.MethodPost, titlePath+"/reviews", "", `{"text":"x","score":5}`)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body := h.do(http.MethodPost, titlePath+"/reviews", first, `{"text":"Masterpiece","score":11}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "OUT_OF_RANGE", body["reason"])

	status, firstReview := h.do(http.MethodPost, titlePath+"/reviews", first, `{"text":"Masterpiece","score":10}`)
	require.Equal(t, http.StatusCreated, status)

	status, body = h.do(http.MethodPost, titlePath+"/reviews", first, `{"text":"Again","score":9}`)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "DUPLICATE_REVIEW", body["reason"])

	status, secondReview := h.do(http.MethodPost, titlePath+"/reviews", second, `{"text":"Slow","score":5}`)
	require.Equal(t, http.StatusCreated, status)

	_, title = h.do(http.MethodGet, titlePath, "", "")
	assert.EqualValues(t, 8, title["rating"])

	// Someone else's review cannot be edited by a plain user.
	secondPath := titlePath + "/reviews/" + secondReview["id"].(string)
	status, _ = h.do(http.MethodPatch, secondPath, first, `{"score":1}`)
	assert.Equal(t, http.StatusForbidden, status)

	// Comments.
	status, _ = h.do(http.MethodPost, secondPath+"/comments", first, `{"text":"Disagree"}`)
	require.Equal(t, http.StatusCreated, status)

	// Admin promotes a moderator, who may then edit the review.
	_, me := h.do(http.MethodGet, "/api/v1/users/me", moderator, "")
	status, _ = h.do(http.MethodPut, "/api/v1/users/"+me["id"].(string)+"/role", admin, `{"role":"moderator"}`)
	require.Equal(t, http.StatusOK, status)

	// The role travels in the token, so the moderator signs in again.
	status, session := h.do(http.MethodPost, "/api/v1/auth/login", "", `{"email":"mod@example.com","password":"correct horse"}`)
	require.Equal(t, http.StatusOK, status)
	moderator = session["access_token"].(string)

	status, _ = h.do(http.MethodPatch, secondPath, moderator, `{"score":6}`)
	require.Equal(t, http.StatusOK, status)

	_, title = h.do(http.MethodGet, titlePath, "", "")
	assert.EqualValues(t, 8, title["rating"])

	// Removing every review clears the rating.
	status, _ = h.do(http.MethodDelete, secondPath, moderator, "")
	require.Equal(t, http.StatusNoContent, status)
	status, _ = h.do(http.MethodDelete, titlePath+"/reviews/"+firstReview["id"].(string), first, "")
	require.Equal(t, http.StatusNoContent, status)

	_, title = h.do(http.MethodGet, titlePath, "", "")
	assert.Nil(t, title["rating"])
}

func TestAPI_Probes(t *testing.T) {
	h := newHarness(t)

	status, data := h.do(http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", data["status"])

	status, data = h.do(http.MethodGet, "/ready", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "degraded", data["status"])

	status, _ = h.do(http.MethodGet, "/api/v1/users", "", "")
	assert.Equal(t, http.StatusUnauthorized, status)
}
