// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yamdb/internal/users/auth"
)

func post(t *testing.T, handler http.Handler, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	request := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &decoded))
	return recorder, decoded
}

/*
TestHandler_RegisterAndLogin drives the JSON contract of both endpoints.
*/
func TestHandler_RegisterAndLogin(t *testing.T) {
	tokens := newTokenService(t)
	service := auth.NewService(newStubAccounts(), tokens, newMemoryThrottle(2), time.Hour,
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	routes := auth.NewHandler(service).Routes()

	recorder, body := post(t, routes, "/register", `{"email":"a@example.com","password":"correct horse","username":"alice"}`)
	require.Equal(t, http.StatusCreated, recorder.Code)
	data := body["data"].(map[string]any)
	assert.NotEmpty(t, data["access_token"])
	assert.Equal(t, "a@example.com", data["user"].(map[string]any)["email"])
	assert.NotContains(t, recorder.Body.String(), "correct horse")

	recorder, _ = post(t, routes, "/login", `{"email":"a@example.com","password":"correct horse"}`)
	assert.Equal(t, http.StatusOK, recorder.Code)

	recorder, body = post(t, routes, "/login", `{"email":"a@example.com","password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Equal(t, "INVALID_CREDENTIALS", body["reason"])

	_, _ = post(t, routes, "/login", `{"email":"a@example.com","password":"nope"}`)
	recorder, body = post(t, routes, "/login", `{"email":"a@example.com","password":"correct horse"}`)
	assert.Equal(t, http.StatusTooManyRequests, recorder.Code)
	assert.Equal(t, "RATE_LIMITED", body["code"])

	recorder, _ = post(t, routes, "/register", `{"email":"b@example.com","password":"correct horse","role":"admin"}`)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}
