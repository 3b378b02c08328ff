// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/yamdb/internal/platform/constants"
	"github.com/taibuivan/yamdb/internal/platform/ctxutil"
	"github.com/taibuivan/yamdb/internal/platform/middleware"
	"github.com/taibuivan/yamdb/internal/platform/sec"
)

type stubVerifier map[string]*sec.AuthClaims

func (s stubVerifier) VerifyToken(token string) (*sec.AuthClaims, error) {
	if claims, ok := s[token]; ok {
		return claims, nil
	}
	return nil, errors.New("bad token")
}

var verifier = stubVerifier{
	"user-token":  {UserID: "u1", Role: sec.RoleUser},
	"mod-token":   {UserID: "m1", Role: sec.RoleModerator},
	"admin-token": {UserID: "a1", Role: sec.RoleAdmin},
}

// echoUser writes the authenticated user id, or "anonymous".
var echoUser = http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
	if claims := ctxutil.GetAuthUser(request.Context()); claims != nil {
		_, _ = writer.Write([]byte(claims.UserID))
		return
	}
	_, _ = writer.Write([]byte("anonymous"))
})

func serve(handler http.Handler, authorization string) *httptest.ResponseRecorder {
	request := httptest.NewRequest(http.MethodGet, "/", nil)
	if authorization != "" {
		request.Header.Set("Authorization", authorization)
	}
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	return recorder
}

/*
TestAuthenticate lets anonymous requests through and rejects bad tokens.
*/
func TestAuthenticate(t *testing.T) {
	handler := middleware.Authenticate(verifier)(echoUser)

	tests := []struct {
		name          string
		authorization string
		status        int
		body          string
	}{
		{"anonymous", "", http.StatusOK, "anonymous"},
		{"valid", "Bearer user-token", http.StatusOK, "u1"},
		{"scheme_case", "bearer admin-token", http.StatusOK, "a1"},
		{"wrong_scheme", "Basic user-token", http.StatusUnauthorized, ""},
		{"missing_token", "Bearer", http.StatusUnauthorized, ""},
		{"invalid_token", "Bearer forged", http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := serve(handler, tt.authorization)
			assert.Equal(t, tt.status, recorder.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, recorder.Body.String())
			}
		})
	}
}

/*
TestRequireRole distinguishes anonymous (401) from under-privileged (403).
*/
func TestRequireRole(t *testing.T) {
	authenticated := middleware.Authenticate(verifier)(middleware.RequireAuth(echoUser))
	adminOnly := middleware.Authenticate(verifier)(middleware.RequireRole(sec.RoleAdmin)(echoUser))
	staffOnly := middleware.Authenticate(verifier)(middleware.RequireRole(sec.RoleModerator)(echoUser))

	assert.Equal(t, http.StatusUnauthorized, serve(authenticated, "").Code)
	assert.Equal(t, http.StatusOK, serve(authenticated, "Bearer user-token").Code)

	assert.Equal(t, http.StatusUnauthorized, serve(adminOnly, "").Code)
	assert.Equal(t, http.StatusForbidden, serve(adminOnly, "Bearer mod-token").Code)
	assert.Equal(t, http.StatusOK, serve(adminOnly, "Bearer admin-token").Code)

	assert.Equal(t, http.StatusForbidden, serve(staffOnly, "Bearer user-token").Code)
	assert.Equal(t, http.StatusOK, serve(staffOnly, "Bearer admin-token").Code)
}

func TestRequestID(t *testing.T) {
	var seen string
	handler := middleware.RequestID()(http.HandlerFunc(func(_ http.ResponseWriter, request *http.Request) {
		seen = ctxutil.GetRequestID(request.Context())
	}))

	recorder := serve(handler, "")
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, recorder.Header().Get(constants.HeaderXRequestID))

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set(constants.HeaderXRequestID, "client-id")
	handler.ServeHTTP(httptest.NewRecorder(), request)
	assert.Equal(t, "client-id", seen)
}

func TestRateLimit(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	handler := middleware.RateLimit(middleware.NewIPRateLimiter(ctx, 0.001, 2))(echoUser)

	assert.Equal(t, http.StatusOK, serve(handler, "").Code)
	assert.Equal(t, http.StatusOK, serve(handler, "").Code)

	limited := serve(handler, "")
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Equal(t, "1", limited.Header().Get(constants.HeaderRetryAfter))
}

func TestPanicRecovery(t *testing.T) {
	handler := middleware.PanicRecovery(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	recorder := serve(handler, "")
	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "INTERNAL_ERROR")
}

type corsEnv bool

func (c corsEnv) IsDevelopment() bool { return bool(c) }

func TestCORS(t *testing.T) {
	handler := middleware.CORS(corsEnv(false), []string{"https://yamdb.app/"})(echoUser)

	request := httptest.NewRequest(http.MethodOptions, "/", nil)
	request.Header.Set(constants.HeaderOrigin, "https://yamdb.app")
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	assert.Equal(t, http.StatusNoContent, recorder.Code)
	assert.Equal(t, "https://yamdb.app", recorder.Header().Get("Access-Control-Allow-Origin"))

	request = httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set(constants.HeaderOrigin, "https://evil.example")
	recorder = httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	assert.Empty(t, recorder.Header().Get("Access-Control-Allow-Origin"))
}
