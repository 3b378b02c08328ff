// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yamdb/internal/platform/apperr"
	"github.com/taibuivan/yamdb/internal/platform/sec"
	"github.com/taibuivan/yamdb/internal/users/account"
	"github.com/taibuivan/yamdb/internal/users/auth"
	"github.com/taibuivan/yamdb/pkg/pointer"
)

// # Fakes

// stubAccounts keeps plain-text passwords; hashing is the account package's concern.
type stubAccounts struct {
	mu        sync.Mutex
	users     map[string]*account.User
	passwords map[string]string
}

func newStubAccounts() *stubAccounts {
	return &stubAccounts{users: map[string]*account.User{}, passwords: map[string]string{}}
}

func (s *stubAccounts) CreateUser(_ context.Context, email, password string, profile account.Profile) (*account.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if email == "" || password == "" {
		return nil, apperr.ValidationError("Validation failed").WithReason(apperr.ReasonRequired)
	}
	key := strings.ToLower(email)
	if _, exists := s.users[key]; exists {
		return nil, account.ErrDuplicateEmail
	}

	user := &account.User{ID: "user-" + key, Email: email, Username: profile.Username, Role: sec.RoleUser}
	s.users[key] = user
	s.passwords[key] = password
	return user, nil
}

func (s *stubAccounts) Authenticate(_ context.Context, email, password string) (*account.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(email)
	user, ok := s.users[key]
	if !ok || s.passwords[key] != password {
		return nil, account.ErrInvalidCredentials
	}
	return user, nil
}

// memoryThrottle mirrors [auth.RedisThrottle] without expiry.
type memoryThrottle struct {
	mu       sync.Mutex
	limit    int
	failures map[string]int
	broken   bool
}

func newMemoryThrottle(limit int) *memoryThrottle {
	return &memoryThrottle{limit: limit, failures: map[string]int{}}
}

var errStoreDown = errors.New("throttle store down")

func (m *memoryThrottle) Check(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.broken {
		return errStoreDown
	}
	if m.failures[key] >= m.limit {
		return apperr.RateLimited(60)
	}
	return nil
}

func (m *memoryThrottle) RecordFailure(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.broken {
		return errStoreDown
	}
	m.failures[key]++
	return nil
}

func (m *memoryThrottle) Reset(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.broken {
		return errStoreDown
	}
	delete(m.failures, key)
	return nil
}

func newTokenService(t *testing.T) *sec.TokenService {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return sec.NewTokenServiceFromKeys(key, &key.PublicKey, "yamdb.test")
}

func newService(t *testing.T, throttle auth.Throttle) (*auth.Service, *sec.TokenService) {
	tokens := newTokenService(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return auth.NewService(newStubAccounts(), tokens, throttle, time.Hour, logger), tokens
}

// # Tests

/*
TestRegister_IssuesVerifiableToken signs the new user in with a token that
carries their id and role.
*/
func TestRegister_IssuesVerifiableToken(t *testing.T) {
	service, tokens := newService(t, newMemoryThrottle(3))
	ctx := context.Background()

	session, err := service.Register(ctx, "a@example.com", "correct horse", account.Profile{Username: pointer.To("alice")})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", session.TokenType)
	assert.Equal(t, 3600, session.ExpiresIn)

	claims, err := tokens.VerifyToken(session.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, sec.RoleUser, claims.Role)

	_, err = service.Register(ctx, "A@example.com", "correct horse", account.Profile{})
	assert.True(t, apperr.HasReason(err, apperr.ReasonDuplicateEmail))
}

func TestLogin(t *testing.T) {
	service, tokens := newService(t, newMemoryThrottle(3))
	ctx := context.Background()

	_, err := service.Register(ctx, "a@example.com", "correct horse", account.Profile{})
	require.NoError(t, err)

	session, err := service.Login(ctx, "a@example.com", "correct horse")
	require.NoError(t, err)
	_, err = tokens.VerifyToken(session.AccessToken)
	assert.NoError(t, err)

	_, err = service.Login(ctx, "a@example.com", "wrong")
	assert.True(t, apperr.HasReason(err, apperr.ReasonInvalidCredentials))
}

/*
TestLogin_ThrottlesAfterRepeatedFailures locks the email out, even for the
correct password, once the attempt limit is reached.
*/
func TestLogin_ThrottlesAfterRepeatedFailures(t *testing.T) {
	throttle := newMemoryThrottle(3)
	service, _ := newService(t, throttle)
	ctx := context.Background()

	_, err := service.Register(ctx, "a@example.com", "correct horse", account.Profile{})
	require.NoError(t, err)

	// One failure, then a success: the counter resets.
	_, _ = service.Login(ctx, "a@example.com", "wrong")
	_, err = service.Login(ctx, "a@example.com", "correct horse")
	require.NoError(t, err)
	assert.Zero(t, throttle.failures["a@example.com"])

	for range 3 {
		_, err = service.Login(ctx, "A@Example.com", "wrong")
		assert.True(t, apperr.HasCode(err, apperr.CodeUnauthorized))
	}

	_, err = service.Login(ctx, "a@example.com", "correct horse")
	assert.True(t, apperr.HasCode(err, apperr.CodeRateLimited))

	// Other identities are unaffected.
	_, err = service.Login(ctx, "b@example.com", "whatever")
	assert.True(t, apperr.HasCode(err, apperr.CodeUnauthorized))
}

func TestLogin_ThrottleOutageDoesNotBlock(t *testing.T) {
	throttle := newMemoryThrottle(3)
	service, _ := newService(t, throttle)
	ctx := context.Background()

	_, err := service.Register(ctx, "a@example.com", "correct horse", account.Profile{})
	require.NoError(t, err)

	throttle.broken = true

	_, err = service.Login(ctx, "a@example.com", "correct horse")
	assert.NoError(t, err)

	_, err = service.Login(ctx, "a@example.com", "wrong")
	assert.True(t, apperr.HasReason(err, apperr.ReasonInvalidCredentials))
}
