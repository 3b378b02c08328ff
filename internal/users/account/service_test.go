// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account_test

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yamdb/internal/core/policy"
	"github.com/taibuivan/yamdb/internal/platform/apperr"
	"github.com/taibuivan/yamdb/internal/platform/sec"
	"github.com/taibuivan/yamdb/internal/users/account"
	"github.com/taibuivan/yamdb/pkg/pagination"
	"github.com/taibuivan/yamdb/pkg/pointer"
)

// memoryAccounts is an in-memory [account.Repository].
type memoryAccounts struct {
	mu    sync.Mutex
	users map[string]*account.User
}

func newMemoryAccounts() *memoryAccounts {
	return &memoryAccounts{users: map[string]*account.User{}}
}

func (m *memoryAccounts) conflict(user *account.User) error {
	for _, other := range m.users {
		if other.ID == user.ID {
			continue
		}
		if strings.EqualFold(other.Email, user.Email) {
			return account.ErrDuplicateEmail
		}
		if other.Username != nil && user.Username != nil && *other.Username == *user.Username {
			return account.ErrDuplicateUsername
		}
	}
	return nil
}

func (m *memoryAccounts) Create(_ context.Context, user *account.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.conflict(user); err != nil {
		return err
	}
	clone := *user
	m.users[user.ID] = &clone
	return nil
}

func (m *memoryAccounts) FindByID(_ context.Context, id string) (*account.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[id]
	if !ok {
		return nil, apperr.NotFound("User")
	}
	clone := *user
	return &clone, nil
}

func (m *memoryAccounts) FindByEmail(_ context.Context, email string) (*account.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, user := range m.users {
		if strings.EqualFold(user.Email, email) {
			clone := *user
			return &clone, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (m *memoryAccounts) List(_ context.Context, _ pagination.Params) ([]*account.User, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*account.User, 0, len(m.users))
	for _, user := range m.users {
		out = append(out, user)
	}
	return out, len(out), nil
}

func (m *memoryAccounts) UpdateProfile(_ context.Context, user *account.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.conflict(user); err != nil {
		return err
	}
	clone := *user
	m.users[user.ID] = &clone
	return nil
}

func (m *memoryAccounts) SetRole(_ context.Context, id string, role sec.Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.users[id].Role = role
	return nil
}

func (m *memoryAccounts) Delete(_ context.Context, id string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[id]; !ok {
		return nil, apperr.NotFound("User")
	}
	delete(m.users, id)
	return nil, nil
}

func newService() (*account.Service, *memoryAccounts) {
	repo := newMemoryAccounts()
	return account.NewService(repo, slog.New(slog.NewTextHandler(io.Discard, nil))), repo
}

// # Creation

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "John.Doe@example.com", account.NormalizeEmail("  John.Doe@EXAMPLE.COM "))
	assert.Equal(t, "no-at-sign", account.NormalizeEmail("no-at-sign"))
}

/*
TestCreateUser_RoleAndHash checks the default role and that only a hash is kept.
*/
func TestCreateUser_RoleAndHash(t *testing.T) {
	service, repo := newService()
	ctx := context.Background()

	user, err := service.CreateUser(ctx, "Reader@Example.COM", "correct horse", account.Profile{Username: pointer.To("reader")})
	require.NoError(t, err)
	assert.Equal(t, sec.RoleUser, user.Role)
	assert.Equal(t, "Reader@example.com", user.Email)
	assert.NotEqual(t, "correct horse", repo.users[user.ID].PasswordHash)
	assert.True(t, sec.CheckPasswordHash("correct horse", repo.users[user.ID].PasswordHash))

	admin, err := service.CreateSuperuser(ctx, "root@example.com", "correct horse", account.Profile{})
	require.NoError(t, err)
	assert.Equal(t, sec.RoleAdmin, admin.Role)
}

func TestCreateUser_Validation(t *testing.T) {
	service, _ := newService()
	ctx := context.Background()

	_, err := service.CreateUser(ctx, "", "correct horse", account.Profile{})
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))
	assert.True(t, apperr.HasReason(err, apperr.ReasonRequired))

	_, err = service.CreateUser(ctx, "a@example.com", "", account.Profile{})
	assert.True(t, apperr.HasReason(err, apperr.ReasonRequired))

	_, err = service.CreateUser(ctx, "not an email", "correct horse", account.Profile{})
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))

	_, err = service.CreateUser(ctx, "a@example.com", "correct horse", account.Profile{Username: pointer.To("bad name!")})
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))
}

/*
TestCreateUser_DuplicateEmail treats addresses differing only in case as one identity.
*/
func TestCreateUser_DuplicateEmail(t *testing.T) {
	service, _ := newService()
	ctx := context.Background()

	_, err := service.CreateUser(ctx, "a@example.com", "correct horse", account.Profile{Username: pointer.To("alice")})
	require.NoError(t, err)

	_, err = service.CreateUser(ctx, "A@EXAMPLE.com", "correct horse", account.Profile{})
	assert.True(t, apperr.HasReason(err, apperr.ReasonDuplicateEmail))

	_, err = service.CreateUser(ctx, "b@example.com", "correct horse", account.Profile{Username: pointer.To("alice")})
	assert.True(t, apperr.HasReason(err, apperr.ReasonDuplicateUsername))
}

// # Authentication

func TestAuthenticate(t *testing.T) {
	service, _ := newService()
	ctx := context.Background()

	created, err := service.CreateUser(ctx, "a@example.com", "correct horse", account.Profile{})
	require.NoError(t, err)

	user, err := service.Authenticate(ctx, "A@Example.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)

	_, wrongPassword := service.Authenticate(ctx, "a@example.com", "battery staple")
	_, unknownEmail := service.Authenticate(ctx, "ghost@example.com", "correct horse")

	for _, err := range []error{wrongPassword, unknownEmail} {
		assert.True(t, apperr.HasCode(err, apperr.CodeUnauthorized))
		assert.True(t, apperr.HasReason(err, apperr.ReasonInvalidCredentials))
	}
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
}

// # Profile & Roles

func TestUpdateProfile_SelfOrAdmin(t *testing.T) {
	service, _ := newService()
	ctx := context.Background()

	owner, err := service.CreateUser(ctx, "a@example.com", "correct horse", account.Profile{})
	require.NoError(t, err)
	other, err := service.CreateUser(ctx, "b@example.com", "correct horse", account.Profile{})
	require.NoError(t, err)

	ownerActor := &policy.Actor{UserID: owner.ID, Role: sec.RoleUser}
	otherActor := &policy.Actor{UserID: other.ID, Role: sec.RoleModerator}
	adminActor := &policy.Actor{UserID: "admin", Role: sec.RoleAdmin}

	updated, err := service.UpdateProfile(ctx, ownerActor, owner.ID, account.ProfileInput{Bio: pointer.To("Film buff"), Username: pointer.To("  owner ")})
	require.NoError(t, err)
	assert.Equal(t, "Film buff", updated.Bio)
	assert.Equal(t, "owner", *updated.Username)

	_, err = service.UpdateProfile(ctx, otherActor, owner.ID, account.ProfileInput{Bio: pointer.To("x")})
	assert.True(t, apperr.HasCode(err, apperr.CodeForbidden))

	_, err = service.UpdateProfile(ctx, adminActor, owner.ID, account.ProfileInput{FirstName: pointer.To("Ann")})
	require.NoError(t, err)

	_, err = service.UpdateProfile(ctx, ownerActor, owner.ID, account.ProfileInput{Username: pointer.To("me")})
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))
}

/*
TestSetRole_NeverGrantsAdmin keeps admin reachable only through CreateSuperuser.
*/
func TestSetRole_NeverGrantsAdmin(t *testing.T) {
	service, _ := newService()
	ctx := context.Background()

	target, err := service.CreateUser(ctx, "a@example.com", "correct horse", account.Profile{})
	require.NoError(t, err)

	adminActor := &policy.Actor{UserID: "admin", Role: sec.RoleAdmin}
	moderatorActor := &policy.Actor{UserID: "mod", Role: sec.RoleModerator}

	promoted, err := service.SetRole(ctx, adminActor, target.ID, sec.RoleModerator)
	require.NoError(t, err)
	assert.Equal(t, sec.RoleModerator, promoted.Role)

	_, err = service.SetRole(ctx, adminActor, target.ID, sec.RoleAdmin)
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))

	_, err = service.SetRole(ctx, adminActor, target.ID, sec.Role("root"))
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))

	_, err = service.SetRole(ctx, moderatorActor, target.ID, sec.RoleUser)
	assert.True(t, apperr.HasCode(err, apperr.CodeForbidden))

	_, err = service.SetRole(ctx, adminActor, adminActor.UserID, sec.RoleUser)
	assert.True(t, apperr.HasCode(err, apperr.CodeForbidden))
}

func TestDeleteUser_Policy(t *testing.T) {
	service, _ := newService()
	ctx := context.Background()

	target, err := service.CreateUser(ctx, "a@example.com", "correct horse", account.Profile{})
	require.NoError(t, err)

	stranger := &policy.Actor{UserID: "someone", Role: sec.RoleModerator}
	assert.True(t, apperr.HasCode(service.DeleteUser(ctx, stranger, target.ID), apperr.CodeForbidden))
	assert.True(t, apperr.HasCode(service.DeleteUser(ctx, nil, target.ID), apperr.CodeForbidden))

	self := &policy.Actor{UserID: target.ID, Role: sec.RoleUser}
	require.NoError(t, service.DeleteUser(ctx, self, target.ID))
	assert.True(t, apperr.HasCode(service.DeleteUser(ctx, self, target.ID), apperr.CodeNotFound))

	_, _, err = service.ListUsers(ctx, stranger, pagination.Params{})
	assert.True(t, apperr.HasCode(err, apperr.CodeForbidden))
}
