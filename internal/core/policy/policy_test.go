// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package policy_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/yamdb/internal/core/policy"
	"github.com/taibuivan/yamdb/internal/platform/apperr"
	"github.com/taibuivan/yamdb/internal/platform/sec"
)

/*
TestCanWrite_Matrix walks every (role, ownership, action) combination.
*/
func TestCanWrite_Matrix(t *testing.T) {
	const author = "author-1"

	user := &policy.Actor{UserID: "user-9", Role: sec.RoleUser}
	owner := &policy.Actor{UserID: author, Role: sec.RoleUser}
	moderator := &policy.Actor{UserID: "mod-1", Role: sec.RoleModerator}
	admin := &policy.Actor{UserID: "admin-1", Role: sec.RoleAdmin}
	bogus := &policy.Actor{UserID: "x", Role: sec.Role("superuser")}

	tests := []struct {
		name   string
		actor  *policy.Actor
		action policy.Action
		want   bool
	}{
		{"anonymous_create", nil, policy.ActionCreate, false},
		{"anonymous_update", nil, policy.ActionUpdate, false},
		{"anonymous_delete", nil, policy.ActionDelete, false},

		{"user_create", user, policy.ActionCreate, true},
		{"user_update_other", user, policy.ActionUpdate, false},
		{"user_delete_other", user, policy.ActionDelete, false},

		{"owner_update", owner, policy.ActionUpdate, true},
		{"owner_delete", owner, policy.ActionDelete, true},

		{"moderator_update_other", moderator, policy.ActionUpdate, true},
		{"moderator_delete_other", moderator, policy.ActionDelete, true},
		{"admin_update_other", admin, policy.ActionUpdate, true},
		{"admin_delete_other", admin, policy.ActionDelete, true},

		{"unknown_role_create", bogus, policy.ActionCreate, false},
		{"unknown_action", admin, policy.Action(99), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, policy.CanWrite(tt.actor, author, tt.action))
		})
	}
}

func TestAuthorize_DenialIsForbidden(t *testing.T) {
	user := &policy.Actor{UserID: "user-9", Role: sec.RoleUser}

	err := policy.Authorize(user, "author-1", policy.ActionDelete, "review")
	assert.True(t, apperr.HasCode(err, apperr.CodeForbidden))
	assert.Contains(t, err.Error(), "delete this review")

	err = policy.Authorize(nil, "author-1", policy.ActionCreate, "comment")
	assert.True(t, apperr.HasCode(err, apperr.CodeForbidden))

	assert.NoError(t, policy.Authorize(user, "user-9", policy.ActionUpdate, "review"))
}

func TestCatalogAndUserManagement(t *testing.T) {
	admin := &policy.Actor{UserID: "admin-1", Role: sec.RoleAdmin}
	moderator := &policy.Actor{UserID: "mod-1", Role: sec.RoleModerator}

	assert.True(t, policy.CanManageCatalog(admin))
	assert.False(t, policy.CanManageCatalog(moderator))
	assert.False(t, policy.CanManageCatalog(nil))
	assert.True(t, apperr.HasCode(policy.AuthorizeCatalog(moderator), apperr.CodeForbidden))
	assert.NoError(t, policy.AuthorizeCatalog(admin))

	assert.True(t, policy.CanManageUser(moderator, "mod-1"))
	assert.False(t, policy.CanManageUser(moderator, "user-2"))
	assert.True(t, policy.CanManageUser(admin, "user-2"))
	assert.False(t, policy.CanManageUser(nil, ""))
}

func TestFromClaims(t *testing.T) {
	assert.Nil(t, policy.FromClaims(nil))

	actor := policy.FromClaims(&sec.AuthClaims{UserID: "u1", Role: sec.RoleModerator})
	assert.Equal(t, &policy.Actor{UserID: "u1", Role: sec.RoleModerator}, actor)
}
