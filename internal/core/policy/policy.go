// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package policy decides who may write which user-authored content.

The decision is a pure function of (actor, resource author, action): no state,
no I/O. Every mutating review and comment operation calls [Authorize] before it
touches storage, and a denial always surfaces as a FORBIDDEN error.

Rules:

  - create: any authenticated actor.
  - update / delete: the resource's author, or a moderator/admin.
  - anonymous actors (nil): denied everything.
*/
package policy

import (
	"fmt"

	"github.com/taibuivan/yamdb/internal/platform/apperr"
	"github.com/taibuivan/yamdb/internal/platform/sec"
)

// Action is a write operation on user-authored content.
type Action int

const (
	ActionCreate Action = iota + 1
	ActionUpdate
	ActionDelete
)

func (a Action) String() string {
	switch a {
	case ActionCreate:
		return "create"
	case ActionUpdate:
		return "update"
	case ActionDelete:
		return "delete"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// Actor is the authenticated caller. A nil *Actor is an anonymous caller.
type Actor struct {
	UserID string
	Role   sec.Role
}

// FromClaims converts verified token claims into an [Actor].
// Nil claims yield a nil (anonymous) actor.
func FromClaims(claims *sec.AuthClaims) *Actor {
	if claims == nil {
		return nil
	}
	return &Actor{UserID: claims.UserID, Role: claims.Role}
}

// CanWrite reports whether actor may perform action on a resource authored by
// resourceAuthorID. For ActionCreate the author is ignored.
func CanWrite(actor *Actor, resourceAuthorID string, action Action) bool {
	if actor == nil || actor.UserID == "" || !actor.Role.Valid() {
		return false
	}

	switch action {
	case ActionCreate:
		return true
	case ActionUpdate, ActionDelete:
		if actor.UserID == resourceAuthorID {
			return true
		}
		return isStaff(actor.Role)
	default:
		return false
	}
}

// isStaff matches every role explicitly so a new role cannot slip through.
func isStaff(role sec.Role) bool {
	switch role {
	case sec.RoleAdmin, sec.RoleModerator:
		return true
	case sec.RoleUser:
		return false
	default:
		return false
	}
}

// Authorize is [CanWrite] returning a FORBIDDEN error on denial, anonymous
// callers included. The HTTP layer rejects anonymous writes with 401 before
// they get here.
func Authorize(actor *Actor, resourceAuthorID string, action Action, resource string) error {
	if CanWrite(actor, resourceAuthorID, action) {
		return nil
	}
	return apperr.Forbidden(fmt.Sprintf("You may not %s this %s", action, resource))
}

// CanManageCatalog reports whether actor may write categories, genres and titles.
func CanManageCatalog(actor *Actor) bool {
	return actor != nil && actor.Role == sec.RoleAdmin
}

// AuthorizeCatalog is [CanManageCatalog] returning a typed error.
func AuthorizeCatalog(actor *Actor) error {
	if CanManageCatalog(actor) {
		return nil
	}
	return apperr.Forbidden("Only administrators may change the catalog")
}

// CanManageUser reports whether actor may edit or delete the account targetID.
func CanManageUser(actor *Actor, targetID string) bool {
	if actor == nil || actor.UserID == "" {
		return false
	}
	return actor.UserID == targetID || actor.Role == sec.RoleAdmin
}
