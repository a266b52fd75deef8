// Package access decides whether a resolved identity may perform an operation.
// Check is pure: it reads nothing but its arguments.
package access

import (
	"boma/internal/apperr"
	"boma/internal/models"
)

type kind int

const (
	kindPublic kind = iota + 1
	kindAuthenticated
	kindRoles
	kindOwnerOrAdmin
)

// Requirement is built with Public, Authenticated, Roles or OwnerOrAdmin.
// The zero value denies everyone.
type Requirement struct {
	kind    kind
	roles   []models.Role
	ownerID string
}

func Public() Requirement {
	return Requirement{kind: kindPublic}
}

func Authenticated() Requirement {
	return Requirement{kind: kindAuthenticated}
}

func Roles(roles ...models.Role) Requirement {
	return Requirement{kind: kindRoles, roles: roles}
}

func OwnerOrAdmin(ownerID string) Requirement {
	return Requirement{kind: kindOwnerOrAdmin, ownerID: ownerID}
}

var (
	ErrUnauthenticated = apperr.Unauthenticated("authentication_required", "authentication required")
	ErrForbidden       = apperr.Forbidden("forbidden", "insufficient permissions")
)

// Check returns nil when subject satisfies req, ErrUnauthenticated when a subject is
// required but absent, and ErrForbidden otherwise.
func Check(req Requirement, subject *models.User) error {
	if req.kind == kindPublic {
		return nil
	}
	if subject == nil {
		return ErrUnauthenticated
	}

	switch req.kind {
	case kindAuthenticated:
		return nil
	case kindRoles:
		for _, r := range req.roles {
			if subject.Role == r {
				return nil
			}
		}
		return ErrForbidden
	case kindOwnerOrAdmin:
		if subject.IsAdmin() {
			return nil
		}
		if req.ownerID != "" && subject.ID == req.ownerID {
			return nil
		}
		return ErrForbidden
	default:
		return ErrForbidden
	}
}
