// Package access decides which screens an identity may reach. Evaluate is a
// pure function of its arguments so it can be exercised without a session,
// a request or a clock.
package access

import (
	"sort"
	"strings"

	"github.com/iliyamo/tourism-portal/internal/model"
)

// Kind enumerates the shapes a route requirement can take.
type Kind int

const (
	// Public screens need no identity.
	Public Kind = iota
	// Authenticated screens need any identity.
	Authenticated
	// AdminOnly screens need IsAdmin.
	AdminOnly
	// RoleRequired screens need a single role (admin or provider).
	RoleRequired
	// RolesAllowed screens need membership of at least one listed role.
	RolesAllowed
)

// Requirement is the declarative access constraint attached to a route.
type Requirement struct {
	Kind  Kind
	Role  model.Role
	Roles []model.Role
}

// None is the requirement of a public screen.
func None() Requirement { return Requirement{Kind: Public} }

// SignedIn is the requirement of a screen open to any identity.
func SignedIn() Requirement { return Requirement{Kind: Authenticated} }

// RequireAdmin requires IsAdmin.
func RequireAdmin() Requirement { return Requirement{Kind: AdminOnly} }

// RequireRole requires a single role. Only admin and provider are meaningful;
// other roles behave like SignedIn.
func RequireRole(r model.Role) Requirement { return Requirement{Kind: RoleRequired, Role: r} }

// AllowRoles requires membership of one of roles. An empty list behaves like
// SignedIn.
func AllowRoles(roles ...model.Role) Requirement {
	return Requirement{Kind: RolesAllowed, Roles: roles}
}

// AllowRoleNames is AllowRoles for wire names; "guide" folds into provider and
// unknown names are dropped.
func AllowRoleNames(names ...string) Requirement {
	roles := make([]model.Role, 0, len(names))
	for _, n := range names {
		if r, ok := model.ParseRole(n); ok {
			roles = append(roles, r)
		}
	}
	return AllowRoles(roles...)
}

// String renders the requirement for logs and the route listing.
func (r Requirement) String() string {
	switch r.Kind {
	case Public:
		return "public"
	case Authenticated:
		return "signed-in"
	case AdminOnly:
		return "require-admin"
	case RoleRequired:
		return "role=" + string(r.Role)
	case RolesAllowed:
		names := make([]string, 0, len(r.Roles))
		for _, role := range r.Roles {
			names = append(names, string(role))
		}
		sort.Strings(names)
		return "roles=" + strings.Join(names, "|")
	}
	return "unknown"
}

// Redirect targets.
const (
	LoginPath          = "/login"
	HomePath           = "/"
	AdminDashboardPath = "/admin/dashboard"
	ProviderHomePath   = "/guide/dashboard"
	ExplorePath        = "/explore"
)

// Decision is the outcome of evaluating an identity against a requirement.
// The zero value is not a valid decision; use the package values.
type Decision struct {
	Allowed bool
	Target  string
}

var (
	Allow                  = Decision{Allowed: true}
	RedirectLogin          = Decision{Target: LoginPath}
	RedirectHome           = Decision{Target: HomePath}
	RedirectAdminDashboard = Decision{Target: AdminDashboardPath}
)

// String renders the decision for logs and metrics labels.
func (d Decision) String() string {
	if d.Allowed {
		return "allow"
	}
	return "redirect:" + d.Target
}

// Evaluate classifies (identity, requirement). A nil identity means anonymous.
// Rules are applied in priority order and the first match wins.
func Evaluate(identity *model.Identity, req Requirement) Decision {
	if req.Kind == Public {
		return Allow
	}
	if identity == nil {
		return RedirectLogin
	}

	switch req.Kind {
	case AdminOnly:
		if !identity.IsAdmin {
			return RedirectHome
		}
	case RoleRequired:
		switch req.Role {
		case model.RoleAdmin:
			if !identity.IsAdmin {
				return RedirectHome
			}
		case model.RoleProvider:
			if !identity.IsProvider() {
				// Admins are sent to their own dashboard rather than the public landing page.
				if identity.IsAdmin {
					return RedirectAdminDashboard
				}
				return RedirectHome
			}
		}
	case RolesAllowed:
		if len(req.Roles) > 0 && !hasAnyRole(identity, req.Roles) {
			return RedirectHome
		}
	}
	return Allow
}

func hasAnyRole(identity *model.Identity, roles []model.Role) bool {
	for _, r := range roles {
		if identity.HasRole(r) {
			return true
		}
	}
	return false
}
