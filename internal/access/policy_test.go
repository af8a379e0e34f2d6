package access

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/tourism-portal/internal/model"
)

func identity(acct model.AccountType, admin bool) *model.Identity {
	return &model.Identity{ID: "u1", Email: "u@example.rw", AccountType: acct, IsAdmin: admin}
}

var allRequirements = []Requirement{
	SignedIn(),
	RequireAdmin(),
	RequireRole(model.RoleAdmin),
	RequireRole(model.RoleProvider),
	AllowRoles(model.RoleAdmin),
	AllowRoles(model.RoleProvider, model.RoleTourist),
	AllowRoleNames("guide"),
}

func TestEvaluateAnonymous(t *testing.T) {
	assert.Equal(t, Allow, Evaluate(nil, None()))
	for _, req := range allRequirements {
		assert.Equal(t, RedirectLogin, Evaluate(nil, req), req.String())
	}
}

func TestEvaluateTable(t *testing.T) {
	tourist := identity(model.AccountTourist, false)
	provider := identity(model.AccountProvider, false)
	admin := identity(model.AccountTourist, true)
	adminProvider := identity(model.AccountProvider, true)

	cases := []struct {
		name string
		id   *model.Identity
		req  Requirement
		want Decision
	}{
		{"tourist on signed-in screen", tourist, SignedIn(), Allow},
		{"tourist on require-admin", tourist, RequireAdmin(), RedirectHome},
		{"tourist on admin role", tourist, RequireRole(model.RoleAdmin), RedirectHome},
		{"provider on admin role", provider, RequireRole(model.RoleAdmin), RedirectHome},
		{"provider on require-admin", provider, RequireAdmin(), RedirectHome},
		{"admin on admin role", admin, RequireRole(model.RoleAdmin), Allow},
		{"tourist on provider role", tourist, RequireRole(model.RoleProvider), RedirectHome},
		{"admin tourist on provider role", admin, RequireRole(model.RoleProvider), RedirectAdminDashboard},
		{"provider on provider role", provider, RequireRole(model.RoleProvider), Allow},
		{"admin provider on provider role", adminProvider, RequireRole(model.RoleProvider), Allow},
		{"provider in guide allow-list", provider, AllowRoleNames("guide"), Allow},
		{"admin in admin allow-list", admin, AllowRoles(model.RoleAdmin), Allow},
		{"tourist outside provider allow-list", tourist, AllowRoles(model.RoleProvider), RedirectHome},
		{"tourist in tourist allow-list", tourist, AllowRoleNames("tourist", "guide"), Allow},
		{"empty allow-list", tourist, AllowRoles(), Allow},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Evaluate(tc.id, tc.req))
		})
	}
}

func TestEvaluateGuideSynonymy(t *testing.T) {
	var guide model.Identity
	guide.AccountType = model.ParseAccountType("guide")

	assert.Equal(t, Allow, Evaluate(&guide, RequireRole(model.RoleProvider)))
	assert.Equal(t, Allow, Evaluate(identity(model.AccountProvider, false), AllowRoleNames("guide")))
}

func TestEvaluateIsDeterministic(t *testing.T) {
	id := identity(model.AccountTourist, true)
	for _, req := range allRequirements {
		first := Evaluate(id, req)
		for i := 0; i < 5; i++ {
			assert.Equal(t, first, Evaluate(id, req))
		}
	}
}

func TestRouteTable(t *testing.T) {
	assert.Equal(t, Public, For("/explore").Kind)
	assert.Equal(t, Authenticated, For("/tourist/profile").Kind)
	assert.Equal(t, RequireRole(model.RoleAdmin).String(), For("/admin/dashboard").String())
	assert.Equal(t, RequireRole(model.RoleProvider).String(), For("/guide/bookings/:id").String())
	assert.Equal(t, Authenticated, For("/not/declared").Kind)
	assert.Equal(t, "payment", ViewName("/payment/:bookingId"))

	seen := map[string]bool{}
	for _, s := range Screens() {
		assert.False(t, seen[s.Path], "duplicate path %s", s.Path)
		seen[s.Path] = true
	}
}
