package access

import "github.com/iliyamo/tourism-portal/internal/model"

// Screen is a navigable path and the requirement guarding it. Paths use the
// router's ":param" syntax.
type Screen struct {
	Path        string
	View        string
	Requirement Requirement
}

var screens = []Screen{
	// public
	{"/", "home", None()},
	{"/login", "login", None()},
	{"/register", "register", None()},
	{"/explore", "explore", None()},
	{"/experiences/:id", "experience", None()},
	{"/contact", "contact", None()},
	{"/courses", "courses", None()},
	{"/courses/:id", "course", None()},
	{"/admin/login", "admin-login", None()},
	{"/guide/login", "guide-login", None()},
	{"/guide/register", "guide-register", None()},

	// tourist
	{"/booking/:id", "booking", SignedIn()},
	{"/payment/:bookingId", "payment", SignedIn()},
	{"/booking-success/:bookingId", "booking-success", SignedIn()},
	{"/tourist/profile", "tourist-profile", SignedIn()},
	{"/tourist/my-courses", "my-courses", SignedIn()},
	{"/courses/:courseId/content/:enrollmentId", "course-content", SignedIn()},

	// admin
	{"/admin", "admin", RequireRole(model.RoleAdmin)},
	{"/admin/dashboard", "admin-dashboard", RequireRole(model.RoleAdmin)},
	{"/admin/profile", "admin-profile", RequireRole(model.RoleAdmin)},
	{"/admin/users", "admin-users", RequireRole(model.RoleAdmin)},
	{"/admin/users/:id", "admin-user", RequireRole(model.RoleAdmin)},
	{"/admin/courses", "admin-courses", RequireRole(model.RoleAdmin)},
	{"/admin/requirements", "admin-requirements", RequireRole(model.RoleAdmin)},
	{"/admin/messages", "admin-messages", RequireAdmin()},

	// provider
	{"/guide/dashboard", "guide-dashboard", RequireRole(model.RoleProvider)},
	{"/guide/profile", "guide-profile", RequireRole(model.RoleProvider)},
	{"/guide/experiences", "guide-experiences", RequireRole(model.RoleProvider)},
	{"/guide/experiences/new", "guide-experience-new", RequireRole(model.RoleProvider)},
	{"/guide/experiences/edit/:id", "guide-experience-edit", RequireRole(model.RoleProvider)},
	{"/guide/bookings", "guide-bookings", RequireRole(model.RoleProvider)},
	{"/guide/bookings/:id", "guide-booking", RequireRole(model.RoleProvider)},
}

var byPath = func() map[string]Screen {
	m := make(map[string]Screen, len(screens))
	for _, s := range screens {
		m[s.Path] = s
	}
	return m
}()

// Screens returns the route table in declaration order.
func Screens() []Screen {
	out := make([]Screen, len(screens))
	copy(out, screens)
	return out
}

// For returns the requirement declared for a route pattern. Unknown patterns
// are treated as signed-in screens so a forgotten entry fails closed.
func For(path string) Requirement {
	if s, ok := byPath[path]; ok {
		return s.Requirement
	}
	return SignedIn()
}

// ViewName returns the view name declared for a route pattern.
func ViewName(path string) string {
	if s, ok := byPath[path]; ok {
		return s.View
	}
	return ""
}
