package access

import (
	"net/url"
	"strings"

	"github.com/iliyamo/tourism-portal/internal/model"
)

// LocalPath returns from when it is a path on this site, else "". Scheme
// and host-relative forms ("//evil", "/\evil") are rejected, as are the
// auth screens themselves.
func LocalPath(from string) string {
	if from == "" || !strings.HasPrefix(from, "/") || strings.HasPrefix(from, "//") || strings.HasPrefix(from, "/\\") {
		return ""
	}
	u, err := url.Parse(from)
	if err != nil || u.IsAbs() || u.Host != "" {
		return ""
	}
	switch u.Path {
	case LoginPath, "/register", "/logout":
		return ""
	}
	return from
}

// AfterLogin picks where a freshly signed-in identity lands. Dashboards win
// over everything; then a course the user tried to enroll in while
// anonymous; then the page they were sent away from.
func AfterLogin(id model.Identity, pendingCourse, from string) string {
	switch {
	case id.IsAdmin:
		return AdminDashboardPath
	case id.IsProvider():
		return ProviderHomePath
	case pendingCourse != "":
		return "/courses/" + url.PathEscape(pendingCourse)
	}
	if p := LocalPath(from); p != "" {
		return p
	}
	return HomePath
}

// AfterRegister picks where a freshly registered identity lands.
func AfterRegister(id model.Identity) string {
	if id.IsProvider() {
		return ProviderHomePath
	}
	return HomePath
}
