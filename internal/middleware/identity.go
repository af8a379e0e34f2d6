package middleware

import "github.com/labstack/echo/v4"

// subjectID identifies the caller for rate limiting: the signed-in user id
// when there is one, else the client id, else "guest".
func subjectID(c echo.Context) string {
	s := SessionFrom(c)
	if s == nil {
		return "guest"
	}
	if id := s.Identity(); id != nil && id.ID != "" {
		return "user:" + id.ID
	}
	return "client:" + s.ClientID()
}

// anonymous reports whether the request has no signed-in identity.
func anonymous(c echo.Context) bool {
	s := SessionFrom(c)
	return s == nil || !s.IsAuthenticated()
}
