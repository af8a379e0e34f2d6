package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/tourism-portal/internal/middleware"
)

// RegisterTourist registers the signed-in actions of the booking flow, the
// course flow and the tourist profile. Each action runs behind the guard of
// the screen it is posted from. Enrolling only waits for the session to
// settle: an anonymous enroll remembers the course before it is sent to
// login.
func RegisterTourist(g *echo.Group, d Deps) {
	g.POST("/courses/:id/enroll", d.Public.Enroll, middleware.Settled(d.GuardWait))

	g.POST("/booking/:id", d.Booking.Begin, d.guard("/booking/:id"))
	pay := middleware.NewTokenBucket(d.RateLimit, d.Redis, d.Log)
	g.POST("/payment/:bookingId", d.Booking.Pay, d.guard("/payment/:bookingId"), pay)

	profile := d.guard("/tourist/profile")
	g.POST("/tourist/profile", d.Account.UpdateProfile("tourist-profile", "/tourist/profile"), profile)
	g.POST("/tourist/profile/password", d.Account.ChangePassword("tourist-profile", "/tourist/profile"), profile)
	g.POST("/tourist/my-courses/:enrollmentId/complete", d.Account.CompleteCourse, d.guard("/tourist/my-courses"))
}
