package router

import "github.com/labstack/echo/v4"

// RegisterProvider registers the guide actions. Ownership of each record is
// checked in the handler; the guard only checks the provider role.
func RegisterProvider(g *echo.Group, d Deps) {
	p := g.Group("/guide", d.guard("/guide/dashboard"))

	p.POST("/profile", d.Account.UpdateProfile("guide-profile", "/guide/profile"))
	p.POST("/profile/password", d.Account.ChangePassword("guide-profile", "/guide/profile"))

	p.POST("/experiences/new", d.Provider.CreateExperience)
	p.POST("/experiences/edit/:id", d.Provider.UpdateExperience)
	p.POST("/experiences/:id/delete", d.Provider.DeleteExperience)

	p.POST("/bookings/:id/status", d.Provider.UpdateBookingStatus)
}
