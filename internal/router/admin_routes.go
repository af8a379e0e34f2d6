package router

import "github.com/labstack/echo/v4"

// RegisterAdmin registers the admin actions. All of them require the admin
// role.
func RegisterAdmin(g *echo.Group, d Deps) {
	a := g.Group("/admin", d.guard("/admin/dashboard"))

	a.POST("/profile", d.Account.UpdateProfile("admin-profile", "/admin/profile"))
	a.POST("/profile/password", d.Account.ChangePassword("admin-profile", "/admin/profile"))

	a.POST("/users", d.Admin.CreateUser)
	a.POST("/users/:id", d.Admin.UpdateUser)
	a.POST("/users/:id/delete", d.Admin.DeleteUser)

	a.POST("/courses", d.Admin.CreateCourse)
	a.POST("/courses/:id", d.Admin.UpdateCourse)
	a.POST("/courses/:id/delete", d.Admin.DeleteCourse)

	a.POST("/messages/:id", d.Admin.UpdateMessage)
	a.POST("/messages/:id/delete", d.Admin.DeleteMessage)
}
