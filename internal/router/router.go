package router // package router maps portal screens and form actions onto handlers

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/tourism-portal/internal/access"
	"github.com/iliyamo/tourism-portal/internal/config"
	"github.com/iliyamo/tourism-portal/internal/handler"
	"github.com/iliyamo/tourism-portal/internal/logger"
	"github.com/iliyamo/tourism-portal/internal/middleware"
	"github.com/iliyamo/tourism-portal/internal/model"
	"github.com/iliyamo/tourism-portal/internal/session"
)

// Deps is everything the router wires together. Redis is optional; without
// it the cache is off and rate limiting is kept per instance.
type Deps struct {
	Log       *slog.Logger
	Sessions  middleware.SessionConfig
	Manager   *session.Manager
	GuardWait time.Duration
	RateLimit config.RateLimitConfig
	Cache     config.CacheConfig
	Redis     *redis.Client

	Auth     *handler.AuthHandler
	Public   *handler.PublicHandler
	Booking  *handler.BookingHandler
	Account  *handler.AccountHandler
	Admin    *handler.AdminHandler
	Provider *handler.ProviderHandler
}

func (d Deps) guard(path string) echo.MiddlewareFunc {
	return middleware.Guard(access.For(path), d.GuardWait, d.Log)
}

// New builds the echo instance with global middleware, every screen of the
// access table and every form action.
func New(d Deps) *echo.Echo {
	if d.Log == nil {
		d.Log = slog.Default()
	}
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(logger.Middleware())
	e.Use(middleware.RequestLogger(d.Log))

	RegisterRoutes(e)

	// Everything below needs a session.
	app := e.Group("", middleware.Sessions(d.Sessions, d.Manager))
	RegisterScreens(app, d)
	RegisterAuth(app, d)
	RegisterTourist(app, d)
	RegisterAdmin(app, d)
	RegisterProvider(app, d)
	return e
}

// RegisterRoutes registers the routes that need neither a session nor a
// guard.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// cached lists the anonymous listing screens served through the response
// cache.
var cached = map[string]bool{
	"home":       true,
	"explore":    true,
	"experience": true,
	"courses":    true,
}

// RegisterScreens registers a GET for every screen of the access table,
// each behind the guard for its requirement. A screen without a handler is
// a programming error and panics at startup.
func RegisterScreens(g *echo.Group, d Deps) {
	views := screenHandlers(d)
	cache := middleware.NewRedisCache(d.Cache, d.Redis)
	for _, s := range access.Screens() {
		h, ok := views[s.View]
		if !ok {
			panic(fmt.Sprintf("router: no handler for screen %q (%s)", s.View, s.Path))
		}
		mws := []echo.MiddlewareFunc{middleware.Guard(s.Requirement, d.GuardWait, d.Log)}
		if cached[s.View] {
			mws = append(mws, cache)
		}
		g.GET(s.Path, h, mws...)
	}
}

func screenHandlers(d Deps) map[string]echo.HandlerFunc {
	return map[string]echo.HandlerFunc{
		"home":           d.Public.Home,
		"login":          d.Auth.LoginPage("login"),
		"register":       d.Auth.RegisterPage("register", model.AccountTourist),
		"explore":        d.Public.Explore,
		"experience":     d.Public.Experience,
		"contact":        d.Public.ContactPage,
		"courses":        d.Public.Courses,
		"course":         d.Public.Course,
		"admin-login":    d.Auth.LoginPage("admin-login"),
		"guide-login":    d.Auth.LoginPage("guide-login"),
		"guide-register": d.Auth.RegisterPage("guide-register", model.AccountProvider),

		"booking":         d.Booking.Select,
		"payment":         d.Booking.Payment,
		"booking-success": d.Booking.Success,
		"tourist-profile": d.Account.Profile("tourist-profile"),
		"my-courses":      d.Account.MyCourses,
		"course-content":  d.Account.CourseContent,

		"admin":              d.Admin.Index,
		"admin-dashboard":    d.Admin.Dashboard,
		"admin-profile":      d.Account.Profile("admin-profile"),
		"admin-users":        d.Admin.Users,
		"admin-user":         d.Admin.User,
		"admin-courses":      d.Admin.Courses,
		"admin-requirements": d.Admin.Requirements,
		"admin-messages":     d.Admin.Messages,

		"guide-dashboard":       d.Provider.Dashboard,
		"guide-profile":         d.Account.Profile("guide-profile"),
		"guide-experiences":     d.Provider.Experiences,
		"guide-experience-new":  d.Provider.NewExperience,
		"guide-experience-edit": d.Provider.EditExperience,
		"guide-bookings":        d.Provider.Bookings,
		"guide-booking":         d.Provider.Booking,
	}
}

// RegisterAuth registers the login, registration and logout actions. Login
// and registration are rate limited per client.
func RegisterAuth(g *echo.Group, d Deps) {
	limit := middleware.NewTokenBucket(d.RateLimit, d.Redis, d.Log)
	g.POST(access.LoginPath, d.Auth.Login, limit)
	g.POST("/admin/login", d.Auth.Login, limit)
	g.POST("/guide/login", d.Auth.Login, limit)
	g.POST("/register", d.Auth.Register, limit)
	g.POST("/guide/register", d.Auth.Register, limit)
	g.POST("/logout", d.Auth.Logout)
	g.POST("/contact", d.Public.Contact, limit)
}
