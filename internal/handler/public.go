package handler

import (
	"log/slog"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/tourism-portal/internal/enrollment"
	"github.com/iliyamo/tourism-portal/internal/gateway"
	"github.com/iliyamo/tourism-portal/internal/middleware"
	"github.com/iliyamo/tourism-portal/internal/model"
)

const (
	featuredExperiences = 6
	featuredCourses     = 3
)

// PublicHandler serves the screens open to anonymous visitors.
type PublicHandler struct {
	API         *gateway.Client
	Enrollments *enrollment.Service
	Log         *slog.Logger
}

func NewPublicHandler(api *gateway.Client, enrollments *enrollment.Service, log *slog.Logger) *PublicHandler {
	if log == nil {
		log = slog.Default()
	}
	return &PublicHandler{API: api, Enrollments: enrollments, Log: log}
}

// Home shows a few experiences and courses. A failing half leaves the
// other half on screen with a notice.
func (h *PublicHandler) Home(c echo.Context) error {
	ctx := middleware.GatewayContext(c)
	var (
		exps    []model.Experience
		courses []model.Course
		g       errgroup.Group
		errs    [2]error
	)
	g.Go(func() error {
		exps, errs[0] = h.API.Experiences.List(ctx, model.ExperienceFilter{})
		return nil
	})
	g.Go(func() error {
		courses, errs[1] = h.API.Courses.List(ctx)
		return nil
	})
	_ = g.Wait()

	data := echo.Map{
		"experiences": head(exps, featuredExperiences),
		"courses":     head(courses, featuredCourses),
	}
	for _, err := range errs {
		if err != nil {
			h.Log.WarnContext(ctx, "home: section failed", "error", err)
			return renderNotice(c, "home", data, gateway.UserMessage(err))
		}
	}
	return render(c, "home", data)
}

// head returns at most n leading items, never nil.
func head[T any](in []T, n int) []T {
	if len(in) > n {
		in = in[:n]
	}
	return orEmpty(in)
}

// orEmpty keeps empty lists as [] rather than null in views.
func orEmpty[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}

// Explore lists experiences filtered by category, location and free text.
func (h *PublicHandler) Explore(c echo.Context) error {
	f := model.ExperienceFilter{
		Category: strings.TrimSpace(c.QueryParam("category")),
		Location: strings.TrimSpace(c.QueryParam("location")),
		Search:   strings.TrimSpace(c.QueryParam("search")),
	}
	exps, err := h.API.Experiences.List(middleware.GatewayContext(c), f)
	if err != nil {
		return fail(c, h.Log, "explore", remote(err))
	}
	return render(c, "explore", echo.Map{"experiences": orEmpty(exps), "filter": echo.Map{
		"category": f.Category, "location": f.Location, "search": f.Search,
	}})
}

// Experience shows one experience.
func (h *PublicHandler) Experience(c echo.Context) error {
	exp, err := h.API.Experiences.Get(middleware.GatewayContext(c), c.Param("id"))
	if err != nil {
		return fail(c, h.Log, "experience", lookup(err, "experience", "/explore"))
	}
	return render(c, "experience", exp)
}

// ContactPage renders the contact form.
func (h *PublicHandler) ContactPage(c echo.Context) error {
	return render(c, "contact", echo.Map{"sent": c.QueryParam("sent") == "1"})
}

type contactForm struct {
	Name    string `json:"name" form:"name" validate:"required"`
	Email   string `json:"email" form:"email" validate:"required,email"`
	Message string `json:"message" form:"message" validate:"required,min=10"`
}

// Contact submits the contact form.
func (h *PublicHandler) Contact(c echo.Context) error {
	var f contactForm
	if err := bindForm(c, &f); err != nil {
		return fail(c, h.Log, "contact", err)
	}
	_, err := h.API.Contact.Submit(middleware.GatewayContext(c), model.ContactMessage{
		Name:    strings.TrimSpace(f.Name),
		Email:   strings.TrimSpace(f.Email),
		Message: strings.TrimSpace(f.Message),
	})
	if err != nil {
		return fail(c, h.Log, "contact", remote(err))
	}
	return seeOther(c, "/contact?sent=1")
}

// Courses lists the course catalogue.
func (h *PublicHandler) Courses(c echo.Context) error {
	courses, err := h.API.Courses.List(middleware.GatewayContext(c))
	if err != nil {
		return fail(c, h.Log, "courses", remote(err))
	}
	return render(c, "courses", orEmpty(courses))
}

// Course shows a course and, when signed in, the caller's enrollment.
func (h *PublicHandler) Course(c echo.Context) error {
	view, err := h.Enrollments.Course(middleware.GatewayContext(c), middleware.IdentityFrom(c), c.Param("id"))
	if err != nil {
		return fail(c, h.Log, "course", err)
	}
	return render(c, "course", view)
}

// Enroll enrolls the caller and opens the course content. Anonymous callers
// are sent to login and brought back to the course afterwards.
func (h *PublicHandler) Enroll(c echo.Context) error {
	courseID := c.Param("id")
	en, err := h.Enrollments.Enroll(middleware.GatewayContext(c), middleware.IdentityFrom(c), middleware.SessionFrom(c), courseID)
	if err != nil {
		return fail(c, h.Log, "course", err)
	}
	return seeOther(c, "/courses/"+url.PathEscape(courseID)+"/content/"+url.PathEscape(en.ID))
}
