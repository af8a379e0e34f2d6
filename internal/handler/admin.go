package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/tourism-portal/internal/access"
	"github.com/iliyamo/tourism-portal/internal/apperror"
	"github.com/iliyamo/tourism-portal/internal/gateway"
	"github.com/iliyamo/tourism-portal/internal/middleware"
	"github.com/iliyamo/tourism-portal/internal/model"
)

// RecentBookings is how many bookings the admin dashboard shows.
const RecentBookings = 4

// AdminHandler serves the /admin screens.
type AdminHandler struct {
	API *gateway.Client
	Log *slog.Logger
}

func NewAdminHandler(api *gateway.Client, log *slog.Logger) *AdminHandler {
	if log == nil {
		log = slog.Default()
	}
	return &AdminHandler{API: api, Log: log}
}

// Index sends /admin to the dashboard.
func (h *AdminHandler) Index(c echo.Context) error {
	return c.Redirect(http.StatusFound, access.AdminDashboardPath)
}

// Dashboard loads the app stats and the latest bookings concurrently.
func (h *AdminHandler) Dashboard(c echo.Context) error {
	var (
		stats  model.AppStats
		recent []model.Booking
	)
	g, ctx := errgroup.WithContext(middleware.GatewayContext(c))
	g.Go(func() error {
		var err error
		stats, err = h.API.Stats.App(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		recent, err = h.API.Bookings.List(ctx, model.BookingFilter{Limit: RecentBookings})
		return err
	})
	if err := g.Wait(); err != nil {
		return fail(c, h.Log, "admin-dashboard", remote(err))
	}
	return render(c, "admin-dashboard", echo.Map{"stats": stats, "recentBookings": head(recent, RecentBookings)})
}

// Users lists every account.
func (h *AdminHandler) Users(c echo.Context) error {
	users, err := h.API.Users.List(middleware.GatewayContext(c))
	if err != nil {
		return fail(c, h.Log, "admin-users", remote(err))
	}
	return render(c, "admin-users", orEmpty(users))
}

// User shows one account with its bookings, or its experiences and the
// bookings made on them for providers.
func (h *AdminHandler) User(c echo.Context) error {
	ctx := middleware.GatewayContext(c)
	userID := c.Param("id")
	user, err := h.API.Users.Get(ctx, userID)
	if err != nil {
		return fail(c, h.Log, "admin-user", lookup(err, "user", "/admin/users"))
	}

	var (
		exps     []model.Experience
		bookings []model.Booking
	)
	g, gctx := errgroup.WithContext(ctx)
	if model.ParseAccountType(user.AccountType) == model.AccountProvider {
		g.Go(func() error {
			var err error
			exps, err = h.API.Experiences.List(gctx, model.ExperienceFilter{HostID: userID})
			return err
		})
		g.Go(func() error {
			var err error
			bookings, err = h.API.Bookings.ForProvider(gctx, userID)
			return err
		})
	} else {
		g.Go(func() error {
			var err error
			bookings, err = h.API.Bookings.ForUser(gctx, userID, model.BookingFilter{})
			return err
		})
	}
	data := echo.Map{"user": user}
	if err := g.Wait(); err != nil {
		h.Log.WarnContext(ctx, "admin: user activity failed", "user_id", userID, "error", err)
		return renderNotice(c, "admin-user", data, gateway.UserMessage(err))
	}
	data["experiences"] = orEmpty(exps)
	data["bookings"] = orEmpty(bookings)
	return render(c, "admin-user", data)
}

type adminUserForm struct {
	FirstName   string `json:"firstName" form:"firstName" validate:"required"`
	LastName    string `json:"lastName" form:"lastName" validate:"required"`
	Email       string `json:"email" form:"email" validate:"required,email"`
	Password    string `json:"password" form:"password" validate:"required,min=6"`
	AccountType string `json:"accountType" form:"accountType" validate:"omitempty,oneof=tourist guide provider"`
}

// CreateUser creates an account on behalf of someone else.
func (h *AdminHandler) CreateUser(c echo.Context) error {
	var f adminUserForm
	if err := bindForm(c, &f); err != nil {
		return fail(c, h.Log, "admin-users", err)
	}
	u, err := h.API.Users.Create(middleware.GatewayContext(c), model.Registration{
		FirstName:   strings.TrimSpace(f.FirstName),
		LastName:    strings.TrimSpace(f.LastName),
		Email:       strings.ToLower(strings.TrimSpace(f.Email)),
		Password:    f.Password,
		AccountType: string(model.ParseAccountType(f.AccountType)),
	})
	if err != nil {
		return fail(c, h.Log, "admin-users", authFailure(err))
	}
	return seeOther(c, "/admin/users/"+u.ID)
}

type adminUserUpdateForm struct {
	FirstName   string `json:"firstName" form:"firstName"`
	LastName    string `json:"lastName" form:"lastName"`
	Email       string `json:"email" form:"email" validate:"omitempty,email"`
	AccountType string `json:"accountType" form:"accountType" validate:"omitempty,oneof=tourist guide provider"`
	IsAdmin     *bool  `json:"isAdmin" form:"isAdmin"`
}

// UpdateUser changes an account's names, type or admin flag. An admin
// cannot revoke their own admin flag.
func (h *AdminHandler) UpdateUser(c echo.Context) error {
	var f adminUserUpdateForm
	if err := bindForm(c, &f); err != nil {
		return fail(c, h.Log, "admin-user", err)
	}
	userID := c.Param("id")
	if self := middleware.IdentityFrom(c); self != nil && self.ID == userID && f.IsAdmin != nil && !*f.IsAdmin {
		return fail(c, h.Log, "admin-user", apperror.Validation("You cannot remove your own admin access.",
			map[string]string{"isAdmin": "Ask another administrator"}))
	}
	upd := model.UserUpdate{
		FirstName: optional(f.FirstName),
		LastName:  optional(f.LastName),
		Email:     optional(strings.ToLower(f.Email)),
		IsAdmin:   f.IsAdmin,
	}
	if f.AccountType != "" {
		at := string(model.ParseAccountType(f.AccountType))
		upd.AccountType = &at
	}
	if _, err := h.API.Users.Update(middleware.GatewayContext(c), userID, upd); err != nil {
		return fail(c, h.Log, "admin-user", lookup(err, "user", "/admin/users"))
	}
	return seeOther(c, "/admin/users/"+userID)
}

// DeleteUser removes an account other than the caller's.
func (h *AdminHandler) DeleteUser(c echo.Context) error {
	userID := c.Param("id")
	if self := middleware.IdentityFrom(c); self != nil && self.ID == userID {
		return fail(c, h.Log, "admin-users", apperror.Validation("You cannot delete your own account.", nil))
	}
	if err := h.API.Users.Delete(middleware.GatewayContext(c), userID); err != nil {
		return fail(c, h.Log, "admin-users", lookup(err, "user", "/admin/users"))
	}
	h.Log.InfoContext(c.Request().Context(), "admin: user deleted", "user_id", userID)
	return seeOther(c, "/admin/users")
}

// Courses lists the catalogue for management.
func (h *AdminHandler) Courses(c echo.Context) error {
	courses, err := h.API.Courses.List(middleware.GatewayContext(c))
	if err != nil {
		return fail(c, h.Log, "admin-courses", remote(err))
	}
	return render(c, "admin-courses", orEmpty(courses))
}

// CreateCourse adds a course.
func (h *AdminHandler) CreateCourse(c echo.Context) error {
	var in model.CourseInput
	if err := bindForm(c, &in); err != nil {
		return fail(c, h.Log, "admin-courses", err)
	}
	if _, err := h.API.Courses.Create(middleware.GatewayContext(c), in); err != nil {
		return fail(c, h.Log, "admin-courses", remote(err))
	}
	return seeOther(c, "/admin/courses")
}

// UpdateCourse replaces a course's details.
func (h *AdminHandler) UpdateCourse(c echo.Context) error {
	var in model.CourseInput
	if err := bindForm(c, &in); err != nil {
		return fail(c, h.Log, "admin-courses", err)
	}
	if _, err := h.API.Courses.Update(middleware.GatewayContext(c), c.Param("id"), in); err != nil {
		return fail(c, h.Log, "admin-courses", lookup(err, "course", "/admin/courses"))
	}
	return seeOther(c, "/admin/courses")
}

// DeleteCourse removes a course.
func (h *AdminHandler) DeleteCourse(c echo.Context) error {
	if err := h.API.Courses.Delete(middleware.GatewayContext(c), c.Param("id")); err != nil {
		return fail(c, h.Log, "admin-courses", lookup(err, "course", "/admin/courses"))
	}
	return seeOther(c, "/admin/courses")
}

// Messages lists contact form submissions.
func (h *AdminHandler) Messages(c echo.Context) error {
	msgs, err := h.API.Contact.List(middleware.GatewayContext(c))
	if err != nil {
		return fail(c, h.Log, "admin-messages", remote(err))
	}
	return render(c, "admin-messages", orEmpty(msgs))
}

type messageStatusForm struct {
	Status string `json:"status" form:"status" validate:"required,oneof=new read replied archived"`
}

// UpdateMessage changes a message's handling status.
func (h *AdminHandler) UpdateMessage(c echo.Context) error {
	var f messageStatusForm
	if err := bindForm(c, &f); err != nil {
		return fail(c, h.Log, "admin-messages", err)
	}
	if _, err := h.API.Contact.Update(middleware.GatewayContext(c), c.Param("id"), model.ContactUpdate{Status: f.Status}); err != nil {
		return fail(c, h.Log, "admin-messages", lookup(err, "message", "/admin/messages"))
	}
	return seeOther(c, "/admin/messages")
}

// DeleteMessage removes a message.
func (h *AdminHandler) DeleteMessage(c echo.Context) error {
	if err := h.API.Contact.Delete(middleware.GatewayContext(c), c.Param("id")); err != nil {
		return fail(c, h.Log, "admin-messages", lookup(err, "message", "/admin/messages"))
	}
	return seeOther(c, "/admin/messages")
}

// Requirement is one row of the feature status table.
type Requirement struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Status      string `json:"status"` // implemented | inProgress | pending
}

var requirements = []Requirement{
	{"FR 1", "User management: profiles for tourists and youth entrepreneurs", "implemented"},
	{"FR 1.1", "Register user", "implemented"},
	{"FR 1.2", "Login user", "implemented"},
	{"FR 1.3", "Update profile", "implemented"},
	{"FR 2", "Service listings managed by providers", "implemented"},
	{"FR 2.1", "Add service", "implemented"},
	{"FR 2.2", "Edit service", "implemented"},
	{"FR 2.3", "Remove service", "implemented"},
	{"FR 3", "Booking system with payment", "implemented"},
	{"FR 3.1", "Search services by category, location and text", "implemented"},
	{"FR 3.2", "View service details", "implemented"},
	{"FR 3.3", "Complete booking", "implemented"},
	{"FR 3.4", "Payment integration", "inProgress"},
	{"FR 4", "Notifications for tourists and providers", "inProgress"},
	{"FR 5", "Reviews and ratings", "pending"},
	{"FR 6", "Training courses and enrollment", "implemented"},
}

// Requirements renders the feature status table with per-status counts.
func (h *AdminHandler) Requirements(c echo.Context) error {
	counts := map[string]int{}
	for _, r := range requirements {
		counts[r.Status]++
	}
	return render(c, "admin-requirements", echo.Map{"requirements": requirements, "counts": counts})
}
