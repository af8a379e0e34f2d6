package handler

import (
	"log/slog"
	"strings"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/tourism-portal/internal/apperror"
	"github.com/iliyamo/tourism-portal/internal/enrollment"
	"github.com/iliyamo/tourism-portal/internal/gateway"
	"github.com/iliyamo/tourism-portal/internal/middleware"
	"github.com/iliyamo/tourism-portal/internal/model"
)

// AccountHandler serves the signed-in user's own pages: profile, password
// and courses. The profile screens of tourists, guides and admins share it.
type AccountHandler struct {
	API         *gateway.Client
	Enrollments *enrollment.Service
	Log         *slog.Logger
}

func NewAccountHandler(api *gateway.Client, enrollments *enrollment.Service, log *slog.Logger) *AccountHandler {
	if log == nil {
		log = slog.Default()
	}
	return &AccountHandler{API: api, Enrollments: enrollments, Log: log}
}

// Profile renders the caller's profile. Tourists also see their bookings;
// a failed bookings call leaves the profile on screen with a notice.
func (h *AccountHandler) Profile(view string) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := signedIn(c)
		if err != nil {
			return fail(c, h.Log, view, err)
		}
		ctx := middleware.GatewayContext(c)

		var (
			user       model.User
			bookings   []model.Booking
			bookingErr error
		)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			user, err = h.API.Users.Get(gctx, id.ID)
			return err
		})
		if !id.IsAdmin && !id.IsProvider() {
			g.Go(func() error {
				bookings, bookingErr = h.API.Bookings.ForUser(gctx, id.ID, model.BookingFilter{})
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return fail(c, h.Log, view, lookup(err, "profile", "/"))
		}

		data := echo.Map{"user": user}
		if !id.IsAdmin && !id.IsProvider() {
			data["bookings"] = orEmpty(bookings)
		}
		if bookingErr != nil {
			h.Log.WarnContext(ctx, "profile: bookings failed", "user_id", id.ID, "error", bookingErr)
			return renderNotice(c, view, data, gateway.UserMessage(bookingErr))
		}
		return render(c, view, data)
	}
}

type profileForm struct {
	FirstName string `json:"firstName" form:"firstName" validate:"required"`
	LastName  string `json:"lastName" form:"lastName" validate:"required"`
	Email     string `json:"email" form:"email" validate:"omitempty,email"`
	Phone     string `json:"phone" form:"phone" validate:"omitempty,max=32"`
	Bio       string `json:"bio" form:"bio" validate:"omitempty,max=2000"`
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// UpdateProfile saves the caller's profile and returns to back.
func (h *AccountHandler) UpdateProfile(view, back string) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := signedIn(c)
		if err != nil {
			return fail(c, h.Log, view, err)
		}
		var f profileForm
		if err := bindForm(c, &f); err != nil {
			return fail(c, h.Log, view, err)
		}
		_, err = h.API.Users.Update(middleware.GatewayContext(c), id.ID, model.UserUpdate{
			FirstName: optional(f.FirstName),
			LastName:  optional(f.LastName),
			Email:     optional(strings.ToLower(f.Email)),
			Phone:     optional(f.Phone),
			Bio:       optional(f.Bio),
		})
		if err != nil {
			return fail(c, h.Log, view, remote(err))
		}
		return seeOther(c, back)
	}
}

type passwordForm struct {
	CurrentPassword string `json:"currentPassword" form:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" form:"newPassword" validate:"required,min=6,nefield=CurrentPassword"`
	ConfirmPassword string `json:"confirmPassword" form:"confirmPassword" validate:"required,eqfield=NewPassword"`
}

// ChangePassword forwards a password change to the backend. A rejected
// current password is shown on the form.
func (h *AccountHandler) ChangePassword(view, back string) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := signedIn(c)
		if err != nil {
			return fail(c, h.Log, view, err)
		}
		var f passwordForm
		if err := bindForm(c, &f); err != nil {
			return fail(c, h.Log, view, err)
		}
		err = h.API.Users.UpdatePassword(middleware.GatewayContext(c), id.ID, f.CurrentPassword, f.NewPassword)
		if err != nil {
			return fail(c, h.Log, view, authFailure(err))
		}
		h.Log.InfoContext(c.Request().Context(), "account: password changed", "user_id", id.ID)
		return seeOther(c, back)
	}
}

// MyCourses lists the caller's enrollments split into in-progress and
// completed.
func (h *AccountHandler) MyCourses(c echo.Context) error {
	enrolled, completed, err := h.Enrollments.Mine(middleware.GatewayContext(c), middleware.IdentityFrom(c))
	if err != nil {
		return fail(c, h.Log, "my-courses", err)
	}
	return render(c, "my-courses", echo.Map{"enrolled": enrolled, "completed": completed})
}

// CourseContent renders the material of one of the caller's enrollments.
func (h *AccountHandler) CourseContent(c echo.Context) error {
	course, en, err := h.Enrollments.Content(middleware.GatewayContext(c), middleware.IdentityFrom(c),
		c.Param("courseId"), c.Param("enrollmentId"))
	if err != nil {
		return fail(c, h.Log, "course-content", err)
	}
	return render(c, "course-content", echo.Map{"course": course, "enrollment": en})
}

// CompleteCourse marks an enrollment completed.
func (h *AccountHandler) CompleteCourse(c echo.Context) error {
	if _, err := h.Enrollments.Complete(middleware.GatewayContext(c), middleware.IdentityFrom(c), c.Param("enrollmentId")); err != nil {
		return fail(c, h.Log, "my-courses", err)
	}
	return seeOther(c, "/tourist/my-courses")
}

// requireOwner hides records of other users behind NotFound. Admins see
// everything.
func requireOwner(id *model.Identity, ownerID, what, listing string) error {
	if id.IsAdmin || (ownerID != "" && ownerID == id.ID) {
		return nil
	}
	return apperror.NotFound(what+" not found", listing)
}
