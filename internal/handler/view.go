// Package handler turns portal screens and form actions into JSON view
// models. Every GET screen answers {"view": name, "data": ...}; every
// action answers with a redirect on success or the screen's view carrying
// an error on failure.
package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/tourism-portal/internal/apperror"
	"github.com/iliyamo/tourism-portal/internal/booking"
	"github.com/iliyamo/tourism-portal/internal/gateway"
	"github.com/iliyamo/tourism-portal/internal/middleware"
	"github.com/iliyamo/tourism-portal/internal/model"
)

// View is the body of every screen response.
type View struct {
	View     string            `json:"view"`
	Data     any               `json:"data,omitempty"`
	Identity *model.Identity   `json:"identity,omitempty"`
	Notice   string            `json:"notice,omitempty"`
	Error    string            `json:"error,omitempty"`
	Fields   map[string]string `json:"fields,omitempty"`
}

// NotFoundView is the terminal screen for missing entities.
const NotFoundView = "not-found"

func render(c echo.Context, view string, data any) error {
	return c.JSON(http.StatusOK, View{View: view, Data: data, Identity: middleware.IdentityFrom(c)})
}

// renderNotice renders a screen that partially failed to load.
func renderNotice(c echo.Context, view string, data any, notice string) error {
	return c.JSON(http.StatusOK, View{View: view, Data: data, Identity: middleware.IdentityFrom(c), Notice: notice})
}

// seeOther answers a successful form action.
func seeOther(c echo.Context, target string) error {
	return c.Redirect(http.StatusSeeOther, target)
}

// fail maps an error onto the response for screen view.
func fail(c echo.Context, log *slog.Logger, view string, err error) error {
	ctx := c.Request().Context()
	if errors.Is(err, booking.ErrDraftMissing) {
		return c.Redirect(http.StatusFound, booking.ListingPath)
	}
	e, ok := apperror.As(err)
	if !ok {
		log.ErrorContext(ctx, "handler: unexpected error", "view", view, "error", err)
		return c.JSON(http.StatusInternalServerError, View{View: view, Error: "Something went wrong. Please try again."})
	}

	id := middleware.IdentityFrom(c)
	switch e.Kind {
	case apperror.KindAuthRequired:
		ret := e.Return
		if ret == "" {
			ret = c.Request().URL.RequestURI()
		}
		return c.Redirect(http.StatusFound, middleware.LoginURL(ret))
	case apperror.KindForbidden:
		target := e.Redirect
		if target == "" {
			target = "/"
		}
		return c.Redirect(http.StatusFound, target)
	case apperror.KindValidation:
		return c.JSON(http.StatusUnprocessableEntity, View{View: view, Identity: id, Error: e.Message, Fields: e.Fields})
	case apperror.KindNotFound:
		return c.JSON(http.StatusNotFound, View{View: NotFoundView, Identity: id, Error: e.Message,
			Data: echo.Map{"link": e.Redirect}})
	case apperror.KindRemote:
		log.WarnContext(ctx, "handler: remote failure", "view", view, "error", err)
		return c.JSON(http.StatusBadGateway, View{View: view, Identity: id, Notice: e.Message})
	case apperror.KindConflict:
		return c.JSON(http.StatusConflict, View{View: view, Identity: id, Notice: e.Message})
	case apperror.KindPaymentDeclined:
		return c.JSON(http.StatusPaymentRequired, View{View: view, Identity: id, Notice: e.Message})
	}
	log.ErrorContext(ctx, "handler: internal error", "view", view, "error", err)
	return c.JSON(http.StatusInternalServerError, View{View: view, Identity: id, Error: "Something went wrong. Please try again."})
}

var validate = newValidator()

var errUnreadableForm = apperror.Validation("The form could not be read.", nil)

// newValidator reports fields under their json names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// bindForm binds the request into dst and runs its validate tags. Failures
// come back as apperror validation errors keyed by the json field name.
func bindForm(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return errUnreadableForm
	}
	return check(dst)
}

func check(v any) error {
	err := validate.Struct(v)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fieldMessage(fe)
	}
	return apperror.Validation("Please correct the highlighted fields.", fields)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Enter a valid email address"
	case "min":
		return "Must be at least " + fe.Param() + " characters"
	case "max":
		return "Must be at most " + fe.Param() + " characters"
	case "gt":
		return "Must be greater than " + fe.Param()
	case "gte":
		return "Must be at least " + fe.Param()
	case "oneof":
		return "Must be one of: " + fe.Param()
	case "eqfield":
		return "Does not match"
	case "len":
		return "Must be " + fe.Param() + " characters"
	case "numeric":
		return "Digits only"
	}
	return "Invalid value"
}

func remote(err error) error { return apperror.Remote(gateway.UserMessage(err), err) }

// lookup maps a backend miss onto NotFound pointing back at listing.
func lookup(err error, what, listing string) error {
	if errors.Is(err, gateway.ErrNotFound) {
		return apperror.NotFound(what+" not found", listing)
	}
	return remote(err)
}

// signedIn returns the caller's identity. Guarded routes always have one;
// the check covers a route registered without its guard.
func signedIn(c echo.Context) (*model.Identity, error) {
	id := middleware.IdentityFrom(c)
	if id == nil {
		return nil, apperror.AuthRequired(c.Request().URL.RequestURI())
	}
	return id, nil
}
