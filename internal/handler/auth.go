package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/tourism-portal/internal/access"
	"github.com/iliyamo/tourism-portal/internal/apperror"
	"github.com/iliyamo/tourism-portal/internal/gateway"
	"github.com/iliyamo/tourism-portal/internal/middleware"
	"github.com/iliyamo/tourism-portal/internal/model"
)

// AuthHandler serves the sign-in, sign-up and sign-out actions. The session
// store does the work; this layer validates forms and picks the landing page.
type AuthHandler struct {
	Log *slog.Logger
}

func NewAuthHandler(log *slog.Logger) *AuthHandler {
	if log == nil {
		log = slog.Default()
	}
	return &AuthHandler{Log: log}
}

type loginForm struct {
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required"`
	From     string `json:"from" form:"from" query:"from"`
}

type registerForm struct {
	FirstName       string `json:"firstName" form:"firstName" validate:"required"`
	LastName        string `json:"lastName" form:"lastName" validate:"required"`
	Email           string `json:"email" form:"email" validate:"required,email"`
	Password        string `json:"password" form:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" form:"confirmPassword" validate:"required,eqfield=Password"`
	AccountType     string `json:"accountType" form:"accountType" validate:"omitempty,oneof=tourist guide provider"`
}

// authFailure turns a rejected sign-in into a message on the form rather
// than a gateway notice.
func authFailure(err error) error {
	var ge *gateway.Error
	if errors.As(err, &ge) && (ge.StatusCode == http.StatusUnauthorized || ge.StatusCode == http.StatusBadRequest ||
		ge.StatusCode == http.StatusConflict) {
		return apperror.Validation(gateway.UserMessage(err), nil)
	}
	return apperror.Remote(gateway.UserMessage(err), err)
}

// LoginPage renders the login form, keeping the from path for the action.
func (h *AuthHandler) LoginPage(view string) echo.HandlerFunc {
	return func(c echo.Context) error {
		return render(c, view, echo.Map{"from": access.LocalPath(c.QueryParam("from"))})
	}
}

// RegisterPage renders a registration form preset to an account type.
func (h *AuthHandler) RegisterPage(view string, accountType model.AccountType) echo.HandlerFunc {
	return func(c echo.Context) error {
		return render(c, view, echo.Map{"accountType": accountType})
	}
}

// Login authenticates and redirects to the identity's landing page.
func (h *AuthHandler) Login(c echo.Context) error {
	var f loginForm
	if err := bindForm(c, &f); err != nil {
		return fail(c, h.Log, "login", err)
	}
	if f.From == "" {
		f.From = c.QueryParam("from")
	}
	ctx := c.Request().Context()
	store := middleware.SessionFrom(c)

	id, err := store.Login(ctx, strings.ToLower(strings.TrimSpace(f.Email)), f.Password)
	if err != nil {
		h.Log.InfoContext(ctx, "auth: login rejected", "error", err)
		return fail(c, h.Log, "login", authFailure(err))
	}

	var pending string
	if !id.IsAdmin && !id.IsProvider() {
		pending, _ = store.TakePendingCourse(ctx)
	}
	h.Log.InfoContext(ctx, "auth: signed in", "user_id", id.ID, "admin", id.IsAdmin, "account_type", id.AccountType)
	return seeOther(c, access.AfterLogin(id, pending, f.From))
}

// Register creates the account and signs it in. The UI's "guide" account
// type is sent to the backend as "provider".
func (h *AuthHandler) Register(c echo.Context) error {
	var f registerForm
	if err := bindForm(c, &f); err != nil {
		return fail(c, h.Log, "register", err)
	}
	ctx := c.Request().Context()

	id, err := middleware.SessionFrom(c).Register(ctx, model.Registration{
		FirstName:   strings.TrimSpace(f.FirstName),
		LastName:    strings.TrimSpace(f.LastName),
		Email:       strings.ToLower(strings.TrimSpace(f.Email)),
		Password:    f.Password,
		AccountType: string(model.ParseAccountType(f.AccountType)),
	})
	if err != nil {
		return fail(c, h.Log, "register", authFailure(err))
	}
	h.Log.InfoContext(ctx, "auth: registered", "user_id", id.ID, "account_type", id.AccountType)
	return seeOther(c, access.AfterRegister(id))
}

// Logout clears the session. It never fails.
func (h *AuthHandler) Logout(c echo.Context) error {
	middleware.SessionFrom(c).Logout(c.Request().Context())
	return seeOther(c, access.HomePath)
}
