package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/tourism-portal/internal/access"
	"github.com/iliyamo/tourism-portal/internal/metrics"
	"github.com/iliyamo/tourism-portal/internal/session"
)

// LoadingView is the placeholder rendered while a session is still
// validating its persisted credential.
const LoadingView = "loading"

// LoginURL is the login path remembering where the user was headed.
func LoginURL(from string) string {
	if from == "" || from == access.HomePath {
		return access.LoginPath
	}
	return access.LoginPath + "?from=" + url.QueryEscape(from)
}

// settle gives a loading session up to wait to finish. When it is still
// loading afterwards the loading placeholder is written and ok is false.
func settle(c echo.Context, wait time.Duration, retryAfter string) (st session.State, ok bool, err error) {
	store := SessionFrom(c)
	if store == nil {
		return st, false, echo.NewHTTPError(http.StatusInternalServerError, "session unavailable")
	}
	st = store.State()
	if !st.Settled() && wait > 0 {
		waitCtx, cancel := context.WithTimeout(c.Request().Context(), wait)
		st, _ = store.Await(waitCtx)
		cancel()
	}
	if !st.Settled() {
		metrics.GuardDecisions.WithLabelValues(LoadingView).Inc()
		c.Response().Header().Set("Retry-After", retryAfter)
		return st, false, c.JSON(http.StatusAccepted, echo.Map{"view": LoadingView})
	}
	return st, true, nil
}

func retryAfterSeconds(wait time.Duration) string {
	return strconv.Itoa(max(1, int(wait.Round(time.Second)/time.Second)))
}

// Settled holds a request until its session has settled, the same way Guard
// does, without enforcing any requirement. It fronts actions that decide for
// themselves what an anonymous caller gets. Settled must run after Sessions.
func Settled(wait time.Duration) echo.MiddlewareFunc {
	retryAfter := retryAfterSeconds(wait)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok, err := settle(c, wait, retryAfter); !ok {
				return err
			}
			return next(c)
		}
	}
}

// Guard enforces req on a route. A session that is still loading is given
// up to wait to settle; after that the loading placeholder is returned with
// Retry-After so the browser polls instead of being redirected on a guess.
// Public routes pass straight through and render with whatever identity is
// settled at the time. Guard must run after Sessions.
func Guard(req access.Requirement, wait time.Duration, log *slog.Logger) echo.MiddlewareFunc {
	if log == nil {
		log = slog.Default()
	}
	retryAfter := retryAfterSeconds(wait)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if req.Kind == access.Public {
			return next
		}
		return func(c echo.Context) error {
			st, ok, err := settle(c, wait, retryAfter)
			if !ok {
				return err
			}

			d := access.Evaluate(st.IdentityPtr(), req)
			metrics.GuardDecisions.WithLabelValues(d.String()).Inc()
			if d.Allowed {
				return next(c)
			}

			target := d.Target
			if target == access.LoginPath {
				target = LoginURL(c.Request().URL.RequestURI())
			}
			log.InfoContext(c.Request().Context(), "guard: redirect",
				"path", c.Request().URL.Path,
				"requirement", req.String(),
				"session", st.String(),
				"target", target,
			)
			return c.Redirect(http.StatusFound, target)
		}
	}
}
