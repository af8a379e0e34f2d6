package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/tourism-portal/internal/gateway"
	"github.com/iliyamo/tourism-portal/internal/model"
	"github.com/iliyamo/tourism-portal/internal/session"
	"github.com/iliyamo/tourism-portal/internal/utils"
)

const ctxStore = "session_store"

// SessionConfig describes the signed client cookie.
type SessionConfig struct {
	Secret string
	Cookie string
	TTL    time.Duration
	Secure bool
}

// Sessions attaches the client's session.Store to every request. The
// cookie carries only a signed client id; a missing, expired or forged
// cookie starts a new client. The cookie is re-issued once less than half
// of its lifetime remains.
func Sessions(cfg SessionConfig, mgr *session.Manager) echo.MiddlewareFunc {
	if cfg.TTL <= 0 {
		cfg.TTL = 30 * 24 * time.Hour
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			clientID, reissue := "", true
			if ck, err := c.Cookie(cfg.Cookie); err == nil {
				if tok, err := utils.ParseClientToken(cfg.Secret, ck.Value); err == nil {
					clientID = tok.ClientID
					reissue = time.Until(tok.Exp) < cfg.TTL/2
				}
			}
			if clientID == "" {
				clientID = utils.NewClientID()
			}
			if reissue {
				tok, err := utils.NewClientToken(cfg.Secret, clientID, cfg.TTL)
				if err != nil {
					return err
				}
				c.SetCookie(&http.Cookie{
					Name:     cfg.Cookie,
					Value:    tok.Token,
					Path:     "/",
					Expires:  tok.Exp,
					HttpOnly: true,
					Secure:   cfg.Secure,
					SameSite: http.SameSiteLaxMode,
				})
			}
			c.Set(ctxStore, mgr.Get(clientID))
			return next(c)
		}
	}
}

// SessionFrom returns the Store attached by Sessions, or nil.
func SessionFrom(c echo.Context) *session.Store {
	s, _ := c.Get(ctxStore).(*session.Store)
	return s
}

// IdentityFrom returns the current identity of the request's client, or nil
// when anonymous or still loading.
func IdentityFrom(c echo.Context) *model.Identity {
	if s := SessionFrom(c); s != nil {
		return s.Identity()
	}
	return nil
}

// GatewayContext is the request context carrying the client's bearer token
// for gateway calls.
func GatewayContext(c echo.Context) context.Context {
	ctx := c.Request().Context()
	if s := SessionFrom(c); s != nil {
		if tok := s.Token(); tok != "" {
			return gateway.WithToken(ctx, tok)
		}
	}
	return ctx
}
