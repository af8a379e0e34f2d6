package gateway

import (
	"context"
	"net/http"
	"net/url"

	"github.com/iliyamo/tourism-portal/internal/model"
)

// AuthAPI covers /auth.
type AuthAPI struct{ c *Client }

// Login exchanges email and password for a credential.
func (a *AuthAPI) Login(ctx context.Context, email, password string) (model.Credential, error) {
	var cred model.Credential
	err := a.c.do(ctx, request{
		op:     "auth.login",
		method: http.MethodPost,
		path:   "/auth/login",
		body:   map[string]string{"email": email, "password": password},
	}, &cred)
	return cred, err
}

// Register creates an account and returns its credential.
func (a *AuthAPI) Register(ctx context.Context, reg model.Registration) (model.Credential, error) {
	var cred model.Credential
	err := a.c.do(ctx, request{op: "auth.register", method: http.MethodPost, path: "/auth/register", body: reg}, &cred)
	return cred, err
}

// Profile returns the identity the context's bearer token belongs to.
// It fails with ErrUnauthorized when the token is missing or invalid.
func (a *AuthAPI) Profile(ctx context.Context) (model.Identity, error) {
	var id model.Identity
	err := a.c.do(ctx, request{op: "auth.profile", method: http.MethodGet, path: "/auth/profile"}, &id)
	if err == nil && id.ID == "" {
		return model.Identity{}, &Error{Op: "auth.profile", StatusCode: http.StatusOK, Message: "profile without id"}
	}
	return id, err
}

// ValidateToken is Profile for an explicit token.
func (a *AuthAPI) ValidateToken(ctx context.Context, token string) (model.Identity, error) {
	return a.Profile(WithToken(ctx, token))
}

// StatsAPI covers /stats.
type StatsAPI struct{ c *Client }

// App returns the aggregate counters of the admin dashboard.
func (s *StatsAPI) App(ctx context.Context) (model.AppStats, error) {
	var st model.AppStats
	err := s.c.do(ctx, request{op: "stats.app", method: http.MethodGet, path: "/stats"}, &st)
	return st, err
}

func addIf(q url.Values, key, val string) {
	if val != "" {
		q.Set(key, val)
	}
}
