package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/tourism-portal/internal/access"
	"github.com/iliyamo/tourism-portal/internal/model"
	"github.com/iliyamo/tourism-portal/internal/session"
	"github.com/iliyamo/tourism-portal/internal/utils"
)

const testSecret = "guard-test-secret-0123"

// stubAuth accepts "pw" for every identity it knows and validates the tokens
// it issued. gate, when set, holds ValidateToken until closed.
type stubAuth struct {
	users map[string]model.Identity // token -> identity
	gate  chan struct{}
}

func (a *stubAuth) Login(_ context.Context, email, password string) (model.Credential, error) {
	for tok, id := range a.users {
		if id.Email == email && password == "pw" {
			return model.Credential{Token: tok, Identity: id}, nil
		}
	}
	return model.Credential{}, errors.New("invalid credentials")
}

func (a *stubAuth) Register(context.Context, model.Registration) (model.Credential, error) {
	return model.Credential{}, errors.New("not supported")
}

func (a *stubAuth) ValidateToken(ctx context.Context, token string) (model.Identity, error) {
	if a.gate != nil {
		select {
		case <-a.gate:
		case <-ctx.Done():
			return model.Identity{}, ctx.Err()
		}
	}
	if id, ok := a.users[token]; ok {
		return id, nil
	}
	return model.Identity{}, errors.New("unauthorized")
}

type guardFixture struct {
	e       *echo.Echo
	mgr     *session.Manager
	storage *session.MemoryStorage
	auth    *stubAuth
}

func newGuardFixture(t *testing.T, wait time.Duration) *guardFixture {
	t.Helper()
	f := &guardFixture{
		e:       echo.New(),
		storage: session.NewMemoryStorage(),
		auth: &stubAuth{users: map[string]model.Identity{
			"tok-admin":    {ID: "a1", Email: "admin@example.rw", IsAdmin: true},
			"tok-provider": {ID: "p1", Email: "guide@example.rw", AccountType: model.AccountProvider},
			"tok-tourist":  {ID: "t1", Email: "tourist@example.rw"},
		}},
	}
	f.mgr = session.NewManager(f.auth, f.storage, nil)
	f.e.Use(Sessions(SessionConfig{Secret: testSecret, Cookie: "sid", TTL: time.Hour}, f.mgr))
	for _, s := range access.Screens() {
		f.e.GET(s.Path, func(c echo.Context) error {
			return c.String(http.StatusOK, "ok")
		}, Guard(s.Requirement, wait, nil))
	}
	t.Cleanup(f.mgr.Wait)
	return f
}

// signIn creates a settled, authenticated session for clientID.
func (f *guardFixture) signIn(t *testing.T, clientID, email string) {
	t.Helper()
	store := f.mgr.Get(clientID)
	f.mgr.Wait()
	_, err := store.Login(context.Background(), email, "pw")
	require.NoError(t, err)
}

func (f *guardFixture) get(t *testing.T, clientID, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if clientID != "" {
		tok, err := utils.NewClientToken(testSecret, clientID, time.Hour)
		require.NoError(t, err)
		req.AddCookie(&http.Cookie{Name: "sid", Value: tok.Token})
	}
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)
	return rec
}

func TestGuardRedirectsAnonymousToLoginWithFrom(t *testing.T) {
	f := newGuardFixture(t, time.Second)

	rec := f.get(t, "", "/booking/exp-1?participants=2")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login?from=%2Fbooking%2Fexp-1%3Fparticipants%3D2", rec.Header().Get(echo.HeaderLocation))
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderSetCookie), "a new client gets a cookie")

	rec = f.get(t, "", "/explore")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGuardRoleDecisions(t *testing.T) {
	f := newGuardFixture(t, time.Second)
	f.signIn(t, "admin-client", "admin@example.rw")
	f.signIn(t, "guide-client", "guide@example.rw")
	f.signIn(t, "tourist-client", "tourist@example.rw")

	cases := []struct {
		client, path string
		code         int
		location     string
	}{
		{"admin-client", "/admin/dashboard", http.StatusOK, ""},
		{"admin-client", "/guide/dashboard", http.StatusFound, access.AdminDashboardPath},
		{"guide-client", "/admin/users", http.StatusFound, access.HomePath},
		{"guide-client", "/guide/experiences/edit/x1", http.StatusOK, ""},
		{"tourist-client", "/guide/dashboard", http.StatusFound, access.HomePath},
		{"tourist-client", "/admin/messages", http.StatusFound, access.HomePath},
		{"tourist-client", "/tourist/profile", http.StatusOK, ""},
	}
	for _, tc := range cases {
		rec := f.get(t, tc.client, tc.path)
		assert.Equal(t, tc.code, rec.Code, "%s %s", tc.client, tc.path)
		assert.Equal(t, tc.location, rec.Header().Get(echo.HeaderLocation), "%s %s", tc.client, tc.path)
	}
}

func TestGuardRendersLoadingWhileCredentialValidates(t *testing.T) {
	f := newGuardFixture(t, 20*time.Millisecond)
	f.auth.gate = make(chan struct{})
	require.NoError(t, f.storage.Set(context.Background(), "slow", session.KeyToken, "tok-tourist"))

	rec := f.get(t, "slow", "/tourist/profile")
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), `"loading"`)

	close(f.auth.gate)
	f.mgr.Wait()

	rec = f.get(t, "slow", "/tourist/profile")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGuardServesPublicScreensWhileCredentialValidates(t *testing.T) {
	f := newGuardFixture(t, 20*time.Millisecond)
	f.auth.gate = make(chan struct{})
	t.Cleanup(func() { close(f.auth.gate) })
	require.NoError(t, f.storage.Set(context.Background(), "returning", session.KeyToken, "tok-tourist"))

	for _, path := range []string{"/", "/explore", "/courses", "/experiences/exp-1"} {
		rec := f.get(t, "returning", path)
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Empty(t, rec.Header().Get("Retry-After"), path)
	}
	assert.True(t, f.mgr.Get("returning").IsLoading())
}

func TestGuardWaitsForShortInitialisation(t *testing.T) {
	f := newGuardFixture(t, time.Second)
	f.auth.gate = make(chan struct{})
	require.NoError(t, f.storage.Set(context.Background(), "quick", session.KeyToken, "tok-tourist"))

	time.AfterFunc(30*time.Millisecond, func() { close(f.auth.gate) })
	rec := f.get(t, "quick", "/tourist/profile")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSessionsRejectForgedCookie(t *testing.T) {
	f := newGuardFixture(t, time.Second)
	f.signIn(t, "victim", "tourist@example.rw")

	forged, err := utils.NewClientToken("some-other-secret-xyz", "victim", time.Hour)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/tourist/profile", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: forged.Token})
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login?from=%2Ftourist%2Fprofile", rec.Header().Get(echo.HeaderLocation))
}

func TestLoginURL(t *testing.T) {
	assert.Equal(t, "/login", LoginURL(""))
	assert.Equal(t, "/login", LoginURL("/"))
	assert.Equal(t, "/login?from=%2Fcourses%2Fc1", LoginURL("/courses/c1"))
}
