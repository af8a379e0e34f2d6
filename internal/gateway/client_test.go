package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/tourism-portal/internal/model"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL, time.Second, nil)
}

func TestLoginDecodesCredentialAndNormalisesGuide(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/auth/login", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "g@example.rw", body["email"])
		assert.Equal(t, "secret123", body["password"])
		_, _ = w.Write([]byte(`{"access_token":"tok","user":{"id":"u1","email":"g@example.rw","accountType":"guide"}}`))
	})

	cred, err := c.Auth.Login(context.Background(), "g@example.rw", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "tok", cred.Token)
	assert.Equal(t, model.AccountProvider, cred.Identity.AccountType)
}

func TestBearerTokenFromContext(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer abc" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Unauthorized"}`))
			return
		}
		_, _ = w.Write([]byte(`{"id":"u1","email":"t@example.rw"}`))
	})

	id, err := c.Auth.ValidateToken(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, "u1", id.ID)

	_, err = c.Auth.Profile(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnauthorized))
	assert.Equal(t, "Unauthorized", UserMessage(err))
}

func TestProfileWithoutIDIsMalformed(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})
	_, err := c.Auth.ValidateToken(context.Background(), "abc")
	require.Error(t, err)
}

func TestServerMessageShapes(t *testing.T) {
	cases := map[string]string{
		`{"message":"Experience not found"}`:         "Experience not found",
		`{"message":["email must be an email","x"]}`: "email must be an email; x",
		`{"error":"bad things"}`:                     "bad things",
		`not json`:                                   "Not Found",
		`{"statusCode":404}`:                         "Not Found",
	}
	for body, want := range cases {
		assert.Equal(t, want, serverMessage([]byte(body), http.StatusNotFound), body)
	}
}

func TestNotFoundMapsToSentinel(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Experience not found"}`))
	})
	_, err := c.Experiences.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrTimeout))

	var ge *Error
	require.True(t, errors.As(err, &ge))
	assert.Equal(t, "experiences.get", ge.Op)
	assert.Equal(t, "Experience not found", ge.Message)
}

func TestTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	t.Cleanup(srv.Close)
	c := New(srv.URL, 20*time.Millisecond, nil)

	_, err := c.Stats.App(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTimeout))
}

func TestBookingCreateCarriesIdempotencyKey(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bookings", r.URL.Path)
		assert.Equal(t, "key-1", r.Header.Get(IdempotencyHeader))
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "key-1", body["idempotencyKey"])
		assert.Equal(t, "confirmed", body["status"])
		assert.Equal(t, float64(80), body["totalAmount"])
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"b1","status":"confirmed","totalAmount":80}`))
	})

	b, err := c.Bookings.Create(context.Background(), model.BookingCreate{
		UserID:         "u1",
		ExperienceID:   "e1",
		Participants:   2,
		TotalAmount:    model.FromAmount(80),
		Status:         model.BookingConfirmed,
		PaymentID:      "pi_abc123",
		IdempotencyKey: "key-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "b1", b.ID)
	assert.Equal(t, model.FromAmount(80), b.TotalAmount)
}

func TestBookingQueries(t *testing.T) {
	var got []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = append(got, r.URL.RequestURI())
		_, _ = w.Write([]byte(`[]`))
	})
	ctx := context.Background()

	_, err := c.Bookings.ForUser(ctx, "u1", model.BookingFilter{})
	require.NoError(t, err)
	_, err = c.Bookings.ForProvider(ctx, "h1")
	require.NoError(t, err)
	_, err = c.Bookings.List(ctx, model.BookingFilter{Limit: 4})
	require.NoError(t, err)
	_, err = c.Experiences.List(ctx, model.ExperienceFilter{HostID: "h1"})
	require.NoError(t, err)
	_, err = c.Enrollments.ForUser(ctx, "u1")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"/bookings?userId=u1",
		"/bookings/provider/h1",
		"/bookings?limit=4",
		"/experiences?hostId=h1",
		"/enrollments?userId=u1",
	}, got)
}

func TestEnrollmentComplete(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/enrollments/en1/complete", r.URL.Path)
		_, _ = w.Write([]byte(`{"id":"en1","status":"completed"}`))
	})
	en, err := c.Enrollments.Complete(context.Background(), "en1")
	require.NoError(t, err)
	assert.Equal(t, model.EnrollmentCompleted, en.Status)
}

func TestUnreachableBackend(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := New(url, time.Second, nil)
	_, err := c.Courses.List(context.Background())
	require.Error(t, err)
	var ge *Error
	require.True(t, errors.As(err, &ge))
	assert.Zero(t, ge.StatusCode)
	assert.Equal(t, "Could not reach the server. Please try again.", UserMessage(err))
}
