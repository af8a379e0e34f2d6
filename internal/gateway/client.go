// Package gateway is the typed client of the tourism REST backend. Each
// resource group (auth, users, experiences, bookings, courses, enrollments,
// contact, stats) hangs off a Client. The caller's bearer token travels in the
// request context; see WithToken.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/iliyamo/tourism-portal/internal/metrics"
)

// DefaultTimeout bounds every call when no timeout is configured.
const DefaultTimeout = 10 * time.Second

// Client talks to the backend. All methods are safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	log     *slog.Logger

	Auth        *AuthAPI
	Users       *UsersAPI
	Experiences *ExperiencesAPI
	Bookings    *BookingsAPI
	Courses     *CoursesAPI
	Enrollments *EnrollmentsAPI
	Contact     *ContactAPI
	Stats       *StatsAPI
}

// New builds a Client for baseURL (for example "http://localhost:3000/api").
// A zero timeout means DefaultTimeout.
func New(baseURL string, timeout time.Duration, log *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = slog.Default()
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
	c.Auth = &AuthAPI{c}
	c.Users = &UsersAPI{c}
	c.Experiences = &ExperiencesAPI{c}
	c.Bookings = &BookingsAPI{c}
	c.Courses = &CoursesAPI{c}
	c.Enrollments = &EnrollmentsAPI{c}
	c.Contact = &ContactAPI{c}
	c.Stats = &StatsAPI{c}
	return c
}

type tokenKey struct{}

// WithToken returns a context whose gateway calls carry token as a bearer
// credential. An empty token leaves ctx unchanged.
func WithToken(ctx context.Context, token string) context.Context {
	if token == "" {
		return ctx
	}
	return context.WithValue(ctx, tokenKey{}, token)
}

// TokenFrom returns the bearer token stored by WithToken.
func TokenFrom(ctx context.Context) string {
	t, _ := ctx.Value(tokenKey{}).(string)
	return t
}

// request describes one backend call.
type request struct {
	op      string
	method  string
	path    string
	query   url.Values
	body    any
	headers map[string]string
}

// do performs the call and decodes a 2xx JSON body into out (when out is
// non-nil). Every failure comes back as *Error.
func (c *Client) do(ctx context.Context, r request, out any) error {
	start := time.Now()
	err := c.send(ctx, r, out)
	outcome := "ok"
	if err != nil {
		outcome = "error"
		var ge *Error
		if errors.As(err, &ge) {
			switch {
			case ge.Timeout:
				outcome = "timeout"
			case ge.StatusCode > 0:
				outcome = fmt.Sprintf("%dxx", ge.StatusCode/100)
			}
		}
		c.log.WarnContext(ctx, "gateway call failed", "op", r.op, "method", r.method, "path", r.path, "error", err)
	}
	metrics.GatewayRequestSeconds.WithLabelValues(r.op, outcome).Observe(time.Since(start).Seconds())
	return err
}

func (c *Client) send(ctx context.Context, r request, out any) error {
	u := c.baseURL + r.path
	if len(r.query) > 0 {
		u += "?" + r.query.Encode()
	}

	var body io.Reader
	if r.body != nil {
		buf, err := json.Marshal(r.body)
		if err != nil {
			return &Error{Op: r.op, Message: "encode request", Err: err}
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, u, body)
	if err != nil {
		return &Error{Op: r.op, Message: "build request", Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := TokenFrom(ctx); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Op: r.op, Message: "backend unreachable", Timeout: isTimeout(err), Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return &Error{Op: r.op, StatusCode: resp.StatusCode, Message: "read response", Timeout: isTimeout(err), Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{Op: r.op, StatusCode: resp.StatusCode, Message: serverMessage(raw, resp.StatusCode)}
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &Error{Op: r.op, StatusCode: resp.StatusCode, Message: "malformed response", Err: err}
	}
	return nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// serverMessage extracts the backend's explanation from an error body. The
// backend sends {"message": "..."}, {"message": ["...", "..."]} for
// validation failures, or {"error": "..."}.
func serverMessage(raw []byte, status int) string {
	var body struct {
		Message json.RawMessage `json:"message"`
		Error   string          `json:"error"`
	}
	if json.Unmarshal(raw, &body) == nil {
		if len(body.Message) > 0 {
			var s string
			if json.Unmarshal(body.Message, &s) == nil && s != "" {
				return s
			}
			var list []string
			if json.Unmarshal(body.Message, &list) == nil && len(list) > 0 {
				return strings.Join(list, "; ")
			}
		}
		if body.Error != "" {
			return body.Error
		}
	}
	return http.StatusText(status)
}

func escape(id string) string { return url.PathEscape(id) }
