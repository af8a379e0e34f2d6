package gateway

import (
	"context"
	"net/http"

	"github.com/iliyamo/tourism-portal/internal/model"
)

// UsersAPI covers /users.
type UsersAPI struct{ c *Client }

func (u *UsersAPI) List(ctx context.Context) ([]model.User, error) {
	var out []model.User
	err := u.c.do(ctx, request{op: "users.list", method: http.MethodGet, path: "/users"}, &out)
	return out, err
}

func (u *UsersAPI) Get(ctx context.Context, id string) (model.User, error) {
	var out model.User
	err := u.c.do(ctx, request{op: "users.get", method: http.MethodGet, path: "/users/" + escape(id)}, &out)
	return out, err
}

func (u *UsersAPI) Create(ctx context.Context, in model.Registration) (model.User, error) {
	var out model.User
	err := u.c.do(ctx, request{op: "users.create", method: http.MethodPost, path: "/users", body: in}, &out)
	return out, err
}

func (u *UsersAPI) Update(ctx context.Context, id string, in model.UserUpdate) (model.User, error) {
	var out model.User
	err := u.c.do(ctx, request{op: "users.update", method: http.MethodPatch, path: "/users/" + escape(id), body: in}, &out)
	return out, err
}

// UpdatePassword changes a user's password; the backend checks current.
func (u *UsersAPI) UpdatePassword(ctx context.Context, id, current, next string) error {
	return u.c.do(ctx, request{
		op:     "users.password",
		method: http.MethodPatch,
		path:   "/users/" + escape(id) + "/password",
		body:   map[string]string{"currentPassword": current, "password": next},
	}, nil)
}

func (u *UsersAPI) Delete(ctx context.Context, id string) error {
	return u.c.do(ctx, request{op: "users.delete", method: http.MethodDelete, path: "/users/" + escape(id)}, nil)
}
