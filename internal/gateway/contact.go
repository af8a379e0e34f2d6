package gateway

import (
	"context"
	"net/http"

	"github.com/iliyamo/tourism-portal/internal/model"
)

// ContactAPI covers /contact.
type ContactAPI struct{ c *Client }

// Submit posts a message from the public contact form. No token is needed.
func (ct *ContactAPI) Submit(ctx context.Context, msg model.ContactMessage) (model.ContactMessage, error) {
	var out model.ContactMessage
	err := ct.c.do(ctx, request{op: "contact.submit", method: http.MethodPost, path: "/contact", body: msg}, &out)
	return out, err
}

func (ct *ContactAPI) List(ctx context.Context) ([]model.ContactMessage, error) {
	var out []model.ContactMessage
	err := ct.c.do(ctx, request{op: "contact.list", method: http.MethodGet, path: "/contact"}, &out)
	return out, err
}

func (ct *ContactAPI) Get(ctx context.Context, id string) (model.ContactMessage, error) {
	var out model.ContactMessage
	err := ct.c.do(ctx, request{op: "contact.get", method: http.MethodGet, path: "/contact/" + escape(id)}, &out)
	return out, err
}

func (ct *ContactAPI) Update(ctx context.Context, id string, in model.ContactUpdate) (model.ContactMessage, error) {
	var out model.ContactMessage
	err := ct.c.do(ctx, request{op: "contact.update", method: http.MethodPatch, path: "/contact/" + escape(id), body: in}, &out)
	return out, err
}

func (ct *ContactAPI) Delete(ctx context.Context, id string) error {
	return ct.c.do(ctx, request{op: "contact.delete", method: http.MethodDelete, path: "/contact/" + escape(id)}, nil)
}
