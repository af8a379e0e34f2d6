package gateway

import (
	"context"
	"net/http"
	"net/url"

	"github.com/iliyamo/tourism-portal/internal/model"
)

// ExperiencesAPI covers /experiences.
type ExperiencesAPI struct{ c *Client }

// List returns experiences matching f; a zero filter lists everything.
func (e *ExperiencesAPI) List(ctx context.Context, f model.ExperienceFilter) ([]model.Experience, error) {
	q := url.Values{}
	addIf(q, "hostId", f.HostID)
	addIf(q, "category", f.Category)
	addIf(q, "location", f.Location)
	addIf(q, "search", f.Search)
	var out []model.Experience
	err := e.c.do(ctx, request{op: "experiences.list", method: http.MethodGet, path: "/experiences", query: q}, &out)
	return out, err
}

func (e *ExperiencesAPI) Get(ctx context.Context, id string) (model.Experience, error) {
	var out model.Experience
	err := e.c.do(ctx, request{op: "experiences.get", method: http.MethodGet, path: "/experiences/" + escape(id)}, &out)
	return out, err
}

func (e *ExperiencesAPI) Create(ctx context.Context, in model.ExperienceInput) (model.Experience, error) {
	var out model.Experience
	err := e.c.do(ctx, request{op: "experiences.create", method: http.MethodPost, path: "/experiences", body: in}, &out)
	return out, err
}

func (e *ExperiencesAPI) Update(ctx context.Context, id string, in model.ExperienceInput) (model.Experience, error) {
	var out model.Experience
	err := e.c.do(ctx, request{op: "experiences.update", method: http.MethodPatch, path: "/experiences/" + escape(id), body: in}, &out)
	return out, err
}

func (e *ExperiencesAPI) Delete(ctx context.Context, id string) error {
	return e.c.do(ctx, request{op: "experiences.delete", method: http.MethodDelete, path: "/experiences/" + escape(id)}, nil)
}
