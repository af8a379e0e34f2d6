package gateway

import (
	"context"
	"net/http"
	"net/url"

	"github.com/iliyamo/tourism-portal/internal/model"
)

// CoursesAPI covers /courses.
type CoursesAPI struct{ c *Client }

func (co *CoursesAPI) List(ctx context.Context) ([]model.Course, error) {
	var out []model.Course
	err := co.c.do(ctx, request{op: "courses.list", method: http.MethodGet, path: "/courses"}, &out)
	return out, err
}

func (co *CoursesAPI) Get(ctx context.Context, id string) (model.Course, error) {
	var out model.Course
	err := co.c.do(ctx, request{op: "courses.get", method: http.MethodGet, path: "/courses/" + escape(id)}, &out)
	return out, err
}

func (co *CoursesAPI) Create(ctx context.Context, in model.CourseInput) (model.Course, error) {
	var out model.Course
	err := co.c.do(ctx, request{op: "courses.create", method: http.MethodPost, path: "/courses", body: in}, &out)
	return out, err
}

func (co *CoursesAPI) Update(ctx context.Context, id string, in model.CourseInput) (model.Course, error) {
	var out model.Course
	err := co.c.do(ctx, request{op: "courses.update", method: http.MethodPatch, path: "/courses/" + escape(id), body: in}, &out)
	return out, err
}

func (co *CoursesAPI) Delete(ctx context.Context, id string) error {
	return co.c.do(ctx, request{op: "courses.delete", method: http.MethodDelete, path: "/courses/" + escape(id)}, nil)
}

// EnrollmentsAPI covers /enrollments.
type EnrollmentsAPI struct{ c *Client }

// List returns enrollments, optionally narrowed to one user and/or course.
func (en *EnrollmentsAPI) List(ctx context.Context, userID, courseID string) ([]model.Enrollment, error) {
	q := url.Values{}
	addIf(q, "userId", userID)
	addIf(q, "courseId", courseID)
	var out []model.Enrollment
	err := en.c.do(ctx, request{op: "enrollments.list", method: http.MethodGet, path: "/enrollments", query: q}, &out)
	return out, err
}

func (en *EnrollmentsAPI) Get(ctx context.Context, id string) (model.Enrollment, error) {
	var out model.Enrollment
	err := en.c.do(ctx, request{op: "enrollments.get", method: http.MethodGet, path: "/enrollments/" + escape(id)}, &out)
	return out, err
}

func (en *EnrollmentsAPI) Create(ctx context.Context, in model.EnrollmentCreate) (model.Enrollment, error) {
	var out model.Enrollment
	err := en.c.do(ctx, request{op: "enrollments.create", method: http.MethodPost, path: "/enrollments", body: in}, &out)
	return out, err
}

func (en *EnrollmentsAPI) Update(ctx context.Context, id string, in model.EnrollmentUpdate) (model.Enrollment, error) {
	var out model.Enrollment
	err := en.c.do(ctx, request{op: "enrollments.update", method: http.MethodPatch, path: "/enrollments/" + escape(id), body: in}, &out)
	return out, err
}

// Complete marks an enrollment as completed.
func (en *EnrollmentsAPI) Complete(ctx context.Context, id string) (model.Enrollment, error) {
	var out model.Enrollment
	err := en.c.do(ctx, request{
		op:     "enrollments.complete",
		method: http.MethodPatch,
		path:   "/enrollments/" + escape(id) + "/complete",
		body:   struct{}{},
	}, &out)
	return out, err
}

func (en *EnrollmentsAPI) Delete(ctx context.Context, id string) error {
	return en.c.do(ctx, request{op: "enrollments.delete", method: http.MethodDelete, path: "/enrollments/" + escape(id)}, nil)
}

// ForUser lists the enrollments of one tourist.
func (en *EnrollmentsAPI) ForUser(ctx context.Context, userID string) ([]model.Enrollment, error) {
	return en.List(ctx, userID, "")
}
