package enrollment

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/tourism-portal/internal/apperror"
	"github.com/iliyamo/tourism-portal/internal/gateway"
	"github.com/iliyamo/tourism-portal/internal/model"
)

type fakeCourses map[string]model.Course

func (f fakeCourses) Get(_ context.Context, id string) (model.Course, error) {
	c, ok := f[id]
	if !ok {
		return model.Course{}, &gateway.Error{Op: "courses.get", StatusCode: 404}
	}
	return c, nil
}

type fakeEnrollments struct {
	items   map[string]model.Enrollment
	creates int
}

func (f *fakeEnrollments) Get(_ context.Context, id string) (model.Enrollment, error) {
	en, ok := f.items[id]
	if !ok {
		return model.Enrollment{}, &gateway.Error{Op: "enrollments.get", StatusCode: 404}
	}
	return en, nil
}

func (f *fakeEnrollments) Create(_ context.Context, in model.EnrollmentCreate) (model.Enrollment, error) {
	f.creates++
	en := model.Enrollment{ID: fmt.Sprintf("en%d", len(f.items)+1), UserID: in.UserID, CourseID: in.CourseID, Status: model.EnrollmentEnrolled}
	f.items[en.ID] = en
	return en, nil
}

func (f *fakeEnrollments) Complete(_ context.Context, id string) (model.Enrollment, error) {
	en := f.items[id]
	en.Status = model.EnrollmentCompleted
	f.items[id] = en
	return en, nil
}

func (f *fakeEnrollments) ForUser(_ context.Context, userID string) ([]model.Enrollment, error) {
	var out []model.Enrollment
	for _, en := range f.items {
		if en.UserID == userID {
			out = append(out, en)
		}
	}
	return out, nil
}

type pendingRecorder struct{ courseID string }

func (p *pendingRecorder) SetPendingCourse(_ context.Context, id string) error {
	p.courseID = id
	return nil
}

func newService() (*Service, *fakeEnrollments) {
	ens := &fakeEnrollments{items: map[string]model.Enrollment{}}
	return NewService(fakeCourses{"c1": {ID: "c1", Title: "Birding basics"}}, ens, nil), ens
}

var tourist = &model.Identity{ID: "u1", Email: "t@example.rw"}

func TestAnonymousEnrollRemembersCourse(t *testing.T) {
	svc, ens := newService()
	pending := &pendingRecorder{}

	_, err := svc.Enroll(context.Background(), nil, pending, "c1")
	e, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, apperror.KindAuthRequired, e.Kind)
	assert.Equal(t, "/courses/c1", e.Return)
	assert.Equal(t, "c1", pending.courseID)
	assert.Zero(t, ens.creates)
}

func TestAnonymousEnrollEscapesCourseInReturnPath(t *testing.T) {
	svc, _ := newService()
	pending := &pendingRecorder{}

	_, err := svc.Enroll(context.Background(), nil, pending, "c 1/x")
	e, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, "/courses/c%201%2Fx", e.Return)
	assert.Equal(t, "c 1/x", pending.courseID)
}

func TestEnrollIsIdempotentPerCourse(t *testing.T) {
	svc, ens := newService()
	ctx := context.Background()

	first, err := svc.Enroll(ctx, tourist, nil, "c1")
	require.NoError(t, err)
	second, err := svc.Enroll(ctx, tourist, nil, "c1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, ens.creates)

	view, err := svc.Course(ctx, tourist, "c1")
	require.NoError(t, err)
	require.NotNil(t, view.Enrollment)
	assert.Equal(t, first.ID, view.Enrollment.ID)
}

func TestContentChecksOwnershipAndCourse(t *testing.T) {
	svc, ens := newService()
	ctx := context.Background()
	ens.items["mine"] = model.Enrollment{ID: "mine", UserID: "u1", CourseID: "c1"}
	ens.items["theirs"] = model.Enrollment{ID: "theirs", UserID: "u2", CourseID: "c1"}

	c, en, err := svc.Content(ctx, tourist, "c1", "mine")
	require.NoError(t, err)
	assert.Equal(t, "Birding basics", c.Title)
	assert.Equal(t, "mine", en.ID)

	_, _, err = svc.Content(ctx, tourist, "c1", "theirs")
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
	_, _, err = svc.Content(ctx, tourist, "c2", "mine")
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
	_, _, err = svc.Content(ctx, nil, "c1", "mine")
	assert.Equal(t, apperror.KindAuthRequired, apperror.KindOf(err))
}

func TestCompleteAndMine(t *testing.T) {
	svc, ens := newService()
	ctx := context.Background()
	ens.items["a"] = model.Enrollment{ID: "a", UserID: "u1", CourseID: "c1", Status: model.EnrollmentEnrolled}
	ens.items["b"] = model.Enrollment{ID: "b", UserID: "u1", CourseID: "c2", Status: model.EnrollmentEnrolled}

	done, err := svc.Complete(ctx, tourist, "a")
	require.NoError(t, err)
	assert.Equal(t, model.EnrollmentCompleted, done.Status)

	enrolled, completed, err := svc.Mine(ctx, tourist)
	require.NoError(t, err)
	assert.Len(t, enrolled, 1)
	assert.Len(t, completed, 1)

	_, err = svc.Complete(ctx, &model.Identity{ID: "u2"}, "b")
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestCourseNotFound(t *testing.T) {
	svc, _ := newService()
	_, err := svc.Course(context.Background(), nil, "missing")
	e, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, CoursesListingPath, e.Redirect)
}
