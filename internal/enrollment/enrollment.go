// Package enrollment enrolls tourists in courses. An anonymous enroll
// request remembers the course in the client's session storage so the login
// flow can bring the user back to it.
package enrollment

import (
	"context"
	"errors"
	"log/slog"
	"net/url"

	"github.com/iliyamo/tourism-portal/internal/apperror"
	"github.com/iliyamo/tourism-portal/internal/gateway"
	"github.com/iliyamo/tourism-portal/internal/model"
)

// CoursesListingPath is where missing courses and enrollments send the user.
const CoursesListingPath = "/courses"

// CourseSource loads courses; *gateway.CoursesAPI satisfies it.
type CourseSource interface {
	Get(ctx context.Context, id string) (model.Course, error)
}

// Backend is the enrollment slice of the gateway; *gateway.EnrollmentsAPI
// satisfies it.
type Backend interface {
	Get(ctx context.Context, id string) (model.Enrollment, error)
	Create(ctx context.Context, in model.EnrollmentCreate) (model.Enrollment, error)
	Complete(ctx context.Context, id string) (model.Enrollment, error)
	ForUser(ctx context.Context, userID string) ([]model.Enrollment, error)
}

// PendingCourses remembers a course across a login redirect;
// *session.Store satisfies it.
type PendingCourses interface {
	SetPendingCourse(ctx context.Context, courseID string) error
}

type Service struct {
	courses     CourseSource
	enrollments Backend
	log         *slog.Logger
}

func NewService(courses CourseSource, enrollments Backend, log *slog.Logger) *Service {
	if courses == nil || enrollments == nil {
		panic("enrollment.NewService: nil dependency")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{courses: courses, enrollments: enrollments, log: log}
}

func remote(err error) error { return apperror.Remote(gateway.UserMessage(err), err) }

// CourseView is a course together with the caller's enrollment in it.
type CourseView struct {
	Course     model.Course      `json:"course"`
	Enrollment *model.Enrollment `json:"enrollment,omitempty"`
}

// Course loads a course and, for a signed-in identity, its enrollment.
func (s *Service) Course(ctx context.Context, id *model.Identity, courseID string) (CourseView, error) {
	c, err := s.courses.Get(ctx, courseID)
	if errors.Is(err, gateway.ErrNotFound) {
		return CourseView{}, apperror.NotFound("course not found", CoursesListingPath)
	}
	if err != nil {
		return CourseView{}, remote(err)
	}
	view := CourseView{Course: c}
	if id != nil {
		en, found, err := s.find(ctx, id.ID, courseID)
		if err != nil {
			// the page still renders without the enrollment badge
			s.log.WarnContext(ctx, "enrollment: lookup failed", "course_id", courseID, "error", err)
		} else if found {
			view.Enrollment = &en
		}
	}
	return view, nil
}

func (s *Service) find(ctx context.Context, userID, courseID string) (model.Enrollment, bool, error) {
	list, err := s.enrollments.ForUser(ctx, userID)
	if err != nil {
		return model.Enrollment{}, false, err
	}
	for _, en := range list {
		if en.CourseID == courseID && (en.UserID == "" || en.UserID == userID) {
			return en, true, nil
		}
	}
	return model.Enrollment{}, false, nil
}

// Enroll returns the caller's enrollment in courseID, creating it when
// needed. Without an identity the course is remembered in pending and an
// AuthRequired error pointing back at the course is returned.
func (s *Service) Enroll(ctx context.Context, id *model.Identity, pending PendingCourses, courseID string) (model.Enrollment, error) {
	if id == nil {
		if pending != nil {
			if err := pending.SetPendingCourse(ctx, courseID); err != nil {
				s.log.WarnContext(ctx, "enrollment: remember pending course", "course_id", courseID, "error", err)
			}
		}
		return model.Enrollment{}, apperror.AuthRequired("/courses/" + url.PathEscape(courseID))
	}

	existing, found, err := s.find(ctx, id.ID, courseID)
	if err != nil {
		return model.Enrollment{}, remote(err)
	}
	if found {
		return existing, nil
	}

	en, err := s.enrollments.Create(ctx, model.EnrollmentCreate{UserID: id.ID, CourseID: courseID})
	if err != nil {
		return model.Enrollment{}, remote(err)
	}
	s.log.InfoContext(ctx, "enrollment: created", "enrollment_id", en.ID, "course_id", courseID, "user_id", id.ID)
	return en, nil
}

// owned loads an enrollment and hides it unless it belongs to id.
func (s *Service) owned(ctx context.Context, id *model.Identity, enrollmentID string) (model.Enrollment, error) {
	en, err := s.enrollments.Get(ctx, enrollmentID)
	if errors.Is(err, gateway.ErrNotFound) {
		return model.Enrollment{}, apperror.NotFound("enrollment not found", CoursesListingPath)
	}
	if err != nil {
		return model.Enrollment{}, remote(err)
	}
	if en.UserID != id.ID && !id.IsAdmin {
		return model.Enrollment{}, apperror.NotFound("enrollment not found", CoursesListingPath)
	}
	return en, nil
}

// Content returns the course material for an enrollment of the caller.
func (s *Service) Content(ctx context.Context, id *model.Identity, courseID, enrollmentID string) (model.Course, model.Enrollment, error) {
	if id == nil {
		return model.Course{}, model.Enrollment{}, apperror.AuthRequired("/courses/" + url.PathEscape(courseID) + "/content/" + url.PathEscape(enrollmentID))
	}
	en, err := s.owned(ctx, id, enrollmentID)
	if err != nil {
		return model.Course{}, model.Enrollment{}, err
	}
	if en.CourseID != courseID {
		return model.Course{}, model.Enrollment{}, apperror.NotFound("enrollment not found", CoursesListingPath)
	}
	c, err := s.courses.Get(ctx, courseID)
	if errors.Is(err, gateway.ErrNotFound) {
		return model.Course{}, model.Enrollment{}, apperror.NotFound("course not found", CoursesListingPath)
	}
	if err != nil {
		return model.Course{}, model.Enrollment{}, remote(err)
	}
	return c, en, nil
}

// Complete marks one of the caller's enrollments as completed.
func (s *Service) Complete(ctx context.Context, id *model.Identity, enrollmentID string) (model.Enrollment, error) {
	if id == nil {
		return model.Enrollment{}, apperror.AuthRequired("/tourist/my-courses")
	}
	if _, err := s.owned(ctx, id, enrollmentID); err != nil {
		return model.Enrollment{}, err
	}
	en, err := s.enrollments.Complete(ctx, enrollmentID)
	if err != nil {
		return model.Enrollment{}, remote(err)
	}
	return en, nil
}

// Mine lists the caller's enrollments split by status.
func (s *Service) Mine(ctx context.Context, id *model.Identity) (enrolled, completed []model.Enrollment, err error) {
	if id == nil {
		return nil, nil, apperror.AuthRequired("/tourist/my-courses")
	}
	list, err := s.enrollments.ForUser(ctx, id.ID)
	if err != nil {
		return nil, nil, remote(err)
	}
	enrolled, completed = []model.Enrollment{}, []model.Enrollment{}
	for _, en := range list {
		if en.Status == model.EnrollmentCompleted {
			completed = append(completed, en)
		} else {
			enrolled = append(enrolled, en)
		}
	}
	return enrolled, completed, nil
}
