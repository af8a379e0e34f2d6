package model

import "time"

// Course is a training course tourists can enroll in.
type Course struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category,omitempty"`
	Duration    string    `json:"duration,omitempty"`
	Image       string    `json:"image,omitempty"`
	Topics      []string  `json:"topics,omitempty"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
}

// EnrollmentStatus is the progress of a tourist through a course.
type EnrollmentStatus string

const (
	EnrollmentEnrolled  EnrollmentStatus = "enrolled"
	EnrollmentCompleted EnrollmentStatus = "completed"
)

// Enrollment links a tourist to a course.
type Enrollment struct {
	ID          string           `json:"id"`
	UserID      string           `json:"userId"`
	CourseID    string           `json:"courseId"`
	Course      *Course          `json:"course,omitempty"`
	Status      EnrollmentStatus `json:"status"`
	CompletedAt *time.Time       `json:"completedAt,omitempty"`
	CreatedAt   time.Time        `json:"createdAt,omitempty"`
}

// EnrollmentCreate is the payload of the enrollment-create call.
type EnrollmentCreate struct {
	UserID   string `json:"userId"`
	CourseID string `json:"courseId"`
}

// CourseInput is the create/update payload of a course.
type CourseInput struct {
	Title       string   `json:"title" validate:"required,min=3"`
	Description string   `json:"description" validate:"required"`
	Category    string   `json:"category,omitempty"`
	Duration    string   `json:"duration,omitempty"`
	Image       string   `json:"image,omitempty"`
	Topics      []string `json:"topics,omitempty"`
}

// EnrollmentUpdate changes the status of an enrollment.
type EnrollmentUpdate struct {
	Status EnrollmentStatus `json:"status"`
}
