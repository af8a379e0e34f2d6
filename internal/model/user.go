package model

import "time"

// User is the backend's user record as returned by the users endpoints.
type User struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	FirstName   string    `json:"firstName"`
	LastName    string    `json:"lastName"`
	IsAdmin     bool      `json:"isAdmin"`
	AccountType string    `json:"accountType,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	Bio         string    `json:"bio,omitempty"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
}

// UserUpdate carries profile fields a user (or an admin) may change.
// Nil fields are left untouched by the backend.
type UserUpdate struct {
	FirstName   *string `json:"firstName,omitempty"`
	LastName    *string `json:"lastName,omitempty"`
	Email       *string `json:"email,omitempty"`
	Phone       *string `json:"phone,omitempty"`
	Bio         *string `json:"bio,omitempty"`
	IsAdmin     *bool   `json:"isAdmin,omitempty"`
	AccountType *string `json:"accountType,omitempty"`
}

// Registration is the payload of the registration call.
type Registration struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	AccountType string `json:"accountType"`
}

// ContactMessage is a message submitted through the public contact form.
type ContactMessage struct {
	ID        string    `json:"id,omitempty"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	Status    string    `json:"status,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// AppStats are the aggregate counters shown on the admin dashboard.
type AppStats struct {
	TotalUsers        int            `json:"totalUsers"`
	TotalExperiences  int            `json:"totalExperiences"`
	TotalBookings     int            `json:"totalBookings"`
	UserRegistrations map[string]int `json:"userRegistrations,omitempty"`
}

// ContactUpdate changes the handling status of a contact message.
type ContactUpdate struct {
	Status string `json:"status"`
}
