// internal/models/user.go
package models

import "time"

type Role string

const (
	RoleJobSeeker Role = "Job Seeker"
	RoleEmployer  Role = "Employer"
)

// Valid reports whether r is one of the two portal roles.
func (r Role) Valid() bool {
	return r == RoleJobSeeker || r == RoleEmployer
}

type User struct {
	ID           string    `json:"id" db:"id"`
	FirstName    string    `json:"first_name" db:"first_name"`
	LastName     string    `json:"last_name" db:"last_name"`
	Email        string    `json:"email" db:"email"`
	Phone        string    `json:"phone,omitempty" db:"phone"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         Role      `json:"role" db:"role"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

type Company struct {
	ID          string `json:"id" db:"id"`
	UserID      string `json:"user_id" db:"user_id"`
	Name        string `json:"name" db:"name"`
	Description string `json:"description" db:"description"`
	Website     string `json:"website" db:"website"`
}

type SeekerProfile struct {
	UserID    string   `json:"user_id" db:"user_id"`
	Headline  string   `json:"headline" db:"headline"`
	Summary   string   `json:"summary" db:"summary"`
	Skills    []string `json:"skills" db:"skills"`
	ResumeURL string   `json:"resume_url" db:"resume_url"`
}

// Profile is what GET /profiles/me returns; exactly one of Seeker or Company is set.
type Profile struct {
	User    *User          `json:"user"`
	Seeker  *SeekerProfile `json:"profile,omitempty"`
	Company *Company       `json:"company,omitempty"`
}
