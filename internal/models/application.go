// internal/models/application.go
package models

import "time"

type ApplicationStatus string

const (
	// StatusScreening is the initial state while the resume is being scored.
	StatusScreening ApplicationStatus = "Screening"
	StatusApplied   ApplicationStatus = "Applied"
	StatusRejected  ApplicationStatus = "Rejected"

	StatusViewed       ApplicationStatus = "Viewed"
	StatusInterviewing ApplicationStatus = "Interviewing"
	StatusOffered      ApplicationStatus = "Offered"
)

// IsScreeningOutcome reports whether s is a terminal screening decision.
func (s ApplicationStatus) IsScreeningOutcome() bool {
	return s == StatusApplied || s == StatusRejected
}

// IsReviewStatus reports whether an employer may set s.
func (s ApplicationStatus) IsReviewStatus() bool {
	switch s {
	case StatusApplied, StatusViewed, StatusInterviewing, StatusOffered, StatusRejected:
		return true
	}
	return false
}

type Application struct {
	ID        string            `json:"id" db:"id"`
	JobID     string            `json:"job_id" db:"job_id"`
	UserID    string            `json:"user_id" db:"user_id"`
	Status    ApplicationStatus `json:"status" db:"status"`
	AppliedAt time.Time         `json:"applied_at" db:"applied_at"`
	UpdatedAt time.Time         `json:"updated_at" db:"updated_at"`
}

// MyApplication is a row of the job seeker's application list.
type MyApplication struct {
	ApplicationID string            `json:"applicationId" db:"application_id"`
	Status        ApplicationStatus `json:"status" db:"status"`
	AppliedAt     time.Time         `json:"applied_at" db:"applied_at"`
	JobID         string            `json:"jobId" db:"job_id"`
	Title         string            `json:"title" db:"title"`
	Location      string            `json:"location" db:"location"`
	CompanyName   string            `json:"companyName" db:"company_name"`
}

// Applicant is a row of the employer's applicant list for one job.
type Applicant struct {
	ApplicationID string            `json:"applicationId" db:"application_id"`
	Status        ApplicationStatus `json:"status" db:"status"`
	AppliedAt     time.Time         `json:"applied_at" db:"applied_at"`
	FirstName     string            `json:"first_name" db:"first_name"`
	LastName      string            `json:"last_name" db:"last_name"`
	Email         string            `json:"email" db:"email"`
	ResumeURL     string            `json:"resume_url" db:"resume_url"`
}

type WorkItemState string

const (
	WorkItemPending WorkItemState = "pending"
	WorkItemRunning WorkItemState = "running"
	WorkItemDone    WorkItemState = "done"
)

// WorkItem is a screening_outbox row: one per application.
type WorkItem struct {
	ID            string        `json:"id" db:"id"`
	ApplicationID string        `json:"applicationId" db:"application_id"`
	JobID         string        `json:"jobId" db:"job_id"`
	ApplicantID   string        `json:"applicantId" db:"applicant_id"`
	State         WorkItemState `json:"state" db:"state"`
	Attempts      int           `json:"attempts" db:"attempts"`
	RunAt         time.Time     `json:"runAt" db:"run_at"`
	LockedAt      *time.Time    `json:"lockedAt,omitempty" db:"locked_at"`
	LastError     string        `json:"lastError,omitempty" db:"last_error"`
}

// StaleScreening is an application still in Screening whose work item is not making progress.
type StaleScreening struct {
	ApplicationID string        `json:"applicationId" db:"application_id"`
	JobID         string        `json:"jobId" db:"job_id"`
	ApplicantID   string        `json:"applicantId" db:"applicant_id"`
	AppliedAt     time.Time     `json:"appliedAt" db:"applied_at"`
	Attempts      int           `json:"attempts" db:"attempts"`
	State         WorkItemState `json:"state" db:"state"`
}
