// internal/models/job.go
package models

import "time"

type JobType string

const (
	JobTypeFullTime   JobType = "Full-time"
	JobTypePartTime   JobType = "Part-time"
	JobTypeContract   JobType = "Contract"
	JobTypeInternship JobType = "Internship"
)

var JobTypes = []JobType{JobTypeFullTime, JobTypePartTime, JobTypeContract, JobTypeInternship}

// Job is the public representation of a posting. UserHasApplied and the
// application fields are filled per viewer.
type Job struct {
	ID               string    `json:"id" db:"id"`
	CompanyID        string    `json:"company_id" db:"company_id"`
	CompanyName      string    `json:"companyName" db:"company_name"`
	Title            string    `json:"title" db:"title"`
	Description      string    `json:"description" db:"description"`
	Location         string    `json:"location" db:"location"`
	Type             JobType   `json:"type" db:"type"`
	SalaryMin        *int      `json:"salary_min" db:"salary_min"`
	SalaryMax        *int      `json:"salary_max" db:"salary_max"`
	Responsibilities string    `json:"responsibilities" db:"responsibilities"`
	Qualifications   string    `json:"qualifications" db:"qualifications"`
	IsActive         bool      `json:"is_active" db:"is_active"`
	PostedAt         time.Time `json:"posted_at" db:"posted_at"`

	UserHasApplied    bool              `json:"userHasApplied"`
	ApplicationID     string            `json:"applicationId,omitempty"`
	ApplicationStatus ApplicationStatus `json:"applicationStatus,omitempty"`
}

// JobSummary is one row of the job list.
type JobSummary struct {
	ID          string    `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Location    string    `json:"location" db:"location"`
	Type        JobType   `json:"type" db:"type"`
	PostedAt    time.Time `json:"posted_at" db:"posted_at"`
	SalaryMin   *int      `json:"salary_min" db:"salary_min"`
	SalaryMax   *int      `json:"salary_max" db:"salary_max"`
	CompanyName string    `json:"companyName" db:"company_name"`
}

// EmployerJob is a posting on the employer dashboard.
type EmployerJob struct {
	JobSummary
	IsActive       bool `json:"is_active" db:"is_active"`
	ApplicantCount int  `json:"applicantCount" db:"applicant_count"`
}

// JobInput carries the editable fields of a posting. Nil fields are left unchanged on update.
type JobInput struct {
	Title            *string  `json:"title"`
	Description      *string  `json:"description"`
	Location         *string  `json:"location"`
	Type             *JobType `json:"type"`
	SalaryMin        *int     `json:"salaryMin"`
	SalaryMax        *int     `json:"salaryMax"`
	Responsibilities *string  `json:"responsibilities"`
	Qualifications   *string  `json:"qualifications"`
	IsActive         *bool    `json:"isActive"`
}

type JobFilter struct {
	Query     string
	Location  string
	Type      string
	MinSalary int
	Page      int
	Limit     int
}

const (
	DefaultJobPage  = 1
	DefaultJobLimit = 9
	MaxJobLimit     = 100
)

// Normalize applies the list defaults and bounds.
func (f *JobFilter) Normalize() {
	if f.Page < 1 {
		f.Page = DefaultJobPage
	}
	if f.Limit < 1 {
		f.Limit = DefaultJobLimit
	}
	if f.Limit > MaxJobLimit {
		f.Limit = MaxJobLimit
	}
	if f.MinSalary < 0 {
		f.MinSalary = 0
	}
}

// Offset returns the number of rows to skip for the current page.
func (f JobFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

type Pagination struct {
	TotalJobs   int `json:"totalJobs"`
	TotalPages  int `json:"totalPages"`
	CurrentPage int `json:"currentPage"`
}

// NewPagination computes page counts for total matches.
func NewPagination(total int, f JobFilter) Pagination {
	pages := 0
	if f.Limit > 0 {
		pages = (total + f.Limit - 1) / f.Limit
	}
	return Pagination{TotalJobs: total, TotalPages: pages, CurrentPage: f.Page}
}
