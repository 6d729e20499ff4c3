// internal/workers/data-access/search-jobs/models.go
package searchjobs

import (
	"time"

	"job-portal/internal/models"
)

type Input struct {
	Query     string `json:"q"`
	Location  string `json:"location"`
	Type      string `json:"type"`
	MinSalary int    `json:"minSalary"`
	Page      int    `json:"page"`
	Limit     int    `json:"limit"`
}

func (in Input) Filter() models.JobFilter {
	return models.JobFilter{
		Query:     in.Query,
		Location:  in.Location,
		Type:      in.Type,
		MinSalary: in.MinSalary,
		Page:      in.Page,
		Limit:     in.Limit,
	}
}

type Output struct {
	Jobs       []models.JobSummary `json:"jobs"`
	Pagination models.Pagination   `json:"pagination"`
	Source     string              `json:"source"` // "elasticsearch" or "postgres"
}

const (
	SourceElasticsearch = "elasticsearch"
	SourcePostgres      = "postgres"
)

// jobDocument is the indexed form of a posting.
type jobDocument struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CompanyName string    `json:"companyName"`
	Location    string    `json:"location"`
	Type        string    `json:"type"`
	SalaryMin   *int      `json:"salaryMin,omitempty"`
	SalaryMax   *int      `json:"salaryMax,omitempty"`
	IsActive    bool      `json:"isActive"`
	PostedAt    time.Time `json:"postedAt"`
}

func newJobDocument(j *models.Job) jobDocument {
	return jobDocument{
		Title:       j.Title,
		Description: j.Description,
		CompanyName: j.CompanyName,
		Location:    j.Location,
		Type:        string(j.Type),
		SalaryMin:   j.SalaryMin,
		SalaryMax:   j.SalaryMax,
		IsActive:    j.IsActive,
		PostedAt:    j.PostedAt,
	}
}

type searchResponse struct {
	Took int64 `json:"took"`
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		Hits []struct {
			ID     string      `json:"_id"`
			Source jobDocument `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}
