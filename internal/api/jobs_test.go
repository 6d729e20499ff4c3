// internal/api/jobs_test.go
package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"job-portal/internal/models"
	applytojob "job-portal/internal/workers/application/apply-to-job"
)

// ==========================
// Listing and detail
// ==========================

func TestListJobs(t *testing.T) {
	h := newHarness(t)

	rec := h.do(http.MethodGet, "/api/v1/jobs?q=golang&location=Berlin&type=Full-time&minSalary=50000&page=2&limit=5", "", nil, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decode(t, rec)
	assert.Equal(t, "success", body["status"])
	assert.EqualValues(t, 1, body["results"])

	require.NotNil(t, h.search.input)
	assert.Equal(t, "golang", h.search.input.Query)
	assert.Equal(t, "Berlin", h.search.input.Location)
	assert.Equal(t, 50000, h.search.input.MinSalary)
	assert.Equal(t, 2, h.search.input.Page)
	assert.Equal(t, 5, h.search.input.Limit)
}

func TestListJobs_BadNumber(t *testing.T) {
	h := newHarness(t)
	rec := h.do(http.MethodGet, "/api/v1/jobs?page=two", "", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, h.search.input)
}

func TestGetJob(t *testing.T) {
	h := newHarness(t)
	id := h.addJob(h.employer)

	rec := h.do(http.MethodGet, "/api/v1/jobs/"+id, "", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = h.do(http.MethodGet, "/api/v1/jobs/not-a-uuid", "", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.do(http.MethodGet, "/api/v1/jobs/"+uuid.New().String(), "", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// an invalid token does not block the public detail view
	rec = h.do(http.MethodGet, "/api/v1/jobs/"+id, "bogus", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

// ==========================
// Employer writes
// ==========================

func TestCreateJob(t *testing.T) {
	h := newHarness(t)

	rec := h.doJSON(http.MethodPost, "/api/v1/jobs", h.token(t, h.employer),
		`{"title":"Senior Go engineer","description":"Build services","type":"Full-time","salaryMin":90000,"salaryMax":120000}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	job := decode(t, rec)["data"].(map[string]interface{})["job"].(map[string]interface{})
	assert.Equal(t, "Senior Go engineer", job["title"])
	assert.Equal(t, []string{job["id"].(string)}, h.search.indexed)

	stored := h.jobs.jobs[job["id"].(string)]
	require.NotNil(t, stored.SalaryMin)
	require.NotNil(t, stored.SalaryMax)
	assert.Equal(t, 90000, *stored.SalaryMin)
	assert.Equal(t, 120000, *stored.SalaryMax)
}

func TestCreateJob_InvalidBody(t *testing.T) {
	h := newHarness(t)

	rec := h.doJSON(http.MethodPost, "/api/v1/jobs", h.token(t, h.employer), `{"title":"","type":"Freelance"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode(t, rec)["message"], "Invalid request body")
	assert.Empty(t, h.jobs.jobs)
}

func TestUpdateJob_Ownership(t *testing.T) {
	h := newHarness(t)

	other := &models.User{FirstName: "O", LastName: "E", Email: "other@example.com"}
	require.NoError(t, h.users.CreateEmployer(t.Context(), other, &models.Company{Name: "Other"}))
	id := h.addJob(other)

	rec := h.doJSON(http.MethodPatch, "/api/v1/jobs/"+id, h.token(t, h.employer), `{"title":"Hijacked"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Senior Go engineer", h.jobs.jobs[id].Title)

	rec = h.doJSON(http.MethodPatch, "/api/v1/jobs/"+id, h.token(t, other), `{"title":"Staff Go engineer"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Staff Go engineer", h.jobs.jobs[id].Title)
	assert.Equal(t, []string{id}, h.search.indexed)
}

func TestDeleteJob(t *testing.T) {
	h := newHarness(t)
	id := h.addJob(h.employer)

	rec := h.do(http.MethodDelete, "/api/v1/jobs/"+id, h.token(t, h.employer), nil, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.NotContains(t, h.jobs.jobs, id)
	assert.Equal(t, []string{id}, h.search.removed)
}

func TestEmployerJobRoutes(t *testing.T) {
	h := newHarness(t)
	id := h.addJob(h.employer)

	rec := h.doJSON(http.MethodPut, "/api/v1/employer/jobs/"+id, h.token(t, h.seeker), `{"title":"Nope"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = h.doJSON(http.MethodPut, "/api/v1/employer/jobs/"+id, h.token(t, h.employer),
		`{"title":"Staff Go engineer","salaryMin":95000,"salaryMax":130000,"isActive":false}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	stored := h.jobs.jobs[id]
	assert.Equal(t, "Staff Go engineer", stored.Title)
	require.NotNil(t, stored.SalaryMin)
	require.NotNil(t, stored.SalaryMax)
	assert.Equal(t, 95000, *stored.SalaryMin)
	assert.Equal(t, 130000, *stored.SalaryMax)
	assert.False(t, stored.IsActive)

	rec = h.do(http.MethodDelete, "/api/v1/employer/jobs/"+id, h.token(t, h.employer), nil, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.NotContains(t, h.jobs.jobs, id)
	assert.Equal(t, []string{id}, h.search.removed)
}

// ==========================
// Apply
// ==========================

func TestApplyToJob(t *testing.T) {
	h := newHarness(t)
	id := h.addJob(h.employer)

	rec := h.do(http.MethodPost, "/api/v1/jobs/"+id+"/apply", h.token(t, h.seeker), nil, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	body := decode(t, rec)
	assert.Equal(t, "Application submitted successfully!", body["message"])
	job := body["data"].(map[string]interface{})["job"].(map[string]interface{})
	assert.Equal(t, "Screening", job["applicationStatus"])
	assert.Equal(t, true, job["userHasApplied"])

	assert.Equal(t, h.seeker.ID, h.intake.input.ApplicantID)
	assert.Equal(t, id, h.intake.input.JobID)
}

func TestApplyToJob_Errors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"no resume", applytojob.ErrResumeRequired, http.StatusBadRequest, "Please upload a resume to your profile before applying."},
		{"duplicate", fmt.Errorf("%w: job x", applytojob.ErrAlreadyApplied), http.StatusConflict, "You have already applied for this job."},
		{"inactive job", applytojob.ErrJobNotFound, http.StatusNotFound, "Job not found or is no longer active."},
		{"database", fmt.Errorf("%w: boom", applytojob.ErrIntakeFailed), http.StatusInternalServerError, "Something went wrong"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.intake.err = tt.err

			rec := h.do(http.MethodPost, "/api/v1/jobs/"+uuid.New().String()+"/apply", h.token(t, h.seeker), nil, "")
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.message, decode(t, rec)["message"])
		})
	}
}
