// internal/api/applications_test.go
package api

import (
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"job-portal/internal/models"
	analyzeresume "job-portal/internal/workers/ai/analyze-resume"
)

func TestMyApplications(t *testing.T) {
	h := newHarness(t)
	h.apps.mine = []models.MyApplication{
		{ApplicationID: "a-1", Status: models.StatusScreening},
		{ApplicationID: "a-2", Status: models.StatusRejected},
	}

	rec := h.do(http.MethodGet, "/api/v1/applications", h.token(t, h.seeker), nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 2, decode(t, rec)["results"])
}

func TestEmployerDashboard(t *testing.T) {
	h := newHarness(t)
	token := h.token(t, h.employer)

	rec := h.do(http.MethodGet, "/api/v1/employer/jobs", token, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	id := h.addJob(h.employer)
	rec = h.do(http.MethodGet, "/api/v1/employer/jobs/"+id+"/applicants", token, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decode(t, rec)["results"])

	rec = h.do(http.MethodGet, "/api/v1/employer/jobs/"+uuid.New().String()+"/applicants", token, nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateApplicationStatus(t *testing.T) {
	h := newHarness(t)
	token := h.token(t, h.employer)

	decided := uuid.New().String()
	screening := uuid.New().String()
	foreign := uuid.New().String()
	h.apps.owners[decided] = h.employer.ID
	h.apps.statuses[decided] = models.StatusApplied
	h.apps.owners[screening] = h.employer.ID
	h.apps.statuses[screening] = models.StatusScreening
	h.apps.owners[foreign] = uuid.New().String()
	h.apps.statuses[foreign] = models.StatusApplied

	tests := []struct {
		name   string
		id     string
		body   string
		status int
	}{
		{"review decided application", decided, `{"status":"Interviewing"}`, http.StatusOK},
		{"still screening", screening, `{"status":"Viewed"}`, http.StatusConflict},
		{"other employer's job", foreign, `{"status":"Viewed"}`, http.StatusForbidden},
		{"screening is not a review status", decided, `{"status":"Screening"}`, http.StatusBadRequest},
		{"unknown application", uuid.New().String(), `{"status":"Viewed"}`, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := h.doJSON(http.MethodPatch, "/api/v1/employer/applications/"+tt.id+"/status", token, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}

	assert.Equal(t, models.StatusInterviewing, h.apps.statuses[decided])
	assert.Equal(t, models.StatusScreening, h.apps.statuses[screening])
}

// ==========================
// Profiles
// ==========================

func TestUpdateProfile_SeekerJSON(t *testing.T) {
	h := newHarness(t)

	rec := h.doJSON(http.MethodPut, "/api/v1/profiles/me", h.token(t, h.seeker),
		`{"headline":"Backend engineer","skills":["Go","PostgreSQL"]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	p := h.users.profiles[h.seeker.ID]
	assert.Equal(t, "Backend engineer", p.Headline)
	assert.Equal(t, []string{"Go", "PostgreSQL"}, p.Skills)
	assert.Equal(t, "s3://resumes/ada.pdf", p.ResumeURL)
}

func TestUpdateProfile_SeekerMultipartResume(t *testing.T) {
	h := newHarness(t)

	body, ct := multipartBody(t, map[string]string{"skills": "Go, Kafka ,"},
		formFile{field: "resume", name: "ada-2.pdf", contentType: "application/pdf", content: []byte("%PDF")})
	rec := h.do(http.MethodPut, "/api/v1/profiles/me", h.token(t, h.seeker), body, ct)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	p := h.users.profiles[h.seeker.ID]
	assert.Equal(t, []string{"Go", "Kafka"}, p.Skills)
	assert.Equal(t, "s3://resumes/ada-2.pdf", p.ResumeURL)
}

func TestUpdateProfile_EmployerCompany(t *testing.T) {
	h := newHarness(t)

	rec := h.doJSON(http.MethodPut, "/api/v1/profiles/me", h.token(t, h.employer), `{"website":"https://acme.example"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	c := h.users.companies[h.employer.ID]
	assert.Equal(t, "Acme", c.Name)
	assert.Equal(t, "https://acme.example", c.Website)

	rec = h.doJSON(http.MethodPut, "/api/v1/profiles/me", h.token(t, h.employer), `{"website":"ftp://nope"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSplitSkills(t *testing.T) {
	assert.Equal(t, []string{"Go", "SQL"}, splitSkills(" Go ,, SQL "))
	assert.Equal(t, []string{}, splitSkills(""))
}

// ==========================
// Resume analysis
// ==========================

func TestAnalyzeResume(t *testing.T) {
	h := newHarness(t)

	rec := h.do(http.MethodPost, "/api/v1/ai/analyze-resume", h.token(t, h.seeker), nil, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "s3://resumes/ada.pdf", h.analyzer.input.ResumeRef)
	assert.Empty(t, h.analyzer.input.ResumeText)

	rec = h.doJSON(http.MethodPost, "/api/v1/ai/analyze-resume", h.token(t, h.seeker), `{"resumeText":"Ten years of Go"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Ten years of Go", h.analyzer.input.ResumeText)

	analysis := decode(t, rec)["data"].(map[string]interface{})["analysis"].(map[string]interface{})
	assert.Equal(t, []interface{}{"Go"}, analysis["strengths"])
}

func TestAnalyzeResume_EmployerForbidden(t *testing.T) {
	h := newHarness(t)

	rec := h.doJSON(http.MethodPost, "/api/v1/ai/analyze-resume", h.token(t, h.employer), `{"resumeText":"Ten years of Go"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Nil(t, h.analyzer.input)
}

func TestAnalyzeResume_Errors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"nothing to analyze", analyzeresume.ErrNoResume, http.StatusBadRequest},
		{"model failure", analyzeresume.ErrAnalysisFailed, http.StatusBadGateway},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.analyzer.err = tt.err
			rec := h.doJSON(http.MethodPost, "/api/v1/ai/analyze-resume", h.token(t, h.seeker), `{}`)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}
