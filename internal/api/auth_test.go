// internal/api/auth_test.go
package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"job-portal/internal/models"
)

func TestSignup_JobSeekerWithResume(t *testing.T) {
	h := newHarness(t)

	body, ct := multipartBody(t, map[string]string{
		"firstName": "Alan",
		"lastName":  "Turing",
		"email":     "alan@example.com",
		"password":  "enigma-1912",
		"role":      "Job Seeker",
	}, formFile{field: "resume", name: "alan.pdf", contentType: "application/pdf", content: []byte("%PDF-1.4")})

	rec := h.do(http.MethodPost, "/api/v1/auth/signup", "", body, ct)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	data := decode(t, rec)["data"].(map[string]interface{})
	assert.NotEmpty(t, data["token"])
	user := data["user"].(map[string]interface{})
	assert.Equal(t, "Job Seeker", user["role"])
	assert.NotContains(t, user, "password_hash")

	assert.Equal(t, []string{"alan.pdf"}, h.resumes.names)
	created, err := h.users.FindByEmail(t.Context(), "alan@example.com")
	require.NoError(t, err)
	assert.Equal(t, "s3://resumes/alan.pdf", h.users.profiles[created.ID].ResumeURL)
}

func TestSignup_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		fields map[string]string
		files  []formFile
		status int
	}{
		{
			name:   "seeker without resume",
			fields: map[string]string{"firstName": "A", "lastName": "B", "email": "a@example.com", "password": "long-enough", "role": "Job Seeker"},
			status: http.StatusBadRequest,
		},
		{
			name:   "employer without company",
			fields: map[string]string{"firstName": "A", "lastName": "B", "email": "a@example.com", "password": "long-enough", "role": "Employer"},
			status: http.StatusBadRequest,
		},
		{
			name:   "unknown role",
			fields: map[string]string{"firstName": "A", "lastName": "B", "email": "a@example.com", "password": "long-enough", "role": "Admin"},
			status: http.StatusBadRequest,
		},
		{
			name:   "resume with unsupported type",
			fields: map[string]string{"firstName": "A", "lastName": "B", "email": "a@example.com", "password": "long-enough", "role": "Job Seeker"},
			files:  []formFile{{field: "resume", name: "a.exe", contentType: "application/octet-stream", content: []byte("MZ")}},
			status: http.StatusBadRequest,
		},
		{
			name:   "duplicate email",
			fields: map[string]string{"firstName": "A", "lastName": "B", "email": "grace@example.com", "password": "long-enough", "role": "Employer", "companyName": "Other"},
			status: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			body, ct := multipartBody(t, tt.fields, tt.files...)
			rec := h.do(http.MethodPost, "/api/v1/auth/signup", "", body, ct)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Equal(t, "fail", decode(t, rec)["status"])
		})
	}
}

func TestSignup_EmployerCreatesCompany(t *testing.T) {
	h := newHarness(t)

	body, ct := multipartBody(t, map[string]string{
		"firstName":   "Linus",
		"lastName":    "T",
		"email":       "linus@example.com",
		"password":    "penguins-rule",
		"role":        "Employer",
		"companyName": "Kernel Inc",
	})
	rec := h.do(http.MethodPost, "/api/v1/auth/signup", "", body, ct)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	u, err := h.users.FindByEmail(t.Context(), "linus@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.RoleEmployer, u.Role)
	assert.Equal(t, "Kernel Inc", h.users.companies[u.ID].Name)
}

func TestLogin(t *testing.T) {
	h := newHarness(t)

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"valid credentials", `{"email":"ADA@example.com","password":"correct-horse"}`, http.StatusOK},
		{"wrong password", `{"email":"ada@example.com","password":"wrong"}`, http.StatusUnauthorized},
		{"unknown email", `{"email":"nobody@example.com","password":"correct-horse"}`, http.StatusUnauthorized},
		{"missing password", `{"email":"ada@example.com"}`, http.StatusBadRequest},
		{"malformed json", `{"email":`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := h.doJSON(http.MethodPost, "/api/v1/auth/login", "", tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			if tt.status == http.StatusOK {
				data := decode(t, rec)["data"].(map[string]interface{})
				claims, err := h.tokens.Parse(data["token"].(string))
				require.NoError(t, err)
				assert.Equal(t, h.seeker.ID, claims.UserID)
			}
		})
	}
}

func TestLogout_RevokesToken(t *testing.T) {
	h := newHarness(t)
	token := h.token(t, h.seeker)

	rec := h.do(http.MethodPost, "/api/v1/auth/logout", token, nil, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Len(t, h.redis.Keys(), 1)

	rec = h.do(http.MethodGet, "/api/v1/profiles/me", token, nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
