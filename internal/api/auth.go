// internal/api/auth.go
package api

import (
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"job-portal/internal/common/errors"
	"job-portal/internal/common/validation"
	"job-portal/internal/models"
	"job-portal/internal/repository"
)

type signupRequest struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	Phone       string `json:"phone"`
	Role        string `json:"role"`
	CompanyName string `json:"companyName"`
	ResumeURL   string `json:"resumeUrl"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// signup accepts a multipart form so job seekers can attach their resume.
func (s *Server) signup(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.config.MaxUploadBytes)
	if err := c.Request.ParseMultipartForm(s.config.MaxUploadBytes); err != nil && !stderrors.Is(err, http.ErrNotMultipart) {
		fail(c, err)
		return
	}

	req := signupRequest{
		FirstName:   strings.TrimSpace(c.PostForm("firstName")),
		LastName:    strings.TrimSpace(c.PostForm("lastName")),
		Email:       strings.TrimSpace(c.PostForm("email")),
		Password:    c.PostForm("password"),
		Phone:       strings.TrimSpace(c.PostForm("phone")),
		Role:        c.PostForm("role"),
		CompanyName: strings.TrimSpace(c.PostForm("companyName")),
		ResumeURL:   strings.TrimSpace(c.PostForm("resumeUrl")),
	}

	res, err := validation.Validate(validation.SchemaSignup, req)
	if err != nil {
		fail(c, err)
		return
	}
	if !res.Valid {
		fail(c, errors.NewValidationError("Invalid signup data", res.GetErrorMessages()))
		return
	}

	ctx := c.Request.Context()
	user := &models.User{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
	}

	switch models.Role(req.Role) {
	case models.RoleEmployer:
		if req.CompanyName == "" {
			fail(c, errors.NewValidationError("Invalid signup data", []string{"companyName: required for employers"}))
			return
		}
		if user.PasswordHash, err = s.deps.Passwords.Hash(req.Password); err != nil {
			fail(c, err)
			return
		}
		err = s.deps.Users.CreateEmployer(ctx, user, &models.Company{Name: req.CompanyName})

	case models.RoleJobSeeker:
		resumeURL, uploaded, uerr := s.uploadResume(c)
		if uerr != nil {
			fail(c, uerr)
			return
		}
		if !uploaded {
			resumeURL = req.ResumeURL
		}
		if resumeURL == "" {
			fail(c, errors.NewValidationError("Invalid signup data", []string{"resume: required for job seekers"}))
			return
		}
		if user.PasswordHash, err = s.deps.Passwords.Hash(req.Password); err != nil {
			fail(c, err)
			return
		}
		err = s.deps.Users.CreateSeeker(ctx, user, resumeURL)
	}

	if stderrors.Is(err, repository.ErrConflict) {
		fail(c, errors.NewConflictError("An account with this email already exists."))
		return
	}
	if err != nil {
		fail(c, err)
		return
	}

	s.issueSession(c, http.StatusCreated, user)
}

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := bindJSON(c, validation.SchemaLogin, &req); err != nil {
		fail(c, err)
		return
	}

	user, err := s.deps.Users.FindByEmail(c.Request.Context(), req.Email)
	if err != nil && !stderrors.Is(err, repository.ErrNotFound) {
		fail(c, err)
		return
	}
	if user == nil || s.deps.Passwords.Check(user.PasswordHash, req.Password) != nil {
		fail(c, errors.NewUnauthenticatedError("Incorrect email or password"))
		return
	}

	s.issueSession(c, http.StatusOK, user)
}

// logout revokes the presented token until it would have expired anyway.
func (s *Server) logout(c *gin.Context) {
	claims := currentClaims(c)
	if s.deps.Revocations != nil && claims.ExpiresAt != nil {
		if err := s.deps.Revocations.Revoke(c.Request.Context(), claims.ID, claims.ExpiresAt.Time); err != nil {
			fail(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Logged out successfully"})
}

func (s *Server) issueSession(c *gin.Context, status int, user *models.User) {
	token, _, err := s.deps.Tokens.Issue(user.ID, user.Role)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, status, sessionResponse{Token: token, User: user})
}

func allowedResumeType(contentType string) bool {
	switch contentType {
	case "application/pdf", "application/msword", "text/plain",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document":
		return true
	}
	return false
}

// uploadResume stores the "resume" form file, if one was sent.
func (s *Server) uploadResume(c *gin.Context) (string, bool, error) {
	fh, err := c.FormFile("resume")
	if stderrors.Is(err, http.ErrMissingFile) || stderrors.Is(err, http.ErrNotMultipart) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	if s.deps.Resumes == nil {
		return "", false, errors.NewPreconditionFailedError("Resume uploads are not enabled")
	}

	contentType := fh.Header.Get("Content-Type")
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = contentType[:i]
	}
	if !allowedResumeType(contentType) {
		return "", false, errors.NewValidationError("Invalid resume upload", []string{"resume: must be a PDF, Word or text document"})
	}

	f, err := fh.Open()
	if err != nil {
		return "", false, err
	}
	defer f.Close()

	url, err := s.deps.Resumes.Upload(c.Request.Context(), fh.Filename, contentType, f)
	if err != nil {
		return "", false, errors.NewExternalServiceError("s3", err)
	}
	return url, true, nil
}
