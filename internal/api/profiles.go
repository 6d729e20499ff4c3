// internal/api/profiles.go
package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"job-portal/internal/common/errors"
	"job-portal/internal/common/validation"
	"job-portal/internal/models"
)

// profileUpdate holds both role's editable fields; nil fields keep their stored value.
type profileUpdate struct {
	Headline    *string  `json:"headline,omitempty"`
	Summary     *string  `json:"summary,omitempty"`
	Skills      []string `json:"skills,omitempty"`
	ResumeURL   string   `json:"resumeUrl,omitempty"`
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	Website     *string  `json:"website,omitempty"`
}

func (s *Server) getProfile(c *gin.Context) {
	profile, err := s.deps.Users.Profile(c.Request.Context(), currentClaims(c).UserID)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, profile)
}

// updateProfile takes JSON, or a multipart form when a new resume is attached.
func (s *Server) updateProfile(c *gin.Context) {
	upd, err := s.readProfileUpdate(c)
	if err != nil {
		fail(c, err)
		return
	}

	res, err := validation.Validate(validation.SchemaProfileUpdate, upd)
	if err != nil {
		fail(c, err)
		return
	}
	if !res.Valid {
		fail(c, errors.NewValidationError("Invalid profile data", res.GetErrorMessages()))
		return
	}

	ctx := c.Request.Context()
	claims := currentClaims(c)

	switch claims.Role {
	case models.RoleJobSeeker:
		current, err := s.deps.Users.SeekerProfile(ctx, claims.UserID)
		if err != nil {
			fail(c, err)
			return
		}
		if upd.Headline != nil {
			current.Headline = *upd.Headline
		}
		if upd.Summary != nil {
			current.Summary = *upd.Summary
		}
		if upd.Skills != nil {
			current.Skills = upd.Skills
		}
		// empty keeps the stored resume
		current.ResumeURL = upd.ResumeURL
		err = s.deps.Users.UpdateSeekerProfile(ctx, *current)
		if err != nil {
			fail(c, err)
			return
		}

	case models.RoleEmployer:
		company, err := s.deps.Users.CompanyByUser(ctx, claims.UserID)
		if err != nil {
			fail(c, err)
			return
		}
		if upd.Name != nil {
			company.Name = *upd.Name
		}
		if upd.Description != nil {
			company.Description = *upd.Description
		}
		if upd.Website != nil {
			company.Website = *upd.Website
		}
		if err := s.deps.Users.UpdateCompany(ctx, *company); err != nil {
			fail(c, err)
			return
		}
	}

	s.getProfile(c)
}

func (s *Server) readProfileUpdate(c *gin.Context) (*profileUpdate, error) {
	upd := &profileUpdate{}

	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		raw, err := c.GetRawData()
		if err != nil {
			return nil, err
		}
		if len(raw) == 0 {
			return upd, nil
		}
		if err := json.Unmarshal(raw, upd); err != nil {
			return nil, errors.NewValidationError("Invalid profile data", []string{err.Error()})
		}
		return upd, nil
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.config.MaxUploadBytes)
	if err := c.Request.ParseMultipartForm(s.config.MaxUploadBytes); err != nil {
		return nil, err
	}

	for field, dst := range map[string]**string{
		"headline":    &upd.Headline,
		"summary":     &upd.Summary,
		"name":        &upd.Name,
		"description": &upd.Description,
		"website":     &upd.Website,
	} {
		if v, ok := c.GetPostForm(field); ok {
			v = strings.TrimSpace(v)
			*dst = &v
		}
	}
	if raw, ok := c.GetPostForm("skills"); ok {
		upd.Skills = splitSkills(raw)
	}

	url, uploaded, err := s.uploadResume(c)
	if err != nil {
		return nil, err
	}
	if uploaded {
		upd.ResumeURL = url
	}
	return upd, nil
}

// splitSkills parses a comma separated skill list.
func splitSkills(raw string) []string {
	skills := []string{}
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			skills = append(skills, part)
		}
	}
	return skills
}
