// internal/api/ai.go
package api

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"job-portal/internal/common/errors"
	"job-portal/internal/repository"
	analyzeresume "job-portal/internal/workers/ai/analyze-resume"
)

type analyzeRequest struct {
	ResumeText string `json:"resumeText"`
}

// analyzeResume reviews the posted text, or the caller's stored resume when
// no text is sent.
func (s *Server) analyzeResume(c *gin.Context) {
	var req analyzeRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, errors.NewValidationError("Invalid request body", []string{err.Error()}))
			return
		}
	}

	ctx := c.Request.Context()
	claims := currentClaims(c)
	input := &analyzeresume.Input{ResumeText: req.ResumeText}

	if input.ResumeText == "" {
		profile, err := s.deps.Users.SeekerProfile(ctx, claims.UserID)
		if err != nil && !stderrors.Is(err, repository.ErrNotFound) {
			fail(c, err)
			return
		}
		if profile != nil {
			input.ResumeRef = profile.ResumeURL
		}
	}

	out, err := s.deps.Analyzer.Execute(ctx, input)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"analysis": out})
}
