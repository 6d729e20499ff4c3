// internal/api/applications.go
package api

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"job-portal/internal/common/errors"
	"job-portal/internal/common/validation"
	"job-portal/internal/models"
	"job-portal/internal/repository"
)

func (s *Server) myApplications(c *gin.Context) {
	apps, err := s.deps.Applications.ListForApplicant(c.Request.Context(), currentClaims(c).UserID)
	if err != nil {
		fail(c, err)
		return
	}
	respondList(c, len(apps), gin.H{"applications": apps})
}

func (s *Server) employerJobs(c *gin.Context) {
	jobs, err := s.deps.Jobs.ListByEmployer(c.Request.Context(), currentClaims(c).UserID)
	if err != nil {
		fail(c, err)
		return
	}
	respondList(c, len(jobs), gin.H{"jobs": jobs})
}

func (s *Server) jobApplicants(c *gin.Context) {
	jobID, err := s.ownedJob(c, "jobId")
	if err != nil {
		fail(c, err)
		return
	}

	applicants, err := s.deps.Applications.ListApplicants(c.Request.Context(), jobID)
	if err != nil {
		fail(c, err)
		return
	}
	respondList(c, len(applicants), gin.H{"applicants": applicants})
}

type statusUpdateRequest struct {
	Status models.ApplicationStatus `json:"status"`
}

// updateApplicationStatus is the employer review step. Screening decisions
// are owned by the dispatcher, so applications still in Screening are refused.
func (s *Server) updateApplicationStatus(c *gin.Context) {
	id, err := pathID(c, "applicationId")
	if err != nil {
		fail(c, err)
		return
	}

	var req statusUpdateRequest
	if err := bindJSON(c, validation.SchemaApplicationStatus, &req); err != nil {
		fail(c, err)
		return
	}
	if !req.Status.IsReviewStatus() {
		fail(c, errors.NewValidationError("Invalid status", []string{"status: not a review status"}))
		return
	}

	ctx := c.Request.Context()
	owner, _, err := s.deps.Applications.ReviewTarget(ctx, id)
	if err != nil {
		fail(c, err)
		return
	}
	if owner != currentClaims(c).UserID {
		fail(c, errors.NewForbiddenError("You can only review applications for your own jobs"))
		return
	}

	app, err := s.deps.Applications.UpdateReviewStatus(ctx, id, req.Status)
	if stderrors.Is(err, repository.ErrConflict) {
		fail(c, errors.NewConflictError("This application is still being screened."))
		return
	}
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"application": app})
}
