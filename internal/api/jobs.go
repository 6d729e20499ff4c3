// internal/api/jobs.go
package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"job-portal/internal/common/errors"
	"job-portal/internal/common/validation"
	"job-portal/internal/models"
	applytojob "job-portal/internal/workers/application/apply-to-job"
	searchjobs "job-portal/internal/workers/data-access/search-jobs"
)

func (s *Server) listJobs(c *gin.Context) {
	input := &searchjobs.Input{
		Query:    c.Query("q"),
		Location: c.Query("location"),
		Type:     c.Query("type"),
	}

	var bad []string
	for name, dst := range map[string]*int{"minSalary": &input.MinSalary, "page": &input.Page, "limit": &input.Limit} {
		raw := c.Query(name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			bad = append(bad, name+": must be an integer")
			continue
		}
		*dst = n
	}
	if len(bad) > 0 {
		fail(c, errors.NewValidationError("Invalid query parameters", bad))
		return
	}

	out, err := s.deps.Search.Execute(c.Request.Context(), input)
	if err != nil {
		fail(c, err)
		return
	}
	respondList(c, len(out.Jobs), gin.H{"jobs": out.Jobs, "pagination": out.Pagination})
}

func (s *Server) getJob(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		fail(c, err)
		return
	}

	job, err := s.deps.Jobs.GetByID(c.Request.Context(), id, viewerID(c))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"job": job})
}

func (s *Server) createJob(c *gin.Context) {
	var in models.JobInput
	if err := bindJSON(c, validation.SchemaJobCreate, &in); err != nil {
		fail(c, err)
		return
	}

	ctx := c.Request.Context()
	company, err := s.deps.Users.CompanyByUser(ctx, currentClaims(c).UserID)
	if err != nil {
		fail(c, err)
		return
	}

	id, err := s.deps.Jobs.Create(ctx, company.ID, in)
	if err != nil {
		fail(c, err)
		return
	}

	job, err := s.deps.Jobs.GetByID(ctx, id, "")
	if err != nil {
		fail(c, err)
		return
	}
	s.syncIndex(ctx, job)
	respond(c, http.StatusCreated, gin.H{"job": job})
}

// updateJob serves PUT /employer/jobs/:jobId and PATCH /jobs/:id.
func (s *Server) updateJob(c *gin.Context) {
	id, err := s.ownedJob(c, jobParam(c))
	if err != nil {
		fail(c, err)
		return
	}

	var in models.JobInput
	if err := bindJSON(c, validation.SchemaJobUpdate, &in); err != nil {
		fail(c, err)
		return
	}

	ctx := c.Request.Context()
	if err := s.deps.Jobs.Update(ctx, id, in); err != nil {
		fail(c, err)
		return
	}

	job, err := s.deps.Jobs.GetByID(ctx, id, "")
	if err != nil {
		fail(c, err)
		return
	}
	s.syncIndex(ctx, job)
	respond(c, http.StatusOK, gin.H{"job": job})
}

func (s *Server) deleteJob(c *gin.Context) {
	id, err := s.ownedJob(c, jobParam(c))
	if err != nil {
		fail(c, err)
		return
	}

	ctx := c.Request.Context()
	if err := s.deps.Jobs.Delete(ctx, id); err != nil {
		fail(c, err)
		return
	}
	if err := s.deps.Search.RemoveJob(ctx, id); err != nil {
		s.logger.Warn("remove job from search index failed", map[string]interface{}{"jobId": id, "error": err})
	}
	c.Status(http.StatusNoContent)
}

// applyToJob records the application and returns while screening is still pending.
func (s *Server) applyToJob(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		fail(c, err)
		return
	}

	out, err := s.deps.Intake.Execute(c.Request.Context(), &applytojob.Input{
		ApplicantID: currentClaims(c).UserID,
		JobID:       id,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"status":  "success",
		"message": out.Message,
		"data":    gin.H{"job": out.Job},
	})
}

// jobParam names the job id parameter of the matched route.
func jobParam(c *gin.Context) string {
	if c.Param("jobId") != "" {
		return "jobId"
	}
	return "id"
}

// ownedJob reads a job id parameter and checks the caller owns the posting.
func (s *Server) ownedJob(c *gin.Context, param string) (string, error) {
	id, err := pathID(c, param)
	if err != nil {
		return "", err
	}

	owner, err := s.deps.Jobs.OwnerUserID(c.Request.Context(), id)
	if err != nil {
		return "", err
	}
	if owner != currentClaims(c).UserID {
		return "", errors.NewForbiddenError("You can only manage your own job postings")
	}
	return id, nil
}

func (s *Server) syncIndex(ctx context.Context, job *models.Job) {
	if err := s.deps.Search.IndexJob(ctx, job); err != nil {
		s.logger.Warn("index job failed", map[string]interface{}{"jobId": job.ID, "error": err})
	}
}
