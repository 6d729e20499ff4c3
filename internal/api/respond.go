// internal/api/respond.go
package api

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"job-portal/internal/common/auth"
	"job-portal/internal/common/errors"
	"job-portal/internal/common/validation"
	"job-portal/internal/repository"
	analyzeresume "job-portal/internal/workers/ai/analyze-resume"
	applytojob "job-portal/internal/workers/application/apply-to-job"
)

func respond(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{"status": "success", "data": data})
}

func respondList(c *gin.Context, results int, data gin.H) {
	c.JSON(http.StatusOK, gin.H{"status": "success", "results": results, "data": data})
}

// fail attaches err for errors.Handler and stops the chain.
func fail(c *gin.Context, err error) {
	_ = c.Error(mapError(err))
	c.Abort()
}

// mapError turns domain sentinels into the API error taxonomy.
func mapError(err error) error {
	var stdErr *errors.StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}

	var maxBytes *http.MaxBytesError
	switch {
	case stderrors.As(err, &maxBytes):
		return errors.NewPayloadTooLargeError("Uploaded data is too large")
	case stderrors.Is(err, applytojob.ErrResumeRequired):
		return errors.NewPreconditionFailedError("Please upload a resume to your profile before applying.")
	case stderrors.Is(err, applytojob.ErrAlreadyApplied):
		return errors.NewConflictError("You have already applied for this job.")
	case stderrors.Is(err, applytojob.ErrJobNotFound):
		return errors.NewNotFoundError("Job not found or is no longer active.")
	case stderrors.Is(err, analyzeresume.ErrNoResume):
		return errors.NewPreconditionFailedError("Please provide resume text or upload a resume to your profile.")
	case stderrors.Is(err, analyzeresume.ErrResumeTooLong):
		return errors.NewValidationError("Resume text is too long", []string{err.Error()})
	case stderrors.Is(err, analyzeresume.ErrAnalysisFailed):
		return errors.NewExternalServiceError("gemini", err)
	case stderrors.Is(err, auth.ErrInvalidToken), stderrors.Is(err, auth.ErrTokenRevoked):
		return errors.NewUnauthenticatedError("Invalid or expired token. Please log in again.")
	case stderrors.Is(err, repository.ErrNotFound):
		return errors.NewNotFoundError("Resource not found")
	case stderrors.Is(err, repository.ErrConflict):
		return errors.NewConflictError("Resource already exists")
	case stderrors.Is(err, context.DeadlineExceeded):
		return errors.NewTimeoutError("api", err)
	}
	return errors.NewInternalError(err)
}

// bindJSON validates the request body against a schema before decoding it into dst.
func bindJSON(c *gin.Context, schema string, dst interface{}) error {
	raw, err := c.GetRawData()
	if err != nil {
		return err
	}

	res, err := validation.ValidateJSON(schema, raw)
	if err != nil {
		return err
	}
	if !res.Valid {
		return errors.NewValidationError("Invalid request body", res.GetErrorMessages())
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		return errors.NewValidationError("Invalid request body", []string{err.Error()})
	}
	return nil
}

// pathID reads a uuid path parameter.
func pathID(c *gin.Context, name string) (string, error) {
	id := c.Param(name)
	if !validation.ValidateID(id) {
		return "", errors.NewValidationError("Invalid id", []string{name + ": must be a valid id"})
	}
	return id, nil
}
