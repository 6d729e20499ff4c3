// internal/workers/application/apply-to-job/models.go
package applytojob

import "job-portal/internal/models"

type Input struct {
	ApplicantID string `json:"applicantId"`
	JobID       string `json:"jobId"`
}

type Output struct {
	Message string      `json:"message"`
	Job     *models.Job `json:"job"`
}
