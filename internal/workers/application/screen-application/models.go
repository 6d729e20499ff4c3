// internal/workers/application/screen-application/models.go
package screenapplication

import "job-portal/internal/models"

type Input struct {
	ApplicationID string `json:"applicationId"`
	JobID         string `json:"jobId"`
	ApplicantID   string `json:"applicantId"`
}

// Output is the run's decision. StatusWritten is false when the application
// had already left Screening and nothing was changed.
type Output struct {
	ApplicationID     string                   `json:"applicationId"`
	ApplicationStatus models.ApplicationStatus `json:"applicationStatus"`
	Score             float64                  `json:"score"`
	Reason            string                   `json:"reason"`
	StatusWritten     bool                     `json:"statusWritten"`
}
