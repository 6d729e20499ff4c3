// internal/workers/application/apply-to-job/intake.go
package applytojob

import (
	"context"
	"errors"
	"fmt"

	"job-portal/internal/common/logger"
	"job-portal/internal/common/metrics"
	"job-portal/internal/models"
	"job-portal/internal/repository"
)

const TaskType = "apply-to-job"

var (
	ErrResumeRequired = errors.New("RESUME_REQUIRED")
	ErrAlreadyApplied = errors.New("ALREADY_APPLIED")
	ErrJobNotFound    = errors.New("JOB_NOT_FOUND")
	ErrIntakeFailed   = errors.New("DATABASE_INSERT_FAILED")
)

type Store interface {
	GetResumeReference(ctx context.Context, applicantID string) (string, error)
	HasApplied(ctx context.Context, applicantID, jobID string) (bool, error)
	Create(ctx context.Context, applicantID, jobID string, status models.ApplicationStatus) (string, error)
}

type JobReader interface {
	GetByID(ctx context.Context, id, viewerID string) (*models.Job, error)
}

// Waker is told that a new work item is ready. Wake must not block.
type Waker interface {
	Wake()
}

// Intake accepts applications. It records the application in Screening
// together with its work item and returns without waiting for screening.
type Intake struct {
	config *Config
	store  Store
	jobs   JobReader
	waker  Waker
	logger logger.Logger
}

// NewIntake builds the intake. waker may be nil.
func NewIntake(config *Config, store Store, jobs JobReader, waker Waker, log logger.Logger) *Intake {
	return &Intake{
		config: config,
		store:  store,
		jobs:   jobs,
		waker:  waker,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (i *Intake) Execute(ctx context.Context, input *Input) (*Output, error) {
	ctx, cancel := context.WithTimeout(ctx, i.config.Timeout)
	defer cancel()
	return i.execute(ctx, input)
}

func (i *Intake) execute(ctx context.Context, input *Input) (*Output, error) {
	log := i.logger.WithFields(map[string]interface{}{
		"applicantId": input.ApplicantID,
		"jobId":       input.JobID,
	})

	if _, err := i.store.GetResumeReference(ctx, input.ApplicantID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: applicant %s has no resume on file", ErrResumeRequired, input.ApplicantID)
		}
		return nil, fmt.Errorf("%w: resume lookup: %v", ErrIntakeFailed, err)
	}

	applied, err := i.store.HasApplied(ctx, input.ApplicantID, input.JobID)
	if err != nil {
		return nil, fmt.Errorf("%w: duplicate check: %v", ErrIntakeFailed, err)
	}
	if applied {
		return nil, fmt.Errorf("%w: applicant %s already applied to job %s", ErrAlreadyApplied, input.ApplicantID, input.JobID)
	}

	job, err := i.jobs.GetByID(ctx, input.JobID, "")
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrJobNotFound, input.JobID)
		}
		return nil, fmt.Errorf("%w: job lookup: %v", ErrIntakeFailed, err)
	}
	if !job.IsActive {
		return nil, fmt.Errorf("%w: job %s is closed", ErrJobNotFound, input.JobID)
	}

	applicationID, err := i.store.Create(ctx, input.ApplicantID, input.JobID, models.StatusScreening)
	if err != nil {
		// lost a race with a concurrent apply for the same pair
		if errors.Is(err, repository.ErrConflict) {
			return nil, fmt.Errorf("%w: applicant %s already applied to job %s", ErrAlreadyApplied, input.ApplicantID, input.JobID)
		}
		return nil, fmt.Errorf("%w: %v", ErrIntakeFailed, err)
	}

	if i.waker != nil {
		i.waker.Wake()
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	log.Info("application accepted for screening", map[string]interface{}{
		"applicationId": applicationID,
	})

	job.UserHasApplied = true
	job.ApplicationID = applicationID
	job.ApplicationStatus = models.StatusScreening

	return &Output{
		Message: "Application submitted successfully!",
		Job:     job,
	}, nil
}
