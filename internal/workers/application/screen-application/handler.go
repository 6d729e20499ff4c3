// internal/workers/application/screen-application/handler.go
package screenapplication

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"job-portal/internal/common/errors"
	"job-portal/internal/common/logger"
	"job-portal/internal/common/metrics"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

// Handler runs the dispatcher as a Zeebe job worker.
type Handler struct {
	dispatcher   *Dispatcher
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(dispatcher *Dispatcher, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		dispatcher:   dispatcher,
		errorHandler: errors.NewErrorHandler(log),
		logger:       log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) error {
	start := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer func() {
		metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()
		metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
	}()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx := context.Background()

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		stdErr := errors.NewValidationError("invalid job variables", []string{err.Error()})
		h.fail(ctx, client, job, stdErr)
		return stdErr
	}
	if input.ApplicationID == "" || input.JobID == "" || input.ApplicantID == "" {
		stdErr := errors.NewValidationError("missing job variables", []string{"applicationId, jobId and applicantId are required"})
		h.fail(ctx, client, job, stdErr)
		return stdErr
	}

	output, err := h.dispatcher.Run(ctx, &input)
	if err != nil {
		stdErr := errors.NewStatusWriteFailedError(input.ApplicationID, err)
		h.fail(ctx, client, job, stdErr)
		return stdErr
	}

	return h.completeJob(ctx, client, job, output)
}

func (h *Handler) fail(ctx context.Context, client worker.JobClient, job entities.Job, stdErr *errors.StandardError) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
	h.errorHandler.HandleJobError(ctx, client, job, stdErr)
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) error {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		return fmt.Errorf("create complete job command: %w", err)
	}
	if _, err := cmd.Send(ctx); err != nil {
		return fmt.Errorf("send complete job command: %w", err)
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	h.logger.Info("job completed successfully", map[string]interface{}{
		"jobKey":            job.Key,
		"applicationStatus": output.ApplicationStatus,
	})
	return nil
}
