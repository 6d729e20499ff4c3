// internal/workers/application/send-notification/handler.go
package sendnotification

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

// Handler runs the notifier as the process's send-notification task.
type Handler struct {
	notifier     *Notifier
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(notifier *Notifier, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		notifier:     notifier,
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
		return h.fail(ctx, client, job, errors.NewValidationError("invalid job variables", []string{err.Error()}))
	}

	// a run that found the application already decided has nothing to announce
	if input.StatusWritten != nil && !*input.StatusWritten {
		return h.completeJob(ctx, client, job, &Output{Status: StatusDisabled, SentAt: time.Now().UTC().Format(time.RFC3339)})
	}

	output, err := h.notifier.Execute(ctx, &input)
	if err != nil {
		return h.fail(ctx, client, job, errors.NewNotificationSendFailedError(string(input.ApplicationStatus), err))
	}

	// delivery failures are logged by the notifier and never block the process
	return h.completeJob(ctx, client, job, output)
}

func (h *Handler) fail(ctx context.Context, client worker.JobClient, job entities.Job, stdErr *errors.StandardError) error {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
	h.errorHandler.HandleJobError(ctx, client, job, stdErr)
	return stdErr
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) error {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(map[string]interface{}{"notification": output})
	if err != nil {
		return fmt.Errorf("create complete job command: %w", err)
	}
	if _, err := cmd.Send(ctx); err != nil {
		return fmt.Errorf("send complete job command: %w", err)
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	return nil
}
