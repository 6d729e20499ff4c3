// internal/workers/application/screen-application/dispatcher.go
package screenapplication

import (
	"context"
	"errors"
	"fmt"
	"time"

	"job-portal/internal/common/logger"
	"job-portal/internal/common/metrics"
	"job-portal/internal/models"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

const TaskType = "screen-application"

// ScreeningThreshold is the minimum score, on the 0-100 scale, for an application to pass screening.
const ScreeningThreshold = 85.0

const (
	ReasonScore         = "score"
	ReasonInputMissing  = "input_missing"
	ReasonScoringFailed = "scoring_failed"
	ReasonPanic         = "panic"
)

var (
	ErrStatusWriteFailed = errors.New("STATUS_WRITE_FAILED")
	ErrRunCancelled      = errors.New("RUN_CANCELLED")
)

type Store interface {
	GetJobDescription(ctx context.Context, jobID string) (string, error)
	GetResumeReference(ctx context.Context, applicantID string) (string, error)
	SetStatus(ctx context.Context, applicationID string, status models.ApplicationStatus) (bool, error)
}

type Scorer interface {
	Score(ctx context.Context, resumeRef, jobDescription string) (float64, error)
}

type Notifier interface {
	NotifyDecision(ctx context.Context, applicationID string, status models.ApplicationStatus) error
}

type Recorder interface {
	RecordScreening(ctx context.Context, status string, duration time.Duration)
}

// Dispatcher turns one Screening application into a terminal decision.
type Dispatcher struct {
	config   *Config
	store    Store
	scorer   Scorer
	notifier Notifier
	recorder Recorder
	logger   logger.Logger
}

// NewDispatcher builds a dispatcher. notifier and recorder may be nil.
func NewDispatcher(config *Config, store Store, scorer Scorer, notifier Notifier, recorder Recorder, log logger.Logger) *Dispatcher {
	return &Dispatcher{
		config:   config,
		store:    store,
		scorer:   scorer,
		notifier: notifier,
		recorder: recorder,
		logger:   log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

// Run screens the application and writes Applied or Rejected. Scoring
// problems never surface as errors; they reject the application. An error
// is returned only when the decision could not be persisted, leaving the
// work item to be retried.
func (d *Dispatcher) Run(ctx context.Context, input *Input) (*Output, error) {
	ctx, span := otel.Tracer("job-portal/screening").Start(ctx, "screening.run")
	defer span.End()
	span.SetAttributes(
		attribute.String("application.id", input.ApplicationID),
		attribute.String("job.id", input.JobID),
	)

	start := time.Now()
	log := d.logger.WithFields(map[string]interface{}{
		"applicationId": input.ApplicationID,
		"jobId":         input.JobID,
	})

	runCtx, cancel := context.WithTimeout(ctx, d.config.RunTimeout)
	defer cancel()

	status, score, reason := d.decide(runCtx, input, log)

	// A parent cancellation (shutdown) is not a verdict on the applicant.
	if ctx.Err() != nil {
		return nil, fmt.Errorf("%w: %v", ErrRunCancelled, ctx.Err())
	}

	writeCtx, cancelWrite := context.WithTimeout(context.WithoutCancel(ctx), d.config.WriteTimeout)
	defer cancelWrite()

	written, err := d.store.SetStatus(writeCtx, input.ApplicationID, status)
	if err != nil {
		span.RecordError(err)
		log.Error("Failed to write screening decision", map[string]interface{}{
			"status": status,
			"error":  err,
		})
		return nil, fmt.Errorf("%w: application %s: %v", ErrStatusWriteFailed, input.ApplicationID, err)
	}

	out := &Output{
		ApplicationID:     input.ApplicationID,
		ApplicationStatus: status,
		Score:             score,
		Reason:            reason,
		StatusWritten:     written,
	}
	span.SetAttributes(attribute.String("decision", string(status)), attribute.Bool("written", written))

	if !written {
		metrics.ScreeningSkipped.Inc()
		log.Info("Application already decided, nothing written", nil)
		return out, nil
	}

	metrics.ScreeningDecisions.WithLabelValues(string(status), reason).Inc()
	if d.recorder != nil {
		d.recorder.RecordScreening(ctx, string(status), time.Since(start))
	}
	log.Info("Screening decision written", map[string]interface{}{
		"status": status,
		"score":  score,
		"reason": reason,
	})

	if d.config.NotifyInline && d.notifier != nil {
		if err := d.notifier.NotifyDecision(writeCtx, input.ApplicationID, status); err != nil {
			log.Warn("Decision notification failed", map[string]interface{}{"error": err})
		}
	}

	return out, nil
}

func (d *Dispatcher) decide(ctx context.Context, input *Input, log logger.Logger) (status models.ApplicationStatus, score float64, reason string) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("Screening run panicked", map[string]interface{}{"panic": fmt.Sprint(r)})
			status, score, reason = models.StatusRejected, 0, ReasonPanic
		}
	}()

	jobDescription, err := d.store.GetJobDescription(ctx, input.JobID)
	if err != nil {
		log.Warn("Job description unavailable", map[string]interface{}{"error": err})
		return models.StatusRejected, 0, ReasonInputMissing
	}

	resumeRef, err := d.store.GetResumeReference(ctx, input.ApplicantID)
	if err != nil {
		log.Warn("Resume reference unavailable", map[string]interface{}{"error": err})
		return models.StatusRejected, 0, ReasonInputMissing
	}

	score, err = d.scorer.Score(ctx, resumeRef, jobDescription)
	if err != nil {
		log.Warn("Scoring failed", map[string]interface{}{"error": err})
		return models.StatusRejected, 0, ReasonScoringFailed
	}

	if score >= ScreeningThreshold {
		return models.StatusApplied, score, ReasonScore
	}
	return models.StatusRejected, score, ReasonScore
}
