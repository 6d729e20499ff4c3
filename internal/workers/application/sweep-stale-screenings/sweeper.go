// internal/workers/application/sweep-stale-screenings/sweeper.go
package sweepstalescreenings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"job-portal/internal/common/logger"
	"job-portal/internal/common/metrics"
	"job-portal/internal/models"
)

const TaskType = "sweep-stale-screenings"

var ErrSweepFailed = errors.New("SWEEP_FAILED")

type Store interface {
	FindStaleScreenings(ctx context.Context, olderThan time.Duration, limit int) ([]models.StaleScreening, error)
	Requeue(ctx context.Context, applicationID string) error
	SetStatus(ctx context.Context, applicationID string, status models.ApplicationStatus) (bool, error)
	MarkDoneForApplication(ctx context.Context, applicationID string) error
}

type Waker interface {
	Wake()
}

type Notifier interface {
	NotifyDecision(ctx context.Context, applicationID string, status models.ApplicationStatus) error
}

// Sweeper recovers applications whose screening run was lost. Each stale
// application is either handed back to the dispatch backend or, once it
// has used up its attempts, rejected.
type Sweeper struct {
	config   *Config
	store    Store
	waker    Waker
	notifier Notifier
	logger   logger.Logger
}

// NewSweeper builds a sweeper. waker and notifier may be nil.
func NewSweeper(config *Config, store Store, waker Waker, notifier Notifier, log logger.Logger) *Sweeper {
	return &Sweeper{
		config:   config,
		store:    store,
		waker:    waker,
		notifier: notifier,
		logger:   log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

// Run sweeps once immediately and then on every interval until ctx is done.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		if _, err := s.Execute(ctx); err != nil && ctx.Err() == nil {
			s.logger.Error("sweep failed", map[string]interface{}{"error": err})
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *Sweeper) Execute(ctx context.Context) (*Output, error) {
	start := time.Now()
	defer func() {
		metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
	}()

	output, err := s.execute(ctx)
	if err != nil {
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, "SWEEP_FAILED").Inc()
		return nil, err
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	return output, nil
}

func (s *Sweeper) execute(ctx context.Context) (*Output, error) {
	stale, err := s.store.FindStaleScreenings(ctx, s.config.StaleAfter, s.config.BatchSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSweepFailed, err)
	}

	output := &Output{Found: len(stale)}
	if len(stale) == 0 {
		return output, nil
	}

	for _, st := range stale {
		if ctx.Err() != nil {
			break
		}

		log := s.logger.WithFields(map[string]interface{}{
			"applicationId": st.ApplicationID,
			"attempts":      st.Attempts,
			"state":         st.State,
		})

		if st.Attempts < s.config.MaxAttempts {
			if err := s.store.Requeue(ctx, st.ApplicationID); err != nil {
				output.Failed++
				log.Warn("requeue failed", map[string]interface{}{"error": err})
				continue
			}
			output.Requeued++
			metrics.SweeperActions.WithLabelValues("requeued").Inc()
			log.Info("stale screening requeued", nil)
			continue
		}

		if err := s.reject(ctx, st.ApplicationID); err != nil {
			output.Failed++
			log.Warn("force reject failed", map[string]interface{}{"error": err})
			continue
		}
		output.Rejected++
		metrics.SweeperActions.WithLabelValues("rejected").Inc()
		log.Info("stale screening rejected after max attempts", nil)
	}

	if output.Requeued > 0 && s.waker != nil {
		s.waker.Wake()
	}

	s.logger.Info("sweep completed", map[string]interface{}{
		"found":    output.Found,
		"requeued": output.Requeued,
		"rejected": output.Rejected,
		"failed":   output.Failed,
	})
	return output, nil
}

func (s *Sweeper) reject(ctx context.Context, applicationID string) error {
	written, err := s.store.SetStatus(ctx, applicationID, models.StatusRejected)
	if err != nil {
		return err
	}
	if err := s.store.MarkDoneForApplication(ctx, applicationID); err != nil {
		return err
	}
	if written && s.notifier != nil {
		if err := s.notifier.NotifyDecision(ctx, applicationID, models.StatusRejected); err != nil {
			s.logger.Warn("decision notification failed", map[string]interface{}{
				"applicationId": applicationID,
				"error":         err,
			})
		}
	}
	return nil
}
