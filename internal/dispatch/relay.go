// internal/dispatch/relay.go
package dispatch

import (
	"context"
	"sync"
	"time"

	"job-portal/internal/common/logger"
	"job-portal/internal/common/metrics"
	"job-portal/internal/models"
)

const backendZeebe = "zeebe"

// InstanceCreator starts a process instance in the workflow engine.
type InstanceCreator interface {
	CreateInstance(ctx context.Context, processID string, variables interface{}) (int64, error)
}

// Relay hands outbox work items to Zeebe as process instances. The
// screen-application job worker then runs the dispatcher.
type Relay struct {
	source       WorkSource
	creator      InstanceCreator
	processID    string
	batchSize    int
	pollInterval time.Duration
	logger       logger.Logger

	wake     waker
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewRelay(source WorkSource, creator InstanceCreator, processID string, batchSize int, pollInterval time.Duration, log logger.Logger) *Relay {
	if batchSize < 1 {
		batchSize = 10
	}
	if pollInterval <= 0 {
		pollInterval = 2 * time.Second
	}
	return &Relay{
		source:       source,
		creator:      creator,
		processID:    processID,
		batchSize:    batchSize,
		pollInterval: pollInterval,
		logger:       log.WithFields(map[string]interface{}{"component": "screening-relay", "processId": processID}),
		wake:         newWaker(),
		stopCh:       make(chan struct{}),
	}
}

func (r *Relay) Start(_ context.Context) error {
	r.wg.Add(1)
	go r.loop()
	r.logger.Info("screening relay started", nil)
	return nil
}

func (r *Relay) Wake() {
	r.wake.wake()
}

func (r *Relay) Stop(ctx context.Context) error {
	r.stopOnce.Do(func() { close(r.stopCh) })

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Relay) loop() {
	defer r.wg.Done()

	for {
		select {
		case <-r.stopCh:
			return
		default:
		}

		n, err := r.relayBatch(context.Background())
		if err != nil {
			r.logger.Error("claim failed", map[string]interface{}{"error": err})
		}
		// a full batch likely means more is waiting
		if err == nil && n == r.batchSize {
			continue
		}

		timer := time.NewTimer(r.pollInterval)
		select {
		case <-timer.C:
		case <-r.wake:
		case <-r.stopCh:
		}
		timer.Stop()
	}
}

// relayBatch claims up to one batch and starts an instance per item.
func (r *Relay) relayBatch(ctx context.Context) (int, error) {
	items, err := r.source.ClaimPending(ctx, r.batchSize)
	if err != nil {
		return 0, err
	}

	for _, item := range items {
		metrics.OutboxClaimed.WithLabelValues(backendZeebe).Inc()
		r.relay(ctx, item)
	}
	return len(items), nil
}

func (r *Relay) relay(ctx context.Context, item models.WorkItem) {
	log := r.logger.WithFields(map[string]interface{}{
		"workItemId":    item.ID,
		"applicationId": item.ApplicationID,
	})

	bctx, cancel := context.WithTimeout(ctx, bookkeepingTimeout)
	defer cancel()

	key, err := r.creator.CreateInstance(bctx, r.processID, map[string]interface{}{
		"applicationId": item.ApplicationID,
		"jobId":         item.JobID,
		"applicantId":   item.ApplicantID,
	})
	if err != nil {
		metrics.OutboxReleased.WithLabelValues(backendZeebe).Inc()
		log.Warn("create process instance failed, releasing work item", map[string]interface{}{"error": err})
		if err := r.source.Release(bctx, item.ID, err); err != nil {
			log.Error("release work item failed", map[string]interface{}{"error": err})
		}
		return
	}

	// the instance owns the run now; a lost instance is caught by the sweeper
	if err := r.source.MarkDone(bctx, item.ID); err != nil {
		log.Warn("mark work item done failed", map[string]interface{}{"error": err})
	}
	log.Info("process instance created", map[string]interface{}{"processInstanceKey": key})
}
