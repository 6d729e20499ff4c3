// internal/dispatch/pool.go
package dispatch

import (
	"context"
	"errors"
	"sync"
	"time"

	"job-portal/internal/common/logger"
	"job-portal/internal/common/metrics"
	"job-portal/internal/models"
	screenapplication "job-portal/internal/workers/application/screen-application"
)

const backendPool = "pool"

// Runner executes one screening run.
type Runner interface {
	Run(ctx context.Context, input *screenapplication.Input) (*screenapplication.Output, error)
}

// Pool runs screenings in-process on a fixed number of goroutines.
type Pool struct {
	source       WorkSource
	runner       Runner
	concurrency  int
	pollInterval time.Duration
	logger       logger.Logger

	wake   waker
	stopCh chan struct{}
	wg     sync.WaitGroup

	mu      sync.Mutex
	running bool

	activeMu   sync.Mutex
	activeRuns map[string]context.CancelFunc
}

func NewPool(source WorkSource, runner Runner, concurrency int, pollInterval time.Duration, log logger.Logger) *Pool {
	if concurrency < 1 {
		concurrency = 1
	}
	if pollInterval <= 0 {
		pollInterval = 2 * time.Second
	}
	return &Pool{
		source:       source,
		runner:       runner,
		concurrency:  concurrency,
		pollInterval: pollInterval,
		logger:       log.WithFields(map[string]interface{}{"component": "screening-pool"}),
		wake:         newWaker(),
		stopCh:       make(chan struct{}),
		activeRuns:   make(map[string]context.CancelFunc),
	}
}

// Start launches the workers and returns immediately.
func (p *Pool) Start(_ context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return nil
	}
	p.running = true

	p.logger.Info("screening pool starting", map[string]interface{}{
		"concurrency":  p.concurrency,
		"pollInterval": p.pollInterval.String(),
	})

	for range p.concurrency {
		p.wg.Add(1)
		go p.loop()
	}
	return nil
}

func (p *Pool) Wake() {
	p.wake.wake()
}

// Stop waits for in-flight runs. When ctx expires first the remaining runs
// are cancelled; their work items go back to pending.
func (p *Pool) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = false
	p.mu.Unlock()

	p.logger.Info("screening pool stopping", nil)
	close(p.stopCh)

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("screening pool stopped gracefully", nil)
	case <-ctx.Done():
		p.logger.Warn("screening pool shutdown timed out, cancelling active runs", nil)
		p.cancelActiveRuns()
		<-done
	}
	return nil
}

func (p *Pool) loop() {
	defer p.wg.Done()

	for {
		select {
		case <-p.stopCh:
			return
		default:
		}

		items, err := p.source.ClaimPending(context.Background(), 1)
		if err != nil {
			p.logger.Error("claim failed", map[string]interface{}{"error": err})
			p.sleep()
			continue
		}
		if len(items) == 0 {
			p.sleep()
			continue
		}

		metrics.OutboxClaimed.WithLabelValues(backendPool).Inc()
		p.process(items[0])
	}
}

func (p *Pool) process(item models.WorkItem) {
	ctx, cancel := context.WithCancel(context.Background())
	p.track(item.ID, cancel)
	defer func() {
		p.untrack(item.ID)
		cancel()
	}()

	log := p.logger.WithFields(map[string]interface{}{
		"workItemId":    item.ID,
		"applicationId": item.ApplicationID,
		"attempt":       item.Attempts,
	})

	_, err := p.runner.Run(ctx, &screenapplication.Input{
		ApplicationID: item.ApplicationID,
		JobID:         item.JobID,
		ApplicantID:   item.ApplicantID,
	})

	bctx, bcancel := context.WithTimeout(context.Background(), bookkeepingTimeout)
	defer bcancel()

	if err == nil {
		if err := p.source.MarkDone(bctx, item.ID); err != nil {
			// the decision is written; the sweeper ignores decided applications
			log.Warn("mark work item done failed", map[string]interface{}{"error": err})
		}
		return
	}

	if errors.Is(err, screenapplication.ErrRunCancelled) {
		log.Info("run cancelled, releasing work item", nil)
	} else {
		log.Error("run failed, releasing work item", map[string]interface{}{"error": err})
	}

	metrics.OutboxReleased.WithLabelValues(backendPool).Inc()
	if err := p.source.Release(bctx, item.ID, err); err != nil {
		log.Error("release work item failed", map[string]interface{}{"error": err})
	}
}

func (p *Pool) sleep() {
	timer := time.NewTimer(p.pollInterval)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-p.wake:
	case <-p.stopCh:
	}
}

func (p *Pool) track(id string, cancel context.CancelFunc) {
	p.activeMu.Lock()
	p.activeRuns[id] = cancel
	p.activeMu.Unlock()
}

func (p *Pool) untrack(id string) {
	p.activeMu.Lock()
	delete(p.activeRuns, id)
	p.activeMu.Unlock()
}

func (p *Pool) cancelActiveRuns() {
	p.activeMu.Lock()
	defer p.activeMu.Unlock()
	for id, cancel := range p.activeRuns {
		p.logger.Warn("cancelling active run", map[string]interface{}{"workItemId": id})
		cancel()
	}
}
