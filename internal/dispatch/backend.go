// internal/dispatch/backend.go
package dispatch

import (
	"context"
	"time"

	"job-portal/internal/models"
)

// Backend drives screening work items from the outbox to a dispatcher run.
type Backend interface {
	Start(ctx context.Context) error
	// Wake asks the backend to look for new work now. It never blocks.
	Wake()
	Stop(ctx context.Context) error
}

// WorkSource is the durable outbox the backends claim from.
type WorkSource interface {
	ClaimPending(ctx context.Context, limit int) ([]models.WorkItem, error)
	MarkDone(ctx context.Context, workItemID string) error
	Release(ctx context.Context, workItemID string, cause error) error
}

// bookkeepingTimeout bounds MarkDone and Release, which run after the claim context is gone.
const bookkeepingTimeout = 10 * time.Second

// waker is a coalescing wake-up signal shared by the backends.
type waker chan struct{}

func newWaker() waker {
	return make(waker, 1)
}

func (w waker) wake() {
	select {
	case w <- struct{}{}:
	default:
	}
}
