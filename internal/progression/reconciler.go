package progression

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"
)

type reconcileRunner interface {
	Reconcile(ctx context.Context) (*ReconcileResult, error)
}

// Reconciler periodically finishes facts left in the logged state.
type Reconciler struct {
	runner           reconcileRunner
	interval         time.Duration
	shutdownComplete chan struct{}
}

func NewReconciler(runner reconcileRunner, interval time.Duration) *Reconciler {
	return &Reconciler{
		runner:           runner,
		interval:         interval,
		shutdownComplete: make(chan struct{}),
	}
}

// Start runs the reconcile loop until ctx is done. It should be called in a goroutine.
func (r *Reconciler) Start(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer func() {
		ticker.Stop()
		close(r.shutdownComplete)
	}()

	log.Debugf("reconciler started, interval: %s", r.interval)
	for {
		select {
		case <-ctx.Done():
			log.Debugln("reconciler stopped")
			return
		case <-ticker.C:
		}

		if _, err := r.runner.Reconcile(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Errorf("reconcile progression facts: %s", err)
		}
	}
}

// Wait blocks until the loop started by Start returns.
func (r *Reconciler) Wait() {
	<-r.shutdownComplete
}
