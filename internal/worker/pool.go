package worker

import (
	"fmt"
	"time"

	"oss.nandlabs.io/taskqueue/internal/runner"
	"oss.nandlabs.io/taskqueue/internal/store"
	"oss.nandlabs.io/taskqueue/lifecycle"
	"oss.nandlabs.io/taskqueue/managers"
)

// shutdownWait bounds how long Stop waits for busy workers to go idle,
// per spec §4.6's "wait up to 30s, then report orphaned workers".
const shutdownWait = 30 * time.Second

// Pool owns every worker in this process: a lifecycle.ComponentManager for
// bounded start/stop, and a managers.ItemManager registry keyed by worker
// id for lookups (status reporting, cancel-running by job id).
type Pool struct {
	manager  lifecycle.ComponentManager
	registry managers.ItemManager[*Worker]
	store    *store.Store
	runner   *runner.Runner
	backoff  float64
}

// New builds an empty Pool sharing store and runner across every worker it
// starts.
func New(st *store.Store, rn *runner.Runner, backoffBase float64) *Pool {
	return &Pool{
		manager:  lifecycle.NewSimpleComponentManager(),
		registry: managers.NewItemManager[*Worker](),
		store:    st,
		runner:   rn,
		backoff:  backoffBase,
	}
}

// Start registers and starts n workers (worker_1..worker_n), waiting up to
// shutdownWait for each to report Running.
func (p *Pool) Start(n int) error {
	for i := 1; i <= n; i++ {
		w := NewWorker(i, p.store, p.runner, p.backoff)
		p.manager.Register(w)
		p.registry.Register(w.Id(), w)
	}
	if err := p.manager.StartAllWithTimeout(shutdownWait); err != nil {
		return fmt.Errorf("starting worker pool: %w", err)
	}
	return nil
}

// Stop clears the running flag on every worker and waits up to shutdownWait
// for them to finish their current job. Workers still busy past the
// deadline are left running; their in-flight jobs are reclaimed via the
// stale-lock mechanism on a future claim.
func (p *Pool) Stop() error {
	if err := p.manager.StopAllWithTimeout(shutdownWait); err != nil {
		logger.WarnF("worker pool stop timed out after %s; jobs %v are orphaned and will be reclaimed via stale-lock on next claim", shutdownWait, p.runner.ActiveJobIDs())
		return err
	}
	return nil
}

// Wait blocks until the pool's components have all been stopped, whether
// by an explicit Stop call or by the SIGINT/SIGTERM handler that
// lifecycle.NewSimpleComponentManager installs automatically. Callers that
// want to block a foreground process (e.g. "worker start") until a signal
// arrives can call this instead of registering their own handler.
func (p *Pool) Wait() {
	p.manager.Wait()
}

// CancelRunning terminates the in-flight subprocess for jobID across every
// worker in the pool, returning true if one was found and signaled.
func (p *Pool) CancelRunning(jobID string) bool {
	for _, w := range p.registry.Items() {
		if w.CancelRunning(jobID) {
			return true
		}
	}
	return false
}

// Status summarizes every worker's lifecycle state and running totals.
type Status struct {
	ID        string
	State     string
	Completed int
	Failed    int
}

// Statuses returns one Status entry per worker currently registered.
func (p *Pool) Statuses() []Status {
	items := p.registry.Items()
	statuses := make([]Status, 0, len(items))
	for _, w := range items {
		counters := w.Counters()
		statuses = append(statuses, Status{
			ID:        w.Id(),
			State:     stateName(p.manager.GetState(w.Id())),
			Completed: counters.Completed,
			Failed:    counters.Failed,
		})
	}
	return statuses
}

func stateName(s lifecycle.ComponentState) string {
	switch s {
	case lifecycle.Running:
		return "running"
	case lifecycle.Starting:
		return "starting"
	case lifecycle.Stopping:
		return "stopping"
	case lifecycle.Stopped:
		return "stopped"
	case lifecycle.Error:
		return "error"
	default:
		return "unknown"
	}
}
