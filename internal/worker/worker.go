// Package worker implements the worker loop and pool described in spec
// §4.4/§4.6: independent polling loops that claim, run, and report on jobs,
// managed as lifecycle components with a bounded shutdown wait.
package worker

import (
	"fmt"
	"time"

	"oss.nandlabs.io/taskqueue/internal/jobs"
	"oss.nandlabs.io/taskqueue/internal/runner"
	"oss.nandlabs.io/taskqueue/internal/store"
	"oss.nandlabs.io/taskqueue/l3"
	"oss.nandlabs.io/taskqueue/lifecycle"
)

var logger = l3.Get()

// pollInterval is how long a worker sleeps after finding nothing to claim.
const pollInterval = time.Second

// errorBackoff is how long a worker sleeps after a transient Store error,
// so a wedged store doesn't spin the loop hot.
const errorBackoff = time.Second

// defaultBackoffBase is used if a Worker is built with a non-positive
// backoffBase.
const defaultBackoffBase = 2.0

// Counters tracks a worker's lifetime outcomes.
type Counters struct {
	Completed int
	Failed    int
}

// Worker is one independent claim/execute/report loop. It implements
// lifecycle.Component so a Pool can start, stop, and bound-wait on it like
// any other managed component.
type Worker struct {
	id          string
	store       *store.Store
	runner      *runner.Runner
	backoffBase float64

	stop    chan struct{}
	done    chan struct{}
	running bool

	counters Counters
}

// NewWorker builds a Worker with stable id worker_<n>, sharing store and runner
// with every other worker in the pool.
func NewWorker(n int, st *store.Store, rn *runner.Runner, backoffBase float64) *Worker {
	if backoffBase <= 0 {
		backoffBase = defaultBackoffBase
	}
	return &Worker{
		id:          fmt.Sprintf("worker_%d", n),
		store:       st,
		runner:      rn,
		backoffBase: backoffBase,
	}
}

// Id satisfies lifecycle.Component.
func (w *Worker) Id() string { return w.id }

// OnChange satisfies lifecycle.Component; workers don't react to their own
// state transitions, so f is never called.
func (w *Worker) OnChange(f func(prevState, newState lifecycle.ComponentState)) {}

// State satisfies lifecycle.Component.
func (w *Worker) State() lifecycle.ComponentState {
	if w.running {
		return lifecycle.Running
	}
	return lifecycle.Stopped
}

// Counters returns a snapshot of this worker's completed/failed totals.
func (w *Worker) Counters() Counters { return w.counters }

// Start launches the loop in its own goroutine and returns immediately;
// satisfies lifecycle.Component's Start() error signature even though this
// loop can't itself fail to start.
func (w *Worker) Start() error {
	w.stop = make(chan struct{})
	w.done = make(chan struct{})
	w.running = true
	go w.loop()
	return nil
}

// Stop signals the loop to exit after its current iteration and blocks
// until it does.
func (w *Worker) Stop() error {
	if !w.running {
		return nil
	}
	close(w.stop)
	<-w.done
	w.running = false
	return nil
}

// CancelRunning terminates this worker's in-flight subprocess, if any. The
// job's disposition then follows normal failure handling when the loop
// observes the runner's timeout/cancellation error.
func (w *Worker) CancelRunning(jobID string) bool {
	return w.runner.CancelRunning(jobID)
}

func (w *Worker) loop() {
	defer close(w.done)
	for {
		select {
		case <-w.stop:
			return
		default:
		}

		job, err := w.store.ClaimNext(w.id)
		if err != nil {
			logger.WarnF("%s: claim failed, retrying: %v", w.id, err)
			w.sleep(errorBackoff)
			continue
		}
		if job == nil {
			w.sleep(pollInterval)
			continue
		}

		w.execute(job)
	}
}

func (w *Worker) execute(job *jobs.Job) {
	timeout := time.Duration(job.TimeoutMs) * time.Millisecond
	_, runErr := w.runner.Run(job.ID, job.Command, timeout)

	if runErr == nil {
		if err := w.store.Complete(job.ID); err != nil {
			logger.ErrorF("%s: complete(%s) failed: %v", w.id, job.ID, err)
			return
		}
		w.counters.Completed++
		return
	}

	message := runErr.Error()
	if execErr, ok := runErr.(*jobs.JobExecutionError); ok {
		message = execErr.Message
	}
	if err := w.store.Fail(job.ID, message, w.backoffBase); err != nil {
		logger.ErrorF("%s: fail(%s) failed: %v", w.id, job.ID, err)
		return
	}
	w.counters.Failed++
}

// sleep blocks for d or until Stop is requested, whichever comes first, so
// a worker stopped while idle doesn't wait out a full poll interval.
func (w *Worker) sleep(d time.Duration) {
	select {
	case <-time.After(d):
	case <-w.stop:
	}
}
