package worker

import (
	"testing"
	"time"

	"oss.nandlabs.io/taskqueue/internal/runner"
	"oss.nandlabs.io/taskqueue/internal/store"
	"oss.nandlabs.io/taskqueue/testing/assert"
)

func newTestDeps(t *testing.T) (*store.Store, *runner.Runner) {
	t.Helper()
	st, err := store.New(t.TempDir(), 2, 3)
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	rn, err := runner.New()
	if err != nil {
		t.Fatalf("runner.New() error = %v", err)
	}
	return st, rn
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("condition not met within %s", timeout)
}

func TestWorker_ClaimsAndCompletes(t *testing.T) {
	st, rn := newTestDeps(t)
	if _, err := st.Enqueue(store.EnqueueRequest{ID: "j1", Command: "echo hi"}); err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}

	w := NewWorker(1, st, rn, 2)
	assert.Equal(t, "worker_1", w.Id())

	if err := w.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer w.Stop()

	waitFor(t, 5*time.Second, func() bool {
		return w.Counters().Completed == 1
	})

	listed, err := st.List(nil)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	assert.Equal(t, 1, len(listed))
}

func TestWorker_RecordsFailure(t *testing.T) {
	st, rn := newTestDeps(t)
	command := "exit 1"
	if _, err := st.Enqueue(store.EnqueueRequest{ID: "j1", Command: command, MaxRetries: 1}); err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}

	w := NewWorker(1, st, rn, 2)
	if err := w.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer w.Stop()

	waitFor(t, 5*time.Second, func() bool {
		return w.Counters().Failed == 1
	})
}

func TestWorker_StopWhenIdle(t *testing.T) {
	st, rn := newTestDeps(t)
	w := NewWorker(1, st, rn, 2)
	if err := w.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- w.Stop() }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Stop() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Stop() did not return promptly for an idle worker")
	}
}

func TestWorker_CancelRunning(t *testing.T) {
	st, rn := newTestDeps(t)
	command := "sleep 5"
	if _, err := st.Enqueue(store.EnqueueRequest{ID: "j1", Command: command, TimeoutMs: 10_000}); err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}

	w := NewWorker(1, st, rn, 2)
	if err := w.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer w.Stop()

	waitFor(t, 2*time.Second, func() bool {
		listed, _ := st.List(nil)
		return len(listed) == 1 && listed[0].LockedBy != nil
	})

	if !w.CancelRunning("j1") {
		t.Fatal("CancelRunning() = false, want true")
	}

	waitFor(t, 5*time.Second, func() bool {
		return w.Counters().Failed == 1
	})
}
