package worker

import (
	"testing"
	"time"

	"oss.nandlabs.io/taskqueue/internal/store"
	"oss.nandlabs.io/taskqueue/testing/assert"
)

func TestPool_StartAndStop(t *testing.T) {
	st, rn := newTestDeps(t)
	p := New(st, rn, 2)

	if err := p.Start(3); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	statuses := p.Statuses()
	assert.Equal(t, 3, len(statuses))
	for _, s := range statuses {
		assert.Equal(t, "running", s.State)
	}

	if err := p.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
}

func TestPool_ProcessesEnqueuedJobs(t *testing.T) {
	st, rn := newTestDeps(t)
	for i := 0; i < 5; i++ {
		if _, err := st.Enqueue(store.EnqueueRequest{Command: "echo hi"}); err != nil {
			t.Fatalf("Enqueue() error = %v", err)
		}
	}

	p := New(st, rn, 2)
	if err := p.Start(2); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer p.Stop()

	waitFor(t, 5*time.Second, func() bool {
		status, err := st.Status()
		if err != nil {
			return false
		}
		return status.Completed == 5
	})
}

func TestPool_CancelRunningNoMatch(t *testing.T) {
	st, rn := newTestDeps(t)
	p := New(st, rn, 2)
	if err := p.Start(1); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer p.Stop()

	assert.False(t, p.CancelRunning("no-such-job"))
}
