package runner

import (
	"runtime"
	"strings"
	"testing"
	"time"

	"oss.nandlabs.io/taskqueue/internal/jobs"
	"oss.nandlabs.io/taskqueue/testing/assert"
)

func TestRunner_Success(t *testing.T) {
	r, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	result, err := r.Run("job1", "echo hello", 5*time.Second)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	assert.Equal(t, 0, result.ExitCode)
	if !strings.Contains(result.Stdout, "hello") {
		t.Fatalf("Stdout = %q, want it to contain %q", result.Stdout, "hello")
	}
}

func TestRunner_NonZeroExit(t *testing.T) {
	r, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	command := "exit 7"
	if runtime.GOOS == "windows" {
		command = "exit /b 7"
	}

	_, err = r.Run("job2", command, 5*time.Second)
	execErr, ok := err.(*jobs.JobExecutionError)
	if !ok {
		t.Fatalf("expected *jobs.JobExecutionError, got %T: %v", err, err)
	}
	if !strings.Contains(execErr.Message, "exit code 7") {
		t.Fatalf("message = %q, want it to mention exit code 7", execErr.Message)
	}
}

func TestRunner_Timeout(t *testing.T) {
	r, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	command := "sleep 5"
	if runtime.GOOS == "windows" {
		command = "ping -n 6 127.0.0.1"
	}

	start := time.Now()
	_, err = r.Run("job3", command, 200*time.Millisecond)
	elapsed := time.Since(start)

	execErr, ok := err.(*jobs.JobExecutionError)
	if !ok {
		t.Fatalf("expected *jobs.JobExecutionError, got %T: %v", err, err)
	}
	if !strings.Contains(execErr.Message, "timeout exceeded") {
		t.Fatalf("message = %q, want it to mention timeout", execErr.Message)
	}
	if elapsed > 4*time.Second {
		t.Fatalf("Run() took %s, want well under the 5s grace window", elapsed)
	}
}

func TestRunner_CancelRunningNoActiveChild(t *testing.T) {
	r, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	assert.False(t, r.CancelRunning("no-such-job"))
}

func TestRunner_CancelRunning(t *testing.T) {
	r, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	command := "sleep 5"
	if runtime.GOOS == "windows" {
		command = "ping -n 6 127.0.0.1"
	}

	done := make(chan error, 1)
	go func() {
		_, runErr := r.Run("job5", command, 10*time.Second)
		done <- runErr
	}()

	// Give the child time to start and register itself.
	time.Sleep(200 * time.Millisecond)
	if !r.CancelRunning("job5") {
		t.Fatal("CancelRunning() = false, want true for an active child")
	}

	select {
	case <-done:
	case <-time.After(6 * time.Second):
		t.Fatal("Run() did not return after CancelRunning")
	}
}

func TestRunner_ActiveJobIDs(t *testing.T) {
	r, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	assert.Equal(t, 0, len(r.ActiveJobIDs()))

	command := "sleep 5"
	if runtime.GOOS == "windows" {
		command = "ping -n 6 127.0.0.1"
	}

	done := make(chan error, 1)
	go func() {
		_, runErr := r.Run("job6", command, 10*time.Second)
		done <- runErr
	}()

	time.Sleep(200 * time.Millisecond)
	ids := r.ActiveJobIDs()
	if !(len(ids) == 1 && ids[0] == "job6") {
		t.Fatalf("ActiveJobIDs() = %v, want [job6]", ids)
	}

	if !r.CancelRunning("job6") {
		t.Fatal("CancelRunning() = false, want true for an active child")
	}
	select {
	case <-done:
	case <-time.After(6 * time.Second):
		t.Fatal("Run() did not return after CancelRunning")
	}
	assert.Equal(t, 0, len(r.ActiveJobIDs()))
}
