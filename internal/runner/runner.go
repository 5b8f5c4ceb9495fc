// Package runner executes job commands as subprocesses under a per-job
// wall-clock timeout, enforcing graceful-then-forceful termination and
// tracking active children by job id for cancellation and shutdown.
package runner

import (
	"bytes"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"sync"
	"time"

	"oss.nandlabs.io/taskqueue/collections"
	"oss.nandlabs.io/taskqueue/fnutils"
	"oss.nandlabs.io/taskqueue/internal/jobs"
	"oss.nandlabs.io/taskqueue/l3"
	"oss.nandlabs.io/taskqueue/pool"
)

var logger = l3.Get()

// terminationGrace is how long a child gets to exit after the graceful
// termination signal before the runner escalates to a forceful kill.
const terminationGrace = 5 * time.Second

// bufferPoolMin/Max/MaxWait size the reusable stdout/stderr buffer pool:
// small because buffers are only held for the duration of one subprocess.
const (
	bufferPoolMin     = 2
	bufferPoolMax     = 32
	bufferPoolMaxWait = 5
)

// Result is the outcome of a single Run.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner spawns job commands through the host shell, capturing output and
// enforcing timeout_ms per run. One Runner is shared by every worker in a
// process; its buffer pool and active-child map are safe for concurrent use.
type Runner struct {
	buffers pool.Pool[*bytes.Buffer]

	mu       sync.Mutex
	children map[string]*exec.Cmd
	active   collections.Set[string]
}

// New builds a Runner with a pool of reusable output buffers.
func New() (*Runner, error) {
	creator := func() (*bytes.Buffer, error) {
		return &bytes.Buffer{}, nil
	}
	destroyer := func(*bytes.Buffer) error {
		return nil
	}
	buffers, err := pool.NewPool[*bytes.Buffer](creator, destroyer, bufferPoolMin, bufferPoolMax, bufferPoolMaxWait)
	if err != nil {
		return nil, err
	}
	if err := buffers.Start(); err != nil {
		return nil, err
	}
	return &Runner{
		buffers:  buffers,
		children: make(map[string]*exec.Cmd),
		active:   collections.NewSyncSet[string](),
	}, nil
}

// Run executes command under the host shell, enforcing timeout. jobID keys
// the active-children map so CancelRunning and shutdown can find and
// terminate this specific child. It returns a JobExecutionError describing
// any non-success outcome (non-zero exit, spawn failure, timeout) per
// spec's message formats; a nil error means the command exited 0.
func (r *Runner) Run(jobID, command string, timeout time.Duration) (Result, error) {
	cmd := shellCommand(command)

	stdout, putStdout := r.checkoutBuffer()
	stderr, putStderr := r.checkoutBuffer()
	defer putStdout()
	defer putStderr()
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	if err := cmd.Start(); err != nil {
		return Result{}, &jobs.JobExecutionError{Message: fmt.Sprintf("Failed to execute command: %v", err)}
	}

	r.track(jobID, cmd)
	defer r.untrack(jobID)

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case err := <-done:
		result := Result{Stdout: stdout.String(), Stderr: stderr.String()}
		if err == nil {
			result.ExitCode = 0
			return result, nil
		}
		exitCode := exitCodeOf(err)
		result.ExitCode = exitCode
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = strings.TrimSpace(stdout.String())
		}
		return result, &jobs.JobExecutionError{Message: fmt.Sprintf("Command failed with exit code %d: %s", exitCode, detail)}

	case <-time.After(timeout):
		r.terminate(cmd)
		<-done // reap the child once terminate's signals land
		return Result{Stdout: stdout.String(), Stderr: stderr.String()},
			&jobs.JobExecutionError{Message: fmt.Sprintf("Job timeout exceeded (%dms)", timeout.Milliseconds())}
	}
}

// CancelRunning terminates the active child for jobID, if any, via the same
// graceful-then-forceful sequence as a timeout. It returns false if jobID
// has no active child.
func (r *Runner) CancelRunning(jobID string) bool {
	r.mu.Lock()
	cmd, ok := r.children[jobID]
	r.mu.Unlock()
	if !ok {
		return false
	}
	r.terminate(cmd)
	return true
}

// terminate sends the platform graceful-termination signal, then escalates
// to a forceful kill if the child hasn't exited within terminationGrace.
func (r *Runner) terminate(cmd *exec.Cmd) {
	if cmd.Process == nil {
		return
	}
	gracefulStop(cmd)

	go func() {
		_ = fnutils.ExecuteAfterMs(func() {
			if cmd.ProcessState == nil {
				_ = cmd.Process.Kill()
			}
		}, terminationGrace.Milliseconds())
	}()
}

func (r *Runner) track(jobID string, cmd *exec.Cmd) {
	r.mu.Lock()
	r.children[jobID] = cmd
	r.mu.Unlock()
	_ = r.active.Add(jobID)
}

func (r *Runner) untrack(jobID string) {
	r.mu.Lock()
	delete(r.children, jobID)
	r.mu.Unlock()
	r.active.Remove(jobID)
}

// ActiveJobIDs returns the ids of jobs this Runner currently has a live
// child process for, in no particular order. Used by worker.Pool.Stop to
// name the jobs still executing when its bounded shutdown wait expires.
func (r *Runner) ActiveJobIDs() []string {
	ids := make([]string, 0, r.active.Size())
	for it := r.active.Iterator(); it.HasNext(); {
		ids = append(ids, it.Next())
	}
	return ids
}

func (r *Runner) checkoutBuffer() (*bytes.Buffer, func()) {
	buf, err := r.buffers.Checkout()
	if err != nil {
		logger.WarnF("buffer pool exhausted, allocating ad hoc: %v", err)
		fresh := &bytes.Buffer{}
		return fresh, func() {}
	}
	buf.Reset()
	return buf, func() { r.buffers.Checkin(buf) }
}

// shellCommand builds the argv per spec: cmd.exe /c on Windows, sh -c
// elsewhere.
func shellCommand(command string) *exec.Cmd {
	var cmd *exec.Cmd
	if runtime.GOOS == "windows" {
		cmd = exec.Command("cmd.exe", "/c", command)
	} else {
		cmd = exec.Command("sh", "-c", command)
	}
	hideWindow(cmd)
	return cmd
}
