package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"oss.nandlabs.io/taskqueue/internal/jobs"
)

func pidFilePath(dir string) string {
	return filepath.Join(dir, "worker.pid")
}

// writePIDFile records the running "worker start" process so a later
// "worker stop" invocation (a separate process) can find it.
func writePIDFile(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &jobs.StoreIOError{Op: "mkdir", Err: err}
	}
	content := strconv.Itoa(os.Getpid())
	if err := os.WriteFile(pidFilePath(dir), []byte(content), 0o644); err != nil {
		return &jobs.StoreIOError{Op: "write worker.pid", Err: err}
	}
	return nil
}

func removePIDFile(dir string) {
	os.Remove(pidFilePath(dir))
}

// readPIDFile returns the pid recorded by the running worker process, if
// any.
func readPIDFile(dir string) (int, error) {
	raw, err := os.ReadFile(pidFilePath(dir))
	if os.IsNotExist(err) {
		return 0, fmt.Errorf("no running worker pool found (%s does not exist)", pidFilePath(dir))
	}
	if err != nil {
		return 0, &jobs.StoreIOError{Op: "read worker.pid", Err: err}
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil {
		return 0, fmt.Errorf("worker.pid is corrupt: %w", err)
	}
	return pid, nil
}
