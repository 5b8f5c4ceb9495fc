//go:build !windows

package main

import (
	"os"
	"syscall"
)

// terminateProcess sends the shutdown coordinator's signal (SIGTERM) to an
// out-of-process worker pool started by "worker start".
func terminateProcess(pid int) error {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	return proc.Signal(syscall.SIGTERM)
}
