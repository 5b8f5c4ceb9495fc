//go:build windows

package main

import "os"

// terminateProcess has no SIGTERM equivalent on Windows; Kill is the best
// available shutdown signal for an out-of-process worker pool.
func terminateProcess(pid int) error {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	return proc.Kill()
}
