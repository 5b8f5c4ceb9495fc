//go:build !windows

package runner

import (
	"os/exec"
	"syscall"
)

// gracefulStop sends SIGTERM, the platform's graceful-termination signal on
// Unix-like systems.
func gracefulStop(cmd *exec.Cmd) {
	_ = cmd.Process.Signal(syscall.SIGTERM)
}

// exitCodeOf extracts the subprocess exit code from the error Wait returned.
func exitCodeOf(err error) int {
	if exitErr, ok := err.(*exec.ExitError); ok {
		return exitErr.ExitCode()
	}
	return -1
}
