//go:build windows

package runner

import "os/exec"

// gracefulStop on Windows has no SIGTERM equivalent reachable from
// os.Process; Kill is the only signal available, so the grace period in
// terminate degenerates to "kill once, immediately" on this platform.
func gracefulStop(cmd *exec.Cmd) {
	_ = cmd.Process.Kill()
}

// exitCodeOf extracts the subprocess exit code from the error Wait returned.
func exitCodeOf(err error) int {
	if exitErr, ok := err.(*exec.ExitError); ok {
		return exitErr.ExitCode()
	}
	return -1
}
