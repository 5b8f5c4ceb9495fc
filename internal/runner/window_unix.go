//go:build !windows

package runner

import "os/exec"

// hideWindow is a no-op on platforms with no console window to hide.
func hideWindow(cmd *exec.Cmd) {}
