//go:build windows

package runner

import (
	"os/exec"
	"syscall"
)

// hideWindow suppresses the console window cmd.exe would otherwise flash
// open for each job.
func hideWindow(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{HideWindow: true}
}
