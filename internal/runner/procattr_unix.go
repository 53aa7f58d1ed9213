//go:build !windows

package runner

import (
	"os/exec"
	"syscall"
)

// configureProcessGroup places the shell in its own process group so a timeout
// kills the whole tree, not just sh.
func configureProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
}
