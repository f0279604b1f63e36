//go:build unix

package cmdexec

import (
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// killGroup starts the shell in its own process group and makes
// cancellation kill the whole group, so children holding the output pipes
// die with it.
func killGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return unix.Kill(-cmd.Process.Pid, unix.SIGKILL)
	}
}
