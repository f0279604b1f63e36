//go:build !unix

package cmdexec

import "os/exec"

func killGroup(cmd *exec.Cmd) {}
