//go:build !windows

package supervisor

import (
	"os/exec"
	"syscall"
)

// configureDetachAttrs starts the child in a new session (setsid) so it is
// detached from the controlling terminal and survives parent exit cleanly.
func configureDetachAttrs(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
}
