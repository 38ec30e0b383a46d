//go:build windows

package supervisor

import (
	"errors"
	"os"

	gopsproc "github.com/shirou/gopsutil/v4/process"
)

// terminateProcess ends a Windows process. There is no TERM/KILL distinction.
func terminateProcess(pid int) error {
	p, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	return p.Kill()
}

func killProcess(pid int) error {
	return terminateProcess(pid)
}

// processExists probes liveness via the process table.
func processExists(pid int) bool {
	ok, err := gopsproc.PidExists(int32(pid))
	return err == nil && ok
}

// isNotFound reports whether a signal failed because the process is gone.
func isNotFound(err error) bool {
	return errors.Is(err, os.ErrProcessDone)
}
