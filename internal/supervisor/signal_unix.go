//go:build !windows

package supervisor

import (
	"errors"
	"syscall"
)

// terminateProcess asks a Unix process to shut down.
func terminateProcess(pid int) error {
	return syscall.Kill(pid, syscall.SIGTERM)
}

// killProcess forcibly ends a Unix process.
func killProcess(pid int) error {
	return syscall.Kill(pid, syscall.SIGKILL)
}

// processExists probes liveness with a zero-effect signal.
func processExists(pid int) bool {
	err := syscall.Kill(pid, 0)
	return err == nil || errors.Is(err, syscall.EPERM)
}

// isNotFound reports whether a signal failed because the process is gone.
func isNotFound(err error) bool {
	return errors.Is(err, syscall.ESRCH)
}
