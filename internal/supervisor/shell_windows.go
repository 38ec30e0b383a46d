//go:build windows

package supervisor

import "os/exec"

// getShellCommand returns a shell command for Windows systems.
func getShellCommand(script string) *exec.Cmd {
	// #nosec G204
	return exec.Command("cmd", "/C", script)
}

// getTrueCommand returns a command that always succeeds on Windows systems.
func getTrueCommand() *exec.Cmd {
	// #nosec G204
	return exec.Command("cmd", "/C", "exit 0")
}
