package supervisor

import (
	"os/exec"
	"strconv"
	"strings"
)

// LaunchSpec describes one launch of the supervised service.
type LaunchSpec struct {
	Command  string // service executable or shell command
	Host     string // bind address passed to the service
	Port     int
	Workers  int    // omitted when <= 0
	LogLevel string // omitted when empty
	Reload   bool   // development auto-reload
}

// Args returns the startup parameters appended to the service command.
func (s LaunchSpec) Args() []string {
	args := []string{"--host", s.Host, "--port", strconv.Itoa(s.Port)}
	if s.Workers > 0 {
		args = append(args, "--workers", strconv.Itoa(s.Workers))
	}
	if s.LogLevel != "" {
		args = append(args, "--log-level", s.LogLevel)
	}
	if s.Reload {
		args = append(args, "--reload")
	}
	return args
}

// BuildCommand constructs an *exec.Cmd for the spec. It avoids invoking a
// shell when the command line has no metacharacters; otherwise the full line
// is handed to the shell so quoting and redirection keep working.
func (s LaunchSpec) BuildCommand() *exec.Cmd {
	full := strings.TrimSpace(strings.TrimSpace(s.Command) + " " + strings.Join(s.Args(), " "))
	if full == "" {
		return getTrueCommand()
	}
	if strings.ContainsAny(full, "|&;<>*?`$\"'(){}[]~#") {
		return getShellCommand(full)
	}
	parts := strings.Fields(full)
	// #nosec G204
	return exec.Command(parts[0], parts[1:]...)
}
