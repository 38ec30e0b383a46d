package supervisor

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	gopsproc "github.com/shirou/gopsutil/v4/process"
	lj "gopkg.in/natefinch/lumberjack.v2"
)

// ErrNotRunning is returned when no PID record exists; the instance was never
// daemon-launched or has already been taken down.
var ErrNotRunning = errors.New("no running service instance recorded")

// ErrStaleRecord marks a PID record whose process no longer exists.
var ErrStaleRecord = errors.New("stale PID record")

// State of the tracked service instance.
type State string

const (
	StateStopped  State = "stopped"
	StateStarting State = "starting"
	StateRunning  State = "running"
	StateStopping State = "stopping"
)

// Status reports the tracked instance as observed from its PID record.
type Status struct {
	State     State
	PID       int
	StartedAt time.Time // zero when the platform cannot report it
	Uptime    time.Duration
}

// Default rotation parameters for the daemon log capture.
const (
	defaultCaptureSizeMB  = 10
	defaultCaptureBackups = 3
	defaultCaptureAgeDays = 7
)

// CaptureConfig controls the rotating file that receives the stdout/stderr
// of a daemon-launched service. An empty Path discards the output.
type CaptureConfig struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// open rolls the previous run's capture into a backup, prunes old backups,
// and opens a fresh file. The child must write through a real descriptor
// (the parent exits right after launch), so rotation happens between runs.
func (c CaptureConfig) open() (*os.File, error) {
	roll := &lj.Logger{
		Filename:   c.Path,
		MaxSize:    valOr(c.MaxSizeMB, defaultCaptureSizeMB),
		MaxBackups: valOr(c.MaxBackups, defaultCaptureBackups),
		MaxAge:     valOr(c.MaxAgeDays, defaultCaptureAgeDays),
		Compress:   c.Compress,
	}
	if info, err := os.Stat(c.Path); err == nil && info.Size() > 0 {
		_ = roll.Rotate()
	}
	_ = roll.Close()
	// #nosec G304
	return os.OpenFile(c.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}

func valOr(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

const defaultStopWait = 3 * time.Second

// Supervisor owns the PID record and the start/stop/status primitives for the
// single tracked service instance. It holds no in-memory state between calls;
// every operation is a fresh read of the record.
type Supervisor struct {
	PIDFile  string
	StopWait time.Duration // bound for the confirm phase of Stop
	Capture  CaptureConfig
}

// StartDaemon launches the service detached from the terminal, persists its
// PID, and returns without waiting on the child.
func (s *Supervisor) StartDaemon(spec LaunchSpec) (int, error) {
	cmd := spec.BuildCommand()
	configureDetachAttrs(cmd)
	cmd.Stdin = nil
	if s.Capture.Path != "" {
		f, err := s.Capture.open()
		if err != nil {
			return 0, fmt.Errorf("open service log: %w", err)
		}
		defer func() { _ = f.Close() }() // parent copy; the child keeps its own
		cmd.Stdout = f
		cmd.Stderr = f
	}
	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("start service: %w", err)
	}
	pid := cmd.Process.Pid
	if err := WritePIDFile(s.PIDFile, pid); err != nil {
		return pid, fmt.Errorf("service started (PID %d) but writing PID record failed: %w", pid, err)
	}
	_ = cmd.Process.Release()
	return pid, nil
}

// RunForeground launches the service attached to the invoking terminal and
// blocks until it exits. No PID record is written in this mode.
func (s *Supervisor) RunForeground(spec LaunchSpec) error {
	cmd := spec.BuildCommand()
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// ExitedItself reports whether err is the service's own exit status rather
// than a launch failure.
func ExitedItself(err error) bool {
	var ee *exec.ExitError
	return errors.As(err, &ee)
}

// StopResult describes the outcome of a Stop call.
type StopResult struct {
	PID         int
	AlreadyGone bool // the recorded process was gone before we signaled it
	Killed      bool // escalated to a forced kill after the wait expired
}

// Stop performs a two-phase stop of the recorded instance: send the
// termination signal, poll liveness up to StopWait, then kill. The PID record
// is removed on every path through Stop, so no stale record survives.
func (s *Supervisor) Stop() (StopResult, error) {
	pid, err := ReadPIDFile(s.PIDFile)
	if err != nil {
		if os.IsNotExist(err) {
			return StopResult{}, ErrNotRunning
		}
		// Malformed record: clear it so the next invocation starts clean.
		RemovePIDFile(s.PIDFile)
		return StopResult{}, err
	}
	defer RemovePIDFile(s.PIDFile)

	res := StopResult{PID: pid}
	if err := terminateProcess(pid); err != nil {
		if isNotFound(err) {
			res.AlreadyGone = true
			return res, nil
		}
		return res, fmt.Errorf("signal PID %d: %w", pid, err)
	}

	wait := s.StopWait
	if wait <= 0 {
		wait = defaultStopWait
	}
	deadline := time.Now().Add(wait)
	for time.Now().Before(deadline) {
		if !processExists(pid) {
			return res, nil
		}
		time.Sleep(50 * time.Millisecond)
	}

	res.Killed = true
	_ = killProcess(pid)
	for i := 0; i < 20 && processExists(pid); i++ {
		time.Sleep(50 * time.Millisecond)
	}
	return res, nil
}

// Status probes the recorded instance with a zero-effect liveness signal.
// A record pointing at a dead process is cleared and reported as stale.
func (s *Supervisor) Status() (Status, error) {
	pid, err := ReadPIDFile(s.PIDFile)
	if err != nil {
		if os.IsNotExist(err) {
			return Status{State: StateStopped}, ErrNotRunning
		}
		RemovePIDFile(s.PIDFile)
		return Status{State: StateStopped}, err
	}
	if !processExists(pid) {
		RemovePIDFile(s.PIDFile)
		return Status{State: StateStopped, PID: pid}, fmt.Errorf("no process with PID %d: %w", pid, ErrStaleRecord)
	}
	st := Status{State: StateRunning, PID: pid}
	if t := procStartTime(pid); !t.IsZero() {
		st.StartedAt = t
		st.Uptime = time.Since(t).Truncate(time.Second)
	}
	return st, nil
}

// procStartTime returns the process start time, zero when unavailable.
func procStartTime(pid int) time.Time {
	p, err := gopsproc.NewProcess(int32(pid))
	if err != nil {
		return time.Time{}
	}
	ms, err := p.CreateTime()
	if err != nil || ms <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}
