package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/pkg/browser"

	"github.com/mcp-aemps/aempsctl/internal/client"
	"github.com/mcp-aemps/aempsctl/internal/config"
	"github.com/mcp-aemps/aempsctl/internal/history"
	"github.com/mcp-aemps/aempsctl/internal/netutil"
	"github.com/mcp-aemps/aempsctl/internal/supervisor"
	"github.com/mcp-aemps/aempsctl/internal/tail"
)

// command binds the CLI verbs to the lifecycle components. It carries the
// resolved defaults explicitly instead of reaching for globals, so tests can
// point it at a scratch directory.
type command struct {
	defaults config.DefaultSettings
	store    *config.Store
	log      *slog.Logger
	out      io.Writer

	// Browser launches are swappable for tests.
	openURL  func(string) error
	openFile func(string) error
}

func newCommand(defaults config.DefaultSettings, log *slog.Logger, out io.Writer) command {
	return command{
		defaults: defaults,
		store:    config.NewStore(defaults.ConfigFile, defaults),
		log:      log,
		out:      out,
		openURL:  browser.OpenURL,
		openFile: browser.OpenFile,
	}
}

func (c command) supervisor(wait time.Duration) *supervisor.Supervisor {
	return &supervisor.Supervisor{
		PIDFile:  c.defaults.PIDFile,
		StopWait: wait,
		Capture:  supervisor.CaptureConfig{Path: c.defaults.ServiceLog},
	}
}

// loadSettings reads the persisted record; degradation to defaults is a
// warning, never a failure.
func (c command) loadSettings() config.Settings {
	cfg, err := c.store.Load()
	if err != nil {
		c.log.Warn("configuration degraded to defaults", "error", err)
	}
	return cfg
}

// resolveAndPersist computes the effective listener settings, reallocates the
// port if taken, and persists the result. A failed save is a warning: it must
// never block the service from starting.
func (c command) resolveAndPersist(flagUvh, flagAcc string, flagPort int) (string, string, int, error) {
	cfg := c.loadSettings()
	uvh := firstNonEmpty(flagUvh, cfg.UvicornHost)
	acc := firstNonEmpty(flagAcc, cfg.AccessHost)
	port := firstNonZero(flagPort, cfg.Port)

	freePort, err := netutil.FindFreePort(uvh, port)
	if err != nil {
		return "", "", 0, fmt.Errorf("resolve listen port: %w", err)
	}
	if freePort != port {
		c.log.Warn("port in use, switched to next free port", "requested", port, "using", freePort)
		port = freePort
	}

	if err := c.store.Save(config.Settings{UvicornHost: uvh, AccessHost: acc, Port: port}); err != nil {
		c.log.Warn("could not persist configuration", "error", err)
	}
	return uvh, acc, port, nil
}

func (c command) runForeground(sup *supervisor.Supervisor, spec supervisor.LaunchSpec) error {
	err := sup.RunForeground(spec)
	if err != nil && supervisor.ExitedItself(err) {
		// The service's own exit status is reported, not treated as a
		// launch failure of the CLI.
		c.log.Warn("service exited", "error", err)
		return nil
	}
	return err
}

// Up starts the service in production mode, foreground or detached.
func (c command) Up(f UpFlags) error {
	uvh, acc, port, err := c.resolveAndPersist(f.UvicornHost, f.AccessHost, f.Port)
	if err != nil {
		return err
	}

	spec := supervisor.LaunchSpec{
		Command:  firstNonEmpty(f.Command, c.defaults.Command),
		Host:     uvh,
		Port:     port,
		Workers:  firstNonZero(f.Workers, 1),
		LogLevel: firstNonEmpty(f.LogLevel, "info"),
	}
	sup := c.supervisor(0)
	url := serviceURL(acc, port)

	if f.Daemon && !f.NoDaemon {
		pid, err := sup.StartDaemon(spec)
		if err != nil {
			return err
		}
		c.record(history.Event{Type: history.EventStarted, PID: pid, Detail: url})
		fmt.Fprintf(c.out, "service running (PID %d) at %s\n", pid, url)
		return nil
	}

	c.log.Info("running service in the foreground (Ctrl-C to stop)", "url", url)
	return c.runForeground(sup, spec)
}

// Dev starts the service in the foreground with auto-reload and verbose
// logging. It never daemonizes and writes no PID record.
func (c command) Dev(f DevFlags) error {
	uvh, acc, port, err := c.resolveAndPersist(f.UvicornHost, f.AccessHost, f.Port)
	if err != nil {
		return err
	}

	spec := supervisor.LaunchSpec{
		Command:  firstNonEmpty(f.Command, c.defaults.Command),
		Host:     uvh,
		Port:     port,
		LogLevel: "debug",
		Reload:   true,
	}
	c.log.Info("development mode with auto-reload", "url", serviceURL(acc, port))
	return c.runForeground(c.supervisor(0), spec)
}

// Down stops the daemon-launched instance with a confirmed two-phase stop.
func (c command) Down(f DownFlags) error {
	res, err := c.supervisor(f.Wait).Stop()
	if errors.Is(err, supervisor.ErrNotRunning) {
		return errors.New("nothing to stop: no PID recorded (was the service started with --daemon?)")
	}
	if err != nil {
		return err
	}
	switch {
	case res.AlreadyGone:
		c.log.Warn("process was already gone; cleared PID record", "pid", res.PID)
		c.record(history.Event{Type: history.EventAlreadyStopped, PID: res.PID})
	case res.Killed:
		c.log.Warn("service ignored the termination signal and was killed", "pid", res.PID)
		c.record(history.Event{Type: history.EventKilled, PID: res.PID})
	default:
		fmt.Fprintf(c.out, "service stopped (PID %d)\n", res.PID)
		c.record(history.Event{Type: history.EventStopped, PID: res.PID})
	}
	return nil
}

// Status probes the recorded instance and reports PID and advertised URL.
func (c command) Status() error {
	cfg := c.loadSettings()
	st, err := c.supervisor(0).Status()
	if errors.Is(err, supervisor.ErrNotRunning) {
		return errors.New("service is not running")
	}
	if errors.Is(err, supervisor.ErrStaleRecord) {
		c.record(history.Event{Type: history.EventStaleCleared, PID: st.PID})
		return fmt.Errorf("no process with PID %d; cleared stale PID record", st.PID)
	}
	if err != nil {
		return err
	}

	url := serviceURL(cfg.AccessHost, cfg.Port)
	if st.Uptime > 0 {
		fmt.Fprintf(c.out, "service running (PID %d) at %s, up %s\n", st.PID, url, st.Uptime)
	} else {
		fmt.Fprintf(c.out, "service running (PID %d) at %s\n", st.PID, url)
	}
	return nil
}

// Restart stops the instance if one is recorded, then starts it again with
// parameters merged from flags, persisted configuration, and defaults.
func (c command) Restart(f RestartFlags) error {
	c.log.Info("restarting service")
	res, err := c.supervisor(f.Wait).Stop()
	if err != nil && !errors.Is(err, supervisor.ErrNotRunning) {
		return err
	}
	if err == nil {
		c.record(history.Event{Type: history.EventRestarted, PID: res.PID})
	}
	return c.Up(UpFlags{
		UvicornHost: f.UvicornHost,
		AccessHost:  f.AccessHost,
		Port:        f.Port,
		Workers:     f.Workers,
		LogLevel:    f.LogLevel,
		Daemon:      f.Daemon,
		NoDaemon:    f.NoDaemon,
		Command:     f.Command,
	})
}

// Health fetches /health and prints the body verbatim.
func (c command) Health(f HealthFlags) error {
	cfg := c.loadSettings()
	cl := client.New(firstNonEmpty(f.AccessHost, cfg.AccessHost), firstNonZero(f.Port, cfg.Port), 0, 0)
	c.log.Info("checking service health", "url", cl.BaseURL()+"/health")
	body, err := cl.Health()
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out, strings.TrimSpace(body))
	return nil
}

// OpenAPI downloads the schema, saves it, and opens it in the browser.
func (c command) OpenAPI(f OpenAPIFlags) error {
	cfg := c.loadSettings()
	cl := client.New(firstNonEmpty(f.AccessHost, cfg.AccessHost), firstNonZero(f.Port, cfg.Port), 0, 0)
	output := firstNonEmpty(f.Output, "openapi.json")

	c.log.Info("downloading OpenAPI schema", "url", cl.BaseURL()+"/openapi.json")
	if err := cl.FetchOpenAPI(output); err != nil {
		return err
	}
	abs, err := filepath.Abs(output)
	if err != nil {
		abs = output
	}
	fmt.Fprintf(c.out, "schema saved to %s\n", abs)
	if err := c.openFile(abs); err != nil {
		return fmt.Errorf("open schema in browser: %w", err)
	}
	return nil
}

// Docs opens the interactive documentation page in the browser.
func (c command) Docs(f DocsFlags) error {
	cfg := c.loadSettings()
	cl := client.New(firstNonEmpty(f.AccessHost, cfg.AccessHost), firstNonZero(f.Port, cfg.Port), 0, 0)
	c.log.Info("opening documentation", "url", cl.DocsURL())
	if err := c.openURL(cl.DocsURL()); err != nil {
		return fmt.Errorf("open browser: %w", err)
	}
	return nil
}

// Logs streams a log file to the terminal until interrupted.
func (c command) Logs(f LogsFlags) error {
	path := firstNonEmpty(f.File, c.defaults.ServiceLog)
	follower, err := tail.Open(path, c.out)
	if err != nil {
		return err
	}
	follower.FromStart = f.FromStart

	c.log.Info("streaming log file (Ctrl-C to stop)", "file", path)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return follower.Run(ctx)
}

// History prints recent lifecycle events, newest first.
func (c command) History(f HistoryFlags) error {
	j, err := history.Open(c.defaults.HistoryDB)
	if err != nil {
		return fmt.Errorf("open lifecycle journal: %w", err)
	}
	defer func() { _ = j.Close() }()

	events, err := j.Recent(context.Background(), f.Limit)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		fmt.Fprintln(c.out, "no lifecycle events recorded")
		return nil
	}
	for _, e := range events {
		line := fmt.Sprintf("%s  %-16s pid=%d", e.OccurredAt.Local().Format(time.RFC3339), e.Type, e.PID)
		if e.Detail != "" {
			line += "  " + e.Detail
		}
		fmt.Fprintln(c.out, line)
	}
	return nil
}

// record appends a lifecycle event, best-effort. Journal trouble is a
// warning; it never fails the command that produced the event.
func (c command) record(e history.Event) {
	j, err := history.Open(c.defaults.HistoryDB)
	if err != nil {
		c.log.Warn("lifecycle journal unavailable", "error", err)
		return
	}
	defer func() { _ = j.Close() }()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := j.Append(ctx, e); err != nil {
		c.log.Warn("could not record lifecycle event", "event", string(e.Type), "error", err)
	}
}
