package main

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mcp-aemps/aempsctl/internal/config"
	"github.com/mcp-aemps/aempsctl/internal/logger"
)

func main() {
	log := logger.New(os.Stderr, slog.LevelInfo)
	root := buildRoot(config.Defaults(""), log, os.Stdout)

	if err := root.Execute(); err != nil {
		log.Error(err.Error())
		os.Exit(1)
	}
}

// buildRoot wires the root command and all subcommands against the given
// defaults, logger and output writer.
func buildRoot(defaults config.DefaultSettings, log *slog.Logger, out io.Writer) *cobra.Command {
	upFlags := &UpFlags{}
	devFlags := &DevFlags{}
	downFlags := &DownFlags{}
	restartFlags := &RestartFlags{}
	healthFlags := &HealthFlags{}
	openapiFlags := &OpenAPIFlags{}
	docsFlags := &DocsFlags{}
	logsFlags := &LogsFlags{}
	historyFlags := &HistoryFlags{}

	ctl := newCommand(defaults, log, out)

	root := createRootCommand()
	root.AddCommand(
		createUpCommand(ctl, upFlags),
		createDevCommand(ctl, devFlags),
		createDownCommand(ctl, downFlags),
		createStatusCommand(ctl),
		createRestartCommand(ctl, restartFlags),
		createHealthCommand(ctl, healthFlags),
		createOpenAPICommand(ctl, openapiFlags),
		createDocsCommand(ctl, docsFlags),
		createLogsCommand(ctl, logsFlags),
		createHistoryCommand(ctl, historyFlags),
	)
	return root
}

func createRootCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "aempsctl",
		Short: "Lifecycle manager for the MCP-AEMPS medicines registry service",
		Long: `aempsctl starts, stops and inspects a local MCP-AEMPS server instance.

Listener settings given as flags are remembered in a small configuration
file next to the working directory, so later invocations reuse them.

Examples:
  aempsctl up --daemon              # Start in the background
  aempsctl status                   # Is it running?
  aempsctl health                   # Probe the /health endpoint
  aempsctl down                     # Stop the background instance`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
}

// hostPortFlags registers the shared listener flags. Zero defaults let the
// dispatcher tell "not set" apart from an explicit value.
func hostPortFlags(cmd *cobra.Command, uvicornHost, accessHost *string, port *int) {
	if uvicornHost != nil {
		cmd.Flags().StringVar(uvicornHost, "uvicorn-host", "", "bind address for the server (default 0.0.0.0)")
	}
	cmd.Flags().StringVar(accessHost, "access-host", "", "host used in printed URLs (default localhost)")
	cmd.Flags().IntVar(port, "port", 0, "TCP port (default 8000, or the last one used)")
}

func createUpCommand(ctl command, f *UpFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "up",
		Short: "Start the service in production mode",
		Long: `Start the MCP-AEMPS server. By default the service runs in the foreground
until interrupted; with --daemon it is detached and its PID recorded so
'aempsctl down' can stop it later.

If the requested port is taken, the next free one is used and remembered.

Examples:
  aempsctl up
  aempsctl up --daemon --port=9000
  aempsctl up --daemon --workers=4 --log-level=warning`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctl.Up(*f)
		},
	}
	hostPortFlags(cmd, &f.UvicornHost, &f.AccessHost, &f.Port)
	cmd.Flags().IntVar(&f.Workers, "workers", 0, "number of worker processes (default 1)")
	cmd.Flags().StringVar(&f.LogLevel, "log-level", "", "server log level (default info)")
	cmd.Flags().BoolVarP(&f.Daemon, "daemon", "d", false, "run detached in the background")
	cmd.Flags().BoolVar(&f.NoDaemon, "no-daemon", false, "run in the foreground even if --daemon is set")
	cmd.Flags().StringVar(&f.Command, "command", "", "server launch command (default mcp-aemps-server)")
	return cmd
}

func createDevCommand(ctl command, f *DevFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dev",
		Short: "Start the service in development mode",
		Long: `Start the MCP-AEMPS server in the foreground with auto-reload and debug
logging. Development mode never detaches.

Examples:
  aempsctl dev
  aempsctl dev --port=8001`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctl.Dev(*f)
		},
	}
	hostPortFlags(cmd, &f.UvicornHost, &f.AccessHost, &f.Port)
	cmd.Flags().StringVar(&f.Command, "command", "", "server launch command (default mcp-aemps-server)")
	return cmd
}

func createDownCommand(ctl command, f *DownFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "down",
		Short: "Stop the background service",
		Long: `Stop the instance recorded by 'aempsctl up --daemon'. The service gets a
termination signal first and is killed only if it does not exit within
the wait window.

Examples:
  aempsctl down
  aempsctl down --wait=10s`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctl.Down(*f)
		},
	}
	cmd.Flags().DurationVar(&f.Wait, "wait", 3*time.Second, "time to wait before force-killing")
	return cmd
}

func createStatusCommand(ctl command) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether the service is running",
		Long: `Report the recorded background instance: PID, advertised URL and uptime.
A record pointing at a dead process is cleared.

Examples:
  aempsctl status`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctl.Status()
		},
	}
}

func createRestartCommand(ctl command, f *RestartFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restart",
		Short: "Restart the service",
		Long: `Stop the recorded instance (if any) and start it again. Without flags the
previously persisted listener settings are reused, so the service comes
back on the same port.

Examples:
  aempsctl restart --daemon
  aempsctl restart --daemon --port=9000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctl.Restart(*f)
		},
	}
	hostPortFlags(cmd, &f.UvicornHost, &f.AccessHost, &f.Port)
	cmd.Flags().IntVar(&f.Workers, "workers", 0, "number of worker processes (default 1)")
	cmd.Flags().StringVar(&f.LogLevel, "log-level", "", "server log level (default info)")
	cmd.Flags().BoolVarP(&f.Daemon, "daemon", "d", false, "run detached in the background")
	cmd.Flags().BoolVar(&f.NoDaemon, "no-daemon", false, "run in the foreground even if --daemon is set")
	cmd.Flags().StringVar(&f.Command, "command", "", "server launch command (default mcp-aemps-server)")
	cmd.Flags().DurationVar(&f.Wait, "wait", 3*time.Second, "time to wait before force-killing")
	return cmd
}

func createHealthCommand(ctl command, f *HealthFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Probe the service health endpoint",
		Long: `Fetch /health from the running service and print the response body.

Examples:
  aempsctl health
  aempsctl health --port=9000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctl.Health(*f)
		},
	}
	hostPortFlags(cmd, nil, &f.AccessHost, &f.Port)
	return cmd
}

func createOpenAPICommand(ctl command, f *OpenAPIFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "openapi",
		Short: "Download the OpenAPI schema",
		Long: `Download /openapi.json from the running service, save it and open the
saved file in the default browser.

Examples:
  aempsctl openapi
  aempsctl openapi --output=schema.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctl.OpenAPI(*f)
		},
	}
	cmd.Flags().StringVarP(&f.Output, "output", "o", "", "path for the saved schema (default openapi.json)")
	hostPortFlags(cmd, nil, &f.AccessHost, &f.Port)
	return cmd
}

func createDocsCommand(ctl command, f *DocsFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docs",
		Short: "Open the interactive API documentation",
		Long: `Open the service's /docs page in the default browser.

Examples:
  aempsctl docs`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctl.Docs(*f)
		},
	}
	hostPortFlags(cmd, nil, &f.AccessHost, &f.Port)
	return cmd
}

func createLogsCommand(ctl command, f *LogsFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Stream a service log file",
		Long: `Follow a log file in the terminal until interrupted, like tail -f. By
default the capture file of the background instance is followed.

Examples:
  aempsctl logs
  aempsctl logs --file=uvicorn.log --from-start`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctl.Logs(*f)
		},
	}
	cmd.Flags().StringVarP(&f.File, "file", "f", "", "log file to follow (default the daemon capture file)")
	cmd.Flags().BoolVar(&f.FromStart, "from-start", false, "print existing content before following")
	return cmd
}

func createHistoryCommand(ctl command, f *HistoryFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent lifecycle events",
		Long: `List recent start/stop/restart events recorded by this tool, newest
first.

Examples:
  aempsctl history
  aempsctl history --limit=50`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctl.History(*f)
		},
	}
	cmd.Flags().IntVar(&f.Limit, "limit", 20, "maximum number of events to show")
	return cmd
}
