package supervisor

import (
	"strings"
	"testing"
)

func TestArgsFull(t *testing.T) {
	s := LaunchSpec{Host: "0.0.0.0", Port: 8000, Workers: 2, LogLevel: "info"}
	got := strings.Join(s.Args(), " ")
	want := "--host 0.0.0.0 --port 8000 --workers 2 --log-level info"
	if got != want {
		t.Fatalf("args: got %q want %q", got, want)
	}
}

func TestArgsOmitsUnsetAndAddsReload(t *testing.T) {
	s := LaunchSpec{Host: "127.0.0.1", Port: 9000, Reload: true}
	got := strings.Join(s.Args(), " ")
	if strings.Contains(got, "--workers") || strings.Contains(got, "--log-level") {
		t.Fatalf("unset parameters must be omitted: %q", got)
	}
	if !strings.HasSuffix(got, "--reload") {
		t.Fatalf("reload flag missing: %q", got)
	}
}

func TestBuildCommandPlainArgv(t *testing.T) {
	s := LaunchSpec{Command: "mcp-aemps-server", Host: "0.0.0.0", Port: 8000, Workers: 1, LogLevel: "info"}
	cmd := s.BuildCommand()
	if len(cmd.Args) == 0 || !strings.HasSuffix(cmd.Args[0], "mcp-aemps-server") {
		t.Fatalf("unexpected argv[0]: %v", cmd.Args)
	}
	joined := strings.Join(cmd.Args, " ")
	for _, want := range []string{"--host 0.0.0.0", "--port 8000", "--workers 1", "--log-level info"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("missing %q in %q", want, joined)
		}
	}
}

func TestBuildCommandShellMetachars(t *testing.T) {
	requireUnix(t)
	s := LaunchSpec{Command: "env FOO=1 server | tee out.log", Host: "0.0.0.0", Port: 8000}
	cmd := s.BuildCommand()
	if cmd.Args[0] != "/bin/sh" || cmd.Args[1] != "-c" {
		t.Fatalf("metacharacters must route through the shell: %v", cmd.Args)
	}
}

func TestBuildCommandEmpty(t *testing.T) {
	s := LaunchSpec{}
	// Port 0 still renders; an empty Command must not panic.
	if cmd := s.BuildCommand(); cmd == nil {
		t.Fatal("nil cmd for empty spec")
	}
}
