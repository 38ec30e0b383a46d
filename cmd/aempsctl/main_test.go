package main

import (
	"bytes"
	"io"
	"log/slog"
	"testing"

	"github.com/mcp-aemps/aempsctl/internal/config"
)

func TestRootHasAllVerbs(t *testing.T) {
	root := buildRoot(config.Defaults(t.TempDir()), slog.New(slog.NewTextHandler(io.Discard, nil)), io.Discard)
	want := []string{"up", "dev", "down", "status", "restart", "health", "openapi", "docs", "logs", "history"}
	for _, name := range want {
		found := false
		for _, sub := range root.Commands() {
			if sub.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("missing subcommand %q", name)
		}
	}
}

func TestRootHelp(t *testing.T) {
	out := &bytes.Buffer{}
	root := buildRoot(config.Defaults(t.TempDir()), slog.New(slog.NewTextHandler(io.Discard, nil)), out)
	root.SetOut(out)
	root.SetErr(out)
	root.SetArgs([]string{"--help"})
	if err := root.Execute(); err != nil {
		t.Fatalf("--help: %v", err)
	}
	if !bytes.Contains(out.Bytes(), []byte("aempsctl")) {
		t.Fatalf("unexpected help output: %s", out.String())
	}
}

func TestDocumentedFlagNames(t *testing.T) {
	root := buildRoot(config.Defaults(t.TempDir()), slog.New(slog.NewTextHandler(io.Discard, nil)), io.Discard)
	cases := map[string][]string{
		"up":      {"uvicorn-host", "access-host", "port", "workers", "log-level", "daemon", "no-daemon"},
		"dev":     {"uvicorn-host", "access-host", "port"},
		"restart": {"uvicorn-host", "access-host", "port", "workers", "log-level", "daemon", "no-daemon"},
	}
	for _, sub := range root.Commands() {
		want, ok := cases[sub.Name()]
		if !ok {
			continue
		}
		for _, name := range want {
			if sub.Flags().Lookup(name) == nil {
				t.Errorf("%s: missing flag --%s", sub.Name(), name)
			}
		}
	}
}

func TestUpParsesUvicornHostFlag(t *testing.T) {
	out := &bytes.Buffer{}
	root := buildRoot(config.Defaults(t.TempDir()), slog.New(slog.NewTextHandler(io.Discard, nil)), out)
	root.SetOut(out)
	root.SetErr(out)
	root.SetArgs([]string{"up", "--uvicorn-host", "127.0.0.1", "--help"})
	if err := root.Execute(); err != nil {
		t.Fatalf("up --uvicorn-host should parse: %v", err)
	}
}

func TestUnknownCommandFails(t *testing.T) {
	root := buildRoot(config.Defaults(t.TempDir()), slog.New(slog.NewTextHandler(io.Discard, nil)), io.Discard)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"frobnicate"})
	if err := root.Execute(); err == nil {
		t.Fatal("expected an error for an unknown subcommand")
	}
}

func TestDownViaCobraWithoutRecord(t *testing.T) {
	root := buildRoot(config.Defaults(t.TempDir()), slog.New(slog.NewTextHandler(io.Discard, nil)), io.Discard)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"down"})
	if err := root.Execute(); err == nil {
		t.Fatal("expected down to fail when nothing is recorded")
	}
}
