package netutil

import (
	"errors"
	"net"
	"strconv"
	"testing"
)

func TestFindFreePortReturnsRequestedWhenFree(t *testing.T) {
	// Grab an ephemeral port, release it, then ask for that exact port.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	_ = ln.Close()

	got, err := FindFreePort("127.0.0.1", port)
	if err != nil {
		t.Fatalf("FindFreePort: %v", err)
	}
	if got != port {
		t.Fatalf("free port must be returned unchanged: got %d want %d", got, port)
	}
}

func TestFindFreePortSkipsOccupiedPort(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer func() { _ = ln.Close() }()
	busy := ln.Addr().(*net.TCPAddr).Port

	got, err := FindFreePort("127.0.0.1", busy)
	if err != nil {
		t.Fatalf("FindFreePort: %v", err)
	}
	if got <= busy {
		t.Fatalf("expected port above %d, got %d", busy, got)
	}
	// The returned port really is bindable after the probe released it.
	probe, err := net.Listen("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(got)))
	if err != nil {
		t.Fatalf("returned port %d not bindable: %v", got, err)
	}
	_ = probe.Close()
}

func TestFindFreePortRejectsInvalidStart(t *testing.T) {
	for _, start := range []int{0, -1, 65536} {
		if _, err := FindFreePort("127.0.0.1", start); err == nil {
			t.Fatalf("start %d must be rejected", start)
		}
	}
}

func TestFindFreePortExhaustion(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:"+strconv.Itoa(maxPort))
	if err != nil {
		t.Skipf("cannot bind %d: %v", maxPort, err)
	}
	defer func() { _ = ln.Close() }()

	_, err = FindFreePort("127.0.0.1", maxPort)
	if !errors.Is(err, ErrNoFreePort) {
		t.Fatalf("expected ErrNoFreePort, got %v", err)
	}
}
