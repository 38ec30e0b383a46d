package netutil

import (
	"errors"
	"fmt"
	"net"
	"strconv"
)

// maxPort bounds the scan at the top of the valid TCP port range.
const maxPort = 65535

// ErrNoFreePort is returned when every port from the requested one up to
// the end of the port range is already bound.
var ErrNoFreePort = errors.New("no free port in range")

// FindFreePort returns the smallest port >= start that can be bound on host.
// The probe listener is closed immediately; the port is proven free only at
// the instant of the check. A race with another process binding the same port
// before the service does is accepted.
func FindFreePort(host string, start int) (int, error) {
	if start < 1 || start > maxPort {
		return 0, fmt.Errorf("start port %d outside valid range 1-%d", start, maxPort)
	}
	for port := start; port <= maxPort; port++ {
		ln, err := net.Listen("tcp", net.JoinHostPort(host, strconv.Itoa(port)))
		if err != nil {
			continue
		}
		_ = ln.Close()
		return port, nil
	}
	return 0, fmt.Errorf("scanned %d-%d on %s: %w", start, maxPort, host, ErrNoFreePort)
}
