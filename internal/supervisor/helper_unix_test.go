//go:build !windows

package supervisor

import "testing"

func requireUnix(t *testing.T) {
	t.Helper()
}
