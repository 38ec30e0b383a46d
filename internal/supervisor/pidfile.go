package supervisor

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ReadPIDFile reads a PID record: a single positive integer on the first line.
func ReadPIDFile(path string) (int, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	first, _, _ := strings.Cut(string(b), "\n")
	pid, err := strconv.Atoi(strings.TrimSpace(first))
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("pid record %s does not contain a valid PID", path)
	}
	return pid, nil
}

// WritePIDFile replaces the PID record wholesale.
func WritePIDFile(path string, pid int) error {
	return os.WriteFile(path, []byte(strconv.Itoa(pid)+"\n"), 0o600)
}

// RemovePIDFile removes the PID record, best-effort.
func RemovePIDFile(path string) {
	_ = os.Remove(path)
}
