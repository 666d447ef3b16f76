// Package pidfile records the running daemon's PID so the enable and
// disable commands can find and signal it.
package pidfile

import (
	"os"
	"strconv"
	"strings"
	"syscall"

	"gitlab.com/tozd/go/errors"
)

// Write records the current process's PID at path. A pidfile that already
// records another live process is refused rather than stolen; a stale one
// (dead process, junk content) is overwritten.
func Write(path string) error {
	if pid, err := Read(path); err == nil && pid != os.Getpid() {
		return errors.Errorf("pidfile %s already claimed by running process %d", path, pid)
	}

	pid := strconv.Itoa(os.Getpid())
	if err := os.WriteFile(path, []byte(pid+"\n"), 0644); err != nil {
		return errors.Errorf("writing pidfile: %w", err)
	}
	return nil
}

// Read returns the PID recorded at path, verifying the process still exists
func Read(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, errors.Errorf("reading pidfile: %w", err)
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, errors.Errorf("pidfile %s is corrupt: %q", path, strings.TrimSpace(string(data)))
	}

	// Signal 0 probes for existence without delivering anything
	proc, err := os.FindProcess(pid)
	if err != nil {
		return 0, errors.Errorf("finding process %d: %w", pid, err)
	}
	if err := proc.Signal(syscall.Signal(0)); err != nil {
		return 0, errors.Errorf("process %d from pidfile is not running: %w", pid, err)
	}

	return pid, nil
}

// Remove deletes the pidfile; a missing file is not an error
func Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.Errorf("removing pidfile: %w", err)
	}
	return nil
}
