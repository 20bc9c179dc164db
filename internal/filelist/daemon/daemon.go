// Package daemon manages the background service process through its PID and
// log files.
package daemon

import (
	"fmt"
	"os"
	"syscall"
	"time"

	"github.com/dimasma0305/filelist/internal/filelist/errors"
	"github.com/dimasma0305/filelist/internal/log"
)

// Process states reported by GetStatus
const (
	StateRunning = "running"
	StateStopped = "stopped"
	StateDead    = "dead"
	StateError   = "error"
)

// Status describes the daemon process as seen from its PID file
type Status struct {
	State   string `json:"status"`
	Running bool   `json:"running"`
	PID     int    `json:"pid,omitempty"`
	PIDFile string `json:"pid_file"`
	Message string `json:"message"`
}

func alive(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	// signal 0 only checks that the process exists
	return process.Signal(syscall.Signal(0)) == nil
}

// GetStatus inspects pidFile. A stale PID file is removed.
func GetStatus(pidFile string) Status {
	status := Status{PIDFile: pidFile}

	pid, err := ReadPIDFromFile(pidFile)
	if err != nil {
		if os.IsNotExist(err) {
			status.State = StateStopped
			status.Message = "PID file not found"
		} else {
			status.State = StateError
			status.Message = err.Error()
		}
		return status
	}
	status.PID = pid

	if !alive(pid) {
		status.State = StateDead
		if removeErr := os.Remove(pidFile); removeErr != nil && !os.IsNotExist(removeErr) {
			status.Message = fmt.Sprintf("Process not running, failed to clean stale PID file: %v", removeErr)
		} else {
			status.Message = "Process not running (cleaned up stale PID file)"
		}
		return status
	}

	status.State = StateRunning
	status.Running = true
	status.Message = "Daemon is running"
	return status
}

// StopDaemon sends SIGTERM to the daemon and waits up to timeout for it to
// exit before killing it.
func StopDaemon(pidFile string, timeout time.Duration) error {
	pid, err := ReadPIDFromFile(pidFile)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.Wrap(errors.ErrServiceNotRunning, "PID file not found")
		}
		return err
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("failed to find process: %w", err)
	}

	if err := process.Signal(syscall.SIGTERM); err != nil {
		_ = os.Remove(pidFile)
		return errors.Wrapf(errors.ErrServiceNotRunning, "signal process %d: %v", pid, err)
	}

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if !alive(pid) {
			break
		}
		time.Sleep(100 * time.Millisecond)
	}

	if alive(pid) {
		log.Info("Process still running, sending SIGKILL...")
		if err := process.Kill(); err != nil {
			return fmt.Errorf("failed to kill process %d: %w", pid, err)
		}
	}

	if err := os.Remove(pidFile); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove PID file: %w", err)
	}

	log.Info("✅ filelist daemon stopped")
	return nil
}
