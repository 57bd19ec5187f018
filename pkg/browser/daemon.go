package browser

import (
	"fmt"
	"os"
)

// DaemonStatus describes the shared detached browser, if any.
type DaemonStatus struct {
	Running bool `json:"running"`
	Port    int  `json:"port,omitempty"`
	PID     int  `json:"pid,omitempty"`
}

// Status reports whether a detached browser recorded in the port file is
// reachable. A recorded-but-dead port is cleared as a side effect, per
// the cache-not-truth policy.
func Status(ports *PortFile) DaemonStatus {
	port, pid, ok := ports.Load()
	if !ok {
		return DaemonStatus{}
	}
	if !ports.VerifyLive(port) {
		ports.Clear()
		return DaemonStatus{}
	}
	return DaemonStatus{Running: true, Port: port, PID: pid}
}

// StopDaemon terminates the detached browser recorded in the port file
// and clears the file. This is the only code path that kills the shared
// process; session teardown never does.
func StopDaemon(ports *PortFile) (DaemonStatus, error) {
	port, pid, ok := ports.Load()
	if !ok {
		return DaemonStatus{}, nil
	}

	status := DaemonStatus{Port: port, PID: pid}
	if pid > 0 {
		proc, err := os.FindProcess(pid)
		if err == nil {
			if err := proc.Kill(); err != nil && ports.VerifyLive(port) {
				return status, fmt.Errorf("failed to stop browser pid %d: %w", pid, err)
			}
		}
	}

	if err := ports.Clear(); err != nil {
		return status, err
	}
	return status, nil
}
