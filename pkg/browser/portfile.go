package browser

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// PortFileName is the well-known file, under the user's home directory,
// where a detached browser's debug port is recorded so independent CLI
// invocations can discover and reuse it.
const PortFileName = ".webscraper-browser-port"

// PortFile persists the debug port of a shared detached browser process.
// The file is a cache, never a source of truth: every port read from it
// must pass VerifyLive before being trusted, and a dead port is cleared.
type PortFile struct {
	path        string
	dialTimeout time.Duration
}

// NewPortFile creates a registry at the given path. An empty path uses
// PortFileName in the user's home directory.
func NewPortFile(path string) (*PortFile, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve home directory: %w", err)
		}
		path = filepath.Join(home, PortFileName)
	}
	return &PortFile{
		path:        path,
		dialTimeout: time.Second,
	}, nil
}

// Path returns the backing file path.
func (p *PortFile) Path() string {
	return p.path
}

// Load reads the recorded port and pid. ok is false when the file is
// absent or unparsable; an unparsable file is treated the same as a
// missing one. The pid is zero for files written by older versions that
// recorded only the port.
func (p *PortFile) Load() (port, pid int, ok bool) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		return 0, 0, false
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	port, err = strconv.Atoi(strings.TrimSpace(lines[0]))
	if err != nil || port <= 0 {
		return 0, 0, false
	}
	if len(lines) > 1 {
		pid, _ = strconv.Atoi(strings.TrimSpace(lines[1]))
	}
	return port, pid, true
}

// Save atomically records the port and owning pid by writing to a
// temporary file and renaming it over the target, so a concurrent reader
// never observes a partial write.
func (p *PortFile) Save(port, pid int) error {
	tmp, err := os.CreateTemp(filepath.Dir(p.path), ".webscraper-port-*")
	if err != nil {
		return fmt.Errorf("failed to create temp port file: %w", err)
	}
	tmpPath := tmp.Name()

	_, writeErr := fmt.Fprintf(tmp, "%d\n%d\n", port, pid)
	closeErr := tmp.Close()
	if writeErr != nil || closeErr != nil {
		os.Remove(tmpPath)
		if writeErr != nil {
			return fmt.Errorf("failed to write port file: %w", writeErr)
		}
		return fmt.Errorf("failed to write port file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, p.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace port file: %w", err)
	}
	return nil
}

// Clear removes the file. Already-absent is not an error.
func (p *PortFile) Clear() error {
	err := os.Remove(p.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove port file: %w", err)
	}
	return nil
}

// VerifyLive reports whether anything is accepting connections on the
// port. Refused, timed out, or otherwise failing dials all mean not-live.
func (p *PortFile) VerifyLive(port int) bool {
	conn, err := net.DialTimeout("tcp", net.JoinHostPort("localhost", strconv.Itoa(port)), p.dialTimeout)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// LoadLive combines Load and VerifyLive per the registry policy: a cached
// port is returned only if something is listening on it; a dead port
// clears the file and reports absent.
func (p *PortFile) LoadLive() (port int, ok bool) {
	port, _, ok = p.Load()
	if !ok {
		return 0, false
	}
	if !p.VerifyLive(port) {
		p.Clear()
		return 0, false
	}
	return port, true
}
