package browser

import (
	"fmt"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"time"
)

// ProcessHandle identifies a detached browser process. It is a plain
// value, not a wrapper around os.Process: the process deliberately
// outlives the CLI invocation that launched it, and the invocation that
// eventually stops it may be a different one entirely.
type ProcessHandle struct {
	PID         int    `json:"pid"`
	Port        int    `json:"port"`
	UserDataDir string `json:"user_data_dir"`
}

// LaunchOptions configures a detached browser launch.
type LaunchOptions struct {
	Headless bool

	// Port is the fixed debug port to listen on. Zero picks a free one.
	Port int

	// ExecutablePath overrides executable discovery.
	ExecutablePath string
}

// Launcher starts detached browser processes with remote debugging
// enabled and waits for their debug port to come up.
type Launcher struct {
	// sleep is replaceable so readiness-poll tests can simulate time.
	sleep func(time.Duration)

	// dial probes a port for liveness; replaceable in tests.
	dial func(port int) bool
}

// NewLauncher creates a launcher with real clock and dialer.
func NewLauncher() *Launcher {
	return &Launcher{
		sleep: time.Sleep,
		dial: func(port int) bool {
			conn, err := net.DialTimeout("tcp", net.JoinHostPort("localhost", strconv.Itoa(port)), time.Second)
			if err != nil {
				return false
			}
			conn.Close()
			return true
		},
	}
}

// executableCandidates returns the ordered platform-specific well-known
// install locations for Chrome and Chromium.
func executableCandidates() []string {
	switch runtime.GOOS {
	case "darwin":
		return []string{
			"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
			"/Applications/Chromium.app/Contents/MacOS/Chromium",
		}
	case "windows":
		return []string{
			filepath.Join(os.Getenv("ProgramFiles"), "Google", "Chrome", "Application", "chrome.exe"),
			filepath.Join(os.Getenv("ProgramFiles(x86)"), "Google", "Chrome", "Application", "chrome.exe"),
			filepath.Join(os.Getenv("LocalAppData"), "Google", "Chrome", "Application", "chrome.exe"),
		}
	default:
		return []string{
			"/usr/bin/google-chrome",
			"/usr/bin/chromium-browser",
			"/usr/bin/chromium",
		}
	}
}

// FindExecutable returns the first browser executable that exists among
// the platform's well-known locations. Absence is a reportable
// *ExecutableNotFoundError, never a silent fallback.
func (l *Launcher) FindExecutable() (string, error) {
	candidates := executableCandidates()
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", &ExecutableNotFoundError{Searched: candidates}
}

// findFreePort asks the kernel for an unused TCP port.
func findFreePort() (int, error) {
	l, err := net.Listen("tcp", "localhost:0")
	if err != nil {
		return 0, fmt.Errorf("failed to find free port: %w", err)
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}

// launchArgs builds the deterministic flag set for a detached browser.
// The isolated user data dir avoids the profile picker and keeps the
// shared browser out of the user's real profile.
func launchArgs(port int, userDataDir string, headless bool) []string {
	args := []string{
		"--remote-debugging-port=" + strconv.Itoa(port),
		"--user-data-dir=" + userDataDir,
		"--no-first-run",
		"--no-default-browser-check",
		"--disable-popup-blocking",
		"--disable-translate",
		"--disable-extensions",
		"--disable-background-networking",
		"--disable-sync",
		"--disable-default-apps",
		"--mute-audio",
		"--hide-scrollbars",
	}
	if headless {
		args = append(args, "--headless=new")
	}
	return args
}

// Launch starts a browser as a detached process with output discarded.
// It returns as soon as the process has started; callers decide how long
// to wait for readiness via WaitUntilReady.
func (l *Launcher) Launch(opts LaunchOptions) (*ProcessHandle, error) {
	execPath := opts.ExecutablePath
	if execPath == "" {
		found, err := l.FindExecutable()
		if err != nil {
			return nil, err
		}
		execPath = found
	}

	port := opts.Port
	if port == 0 {
		free, err := findFreePort()
		if err != nil {
			return nil, err
		}
		port = free
	}

	userDataDir, err := os.MkdirTemp("", "webscraper-chrome-")
	if err != nil {
		return nil, fmt.Errorf("failed to create user data dir: %w", err)
	}

	cmd := exec.Command(execPath, launchArgs(port, userDataDir, opts.Headless)...)
	// nil Stdout/Stderr discard output; the browser must not write to the
	// CLI's JSON stdout protocol.
	if err := cmd.Start(); err != nil {
		os.RemoveAll(userDataDir)
		return nil, fmt.Errorf("failed to start %s: %w", execPath, err)
	}

	pid := cmd.Process.Pid
	// Release detaches the child so its lifetime is not tied to ours.
	if err := cmd.Process.Release(); err != nil {
		return nil, fmt.Errorf("failed to detach browser process: %w", err)
	}

	return &ProcessHandle{PID: pid, Port: port, UserDataDir: userDataDir}, nil
}

// WaitUntilReady polls the debug port at a fixed interval until it
// accepts a connection or the attempt budget is exhausted. Exhaustion
// returns false rather than an error; the caller decides whether that is
// retryable.
func (l *Launcher) WaitUntilReady(port, maxAttempts int, interval time.Duration) bool {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if l.dial(port) {
			return true
		}
		l.sleep(interval)
	}
	return false
}
