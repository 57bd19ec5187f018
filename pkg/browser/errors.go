package browser

import (
	"fmt"
	"strings"
)

// ExecutableNotFoundError reports that no browser executable exists at any
// of the searched well-known locations. Not retryable.
type ExecutableNotFoundError struct {
	Searched []string
}

func (e *ExecutableNotFoundError) Error() string {
	return fmt.Sprintf("no Chrome or Chromium executable found (searched %s)",
		strings.Join(e.Searched, ", "))
}

// Suggestion returns user-facing remediation advice.
func (e *ExecutableNotFoundError) Suggestion() string {
	return "Install Chrome or Chromium, or run: playwright install chromium"
}

// LaunchTimeoutError reports that a launched browser process never opened
// its debug port within the attempt budget. Retryable once after clearing
// any cached port.
type LaunchTimeoutError struct {
	Port     int
	Attempts int
}

func (e *LaunchTimeoutError) Error() string {
	return fmt.Sprintf("browser did not open debug port %d after %d attempts", e.Port, e.Attempts)
}

func (e *LaunchTimeoutError) Suggestion() string {
	return "The browser may be slow to start on this machine. Retry the command; if it persists, check for crashed browser processes."
}

// AttachError reports that connecting to a debug endpoint failed. For
// cached ports this means the port file is stale and should be cleared.
type AttachError struct {
	Endpoint string
	Err      error
}

func (e *AttachError) Error() string {
	return fmt.Sprintf("could not attach to browser at %s: %v", e.Endpoint, e.Err)
}

func (e *AttachError) Unwrap() error { return e.Err }

func (e *AttachError) Suggestion() string {
	return "Check that a browser with --remote-debugging-port is running at the endpoint, or omit --cdp to launch one."
}

// NavigationError wraps a driver navigation failure with the target URL.
type NavigationError struct {
	URL string
	Err error
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("failed to navigate to %s: %v", e.URL, e.Err)
}

func (e *NavigationError) Unwrap() error { return e.Err }

// Suggestion inspects the raw driver message once, at construction time,
// to pick remediation advice. Control flow never branches on this text.
func (e *NavigationError) Suggestion() string {
	msg := strings.ToLower(e.Err.Error())
	switch {
	case strings.Contains(msg, "net::err_name_not_resolved"):
		return "Check if the URL is correct and the domain exists."
	case strings.Contains(msg, "net::err_connection_refused"):
		return "The server refused the connection. Check if the URL and port are correct."
	case strings.Contains(msg, "net::err_proxy_connection_failed"):
		return "Proxy connection failed. Check your --proxy setting."
	case strings.Contains(msg, "timeout"):
		return "Try increasing --timeout or check if the page is accessible."
	default:
		return "Check if the URL is correct and accessible."
	}
}

// TimeoutError reports a bounded wait that exceeded its budget. It always
// carries the operation name and the configured duration.
type TimeoutError struct {
	Operation string
	TimeoutMs float64
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s timed out after %.0fms", e.Operation, e.TimeoutMs)
}

func (e *TimeoutError) Suggestion() string {
	return "Try increasing --timeout or check if the page/selector is accessible."
}

// Suggester is implemented by errors that carry remediation advice for
// the user-facing error object.
type Suggester interface {
	Suggestion() string
}
