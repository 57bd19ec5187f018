package browser

import (
	"time"

	"github.com/playwright-community/playwright-go"
)

// Mode selects the strategy used to obtain a live browser for a session.
type Mode string

const (
	// ModeFresh launches an ephemeral browser owned by the session.
	ModeFresh Mode = "fresh"

	// ModeCDP attaches to an already-running browser over the Chrome
	// DevTools Protocol. The remote browser is never owned.
	ModeCDP Mode = "cdp"

	// ModeProfile launches with a persistent user profile directory so
	// cookies and extensions survive across runs.
	ModeProfile Mode = "profile"

	// ModePersistent attaches to a shared detached browser process,
	// launching one first if none is reachable. Closing the session
	// disconnects but leaves the process running for other invocations.
	ModePersistent Mode = "persistent"
)

// valid reports whether m is one of the known modes.
func (m Mode) valid() bool {
	switch m {
	case ModeFresh, ModeCDP, ModeProfile, ModePersistent:
		return true
	}
	return false
}

// ResolveMode applies the default strategy selection when the caller did
// not pin a mode. Headless runs get a fresh browser (nothing visible to
// reuse); headed runs share one persistent window across invocations.
func ResolveMode(explicit Mode, headless bool) Mode {
	if explicit != "" {
		return explicit
	}
	if headless {
		return ModeFresh
	}
	return ModePersistent
}

// Session is one addressable browser surface, keyed by a caller-supplied
// identifier. The browser handle is exclusively owned unless the mode is
// ModePersistent, in which case the underlying OS process is shared with
// other CLI invocations and must not be killed on close.
type Session struct {
	ID      string
	Mode    Mode
	Browser playwright.Browser
	Context playwright.BrowserContext
	Page    playwright.Page

	// Process is set only when this invocation launched the detached
	// browser itself. Ownership is shared with the port file; any other
	// process that attaches may outlive us.
	Process *ProcessHandle

	CreatedAt  time.Time
	LastUsedAt time.Time
}

// ConnectOptions configures session acquisition.
type ConnectOptions struct {
	// Mode pins a connection strategy. Empty means resolve from Headless
	// per ResolveMode.
	Mode Mode

	// Headless controls whether launched browsers run without a window.
	Headless bool

	// CDPEndpoint is the debug endpoint for ModeCDP, e.g.
	// "http://localhost:9222".
	CDPEndpoint string

	// UserDataDir is the persistent profile directory for ModeProfile.
	UserDataDir string

	// ExecutablePath overrides browser executable discovery.
	ExecutablePath string

	// Proxy is an optional proxy server URL applied to launched browsers.
	Proxy string

	// UserAgent overrides the context user agent on freshly created
	// contexts.
	UserAgent string

	// Timeout is the default timeout in milliseconds applied to page
	// operations. Zero means DefaultTimeout.
	Timeout float64
}

// SessionInfo is the registry view of a session, safe to serialize.
type SessionInfo struct {
	ID         string    `json:"id"`
	Mode       Mode      `json:"mode"`
	URL        string    `json:"url"`
	CreatedAt  time.Time `json:"created_at"`
	LastUsedAt time.Time `json:"last_used_at"`
}

const (
	// DefaultSessionID keys sessions when the caller supplies none.
	DefaultSessionID = "default"

	// DefaultTimeout is the default page operation timeout in milliseconds.
	DefaultTimeout = 30000.0
)
