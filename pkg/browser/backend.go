package browser

import (
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/nitaiaharoni1/webscraper-cli/pkg/logging"
)

// ReadyAttempts and ReadyInterval bound how long a freshly launched
// detached browser gets to bring its debug port up before the launch is
// reported as timed out.
const (
	ReadyAttempts = 20
	ReadyInterval = 500 * time.Millisecond

	attachAttempts = 20
	attachInterval = 500 * time.Millisecond
)

// connection is the live triple a backend produces, plus the detached
// process handle when this invocation launched one.
type connection struct {
	browser playwright.Browser
	context playwright.BrowserContext
	page    playwright.Page
	process *ProcessHandle
}

// connector obtains a connection for a mode. It is an interface so the
// session manager can be tested without a real driver.
type connector interface {
	Connect(opts ConnectOptions) (*connection, error)
}

// playwrightConnector implements every mode on top of the shared
// Playwright driver instance.
type playwrightConnector struct {
	pw       *playwright.Playwright
	launcher *Launcher
	ports    *PortFile
	log      *logging.Logger

	// The persistent strategy's collaborators are fields, like
	// Launcher.sleep and dial, so its branches are testable without a
	// driver.
	attach func(endpoint string) (*connection, error)
	launch func(opts LaunchOptions) (*ProcessHandle, error)
	wait   func(port, maxAttempts int, interval time.Duration) bool
}

func newPlaywrightConnector(pw *playwright.Playwright, launcher *Launcher, ports *PortFile, log *logging.Logger) *playwrightConnector {
	c := &playwrightConnector{pw: pw, launcher: launcher, ports: ports, log: log}
	c.attach = c.attachCDP
	c.launch = launcher.Launch
	c.wait = launcher.WaitUntilReady
	return c
}

func (c *playwrightConnector) Connect(opts ConnectOptions) (*connection, error) {
	switch opts.Mode {
	case ModeFresh:
		return c.connectFresh(opts)
	case ModeCDP:
		if opts.CDPEndpoint == "" {
			return nil, fmt.Errorf("cdp mode requires a debug endpoint")
		}
		return c.attach(opts.CDPEndpoint)
	case ModeProfile:
		return c.connectProfile(opts)
	case ModePersistent:
		return c.connectPersistent(opts)
	default:
		return nil, fmt.Errorf("unknown browser mode %q", opts.Mode)
	}
}

// connectFresh launches an ephemeral browser fully owned by the session.
func (c *playwrightConnector) connectFresh(opts ConnectOptions) (*connection, error) {
	launchOpts := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
	}
	if opts.ExecutablePath != "" {
		launchOpts.ExecutablePath = playwright.String(opts.ExecutablePath)
	}
	if opts.Proxy != "" {
		launchOpts.Proxy = &playwright.Proxy{Server: opts.Proxy}
	}

	browser, err := c.pw.Chromium.Launch(launchOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	ctxOpts := playwright.BrowserNewContextOptions{}
	if opts.UserAgent != "" {
		ctxOpts.UserAgent = playwright.String(opts.UserAgent)
	}
	context, err := browser.NewContext(ctxOpts)
	if err != nil {
		browser.Close()
		return nil, fmt.Errorf("failed to create context: %w", err)
	}

	page, err := firstPage(context)
	if err != nil {
		context.Close()
		browser.Close()
		return nil, err
	}

	return &connection{browser: browser, context: context, page: page}, nil
}

// connectProfile launches with a persistent user profile. The combined
// browser+context object is owned by the session; closing the context
// terminates the browser.
func (c *playwrightConnector) connectProfile(opts ConnectOptions) (*connection, error) {
	if opts.UserDataDir == "" {
		return nil, fmt.Errorf("profile mode requires a user data directory")
	}

	launchOpts := playwright.BrowserTypeLaunchPersistentContextOptions{
		Headless: playwright.Bool(opts.Headless),
		Channel:  playwright.String("chrome"),
	}
	if opts.ExecutablePath != "" {
		launchOpts.ExecutablePath = playwright.String(opts.ExecutablePath)
	}
	if opts.Proxy != "" {
		launchOpts.Proxy = &playwright.Proxy{Server: opts.Proxy}
	}

	context, err := c.pw.Chromium.LaunchPersistentContext(opts.UserDataDir, launchOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to launch persistent context: %w", err)
	}

	page, err := firstPage(context)
	if err != nil {
		context.Close()
		return nil, err
	}

	return &connection{browser: context.Browser(), context: context, page: page}, nil
}

// connectPersistent attaches to the shared detached browser, launching
// one first when no live cached port exists. A stale cached port is
// cleared and treated as absent; an attach failure on a cached port
// degrades to launching fresh exactly once.
func (c *playwrightConnector) connectPersistent(opts ConnectOptions) (*connection, error) {
	if port, ok := c.ports.LoadLive(); ok {
		c.log.Debugf("reusing detached browser on port %d", port)
		conn, err := c.attachRetry(port)
		if err == nil {
			return conn, nil
		}
		// The port accepted TCP but CDP attach failed: stale or foreign
		// listener. Clear the cache and fall through to launching.
		c.log.Warnf("cached port %d refused CDP attach, launching fresh: %v", port, err)
		c.ports.Clear()
	}

	handle, err := c.launch(LaunchOptions{
		Headless:       opts.Headless,
		ExecutablePath: opts.ExecutablePath,
	})
	if err != nil {
		return nil, err
	}
	c.log.Infof("launched detached browser pid=%d port=%d", handle.PID, handle.Port)

	if !c.wait(handle.Port, ReadyAttempts, ReadyInterval) {
		return nil, &LaunchTimeoutError{Port: handle.Port, Attempts: ReadyAttempts}
	}

	if err := c.ports.Save(handle.Port, handle.PID); err != nil {
		// The browser is up and usable; a failed cache write only costs
		// future invocations the reuse.
		c.log.Warnf("failed to record port file: %v", err)
	}

	conn, err := c.attachRetry(handle.Port)
	if err != nil {
		return nil, err
	}
	conn.process = handle
	return conn, nil
}

// attachRetry attaches over CDP with a bounded retry, covering the window
// where the port accepts TCP but the DevTools endpoint is not yet serving.
func (c *playwrightConnector) attachRetry(port int) (*connection, error) {
	endpoint := fmt.Sprintf("http://localhost:%d", port)
	var lastErr error
	for attempt := 0; attempt < attachAttempts; attempt++ {
		conn, err := c.attach(endpoint)
		if err == nil {
			return conn, nil
		}
		lastErr = err
		if attempt < attachAttempts-1 {
			c.launcher.sleep(attachInterval)
		}
	}
	return nil, lastErr
}

// attachCDP connects over CDP and reuses the remote browser's first
// context and page when present. The remote browser is never owned;
// Close on a CDP browser only drops the client connection, which is
// exactly what the error branches need to avoid leaking it.
func (c *playwrightConnector) attachCDP(endpoint string) (*connection, error) {
	browser, err := c.pw.Chromium.ConnectOverCDP(endpoint)
	if err != nil {
		return nil, &AttachError{Endpoint: endpoint, Err: err}
	}

	var context playwright.BrowserContext
	if contexts := browser.Contexts(); len(contexts) > 0 {
		context = contexts[0]
	} else {
		context, err = browser.NewContext()
		if err != nil {
			browser.Close()
			return nil, fmt.Errorf("failed to create context: %w", err)
		}
	}

	page, err := firstPage(context)
	if err != nil {
		browser.Close()
		return nil, err
	}

	return &connection{browser: browser, context: context, page: page}, nil
}

// firstPage reuses the context's first existing page or opens one.
func firstPage(context playwright.BrowserContext) (playwright.Page, error) {
	if pages := context.Pages(); len(pages) > 0 {
		return pages[0], nil
	}
	page, err := context.NewPage()
	if err != nil {
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	return page, nil
}
