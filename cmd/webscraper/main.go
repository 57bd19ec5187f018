// Package main provides the webscraper CLI: browser automation commands
// that share long-lived browser processes across invocations.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nitaiaharoni1/webscraper-cli/pkg/browser"
	"github.com/nitaiaharoni1/webscraper-cli/pkg/config"
	"github.com/nitaiaharoni1/webscraper-cli/pkg/logging"
	"github.com/nitaiaharoni1/webscraper-cli/pkg/output"
)

const version = "0.1.0"

// app threads every dependency explicitly into command handlers. There is
// no package-level manager or settings instance.
type app struct {
	settings   config.Settings
	store      *config.FileStore
	printer    *output.Printer
	log        *logging.Logger
	browserLog *logging.Logger
	ports      *browser.PortFile
	manager    *browser.SessionManager

	// persistent flag values
	configPath string
	sessionID  string
	headless   bool
	mode       string
	cdp        string
	profileDir string
	timeout    float64
	format     string
	quiet      bool
	proxy      string
	userAgent  string
	waitUntil  string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{}
	root := a.rootCommand()

	// Driver calls do not observe context cancellation, so a canceled ctx
	// alone leaves the in-flight operation blocking until its own timeout.
	// The watcher exits the process the moment the signal lands.
	go a.exitOnInterrupt(ctx, os.Exit)

	err := root.ExecuteContext(ctx)

	// The operation may have finished in the instant the signal arrived;
	// an interrupt still exits cleanly with no further browser operations.
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		os.Exit(0)
	}

	// Owned browsers die with the process; shared detached ones survive.
	if a.manager != nil {
		a.manager.CloseAll()
	}
	a.closeLogs()

	if err != nil {
		if a.printer != nil {
			a.printer.Error(err)
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

// exitOnInterrupt waits for the signal context and terminates the
// process with a clean zero status, flushing logs first. It never fires
// on a normal run because ctx stays uncanceled until main returns.
func (a *app) exitOnInterrupt(ctx context.Context, exit func(int)) {
	<-ctx.Done()
	a.closeLogs()
	exit(0)
}

func (a *app) closeLogs() {
	if a.log != nil {
		a.log.Close()
	}
	if a.browserLog != nil {
		a.browserLog.Close()
	}
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "webscraper",
		Short: "Browser automation and scraping from the command line",
		Long: `webscraper drives a Chromium browser for scraping, testing and
automation. Headed invocations share one persistent browser window across
commands (discovered through a port file), so successive commands reuse
the same page instead of flashing a new browser per call.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file path (default ~/.webscraper/config.yaml)")
	flags.StringVar(&a.sessionID, "session-id", "", "session identifier for browser reuse (default \"default\")")
	flags.BoolVar(&a.headless, "headless", false, "run the browser without a visible window")
	flags.StringVar(&a.mode, "mode", "", "connection mode: fresh, cdp, profile or persistent (default: derived from --headless)")
	flags.StringVar(&a.cdp, "cdp", "", "debug endpoint for --mode=cdp, e.g. http://localhost:9222")
	flags.StringVar(&a.profileDir, "profile-dir", "", "user data directory for --mode=profile")
	flags.Float64Var(&a.timeout, "timeout", 0, "default operation timeout in milliseconds")
	flags.StringVar(&a.format, "format", "", "output format: json or plain")
	flags.BoolVar(&a.quiet, "quiet", false, "suppress result output")
	flags.StringVar(&a.proxy, "proxy", "", "proxy server URL for launched browsers")
	flags.StringVar(&a.userAgent, "user-agent", "", "user agent override")
	flags.StringVar(&a.waitUntil, "wait-until", "domcontentloaded", "navigation readiness: load, domcontentloaded, networkidle or commit")

	root.AddCommand(
		a.navigateCommand(),
		a.contentCommand(),
		a.evalCommand(),
		a.clickCommand(),
		a.fillCommand(),
		a.waitCommand(),
		a.screenshotCommand(),
		a.sessionCommand(),
		a.daemonCommand(),
		a.batchCommand(),
		a.configCommand(),
	)
	return root
}

// setup loads persisted settings, applies flag overrides, and wires the
// dependency graph for this invocation.
func (a *app) setup(cmd *cobra.Command) error {
	store, err := config.NewFileStore(a.configPath)
	if err != nil {
		return err
	}
	settings, err := store.Load()
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("headless") {
		settings.Headless = a.headless
	}
	if flags.Changed("timeout") {
		settings.Timeout = a.timeout
	}
	if flags.Changed("format") {
		settings.Format = a.format
	}
	if flags.Changed("quiet") {
		settings.Quiet = a.quiet
	}
	if flags.Changed("proxy") {
		settings.Proxy = a.proxy
	}
	if flags.Changed("user-agent") {
		settings.UserAgent = a.userAgent
	}

	ports, err := browser.NewPortFile("")
	if err != nil {
		return err
	}

	a.store = store
	a.settings = settings
	a.printer = output.New(settings.Format, settings.Quiet)
	a.log = logging.New("cli")
	a.browserLog = logging.New("browser")
	a.ports = ports
	a.manager = browser.NewSessionManager(ports, a.browserLog)
	return nil
}

// connectOptions assembles the acquisition options from settings and
// flags.
func (a *app) connectOptions() browser.ConnectOptions {
	return browser.ConnectOptions{
		Mode:        browser.Mode(a.mode),
		Headless:    a.settings.Headless,
		CDPEndpoint: a.cdp,
		UserDataDir: a.profileDir,
		Proxy:       a.settings.Proxy,
		UserAgent:   a.settings.UserAgent,
		Timeout:     a.settings.Timeout,
	}
}

// acquire initializes the driver, acquires the flagged session, and
// optionally navigates it first.
func (a *app) acquire(ctx context.Context, url string) (*browser.Session, error) {
	if err := a.manager.Initialize(); err != nil {
		return nil, err
	}
	session, err := a.manager.Acquire(ctx, a.sessionID, a.connectOptions())
	if err != nil {
		return nil, err
	}
	if url != "" {
		if err := session.Navigate(url, browser.NavigateOptions{
			WaitUntil: a.waitUntil,
			Timeout:   a.settings.Timeout,
		}); err != nil {
			return nil, err
		}
	}
	return session, nil
}
