package browser

import (
	"errors"
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"
)

// touch updates the last-used timestamp.
func (s *Session) touch() {
	s.LastUsedAt = time.Now()
}

// close runs the mode-specific teardown.
//
// Fresh and CDP-owned browsers are exclusively ours: closing terminates
// them. Profile mode owns a combined browser+context, torn down through
// the context. Persistent mode only disconnects; the detached process is
// shared with other invocations and must never be killed here.
func (s *Session) close() error {
	switch s.Mode {
	case ModePersistent:
		if s.Browser != nil {
			if err := s.Browser.Close(); err != nil {
				return fmt.Errorf("failed to disconnect from shared browser: %w", err)
			}
		}
		return nil
	case ModeProfile:
		if err := s.Context.Close(); err != nil {
			return fmt.Errorf("failed to close profile context: %w", err)
		}
		return nil
	default:
		if s.Browser != nil {
			if err := s.Browser.Close(); err != nil {
				return fmt.Errorf("failed to close browser: %w", err)
			}
		}
		return nil
	}
}

// NavigateOptions configures page navigation.
type NavigateOptions struct {
	// WaitUntil selects the readiness condition: "load",
	// "domcontentloaded", "networkidle" or "commit". Empty means
	// domcontentloaded.
	WaitUntil string

	// Timeout in milliseconds. Zero uses the page default.
	Timeout float64
}

// Navigate drives the session's page to url.
//
// A networkidle wait that times out degrades to waiting for the load
// event instead of failing the navigation: pages with background polling
// never go fully idle, and by that point the document is usable. The
// fallback is a heuristic, not a guaranteed-correct wait.
func (s *Session) Navigate(url string, opts NavigateOptions) error {
	s.touch()

	waitUntil := opts.WaitUntil
	if waitUntil == "" {
		waitUntil = "domcontentloaded"
	}
	gotoOpts := playwright.PageGotoOptions{
		WaitUntil: waitUntilState(waitUntil),
	}
	if opts.Timeout > 0 {
		gotoOpts.Timeout = playwright.Float(opts.Timeout)
	}

	_, err := s.Page.Goto(url, gotoOpts)
	if err == nil {
		return nil
	}

	if waitUntil == "networkidle" && errors.Is(err, playwright.ErrTimeout) {
		// Ignore the fallback's own error: if it also times out, the
		// load event fired before goto gave up and the page is usable.
		_ = s.Page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
			State:   playwright.LoadStateLoad,
			Timeout: playwright.Float(10000),
		})
		return nil
	}

	return &NavigationError{URL: url, Err: err}
}

// Evaluate runs a JavaScript expression in the page and returns its
// JSON-serializable result.
func (s *Session) Evaluate(expression string) (interface{}, error) {
	s.touch()
	result, err := s.Page.Evaluate(expression)
	if err != nil {
		return nil, fmt.Errorf("evaluate failed: %w", err)
	}
	return result, nil
}

// ClickOptions configures element clicking.
type ClickOptions struct {
	Button     string
	ClickCount int
	Timeout    float64
}

// Click clicks the first element matching selector.
func (s *Session) Click(selector string, opts ClickOptions) error {
	s.touch()

	clickOpts := playwright.PageClickOptions{}
	if opts.Button != "" {
		button := playwright.MouseButton(opts.Button)
		clickOpts.Button = &button
	}
	if opts.ClickCount > 0 {
		clickOpts.ClickCount = playwright.Int(opts.ClickCount)
	}
	if opts.Timeout > 0 {
		clickOpts.Timeout = playwright.Float(opts.Timeout)
	}

	if err := s.Page.Click(selector, clickOpts); err != nil {
		if errors.Is(err, playwright.ErrTimeout) {
			return &TimeoutError{Operation: fmt.Sprintf("click %q", selector), TimeoutMs: effectiveTimeout(opts.Timeout)}
		}
		return fmt.Errorf("click failed: %w", err)
	}
	return nil
}

// Fill fills the input matching selector with value.
func (s *Session) Fill(selector, value string, timeout float64) error {
	s.touch()

	fillOpts := playwright.PageFillOptions{}
	if timeout > 0 {
		fillOpts.Timeout = playwright.Float(timeout)
	}

	if err := s.Page.Fill(selector, value, fillOpts); err != nil {
		if errors.Is(err, playwright.ErrTimeout) {
			return &TimeoutError{Operation: fmt.Sprintf("fill %q", selector), TimeoutMs: effectiveTimeout(timeout)}
		}
		return fmt.Errorf("fill failed: %w", err)
	}
	return nil
}

// WaitForOptions configures waiting on an element.
type WaitForOptions struct {
	// State is one of "attached", "detached", "visible", "hidden".
	State   string
	Timeout float64
}

// WaitFor blocks until the element matching selector reaches the wanted
// state or the timeout elapses.
func (s *Session) WaitFor(selector string, opts WaitForOptions) error {
	s.touch()

	waitOpts := playwright.PageWaitForSelectorOptions{}
	if opts.State != "" {
		state := playwright.WaitForSelectorState(opts.State)
		waitOpts.State = &state
	}
	if opts.Timeout > 0 {
		waitOpts.Timeout = playwright.Float(opts.Timeout)
	}

	if _, err := s.Page.WaitForSelector(selector, waitOpts); err != nil {
		if errors.Is(err, playwright.ErrTimeout) {
			return &TimeoutError{Operation: fmt.Sprintf("wait for %q", selector), TimeoutMs: effectiveTimeout(opts.Timeout)}
		}
		return fmt.Errorf("wait failed: %w", err)
	}
	return nil
}

// Screenshot captures the page as PNG bytes, optionally full-page.
func (s *Session) Screenshot(fullPage bool) ([]byte, error) {
	s.touch()
	data, err := s.Page.Screenshot(playwright.PageScreenshotOptions{
		FullPage: playwright.Bool(fullPage),
	})
	if err != nil {
		return nil, fmt.Errorf("screenshot failed: %w", err)
	}
	return data, nil
}

// Content returns the page's full HTML.
func (s *Session) Content() (string, error) {
	s.touch()
	html, err := s.Page.Content()
	if err != nil {
		return "", fmt.Errorf("failed to read page content: %w", err)
	}
	return html, nil
}

// Title returns the page title, empty on error.
func (s *Session) Title() string {
	title, err := s.Page.Title()
	if err != nil {
		return ""
	}
	return title
}

// URL returns the page's current URL.
func (s *Session) URL() string {
	return s.Page.URL()
}

func effectiveTimeout(requested float64) float64 {
	if requested > 0 {
		return requested
	}
	return DefaultTimeout
}

func waitUntilState(name string) *playwright.WaitUntilState {
	switch name {
	case "load":
		return playwright.WaitUntilStateLoad
	case "networkidle":
		return playwright.WaitUntilStateNetworkidle
	case "commit":
		return playwright.WaitUntilStateCommit
	default:
		return playwright.WaitUntilStateDomcontentloaded
	}
}
