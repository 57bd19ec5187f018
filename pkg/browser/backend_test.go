package browser

import (
	"fmt"
	"net"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nitaiaharoni1/webscraper-cli/pkg/logging"
)

// persistentHarness wires a playwrightConnector with stubbed attach,
// launch and readiness collaborators so every branch of the persistent
// strategy runs without a driver or a real browser.
type persistentHarness struct {
	conn *playwrightConnector

	attachEndpoints []string
	attachErrs      map[string]error
	launchCalls     int
	launchHandle    *ProcessHandle
	launchErr       error
	ready           bool
}

func newPersistentHarness(t *testing.T, ports *PortFile) *persistentHarness {
	t.Helper()
	h := &persistentHarness{
		attachErrs: map[string]error{},
		ready:      true,
	}
	h.conn = &playwrightConnector{
		launcher: &Launcher{sleep: func(time.Duration) {}},
		ports:    ports,
		log:      logging.New("browser-test"),
	}
	h.conn.attach = func(endpoint string) (*connection, error) {
		h.attachEndpoints = append(h.attachEndpoints, endpoint)
		if err, ok := h.attachErrs[endpoint]; ok && err != nil {
			return nil, err
		}
		return &connection{}, nil
	}
	h.conn.launch = func(opts LaunchOptions) (*ProcessHandle, error) {
		h.launchCalls++
		return h.launchHandle, h.launchErr
	}
	h.conn.wait = func(port, maxAttempts int, interval time.Duration) bool {
		return h.ready
	}
	return h
}

func tempPortFile(t *testing.T) *PortFile {
	t.Helper()
	ports, err := NewPortFile(filepath.Join(t.TempDir(), PortFileName))
	require.NoError(t, err)
	return ports
}

// listenLocal opens a real listener so LoadLive's liveness probe passes.
func listenLocal(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "localhost:0")
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	return l.Addr().(*net.TCPAddr).Port
}

func endpointFor(port int) string {
	return fmt.Sprintf("http://localhost:%d", port)
}

func TestConnectPersistentReusesLiveCachedPort(t *testing.T) {
	ports := tempPortFile(t)
	port := listenLocal(t)
	require.NoError(t, ports.Save(port, 4242))

	h := newPersistentHarness(t, ports)
	conn, err := h.conn.Connect(ConnectOptions{Mode: ModePersistent})

	require.NoError(t, err)
	assert.Nil(t, conn.process, "attaching to an existing browser must not claim ownership")
	assert.Equal(t, 0, h.launchCalls, "a live cached port must be reused, not relaunched")
	assert.Equal(t, []string{endpointFor(port)}, h.attachEndpoints)
}

func TestConnectPersistentStaleAttachClearsAndLaunches(t *testing.T) {
	ports := tempPortFile(t)
	stalePort := listenLocal(t)
	require.NoError(t, ports.Save(stalePort, 111))

	h := newPersistentHarness(t, ports)
	h.attachErrs[endpointFor(stalePort)] = &AttachError{Endpoint: endpointFor(stalePort), Err: fmt.Errorf("no CDP here")}
	h.launchHandle = &ProcessHandle{PID: 4321, Port: 45111, UserDataDir: t.TempDir()}

	conn, err := h.conn.Connect(ConnectOptions{Mode: ModePersistent})

	require.NoError(t, err)
	assert.Equal(t, 1, h.launchCalls)
	assert.Same(t, h.launchHandle, conn.process)

	// The cached entry was replaced with the freshly launched browser.
	port, pid, ok := ports.Load()
	require.True(t, ok)
	assert.Equal(t, 45111, port)
	assert.Equal(t, 4321, pid)
}

func TestConnectPersistentLaunchTimeout(t *testing.T) {
	ports := tempPortFile(t)
	h := newPersistentHarness(t, ports)
	h.launchHandle = &ProcessHandle{PID: 99, Port: 45222, UserDataDir: t.TempDir()}
	h.ready = false

	conn, err := h.conn.Connect(ConnectOptions{Mode: ModePersistent})

	require.Nil(t, conn)
	var timeoutErr *LaunchTimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	assert.Equal(t, 45222, timeoutErr.Port)
	assert.Equal(t, ReadyAttempts, timeoutErr.Attempts)
	assert.Empty(t, h.attachEndpoints, "no attach may run against a port that never came up")
}

func TestConnectPersistentToleratesPortFileSaveFailure(t *testing.T) {
	// A port file in a directory that does not exist makes every Save
	// fail while Load still reports absent.
	ports, err := NewPortFile(filepath.Join(t.TempDir(), "missing", PortFileName))
	require.NoError(t, err)

	h := newPersistentHarness(t, ports)
	h.launchHandle = &ProcessHandle{PID: 7, Port: 45333, UserDataDir: t.TempDir()}

	conn, err := h.conn.Connect(ConnectOptions{Mode: ModePersistent})

	require.NoError(t, err, "a failed cache write must not fail the connection")
	assert.Same(t, h.launchHandle, conn.process)
}

func TestConnectPersistentAttachRetryBounded(t *testing.T) {
	ports := tempPortFile(t)
	h := newPersistentHarness(t, ports)
	h.launchHandle = &ProcessHandle{PID: 8, Port: 45444, UserDataDir: t.TempDir()}
	attachErr := &AttachError{Endpoint: endpointFor(45444), Err: fmt.Errorf("refused")}
	h.attachErrs[endpointFor(45444)] = attachErr

	conn, err := h.conn.Connect(ConnectOptions{Mode: ModePersistent})

	require.Nil(t, conn)
	assert.ErrorIs(t, err, attachErr)
	assert.Len(t, h.attachEndpoints, attachAttempts)
}

type stubBrowserType struct {
	playwright.BrowserType
	browser playwright.Browser
}

func (bt *stubBrowserType) ConnectOverCDP(endpointURL string, options ...playwright.BrowserTypeConnectOverCDPOptions) (playwright.Browser, error) {
	return bt.browser, nil
}

// cdpBrowser stands in for a remote browser reached over CDP; its setup
// hooks can be made to fail so the cleanup paths are observable.
type cdpBrowser struct {
	playwright.Browser
	mu       sync.Mutex
	closed   bool
	contexts []playwright.BrowserContext
	ctxErr   error
}

func (b *cdpBrowser) Contexts() []playwright.BrowserContext { return b.contexts }

func (b *cdpBrowser) NewContext(options ...playwright.BrowserNewContextOptions) (playwright.BrowserContext, error) {
	return nil, b.ctxErr
}

func (b *cdpBrowser) Close(options ...playwright.BrowserCloseOptions) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

func (b *cdpBrowser) isClosed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

type cdpContext struct {
	playwright.BrowserContext
	pageErr error
}

func (c *cdpContext) Pages() []playwright.Page { return nil }

func (c *cdpContext) NewPage() (playwright.Page, error) { return nil, c.pageErr }

// A failed attach must drop the CDP client connection it just opened; for
// a CDP browser Close is a disconnect, never a kill.
func TestAttachClosesClientOnSetupFailure(t *testing.T) {
	t.Run("context creation fails", func(t *testing.T) {
		b := &cdpBrowser{ctxErr: fmt.Errorf("context refused")}
		c := newPlaywrightConnector(
			&playwright.Playwright{Chromium: &stubBrowserType{browser: b}},
			NewLauncher(), tempPortFile(t), logging.New("browser-test"),
		)

		_, err := c.attachCDP("http://localhost:9222")
		require.Error(t, err)
		assert.True(t, b.isClosed())
	})

	t.Run("page creation fails", func(t *testing.T) {
		ctx := &cdpContext{pageErr: fmt.Errorf("page refused")}
		b := &cdpBrowser{contexts: []playwright.BrowserContext{ctx}}
		c := newPlaywrightConnector(
			&playwright.Playwright{Chromium: &stubBrowserType{browser: b}},
			NewLauncher(), tempPortFile(t), logging.New("browser-test"),
		)

		_, err := c.attachCDP("http://localhost:9222")
		require.Error(t, err)
		assert.True(t, b.isClosed())
	})
}

func TestConnectCDPRequiresEndpoint(t *testing.T) {
	h := newPersistentHarness(t, tempPortFile(t))

	_, err := h.conn.Connect(ConnectOptions{Mode: ModeCDP})
	require.Error(t, err)

	conn, err := h.conn.Connect(ConnectOptions{Mode: ModeCDP, CDPEndpoint: "http://localhost:9222"})
	require.NoError(t, err)
	assert.NotNil(t, conn)
	assert.Equal(t, []string{"http://localhost:9222"}, h.attachEndpoints)
}
