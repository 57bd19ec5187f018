package browser

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/nitaiaharoni1/webscraper-cli/pkg/logging"
)

// SessionManager is the composition root of the connection layer. It owns
// the shared Playwright driver, the in-process session registry, and the
// port file used for cross-process browser reuse. Construct one instance
// at process start and thread it into command handlers explicitly.
type SessionManager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	inflight map[string]*acquireCall

	pw    *playwright.Playwright
	conn  connector
	ports *PortFile
	log   *logging.Logger
}

// acquireCall tracks one in-progress connect so concurrent acquires for
// the same id coalesce onto a single physical browser launch.
type acquireCall struct {
	done    chan struct{}
	session *Session
	err     error
}

// NewSessionManager creates a manager over the given port registry.
// Initialize must be called before the first Acquire.
func NewSessionManager(ports *PortFile, log *logging.Logger) *SessionManager {
	return &SessionManager{
		sessions: make(map[string]*Session),
		inflight: make(map[string]*acquireCall),
		ports:    ports,
		log:      log,
	}
}

// Initialize installs and starts the shared Playwright driver. Output is
// discarded so the driver never interferes with the JSON stdout protocol.
func (m *SessionManager) Initialize() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.conn != nil {
		return nil
	}

	opts := &playwright.RunOptions{
		Verbose: false,
		Stdout:  io.Discard,
		Stderr:  io.Discard,
	}
	if err := playwright.Install(opts); err != nil {
		return fmt.Errorf("failed to install playwright: %w", err)
	}
	pw, err := playwright.Run(opts)
	if err != nil {
		return fmt.Errorf("failed to start playwright: %w", err)
	}

	m.pw = pw
	m.conn = newPlaywrightConnector(pw, NewLauncher(), m.ports, m.log)
	return nil
}

// Acquire returns the session registered under id, connecting one first
// if none exists. An existing session is returned unchanged: acquiring
// never re-navigates or resets state. When opts.Mode is empty the backend
// is resolved from opts.Headless (headless runs get a fresh browser,
// headed runs share the detached one).
//
// Concurrent acquires for the same id coalesce: exactly one connect runs
// and every caller receives its outcome. A failed connect is not cached;
// the next Acquire for that id retries from scratch.
func (m *SessionManager) Acquire(ctx context.Context, id string, opts ConnectOptions) (*Session, error) {
	if id == "" {
		id = DefaultSessionID
	}

	m.mu.Lock()
	if s, ok := m.sessions[id]; ok {
		s.LastUsedAt = time.Now()
		m.mu.Unlock()
		return s, nil
	}
	if call, ok := m.inflight[id]; ok {
		m.mu.Unlock()
		select {
		case <-call.done:
			return call.session, call.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if m.conn == nil {
		m.mu.Unlock()
		return nil, fmt.Errorf("session manager not initialized")
	}

	call := &acquireCall{done: make(chan struct{})}
	m.inflight[id] = call
	m.mu.Unlock()

	session, err := m.connect(id, opts)

	m.mu.Lock()
	delete(m.inflight, id)
	if err == nil {
		m.sessions[id] = session
	}
	m.mu.Unlock()

	call.session = session
	call.err = err
	close(call.done)
	return session, err
}

// connect performs the actual backend dispatch for a new session.
func (m *SessionManager) connect(id string, opts ConnectOptions) (*Session, error) {
	opts.Mode = ResolveMode(opts.Mode, opts.Headless)
	if !opts.Mode.valid() {
		return nil, fmt.Errorf("unknown browser mode %q", opts.Mode)
	}
	m.log.Debugf("connecting session %q mode=%s headless=%v", id, opts.Mode, opts.Headless)

	conn, err := m.conn.Connect(opts)
	if err != nil {
		m.log.Errorf("connect failed for session %q: %v", id, err)
		return nil, err
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	conn.page.SetDefaultTimeout(timeout)

	now := time.Now()
	return &Session{
		ID:         id,
		Mode:       opts.Mode,
		Browser:    conn.browser,
		Context:    conn.context,
		Page:       conn.page,
		Process:    conn.process,
		CreatedAt:  now,
		LastUsedAt: now,
	}, nil
}

// Get returns the registered session for id, if any.
func (m *SessionManager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

// HasSessions reports whether any session is registered.
func (m *SessionManager) HasSessions() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions) > 0
}

// List returns registry metadata for every session, ordered by id.
func (m *SessionManager) List() []SessionInfo {
	m.mu.Lock()
	defer m.mu.Unlock()

	infos := make([]SessionInfo, 0, len(m.sessions))
	for _, s := range m.sessions {
		infos = append(infos, SessionInfo{
			ID:         s.ID,
			Mode:       s.Mode,
			URL:        s.Page.URL(),
			CreatedAt:  s.CreatedAt,
			LastUsedAt: s.LastUsedAt,
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos
}

// Close tears down the session registered under id using its
// mode-specific teardown and removes it from the registry. Closing an
// unregistered id is a no-op.
func (m *SessionManager) Close(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if !ok {
		return nil
	}
	return s.close()
}

// CloseAll closes every registered session and stops the shared driver.
// Intended for process-wide shutdown only.
func (m *SessionManager) CloseAll() error {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.sessions = make(map[string]*Session)
	pw := m.pw
	m.pw = nil
	m.conn = nil
	m.mu.Unlock()

	var errs []error
	for _, s := range sessions {
		if err := s.close(); err != nil {
			errs = append(errs, err)
		}
	}
	if pw != nil {
		if err := pw.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop playwright: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors during shutdown: %v", errs)
	}
	return nil
}
