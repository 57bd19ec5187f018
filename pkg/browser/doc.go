// Package browser multiplexes short-lived CLI invocations onto a small
// number of long-lived browser processes via Playwright.
//
// # Architecture
//
// The package is built around four pieces:
//
//  1. PortFile: cross-process discovery of a shared detached browser via
//     a well-known file recording its debug port
//  2. Launcher: platform-aware executable discovery and detached process
//     launch with readiness polling
//  3. Connection backends: one strategy per Mode (fresh launch, CDP
//     attach, persistent profile, shared detached process)
//  4. SessionManager: the registry mapping session ids to established
//     sessions, with coalescing of concurrent acquires
//
// # Session reuse
//
// Within one process the SessionManager registry guarantees at most one
// session per id. Across processes, reuse happens only through the port
// file: a headed invocation records the detached browser's debug port,
// and later invocations attach to it instead of flashing a new window
// per command. The port file is a cache, never a source of truth; every
// read is verified with a real connection attempt before being trusted,
// and stale entries are cleared.
//
// Two processes that both see a stale port file may race to launch. The
// loser's launch still produces a working session on a new port; the
// extra browser is an accepted best-effort limitation, not corruption.
//
// # Ownership
//
// Fresh and profile sessions own their browser: closing the session
// terminates the process. Persistent sessions share the detached
// process with every other invocation that attached to it; closing such
// a session only disconnects. Stopping the shared process is an
// explicit, separate operation (the daemon stop command).
package browser
