// Package logging provides file-backed debug logging for webscraper
// components. Log output goes to a per-run file under ~/.webscraper/logs
// so it never mixes with the JSON results printed on stdout.
package logging

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Logger writes timestamped, component-tagged entries to the run's log
// file. All levels write unconditionally; there is no level filtering.
type Logger struct {
	runID     string
	component string
	file      *os.File
	logger    *log.Logger
	mu        sync.Mutex
	closeOnce sync.Once
}

var (
	// runID correlates every component's log lines for one CLI
	// invocation. Distinct from browser session ids, which are
	// caller-chosen and span invocations.
	runID     string
	runIDOnce sync.Once

	logDir     string
	logDirOnce sync.Once
	logDirErr  error
)

// RunID returns the identifier correlating this invocation's log lines.
func RunID() string {
	runIDOnce.Do(func() {
		runID = uuid.New().String()
	})
	return runID
}

func ensureLogDir() (string, error) {
	logDirOnce.Do(func() {
		home, err := os.UserHomeDir()
		if err != nil {
			logDirErr = fmt.Errorf("failed to resolve home directory: %w", err)
			return
		}
		logDir = filepath.Join(home, ".webscraper", "logs")
		if err := os.MkdirAll(logDir, 0750); err != nil {
			logDirErr = fmt.Errorf("failed to create log directory: %w", err)
		}
	})
	return logDir, logDirErr
}

// New creates a logger for a component. When the log file cannot be
// opened it falls back to stderr rather than failing the command.
func New(component string) *Logger {
	dir, err := ensureLogDir()
	if err != nil {
		return fallback(component, err)
	}

	path := filepath.Join(dir, RunID()+".log")
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return fallback(component, fmt.Errorf("failed to open log file: %w", err))
	}

	return &Logger{
		runID:     RunID(),
		component: component,
		file:      file,
		logger:    log.New(file, "", 0),
	}
}

func fallback(component string, err error) *Logger {
	l := log.New(os.Stderr, fmt.Sprintf("[%s] ", component), log.LstdFlags)
	l.Printf("file logging unavailable, using stderr: %v", err)
	return &Logger{
		runID:     RunID(),
		component: component,
		logger:    l,
	}
}

func (l *Logger) write(level, format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	ts := time.Now().Format("2006-01-02 15:04:05.000")
	l.logger.Printf("[%s] [%s] [%s] %s", ts, l.component, level, fmt.Sprintf(format, v...))
}

// Debugf logs a debug-level message.
func (l *Logger) Debugf(format string, v ...interface{}) { l.write("DEBUG", format, v...) }

// Infof logs an info-level message.
func (l *Logger) Infof(format string, v ...interface{}) { l.write("INFO", format, v...) }

// Warnf logs a warning-level message.
func (l *Logger) Warnf(format string, v ...interface{}) { l.write("WARN", format, v...) }

// Errorf logs an error-level message.
func (l *Logger) Errorf(format string, v ...interface{}) { l.write("ERROR", format, v...) }

// Close closes the log file. Safe to call multiple times.
func (l *Logger) Close() error {
	var err error
	l.closeOnce.Do(func() {
		if l.file != nil {
			err = l.file.Close()
		}
	})
	return err
}
