package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nitaiaharoni1/webscraper-cli/pkg/config"
)

func TestReadURLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "urls.txt")
	content := `https://a.test

# a comment
https://b.test
  https://c.test
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	urls, err := readURLFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.test", "https://b.test", "https://c.test"}, urls)
}

func TestReadURLFileMissing(t *testing.T) {
	_, err := readURLFile(filepath.Join(t.TempDir(), "nope.txt"))
	assert.Error(t, err)
}

func TestApplySetting(t *testing.T) {
	a := &app{settings: config.Defaults()}

	require.NoError(t, a.applySetting("headless", "true"))
	assert.True(t, a.settings.Headless)

	require.NoError(t, a.applySetting("timeout", "45000"))
	assert.Equal(t, 45000.0, a.settings.Timeout)

	require.NoError(t, a.applySetting("format", "plain"))
	assert.Equal(t, "plain", a.settings.Format)

	assert.Error(t, a.applySetting("timeout", "-1"))
	assert.Error(t, a.applySetting("format", "xml"))
	assert.Error(t, a.applySetting("nonsense", "x"))
}

func TestSettingValueUnknownKey(t *testing.T) {
	a := &app{settings: config.Defaults()}
	_, err := a.settingValue("bogus")
	assert.Error(t, err)

	v, err := a.settingValue("timeout")
	require.NoError(t, err)
	assert.Equal(t, 30000.0, v)
}

// An interrupt must end the process as soon as the signal context is
// canceled, even while a browser call that never checks the context is
// still in flight.
func TestExitOnInterrupt(t *testing.T) {
	a := &app{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	exited := make(chan int, 1)
	go a.exitOnInterrupt(ctx, func(code int) { exited <- code })

	select {
	case code := <-exited:
		t.Fatalf("watcher exited with %d before any signal", code)
	case <-time.After(50 * time.Millisecond):
	}

	cancel()
	select {
	case code := <-exited:
		assert.Equal(t, 0, code, "an interrupt is a clean exit")
	case <-time.After(time.Second):
		t.Fatal("watcher did not exit after the signal context was canceled")
	}
}

func TestRootCommandHasCoreSubcommands(t *testing.T) {
	a := &app{}
	root := a.rootCommand()

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"navigate", "content", "eval", "click", "fill", "wait", "screenshot", "session", "daemon", "batch", "config"} {
		assert.Contains(t, names, want)
	}
}
