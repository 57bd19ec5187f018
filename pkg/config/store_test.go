package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	store, err := NewFileStore(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)

	settings, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, Defaults(), settings)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store, err := NewFileStore(filepath.Join(t.TempDir(), "nested", "config.yaml"))
	require.NoError(t, err)

	want := Settings{
		Headless:  true,
		Timeout:   60000,
		Format:    "plain",
		Proxy:     "http://proxy.local:8080",
		UserAgent: "webscraper-test",
	}
	require.NoError(t, store.Save(want))

	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoadAppliesDefaultsForUnsetFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("headless: true\n"), 0600))

	store, err := NewFileStore(path)
	require.NoError(t, err)

	settings, err := store.Load()
	require.NoError(t, err)
	assert.True(t, settings.Headless)
	assert.Equal(t, Defaults().Timeout, settings.Timeout)
	assert.Equal(t, Defaults().Format, settings.Format)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("headless: [true\n"), 0600))

	store, err := NewFileStore(path)
	require.NoError(t, err)

	settings, err := store.Load()
	assert.Error(t, err)
	assert.Equal(t, Defaults(), settings, "malformed config must fall back to defaults")
}

func TestDefaultPath(t *testing.T) {
	store, err := NewFileStore("")
	require.NoError(t, err)

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".webscraper", "config.yaml"), store.Path())
}

func TestDefaults(t *testing.T) {
	d := Defaults()
	assert.False(t, d.Headless, "headed is the default so the shared browser is visible")
	assert.Equal(t, 30000.0, d.Timeout)
	assert.Equal(t, "json", d.Format)
	assert.False(t, d.Quiet)
}
