// Package config holds the runtime settings for webscraper commands and
// their persistence to a YAML file under the user's home directory.
package config

// Settings carries the defaults every command starts from. A Settings
// value is constructed once in main and threaded explicitly into command
// handlers; there is no package-level instance.
type Settings struct {
	// Headless controls whether launched browsers run without a window.
	// Headed is the default so the shared persistent browser is visible.
	Headless bool `yaml:"headless"`

	// Timeout is the default page operation timeout in milliseconds.
	Timeout float64 `yaml:"timeout"`

	// Format selects the stdout rendering: "json" or "plain".
	Format string `yaml:"format"`

	// Quiet suppresses all stdout output.
	Quiet bool `yaml:"quiet"`

	// Proxy is an optional proxy server URL for launched browsers.
	Proxy string `yaml:"proxy,omitempty"`

	// UserAgent overrides the browser context user agent.
	UserAgent string `yaml:"user_agent,omitempty"`
}

// Defaults returns the built-in settings.
func Defaults() Settings {
	return Settings{
		Headless: false,
		Timeout:  30000,
		Format:   "json",
	}
}
