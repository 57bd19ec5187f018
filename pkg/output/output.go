// Package output renders command results and errors for the CLI's
// stdout/stderr protocol. Results go to stdout as JSON (or plain text);
// errors go to stderr as a consistently shaped JSON object.
package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
)

// Printer renders values according to the configured format. Quiet mode
// suppresses result output but never error output.
type Printer struct {
	Format string
	Quiet  bool
	Out    io.Writer
	ErrOut io.Writer
}

// New creates a printer over stdout/stderr.
func New(format string, quiet bool) *Printer {
	return &Printer{Format: format, Quiet: quiet, Out: os.Stdout, ErrOut: os.Stderr}
}

// Result renders v in the configured format.
func (p *Printer) Result(v interface{}) error {
	if p.Quiet {
		return nil
	}
	if p.Format == "plain" {
		return p.plain(v)
	}
	return p.json(v)
}

func (p *Printer) json(v interface{}) error {
	enc := json.NewEncoder(p.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (p *Printer) plain(v interface{}) error {
	switch val := v.(type) {
	case map[string]interface{}:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(p.Out, "%s: %v\n", k, val[k])
		}
	case []interface{}:
		for _, item := range val {
			fmt.Fprintln(p.Out, item)
		}
	case string:
		fmt.Fprintln(p.Out, val)
	default:
		return p.json(v)
	}
	return nil
}

// suggester matches errors that carry remediation advice.
type suggester interface {
	Suggestion() string
}

// errorBody is the wire shape of every CLI error.
type errorBody struct {
	Error      string `json:"error"`
	Suggestion string `json:"suggestion,omitempty"`
}

// Error renders err as the structured error object on stderr. Errors are
// printed even in quiet mode.
func (p *Printer) Error(err error) {
	body := errorBody{Error: err.Error()}
	var s suggester
	if errors.As(err, &s) {
		body.Suggestion = s.Suggestion()
	}
	enc := json.NewEncoder(p.ErrOut)
	enc.SetIndent("", "  ")
	enc.Encode(body)
}
