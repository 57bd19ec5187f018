package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPrinter(format string, quiet bool) (*Printer, *bytes.Buffer, *bytes.Buffer) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return &Printer{Format: format, Quiet: quiet, Out: out, ErrOut: errOut}, out, errOut
}

func TestResultJSON(t *testing.T) {
	p, out, _ := newTestPrinter("json", false)

	require.NoError(t, p.Result(map[string]interface{}{"url": "https://example.com", "title": "Example"}))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	assert.Equal(t, "https://example.com", decoded["url"])
	assert.Equal(t, "Example", decoded["title"])
}

func TestResultPlainMapSortsKeys(t *testing.T) {
	p, out, _ := newTestPrinter("plain", false)

	require.NoError(t, p.Result(map[string]interface{}{"zeta": 1, "alpha": 2}))

	assert.Equal(t, "alpha: 2\nzeta: 1\n", out.String())
}

func TestResultPlainString(t *testing.T) {
	p, out, _ := newTestPrinter("plain", false)
	require.NoError(t, p.Result("hello"))
	assert.Equal(t, "hello\n", out.String())
}

func TestQuietSuppressesResultsNotErrors(t *testing.T) {
	p, out, errOut := newTestPrinter("json", true)

	require.NoError(t, p.Result(map[string]interface{}{"ignored": true}))
	assert.Empty(t, out.String())

	p.Error(errors.New("still reported"))
	assert.Contains(t, errOut.String(), "still reported")
}

type suggestingError struct{ msg string }

func (e *suggestingError) Error() string      { return e.msg }
func (e *suggestingError) Suggestion() string { return "try the other thing" }

func TestErrorIncludesSuggestion(t *testing.T) {
	p, _, errOut := newTestPrinter("json", false)

	p.Error(&suggestingError{msg: "it broke"})

	var body map[string]string
	require.NoError(t, json.Unmarshal(errOut.Bytes(), &body))
	assert.Equal(t, "it broke", body["error"])
	assert.Equal(t, "try the other thing", body["suggestion"])
}

func TestErrorFindsSuggestionThroughWrapping(t *testing.T) {
	p, _, errOut := newTestPrinter("json", false)

	p.Error(fmt.Errorf("command failed: %w", &suggestingError{msg: "inner"}))

	var body map[string]string
	require.NoError(t, json.Unmarshal(errOut.Bytes(), &body))
	assert.Equal(t, "try the other thing", body["suggestion"])
}

func TestErrorWithoutSuggestionOmitsField(t *testing.T) {
	p, _, errOut := newTestPrinter("json", false)

	p.Error(errors.New("plain failure"))

	assert.NotContains(t, errOut.String(), "suggestion")
}
