package browser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePage = `<!DOCTYPE html>
<html>
<head>
<title>Example Domain</title>
<meta name="description" content="An example page.">
<script>var tracked = true;</script>
<style>body { color: red; }</style>
</head>
<body>
<h1>Welcome</h1>
<p>This domain is for use in examples.</p>
<h2>More information</h2>
<p><a href="https://iana.org/domains">More information...</a></p>
<noscript>Enable JavaScript</noscript>
</body>
</html>`

func TestExtractContent(t *testing.T) {
	content, err := ExtractContent(samplePage, 0)
	require.NoError(t, err)

	assert.Equal(t, "Example Domain", content.Title)
	assert.Equal(t, "An example page.", content.Description)
	assert.Equal(t, []string{"Welcome", "More information"}, content.Headings)

	require.Len(t, content.Links, 1)
	assert.Equal(t, "https://iana.org/domains", content.Links[0].Href)
	assert.Equal(t, "More information...", content.Links[0].Text)

	assert.Contains(t, content.Text, "This domain is for use in examples.")
	assert.NotContains(t, content.Text, "tracked", "script content must be stripped")
	assert.NotContains(t, content.Text, "color: red", "style content must be stripped")
	assert.NotContains(t, content.Text, "Enable JavaScript")
	assert.False(t, content.Truncated)
}

func TestExtractContentTruncates(t *testing.T) {
	page := "<html><body><p>" + strings.Repeat("word ", 200) + "</p></body></html>"

	content, err := ExtractContent(page, 50)
	require.NoError(t, err)

	assert.True(t, content.Truncated)
	assert.Len(t, content.Text, 50)
}

func TestExtractContentEmptyDocument(t *testing.T) {
	content, err := ExtractContent("", 0)
	require.NoError(t, err)
	assert.Empty(t, content.Title)
	assert.Empty(t, content.Text)
}
