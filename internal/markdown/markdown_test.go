package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	r := New(Options{})

	out, err := r.Render([]byte("# Hello World\n\nSome *text* and a ~~strike~~.\n"))
	require.NoError(t, err)
	html := string(out)
	assert.Contains(t, html, `<h1 id="hello-world">Hello World</h1>`)
	assert.Contains(t, html, "<em>text</em>")
	assert.Contains(t, html, "<del>strike</del>")
}

func TestRender_RawHTML(t *testing.T) {
	body := []byte("<div class=\"note\">hi</div>\n")

	safe, err := New(Options{}).Render(body)
	require.NoError(t, err)
	assert.NotContains(t, string(safe), `<div class="note">`)

	unsafe, err := New(Options{Unsafe: true}).Render(body)
	require.NoError(t, err)
	assert.Contains(t, string(unsafe), `<div class="note">hi</div>`)
}

func TestFirstHeading(t *testing.T) {
	assert.Equal(t, "Hello World", FirstHeading([]byte("intro\n\n## Sub\n\n# Hello *World*\n")))
	assert.Equal(t, "", FirstHeading([]byte("no headings here\n")))
}

func TestSummary(t *testing.T) {
	body := []byte("# Title\n\nGo makes concurrency\nsimple with `chan` types.\n\nSecond paragraph.\n")

	assert.Equal(t, "Go makes concurrency simple with chan types.", Summary(body, 0))
	assert.Equal(t, "Go makes…", Summary(body, 12))
	assert.Equal(t, "", Summary([]byte("# Only a heading\n"), 10))
}
