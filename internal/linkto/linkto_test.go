package linkto

import (
	"html/template"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/blogbuilder/internal/blog"
	"git.home.luguber.info/inful/blogbuilder/internal/foundation/errors"
)

func TestNewResolver_RejectsRelative(t *testing.T) {
	_, err := NewResolver("/blog")
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))
}

func TestResolver_RootSite(t *testing.T) {
	r, err := NewResolver("https://example.com/")
	require.NoError(t, err)

	post := &blog.Post{Slug: "hello"}
	assert.Equal(t, "/blog/hello/", r.PostURL(post))
	assert.Equal(t, "/blog/tag/web-development", r.TagURL("Web Development"))
	assert.Equal(t, "https://example.com/blog/hello/", r.Absolute(post.URL()))
	assert.Equal(t, "https://other.example/x", r.Absolute("https://other.example/x"))
	assert.Equal(t, "/", r.PageURL(1))
	assert.Equal(t, "/blog/page/3/", r.PageURL(3))
}

func TestResolver_SubpathSite(t *testing.T) {
	r, err := NewResolver("https://example.com/notes/?q=1")
	require.NoError(t, err)

	assert.Equal(t, "/notes/blog/tag/go", r.TagURL("Go"))
	assert.Equal(t, "https://example.com/notes/feed.xml", r.Absolute("/feed.xml"))
	assert.Equal(t, "relative/path", r.Path("relative/path"))
}

func TestResolver_LinkTo(t *testing.T) {
	r, err := NewResolver("https://example.com")
	require.NoError(t, err)

	tests := []struct {
		name string
		text string
		href string
		want template.HTML
	}{
		{name: "site path", text: "Go", href: "/blog/tag/go", want: `<a href="/blog/tag/go">Go</a>`},
		{name: "escaped text", text: "<b>&</b>", href: "/", want: `<a href="/">&lt;b&gt;&amp;&lt;/b&gt;</a>`},
		{name: "escaped href", text: "q", href: `/search?q="x"`, want: `<a href="/search?q=&#34;x&#34;">q</a>`},
		{name: "external", text: "Go", href: "https://go.dev", want: `<a href="https://go.dev">Go</a>`},
		{name: "mailto", text: "Mail", href: "mailto:me@example.com", want: `<a href="mailto:me@example.com">Mail</a>`},
		{name: "javascript blocked", text: "x", href: "javascript:alert(1)", want: `<a href="#ZgotmplZ">x</a>`},
		{name: "relative with colon later", text: "x", href: "a/b:c", want: `<a href="a/b:c">x</a>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.LinkTo(tt.text, tt.href))
		})
	}
}
