package tagslug

import (
	"strings"
	"sync"
	"testing"
	"unicode"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/blogbuilder/internal/foundation/errors"
)

func TestIdentifier(t *testing.T) {
	tests := []struct {
		name string
		tag  string
		want string
	}{
		{name: "single word", tag: "Ruby", want: "/blog/tag/ruby"},
		{name: "two words", tag: "Web Development", want: "/blog/tag/web-development"},
		{name: "empty", tag: "", want: "/blog/tag/"},
		{name: "leading spaces", tag: "  Leading Space", want: "/blog/tag/--leading-space"},
		{name: "tab untouched", tag: "Tab\tSeparated", want: "/blog/tag/tab\tseparated"},
		{name: "trailing space", tag: "Go ", want: "/blog/tag/go-"},
		{name: "consecutive spaces", tag: "a   b", want: "/blog/tag/a---b"},
		{name: "newline untouched", tag: "Line\nBreak", want: "/blog/tag/line\nbreak"},
		{name: "punctuation untouched", tag: "C++ & Rust!", want: "/blog/tag/c++-&-rust!"},
		{name: "non-breaking space untouched", tag: "A\u00a0B", want: "/blog/tag/a\u00a0b"},
		{name: "unicode lowercased", tag: "Ünïcode Çafé", want: "/blog/tag/ünïcode-çafé"},
		{name: "already slugified", tag: "web-development", want: "/blog/tag/web-development"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Identifier(tt.tag))
		})
	}
}

func TestIdentifier_Properties(t *testing.T) {
	inputs := []string{
		"", " ", "Go", "GoLang Tips", "  x  ", "MiXeD CaSe WoRdS", "tab\tand space",
		"Ελληνικά Γράμματα", "ÀÉÎ ÕÜ", "emoji 🚀 Launch", "already-lower",
	}

	for _, in := range inputs {
		out := Identifier(in)
		require.True(t, strings.HasPrefix(out, Prefix), "prefix for %q", in)
		assert.NotContains(t, out, " ", "no spaces for %q", in)

		slug := strings.TrimPrefix(out, Prefix)
		for _, r := range slug {
			assert.False(t, r < unicode.MaxASCII && unicode.IsUpper(r), "uppercase ASCII %q in %q", r, slug)
		}

		// Re-applying to an already slugified suffix is a no-op.
		assert.Equal(t, slug, Slug(slug))
		assert.Equal(t, out, Identifier(in), "deterministic for %q", in)
	}
}

func TestIdentifierOf(t *testing.T) {
	tag := "Web Development"
	got, err := IdentifierOf(&tag)
	require.NoError(t, err)
	assert.Equal(t, "/blog/tag/web-development", got)

	empty := ""
	got, err = IdentifierOf(&empty)
	require.NoError(t, err)
	assert.Equal(t, Prefix, got)

	_, err = IdentifierOf(nil)
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryValidation))
}

func TestSlugFromIdentifier(t *testing.T) {
	slug, ok := SlugFromIdentifier("/blog/tag/web-development")
	require.True(t, ok)
	assert.Equal(t, "web-development", slug)

	_, ok = SlugFromIdentifier("/blog/web-development")
	assert.False(t, ok)
}

func TestIdentifier_Concurrent(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if got := Identifier("Web Development"); got != "/blog/tag/web-development" {
					t.Errorf("unexpected identifier %q", got)
				}
			}
		}()
	}
	wg.Wait()
}
