package frontmatter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSplit_NoFrontmatter_ReturnsBodyOnly(t *testing.T) {
	input := []byte("# Title\n\nHello\n")

	fm, body, had, err := Split(input)
	require.NoError(t, err)
	require.False(t, had)
	require.Empty(t, fm)
	require.Equal(t, input, body)
}

func TestSplit_YAMLFrontmatter_SplitsFrontmatterAndBody(t *testing.T) {
	fm, body, had, err := Split([]byte("---\ntitle: Hello\n---\n# Title\n"))
	require.NoError(t, err)
	require.True(t, had)
	require.Equal(t, []byte("title: Hello\n"), fm)
	require.Equal(t, []byte("# Title\n"), body)
}

func TestSplit_CRLF(t *testing.T) {
	fm, body, had, err := Split([]byte("---\r\ntitle: Hello\r\n---\r\n# Title\r\n"))
	require.NoError(t, err)
	require.True(t, had)
	require.Equal(t, []byte("title: Hello\r\n"), fm)
	require.Equal(t, []byte("# Title\r\n"), body)
}

func TestSplit_EmptyBlock(t *testing.T) {
	fm, body, had, err := Split([]byte("---\n---\n# Title\n"))
	require.NoError(t, err)
	require.True(t, had)
	require.Empty(t, fm)
	require.Equal(t, []byte("# Title\n"), body)
}

func TestSplit_ClosingDelimiterAtEOF(t *testing.T) {
	fm, body, had, err := Split([]byte("---\ntitle: Hello\n---"))
	require.NoError(t, err)
	require.True(t, had)
	require.Equal(t, []byte("title: Hello\n"), fm)
	require.Empty(t, body)
}

func TestSplit_MissingClosingDelimiter(t *testing.T) {
	_, _, had, err := Split([]byte("---\ntitle: Hello\n# Title\n"))
	require.ErrorIs(t, err, ErrMissingClosingDelimiter)
	require.False(t, had)
}

func TestParseYAML(t *testing.T) {
	fields, err := ParseYAML([]byte("title: Hello\ntags:\n  - Go\n"))
	require.NoError(t, err)
	require.Equal(t, "Hello", fields["title"])
	require.Equal(t, []any{"Go"}, fields["tags"])

	fields, err = ParseYAML(nil)
	require.NoError(t, err)
	require.Empty(t, fields)

	_, err = ParseYAML([]byte("title: [unclosed"))
	require.Error(t, err)
}

func TestDecode(t *testing.T) {
	var meta struct {
		Title string    `yaml:"title"`
		Date  time.Time `yaml:"date"`
		Tags  []string  `yaml:"tags"`
	}
	require.NoError(t, Decode([]byte("title: Hello\ndate: 2024-03-01\ntags: [Go, Web Development]\n"), &meta))
	require.Equal(t, "Hello", meta.Title)
	require.Equal(t, 2024, meta.Date.Year())
	require.Equal(t, []string{"Go", "Web Development"}, meta.Tags)
}

func TestCanonical_IsKeyOrderIndependent(t *testing.T) {
	a, err := ParseYAML([]byte("title: Hello\ntags: [b, a]\nextra:\n  z: 1\n  y: 2\n"))
	require.NoError(t, err)
	b, err := ParseYAML([]byte("extra:\n  y: 2\n  z: 1\ntags: [b, a]\ntitle: Hello\n"))
	require.NoError(t, err)

	ca, err := Canonical(a)
	require.NoError(t, err)
	cb, err := Canonical(b)
	require.NoError(t, err)
	require.Equal(t, ca, cb)
	require.Equal(t, "extra:\n  y: 2\n  z: 1\ntags:\n  - b\n  - a\ntitle: Hello", string(ca))
}

func TestCanonical_Exclude(t *testing.T) {
	out, err := Canonical(map[string]any{"title": "Hello", "lastmod": "2024-01-01"}, "lastmod")
	require.NoError(t, err)
	require.Equal(t, "title: Hello", string(out))

	out, err = Canonical(map[string]any{"lastmod": "2024-01-01"}, "lastmod")
	require.NoError(t, err)
	require.Empty(t, out)
}
