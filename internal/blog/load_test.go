package blog

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/blogbuilder/internal/foundation/errors"
)

func writePost(t *testing.T, dir, rel, content string) {
	t.Helper()
	full := filepath.Join(dir, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o600))
}

func fixedNow() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }

func TestParse_FrontmatterFields(t *testing.T) {
	content := "---\ntitle: Hello World\ndate: 2024-03-01\ntags: [Go, Web Development, go]\nslug: hello\ncomments: false\n---\nBody text.\n"

	post, err := Parse("hello.md", []byte(content), LoadOptions{})
	require.NoError(t, err)

	assert.Equal(t, "Hello World", post.Title)
	assert.Equal(t, "hello", post.Slug)
	assert.Equal(t, "/blog/hello/", post.URL())
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), post.Date)
	assert.Equal(t, []string{"Go", "Web Development"}, post.Tags)
	assert.False(t, post.Comments)
	assert.Equal(t, "Body text.", post.Summary)
	assert.Equal(t, []byte("Body text.\n"), post.Body)
	assert.NotEmpty(t, post.Fingerprint)
	assert.True(t, post.HasTag("/blog/tag/web-development"))
	assert.False(t, post.HasTag("/blog/tag/rust"))
}

func TestParse_DerivesMissingFields(t *testing.T) {
	post, err := Parse("2024-02-10-Getting Started.md", []byte("# Getting Started With Go\n\nFirst steps.\n"), LoadOptions{})
	require.NoError(t, err)

	assert.Equal(t, "getting-started", post.Slug)
	assert.Equal(t, "Getting Started With Go", post.Title)
	assert.Equal(t, time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC), post.Date)
	assert.True(t, post.Comments)
	assert.Equal(t, "First steps.", post.Summary)
}

func TestParse_FingerprintIgnoresKeyOrderAndLastmod(t *testing.T) {
	a, err := Parse("a.md", []byte("---\ntitle: A\ntags: [x]\n---\nbody\n"), LoadOptions{})
	require.NoError(t, err)
	b, err := Parse("a.md", []byte("---\ntags: [x]\nlastmod: 2024-05-05\ntitle: A\n---\nbody\n"), LoadOptions{})
	require.NoError(t, err)
	c, err := Parse("a.md", []byte("---\ntitle: A\ntags: [x]\n---\nchanged\n"), LoadOptions{})
	require.NoError(t, err)

	assert.Equal(t, a.Fingerprint, b.Fingerprint)
	assert.NotEqual(t, a.Fingerprint, c.Fingerprint)
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse("bad.md", []byte("---\ntitle: [unclosed\n---\n"), LoadOptions{})
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryContent))

	_, err = Parse("open.md", []byte("---\ntitle: x\n"), LoadOptions{})
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryContent))

	_, err = Parse("slash.md", []byte("---\nslug: a/b\n---\n"), LoadOptions{})
	require.Error(t, err)
	c, ok := errors.AsClassified(err)
	require.True(t, ok)
	path, _ := c.Context().GetString("path")
	assert.Equal(t, "slash.md", path)
}

func TestLoad_FiltersDraftsAndFuture(t *testing.T) {
	dir := t.TempDir()
	writePost(t, dir, "published.md", "---\ntitle: Published\ndate: 2024-01-01\n---\n")
	writePost(t, dir, "draft.md", "---\ntitle: Draft\ndate: 2024-01-02\ndraft: true\n---\n")
	writePost(t, dir, "future.md", "---\ntitle: Future\ndate: 2030-01-01\n---\n")
	writePost(t, dir, "nested/deep.md", "---\ntitle: Deep\ndate: 2024-01-03\n---\n")
	writePost(t, dir, "_partial.md", "---\ntitle: Partial\n---\n")
	writePost(t, dir, ".hidden/secret.md", "---\ntitle: Secret\n---\n")
	writePost(t, dir, "notes.txt", "not a post")

	posts, err := Load(context.Background(), dir, LoadOptions{Now: fixedNow})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Published", "Deep"}, titles(posts))

	posts, err = Load(context.Background(), dir, LoadOptions{Now: fixedNow, Drafts: true, Future: true})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Published", "Draft", "Future", "Deep"}, titles(posts))
}

func TestLoad_DateFallsBackToModTime(t *testing.T) {
	dir := t.TempDir()
	writePost(t, dir, "undated.md", "# Undated\n")
	mtime := time.Date(2023, 7, 4, 10, 0, 0, 0, time.UTC)
	require.NoError(t, os.Chtimes(filepath.Join(dir, "undated.md"), mtime, mtime))

	posts, err := Load(context.Background(), dir, LoadOptions{Now: fixedNow})
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.True(t, posts[0].Date.Equal(mtime))
}

func TestLoad_MissingDirectory(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "missing"), LoadOptions{})
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))
}

func TestLoad_Canceled(t *testing.T) {
	dir := t.TempDir()
	writePost(t, dir, "a.md", "# A\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Load(ctx, dir, LoadOptions{})
	require.ErrorIs(t, err, context.Canceled)
}

func titles(posts []*Post) []string {
	out := make([]string, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.Title)
	}
	return out
}

func TestLoad_SortsNewestFirst(t *testing.T) {
	dir := t.TempDir()
	writePost(t, dir, "2024-01-15-hello.md", "---\ntags: [Go]\n---\n")
	writePost(t, dir, "b-second.md", "---\ndate: 2024-02-01T10:00:00Z\ntags: [go]\n---\n")
	writePost(t, dir, "a-tie.md", "---\ndate: 2024-02-01T10:00:00Z\n---\n")
	writePost(t, dir, "zz-oldest.md", "---\ndate: 2023-12-31\n---\n")

	posts, err := Load(context.Background(), dir, LoadOptions{Now: fixedNow})
	require.NoError(t, err)
	slugs := make([]string, len(posts))
	for i, p := range posts {
		slugs[i] = p.Slug
	}
	assert.Equal(t, []string{"a-tie", "b-second", "hello", "zz-oldest"}, slugs)
}

func TestParse_ReservedSlugs(t *testing.T) {
	for _, content := range []string{"---\nslug: tag\n---\n", "---\nslug: page\n---\n"} {
		_, err := Parse("post.md", []byte(content), LoadOptions{})
		require.Error(t, err, content)
		assert.True(t, errors.HasCategory(err, errors.CategoryContent))
	}

	_, err := Parse("tag.md", []byte("# Derived\n"), LoadOptions{})
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryContent))

	post, err := Parse("tags.md", []byte("# Fine\n"), LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, "tags", post.Slug)
}
