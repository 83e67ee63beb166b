package tagging

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/blogbuilder/internal/blog"
)

func posts(t *testing.T) []*blog.Post {
	t.Helper()
	idx, err := blog.NewIndex([]*blog.Post{
		{Slug: "newest", Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), Tags: []string{"Web Development", "Go"}},
		{Slug: "middle", Date: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), Tags: []string{"go", "Ärger"}},
		{Slug: "oldest", Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Tags: []string{"web development", "Zebra", "Apfel"}},
	})
	require.NoError(t, err)
	return idx.All()
}

func names(tags []*Tag) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		out = append(out, t.Name)
	}
	return out
}

func TestNewIndex_GroupsByIdentifier(t *testing.T) {
	idx := NewIndex(posts(t))

	require.Equal(t, 5, idx.Len())
	webdev, ok := idx.Lookup("/blog/tag/web-development")
	require.True(t, ok)
	assert.Equal(t, "Web Development", webdev.Name)
	assert.Equal(t, "web-development", webdev.Slug())
	require.Equal(t, 2, webdev.Count())
	assert.Equal(t, "newest", webdev.Posts[0].Slug)
	assert.Equal(t, "oldest", webdev.Posts[1].Slug)

	goTag, ok := idx.ForName("GO")
	require.True(t, ok)
	assert.Equal(t, "Go", goTag.Name)
	assert.Equal(t, 2, goTag.Count())

	_, ok = idx.Lookup("/blog/tag/rust")
	assert.False(t, ok)
}

func TestNewIndex_CollatedOrder(t *testing.T) {
	idx := NewIndex(posts(t))
	assert.Equal(t, []string{"Apfel", "Ärger", "Go", "Web Development", "Zebra"}, names(idx.Tags()))
}

func TestIndex_Popular(t *testing.T) {
	idx := NewIndex(posts(t))
	assert.Equal(t, []string{"Go", "Web Development"}, names(idx.Popular(2)))
	assert.Len(t, idx.Popular(100), 5)
	assert.Empty(t, idx.Popular(0))
}

func TestNewIndex_Empty(t *testing.T) {
	idx := NewIndex(nil)
	assert.Equal(t, 0, idx.Len())
	assert.Empty(t, idx.Tags())
}
