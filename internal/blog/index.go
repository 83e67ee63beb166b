package blog

import (
	"cmp"
	"slices"

	"git.home.luguber.info/inful/blogbuilder/internal/foundation/errors"
)

// Index holds published posts newest first. It is read-only after
// construction and safe for concurrent use.
type Index struct {
	posts  []*Post
	bySlug map[string]*Post
}

// NewIndex sorts posts newest first (ties by slug) and rejects duplicate slugs.
func NewIndex(posts []*Post) (*Index, error) {
	sorted := slices.Clone(posts)
	sortNewestFirst(sorted)

	bySlug := make(map[string]*Post, len(sorted))
	for _, p := range sorted {
		if prev, ok := bySlug[p.Slug]; ok {
			return nil, errors.ContentError("duplicate post slug").
				WithContext("slug", p.Slug).
				WithContext("path", p.SourcePath).
				WithContext("other", prev.SourcePath).
				Build()
		}
		bySlug[p.Slug] = p
	}
	return &Index{posts: sorted, bySlug: bySlug}, nil
}

// sortNewestFirst orders posts by date, newest first, breaking ties by slug.
func sortNewestFirst(posts []*Post) {
	slices.SortStableFunc(posts, func(a, b *Post) int {
		if c := b.Date.Compare(a.Date); c != 0 {
			return c
		}
		return cmp.Compare(a.Slug, b.Slug)
	})
}

// All returns every post, newest first. Callers must not modify the slice.
func (i *Index) All() []*Post { return i.posts }

// Len is the number of published posts.
func (i *Index) Len() int { return len(i.posts) }

// Recent returns up to n newest posts.
func (i *Index) Recent(n int) []*Post {
	if n < 0 {
		n = 0
	}
	return i.posts[:min(n, len(i.posts))]
}

// BySlug looks up a post by slug.
func (i *Index) BySlug(slug string) (*Post, bool) {
	p, ok := i.bySlug[slug]
	return p, ok
}

// Pages returns the number of listing pages of the given size. An empty
// blog still has one (empty) page.
func (i *Index) Pages(size int) int {
	if size <= 0 || len(i.posts) == 0 {
		return 1
	}
	return (len(i.posts) + size - 1) / size
}

// Page returns the posts on 1-based listing page n.
func (i *Index) Page(n, size int) []*Post {
	if size <= 0 {
		if n == 1 {
			return i.posts
		}
		return nil
	}
	start := (n - 1) * size
	if n < 1 || start >= len(i.posts) {
		return nil
	}
	return i.posts[start:min(start+size, len(i.posts))]
}
