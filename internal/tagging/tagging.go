// Package tagging groups posts by tag listing path.
package tagging

import (
	"cmp"
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"git.home.luguber.info/inful/blogbuilder/internal/blog"
	"git.home.luguber.info/inful/blogbuilder/internal/tagslug"
)

// Tag is one listing page: every post whose tags map to Identifier.
type Tag struct {
	Name       string // First spelling seen, newest post first
	Identifier string // Listing path, see tagslug.Identifier
	Posts      []*blog.Post
}

// Slug returns the listing path without the tag prefix.
func (t *Tag) Slug() string {
	slug, _ := tagslug.SlugFromIdentifier(t.Identifier)
	return slug
}

// Count is the number of posts carrying the tag.
func (t *Tag) Count() int { return len(t.Posts) }

// Index maps listing paths to tags. It is read-only after construction.
type Index struct {
	tags []*Tag
	byID map[string]*Tag
}

// NewIndex groups posts, which must already be newest first, by tag
// listing path. Tags that differ only in case or that differ in the
// characters tagslug rewrites share one Tag.
func NewIndex(posts []*blog.Post) *Index {
	idx := &Index{byID: make(map[string]*Tag)}
	for _, p := range posts {
		for _, name := range p.Tags {
			id := tagslug.Identifier(name)
			tag, ok := idx.byID[id]
			if !ok {
				tag = &Tag{Name: name, Identifier: id}
				idx.byID[id] = tag
				idx.tags = append(idx.tags, tag)
			}
			if len(tag.Posts) == 0 || tag.Posts[len(tag.Posts)-1] != p {
				tag.Posts = append(tag.Posts, p)
			}
		}
	}

	// Locale-neutral collation keeps "Ärger" next to "Apfel" instead of after "Zebra".
	col := collate.New(language.Und, collate.IgnoreCase)
	slices.SortStableFunc(idx.tags, func(a, b *Tag) int {
		if c := col.CompareString(a.Name, b.Name); c != 0 {
			return c
		}
		return cmp.Compare(a.Identifier, b.Identifier)
	})
	return idx
}

// Tags returns all tags in display order.
func (i *Index) Tags() []*Tag { return i.tags }

// Len is the number of distinct tags.
func (i *Index) Len() int { return len(i.tags) }

// Lookup finds the tag for a listing path.
func (i *Index) Lookup(identifier string) (*Tag, bool) {
	t, ok := i.byID[identifier]
	return t, ok
}

// ForName finds the tag a display name maps to.
func (i *Index) ForName(name string) (*Tag, bool) {
	return i.Lookup(tagslug.Identifier(name))
}

// Popular returns up to n tags with the most posts; ties keep display order.
func (i *Index) Popular(n int) []*Tag {
	sorted := slices.Clone(i.tags)
	slices.SortStableFunc(sorted, func(a, b *Tag) int {
		return cmp.Compare(b.Count(), a.Count())
	})
	if n < 0 {
		n = 0
	}
	return sorted[:min(n, len(sorted))]
}
