// Package blog loads Markdown posts and keeps them in publication order.
package blog

import (
	"slices"
	"time"

	"git.home.luguber.info/inful/blogbuilder/internal/tagslug"
)

// Post is a single published article.
type Post struct {
	SourcePath  string // Relative to the posts directory, slash separated
	Slug        string
	Title       string
	Date        time.Time
	Lastmod     time.Time
	Tags        []string // Display text as written in frontmatter
	Summary     string
	Draft       bool
	Comments    bool
	Body        []byte // Markdown without frontmatter
	Fingerprint string // Content fingerprint over canonical frontmatter and body
}

// URL returns the root-relative path of the post page.
func (p *Post) URL() string {
	return "/blog/" + p.Slug + "/"
}

// Updated returns Lastmod when set, otherwise Date.
func (p *Post) Updated() time.Time {
	if p.Lastmod.After(p.Date) {
		return p.Lastmod
	}
	return p.Date
}

// HasTag reports whether the post carries a tag with the given listing path.
func (p *Post) HasTag(identifier string) bool {
	return slices.ContainsFunc(p.Tags, func(t string) bool {
		return tagslug.Identifier(t) == identifier
	})
}
