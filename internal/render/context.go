// Package render turns the blog indexes into HTML pages and an Atom feed.
//
// Templates reach the site's capabilities only through a Context, which is
// built once at start-up and passed to NewSite. Nothing in this package is
// global.
package render

import (
	"html/template"
	"sync"
	"time"

	"git.home.luguber.info/inful/blogbuilder/internal/blog"
	"git.home.luguber.info/inful/blogbuilder/internal/comments"
	"git.home.luguber.info/inful/blogbuilder/internal/config"
	"git.home.luguber.info/inful/blogbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/blogbuilder/internal/linkto"
	"git.home.luguber.info/inful/blogbuilder/internal/markdown"
	"git.home.luguber.info/inful/blogbuilder/internal/tagging"
	"git.home.luguber.info/inful/blogbuilder/internal/tagslug"
)

// MarkdownRenderer converts a post body to HTML.
type MarkdownRenderer interface {
	Render(body []byte) ([]byte, error)
}

// PostIndex is the blog post listing.
type PostIndex interface {
	All() []*blog.Post
	Recent(n int) []*blog.Post
	Pages(size int) int
	Page(n, size int) []*blog.Post
}

// TagIndex is the tag listing.
type TagIndex interface {
	Tags() []*tagging.Tag
	Popular(n int) []*tagging.Tag
}

// LinkResolver builds links relative to the site base URL.
type LinkResolver interface {
	Path(p string) string
	Absolute(p string) string
	PostURL(p *blog.Post) string
	PageURL(n int) string
	LinkTo(text, href string) template.HTML
}

// Context holds the capability providers available to templates.
type Context struct {
	Site     config.SiteConfig
	Blog     config.BlogConfig
	Renderer MarkdownRenderer
	Posts    PostIndex
	Tags     TagIndex
	Links    LinkResolver
	Comments comments.Embedder

	mu   sync.Mutex
	html map[*blog.Post]template.HTML
}

// NewContext wires the standard providers for cfg around posts.
func NewContext(cfg *config.Config, posts []*blog.Post) (*Context, error) {
	postIdx, err := blog.NewIndex(posts)
	if err != nil {
		return nil, err
	}
	links, err := linkto.NewResolver(cfg.Site.BaseURL)
	if err != nil {
		return nil, err
	}
	embedder, err := comments.New(cfg.Comments)
	if err != nil {
		return nil, err
	}
	return &Context{
		Site:     cfg.Site,
		Blog:     cfg.Blog,
		Renderer: markdown.New(markdown.Options{}),
		Posts:    postIdx,
		Tags:     tagging.NewIndex(postIdx.All()),
		Links:    links,
		Comments: embedder,
	}, nil
}

func (c *Context) validate() error {
	if c.Renderer == nil || c.Posts == nil || c.Tags == nil || c.Links == nil {
		return errors.NewError(errors.CategoryInternal, "render context is missing a provider").Build()
	}
	if c.Comments == nil {
		c.Comments = comments.None{}
	}
	return nil
}

// FuncMap exposes the providers as template functions.
func (c *Context) FuncMap() template.FuncMap {
	return template.FuncMap{
		"tag_identifier": tagslug.Identifier,
		"tag_link": func(tag string) template.HTML {
			return c.Links.LinkTo(tag, tagslug.Identifier(tag))
		},
		"link_to":      c.Links.LinkTo,
		"url":          c.Links.Path,
		"absolute_url": c.Links.Absolute,
		"post_url":     c.Links.PostURL,
		"markdown":     c.PostHTML,
		"comments": func(p *blog.Post) (template.HTML, error) {
			return c.Comments.Embed(p, c.Links.Absolute(p.URL()))
		},
		"recent_posts": func() []*blog.Post { return c.Posts.Recent(c.Blog.Recent) },
		"tag_cloud":    c.Tags.Tags,
		"popular_tags": c.Tags.Popular,
		"date":         func(t time.Time) string { return t.Format("January 2, 2006") },
		"iso_date":     func(t time.Time) string { return t.Format(time.RFC3339) },
	}
}

// PostHTML renders the post body once and caches the result.
func (c *Context) PostHTML(p *blog.Post) (template.HTML, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if h, ok := c.html[p]; ok {
		return h, nil
	}
	out, err := c.Renderer.Render(p.Body)
	if err != nil {
		return "", errors.WrapError(err, errors.CategoryRender, "failed to render markdown").WithContext("path", p.SourcePath).Build()
	}
	if c.html == nil {
		c.html = make(map[*blog.Post]template.HTML)
	}
	h := template.HTML(out) //nolint:gosec // post content is trusted author input
	c.html[p] = h
	return h, nil
}
