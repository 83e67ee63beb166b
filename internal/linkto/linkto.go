// Package linkto resolves site paths and renders anchors for templates.
package linkto

import (
	"html/template"
	"net/url"
	"strconv"
	"strings"

	"git.home.luguber.info/inful/blogbuilder/internal/blog"
	"git.home.luguber.info/inful/blogbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/blogbuilder/internal/tagslug"
)

// Resolver turns root-relative paths into links for one site.
type Resolver struct {
	base *url.URL
}

// NewResolver parses baseURL, which must be absolute. A path component is
// kept, so a site under https://example.com/notes/ links to /notes/blog/...
func NewResolver(baseURL string) (*Resolver, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, errors.ConfigError("base URL must be absolute").WithContext("base_url", baseURL).Build()
	}
	u.Path = strings.TrimSuffix(u.Path, "/")
	u.RawQuery, u.Fragment = "", ""
	return &Resolver{base: u}, nil
}

// Path prefixes a root-relative path with the base URL's path.
func (r *Resolver) Path(p string) string {
	if !strings.HasPrefix(p, "/") {
		return p
	}
	return r.base.Path + p
}

// Absolute returns the full URL for a root-relative path. Other inputs are
// returned unchanged.
func (r *Resolver) Absolute(p string) string {
	if !strings.HasPrefix(p, "/") {
		return p
	}
	u := *r.base
	u.Path = r.base.Path + p
	return u.String()
}

// PostURL returns the site-relative link to a post page.
func (r *Resolver) PostURL(p *blog.Post) string {
	return r.Path(p.URL())
}

// TagURL returns the site-relative link to a tag listing page.
func (r *Resolver) TagURL(tag string) string {
	return r.Path(tagslug.Identifier(tag))
}

// PageURL returns the link to 1-based blog listing page n.
func (r *Resolver) PageURL(n int) string {
	return r.Path(PagePath(n))
}

// LinkTo renders an anchor. Text and href are HTML-escaped; an href with a
// scheme other than http, https or mailto is replaced by "#ZgotmplZ", the
// marker html/template uses for unsafe URLs.
func (r *Resolver) LinkTo(text, href string) template.HTML {
	return template.HTML(`<a href="` + template.HTMLEscapeString(safeHref(r.Path(href))) + `">` + template.HTMLEscapeString(text) + `</a>`)
}

// PagePath is the root-relative path of listing page n; page 1 is the site root.
func PagePath(n int) string {
	if n <= 1 {
		return "/"
	}
	return "/blog/page/" + strconv.Itoa(n) + "/"
}

func safeHref(href string) string {
	i := strings.IndexAny(href, ":/?#")
	if i < 0 || href[i] != ':' {
		return href
	}
	switch strings.ToLower(href[:i]) {
	case "http", "https", "mailto":
		return href
	default:
		return "#ZgotmplZ"
	}
}
