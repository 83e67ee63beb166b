// Package linkcheck verifies that internal links in the generated site
// point at files the build wrote.
package linkcheck

import (
	"bytes"
	"context"
	"net/url"
	"path"
	"sort"
	"strings"
)

// Page is a written HTML file, by slash-separated path relative to the
// output directory.
type Page struct {
	Path    string
	Content []byte
}

// Broken is an internal link with no matching output file.
type Broken struct {
	Page string
	Link Link
}

// Checker resolves root-relative links against a set of output files.
type Checker struct {
	basePath string
	files    map[string]struct{}
}

// New returns a checker for a site served under basePath ("" or "/notes")
// whose output contains files.
func New(basePath string, files []string) *Checker {
	c := &Checker{
		basePath: strings.TrimSuffix(basePath, "/"),
		files:    make(map[string]struct{}, len(files)),
	}
	for _, f := range files {
		c.files[strings.TrimPrefix(f, "/")] = struct{}{}
	}
	return c
}

// Check returns the broken internal links of one page. Links that are not
// root-relative are ignored.
func (c *Checker) Check(page Page) ([]Broken, error) {
	links, err := ExtractLinks(bytes.NewReader(page.Content))
	if err != nil {
		return nil, err
	}
	var broken []Broken
	for _, l := range links {
		if !c.Resolves(l.URL) {
			broken = append(broken, Broken{Page: page.Path, Link: l})
		}
	}
	return broken, nil
}

// CheckAll checks every HTML page and returns broken links sorted by page.
func (c *Checker) CheckAll(ctx context.Context, pages []Page) ([]Broken, error) {
	var broken []Broken
	for _, p := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if path.Ext(p.Path) != ".html" {
			continue
		}
		b, err := c.Check(p)
		if err != nil {
			return nil, err
		}
		broken = append(broken, b...)
	}
	sort.SliceStable(broken, func(i, j int) bool { return broken[i].Page < broken[j].Page })
	return broken, nil
}

// Resolves reports whether href maps to an output file. Hrefs that are not
// root-relative always resolve.
func (c *Checker) Resolves(href string) bool {
	target, ok := c.target(href)
	if !ok {
		return true
	}
	if _, found := c.files[target]; found {
		return true
	}
	_, found := c.files[path.Join(target, "index.html")]
	return found
}

// target maps a root-relative href to an output file path. ok is false
// for hrefs the checker does not judge. Unmappable hrefs come back with
// their leading slash, which never names an output file.
func (c *Checker) target(href string) (string, bool) {
	if !strings.HasPrefix(href, "/") || strings.HasPrefix(href, "//") {
		return "", false
	}
	u, err := url.Parse(href)
	if err != nil {
		return href, true
	}
	p := u.Path
	if c.basePath != "" {
		rest, found := strings.CutPrefix(p, c.basePath)
		if !found || (rest != "" && !strings.HasPrefix(rest, "/")) {
			return p, true
		}
		p = rest
	}
	if p == "" || strings.HasSuffix(p, "/") {
		p += "index.html"
	}
	return strings.TrimPrefix(path.Clean("/"+p), "/"), true
}
