package render

import (
	"bytes"
	"context"
	"embed"
	stderrors "errors"
	"html/template"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"strconv"
	"strings"

	"git.home.luguber.info/inful/blogbuilder/internal/blog"
	"git.home.luguber.info/inful/blogbuilder/internal/config"
	"git.home.luguber.info/inful/blogbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/blogbuilder/internal/linkto"
	"git.home.luguber.info/inful/blogbuilder/internal/logfields"
	"git.home.luguber.info/inful/blogbuilder/internal/tagging"
)

//go:embed templates/*.html
var defaultTemplates embed.FS

const (
	layoutTemplate = "base.html"
	indexTemplate  = "index.html"
	postTemplate   = "post.html"
	tagTemplate    = "tag.html"
	tagsTemplate   = "tags.html"
)

var pageTemplates = []string{indexTemplate, postTemplate, tagTemplate, tagsTemplate}

// Output is one rendered file. Path is relative to the output directory
// and slash separated.
type Output struct {
	Path    string
	Content []byte
}

// Page is the data every page template receives.
type Page struct {
	Site  config.SiteConfig
	Title string
	Path  string // Root-relative URL of the page
	Post  *blog.Post
	Posts []*blog.Post
	Tag   *tagging.Tag
	Tags  []*tagging.Tag
	Pager *Pager
}

// Pager links neighbouring listing pages.
type Pager struct {
	Current int
	Total   int
	PrevURL string
	NextURL string
}

// Site renders every page of the blog.
type Site struct {
	rc        *Context
	templates map[string]*template.Template
}

// NewSite parses the page templates. Files in overrideDir replace the
// embedded templates of the same name; overrideDir may be empty.
func NewSite(rc *Context, overrideDir string) (*Site, error) {
	if err := rc.validate(); err != nil {
		return nil, err
	}

	var overrides fs.FS
	if overrideDir != "" {
		overrides = os.DirFS(overrideDir)
	}
	read := func(name string) (string, error) {
		if overrides != nil {
			data, err := fs.ReadFile(overrides, name)
			if err == nil {
				return string(data), nil
			}
			if !stderrors.Is(err, fs.ErrNotExist) {
				return "", err
			}
		}
		data, err := defaultTemplates.ReadFile("templates/" + name)
		return string(data), err
	}

	layout, err := read(layoutTemplate)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryRender, "failed to read template").WithContext("template", layoutTemplate).Build()
	}

	funcs := rc.FuncMap()
	s := &Site{rc: rc, templates: make(map[string]*template.Template, len(pageTemplates))}
	for _, name := range pageTemplates {
		body, err := read(name)
		if err != nil {
			return nil, errors.WrapError(err, errors.CategoryRender, "failed to read template").WithContext("template", name).Build()
		}
		t, err := template.New(layoutTemplate).Funcs(funcs).Parse(layout)
		if err == nil {
			_, err = t.New(name).Parse(body)
		}
		if err != nil {
			return nil, errors.WrapError(err, errors.CategoryRender, "failed to parse template").WithContext("template", name).Build()
		}
		s.templates[name] = t
	}
	return s, nil
}

// Render produces every page plus the feed. It stops early when ctx is done.
func (s *Site) Render(ctx context.Context) ([]Output, error) {
	var out []Output
	owner := make(map[string]string) // output file -> URL path that produced it
	emit := func(tmpl, urlPath string, page Page) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		file, ok := PageFile(urlPath)
		if !ok {
			slog.Warn("Skipping page with unsafe path", logfields.Path(urlPath))
			return nil
		}
		if prev, dup := owner[file]; dup {
			return errors.ContentError("pages share an output file").
				WithContext("path", file).
				WithContext("page", urlPath).
				WithContext("other", prev).
				Build()
		}
		owner[file] = urlPath
		page.Site = s.rc.Site
		page.Path = urlPath
		var buf bytes.Buffer
		if err := s.templates[tmpl].ExecuteTemplate(&buf, "base", page); err != nil {
			return errors.WrapError(err, errors.CategoryRender, "failed to execute template").
				WithContext("template", tmpl).
				WithContext("page", urlPath).
				Build()
		}
		out = append(out, Output{Path: file, Content: buf.Bytes()})
		return nil
	}

	perPage := s.rc.Blog.PerPage
	total := s.rc.Posts.Pages(perPage)
	for n := 1; n <= total; n++ {
		pager := &Pager{Current: n, Total: total}
		if n > 1 {
			pager.PrevURL = s.rc.Links.PageURL(n - 1)
		}
		if n < total {
			pager.NextURL = s.rc.Links.PageURL(n + 1)
		}
		title := ""
		if n > 1 {
			title = "Page " + strconv.Itoa(n)
		}
		if err := emit(indexTemplate, linkto.PagePath(n), Page{Title: title, Posts: s.rc.Posts.Page(n, perPage), Pager: pager}); err != nil {
			return nil, err
		}
	}

	for _, p := range s.rc.Posts.All() {
		if err := emit(postTemplate, p.URL(), Page{Title: p.Title, Post: p}); err != nil {
			return nil, err
		}
	}

	tags := s.rc.Tags.Tags()
	for _, t := range tags {
		if t.Slug() == "" {
			continue
		}
		if err := emit(tagTemplate, t.Identifier, Page{Title: t.Name, Tag: t, Posts: t.Posts}); err != nil {
			return nil, err
		}
	}
	if err := emit(tagsTemplate, "/blog/tag/", Page{Title: "Tags", Tags: tags}); err != nil {
		return nil, err
	}

	feed, err := s.Feed()
	if err != nil {
		return nil, err
	}
	out = append(out, Output{Path: "feed.xml", Content: feed})
	return out, nil
}

// PageFile maps a page's root-relative URL path to the index.html file
// that serves it. ok is false for paths that would leave the output
// directory.
func PageFile(urlPath string) (file string, ok bool) {
	if strings.ContainsRune(urlPath, 0) {
		return "", false
	}
	for _, seg := range strings.Split(urlPath, "/") {
		if seg == ".." || seg == "." {
			return "", false
		}
	}
	return strings.TrimPrefix(path.Join("/", urlPath, "index.html"), "/"), true
}
