package blog

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/inful/mdfp"

	"git.home.luguber.info/inful/blogbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/blogbuilder/internal/frontmatter"
	"git.home.luguber.info/inful/blogbuilder/internal/logfields"
	"git.home.luguber.info/inful/blogbuilder/internal/markdown"
	"git.home.luguber.info/inful/blogbuilder/internal/tagslug"
)

const defaultSummaryLength = 200

// Fields excluded from the content fingerprint; they change without the
// post's content changing.
var fingerprintExcluded = []string{mdfp.FingerprintField, "lastmod"}

// reservedSlugs are path segments under /blog/ used by tag and page listings.
var reservedSlugs = map[string]bool{"tag": true, "page": true}

var datePrefix = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})-(.+)$`)

// LoadOptions controls which posts are published.
type LoadOptions struct {
	Drafts        bool             // Include posts marked draft
	Future        bool             // Include posts dated after Now
	Now           func() time.Time // Defaults to time.Now
	SummaryLength int              // Rune limit for derived summaries
}

type postFrontmatter struct {
	Title    string    `yaml:"title"`
	Date     time.Time `yaml:"date"`
	Lastmod  time.Time `yaml:"lastmod"`
	Tags     []string  `yaml:"tags"`
	Summary  string    `yaml:"summary"`
	Draft    bool      `yaml:"draft"`
	Slug     string    `yaml:"slug"`
	Comments *bool     `yaml:"comments"`
}

// Load reads every .md file under dir and returns the published posts,
// newest first (ties by slug).
// Hidden files and directories, and files starting with "_", are skipped.
func Load(ctx context.Context, dir string, opts LoadOptions) ([]*Post, error) {
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	if opts.SummaryLength == 0 {
		opts.SummaryLength = defaultSummaryLength
	}

	st, err := os.Stat(dir)
	if err != nil || !st.IsDir() {
		return nil, errors.ConfigError("posts directory not found").WithContext("path", dir).Build()
	}

	var posts []*Post
	err = filepath.WalkDir(dir, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		name := d.Name()
		if p != dir && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(name), ".md") {
			return nil
		}

		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		post, err := ParseFile(p, filepath.ToSlash(rel), opts)
		if err != nil {
			return err
		}
		if post.Draft && !opts.Drafts {
			slog.Debug("Skipping draft", logfields.Path(post.SourcePath))
			return nil
		}
		if post.Date.After(now()) && !opts.Future {
			slog.Debug("Skipping scheduled post", logfields.Path(post.SourcePath), slog.Time("date", post.Date))
			return nil
		}
		posts = append(posts, post)
		return nil
	})
	if err != nil {
		if errors.IsClassified(err) || ctx.Err() != nil {
			return nil, err
		}
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to walk posts directory").WithContext("path", dir).Build()
	}
	sortNewestFirst(posts)
	return posts, nil
}

// ParseFile reads a single post. rel is the path reported in errors and
// used to derive the slug.
func ParseFile(filePath, rel string, opts LoadOptions) (*Post, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to read post").WithContext("path", rel).Build()
	}
	info, err := os.Stat(filePath)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to stat post").WithContext("path", rel).Build()
	}
	post, err := Parse(rel, content, opts)
	if err != nil {
		return nil, err
	}
	if post.Date.IsZero() {
		post.Date = info.ModTime().UTC().Truncate(time.Second)
	}
	return post, nil
}

// Parse builds a post from raw file content. Missing fields are derived:
// the slug from the file name (a leading YYYY-MM-DD- prefix also supplies
// the date), the title from the first heading, the summary from the first
// paragraph.
func Parse(rel string, content []byte, opts LoadOptions) (*Post, error) {
	fmRaw, body, _, err := frontmatter.Split(content)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryContent, "invalid frontmatter").WithContext("path", rel).Build()
	}

	var meta postFrontmatter
	if err := frontmatter.Decode(fmRaw, &meta); err != nil {
		return nil, errors.WrapError(err, errors.CategoryContent, "invalid frontmatter").WithContext("path", rel).Build()
	}
	fields, err := frontmatter.ParseYAML(fmRaw)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryContent, "invalid frontmatter").WithContext("path", rel).Build()
	}
	canonical, err := frontmatter.Canonical(fields, fingerprintExcluded...)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryContent, "failed to canonicalize frontmatter").WithContext("path", rel).Build()
	}

	base := strings.TrimSuffix(path.Base(rel), path.Ext(rel))
	post := &Post{
		SourcePath:  rel,
		Slug:        meta.Slug,
		Title:       strings.TrimSpace(meta.Title),
		Date:        meta.Date,
		Lastmod:     meta.Lastmod,
		Tags:        cleanTags(meta.Tags),
		Summary:     strings.TrimSpace(meta.Summary),
		Draft:       meta.Draft,
		Comments:    meta.Comments == nil || *meta.Comments,
		Body:        body,
		Fingerprint: mdfp.CalculateFingerprintFromParts(string(canonical), string(body)),
	}

	if m := datePrefix.FindStringSubmatch(base); m != nil {
		base = m[2]
		if post.Date.IsZero() {
			if d, perr := time.Parse(time.DateOnly, m[1]); perr == nil {
				post.Date = d
			}
		}
	}
	if post.Slug == "" {
		post.Slug = tagslug.Slug(base)
	}
	if strings.ContainsAny(post.Slug, "/?#") {
		return nil, errors.ContentError("slug must not contain '/', '?' or '#'").WithContext("path", rel).WithContext("slug", post.Slug).Build()
	}
	if reservedSlugs[post.Slug] {
		return nil, errors.ContentError("slug is reserved for listing pages").WithContext("path", rel).WithContext("slug", post.Slug).Build()
	}
	if post.Title == "" {
		post.Title = markdown.FirstHeading(body)
	}
	if post.Title == "" {
		post.Title = base
	}
	if post.Summary == "" {
		post.Summary = markdown.Summary(body, opts.SummaryLength)
	}
	return post, nil
}

// cleanTags trims tags, drops empty ones and removes duplicates that share
// a listing path, keeping the first spelling.
func cleanTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		id := tagslug.Identifier(t)
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, t)
	}
	return out
}
