// Package comments renders third-party comment widgets under posts.
package comments

import (
	"bytes"
	"html/template"

	"git.home.luguber.info/inful/blogbuilder/internal/blog"
	"git.home.luguber.info/inful/blogbuilder/internal/config"
	"git.home.luguber.info/inful/blogbuilder/internal/foundation/errors"
)

// Embedder renders the comment widget for a post.
type Embedder interface {
	Embed(post *blog.Post, pageURL string) (template.HTML, error)
}

// New returns the embedder for the configured provider.
func New(cfg config.CommentsConfig) (Embedder, error) {
	switch cfg.Provider {
	case config.CommentsNone, "":
		return None{}, nil
	case config.CommentsDisqus:
		return &Disqus{shortname: cfg.Disqus.Shortname}, nil
	case config.CommentsGiscus:
		return &Giscus{cfg: cfg.Giscus}, nil
	default:
		return nil, errors.ConfigError("unknown comments provider").WithContext("provider", string(cfg.Provider)).Build()
	}
}

// None embeds nothing.
type None struct{}

func (None) Embed(*blog.Post, string) (template.HTML, error) { return "", nil }

var disqusTemplate = template.Must(template.New("disqus").Parse(`<div id="disqus_thread"></div>
<script>
var disqus_config = function () {
  this.page.url = {{.URL}};
  this.page.identifier = {{.Identifier}};
};
(function() {
  var d = document, s = d.createElement('script');
  s.src = 'https://' + {{.Shortname}} + '.disqus.com/embed.js';
  s.setAttribute('data-timestamp', +new Date());
  (d.head || d.body).appendChild(s);
})();
</script>
<noscript>Please enable JavaScript to view the comments.</noscript>
`))

// Disqus embeds the Disqus universal code.
type Disqus struct {
	shortname string
}

func (d *Disqus) Embed(post *blog.Post, pageURL string) (template.HTML, error) {
	if !post.Comments {
		return "", nil
	}
	return execute(disqusTemplate, struct {
		URL, Identifier, Shortname string
	}{URL: pageURL, Identifier: post.URL(), Shortname: d.shortname})
}

var giscusTemplate = template.Must(template.New("giscus").Parse(`<script src="https://giscus.app/client.js"
  data-repo="{{.Repo}}"
  data-repo-id="{{.RepoID}}"
  data-category="{{.Category}}"
  data-category-id="{{.CategoryID}}"
  data-mapping="{{.Mapping}}"
  data-reactions-enabled="1"
  data-theme="{{.Theme}}"
  crossorigin="anonymous"
  async></script>
`))

// Giscus embeds the giscus GitHub Discussions widget.
type Giscus struct {
	cfg config.GiscusConfig
}

func (g *Giscus) Embed(post *blog.Post, _ string) (template.HTML, error) {
	if !post.Comments {
		return "", nil
	}
	data := g.cfg
	if data.Theme == "" {
		data.Theme = "preferred_color_scheme"
	}
	return execute(giscusTemplate, data)
}

func execute(t *template.Template, data any) (template.HTML, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", errors.WrapError(err, errors.CategoryRender, "failed to render comment widget").WithContext("widget", t.Name()).Build()
	}
	return template.HTML(buf.String()), nil //nolint:gosec // produced by html/template
}
