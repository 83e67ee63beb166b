package config

import "git.home.luguber.info/inful/blogbuilder/internal/foundation/normalization"

// CommentsProvider selects the comment widget embedded under posts.
type CommentsProvider string

const (
	CommentsNone   CommentsProvider = "none"
	CommentsDisqus CommentsProvider = "disqus"
	CommentsGiscus CommentsProvider = "giscus"
)

var commentsProviderNormalizer = normalization.NewNormalizer("comments provider", map[string]CommentsProvider{
	"none":   CommentsNone,
	"disqus": CommentsDisqus,
	"giscus": CommentsGiscus,
}, CommentsNone)

// ParseCommentsProvider normalizes raw; the empty string means none.
func ParseCommentsProvider(raw string) (CommentsProvider, error) {
	return commentsProviderNormalizer.Parse(raw)
}

// CommentsConfig configures comment embedding.
type CommentsConfig struct {
	Provider CommentsProvider `yaml:"provider,omitempty"`
	Disqus   DisqusConfig     `yaml:"disqus,omitempty"`
	Giscus   GiscusConfig     `yaml:"giscus,omitempty"`
}

type DisqusConfig struct {
	Shortname string `yaml:"shortname"`
}

// GiscusConfig mirrors the data attributes of the giscus client script.
type GiscusConfig struct {
	Repo       string `yaml:"repo"`
	RepoID     string `yaml:"repo_id"`
	Category   string `yaml:"category,omitempty"`
	CategoryID string `yaml:"category_id"`
	Mapping    string `yaml:"mapping,omitempty"`
	Theme      string `yaml:"theme,omitempty"`
}
