package config

import (
	"net/url"

	"git.home.luguber.info/inful/blogbuilder/internal/foundation/errors"
)

// Validate checks the configuration after defaults have been applied.
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateSite,
		c.validateBlog,
		c.validateComments,
		c.validatePreview,
	}
	for _, v := range validators {
		if err := v(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateSite() error {
	u, err := url.Parse(c.Site.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.ConfigError("site.base_url must be an absolute URL").WithContext("base_url", c.Site.BaseURL).Build()
	}
	return nil
}

func (c *Config) validateBlog() error {
	if c.Blog.PerPage < 0 || c.Blog.FeedSize < 0 || c.Blog.Recent < 0 {
		return errors.ConfigError("blog sizes must not be negative").Build()
	}
	return nil
}

func (c *Config) validateComments() error {
	provider, err := ParseCommentsProvider(string(c.Comments.Provider))
	if err != nil {
		return errors.WrapError(err, errors.CategoryConfig, "invalid comments.provider").Fatal().UserAction().Build()
	}
	c.Comments.Provider = provider

	switch provider {
	case CommentsDisqus:
		if c.Comments.Disqus.Shortname == "" {
			return errors.ConfigError("comments.disqus.shortname is required").Build()
		}
	case CommentsGiscus:
		g := c.Comments.Giscus
		if g.Repo == "" || g.RepoID == "" || g.CategoryID == "" {
			return errors.ConfigError("comments.giscus requires repo, repo_id and category_id").Build()
		}
	case CommentsNone:
	}
	return nil
}

func (c *Config) validatePreview() error {
	if c.Preview.Port < 1 || c.Preview.Port > 65535 {
		return errors.ConfigError("preview.port must be between 1 and 65535").WithContext("port", c.Preview.Port).Build()
	}
	if c.Preview.RebuildInterval < 0 {
		return errors.ConfigError("preview.rebuild_interval must not be negative").Build()
	}
	return nil
}
