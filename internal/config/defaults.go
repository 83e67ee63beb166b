package config

const (
	defaultTitle    = "My Blog"
	defaultBaseURL  = "http://localhost:1313"
	defaultPosts    = "content/posts"
	defaultOutput   = "./public"
	defaultPerPage  = 10
	defaultFeedSize = 20
	defaultRecent   = 5
	defaultPort     = 1313
	defaultSubject  = "blogbuilder.builds"
	defaultRetries  = 2
	defaultMapping  = "pathname"
)

// ApplyDefaults fills zero values with their defaults and normalizes enums.
func (c *Config) ApplyDefaults() {
	if c.Site.Title == "" {
		c.Site.Title = defaultTitle
	}
	if c.Site.BaseURL == "" {
		c.Site.BaseURL = defaultBaseURL
	}
	if c.Content.PostsDir == "" {
		c.Content.PostsDir = defaultPosts
	}
	if c.Output.Directory == "" {
		c.Output.Directory = defaultOutput
	}
	if c.Blog.PerPage == 0 {
		c.Blog.PerPage = defaultPerPage
	}
	if c.Blog.FeedSize == 0 {
		c.Blog.FeedSize = defaultFeedSize
	}
	if c.Blog.Recent == 0 {
		c.Blog.Recent = defaultRecent
	}
	if c.Events.Subject == "" {
		c.Events.Subject = defaultSubject
	}
	if c.Events.Retries == 0 {
		c.Events.Retries = defaultRetries
	}
	if c.Preview.Port == 0 {
		c.Preview.Port = defaultPort
	}
	if c.Comments.Provider == "" {
		c.Comments.Provider = CommentsNone
	}
	if c.Comments.Giscus.Mapping == "" {
		c.Comments.Giscus.Mapping = defaultMapping
	}
	c.Logging.Level = NormalizeLogLevel(string(c.Logging.Level))
	c.Logging.Format = NormalizeLogFormat(string(c.Logging.Format))
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}
