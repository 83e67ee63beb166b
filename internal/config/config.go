package config

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/blogbuilder/internal/foundation/errors"
)

// DefaultPath is the configuration file used when none is given.
const DefaultPath = "blogbuilder.yaml"

// Config represents the application configuration
type Config struct {
	Site     SiteConfig     `yaml:"site"`
	Content  ContentConfig  `yaml:"content"`
	Output   OutputConfig   `yaml:"output"`
	Blog     BlogConfig     `yaml:"blog"`
	Comments CommentsConfig `yaml:"comments"`
	Build    BuildConfig    `yaml:"build"`
	Events   EventsConfig   `yaml:"events"`
	Preview  PreviewConfig  `yaml:"preview"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// SiteConfig holds site-wide metadata used by templates and the feed.
type SiteConfig struct {
	Title       string `yaml:"title"`
	BaseURL     string `yaml:"base_url"`
	Author      string `yaml:"author,omitempty"`
	Description string `yaml:"description,omitempty"`
}

// ContentConfig describes where posts and template overrides live.
type ContentConfig struct {
	PostsDir     string `yaml:"posts_dir"`
	TemplatesDir string `yaml:"templates_dir,omitempty"`
	Drafts       bool   `yaml:"drafts,omitempty"` // Publish posts marked draft
	Future       bool   `yaml:"future,omitempty"` // Publish posts dated in the future
}

// OutputConfig represents output configuration
type OutputConfig struct {
	Directory string `yaml:"directory"`
	Clean     bool   `yaml:"clean"` // Remove pages earlier builds wrote that this build no longer produces
}

// BlogConfig controls listing sizes.
type BlogConfig struct {
	PerPage  int `yaml:"per_page"`
	FeedSize int `yaml:"feed_size"`
	Recent   int `yaml:"recent"`
}

// BuildConfig toggles optional build stages.
type BuildConfig struct {
	GitInfo     bool `yaml:"git_info"`     // Take lastmod from git history
	VerifyLinks bool `yaml:"verify_links"` // Check internal links after writing
}

// EventsConfig configures build notifications. An empty NATSURL disables them.
type EventsConfig struct {
	NATSURL string `yaml:"nats_url,omitempty"`
	Subject string `yaml:"subject,omitempty"`
	Retries int    `yaml:"retries,omitempty"` // Publish retries after the first failure; negative disables
}

// PreviewConfig configures the local preview server.
type PreviewConfig struct {
	Port            int           `yaml:"port"`
	RebuildInterval time.Duration `yaml:"rebuild_interval,omitempty"` // 0 disables scheduled rebuilds
}

// LoggingConfig selects the slog handler.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level,omitempty"`
	Format LogFormat `yaml:"format,omitempty"`
}

// Load reads, expands, defaults and validates the configuration at configPath.
//
// .env and .env.local are loaded first when present; variables already set in
// the process environment win. ${VAR} references in the file are then expanded.
func Load(configPath string) (*Config, error) {
	loadEnvFiles()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return nil, errors.ConfigError("configuration file not found").WithContext("path", configPath).Build()
		}
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to read config file").WithContext("path", configPath).Build()
	}

	cfg, err := Parse(data)
	if err != nil {
		if c, ok := errors.AsClassified(err); ok {
			return nil, c.WithContext("path", configPath)
		}
		return nil, err
	}
	return cfg, nil
}

// Parse decodes YAML configuration data. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader([]byte(expanded)))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !stderrors.Is(err, io.EOF) {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to unmarshal config").Fatal().UserAction().Build()
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadEnvFiles() {
	for _, envPath := range []string{".env", ".env.local"} {
		if _, err := os.Stat(envPath); err != nil {
			continue
		}
		if err := godotenv.Load(envPath); err != nil {
			slog.Warn("Failed to load env file", "path", envPath, "error", err)
			continue
		}
		slog.Debug("Loaded environment variables", "path", envPath)
	}
}

// Init writes a starter configuration file.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return errors.ValidationError("configuration file already exists (use --force to overwrite)").WithContext("path", configPath).Build()
	}

	example := Config{
		Site: SiteConfig{
			Title:       "My Blog",
			BaseURL:     "https://example.com",
			Author:      "Jane Doe",
			Description: "Notes on software and other things",
		},
		Content:  ContentConfig{PostsDir: "content/posts"},
		Output:   OutputConfig{Directory: "./public", Clean: true},
		Blog:     BlogConfig{PerPage: 10, FeedSize: 20, Recent: 5},
		Comments: CommentsConfig{Provider: CommentsNone},
		Build:    BuildConfig{GitInfo: true, VerifyLinks: true},
		Preview:  PreviewConfig{Port: 1313},
	}

	data, err := yaml.Marshal(&example)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write config file").WithContext("path", configPath).Build()
	}
	return nil
}
