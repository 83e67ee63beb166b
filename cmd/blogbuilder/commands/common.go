package commands

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/blogbuilder/internal/config"
	"git.home.luguber.info/inful/blogbuilder/internal/events"
	"git.home.luguber.info/inful/blogbuilder/internal/logfields"
	"git.home.luguber.info/inful/blogbuilder/internal/version"
)

// LogLevelEnv overrides the configured log level unless -v is given.
const LogLevelEnv = "BLOGBUILDER_LOG_LEVEL"

// Global context passed to subcommands if we need to share global state later.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags - used by commands that need access to root config.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"blogbuilder.yaml" type:"path"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build   BuildCmd   `cmd:"" help:"Build the blog into the output directory"`
	Init    InitCmd    `cmd:"" help:"Initialize a new configuration file"`
	Slug    SlugCmd    `cmd:"" help:"Print the listing path for one or more tags"`
	Tags    TagsCmd    `cmd:"" help:"List tags with their listing paths and post counts"`
	Preview PreviewCmd `cmd:"" help:"Serve the blog locally and rebuild on changes"`

	logOutput io.Writer `kong:"-"`
}

// NewParser builds the kong parser for cli. Extra options come after the
// defaults, so tests can swap writers and exit handling.
func NewParser(cli *CLI, options ...kong.Option) (*kong.Kong, error) {
	global := &Global{}
	opts := append([]kong.Option{
		kong.Name("blogbuilder"),
		kong.Description("Static blog generator with tag listings, feeds and comments."),
		kong.Vars{"version": version.String()},
		kong.UsageOnError(),
		kong.Bind(global),
	}, options...)
	return kong.New(cli, opts...)
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply(kctx *kong.Context, global *Global) error {
	if c.logOutput == nil {
		c.logOutput = kctx.Stderr
	}
	global.Logger = c.setupLogging(nil)
	return nil
}

// setupLogging installs the default logger. -v wins over BLOGBUILDER_LOG_LEVEL,
// which wins over the configuration file.
func (c *CLI) setupLogging(cfg *config.LoggingConfig) *slog.Logger {
	level := slog.LevelInfo
	format := config.LogFormatText
	if cfg != nil {
		level = cfg.Level.SlogLevel()
		format = cfg.Format
	}
	if env := os.Getenv(LogLevelEnv); env != "" {
		level = config.NormalizeLogLevel(env).SlogLevel()
	}
	if c.Verbose {
		level = slog.LevelDebug
	}

	out := c.logOutput
	if out == nil {
		out = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler = slog.NewTextHandler(out, opts)
	if format == config.LogFormatJSON {
		handler = slog.NewJSONHandler(out, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// loadConfig loads the configuration file and applies its logging section.
func (c *CLI) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return nil, err
	}
	c.setupLogging(&cfg.Logging)
	slog.Debug("Loaded configuration", logfields.Path(c.Config))
	return cfg, nil
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// newPublisher connects the configured event publisher. A broker that is
// down degrades to no events rather than failing the command.
func newPublisher(cfg *config.Config) events.Publisher {
	pub, err := events.New(cfg.Events)
	if err != nil {
		slog.Warn("Build events disabled", logfields.Error(err))
		return events.NoopPublisher{}
	}
	return pub
}
