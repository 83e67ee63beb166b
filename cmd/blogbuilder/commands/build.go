package commands

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/blogbuilder/internal/build"
	"git.home.luguber.info/inful/blogbuilder/internal/logfields"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Output      string `short:"o" help:"Output directory (overrides output.directory)"`
	Force       bool   `short:"f" help:"Rewrite every page even if unchanged"`
	DryRun      bool   `name:"dry-run" help:"Render and verify without writing output"`
	Drafts      bool   `help:"Include posts marked draft"`
	Future      bool   `help:"Include posts dated in the future"`
	VerifyLinks bool   `name:"verify-links" help:"Check internal links after writing"`
}

func (b *BuildCmd) Run(kctx *kong.Context, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	if b.Output != "" {
		cfg.Output.Directory = b.Output
	}
	cfg.Content.Drafts = cfg.Content.Drafts || b.Drafts
	cfg.Content.Future = cfg.Content.Future || b.Future
	cfg.Build.VerifyLinks = cfg.Build.VerifyLinks || b.VerifyLinks

	ctx, stop := signalContext()
	defer stop()

	pub := newPublisher(cfg)
	defer func() {
		if cerr := pub.Close(); cerr != nil {
			slog.Warn("Failed to close event publisher", logfields.Error(cerr))
		}
	}()

	svc := build.NewBuildService().WithPublisher(pub)
	res, err := svc.Run(ctx, build.BuildRequest{
		Config:  cfg,
		Options: build.BuildOptions{Force: b.Force, DryRun: b.DryRun},
	})
	if err != nil {
		return err
	}
	printSummary(kctx.Stdout, res, b.DryRun)
	return nil
}

func printSummary(w io.Writer, res *build.BuildResult, dryRun bool) {
	if dryRun {
		_, _ = fmt.Fprintf(w, "Rendered %d posts and %d tags (dry run, nothing written)\n", res.Posts, res.Tags)
	} else {
		_, _ = fmt.Fprintf(w, "Built %d posts and %d tags into %s: %d written, %d unchanged",
			res.Posts, res.Tags, res.OutputPath, res.PagesWritten, res.PagesSkipped)
		if res.PagesRemoved > 0 {
			_, _ = fmt.Fprintf(w, ", %d removed", res.PagesRemoved)
		}
		_, _ = fmt.Fprintf(w, " (%s)\n", res.Duration.Round(time.Millisecond))
	}
	for _, b := range res.BrokenLinks {
		_, _ = fmt.Fprintf(w, "broken link: %s -> %s\n", b.Page, b.Link.URL)
	}
}
