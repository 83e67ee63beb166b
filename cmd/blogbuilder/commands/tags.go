package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/blogbuilder/internal/blog"
	"git.home.luguber.info/inful/blogbuilder/internal/tagging"
)

// TagsCmd implements the 'tags' command.
type TagsCmd struct {
	Popular int  `short:"p" help:"Show only the N most used tags, by post count"`
	Drafts  bool `help:"Include posts marked draft"`
}

func (t *TagsCmd) Run(kctx *kong.Context, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	ctx, stop := signalContext()
	defer stop()

	posts, err := blog.Load(ctx, cfg.Content.PostsDir, blog.LoadOptions{
		Drafts: cfg.Content.Drafts || t.Drafts,
		Future: cfg.Content.Future,
	})
	if err != nil {
		return err
	}

	postIdx, err := blog.NewIndex(posts)
	if err != nil {
		return err
	}
	idx := tagging.NewIndex(postIdx.All())
	tags := idx.Tags()
	if t.Popular > 0 {
		tags = idx.Popular(t.Popular)
	}

	tw := tabwriter.NewWriter(kctx.Stdout, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "PATH\tPOSTS\tNAME")
	for _, tag := range tags {
		_, _ = fmt.Fprintf(tw, "%s\t%d\t%s\n", tag.Identifier, tag.Count(), tag.Name)
	}
	return tw.Flush()
}
