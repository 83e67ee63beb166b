package commands

import (
	"fmt"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/blogbuilder/internal/tagslug"
)

// SlugCmd implements the 'slug' command.
type SlugCmd struct {
	Tags   []string `arg:"" name:"tag" help:"Tag names; quote tags containing spaces"`
	Suffix bool     `short:"s" help:"Print only the slug, without the /blog/tag/ prefix"`
}

func (s *SlugCmd) Run(kctx *kong.Context) error {
	for _, tag := range s.Tags {
		out := tagslug.Identifier(tag)
		if s.Suffix {
			out = tagslug.Slug(tag)
		}
		_, _ = fmt.Fprintln(kctx.Stdout, out)
	}
	return nil
}
