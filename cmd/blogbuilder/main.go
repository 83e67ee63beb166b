package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/blogbuilder/cmd/blogbuilder/commands"
	"git.home.luguber.info/inful/blogbuilder/internal/foundation/errors"
)

func main() {
	cli := &commands.CLI{}
	if err := run(cli, os.Args[1:]); err != nil {
		errors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
	}
}

// run parses args into cli and executes the selected command. Parse
// errors print usage and exit.
func run(cli *commands.CLI, args []string, options ...kong.Option) error {
	parser, err := commands.NewParser(cli, options...)
	if err != nil {
		return err
	}
	kctx, err := parser.Parse(args)
	parser.FatalIfErrorf(err)
	return kctx.Run()
}
