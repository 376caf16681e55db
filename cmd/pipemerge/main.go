package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/pipemerge/cmd/pipemerge/commands"
	"git.home.luguber.info/inful/pipemerge/internal/foundation/errors"
	"git.home.luguber.info/inful/pipemerge/internal/version"
)

func main() {
	cli := &commands.CLI{}
	global := &commands.Global{Logger: slog.Default(), Stdout: os.Stdout}

	ctx := kong.Parse(cli,
		kong.Name("pipemerge"),
		kong.Description("Merge documentation build components into per-target pipeline configurations."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
		kong.Bind(global),
	)

	if err := ctx.Run(global, cli); err != nil {
		errors.NewCLIErrorAdapter(cli.Verbose, global.Logger).HandleError(err)
	}
}
