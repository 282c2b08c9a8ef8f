package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Globals

	Version kong.VersionFlag `short:"v" help:"Show version"`
	Play    PlayCmd          `cmd:"" default:"1" help:"Draw cards interactively in the terminal"`
	Serve   ServeCmd         `cmd:"" help:"Serve the session over HTTP and WebSocket"`
	Run     RunCmd           `cmd:"" help:"Auto-draw the whole deck without a UI and print the result"`
	Sim     SimCmd           `cmd:"" help:"Estimate draw frequencies empirically"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("cardsim"),
		kong.Description("Draw cards from a 36-card deck and watch the odds change"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}
