package main

import (
	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
)

var version = "dev"

// CLI is the twentynine command line
type CLI struct {
	Globals

	Version  kong.VersionFlag `short:"v" help:"Show version"`
	Play     PlayCmd          `cmd:"" help:"Play a match between agents and print the game log"`
	Human    HumanCmd         `cmd:"" help:"Play a match against agents in the terminal"`
	Simulate SimulateCmd      `cmd:"" help:"Run many matches in parallel and report statistics"`
	Serve    ServeCmd         `cmd:"" help:"Serve the environment over websockets"`
	Rules    RulesCmd         `cmd:"" help:"Print the action id table and scoring rules"`
	History  HistoryCmd       `cmd:"" help:"Round history utilities"`
}

func main() {
	// A missing .env file is fine.
	_ = godotenv.Load()

	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("twentynine"),
		kong.Description("Rules engine, agents and tools for the card game 29"),
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
