package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

// Globals are the flags shared by every command.
type Globals struct {
	Config  string `short:"c" default:"rhythmbet.hcl" help:"Session file (HCL)"`
	EnvFile string `default:".env" help:"Environment file loaded before RHYTHMBET_* overrides"`
	Seed    *int64 `help:"RNG seed, overrides the session file"`
	Debug   bool   `short:"d" help:"Enable debug logging"`
	NoColor bool   `help:"Disable coloured output"`
}

type CLI struct {
	Globals

	Version  kong.VersionFlag `short:"v" help:"Show version"`
	Console  ConsoleCmd       `cmd:"" default:"withargs" help:"Run a session from a line-based console"`
	TUI      TUICmd           `cmd:"tui" help:"Run a session in the terminal UI"`
	Simulate SimulateCmd      `cmd:"" help:"Play rounds between bots and summarise the results"`
	Quests   QuestsCmd        `cmd:"" help:"List the quests a session would draw from"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("rhythmbet"),
		kong.Description("Bet on who plays the chart better, turn by turn"),
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
