package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/lox/rhythmbet/cmd/rhythmbet/shared"
	"github.com/lox/rhythmbet/internal/game"
	"github.com/lox/rhythmbet/internal/randutil"
	"github.com/lox/rhythmbet/internal/simulator"
	"github.com/lox/rhythmbet/internal/statistics"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15"))

	winnerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))
)

type SimulateCmd struct {
	Games    int           `short:"n" default:"100" help:"Number of rounds to play"`
	Players  int           `short:"p" default:"4" help:"Bots per round"`
	Agents   string        `default:"mixed" enum:"mixed,pass,rand,leader" help:"Bot type: mixed, pass, rand, leader"`
	Turns    int           `help:"Turns per round, overrides the session file"`
	Cards    bool          `help:"Let bots buy cards, overrides the session file"`
	Parallel int           `short:"j" default:"4" help:"Rounds played at once"`
	Timeout  time.Duration `default:"10s" help:"Per-round timeout"`
	Verbose  bool          `help:"Log every turn report"`
}

func (c *SimulateCmd) Run(globals *Globals) error {
	cfg, err := loadConfig(globals)
	if err != nil {
		return err
	}
	logger := shared.SetupLogger(os.Stderr, cfg.Level(), globals.NoColor)

	opts, err := cfg.GameOptions()
	if err != nil {
		return err
	}
	if c.Turns > 0 {
		opts = append(opts, game.WithTurns(c.Turns))
	}
	if c.Cards {
		opts = append(opts, game.WithCards(true))
	}
	if c.Verbose {
		opts = append(opts, game.WithSink(game.NewLogSink(logger)))
	}
	quests, err := sessionQuests(cfg)
	if err != nil {
		return err
	}
	gt, err := game.ParseGameType(cfg.Game.Type)
	if err != nil {
		return err
	}
	seed := cfg.Game.Seed
	if seed == 0 {
		seed = randutil.Seed()
	}

	ctx, cancel := shared.SetupSignalHandler(logger)
	defer cancel()

	start := time.Now()
	results, stats, err := simulator.New(simulator.Config{
		Games:    c.Games,
		Players:  c.Players,
		Agents:   c.Agents,
		GameType: gt,
		Seed:     seed,
		Parallel: c.Parallel,
		Timeout:  c.Timeout,
		Quests:   quests,
		Options:  opts,
		Logger:   logger,
	}).Run(ctx)
	if err != nil {
		return err
	}
	logger.Info("Simulation complete", "rounds", len(results), "seed", seed, "duration", time.Since(start).Round(time.Millisecond))

	if c.Games == 1 {
		fmt.Println(results[0].Report)
	}
	return printSummary(stats, gt, seed)
}

func printSummary(stats *statistics.Statistics, gt game.GameType, seed int64) error {
	fmt.Println(headerStyle.Render(fmt.Sprintf("%d rounds of %s (seed %d)", stats.Rounds, gt, seed)))
	fmt.Println()

	best := ""
	for _, id := range stats.IDs() {
		if best == "" || stats.Player(id).Wins > stats.Player(best).Wins {
			best = id
		}
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PLAYER\tWINS\tSHARED\tWIN%\tMEAN\tSTDDEV\t95% CI\tMEDIAN")
	for _, id := range stats.IDs() {
		ps := stats.Player(id)
		lo, hi := ps.ConfidenceInterval95()
		fmt.Fprintf(tw, "%s\t%d\t%d\t%.1f\t%.2f\t%.2f\t[%.2f, %.2f]\t%.1f\n",
			id, ps.Wins, ps.SharedWins, 100*stats.WinRate(id), ps.Mean(), ps.StdDev(), lo, hi, ps.Median())
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Println()
	fmt.Printf("Most wins: %s\n", winnerStyle.Render(best))
	fmt.Printf("Ties: %d  Events: %d  Cards: %d  Scores: %d to %d\n",
		stats.Ties, stats.Events, stats.Cards, stats.LowScore, stats.HighScore)
	return nil
}
