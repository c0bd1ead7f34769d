package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/lox/rhythmbet/cmd/rhythmbet/shared"
	"github.com/lox/rhythmbet/internal/config"
	"github.com/lox/rhythmbet/internal/fileutil"
	"github.com/lox/rhythmbet/internal/game"
	"github.com/lox/rhythmbet/internal/quest"
	"github.com/lox/rhythmbet/internal/randutil"
)

var bannerStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("13")).
	Padding(0, 1).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("5"))

func banner(g *game.Game, seed int64) string {
	return bannerStyle.Render(fmt.Sprintf("rhythmbet %s · %s · %d turns · seed %d", g.ID(), g.GameType(), g.Turns(), seed))
}

// loadConfig resolves the session settings: .env, then the session file,
// then RHYTHMBET_* variables, then flags.
func loadConfig(globals *Globals) (*config.Config, error) {
	if globals.NoColor {
		shared.DisableColor()
	}
	if err := config.LoadDotEnv(globals.EnvFile); err != nil {
		return nil, err
	}
	cfg, err := config.Load(globals.Config)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if globals.Seed != nil {
		cfg.Game.Seed = *globals.Seed
	}
	if globals.Debug {
		cfg.Game.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", globals.Config, err)
	}
	return cfg, nil
}

// sessionQuests collects the quests of the file, then the JSON quest file,
// falling back to the built-in list when both are empty.
func sessionQuests(cfg *config.Config) ([]game.Quest, error) {
	quests := cfg.QuestList()
	if path := cfg.Game.QuestFile; path != "" {
		more, err := quest.LoadJSONFile(path)
		if err != nil {
			return nil, err
		}
		quests = append(quests, more...)
	}
	if len(quests) == 0 {
		gt, err := game.ParseGameType(cfg.Game.Type)
		if err != nil {
			return nil, err
		}
		quests = quest.Builtin(gt)
	}
	return quests, nil
}

// newSession builds the game described by cfg and enrolls its players.
func newSession(cfg *config.Config, logger *log.Logger) (*game.Game, int64, error) {
	seed := cfg.Game.Seed
	if seed == 0 {
		seed = randutil.Seed()
	}
	rng := randutil.New(seed)

	quests, err := sessionQuests(cfg)
	if err != nil {
		return nil, 0, err
	}
	pool := quest.NewPool(rng)
	for _, q := range quests {
		if err := pool.Add(q); err != nil {
			return nil, 0, err
		}
	}

	opts, err := cfg.GameOptions()
	if err != nil {
		return nil, 0, err
	}
	opts = append(opts, game.WithLogger(logger))
	if path := cfg.Game.ReportFile; path != "" {
		if err := fileutil.EnsureDir(path); err != nil {
			return nil, 0, err
		}
		opts = append(opts, game.WithSink(game.NewFileSink(path)))
	}

	g, err := game.NewGame(rng, pool, opts...)
	if err != nil {
		return nil, 0, err
	}
	for _, name := range cfg.PlayerNames() {
		if _, err := g.Enroll(name); err != nil {
			return nil, 0, err
		}
	}

	logger.Info("Session ready", "game", g.ID(), "type", g.GameType(), "seed", seed, "quests", pool.Len(), "players", len(g.Players()))
	return g, seed, nil
}

// consoleLogger logs to the configured log file, or stderr without one.
func consoleLogger(cfg *config.Config, globals *Globals) (*log.Logger, func(), error) {
	if cfg.Game.LogFile == "" {
		return shared.SetupLogger(os.Stderr, cfg.Level(), globals.NoColor), func() {}, nil
	}
	logger, f, err := shared.SetupFileLogger(cfg.Game.LogFile, cfg.Level())
	if err != nil {
		return nil, nil, err
	}
	return logger, func() {
		if err := f.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
			fmt.Fprintf(os.Stderr, "close log file: %v\n", err)
		}
	}, nil
}
