// Package config loads session settings from an HCL file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/rhythmbet/internal/game"
)

// Config represents a complete session file.
type Config struct {
	Game    *GameSettings  `hcl:"game,block"`
	Players []PlayerConfig `hcl:"player,block"`
	Quests  []QuestConfig  `hcl:"quest,block"`
}

// GameSettings contains the session rules. Pointer fields distinguish an
// explicit false or zero from a missing attribute.
type GameSettings struct {
	Type            string `hcl:"type,optional"`
	Turns           int    `hcl:"turns,optional"`
	Cards           *bool  `hcl:"cards,optional"`
	CardCost        *int   `hcl:"card_cost,optional"`
	BettedDeduct    *bool  `hcl:"betted_deduct,optional"`
	BetFailedDeduct *bool  `hcl:"bet_failed_deduct,optional"`
	Seed            int64  `hcl:"seed,optional"`
	LogLevel        string `hcl:"log_level,optional"`
	LogFile         string `hcl:"log_file,optional"`
	ReportFile      string `hcl:"report_file,optional"`
	QuestFile       string `hcl:"quest_file,optional"`
}

// PlayerConfig enrolls a player when the session starts.
type PlayerConfig struct {
	Name string `hcl:"name,label"`
}

// QuestConfig adds a quest to the pool.
type QuestConfig struct {
	ID          string `hcl:"id,label"`
	Description string `hcl:"description"`
}

const defaultTurns = 5

// DefaultConfig returns the settings used when no session file exists.
func DefaultConfig() *Config {
	cfg := &Config{Game: &GameSettings{}}
	cfg.applyDefaults()
	return cfg
}

// Load reads the session file at filename. A missing file yields the
// defaults.
func Load(filename string) (*Config, error) {
	src, err := os.ReadFile(filename)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(src, filename)
}

// Parse decodes HCL source. filename is only used in diagnostics.
func Parse(src []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var cfg Config
	diags = gohcl.DecodeBody(file.Body, nil, &cfg)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Game == nil {
		c.Game = &GameSettings{}
	}
	g := c.Game
	if g.Type == "" {
		g.Type = string(game.Arcaea)
	}
	if g.Turns == 0 {
		g.Turns = defaultTurns
	}
	if g.Cards == nil {
		g.Cards = boolPtr(false)
	}
	defaults := game.DefaultRules()
	if g.BettedDeduct == nil {
		g.BettedDeduct = boolPtr(defaults.BettedDeduct)
	}
	if g.BetFailedDeduct == nil {
		g.BetFailedDeduct = boolPtr(defaults.BetFailedDeduct)
	}
	if g.LogLevel == "" {
		g.LogLevel = "info"
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	g := c.Game
	if _, err := game.ParseGameType(g.Type); err != nil {
		return err
	}
	if g.Turns < 1 {
		return fmt.Errorf("invalid turns: %d", g.Turns)
	}
	if g.CardCost != nil && *g.CardCost < 0 {
		return fmt.Errorf("invalid card_cost: %d", *g.CardCost)
	}
	if _, err := log.ParseLevel(g.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level %q: %w", g.LogLevel, err)
	}

	players := make(map[string]bool)
	for _, p := range c.Players {
		if p.Name == "" {
			return fmt.Errorf("player name cannot be empty")
		}
		if n := utf8.RuneCountInString(strings.TrimSpace(p.Name)); n >= game.MaxIDLen {
			return fmt.Errorf("player %q: name must be shorter than %d characters", p.Name, game.MaxIDLen)
		}
		if players[p.Name] {
			return fmt.Errorf("duplicate player: %s", p.Name)
		}
		players[p.Name] = true
	}

	quests := make(map[string]bool)
	for _, q := range c.Quests {
		if q.Description == "" {
			return fmt.Errorf("quest %s has no description", q.ID)
		}
		if quests[q.ID] {
			return fmt.Errorf("duplicate quest: %s", q.ID)
		}
		quests[q.ID] = true
	}
	return nil
}

// Level returns the configured log level, falling back to info.
func (c *Config) Level() log.Level {
	lvl, err := log.ParseLevel(c.Game.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

// Rules returns the rule flags every turn starts from.
func (c *Config) Rules() game.Rules {
	return game.Rules{
		BettedDeduct:    *c.Game.BettedDeduct,
		BetFailedDeduct: *c.Game.BetFailedDeduct,
	}
}

// GameOptions converts the settings into engine options.
func (c *Config) GameOptions() ([]game.Option, error) {
	gt, err := game.ParseGameType(c.Game.Type)
	if err != nil {
		return nil, err
	}
	opts := []game.Option{
		game.WithGameType(gt),
		game.WithTurns(c.Game.Turns),
		game.WithCards(*c.Game.Cards),
		game.WithRules(c.Rules()),
	}
	if c.Game.CardCost != nil {
		opts = append(opts, game.WithCardCost(*c.Game.CardCost))
	}
	return opts, nil
}

// QuestList returns the quests declared in the file.
func (c *Config) QuestList() []game.Quest {
	out := make([]game.Quest, len(c.Quests))
	for i, q := range c.Quests {
		out[i] = game.Quest{ID: q.ID, Description: q.Description}
	}
	return out
}

// PlayerNames returns the players declared in the file, in order.
func (c *Config) PlayerNames() []string {
	out := make([]string, len(c.Players))
	for i, p := range c.Players {
		out[i] = p.Name
	}
	return out
}

func boolPtr(b bool) *bool { return &b }
