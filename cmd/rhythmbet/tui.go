package main

import (
	"github.com/lox/rhythmbet/cmd/rhythmbet/shared"
	"github.com/lox/rhythmbet/internal/tui"
)

type TUICmd struct {
	LogFile string `default:"rhythmbet.log" help:"Log file, used when the session file sets none"`
}

func (c *TUICmd) Run(globals *Globals) error {
	cfg, err := loadConfig(globals)
	if err != nil {
		return err
	}

	path := cfg.Game.LogFile
	if path == "" {
		path = c.LogFile
	}
	logger, f, err := shared.SetupFileLogger(path, cfg.Level())
	if err != nil {
		return err
	}
	defer f.Close()

	g, _, err := newSession(cfg, logger)
	if err != nil {
		return err
	}
	return tui.Run(g, logger)
}
