package main

import (
	"fmt"
	"io"
	"os"

	"github.com/lox/rhythmbet/cmd/rhythmbet/shared"
	"github.com/lox/rhythmbet/internal/console"
)

type ConsoleCmd struct {
	Script string `short:"s" type:"existingfile" help:"Read commands from a file instead of stdin"`
}

func (c *ConsoleCmd) Run(globals *Globals) error {
	cfg, err := loadConfig(globals)
	if err != nil {
		return err
	}
	logger, closeLog, err := consoleLogger(cfg, globals)
	if err != nil {
		return err
	}
	defer closeLog()

	g, seed, err := newSession(cfg, logger)
	if err != nil {
		return err
	}

	ctx, cancel := shared.SetupSignalHandler(logger)
	defer cancel()

	var in io.Reader = os.Stdin
	prompt := true
	if c.Script != "" {
		f, err := os.Open(c.Script)
		if err != nil {
			return fmt.Errorf("open script: %w", err)
		}
		defer f.Close()
		in, prompt = f, false
	}

	fmt.Println(banner(g, seed))
	return console.New(g, os.Stdout, logger).Run(ctx, in, prompt)
}
