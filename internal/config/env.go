package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment variables that override the session file.
const (
	// EnvSeed seeds every random draw of the session.
	EnvSeed = "RHYTHMBET_SEED"

	// EnvGameType selects the rhythm game ("arcaea" or "phigros").
	EnvGameType = "RHYTHMBET_GAME_TYPE"

	// EnvTurns sets the number of turns per round.
	EnvTurns = "RHYTHMBET_TURNS"

	// EnvLogLevel sets the log level.
	EnvLogLevel = "RHYTHMBET_LOG_LEVEL"
)

// LoadDotEnv loads variables from the given .env files into the process
// environment. Missing files are skipped and variables that are already set
// win over the file.
func LoadDotEnv(files ...string) error {
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv overrides settings with any RHYTHMBET_* variables that are set.
func (c *Config) ApplyEnv() error {
	if s := os.Getenv(EnvSeed); s != "" {
		seed, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid %s value: %w", EnvSeed, err)
		}
		c.Game.Seed = seed
	}
	if s := os.Getenv(EnvGameType); s != "" {
		c.Game.Type = s
	}
	if s := os.Getenv(EnvTurns); s != "" {
		turns, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("invalid %s value: %w", EnvTurns, err)
		}
		c.Game.Turns = turns
	}
	if s := os.Getenv(EnvLogLevel); s != "" {
		c.Game.LogLevel = s
	}
	return nil
}
