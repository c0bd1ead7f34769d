package main

import (
	"fmt"
	"os"
	"text/tabwriter"
)

type QuestsCmd struct {
	File string `arg:"" optional:"" type:"existingfile" help:"JSON quest or chart export to list instead of the session's quests"`
}

func (c *QuestsCmd) Run(globals *Globals) error {
	cfg, err := loadConfig(globals)
	if err != nil {
		return err
	}
	if c.File != "" {
		cfg.Quests = nil
		cfg.Game.QuestFile = c.File
	}

	quests, err := sessionQuests(cfg)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDESCRIPTION")
	for _, q := range quests {
		fmt.Fprintf(tw, "%s\t%s\n", q.ID, q.Description)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Printf("\n%d quests\n", len(quests))
	return nil
}
