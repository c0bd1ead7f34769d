package game

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"
)

// Report renders the game state as text. It has no side effects, so calling
// it twice in the same state gives the same output.
func (g *Game) Report() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Game %s · %s · ", g.id, g.cfg.gameType)
	switch g.phase {
	case PhaseUnavailable:
		fmt.Fprintf(&b, "waiting to start (%d players)\n", g.manager.Len())
	case PhaseFinished:
		fmt.Fprintf(&b, "finished after %d turns\n", g.turn)
	default:
		fmt.Fprintf(&b, "turn %d/%d · %s\n", g.turn, g.cfg.turns, g.phase)
	}

	if g.phase != PhaseUnavailable && g.phase != PhaseFinished {
		if !g.started.IsZero() {
			fmt.Fprintf(&b, "Started: %s\n", g.started.Format("15:04:05"))
		}
		if g.quest != nil {
			fmt.Fprintf(&b, "Quest: %s\n", g.quest.Description)
		}
		if len(g.policy.Notes) > 0 {
			b.WriteString("Effects:\n")
			for _, n := range g.policy.Notes {
				fmt.Fprintf(&b, "  - %s\n", n)
			}
		}
		g.writeCardLine(&b)
	}

	b.WriteString("\n")
	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PLAYER\tSCORE\tBET\tSTAKE\tPLAY\tRANK\tPOINTS\tREWARD")
	for _, p := range g.manager.Standings() {
		bet := "-"
		stake := "-"
		switch {
		case p.HasBet():
			bet = p.BetTarget
			stake = strconv.Itoa(p.Stake)
		case p.TookBet:
			bet = "pass"
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			p.ID, p.Score, bet, stake,
			optional(p.PlayingScore, false), optional(p.Rank, false),
			optional(p.TurnPoints, true), optional(p.BetReward, true))
	}
	tw.Flush()

	if g.phase == PhaseFinished {
		leaders := g.manager.Leaders()
		ids := make([]string, len(leaders))
		for i, p := range leaders {
			ids[i] = p.ID
		}
		fmt.Fprintf(&b, "\nWinner: %s\n", strings.Join(ids, ", "))
	}
	return b.String()
}

func (g *Game) writeCardLine(b *strings.Builder) {
	switch g.cards.State() {
	case CardUnavailable:
		return
	case CardAvailable:
		b.WriteString("Card: available\n")
	case CardCall:
		fmt.Fprintf(b, "Card: buyers %s\n", strings.Join(g.cards.Pending(), ", "))
	case CardDetermined:
		c := g.cards.Card()
		fmt.Fprintf(b, "Card: %s revealed for %s, awaiting decision\n", c.Kind, c.Owner)
	}
}

func optional(v *int, signed bool) string {
	if v == nil {
		return "-"
	}
	if signed && *v > 0 {
		return "+" + strconv.Itoa(*v)
	}
	return strconv.Itoa(*v)
}
