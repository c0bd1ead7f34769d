package simulator

import (
	"fmt"
	"math/rand/v2"

	"github.com/lox/rhythmbet/internal/game"
	"github.com/lox/rhythmbet/internal/randutil"
)

// Agent decides what a simulated player does during a turn.
type Agent interface {
	// Bet returns the target and stake of this turn's bet, or ok=false to
	// pass.
	Bet(g *game.Game, self string) (target string, stake int, ok bool)
	// Score returns the play score to submit.
	Score(g *game.Game, self string) int
	// BuyCard reports whether to queue for this turn's card.
	BuyCard(g *game.Game, self string) bool
	// KeepCard reports whether to accept a revealed card.
	KeepCard(g *game.Game, self string, c *game.Card) bool
}

// AgentTypes lists the agent names accepted by NewAgent, plus "mixed".
var AgentTypes = []string{"pass", "rand", "leader"}

// NewAgent creates an agent by name.
func NewAgent(kind string, rng *rand.Rand) (Agent, error) {
	skill := 0.80 + 0.15*rng.Float64()
	switch kind {
	case "pass":
		return &passAgent{rng: rng, skill: skill}, nil
	case "rand":
		return &randAgent{rng: rng, skill: skill}, nil
	case "leader":
		return &leaderAgent{rng: rng, skill: skill}, nil
	}
	return nil, fmt.Errorf("unknown agent type %q", kind)
}

// playScore rolls a score around skill*max, never above max.
func playScore(g *game.Game, rng *rand.Rand, skill float64) int {
	top, err := game.MaxScore(g.GameType())
	if err != nil {
		return 0
	}
	jitter := (rng.Float64() - 0.5) * 0.1
	return max(0, min(top, int(float64(top)*(skill+jitter))))
}

func opponents(g *game.Game, self string) []string {
	var ids []string
	for _, p := range g.Standings() {
		if p.ID != self {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

// passAgent never bets and never buys cards.
type passAgent struct {
	rng   *rand.Rand
	skill float64
}

func (a *passAgent) Bet(*game.Game, string) (string, int, bool) { return "", 0, false }

func (a *passAgent) Score(g *game.Game, _ string) int { return playScore(g, a.rng, a.skill) }

func (a *passAgent) BuyCard(*game.Game, string) bool { return false }

func (a *passAgent) KeepCard(*game.Game, string, *game.Card) bool { return false }

// randAgent bets on a random opponent three turns in four.
type randAgent struct {
	rng   *rand.Rand
	skill float64
}

func (a *randAgent) Bet(g *game.Game, self string) (string, int, bool) {
	ids := opponents(g, self)
	if len(ids) == 0 || a.rng.IntN(4) == 0 {
		return "", 0, false
	}
	return randutil.Pick(a.rng, ids), 1 + a.rng.IntN(len(ids)+1), true
}

func (a *randAgent) Score(g *game.Game, _ string) int { return playScore(g, a.rng, a.skill) }

func (a *randAgent) BuyCard(*game.Game, string) bool { return a.rng.IntN(6) == 0 }

func (a *randAgent) KeepCard(*game.Game, string, *game.Card) bool { return a.rng.IntN(2) == 0 }

// leaderAgent bets half the field on the current leader and buys a card
// whenever it is last.
type leaderAgent struct {
	rng   *rand.Rand
	skill float64
}

func (a *leaderAgent) Bet(g *game.Game, self string) (string, int, bool) {
	ids := opponents(g, self)
	if len(ids) == 0 {
		return "", 0, false
	}
	return ids[0], max(1, (len(ids)+1)/2), true
}

func (a *leaderAgent) Score(g *game.Game, _ string) int { return playScore(g, a.rng, a.skill) }

func (a *leaderAgent) BuyCard(g *game.Game, self string) bool {
	s := g.Standings()
	return len(s) > 0 && s[len(s)-1].ID == self
}

func (a *leaderAgent) KeepCard(_ *game.Game, _ string, c *game.Card) bool {
	return c.Kind != game.CardFake && c.Kind != game.CardReverseRank
}
