// Package quest provides the in-memory quest pool a game draws from.
package quest

import (
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/lox/rhythmbet/internal/game"
)

// Pool holds the quests not yet played in a session.
type Pool struct {
	quests []game.Quest
	rng    *rand.Rand
}

// NewPool creates a pool over quests. Draws are uniform over whatever is left.
func NewPool(rng *rand.Rand, quests ...game.Quest) *Pool {
	if rng == nil {
		panic("rng is required for quest pool creation")
	}
	return &Pool{quests: slices.Clone(quests), rng: rng}
}

// Add appends q to the pool. Ids must be unique.
func (p *Pool) Add(q game.Quest) error {
	if slices.ContainsFunc(p.quests, func(x game.Quest) bool { return x.ID == q.ID }) {
		return fmt.Errorf("quest %q already in pool", q.ID)
	}
	p.quests = append(p.quests, q)
	return nil
}

// Draw returns a random quest without removing it. The game retires a quest
// through Remove when its turn ends or when it is rejected by a redraw.
func (p *Pool) Draw() (game.Quest, error) {
	if len(p.quests) == 0 {
		return game.Quest{}, game.ErrEmptyPool
	}
	return p.quests[p.rng.IntN(len(p.quests))], nil
}

// Remove retires q. Removing a quest that is not in the pool does nothing.
func (p *Pool) Remove(q game.Quest) {
	p.quests = slices.DeleteFunc(p.quests, func(x game.Quest) bool { return x.ID == q.ID })
}

// Len returns the number of quests left.
func (p *Pool) Len() int { return len(p.quests) }

// Quests returns the remaining quests in insertion order.
func (p *Pool) Quests() []game.Quest { return slices.Clone(p.quests) }
