package game

import (
	"fmt"
	"io"
	"slices"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/require"

	"github.com/lox/rhythmbet/internal/randutil"
)

type stubPool struct {
	quests  []Quest
	next    int
	removed []Quest
}

func newStubPool(n int) *stubPool {
	p := &stubPool{}
	for i := range n {
		p.quests = append(p.quests, Quest{ID: fmt.Sprintf("q%d", i+1), Description: fmt.Sprintf("Quest %d", i+1)})
	}
	return p
}

func (p *stubPool) Draw() (Quest, error) {
	if len(p.quests) == 0 {
		return Quest{}, ErrEmptyPool
	}
	q := p.quests[p.next%len(p.quests)]
	p.next++
	return q, nil
}

func (p *stubPool) Remove(q Quest) {
	p.removed = append(p.removed, q)
	p.quests = slices.DeleteFunc(p.quests, func(x Quest) bool { return x.ID == q.ID })
}

type recordingSink struct {
	snaps []Snapshot
}

func (s *recordingSink) Publish(snap Snapshot) error {
	s.snaps = append(s.snaps, snap)
	return nil
}

func testLogger() *log.Logger {
	return log.New(io.Discard)
}

// newTestGame creates a game with events and cards off unless opts turn them
// back on, and enrolls ids.
func newTestGame(t *testing.T, ids []string, opts ...Option) *Game {
	t.Helper()
	base := []Option{
		WithID("test"),
		WithoutEvents(),
		WithCards(false),
		WithClock(quartz.NewMock(t)),
		WithLogger(testLogger()),
	}
	g, err := NewGame(randutil.New(42), newStubPool(10), append(base, opts...)...)
	require.NoError(t, err)
	for _, id := range ids {
		_, err := g.Enroll(id)
		require.NoError(t, err)
	}
	return g
}

// openBetting runs the next turn of a started game up to BET.
func openBetting(t *testing.T, g *Game) {
	t.Helper()
	_, err := g.DrawEvent()
	require.NoError(t, err)
	_, err = g.DrawQuest()
	require.NoError(t, err)
	require.NoError(t, g.Verify())
	require.Equal(t, PhaseBet, g.Phase())
}

func startBetting(t *testing.T, g *Game) {
	t.Helper()
	require.NoError(t, g.Start())
	openBetting(t, g)
}

// evaluate runs preprocessing and both evaluations.
func evaluate(t *testing.T, g *Game) {
	t.Helper()
	require.NoError(t, g.Preprocess())
	require.NoError(t, g.EvaluateScore())
	require.NoError(t, g.EvaluateBet())
	require.Equal(t, PhaseEndTurn, g.Phase())
}

func scores(g *Game) map[string]int {
	out := make(map[string]int)
	for _, p := range g.Players() {
		out[p.ID] = p.Score
	}
	return out
}

func newPlayers(ids ...string) []*Player {
	out := make([]*Player, len(ids))
	for i, id := range ids {
		out[i] = &Player{ID: id}
	}
	return out
}

func testTurn(players []*Player, pol *TurnPolicy) *Turn {
	ranking := make([]string, len(players))
	for i, p := range players {
		ranking[i] = p.ID
	}
	return newTurn(players, ranking, pol, Arcaea, randutil.New(1))
}

func bet(bettor, target *Player, stake int) {
	bettor.TookBet = true
	bettor.BetTarget = target.ID
	bettor.Stake = stake
}
