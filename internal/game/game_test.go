package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/rhythmbet/internal/randutil"
)

func playWorkedExample(t *testing.T, g *Game) {
	t.Helper()
	startBetting(t, g)
	require.NoError(t, g.Bet("A", "B", 2))
	require.NoError(t, g.Bet("B", "C", 1))
	require.NoError(t, g.Bet("C", "A", 1))
	require.Equal(t, PhasePlay, g.Phase())

	require.NoError(t, g.Play("A", "100"))
	require.NoError(t, g.Play("B", "300"))
	require.NoError(t, g.Play("C", "200"))
	require.Equal(t, PhasePreprocess, g.Phase())

	evaluate(t, g)
}

func TestWorkedExample(t *testing.T) {
	t.Parallel()

	t.Run("without target deduction", func(t *testing.T) {
		t.Parallel()
		g := newTestGame(t, []string{"A", "B", "C"}, WithRules(Rules{BetFailedDeduct: true}))
		playWorkedExample(t, g)

		assert.Equal(t, map[string]int{"A": 2, "B": 1, "C": 0}, scores(g))

		a, _ := g.Player("A")
		b, _ := g.Player("B")
		c, _ := g.Player("C")
		assert.Equal(t, 2, *a.Rank)
		assert.Equal(t, 0, *b.Rank)
		assert.Equal(t, 1, *c.Rank)
		assert.Equal(t, 2, *b.TurnPoints)
		assert.Equal(t, 1, *c.TurnPoints)
		assert.Equal(t, 0, *a.TurnPoints)
		assert.Equal(t, 2, *a.BetReward)
		assert.Equal(t, -1, *b.BetReward)
		assert.Equal(t, -1, *c.BetReward)
		assert.Nil(t, b.BettedCount, "incoming bets are only counted when deducted")
	})

	t.Run("default rules", func(t *testing.T) {
		t.Parallel()
		g := newTestGame(t, []string{"A", "B", "C"})
		playWorkedExample(t, g)
		assert.Equal(t, map[string]int{"A": 1, "B": 0, "C": -1}, scores(g))
	})

	t.Run("bonus time", func(t *testing.T) {
		t.Parallel()
		g := newTestGame(t, []string{"A", "B", "C"},
			WithRules(Rules{BetFailedDeduct: true}), WithEventKinds(EventBonusTime))
		playWorkedExample(t, g)
		assert.Equal(t, map[string]int{"A": 4, "B": 1, "C": 0}, scores(g))
	})

	t.Run("risk aversion event", func(t *testing.T) {
		t.Parallel()
		g := newTestGame(t, []string{"A", "B", "C"},
			WithRules(Rules{BetFailedDeduct: true}), WithEventKinds(EventRiskAversion))
		playWorkedExample(t, g)
		assert.Equal(t, map[string]int{"A": 2, "B": 2, "C": 1}, scores(g))
	})
}

func TestNewGameValidation(t *testing.T) {
	t.Parallel()

	_, err := NewGame(randutil.New(1), newStubPool(1), WithGameType("osu"))
	assert.ErrorIs(t, err, ErrUnsupportedGameType)

	_, err = NewGame(randutil.New(1), newStubPool(1), WithTurns(0))
	assert.Error(t, err)

	_, err = NewGame(randutil.New(1), newStubPool(1), WithCardCost(-1))
	assert.Error(t, err)

	assert.Panics(t, func() { _, _ = NewGame(nil, newStubPool(1)) })
	assert.Panics(t, func() { _, _ = NewGame(randutil.New(1), nil) })

	g, err := NewGame(randutil.New(1), newStubPool(1))
	require.NoError(t, err)
	assert.Len(t, g.ID(), 26, "generated session id")
	assert.Equal(t, PhaseUnavailable, g.Phase())
	assert.Equal(t, Arcaea, g.GameType())
	assert.Equal(t, 5, g.Turns())
}

func TestEnrollment(t *testing.T) {
	t.Parallel()

	g := newTestGame(t, []string{"alice"})
	assert.ErrorIs(t, g.Start(), ErrNotEnoughPlayers)

	_, err := g.Enroll("alice")
	assert.ErrorIs(t, err, ErrDuplicateID)

	_, err = g.Enroll("bob")
	require.NoError(t, err)
	require.NoError(t, g.Start())

	_, err = g.Enroll("carol")
	assert.ErrorIs(t, err, ErrInvalidPhase)
	_, err = g.Remove("bob")
	assert.ErrorIs(t, err, ErrInvalidPhase)
}

func TestPlayerLookupByPrefix(t *testing.T) {
	t.Parallel()

	g := newTestGame(t, []string{"alice", "alex", "bob"})
	startBetting(t, g)

	assert.ErrorIs(t, g.Bet("al", "bob", 1), ErrAmbiguousID)
	assert.ErrorIs(t, g.Bet("zed", "bob", 1), ErrUnknownID)
	assert.ErrorIs(t, g.Pass("x"), ErrUnknownID)

	require.NoError(t, g.Bet("ali", "b", 1))
	alice, err := g.Player("alice")
	require.NoError(t, err)
	assert.Equal(t, "bob", alice.BetTarget)
}

func TestBetStakeClamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		stake int
		want  int
	}{
		{stake: 10, want: 3},
		{stake: 3, want: 3},
		{stake: 2, want: 2},
		{stake: 0, want: 1},
		{stake: -5, want: 1},
	}
	for _, tt := range tests {
		g := newTestGame(t, []string{"A", "B", "C"})
		startBetting(t, g)
		require.NoError(t, g.Bet("A", "B", tt.stake))
		a, _ := g.Player("A")
		assert.Equal(t, tt.want, a.Stake, "stake %d", tt.stake)
	}
}

func TestSelfBetRejectedInEveryPhase(t *testing.T) {
	t.Parallel()

	g := newTestGame(t, []string{"A", "B"})
	assert.ErrorIs(t, g.Bet("A", "A", 1), ErrSelfBet)

	require.NoError(t, g.Start())
	assert.ErrorIs(t, g.Bet("A", "A", 1), ErrSelfBet)

	openBetting(t, g)
	assert.ErrorIs(t, g.Bet("A", "A", 1), ErrSelfBet)
	a, _ := g.Player("A")
	assert.False(t, a.TookBet, "a rejected bet leaves no trace")
}

func TestBetOverwriteAndBettingClosed(t *testing.T) {
	t.Parallel()

	g := newTestGame(t, []string{"A", "B", "C"})
	startBetting(t, g)

	require.NoError(t, g.Bet("A", "B", 1))
	require.NoError(t, g.Bet("A", "C", 2))
	a, _ := g.Player("A")
	assert.Equal(t, "C", a.BetTarget)
	assert.Equal(t, 2, a.Stake)
	assert.Equal(t, PhaseBet, g.Phase(), "overwriting counts the bettor once")

	require.NoError(t, g.Pass("B"))
	require.NoError(t, g.Bet("C", "A", 1))
	require.Equal(t, PhasePlay, g.Phase())

	// Late corrections are fine until the first score arrives.
	require.NoError(t, g.Bet("B", "A", 1))
	require.NoError(t, g.Play("A", "9,000,000"))

	err := g.Bet("B", "C", 1)
	assert.ErrorIs(t, err, ErrBettingClosed)
	assert.True(t, IsInvalidPhase(err))
	b, _ := g.Player("B")
	assert.Equal(t, "A", b.BetTarget)
}

func TestQuestRedraw(t *testing.T) {
	t.Parallel()

	g := newTestGame(t, []string{"A", "B"})
	startBetting(t, g)

	first, ok := g.Quest()
	require.True(t, ok)
	second, err := g.DrawQuest()
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
	assert.Equal(t, PhaseBet, g.Phase())
	assert.Equal(t, []Quest{first}, g.quests.(*stubPool).removed, "the rejected quest is retired")

	require.NoError(t, g.Pass("A"))
	_, err = g.DrawQuest()
	assert.ErrorIs(t, err, ErrQuestLocked)
	assert.True(t, IsInvalidPhase(err))

	require.NoError(t, g.Pass("B"))
	_, err = g.DrawQuest()
	assert.ErrorIs(t, err, ErrInvalidPhase)
}

func TestEmptyQuestPool(t *testing.T) {
	t.Parallel()

	g, err := NewGame(randutil.New(1), newStubPool(0), WithoutEvents(), WithCards(false))
	require.NoError(t, err)
	_, _ = g.Enroll("A")
	_, _ = g.Enroll("B")
	require.NoError(t, g.Start())
	_, err = g.DrawEvent()
	require.NoError(t, err)

	_, err = g.DrawQuest()
	assert.ErrorIs(t, err, ErrEmptyPool)
	assert.Equal(t, PhaseDrawQuest, g.Phase())
}

func TestPlayScores(t *testing.T) {
	t.Parallel()

	g := newTestGame(t, []string{"A", "B"})
	startBetting(t, g)

	assert.ErrorIs(t, g.Play("A", "100"), ErrInvalidPhase)

	require.NoError(t, g.Pass("A"))
	require.NoError(t, g.Pass("B"))

	assert.ErrorIs(t, g.Play("A", "many"), ErrInvalidScore)
	assert.ErrorIs(t, g.Play("A", "10010001"), ErrInvalidScore)
	a, _ := g.Player("A")
	assert.False(t, a.Played)

	require.NoError(t, g.Play("A", "10,010,000"))
	require.NoError(t, g.Play("B", "5"))
	require.Equal(t, PhasePreprocess, g.Phase())

	// Corrections are accepted until preprocessing runs.
	require.NoError(t, g.Play("B", "6"))
	b, _ := g.Player("B")
	assert.Equal(t, 6, *b.PlayingScore)

	require.NoError(t, g.Preprocess())
	assert.ErrorIs(t, g.Play("B", "7"), ErrInvalidPhase)
}

func TestPhaseGuards(t *testing.T) {
	t.Parallel()

	g := newTestGame(t, []string{"A", "B"})

	_, err := g.DrawEvent()
	assert.ErrorIs(t, err, ErrInvalidPhase)
	assert.ErrorIs(t, g.Verify(), ErrInvalidPhase)
	assert.ErrorIs(t, g.Preprocess(), ErrInvalidPhase)
	assert.ErrorIs(t, g.EvaluateScore(), ErrInvalidPhase)
	assert.ErrorIs(t, g.EvaluateBet(), ErrInvalidPhase)
	assert.ErrorIs(t, g.EndTurn(), ErrInvalidPhase)
	_, err = g.Winner()
	assert.ErrorIs(t, err, ErrInvalidPhase)

	require.NoError(t, g.Start())
	_, err = g.DrawQuest()
	assert.ErrorIs(t, err, ErrInvalidPhase)
	assert.ErrorIs(t, g.Start(), ErrInvalidPhase)
	assert.ErrorIs(t, g.Pass("A"), ErrInvalidPhase)
}

func TestAdvance(t *testing.T) {
	t.Parallel()

	g := newTestGame(t, []string{"A", "B"}, WithTurns(2))
	assert.ErrorIs(t, g.Advance(), ErrInvalidPhase)
	require.NoError(t, g.Start())

	for turn := 1; turn <= 2; turn++ {
		require.NoError(t, g.Advance()) // draw event
		require.NoError(t, g.Advance()) // draw quest
		require.NoError(t, g.Advance()) // verify
		assert.Equal(t, turn, g.Turn())

		assert.ErrorIs(t, g.Advance(), ErrInvalidPhase, "waits for bets")
		require.NoError(t, g.Bet("A", "B", 1))
		require.NoError(t, g.Pass("B"))
		assert.ErrorIs(t, g.Advance(), ErrInvalidPhase, "waits for scores")
		require.NoError(t, g.Play("A", "100"))
		require.NoError(t, g.Play("B", "200"))

		for g.Phase() != PhaseDrawEvent && g.Phase() != PhaseFinished {
			require.NoError(t, g.Advance())
		}
	}
	assert.Equal(t, PhaseFinished, g.Phase())

	// Turn 1: B 0-1+2=1, A 0+1=1; B ties the top so A's bet pays: A=2.
	// Turn 2: B 1-1+2=2, A 2+1=3; B is behind so A loses the stake: A=2.
	assert.Equal(t, map[string]int{"A": 2, "B": 2}, scores(g))
	winner, err := g.Winner()
	require.NoError(t, err)
	assert.Equal(t, "A, B", winner)
	assert.Contains(t, g.Report(), "Winner: A, B")
}

func TestEndTurnRetiresQuestAndPublishes(t *testing.T) {
	t.Parallel()

	sink := &recordingSink{}
	pool := newStubPool(3)
	g, err := NewGame(randutil.New(9), pool, WithID("s1"), WithTurns(1), WithoutEvents(), WithCards(false), WithSink(sink))
	require.NoError(t, err)
	_, _ = g.Enroll("A")
	_, _ = g.Enroll("B")
	startBetting(t, g)
	q, _ := g.Quest()

	require.NoError(t, g.Pass("A"))
	require.NoError(t, g.Pass("B"))
	require.NoError(t, g.Play("A", "1"))
	require.NoError(t, g.Play("B", "2"))
	evaluate(t, g)
	require.NoError(t, g.EndTurn())

	assert.Equal(t, []Quest{q}, pool.removed)
	require.Len(t, sink.snaps, 1)
	assert.Equal(t, "s1", sink.snaps[0].GameID)
	assert.Equal(t, 1, sink.snaps[0].Turn)
	assert.Contains(t, sink.snaps[0].Report, "END_TURN")
	assert.Equal(t, PhaseFinished, g.Phase())
}

func TestWinner(t *testing.T) {
	t.Parallel()

	g := newTestGame(t, []string{"B", "A", "C"}, WithTurns(1))
	startBetting(t, g)
	for _, id := range []string{"A", "B", "C"} {
		require.NoError(t, g.Pass(id))
	}
	require.NoError(t, g.Play("A", "100"))
	require.NoError(t, g.Play("B", "100"))
	require.NoError(t, g.Play("C", "50"))
	evaluate(t, g)
	require.NoError(t, g.EndTurn())

	// A and B tie on play score; the id tie-break ranks A first.
	assert.Equal(t, map[string]int{"A": 2, "B": 1, "C": 0}, scores(g))

	winner, err := g.Winner()
	require.NoError(t, err)
	assert.Equal(t, "A", winner)

	// The result is cached for the rest of the round.
	b, _ := g.Player("B")
	b.Score = 10
	winner, err = g.Winner()
	require.NoError(t, err)
	assert.Equal(t, "A", winner)

	// A new round starts from zero, so everyone ties.
	require.NoError(t, g.Start())
	for g.Phase() != PhaseFinished {
		switch g.Phase() {
		case PhaseBet:
			for _, id := range []string{"A", "B", "C"} {
				require.NoError(t, g.Pass(id))
			}
		case PhasePlay:
			for _, id := range []string{"A", "B", "C"} {
				require.NoError(t, g.Play(id, "0"))
			}
		default:
			require.NoError(t, g.Advance())
		}
	}
	winner, err = g.Winner()
	require.NoError(t, err)
	assert.Equal(t, "A", winner, "ranks are distinct even for equal play scores")
}

func TestRemoveBetweenRounds(t *testing.T) {
	t.Parallel()

	g := newTestGame(t, []string{"alice", "bob", "carol"})
	p, err := g.Remove("car")
	require.NoError(t, err)
	assert.Equal(t, "carol", p.ID)
	assert.Len(t, g.Players(), 2)

	_, err = g.Player("c")
	assert.ErrorIs(t, err, ErrUnknownID)
}

func TestTurnStateResets(t *testing.T) {
	t.Parallel()

	g := newTestGame(t, []string{"A", "B"}, WithTurns(2))
	playTurn := func() {
		require.NoError(t, g.Bet("A", "B", 2))
		require.NoError(t, g.Pass("B"))
		require.NoError(t, g.Play("A", "1"))
		require.NoError(t, g.Play("B", "2"))
		evaluate(t, g)
		require.NoError(t, g.EndTurn())
	}

	startBetting(t, g)
	playTurn()
	after := scores(g)

	openBetting(t, g)
	for _, p := range g.Players() {
		assert.False(t, p.TookBet)
		assert.Empty(t, p.BetTarget)
		assert.Nil(t, p.BettedCount)
		assert.Nil(t, p.BetReward)
		assert.Nil(t, p.PlayingScore)
		assert.Nil(t, p.Rank)
		assert.Nil(t, p.TurnPoints)
		assert.Equal(t, after[p.ID], p.Score, "scores carry over")
	}
	assert.Equal(t, 2, g.Turn())
}
