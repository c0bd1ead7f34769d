package simulator

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/rhythmbet/internal/game"
	"github.com/lox/rhythmbet/internal/randutil"
)

func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.WarnLevel})
}

func TestNew(t *testing.T) {
	t.Parallel()

	sim := New(Config{Games: 3, Players: 4})
	require.NotNil(t, sim)
	assert.Equal(t, game.Arcaea, sim.config.GameType)
	assert.Equal(t, "mixed", sim.config.Agents)
	assert.Equal(t, 1, sim.config.Parallel)
	assert.NotEmpty(t, sim.config.Quests)
	assert.NotNil(t, sim.config.Logger)
}

func TestRunValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		config Config
		err    string
	}{
		{"no games", Config{Games: 0, Players: 3}, "games must be positive"},
		{"one player", Config{Games: 1, Players: 1}, "at least 2 players"},
		{"unknown agent", Config{Games: 1, Players: 2, Agents: "shark"}, "unknown agent type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, _, err := New(tt.config).Run(context.Background())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.err)
		})
	}
}

func TestRunSimulation(t *testing.T) {
	t.Parallel()

	results, stats, err := New(Config{
		Games:    6,
		Players:  4,
		Seed:     12345,
		Parallel: 3,
		Timeout:  5 * time.Second,
		Options:  []game.Option{game.WithCards(true)},
		Logger:   testLogger(),
	}).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, results, 6)
	assert.Equal(t, 6, stats.Rounds)
	assert.Len(t, stats.IDs(), 4)
	for i, r := range results {
		assert.Equal(t, i, r.Game)
		assert.NotEmpty(t, r.Winners)
		assert.Len(t, r.Scores, 4)
		assert.Contains(t, r.Report, "finished after 5 turns")

		top := r.Scores[r.Winners[0]]
		for _, id := range r.Winners {
			require.Contains(t, r.Scores, id, "winner ids are split cleanly")
			assert.Equal(t, top, r.Scores[id])
		}
		for _, score := range r.Scores {
			assert.LessOrEqual(t, score, top)
		}
	}
}

func TestRunIsReproducible(t *testing.T) {
	t.Parallel()

	run := func(parallel int) []map[string]int {
		results, _, err := New(Config{
			Games:    5,
			Players:  3,
			Seed:     99,
			Parallel: parallel,
			Logger:   testLogger(),
		}).Run(context.Background())
		require.NoError(t, err)

		scores := make([]map[string]int, len(results))
		for i, r := range results {
			scores[i] = r.Scores
		}
		return scores
	}

	assert.Equal(t, run(1), run(4))
}

func TestRunPassingAgentsShareRankPoints(t *testing.T) {
	t.Parallel()

	_, stats, err := New(Config{
		Games:   2,
		Players: 3,
		Agents:  "pass",
		Seed:    7,
		Options: []game.Option{game.WithoutEvents(), game.WithCards(false), game.WithTurns(4)},
		Logger:  testLogger(),
	}).Run(context.Background())
	require.NoError(t, err)

	assert.Zero(t, stats.Events)
	assert.Zero(t, stats.Cards)

	// 2+1+0 rank points per turn, nothing else moves a score.
	total := 0.0
	for _, id := range stats.IDs() {
		total += stats.Player(id).SumScore
	}
	assert.Equal(t, 2*4*3.0, total)
}

func TestRunEmptyQuestPool(t *testing.T) {
	t.Parallel()

	_, _, err := New(Config{
		Games:   1,
		Players: 2,
		Quests:  []game.Quest{{ID: "only", Description: "Only quest"}},
		Options: []game.Option{game.WithTurns(2)},
		Logger:  testLogger(),
	}).Run(context.Background())
	require.ErrorIs(t, err, game.ErrEmptyPool)
}

func TestRunCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := New(Config{Games: 2, Players: 2, Logger: testLogger()}).Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestAgents(t *testing.T) {
	t.Parallel()

	rng := randutil.New(1)
	g, err := game.NewGame(rng, stubQuests{}, game.WithoutEvents(), game.WithID("agents"))
	require.NoError(t, err)
	for _, id := range []string{"a", "b", "c"} {
		_, err := g.Enroll(id)
		require.NoError(t, err)
	}

	_, err = NewAgent("shark", rng)
	require.Error(t, err)

	for _, kind := range AgentTypes {
		a, err := NewAgent(kind, rng)
		require.NoError(t, err)

		top, err := game.MaxScore(g.GameType())
		require.NoError(t, err)
		for range 20 {
			score := a.Score(g, "a")
			assert.GreaterOrEqual(t, score, 0)
			assert.LessOrEqual(t, score, top)

			if target, stake, ok := a.Bet(g, "a"); ok {
				assert.NotEqual(t, "a", target)
				assert.GreaterOrEqual(t, stake, 1)
			}
		}
	}

	leader, err := NewAgent("leader", rng)
	require.NoError(t, err)
	target, stake, ok := leader.Bet(g, "a")
	require.True(t, ok)
	assert.Equal(t, "b", target)
	assert.Equal(t, 1, stake)
	assert.False(t, leader.BuyCard(g, "a"))
	assert.True(t, leader.BuyCard(g, "c"))
	assert.False(t, leader.KeepCard(g, "c", &game.Card{Kind: game.CardFake}))
	assert.True(t, leader.KeepCard(g, "c", &game.Card{Kind: game.CardForceMaxScore}))

	pass, err := NewAgent("pass", rng)
	require.NoError(t, err)
	_, _, ok = pass.Bet(g, "a")
	assert.False(t, ok)
	assert.False(t, pass.BuyCard(g, "a"))
}

type stubQuests struct{}

func (stubQuests) Draw() (game.Quest, error) { return game.Quest{ID: "q", Description: "Q"}, nil }
func (stubQuests) Remove(game.Quest)         {}
