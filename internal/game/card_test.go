package game

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/rhythmbet/internal/randutil"
)

func TestCardCatalogComplete(t *testing.T) {
	t.Parallel()

	kinds := AllCardKinds()
	require.Len(t, kinds, int(cardKindCount))
	for _, k := range kinds {
		c, err := NewCard(k, "owner", []string{"owner"}, Arcaea)
		require.NoError(t, err, "card %s", k)
		assert.NotEmpty(t, c.Description)
		assert.NotEqual(t, "", k.String())
	}

	fake, err := NewCard(CardFake, "o", nil, Phigros)
	require.NoError(t, err)
	pol := NewTurnPolicy(DefaultRules())
	fake.Install(&pol)
	assert.Equal(t, []string{"fake card played by o: " + fake.Description}, pol.Notes)
	assert.Empty(t, pol.EndHooks)

	_, err = NewCard(cardKindCount, "o", nil, Arcaea)
	assert.Error(t, err)
	assert.Equal(t, "CardKind(99)", CardKind(99).String())
}

func TestCardsNeedMaxScore(t *testing.T) {
	t.Parallel()

	for _, k := range []CardKind{CardRandomScore, CardForceMaxScore} {
		_, err := NewCard(k, "o", nil, "maimai")
		assert.ErrorIs(t, err, ErrUnsupportedGameType, "card %s", k)
	}
	_, err := NewCard(CardSafetyReward, "o", nil, "maimai")
	assert.NoError(t, err)
}

func TestRandomCardStates(t *testing.T) {
	t.Parallel()

	disabled := NewRandomCard(false, Arcaea, randutil.New(1), testLogger())
	disabled.ResetTurn()
	assert.Equal(t, CardUnavailable, disabled.State())
	assert.ErrorIs(t, disabled.Enqueue(&Player{ID: "a"}), ErrFeatureDisabled)
	_, err := disabled.Reveal()
	assert.ErrorIs(t, err, ErrFeatureDisabled)

	rc := NewRandomCard(true, Arcaea, randutil.New(1), testLogger(), CardFake)
	assert.Equal(t, CardUnavailable, rc.State(), "opens at the first turn")
	rc.ResetTurn()
	assert.Equal(t, CardAvailable, rc.State())

	_, err = rc.Reveal()
	assert.ErrorIs(t, err, ErrInvalidPhase)

	low := &Player{ID: "low", Score: 1}
	high := &Player{ID: "high", Score: 5}
	require.NoError(t, rc.Enqueue(low))
	require.NoError(t, rc.Enqueue(high))
	require.NoError(t, rc.Enqueue(low))
	assert.Equal(t, CardCall, rc.State())
	assert.Equal(t, []string{"low", "high"}, rc.Pending())

	c, err := rc.Reveal()
	require.NoError(t, err)
	assert.Equal(t, "high", c.Owner, "highest total score owns the card")
	assert.Equal(t, []string{"high", "low"}, c.Buyers)
	assert.Equal(t, CardDetermined, rc.State())
	assert.Same(t, c, rc.Card())
	assert.Empty(t, rc.Pending())

	assert.ErrorIs(t, rc.Enqueue(low), ErrInvalidPhase)
	_, err = rc.Reveal()
	assert.ErrorIs(t, err, ErrInvalidPhase)

	rc.Resolve()
	assert.Equal(t, CardAvailable, rc.State())
	assert.Nil(t, rc.Card())

	require.NoError(t, rc.Enqueue(low))
	rc.ResetTurn()
	assert.Equal(t, CardAvailable, rc.State())
	assert.Empty(t, rc.Pending())
}

func TestTargetShift(t *testing.T) {
	t.Parallel()

	players := newPlayers("A", "B", "C")
	a, b, c := players[0], players[1], players[2]
	bet(a, b, 1)
	bet(b, c, 1)
	bet(c, a, 1)

	pol := NewTurnPolicy(DefaultRules())
	require.NoError(t, shiftTargets(testTurn(players, &pol)))
	assert.Equal(t, "C", a.BetTarget)
	assert.Equal(t, "A", b.BetTarget, "wraps around")
	assert.Equal(t, "B", c.BetTarget)

	bet(a, c, 1)
	require.NoError(t, shiftTargets(testTurn(players, &pol)))
	assert.Equal(t, "B", a.BetTarget, "never shifts onto the bettor")
}

func TestSuccessfulEscape(t *testing.T) {
	t.Parallel()

	setup := func() (o, x, y *Player, turn *Turn) {
		players := newPlayers("O", "X", "Y")
		o, x, y = players[0], players[1], players[2]
		o.Score, x.Score, y.Score = 0, 5, 1
		o.PlayingScore, x.PlayingScore, y.PlayingScore = intPtr(100), intPtr(300), intPtr(50)
		bet(x, o, 2)
		bet(y, o, 1)
		pol := NewTurnPolicy(DefaultRules())
		return o, x, y, testTurn(players, &pol)
	}

	card, err := NewCard(CardSuccessfulEscape, "O", []string{"O"}, Arcaea)
	require.NoError(t, err)

	o, x, y, turn := setup()
	require.NoError(t, card.BetScoreEvaluate(turn))
	assert.Equal(t, 3, x.Score)
	// Three forfeited points split between O and the lowest play score.
	assert.Equal(t, 1, o.Score)
	assert.Equal(t, 1, y.Score)
	assert.Len(t, turn.Policy.Notes, 1)

	o, x, y, turn = setup()
	o.Score = 9
	require.NoError(t, card.BetScoreEvaluate(turn))
	assert.Equal(t, 9, o.Score, "no escape when the bets on the owner succeed")
	assert.Equal(t, 7, x.Score)
	assert.Equal(t, 2, y.Score)
}

func TestRiskAversionCard(t *testing.T) {
	t.Parallel()

	players := newPlayers("A", "B", "C")
	a, b, c := players[0], players[1], players[2]
	c.Score = 5
	bet(a, b, 2)
	bet(b, a, 1)

	card, err := NewCard(CardRiskAversion, "A", []string{"A"}, Arcaea)
	require.NoError(t, err)
	pol := NewTurnPolicy(DefaultRules())
	require.NoError(t, card.BetScoreEvaluate(testTurn(players, &pol)))

	assert.Zero(t, *a.BetReward, "owner keeps the stake")
	assert.Zero(t, *b.BetReward, "so does everyone else")
	assert.Equal(t, 0, a.Score+b.Score)

	// A winning bet still pays.
	players = newPlayers("A", "B", "C")
	a, b = players[0], players[1]
	b.Score = 3
	bet(a, b, 2)
	pol = NewTurnPolicy(DefaultRules())
	require.NoError(t, card.BetScoreEvaluate(testTurn(players, &pol)))
	assert.Equal(t, 2, *a.BetReward)
}

func TestSafetyReward(t *testing.T) {
	t.Parallel()

	players := newPlayers("A", "B", "C", "D", "E")
	bet(players[0], players[1], 1)
	players[2].TookBet = true

	pol := NewTurnPolicy(DefaultRules())
	require.NoError(t, safetyReward(testTurn(players, &pol)))

	got := make([]int, len(players))
	for i, p := range players {
		got[i] = p.Score
	}
	assert.Equal(t, []int{0, 2, 2, 2, 2}, got)
}

func TestReverseRank(t *testing.T) {
	t.Parallel()

	players := newPlayers("A", "B", "C")
	players[0].PlayingScore = intPtr(100)
	players[1].PlayingScore = intPtr(300)
	players[2].PlayingScore = intPtr(100)

	slices.SortStableFunc(players, reverseRank)
	ids := []string{players[0].ID, players[1].ID, players[2].ID}
	assert.Equal(t, []string{"A", "C", "B"}, ids)
}

func TestScoreCards(t *testing.T) {
	t.Parallel()

	for _, gt := range []GameType{Arcaea, Phigros} {
		top, _ := MaxScore(gt)

		players := newPlayers("A", "B")
		players[0].PlayingScore = intPtr(5000)
		players[1].PlayingScore = intPtr(100)
		pol := NewTurnPolicy(DefaultRules())
		turn := newTurn(players, []string{"A", "B"}, &pol, gt, randutil.New(5))

		force, err := NewCard(CardForceMaxScore, "B", nil, gt)
		require.NoError(t, err)
		require.NoError(t, force.PlayingScorePreprocess(turn))
		assert.Equal(t, top, *players[1].PlayingScore)

		random, err := NewCard(CardRandomScore, "A", nil, gt)
		require.NoError(t, err)
		for range 50 {
			players[1].PlayingScore = intPtr(100)
			require.NoError(t, random.PlayingScorePreprocess(turn))
			got := *players[0].PlayingScore
			assert.GreaterOrEqual(t, got, 100)
			assert.LessOrEqual(t, got, top)
		}
	}
}

func TestCardFlow(t *testing.T) {
	t.Parallel()

	g := newTestGame(t, []string{"A", "B", "C"}, WithCards(true), WithCardKinds(CardForceMaxScore))
	require.NoError(t, g.Start())
	assert.ErrorIs(t, g.BuyCard("A"), ErrInvalidPhase)

	openBetting(t, g)
	assert.Equal(t, CardAvailable, g.CardState())
	require.NoError(t, g.BuyCard("B"))
	require.NoError(t, g.BuyCard("C"))
	assert.Equal(t, CardCall, g.CardState())
	assert.Equal(t, []string{"B", "C"}, g.CardBuyers())

	c, err := g.RevealCard()
	require.NoError(t, err)
	assert.Equal(t, CardForceMaxScore, c.Kind)
	assert.Equal(t, "B", c.Owner)
	assert.Same(t, c, g.PendingCard())
	assert.Equal(t, 1, g.CardCost(), "half of three players, rounded down")
	assert.Equal(t, map[string]int{"A": 0, "B": -1, "C": -1}, scores(g), "every buyer pays")

	assert.ErrorIs(t, g.BuyCard("A"), ErrInvalidPhase)
	assert.ErrorIs(t, g.AcceptCard("C"), ErrNotOwner)
	require.NoError(t, g.AcceptCard("B"))
	assert.Equal(t, CardAvailable, g.CardState())
	require.Len(t, g.Notes(), 1)
	assert.Contains(t, g.Notes()[0], "force max score played by B")

	for _, id := range []string{"A", "B", "C"} {
		require.NoError(t, g.Pass(id))
	}
	require.NoError(t, g.Play("A", "100"))
	require.NoError(t, g.Play("B", "50"))
	require.NoError(t, g.Play("C", "10"))
	evaluate(t, g)

	b, _ := g.Player("B")
	assert.Equal(t, 10_010_000, *b.PlayingScore)
	assert.Equal(t, 0, *b.Rank)
	assert.Equal(t, map[string]int{"A": 1, "B": 1, "C": -1}, scores(g))

	_, err = g.RevealCard()
	assert.ErrorIs(t, err, ErrInvalidPhase, "cards close once evaluation starts")
}

func TestCardCostFollowsPlayerCount(t *testing.T) {
	t.Parallel()

	ids := []string{"A", "B", "C", "D", "E", "F"}
	g := newTestGame(t, ids, WithCards(true), WithCardKinds(CardFake))
	assert.Equal(t, 3, g.CardCost())
	startBetting(t, g)

	require.NoError(t, g.BuyCard("A"))
	require.NoError(t, g.BuyCard("D"))
	_, err := g.RevealCard()
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"A": -3, "B": 0, "C": 0, "D": -3, "E": 0, "F": 0}, scores(g))

	fixed := newTestGame(t, ids, WithCards(true), WithCardCost(0))
	assert.Zero(t, fixed.CardCost(), "an explicit cost wins")

	two := newTestGame(t, []string{"A", "B"}, WithCards(true))
	assert.Equal(t, 1, two.CardCost())
}

func TestCardDeclineAndExpiry(t *testing.T) {
	t.Parallel()

	g := newTestGame(t, []string{"A", "B"}, WithCards(true), WithCardKinds(CardReverseRank), WithCardCost(1), WithTurns(2))
	startBetting(t, g)

	require.NoError(t, g.BuyCard("A"))
	_, err := g.RevealCard()
	require.NoError(t, err)
	require.NoError(t, g.DeclineCard("A"))
	assert.Empty(t, g.Notes())
	assert.Equal(t, CardAvailable, g.CardState())
	assert.ErrorIs(t, g.AcceptCard("A"), ErrInvalidPhase, "nothing left to accept")

	require.NoError(t, g.BuyCard("B"))
	_, err = g.RevealCard()
	require.NoError(t, err)
	require.NoError(t, g.AcceptCard("B"))

	require.NoError(t, g.Pass("A"))
	require.NoError(t, g.Pass("B"))
	require.NoError(t, g.Play("A", "100"))
	require.NoError(t, g.Play("B", "200"))
	evaluate(t, g)

	a, _ := g.Player("A")
	assert.Equal(t, 0, *a.Rank, "lowest play score ranks best")
	require.NoError(t, g.EndTurn())

	_, err = g.DrawEvent()
	require.NoError(t, err)
	assert.Empty(t, g.Notes(), "the card lasted one turn")
	assert.Equal(t, CardAvailable, g.CardState())
}

func TestCardsDisabled(t *testing.T) {
	t.Parallel()

	g, err := NewGame(randutil.New(1), newStubPool(3), WithoutEvents())
	require.NoError(t, err)
	for _, id := range []string{"A", "B"} {
		_, err := g.Enroll(id)
		require.NoError(t, err)
	}
	startBetting(t, g)
	assert.Equal(t, CardUnavailable, g.CardState(), "cards are off unless enabled")
	assert.ErrorIs(t, g.BuyCard("A"), ErrFeatureDisabled)
	_, err = g.RevealCard()
	assert.ErrorIs(t, err, ErrFeatureDisabled)
	assert.ErrorIs(t, g.AcceptCard("A"), ErrFeatureDisabled)
}
