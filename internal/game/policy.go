package game

import (
	"cmp"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
)

// Stage is one replaceable step of the evaluation pipeline.
type Stage func(t *Turn) error

// CompareFunc orders players for ranking. Negative means a ranks above b.
type CompareFunc func(a, b *Player) int

// RankPointsFunc converts a rank (0 = best) in a field of n players into
// points.
type RankPointsFunc func(rank, n int) int

// DeductFunc returns how many points a bet target loses per incoming bet.
type DeductFunc func(target *Player) int

// ScoreSetter validates a submitted play score and stores it on p.
type ScoreSetter func(p *Player, raw string, gt GameType) error

// Rules are the session-wide defaults for the rule flags. Every turn starts
// from these values.
type Rules struct {
	BettedDeduct    bool
	BetFailedDeduct bool
}

// DefaultRules deduct a point per incoming bet and the stake of failed bets.
func DefaultRules() Rules {
	return Rules{BettedDeduct: true, BetFailedDeduct: true}
}

// TurnPolicy is the full set of rules and stage implementations in force for
// one turn. It is rebuilt from the session defaults at every turn start, so
// an override installed by an event or a card lasts exactly one turn. When two
// sources replace the same stage the later one wins.
type TurnPolicy struct {
	BettedDeduct    bool
	BetFailedDeduct bool
	DoubleReward    bool

	SetScore               ScoreSetter
	TargetRearrange        Stage
	BetDeduct              DeductFunc
	BetPreprocess          Stage
	PlayingScorePreprocess Stage
	Compare                CompareFunc
	RankPoints             RankPointsFunc
	BetScorePreprocess     Stage
	BetEvaluate            Stage
	BetScorePostprocess    Stage
	EndHooks               []Stage

	// Notes describe the effects applied this turn, in order.
	Notes []string
}

// NewTurnPolicy returns the default policy for the given session rules.
func NewTurnPolicy(r Rules) TurnPolicy {
	return TurnPolicy{
		BettedDeduct:           r.BettedDeduct,
		BetFailedDeduct:        r.BetFailedDeduct,
		SetScore:               DefaultSetScore,
		TargetRearrange:        noop,
		BetDeduct:              DefaultBetDeduct,
		BetPreprocess:          DefaultBetPreprocess,
		PlayingScorePreprocess: noop,
		Compare:                DefaultCompare,
		RankPoints:             DefaultRankPoints,
		BetScorePreprocess:     noop,
		BetEvaluate:            DefaultBetEvaluate,
		BetScorePostprocess:    noop,
	}
}

// AddEndHook appends h to the hooks run after bet evaluation.
func (p *TurnPolicy) AddEndHook(h Stage) {
	p.EndHooks = append(p.EndHooks, h)
}

func (p *TurnPolicy) note(s string) {
	p.Notes = append(p.Notes, s)
}

// Turn is what every stage operates on: the players of the session, the
// ranking they had when the turn started and the policy in force.
type Turn struct {
	Players  []*Player // enrollment order
	Ranking  []string  // ids by total score at turn start, best first
	Policy   *TurnPolicy
	GameType GameType
	Rand     *rand.Rand

	byID map[string]*Player
}

func newTurn(players []*Player, ranking []string, pol *TurnPolicy, gt GameType, rng *rand.Rand) *Turn {
	t := &Turn{
		Players:  players,
		Ranking:  ranking,
		Policy:   pol,
		GameType: gt,
		Rand:     rng,
		byID:     make(map[string]*Player, len(players)),
	}
	for _, p := range players {
		t.byID[p.ID] = p
	}
	return t
}

// Lookup returns the player with the given full id, or nil.
func (t *Turn) Lookup(id string) *Player {
	return t.byID[id]
}

// N is the number of players in the turn.
func (t *Turn) N() int { return len(t.Players) }

func noop(*Turn) error { return nil }

// DefaultSetScore accepts a non-negative integer no larger than the game
// type's maximum. Thousands separators (',', '\'', '_' and spaces) are
// ignored so "9,876,543" is accepted.
func DefaultSetScore(p *Player, raw string, gt GameType) error {
	top, err := MaxScore(gt)
	if err != nil {
		return err
	}
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ',', '\'', '_', ' ':
			return -1
		}
		return r
	}, strings.TrimSpace(raw))
	if cleaned == "" {
		return fmt.Errorf("%w: empty", ErrInvalidScore)
	}
	v, err := strconv.Atoi(cleaned)
	if err != nil {
		return fmt.Errorf("%w: %q is not a number", ErrInvalidScore, raw)
	}
	if v < 0 || v > top {
		return fmt.Errorf("%w: %d outside [0, %d]", ErrInvalidScore, v, top)
	}
	p.PlayingScore = intPtr(v)
	p.Played = true
	return nil
}

// DefaultBetDeduct costs a target one point per incoming bet.
func DefaultBetDeduct(*Player) int { return 1 }

// DefaultBetPreprocess deducts from every target for each incoming bet and
// counts them. Nothing is counted on turns where targets are not deducted.
func DefaultBetPreprocess(t *Turn) error {
	if !t.Policy.BettedDeduct {
		return nil
	}
	for _, p := range t.Players {
		if !p.HasBet() {
			continue
		}
		target := t.Lookup(p.BetTarget)
		if target == nil {
			continue
		}
		target.Score -= t.Policy.BetDeduct(target)
		target.addBetted()
	}
	return nil
}

// DefaultCompare ranks by assigned rank, then by play score (higher first),
// then by total score (lower first, so a trailing player wins an equal
// play), then by id.
func DefaultCompare(a, b *Player) int {
	if a.Rank != nil && b.Rank != nil {
		if c := cmp.Compare(*a.Rank, *b.Rank); c != 0 {
			return c
		}
	}
	if a.PlayingScore != nil && b.PlayingScore != nil {
		if c := cmp.Compare(*b.PlayingScore, *a.PlayingScore); c != 0 {
			return c
		}
	}
	if c := cmp.Compare(a.Score, b.Score); c != 0 {
		return c
	}
	return strings.Compare(a.ID, b.ID)
}

// compareStanding orders by total score, higher first, then id.
func compareStanding(a, b *Player) int {
	if c := cmp.Compare(b.Score, a.Score); c != 0 {
		return c
	}
	return strings.Compare(a.ID, b.ID)
}

// DefaultRankPoints gives the best player ceil((n+1)/2) points and one point
// fewer for each following rank, never below zero.
func DefaultRankPoints(rank, n int) int {
	return max(ceilDiv(n+1, 2)-rank, 0)
}

// DefaultBetEvaluate pays stakes on bets whose target holds the maximum
// score and, when the policy asks for it, deducts the stake of the others.
func DefaultBetEvaluate(t *Turn) error {
	settleBets(t, func(*Player) bool { return t.Policy.BetFailedDeduct })
	return nil
}

// settleBets evaluates every bet against one score snapshot taken before any
// reward is applied, then applies all rewards.
func settleBets(t *Turn, deductFailure func(bettor *Player) bool) {
	top, ok := maxScore(t.Players)
	if !ok {
		return
	}

	rewards := make([]int, len(t.Players))
	for i, p := range t.Players {
		if !p.HasBet() {
			continue
		}
		target := t.Lookup(p.BetTarget)
		switch {
		case target != nil && target.Score == top:
			rewards[i] = p.Stake
			if t.Policy.DoubleReward {
				rewards[i] *= 2
			}
		case deductFailure(p):
			rewards[i] = -p.Stake
		}
	}

	for i, p := range t.Players {
		if !p.HasBet() {
			continue
		}
		p.Score += rewards[i]
		p.BetReward = intPtr(rewards[i])
	}
}

func maxScore(players []*Player) (int, bool) {
	if len(players) == 0 {
		return 0, false
	}
	top := players[0].Score
	for _, p := range players[1:] {
		top = max(top, p.Score)
	}
	return top, true
}

func minScore(players []*Player) int {
	low := players[0].Score
	for _, p := range players[1:] {
		low = min(low, p.Score)
	}
	return low
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
