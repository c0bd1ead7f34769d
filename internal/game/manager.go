package game

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/log"

	"github.com/lox/rhythmbet/internal/registry"
)

// PlayerManager owns the players of a session and runs the evaluation
// pipeline over them.
type PlayerManager struct {
	players  []*Player
	registry *registry.Trie[*Player]
	rules    Rules
	gameType GameType
	ranking  []string
	logger   *log.Logger
}

// NewPlayerManager creates an empty manager.
func NewPlayerManager(gt GameType, rules Rules, logger *log.Logger) *PlayerManager {
	return &PlayerManager{
		registry: registry.New[*Player](),
		rules:    rules,
		gameType: gt,
		logger:   logger,
	}
}

// MaxIDLen bounds player ids, in characters, exclusive.
const MaxIDLen = 15

// Add enrolls a new player. Surrounding whitespace is trimmed from id.
func (m *PlayerManager) Add(id string) (*Player, error) {
	id = strings.TrimSpace(id)
	if n := utf8.RuneCountInString(id); n >= MaxIDLen {
		return nil, fmt.Errorf("enroll %q: %w: %d characters, want fewer than %d", id, ErrInvalidID, n, MaxIDLen)
	}
	p := &Player{ID: id}
	if err := m.registry.Insert(id, p); err != nil {
		return nil, fmt.Errorf("enroll: %w", err)
	}
	m.players = append(m.players, p)
	m.logger.Debug("Player enrolled", "player", id, "players", len(m.players))
	return p, nil
}

// Remove drops the player identified by prefix.
func (m *PlayerManager) Remove(prefix string) (*Player, error) {
	p, err := m.registry.Delete(prefix)
	if err != nil {
		return nil, fmt.Errorf("remove: %w", err)
	}
	m.players = slices.DeleteFunc(m.players, func(q *Player) bool { return q == p })
	m.logger.Debug("Player removed", "player", p.ID, "players", len(m.players))
	return p, nil
}

// Find resolves an id or unambiguous id prefix.
func (m *PlayerManager) Find(prefix string) (*Player, error) {
	return m.registry.Find(prefix)
}

// Len returns the number of enrolled players.
func (m *PlayerManager) Len() int { return len(m.players) }

// Players returns the players in enrollment order.
func (m *PlayerManager) Players() []*Player {
	return slices.Clone(m.players)
}

// Standings returns the players by total score, highest first, ties by id.
func (m *PlayerManager) Standings() []*Player {
	s := slices.Clone(m.players)
	slices.SortStableFunc(s, compareStanding)
	return s
}

// Leaders returns every player tied for the highest total score.
func (m *PlayerManager) Leaders() []*Player {
	top, ok := maxScore(m.players)
	if !ok {
		return nil
	}
	var out []*Player
	for _, p := range m.Standings() {
		if p.Score == top {
			out = append(out, p)
		}
	}
	return out
}

// ResetRound zeroes every score and clears turn state.
func (m *PlayerManager) ResetRound() {
	for _, p := range m.players {
		p.resetRound()
	}
	m.ranking = nil
}

// ResetTurn clears turn state, records the current standings as the ranking
// stages see for this turn and returns a fresh default policy.
func (m *PlayerManager) ResetTurn() TurnPolicy {
	for _, p := range m.players {
		p.resetTurn()
	}
	m.ranking = m.ranking[:0]
	for _, p := range m.Standings() {
		m.ranking = append(m.ranking, p.ID)
	}
	return NewTurnPolicy(m.rules)
}

// Ranking returns the ids in the order recorded at the start of the turn.
func (m *PlayerManager) Ranking() []string {
	return slices.Clone(m.ranking)
}

// PlaceBet records a bet of stake points by bettor on target, replacing any
// earlier bet. The stake is clamped to [1, number of players].
func (m *PlayerManager) PlaceBet(bettor, target *Player, stake int) error {
	if bettor.ID == target.ID {
		return fmt.Errorf("%s: %w", bettor.ID, ErrSelfBet)
	}
	bettor.TookBet = true
	bettor.BetTarget = target.ID
	bettor.Stake = ClampStake(stake, len(m.players))
	return nil
}

// Pass records that bettor takes no bet this turn.
func (m *PlayerManager) Pass(bettor *Player) {
	bettor.TookBet = true
	bettor.BetTarget = ""
	bettor.Stake = 0
}

// ClampStake limits a requested stake to [1, n].
func ClampStake(stake, n int) int {
	return max(1, min(stake, n))
}

// SetScore stores a play score using the policy's setter.
func (m *PlayerManager) SetScore(pol *TurnPolicy, p *Player, raw string) error {
	return pol.SetScore(p, raw, m.gameType)
}

// BetCount returns how many players have bet or passed.
func (m *PlayerManager) BetCount() int {
	n := 0
	for _, p := range m.players {
		if p.TookBet {
			n++
		}
	}
	return n
}

// PlayCount returns how many players have submitted a score.
func (m *PlayerManager) PlayCount() int {
	n := 0
	for _, p := range m.players {
		if p.Played {
			n++
		}
	}
	return n
}

func (m *PlayerManager) turn(pol *TurnPolicy, rng *rand.Rand) *Turn {
	return newTurn(m.players, m.ranking, pol, m.gameType, rng)
}

// Preprocess runs target rearrangement, bet preprocessing and play score
// preprocessing, in that order.
func (m *PlayerManager) Preprocess(pol *TurnPolicy, rng *rand.Rand) error {
	t := m.turn(pol, rng)
	for _, stage := range []Stage{pol.TargetRearrange, pol.BetPreprocess, pol.PlayingScorePreprocess} {
		if err := stage(t); err != nil {
			return fmt.Errorf("preprocess: %w", err)
		}
	}
	return nil
}

// EvaluateScores ranks the players with the policy comparator and awards
// rank points.
func (m *PlayerManager) EvaluateScores(pol *TurnPolicy) {
	ordered := slices.Clone(m.players)
	for _, p := range ordered {
		p.Rank = nil
	}
	slices.SortStableFunc(ordered, pol.Compare)

	n := len(ordered)
	for i, p := range ordered {
		pts := pol.RankPoints(i, n)
		p.Rank = intPtr(i)
		p.TurnPoints = intPtr(pts)
		p.Score += pts
		m.logger.Debug("Ranked", "player", p.ID, "rank", i, "points", pts, "score", p.Score)
	}
}

// EvaluateBets runs bet-score preprocessing, bet evaluation and bet-score
// postprocessing against the settled scores.
func (m *PlayerManager) EvaluateBets(pol *TurnPolicy, rng *rand.Rand) error {
	t := m.turn(pol, rng)
	for _, stage := range []Stage{pol.BetScorePreprocess, pol.BetEvaluate, pol.BetScorePostprocess} {
		if err := stage(t); err != nil {
			return fmt.Errorf("evaluate bets: %w", err)
		}
	}
	return nil
}

// RunEndHooks executes the turn's end hooks in registration order.
func (m *PlayerManager) RunEndHooks(pol *TurnPolicy, rng *rand.Rand) error {
	t := m.turn(pol, rng)
	for i, hook := range pol.EndHooks {
		if err := hook(t); err != nil {
			return fmt.Errorf("end hook %d: %w", i, err)
		}
	}
	return nil
}
