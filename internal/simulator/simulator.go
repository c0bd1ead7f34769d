// Package simulator plays whole rounds with bot agents, for balancing the
// event and card catalogs and for smoke-testing the engine.
package simulator

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/lox/rhythmbet/internal/game"
	"github.com/lox/rhythmbet/internal/quest"
	"github.com/lox/rhythmbet/internal/randutil"
	"github.com/lox/rhythmbet/internal/statistics"
)

// Config holds configuration for running simulations
type Config struct {
	Games    int
	Players  int
	Agents   string // one of AgentTypes, or "mixed"
	GameType game.GameType
	Seed     int64
	Parallel int
	Timeout  time.Duration // per round, zero for none
	Quests   []game.Quest  // defaults to the built-in list for GameType
	Options  []game.Option // extra engine options, applied to every round
	Logger   *log.Logger
}

// Simulator runs rhythmbet rounds between bot agents
type Simulator struct {
	config Config
}

// New creates a new simulator with the given configuration
func New(config Config) *Simulator {
	if config.Logger == nil {
		config.Logger = log.New(io.Discard)
	}
	if config.GameType == "" {
		config.GameType = game.Arcaea
	}
	if config.Agents == "" {
		config.Agents = "mixed"
	}
	if config.Parallel < 1 {
		config.Parallel = 1
	}
	if config.Quests == nil {
		config.Quests = quest.Builtin(config.GameType)
	}
	return &Simulator{config: config}
}

// Run plays every round and returns the per-round results in round order
// along with their aggregate statistics.
func (s *Simulator) Run(ctx context.Context) ([]statistics.RoundResult, *statistics.Statistics, error) {
	if s.config.Games < 1 {
		return nil, nil, fmt.Errorf("games must be positive, got %d", s.config.Games)
	}
	if s.config.Players < 2 {
		return nil, nil, fmt.Errorf("need at least 2 players, got %d", s.config.Players)
	}

	results := make([]statistics.RoundResult, s.config.Games)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.Parallel)
	for i := range s.config.Games {
		g.Go(func() error {
			r, err := s.playRound(ctx, i)
			if err != nil {
				return fmt.Errorf("round %d: %w", i+1, err)
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	stats := &statistics.Statistics{}
	for _, r := range results {
		stats.Add(r)
	}
	if err := stats.Validate(); err != nil {
		return nil, nil, fmt.Errorf("statistics validation failed: %w", err)
	}
	return results, stats, nil
}

func (s *Simulator) agentKind(i int) string {
	if s.config.Agents != "mixed" {
		return s.config.Agents
	}
	return AgentTypes[i%len(AgentTypes)]
}

// playRound plays one round from its derived seed. The same seed and config
// always produce the same result.
func (s *Simulator) playRound(ctx context.Context, i int) (statistics.RoundResult, error) {
	if s.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.Timeout)
		defer cancel()
	}

	rng := randutil.Derive(s.config.Seed, i)
	opts := append([]game.Option{
		game.WithGameType(s.config.GameType),
		game.WithLogger(s.config.Logger),
	}, s.config.Options...)
	g, err := game.NewGame(rng, quest.NewPool(rng, s.config.Quests...), opts...)
	if err != nil {
		return statistics.RoundResult{}, err
	}

	agents := make(map[string]Agent, s.config.Players)
	for p := range s.config.Players {
		kind := s.agentKind(p)
		id := fmt.Sprintf("%s-%02d", kind, p+1)
		agent, err := NewAgent(kind, rng)
		if err != nil {
			return statistics.RoundResult{}, err
		}
		if _, err := g.Enroll(id); err != nil {
			return statistics.RoundResult{}, err
		}
		agents[id] = agent
	}

	if err := g.Start(); err != nil {
		return statistics.RoundResult{}, err
	}

	result := statistics.RoundResult{Game: i, Seed: s.config.Seed, GameID: g.ID()}
	for g.Phase() != game.PhaseFinished {
		if err := ctx.Err(); err != nil {
			return statistics.RoundResult{}, fmt.Errorf("turn %d %s: %w", g.Turn(), g.Phase(), err)
		}

		switch g.Phase() {
		case game.PhaseVerify:
			revealed, err := s.cardRound(g, agents)
			if err != nil {
				return statistics.RoundResult{}, err
			}
			if revealed {
				result.Cards++
			}
			if err := g.Verify(); err != nil {
				return statistics.RoundResult{}, err
			}
		case game.PhaseBet:
			for _, p := range g.Players() {
				if err := s.bet(g, p.ID, agents[p.ID]); err != nil {
					return statistics.RoundResult{}, err
				}
			}
		case game.PhasePlay:
			for _, p := range g.Players() {
				score := agents[p.ID].Score(g, p.ID)
				if err := g.Play(p.ID, strconv.Itoa(score)); err != nil {
					return statistics.RoundResult{}, err
				}
			}
		case game.PhaseDrawEvent:
			events, err := g.DrawEvent()
			if err != nil {
				return statistics.RoundResult{}, err
			}
			result.Events += len(events)
		default:
			if err := g.Advance(); err != nil {
				return statistics.RoundResult{}, err
			}
		}
	}

	winner, err := g.Winner()
	if err != nil {
		return statistics.RoundResult{}, err
	}
	result.Winners = strings.Split(winner, ", ")
	result.Scores = make(map[string]int, s.config.Players)
	for _, p := range g.Players() {
		result.Scores[p.ID] = p.Score
	}
	result.Report = g.Report()

	s.config.Logger.Debug("Round finished", "round", i+1, "game", g.ID(), "winner", winner)
	return result, nil
}

func (s *Simulator) bet(g *game.Game, id string, a Agent) error {
	target, stake, ok := a.Bet(g, id)
	if !ok {
		return g.Pass(id)
	}
	return g.Bet(id, target, stake)
}

// cardRound queues every agent that wants the card, reveals it and lets the
// owner decide. It reports whether a card was revealed.
func (s *Simulator) cardRound(g *game.Game, agents map[string]Agent) (bool, error) {
	if g.CardState() != game.CardAvailable {
		return false, nil
	}
	for _, p := range g.Players() {
		if agents[p.ID].BuyCard(g, p.ID) {
			if err := g.BuyCard(p.ID); err != nil {
				return false, err
			}
		}
	}
	if g.CardState() != game.CardCall {
		return false, nil
	}

	c, err := g.RevealCard()
	if err != nil {
		return false, err
	}
	if agents[c.Owner].KeepCard(g, c.Owner, c) {
		return true, g.AcceptCard(c.Owner)
	}
	return true, g.DeclineCard(c.Owner)
}
