package game

import (
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/rhythmbet/internal/gameid"
)

// Game runs the turn state machine of one session.
type Game struct {
	id        string
	cfg       *gameConfig
	manager   *PlayerManager
	events    *RandomEvent
	cards     *RandomCard
	quests    QuestPool
	rng       *rand.Rand
	clock     quartz.Clock
	logger    *log.Logger
	sink      Sink
	phase     Phase
	turn      int
	policy    TurnPolicy
	drawn     []EventKind
	quest     *Quest
	started   time.Time
	winner    string
	hasWinner bool
}

// NewGame creates a game drawing its randomness from rng and its quests from
// quests.
func NewGame(rng *rand.Rand, quests QuestPool, opts ...Option) (*Game, error) {
	if rng == nil {
		panic("rng is required for game creation")
	}
	if quests == nil {
		panic("quest pool is required for game creation")
	}

	cfg := defaultGameConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	if _, err := MaxScore(cfg.gameType); err != nil {
		return nil, err
	}
	if cfg.turns < 1 {
		return nil, fmt.Errorf("turns must be positive, got %d", cfg.turns)
	}
	if cfg.cardCost < 0 {
		return nil, fmt.Errorf("card cost cannot be negative, got %d", cfg.cardCost)
	}
	if cfg.logger == nil {
		cfg.logger = log.New(io.Discard)
	}
	if cfg.clock == nil {
		cfg.clock = quartz.NewReal()
	}
	if cfg.id == "" {
		cfg.id = gameid.NewGenerator(rng).Generate()
	}

	logger := cfg.logger.WithPrefix("game")
	var events *RandomEvent
	if cfg.noEvents {
		events = &RandomEvent{rng: rng, logger: logger}
	} else {
		events = NewRandomEvent(cfg.gameType, rng, logger, cfg.eventKinds...)
	}

	return &Game{
		id:      cfg.id,
		cfg:     cfg,
		manager: NewPlayerManager(cfg.gameType, cfg.rules, logger),
		events:  events,
		cards:   NewRandomCard(cfg.cards, cfg.gameType, rng, logger, cfg.cardKinds...),
		quests:  quests,
		rng:     rng,
		clock:   cfg.clock,
		logger:  logger,
		sink:    cfg.sink,
		phase:   PhaseUnavailable,
		policy:  NewTurnPolicy(cfg.rules),
	}, nil
}

// ID returns the session id.
func (g *Game) ID() string { return g.id }

// Phase returns the current phase.
func (g *Game) Phase() Phase { return g.phase }

// Turn returns the number of the current turn, starting at 1.
func (g *Game) Turn() int { return g.turn }

// Turns returns the number of turns in a round.
func (g *Game) Turns() int { return g.cfg.turns }

// GameType returns the session's game type.
func (g *Game) GameType() GameType { return g.cfg.gameType }

// Quest returns the quest of the current turn, if one was drawn.
func (g *Game) Quest() (Quest, bool) {
	if g.quest == nil {
		return Quest{}, false
	}
	return *g.quest, true
}

// Events returns the events drawn for the current turn.
func (g *Game) Events() []EventKind { return append([]EventKind(nil), g.drawn...) }

// Notes returns the descriptions of every effect in force this turn.
func (g *Game) Notes() []string { return append([]string(nil), g.policy.Notes...) }

// CardState returns the card purchase state.
func (g *Game) CardState() CardState { return g.cards.State() }

// PendingCard returns the revealed card awaiting a decision, or nil.
func (g *Game) PendingCard() *Card { return g.cards.Card() }

// CardBuyers returns the ids of players queued to buy a card.
func (g *Game) CardBuyers() []string { return g.cards.Pending() }

// Players returns the players in enrollment order.
func (g *Game) Players() []*Player { return g.manager.Players() }

// Standings returns the players by total score.
func (g *Game) Standings() []*Player { return g.manager.Standings() }

// Player resolves an id or unambiguous id prefix.
func (g *Game) Player(prefix string) (*Player, error) {
	return g.manager.Find(prefix)
}

func (g *Game) expect(phases ...Phase) error {
	for _, p := range phases {
		if g.phase == p {
			return nil
		}
	}
	names := make([]string, len(phases))
	for i, p := range phases {
		names[i] = p.String()
	}
	return fmt.Errorf("%w: in %s, need %s", ErrInvalidPhase, g.phase, strings.Join(names, " or "))
}

// Enroll adds a player. Players can only join between rounds.
func (g *Game) Enroll(id string) (*Player, error) {
	if err := g.expect(PhaseUnavailable, PhaseFinished); err != nil {
		return nil, err
	}
	return g.manager.Add(id)
}

// Remove drops the player identified by prefix between rounds.
func (g *Game) Remove(prefix string) (*Player, error) {
	if err := g.expect(PhaseUnavailable, PhaseFinished); err != nil {
		return nil, err
	}
	return g.manager.Remove(prefix)
}

// Start begins a new round: scores are reset and the first turn waits for
// its event draw.
func (g *Game) Start() error {
	if err := g.expect(PhaseUnavailable, PhaseFinished); err != nil {
		return err
	}
	if g.manager.Len() < 2 {
		return fmt.Errorf("%w: have %d, need 2", ErrNotEnoughPlayers, g.manager.Len())
	}
	g.manager.ResetRound()
	g.turn = 0
	g.winner, g.hasWinner = "", false
	g.phase = PhaseDrawEvent
	g.logger.Info("Round started", "game", g.id, "players", g.manager.Len(), "turns", g.cfg.turns)
	return nil
}

// DrawEvent starts a turn: turn state and policy are reset, cards reopen and
// the turn's event is applied.
func (g *Game) DrawEvent() ([]EventKind, error) {
	if err := g.expect(PhaseDrawEvent); err != nil {
		return nil, err
	}
	g.turn++
	g.started = g.clock.Now()
	g.quest = nil
	g.policy = g.manager.ResetTurn()
	g.cards.ResetTurn()
	g.drawn = g.events.Draw(g.manager, &g.policy)
	g.phase = PhaseDrawQuest
	g.logger.Debug("Turn started", "turn", g.turn, "events", g.drawn)
	return g.Events(), nil
}

// DrawQuest draws the turn's quest. From BET it redraws, as long as nobody
// has bet yet; the rejected quest is retired from the pool first.
func (g *Game) DrawQuest() (Quest, error) {
	switch g.phase {
	case PhaseDrawQuest:
	case PhaseBet:
		if g.manager.BetCount() > 0 {
			return Quest{}, ErrQuestLocked
		}
		if g.quest != nil {
			g.quests.Remove(*g.quest)
			g.logger.Debug("Quest rejected", "turn", g.turn, "quest", g.quest.ID)
		}
	default:
		return Quest{}, g.expect(PhaseDrawQuest, PhaseBet)
	}

	q, err := g.quests.Draw()
	if err != nil {
		return Quest{}, fmt.Errorf("draw quest: %w", err)
	}
	g.quest = &q
	if g.phase == PhaseDrawQuest {
		g.phase = PhaseVerify
	}
	g.logger.Debug("Quest drawn", "turn", g.turn, "quest", q.ID)
	return q, nil
}

// Verify confirms the drawn quest and opens betting.
func (g *Game) Verify() error {
	if err := g.expect(PhaseVerify); err != nil {
		return err
	}
	g.phase = PhaseBet
	return nil
}

// Bet records a bet by bettor on target. Bets can be changed until everyone
// has bet, and afterwards until the first score comes in.
func (g *Game) Bet(bettor, target string, stake int) error {
	b, err := g.manager.Find(bettor)
	if err != nil {
		return err
	}
	t, err := g.manager.Find(target)
	if err != nil {
		return err
	}
	if b == t {
		return fmt.Errorf("%s: %w", b.ID, ErrSelfBet)
	}
	if err := g.bettingOpen(); err != nil {
		return err
	}
	if err := g.manager.PlaceBet(b, t, stake); err != nil {
		return err
	}
	g.logger.Debug("Bet placed", "bettor", b.ID, "target", t.ID, "stake", b.Stake)
	g.afterBet()
	return nil
}

// Pass records that bettor takes no bet this turn.
func (g *Game) Pass(bettor string) error {
	b, err := g.manager.Find(bettor)
	if err != nil {
		return err
	}
	if err := g.bettingOpen(); err != nil {
		return err
	}
	g.manager.Pass(b)
	g.logger.Debug("Bet passed", "bettor", b.ID)
	g.afterBet()
	return nil
}

func (g *Game) bettingOpen() error {
	switch g.phase {
	case PhaseBet:
		return nil
	case PhasePlay:
		if g.manager.PlayCount() > 0 {
			return ErrBettingClosed
		}
		return nil
	}
	return g.expect(PhaseBet, PhasePlay)
}

func (g *Game) afterBet() {
	if g.phase == PhaseBet && g.manager.BetCount() == g.manager.Len() {
		g.phase = PhasePlay
	}
}

// Play records a play score. Scores can be corrected until preprocessing
// runs.
func (g *Game) Play(player, raw string) error {
	p, err := g.manager.Find(player)
	if err != nil {
		return err
	}
	if err := g.expect(PhasePlay, PhasePreprocess); err != nil {
		return err
	}
	if err := g.manager.SetScore(&g.policy, p, raw); err != nil {
		return fmt.Errorf("%s: %w", p.ID, err)
	}
	g.logger.Debug("Score submitted", "player", p.ID, "score", *p.PlayingScore)
	if g.phase == PhasePlay && g.manager.PlayCount() == g.manager.Len() {
		g.phase = PhasePreprocess
	}
	return nil
}

// Preprocess runs target rearrangement, bet preprocessing and play score
// preprocessing.
func (g *Game) Preprocess() error {
	if err := g.expect(PhasePreprocess); err != nil {
		return err
	}
	if err := g.manager.Preprocess(&g.policy, g.rng); err != nil {
		return err
	}
	g.phase = PhaseEvaluateScore
	return nil
}

// EvaluateScore ranks the turn's play scores and awards rank points.
func (g *Game) EvaluateScore() error {
	if err := g.expect(PhaseEvaluateScore); err != nil {
		return err
	}
	g.manager.EvaluateScores(&g.policy)
	g.phase = PhaseEvaluateBet
	return nil
}

// EvaluateBet settles bets against the scores and runs the end hooks.
func (g *Game) EvaluateBet() error {
	if err := g.expect(PhaseEvaluateBet); err != nil {
		return err
	}
	if err := g.manager.EvaluateBets(&g.policy, g.rng); err != nil {
		return err
	}
	if err := g.manager.RunEndHooks(&g.policy, g.rng); err != nil {
		return err
	}
	g.phase = PhaseEndTurn
	return nil
}

// EndTurn publishes the turn report, retires the quest and moves on to the
// next turn or finishes the round.
func (g *Game) EndTurn() error {
	if err := g.expect(PhaseEndTurn); err != nil {
		return err
	}
	if g.quest != nil {
		g.quests.Remove(*g.quest)
	}
	if g.sink != nil {
		snap := Snapshot{GameID: g.id, Turn: g.turn, At: g.clock.Now(), Report: g.Report()}
		if err := g.sink.Publish(snap); err != nil {
			g.logger.Error("Failed to publish turn snapshot", "error", err, "turn", g.turn)
		}
	}
	g.logger.Info("Turn complete", "turn", g.turn, "duration", g.clock.Since(g.started))

	if g.turn >= g.cfg.turns {
		g.phase = PhaseFinished
		g.logger.Info("Round finished", "game", g.id)
	} else {
		g.phase = PhaseDrawEvent
	}
	return nil
}

// Advance runs the action of the current phase. Betting and playing advance
// on their own once every player has acted.
func (g *Game) Advance() error {
	switch g.phase {
	case PhaseDrawEvent:
		_, err := g.DrawEvent()
		return err
	case PhaseDrawQuest:
		_, err := g.DrawQuest()
		return err
	case PhaseVerify:
		return g.Verify()
	case PhasePreprocess:
		return g.Preprocess()
	case PhaseEvaluateScore:
		return g.EvaluateScore()
	case PhaseEvaluateBet:
		return g.EvaluateBet()
	case PhaseEndTurn:
		return g.EndTurn()
	case PhaseBet, PhasePlay:
		return fmt.Errorf("%w: waiting for players in %s", ErrInvalidPhase, g.phase)
	}
	return fmt.Errorf("%w: nothing to advance in %s", ErrInvalidPhase, g.phase)
}

// BuyCard queues player to buy this turn's card.
func (g *Game) BuyCard(player string) error {
	p, err := g.manager.Find(player)
	if err != nil {
		return err
	}
	if err := g.cardWindow(); err != nil {
		return err
	}
	return g.cards.Enqueue(p)
}

// CardCost returns what each buyer pays for a revealed card: the fixed cost
// if one was configured, otherwise half the number of players.
func (g *Game) CardCost() int {
	if g.cfg.fixedCost {
		return g.cfg.cardCost
	}
	return g.manager.Len() / 2
}

// RevealCard reveals the card for the queued buyers. Every buyer pays the
// card cost.
func (g *Game) RevealCard() (*Card, error) {
	if err := g.cardWindow(); err != nil {
		return nil, err
	}
	c, err := g.cards.Reveal()
	if err != nil {
		return nil, err
	}
	cost := g.CardCost()
	for _, id := range c.Buyers {
		if p, err := g.manager.Find(id); err == nil {
			p.Score -= cost
		}
	}
	g.logger.Info("Card revealed", "card", c.Kind, "owner", c.Owner, "buyers", c.Buyers, "cost", cost)
	return c, nil
}

// AcceptCard installs the revealed card's effect for the rest of the turn.
func (g *Game) AcceptCard(player string) error {
	c, err := g.ownedCard(player)
	if err != nil {
		return err
	}
	c.Install(&g.policy)
	g.cards.Resolve()
	g.logger.Debug("Card accepted", "card", c.Kind, "owner", c.Owner)
	return nil
}

// DeclineCard discards the revealed card.
func (g *Game) DeclineCard(player string) error {
	c, err := g.ownedCard(player)
	if err != nil {
		return err
	}
	g.cards.Resolve()
	g.logger.Debug("Card declined", "card", c.Kind, "owner", c.Owner)
	return nil
}

func (g *Game) ownedCard(player string) (*Card, error) {
	p, err := g.manager.Find(player)
	if err != nil {
		return nil, err
	}
	if err := g.cardWindow(); err != nil {
		return nil, err
	}
	c := g.cards.Card()
	if c == nil {
		return nil, fmt.Errorf("%w: no revealed card", ErrInvalidPhase)
	}
	if c.Owner != p.ID {
		return nil, fmt.Errorf("%s: %w", p.ID, ErrNotOwner)
	}
	return c, nil
}

func (g *Game) cardWindow() error {
	if !g.cfg.cards {
		return ErrFeatureDisabled
	}
	if !g.phase.cardWindow() {
		return g.expect(PhaseVerify, PhaseBet, PhasePlay)
	}
	return nil
}

// Winner returns the ids of every player tied for the highest score, joined
// by ", ". It is only available once the round has finished.
func (g *Game) Winner() (string, error) {
	if err := g.expect(PhaseFinished); err != nil {
		return "", err
	}
	if !g.hasWinner {
		leaders := g.manager.Leaders()
		ids := make([]string, len(leaders))
		for i, p := range leaders {
			ids[i] = p.ID
		}
		g.winner = strings.Join(ids, ", ")
		g.hasWinner = true
	}
	return g.winner, nil
}

// IsInvalidPhase reports whether err stems from calling an operation in the
// wrong phase, including the ordering errors that behave like it.
func IsInvalidPhase(err error) bool {
	return errors.Is(err, ErrInvalidPhase) || errors.Is(err, ErrQuestLocked) || errors.Is(err, ErrBettingClosed)
}
