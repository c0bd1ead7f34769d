package game

import (
	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
)

// Option configures a Game during creation.
type Option func(*gameConfig)

type gameConfig struct {
	id         string
	gameType   GameType
	turns      int
	cards      bool
	cardCost   int
	fixedCost  bool
	rules      Rules
	eventKinds []EventKind
	cardKinds  []CardKind
	noEvents   bool
	logger     *log.Logger
	clock      quartz.Clock
	sink       Sink
}

func defaultGameConfig() *gameConfig {
	return &gameConfig{
		gameType: Arcaea,
		turns:    5,
		rules:    DefaultRules(),
	}
}

// WithID sets the session id shown in reports. Default: a generated id.
func WithID(id string) Option {
	return func(c *gameConfig) { c.id = id }
}

// WithGameType selects the rhythm game. Default: Arcaea.
func WithGameType(gt GameType) Option {
	return func(c *gameConfig) { c.gameType = gt }
}

// WithTurns sets how many turns a round lasts. Default: 5.
func WithTurns(n int) Option {
	return func(c *gameConfig) { c.turns = n }
}

// WithCards enables or disables cards for the session. Default: disabled.
func WithCards(enabled bool) Option {
	return func(c *gameConfig) { c.cards = enabled }
}

// WithCardCost fixes the points every buyer pays when a card is revealed.
// Default: half the number of players, rounded down, at reveal time.
func WithCardCost(cost int) Option {
	return func(c *gameConfig) {
		c.cardCost = cost
		c.fixedCost = true
	}
}

// WithRules sets the rule flags every turn starts from.
func WithRules(r Rules) Option {
	return func(c *gameConfig) { c.rules = r }
}

// WithEventKinds limits the event catalog to kinds.
func WithEventKinds(kinds ...EventKind) Option {
	return func(c *gameConfig) {
		c.eventKinds = kinds
		c.noEvents = false
	}
}

// WithoutEvents disables events: every turn is played under the default
// policy.
func WithoutEvents() Option {
	return func(c *gameConfig) {
		c.eventKinds = nil
		c.noEvents = true
	}
}

// WithCardKinds limits the card catalog to kinds.
func WithCardKinds(kinds ...CardKind) Option {
	return func(c *gameConfig) { c.cardKinds = kinds }
}

// WithLogger sets the logger. Default: discard.
func WithLogger(l *log.Logger) Option {
	return func(c *gameConfig) { c.logger = l }
}

// WithClock sets the clock used to stamp turns. Default: real clock.
func WithClock(clk quartz.Clock) Option {
	return func(c *gameConfig) { c.clock = clk }
}

// WithSink receives a snapshot of the report at the end of every turn.
func WithSink(s Sink) Option {
	return func(c *gameConfig) { c.sink = s }
}
