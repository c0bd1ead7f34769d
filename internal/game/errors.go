package game

import (
	"errors"

	"github.com/lox/rhythmbet/internal/registry"
)

// Registry errors are shared with the registry package so callers can match
// them with errors.Is regardless of which layer produced them.
var (
	ErrUnknownID   = registry.ErrUnknownID
	ErrAmbiguousID = registry.ErrAmbiguousID
	ErrDuplicateID = registry.ErrDuplicateID
)

var (
	// ErrInvalidPhase is returned when an operation is called outside the
	// phase it requires.
	ErrInvalidPhase = errors.New("invalid phase")
	// ErrInvalidID is returned when enrolling a player id that is too long.
	ErrInvalidID = errors.New("invalid player id")
	// ErrSelfBet is returned when a player targets themselves.
	ErrSelfBet = errors.New("cannot bet on yourself")
	// ErrInvalidScore is returned for malformed or out of range play scores.
	ErrInvalidScore = errors.New("invalid score")
	// ErrFeatureDisabled is returned by card operations when the session
	// was created without cards.
	ErrFeatureDisabled = errors.New("feature disabled")
	// ErrUnsupportedGameType is returned for game types without a known
	// maximum score.
	ErrUnsupportedGameType = errors.New("unsupported game type")
	// ErrQuestLocked is returned when redrawing a quest after a bet was placed.
	ErrQuestLocked = errors.New("quest locked: bets already placed")
	// ErrBettingClosed is returned for bets placed after scores started
	// coming in.
	ErrBettingClosed = errors.New("betting closed")
	// ErrEmptyPool is returned by a QuestPool with nothing left to draw.
	ErrEmptyPool = errors.New("quest pool empty")
	// ErrNotEnoughPlayers is returned when starting with fewer than two players.
	ErrNotEnoughPlayers = errors.New("not enough players")
	// ErrNotOwner is returned when someone other than the card owner tries
	// to accept or decline it.
	ErrNotOwner = errors.New("not the card owner")
)
