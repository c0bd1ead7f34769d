package game

import (
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/charmbracelet/log"
)

// EventKind identifies one global rule mutation.
type EventKind int

const (
	EventScoreFloor EventKind = iota
	EventBonusTime
	EventRiskAversion
	EventWinnerTakesAll
	EventMiddleWay
	EventPovertyRelief
	EventNoTargetDeduct
	EventTrafficCollision
	EventPopularPlayer
	EventDrawTwo
	EventBePatient
	EventSingAlong
	EventNothingHappened
	EventSpeedLimit
	EventRushHour
	EventUpsideDown
	EventAccurateHit

	eventKindCount
)

type eventSpec struct {
	name        string
	description string
	only        GameType // empty for every game type
	apply       func(e *RandomEvent, m *PlayerManager, pol *TurnPolicy)
}

var eventTable = [eventKindCount]eventSpec{
	EventScoreFloor: {
		name:        "score floor",
		description: "Debt forgiveness! Every negative score is raised to 0.",
		apply: func(_ *RandomEvent, m *PlayerManager, _ *TurnPolicy) {
			for _, p := range m.players {
				p.Score = max(p.Score, 0)
			}
		},
	},
	EventBonusTime: {
		name:        "bonus time",
		description: "Bonus time! Successful bets pay double this turn.",
		apply: func(_ *RandomEvent, _ *PlayerManager, pol *TurnPolicy) {
			pol.DoubleReward = true
		},
	},
	EventRiskAversion: {
		name:        "risk aversion",
		description: "Risk aversion: failed bets cost nothing this turn.",
		apply: func(_ *RandomEvent, _ *PlayerManager, pol *TurnPolicy) {
			pol.BetFailedDeduct = false
		},
	},
	EventWinnerTakesAll: {
		name:        "winner takes all",
		description: "Winner takes all: only the best play scores points this turn.",
		apply: func(_ *RandomEvent, _ *PlayerManager, pol *TurnPolicy) {
			pol.RankPoints = winnerTakesAll
		},
	},
	EventMiddleWay: {
		name:        "middle way",
		description: "The middle way: the closer to the middle of the ranking, the more points.",
		apply: func(_ *RandomEvent, _ *PlayerManager, pol *TurnPolicy) {
			pol.RankPoints = middleWay
		},
	},
	EventPovertyRelief: {
		name:        "poverty relief",
		description: "Poverty relief! The poorest players receive points right away.",
		apply: func(_ *RandomEvent, m *PlayerManager, _ *TurnPolicy) {
			relievePoverty(m.players)
		},
	},
	EventNoTargetDeduct: {
		name:        "no target deduction",
		description: "Being bet on costs nothing this turn.",
		apply: func(_ *RandomEvent, _ *PlayerManager, pol *TurnPolicy) {
			pol.BettedDeduct = false
		},
	},
	EventTrafficCollision: {
		name:        "traffic collision",
		description: "Traffic collision: bettors on the most crowded target lose a point per fellow bettor.",
		apply: func(_ *RandomEvent, _ *PlayerManager, pol *TurnPolicy) {
			pol.AddEndHook(trafficCollision)
		},
	},
	EventPopularPlayer: {
		name:        "popular player",
		description: "Popularity pays: the most bet-on player earns two points per incoming bet.",
		apply: func(_ *RandomEvent, _ *PlayerManager, pol *TurnPolicy) {
			pol.AddEndHook(popularPlayer)
		},
	},
	EventDrawTwo: {
		name:        "draw two",
		description: "Draw two! Next turn brings two events.",
		apply: func(e *RandomEvent, _ *PlayerManager, _ *TurnPolicy) {
			e.doubleEvent = true
		},
	},
	EventBePatient: {
		name:        "be patient",
		description: "Be patient: the poorest players receive points at the end of the turn.",
		apply: func(_ *RandomEvent, _ *PlayerManager, pol *TurnPolicy) {
			pol.AddEndHook(func(t *Turn) error {
				relievePoverty(t.Players)
				return nil
			})
		},
	},
	EventSingAlong: {
		name:        "sing along",
		description: "Sing along! Everyone sings while playing. No rule changes.",
	},
	EventNothingHappened: {
		name:        "nothing happened",
		description: "Nothing happened.",
	},
	EventSpeedLimit: {
		name:        "the slower the simpler",
		description: "The slower, the simpler: play with note speed below 2.0 this turn.",
		only:        Arcaea,
	},
	EventRushHour: {
		name:        "rush hour",
		description: "Rush hour: play at maximum note speed this turn.",
		only:        Arcaea,
	},
	EventUpsideDown: {
		name:        "upside down",
		description: "Upside down: turn your device 180 degrees for this chart.",
		only:        Phigros,
	},
	EventAccurateHit: {
		name:        "accurate hit",
		description: "Accurate hit: aim for accuracy, every note counts this turn.",
		only:        Phigros,
	},
}

func (k EventKind) String() string {
	if k < 0 || k >= eventKindCount {
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
	return eventTable[k].name
}

// Description returns the text announced when the event is drawn.
func (k EventKind) Description() string {
	if k < 0 || k >= eventKindCount {
		return ""
	}
	return eventTable[k].description
}

// AllEventKinds lists every event in the catalog.
func AllEventKinds() []EventKind {
	kinds := make([]EventKind, 0, eventKindCount)
	for k := range eventKindCount {
		kinds = append(kinds, k)
	}
	return kinds
}

// RandomEvent draws the global effect of each turn.
type RandomEvent struct {
	kinds       []EventKind
	doubleEvent bool
	rng         *rand.Rand
	logger      *log.Logger
}

// NewRandomEvent builds an event source over the catalog entries available
// for gt. If kinds is non-empty the catalog is further limited to those
// entries; an empty resulting catalog draws nothing.
func NewRandomEvent(gt GameType, rng *rand.Rand, logger *log.Logger, kinds ...EventKind) *RandomEvent {
	if len(kinds) == 0 {
		kinds = AllEventKinds()
	}
	e := &RandomEvent{rng: rng, logger: logger}
	for _, k := range kinds {
		if k < 0 || k >= eventKindCount {
			continue
		}
		if only := eventTable[k].only; only != "" && only != gt {
			continue
		}
		if !slices.Contains(e.kinds, k) {
			e.kinds = append(e.kinds, k)
		}
	}
	return e
}

// Kinds returns the events this source can draw.
func (e *RandomEvent) Kinds() []EventKind {
	return slices.Clone(e.kinds)
}

// DoubleEvent reports whether the next draw applies two events.
func (e *RandomEvent) DoubleEvent() bool {
	return e.doubleEvent
}

// Draw applies one uniformly chosen event, or two distinct ones if the
// previous turn drew "draw two".
func (e *RandomEvent) Draw(m *PlayerManager, pol *TurnPolicy) []EventKind {
	if len(e.kinds) == 0 {
		e.doubleEvent = false
		return nil
	}

	count := 1
	if e.doubleEvent {
		e.doubleEvent = false
		count = min(2, len(e.kinds))
	}

	perm := e.rng.Perm(len(e.kinds))
	drawn := make([]EventKind, 0, count)
	for _, i := range perm[:count] {
		k := e.kinds[i]
		e.Apply(k, m, pol)
		drawn = append(drawn, k)
	}
	return drawn
}

// Apply applies a specific event.
func (e *RandomEvent) Apply(k EventKind, m *PlayerManager, pol *TurnPolicy) {
	entry := eventTable[k]
	if entry.apply != nil {
		entry.apply(e, m, pol)
	}
	pol.note(entry.description)
	e.logger.Debug("Event applied", "event", entry.name)
}

func winnerTakesAll(rank, n int) int {
	if rank == 0 {
		return ceilDiv(n, 2)
	}
	return 0
}

// middleWay awards floor(n/2) points to the middle seat (both middle seats
// for an even field) and one point less per seat of distance.
func middleWay(rank, n int) int {
	var dist int
	if n%2 == 1 {
		dist = abs(rank - n/2)
	} else {
		dist = min(abs(rank-(n/2-1)), abs(rank-n/2))
	}
	return max(n/2-dist, 0)
}

// relievePoverty gives every player tied for the lowest score n points.
func relievePoverty(players []*Player) {
	if len(players) == 0 {
		return
	}
	low := minScore(players)
	for _, p := range players {
		if p.Score == low {
			p.Score += len(players)
		}
	}
}

// trafficCollision counts the bets themselves rather than BettedCount, so it
// still applies on turns where targets are not deducted.
func trafficCollision(t *Turn) error {
	crowd := make(map[string]int)
	most := 0
	for _, p := range t.Players {
		if p.HasBet() && t.Lookup(p.BetTarget) != nil {
			crowd[p.BetTarget]++
			most = max(most, crowd[p.BetTarget])
		}
	}
	if most == 0 {
		return nil
	}
	for _, p := range t.Players {
		if p.HasBet() && crowd[p.BetTarget] == most {
			p.Score -= most - 1
		}
	}
	return nil
}

func popularPlayer(t *Turn) error {
	most := 0
	for _, p := range t.Players {
		most = max(most, bettedCount(p))
	}
	if most == 0 {
		return nil
	}
	for _, p := range t.Players {
		if bettedCount(p) == most {
			p.Score += 2 * most
		}
	}
	return nil
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
