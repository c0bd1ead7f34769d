package game

import (
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/charmbracelet/log"
)

// CardState is the purchase state of the turn's card.
type CardState int

const (
	CardUnavailable CardState = iota // cards disabled for the session
	CardAvailable                    // ready for purchase
	CardCall                         // at least one buyer queued
	CardDetermined                   // revealed, waiting for the owner
)

func (s CardState) String() string {
	return [...]string{"unavailable", "available", "call", "determined"}[s]
}

// CardKind identifies one single-player effect.
type CardKind int

const (
	CardTargetShift CardKind = iota
	CardSuccessfulEscape
	CardRiskAversion
	CardSafetyReward
	CardReverseRank
	CardRandomScore
	CardForceMaxScore
	CardFake

	cardKindCount
)

var cardNames = [cardKindCount]string{
	CardTargetShift:      "target shift",
	CardSuccessfulEscape: "successful escape",
	CardRiskAversion:     "risk aversion",
	CardSafetyReward:     "safety reward",
	CardReverseRank:      "reverse rank",
	CardRandomScore:      "random score",
	CardForceMaxScore:    "force max score",
	CardFake:             "fake card",
}

func (k CardKind) String() string {
	if k < 0 || k >= cardKindCount {
		return fmt.Sprintf("CardKind(%d)", int(k))
	}
	return cardNames[k]
}

// Card is a revealed card. Nil stages leave the turn's policy untouched.
type Card struct {
	Kind        CardKind
	Description string
	Owner       string
	Buyers      []string

	PlayingScorePreprocess Stage
	ScoreRankCmp           CompareFunc
	TargetRearrange        Stage
	BetDeduct              DeductFunc
	BetScorePreprocess     Stage
	BetScoreEvaluate       Stage
	BetScorePostprocess    Stage
}

// Install puts the card's stages into pol for the rest of the turn.
func (c *Card) Install(pol *TurnPolicy) {
	if c.PlayingScorePreprocess != nil {
		pol.PlayingScorePreprocess = c.PlayingScorePreprocess
	}
	if c.ScoreRankCmp != nil {
		pol.Compare = c.ScoreRankCmp
	}
	if c.TargetRearrange != nil {
		pol.TargetRearrange = c.TargetRearrange
	}
	if c.BetDeduct != nil {
		pol.BetDeduct = c.BetDeduct
	}
	if c.BetScorePreprocess != nil {
		pol.BetScorePreprocess = c.BetScorePreprocess
	}
	if c.BetScoreEvaluate != nil {
		pol.BetEvaluate = c.BetScoreEvaluate
	}
	if c.BetScorePostprocess != nil {
		pol.BetScorePostprocess = c.BetScorePostprocess
	}
	pol.note(fmt.Sprintf("%s played by %s: %s", c.Kind, c.Owner, c.Description))
}

type cardFactory func(c *Card, gt GameType) error

var cardTable = [cardKindCount]cardFactory{
	CardTargetShift: func(c *Card, _ GameType) error {
		c.Description = "Every bet moves to the player ranked just below its target."
		c.TargetRearrange = shiftTargets
		return nil
	},
	CardSuccessfulEscape: func(c *Card, _ GameType) error {
		c.Description = "If every bet on the owner fails, the forfeited stakes go to the owner and the lowest scorers."
		c.BetScoreEvaluate = successfulEscape(c.Owner)
		return nil
	},
	CardRiskAversion: func(c *Card, _ GameType) error {
		c.Description = "Failed bets cost nothing this turn."
		c.BetScoreEvaluate = func(t *Turn) error {
			settleBets(t, func(*Player) bool { return false })
			return nil
		}
		return nil
	},
	CardSafetyReward: func(c *Card, _ GameType) error {
		c.Description = "Everyone who did not bet gains points."
		c.BetScorePreprocess = safetyReward
		return nil
	},
	CardReverseRank: func(c *Card, _ GameType) error {
		c.Description = "The lowest play score ranks best this turn."
		c.ScoreRankCmp = reverseRank
		return nil
	},
	CardRandomScore: func(c *Card, gt GameType) error {
		top, err := MaxScore(gt)
		if err != nil {
			return err
		}
		c.Description = "The owner's play score is rerolled between the lowest score and the maximum."
		owner := c.Owner
		c.PlayingScorePreprocess = func(t *Turn) error {
			p := t.Lookup(owner)
			if p == nil {
				return nil
			}
			low := top
			for _, q := range t.Players {
				if q.PlayingScore != nil {
					low = min(low, *q.PlayingScore)
				}
			}
			p.PlayingScore = intPtr(low + t.Rand.IntN(top-low+1))
			return nil
		}
		return nil
	},
	CardForceMaxScore: func(c *Card, gt GameType) error {
		top, err := MaxScore(gt)
		if err != nil {
			return err
		}
		c.Description = "The owner's play score becomes the maximum."
		owner := c.Owner
		c.PlayingScorePreprocess = func(t *Turn) error {
			if p := t.Lookup(owner); p != nil {
				p.PlayingScore = intPtr(top)
			}
			return nil
		}
		return nil
	},
	CardFake: func(c *Card, _ GameType) error {
		c.Description = "A fake card. Nothing happens."
		return nil
	},
}

// NewCard builds a card of kind k owned by owner.
func NewCard(k CardKind, owner string, buyers []string, gt GameType) (*Card, error) {
	if k < 0 || k >= cardKindCount {
		return nil, fmt.Errorf("unknown card kind %d", int(k))
	}
	c := &Card{Kind: k, Owner: owner, Buyers: slices.Clone(buyers)}
	if err := cardTable[k](c, gt); err != nil {
		return nil, fmt.Errorf("card %s: %w", k, err)
	}
	return c, nil
}

// RandomCard manages the per-turn card purchase queue.
type RandomCard struct {
	enabled  bool
	state    CardState
	pending  []*Player
	card     *Card
	kinds    []CardKind
	gameType GameType
	rng      *rand.Rand
	logger   *log.Logger
}

// NewRandomCard creates a card source. A disabled source stays unavailable
// for the whole session. If kinds is non-empty reveals draw only from those.
func NewRandomCard(enabled bool, gt GameType, rng *rand.Rand, logger *log.Logger, kinds ...CardKind) *RandomCard {
	if len(kinds) == 0 {
		kinds = AllCardKinds()
	}
	return &RandomCard{enabled: enabled, kinds: slices.Clone(kinds), gameType: gt, rng: rng, logger: logger}
}

// AllCardKinds lists every card in the catalog.
func AllCardKinds() []CardKind {
	kinds := make([]CardKind, 0, cardKindCount)
	for k := range cardKindCount {
		kinds = append(kinds, k)
	}
	return kinds
}

// State returns the current purchase state.
func (rc *RandomCard) State() CardState { return rc.state }

// Card returns the revealed card awaiting a decision, or nil.
func (rc *RandomCard) Card() *Card { return rc.card }

// Pending returns the ids of the queued buyers.
func (rc *RandomCard) Pending() []string {
	ids := make([]string, len(rc.pending))
	for i, p := range rc.pending {
		ids[i] = p.ID
	}
	return ids
}

// ResetTurn discards any queue or undecided card.
func (rc *RandomCard) ResetTurn() {
	rc.pending = nil
	rc.card = nil
	if rc.enabled {
		rc.state = CardAvailable
	}
}

// Enqueue adds p to the buyers. Buying twice in one round is a no-op.
func (rc *RandomCard) Enqueue(p *Player) error {
	switch rc.state {
	case CardUnavailable:
		return ErrFeatureDisabled
	case CardDetermined:
		return fmt.Errorf("%w: a revealed card is awaiting a decision", ErrInvalidPhase)
	}
	if !slices.Contains(rc.pending, p) {
		rc.pending = append(rc.pending, p)
	}
	rc.state = CardCall
	return nil
}

// Reveal picks the highest-scoring buyer as owner and draws one of the card
// effects for them.
func (rc *RandomCard) Reveal() (*Card, error) {
	switch rc.state {
	case CardUnavailable:
		return nil, ErrFeatureDisabled
	case CardAvailable:
		return nil, fmt.Errorf("%w: no buyers", ErrInvalidPhase)
	case CardDetermined:
		return nil, fmt.Errorf("%w: card already revealed", ErrInvalidPhase)
	}

	slices.SortStableFunc(rc.pending, compareStanding)
	buyers := rc.Pending()
	k := rc.kinds[rc.rng.IntN(len(rc.kinds))]
	c, err := NewCard(k, buyers[0], buyers, rc.gameType)
	if err != nil {
		return nil, err
	}

	rc.card = c
	rc.pending = nil
	rc.state = CardDetermined
	rc.logger.Debug("Card revealed", "card", k, "owner", c.Owner, "buyers", len(buyers))
	return c, nil
}

// Resolve finishes the decision on the revealed card and reopens purchases.
func (rc *RandomCard) Resolve() {
	rc.card = nil
	if rc.enabled {
		rc.state = CardAvailable
	}
}

// shiftTargets moves every bet to the player following its target in the
// ranking recorded at the start of the turn, skipping the bettor.
func shiftTargets(t *Turn) error {
	n := len(t.Ranking)
	pos := make(map[string]int, n)
	for i, id := range t.Ranking {
		pos[id] = i
	}
	for _, p := range t.Players {
		if !p.HasBet() {
			continue
		}
		i, ok := pos[p.BetTarget]
		if !ok {
			continue
		}
		for step := 1; step <= n; step++ {
			cand := t.Ranking[(i+step)%n]
			if cand != p.ID {
				p.BetTarget = cand
				break
			}
		}
	}
	return nil
}

func successfulEscape(owner string) Stage {
	return func(t *Turn) error {
		settleBets(t, func(*Player) bool { return t.Policy.BetFailedDeduct })

		o := t.Lookup(owner)
		if o == nil {
			return nil
		}
		forfeited, against := 0, 0
		for _, p := range t.Players {
			if p.BetTarget != owner || p.BetReward == nil {
				continue
			}
			against++
			if *p.BetReward > 0 {
				return nil
			}
			forfeited -= *p.BetReward
		}
		if against == 0 || forfeited == 0 {
			return nil
		}

		recipients := []*Player{o}
		low, ok := lowestPlayingScore(t.Players)
		if ok {
			for _, p := range t.Players {
				if p != o && p.PlayingScore != nil && *p.PlayingScore == low {
					recipients = append(recipients, p)
				}
			}
		}
		share := forfeited / len(recipients)
		for _, p := range recipients {
			p.Score += share
		}
		t.Policy.note(fmt.Sprintf("%s escaped: %d points shared by %d players", owner, forfeited, len(recipients)))
		return nil
	}
}

func safetyReward(t *Turn) error {
	bonus := ceilDiv(t.N(), 4)
	for _, p := range t.Players {
		if !p.HasBet() {
			p.Score += bonus
		}
	}
	return nil
}

func reverseRank(a, b *Player) int {
	if a.PlayingScore != nil && b.PlayingScore != nil && *a.PlayingScore != *b.PlayingScore {
		if *a.PlayingScore < *b.PlayingScore {
			return -1
		}
		return 1
	}
	return compareStanding(a, b)
}

func lowestPlayingScore(players []*Player) (int, bool) {
	found := false
	low := 0
	for _, p := range players {
		if p.PlayingScore == nil {
			continue
		}
		if !found || *p.PlayingScore < low {
			low = *p.PlayingScore
			found = true
		}
	}
	return low, found
}
