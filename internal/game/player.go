package game

// Player is one participant of a session.
//
// Score survives across turns. Every other field describes the current turn
// only and is cleared when the next turn starts; pointer fields are nil while
// unset.
type Player struct {
	ID    string
	Score int

	TookBet      bool
	BetTarget    string // empty when the player passed
	Stake        int
	BettedCount  *int
	BetReward    *int
	Played       bool
	PlayingScore *int
	Rank         *int
	TurnPoints   *int
}

// HasBet reports whether the player wagered on someone this turn.
func (p *Player) HasBet() bool {
	return p.BetTarget != ""
}

func (p *Player) resetTurn() {
	p.TookBet = false
	p.BetTarget = ""
	p.Stake = 0
	p.BettedCount = nil
	p.BetReward = nil
	p.Played = false
	p.PlayingScore = nil
	p.Rank = nil
	p.TurnPoints = nil
}

func (p *Player) resetRound() {
	p.Score = 0
	p.resetTurn()
}

func (p *Player) addBetted() {
	n := 1
	if p.BettedCount != nil {
		n = *p.BettedCount + 1
	}
	p.BettedCount = &n
}

func bettedCount(p *Player) int {
	if p.BettedCount == nil {
		return 0
	}
	return *p.BettedCount
}

func intPtr(v int) *int { return &v }
