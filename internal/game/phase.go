package game

// Phase is a state of the turn state machine.
type Phase int

const (
	PhaseUnavailable Phase = iota // before Start
	PhaseDrawEvent
	PhaseDrawQuest
	PhaseVerify
	PhaseBet
	PhasePlay
	PhasePreprocess
	PhaseEvaluateScore
	PhaseEvaluateBet
	PhaseEndTurn
	PhaseFinished
)

var phaseNames = map[Phase]string{
	PhaseUnavailable:   "UNAVAILABLE",
	PhaseDrawEvent:     "DRAW_EVENT",
	PhaseDrawQuest:     "DRAW_QUEST",
	PhaseVerify:        "VERIFY",
	PhaseBet:           "BET",
	PhasePlay:          "PLAY",
	PhasePreprocess:    "PREPROCESS",
	PhaseEvaluateScore: "EVALUATE_SCORE",
	PhaseEvaluateBet:   "EVALUATE_BET",
	PhaseEndTurn:       "END_TURN",
	PhaseFinished:      "FINISHED",
}

func (p Phase) String() string {
	if s, ok := phaseNames[p]; ok {
		return s
	}
	return "UNKNOWN"
}

// cardWindow reports whether cards may be bought and decided in p.
func (p Phase) cardWindow() bool {
	return p == PhaseVerify || p == PhaseBet || p == PhasePlay
}
