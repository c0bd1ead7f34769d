// Package game implements the turn engine of the score betting party game.
//
// The main type is Game, which walks every turn through a fixed sequence of
// phases: an event is drawn, a quest is drawn and verified, players bet on
// who will score best, play the quest, and the results are evaluated.
//
// # Basic Usage
//
//	rng := randutil.New(42)
//	g, err := game.NewGame(rng, pool, game.WithTurns(3))
//	g.Enroll("alice")
//	g.Enroll("bob")
//	g.Start()
//	g.DrawEvent()
//	g.DrawQuest()
//	g.Verify()
//	g.Bet("al", "bob", 2) // prefixes resolve to unique players
//	g.Pass("bob")
//	g.Play("alice", "9,876,543")
//	g.Play("bob", "9,912,000")
//	g.Preprocess()
//	g.EvaluateScore()
//	g.EvaluateBet()
//	g.EndTurn()
//
// # Turn policy
//
// Scoring and betting run through a pipeline of stages held in a TurnPolicy.
// The policy is rebuilt from the session rules at the start of every turn.
// Events (RandomEvent) change its flags, replace the rank-to-points function
// or add end-of-turn hooks; cards (RandomCard) replace single stages on
// behalf of the player who owns them. Whatever they install is gone when the
// next turn starts. Cards are off unless the game is created with
// WithCards(true).
//
// # Deterministic Testing
//
// All randomness comes from the *rand.Rand passed to NewGame, so a fixed
// seed reproduces event draws, card reveals and rerolled scores. Use
// WithEventKinds, WithoutEvents and WithCardKinds to pin the catalogs and
// WithClock with a quartz mock to pin report timestamps.
package game
