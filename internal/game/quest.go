package game

// Quest is the challenge every player plays in a turn.
type Quest struct {
	ID          string
	Description string
}

// QuestPool supplies quests. Draw returns ErrEmptyPool once nothing is left.
type QuestPool interface {
	Draw() (Quest, error)
	Remove(Quest)
}
