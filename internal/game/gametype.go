package game

import (
	"fmt"
	"strings"
)

// GameType identifies the rhythm game a session is scored in.
type GameType string

const (
	Arcaea  GameType = "arcaea"
	Phigros GameType = "phigros"
)

var maxScores = map[GameType]int{
	Arcaea:  10_010_000,
	Phigros: 1_000_000,
}

// MaxScore returns the highest play score achievable in gt.
func MaxScore(gt GameType) (int, error) {
	top, ok := maxScores[gt]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedGameType, string(gt))
	}
	return top, nil
}

// ParseGameType normalises s and checks that it is supported.
func ParseGameType(s string) (GameType, error) {
	gt := GameType(strings.ToLower(strings.TrimSpace(s)))
	if _, err := MaxScore(gt); err != nil {
		return "", err
	}
	return gt, nil
}

func (gt GameType) String() string { return string(gt) }
