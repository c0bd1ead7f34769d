package statistics

import (
	"fmt"
	"math"
	"slices"
	"sort"
)

// RoundResult represents the outcome of a single simulated round
type RoundResult struct {
	Game    int            // Index of the round in its batch
	Seed    int64          // Base seed of the batch (for replay with Game)
	GameID  string         // Session id assigned by the engine
	Winners []string       // Every player tied for the top score
	Scores  map[string]int // Final total score per player
	Events  int            // Events applied over the round
	Cards   int            // Cards revealed over the round
	Report  string         // Final report text
}

// PlayerStats tracks statistics for one player across rounds
type PlayerStats struct {
	Rounds     int
	Wins       int // Rounds won, shared or not
	SharedWins int // Rounds won in a tie
	SumScore   float64
	SumScore2  float64   // Sum of squares for variance calculation
	Values     []float64 // Store all values for median/percentile calculation
}

// Mean returns the mean final score per round
func (p *PlayerStats) Mean() float64 {
	if p.Rounds == 0 {
		return 0
	}
	return p.SumScore / float64(p.Rounds)
}

// Variance returns the sample variance of the final scores
func (p *PlayerStats) Variance() float64 {
	if p.Rounds < 2 {
		return 0
	}
	mean := p.Mean()
	return (p.SumScore2 - float64(p.Rounds)*mean*mean) / float64(p.Rounds-1)
}

// StdDev returns the sample standard deviation of the final scores
func (p *PlayerStats) StdDev() float64 {
	return math.Sqrt(max(p.Variance(), 0))
}

// StdError returns the standard error of the mean
func (p *PlayerStats) StdError() float64 {
	if p.Rounds == 0 {
		return 0
	}
	return p.StdDev() / math.Sqrt(float64(p.Rounds))
}

// ConfidenceInterval95 returns the 95% confidence interval for the mean
func (p *PlayerStats) ConfidenceInterval95() (float64, float64) {
	mean := p.Mean()
	margin := 1.96 * p.StdError()
	return mean - margin, mean + margin
}

// Median returns the median final score
func (p *PlayerStats) Median() float64 {
	return p.Percentile(0.5)
}

// Percentile returns the final score at the given percentile (0.0 to 1.0)
func (p *PlayerStats) Percentile(q float64) float64 {
	if len(p.Values) == 0 {
		return 0
	}
	sorted := slices.Clone(p.Values)
	sort.Float64s(sorted)

	index := q * float64(len(sorted)-1)
	lower := int(index)
	upper := lower + 1
	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}

	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// Statistics tracks results over a batch of simulated rounds
type Statistics struct {
	Rounds  int
	Ties    int // Rounds won by more than one player
	Events  int
	Cards   int
	Players map[string]*PlayerStats

	// Extremes of any final score observed
	HighScore int
	LowScore  int

	winnerSlots int
}

// Add incorporates a new round result into the statistics
func (s *Statistics) Add(result RoundResult) {
	if s.Players == nil {
		s.Players = make(map[string]*PlayerStats)
	}
	if s.Rounds == 0 {
		s.HighScore, s.LowScore = math.MinInt, math.MaxInt
	}
	s.Rounds++
	s.Events += result.Events
	s.Cards += result.Cards
	s.winnerSlots += len(result.Winners)
	if len(result.Winners) > 1 {
		s.Ties++
	}

	for id, score := range result.Scores {
		ps := s.player(id)
		v := float64(score)
		ps.Rounds++
		ps.SumScore += v
		ps.SumScore2 += v * v
		ps.Values = append(ps.Values, v)
		s.HighScore = max(s.HighScore, score)
		s.LowScore = min(s.LowScore, score)
	}

	for _, id := range result.Winners {
		ps := s.player(id)
		ps.Wins++
		if len(result.Winners) > 1 {
			ps.SharedWins++
		}
	}
}

func (s *Statistics) player(id string) *PlayerStats {
	ps, ok := s.Players[id]
	if !ok {
		ps = &PlayerStats{}
		s.Players[id] = ps
	}
	return ps
}

// Player returns the statistics of id, or empty statistics if it never
// played.
func (s *Statistics) Player(id string) *PlayerStats {
	if ps, ok := s.Players[id]; ok {
		return ps
	}
	return &PlayerStats{}
}

// IDs returns the player ids in lexical order.
func (s *Statistics) IDs() []string {
	ids := make([]string, 0, len(s.Players))
	for id := range s.Players {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// WinRate returns the fraction of rounds id won outright or shared.
func (s *Statistics) WinRate(id string) float64 {
	if s.Rounds == 0 {
		return 0
	}
	return float64(s.Player(id).Wins) / float64(s.Rounds)
}

// Validate performs comprehensive validation of statistics data
func (s *Statistics) Validate() error {
	if s.Rounds <= 0 {
		return fmt.Errorf("invalid rounds count: %d", s.Rounds)
	}
	if s.winnerSlots < s.Rounds {
		return fmt.Errorf("winners recorded (%d) fewer than rounds (%d)", s.winnerSlots, s.Rounds)
	}

	wins := 0
	for id, ps := range s.Players {
		if ps.Rounds > s.Rounds {
			return fmt.Errorf("player %s played %d rounds of %d", id, ps.Rounds, s.Rounds)
		}
		if len(ps.Values) != ps.Rounds {
			return fmt.Errorf("player %s: values array length (%d) does not match rounds (%d)",
				id, len(ps.Values), ps.Rounds)
		}
		if ps.Wins > ps.Rounds {
			return fmt.Errorf("player %s won %d of %d rounds", id, ps.Wins, ps.Rounds)
		}
		wins += ps.Wins
	}
	if wins != s.winnerSlots {
		return fmt.Errorf("player wins total (%d) does not match winners recorded (%d)", wins, s.winnerSlots)
	}
	return nil
}
