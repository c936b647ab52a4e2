package elo

import (
	"fmt"
	"sort"
)

// Sample is one calibration match record: a block of games played at one
// search depth against one reference opponent of known rating.
type Sample struct {
	Depth    int
	Opponent int
	Wins     int
	Losses   int
	Draws    int
	Points   float64 // wins + 0.5*draws, as reported by the match harness
}

// Games returns the number of games behind the sample.
func (s Sample) Games() int { return s.Wins + s.Losses + s.Draws }

// Score returns the score fraction, points over games. Only meaningful
// when Games() > 0.
func (s Sample) Score() float64 {
	return s.Points / float64(s.Games())
}

// DepthRating is one calibrated depth and its averaged rating estimate.
type DepthRating struct {
	Depth  int `json:"depth"`
	Rating int `json:"rating"`
}

// Result is the calibration output: one entry per depth with enough
// support, ordered by depth ascending, plus everything the operator needs
// to know about what was left out or looks wrong.
type Result struct {
	Table    []DepthRating
	Omitted  []string // depths skipped for low support
	Warnings []string // monotonicity violations; the table is NOT reordered
}

// Calibrator groups samples by depth and reduces each depth to a single
// representative rating: one Elo estimate per (depth, opponent) sample,
// averaged across opponents.
type Calibrator struct {
	samples  map[int][]Sample
	minGames int
}

// NewCalibrator returns a calibrator that omits any depth backed by fewer
// than minGames total games.
func NewCalibrator(minGames int) *Calibrator {
	return &Calibrator{samples: make(map[int][]Sample), minGames: minGames}
}

// Add records a calibration sample. Zero-game samples are accepted and
// contribute nothing beyond the support accounting.
func (c *Calibrator) Add(s Sample) {
	c.samples[s.Depth] = append(c.samples[s.Depth], s)
}

// Result reduces all samples to the depth-rating table. Ratings that fail
// to increase with depth indicate a measurement problem and are surfaced
// as warnings rather than silently reordered.
func (c *Calibrator) Result() Result {
	depths := make([]int, 0, len(c.samples))
	for d := range c.samples {
		depths = append(depths, d)
	}
	sort.Ints(depths)

	var res Result
	for _, d := range depths {
		var estimates []int
		games := 0
		for _, s := range c.samples[d] {
			if s.Games() == 0 {
				continue
			}
			games += s.Games()
			estimates = append(estimates, Estimate(s.Opponent, s.Score()))
		}
		if len(estimates) == 0 || games < c.minGames {
			res.Omitted = append(res.Omitted,
				fmt.Sprintf("depth %d omitted for low support (%d games)", d, games))
			continue
		}
		sum := 0
		for _, e := range estimates {
			sum += e
		}
		res.Table = append(res.Table, DepthRating{Depth: d, Rating: sum / len(estimates)})
	}

	for i := 1; i < len(res.Table); i++ {
		prev, cur := res.Table[i-1], res.Table[i]
		if cur.Rating < prev.Rating {
			res.Warnings = append(res.Warnings,
				fmt.Sprintf("depth %d calibrated at %d, below depth %d at %d",
					cur.Depth, cur.Rating, prev.Depth, prev.Rating))
		}
	}
	return res
}
