package book

import "github.com/freeeve/pgn/v3"

// FrequencyTable tallies how often each move was played from each
// position. It is an explicit value passed through the pipeline, never
// package state, so independent scans stay composable: build one table
// per input batch and Merge them.
//
// Counts are insensitive to observation order. There is no removal.
type FrequencyTable struct {
	counts map[pgn.PackedPosition]map[Move]uint32
}

// NewFrequencyTable returns an empty table.
func NewFrequencyTable() *FrequencyTable {
	return &FrequencyTable{counts: make(map[pgn.PackedPosition]map[Move]uint32)}
}

// Observe records one occurrence of mv played from pos.
func (t *FrequencyTable) Observe(pos pgn.PackedPosition, mv Move) {
	t.ObserveN(pos, mv, 1)
}

// ObserveN records n occurrences at once.
func (t *FrequencyTable) ObserveN(pos pgn.PackedPosition, mv Move, n uint32) {
	if n == 0 {
		return
	}
	m := t.counts[pos]
	if m == nil {
		m = make(map[Move]uint32)
		t.counts[pos] = m
	}
	m[mv] += n
}

// Merge folds another table's counts into t. The other table is not
// modified.
func (t *FrequencyTable) Merge(o *FrequencyTable) {
	for pos, moves := range o.counts {
		for mv, n := range moves {
			t.ObserveN(pos, mv, n)
		}
	}
}

// Positions returns the number of distinct positions observed.
func (t *FrequencyTable) Positions() int { return len(t.counts) }

// Observations returns the total tally across all positions and moves.
func (t *FrequencyTable) Observations() int64 {
	var total int64
	for _, moves := range t.counts {
		for _, n := range moves {
			total += int64(n)
		}
	}
	return total
}
