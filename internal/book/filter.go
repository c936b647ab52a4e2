package book

import "sort"

// DefaultTopK bounds how many moves a book entry keeps.
const DefaultTopK = 5

// Thresholds control significance filtering.
type Thresholds struct {
	MinGames int     // drop positions supported by fewer games than this
	MinFreq  float64 // drop moves played in less than this share of a position's games
	TopK     int     // keep at most this many moves per entry (0 = DefaultTopK)
}

// BookMove is one ranked reply with its support count.
type BookMove struct {
	UCI   string `json:"uci"`
	Count uint32 `json:"count"`
}

// Entry is one retained position: its canonical FEN key, the number of
// games it was observed in, and its surviving replies ranked by count
// descending (ties broken by UCI string, for run-to-run determinism).
type Entry struct {
	FEN   string     `json:"fen"`
	Total uint32     `json:"total"`
	Moves []BookMove `json:"moves"`
}

// Book is the filtered artifact, ordered by support descending then FEN.
type Book struct {
	Entries []Entry
}

// Filter reduces a frequency table to the entries with enough support.
// For each position: the position is dropped if its total observations
// fall under MinGames; otherwise only moves reaching MinFreq of the total
// survive, and the position is dropped if none do. Filtering the output
// of Filter again with the same thresholds is a fixed point.
func Filter(t *FrequencyTable, th Thresholds) *Book {
	topK := th.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}

	b := &Book{}
	for pos, moves := range t.counts {
		var total uint32
		for _, n := range moves {
			total += n
		}
		if int(total) < th.MinGames {
			continue
		}

		kept := make([]BookMove, 0, len(moves))
		for mv, n := range moves {
			if float64(n)/float64(total) >= th.MinFreq {
				kept = append(kept, BookMove{UCI: mv.UCI(), Count: n})
			}
		}
		if len(kept) == 0 {
			continue
		}
		sort.Slice(kept, func(i, j int) bool {
			if kept[i].Count != kept[j].Count {
				return kept[i].Count > kept[j].Count
			}
			return kept[i].UCI < kept[j].UCI
		})
		if len(kept) > topK {
			kept = kept[:topK]
		}

		gs := pos.Unpack()
		if gs == nil {
			continue
		}
		b.Entries = append(b.Entries, Entry{FEN: gs.ToFEN(), Total: total, Moves: kept})
	}

	sort.Slice(b.Entries, func(i, j int) bool {
		if b.Entries[i].Total != b.Entries[j].Total {
			return b.Entries[i].Total > b.Entries[j].Total
		}
		return b.Entries[i].FEN < b.Entries[j].FEN
	})
	return b
}
