// Package corpus streams validated game records out of PGN files.
//
// Header validation happens once per game at ingestion: a game either
// carries a known result and two parseable ratings, or it never reaches
// the caller. Malformed and excluded games are counted, not surfaced as
// errors, so a bad record can never abort a corpus scan.
package corpus

import (
	"fmt"
	"os"
	"strconv"

	"github.com/freeeve/pgn/v3"
)

// Result is the validated outcome of a game.
type Result uint8

const (
	WhiteWins Result = iota
	BlackWins
	Draw
)

// Meta is the required header schema: a decisive-or-drawn result and both
// players' ratings. Optional PGN tags are ignored.
type Meta struct {
	Result      Result
	WhiteRating int
	BlackRating int
}

// Game is one record from the corpus, immutable once scanned.
type Game struct {
	Moves []pgn.Mv
	Meta  Meta
}

// Stats counts how games were classified during a scan. Stats from
// parallel scans are combined with Add.
type Stats struct {
	Parsed    int64 // games the parser produced
	Malformed int64 // unknown result, or move text that failed to replay
	Excluded  int64 // missing/unparseable rating, or below the rating floor
	Used      int64 // games handed to the caller
}

// Add folds another scan's counters into s.
func (s *Stats) Add(o Stats) {
	s.Parsed += o.Parsed
	s.Malformed += o.Malformed
	s.Excluded += o.Excluded
	s.Used += o.Used
}

// Scanner pulls validated games from a single PGN file (.pgn or .pgn.zst;
// the parser decompresses zstd itself). End of stream is Next() == false
// with a nil Err().
type Scanner struct {
	games     <-chan *pgn.Game
	stop      func()
	parserErr func() error

	ratingMin int
	stats     Stats
	cur       *Game
	drained   bool
}

// Open starts a streaming parse of path. Games where either player's
// rating is absent or below ratingMin are excluded before they are
// yielded.
func Open(path string, ratingMin int) (*Scanner, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("open corpus %s: %w", path, err)
	}
	p := pgn.Games(path)
	return &Scanner{
		games:     p.Games,
		stop:      p.Stop,
		parserErr: p.Err,
		ratingMin: ratingMin,
	}, nil
}

// Next advances to the next game that passes validation and the rating
// floor. It returns false at end of stream.
func (s *Scanner) Next() bool {
	for g := range s.games {
		s.stats.Parsed++
		meta, why := classify(g.Tags, s.ratingMin)
		switch why {
		case rejectMalformed:
			s.stats.Malformed++
			continue
		case rejectRating:
			s.stats.Excluded++
			continue
		}
		s.cur = &Game{Moves: g.Moves, Meta: meta}
		s.stats.Used++
		return true
	}
	s.cur = nil
	s.drained = true
	return false
}

// Game returns the current game. Valid only after Next() returned true.
func (s *Scanner) Game() *Game { return s.cur }

// Err returns the stream-level parser error, if any. Per-game problems are
// never reported here.
func (s *Scanner) Err() error { return s.parserErr() }

// Stats returns the classification counters so far.
func (s *Scanner) Stats() Stats { return s.stats }

// CountMalformed reclassifies the current game as malformed, for callers
// that discover bad move text while replaying it.
func (s *Scanner) CountMalformed() {
	s.stats.Used--
	s.stats.Malformed++
}

// Close stops the underlying parser. Needed only when abandoning a scan
// early; a fully drained stream is already finished.
func (s *Scanner) Close() {
	if !s.drained {
		s.stop()
	}
}

type reject uint8

const (
	rejectNone reject = iota
	rejectMalformed
	rejectRating
)

// classify validates the header schema against the rating floor.
func classify(tags map[string]string, ratingMin int) (Meta, reject) {
	var m Meta
	switch tags["Result"] {
	case "1-0":
		m.Result = WhiteWins
	case "0-1":
		m.Result = BlackWins
	case "1/2-1/2":
		m.Result = Draw
	default:
		return m, rejectMalformed
	}

	white, ok := parseRating(tags["WhiteElo"])
	if !ok {
		return m, rejectRating
	}
	black, ok := parseRating(tags["BlackElo"])
	if !ok {
		return m, rejectRating
	}
	if white < ratingMin || black < ratingMin {
		return m, rejectRating
	}
	m.WhiteRating = white
	m.BlackRating = black
	return m, rejectNone
}

func parseRating(s string) (int, bool) {
	if s == "" || s == "?" || s == "-" {
		return 0, false
	}
	r, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return r, true
}
