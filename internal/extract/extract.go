// Package extract replays game records and yields the positions that pass
// the pipelines' inclusion predicates. Ply numbers are 1-based throughout:
// ply 1 is White's first move.
package extract

import (
	"fmt"
	"strings"

	"github.com/freeeve/pgn/v3"

	"github.com/chesslab/bookforge/internal/corpus"
)

// OpeningFunc receives the position before a move and the move played from
// it. Return false to stop extraction for the current game.
type OpeningFunc func(pos pgn.PackedPosition, mv pgn.Mv) bool

// Openings yields (position-before-move, move) pairs for plies in
// [minPly, maxPly], stopping the replay once maxPly is passed. A game
// shorter than minPly yields nothing; that is normal. The returned count
// is the number of pairs yielded. A non-nil error means the game's move
// text stopped replaying legally and the game should be counted malformed.
func Openings(g *corpus.Game, minPly, maxPly int, fn OpeningFunc) (int, error) {
	pos := pgn.NewStartingPosition()
	n := 0
	for i, mv := range g.Moves {
		ply := i + 1
		if ply > maxPly {
			break
		}
		if ply >= minPly {
			if !fn(pos.Pack(), mv) {
				return n, nil
			}
			n++
		}
		if err := pgn.ApplyMove(pos, mv); err != nil {
			return n, fmt.Errorf("apply ply %d: %w", ply, err)
		}
	}
	return n, nil
}

// Config holds the training-mode predicates.
type Config struct {
	MinPly  int // first ply (1-based) eligible for extraction
	MaxPly  int // last eligible ply; replay stops beyond it
	PerGame int // cap on positions taken from one game
}

// TrainingFunc receives a position's FEN and the game outcome from the
// perspective of the side to move there: 1 if that side went on to win,
// 0 otherwise. Return false to stop extraction for the current game.
type TrainingFunc func(fen string, score float64) bool

// Training yields (position-after-move, score) pairs from a decisive game.
// Drawn games yield nothing. Positions must fall inside the ply window,
// pass the quietness heuristic, and respect the per-game cap.
func Training(g *corpus.Game, cfg Config, fn TrainingFunc) (int, error) {
	if g.Meta.Result == corpus.Draw {
		return 0, nil
	}
	pos := pgn.NewStartingPosition()
	n := 0
	for i, mv := range g.Moves {
		if err := pgn.ApplyMove(pos, mv); err != nil {
			return n, fmt.Errorf("apply ply %d: %w", i+1, err)
		}
		ply := i + 1
		if ply < cfg.MinPly {
			continue
		}
		if ply > cfg.MaxPly || n >= cfg.PerGame {
			break
		}
		fen := pos.ToFEN()
		if !isQuiet(pos, fen) {
			continue
		}
		score := 0.0
		if whiteToMove(fen) == (g.Meta.Result == corpus.WhiteWins) {
			score = 1.0
		}
		if !fn(fen, score) {
			return n, nil
		}
		n++
	}
	return n, nil
}

// isQuiet reports whether a position is tactically uneventful: the side to
// move is not in check and at least four knights, bishops, rooks or queens
// remain on the board. A cheap proxy for "not a deep endgame, not mid
// tactic" -- it makes no static-exchange guarantee.
func isQuiet(pos *pgn.GameState, fen string) bool {
	if pos.IsInCheck() {
		return false
	}
	board := fen
	if i := strings.IndexByte(fen, ' '); i >= 0 {
		board = fen[:i]
	}
	pieces := 0
	for _, c := range board {
		switch c {
		case 'N', 'B', 'R', 'Q', 'n', 'b', 'r', 'q':
			pieces++
		}
	}
	return pieces >= 4
}

// whiteToMove reads the side-to-move field of a FEN.
func whiteToMove(fen string) bool {
	i := strings.IndexByte(fen, ' ')
	return i >= 0 && i+1 < len(fen) && fen[i+1] == 'w'
}
