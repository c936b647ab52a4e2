package extract

import (
	"strings"
	"testing"

	"github.com/freeeve/pgn/v3"

	"github.com/chesslab/bookforge/internal/corpus"
)

// gameFromSAN builds a corpus game by parsing space-separated SAN moves
// from the starting position.
func gameFromSAN(t *testing.T, sans string, result corpus.Result) *corpus.Game {
	t.Helper()
	pos := pgn.NewStartingPosition()
	var moves []pgn.Mv
	for _, san := range strings.Fields(sans) {
		san = strings.TrimSuffix(strings.TrimSuffix(san, "#"), "+")
		mv, err := pgn.ParseSAN(pos, san)
		if err != nil {
			t.Fatalf("parse %q: %v", san, err)
		}
		if err := pgn.ApplyMove(pos, mv); err != nil {
			t.Fatalf("apply %q: %v", san, err)
		}
		moves = append(moves, mv)
	}
	return &corpus.Game{
		Moves: moves,
		Meta:  corpus.Meta{Result: result, WhiteRating: 2000, BlackRating: 2000},
	}
}

func TestOpenings_WindowAndEarlyStop(t *testing.T) {
	g := gameFromSAN(t, "e4 e5 Nf3 Nc6 Bb5 a6", corpus.WhiteWins)

	var keys []pgn.PackedPosition
	n, err := Openings(g, 1, 3, func(pos pgn.PackedPosition, mv pgn.Mv) bool {
		keys = append(keys, pos)
		return true
	})
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 || len(keys) != 3 {
		t.Fatalf("yielded %d pairs, want 3", n)
	}
	if keys[0] != pgn.NewStartingPosition().Pack() {
		t.Error("first pair should be keyed by the starting position")
	}
	// Ply 2's position differs from ply 1's.
	if keys[1] == keys[0] {
		t.Error("consecutive plies produced identical position keys")
	}
}

func TestOpenings_MinPlySkipsEarlyMoves(t *testing.T) {
	g := gameFromSAN(t, "e4 e5 Nf3 Nc6", corpus.Draw)

	n, err := Openings(g, 3, 4, func(pos pgn.PackedPosition, mv pgn.Mv) bool {
		if pos == pgn.NewStartingPosition().Pack() {
			t.Error("starting position yielded despite minPly=3")
		}
		return true
	})
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("yielded %d pairs, want 2", n)
	}
}

func TestOpenings_ShortGameYieldsNothing(t *testing.T) {
	g := gameFromSAN(t, "e4 e5", corpus.WhiteWins)
	n, err := Openings(g, 5, 12, func(pgn.PackedPosition, pgn.Mv) bool { return true })
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("yielded %d pairs from a 2-ply game with minPly=5", n)
	}
}

func TestOpenings_CallbackStops(t *testing.T) {
	g := gameFromSAN(t, "e4 e5 Nf3 Nc6", corpus.WhiteWins)
	n, err := Openings(g, 1, 12, func(pgn.PackedPosition, pgn.Mv) bool { return false })
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("n = %d after immediate stop, want 0", n)
	}
}

func TestTraining_ScoresFollowSideToMove(t *testing.T) {
	// White won; after an odd ply Black is to move (score 0), after an
	// even ply White is (score 1).
	g := gameFromSAN(t, "e4 e5 Nf3 Nc6 Bb5 a6 Ba4 Nf6", corpus.WhiteWins)

	type pair struct {
		white bool
		score float64
	}
	var got []pair
	n, err := Training(g, Config{MinPly: 3, MaxPly: 6, PerGame: 10}, func(fen string, score float64) bool {
		got = append(got, pair{white: whiteToMove(fen), score: score})
		return true
	})
	if err != nil {
		t.Fatal(err)
	}
	if n != 4 {
		t.Fatalf("yielded %d positions, want 4 (plies 3-6)", n)
	}
	for i, p := range got {
		want := 0.0
		if p.white {
			want = 1.0
		}
		if p.score != want {
			t.Errorf("position %d: whiteToMove=%v score=%v", i, p.white, p.score)
		}
	}
}

func TestTraining_DrawnGameYieldsNothing(t *testing.T) {
	g := gameFromSAN(t, "e4 e5 Nf3 Nc6 Bb5 a6", corpus.Draw)
	n, err := Training(g, Config{MinPly: 1, MaxPly: 50, PerGame: 10}, func(string, float64) bool {
		t.Fatal("drawn game produced a training position")
		return false
	})
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("n = %d, want 0", n)
	}
}

func TestTraining_PerGameCap(t *testing.T) {
	g := gameFromSAN(t, "e4 e5 Nf3 Nc6 Bb5 a6 Ba4 Nf6 d3 b5 Bb3 Be7", corpus.BlackWins)
	n, err := Training(g, Config{MinPly: 1, MaxPly: 50, PerGame: 2}, func(string, float64) bool { return true })
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("yielded %d positions, want the per-game cap of 2", n)
	}
}

func TestTraining_CheckPositionsExcluded(t *testing.T) {
	// 2... Qh4+ leaves White in check after ply 4.
	g := gameFromSAN(t, "f4 e5 fxe5 Qh4", corpus.BlackWins)
	n, err := Training(g, Config{MinPly: 4, MaxPly: 4, PerGame: 5}, func(fen string, _ float64) bool {
		t.Errorf("in-check position yielded: %s", fen)
		return true
	})
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("n = %d, want 0", n)
	}
}

func TestIsQuiet_EndgameMaterialFloor(t *testing.T) {
	tests := []struct {
		name string
		fen  string
		want bool
	}{
		{"bare kings", "8/8/8/8/8/8/8/4K2k w - - 0 1", false},
		{"rook endgame", "8/8/8/8/8/8/r7/R3K2k w - - 0 1", false},
		{"four minors", "8/8/8/8/2n1n3/8/NN6/4K2k w - - 0 1", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos, err := pgn.NewGame(tt.fen)
			if err != nil {
				t.Fatal(err)
			}
			if got := isQuiet(pos, pos.ToFEN()); got != tt.want {
				t.Errorf("isQuiet(%s) = %v, want %v", tt.fen, got, tt.want)
			}
		})
	}
}

func TestWhiteToMove(t *testing.T) {
	if !whiteToMove("rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1") {
		t.Error("expected white to move")
	}
	if whiteToMove("rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1") {
		t.Error("expected black to move")
	}
}
