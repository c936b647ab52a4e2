package book

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Write emits the book as JSON lines, one entry per line, in book order.
func Write(w io.Writer, b *Book) error {
	enc := json.NewEncoder(w)
	for i := range b.Entries {
		if err := enc.Encode(&b.Entries[i]); err != nil {
			return fmt.Errorf("encode entry %d: %w", i, err)
		}
	}
	return nil
}

// WriteStats emits a human-readable markdown summary of the book for
// audit: aggregate counts and the most common positions with their move
// distributions.
func WriteStats(w io.Writer, b *Book) error {
	var totalMoves, totalGames int64
	for _, e := range b.Entries {
		totalMoves += int64(len(e.Moves))
		totalGames += int64(e.Total)
	}

	fmt.Fprintf(w, "# Opening Book Statistics\n\n")
	fmt.Fprintf(w, "Total positions: %d\n", len(b.Entries))
	fmt.Fprintf(w, "Total move options: %d\n", totalMoves)
	fmt.Fprintf(w, "Total game references: %d\n", totalGames)
	if len(b.Entries) > 0 {
		fmt.Fprintf(w, "Avg moves per position: %.1f\n", float64(totalMoves)/float64(len(b.Entries)))
	}

	top := len(b.Entries)
	if top > 20 {
		top = 20
	}
	fmt.Fprintf(w, "\n## Top %d Positions\n\n", top)
	for i := 0; i < top; i++ {
		e := b.Entries[i]
		parts := make([]string, 0, len(e.Moves))
		for _, m := range e.Moves {
			parts = append(parts, fmt.Sprintf("%s (%d)", m.UCI, m.Count))
		}
		fmt.Fprintf(w, "%d. Games: %d\n", i+1, e.Total)
		fmt.Fprintf(w, "   FEN: %s\n", e.FEN)
		fmt.Fprintf(w, "   Moves: %s\n\n", strings.Join(parts, ", "))
	}
	return nil
}
