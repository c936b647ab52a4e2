// Package book builds the opening-book artifact: corpus-wide move
// frequency tallies, significance filtering, and emission.
package book

import (
	"fmt"

	"github.com/freeeve/pgn/v3"
)

// Move is a compact move encoding used as the tally key:
//
//	bits 0-5:   from square (0-63, A1=0 .. H8=63)
//	bits 6-11:  to square
//	bits 12-14: promotion piece (0=none, 1=Q, 2=R, 3=B, 4=N)
//
// Its canonical string form is coordinate (UCI) notation, which is also
// the tie-break ordering for book output.
type Move uint32

const (
	fromMask   = 0x3F
	toMask     = 0xFC0
	promoMask  = 0x7000
	toShift    = 6
	promoShift = 12
)

// Promotion pieces.
const (
	PromoNone byte = iota
	PromoQueen
	PromoRook
	PromoBishop
	PromoKnight
)

// NewMove builds a Move from square indices and an optional promotion.
func NewMove(from, to int, promo byte) Move {
	if from < 0 || from > 63 || to < 0 || to > 63 {
		return 0
	}
	return Move(uint32(from) | uint32(to)<<toShift | uint32(promo)<<promoShift)
}

// MoveFromMv converts a parsed game move into the book encoding.
func MoveFromMv(mv pgn.Mv) Move {
	promo := PromoNone
	switch mv.Promo {
	case pgn.PromoQueen:
		promo = PromoQueen
	case pgn.PromoRook:
		promo = PromoRook
	case pgn.PromoBishop:
		promo = PromoBishop
	case pgn.PromoKnight:
		promo = PromoKnight
	}
	return NewMove(int(mv.From), int(mv.To), promo)
}

// From returns the source square index.
func (m Move) From() int { return int(m & fromMask) }

// To returns the destination square index.
func (m Move) To() int { return int(m&toMask) >> toShift }

// Promo returns the promotion piece, PromoNone if not a promotion.
func (m Move) Promo() byte { return byte((m & promoMask) >> promoShift) }

// UCI renders the move in coordinate notation, e.g. "e2e4" or "e7e8q".
func (m Move) UCI() string {
	from, to := m.From(), m.To()
	b := []byte{
		byte('a' + from%8), byte('1' + from/8),
		byte('a' + to%8), byte('1' + to/8),
	}
	switch m.Promo() {
	case PromoQueen:
		b = append(b, 'q')
	case PromoRook:
		b = append(b, 'r')
	case PromoBishop:
		b = append(b, 'b')
	case PromoKnight:
		b = append(b, 'n')
	}
	return string(b)
}

// ParseUCI parses coordinate notation into a Move.
func ParseUCI(uci string) (Move, error) {
	if len(uci) < 4 {
		return 0, fmt.Errorf("uci move too short: %q", uci)
	}
	fromFile := int(uci[0] - 'a')
	fromRank := int(uci[1] - '1')
	toFile := int(uci[2] - 'a')
	toRank := int(uci[3] - '1')
	if fromFile < 0 || fromFile > 7 || fromRank < 0 || fromRank > 7 ||
		toFile < 0 || toFile > 7 || toRank < 0 || toRank > 7 {
		return 0, fmt.Errorf("invalid square in uci move %q", uci)
	}
	promo := PromoNone
	if len(uci) >= 5 {
		switch uci[4] {
		case 'q', 'Q':
			promo = PromoQueen
		case 'r', 'R':
			promo = PromoRook
		case 'b', 'B':
			promo = PromoBishop
		case 'n', 'N':
			promo = PromoKnight
		default:
			return 0, fmt.Errorf("invalid promotion piece in %q", uci)
		}
	}
	return NewMove(fromRank*8+fromFile, toRank*8+toFile, promo), nil
}
