package model

import (
	"fmt"
	"strings"
)

// Notation renders m in short algebraic style: no letter for pawns, the
// origin file before a pawn capture, "x" on captures. There is no check
// suffix and no disambiguation.
func Notation(m Move) string {
	prefix := m.Piece.Type.getPieceNotation()
	pawnFile := ""
	capture := ""
	if m.IsCapture() {
		capture = "x"
		if m.Piece.Type == Pawn {
			pawnFile = m.From.fileName()
		}
	}
	suffix := ""
	if m.Kind == MovePromotion && m.Promotion != "" {
		suffix = "=" + m.Promotion.getPieceNotation()
	}
	return fmt.Sprintf("%s%s%s%s%s", prefix, pawnFile, capture, m.To.Name(), suffix)
}

// ParseUCI splits a long algebraic move such as "e7e8q" into its squares
// and promotion piece.
func ParseUCI(s string) (from, to Square, promo PieceType, err error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) != 4 && len(s) != 5 {
		return Square{}, Square{}, "", fmt.Errorf("uci %q: %w", s, ErrInvalidMove)
	}
	if from, err = ParseSquare(s[0:2]); err != nil {
		return Square{}, Square{}, "", err
	}
	if to, err = ParseSquare(s[2:4]); err != nil {
		return Square{}, Square{}, "", err
	}
	if len(s) == 5 {
		pc, ok := pieceFromFEN(s[4])
		if !ok || !pc.Type.IsPromotionChoice() {
			return Square{}, Square{}, "", fmt.Errorf("uci %q: %w", s, ErrMissingPromotionChoice)
		}
		promo = pc.Type
	}
	return from, to, promo, nil
}

// ApplyUCI plays a move given in long algebraic form.
func (p *Position) ApplyUCI(s string) (Move, error) {
	from, to, promo, err := ParseUCI(s)
	if err != nil {
		return Move{}, err
	}
	return p.ApplySquares(from, to, promo)
}
