package model

import "fmt"

// Apply validates m against the current legal moves and plays it. promo is
// required for promotion moves and ignored otherwise. On error the
// position is unchanged.
func (p *Position) Apply(m Move, promo PieceType) error {
	if !m.From.Valid() || !m.To.Valid() {
		return fmt.Errorf("apply %s-%s: %w", m.From, m.To, ErrOutOfBounds)
	}
	legal, ok := p.findLegal(m.From, m.To)
	if !ok || legal.Kind != m.Kind {
		return fmt.Errorf("apply %s%s: %w", m.From.Name(), m.To.Name(), ErrInvalidMove)
	}
	if legal.Kind == MovePromotion && !promo.IsPromotionChoice() {
		return fmt.Errorf("apply %s%s promotion %q: %w", m.From.Name(), m.To.Name(), promo, ErrMissingPromotionChoice)
	}
	p.apply(legal, promo)
	return nil
}

// ApplySquares plays the legal move between two squares.
func (p *Position) ApplySquares(from, to Square, promo PieceType) (Move, error) {
	if !from.Valid() || !to.Valid() {
		return Move{}, fmt.Errorf("apply (%d,%d)-(%d,%d): %w", from.Row, from.Col, to.Row, to.Col, ErrOutOfBounds)
	}
	legal, ok := p.findLegal(from, to)
	if !ok {
		return Move{}, fmt.Errorf("apply %s%s: %w", from.Name(), to.Name(), ErrInvalidMove)
	}
	if err := p.Apply(legal, promo); err != nil {
		return Move{}, err
	}
	applied, _ := p.LastMove()
	return applied, nil
}

// Undo reverts the last applied move. It is a no-op when nothing has been
// played.
func (p *Position) Undo() {
	p.revert()
}

func (p *Position) findLegal(from, to Square) (Move, bool) {
	for _, m := range p.LegalMoves() {
		if m.From == from && m.To == to {
			return m, true
		}
	}
	return Move{}, false
}
