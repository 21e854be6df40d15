package model

type Outcome string

const (
	OutcomeOngoing   Outcome = "ongoing"
	OutcomeCheck     Outcome = "check"
	OutcomeCheckmate Outcome = "checkmate"
	OutcomeStalemate Outcome = "stalemate"
)

// withMove applies m, runs fn and reverts m on every exit path, including
// a panic inside fn.
func (p *Position) withMove(m Move, fn func()) {
	p.apply(m, Queen)
	defer p.revert()
	fn()
}

// LegalMoves returns the pseudo-legal moves that do not leave the mover's
// king attacked and records the terminal status of the position.
func (p *Position) LegalMoves() []Move {
	moves := p.pseudoLegalMoves()
	for i := len(moves) - 1; i >= 0; i-- {
		exposed := false
		p.withMove(moves[i], func() {
			// apply handed the turn over; look at the mover's king again
			p.switchTurn()
			defer p.switchTurn()
			exposed = p.IsInCheck()
		})
		if exposed {
			moves = append(moves[:i], moves[i+1:]...)
		}
	}

	switch {
	case len(moves) > 0:
		p.status = StatusNone
	case p.IsInCheck():
		p.status = StatusCheckmate
	default:
		p.status = StatusStalemate
	}
	return moves
}

// IsInCheck reports whether the side to move's king is attacked right now.
func (p *Position) IsInCheck() bool {
	return p.isSquareAttacked(p.KingSquare(p.toMove))
}

// isSquareAttacked answers with the opponent's full pseudo-legal move set,
// so piece movement has a single definition.
func (p *Position) isSquareAttacked(sq Square) bool {
	p.switchTurn()
	opponentMoves := p.pseudoLegalMoves()
	p.switchTurn()
	for _, m := range opponentMoves {
		if m.To == sq {
			return true
		}
	}
	return false
}

// Outcome classifies the position after the last LegalMoves call.
func (p *Position) Outcome() Outcome {
	switch p.status {
	case StatusCheckmate:
		return OutcomeCheckmate
	case StatusStalemate:
		return OutcomeStalemate
	}
	if p.IsInCheck() {
		return OutcomeCheck
	}
	return OutcomeOngoing
}
