package model

import "fmt"

type TerminalStatus string

const (
	StatusNone      TerminalStatus = ""
	StatusCheckmate TerminalStatus = "checkmate"
	StatusStalemate TerminalStatus = "stalemate"
)

// logEntry pairs an applied move with the en-passant target that was in
// effect before it, so undo restores the exact prior target.
type logEntry struct {
	move          Move
	prevEnPassant *Square
}

// Position is the canonical mutable game state. It is not safe for
// concurrent use; the legality filter mutates it in place while it runs.
type Position struct {
	board     [8][8]Piece
	toMove    Color
	whiteKing Square
	blackKing Square
	enPassant *Square
	status    TerminalStatus
	history   []logEntry

	// fullmove number and side to move the position was set up with
	startFullmove int
	startColor    Color
}

var backRank = [8]PieceType{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

// NewPosition returns the standard starting array with white to move.
func NewPosition() *Position {
	p := &Position{toMove: White, startFullmove: 1, startColor: White}
	for col := 0; col < 8; col++ {
		p.board[0][col] = Piece{Type: backRank[col], Color: Black}
		p.board[1][col] = Piece{Type: Pawn, Color: Black}
		p.board[6][col] = Piece{Type: Pawn, Color: White}
		p.board[7][col] = Piece{Type: backRank[col], Color: White}
	}
	p.blackKing = Square{Row: 0, Col: 4}
	p.whiteKing = Square{Row: 7, Col: 4}
	return p
}

func (p *Position) at(sq Square) Piece {
	return p.board[sq.Row][sq.Col]
}

func (p *Position) set(sq Square, pc Piece) {
	p.board[sq.Row][sq.Col] = pc
}

// PieceAt returns the content of sq.
func (p *Position) PieceAt(sq Square) (Piece, error) {
	if !sq.Valid() {
		return Piece{}, fmt.Errorf("piece at (%d,%d): %w", sq.Row, sq.Col, ErrOutOfBounds)
	}
	return p.at(sq), nil
}

func (p *Position) SideToMove() Color {
	return p.toMove
}

func (p *Position) KingSquare(c Color) Square {
	if c == White {
		return p.whiteKing
	}
	return p.blackKing
}

func (p *Position) EnPassantTarget() (Square, bool) {
	if p.enPassant == nil {
		return Square{}, false
	}
	return *p.enPassant, true
}

// Status is the terminal status computed by the last LegalMoves call.
func (p *Position) Status() TerminalStatus {
	return p.status
}

// History returns a copy of the applied moves, oldest first.
func (p *Position) History() []Move {
	moves := make([]Move, len(p.history))
	for i, e := range p.history {
		moves[i] = e.move
	}
	return moves
}

func (p *Position) LastMove() (Move, bool) {
	if len(p.history) == 0 {
		return Move{}, false
	}
	return p.history[len(p.history)-1].move, true
}

// Board returns a copy of the grid, row 0 first.
func (p *Position) Board() [8][8]Piece {
	return p.board
}

func (p *Position) setKing(c Color, sq Square) {
	if c == White {
		p.whiteKing = sq
	} else {
		p.blackKing = sq
	}
}

func (p *Position) switchTurn() {
	p.toMove = p.toMove.Opponent()
}

// enPassantVictim is the square of the pawn removed by an en-passant
// capture: destination file, origin rank.
func enPassantVictim(m Move) Square {
	return Square{Row: m.From.Row, Col: m.To.Col}
}

// apply performs m without validation. promo is only read for promotions.
func (p *Position) apply(m Move, promo PieceType) {
	if m.Kind == MovePromotion {
		m.Promotion = promo
	}
	p.history = append(p.history, logEntry{move: m, prevEnPassant: p.enPassant})

	p.set(m.From, Piece{})
	placed := m.Piece
	if m.Kind == MovePromotion {
		placed = Piece{Type: promo, Color: m.Piece.Color}
	}
	p.set(m.To, placed)
	if m.Kind == MoveEnPassant {
		p.set(enPassantVictim(m), Piece{})
	}
	if m.Piece.Type == King {
		p.setKing(m.Piece.Color, m.To)
	}

	if m.Kind == MoveDoublePawnPush {
		mid := Square{Row: (m.From.Row + m.To.Row) / 2, Col: m.From.Col}
		p.enPassant = &mid
	} else {
		p.enPassant = nil
	}
	p.switchTurn()
}

// revert undoes the last applied move. It is a no-op on an empty log.
func (p *Position) revert() {
	if len(p.history) == 0 {
		return
	}
	last := p.history[len(p.history)-1]
	p.history = p.history[:len(p.history)-1]
	m := last.move

	p.set(m.From, m.Piece)
	if m.Kind == MoveEnPassant {
		p.set(m.To, Piece{})
		p.set(enPassantVictim(m), m.Captured)
	} else {
		p.set(m.To, m.Captured)
	}
	if m.Piece.Type == King {
		p.setKing(m.Piece.Color, m.From)
	}
	p.enPassant = last.prevEnPassant
	p.switchTurn()
}
