package model

import (
	"fmt"
	"strconv"
	"strings"
)

const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w - - 0 1"

// ParseFEN sets up a position from Forsyth-Edwards notation. Castling
// rights are accepted and ignored. The halfmove clock is not tracked.
func ParseFEN(fen string) (*Position, error) {
	fields := strings.Fields(fen)
	if len(fields) < 2 {
		return nil, fmt.Errorf("%w: need at least placement and side, got %q", ErrInvalidFEN, fen)
	}

	p := &Position{startFullmove: 1}
	ranks := strings.Split(fields[0], "/")
	if len(ranks) != 8 {
		return nil, fmt.Errorf("%w: expected 8 ranks, got %d", ErrInvalidFEN, len(ranks))
	}
	kings := map[Color]int{}
	for row, rank := range ranks {
		col := 0
		for i := 0; i < len(rank); i++ {
			c := rank[i]
			if c >= '1' && c <= '8' {
				col += int(c - '0')
				continue
			}
			piece, ok := pieceFromFEN(c)
			if !ok {
				return nil, fmt.Errorf("%w: unknown piece %q", ErrInvalidFEN, c)
			}
			if col > 7 {
				return nil, fmt.Errorf("%w: rank %d overflows", ErrInvalidFEN, 8-row)
			}
			sq := Square{Row: row, Col: col}
			p.set(sq, piece)
			if piece.Type == King {
				kings[piece.Color]++
				p.setKing(piece.Color, sq)
			}
			col++
		}
		if col != 8 {
			return nil, fmt.Errorf("%w: rank %d has %d files", ErrInvalidFEN, 8-row, col)
		}
	}
	if kings[White] != 1 || kings[Black] != 1 {
		return nil, fmt.Errorf("%w: need exactly one king per side", ErrInvalidFEN)
	}

	switch fields[1] {
	case "w":
		p.toMove = White
	case "b":
		p.toMove = Black
	default:
		return nil, fmt.Errorf("%w: side to move %q", ErrInvalidFEN, fields[1])
	}
	p.startColor = p.toMove

	if len(fields) > 3 && fields[3] != "-" {
		ep, err := ParseSquare(fields[3])
		if err != nil {
			return nil, fmt.Errorf("%w: en passant %q", ErrInvalidFEN, fields[3])
		}
		if (p.toMove == White && ep.Row != 2) || (p.toMove == Black && ep.Row != 5) {
			return nil, fmt.Errorf("%w: en passant square %s on wrong rank", ErrInvalidFEN, ep.Name())
		}
		p.enPassant = &ep
	}
	if len(fields) > 5 {
		n, err := strconv.Atoi(fields[5])
		if err != nil || n < 1 {
			return nil, fmt.Errorf("%w: fullmove %q", ErrInvalidFEN, fields[5])
		}
		p.startFullmove = n
	}

	// the side that just moved cannot have left its king attacked
	p.switchTurn()
	illegal := p.IsInCheck()
	p.switchTurn()
	if illegal {
		return nil, fmt.Errorf("%w: side not to move is in check", ErrInvalidFEN)
	}
	return p, nil
}

// FEN renders the position. Castling is always "-" and the halfmove clock 0.
func (p *Position) FEN() string {
	var b strings.Builder
	for row := 0; row < 8; row++ {
		empty := 0
		for col := 0; col < 8; col++ {
			pc := p.board[row][col]
			if pc.IsEmpty() {
				empty++
				continue
			}
			if empty > 0 {
				b.WriteByte(byte('0' + empty))
				empty = 0
			}
			b.WriteByte(pc.fenLetter())
		}
		if empty > 0 {
			b.WriteByte(byte('0' + empty))
		}
		if row < 7 {
			b.WriteByte('/')
		}
	}

	side := "w"
	if p.toMove == Black {
		side = "b"
	}
	ep := "-"
	if p.enPassant != nil {
		ep = p.enPassant.Name()
	}
	return fmt.Sprintf("%s %s - %s 0 %d", b.String(), side, ep, p.fullmoveNumber())
}

func (p *Position) fullmoveNumber() int {
	plies := len(p.history)
	if p.startColor == Black {
		plies++
	}
	return p.startFullmove + plies/2
}
