package model

type direction struct {
	dRow, dCol int
}

var (
	rookDirs   = []direction{{0, 1}, {0, -1}, {-1, 0}, {1, 0}}
	bishopDirs = []direction{{-1, 1}, {-1, -1}, {1, 1}, {1, -1}}
	knightDirs = []direction{{1, 2}, {1, -2}, {-1, 2}, {-1, -2}, {2, 1}, {2, -1}, {-2, 1}, {-2, -1}}
	kingDirs   = []direction{{-1, -1}, {-1, 0}, {-1, 1}, {0, -1}, {0, 1}, {1, -1}, {1, 0}, {1, 1}}
)

// pseudoLegalMoves enumerates every move the side to move can make by
// piece geometry alone, ignoring whether its own king is left attacked.
func (p *Position) pseudoLegalMoves() []Move {
	moves := make([]Move, 0, 64)
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			sq := Square{Row: row, Col: col}
			piece := p.at(sq)
			if piece.IsEmpty() || piece.Color != p.toMove {
				continue
			}
			switch piece.Type {
			case Pawn:
				moves = p.pawnMoves(sq, piece, moves)
			case Knight:
				moves = p.stepMoves(sq, piece, knightDirs, moves)
			case Bishop:
				moves = p.slidingMoves(sq, piece, bishopDirs, moves)
			case Rook:
				moves = p.slidingMoves(sq, piece, rookDirs, moves)
			case Queen:
				moves = p.slidingMoves(sq, piece, bishopDirs, moves)
				moves = p.slidingMoves(sq, piece, rookDirs, moves)
			case King:
				moves = p.stepMoves(sq, piece, kingDirs, moves)
			}
		}
	}
	return moves
}

func pawnGeometry(c Color) (forward, homeRow, lastRow int) {
	if c == White {
		return -1, 6, 0
	}
	return 1, 1, 7
}

func (p *Position) pawnMoves(from Square, piece Piece, moves []Move) []Move {
	forward, homeRow, lastRow := pawnGeometry(piece.Color)

	kindFor := func(to Square) MoveKind {
		if to.Row == lastRow {
			return MovePromotion
		}
		return MoveNormal
	}

	one := from.offset(forward, 0)
	if one.Valid() && p.at(one).IsEmpty() {
		moves = append(moves, Move{From: from, To: one, Piece: piece, Kind: kindFor(one)})
		two := from.offset(2*forward, 0)
		if from.Row == homeRow && p.at(two).IsEmpty() {
			moves = append(moves, Move{From: from, To: two, Piece: piece, Kind: MoveDoublePawnPush})
		}
	}

	for _, dCol := range []int{-1, 1} {
		to := from.offset(forward, dCol)
		if !to.Valid() {
			continue
		}
		target := p.at(to)
		if !target.IsEmpty() && target.Color != piece.Color {
			moves = append(moves, Move{From: from, To: to, Piece: piece, Captured: target, Kind: kindFor(to)})
			continue
		}
		if p.enPassant != nil && *p.enPassant == to && target.IsEmpty() {
			victim := Piece{Type: Pawn, Color: piece.Color.Opponent()}
			moves = append(moves, Move{From: from, To: to, Piece: piece, Captured: victim, Kind: MoveEnPassant})
		}
	}
	return moves
}

// stepMoves handles knights and kings: one hop per offset.
func (p *Position) stepMoves(from Square, piece Piece, dirs []direction, moves []Move) []Move {
	for _, d := range dirs {
		to := from.offset(d.dRow, d.dCol)
		if !to.Valid() {
			continue
		}
		target := p.at(to)
		if target.IsEmpty() || target.Color != piece.Color {
			moves = append(moves, Move{From: from, To: to, Piece: piece, Captured: target, Kind: MoveNormal})
		}
	}
	return moves
}

// slidingMoves casts rays until the edge, a friendly piece (excluded) or an
// enemy piece (included as a capture).
func (p *Position) slidingMoves(from Square, piece Piece, dirs []direction, moves []Move) []Move {
	for _, d := range dirs {
		to := from.offset(d.dRow, d.dCol)
		for to.Valid() {
			target := p.at(to)
			if target.IsEmpty() {
				moves = append(moves, Move{From: from, To: to, Piece: piece, Kind: MoveNormal})
			} else {
				if target.Color != piece.Color {
					moves = append(moves, Move{From: from, To: to, Piece: piece, Captured: target, Kind: MoveNormal})
				}
				break
			}
			to = to.offset(d.dRow, d.dCol)
		}
	}
	return moves
}
