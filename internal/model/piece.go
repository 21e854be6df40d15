package model

type Color string

const (
	White Color = "white"
	Black Color = "black"
)

// Opponent returns the other side.
func (c Color) Opponent() Color {
	if c == White {
		return Black
	}
	return White
}

type PieceType string

const (
	King   PieceType = "king"
	Queen  PieceType = "queen"
	Rook   PieceType = "rook"
	Bishop PieceType = "bishop"
	Knight PieceType = "knight"
	Pawn   PieceType = "pawn"
)

func (p PieceType) getPieceNotation() string {
	switch p {
	case King:
		return "K"
	case Queen:
		return "Q"
	case Rook:
		return "R"
	case Bishop:
		return "B"
	case Knight:
		return "N"
	case Pawn:
		return ""
	}
	return ""
}

// IsPromotionChoice reports whether a pawn may promote to p.
func (p PieceType) IsPromotionChoice() bool {
	switch p {
	case Queen, Rook, Bishop, Knight:
		return true
	}
	return false
}

// Piece is the content of a square. The zero value is an empty square.
type Piece struct {
	Type  PieceType `json:"type"`
	Color Color     `json:"color"`
}

func (p Piece) IsEmpty() bool {
	return p.Type == ""
}

// fenLetter is upper case for white and lower case for black.
func (p Piece) fenLetter() byte {
	var b byte
	switch p.Type {
	case King:
		b = 'k'
	case Queen:
		b = 'q'
	case Rook:
		b = 'r'
	case Bishop:
		b = 'b'
	case Knight:
		b = 'n'
	case Pawn:
		b = 'p'
	default:
		return 0
	}
	if p.Color == White {
		b -= 'a' - 'A'
	}
	return b
}

func pieceFromFEN(b byte) (Piece, bool) {
	color := Black
	if b >= 'A' && b <= 'Z' {
		color = White
		b += 'a' - 'A'
	}
	var t PieceType
	switch b {
	case 'k':
		t = King
	case 'q':
		t = Queen
	case 'r':
		t = Rook
	case 'b':
		t = Bishop
	case 'n':
		t = Knight
	case 'p':
		t = Pawn
	default:
		return Piece{}, false
	}
	return Piece{Type: t, Color: color}, true
}
