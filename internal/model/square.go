package model

import "fmt"

// Square is a board coordinate. Row 0 is rank 8, column 0 is file a.
type Square struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (s Square) Valid() bool {
	return s.Row >= 0 && s.Row < 8 && s.Col >= 0 && s.Col < 8
}

func (s Square) offset(dRow, dCol int) Square {
	return Square{Row: s.Row + dRow, Col: s.Col + dCol}
}

// Name returns the algebraic name of the square, e.g. "e2" for row 6, column 4.
func (s Square) Name() string {
	return fmt.Sprintf("%c%d", s.Col+'a', 8-s.Row)
}

func (s Square) fileName() string {
	return fmt.Sprintf("%c", s.Col+'a')
}

func (s Square) String() string {
	return s.Name()
}

// SquareName validates the coordinate before naming it.
func SquareName(row, col int) (string, error) {
	sq := Square{Row: row, Col: col}
	if !sq.Valid() {
		return "", fmt.Errorf("square (%d,%d): %w", row, col, ErrOutOfBounds)
	}
	return sq.Name(), nil
}

// ParseSquare parses an algebraic square name such as "e4".
func ParseSquare(name string) (Square, error) {
	if len(name) != 2 {
		return Square{}, fmt.Errorf("square %q: %w", name, ErrOutOfBounds)
	}
	file, rank := name[0], name[1]
	if file >= 'A' && file <= 'H' {
		file += 'a' - 'A'
	}
	sq := Square{Row: 8 - int(rank-'0'), Col: int(file) - 'a'}
	if file < 'a' || file > 'h' || rank < '1' || rank > '8' || !sq.Valid() {
		return Square{}, fmt.Errorf("square %q: %w", name, ErrOutOfBounds)
	}
	return sq, nil
}
