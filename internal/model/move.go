package model

import "fmt"

type MoveKind string

const (
	MoveNormal         MoveKind = "normal"
	MoveDoublePawnPush MoveKind = "doublePawnPush"
	MoveEnPassant      MoveKind = "enPassant"
	MovePromotion      MoveKind = "promotion"
)

// Move is a single ply. Generated moves carry no promotion target; the
// target is filled in when a promotion is applied and recorded in the log.
type Move struct {
	From      Square    `json:"from"`
	To        Square    `json:"to"`
	Piece     Piece     `json:"piece"`
	Captured  Piece     `json:"captured"`
	Kind      MoveKind  `json:"kind"`
	Promotion PieceType `json:"promotion,omitempty"`
}

// Equal compares move identity: squares, kind and promotion target.
func (m Move) Equal(o Move) bool {
	return m.From == o.From && m.To == o.To && m.Kind == o.Kind && m.Promotion == o.Promotion
}

func (m Move) IsCapture() bool {
	return !m.Captured.IsEmpty()
}

// UCI renders the move in long algebraic form, e.g. "e2e4" or "a7a8q".
func (m Move) UCI() string {
	s := m.From.Name() + m.To.Name()
	if m.Kind == MovePromotion && m.Promotion != "" {
		s += string(Piece{Type: m.Promotion, Color: Black}.fenLetter())
	}
	return s
}

func (m Move) String() string {
	return fmt.Sprintf("%s %s-%s", m.Piece.Type, m.From.Name(), m.To.Name())
}

// MoveRequest is a resolved move coming from a client: origin and
// destination square names plus the promotion choice when one is needed.
type MoveRequest struct {
	From      string    `json:"from"`
	To        string    `json:"to"`
	Promotion PieceType `json:"promotion,omitempty"`
}

type SimpleMove struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type Ply struct {
	Move     Move   `json:"move"`
	Notation string `json:"notation"`
	UCI      string `json:"uci"`
}
