package model

import (
	"errors"
	"testing"
)

func TestStartFENMatchesNewPosition(t *testing.T) {
	p := mustFEN(t, StartFEN)
	if p.Board() != NewPosition().Board() {
		t.Fatalf("StartFEN board differs from NewPosition")
	}
	if got := NewPosition().FEN(); got != StartFEN {
		t.Fatalf("FEN() = %q, want %q", got, StartFEN)
	}
}

func TestFENTracksMoves(t *testing.T) {
	p := NewPosition()
	play(t, p, "e2e4")
	want := "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b - e3 0 1"
	if got := p.FEN(); got != want {
		t.Fatalf("after e4: %q, want %q", got, want)
	}
	play(t, p, "c7c5", "g1f3")
	want = "rnbqkbnr/pp1ppppp/8/2p5/4P3/5N2/PPPP1PPP/RNBQKB1R b - - 0 2"
	if got := p.FEN(); got != want {
		t.Fatalf("after Nf3: %q, want %q", got, want)
	}
}

func TestParseFENRoundTrip(t *testing.T) {
	fens := []string{
		"4k3/3p4/8/4P3/8/8/8/4K3 b - - 0 1",
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w - - 0 1",
		"rnbqkbnr/ppp1p1pp/8/3pPp2/8/8/PPPP1PPP/RNBQKBNR w - f6 0 3",
	}
	for _, fen := range fens {
		if got := mustFEN(t, fen).FEN(); got != fen {
			t.Fatalf("round trip: got %q, want %q", got, fen)
		}
	}
}

func TestParseFENIgnoresCastlingRights(t *testing.T) {
	p := mustFEN(t, "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")
	for _, m := range p.LegalMoves() {
		if m.Piece.Type == King && (m.To.Col-m.From.Col == 2 || m.From.Col-m.To.Col == 2) {
			t.Fatalf("castling move generated: %s", m)
		}
	}
}

func TestParseFENRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		fen  string
	}{
		{name: "empty", fen: ""},
		{name: "seven ranks", fen: "8/8/8/8/8/8/8 w - - 0 1"},
		{name: "short rank", fen: "4k3/8/8/8/8/8/8/4K2 w - - 0 1"},
		{name: "unknown piece", fen: "4k3/8/8/8/8/8/8/4KX2 w - - 0 1"},
		{name: "missing black king", fen: "8/8/8/8/8/8/8/4K3 w - - 0 1"},
		{name: "two white kings", fen: "4k3/8/8/8/8/8/8/3KK3 w - - 0 1"},
		{name: "bad side", fen: "4k3/8/8/8/8/8/8/4K3 x - - 0 1"},
		{name: "en passant wrong rank", fen: "4k3/8/8/8/8/8/8/4K3 w - e3 0 1"},
		{name: "opponent in check", fen: "4k3/8/8/8/8/8/8/4R1K1 w - - 0 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseFEN(tt.fen); !errors.Is(err, ErrInvalidFEN) {
				t.Fatalf("expected ErrInvalidFEN, got %v", err)
			}
		})
	}
}
