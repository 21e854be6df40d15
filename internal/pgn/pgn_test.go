package pgn

import (
	"strings"
	"testing"
	"time"

	"github.com/benbeisheim/chessrules-backend/internal/store"
)

func TestSAN(t *testing.T) {
	got, err := SAN([]string{"e2e4", "d7d5", "e4d5", "d8d5", "b1c3"})
	if err != nil {
		t.Fatalf("SAN: %v", err)
	}
	want := []string{"e4", "d5", "exd5", "Qxd5", "Nc3"}
	if strings.Join(got, " ") != strings.Join(want, " ") {
		t.Fatalf("SAN = %v, want %v", got, want)
	}
}

func TestSANRejectsIllegalMove(t *testing.T) {
	if _, err := SAN([]string{"e2e4", "e2e4"}); err == nil {
		t.Fatalf("expected error for replaying a vacated square")
	}
}

func TestExportFoolsMate(t *testing.T) {
	rec := &store.GameRecord{
		ID:        "g-1",
		WhiteID:   "alice",
		BlackID:   "bob",
		Moves:     []string{"f2f3", "e7e5", "g2g4", "d8h4"},
		Resolve:   "checkmate",
		Winner:    "black",
		CreatedAt: time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC),
	}
	out, err := Export(rec)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	for _, want := range []string{
		`[Date "2026.05.04"]`,
		`[White "alice"]`,
		`[Black "bob"]`,
		`[Termination "checkmate"]`,
		`[Result "0-1"]`,
		"1. f3 e5 2. g4 Qh4",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("pgn missing %q:\n%s", want, out)
		}
	}
	if !strings.HasSuffix(out, " 0-1") {
		t.Fatalf("movetext should end with the result:\n%s", out)
	}
}

func TestExportOngoingGame(t *testing.T) {
	rec := &store.GameRecord{ID: "g-2", WhiteID: `we"ird`, Moves: []string{"e2e4"}}
	out, err := Export(rec)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if !strings.Contains(out, `[White "we'ird"]`) || !strings.Contains(out, `[Black "?"]`) {
		t.Fatalf("unexpected player headers:\n%s", out)
	}
	if !strings.HasSuffix(out, "1. e4 *") || strings.Contains(out, "Termination") {
		t.Fatalf("unexpected movetext:\n%s", out)
	}
}

func TestMapResultToPGN(t *testing.T) {
	cases := map[string]string{"white": "1-0", "black": "0-1", "draw": "1/2-1/2", "": "*"}
	for in, want := range cases {
		if got := mapResultToPGN(in); got != want {
			t.Fatalf("mapResultToPGN(%q) = %q, want %q", in, got, want)
		}
	}
}
