package main

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/benbeisheim/chessrules-backend/internal/model"
	"github.com/benbeisheim/chessrules-backend/internal/ws"
)

func TestCommand(t *testing.T) {
	cases := []struct {
		line    string
		typ     ws.MessageType
		promo   model.PieceType
		wantErr bool
	}{
		{line: "e2e4", typ: ws.MessageTypeMove},
		{line: "a7a8n", typ: ws.MessageTypeMove, promo: model.Knight},
		{line: "UNDO", typ: ws.MessageTypeUndo},
		{line: "resign", typ: ws.MessageTypeResign},
		{line: "", wantErr: true},
		{line: "e2", wantErr: true},
		{line: "a7a8k", wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.line, func(t *testing.T) {
			msg, err := command(tc.line)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("command: %v", err)
			}
			if msg.Type != tc.typ {
				t.Fatalf("type = %s, want %s", msg.Type, tc.typ)
			}
			if tc.typ == ws.MessageTypeMove {
				var req model.MoveRequest
				if err := json.Unmarshal(msg.Payload, &req); err != nil {
					t.Fatalf("decode: %v", err)
				}
				if req.From != tc.line[:2] || req.To != tc.line[2:4] || req.Promotion != tc.promo {
					t.Fatalf("unexpected request %+v", req)
				}
			}
		})
	}
}

func TestRender(t *testing.T) {
	g := model.NewGame("g", time.Minute)
	g.AddPlayer("a")
	g.AddPlayer("b")
	if _, err := g.MakeMove("a", model.MoveRequest{From: "e2", To: "e4"}); err != nil {
		t.Fatalf("MakeMove: %v", err)
	}
	out := render(g.State())
	for _, want := range []string{"8  r n b q k b n r", "4  . . . . P . . .", "last: e4", "black to move"} {
		if !strings.Contains(out, want) {
			t.Fatalf("render missing %q:\n%s", want, out)
		}
	}
}

func TestErrorText(t *testing.T) {
	if got := errorText(json.RawMessage(`{"error":"not your turn"}`)); got != "not your turn" {
		t.Fatalf("errorText = %q", got)
	}
	if got := errorText(json.RawMessage(`"raw"`)); got != `"raw"` {
		t.Fatalf("errorText fallback = %q", got)
	}
}
