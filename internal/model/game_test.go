package model

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/benbeisheim/chessrules-backend/internal/ws"
)

type recordingConn struct {
	mu       sync.Mutex
	messages []ws.Message
	fail     bool
}

func (c *recordingConn) WriteJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return errors.New("broken pipe")
	}
	c.messages = append(c.messages, v.(ws.Message))
	return nil
}

func (c *recordingConn) last(t *testing.T) GameState {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.messages) == 0 {
		t.Fatalf("no messages received")
	}
	var st GameState
	if err := json.Unmarshal(c.messages[len(c.messages)-1].Payload, &st); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	return st
}

func newSeatedGame(t *testing.T) *Game {
	t.Helper()
	g := NewGame("g1", 10*time.Minute)
	if c, err := g.AddPlayer("alice"); err != nil || c != White {
		t.Fatalf("AddPlayer(alice) = %s, %v", c, err)
	}
	if c, err := g.AddPlayer("bob"); err != nil || c != Black {
		t.Fatalf("AddPlayer(bob) = %s, %v", c, err)
	}
	return g
}

func TestGameSeatsAndTurns(t *testing.T) {
	g := newSeatedGame(t)
	if _, err := g.AddPlayer("carol"); !errors.Is(err, ErrGameFull) {
		t.Fatalf("expected ErrGameFull, got %v", err)
	}
	if _, err := g.MakeMove("bob", MoveRequest{From: "e7", To: "e5"}); !errors.Is(err, ErrNotYourTurn) {
		t.Fatalf("expected ErrNotYourTurn, got %v", err)
	}
	if _, err := g.MakeMove("carol", MoveRequest{From: "e2", To: "e4"}); !errors.Is(err, ErrNotInGame) {
		t.Fatalf("expected ErrNotInGame, got %v", err)
	}
	m, err := g.MakeMove("alice", MoveRequest{From: "e2", To: "e4"})
	if err != nil {
		t.Fatalf("MakeMove: %v", err)
	}
	if m.Kind != MoveDoublePawnPush {
		t.Fatalf("expected double push, got %q", m.Kind)
	}
	st := g.State()
	if st.ToMove != Black || len(st.MoveHistory) != 1 || st.MoveHistory[0].Notation != "e4" {
		t.Fatalf("unexpected state: toMove=%s history=%+v", st.ToMove, st.MoveHistory)
	}
	if st.EnPassantTarget == nil || *st.EnPassantTarget != "e3" {
		t.Fatalf("expected en passant target e3, got %v", st.EnPassantTarget)
	}
	if len(st.LegalMoves) != 20 {
		t.Fatalf("expected 20 replies for black, got %d", len(st.LegalMoves))
	}
}

func TestGameRejectsIllegalMove(t *testing.T) {
	g := newSeatedGame(t)
	if _, err := g.MakeMove("alice", MoveRequest{From: "e2", To: "e5"}); !errors.Is(err, ErrInvalidMove) {
		t.Fatalf("expected ErrInvalidMove, got %v", err)
	}
	if _, err := g.MakeMove("alice", MoveRequest{From: "z9", To: "e5"}); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("expected ErrOutOfBounds, got %v", err)
	}
	if len(g.State().MoveHistory) != 0 {
		t.Fatalf("history should be empty")
	}
}

func TestGameCheckmateResolves(t *testing.T) {
	g := newSeatedGame(t)
	conn := &recordingConn{}
	if err := g.RegisterConnection("alice", conn); err != nil {
		t.Fatalf("RegisterConnection: %v", err)
	}
	moves := []struct {
		player   string
		from, to string
	}{
		{"alice", "f2", "f3"}, {"bob", "e7", "e5"}, {"alice", "g2", "g4"}, {"bob", "d8", "h4"},
	}
	for _, mv := range moves {
		if _, err := g.MakeMove(mv.player, MoveRequest{From: mv.from, To: mv.to}); err != nil {
			t.Fatalf("%s %s%s: %v", mv.player, mv.from, mv.to, err)
		}
	}

	st := conn.last(t)
	if st.Resolve == nil || *st.Resolve != ResolveCheckmate {
		t.Fatalf("expected checkmate resolve, got %v", st.Resolve)
	}
	if st.Winner == nil || *st.Winner != Black {
		t.Fatalf("expected black to win, got %v", st.Winner)
	}
	if !st.IsCheck || st.Outcome != OutcomeCheckmate || len(st.LegalMoves) != 0 {
		t.Fatalf("unexpected final state: check=%v outcome=%s legal=%d", st.IsCheck, st.Outcome, len(st.LegalMoves))
	}
	if _, err := g.MakeMove("alice", MoveRequest{From: "e2", To: "e3"}); !errors.Is(err, ErrGameOver) {
		t.Fatalf("expected ErrGameOver, got %v", err)
	}

	undone, err := g.Undo("bob")
	if err != nil || !undone {
		t.Fatalf("Undo = %v, %v", undone, err)
	}
	st = g.State()
	if st.Resolve != nil || st.ToMove != Black {
		t.Fatalf("undo should reopen the game with black to move, got resolve=%v toMove=%s", st.Resolve, st.ToMove)
	}
}

func TestGameUndoOnFreshGame(t *testing.T) {
	g := newSeatedGame(t)
	undone, err := g.Undo("alice")
	if err != nil || undone {
		t.Fatalf("Undo on fresh game = %v, %v", undone, err)
	}
	if _, err := g.Undo("mallory"); !errors.Is(err, ErrNotInGame) {
		t.Fatalf("expected ErrNotInGame, got %v", err)
	}
}

func TestGameResign(t *testing.T) {
	g := newSeatedGame(t)
	if err := g.Resign("bob"); err != nil {
		t.Fatalf("Resign: %v", err)
	}
	st := g.State()
	if st.Resolve == nil || *st.Resolve != ResolveResignation || st.Winner == nil || *st.Winner != White {
		t.Fatalf("unexpected resign state %v %v", st.Resolve, st.Winner)
	}
	if err := g.Resign("alice"); !errors.Is(err, ErrGameOver) {
		t.Fatalf("expected ErrGameOver, got %v", err)
	}
	if _, err := g.Undo("alice"); !errors.Is(err, ErrGameOver) {
		t.Fatalf("resignation should be final, got %v", err)
	}
}

func TestHotSeatPlayerMovesBothSides(t *testing.T) {
	g := NewGame("hot", time.Minute)
	g.AddPlayer("solo")
	g.AddPlayer("solo")
	for _, mv := range []MoveRequest{{From: "e2", To: "e4"}, {From: "e7", To: "e5"}} {
		if _, err := g.MakeMove("solo", mv); err != nil {
			t.Fatalf("MakeMove(%+v): %v", mv, err)
		}
	}
}

func TestGameTimeout(t *testing.T) {
	g := newSeatedGame(t)
	watcher := &recordingConn{}
	if err := g.RegisterConnection("alice", watcher); err != nil {
		t.Fatalf("RegisterConnection: %v", err)
	}
	if _, err := g.MakeMove("alice", MoveRequest{From: "e2", To: "e4"}); err != nil {
		t.Fatalf("MakeMove: %v", err)
	}
	base := time.Now()
	g.blackClock.now = func() time.Time { return base.Add(11 * time.Minute) }

	if _, err := g.MakeMove("bob", MoveRequest{From: "e7", To: "e5"}); !errors.Is(err, ErrGameOver) {
		t.Fatalf("expected ErrGameOver on flag fall, got %v", err)
	}
	st := g.State()
	if st.Resolve == nil || *st.Resolve != ResolveTimeout || st.Winner == nil || *st.Winner != White {
		t.Fatalf("expected white to win on time, got %v %v", st.Resolve, st.Winner)
	}

	seen := watcher.last(t)
	if seen.Resolve == nil || *seen.Resolve != ResolveTimeout || seen.Winner == nil || *seen.Winner != White {
		t.Fatalf("flag fall not broadcast, last state resolve=%v winner=%v", seen.Resolve, seen.Winner)
	}
	if len(seen.LegalMoves) != 0 {
		t.Fatalf("decided game should offer no moves, got %d", len(seen.LegalMoves))
	}

	watcher.mu.Lock()
	sent := len(watcher.messages)
	watcher.mu.Unlock()
	if _, err := g.MakeMove("bob", MoveRequest{From: "e7", To: "e5"}); !errors.Is(err, ErrGameOver) {
		t.Fatalf("expected ErrGameOver, got %v", err)
	}
	watcher.mu.Lock()
	defer watcher.mu.Unlock()
	if len(watcher.messages) != sent {
		t.Fatalf("rejected move on a finished game should not broadcast")
	}
}

func TestSnapshotRestore(t *testing.T) {
	g := newSeatedGame(t)
	for _, mv := range []MoveRequest{{From: "e2", To: "e4"}, {From: "d7", To: "d5"}, {From: "e4", To: "d5"}} {
		player := "alice"
		if g.State().ToMove == Black {
			player = "bob"
		}
		if _, err := g.MakeMove(player, mv); err != nil {
			t.Fatalf("MakeMove(%+v): %v", mv, err)
		}
	}
	snap := g.Snapshot()
	if len(snap.Moves) != 3 || snap.Moves[2] != "e4d5" {
		t.Fatalf("unexpected snapshot moves %v", snap.Moves)
	}

	restored, err := RestoreGame(snap, time.Minute)
	if err != nil {
		t.Fatalf("RestoreGame: %v", err)
	}
	if restored.State().FEN != g.State().FEN {
		t.Fatalf("restored FEN %q, want %q", restored.State().FEN, g.State().FEN)
	}
	if !restored.IsPlayerInGame("bob") {
		t.Fatalf("seats not restored")
	}

	snap.Moves = append(snap.Moves, "a1a8")
	if _, err := RestoreGame(snap, time.Minute); !errors.Is(err, ErrInvalidMove) {
		t.Fatalf("expected replay failure, got %v", err)
	}
}

func TestBroadcastDropsBrokenConnections(t *testing.T) {
	g := newSeatedGame(t)
	good, bad := &recordingConn{}, &recordingConn{}
	if err := g.RegisterConnection("alice", good); err != nil {
		t.Fatalf("register alice: %v", err)
	}
	if err := g.RegisterConnection("bob", bad); err != nil {
		t.Fatalf("register bob: %v", err)
	}
	if err := g.RegisterConnection("alice", &recordingConn{}); !errors.Is(err, ErrDuplicateConnection) {
		t.Fatalf("expected ErrDuplicateConnection, got %v", err)
	}
	if err := g.RegisterConnection("eve", &recordingConn{}); !errors.Is(err, ErrNotInGame) {
		t.Fatalf("expected ErrNotInGame for outsider, got %v", err)
	}

	bad.fail = true
	if _, err := g.MakeMove("alice", MoveRequest{From: "g1", To: "f3"}); err != nil {
		t.Fatalf("MakeMove: %v", err)
	}
	if g.ConnectionCount() != 1 {
		t.Fatalf("expected broken connection dropped, have %d", g.ConnectionCount())
	}
	if st := good.last(t); st.LastMove == nil || st.LastMove.To != "f3" {
		t.Fatalf("expected last move to f3, got %+v", st.LastMove)
	}
}
