package model

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/benbeisheim/chessrules-backend/internal/ws"
)

const (
	ResolveCheckmate   = "checkmate"
	ResolveStalemate   = "stalemate"
	ResolveResignation = "resignation"
	ResolveTimeout     = "timeout"
)

var ErrDuplicateConnection = errors.New("connection already exists")

// Conn is the write side of a client connection.
type Conn interface {
	WriteJSON(v interface{}) error
}

// The connections for a specific game
type GameConnections struct {
	connections map[string]Conn // playerID -> connection
	mu          sync.RWMutex
}

func NewGameConnections() *GameConnections {
	return &GameConnections{
		connections: make(map[string]Conn),
	}
}

// Game is one live game: the position plus seats, clocks and observers.
// The position is only touched with mu held.
type Game struct {
	ID          string
	mu          sync.Mutex
	position    *Position
	players     Players
	whiteClock  *Clock
	blackClock  *Clock
	connections *GameConnections
	sound       string
	resolve     string
	winner      Color
	createdAt   time.Time
	updatedAt   time.Time
}

type GameState struct {
	ID              string       `json:"id"`
	Sound           string       `json:"sound"`
	Board           [][]*Piece   `json:"board"`
	ToMove          Color        `json:"toMove"`
	MoveHistory     []Ply        `json:"moveHistory"`
	IsCheck         bool         `json:"isCheck"`
	Outcome         Outcome      `json:"outcome"`
	LegalMoves      []SimpleMove `json:"legalMoves"`
	EnPassantTarget *string      `json:"enPassantTarget"`
	Resolve         *string      `json:"resolve"`
	Winner          *Color       `json:"winner"`
	Players         Players      `json:"players"`
	LastMove        *SimpleMove  `json:"lastMove"`
	FEN             string       `json:"fen"`
}

// GameSnapshot is the persisted form of a game: seats, moves and result.
type GameSnapshot struct {
	ID        string
	WhiteID   string
	BlackID   string
	Moves     []string
	Resolve   string
	Winner    Color
	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewGame(id string, clock time.Duration) *Game {
	now := time.Now()
	return &Game{
		ID:          id,
		position:    NewPosition(),
		players:     Players{White: ClientPlayer{Color: White}, Black: ClientPlayer{Color: Black}},
		whiteClock:  NewClock(clock),
		blackClock:  NewClock(clock),
		connections: NewGameConnections(),
		createdAt:   now,
		updatedAt:   now,
	}
}

// RestoreGame rebuilds a game from its snapshot by replaying the moves.
func RestoreGame(snap GameSnapshot, clock time.Duration) (*Game, error) {
	g := NewGame(snap.ID, clock)
	g.players.White.ID = snap.WhiteID
	g.players.Black.ID = snap.BlackID
	for i, uci := range snap.Moves {
		if _, err := g.position.ApplyUCI(uci); err != nil {
			return nil, fmt.Errorf("replay move %d (%s): %w", i+1, uci, err)
		}
	}
	g.position.LegalMoves()
	g.resolve = snap.Resolve
	g.winner = snap.Winner
	if !snap.CreatedAt.IsZero() {
		g.createdAt = snap.CreatedAt
	}
	if !snap.UpdatedAt.IsZero() {
		g.updatedAt = snap.UpdatedAt
	}
	return g, nil
}

// AddPlayer seats playerID in the first free seat. The same player may take
// both seats for a hot-seat game.
func (g *Game) AddPlayer(playerID string) (Color, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.players.White.ID == "" {
		g.players.White.ID = playerID
		return White, nil
	}
	if g.players.Black.ID == "" {
		g.players.Black.ID = playerID
		return Black, nil
	}
	return "", ErrGameFull
}

func (g *Game) IsPlayerInGame(playerID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.isPlayerInGame(playerID)
}

func (g *Game) isPlayerInGame(playerID string) bool {
	return playerID != "" && (g.players.White.ID == playerID || g.players.Black.ID == playerID)
}

func (g *Game) seatOpen() bool {
	return g.players.White.ID == "" || g.players.Black.ID == ""
}

func (g *Game) playsColor(playerID string, c Color) bool {
	if c == White {
		return g.players.White.ID == playerID
	}
	return g.players.Black.ID == playerID
}

func (g *Game) clockFor(c Color) *Clock {
	if c == White {
		return g.whiteClock
	}
	return g.blackClock
}

func (g *Game) IsOver() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.resolve != ""
}

// MakeMove plays a client move for playerID and broadcasts the new state.
// A flag fall discovered here is broadcast too, and reported as ErrGameOver.
func (g *Game) MakeMove(playerID string, req MoveRequest) (Move, error) {
	move, state, err := g.makeMove(playerID, req)
	if state != nil {
		g.broadcast(*state)
	}
	if err != nil {
		return Move{}, err
	}
	return move, nil
}

func (g *Game) makeMove(playerID string, req MoveRequest) (Move, *GameState, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.resolve != "" {
		return Move{}, nil, ErrGameOver
	}
	if !g.isPlayerInGame(playerID) {
		return Move{}, nil, ErrNotInGame
	}
	mover := g.position.SideToMove()
	if !g.playsColor(playerID, mover) {
		return Move{}, nil, ErrNotYourTurn
	}
	if g.clockFor(mover).Expired() {
		g.clockFor(mover).Stop()
		g.resolveGame(ResolveTimeout, mover.Opponent())
		g.updatedAt = time.Now()
		state := g.state()
		return Move{}, &state, fmt.Errorf("%s flagged: %w", mover, ErrGameOver)
	}

	from, err := ParseSquare(req.From)
	if err != nil {
		return Move{}, nil, err
	}
	to, err := ParseSquare(req.To)
	if err != nil {
		return Move{}, nil, err
	}
	move, err := g.position.ApplySquares(from, to, req.Promotion)
	if err != nil {
		return Move{}, nil, err
	}

	g.clockFor(mover).Stop()
	g.clockFor(mover.Opponent()).Start()

	g.sound = "move"
	if move.IsCapture() {
		g.sound = "capture"
	}
	g.afterPositionChange()
	if g.position.IsInCheck() && g.resolve == "" {
		g.sound = "check"
	}
	state := g.state()
	return move, &state, nil
}

// Undo takes back the last ply. A game decided on the board can be
// reopened this way; resignations and timeouts are final.
func (g *Game) Undo(playerID string) (bool, error) {
	undone, state, err := g.undo(playerID)
	if err != nil {
		return false, err
	}
	if undone {
		g.broadcast(state)
	}
	return undone, nil
}

func (g *Game) undo(playerID string) (bool, GameState, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.isPlayerInGame(playerID) {
		return false, GameState{}, ErrNotInGame
	}
	if g.resolve == ResolveResignation || g.resolve == ResolveTimeout {
		return false, GameState{}, ErrGameOver
	}
	if _, ok := g.position.LastMove(); !ok {
		return false, GameState{}, nil
	}

	g.clockFor(g.position.SideToMove()).Stop()
	g.position.Undo()
	g.clockFor(g.position.SideToMove()).Start()

	g.resolve = ""
	g.winner = ""
	g.sound = "undo"
	g.afterPositionChange()
	return true, g.state(), nil
}

// Resign ends the game in favour of playerID's opponent.
func (g *Game) Resign(playerID string) error {
	state, err := g.resign(playerID)
	if err != nil {
		return err
	}
	g.broadcast(state)
	return nil
}

func (g *Game) resign(playerID string) (GameState, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.resolve != "" {
		return GameState{}, ErrGameOver
	}
	if !g.isPlayerInGame(playerID) {
		return GameState{}, ErrNotInGame
	}
	loser := White
	switch {
	case g.players.White.ID == playerID && g.players.Black.ID == playerID:
		loser = g.position.SideToMove()
	case g.players.Black.ID == playerID:
		loser = Black
	}
	g.whiteClock.Stop()
	g.blackClock.Stop()
	g.resolveGame(ResolveResignation, loser.Opponent())
	g.updatedAt = time.Now()
	return g.state(), nil
}

// afterPositionChange recomputes the terminal status for the side to move.
func (g *Game) afterPositionChange() {
	g.updatedAt = time.Now()
	g.position.LegalMoves()
	switch g.position.Status() {
	case StatusCheckmate:
		g.resolveGame(ResolveCheckmate, g.position.SideToMove().Opponent())
	case StatusStalemate:
		g.resolveGame(ResolveStalemate, "")
	}
}

func (g *Game) resolveGame(resolve string, winner Color) {
	g.resolve = resolve
	g.winner = winner
	g.whiteClock.Stop()
	g.blackClock.Stop()
}

func (g *Game) State() GameState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state()
}

func (g *Game) state() GameState {
	pos := g.position
	st := GameState{
		ID:          g.ID,
		Sound:       g.sound,
		Board:       boardView(pos),
		ToMove:      pos.SideToMove(),
		MoveHistory: plies(pos.History()),
		IsCheck:     pos.IsInCheck(),
		LegalMoves:  []SimpleMove{},
		Players:     g.players,
		FEN:         pos.FEN(),
	}
	st.Players.White.TimeLeft = g.whiteClock.tenths()
	st.Players.Black.TimeLeft = g.blackClock.tenths()

	if g.resolve == "" {
		for _, m := range pos.LegalMoves() {
			st.LegalMoves = append(st.LegalMoves, SimpleMove{From: m.From.Name(), To: m.To.Name()})
		}
	}
	st.Outcome = pos.Outcome()
	if ep, ok := pos.EnPassantTarget(); ok {
		name := ep.Name()
		st.EnPassantTarget = &name
	}
	if g.resolve != "" {
		resolve := g.resolve
		st.Resolve = &resolve
		if g.winner != "" {
			winner := g.winner
			st.Winner = &winner
		}
	}
	if last, ok := pos.LastMove(); ok {
		st.LastMove = &SimpleMove{From: last.From.Name(), To: last.To.Name()}
	}
	return st
}

func boardView(pos *Position) [][]*Piece {
	grid := pos.Board()
	rows := make([][]*Piece, 8)
	for r := range grid {
		rows[r] = make([]*Piece, 8)
		for c := range grid[r] {
			if grid[r][c].IsEmpty() {
				continue
			}
			pc := grid[r][c]
			rows[r][c] = &pc
		}
	}
	return rows
}

func plies(moves []Move) []Ply {
	out := make([]Ply, len(moves))
	for i, m := range moves {
		out[i] = Ply{Move: m, Notation: Notation(m), UCI: m.UCI()}
	}
	return out
}

// Snapshot captures what is needed to restore or archive the game.
func (g *Game) Snapshot() GameSnapshot {
	g.mu.Lock()
	defer g.mu.Unlock()

	history := g.position.History()
	moves := make([]string, len(history))
	for i, m := range history {
		moves[i] = m.UCI()
	}
	return GameSnapshot{
		ID:        g.ID,
		WhiteID:   g.players.White.ID,
		BlackID:   g.players.Black.ID,
		Moves:     moves,
		Resolve:   g.resolve,
		Winner:    g.winner,
		CreatedAt: g.createdAt,
		UpdatedAt: g.updatedAt,
	}
}

func (g *Game) RegisterConnection(playerID string, conn Conn) error {
	g.mu.Lock()
	isAuthorized := g.isPlayerInGame(playerID) || g.seatOpen()
	state := g.state()
	g.mu.Unlock()

	if !isAuthorized {
		return fmt.Errorf("connect %s to game %s: %w", playerID, g.ID, ErrNotInGame)
	}

	g.connections.mu.Lock()
	if _, exists := g.connections.connections[playerID]; exists {
		g.connections.mu.Unlock()
		return ErrDuplicateConnection
	}
	g.connections.connections[playerID] = conn
	g.connections.mu.Unlock()

	g.send(playerID, conn, state)
	return nil
}

// UnregisterConnection forgets conn if it is still the player's current one.
func (g *Game) UnregisterConnection(playerID string, conn Conn) {
	g.connections.mu.Lock()
	defer g.connections.mu.Unlock()

	if current, exists := g.connections.connections[playerID]; exists && current == conn {
		delete(g.connections.connections, playerID)
	}
}

func (g *Game) ConnectionCount() int {
	g.connections.mu.RLock()
	defer g.connections.mu.RUnlock()
	return len(g.connections.connections)
}

func (g *Game) broadcast(state GameState) {
	g.connections.mu.RLock()
	activeConnections := make(map[string]Conn, len(g.connections.connections))
	for playerID, conn := range g.connections.connections {
		activeConnections[playerID] = conn
	}
	g.connections.mu.RUnlock()

	for playerID, conn := range activeConnections {
		g.send(playerID, conn, state)
	}
}

// send drops the connection when the write fails.
func (g *Game) send(playerID string, conn Conn, state GameState) {
	msg, err := ws.NewMessage(ws.MessageTypeGameState, state)
	if err != nil {
		return
	}
	if err := conn.WriteJSON(msg); err != nil {
		g.UnregisterConnection(playerID, conn)
	}
}
