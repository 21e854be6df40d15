package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/benbeisheim/chessrules-backend/internal/model"
	"github.com/benbeisheim/chessrules-backend/internal/obslog"
	"github.com/benbeisheim/chessrules-backend/internal/pgn"
	"github.com/benbeisheim/chessrules-backend/internal/store"
)

var (
	ErrGameNotFound = errors.New("game not found")
	ErrGameExists   = errors.New("game already exists")
)

// Archiver receives games once they reach a result.
type Archiver interface {
	SaveResult(ctx context.Context, rec *store.GameRecord, pgnText string) error
}

type Options struct {
	Store               store.Store
	Archive             Archiver
	Clock               time.Duration
	MatchmakingInterval time.Duration
	Logger              *zap.Logger
}

type GameManager struct {
	games            map[string]*model.Game
	queue            *model.Queue
	matchingChannels map[string]chan model.MatchFoundEvent
	mu               sync.RWMutex

	store   store.Store
	archive Archiver
	clock   time.Duration
	log     *zap.Logger

	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

func NewGameManager(opts Options) *GameManager {
	if opts.Store == nil {
		opts.Store = store.NewMemoryStore()
	}
	if opts.Clock <= 0 {
		opts.Clock = 10 * time.Minute
	}
	if opts.MatchmakingInterval <= 0 {
		opts.MatchmakingInterval = time.Second
	}
	if opts.Logger == nil {
		opts.Logger = obslog.L()
	}

	gm := &GameManager{
		games:            make(map[string]*model.Game),
		queue:            model.NewQueue(),
		matchingChannels: make(map[string]chan model.MatchFoundEvent),
		store:            opts.Store,
		archive:          opts.Archive,
		clock:            opts.Clock,
		log:              opts.Logger,
		stop:             make(chan struct{}),
		done:             make(chan struct{}),
	}

	go gm.processMatchmaking(opts.MatchmakingInterval)

	return gm
}

// Close stops the matchmaking loop and closes any pending match channels.
func (gm *GameManager) Close() {
	gm.closeOnce.Do(func() {
		close(gm.stop)
		<-gm.done

		gm.mu.Lock()
		defer gm.mu.Unlock()
		for playerID, ch := range gm.matchingChannels {
			delete(gm.matchingChannels, playerID)
			close(ch)
		}
	})
}

func (gm *GameManager) processMatchmaking(interval time.Duration) {
	defer close(gm.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-gm.stop:
			return
		case <-ticker.C:
			for gm.matchNext() {
			}
		}
	}
}

// matchNext pairs the two longest-waiting players, if any. It reports
// whether a game was created.
func (gm *GameManager) matchNext() bool {
	player1, player2, ok := gm.queue.GetNextPair()
	if !ok {
		return false
	}

	gameID := uuid.New().String()
	game := model.NewGame(gameID, gm.clock)
	p1Color, err := game.AddPlayer(player1.ID)
	if err != nil {
		gm.log.Error("matchmaking: seat player", zap.String("playerID", player1.ID), zap.Error(err))
		return false
	}
	p2Color, err := game.AddPlayer(player2.ID)
	if err != nil {
		gm.log.Error("matchmaking: seat player", zap.String("playerID", player2.ID), zap.Error(err))
		return false
	}

	gm.mu.Lock()
	gm.games[gameID] = game
	gm.mu.Unlock()
	gm.persist(context.Background(), game)

	gm.log.Info("match found",
		zap.String("gameID", gameID),
		zap.String("white", player1.ID),
		zap.String("black", player2.ID),
	)

	gm.notifyMatch(player1.ID, model.MatchFoundEvent{Type: "matchFound", GameID: gameID, Color: p1Color})
	gm.notifyMatch(player2.ID, model.MatchFoundEvent{Type: "matchFound", GameID: gameID, Color: p2Color})
	return true
}

// notifyMatch delivers event to the player's channel and then closes it.
func (gm *GameManager) notifyMatch(playerID string, event model.MatchFoundEvent) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	ch, ok := gm.matchingChannels[playerID]
	if !ok {
		gm.log.Warn("matchmaking: no listener", zap.String("playerID", playerID), zap.String("gameID", event.GameID))
		return
	}
	delete(gm.matchingChannels, playerID)
	select {
	case ch <- event:
	default:
		gm.log.Warn("matchmaking: listener not ready", zap.String("playerID", playerID))
	}
	close(ch)
}

// RegisterMatchmakingChannel replaces any existing listener for playerID.
// The channel needs a buffer of at least one.
func (gm *GameManager) RegisterMatchmakingChannel(playerID string, ch chan model.MatchFoundEvent) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if existingCh, exists := gm.matchingChannels[playerID]; exists {
		delete(gm.matchingChannels, playerID)
		close(existingCh)
	}
	gm.matchingChannels[playerID] = ch
}

// UnregisterMatchmakingChannel forgets ch if it is still the player's listener.
func (gm *GameManager) UnregisterMatchmakingChannel(playerID string, ch chan model.MatchFoundEvent) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if current, ok := gm.matchingChannels[playerID]; ok && current == ch {
		delete(gm.matchingChannels, playerID)
	}
}

func (gm *GameManager) JoinMatchmaking(playerID string) error {
	if err := gm.queue.AddPlayer(model.Player{ID: playerID}); err != nil {
		return err
	}
	gm.log.Debug("player queued", zap.String("playerID", playerID), zap.Int("queueSize", gm.queue.Size()))
	return nil
}

func (gm *GameManager) LeaveMatchmaking(playerID string) bool {
	return gm.queue.Remove(playerID)
}

func (gm *GameManager) CreateGame(ctx context.Context, gameID string) (*model.Game, error) {
	gm.mu.Lock()
	if _, exists := gm.games[gameID]; exists {
		gm.mu.Unlock()
		return nil, fmt.Errorf("create %s: %w", gameID, ErrGameExists)
	}
	game := model.NewGame(gameID, gm.clock)
	gm.games[gameID] = game
	gm.mu.Unlock()

	gm.persist(ctx, game)
	return game, nil
}

// GetGame returns a live game, restoring it from the store when it is not
// held in memory.
func (gm *GameManager) GetGame(ctx context.Context, gameID string) (*model.Game, error) {
	gm.mu.RLock()
	game, exists := gm.games[gameID]
	gm.mu.RUnlock()
	if exists {
		return game, nil
	}

	rec, err := gm.store.Load(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("load game %s: %w", gameID, err)
	}
	if rec == nil {
		return nil, fmt.Errorf("%s: %w", gameID, ErrGameNotFound)
	}
	restored, err := model.RestoreGame(rec.Snapshot(), gm.clock)
	if err != nil {
		return nil, fmt.Errorf("restore game %s: %w", gameID, err)
	}

	gm.mu.Lock()
	defer gm.mu.Unlock()
	if game, exists := gm.games[restored.ID]; exists {
		return game, nil
	}
	gm.games[restored.ID] = restored
	gm.log.Info("game restored", zap.String("gameID", gameID), zap.Int("plies", len(rec.Moves)))
	return restored, nil
}

func (gm *GameManager) AddPlayerToGame(ctx context.Context, gameID, playerID string) (model.Color, error) {
	game, err := gm.GetGame(ctx, gameID)
	if err != nil {
		return "", err
	}
	color, err := game.AddPlayer(playerID)
	if err != nil {
		return "", err
	}
	gm.persist(ctx, game)
	return color, nil
}

func (gm *GameManager) GetGameState(ctx context.Context, gameID string) (model.GameState, error) {
	game, err := gm.GetGame(ctx, gameID)
	if err != nil {
		return model.GameState{}, err
	}
	return game.State(), nil
}

func (gm *GameManager) MakeMove(ctx context.Context, gameID, playerID string, req model.MoveRequest) (model.Move, error) {
	game, err := gm.GetGame(ctx, gameID)
	if err != nil {
		return model.Move{}, err
	}
	wasOver := game.IsOver()
	move, err := game.MakeMove(playerID, req)
	if err != nil {
		if !wasOver && errors.Is(err, model.ErrGameOver) {
			// this attempt found the mover's flag down
			gm.persist(ctx, game)
		}
		return model.Move{}, err
	}
	gm.log.Debug("move played",
		zap.String("gameID", gameID),
		zap.String("playerID", playerID),
		zap.String("move", move.UCI()),
	)
	gm.persist(ctx, game)
	return move, nil
}

func (gm *GameManager) Undo(ctx context.Context, gameID, playerID string) (bool, error) {
	game, err := gm.GetGame(ctx, gameID)
	if err != nil {
		return false, err
	}
	undone, err := game.Undo(playerID)
	if err != nil || !undone {
		return undone, err
	}
	gm.persist(ctx, game)
	return true, nil
}

func (gm *GameManager) Resign(ctx context.Context, gameID, playerID string) error {
	game, err := gm.GetGame(ctx, gameID)
	if err != nil {
		return err
	}
	if err := game.Resign(playerID); err != nil {
		return err
	}
	gm.persist(ctx, game)
	return nil
}

func (gm *GameManager) PGN(ctx context.Context, gameID string) (string, error) {
	game, err := gm.GetGame(ctx, gameID)
	if err != nil {
		return "", err
	}
	return pgn.Export(store.RecordFromSnapshot(game.Snapshot()))
}

func (gm *GameManager) RegisterConnection(ctx context.Context, gameID, playerID string, conn model.Conn) error {
	game, err := gm.GetGame(ctx, gameID)
	if err != nil {
		return err
	}
	return game.RegisterConnection(playerID, conn)
}

func (gm *GameManager) UnregisterConnection(gameID, playerID string, conn model.Conn) {
	gm.mu.RLock()
	game, exists := gm.games[gameID]
	gm.mu.RUnlock()
	if !exists {
		return
	}
	game.UnregisterConnection(playerID, conn)
}

// persist saves the game's record and archives it once decided. Failures
// are logged; the in-memory game stays authoritative.
func (gm *GameManager) persist(ctx context.Context, game *model.Game) {
	rec := store.RecordFromSnapshot(game.Snapshot())
	if err := gm.store.Save(ctx, rec); err != nil {
		gm.log.Error("save game", zap.String("gameID", rec.ID), zap.Error(err))
	}
	if rec.Resolve == "" || gm.archive == nil {
		return
	}

	text, err := pgn.Export(rec)
	if err != nil {
		gm.log.Error("export pgn", zap.String("gameID", rec.ID), zap.Error(err))
		return
	}
	if err := gm.archive.SaveResult(ctx, rec, text); err != nil {
		gm.log.Error("archive game", zap.String("gameID", rec.ID), zap.Error(err))
		return
	}
	gm.log.Info("game archived",
		zap.String("gameID", rec.ID),
		zap.String("resolve", rec.Resolve),
		zap.String("result", rec.Result()),
	)
}
