package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/benbeisheim/chessrules-backend/internal/model"
)

// GameService is the transport-facing API over the GameManager.
type GameService struct {
	gameManager *GameManager
}

func NewGameService(gameManager *GameManager) *GameService {
	return &GameService{
		gameManager: gameManager,
	}
}

// CreateGame opens a new game and seats the creator as white.
func (gs *GameService) CreateGame(ctx context.Context, playerID string) (string, model.Color, error) {
	gameID := uuid.New().String()

	if _, err := gs.gameManager.CreateGame(ctx, gameID); err != nil {
		return "", "", fmt.Errorf("failed to create game: %w", err)
	}
	color, err := gs.gameManager.AddPlayerToGame(ctx, gameID, playerID)
	if err != nil {
		return "", "", fmt.Errorf("failed to seat creator: %w", err)
	}
	return gameID, color, nil
}

func (gs *GameService) JoinGame(ctx context.Context, gameID, playerID string) (model.Color, error) {
	return gs.gameManager.AddPlayerToGame(ctx, gameID, playerID)
}

func (gs *GameService) JoinMatchmaking(playerID string) error {
	return gs.gameManager.JoinMatchmaking(playerID)
}

func (gs *GameService) LeaveMatchmaking(playerID string) bool {
	return gs.gameManager.LeaveMatchmaking(playerID)
}

func (gs *GameService) GetGameState(ctx context.Context, gameID string) (model.GameState, error) {
	return gs.gameManager.GetGameState(ctx, gameID)
}

func (gs *GameService) LegalMoves(ctx context.Context, gameID string) ([]model.SimpleMove, error) {
	state, err := gs.gameManager.GetGameState(ctx, gameID)
	if err != nil {
		return nil, err
	}
	return state.LegalMoves, nil
}

func (gs *GameService) HandleMove(ctx context.Context, gameID, playerID string, req model.MoveRequest) (model.Move, error) {
	return gs.gameManager.MakeMove(ctx, gameID, playerID, req)
}

func (gs *GameService) HandleUndo(ctx context.Context, gameID, playerID string) (bool, error) {
	return gs.gameManager.Undo(ctx, gameID, playerID)
}

func (gs *GameService) HandleResign(ctx context.Context, gameID, playerID string) error {
	return gs.gameManager.Resign(ctx, gameID, playerID)
}

func (gs *GameService) ExportPGN(ctx context.Context, gameID string) (string, error) {
	return gs.gameManager.PGN(ctx, gameID)
}

func (gs *GameService) RegisterConnection(ctx context.Context, gameID, playerID string, conn model.Conn) error {
	return gs.gameManager.RegisterConnection(ctx, gameID, playerID, conn)
}

func (gs *GameService) UnregisterConnection(gameID, playerID string, conn model.Conn) {
	gs.gameManager.UnregisterConnection(gameID, playerID, conn)
}

func (gs *GameService) RegisterMatchmakingChannel(playerID string, ch chan model.MatchFoundEvent) {
	gs.gameManager.RegisterMatchmakingChannel(playerID, ch)
}

func (gs *GameService) UnregisterMatchmakingChannel(playerID string, ch chan model.MatchFoundEvent) {
	gs.gameManager.UnregisterMatchmakingChannel(playerID, ch)
}
