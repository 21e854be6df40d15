package store

import (
	"context"
	"time"

	"github.com/benbeisheim/chessrules-backend/internal/model"
)

// GameRecord is the persisted form of a game. Moves are UCI strings in
// play order; replaying them from the standard start rebuilds the position.
type GameRecord struct {
	ID        string    `json:"id"`
	WhiteID   string    `json:"whiteId"`
	BlackID   string    `json:"blackId"`
	Moves     []string  `json:"moves"`
	Resolve   string    `json:"resolve,omitempty"`
	Winner    string    `json:"winner,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Store keeps live game records. Load returns (nil, nil) for unknown IDs.
type Store interface {
	Save(ctx context.Context, rec *GameRecord) error
	Load(ctx context.Context, gameID string) (*GameRecord, error)
	Delete(ctx context.Context, gameID string) error
}

func RecordFromSnapshot(snap model.GameSnapshot) *GameRecord {
	return &GameRecord{
		ID:        snap.ID,
		WhiteID:   snap.WhiteID,
		BlackID:   snap.BlackID,
		Moves:     append([]string(nil), snap.Moves...),
		Resolve:   snap.Resolve,
		Winner:    string(snap.Winner),
		CreatedAt: snap.CreatedAt,
		UpdatedAt: snap.UpdatedAt,
	}
}

func (r *GameRecord) Snapshot() model.GameSnapshot {
	return model.GameSnapshot{
		ID:        r.ID,
		WhiteID:   r.WhiteID,
		BlackID:   r.BlackID,
		Moves:     append([]string(nil), r.Moves...),
		Resolve:   r.Resolve,
		Winner:    model.Color(r.Winner),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// Result maps the record's outcome to "white", "black", "draw" or "" while
// the game is still running.
func (r *GameRecord) Result() string {
	switch {
	case r.Resolve == "":
		return ""
	case r.Winner == "":
		return "draw"
	default:
		return r.Winner
	}
}
