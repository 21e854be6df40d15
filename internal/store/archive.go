package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
)

const archiveSchema = `CREATE TABLE IF NOT EXISTS finished_games (
    game_id     TEXT PRIMARY KEY,
    white_id    TEXT NOT NULL,
    black_id    TEXT NOT NULL,
    result      TEXT NOT NULL,
    resolve     TEXT NOT NULL,
    moves_uci   JSONB NOT NULL,
    pgn         TEXT NOT NULL,
    started_at  TIMESTAMPTZ NOT NULL,
    ended_at    TIMESTAMPTZ NOT NULL,
    duration_ms BIGINT NOT NULL
)`

// Archive stores finished games in Postgres.
type Archive struct {
	db *sql.DB
}

func NewArchive(databaseURL string) (*Archive, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(16)
	db.SetMaxIdleConns(8)
	db.SetConnMaxLifetime(30 * time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, archiveSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create archive schema: %w", err)
	}
	return &Archive{db: db}, nil
}

func (a *Archive) Close() error {
	if a == nil || a.db == nil {
		return nil
	}
	return a.db.Close()
}

// SaveResult upserts a finished game together with its PGN text.
func (a *Archive) SaveResult(ctx context.Context, rec *GameRecord, pgnText string) error {
	if a == nil || a.db == nil || rec == nil {
		return nil
	}
	movesRaw, err := json.Marshal(rec.Moves)
	if err != nil {
		return err
	}
	duration := rec.UpdatedAt.Sub(rec.CreatedAt).Milliseconds()
	if duration < 0 {
		duration = 0
	}

	q := `INSERT INTO finished_games (
        game_id, white_id, black_id, result, resolve, moves_uci, pgn,
        started_at, ended_at, duration_ms
      ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
      ON CONFLICT (game_id) DO UPDATE SET
        white_id=EXCLUDED.white_id,
        black_id=EXCLUDED.black_id,
        result=EXCLUDED.result,
        resolve=EXCLUDED.resolve,
        moves_uci=EXCLUDED.moves_uci,
        pgn=EXCLUDED.pgn,
        started_at=EXCLUDED.started_at,
        ended_at=EXCLUDED.ended_at,
        duration_ms=EXCLUDED.duration_ms`

	_, err = a.db.ExecContext(ctx, q,
		rec.ID, rec.WhiteID, rec.BlackID,
		rec.Result(), rec.Resolve, string(movesRaw), pgnText,
		rec.CreatedAt, rec.UpdatedAt, duration,
	)
	return err
}
