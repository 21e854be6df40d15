package model

import "errors"

var (
	ErrInvalidMove            = errors.New("invalid move")
	ErrMissingPromotionChoice = errors.New("missing or invalid promotion choice")
	ErrOutOfBounds            = errors.New("square out of bounds")
	ErrInvalidFEN             = errors.New("invalid FEN")

	ErrGameOver    = errors.New("game is over")
	ErrNotYourTurn = errors.New("not your turn")
	ErrNotInGame   = errors.New("player not in game")
	ErrGameFull    = errors.New("game is full")

	ErrAlreadyQueued = errors.New("player already in queue")
)
