package game

import "context"

// Repository loads the initial game detail used to seed a live session.
type Repository interface {
	GetByID(ctx context.Context, gameID int64) (Game, error)
}
