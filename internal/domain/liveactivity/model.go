package liveactivity

import (
	"context"
	"errors"
)

var (
	ErrActivitiesDisabled = errors.New("live activities are disabled")
	ErrSessionExists      = errors.New("live activity already exists for game")
	ErrSessionNotFound    = errors.New("live activity session not found")
)

// SessionID is the opaque handle returned by Host.Start.
type SessionID string

// Identity is fixed for the lifetime of a session.
type Identity struct {
	GameID        int64
	HomeTeamName  string
	AwayTeamName  string
	HomeTeamColor string
	AwayTeamColor string
}

// Content is the mutable payload shown on the surface. Updates always carry
// the full content, never a diff.
type Content struct {
	HomeScore  int    `json:"homeScore"`
	AwayScore  int    `json:"awayScore"`
	GameStatus string `json:"gameStatus"`
	GameTime   string `json:"gameTime"`
	LastEvent  string `json:"lastEvent"`
}

// Host is the OS-level live-activity surface.
type Host interface {
	Start(ctx context.Context, identity Identity, content Content) (SessionID, error)
	Update(ctx context.Context, id SessionID, content Content) error
	End(ctx context.Context, id SessionID) error
}
