package game

import (
	"fmt"
	"strings"
)

// Status is the server-reported lifecycle of a match. The server moves it
// forward (scheduled, live, finished); the client only mirrors it.
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusLive      Status = "live"
	StatusFinished  Status = "finished"
)

func ParseStatus(value string) (Status, error) {
	switch Status(strings.ToLower(strings.TrimSpace(value))) {
	case StatusScheduled:
		return StatusScheduled, nil
	case StatusLive:
		return StatusLive, nil
	case StatusFinished:
		return StatusFinished, nil
	default:
		return "", fmt.Errorf("unknown game status %q", value)
	}
}

func (s Status) IsLive() bool {
	return s == StatusLive
}

func (s Status) IsFinished() bool {
	return s == StatusFinished
}

// Player is one roster entry. IDs are opaque server strings.
type Player struct {
	ID       string
	Name     string
	Number   int
	Position string
}

// TeamRef is the team as embedded in a game payload.
type TeamRef struct {
	ID      int64
	Name    string
	Color   string
	Players []Player
}

// FindPlayer looks up a roster entry by id.
func (t TeamRef) FindPlayer(playerID string) (Player, bool) {
	playerID = strings.TrimSpace(playerID)
	if playerID == "" {
		return Player{}, false
	}
	for _, p := range t.Players {
		if p.ID == playerID {
			return p, true
		}
	}
	return Player{}, false
}

// Game is one match as delivered by the detail fetch or a snapshot.
type Game struct {
	ID             int64
	HomeScore      int
	AwayScore      int
	Status         Status
	StartTimestamp string
	HomeTeam       TeamRef
	AwayTeam       TeamRef
}

func (g Game) Validate() error {
	if g.ID <= 0 {
		return fmt.Errorf("game id must be greater than zero")
	}
	if g.HomeScore < 0 || g.AwayScore < 0 {
		return fmt.Errorf("game scores must not be negative")
	}
	if _, err := ParseStatus(string(g.Status)); err != nil {
		return err
	}
	return nil
}

// PlayerName resolves a player against the home roster first, then away.
func (g Game) PlayerName(playerID string) (string, bool) {
	if p, ok := g.HomeTeam.FindPlayer(playerID); ok {
		return p.Name, true
	}
	if p, ok := g.AwayTeam.FindPlayer(playerID); ok {
		return p.Name, true
	}
	return "", false
}

// TeamName returns the name of the home or away team with the given id.
func (g Game) TeamName(teamID int64) (string, bool) {
	switch {
	case teamID <= 0:
		return "", false
	case g.HomeTeam.ID == teamID:
		return g.HomeTeam.Name, true
	case g.AwayTeam.ID == teamID:
		return g.AwayTeam.Name, true
	default:
		return "", false
	}
}
