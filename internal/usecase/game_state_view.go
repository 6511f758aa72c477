package usecase

import (
	"fmt"

	"github.com/riskibarqy/matchday/internal/domain/game"
	"github.com/riskibarqy/matchday/internal/domain/matchevent"
)

// NotificationKind tags what changed in a GameStateStore.
type NotificationKind string

const (
	NotificationGameUpdated   NotificationKind = "gameUpdated"
	NotificationStatusChanged NotificationKind = "statusChanged"
	NotificationEventAdded    NotificationKind = "eventAdded"
	NotificationClockTicked   NotificationKind = "clockTicked"
)

// Notification carries the view as it was right after the change. Event is set
// for eventAdded; PreviousStatus for statusChanged.
type Notification struct {
	Kind           NotificationKind
	GameID         int64
	View           GameStateView
	Event          *matchevent.Event
	PreviousStatus game.Status
}

type TeamView struct {
	ID    int64
	Name  string
	Color string
}

// GameStateView is the read model rendered by the detail screen and the
// live-activity surface.
type GameStateView struct {
	GameID               int64
	HomeTeam             TeamView
	AwayTeam             TeamView
	HomeScore            int
	AwayScore            int
	Status               game.Status
	StartTimestamp       string
	ElapsedMinutes       int
	GameTime             string
	LastEventDescription string
	LastEventPlayer      string
	EventCount           int
}

// FormatGameTime renders the clock label shown next to the score.
func FormatGameTime(status game.Status, elapsedMinutes int) string {
	if status.IsFinished() {
		return "FT"
	}
	if elapsedMinutes < 0 {
		elapsedMinutes = 0
	}
	return fmt.Sprintf("%d'", elapsedMinutes)
}

func buildView(g game.Game, events []matchevent.Event, elapsed int) GameStateView {
	view := GameStateView{
		GameID:         g.ID,
		HomeTeam:       TeamView{ID: g.HomeTeam.ID, Name: g.HomeTeam.Name, Color: g.HomeTeam.Color},
		AwayTeam:       TeamView{ID: g.AwayTeam.ID, Name: g.AwayTeam.Name, Color: g.AwayTeam.Color},
		HomeScore:      g.HomeScore,
		AwayScore:      g.AwayScore,
		Status:         g.Status,
		StartTimestamp: g.StartTimestamp,
		ElapsedMinutes: elapsed,
		GameTime:       FormatGameTime(g.Status, elapsed),
		EventCount:     len(events),
	}
	if len(events) > 0 {
		desc := matchevent.Describe(events[0], g)
		view.LastEventDescription = desc.Text
		view.LastEventPlayer = desc.PlayerName
	}
	return view
}
