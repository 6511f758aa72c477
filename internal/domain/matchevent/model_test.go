package matchevent

import (
	"testing"

	"github.com/riskibarqy/matchday/internal/domain/game"
)

func fixtureGame() game.Game {
	return game.Game{
		ID:     1,
		Status: game.StatusLive,
		HomeTeam: game.TeamRef{
			ID:      10,
			Name:    "Inter Miami",
			Players: []game.Player{{ID: "p-10", Name: "Lionel Messi"}, {ID: "p-9", Name: "Luis Suarez"}},
		},
		AwayTeam: game.TeamRef{
			ID:      20,
			Name:    "LA Galaxy",
			Players: []game.Player{{ID: "p-7", Name: "Riqui Puig"}},
		},
	}
}

func TestParseEventType(t *testing.T) {
	for label := range labels {
		got, err := ParseEventType(string(label))
		if err != nil || got != label {
			t.Fatalf("ParseEventType(%q)=%q,%v", label, got, err)
		}
	}
	if got, err := ParseEventType("yellowcard"); err != nil || got != TypeYellowCard {
		t.Fatalf("expected case-insensitive parse, got %q,%v", got, err)
	}
	if _, err := ParseEventType("Throw-in"); err == nil {
		t.Fatalf("expected error for unknown type")
	}
}

func TestDescribe(t *testing.T) {
	g := fixtureGame()
	tests := []struct {
		name       string
		event      Event
		wantText   string
		wantPlayer string
	}{
		{
			name:       "home goal",
			event:      Event{ID: 1, Type: TypeGoal, PlayerID: "p-10", TeamID: 10},
			wantText:   "Goal: Lionel Messi (Inter Miami)",
			wantPlayer: "Lionel Messi",
		},
		{
			name:       "away card",
			event:      Event{ID: 2, Type: TypeYellowCard, PlayerID: "p-7", TeamID: 20},
			wantText:   "Yellow Card: Riqui Puig (LA Galaxy)",
			wantPlayer: "Riqui Puig",
		},
		{
			name:       "unknown player",
			event:      Event{ID: 3, Type: TypeGoal, PlayerID: "zz-404"},
			wantText:   "Goal: Unknown",
			wantPlayer: UnknownPlayer,
		},
		{
			name:     "no player",
			event:    Event{ID: 4, Type: TypeCorner, TeamID: 20},
			wantText: "Corner (LA Galaxy)",
		},
		{
			name:       "substitution",
			event:      Event{ID: 5, Type: TypeSubstitution, PlayerIn: "p-9", PlayerOut: "p-10", TeamID: 10},
			wantText:   "Substitution: Luis Suarez in, Lionel Messi out (Inter Miami)",
			wantPlayer: "Luis Suarez",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Describe(tt.event, g)
			if got.Text != tt.wantText {
				t.Fatalf("text=%q want=%q", got.Text, tt.wantText)
			}
			if got.PlayerName != tt.wantPlayer {
				t.Fatalf("player=%q want=%q", got.PlayerName, tt.wantPlayer)
			}
		})
	}
}

func TestEvent_Validate(t *testing.T) {
	if err := (Event{ID: 1, Type: TypeFoul}).Validate(); err != nil {
		t.Fatalf("expected valid event: %v", err)
	}
	if err := (Event{ID: 0, Type: TypeFoul}).Validate(); err == nil {
		t.Fatalf("expected error for zero id")
	}
	if err := (Event{ID: 1, Type: "Dive"}).Validate(); err == nil {
		t.Fatalf("expected error for unknown type")
	}
}
