package matchevent

import (
	"fmt"
	"strings"

	"github.com/riskibarqy/matchday/internal/domain/game"
)

// UnknownPlayer is rendered when an event references a player missing from
// both rosters.
const UnknownPlayer = "Unknown"

type EventType string

const (
	TypeGoal         EventType = "Goal"
	TypeAssist       EventType = "Assist"
	TypeFinish       EventType = "Finish"
	TypeCorner       EventType = "Corner"
	TypeFoul         EventType = "Foul"
	TypeFreeKick     EventType = "FreeKick"
	TypeDefense      EventType = "Defense"
	TypeInterception EventType = "Interception"
	TypeOffside      EventType = "Offside"
	TypeTackle       EventType = "Tackle"
	TypePenalty      EventType = "Penalty"
	TypeSubstitution EventType = "Substitution"
	TypeYellowCard   EventType = "YellowCard"
	TypeRedCard      EventType = "RedCard"
)

var labels = map[EventType]string{
	TypeGoal:         "Goal",
	TypeAssist:       "Assist",
	TypeFinish:       "Finish",
	TypeCorner:       "Corner",
	TypeFoul:         "Foul",
	TypeFreeKick:     "Free Kick",
	TypeDefense:      "Defense",
	TypeInterception: "Interception",
	TypeOffside:      "Offside",
	TypeTackle:       "Tackle",
	TypePenalty:      "Penalty",
	TypeSubstitution: "Substitution",
	TypeYellowCard:   "Yellow Card",
	TypeRedCard:      "Red Card",
}

var byLowerName = func() map[string]EventType {
	out := make(map[string]EventType, len(labels))
	for t := range labels {
		out[strings.ToLower(string(t))] = t
	}
	return out
}()

// ParseEventType accepts the wire labels, ignoring case.
func ParseEventType(value string) (EventType, error) {
	t, ok := byLowerName[strings.ToLower(strings.TrimSpace(value))]
	if !ok {
		return "", fmt.Errorf("unknown event type %q", value)
	}
	return t, nil
}

func (t EventType) Valid() bool {
	_, ok := labels[t]
	return ok
}

// Label is the human-readable name, e.g. "Yellow Card".
func (t EventType) Label() string {
	if label, ok := labels[t]; ok {
		return label
	}
	return string(t)
}

// Event is one discrete match incident. Events are immutable once logged.
type Event struct {
	ID         int64
	Type       EventType
	GameID     int64
	PlayerID   string
	PlayerIn   string
	PlayerOut  string
	Timestamp  string
	TeamColors []string
	TeamID     int64
}

func (e Event) Validate() error {
	if e.ID <= 0 {
		return fmt.Errorf("event id must be greater than zero")
	}
	if !e.Type.Valid() {
		return fmt.Errorf("unknown event type %q", e.Type)
	}
	if e.GameID < 0 {
		return fmt.Errorf("event game id must not be negative")
	}
	return nil
}

// Description is the rendered "last event" text for one event.
type Description struct {
	Text       string
	PlayerName string
}

// Describe renders e against the rosters of g. Player ids are resolved against
// the home roster first, then away; misses render as UnknownPlayer.
func Describe(e Event, g game.Game) Description {
	var b strings.Builder
	b.WriteString(e.Type.Label())

	var primary string
	if e.Type == TypeSubstitution && (e.PlayerIn != "" || e.PlayerOut != "") {
		in := resolve(g, e.PlayerIn)
		out := resolve(g, e.PlayerOut)
		primary = in
		b.WriteString(": ")
		switch {
		case e.PlayerIn != "" && e.PlayerOut != "":
			fmt.Fprintf(&b, "%s in, %s out", in, out)
		case e.PlayerIn != "":
			fmt.Fprintf(&b, "%s in", in)
		default:
			fmt.Fprintf(&b, "%s out", out)
			primary = out
		}
	} else if e.PlayerID != "" {
		primary = resolve(g, e.PlayerID)
		b.WriteString(": ")
		b.WriteString(primary)
	}

	if team, ok := g.TeamName(e.TeamID); ok && team != "" {
		fmt.Fprintf(&b, " (%s)", team)
	}

	return Description{Text: b.String(), PlayerName: primary}
}

func resolve(g game.Game, playerID string) string {
	if name, ok := g.PlayerName(playerID); ok && name != "" {
		return name
	}
	return UnknownPlayer
}
