package playerstats

import (
	"strconv"
)

// GameStats are one player's numbers for one game.
type GameStats struct {
	GameID        int64
	PlayerID      string
	PlayerName    string
	MinutesPlayed int
	Goals         int
	Assists       int
	Shots         int
	ShotsOnTarget int
	Passes        int
	PassAccuracy  float64
	Tackles       int
	Interceptions int
	Fouls         int
	YellowCards   int
	RedCards      int
	Saves         int
	Rating        float64
}

// Field is one labelled stat ready for display.
type Field struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Fields lists the stats in display order.
func (s GameStats) Fields() []Field {
	return []Field{
		{Label: "Minutes", Value: strconv.Itoa(s.MinutesPlayed)},
		{Label: "Goals", Value: strconv.Itoa(s.Goals)},
		{Label: "Assists", Value: strconv.Itoa(s.Assists)},
		{Label: "Shots", Value: strconv.Itoa(s.Shots)},
		{Label: "Shots on Target", Value: strconv.Itoa(s.ShotsOnTarget)},
		{Label: "Passes", Value: strconv.Itoa(s.Passes)},
		{Label: "Pass Accuracy", Value: strconv.FormatFloat(s.PassAccuracy, 'f', 0, 64) + "%"},
		{Label: "Tackles", Value: strconv.Itoa(s.Tackles)},
		{Label: "Interceptions", Value: strconv.Itoa(s.Interceptions)},
		{Label: "Fouls", Value: strconv.Itoa(s.Fouls)},
		{Label: "Yellow Cards", Value: strconv.Itoa(s.YellowCards)},
		{Label: "Red Cards", Value: strconv.Itoa(s.RedCards)},
		{Label: "Saves", Value: strconv.Itoa(s.Saves)},
		{Label: "Rating", Value: strconv.FormatFloat(s.Rating, 'f', 1, 64)},
	}
}
