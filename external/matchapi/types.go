package matchapi

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"

	"github.com/riskibarqy/matchday/internal/domain/game"
	"github.com/riskibarqy/matchday/internal/domain/matchevent"
	"github.com/riskibarqy/matchday/internal/domain/playerstats"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// flexID accepts ids sent either as JSON strings or numbers.
type flexID string

func (f *flexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := sonic.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexID(strings.TrimSpace(s))
		return nil
	}
	for _, c := range data {
		if (c < '0' || c > '9') && c != '-' {
			return fmt.Errorf("invalid id literal %s", data)
		}
	}
	*f = flexID(data)
	return nil
}

type gameDTO struct {
	ID             int64    `json:"id" validate:"required,gt=0"`
	HomeScore      int      `json:"home_score" validate:"gte=0"`
	AwayScore      int      `json:"away_score" validate:"gte=0"`
	Status         string   `json:"status" validate:"required"`
	StartTimestamp string   `json:"start_timestamp"`
	HomeTeam       *teamDTO `json:"home_team" validate:"omitempty"`
	AwayTeam       *teamDTO `json:"away_team" validate:"omitempty"`
}

type teamDTO struct {
	ID      int64       `json:"id" validate:"gte=0"`
	Name    string      `json:"name"`
	Color   string      `json:"color"`
	Players []playerDTO `json:"players" validate:"dive"`
}

type playerDTO struct {
	ID       flexID `json:"id" validate:"required"`
	Name     string `json:"name"`
	Number   int    `json:"number"`
	Position string `json:"position"`
}

type eventDTO struct {
	EventID    int64    `json:"event_id" validate:"required,gt=0"`
	EventType  string   `json:"event_type" validate:"required"`
	GameID     int64    `json:"game_id" validate:"gte=0"`
	PlayerID   flexID   `json:"player_id"`
	PlayerIn   flexID   `json:"player_in"`
	PlayerOut  flexID   `json:"player_out"`
	Timestamp  string   `json:"timestamp"`
	TeamColors []string `json:"team_colors" validate:"omitempty,dive,hexcolor"`
	TeamID     int64    `json:"team_id" validate:"gte=0"`
}

type playerStatsDTO struct {
	GameID        int64   `json:"game_id"`
	PlayerID      flexID  `json:"player_id"`
	PlayerName    string  `json:"player_name"`
	MinutesPlayed int     `json:"minutes_played" validate:"gte=0"`
	Goals         int     `json:"goals" validate:"gte=0"`
	Assists       int     `json:"assists" validate:"gte=0"`
	Shots         int     `json:"shots" validate:"gte=0"`
	ShotsOnTarget int     `json:"shots_on_target" validate:"gte=0"`
	Passes        int     `json:"passes" validate:"gte=0"`
	PassAccuracy  float64 `json:"pass_accuracy" validate:"gte=0,lte=100"`
	Tackles       int     `json:"tackles" validate:"gte=0"`
	Interceptions int     `json:"interceptions" validate:"gte=0"`
	Fouls         int     `json:"fouls" validate:"gte=0"`
	YellowCards   int     `json:"yellow_cards" validate:"gte=0"`
	RedCards      int     `json:"red_cards" validate:"gte=0"`
	Saves         int     `json:"saves" validate:"gte=0"`
	Rating        float64 `json:"rating" validate:"gte=0"`
}

func decodeGame(raw []byte) (game.Game, error) {
	var dto gameDTO
	if err := sonic.Unmarshal(raw, &dto); err != nil {
		return game.Game{}, fmt.Errorf("decode game: %w", err)
	}
	if err := validate.Struct(dto); err != nil {
		return game.Game{}, fmt.Errorf("validate game: %w", err)
	}
	return dto.toDomain()
}

func (d gameDTO) toDomain() (game.Game, error) {
	status, err := game.ParseStatus(d.Status)
	if err != nil {
		return game.Game{}, err
	}
	return game.Game{
		ID:             d.ID,
		HomeScore:      d.HomeScore,
		AwayScore:      d.AwayScore,
		Status:         status,
		StartTimestamp: strings.TrimSpace(d.StartTimestamp),
		HomeTeam:       d.HomeTeam.toDomain(),
		AwayTeam:       d.AwayTeam.toDomain(),
	}, nil
}

func (d *teamDTO) toDomain() game.TeamRef {
	if d == nil {
		return game.TeamRef{}
	}
	players := make([]game.Player, 0, len(d.Players))
	for _, p := range d.Players {
		players = append(players, game.Player{
			ID:       string(p.ID),
			Name:     strings.TrimSpace(p.Name),
			Number:   p.Number,
			Position: strings.TrimSpace(p.Position),
		})
	}
	return game.TeamRef{
		ID:      d.ID,
		Name:    strings.TrimSpace(d.Name),
		Color:   strings.TrimSpace(d.Color),
		Players: players,
	}
}

func decodeEvent(raw []byte) (matchevent.Event, error) {
	var dto eventDTO
	if err := sonic.Unmarshal(raw, &dto); err != nil {
		return matchevent.Event{}, fmt.Errorf("decode event: %w", err)
	}
	if err := validate.Struct(dto); err != nil {
		return matchevent.Event{}, fmt.Errorf("validate event: %w", err)
	}
	eventType, err := matchevent.ParseEventType(dto.EventType)
	if err != nil {
		return matchevent.Event{}, err
	}
	return matchevent.Event{
		ID:         dto.EventID,
		Type:       eventType,
		GameID:     dto.GameID,
		PlayerID:   string(dto.PlayerID),
		PlayerIn:   string(dto.PlayerIn),
		PlayerOut:  string(dto.PlayerOut),
		Timestamp:  dto.Timestamp,
		TeamColors: dto.TeamColors,
		TeamID:     dto.TeamID,
	}, nil
}

func decodePlayerStats(raw []byte, gameID int64, playerID string) (playerstats.GameStats, error) {
	var dto playerStatsDTO
	if err := sonic.Unmarshal(raw, &dto); err != nil {
		return playerstats.GameStats{}, fmt.Errorf("decode player stats: %w", err)
	}
	if err := validate.Struct(dto); err != nil {
		return playerstats.GameStats{}, fmt.Errorf("validate player stats: %w", err)
	}
	if dto.GameID <= 0 {
		dto.GameID = gameID
	}
	if dto.PlayerID == "" {
		dto.PlayerID = flexID(playerID)
	}
	return playerstats.GameStats{
		GameID:        dto.GameID,
		PlayerID:      string(dto.PlayerID),
		PlayerName:    strings.TrimSpace(dto.PlayerName),
		MinutesPlayed: dto.MinutesPlayed,
		Goals:         dto.Goals,
		Assists:       dto.Assists,
		Shots:         dto.Shots,
		ShotsOnTarget: dto.ShotsOnTarget,
		Passes:        dto.Passes,
		PassAccuracy:  dto.PassAccuracy,
		Tackles:       dto.Tackles,
		Interceptions: dto.Interceptions,
		Fouls:         dto.Fouls,
		YellowCards:   dto.YellowCards,
		RedCards:      dto.RedCards,
		Saves:         dto.Saves,
		Rating:        dto.Rating,
	}, nil
}
