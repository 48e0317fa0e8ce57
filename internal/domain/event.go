package domain

import "time"

type EventStatus string

const (
	EventUpcoming EventStatus = "UPCOMING"
	EventLive     EventStatus = "LIVE"
	EventEnded    EventStatus = "ENDED"
)

type Event struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	StartsAt   time.Time `json:"starts_at"`
	EndsAt     time.Time `json:"ends_at"`
	LeagueID   *string   `json:"league_id,omitempty"`
	Visibility string    `json:"visibility"`
	TeamMode   bool      `json:"team_mode"`
	FlagFormat string    `json:"flag_format,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Status is derived from the clock and is never persisted.
func (e Event) Status(now time.Time) EventStatus {
	switch {
	case now.Before(e.StartsAt):
		return EventUpcoming
	case now.Before(e.EndsAt):
		return EventLive
	default:
		return EventEnded
	}
}

func (e Event) IsLive(now time.Time) bool {
	return e.Status(now) == EventLive
}

type League struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
