package domain

import "time"

type Challenge struct {
	ID          string    `json:"id"`
	EventID     string    `json:"event_id"`
	Title       string    `json:"title"`
	Category    string    `json:"category"`
	PointsFixed int       `json:"points_fixed"`
	Published   bool      `json:"published"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ChallengeSecret holds the peppered hash of a challenge flag. It is never sent to clients.
type ChallengeSecret struct {
	ChallengeID   string    `json:"-"`
	FlagHash      string    `json:"-"`
	CaseSensitive bool      `json:"-"`
	UpdatedBy     string    `json:"-"`
	UpdatedAt     time.Time `json:"-"`
}
