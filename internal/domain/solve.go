package domain

import (
	"strings"
	"time"
)

type Solve struct {
	ID            string    `json:"id"`
	EventID       string    `json:"event_id"`
	UID           string    `json:"uid"`
	TeamID        *string   `json:"team_id,omitempty"`
	ChallengeID   string    `json:"challenge_id"`
	SolvedAt      time.Time `json:"solved_at"`
	PointsAwarded int       `json:"points_awarded"`
}

// SolveID is the composite identity that keeps one solve per user and challenge.
// It is unambiguous because challenge ids never contain the separator.
func SolveID(uid, challengeID string) string {
	return uid + "_" + challengeID
}

// ValidChallengeID reports whether id can be used in a SolveID.
func ValidChallengeID(id string) bool {
	return id != "" && !strings.ContainsAny(id, "_ \t\n")
}

const EventTypeSolveCreated = "solve.created"

// PostSolveEvent is emitted once per newly created solve.
type PostSolveEvent struct {
	SolveID       string    `json:"solve_id"`
	EventID       string    `json:"event_id"`
	ChallengeID   string    `json:"challenge_id"`
	UID           string    `json:"uid"`
	TeamID        *string   `json:"team_id,omitempty"`
	Category      string    `json:"category"`
	Points        int       `json:"points"`
	AttemptNumber int       `json:"attempt_number"`
	SolvedAt      time.Time `json:"solved_at"`
	// SolveRank is the position of this solve on the challenge, 1 for first blood.
	SolveRank int `json:"solve_rank"`
}

func (e PostSolveEvent) FirstBlood() bool {
	return e.SolveRank == 1
}
