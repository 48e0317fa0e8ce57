package domain

import "time"

type LeaderboardKind string

const (
	LeaderboardIndividual LeaderboardKind = "individual"
	LeaderboardTeams      LeaderboardKind = "teams"
)

func (k LeaderboardKind) Valid() bool {
	return k == LeaderboardIndividual || k == LeaderboardTeams
}

// LeaderboardRow is keyed by uid on individual boards and by team id on team boards.
type LeaderboardRow struct {
	ID          string    `json:"id"`
	Score       int       `json:"score"`
	LastSolveAt time.Time `json:"last_solve_at"`
}

type Leaderboard struct {
	EventID   string           `json:"event_id"`
	Kind      LeaderboardKind  `json:"kind"`
	Rows      []LeaderboardRow `json:"rows"`
	UpdatedAt time.Time        `json:"updated_at"`
}

type Retention struct {
	OneEvent    int `json:"one_event"`
	TwoEvents   int `json:"two_events"`
	ThreeOrMore int `json:"three_or_more"`
}

type LeagueStandings struct {
	LeagueID   string           `json:"league_id"`
	Individual []LeaderboardRow `json:"individual"`
	Teams      []LeaderboardRow `json:"teams"`
	Retention  Retention        `json:"retention"`
	UpdatedAt  time.Time        `json:"updated_at"`
}
