// Package scoring builds leaderboards from the solve ledger.
//
// Ordering contract for every board: score descending, then earlier last solve
// first, then id ascending so equal rows have a stable order.
package scoring

import (
	"sort"
	"time"

	"github.com/jeopardy-ctf/scoring-api/internal/domain"
)

type tally struct {
	score int
	last  time.Time
}

type tallies map[string]*tally

func (t tallies) add(id string, points int, at time.Time) {
	cur, ok := t[id]
	if !ok {
		cur = &tally{}
		t[id] = cur
	}
	cur.score += points
	if at.After(cur.last) {
		cur.last = at
	}
}

func (t tallies) rows() []domain.LeaderboardRow {
	rows := make([]domain.LeaderboardRow, 0, len(t))
	for id, v := range t {
		rows = append(rows, domain.LeaderboardRow{ID: id, Score: v.score, LastSolveAt: v.last})
	}
	SortRows(rows)
	return rows
}

func SortRows(rows []domain.LeaderboardRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if !a.LastSolveAt.Equal(b.LastSolveAt) {
			return a.LastSolveAt.Before(b.LastSolveAt)
		}
		return a.ID < b.ID
	})
}

// EventBoards groups solves by user and by team. Solves without a team only count individually.
func EventBoards(solves []domain.Solve) (individual, teams []domain.LeaderboardRow) {
	byUser := tallies{}
	byTeam := tallies{}
	for _, s := range solves {
		byUser.add(s.UID, s.PointsAwarded, s.SolvedAt)
		if s.TeamID != nil && *s.TeamID != "" {
			byTeam.add(*s.TeamID, s.PointsAwarded, s.SolvedAt)
		}
	}
	return byUser.rows(), byTeam.rows()
}

// EventBoard is one event's pair of materialized boards.
type EventBoard struct {
	EventID    string
	Individual []domain.LeaderboardRow
	Teams      []domain.LeaderboardRow
}

type Standings struct {
	Individual []domain.LeaderboardRow
	Teams      []domain.LeaderboardRow
	Retention  domain.Retention
}

// LeagueStandings sums every event board of a league and buckets individuals by
// how many distinct events they scored in.
func LeagueStandings(boards []EventBoard) Standings {
	byUser := tallies{}
	byTeam := tallies{}
	eventsPerUser := map[string]map[string]struct{}{}

	for _, b := range boards {
		for _, r := range b.Individual {
			byUser.add(r.ID, r.Score, r.LastSolveAt)
			seen, ok := eventsPerUser[r.ID]
			if !ok {
				seen = map[string]struct{}{}
				eventsPerUser[r.ID] = seen
			}
			seen[b.EventID] = struct{}{}
		}
		for _, r := range b.Teams {
			byTeam.add(r.ID, r.Score, r.LastSolveAt)
		}
	}

	var retention domain.Retention
	for _, events := range eventsPerUser {
		switch n := len(events); {
		case n == 1:
			retention.OneEvent++
		case n == 2:
			retention.TwoEvents++
		case n >= 3:
			retention.ThreeOrMore++
		}
	}

	return Standings{
		Individual: byUser.rows(),
		Teams:      byTeam.rows(),
		Retention:  retention,
	}
}
