package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeopardy-ctf/scoring-api/internal/domain"
)

func ptr(s string) *string { return &s }

var t0 = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

func TestEventBoardsSortsByScoreThenEarlierSolve(t *testing.T) {
	solves := []domain.Solve{
		{UID: "A", ChallengeID: "c1", PointsAwarded: 100, SolvedAt: t0},
		{UID: "B", ChallengeID: "c2", PointsAwarded: 150, SolvedAt: t0.Add(time.Minute)},
		{UID: "C", ChallengeID: "c1", PointsAwarded: 100, SolvedAt: t0.Add(-time.Minute)},
	}

	individual, teams := EventBoards(solves)

	require.Len(t, individual, 3)
	assert.Equal(t, "B", individual[0].ID)
	assert.Equal(t, 150, individual[0].Score)
	// A and C tie on 100; C solved earlier.
	assert.Equal(t, "C", individual[1].ID)
	assert.Equal(t, "A", individual[2].ID)
	assert.Empty(t, teams)
}

func TestEventBoardsTracksLatestSolveAndTeams(t *testing.T) {
	solves := []domain.Solve{
		{UID: "A", TeamID: ptr("red"), PointsAwarded: 100, SolvedAt: t0},
		{UID: "A", TeamID: ptr("red"), PointsAwarded: 50, SolvedAt: t0.Add(time.Hour)},
		{UID: "B", TeamID: ptr("red"), PointsAwarded: 10, SolvedAt: t0.Add(30 * time.Minute)},
		{UID: "C", TeamID: ptr("blue"), PointsAwarded: 160, SolvedAt: t0.Add(10 * time.Minute)},
		{UID: "D", PointsAwarded: 500, SolvedAt: t0},
		{UID: "E", TeamID: ptr(""), PointsAwarded: 5, SolvedAt: t0},
	}

	individual, teams := EventBoards(solves)

	require.Len(t, individual, 5)
	assert.Equal(t, domain.LeaderboardRow{ID: "D", Score: 500, LastSolveAt: t0}, individual[0])
	assert.Equal(t, domain.LeaderboardRow{ID: "C", Score: 160, LastSolveAt: t0.Add(10 * time.Minute)}, individual[1])
	assert.Equal(t, domain.LeaderboardRow{ID: "A", Score: 150, LastSolveAt: t0.Add(time.Hour)}, individual[2])

	require.Len(t, teams, 2)
	assert.Equal(t, domain.LeaderboardRow{ID: "red", Score: 160, LastSolveAt: t0.Add(time.Hour)}, teams[1])
	// blue ties red on 160 but its last solve is earlier.
	assert.Equal(t, "blue", teams[0].ID)
}

func TestEventBoardsEmpty(t *testing.T) {
	individual, teams := EventBoards(nil)
	assert.Empty(t, individual)
	assert.Empty(t, teams)
	assert.NotNil(t, individual)
}

func TestLeagueStandings(t *testing.T) {
	boards := []EventBoard{
		{
			EventID: "e1",
			Individual: []domain.LeaderboardRow{
				{ID: "A", Score: 100, LastSolveAt: t0},
				{ID: "B", Score: 50, LastSolveAt: t0},
				{ID: "C", Score: 10, LastSolveAt: t0},
			},
			Teams: []domain.LeaderboardRow{{ID: "red", Score: 150, LastSolveAt: t0}},
		},
		{
			EventID: "e2",
			Individual: []domain.LeaderboardRow{
				{ID: "A", Score: 20, LastSolveAt: t0.Add(24 * time.Hour)},
				{ID: "B", Score: 70, LastSolveAt: t0.Add(23 * time.Hour)},
			},
			Teams: []domain.LeaderboardRow{{ID: "red", Score: 20, LastSolveAt: t0.Add(24 * time.Hour)}},
		},
		{
			EventID:    "e3",
			Individual: []domain.LeaderboardRow{{ID: "A", Score: 1, LastSolveAt: t0.Add(48 * time.Hour)}},
		},
	}

	s := LeagueStandings(boards)

	require.Len(t, s.Individual, 3)
	assert.Equal(t, domain.LeaderboardRow{ID: "A", Score: 121, LastSolveAt: t0.Add(48 * time.Hour)}, s.Individual[0])
	assert.Equal(t, domain.LeaderboardRow{ID: "B", Score: 120, LastSolveAt: t0.Add(23 * time.Hour)}, s.Individual[1])
	assert.Equal(t, "C", s.Individual[2].ID)

	require.Len(t, s.Teams, 1)
	assert.Equal(t, 170, s.Teams[0].Score)

	assert.Equal(t, domain.Retention{OneEvent: 1, TwoEvents: 1, ThreeOrMore: 1}, s.Retention)
}
