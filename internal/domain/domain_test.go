package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEventStatus(t *testing.T) {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	e := Event{StartsAt: start, EndsAt: start.Add(48 * time.Hour)}

	assert.Equal(t, EventUpcoming, e.Status(start.Add(-time.Second)))
	assert.Equal(t, EventLive, e.Status(start))
	assert.Equal(t, EventLive, e.Status(start.Add(47*time.Hour)))
	assert.Equal(t, EventEnded, e.Status(start.Add(48*time.Hour)))
	assert.False(t, e.IsLive(start.Add(72*time.Hour)))
}

func TestLevelForXP(t *testing.T) {
	tests := []struct {
		xp   int
		want int
	}{
		{0, 1},
		{199, 1},
		{200, 2},
		{799, 2},
		{800, 3},
		{1800, 4},
		{-5, 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LevelForXP(tt.xp), "xp=%d", tt.xp)
	}
}

func TestQuestMatchesAndActive(t *testing.T) {
	now := time.Now()
	q := Quest{RuleType: QuestSolveCategory, Category: "Web", ActiveFrom: now.Add(-time.Hour), ActiveTo: now.Add(time.Hour)}

	assert.True(t, q.Matches("web"))
	assert.False(t, q.Matches("crypto"))
	assert.True(t, q.ActiveAt(now))
	assert.True(t, q.ActiveAt(q.ActiveTo))
	assert.False(t, q.ActiveAt(now.Add(2*time.Hour)))

	total := Quest{RuleType: QuestSolveTotal}
	assert.True(t, total.Matches("anything"))
	assert.False(t, Quest{RuleType: "unknown"}.Matches("web"))
}

func TestStatsDistinctCategories(t *testing.T) {
	s := Stats{CategorySolves: map[string]int{"web": 2, "pwn": 1, "misc": 0}}
	assert.Equal(t, 2, s.DistinctCategories())
	assert.Equal(t, "alice_ch1", SolveID("alice", "ch1"))
}

func TestSolveIDIsUnambiguous(t *testing.T) {
	assert.Equal(t, "alice_web-1", SolveID("alice", "web-1"))
	assert.True(t, ValidChallengeID("web-1"))
	assert.False(t, ValidChallengeID("b_c"))
	assert.False(t, ValidChallengeID(""))
	assert.False(t, ValidChallengeID("web 1"))

	// Splitting on the last separator recovers the challenge id.
	id := SolveID("a_b", "c")
	assert.Equal(t, "c", id[strings.LastIndex(id, "_")+1:])
}
