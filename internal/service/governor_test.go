package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeopardy-ctf/scoring-api/internal/config"
	"github.com/jeopardy-ctf/scoring-api/internal/domain"
)

func TestGovernor_Check(t *testing.T) {
	now := testNow
	wrong := func(ago time.Duration) *domain.Submission {
		return &domain.Submission{SubmittedAt: now.Add(-ago), IsCorrect: false}
	}

	tests := []struct {
		name     string
		history  domain.AttemptHistory
		err      error
		cooldown int
		left     int
	}{
		{name: "first attempt", history: domain.AttemptHistory{}},
		{name: "after correct answer no cooldown", history: domain.AttemptHistory{PriorAttempts: 1, Last: &domain.Submission{SubmittedAt: now, IsCorrect: true}}},
		{name: "cooldown rounds up", history: domain.AttemptHistory{PriorAttempts: 1, Last: wrong(2500 * time.Millisecond)}, err: ErrCooldownActive, cooldown: 8, left: 29},
		{name: "cooldown elapsed", history: domain.AttemptHistory{PriorAttempts: 1, Last: wrong(10 * time.Second)}},
		{name: "rate window full", history: domain.AttemptHistory{InWindow: 10}, err: ErrRateLimited, left: 30},
		{name: "rate window one below", history: domain.AttemptHistory{InWindow: 9}},
		{name: "exhausted wins over cooldown and rate", history: domain.AttemptHistory{PriorAttempts: 30, Last: wrong(time.Second), InWindow: 10}, err: ErrAttemptsExhausted},
		{name: "cooldown wins over rate", history: domain.AttemptHistory{PriorAttempts: 3, Last: wrong(time.Second), InWindow: 10}, err: ErrCooldownActive, cooldown: 9, left: 27},
	}

	g := NewGovernor(DefaultLimits())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := g.Check(tt.history, now)
			if tt.err == nil {
				assert.NoError(t, err)
				return
			}

			var rejection *RejectionError
			require.ErrorAs(t, err, &rejection)
			assert.ErrorIs(t, err, tt.err)
			assert.Equal(t, tt.cooldown, rejection.CooldownRemaining)
			assert.Equal(t, tt.left, rejection.AttemptsLeft)
		})
	}
}

func TestGovernor_SetLimits(t *testing.T) {
	g := NewGovernor(DefaultLimits())
	g.SetLimits(LimitsFromConfig(config.ScoringConfig{
		MaxAttempts:     3,
		Cooldown:        time.Minute,
		RateLimitWindow: 30 * time.Second,
		RateLimitMax:    2,
	}))

	assert.ErrorIs(t, g.Check(domain.AttemptHistory{PriorAttempts: 3}, testNow), ErrAttemptsExhausted)
	assert.ErrorIs(t, g.Check(domain.AttemptHistory{InWindow: 2}, testNow), ErrRateLimited)
	assert.Equal(t, testNow.Add(-30*time.Second), g.WindowStart(testNow))
}
