package service

import (
	"math"
	"sync"
	"time"

	"github.com/jeopardy-ctf/scoring-api/internal/config"
	"github.com/jeopardy-ctf/scoring-api/internal/domain"
)

type Limits struct {
	MaxAttempts     int
	Cooldown        time.Duration
	RateLimitWindow time.Duration
	RateLimitMax    int
}

func DefaultLimits() Limits {
	return Limits{
		MaxAttempts:     30,
		Cooldown:        10 * time.Second,
		RateLimitWindow: 60 * time.Second,
		RateLimitMax:    10,
	}
}

func LimitsFromConfig(conf config.ScoringConfig) Limits {
	return Limits{
		MaxAttempts:     conf.MaxAttempts,
		Cooldown:        conf.Cooldown,
		RateLimitWindow: conf.RateLimitWindow,
		RateLimitMax:    conf.RateLimitMax,
	}
}

// Governor decides whether an attempt may be scored. It never writes anything;
// limits can be swapped at runtime when the config file changes.
type Governor struct {
	mu     sync.RWMutex
	limits Limits
}

func NewGovernor(limits Limits) *Governor {
	return &Governor{
		limits: limits,
	}
}

func (g *Governor) Limits() Limits {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.limits
}

func (g *Governor) SetLimits(limits Limits) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.limits = limits
}

// WindowStart is the lower bound of the rate window ending at now.
func (g *Governor) WindowStart(now time.Time) time.Time {
	return now.Add(-g.Limits().RateLimitWindow)
}

// Check runs attempts, cooldown and rate window checks in that order and
// returns a *RejectionError for the first that fails.
func (g *Governor) Check(h domain.AttemptHistory, now time.Time) error {
	l := g.Limits()
	attemptsLeft := l.MaxAttempts - h.PriorAttempts
	if attemptsLeft < 0 {
		attemptsLeft = 0
	}

	if h.PriorAttempts >= l.MaxAttempts {
		return &RejectionError{Err: ErrAttemptsExhausted, AttemptsLeft: 0}
	}

	if h.Last != nil && !h.Last.IsCorrect {
		remaining := l.Cooldown - now.Sub(h.Last.SubmittedAt)
		if remaining > 0 {
			return &RejectionError{
				Err:               ErrCooldownActive,
				CooldownRemaining: ceilSeconds(remaining),
				AttemptsLeft:      attemptsLeft,
			}
		}
	}

	if h.InWindow >= l.RateLimitMax {
		return &RejectionError{Err: ErrRateLimited, AttemptsLeft: attemptsLeft}
	}

	return nil
}

func ceilSeconds(d time.Duration) int {
	return int(math.Ceil(d.Seconds()))
}
