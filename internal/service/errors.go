package service

import (
	"errors"

	"github.com/jeopardy-ctf/scoring-api/internal/repository"
)

var (
	ErrEventNotFound       = repository.ErrEventNotFound
	ErrEventExists         = repository.ErrEventExists
	ErrChallengeNotFound   = repository.ErrChallengeNotFound
	ErrChallengeExists     = repository.ErrChallengeExists
	ErrFlagNotConfigured   = repository.ErrSecretNotFound
	ErrLeaderboardNotFound = repository.ErrLeaderboardNotFound
	ErrStandingsNotFound   = repository.ErrStandingsNotFound
	ErrUserNotFound        = repository.ErrUserNotFound
	ErrQuestExists         = repository.ErrQuestExists

	ErrEventNotLive         = errors.New("event is not live")
	ErrChallengeUnpublished = errors.New("challenge is not published")
	ErrAccountDisabled      = errors.New("account is disabled")
	ErrForbidden            = errors.New("insufficient role")
	ErrFlagFormatMismatch   = errors.New("flag does not match the event flag format")
	ErrInvalidFlagFormat    = errors.New("event flag format is not a valid pattern")

	ErrAttemptsExhausted = errors.New("maximum attempts reached for this challenge")
	ErrCooldownActive    = errors.New("cooldown active after a wrong answer")
	ErrRateLimited       = errors.New("too many submissions, slow down")
)

// RejectionError is returned when the governor refuses a submission. It carries
// the hints a client needs to render a countdown.
type RejectionError struct {
	Err error
	// CooldownRemaining is in whole seconds, rounded up.
	CooldownRemaining int
	AttemptsLeft      int
}

func (e *RejectionError) Error() string {
	return e.Err.Error()
}

func (e *RejectionError) Unwrap() error {
	return e.Err
}
