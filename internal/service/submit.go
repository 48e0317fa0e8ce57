package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jeopardy-ctf/scoring-api/internal/domain"
	"github.com/jeopardy-ctf/scoring-api/internal/metrics"
)

type EventRepository interface {
	FindByID(ctx context.Context, id string) (domain.Event, error)
	FindChallenge(ctx context.Context, id string) (domain.Challenge, error)
	FindSecret(ctx context.Context, challengeID string) (domain.ChallengeSecret, error)
}

type ProfileRepository interface {
	Profile(ctx context.Context, uid string) (domain.Profile, error)
}

type SubmissionRepository interface {
	History(ctx context.Context, eventID, uid, challengeID string, windowStart time.Time) (domain.AttemptHistory, error)
	Create(ctx context.Context, submission domain.Submission) (domain.Submission, error)
}

type SolveLedger interface {
	RecordSolveIfFirst(ctx context.Context, solve domain.Solve, event domain.PostSolveEvent) (bool, error)
}

type LeaderboardRecomputer interface {
	RecomputeEvent(ctx context.Context, eventID string) error
}

type FlagMatcher interface {
	Matches(raw string, caseSensitive bool, stored string) bool
}

type SubmitInput struct {
	UID         string
	EventID     string
	ChallengeID string
	FlagText    string
}

type SubmitResult struct {
	Correct           bool
	AlreadySolved     bool
	AttemptsLeft      int
	CooldownRemaining int
	// ScoreAwarded is set only when this call created the solve.
	ScoreAwarded *int
}

type SubmitService struct {
	events       EventRepository
	profiles     ProfileRepository
	submissions  SubmissionRepository
	ledger       SolveLedger
	leaderboards LeaderboardRecomputer
	governor     *Governor
	flags        FlagMatcher
	now          func() time.Time
}

func NewSubmitService(
	events EventRepository,
	profiles ProfileRepository,
	submissions SubmissionRepository,
	ledger SolveLedger,
	leaderboards LeaderboardRecomputer,
	governor *Governor,
	flags FlagMatcher,
) *SubmitService {
	return &SubmitService{
		events:       events,
		profiles:     profiles,
		submissions:  submissions,
		ledger:       ledger,
		leaderboards: leaderboards,
		governor:     governor,
		flags:        flags,
		now:          time.Now,
	}
}

func (s *SubmitService) SubmitFlag(ctx context.Context, in SubmitInput) (SubmitResult, error) {
	now := s.now()

	event, err := s.events.FindByID(ctx, in.EventID)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("s.events.FindByID -> %w", err)
	}
	if !event.IsLive(now) {
		return SubmitResult{}, ErrEventNotLive
	}

	challenge, err := s.events.FindChallenge(ctx, in.ChallengeID)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("s.events.FindChallenge -> %w", err)
	}
	if challenge.EventID != event.ID {
		return SubmitResult{}, ErrChallengeNotFound
	}
	if !challenge.Published {
		return SubmitResult{}, ErrChallengeUnpublished
	}

	profile, err := s.profiles.Profile(ctx, in.UID)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("s.profiles.Profile -> %w", err)
	}
	if profile.Disabled {
		return SubmitResult{}, ErrAccountDisabled
	}

	secret, err := s.events.FindSecret(ctx, challenge.ID)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("s.events.FindSecret -> %w", err)
	}

	history, err := s.submissions.History(ctx, event.ID, in.UID, challenge.ID, s.governor.WindowStart(now))
	if err != nil {
		return SubmitResult{}, fmt.Errorf("s.submissions.History -> %w", err)
	}
	if err := s.governor.Check(history, now); err != nil {
		var rejection *RejectionError
		if errors.As(err, &rejection) {
			metrics.Submissions.WithLabelValues(outcomeLabel(rejection.Err)).Inc()
		}
		return SubmitResult{}, err
	}

	correct := s.flags.Matches(in.FlagText, secret.CaseSensitive, secret.FlagHash)
	attempt := history.PriorAttempts + 1

	if _, err := s.submissions.Create(ctx, domain.Submission{
		EventID:       event.ID,
		ChallengeID:   challenge.ID,
		UID:           in.UID,
		SubmittedAt:   now,
		IsCorrect:     correct,
		AttemptNumber: attempt,
	}); err != nil {
		return SubmitResult{}, fmt.Errorf("s.submissions.Create -> %w", err)
	}

	limits := s.governor.Limits()
	result := SubmitResult{
		Correct:      correct,
		AttemptsLeft: max(limits.MaxAttempts-attempt, 0),
	}

	if !correct {
		result.CooldownRemaining = ceilSeconds(limits.Cooldown)
		metrics.Submissions.WithLabelValues("wrong").Inc()
		return result, nil
	}

	var teamID *string
	if event.TeamMode && profile.TeamID != nil && *profile.TeamID != "" {
		teamID = profile.TeamID
	}

	created, err := s.ledger.RecordSolveIfFirst(ctx, domain.Solve{
		EventID:       event.ID,
		UID:           in.UID,
		TeamID:        teamID,
		ChallengeID:   challenge.ID,
		SolvedAt:      now,
		PointsAwarded: challenge.PointsFixed,
	}, domain.PostSolveEvent{
		EventID:       event.ID,
		ChallengeID:   challenge.ID,
		UID:           in.UID,
		TeamID:        teamID,
		Category:      challenge.Category,
		Points:        challenge.PointsFixed,
		AttemptNumber: attempt,
		SolvedAt:      now,
	})
	if err != nil {
		return SubmitResult{}, fmt.Errorf("s.ledger.RecordSolveIfFirst -> %w", err)
	}

	if !created {
		result.AlreadySolved = true
		metrics.Submissions.WithLabelValues("already_solved").Inc()
		return result, nil
	}

	points := challenge.PointsFixed
	result.ScoreAwarded = &points
	metrics.Submissions.WithLabelValues("solved").Inc()
	metrics.Solves.Inc()

	// The solve is durable at this point; a stale board is fixed by the next recompute.
	if err := s.leaderboards.RecomputeEvent(ctx, event.ID); err != nil {
		zap.L().Error("leaderboard recompute after solve failed",
			zap.String("event_id", event.ID),
			zap.String("uid", in.UID),
			zap.String("challenge_id", challenge.ID),
			zap.Error(err),
		)
	}

	return result, nil
}

func outcomeLabel(err error) string {
	switch {
	case errors.Is(err, ErrAttemptsExhausted):
		return "attempts_exhausted"
	case errors.Is(err, ErrCooldownActive):
		return "cooldown_active"
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	default:
		return "rejected"
	}
}
