package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jeopardy-ctf/scoring-api/internal/domain"
	"github.com/jeopardy-ctf/scoring-api/internal/repository/dao"
)

type SubmissionDAO interface {
	Insert(ctx context.Context, submission dao.Submission) (dao.Submission, error)
	CountForPair(ctx context.Context, eventID, uid, challengeID string) (int64, error)
	LatestForPair(ctx context.Context, eventID, uid, challengeID string) (dao.Submission, error)
	CountByUserSince(ctx context.Context, eventID, uid string, since time.Time) (int64, error)
}

type SubmissionRepository struct {
	dao SubmissionDAO
}

func NewSubmissionRepository(dao SubmissionDAO) *SubmissionRepository {
	return &SubmissionRepository{
		dao: dao,
	}
}

func (r *SubmissionRepository) Create(ctx context.Context, submission domain.Submission) (domain.Submission, error) {
	if submission.ID == "" {
		submission.ID = uuid.NewString()
	}

	created, err := r.dao.Insert(ctx, dao.Submission{
		ID:            submission.ID,
		EventID:       submission.EventID,
		UID:           submission.UID,
		ChallengeID:   submission.ChallengeID,
		SubmittedAt:   submission.SubmittedAt,
		IsCorrect:     submission.IsCorrect,
		AttemptNumber: submission.AttemptNumber,
	})
	if err != nil {
		return domain.Submission{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

// History collects the three reads the governor needs. The reads are not atomic
// with the later insert, so concurrent requests may overshoot a limit by a few.
func (r *SubmissionRepository) History(ctx context.Context, eventID, uid, challengeID string, windowStart time.Time) (domain.AttemptHistory, error) {
	prior, err := r.dao.CountForPair(ctx, eventID, uid, challengeID)
	if err != nil {
		return domain.AttemptHistory{}, fmt.Errorf("r.dao.CountForPair -> %w", err)
	}

	history := domain.AttemptHistory{PriorAttempts: int(prior)}

	if prior > 0 {
		last, err := r.dao.LatestForPair(ctx, eventID, uid, challengeID)
		if err != nil && !errors.Is(err, dao.ErrSubmissionNotFound) {
			return domain.AttemptHistory{}, fmt.Errorf("r.dao.LatestForPair -> %w", err)
		}
		if err == nil {
			s := r.daoToDomain(last)
			history.Last = &s
		}
	}

	inWindow, err := r.dao.CountByUserSince(ctx, eventID, uid, windowStart)
	if err != nil {
		return domain.AttemptHistory{}, fmt.Errorf("r.dao.CountByUserSince -> %w", err)
	}
	history.InWindow = int(inWindow)

	return history, nil
}

func (r *SubmissionRepository) daoToDomain(s dao.Submission) domain.Submission {
	return domain.Submission{
		ID:            s.ID,
		EventID:       s.EventID,
		ChallengeID:   s.ChallengeID,
		UID:           s.UID,
		SubmittedAt:   s.SubmittedAt,
		IsCorrect:     s.IsCorrect,
		AttemptNumber: s.AttemptNumber,
	}
}
