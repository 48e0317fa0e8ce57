package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/datatypes"

	"github.com/jeopardy-ctf/scoring-api/internal/domain"
	"github.com/jeopardy-ctf/scoring-api/internal/repository/dao"
)

var ErrSolveExists = dao.ErrSolveExists

type SolveDAO interface {
	InsertWithOutbox(ctx context.Context, solve dao.Solve, build func(rank int) (dao.Outbox, error)) (int, error)
	FindByEvent(ctx context.Context, eventID string) ([]dao.Solve, error)
}

type SolveRepository struct {
	dao SolveDAO
}

func NewSolveRepository(dao SolveDAO) *SolveRepository {
	return &SolveRepository{
		dao: dao,
	}
}

// RecordSolveIfFirst creates the solve unless the user already solved the challenge.
// When it does, the post-solve event is queued in the same transaction.
func (r *SolveRepository) RecordSolveIfFirst(ctx context.Context, solve domain.Solve, event domain.PostSolveEvent) (bool, error) {
	solve.ID = domain.SolveID(solve.UID, solve.ChallengeID)
	event.SolveID = solve.ID

	_, err := r.dao.InsertWithOutbox(ctx, dao.Solve{
		ID:            solve.ID,
		EventID:       solve.EventID,
		UID:           solve.UID,
		TeamID:        solve.TeamID,
		ChallengeID:   solve.ChallengeID,
		SolvedAt:      solve.SolvedAt,
		PointsAwarded: solve.PointsAwarded,
	}, func(rank int) (dao.Outbox, error) {
		event.SolveRank = rank
		payload, err := json.Marshal(event)
		if err != nil {
			return dao.Outbox{}, fmt.Errorf("json.Marshal -> %w", err)
		}

		return dao.Outbox{
			Type:     domain.EventTypeSolveCreated,
			EntityID: solve.ID,
			Payload:  datatypes.JSON(payload),
		}, nil
	})
	if err != nil {
		if errors.Is(err, dao.ErrSolveExists) {
			return false, nil
		}
		return false, fmt.Errorf("r.dao.InsertWithOutbox -> %w", err)
	}

	return true, nil
}

func (r *SolveRepository) FindByEvent(ctx context.Context, eventID string) ([]domain.Solve, error) {
	found, err := r.dao.FindByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByEvent -> %w", err)
	}

	solves := make([]domain.Solve, 0, len(found))
	for _, s := range found {
		solves = append(solves, domain.Solve{
			ID:            s.ID,
			EventID:       s.EventID,
			UID:           s.UID,
			TeamID:        s.TeamID,
			ChallengeID:   s.ChallengeID,
			SolvedAt:      s.SolvedAt,
			PointsAwarded: s.PointsAwarded,
		})
	}

	return solves, nil
}
