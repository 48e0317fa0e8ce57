package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"

	"github.com/jeopardy-ctf/scoring-api/internal/domain"
	"github.com/jeopardy-ctf/scoring-api/internal/repository/dao"
)

type OutboxDAO interface {
	ClaimBatch(ctx context.Context, limit int) ([]dao.Outbox, error)
	ReleaseBatch(ctx context.Context, ids []int64) error
	InsertDLQ(ctx context.Context, dlq dao.DLQ) error
	FindUnresolvedDLQ(ctx context.Context, maxAttempts, limit int) ([]dao.DLQ, error)
	ResolveDLQ(ctx context.Context, id int64, at time.Time) error
	FailDLQRetry(ctx context.Context, id int64, msg string, at time.Time) error
}

type OutboxRepository struct {
	dao OutboxDAO
}

func NewOutboxRepository(dao OutboxDAO) *OutboxRepository {
	return &OutboxRepository{
		dao: dao,
	}
}

func (r *OutboxRepository) Claim(ctx context.Context, limit int) ([]domain.OutboxEvent, error) {
	found, err := r.dao.ClaimBatch(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("r.dao.ClaimBatch -> %w", err)
	}

	events := make([]domain.OutboxEvent, 0, len(found))
	for _, e := range found {
		events = append(events, domain.OutboxEvent{
			ID:        e.ID,
			Type:      e.Type,
			EntityID:  e.EntityID,
			Payload:   json.RawMessage(e.Payload),
			CreatedAt: e.CreatedAt,
		})
	}

	return events, nil
}

func (r *OutboxRepository) Release(ctx context.Context, events []domain.OutboxEvent) error {
	ids := make([]int64, 0, len(events))
	for _, e := range events {
		ids = append(ids, e.ID)
	}

	if err := r.dao.ReleaseBatch(ctx, ids); err != nil {
		return fmt.Errorf("r.dao.ReleaseBatch -> %w", err)
	}

	return nil
}

func (r *OutboxRepository) DeadLetter(ctx context.Context, event domain.OutboxEvent, handler, msg string) error {
	if err := r.dao.InsertDLQ(ctx, dao.DLQ{
		OutboxID: event.ID,
		Type:     event.Type,
		Handler:  handler,
		EntityID: event.EntityID,
		Payload:  datatypes.JSON(event.Payload),
		ErrorMsg: msg,
		Attempts: 1,
	}); err != nil {
		return fmt.Errorf("r.dao.InsertDLQ -> %w", err)
	}

	return nil
}

func (r *OutboxRepository) PendingDeadLetters(ctx context.Context, maxAttempts, limit int) ([]domain.DeadLetter, error) {
	found, err := r.dao.FindUnresolvedDLQ(ctx, maxAttempts, limit)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindUnresolvedDLQ -> %w", err)
	}

	letters := make([]domain.DeadLetter, 0, len(found))
	for _, d := range found {
		letters = append(letters, domain.DeadLetter{
			ID:        d.ID,
			OutboxID:  d.OutboxID,
			Type:      d.Type,
			Handler:   d.Handler,
			EntityID:  d.EntityID,
			Payload:   json.RawMessage(d.Payload),
			ErrorMsg:  d.ErrorMsg,
			Attempts:  d.Attempts,
			CreatedAt: d.CreatedAt,
		})
	}

	return letters, nil
}

func (r *OutboxRepository) Resolve(ctx context.Context, id int64, at time.Time) error {
	if err := r.dao.ResolveDLQ(ctx, id, at); err != nil {
		return fmt.Errorf("r.dao.ResolveDLQ -> %w", err)
	}
	return nil
}

func (r *OutboxRepository) RetryFailed(ctx context.Context, id int64, msg string, at time.Time) error {
	if err := r.dao.FailDLQRetry(ctx, id, msg, at); err != nil {
		return fmt.Errorf("r.dao.FailDLQRetry -> %w", err)
	}
	return nil
}
