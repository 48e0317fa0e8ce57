package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/jeopardy-ctf/scoring-api/internal/domain"
	"github.com/jeopardy-ctf/scoring-api/internal/repository/dao"
)

type AuditDAO interface {
	Insert(ctx context.Context, entry dao.AuditLog) error
}

type AuditRepository struct {
	dao AuditDAO
}

func NewAuditRepository(dao AuditDAO) *AuditRepository {
	return &AuditRepository{
		dao: dao,
	}
}

func (r *AuditRepository) Record(ctx context.Context, entry domain.AuditEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}

	details, err := json.Marshal(entry.Details)
	if err != nil {
		return fmt.Errorf("json.Marshal -> %w", err)
	}

	if err := r.dao.Insert(ctx, dao.AuditLog{
		ID:         entry.ID,
		ActorUID:   entry.ActorUID,
		Action:     entry.Action,
		TargetType: entry.TargetType,
		TargetID:   entry.TargetID,
		Details:    datatypes.JSON(details),
		CreatedAt:  entry.CreatedAt,
	}); err != nil {
		return fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return nil
}
