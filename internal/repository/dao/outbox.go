package dao

import (
	"context"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Outbox struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	Type      string `gorm:"size:64;index;not null"`
	EntityID  string `gorm:"size:200;not null"`
	Payload   datatypes.JSON
	CreatedAt time.Time
	Processed bool `gorm:"not null;default:false;index"`
}

type DLQ struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	OutboxID  int64  `gorm:"index"`
	Type      string `gorm:"size:64;not null"`
	Handler   string `gorm:"size:64;not null"`
	EntityID  string `gorm:"size:200;not null"`
	Payload   datatypes.JSON
	ErrorMsg  string
	Attempts  int       `gorm:"not null;default:1"`
	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP"`
	RetriedAt *time.Time
	Resolved  bool `gorm:"not null;default:false;index"`
}

type OutboxDAO struct {
	db *gorm.DB
}

func NewOutboxDAO(db *gorm.DB) *OutboxDAO {
	return &OutboxDAO{
		db: db,
	}
}

// ClaimBatch marks up to limit pending rows as processed and returns them.
// SKIP LOCKED lets several workers poll the same table.
func (d *OutboxDAO) ClaimBatch(ctx context.Context, limit int) ([]Outbox, error) {
	var events []Outbox

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where("processed = ?", false).
			Order("id asc").
			Limit(limit).
			Find(&events).Error; err != nil {
			return err
		}
		if len(events) == 0 {
			return nil
		}

		ids := make([]int64, 0, len(events))
		for _, e := range events {
			ids = append(ids, e.ID)
		}

		return tx.Model(&Outbox{}).Where("id IN ?", ids).Update("processed", true).Error
	})
	if err != nil {
		return nil, err
	}

	return events, nil
}

// ReleaseBatch returns claimed rows to the pending set.
func (d *OutboxDAO) ReleaseBatch(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	return d.db.WithContext(ctx).Model(&Outbox{}).Where("id IN ?", ids).Update("processed", false).Error
}

func (d *OutboxDAO) InsertDLQ(ctx context.Context, dlq DLQ) error {
	return d.db.WithContext(ctx).Create(&dlq).Error
}

// FindUnresolvedDLQ skips rows that already failed maxAttempts times and
// serves the least retried rows first.
func (d *OutboxDAO) FindUnresolvedDLQ(ctx context.Context, maxAttempts, limit int) ([]DLQ, error) {
	var dlqs []DLQ

	result := d.db.WithContext(ctx).
		Where("resolved = ? AND attempts < ?", false, maxAttempts).
		Order("attempts asc").
		Order("id asc").
		Limit(limit).
		Find(&dlqs)
	if result.Error != nil {
		return nil, result.Error
	}

	return dlqs, nil
}

func (d *OutboxDAO) ResolveDLQ(ctx context.Context, id int64, at time.Time) error {
	return d.db.WithContext(ctx).Model(&DLQ{}).Where("id = ?", id).Updates(map[string]any{
		"resolved":   true,
		"retried_at": at,
	}).Error
}

func (d *OutboxDAO) FailDLQRetry(ctx context.Context, id int64, msg string, at time.Time) error {
	return d.db.WithContext(ctx).Model(&DLQ{}).Where("id = ?", id).Updates(map[string]any{
		"attempts":   gorm.Expr("attempts + 1"),
		"error_msg":  msg,
		"retried_at": at,
	}).Error
}
