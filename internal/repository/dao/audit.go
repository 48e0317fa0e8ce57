package dao

import (
	"context"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AuditLog struct {
	ID         string `gorm:"primaryKey;size:36"`
	ActorUID   string `gorm:"size:128;not null;index"`
	Action     string `gorm:"size:64;not null"`
	TargetType string `gorm:"size:32;not null"`
	TargetID   string `gorm:"size:64;not null;index"`
	Details    datatypes.JSON
	CreatedAt  time.Time
}

func (AuditLog) TableName() string {
	return "audit_log"
}

type AuditDAO struct {
	db *gorm.DB
}

func NewAuditDAO(db *gorm.DB) *AuditDAO {
	return &AuditDAO{
		db: db,
	}
}

func (d *AuditDAO) Insert(ctx context.Context, entry AuditLog) error {
	return d.db.WithContext(ctx).Create(&entry).Error
}

func (d *AuditDAO) FindByTarget(ctx context.Context, targetType, targetID string) ([]AuditLog, error) {
	var entries []AuditLog

	result := d.db.WithContext(ctx).
		Where("target_type = ? AND target_id = ?", targetType, targetID).
		Order("created_at desc").
		Find(&entries)
	if result.Error != nil {
		return nil, result.Error
	}

	return entries, nil
}
