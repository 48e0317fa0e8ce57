package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var ErrSubmissionNotFound = errors.New("submission not found")

type Submission struct {
	ID            string    `gorm:"primaryKey;size:36"`
	EventID       string    `gorm:"size:64;not null;index:idx_submissions_pair,priority:1;index:idx_submissions_window,priority:1"`
	UID           string    `gorm:"size:128;not null;index:idx_submissions_pair,priority:2;index:idx_submissions_window,priority:2"`
	ChallengeID   string    `gorm:"size:64;not null;index:idx_submissions_pair,priority:3"`
	SubmittedAt   time.Time `gorm:"not null;index:idx_submissions_window,priority:3"`
	IsCorrect     bool      `gorm:"not null"`
	AttemptNumber int       `gorm:"not null"`
}

type SubmissionDAO struct {
	db *gorm.DB
}

func NewSubmissionDAO(db *gorm.DB) *SubmissionDAO {
	return &SubmissionDAO{
		db: db,
	}
}

func (d *SubmissionDAO) Insert(ctx context.Context, submission Submission) (Submission, error) {
	if err := d.db.WithContext(ctx).Create(&submission).Error; err != nil {
		return Submission{}, err
	}

	return submission, nil
}

func (d *SubmissionDAO) CountForPair(ctx context.Context, eventID, uid, challengeID string) (int64, error) {
	var count int64

	result := d.db.WithContext(ctx).Model(&Submission{}).
		Where("event_id = ? AND uid = ? AND challenge_id = ?", eventID, uid, challengeID).
		Count(&count)

	return count, result.Error
}

func (d *SubmissionDAO) LatestForPair(ctx context.Context, eventID, uid, challengeID string) (Submission, error) {
	var submission Submission

	result := d.db.WithContext(ctx).
		Where("event_id = ? AND uid = ? AND challenge_id = ?", eventID, uid, challengeID).
		Order("submitted_at desc").
		First(&submission)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Submission{}, ErrSubmissionNotFound
		}

		return Submission{}, result.Error
	}

	return submission, nil
}

func (d *SubmissionDAO) CountByUserSince(ctx context.Context, eventID, uid string, since time.Time) (int64, error) {
	var count int64

	result := d.db.WithContext(ctx).Model(&Submission{}).
		Where("event_id = ? AND uid = ? AND submitted_at > ?", eventID, uid, since).
		Count(&count)

	return count, result.Error
}
