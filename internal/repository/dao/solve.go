package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var ErrSolveExists = errors.New("challenge already solved by user")

type Solve struct {
	ID            string    `gorm:"primaryKey;size:200"`
	EventID       string    `gorm:"size:64;not null;index"`
	UID           string    `gorm:"size:128;not null;uniqueIndex:idx_solves_uid_challenge"`
	TeamID        *string   `gorm:"size:64"`
	ChallengeID   string    `gorm:"size:64;not null;index;uniqueIndex:idx_solves_uid_challenge"`
	SolvedAt      time.Time `gorm:"not null"`
	PointsAwarded int       `gorm:"not null"`
}

type SolveDAO struct {
	db *gorm.DB
}

func NewSolveDAO(db *gorm.DB) *SolveDAO {
	return &SolveDAO{
		db: db,
	}
}

// InsertWithOutbox stores the solve and, in the same transaction, appends the outbox
// row built from the solve's rank on its challenge. A second solve of the same
// (uid, challenge) pair fails with ErrSolveExists and writes nothing.
func (d *SolveDAO) InsertWithOutbox(ctx context.Context, solve Solve, build func(rank int) (Outbox, error)) (int, error) {
	var rank int

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&solve).Error; err != nil {
			if isDuplicateKey(err) {
				return ErrSolveExists
			}
			return err
		}

		var earlier int64
		if err := tx.Model(&Solve{}).
			Where("challenge_id = ? AND solved_at < ?", solve.ChallengeID, solve.SolvedAt).
			Count(&earlier).Error; err != nil {
			return err
		}
		rank = int(earlier) + 1

		event, err := build(rank)
		if err != nil {
			return err
		}

		return tx.Create(&event).Error
	})
	if err != nil {
		return 0, err
	}

	return rank, nil
}

func (d *SolveDAO) FindByID(ctx context.Context, id string) (Solve, error) {
	var solve Solve

	result := d.db.WithContext(ctx).First(&solve, "id = ?", id)
	if result.Error != nil {
		return Solve{}, result.Error
	}

	return solve, nil
}

func (d *SolveDAO) FindByEvent(ctx context.Context, eventID string) ([]Solve, error) {
	var solves []Solve

	result := d.db.WithContext(ctx).Where("event_id = ?", eventID).Order("solved_at asc").Find(&solves)
	if result.Error != nil {
		return nil, result.Error
	}

	return solves, nil
}
