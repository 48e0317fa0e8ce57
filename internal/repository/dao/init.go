package dao

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func InitTables(db *gorm.DB) error {
	return db.AutoMigrate(
		&League{},
		&Event{},
		&Challenge{},
		&ChallengeSecret{},
		&Submission{},
		&Solve{},
		&Leaderboard{},
		&LeagueStanding{},
		&User{},
		&ProgressGrant{},
		&Quest{},
		&QuestProgress{},
		&AuditLog{},
		&Outbox{},
		&DLQ{},
	)
}

// isDuplicateKey recognizes unique violations whether or not gorm translated them.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
