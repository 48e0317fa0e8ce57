package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrLeaderboardNotFound = errors.New("leaderboard not found")
	ErrStandingsNotFound   = errors.New("league standings not found")
)

type Leaderboard struct {
	EventID   string `gorm:"primaryKey;size:64"`
	Kind      string `gorm:"primaryKey;size:16"`
	Rows      datatypes.JSON
	UpdatedAt time.Time
}

type LeagueStanding struct {
	LeagueID   string `gorm:"primaryKey;size:64"`
	Individual datatypes.JSON
	Teams      datatypes.JSON
	Retention  datatypes.JSON
	UpdatedAt  time.Time
}

type LeaderboardDAO struct {
	db *gorm.DB
}

func NewLeaderboardDAO(db *gorm.DB) *LeaderboardDAO {
	return &LeaderboardDAO{
		db: db,
	}
}

// Upsert replaces the stored board document wholesale.
func (d *LeaderboardDAO) Upsert(ctx context.Context, board Leaderboard) error {
	return d.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "event_id"}, {Name: "kind"}},
		DoUpdates: clause.AssignmentColumns([]string{"rows", "updated_at"}),
	}).Create(&board).Error
}

func (d *LeaderboardDAO) Find(ctx context.Context, eventID, kind string) (Leaderboard, error) {
	var board Leaderboard

	result := d.db.WithContext(ctx).First(&board, "event_id = ? AND kind = ?", eventID, kind)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Leaderboard{}, ErrLeaderboardNotFound
		}

		return Leaderboard{}, result.Error
	}

	return board, nil
}

func (d *LeaderboardDAO) UpsertStandings(ctx context.Context, standing LeagueStanding) error {
	return d.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "league_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"individual", "teams", "retention", "updated_at"}),
	}).Create(&standing).Error
}

func (d *LeaderboardDAO) FindStandings(ctx context.Context, leagueID string) (LeagueStanding, error) {
	var standing LeagueStanding

	result := d.db.WithContext(ctx).First(&standing, "league_id = ?", leagueID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return LeagueStanding{}, ErrStandingsNotFound
		}

		return LeagueStanding{}, result.Error
	}

	return standing, nil
}
