package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrEventNotFound     = errors.New("event not found")
	ErrEventExists       = errors.New("event already exists")
	ErrChallengeNotFound = errors.New("challenge not found")
	ErrChallengeExists   = errors.New("challenge already exists")
	ErrSecretNotFound    = errors.New("challenge flag not configured")
	ErrLeagueNotFound    = errors.New("league not found")
)

type League struct {
	ID        string `gorm:"primaryKey;size:64"`
	Name      string `gorm:"not null"`
	CreatedAt time.Time
}

type Event struct {
	ID         string    `gorm:"primaryKey;size:64"`
	Name       string    `gorm:"not null"`
	StartsAt   time.Time `gorm:"not null"`
	EndsAt     time.Time `gorm:"not null"`
	LeagueID   *string   `gorm:"size:64;index"`
	Visibility string    `gorm:"size:16;not null;default:public"`
	TeamMode   bool      `gorm:"not null;default:false"`
	FlagFormat string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type Challenge struct {
	ID          string `gorm:"primaryKey;size:64"`
	EventID     string `gorm:"size:64;not null;index"`
	Title       string `gorm:"not null"`
	Category    string `gorm:"size:32;not null"`
	PointsFixed int    `gorm:"not null"`
	Published   bool   `gorm:"not null;default:false"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type ChallengeSecret struct {
	ChallengeID   string `gorm:"primaryKey;size:64"`
	FlagHash      string `gorm:"size:64;not null"`
	CaseSensitive bool   `gorm:"not null"`
	UpdatedBy     string `gorm:"size:128"`
	UpdatedAt     time.Time
}

type EventDAO struct {
	db *gorm.DB
}

func NewEventDAO(db *gorm.DB) *EventDAO {
	return &EventDAO{
		db: db,
	}
}

func (d *EventDAO) Insert(ctx context.Context, event Event) (Event, error) {
	if err := d.db.WithContext(ctx).Create(&event).Error; err != nil {
		if isDuplicateKey(err) {
			return Event{}, ErrEventExists
		}
		return Event{}, err
	}

	return event, nil
}

func (d *EventDAO) FindByID(ctx context.Context, id string) (Event, error) {
	var event Event

	result := d.db.WithContext(ctx).First(&event, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Event{}, ErrEventNotFound
		}

		return Event{}, result.Error
	}

	return event, nil
}

func (d *EventDAO) FindByLeague(ctx context.Context, leagueID string) ([]Event, error) {
	var events []Event

	result := d.db.WithContext(ctx).Where("league_id = ?", leagueID).Order("starts_at asc").Find(&events)
	if result.Error != nil {
		return nil, result.Error
	}

	return events, nil
}

func (d *EventDAO) InsertLeague(ctx context.Context, league League) (League, error) {
	if err := d.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&league).Error; err != nil {
		return League{}, err
	}

	return league, nil
}

func (d *EventDAO) FindLeague(ctx context.Context, id string) (League, error) {
	var league League

	result := d.db.WithContext(ctx).First(&league, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return League{}, ErrLeagueNotFound
		}

		return League{}, result.Error
	}

	return league, nil
}

func (d *EventDAO) InsertChallenge(ctx context.Context, challenge Challenge) (Challenge, error) {
	if err := d.db.WithContext(ctx).Create(&challenge).Error; err != nil {
		if isDuplicateKey(err) {
			return Challenge{}, ErrChallengeExists
		}
		return Challenge{}, err
	}

	return challenge, nil
}

func (d *EventDAO) FindChallenge(ctx context.Context, id string) (Challenge, error) {
	var challenge Challenge

	result := d.db.WithContext(ctx).First(&challenge, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Challenge{}, ErrChallengeNotFound
		}

		return Challenge{}, result.Error
	}

	return challenge, nil
}

func (d *EventDAO) FindSecret(ctx context.Context, challengeID string) (ChallengeSecret, error) {
	var secret ChallengeSecret

	result := d.db.WithContext(ctx).First(&secret, "challenge_id = ?", challengeID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return ChallengeSecret{}, ErrSecretNotFound
		}

		return ChallengeSecret{}, result.Error
	}

	return secret, nil
}

// UpsertSecret overwrites any previous flag of the challenge.
func (d *EventDAO) UpsertSecret(ctx context.Context, secret ChallengeSecret) error {
	return d.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "challenge_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"flag_hash", "case_sensitive", "updated_by", "updated_at"}),
	}).Create(&secret).Error
}
