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
	ErrUserNotFound  = errors.New("user not found")
	ErrQuestNotFound = errors.New("quest not found")
	ErrQuestExists   = errors.New("quest already exists")
)

// User carries both the profile consumed by the submit flow and the progression document.
type User struct {
	UID         string  `gorm:"primaryKey;size:128"`
	DisplayName string  `gorm:"size:64"`
	TeamID      *string `gorm:"size:64;index"`
	Role        string  `gorm:"size:16;not null;default:player"`
	Disabled    bool    `gorm:"not null;default:false"`
	XP          int     `gorm:"not null;default:0"`
	Level       int     `gorm:"not null;default:1"`
	Badges      datatypes.JSON
	Stats       datatypes.JSON
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ProgressGrant is the ledger that makes progression writes idempotent.
type ProgressGrant struct {
	UID       string `gorm:"primaryKey;size:128"`
	GrantKey  string `gorm:"primaryKey;size:255"`
	XP        int    `gorm:"not null;default:0"`
	CreatedAt time.Time
}

type Quest struct {
	ID          string    `gorm:"primaryKey;size:36"`
	Title       string    `gorm:"not null"`
	RuleType    string    `gorm:"size:32;not null"`
	Category    string    `gorm:"size:32"`
	Target      int       `gorm:"not null"`
	RewardXP    int       `gorm:"not null;default:0"`
	RewardBadge string    `gorm:"size:64"`
	ActiveFrom  time.Time `gorm:"not null;index"`
	ActiveTo    time.Time `gorm:"not null;index"`
	CreatedAt   time.Time
}

type QuestProgress struct {
	UID         string `gorm:"primaryKey;size:128"`
	QuestID     string `gorm:"primaryKey;size:36"`
	Progress    int    `gorm:"not null;default:0"`
	Completed   bool   `gorm:"not null;default:false"`
	CompletedAt *time.Time
	UpdatedAt   time.Time
}

type UserDAO struct {
	db *gorm.DB
}

func NewUserDAO(db *gorm.DB) *UserDAO {
	return &UserDAO{
		db: db,
	}
}

func (d *UserDAO) FindByUID(ctx context.Context, uid string) (User, error) {
	var user User

	result := d.db.WithContext(ctx).First(&user, "uid = ?", uid)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return User{}, ErrUserNotFound
		}

		return User{}, result.Error
	}

	return user, nil
}

// FindOrCreate provisions a player row the first time a uid is seen.
func (d *UserDAO) FindOrCreate(ctx context.Context, uid string) (User, error) {
	user := User{UID: uid}

	result := d.db.WithContext(ctx).
		Where(User{UID: uid}).
		Attrs(User{Role: "player", Level: 1}).
		FirstOrCreate(&user)
	if result.Error != nil {
		return User{}, result.Error
	}

	return user, nil
}

// UpsertProfile writes the profile columns and leaves progression untouched.
func (d *UserDAO) UpsertProfile(ctx context.Context, user User) error {
	if user.Level == 0 {
		user.Level = 1
	}

	return d.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "uid"}},
		DoUpdates: clause.AssignmentColumns([]string{"display_name", "team_id", "role", "disabled", "updated_at"}),
	}).Create(&user).Error
}

// ApplyGrant records grant in the ledger and, only if it was not there yet, lets
// mutate change the user row under a row lock. The returned bool is false when the
// grant had already been applied.
func (d *UserDAO) ApplyGrant(ctx context.Context, grant ProgressGrant, completesQuest string, mutate func(*User) error) (bool, error) {
	applied := false

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&grant)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}

		user := User{UID: grant.UID}
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where(User{UID: grant.UID}).
			Attrs(User{Role: "player", Level: 1}).
			FirstOrCreate(&user).Error; err != nil {
			return err
		}

		if err := mutate(&user); err != nil {
			return err
		}
		if err := tx.Save(&user).Error; err != nil {
			return err
		}

		if completesQuest != "" {
			now := time.Now()
			if err := tx.Model(&QuestProgress{}).
				Where("uid = ? AND quest_id = ?", grant.UID, completesQuest).
				Updates(map[string]any{"completed": true, "completed_at": now}).Error; err != nil {
				return err
			}
		}

		applied = true
		return nil
	})
	if err != nil {
		return false, err
	}

	return applied, nil
}

// AdvanceQuest adds one step to the user's quest progress unless stepKey was already counted.
func (d *UserDAO) AdvanceQuest(ctx context.Context, uid, questID, stepKey string) (QuestProgress, bool, error) {
	var (
		progress QuestProgress
		applied  bool
	)

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&ProgressGrant{UID: uid, GrantKey: stepKey})
		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected > 0 {
			applied = true
			if err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "uid"}, {Name: "quest_id"}},
				DoUpdates: clause.Assignments(map[string]any{
					"progress":   gorm.Expr("quest_progresses.progress + 1"),
					"updated_at": time.Now(),
				}),
			}).Create(&QuestProgress{UID: uid, QuestID: questID, Progress: 1}).Error; err != nil {
				return err
			}
		}

		return tx.First(&progress, "uid = ? AND quest_id = ?", uid, questID).Error
	})
	if err != nil {
		return QuestProgress{}, false, err
	}

	return progress, applied, nil
}

func (d *UserDAO) FindQuestProgress(ctx context.Context, uid string) ([]QuestProgress, error) {
	var progress []QuestProgress

	result := d.db.WithContext(ctx).Where("uid = ?", uid).Find(&progress)
	if result.Error != nil {
		return nil, result.Error
	}

	return progress, nil
}

func (d *UserDAO) InsertQuest(ctx context.Context, quest Quest) (Quest, error) {
	if err := d.db.WithContext(ctx).Create(&quest).Error; err != nil {
		if isDuplicateKey(err) {
			return Quest{}, ErrQuestExists
		}
		return Quest{}, err
	}

	return quest, nil
}

func (d *UserDAO) FindActiveQuests(ctx context.Context, now time.Time) ([]Quest, error) {
	var quests []Quest

	result := d.db.WithContext(ctx).Where("active_from <= ? AND active_to >= ?", now, now).Find(&quests)
	if result.Error != nil {
		return nil, result.Error
	}

	return quests, nil
}
