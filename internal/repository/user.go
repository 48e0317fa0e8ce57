package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/jeopardy-ctf/scoring-api/internal/domain"
	"github.com/jeopardy-ctf/scoring-api/internal/repository/dao"
)

var (
	ErrUserNotFound  = dao.ErrUserNotFound
	ErrQuestNotFound = dao.ErrQuestNotFound
	ErrQuestExists   = dao.ErrQuestExists
)

type UserDAO interface {
	FindByUID(ctx context.Context, uid string) (dao.User, error)
	FindOrCreate(ctx context.Context, uid string) (dao.User, error)
	UpsertProfile(ctx context.Context, user dao.User) error
	ApplyGrant(ctx context.Context, grant dao.ProgressGrant, completesQuest string, mutate func(*dao.User) error) (bool, error)
	AdvanceQuest(ctx context.Context, uid, questID, stepKey string) (dao.QuestProgress, bool, error)
	FindQuestProgress(ctx context.Context, uid string) ([]dao.QuestProgress, error)
	InsertQuest(ctx context.Context, quest dao.Quest) (dao.Quest, error)
	FindActiveQuests(ctx context.Context, now time.Time) ([]dao.Quest, error)
}

type UserRepository struct {
	dao UserDAO
}

func NewUserRepository(dao UserDAO) *UserRepository {
	return &UserRepository{
		dao: dao,
	}
}

// Profile returns the user's profile, provisioning a player row on first sight.
func (r *UserRepository) Profile(ctx context.Context, uid string) (domain.Profile, error) {
	found, err := r.dao.FindOrCreate(ctx, uid)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("r.dao.FindOrCreate -> %w", err)
	}

	return r.profileDaoToDomain(found), nil
}

func (r *UserRepository) SaveProfile(ctx context.Context, profile domain.Profile) error {
	if err := r.dao.UpsertProfile(ctx, dao.User{
		UID:         profile.UID,
		DisplayName: profile.DisplayName,
		TeamID:      profile.TeamID,
		Role:        string(profile.Role),
		Disabled:    profile.Disabled,
	}); err != nil {
		return fmt.Errorf("r.dao.UpsertProfile -> %w", err)
	}

	return nil
}

func (r *UserRepository) Progress(ctx context.Context, uid string) (domain.Progress, error) {
	found, err := r.dao.FindByUID(ctx, uid)
	if err != nil {
		return domain.Progress{}, fmt.Errorf("r.dao.FindByUID -> %w", err)
	}

	return progressDaoToDomain(found)
}

// ApplyGrant applies grant exactly once per (uid, key). It reports whether this
// call was the one that applied it.
func (r *UserRepository) ApplyGrant(ctx context.Context, grant domain.Grant) (bool, error) {
	applied, err := r.dao.ApplyGrant(ctx, dao.ProgressGrant{
		UID:      grant.UID,
		GrantKey: grant.Key,
		XP:       grant.XP,
	}, grant.CompletesQuest, func(u *dao.User) error {
		progress, err := progressDaoToDomain(*u)
		if err != nil {
			return err
		}

		progress.XP += grant.XP
		progress.Level = domain.LevelForXP(progress.XP)
		if grant.Badge != "" {
			progress.Badges[grant.Badge] = true
		}
		if grant.Solve != nil {
			progress.Stats.Solves++
			if grant.Solve.FirstTry {
				progress.Stats.FirstTrySolves++
			}
			if grant.Solve.Category != "" {
				progress.Stats.CategorySolves[grant.Solve.Category]++
			}
		}

		return progressDomainToDao(progress, u)
	})
	if err != nil {
		return false, fmt.Errorf("r.dao.ApplyGrant -> %w", err)
	}

	return applied, nil
}

func (r *UserRepository) AdvanceQuest(ctx context.Context, uid, questID, stepKey string) (domain.QuestProgress, bool, error) {
	found, applied, err := r.dao.AdvanceQuest(ctx, uid, questID, stepKey)
	if err != nil {
		return domain.QuestProgress{}, false, fmt.Errorf("r.dao.AdvanceQuest -> %w", err)
	}

	return questProgressDaoToDomain(found), applied, nil
}

func (r *UserRepository) QuestProgress(ctx context.Context, uid string) ([]domain.QuestProgress, error) {
	found, err := r.dao.FindQuestProgress(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindQuestProgress -> %w", err)
	}

	progress := make([]domain.QuestProgress, 0, len(found))
	for _, p := range found {
		progress = append(progress, questProgressDaoToDomain(p))
	}

	return progress, nil
}

func (r *UserRepository) CreateQuest(ctx context.Context, quest domain.Quest) (domain.Quest, error) {
	if quest.ID == "" {
		quest.ID = uuid.NewString()
	}

	created, err := r.dao.InsertQuest(ctx, dao.Quest{
		ID:          quest.ID,
		Title:       quest.Title,
		RuleType:    string(quest.RuleType),
		Category:    quest.Category,
		Target:      quest.Target,
		RewardXP:    quest.RewardXP,
		RewardBadge: quest.RewardBadge,
		ActiveFrom:  quest.ActiveFrom,
		ActiveTo:    quest.ActiveTo,
	})
	if err != nil {
		return domain.Quest{}, fmt.Errorf("r.dao.InsertQuest -> %w", err)
	}

	return questDaoToDomain(created), nil
}

func (r *UserRepository) ActiveQuests(ctx context.Context, now time.Time) ([]domain.Quest, error) {
	found, err := r.dao.FindActiveQuests(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindActiveQuests -> %w", err)
	}

	quests := make([]domain.Quest, 0, len(found))
	for _, q := range found {
		quests = append(quests, questDaoToDomain(q))
	}

	return quests, nil
}

func (r *UserRepository) profileDaoToDomain(u dao.User) domain.Profile {
	return domain.Profile{
		UID:         u.UID,
		DisplayName: u.DisplayName,
		TeamID:      u.TeamID,
		Role:        domain.Role(u.Role),
		Disabled:    u.Disabled,
		CreatedAt:   u.CreatedAt,
	}
}

func progressDaoToDomain(u dao.User) (domain.Progress, error) {
	progress := domain.Progress{
		UID:    u.UID,
		XP:     u.XP,
		Level:  u.Level,
		Badges: map[string]bool{},
		Stats:  domain.Stats{CategorySolves: map[string]int{}},
	}

	if len(u.Badges) > 0 {
		var badges []string
		if err := json.Unmarshal(u.Badges, &badges); err != nil {
			return domain.Progress{}, fmt.Errorf("json.Unmarshal badges -> %w", err)
		}
		for _, b := range badges {
			progress.Badges[b] = true
		}
	}
	if len(u.Stats) > 0 {
		if err := json.Unmarshal(u.Stats, &progress.Stats); err != nil {
			return domain.Progress{}, fmt.Errorf("json.Unmarshal stats -> %w", err)
		}
		if progress.Stats.CategorySolves == nil {
			progress.Stats.CategorySolves = map[string]int{}
		}
	}
	if progress.Level < 1 {
		progress.Level = domain.LevelForXP(progress.XP)
	}

	return progress, nil
}

func progressDomainToDao(p domain.Progress, u *dao.User) error {
	badges := make([]string, 0, len(p.Badges))
	for b, held := range p.Badges {
		if held {
			badges = append(badges, b)
		}
	}
	sort.Strings(badges)

	badgesJSON, err := json.Marshal(badges)
	if err != nil {
		return fmt.Errorf("json.Marshal badges -> %w", err)
	}
	statsJSON, err := json.Marshal(p.Stats)
	if err != nil {
		return fmt.Errorf("json.Marshal stats -> %w", err)
	}

	u.XP = p.XP
	u.Level = p.Level
	u.Badges = datatypes.JSON(badgesJSON)
	u.Stats = datatypes.JSON(statsJSON)

	return nil
}

func questDaoToDomain(q dao.Quest) domain.Quest {
	return domain.Quest{
		ID:          q.ID,
		Title:       q.Title,
		RuleType:    domain.QuestRule(q.RuleType),
		Category:    q.Category,
		Target:      q.Target,
		RewardXP:    q.RewardXP,
		RewardBadge: q.RewardBadge,
		ActiveFrom:  q.ActiveFrom,
		ActiveTo:    q.ActiveTo,
	}
}

func questProgressDaoToDomain(p dao.QuestProgress) domain.QuestProgress {
	return domain.QuestProgress{
		UID:         p.UID,
		QuestID:     p.QuestID,
		Progress:    p.Progress,
		Completed:   p.Completed,
		CompletedAt: p.CompletedAt,
	}
}
