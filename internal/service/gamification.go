package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jeopardy-ctf/scoring-api/internal/domain"
	"github.com/jeopardy-ctf/scoring-api/internal/metrics"
)

type ProgressStore interface {
	Progress(ctx context.Context, uid string) (domain.Progress, error)
	ApplyGrant(ctx context.Context, grant domain.Grant) (bool, error)
	ActiveQuests(ctx context.Context, now time.Time) ([]domain.Quest, error)
	QuestProgress(ctx context.Context, uid string) ([]domain.QuestProgress, error)
	AdvanceQuest(ctx context.Context, uid, questID, stepKey string) (domain.QuestProgress, bool, error)
}

func solveGrantKey(solveID string) string { return "solve:" + solveID }

func badgeGrantKey(badge string) string { return "badge:" + badge }

func questStepKey(questID, solveID string) string {
	return "quest:" + questID + ":step:" + solveID
}

func questDoneKey(questID string) string { return "quest:" + questID + ":done" }

// GamificationService turns a new solve into XP, badges and quest progress.
// Every write goes through the grant ledger, so handling the same event twice
// changes nothing the second time.
type GamificationService struct {
	store ProgressStore
	rules []BadgeRule
	loc   *time.Location
}

func NewGamificationService(store ProgressStore, loc *time.Location) *GamificationService {
	if loc == nil {
		loc = time.Local
	}
	return &GamificationService{
		store: store,
		rules: BadgeRules,
		loc:   loc,
	}
}

// HandleSolve applies every step it can and returns the joined failures.
func (s *GamificationService) HandleSolve(ctx context.Context, e domain.PostSolveEvent) error {
	log := zap.L().With(zap.String("uid", e.UID), zap.String("solve_id", e.SolveID))

	if _, err := s.store.ApplyGrant(ctx, domain.Grant{
		UID:   e.UID,
		Key:   solveGrantKey(e.SolveID),
		XP:    2 * e.Points,
		Solve: &domain.SolveStat{Category: strings.ToLower(e.Category), FirstTry: e.AttemptNumber == 1},
	}); err != nil {
		s.fail(log, "solve xp", err)
		return fmt.Errorf("s.store.ApplyGrant -> %w", err)
	}

	var errs []error
	if err := s.awardBadges(ctx, e); err != nil {
		s.fail(log, "badges", err)
		errs = append(errs, err)
	}
	if err := s.advanceQuests(ctx, e); err != nil {
		s.fail(log, "quests", err)
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

func (s *GamificationService) fail(log *zap.Logger, step string, err error) {
	metrics.GamificationFailures.Inc()
	log.Error("gamification step failed", zap.String("step", step), zap.Error(err))
}

func (s *GamificationService) awardBadges(ctx context.Context, e domain.PostSolveEvent) error {
	progress, err := s.store.Progress(ctx, e.UID)
	if err != nil {
		return fmt.Errorf("s.store.Progress -> %w", err)
	}

	var errs []error
	for _, rule := range s.rules {
		if progress.HasBadge(rule.Key) || !rule.Holds(progress, e, s.loc) {
			continue
		}

		applied, err := s.store.ApplyGrant(ctx, domain.Grant{
			UID:   e.UID,
			Key:   badgeGrantKey(rule.Key),
			XP:    rule.XP,
			Badge: rule.Key,
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("badge %s: %w", rule.Key, err))
			continue
		}
		if applied {
			zap.L().Info("badge awarded", zap.String("uid", e.UID), zap.String("badge", rule.Key))
		}
	}

	return errors.Join(errs...)
}

func (s *GamificationService) advanceQuests(ctx context.Context, e domain.PostSolveEvent) error {
	quests, err := s.store.ActiveQuests(ctx, e.SolvedAt)
	if err != nil {
		return fmt.Errorf("s.store.ActiveQuests -> %w", err)
	}
	if len(quests) == 0 {
		return nil
	}

	existing, err := s.store.QuestProgress(ctx, e.UID)
	if err != nil {
		return fmt.Errorf("s.store.QuestProgress -> %w", err)
	}
	completed := make(map[string]bool, len(existing))
	for _, p := range existing {
		completed[p.QuestID] = p.Completed
	}

	var errs []error
	for _, q := range quests {
		if completed[q.ID] || !q.ActiveAt(e.SolvedAt) || !q.Matches(e.Category) {
			continue
		}

		progress, _, err := s.store.AdvanceQuest(ctx, e.UID, q.ID, questStepKey(q.ID, e.SolveID))
		if err != nil {
			errs = append(errs, fmt.Errorf("quest %s: %w", q.ID, err))
			continue
		}
		if progress.Completed || progress.Progress < q.Target {
			continue
		}

		applied, err := s.store.ApplyGrant(ctx, domain.Grant{
			UID:            e.UID,
			Key:            questDoneKey(q.ID),
			XP:             q.RewardXP,
			Badge:          q.RewardBadge,
			CompletesQuest: q.ID,
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("quest %s completion: %w", q.ID, err))
			continue
		}
		if applied {
			zap.L().Info("quest completed", zap.String("uid", e.UID), zap.String("quest_id", q.ID))
		}
	}

	return errors.Join(errs...)
}
