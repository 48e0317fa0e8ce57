package domain

import (
	"strings"
	"time"
)

type QuestRule string

const (
	QuestSolveTotal    QuestRule = "solve_total"
	QuestSolveCategory QuestRule = "solve_category"
)

type Quest struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	RuleType    QuestRule `json:"rule_type"`
	Category    string    `json:"category,omitempty"`
	Target      int       `json:"target"`
	RewardXP    int       `json:"reward_xp"`
	RewardBadge string    `json:"reward_badge,omitempty"`
	ActiveFrom  time.Time `json:"active_from"`
	ActiveTo    time.Time `json:"active_to"`
}

func (q Quest) ActiveAt(now time.Time) bool {
	return !now.Before(q.ActiveFrom) && !now.After(q.ActiveTo)
}

// Matches reports whether a solve in category advances the quest.
func (q Quest) Matches(category string) bool {
	switch q.RuleType {
	case QuestSolveTotal:
		return true
	case QuestSolveCategory:
		return strings.EqualFold(q.Category, category)
	default:
		return false
	}
}

type QuestProgress struct {
	UID         string     `json:"uid"`
	QuestID     string     `json:"quest_id"`
	Progress    int        `json:"progress"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}
