package service

import (
	"time"

	"github.com/jeopardy-ctf/scoring-api/internal/domain"
)

// BadgeRule awards Key, plus XP, once Holds reports true after a solve has been
// folded into the user's progress.
type BadgeRule struct {
	Key   string
	XP    int
	Holds func(p domain.Progress, e domain.PostSolveEvent, loc *time.Location) bool
}

func solvesAtLeast(n int) func(domain.Progress, domain.PostSolveEvent, *time.Location) bool {
	return func(p domain.Progress, _ domain.PostSolveEvent, _ *time.Location) bool {
		return p.Stats.Solves >= n
	}
}

func categoriesAtLeast(n int) func(domain.Progress, domain.PostSolveEvent, *time.Location) bool {
	return func(p domain.Progress, _ domain.PostSolveEvent, _ *time.Location) bool {
		return p.Stats.DistinctCategories() >= n
	}
}

func categoryAtLeast(category string, n int) func(domain.Progress, domain.PostSolveEvent, *time.Location) bool {
	return func(p domain.Progress, _ domain.PostSolveEvent, _ *time.Location) bool {
		return p.Stats.CategorySolves[category] >= n
	}
}

var BadgeRules = []BadgeRule{
	{Key: "first_solve", XP: 25, Holds: solvesAtLeast(1)},
	{Key: "solver_10", XP: 100, Holds: solvesAtLeast(10)},
	{Key: "solver_50", XP: 500, Holds: solvesAtLeast(50)},
	{Key: "explorer_3", XP: 75, Holds: categoriesAtLeast(3)},
	{Key: "polymath_5", XP: 200, Holds: categoriesAtLeast(5)},
	{Key: "web_5", XP: 100, Holds: categoryAtLeast("web", 5)},
	{Key: "crypto_5", XP: 100, Holds: categoryAtLeast("crypto", 5)},
	{Key: "pwn_5", XP: 100, Holds: categoryAtLeast("pwn", 5)},
	{Key: "forensics_5", XP: 100, Holds: categoryAtLeast("forensics", 5)},
	{Key: "reverse_5", XP: 100, Holds: categoryAtLeast("reverse", 5)},
	{
		Key: "sharpshooter",
		XP:  50,
		Holds: func(_ domain.Progress, e domain.PostSolveEvent, _ *time.Location) bool {
			return e.AttemptNumber == 1
		},
	},
	{
		Key: "night_owl",
		XP:  50,
		Holds: func(_ domain.Progress, e domain.PostSolveEvent, loc *time.Location) bool {
			return e.SolvedAt.In(loc).Hour() < 5
		},
	},
}
