package domain

import (
	"math"
	"time"
)

type Role string

const (
	RolePlayer Role = "player"
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
)

// Profile is the slice of the user record the scoring pipeline consumes.
type Profile struct {
	UID         string    `json:"uid"`
	DisplayName string    `json:"display_name"`
	TeamID      *string   `json:"team_id,omitempty"`
	Role        Role      `json:"role"`
	Disabled    bool      `json:"disabled"`
	CreatedAt   time.Time `json:"created_at"`
}

func (r Role) Valid() bool {
	return r == RolePlayer || r == RoleOwner || r == RoleAdmin
}

func (p Profile) CanManageChallenges() bool {
	return p.Role == RoleOwner || p.Role == RoleAdmin
}

type Stats struct {
	Solves         int            `json:"solves"`
	FirstTrySolves int            `json:"first_try_solves"`
	CategorySolves map[string]int `json:"category_solves"`
}

func (s Stats) DistinctCategories() int {
	n := 0
	for _, c := range s.CategorySolves {
		if c > 0 {
			n++
		}
	}
	return n
}

type Progress struct {
	UID    string          `json:"uid"`
	XP     int             `json:"xp"`
	Level  int             `json:"level"`
	Badges map[string]bool `json:"badges"`
	Stats  Stats           `json:"stats"`
}

func (p Progress) HasBadge(key string) bool {
	return p.Badges[key]
}

// LevelForXP returns 1 + floor(sqrt(xp/200)).
func LevelForXP(xp int) int {
	if xp <= 0 {
		return 1
	}
	return 1 + int(math.Floor(math.Sqrt(float64(xp)/200)))
}

// Grant is one idempotent progression change, identified per user by Key.
type Grant struct {
	UID   string
	Key   string
	XP    int
	Badge string
	// Solve, when set, is folded into the user's stats.
	Solve *SolveStat
	// CompletesQuest marks the quest progress row as completed.
	CompletesQuest string
}

type SolveStat struct {
	Category string
	FirstTry bool
}
