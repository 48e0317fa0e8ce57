package request

import (
	"errors"
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
)

var (
	errEventWindow   = errors.New("ends_at must be after starts_at")
	errQuestCategory = errors.New("category is required for solve_category quests")
	errQuestWindow   = errors.New("active_to must be after active_from")
)

// challengeIDPattern keeps the solve id separator out of challenge ids.
var challengeIDPattern = regexp.MustCompile(`^[^_\s]+$`)

type SetFlagRequest struct {
	Flag          string `json:"flag"`
	CaseSensitive bool   `json:"caseSensitive"`
}

func (req *SetFlagRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Flag, validation.Required, validation.Length(1, maxFlagLength)),
	)
}

type CreateEventRequest struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	StartsAt   time.Time `json:"starts_at"`
	EndsAt     time.Time `json:"ends_at"`
	LeagueID   *string   `json:"league_id,omitempty"`
	Visibility string    `json:"visibility,omitempty"`
	TeamMode   bool      `json:"team_mode"`
	FlagFormat string    `json:"flag_format,omitempty"`
}

func (req *CreateEventRequest) Validate() error {
	err := validation.ValidateStruct(
		req,
		validation.Field(&req.ID, validation.Required, validation.Length(1, 64)),
		validation.Field(&req.Name, validation.Required),
		validation.Field(&req.StartsAt, validation.Required),
		validation.Field(&req.EndsAt, validation.Required),
		validation.Field(&req.Visibility, validation.In("public", "private")),
	)
	if err != nil {
		return err
	}

	if !req.StartsAt.Before(req.EndsAt) {
		return errEventWindow
	}

	return nil
}

type CreateChallengeRequest struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Category    string `json:"category"`
	PointsFixed int    `json:"points_fixed"`
	Published   bool   `json:"published"`
}

func (req *CreateChallengeRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.ID, validation.Required, validation.Length(1, 64), validation.Match(challengeIDPattern).Error("must not contain underscores or whitespace")),
		validation.Field(&req.Title, validation.Required),
		validation.Field(&req.Category, validation.Required),
		validation.Field(&req.PointsFixed, validation.Min(0)),
	)
}

type CreateQuestRequest struct {
	Title       string    `json:"title"`
	RuleType    string    `json:"rule_type"`
	Category    string    `json:"category,omitempty"`
	Target      int       `json:"target"`
	RewardXP    int       `json:"reward_xp"`
	RewardBadge string    `json:"reward_badge,omitempty"`
	ActiveFrom  time.Time `json:"active_from"`
	ActiveTo    time.Time `json:"active_to"`
}

func (req *CreateQuestRequest) Validate() error {
	err := validation.ValidateStruct(
		req,
		validation.Field(&req.Title, validation.Required),
		validation.Field(&req.RuleType, validation.Required, validation.In("solve_total", "solve_category")),
		validation.Field(&req.Target, validation.Required, validation.Min(1)),
		validation.Field(&req.RewardXP, validation.Min(0)),
		validation.Field(&req.ActiveFrom, validation.Required),
		validation.Field(&req.ActiveTo, validation.Required),
	)
	if err != nil {
		return err
	}

	if req.RuleType == "solve_category" && req.Category == "" {
		return errQuestCategory
	}
	if !req.ActiveFrom.Before(req.ActiveTo) {
		return errQuestWindow
	}

	return nil
}

type UpdateProfileRequest struct {
	DisplayName *string `json:"display_name,omitempty"`
	TeamID      *string `json:"team_id,omitempty"`
	Role        *string `json:"role,omitempty"`
	Disabled    *bool   `json:"disabled,omitempty"`
}

func (req *UpdateProfileRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Role, validation.NilOrNotEmpty, validation.In("player", "owner", "admin")),
		validation.Field(&req.DisplayName, validation.NilOrNotEmpty, validation.Length(1, 64)),
	)
}
