package domain

import "time"

const (
	ActionChallengeFlagSet  = "challenge.flag.set"
	ActionUserProfileUpdate = "user.profile.update"
)

type AuditEntry struct {
	ID         string         `json:"id"`
	ActorUID   string         `json:"actor_uid"`
	Action     string         `json:"action"`
	TargetType string         `json:"target_type"`
	TargetID   string         `json:"target_id"`
	Details    map[string]any `json:"details,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}
