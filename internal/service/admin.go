package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
	"go.uber.org/zap"

	"github.com/jeopardy-ctf/scoring-api/internal/domain"
)

var (
	ErrInvalidEventWindow = errors.New("event must start before it ends")
	ErrInvalidRole        = errors.New("unknown role")
	ErrInvalidChallengeID = errors.New("challenge id must not contain underscores or whitespace")
)

const flagFormatTimeout = 100 * time.Millisecond

type AdminEventRepository interface {
	Create(ctx context.Context, event domain.Event) (domain.Event, error)
	FindByID(ctx context.Context, id string) (domain.Event, error)
	CreateChallenge(ctx context.Context, challenge domain.Challenge) (domain.Challenge, error)
	FindChallenge(ctx context.Context, id string) (domain.Challenge, error)
	SaveSecret(ctx context.Context, secret domain.ChallengeSecret) error
}

type AdminProfileRepository interface {
	Profile(ctx context.Context, uid string) (domain.Profile, error)
	SaveProfile(ctx context.Context, profile domain.Profile) error
}

type QuestRepository interface {
	CreateQuest(ctx context.Context, quest domain.Quest) (domain.Quest, error)
}

type AuditRepository interface {
	Record(ctx context.Context, entry domain.AuditEntry) error
}

type FlagHasher interface {
	HashFlag(raw string, caseSensitive bool) string
}

type AdminService struct {
	events       AdminEventRepository
	profiles     AdminProfileRepository
	quests       QuestRepository
	audit        AuditRepository
	leaderboards LeaderboardRecomputer
	flags        FlagHasher
	now          func() time.Time
}

func NewAdminService(
	events AdminEventRepository,
	profiles AdminProfileRepository,
	quests QuestRepository,
	audit AuditRepository,
	leaderboards LeaderboardRecomputer,
	flags FlagHasher,
) *AdminService {
	return &AdminService{
		events:       events,
		profiles:     profiles,
		quests:       quests,
		audit:        audit,
		leaderboards: leaderboards,
		flags:        flags,
		now:          time.Now,
	}
}

func (s *AdminService) requireRole(ctx context.Context, uid string, allowed ...domain.Role) error {
	profile, err := s.profiles.Profile(ctx, uid)
	if err != nil {
		return fmt.Errorf("s.profiles.Profile -> %w", err)
	}
	if profile.Disabled {
		return ErrAccountDisabled
	}
	for _, role := range allowed {
		if profile.Role == role {
			return nil
		}
	}
	return ErrForbidden
}

func compileFlagFormat(format string) (*regexp2.Regexp, error) {
	re, err := regexp2.Compile(format, regexp2.None)
	if err != nil {
		return nil, ErrInvalidFlagFormat
	}
	re.MatchTimeout = flagFormatTimeout
	return re, nil
}

// SetFlag stores the peppered hash of a challenge flag, replacing any previous
// one. The plaintext is neither stored nor logged.
func (s *AdminService) SetFlag(ctx context.Context, actorUID, challengeID, flagText string, caseSensitive bool) error {
	if err := s.requireRole(ctx, actorUID, domain.RoleOwner, domain.RoleAdmin); err != nil {
		return err
	}

	challenge, err := s.events.FindChallenge(ctx, challengeID)
	if err != nil {
		return fmt.Errorf("s.events.FindChallenge -> %w", err)
	}
	event, err := s.events.FindByID(ctx, challenge.EventID)
	if err != nil {
		return fmt.Errorf("s.events.FindByID -> %w", err)
	}

	if event.FlagFormat != "" {
		re, err := compileFlagFormat(event.FlagFormat)
		if err != nil {
			return err
		}
		ok, err := re.MatchString(strings.TrimSpace(flagText))
		if err != nil {
			return fmt.Errorf("re.MatchString -> %w", err)
		}
		if !ok {
			return ErrFlagFormatMismatch
		}
	}

	now := s.now()
	if err := s.events.SaveSecret(ctx, domain.ChallengeSecret{
		ChallengeID:   challenge.ID,
		FlagHash:      s.flags.HashFlag(flagText, caseSensitive),
		CaseSensitive: caseSensitive,
		UpdatedBy:     actorUID,
		UpdatedAt:     now,
	}); err != nil {
		return fmt.Errorf("s.events.SaveSecret -> %w", err)
	}

	if err := s.audit.Record(ctx, domain.AuditEntry{
		ActorUID:   actorUID,
		Action:     domain.ActionChallengeFlagSet,
		TargetType: "challenge",
		TargetID:   challenge.ID,
		Details: map[string]any{
			"event_id":       event.ID,
			"case_sensitive": caseSensitive,
		},
		CreatedAt: now,
	}); err != nil {
		return fmt.Errorf("s.audit.Record -> %w", err)
	}

	zap.L().Info("challenge flag configured",
		zap.String("challenge_id", challenge.ID),
		zap.String("actor_uid", actorUID),
	)

	return nil
}

func (s *AdminService) CreateEvent(ctx context.Context, actorUID string, event domain.Event) (domain.Event, error) {
	if err := s.requireRole(ctx, actorUID, domain.RoleAdmin); err != nil {
		return domain.Event{}, err
	}
	if !event.StartsAt.Before(event.EndsAt) {
		return domain.Event{}, ErrInvalidEventWindow
	}
	if event.FlagFormat != "" {
		if _, err := compileFlagFormat(event.FlagFormat); err != nil {
			return domain.Event{}, err
		}
	}
	if event.Visibility == "" {
		event.Visibility = "public"
	}

	created, err := s.events.Create(ctx, event)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.events.Create -> %w", err)
	}

	return created, nil
}

func (s *AdminService) CreateChallenge(ctx context.Context, actorUID string, challenge domain.Challenge) (domain.Challenge, error) {
	if err := s.requireRole(ctx, actorUID, domain.RoleAdmin); err != nil {
		return domain.Challenge{}, err
	}
	if !domain.ValidChallengeID(challenge.ID) {
		return domain.Challenge{}, ErrInvalidChallengeID
	}
	if _, err := s.events.FindByID(ctx, challenge.EventID); err != nil {
		return domain.Challenge{}, fmt.Errorf("s.events.FindByID -> %w", err)
	}
	challenge.Category = strings.ToLower(strings.TrimSpace(challenge.Category))

	created, err := s.events.CreateChallenge(ctx, challenge)
	if err != nil {
		return domain.Challenge{}, fmt.Errorf("s.events.CreateChallenge -> %w", err)
	}

	return created, nil
}

func (s *AdminService) CreateQuest(ctx context.Context, actorUID string, quest domain.Quest) (domain.Quest, error) {
	if err := s.requireRole(ctx, actorUID, domain.RoleAdmin); err != nil {
		return domain.Quest{}, err
	}

	created, err := s.quests.CreateQuest(ctx, quest)
	if err != nil {
		return domain.Quest{}, fmt.Errorf("s.quests.CreateQuest -> %w", err)
	}

	return created, nil
}

func (s *AdminService) Recompute(ctx context.Context, actorUID, eventID string) error {
	if err := s.requireRole(ctx, actorUID, domain.RoleOwner, domain.RoleAdmin); err != nil {
		return err
	}

	if err := s.leaderboards.RecomputeEvent(ctx, eventID); err != nil {
		return fmt.Errorf("s.leaderboards.RecomputeEvent -> %w", err)
	}

	return nil
}

// ProfileUpdate changes only the fields that are set. An empty TeamID clears the team.
type ProfileUpdate struct {
	DisplayName *string
	TeamID      *string
	Role        *domain.Role
	Disabled    *bool
}

func (s *AdminService) UpdateProfile(ctx context.Context, actorUID, uid string, update ProfileUpdate) (domain.Profile, error) {
	if err := s.requireRole(ctx, actorUID, domain.RoleAdmin); err != nil {
		return domain.Profile{}, err
	}
	if update.Role != nil && !update.Role.Valid() {
		return domain.Profile{}, ErrInvalidRole
	}

	profile, err := s.profiles.Profile(ctx, uid)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("s.profiles.Profile -> %w", err)
	}

	details := map[string]any{}
	if update.DisplayName != nil {
		profile.DisplayName = *update.DisplayName
		details["display_name"] = *update.DisplayName
	}
	if update.TeamID != nil {
		profile.TeamID = nil
		if *update.TeamID != "" {
			team := *update.TeamID
			profile.TeamID = &team
		}
		details["team_id"] = *update.TeamID
	}
	if update.Role != nil {
		profile.Role = *update.Role
		details["role"] = string(*update.Role)
	}
	if update.Disabled != nil {
		profile.Disabled = *update.Disabled
		details["disabled"] = *update.Disabled
	}

	if err := s.profiles.SaveProfile(ctx, profile); err != nil {
		return domain.Profile{}, fmt.Errorf("s.profiles.SaveProfile -> %w", err)
	}

	if err := s.audit.Record(ctx, domain.AuditEntry{
		ActorUID:   actorUID,
		Action:     domain.ActionUserProfileUpdate,
		TargetType: "user",
		TargetID:   uid,
		Details:    details,
		CreatedAt:  s.now(),
	}); err != nil {
		return domain.Profile{}, fmt.Errorf("s.audit.Record -> %w", err)
	}

	return profile, nil
}
