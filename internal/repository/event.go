package repository

import (
	"context"
	"fmt"

	"github.com/jeopardy-ctf/scoring-api/internal/domain"
	"github.com/jeopardy-ctf/scoring-api/internal/repository/dao"
)

var (
	ErrEventNotFound     = dao.ErrEventNotFound
	ErrEventExists       = dao.ErrEventExists
	ErrChallengeNotFound = dao.ErrChallengeNotFound
	ErrChallengeExists   = dao.ErrChallengeExists
	ErrSecretNotFound    = dao.ErrSecretNotFound
	ErrLeagueNotFound    = dao.ErrLeagueNotFound
)

type EventDAO interface {
	Insert(ctx context.Context, event dao.Event) (dao.Event, error)
	FindByID(ctx context.Context, id string) (dao.Event, error)
	FindByLeague(ctx context.Context, leagueID string) ([]dao.Event, error)
	InsertLeague(ctx context.Context, league dao.League) (dao.League, error)
	InsertChallenge(ctx context.Context, challenge dao.Challenge) (dao.Challenge, error)
	FindChallenge(ctx context.Context, id string) (dao.Challenge, error)
	FindSecret(ctx context.Context, challengeID string) (dao.ChallengeSecret, error)
	UpsertSecret(ctx context.Context, secret dao.ChallengeSecret) error
}

type EventRepository struct {
	dao EventDAO
}

func NewEventRepository(dao EventDAO) *EventRepository {
	return &EventRepository{
		dao: dao,
	}
}

func (r *EventRepository) Create(ctx context.Context, event domain.Event) (domain.Event, error) {
	if event.LeagueID != nil && *event.LeagueID != "" {
		if _, err := r.dao.InsertLeague(ctx, dao.League{ID: *event.LeagueID, Name: *event.LeagueID}); err != nil {
			return domain.Event{}, fmt.Errorf("r.dao.InsertLeague -> %w", err)
		}
	}

	created, err := r.dao.Insert(ctx, dao.Event{
		ID:         event.ID,
		Name:       event.Name,
		StartsAt:   event.StartsAt,
		EndsAt:     event.EndsAt,
		LeagueID:   event.LeagueID,
		Visibility: event.Visibility,
		TeamMode:   event.TeamMode,
		FlagFormat: event.FlagFormat,
	})
	if err != nil {
		return domain.Event{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *EventRepository) FindByID(ctx context.Context, id string) (domain.Event, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Event{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *EventRepository) FindByLeague(ctx context.Context, leagueID string) ([]domain.Event, error) {
	found, err := r.dao.FindByLeague(ctx, leagueID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByLeague -> %w", err)
	}

	events := make([]domain.Event, 0, len(found))
	for _, e := range found {
		events = append(events, r.daoToDomain(e))
	}

	return events, nil
}

func (r *EventRepository) CreateChallenge(ctx context.Context, challenge domain.Challenge) (domain.Challenge, error) {
	created, err := r.dao.InsertChallenge(ctx, dao.Challenge{
		ID:          challenge.ID,
		EventID:     challenge.EventID,
		Title:       challenge.Title,
		Category:    challenge.Category,
		PointsFixed: challenge.PointsFixed,
		Published:   challenge.Published,
	})
	if err != nil {
		return domain.Challenge{}, fmt.Errorf("r.dao.InsertChallenge -> %w", err)
	}

	return r.challengeDaoToDomain(created), nil
}

func (r *EventRepository) FindChallenge(ctx context.Context, id string) (domain.Challenge, error) {
	found, err := r.dao.FindChallenge(ctx, id)
	if err != nil {
		return domain.Challenge{}, fmt.Errorf("r.dao.FindChallenge -> %w", err)
	}

	return r.challengeDaoToDomain(found), nil
}

func (r *EventRepository) FindSecret(ctx context.Context, challengeID string) (domain.ChallengeSecret, error) {
	found, err := r.dao.FindSecret(ctx, challengeID)
	if err != nil {
		return domain.ChallengeSecret{}, fmt.Errorf("r.dao.FindSecret -> %w", err)
	}

	return domain.ChallengeSecret{
		ChallengeID:   found.ChallengeID,
		FlagHash:      found.FlagHash,
		CaseSensitive: found.CaseSensitive,
		UpdatedBy:     found.UpdatedBy,
		UpdatedAt:     found.UpdatedAt,
	}, nil
}

func (r *EventRepository) SaveSecret(ctx context.Context, secret domain.ChallengeSecret) error {
	err := r.dao.UpsertSecret(ctx, dao.ChallengeSecret{
		ChallengeID:   secret.ChallengeID,
		FlagHash:      secret.FlagHash,
		CaseSensitive: secret.CaseSensitive,
		UpdatedBy:     secret.UpdatedBy,
		UpdatedAt:     secret.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("r.dao.UpsertSecret -> %w", err)
	}

	return nil
}

func (r *EventRepository) daoToDomain(e dao.Event) domain.Event {
	return domain.Event{
		ID:         e.ID,
		Name:       e.Name,
		StartsAt:   e.StartsAt,
		EndsAt:     e.EndsAt,
		LeagueID:   e.LeagueID,
		Visibility: e.Visibility,
		TeamMode:   e.TeamMode,
		FlagFormat: e.FlagFormat,
		CreatedAt:  e.CreatedAt,
		UpdatedAt:  e.UpdatedAt,
	}
}

func (r *EventRepository) challengeDaoToDomain(c dao.Challenge) domain.Challenge {
	return domain.Challenge{
		ID:          c.ID,
		EventID:     c.EventID,
		Title:       c.Title,
		Category:    c.Category,
		PointsFixed: c.PointsFixed,
		Published:   c.Published,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}
