package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"github.com/jeopardy-ctf/scoring-api/internal/domain"
	"github.com/jeopardy-ctf/scoring-api/internal/repository/dao"
)

var (
	ErrLeaderboardNotFound = dao.ErrLeaderboardNotFound
	ErrStandingsNotFound   = dao.ErrStandingsNotFound
)

type LeaderboardDAO interface {
	Upsert(ctx context.Context, board dao.Leaderboard) error
	Find(ctx context.Context, eventID, kind string) (dao.Leaderboard, error)
	UpsertStandings(ctx context.Context, standing dao.LeagueStanding) error
	FindStandings(ctx context.Context, leagueID string) (dao.LeagueStanding, error)
}

type LeaderboardRepository struct {
	dao LeaderboardDAO
}

func NewLeaderboardRepository(dao LeaderboardDAO) *LeaderboardRepository {
	return &LeaderboardRepository{
		dao: dao,
	}
}

func (r *LeaderboardRepository) Save(ctx context.Context, board domain.Leaderboard) error {
	rows, err := marshalRows(board.Rows)
	if err != nil {
		return err
	}

	if err := r.dao.Upsert(ctx, dao.Leaderboard{
		EventID:   board.EventID,
		Kind:      string(board.Kind),
		Rows:      rows,
		UpdatedAt: board.UpdatedAt,
	}); err != nil {
		return fmt.Errorf("r.dao.Upsert -> %w", err)
	}

	return nil
}

func (r *LeaderboardRepository) Find(ctx context.Context, eventID string, kind domain.LeaderboardKind) (domain.Leaderboard, error) {
	found, err := r.dao.Find(ctx, eventID, string(kind))
	if err != nil {
		return domain.Leaderboard{}, fmt.Errorf("r.dao.Find -> %w", err)
	}

	board := domain.Leaderboard{
		EventID:   found.EventID,
		Kind:      domain.LeaderboardKind(found.Kind),
		UpdatedAt: found.UpdatedAt,
	}
	if board.Rows, err = unmarshalRows(found.Rows); err != nil {
		return domain.Leaderboard{}, err
	}

	return board, nil
}

func (r *LeaderboardRepository) SaveStandings(ctx context.Context, standings domain.LeagueStandings) error {
	individual, err := marshalRows(standings.Individual)
	if err != nil {
		return err
	}
	teams, err := marshalRows(standings.Teams)
	if err != nil {
		return err
	}
	retention, err := json.Marshal(standings.Retention)
	if err != nil {
		return fmt.Errorf("json.Marshal -> %w", err)
	}

	if err := r.dao.UpsertStandings(ctx, dao.LeagueStanding{
		LeagueID:   standings.LeagueID,
		Individual: individual,
		Teams:      teams,
		Retention:  datatypes.JSON(retention),
		UpdatedAt:  standings.UpdatedAt,
	}); err != nil {
		return fmt.Errorf("r.dao.UpsertStandings -> %w", err)
	}

	return nil
}

func (r *LeaderboardRepository) FindStandings(ctx context.Context, leagueID string) (domain.LeagueStandings, error) {
	found, err := r.dao.FindStandings(ctx, leagueID)
	if err != nil {
		return domain.LeagueStandings{}, fmt.Errorf("r.dao.FindStandings -> %w", err)
	}

	standings := domain.LeagueStandings{
		LeagueID:  found.LeagueID,
		UpdatedAt: found.UpdatedAt,
	}
	if standings.Individual, err = unmarshalRows(found.Individual); err != nil {
		return domain.LeagueStandings{}, err
	}
	if standings.Teams, err = unmarshalRows(found.Teams); err != nil {
		return domain.LeagueStandings{}, err
	}
	if len(found.Retention) > 0 {
		if err := json.Unmarshal(found.Retention, &standings.Retention); err != nil {
			return domain.LeagueStandings{}, fmt.Errorf("json.Unmarshal -> %w", err)
		}
	}

	return standings, nil
}

func marshalRows(rows []domain.LeaderboardRow) (datatypes.JSON, error) {
	if rows == nil {
		rows = []domain.LeaderboardRow{}
	}
	data, err := json.Marshal(rows)
	if err != nil {
		return nil, fmt.Errorf("json.Marshal -> %w", err)
	}
	return datatypes.JSON(data), nil
}

func unmarshalRows(data datatypes.JSON) ([]domain.LeaderboardRow, error) {
	rows := []domain.LeaderboardRow{}
	if len(data) == 0 {
		return rows, nil
	}
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("json.Unmarshal -> %w", err)
	}
	return rows, nil
}
