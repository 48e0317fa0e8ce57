package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jeopardy-ctf/scoring-api/internal/cache"
	"github.com/jeopardy-ctf/scoring-api/internal/domain"
	"github.com/jeopardy-ctf/scoring-api/internal/metrics"
	"github.com/jeopardy-ctf/scoring-api/internal/repository"
	"github.com/jeopardy-ctf/scoring-api/internal/scoring"
)

type SolveReader interface {
	FindByEvent(ctx context.Context, eventID string) ([]domain.Solve, error)
}

type LeagueEventReader interface {
	FindByID(ctx context.Context, id string) (domain.Event, error)
	FindByLeague(ctx context.Context, leagueID string) ([]domain.Event, error)
}

type LeaderboardStore interface {
	Save(ctx context.Context, board domain.Leaderboard) error
	Find(ctx context.Context, eventID string, kind domain.LeaderboardKind) (domain.Leaderboard, error)
	SaveStandings(ctx context.Context, standings domain.LeagueStandings) error
	FindStandings(ctx context.Context, leagueID string) (domain.LeagueStandings, error)
}

type LeaderboardCache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	SetIfAbsent(ctx context.Context, key string, value any) error
	Delete(ctx context.Context, keys ...string) error
}

type LeaderboardService struct {
	events LeagueEventReader
	solves SolveReader
	store  LeaderboardStore
	cache  LeaderboardCache
	now    func() time.Time

	// locks serializes recomputes of one scope so an older snapshot never
	// overwrites a newer one written by this process.
	locks sync.Map
}

func NewLeaderboardService(events LeagueEventReader, solves SolveReader, store LeaderboardStore, cache LeaderboardCache) *LeaderboardService {
	return &LeaderboardService{
		events: events,
		solves: solves,
		store:  store,
		cache:  cache,
		now:    time.Now,
	}
}

func (s *LeaderboardService) lock(scope string) func() {
	v, _ := s.locks.LoadOrStore(scope, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// RecomputeEvent rebuilds both event boards from the full solve ledger, then
// the league standings when the event belongs to a league.
func (s *LeaderboardService) RecomputeEvent(ctx context.Context, eventID string) error {
	start := time.Now()

	event, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		metrics.LeaderboardRecomputes.WithLabelValues("event", "error").Inc()
		return fmt.Errorf("s.events.FindByID -> %w", err)
	}

	if err := s.recomputeEvent(ctx, eventID); err != nil {
		metrics.LeaderboardRecomputes.WithLabelValues("event", "error").Inc()
		return err
	}
	metrics.LeaderboardRecomputes.WithLabelValues("event", "ok").Inc()
	metrics.LeaderboardRecomputeSeconds.Observe(time.Since(start).Seconds())

	if event.LeagueID != nil && *event.LeagueID != "" {
		if err := s.RecomputeLeague(ctx, *event.LeagueID); err != nil {
			return err
		}
	}

	return nil
}

func (s *LeaderboardService) recomputeEvent(ctx context.Context, eventID string) error {
	unlock := s.lock("event:" + eventID)
	defer unlock()

	solves, err := s.solves.FindByEvent(ctx, eventID)
	if err != nil {
		return fmt.Errorf("s.solves.FindByEvent -> %w", err)
	}

	individual, teams := scoring.EventBoards(solves)
	now := s.now()

	boards := []domain.Leaderboard{
		{EventID: eventID, Kind: domain.LeaderboardIndividual, Rows: individual, UpdatedAt: now},
		{EventID: eventID, Kind: domain.LeaderboardTeams, Rows: teams, UpdatedAt: now},
	}
	for _, board := range boards {
		if err := s.store.Save(ctx, board); err != nil {
			return fmt.Errorf("s.store.Save -> %w", err)
		}
	}
	for _, board := range boards {
		s.publish(ctx, cache.EventBoardKey(eventID, string(board.Kind)), board)
	}

	return nil
}

func (s *LeaderboardService) RecomputeLeague(ctx context.Context, leagueID string) error {
	unlock := s.lock("league:" + leagueID)
	defer unlock()

	if err := s.recomputeLeague(ctx, leagueID); err != nil {
		metrics.LeaderboardRecomputes.WithLabelValues("league", "error").Inc()
		return err
	}
	metrics.LeaderboardRecomputes.WithLabelValues("league", "ok").Inc()

	return nil
}

func (s *LeaderboardService) recomputeLeague(ctx context.Context, leagueID string) error {
	events, err := s.events.FindByLeague(ctx, leagueID)
	if err != nil {
		return fmt.Errorf("s.events.FindByLeague -> %w", err)
	}

	boards := make([]scoring.EventBoard, 0, len(events))
	for _, e := range events {
		individual, err := s.storedRows(ctx, e.ID, domain.LeaderboardIndividual)
		if err != nil {
			return err
		}
		teams, err := s.storedRows(ctx, e.ID, domain.LeaderboardTeams)
		if err != nil {
			return err
		}
		boards = append(boards, scoring.EventBoard{EventID: e.ID, Individual: individual, Teams: teams})
	}

	rollup := scoring.LeagueStandings(boards)
	standings := domain.LeagueStandings{
		LeagueID:   leagueID,
		Individual: rollup.Individual,
		Teams:      rollup.Teams,
		Retention:  rollup.Retention,
		UpdatedAt:  s.now(),
	}
	if err := s.store.SaveStandings(ctx, standings); err != nil {
		return fmt.Errorf("s.store.SaveStandings -> %w", err)
	}

	s.publish(ctx, cache.LeagueStandingsKey(leagueID), standings)

	return nil
}

// storedRows treats an event nobody has scored in yet as an empty board.
func (s *LeaderboardService) storedRows(ctx context.Context, eventID string, kind domain.LeaderboardKind) ([]domain.LeaderboardRow, error) {
	board, err := s.store.Find(ctx, eventID, kind)
	if err != nil {
		if errors.Is(err, repository.ErrLeaderboardNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("s.store.Find -> %w", err)
	}
	return board.Rows, nil
}

func (s *LeaderboardService) EventLeaderboard(ctx context.Context, eventID string, kind domain.LeaderboardKind) (domain.Leaderboard, error) {
	key := cache.EventBoardKey(eventID, string(kind))

	var cached domain.Leaderboard
	if s.cacheGet(ctx, key, &cached) {
		return cached, nil
	}

	board, err := s.store.Find(ctx, eventID, kind)
	if err != nil {
		if !errors.Is(err, repository.ErrLeaderboardNotFound) {
			return domain.Leaderboard{}, fmt.Errorf("s.store.Find -> %w", err)
		}
		if _, err := s.events.FindByID(ctx, eventID); err != nil {
			return domain.Leaderboard{}, fmt.Errorf("s.events.FindByID -> %w", err)
		}
		board = domain.Leaderboard{EventID: eventID, Kind: kind, Rows: []domain.LeaderboardRow{}}
	}

	s.cacheFill(ctx, key, board)

	return board, nil
}

func (s *LeaderboardService) LeagueStandings(ctx context.Context, leagueID string) (domain.LeagueStandings, error) {
	key := cache.LeagueStandingsKey(leagueID)

	var cached domain.LeagueStandings
	if s.cacheGet(ctx, key, &cached) {
		return cached, nil
	}

	standings, err := s.store.FindStandings(ctx, leagueID)
	if err != nil {
		return domain.LeagueStandings{}, fmt.Errorf("s.store.FindStandings -> %w", err)
	}

	s.cacheFill(ctx, key, standings)

	return standings, nil
}

// Cache failures degrade to database reads; they are never returned to callers.
func (s *LeaderboardService) cacheGet(ctx context.Context, key string, dst any) bool {
	hit, err := s.cache.Get(ctx, key, dst)
	if err != nil {
		zap.L().Warn("leaderboard cache read failed", zap.String("key", key), zap.Error(err))
		metrics.LeaderboardCache.WithLabelValues("error").Inc()
		return false
	}
	if hit {
		metrics.LeaderboardCache.WithLabelValues("hit").Inc()
	} else {
		metrics.LeaderboardCache.WithLabelValues("miss").Inc()
	}
	return hit
}

// cacheFill only writes an empty key. A read that loaded an older snapshot
// before a recompute published a newer one must not replace it.
func (s *LeaderboardService) cacheFill(ctx context.Context, key string, value any) {
	if err := s.cache.SetIfAbsent(ctx, key, value); err != nil {
		zap.L().Warn("leaderboard cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// publish overwrites the cached value with a freshly computed one. When the
// write fails the key is dropped so readers go back to the store.
func (s *LeaderboardService) publish(ctx context.Context, key string, value any) {
	err := s.cache.Set(ctx, key, value)
	if err == nil {
		return
	}
	zap.L().Warn("leaderboard cache publish failed", zap.String("key", key), zap.Error(err))

	if err := s.cache.Delete(ctx, key); err != nil {
		zap.L().Warn("leaderboard cache invalidation failed", zap.String("key", key), zap.Error(err))
	}
}
