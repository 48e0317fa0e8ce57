package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/jeopardy-ctf/scoring-api/internal/api"
	"github.com/jeopardy-ctf/scoring-api/internal/cache"
	"github.com/jeopardy-ctf/scoring-api/internal/config"
	"github.com/jeopardy-ctf/scoring-api/internal/db"
	"github.com/jeopardy-ctf/scoring-api/internal/domain"
	"github.com/jeopardy-ctf/scoring-api/internal/elastic"
	"github.com/jeopardy-ctf/scoring-api/internal/flag"
	"github.com/jeopardy-ctf/scoring-api/internal/logger"
	"github.com/jeopardy-ctf/scoring-api/internal/metrics"
	"github.com/jeopardy-ctf/scoring-api/internal/notify"
	"github.com/jeopardy-ctf/scoring-api/internal/repository"
	"github.com/jeopardy-ctf/scoring-api/internal/repository/dao"
	"github.com/jeopardy-ctf/scoring-api/internal/service"
	"github.com/jeopardy-ctf/scoring-api/internal/workers"
)

const configPath = "./cmd/app/config.yml"

func Start() error {
	conf, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to initialize config -> %w", err)
	}

	if err = logger.Init(conf.API.Environment); err != nil {
		return fmt.Errorf("failed to initialize logger -> %w", err)
	}
	defer func() { _ = zap.L().Sync() }()

	database, err := openDatabase(conf)
	if err != nil {
		return fmt.Errorf("failed to initialize database -> %w", err)
	}
	defer func() { _ = db.Close(database) }()

	if err = dao.InitTables(database); err != nil {
		return fmt.Errorf("failed to migrate tables -> %w", err)
	}

	metrics.Register(prometheus.DefaultRegisterer)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	boardCache, err := openCache(ctx, conf.Redis)
	if err != nil {
		return fmt.Errorf("failed to initialize cache -> %w", err)
	}

	hasher, err := flag.NewHasher([]byte(conf.Scoring.Pepper))
	if err != nil {
		return fmt.Errorf("failed to initialize flag hasher -> %w", err)
	}

	governor := service.NewGovernor(service.LimitsFromConfig(*conf.Scoring))
	watcher := config.NewWatcher(configPath, *conf.Scoring)
	if err = watcher.Start(func(scoring config.ScoringConfig) {
		governor.SetLimits(service.LimitsFromConfig(scoring))
	}); err != nil {
		zap.L().Warn("config hot reload disabled", zap.Error(err))
	}

	worker, err := newOutboxWorker(ctx, conf, database)
	if err != nil {
		return fmt.Errorf("failed to initialize outbox worker -> %w", err)
	}
	go worker.Run(ctx)
	go worker.RetryDLQ(ctx)

	s := api.NewServer(conf, database, api.Deps{
		Cache:    boardCache,
		Governor: governor,
		Flags:    hasher,
	})

	return serve(ctx, s)
}

func openDatabase(conf *config.AppConfig) (*gorm.DB, error) {
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		return db.OpenPostgresWithURL(dbURL)
	}
	return db.Open(conf)
}

func openCache(ctx context.Context, conf *config.RedisConfig) (service.LeaderboardCache, error) {
	if conf == nil || conf.Addr == "" {
		zap.L().Info("redis not configured, leaderboard reads go to the database")
		return cache.Nop{}, nil
	}

	client, err := cache.Connect(ctx, conf)
	if err != nil {
		return nil, err
	}

	return cache.NewRedisCache(client, conf.TTL), nil
}

func newOutboxWorker(ctx context.Context, conf *config.AppConfig, database *gorm.DB) (*workers.OutboxWorker, error) {
	worker := workers.NewOutboxWorker(repository.NewOutboxRepository(dao.NewOutboxDAO(database)), conf.Workers)

	gamification := service.NewGamificationService(repository.NewUserRepository(dao.NewUserDAO(database)), time.Local)
	worker.Register(domain.EventTypeSolveCreated, workers.NewSolveHandler("gamification", gamification.HandleSolve))

	if conf.Elastic != nil && len(conf.Elastic.Addresses) > 0 {
		client, err := elastic.Connect(conf.Elastic)
		if err != nil {
			return nil, err
		}
		if err := elastic.EnsureIndexes(ctx, client, conf.Elastic.Index); err != nil {
			return nil, err
		}
		feed := elastic.NewSolveFeed(client, conf.Elastic.Index)
		worker.Register(domain.EventTypeSolveCreated, workers.NewSolveHandler("solve-feed", feed.HandleSolve))
	}

	if conf.Discord != nil && conf.Discord.WebhookID != "" {
		session, err := notify.NewSession()
		if err != nil {
			return nil, err
		}
		notifier := notify.NewFirstBloodNotifier(session, conf.Discord)
		worker.Register(domain.EventTypeSolveCreated, workers.NewSolveHandler("first-blood", notifier.HandleSolve))
	}

	return worker, nil
}

func serve(ctx context.Context, s *api.Server) error {
	srv := &http.Server{
		Addr:         ":" + s.Config.API.Port,
		Handler:      s.Router,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	shutdownErr := make(chan error, 1)
	go func() {
		<-ctx.Done()
		zap.L().Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		shutdownErr <- srv.Shutdown(shutdownCtx)
	}()

	zap.L().Info(fmt.Sprintf("starting server at %v", srv.Addr))
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start the server -> %w", err)
	}

	if err := <-shutdownErr; err != nil {
		return fmt.Errorf("failed to shut down the server -> %w", err)
	}

	return nil
}
