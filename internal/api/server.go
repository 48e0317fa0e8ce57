package api

import (
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/jeopardy-ctf/scoring-api/docs"
	v1 "github.com/jeopardy-ctf/scoring-api/internal/api/handler/v1"
	"github.com/jeopardy-ctf/scoring-api/internal/api/middleware"
	"github.com/jeopardy-ctf/scoring-api/internal/config"
	"github.com/jeopardy-ctf/scoring-api/internal/flag"
	"github.com/jeopardy-ctf/scoring-api/internal/logger"
	"github.com/jeopardy-ctf/scoring-api/internal/repository"
	"github.com/jeopardy-ctf/scoring-api/internal/repository/dao"
	"github.com/jeopardy-ctf/scoring-api/internal/service"
)

// Deps are the pieces shared between the HTTP server and the background workers.
type Deps struct {
	Cache    service.LeaderboardCache
	Governor *service.Governor
	Flags    *flag.Hasher
}

type Server struct {
	Config *config.AppConfig
	Router *gin.Engine

	leaderboards *service.LeaderboardService
}

func NewServer(conf *config.AppConfig, db *gorm.DB, deps Deps) *Server {
	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()

	s := &Server{
		Config: conf,
		Router: engine,
	}

	s.MountMiddlewares()

	s.leaderboards = service.NewLeaderboardService(
		repository.NewEventRepository(dao.NewEventDAO(db)),
		repository.NewSolveRepository(dao.NewSolveDAO(db)),
		repository.NewLeaderboardRepository(dao.NewLeaderboardDAO(db)),
		deps.Cache,
	)

	submitHandler := s.initSubmitHandler(db, deps)
	leaderboardHandler := v1.NewLeaderboardHandler(s.leaderboards)
	userHandler := s.initUserHandler(db)
	adminHandler := s.initAdminHandler(db, deps)
	s.MountHandlers(submitHandler, leaderboardHandler, userHandler, adminHandler)

	return s
}

func (s *Server) initSubmitHandler(db *gorm.DB, deps Deps) *v1.SubmitHandler {
	svc := service.NewSubmitService(
		repository.NewEventRepository(dao.NewEventDAO(db)),
		repository.NewUserRepository(dao.NewUserDAO(db)),
		repository.NewSubmissionRepository(dao.NewSubmissionDAO(db)),
		repository.NewSolveRepository(dao.NewSolveDAO(db)),
		s.leaderboards,
		deps.Governor,
		deps.Flags,
	)

	return v1.NewSubmitHandler(svc)
}

func (s *Server) initUserHandler(db *gorm.DB) *v1.UserHandler {
	repo := repository.NewUserRepository(dao.NewUserDAO(db))
	svc := service.NewUserService(repo)

	return v1.NewUserHandler(svc)
}

func (s *Server) initAdminHandler(db *gorm.DB, deps Deps) *v1.AdminHandler {
	userRepo := repository.NewUserRepository(dao.NewUserDAO(db))
	svc := service.NewAdminService(
		repository.NewEventRepository(dao.NewEventDAO(db)),
		userRepo,
		userRepo,
		repository.NewAuditRepository(dao.NewAuditDAO(db)),
		s.leaderboards,
		deps.Flags,
	)

	return v1.NewAdminHandler(svc)
}

func (s *Server) MountMiddlewares() {
	s.Router.Use(requestid.New())
	s.Router.Use(logger.Gin())
	s.Router.Use(gin.Recovery())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
}

func (s *Server) MountHandlers(
	submitHandler *v1.SubmitHandler,
	leaderboardHandler *v1.LeaderboardHandler,
	userHandler *v1.UserHandler,
	adminHandler *v1.AdminHandler,
) {
	const basePath = "/api/v1"

	public := s.Router.Group(basePath)
	{
		public.GET("/events/:eventID/leaderboards/:kind", leaderboardHandler.HandleGetEventLeaderboard)
		public.GET("/leagues/:leagueID/standings", leaderboardHandler.HandleGetLeagueStandings)
	}

	authenticated := s.Router.Group(basePath, middleware.NewAuthenticator(s.Config.API.JWTSigningKey).VerifyJWT())
	{
		authenticated.POST("/submit-flag", submitHandler.HandleSubmitFlag)
		authenticated.GET("/users/:uid/progress", userHandler.HandleGetProgress)
	}

	admin := s.Router.Group(basePath+"/admin", middleware.NewAuthenticator(s.Config.API.JWTSigningKey).VerifyJWT())
	{
		admin.POST("/events", adminHandler.HandleCreateEvent)
		admin.POST("/events/:eventID/challenges", adminHandler.HandleCreateChallenge)
		admin.POST("/events/:eventID/leaderboards/recompute", adminHandler.HandleRecompute)
		admin.PUT("/challenges/:challengeID/flag", adminHandler.HandleSetFlag)
		admin.POST("/quests", adminHandler.HandleCreateQuest)
		admin.PUT("/users/:uid", adminHandler.HandleUpdateProfile)
	}

	s.Router.GET("/", v1.HandleHealthcheck)
	s.Router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = basePath
	docs.SwaggerInfo.Title = "CTF scoring API"
	docs.SwaggerInfo.Description = "Flag submission, leaderboards and player progression for jeopardy-style CTF events."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}
