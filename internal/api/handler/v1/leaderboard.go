package v1

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jeopardy-ctf/scoring-api/internal/api/handler/v1/response"
	"github.com/jeopardy-ctf/scoring-api/internal/domain"
)

type LeaderboardService interface {
	EventLeaderboard(ctx context.Context, eventID string, kind domain.LeaderboardKind) (domain.Leaderboard, error)
	LeagueStandings(ctx context.Context, leagueID string) (domain.LeagueStandings, error)
}

type LeaderboardHandler struct {
	svc LeaderboardService
}

func NewLeaderboardHandler(svc LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{
		svc: svc,
	}
}

// HandleGetEventLeaderboard godoc
// @Summary      Get an event leaderboard
// @Tags         leaderboards
// @Produce      json
// @Param        eventID  path      string  true  "event id"
// @Param        kind     path      string  true  "individual or teams"
// @Success      200      {object}  domain.Leaderboard
// @Failure      400      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /events/{eventID}/leaderboards/{kind} [get]
func (h *LeaderboardHandler) HandleGetEventLeaderboard(ctx *gin.Context) {
	eventID := ctx.Param("eventID")
	kind := domain.LeaderboardKind(ctx.Param("kind"))
	if !kind.Valid() {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("unknown leaderboard kind %q", kind)))
		return
	}

	board, err := h.svc.EventLeaderboard(ctx.Request.Context(), eventID, kind)
	if err != nil {
		response.RenderErr(ctx, serviceErr("HandleGetEventLeaderboard -> h.svc.EventLeaderboard", err))
		return
	}

	ctx.JSON(http.StatusOK, board)
}

// HandleGetLeagueStandings godoc
// @Summary      Get league standings
// @Tags         leaderboards
// @Produce      json
// @Param        leagueID  path      string  true  "league id"
// @Success      200       {object}  domain.LeagueStandings
// @Failure      404       {object}  response.Err
// @Failure      500       {object}  response.Err
// @Router       /leagues/{leagueID}/standings [get]
func (h *LeaderboardHandler) HandleGetLeagueStandings(ctx *gin.Context) {
	standings, err := h.svc.LeagueStandings(ctx.Request.Context(), ctx.Param("leagueID"))
	if err != nil {
		response.RenderErr(ctx, serviceErr("HandleGetLeagueStandings -> h.svc.LeagueStandings", err))
		return
	}

	ctx.JSON(http.StatusOK, standings)
}
