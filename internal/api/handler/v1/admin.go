package v1

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jeopardy-ctf/scoring-api/internal/api/handler/v1/request"
	"github.com/jeopardy-ctf/scoring-api/internal/api/handler/v1/response"
	"github.com/jeopardy-ctf/scoring-api/internal/domain"
	"github.com/jeopardy-ctf/scoring-api/internal/service"
)

type AdminService interface {
	SetFlag(ctx context.Context, actorUID, challengeID, flagText string, caseSensitive bool) error
	CreateEvent(ctx context.Context, actorUID string, event domain.Event) (domain.Event, error)
	CreateChallenge(ctx context.Context, actorUID string, challenge domain.Challenge) (domain.Challenge, error)
	CreateQuest(ctx context.Context, actorUID string, quest domain.Quest) (domain.Quest, error)
	Recompute(ctx context.Context, actorUID, eventID string) error
	UpdateProfile(ctx context.Context, actorUID, uid string, update service.ProfileUpdate) (domain.Profile, error)
}

type AdminHandler struct {
	svc AdminService
}

func NewAdminHandler(svc AdminService) *AdminHandler {
	return &AdminHandler{
		svc: svc,
	}
}

// HandleSetFlag godoc
// @Summary      Set a challenge flag
// @Description  Stores only the hash of the flag. Requires the owner or admin role.
// @Tags         admin
// @Accept       json
// @Param        challengeID  path  string                  true  "challenge id"
// @Param        request      body  request.SetFlagRequest  true  "request body"
// @Success      204
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /admin/challenges/{challengeID}/flag [put]
// @Security BearerAuth
func (h *AdminHandler) HandleSetFlag(ctx *gin.Context) {
	uid, respErr := uidFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.SetFlagRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := h.svc.SetFlag(ctx.Request.Context(), uid, ctx.Param("challengeID"), req.Flag, req.CaseSensitive); err != nil {
		response.RenderErr(ctx, serviceErr("HandleSetFlag -> h.svc.SetFlag", err))
		return
	}

	ctx.Status(http.StatusNoContent)
}

// HandleCreateEvent godoc
// @Summary      Create an event
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        request  body      request.CreateEventRequest  true  "request body"
// @Success      201      {object}  domain.Event
// @Failure      400      {object}  response.Err
// @Failure      403      {object}  response.Err
// @Failure      409      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /admin/events [post]
// @Security BearerAuth
func (h *AdminHandler) HandleCreateEvent(ctx *gin.Context) {
	uid, respErr := uidFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.CreateEventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	event, err := h.svc.CreateEvent(ctx.Request.Context(), uid, domain.Event{
		ID:         req.ID,
		Name:       req.Name,
		StartsAt:   req.StartsAt,
		EndsAt:     req.EndsAt,
		LeagueID:   req.LeagueID,
		Visibility: req.Visibility,
		TeamMode:   req.TeamMode,
		FlagFormat: req.FlagFormat,
	})
	if err != nil {
		response.RenderErr(ctx, serviceErr("HandleCreateEvent -> h.svc.CreateEvent", err))
		return
	}

	ctx.JSON(http.StatusCreated, event)
}

// HandleCreateChallenge godoc
// @Summary      Create a challenge in an event
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        eventID  path      string                          true  "event id"
// @Param        request  body      request.CreateChallengeRequest  true  "request body"
// @Success      201      {object}  domain.Challenge
// @Failure      400      {object}  response.Err
// @Failure      403      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      409      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /admin/events/{eventID}/challenges [post]
// @Security BearerAuth
func (h *AdminHandler) HandleCreateChallenge(ctx *gin.Context) {
	uid, respErr := uidFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.CreateChallengeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	challenge, err := h.svc.CreateChallenge(ctx.Request.Context(), uid, domain.Challenge{
		ID:          req.ID,
		EventID:     ctx.Param("eventID"),
		Title:       req.Title,
		Category:    req.Category,
		PointsFixed: req.PointsFixed,
		Published:   req.Published,
	})
	if err != nil {
		response.RenderErr(ctx, serviceErr("HandleCreateChallenge -> h.svc.CreateChallenge", err))
		return
	}

	ctx.JSON(http.StatusCreated, challenge)
}

// HandleCreateQuest godoc
// @Summary      Create a quest
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        request  body      request.CreateQuestRequest  true  "request body"
// @Success      201      {object}  domain.Quest
// @Failure      400      {object}  response.Err
// @Failure      403      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /admin/quests [post]
// @Security BearerAuth
func (h *AdminHandler) HandleCreateQuest(ctx *gin.Context) {
	uid, respErr := uidFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.CreateQuestRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	quest, err := h.svc.CreateQuest(ctx.Request.Context(), uid, domain.Quest{
		Title:       req.Title,
		RuleType:    domain.QuestRule(req.RuleType),
		Category:    req.Category,
		Target:      req.Target,
		RewardXP:    req.RewardXP,
		RewardBadge: req.RewardBadge,
		ActiveFrom:  req.ActiveFrom,
		ActiveTo:    req.ActiveTo,
	})
	if err != nil {
		response.RenderErr(ctx, serviceErr("HandleCreateQuest -> h.svc.CreateQuest", err))
		return
	}

	ctx.JSON(http.StatusCreated, quest)
}

// HandleRecompute godoc
// @Summary      Recompute an event's leaderboards
// @Tags         admin
// @Param        eventID  path  string  true  "event id"
// @Success      204
// @Failure      403  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /admin/events/{eventID}/leaderboards/recompute [post]
// @Security BearerAuth
func (h *AdminHandler) HandleRecompute(ctx *gin.Context) {
	uid, respErr := uidFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	if err := h.svc.Recompute(ctx.Request.Context(), uid, ctx.Param("eventID")); err != nil {
		response.RenderErr(ctx, serviceErr("HandleRecompute -> h.svc.Recompute", err))
		return
	}

	ctx.Status(http.StatusNoContent)
}

// HandleUpdateProfile godoc
// @Summary      Update a user's role, team or disabled flag
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        uid      path      string                        true  "user id"
// @Param        request  body      request.UpdateProfileRequest  true  "request body"
// @Success      200      {object}  domain.Profile
// @Failure      400      {object}  response.Err
// @Failure      403      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /admin/users/{uid} [put]
// @Security BearerAuth
func (h *AdminHandler) HandleUpdateProfile(ctx *gin.Context) {
	uid, respErr := uidFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.UpdateProfileRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	update := service.ProfileUpdate{
		DisplayName: req.DisplayName,
		TeamID:      req.TeamID,
		Disabled:    req.Disabled,
	}
	if req.Role != nil {
		role := domain.Role(*req.Role)
		update.Role = &role
	}

	profile, err := h.svc.UpdateProfile(ctx.Request.Context(), uid, ctx.Param("uid"), update)
	if err != nil {
		response.RenderErr(ctx, serviceErr("HandleUpdateProfile -> h.svc.UpdateProfile", err))
		return
	}

	ctx.JSON(http.StatusOK, profile)
}
