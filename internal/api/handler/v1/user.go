package v1

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jeopardy-ctf/scoring-api/internal/api/handler/v1/response"
	"github.com/jeopardy-ctf/scoring-api/internal/domain"
)

type UserService interface {
	GetProgress(ctx context.Context, uid string) (domain.Progress, []domain.QuestProgress, error)
}

type UserHandler struct {
	svc UserService
}

func NewUserHandler(svc UserService) *UserHandler {
	return &UserHandler{
		svc: svc,
	}
}

// HandleGetProgress godoc
// @Summary      Get a user's XP, level, badges and quest progress
// @Tags         users
// @Produce      json
// @Param        uid  path      string  true  "user id"
// @Success      200  {object}  response.ProgressResponse
// @Failure      401  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /users/{uid}/progress [get]
// @Security BearerAuth
func (h *UserHandler) HandleGetProgress(ctx *gin.Context) {
	uid := ctx.Param("uid")
	if uid == "me" {
		self, respErr := uidFromContext(ctx)
		if respErr != nil {
			response.RenderErr(ctx, respErr)
			return
		}
		uid = self
	}

	progress, quests, err := h.svc.GetProgress(ctx.Request.Context(), uid)
	if err != nil {
		response.RenderErr(ctx, serviceErr("HandleGetProgress -> h.svc.GetProgress", err))
		return
	}

	ctx.JSON(http.StatusOK, response.ProgressResponse{
		Progress: progress,
		Quests:   quests,
	})
}
