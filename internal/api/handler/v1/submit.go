package v1

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jeopardy-ctf/scoring-api/internal/api/handler/v1/request"
	"github.com/jeopardy-ctf/scoring-api/internal/api/handler/v1/response"
	"github.com/jeopardy-ctf/scoring-api/internal/service"
)

type SubmitService interface {
	SubmitFlag(ctx context.Context, in service.SubmitInput) (service.SubmitResult, error)
}

type SubmitHandler struct {
	svc SubmitService
}

func NewSubmitHandler(svc SubmitService) *SubmitHandler {
	return &SubmitHandler{
		svc: svc,
	}
}

// HandleSubmitFlag godoc
// @Summary      Submit a flag
// @Description  Checks a flag for a challenge and records the attempt. A correct first answer creates the solve.
// @Tags         submissions
// @Accept       json
// @Produce      json
// @Param        request  body      request.SubmitFlagRequest  true  "request body"
// @Success      200      {object}  response.SubmitFlagResponse
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Failure      403      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      429      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /submit-flag [post]
// @Security BearerAuth
func (h *SubmitHandler) HandleSubmitFlag(ctx *gin.Context) {
	uid, respErr := uidFromContext(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.SubmitFlagRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	result, err := h.svc.SubmitFlag(ctx.Request.Context(), service.SubmitInput{
		UID:         uid,
		EventID:     req.EventID,
		ChallengeID: req.ChallengeID,
		FlagText:    req.FlagText,
	})
	if err != nil {
		response.RenderErr(ctx, serviceErr("HandleSubmitFlag -> h.svc.SubmitFlag", err))
		return
	}

	ctx.JSON(http.StatusOK, response.SubmitFlagResponse{
		Correct:           result.Correct,
		AlreadySolved:     result.AlreadySolved,
		AttemptsLeft:      result.AttemptsLeft,
		CooldownRemaining: result.CooldownRemaining,
		ScoreAwarded:      result.ScoreAwarded,
	})
}
