package v1

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/jeopardy-ctf/scoring-api/internal/api/handler/v1/response"
	"github.com/jeopardy-ctf/scoring-api/internal/api/middleware"
	"github.com/jeopardy-ctf/scoring-api/internal/service"
)

var errNoIdentity = errors.New("no authenticated user in request")

func uidFromContext(ctx *gin.Context) (string, *response.Err) {
	uid := ctx.GetString(middleware.ContextKeyUID)
	if uid == "" {
		return "", response.ErrUnauthenticated(errNoIdentity)
	}
	return uid, nil
}

// serviceErr maps a service error onto its HTTP status and reason.
func serviceErr(op string, err error) *response.Err {
	var rejection *service.RejectionError
	if errors.As(err, &rejection) {
		switch {
		case errors.Is(err, service.ErrAttemptsExhausted):
			return response.ErrRejected(response.ReasonAttemptsExhausted, err).WithHints(rejection.CooldownRemaining, rejection.AttemptsLeft)
		case errors.Is(err, service.ErrCooldownActive):
			return response.ErrTooManyRequests(response.ReasonCooldownActive, err).WithHints(rejection.CooldownRemaining, rejection.AttemptsLeft)
		case errors.Is(err, service.ErrRateLimited):
			return response.ErrTooManyRequests(response.ReasonRateLimited, err).WithHints(rejection.CooldownRemaining, rejection.AttemptsLeft)
		}
	}

	switch {
	case errors.Is(err, service.ErrEventNotLive):
		return response.ErrRejected(response.ReasonEventNotLive, err)
	case errors.Is(err, service.ErrChallengeUnpublished):
		return response.ErrRejected(response.ReasonChallengeUnpublished, err)
	case errors.Is(err, service.ErrAccountDisabled):
		return response.ErrRejected(response.ReasonAccountDisabled, err)
	case errors.Is(err, service.ErrForbidden):
		return response.ErrPermissionDenied(err)
	case errors.Is(err, service.ErrEventNotFound),
		errors.Is(err, service.ErrChallengeNotFound),
		errors.Is(err, service.ErrStandingsNotFound),
		errors.Is(err, service.ErrLeaderboardNotFound),
		errors.Is(err, service.ErrUserNotFound):
		return response.ErrNotFoundCause(err)
	case errors.Is(err, service.ErrFlagNotConfigured):
		return response.ErrFlagNotConfigured(err)
	case errors.Is(err, service.ErrEventExists),
		errors.Is(err, service.ErrChallengeExists),
		errors.Is(err, service.ErrQuestExists):
		return response.ErrConflict(err)
	case errors.Is(err, service.ErrFlagFormatMismatch),
		errors.Is(err, service.ErrInvalidFlagFormat),
		errors.Is(err, service.ErrInvalidEventWindow),
		errors.Is(err, service.ErrInvalidRole),
		errors.Is(err, service.ErrInvalidChallengeID):
		return response.ErrBadRequest(err)
	default:
		return response.ErrInternalServerError(fmt.Errorf("%s -> %w", op, err))
	}
}
