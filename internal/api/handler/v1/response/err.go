package response

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Machine-readable rejection reasons.
const (
	ReasonInvalidRequest       = "invalid_request"
	ReasonUnauthenticated      = "unauthenticated"
	ReasonForbidden            = "forbidden"
	ReasonEventNotLive         = "event_not_live"
	ReasonChallengeUnpublished = "challenge_unpublished"
	ReasonAccountDisabled      = "account_disabled"
	ReasonAttemptsExhausted    = "attempts_exhausted"
	ReasonNotFound             = "not_found"
	ReasonFlagNotConfigured    = "flag_not_configured"
	ReasonConflict             = "conflict"
	ReasonCooldownActive       = "cooldown_active"
	ReasonRateLimited          = "rate_limited"
	ReasonInternal             = "internal"
)

type Err struct {
	Err            error `json:"-"`
	HTTPStatusCode int   `json:"-"`

	StatusText string `json:"status"`
	Reason     string `json:"reason"`
	ErrorText  string `json:"error,omitempty"`

	CooldownRemaining *int `json:"cooldownRemaining,omitempty"`
	AttemptsLeft      *int `json:"attemptsLeft,omitempty"`
}

func (e *Err) Error() string {
	return e.ErrorText
}

// WithHints attaches the countdown hints a client renders for a rejection.
func (e *Err) WithHints(cooldownRemaining, attemptsLeft int) *Err {
	e.CooldownRemaining = &cooldownRemaining
	e.AttemptsLeft = &attemptsLeft
	return e
}

func RenderErr(ctx *gin.Context, e *Err) {
	if e.HTTPStatusCode >= http.StatusInternalServerError {
		zap.L().Error("request failed",
			zap.String("path", ctx.FullPath()),
			zap.Error(e.Err),
		)
	}

	ctx.JSON(e.HTTPStatusCode, e)
}

func newErr(status int, reason string, err error) *Err {
	return &Err{
		Err:            err,
		HTTPStatusCode: status,
		StatusText:     http.StatusText(status),
		Reason:         reason,
		ErrorText:      err.Error(),
	}
}

func ErrBadRequest(err error) *Err {
	return newErr(http.StatusBadRequest, ReasonInvalidRequest, err)
}

func ErrUnauthenticated(err error) *Err {
	return newErr(http.StatusUnauthorized, ReasonUnauthenticated, err)
}

func ErrPermissionDenied(err error) *Err {
	return newErr(http.StatusForbidden, ReasonForbidden, err)
}

// ErrRejected is a 403 with a specific reason, for refusals other than role checks.
func ErrRejected(reason string, err error) *Err {
	return newErr(http.StatusForbidden, reason, err)
}

func ErrNotFound(resource, field string, value any) *Err {
	return newErr(http.StatusNotFound, ReasonNotFound, fmt.Errorf("%s with %s %v not found", resource, field, value))
}

func ErrFlagNotConfigured(err error) *Err {
	return newErr(http.StatusNotFound, ReasonFlagNotConfigured, err)
}

func ErrConflict(err error) *Err {
	return newErr(http.StatusConflict, ReasonConflict, err)
}

func ErrTooManyRequests(reason string, err error) *Err {
	return newErr(http.StatusTooManyRequests, reason, err)
}

// ErrInternalServerError keeps the cause out of the response body.
func ErrInternalServerError(err error) *Err {
	return &Err{
		Err:            err,
		HTTPStatusCode: http.StatusInternalServerError,
		StatusText:     http.StatusText(http.StatusInternalServerError),
		Reason:         ReasonInternal,
		ErrorText:      "internal failure",
	}
}

// ErrNotFoundCause reports the innermost sentinel rather than the wrapped call chain.
func ErrNotFoundCause(err error) *Err {
	e := newErr(http.StatusNotFound, ReasonNotFound, err)
	for inner := errors.Unwrap(err); inner != nil; inner = errors.Unwrap(inner) {
		e.ErrorText = inner.Error()
	}
	return e
}
