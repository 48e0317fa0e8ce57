package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jeopardy-ctf/scoring-api/internal/api/handler/v1/response"
	"github.com/jeopardy-ctf/scoring-api/internal/pkg/jwthelper"
)

// ContextKeyUID is where VerifyJWT stores the caller's uid.
const ContextKeyUID = "uid"

var errMissingBearer = errors.New("missing bearer token")

type Authenticator struct {
	key []byte
}

func NewAuthenticator(signingKey string) *Authenticator {
	return &Authenticator{
		key: []byte(signingKey),
	}
}

func (a *Authenticator) VerifyJWT() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		header := ctx.GetHeader("Authorization")
		scheme, token, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
			response.RenderErr(ctx, response.ErrUnauthenticated(errMissingBearer))
			ctx.Abort()
			return
		}

		uid, err := jwthelper.ParseToken(a.key, token)
		if err != nil {
			response.RenderErr(ctx, response.ErrUnauthenticated(err))
			ctx.Abort()
			return
		}

		ctx.Set(ContextKeyUID, uid)
		ctx.Next()
	}
}
