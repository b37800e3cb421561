package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yizeng/gab/gin/graphql/eventhub/internal/api/handler/v1/response"
	"github.com/yizeng/gab/gin/graphql/eventhub/internal/pkg/jwthelper"
)

var ErrMissingToken = errors.New("missing bearer token")

type TokenParser interface {
	Parse(token string) (*jwthelper.Claims, error)
}

type Authenticator struct {
	tokens TokenParser
}

func NewAuthenticator(tokens TokenParser) *Authenticator {
	return &Authenticator{
		tokens: tokens,
	}
}

// ContextWithToken verifies an Authorization header value and stores the
// viewer it identifies in ctx. Both "Bearer <token>" and a bare token are accepted.
func (a *Authenticator) ContextWithToken(ctx context.Context, header string) (context.Context, error) {
	token := bearerToken(header)
	if token == "" {
		return ctx, ErrMissingToken
	}

	claims, err := a.tokens.Parse(token)
	if err != nil {
		return ctx, err
	}

	return WithViewer(ctx, claims.Viewer()), nil
}

// Identify attaches the viewer when a valid token is present and lets
// anonymous requests through.
func (a *Authenticator) Identify() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		header := ctx.GetHeader("Authorization")
		if header == "" {
			ctx.Next()
			return
		}

		reqCtx, err := a.ContextWithToken(ctx.Request.Context(), header)
		if err != nil {
			zap.L().Debug("ignoring invalid token", zap.Error(err))
			ctx.Next()
			return
		}

		ctx.Request = ctx.Request.WithContext(reqCtx)
		ctx.Next()
	}
}

func (a *Authenticator) VerifyJWT() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		reqCtx, err := a.ContextWithToken(ctx.Request.Context(), ctx.GetHeader("Authorization"))
		if err != nil {
			response.RenderErr(ctx, response.ErrUnauthenticated(err))
			return
		}

		ctx.Request = ctx.Request.WithContext(reqCtx)
		ctx.Next()
	}
}

func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}

	return header
}
