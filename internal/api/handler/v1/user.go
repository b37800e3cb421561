package v1

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yizeng/gab/gin/graphql/eventhub/internal/api/handler/v1/response"
	"github.com/yizeng/gab/gin/graphql/eventhub/internal/api/middleware"
	"github.com/yizeng/gab/gin/graphql/eventhub/internal/domain"
)

type UserService interface {
	GetUser(ctx context.Context, id string) (domain.User, error)
}

type UserHandler struct {
	svc UserService
}

func NewUserHandler(svc UserService) *UserHandler {
	return &UserHandler{
		svc: svc,
	}
}

// HandleGetUser godoc
// @Summary      Get a user
// @Tags         users
// @Produce      json
// @Param        userID    path      string  true  "User ID"
// @Success      200      {object}   response.User
// @Failure      401      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Security     BearerAuth
// @Router       /users/{userID} [get]
func (h *UserHandler) HandleGetUser(ctx *gin.Context) {
	user, err := h.svc.GetUser(ctx.Request.Context(), ctx.Param("userID"))
	if err != nil {
		response.RenderErr(ctx, response.FromError(err))
		return
	}

	ctx.JSON(http.StatusOK, response.NewUser(user))
}

// HandleMe godoc
// @Summary      Get the authenticated user
// @Tags         users
// @Produce      json
// @Success      200      {object}   response.User
// @Failure      401      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Security     BearerAuth
// @Router       /users/me [get]
func (h *UserHandler) HandleMe(ctx *gin.Context) {
	viewer := middleware.ViewerFromContext(ctx.Request.Context())

	user, err := h.svc.GetUser(ctx.Request.Context(), viewer.UserID)
	if err != nil {
		response.RenderErr(ctx, response.FromError(err))
		return
	}

	ctx.JSON(http.StatusOK, response.NewUser(user))
}
