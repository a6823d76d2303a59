package v1

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dancehub/event-registration/internal/api/handler/v1/response"
	"github.com/dancehub/event-registration/internal/api/middleware"
)

var errNoUserInContext = errors.New("no authenticated user in context")

func getUserIDFromContext(ctx *gin.Context) (uuid.UUID, *response.Err) {
	value, ok := ctx.Get(middleware.CtxKeyUserID)
	if !ok {
		return uuid.Nil, response.ErrUnauthorized(errNoUserInContext)
	}
	userID, ok := value.(uuid.UUID)
	if !ok || userID == uuid.Nil {
		return uuid.Nil, response.ErrUnauthorized(errNoUserInContext)
	}
	return userID, nil
}

func parseUUIDParam(ctx *gin.Context, name string) (uuid.UUID, *response.Err) {
	id, err := uuid.Parse(ctx.Param(name))
	if err != nil {
		return uuid.Nil, response.ErrBadRequest(fmt.Errorf("%s must be a valid id", name))
	}
	return id, nil
}
