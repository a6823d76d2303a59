package response

import (
	"fmt"
	"net/http"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const msgInternalServerError = "something went wrong, please try again later"

// Err is the error payload of every endpoint. Cause is logged, never sent.
type Err struct {
	HTTPStatusCode  int      `json:"-"`
	Success         bool     `json:"success"`
	Message         string   `json:"message"`
	SoldOutProducts []string `json:"soldOutProducts,omitempty"`
	Cause           error    `json:"-"`
}

func (e *Err) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%d %s: %v", e.HTTPStatusCode, e.Message, e.Cause)
	}
	return fmt.Sprintf("%d %s", e.HTTPStatusCode, e.Message)
}

func RenderErr(ctx *gin.Context, e *Err) {
	fields := []zap.Field{
		zap.Int("status", e.HTTPStatusCode),
		zap.String("path", ctx.FullPath()),
		zap.String("request_id", requestid.Get(ctx)),
		zap.Error(e.Cause),
	}
	if e.HTTPStatusCode >= http.StatusInternalServerError {
		zap.L().Error(e.Message, fields...)
	} else {
		zap.L().Debug(e.Message, fields...)
	}

	ctx.AbortWithStatusJSON(e.HTTPStatusCode, e)
}

func ErrBadRequest(err error) *Err {
	return &Err{
		HTTPStatusCode: http.StatusBadRequest,
		Message:        err.Error(),
		Cause:          err,
	}
}

func ErrUnauthorized(err error) *Err {
	return &Err{
		HTTPStatusCode: http.StatusUnauthorized,
		Message:        "authentication required",
		Cause:          err,
	}
}

func ErrPermissionDenied(err error) *Err {
	return &Err{
		HTTPStatusCode: http.StatusForbidden,
		Message:        "permission denied",
		Cause:          err,
	}
}

func ErrNotFound(resource, key string, value any) *Err {
	return &Err{
		HTTPStatusCode: http.StatusNotFound,
		Message:        fmt.Sprintf("%s with %s %v not found", resource, key, value),
	}
}

func ErrConflict(err error) *Err {
	return &Err{
		HTTPStatusCode: http.StatusConflict,
		Message:        err.Error(),
		Cause:          err,
	}
}

// ErrSoldOut reports the products a registration could not reserve.
func ErrSoldOut(products []string) *Err {
	return &Err{
		HTTPStatusCode:  http.StatusConflict,
		Message:         "some products are sold out or no longer on sale",
		SoldOutProducts: products,
	}
}

func ErrInternalServerError(err error) *Err {
	return &Err{
		HTTPStatusCode: http.StatusInternalServerError,
		Message:        msgInternalServerError,
		Cause:          err,
	}
}
