package response

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yizeng/gab/gin/graphql/eventhub/internal/apperr"
)

// Err is the JSON body of every failed REST response.
type Err struct {
	Err            error `json:"-"`
	HTTPStatusCode int   `json:"-"`

	Code       string            `json:"code"`
	StatusText string            `json:"status"`
	ErrorText  string            `json:"error,omitempty"`
	Fields     map[string]string `json:"fields,omitempty"`
}

func RenderErr(ctx *gin.Context, e *Err) {
	if e.HTTPStatusCode >= http.StatusInternalServerError {
		zap.L().Error("request failed",
			zap.String("request_id", requestid.Get(ctx)),
			zap.String("path", ctx.FullPath()),
			zap.Error(e.Err),
		)
	}

	ctx.AbortWithStatusJSON(e.HTTPStatusCode, e)
}

// FromError renders any service or validation error with the code it maps to.
func FromError(err error) *Err {
	appErr := apperr.From(err)

	return &Err{
		Err:            err,
		HTTPStatusCode: appErr.StatusCode(),
		Code:           string(appErr.Code),
		StatusText:     http.StatusText(appErr.StatusCode()),
		ErrorText:      appErr.Message,
		Fields:         appErr.Fields,
	}
}

func ErrBadRequest(err error) *Err {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return FromError(appErr)
	}

	return &Err{
		Err:            err,
		HTTPStatusCode: http.StatusBadRequest,
		Code:           string(apperr.CodeBadRequest),
		StatusText:     http.StatusText(http.StatusBadRequest),
		ErrorText:      err.Error(),
	}
}

func ErrValidation(err error) *Err {
	return FromError(apperr.Validation(err))
}

func ErrUnauthenticated(err error) *Err {
	return &Err{
		Err:            err,
		HTTPStatusCode: http.StatusUnauthorized,
		Code:           string(apperr.CodeUnauthenticated),
		StatusText:     http.StatusText(http.StatusUnauthorized),
		ErrorText:      "Authentication required",
	}
}

func ErrInternalServerError(err error) *Err {
	return &Err{
		Err:            err,
		HTTPStatusCode: http.StatusInternalServerError,
		Code:           string(apperr.CodeInternal),
		StatusText:     http.StatusText(http.StatusInternalServerError),
		ErrorText:      "Internal server error",
	}
}
