package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/charlesng35/gymadmin/pkg/errors"
	"github.com/charlesng35/gymadmin/pkg/validator"
)

// Response is the envelope every JSON endpoint answers with.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
}

// ErrorInfo is the client-visible part of a failure.
type ErrorInfo struct {
	Code    string                     `json:"code"`
	Message string                     `json:"message"`
	Details validator.ValidationErrors `json:"details,omitempty"`
}

// Success writes data in a success envelope.
func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, Response{Success: true, Data: data})
}

// Error writes err in a failure envelope. Validation failures become a 400
// listing each field; anything that is not an AppError becomes a 500.
func Error(c *gin.Context, err error) {
	c.JSON(render(c, err))
}

// Abort is Error followed by stopping the handler chain.
func Abort(c *gin.Context, err error) {
	c.AbortWithStatusJSON(render(c, err))
}

func render(c *gin.Context, err error) (int, Response) {
	if err == nil {
		err = appErrors.ErrInternalServer
	}

	var details validator.ValidationErrors
	if errors.As(err, &details) {
		return http.StatusBadRequest, Response{Error: &ErrorInfo{
			Code:    appErrors.ErrBadRequest.Code,
			Message: details.Error(),
			Details: details,
		}}
	}

	appErr := appErrors.FromError(err)
	status := appErr.StatusCode
	if status == 0 {
		status = http.StatusInternalServerError
	}
	// Server faults keep their cause on the context for the access log.
	if status >= http.StatusInternalServerError && appErr.Internal != nil {
		_ = c.Error(appErr.Internal)
	}

	return status, Response{Error: &ErrorInfo{Code: appErr.Code, Message: appErr.Message}}
}
