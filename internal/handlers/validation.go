package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/gin-gonic/gin"

	appErrors "github.com/charlesng35/gymadmin/pkg/errors"
	"github.com/charlesng35/gymadmin/pkg/response"
	appValidator "github.com/charlesng35/gymadmin/pkg/validator"
)

// bindAndValidate decodes the JSON body into dest and applies its validate
// tags. On failure it writes the 400 response and returns false.
func bindAndValidate[T any](c *gin.Context, dest *T) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, appErrors.NewBadRequest(describeBindError(err)))
		return false
	}

	if err := appValidator.ValidateStruct(dest); err != nil {
		response.Error(c, err)
		return false
	}

	return true
}

func describeBindError(err error) string {
	var (
		typeErr   *json.UnmarshalTypeError
		syntaxErr *json.SyntaxError
	)
	switch {
	case errors.Is(err, io.EOF):
		return "request body is required"
	case errors.As(err, &typeErr) && typeErr.Field != "":
		return fmt.Sprintf("field %s must be a %s", typeErr.Field, typeErr.Type.Kind())
	case errors.As(err, &syntaxErr):
		return fmt.Sprintf("invalid JSON payload at offset %d", syntaxErr.Offset)
	default:
		return "invalid JSON payload"
	}
}
