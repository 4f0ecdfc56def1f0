package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/tickprobe/internal/domain/dto"
)

// ErrorHandler turns errors attached with c.Error into a JSON response when
// no handler has written one. The status already set on the writer is kept
// if it is an error status, otherwise 500 is used.
func ErrorHandler(c *gin.Context) {
	c.Next()

	if len(c.Errors) == 0 || c.Writer.Written() {
		return
	}

	err := c.Errors.Last().Err
	status := c.Writer.Status()
	if status < http.StatusBadRequest {
		status = http.StatusInternalServerError
	}

	var resp dto.ErrorResponse
	if !errors.As(err, &resp) {
		resp = dto.NewErrorResponse(http.StatusText(status), err)
	}
	c.AbortWithStatusJSON(status, resp)
}

// AbortWithError writes a dto.ErrorResponse with status and stops the chain.
// err is also recorded on the context so RequestLogger and tests can see it.
func AbortWithError(c *gin.Context, status int, message string, err error) {
	if err != nil {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(status, dto.NewErrorResponse(message, err))
}
