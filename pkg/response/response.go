package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// MsgInternal is the only text a client ever sees for a 5xx.
const MsgInternal = "internal server error"

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// Error aborts the chain and writes {message, details?}.
func Error(c *gin.Context, status int, message string, details map[string]string) {
	if status == 0 {
		status = http.StatusBadRequest
	}
	c.AbortWithStatusJSON(status, ErrorBody{Message: message, Details: details})
}

// Internal writes a generic 500. The cause stays in the logs.
func Internal(c *gin.Context) {
	Error(c, http.StatusInternalServerError, MsgInternal, nil)
}

// JSON writes body with status, defaulting to 200.
func JSON(c *gin.Context, status int, body any) {
	if status == 0 {
		status = http.StatusOK
	}
	c.JSON(status, body)
}
