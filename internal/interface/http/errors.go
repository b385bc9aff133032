package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/meetup-api/internal/application"
	"github.com/oksasatya/meetup-api/internal/interface/middleware"
	"github.com/oksasatya/meetup-api/pkg/response"
)

// writeError maps application errors onto status codes. Anything unknown is
// logged with the request id and answered with a generic 500.
func writeError(c *gin.Context, logger *logrus.Logger, op string, err error) {
	var vErr *application.ValidationError
	var conflict *application.ConflictError
	switch {
	case errors.As(err, &vErr):
		response.Error(c, http.StatusBadRequest, vErr.Message, vErr.Fields)
	case errors.As(err, &conflict):
		response.Error(c, http.StatusConflict, conflict.Error(), nil)
	case errors.Is(err, application.ErrInvalidCredentials):
		response.Error(c, http.StatusUnauthorized, application.ErrInvalidCredentials.Error(), nil)
	case errors.Is(err, application.ErrUserNotFound):
		response.Error(c, http.StatusNotFound, application.ErrUserNotFound.Error(), nil)
	default:
		if logger != nil {
			logger.WithFields(logrus.Fields{
				"request_id": c.GetString(middleware.RequestIDKey),
				"op":         op,
			}).WithError(err).Error("request failed")
		}
		response.Internal(c)
	}
}
