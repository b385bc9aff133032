package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/meetup-api/internal/domain/entity"
	"github.com/oksasatya/meetup-api/pkg/response"
)

const (
	MsgNoToken      = "no token"
	MsgInvalidToken = "invalid or expired token"
)

// ErrMissingToken means the request carried no usable bearer credential.
var ErrMissingToken = errors.New("no token")

// Authenticator verifies a bearer token. *application.AuthService satisfies it.
type Authenticator interface {
	Authenticate(token string) (entity.Identity, error)
}

// Auth requires "Authorization: Bearer <token>". On success the caller's
// entity.Identity is attached to the request context; on failure the chain
// is aborted with 401 (no credential) or 403 (bad credential).
func Auth(auth Authenticator, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := BearerToken(c.GetHeader("Authorization"))
		if err != nil {
			response.Error(c, http.StatusUnauthorized, MsgNoToken, nil)
			return
		}

		id, err := auth.Authenticate(token)
		if err != nil {
			if logger != nil {
				logger.WithFields(logrus.Fields{
					"request_id": c.GetString(RequestIDKey),
					"path":       c.FullPath(),
				}).WithError(err).Debug("token rejected")
			}
			response.Error(c, http.StatusForbidden, MsgInvalidToken, nil)
			return
		}

		c.Request = c.Request.WithContext(entity.WithIdentity(c.Request.Context(), id))
		c.Next()
	}
}

// BearerToken extracts the token from an Authorization header value.
// The scheme is matched case-insensitively.
func BearerToken(header string) (string, error) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", ErrMissingToken
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrMissingToken
	}
	return token, nil
}
