package modules

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	handlers "github.com/oksasatya/meetup-api/internal/interface/http"
	"github.com/oksasatya/meetup-api/internal/interface/middleware"
)

// UserModule wires the profile handlers behind bearer authentication.
// Protected: GET /me, GET /users/search
type UserModule struct {
	Handler *handlers.UserHandler
	Auth    middleware.Authenticator
	Logger  *logrus.Logger
}

func NewUserModule(h *handlers.UserHandler, auth middleware.Authenticator, logger *logrus.Logger) *UserModule {
	return &UserModule{Handler: h, Auth: auth, Logger: logger}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.Auth, m.Logger))
	{
		auth.GET("/me", m.Handler.Me)
		auth.GET("/users/search", m.Handler.Search)
	}
}
