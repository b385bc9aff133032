package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/meetup-api/internal/application"
	"github.com/oksasatya/meetup-api/internal/domain/entity"
	"github.com/oksasatya/meetup-api/internal/interface/middleware"
	"github.com/oksasatya/meetup-api/pkg/response"
)

type UserHandler struct {
	Svc    *application.UserService
	Logger *logrus.Logger
}

func NewUserHandler(svc *application.UserService, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger}
}

// Me GET /me (auth required)
func (h *UserHandler) Me(c *gin.Context) {
	id, ok := entity.IdentityFrom(c.Request.Context())
	if !ok {
		response.Error(c, http.StatusUnauthorized, middleware.MsgNoToken, nil)
		return
	}
	u, err := h.Svc.GetProfile(c.Request.Context(), id.UserID)
	if err != nil {
		writeError(c, h.Logger, "profile", err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"user": u})
}

// Search GET /users/search?q=&size= (auth required)
func (h *UserHandler) Search(c *gin.Context) {
	size, _ := strconv.Atoi(c.Query("size"))
	users, err := h.Svc.SearchUsers(c.Request.Context(), c.Query("q"), size)
	if err != nil {
		writeError(c, h.Logger, "search", err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"users": users})
}
