package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/meetup-api/internal/application"
	"github.com/oksasatya/meetup-api/internal/domain/entity"
	"github.com/oksasatya/meetup-api/pkg/response"
	"github.com/oksasatya/meetup-api/pkg/validation"
)

type AuthHandler struct {
	Svc    *application.AuthService
	Logger *logrus.Logger
}

func NewAuthHandler(svc *application.AuthService, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Svc: svc, Logger: logger}
}

type registerRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Nickname string `json:"nickname" binding:"required"`
}

func (r registerRequest) missing() map[string]string {
	out := map[string]string{}
	for field, v := range map[string]string{
		"username": r.Username,
		"email":    r.Email,
		"password": r.Password,
		"nickname": r.Nickname,
	} {
		if strings.TrimSpace(v) == "" {
			out[field] = "is required"
		}
	}
	return out
}

type registerResponse struct {
	Message string            `json:"message"`
	User    entity.PublicUser `json:"user"`
}

// no binding tags: blank credentials are a 401, not a 400
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// Register POST /register {username, email, password, nickname}
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if validation.IsValidation(err) {
			if missing := req.missing(); len(missing) > 0 {
				response.Error(c, http.StatusBadRequest, application.MsgAllFieldsRequired, missing)
				return
			}
		}
		response.Error(c, http.StatusBadRequest, application.MsgInvalidPayload, validation.ToDetails(err))
		return
	}

	u, err := h.Svc.Register(c.Request.Context(), application.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Nickname: req.Nickname,
	})
	if err != nil {
		writeError(c, h.Logger, "register", err)
		return
	}
	response.JSON(c, http.StatusCreated, registerResponse{Message: "user registered", User: u.Public()})
}

// Login POST /login {username, password}
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, http.StatusBadRequest, application.MsgInvalidPayload, validation.ToDetails(err))
		return
	}

	res, err := h.Svc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		writeError(c, h.Logger, "login", err)
		return
	}
	response.JSON(c, http.StatusOK, loginResponse{Token: res.Token})
}
